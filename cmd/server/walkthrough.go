package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salesday/backend/internal/config"
	"github.com/salesday/backend/internal/maps"
	"github.com/salesday/backend/internal/models"
	"github.com/salesday/backend/internal/service"
	"github.com/salesday/backend/internal/visitday"
)

type walkthroughStop struct {
	ClientID string `json:"client_id"`
	MapBytes int    `json:"map_bytes,omitempty"`
	MapError string `json:"map_error,omitempty"`
}

type walkthroughReport struct {
	Start    visitday.Snapshot  `json:"start"`
	Route    models.Route       `json:"route"`
	Stops    []walkthroughStop  `json:"stops,omitempty"`
	Progress []service.Progress `json:"progress"`
	Final    visitday.Snapshot  `json:"final"`
}

func newWalkthroughCmd() *cobra.Command {
	var (
		fromOffice bool
		withMaps   bool
		zoom       int
		style      string
	)
	cmd := &cobra.Command{
		Use:   "walkthrough",
		Short: "Drive one full visit day against the configured providers and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a, err := buildApp(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer a.Close()

			var start *models.StartLocation
			if fromOffice {
				office := cfg.Office()
				start = &office
			}
			report, err := walkthrough(ctx, a.orch, start, withMaps, maps.Params{Zoom: zoom, Style: style})
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().BoolVar(&fromOffice, "from-office", true, "start the route at the configured office")
	cmd.Flags().BoolVar(&withMaps, "maps", false, "render a map for every stop")
	cmd.Flags().IntVar(&zoom, "zoom", maps.DefaultZoom, "map zoom level")
	cmd.Flags().StringVar(&style, "style", maps.StyleMain, "map style (main|dark|satellite)")
	return cmd
}

// walkthrough loads today's roster, routes it and records progress until
// every visit is closed.
func walkthrough(ctx context.Context, orch *service.Orchestrator, start *models.StartLocation, withMaps bool, p maps.Params) (walkthroughReport, error) {
	var report walkthroughReport
	snap, err := orch.LoadDay(ctx)
	if err != nil {
		return report, err
	}
	report.Start = snap

	report.Route, err = orch.ComputeRoute(ctx, start)
	if err != nil {
		return report, err
	}

	if withMaps {
		for _, id := range report.Route.StopOrder {
			stop := walkthroughStop{ClientID: id}
			img, err := orch.GetStopImage(ctx, id, p)
			if err != nil {
				stop.MapError = err.Error()
			} else {
				stop.MapBytes = len(img.Image.Data)
			}
			report.Stops = append(report.Stops, stop)
		}
	}

	// One call per visit plus the call that closes the last one.
	for range len(snap.Roster) + 1 {
		prog, err := orch.RecordProgress()
		if err != nil {
			return report, err
		}
		report.Progress = append(report.Progress, prog)
		if prog.DayComplete {
			break
		}
	}

	report.Final, err = orch.GetStatus()
	return report, err
}
