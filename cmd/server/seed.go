package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/salesday/backend/internal/config"
	"github.com/salesday/backend/internal/roster"
)

func newSeedCmd() *cobra.Command {
	var (
		date  string
		count int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a sample client schedule for a date into the database",
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
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			logger := newLogger(cfg)

			day := time.Now()
			if date != "" {
				if day, err = time.Parse("2006-01-02", date); err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}
			if count <= 0 {
				count = cfg.RosterSize
			}

			store, err := openStore(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer store.Close()

			r, err := roster.Sample{Count: count, Now: func() time.Time { return day }}.GetTodaysClients(ctx)
			if err != nil {
				return err
			}
			if err := store.UpsertClients(ctx, r.Clients); err != nil {
				return err
			}
			ids := make([]string, 0, len(r.Clients))
			for _, c := range r.Clients {
				ids = append(ids, c.ID)
			}
			if err := store.ScheduleDay(ctx, r.Date, ids); err != nil {
				return err
			}
			logger.Info().Str("date", r.Date).Strs("clients", ids).Msg("schedule seeded")
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "visit date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&count, "count", 0, "number of clients (default ROSTER_SIZE)")
	return cmd
}
