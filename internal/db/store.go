package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salesday/backend/internal/models"
	"github.com/salesday/backend/internal/roster"
)

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	address    TEXT NOT NULL,
	contact    TEXT NOT NULL DEFAULT '',
	priority   TEXT NOT NULL DEFAULT '',
	notes      TEXT NOT NULL DEFAULT '',
	last_visit DATE,
	lat        DOUBLE PRECISION,
	lon        DOUBLE PRECISION
);
CREATE TABLE IF NOT EXISTS visit_schedule (
	visit_date DATE NOT NULL,
	client_id  TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
	position   INT NOT NULL,
	PRIMARY KEY (visit_date, client_id)
);
CREATE INDEX IF NOT EXISTS visit_schedule_date_position ON visit_schedule (visit_date, position);
`

type Store struct {
	Pool *pgxpool.Pool
	// Now picks "today" for GetTodaysClients.
	Now func() time.Time
}

var _ roster.Provider = (*Store)(nil)

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool, Now: time.Now}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schema)
	return err
}

// UpsertClients writes client master data. Coordinates are only overwritten
// when the incoming client has them.
func (s *Store) UpsertClients(ctx context.Context, clients []models.Client) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		for _, c := range clients {
			var lat, lon *float64
			if c.HasCoordinates() {
				lat, lon = &c.Coordinates.Lat, &c.Coordinates.Lon
			}
			var lastVisit *string
			if c.LastVisit != "" {
				lastVisit = &c.LastVisit
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO clients (id, name, address, contact, priority, notes, last_visit, lat, lon)
				VALUES ($1,$2,$3,$4,$5,$6,$7::date,$8,$9)
				ON CONFLICT (id) DO UPDATE SET
					name = EXCLUDED.name,
					address = EXCLUDED.address,
					contact = EXCLUDED.contact,
					priority = EXCLUDED.priority,
					notes = EXCLUDED.notes,
					last_visit = COALESCE(EXCLUDED.last_visit, clients.last_visit),
					lat = COALESCE(EXCLUDED.lat, clients.lat),
					lon = COALESCE(EXCLUDED.lon, clients.lon)
			`, c.ID, c.Name, c.Address, c.Contact, c.Priority, c.Notes, lastVisit, lat, lon)
			if err != nil {
				return fmt.Errorf("upsert client %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// ScheduleDay replaces the schedule for date with clientIDs in visiting order.
func (s *Store) ScheduleDay(ctx context.Context, date string, clientIDs []string) error {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("schedule date %q: %w", date, err)
	}
	rows := make([][]any, 0, len(clientIDs))
	for i, id := range clientIDs {
		rows = append(rows, []any{d, id, i})
	}
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM visit_schedule WHERE visit_date = $1`, d); err != nil {
			return err
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"visit_schedule"}, []string{"visit_date", "client_id", "position"}, pgx.CopyFromRows(rows))
		return err
	})
}

// ListScheduledClients returns the clients scheduled on date in position order.
func (s *Store) ListScheduledClients(ctx context.Context, date string) ([]models.Client, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT c.id, c.name, c.address, c.contact, c.priority, c.notes,
			COALESCE(to_char(c.last_visit, 'YYYY-MM-DD'), ''), c.lat, c.lon
		FROM visit_schedule vs
		JOIN clients c ON c.id = vs.client_id
		WHERE vs.visit_date = $1::date
		ORDER BY vs.position ASC, c.id ASC
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Client
	for rows.Next() {
		var (
			c        models.Client
			lat, lon *float64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Contact, &c.Priority, &c.Notes, &c.LastVisit, &lat, &lon); err != nil {
			return nil, err
		}
		if lat != nil && lon != nil {
			c.Coordinates = &models.Coordinates{Lat: *lat, Lon: *lon}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetTodaysClients reads today's schedule. An unscheduled day is an empty
// roster, which the orchestrator rejects.
func (s *Store) GetTodaysClients(ctx context.Context) (roster.Roster, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	date := now().Format("2006-01-02")
	clients, err := s.ListScheduledClients(ctx, date)
	if err != nil {
		return roster.Roster{}, fmt.Errorf("list schedule for %s: %w", date, err)
	}
	return roster.Roster{Date: date, Clients: clients}, nil
}
