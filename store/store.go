// Package store persists simulation runs and their per-game records in Postgres.
package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/signalnine/warsim/game"
	"github.com/signalnine/warsim/report"
	"github.com/signalnine/warsim/simulation"
)

//go:embed schema.sql
var schema embed.FS

// ErrRunNotFound is returned when no run has the requested ID
var ErrRunNotFound = errors.New("run not found")

// DB is a pooled Postgres connection holding runs and games
type DB struct{ *pgxpool.Pool }

// Open creates a connection pool for dsn. It does not contact the server; use Ping.
func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &DB{p}, nil
}

// Close releases every pooled connection
func (db *DB) Close() { db.Pool.Close() }

// Ping checks that the database is reachable
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

// Migrate creates the runs and games tables if they do not exist
func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

func parseRunID(id string) (pgtype.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: %q", ErrRunNotFound, id)
	}
	return pgtype.UUID{Bytes: u, Valid: true}, nil
}

// SaveRun stores the summary and every game record in one transaction.
// A run ID is generated when s.RunID is empty; the ID used is returned.
func (db *DB) SaveRun(ctx context.Context, s report.Summary, records []simulation.GameRecord) (string, error) {
	if s.RunID == "" {
		s.RunID = uuid.NewString()
	}
	runID, err := parseRunID(s.RunID)
	if err != nil {
		return "", err
	}

	err = pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO runs(id, policy, seed, games, max_iterations, elapsed_ns, stats)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, runID, s.Policy, s.Seed, s.Games, s.MaxIterations, int64(s.Elapsed), s.Stats); err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"games"},
			[]string{"run_id", "sim_id", "seed", "rank_counts", "turns", "ties",
				"longest_war", "reshuffles_a", "reshuffles_b", "outcome"},
			pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
				r := records[i]
				counts := make([]int32, game.NumRanks)
				for j, c := range r.RankCounts {
					counts[j] = int32(c)
				}
				return []any{runID, int32(r.SimID), r.Seed, counts, int32(r.Turns), int32(r.Ties),
					int32(r.LongestWar), int32(r.Reshuffles[0]), int32(r.Reshuffles[1]), int16(r.Outcome)}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to copy games: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return s.RunID, nil
}

// LoadRun fetches a run's summary
func (db *DB) LoadRun(ctx context.Context, id string) (*report.Summary, error) {
	runID, err := parseRunID(id)
	if err != nil {
		return nil, err
	}

	s := report.Summary{RunID: id, Version: report.SummaryVersion}
	var elapsed int64
	err = db.QueryRow(ctx, `
		SELECT created_at, policy, seed, games, max_iterations, elapsed_ns, stats
		  FROM runs WHERE id = $1
	`, runID).Scan(&s.Timestamp, &s.Policy, &s.Seed, &s.Games, &s.MaxIterations, &elapsed, &s.Stats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, err
	}
	s.Elapsed = time.Duration(elapsed)
	return &s, nil
}

// LoadGames fetches a run's game records ordered by sim ID
func (db *DB) LoadGames(ctx context.Context, id string) ([]simulation.GameRecord, error) {
	runID, err := parseRunID(id)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, `
		SELECT sim_id, seed, rank_counts, turns, ties, longest_war, reshuffles_a, reshuffles_b, outcome
		  FROM games
		 WHERE run_id = $1
		 ORDER BY sim_id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []simulation.GameRecord
	for rows.Next() {
		var (
			r       simulation.GameRecord
			counts  []int32
			outcome int16
		)
		if err := rows.Scan(&r.SimID, &r.Seed, &counts, &r.Turns, &r.Ties, &r.LongestWar,
			&r.Reshuffles[0], &r.Reshuffles[1], &outcome); err != nil {
			return nil, err
		}
		for j := 0; j < len(counts) && j < game.NumRanks; j++ {
			r.RankCounts[j] = int(counts[j])
		}
		r.Outcome = game.Outcome(outcome)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListRuns returns the most recent runs, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]report.Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(ctx, `
		SELECT id::text, created_at, policy, seed, games, max_iterations, elapsed_ns, stats
		  FROM runs
		 ORDER BY created_at DESC
		 LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.Summary
	for rows.Next() {
		s := report.Summary{Version: report.SummaryVersion}
		var elapsed int64
		if err := rows.Scan(&s.RunID, &s.Timestamp, &s.Policy, &s.Seed, &s.Games, &s.MaxIterations, &elapsed, &s.Stats); err != nil {
			return nil, err
		}
		s.Elapsed = time.Duration(elapsed)
		out = append(out, s)
	}
	return out, rows.Err()
}
