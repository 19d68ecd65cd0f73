package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/warsim/game"
	"github.com/signalnine/warsim/report"
	"github.com/signalnine/warsim/simulation"
)

// openTestDB connects to WARSIM_TEST_DATABASE_URL, skipping when it is unset
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("WARSIM_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("WARSIM_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Ping(ctx))
	require.NoError(t, Migrate(ctx, db))
	return db
}

func TestSaveLoadRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	records, err := simulation.RunBatch(simulation.Config{Games: 25, Policy: game.InOrder{}, Seed: 99, MaxIterations: 3000})
	require.NoError(t, err)
	s := report.Summary{
		Policy:        "in-order",
		Seed:          99,
		Games:         25,
		MaxIterations: 3000,
		Elapsed:       1500 * time.Millisecond,
		Stats:         simulation.Aggregate(records),
	}

	id, err := db.SaveRun(ctx, s, records)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	t.Cleanup(func() { db.Exec(context.Background(), `DELETE FROM runs WHERE id = $1::uuid`, id) })

	loaded, err := db.LoadRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, loaded.RunID)
	assert.Equal(t, "in-order", loaded.Policy)
	assert.Equal(t, s.Elapsed, loaded.Elapsed)
	assert.Equal(t, s.Stats, loaded.Stats)

	games, err := db.LoadGames(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, records, games)

	runs, err := db.ListRuns(ctx, 100)
	require.NoError(t, err)
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.RunID
	}
	assert.Contains(t, ids, id)
}

func TestLoadRun_NotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.LoadRun(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestParseRunID(t *testing.T) {
	_, err := parseRunID("not-a-uuid")
	assert.ErrorIs(t, err, ErrRunNotFound)

	id := uuid.New()
	got, err := parseRunID(id.String())
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.Equal(t, [16]byte(id), got.Bytes)
}
