package db

import (
	"context"
	"errors"
	"os"
	"testing"

	"riotapi-schema/snapshot"

	"github.com/stretchr/testify/require"
)

// openTestDB connects to DATABASE_URL and isolates the test in a temporary schema
func openTestDB(t *testing.T) *DB {
	t.Helper()
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := NewDB(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.conn.ExecContext(ctx, `TRUNCATE builds`)
	require.NoError(t, err)
	return db
}

func TestNewDB_EmptyURL(t *testing.T) {
	_, err := NewDB(context.Background(), "")
	require.Error(t, err)
}

func TestDB_PriorBuildEmpty(t *testing.T) {
	db := openTestDB(t)

	_, err := db.PriorBuild(context.Background())
	require.True(t, errors.Is(err, snapshot.ErrNoPriorBuild))
}

func TestDB_RecordAndPriorBuild(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.RecordBuild(ctx, Build{Endpoints: 1, SpecJSON: []byte(`{"components":{"schemas":{"match.OldDto":{}}}}`)})
	require.NoError(t, err)
	latest, err := db.RecordBuild(ctx, Build{
		Endpoints: 2,
		Regions:   3,
		DtoGaps:   1,
		SpecJSON:  []byte(`{"components":{"schemas":{"match.MatchDto":{"type":"object"}}}}`),
	})
	require.NoError(t, err)
	require.NotZero(t, latest.ID)

	prior, err := db.PriorBuild(ctx)
	require.NoError(t, err)
	raw, ok := prior.Lookup("match.MatchDto")
	require.True(t, ok)
	require.JSONEq(t, `{"type":"object"}`, string(raw))

	builds, err := db.ListBuilds(ctx, 10)
	require.NoError(t, err)
	require.Len(t, builds, 2)
	require.Equal(t, latest.ID, builds[0].ID)
	require.Equal(t, 1, builds[0].DtoGaps)
}

func TestDB_RecordBuildRequiresSpec(t *testing.T) {
	_, err := (&DB{}).RecordBuild(context.Background(), Build{Endpoints: 1})
	require.ErrorContains(t, err, "no spec document")
}
