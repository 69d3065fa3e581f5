package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"riotapi-schema/snapshot"
)

// Build represents one published generation run
type Build struct {
	ID        int
	CreatedAt time.Time
	Endpoints int
	Regions   int
	DtoGaps   int
	SpecJSON  []byte // minimized OpenAPI 3 document
}

// RecordBuild stores a finished build and returns it with its ID and timestamp
func (db *DB) RecordBuild(ctx context.Context, b Build) (*Build, error) {
	if len(b.SpecJSON) == 0 {
		return nil, fmt.Errorf("build has no spec document")
	}

	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO builds (endpoints, regions, dto_gaps, spec_json)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, b.Endpoints, b.Regions, b.DtoGaps, string(b.SpecJSON)).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record build: %w", err)
	}
	return &b, nil
}

// LatestBuild returns the most recent build, or snapshot.ErrNoPriorBuild
func (db *DB) LatestBuild(ctx context.Context) (*Build, error) {
	var b Build
	var spec string
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, created_at, endpoints, regions, dto_gaps, spec_json
		FROM builds
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(&b.ID, &b.CreatedAt, &b.Endpoints, &b.Regions, &b.DtoGaps, &spec)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, snapshot.ErrNoPriorBuild
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest build: %w", err)
	}

	b.SpecJSON = []byte(spec)
	return &b, nil
}

// ListBuilds returns the most recent builds without their documents
func (db *DB) ListBuilds(ctx context.Context, limit int) ([]Build, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, created_at, endpoints, regions, dto_gaps
		FROM builds
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		var b Build
		if err := rows.Scan(&b.ID, &b.CreatedAt, &b.Endpoints, &b.Regions, &b.DtoGaps); err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	return builds, rows.Err()
}

// PriorBuild implements the reconcile.SnapshotStore interface using the
// latest recorded build
func (db *DB) PriorBuild(ctx context.Context) (*snapshot.Snapshot, error) {
	b, err := db.LatestBuild(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Parse(b.SpecJSON)
}
