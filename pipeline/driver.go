// Package pipeline runs one generation: workspace, collection,
// reconciliation and emission, followed by the optional history and
// notification steps.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"riotapi-schema/db"
	"riotapi-schema/dialect"
	"riotapi-schema/emitter"
	"riotapi-schema/logfields"
	"riotapi-schema/models"
	"riotapi-schema/notify"
	"riotapi-schema/reconcile"
)

// Workspace prepares the output directory
type Workspace interface {
	Prepare() (string, error)
}

// EndpointSource produces the documented endpoints
type EndpointSource interface {
	Collect(ctx context.Context) ([]*models.Endpoint, error)
}

// RegionSource produces the regional hosts
type RegionSource interface {
	Collect(ctx context.Context) ([]models.Region, error)
}

// Reconciler fills missing DTOs in place
type Reconciler interface {
	Reconcile(ctx context.Context, endpoints []*models.Endpoint) *reconcile.Report
}

// Emitter writes the spec artifacts
type Emitter interface {
	Emit(ctx context.Context, dir string, endpoints []*models.Endpoint, regions []models.Region) ([]emitter.Artifact, error)
}

// Recorder stores finished builds
type Recorder interface {
	RecordBuild(ctx context.Context, b db.Build) (*db.Build, error)
}

// Notifier reports run summaries
type Notifier interface {
	Notify(ctx context.Context, s notify.Summary) error
}

// Result is the outcome of a run
type Result struct {
	Dir       string
	Endpoints []*models.Endpoint
	Regions   []models.Region
	Report    *reconcile.Report
	Artifacts []emitter.Artifact
	BuildID   int
	Duration  time.Duration
}

// Driver orchestrates the generation stages
type Driver struct {
	workspace  Workspace
	endpoints  EndpointSource
	regions    RegionSource
	reconciler Reconciler
	emitter    Emitter
	recorder   Recorder
	notifier   Notifier
}

// NewDriver creates a driver with the required stages
func NewDriver(ws Workspace, endpoints EndpointSource, regions RegionSource, reconciler Reconciler, em Emitter) *Driver {
	return &Driver{
		workspace:  ws,
		endpoints:  endpoints,
		regions:    regions,
		reconciler: reconciler,
		emitter:    em,
		notifier:   notify.Nop{},
	}
}

// WithRecorder stores every successful build
func (d *Driver) WithRecorder(r Recorder) *Driver {
	d.recorder = r
	return d
}

// WithNotifier reports every run, successful or not
func (d *Driver) WithNotifier(n Notifier) *Driver {
	if n == nil {
		n = notify.Nop{}
	}
	d.notifier = n
	return d
}

// Run executes one generation. Fetch, parse and write failures fail the
// run; recording and notification failures are only logged.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result, err := d.generate(ctx)
	result.Duration = time.Since(start)

	if err != nil {
		slog.Error("Generation failed", logfields.Error(err), logfields.DurationMS(result.Duration.Milliseconds()))
		d.notify(ctx, notify.Summary{Duration: result.Duration, Err: err})
		return result, err
	}

	if d.recorder != nil {
		d.record(ctx, result)
	}

	summary := notify.Summary{
		Endpoints: len(result.Endpoints),
		Regions:   len(result.Regions),
		Artifacts: len(result.Artifacts),
		Gaps:      result.Report.Gaps,
		Duration:  result.Duration,
	}
	d.notify(ctx, summary)

	slog.Info("Generation complete",
		logfields.Count(len(result.Artifacts)),
		logfields.Path(result.Dir),
		logfields.DurationMS(result.Duration.Milliseconds()))
	return result, nil
}

func (d *Driver) generate(ctx context.Context) (*Result, error) {
	result := &Result{}

	dir, err := d.workspace.Prepare()
	if err != nil {
		return result, fmt.Errorf("failed to prepare workspace: %w", err)
	}
	result.Dir = dir

	slog.Info("Collecting endpoints and regions", logfields.Stage("collect"))
	endpoints, regions, err := d.collect(ctx)
	if err != nil {
		return result, err
	}
	result.Endpoints = endpoints
	result.Regions = regions

	slog.Info("Reconciling DTOs", logfields.Stage("reconcile"), logfields.Count(len(endpoints)))
	result.Report = d.reconciler.Reconcile(ctx, endpoints)

	slog.Info("Writing artifacts", logfields.Stage("emit"), logfields.Path(dir))
	artifacts, err := d.emitter.Emit(ctx, dir, endpoints, regions)
	result.Artifacts = artifacts
	if err != nil {
		return result, fmt.Errorf("failed to emit spec: %w", err)
	}
	return result, nil
}

// collect runs endpoint and region collection concurrently
func (d *Driver) collect(ctx context.Context) ([]*models.Endpoint, []models.Region, error) {
	var (
		wg          sync.WaitGroup
		endpoints   []*models.Endpoint
		regions     []models.Region
		endpointErr error
		regionErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		endpoints, endpointErr = d.endpoints.Collect(ctx)
	}()
	go func() {
		defer wg.Done()
		regions, regionErr = d.regions.Collect(ctx)
	}()
	wg.Wait()

	if endpointErr != nil {
		endpointErr = fmt.Errorf("failed to collect endpoints: %w", endpointErr)
	}
	if regionErr != nil {
		regionErr = fmt.Errorf("failed to collect regions: %w", regionErr)
	}
	if err := errors.Join(endpointErr, regionErr); err != nil {
		return nil, nil, err
	}
	return endpoints, regions, nil
}

func (d *Driver) record(ctx context.Context, result *Result) {
	specPath := filepath.Join(result.Dir, dialect.OpenAPI3Name+".min.json")
	spec, err := os.ReadFile(specPath)
	if err != nil {
		slog.Warn("Failed to read build for history", logfields.Path(specPath), logfields.Error(err))
		return
	}

	build, err := d.recorder.RecordBuild(ctx, db.Build{
		Endpoints: len(result.Endpoints),
		Regions:   len(result.Regions),
		DtoGaps:   len(result.Report.Gaps),
		SpecJSON:  spec,
	})
	if err != nil {
		slog.Warn("Failed to record build", logfields.Error(err))
		return
	}
	result.BuildID = build.ID
	slog.Info("Recorded build", slog.Int("build_id", build.ID))
}

func (d *Driver) notify(ctx context.Context, s notify.Summary) {
	if err := d.notifier.Notify(ctx, s); err != nil {
		slog.Warn("Failed to send notification", logfields.Error(err))
	}
}
