// Package reconcile repairs DTOs that endpoint detail pages reference but do
// not define, using the previously published build.
package reconcile

import (
	"context"
	"errors"
	"log/slog"

	"riotapi-schema/logfields"
	"riotapi-schema/models"
	"riotapi-schema/snapshot"
)

// SnapshotStore provides the previously published build
type SnapshotStore interface {
	PriorBuild(ctx context.Context) (*snapshot.Snapshot, error)
}

// GapReason explains why a DTO stayed unresolved
type GapReason string

const (
	GapSnapshotUnavailable GapReason = "snapshot unavailable"
	GapNotInSnapshot       GapReason = "not in snapshot"
)

// Gap is a DTO that remains unresolved after reconciliation
type Gap struct {
	Endpoint string
	Dto      string
	Reason   GapReason
}

// FullName returns the fully-qualified DTO name
func (g Gap) FullName() string {
	return g.Endpoint + "." + g.Dto
}

// Report holds the diagnostics of one reconciliation pass
type Report struct {
	Missing     int      // DTO references found unresolved
	Repaired    []string // fully-qualified names injected from the snapshot
	Gaps        []Gap
	SnapshotErr error // set when the snapshot could not be read
}

// Reconciler fills missing DTOs from a SnapshotStore
type Reconciler struct {
	store SnapshotStore
}

// NewReconciler creates a Reconciler. store may be nil, in which case every
// missing DTO is reported as a gap.
func NewReconciler(store SnapshotStore) *Reconciler {
	return &Reconciler{store: store}
}

type missingDto struct {
	endpoint *models.Endpoint
	dtoName  string
}

// Reconcile mutates endpoints in place. The snapshot is read at most once and
// only when at least one DTO is missing. DTOs recovered from the snapshot are
// not themselves checked for missing DTOs.
func (r *Reconciler) Reconcile(ctx context.Context, endpoints []*models.Endpoint) *Report {
	var missing []missingDto
	for _, endpoint := range endpoints {
		for _, name := range endpoint.ListMissingDtos() {
			missing = append(missing, missingDto{endpoint: endpoint, dtoName: name})
		}
	}

	report := &Report{Missing: len(missing)}
	if len(missing) == 0 {
		return report
	}

	prior, err := r.priorBuild(ctx)
	if err != nil {
		slog.Error("FAILED to get previous commit", logfields.Error(err))
		report.SnapshotErr = err
		for _, m := range missing {
			report.addGap(m, GapSnapshotUnavailable)
		}
		return report
	}

	for _, m := range missing {
		fullName := m.endpoint.FullDtoName(m.dtoName)
		slog.Info("Missing DTO", logfields.Dto(fullName))

		raw, ok := prior.Lookup(fullName)
		if !ok {
			report.addGap(m, GapNotInSnapshot)
			continue
		}
		slog.Info("Using previous build version", logfields.Dto(fullName))
		m.endpoint.AddOldDto(m.dtoName, raw)
		report.Repaired = append(report.Repaired, fullName)
	}
	return report
}

func (r *Reconciler) priorBuild(ctx context.Context) (*snapshot.Snapshot, error) {
	if r.store == nil {
		return nil, errors.New("no snapshot store configured")
	}
	return r.store.PriorBuild(ctx)
}

func (rep *Report) addGap(m missingDto, reason GapReason) {
	gap := Gap{Endpoint: m.endpoint.Name, Dto: m.dtoName, Reason: reason}
	if reason == GapNotInSnapshot {
		slog.Warn("FAILED to find dto", logfields.Dto(gap.FullName()))
	}
	rep.Gaps = append(rep.Gaps, gap)
}

// Complete reports whether every missing DTO was repaired
func (rep *Report) Complete() bool {
	return len(rep.Gaps) == 0
}
