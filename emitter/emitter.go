// Package emitter writes every dialect of the generated specification in
// pretty and minimized JSON and YAML.
package emitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"riotapi-schema/dialect"
	"riotapi-schema/logfields"
	"riotapi-schema/models"
)

const (
	DefaultTitle     = "Riot API"
	DefaultSourceURL = "https://github.com/MingweiSamuel/riotapi-schema"
)

// WriteError reports an artifact that could not be persisted
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Artifact is one file written by Emit
type Artifact struct {
	Dialect string
	Name    string
	Path    string
	Size    int
}

// Emitter renders a SpecDocument through every registered dialect
type Emitter struct {
	dialects  []dialect.Dialect
	Title     string
	SourceURL string
	Now       func() time.Time
}

// NewEmitter creates an Emitter for the given dialects, defaulting to dialect.All
func NewEmitter(dialects ...dialect.Dialect) *Emitter {
	if len(dialects) == 0 {
		dialects = dialect.All()
	}
	return &Emitter{dialects: dialects, Title: DefaultTitle, SourceURL: DefaultSourceURL, Now: time.Now}
}

// ArtifactNames lists the file names Emit writes, in dialect order
func (e *Emitter) ArtifactNames() []string {
	var names []string
	for _, d := range e.dialects {
		for _, f := range formats {
			names = append(names, d.Name()+f.suffix)
		}
	}
	return names
}

// BuildDocument assembles the dialect-agnostic document shared by every
// dialect. Endpoints are sorted by name so output does not depend on
// collection order.
func (e *Emitter) BuildDocument(endpoints []*models.Endpoint, regions []models.Region) *models.SpecDocument {
	sorted := append([]*models.Endpoint(nil), endpoints...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	return &models.SpecDocument{
		Title:       e.Title,
		Version:     e.Now().UTC().Format("2006.01.02"),
		Description: description(e.ArtifactNames(), e.SourceURL),
		Endpoints:   sorted,
		Regions:     regions,
	}
}

func description(names []string, sourceURL string) string {
	var b strings.Builder
	b.WriteString("OpenAPI/Swagger version of the [Riot API](https://developer.riotgames.com/). Automatically generated daily.\n")
	b.WriteString("## Download OpenAPI Spec File\n")
	b.WriteString("The following versions of the Riot API spec file are available:\n")
	for _, n := range names {
		fmt.Fprintf(&b, "- `%s` ([download file](../%s), [view ui](?%s))\n", n, n, n)
	}
	if sourceURL != "" {
		b.WriteString("## Source Code\n")
		fmt.Fprintf(&b, "Source code on [GitHub](%s). Pull requests welcome!\n", sourceURL)
	}
	b.WriteString("## Automatically Generated\n")
	b.WriteString("Rebuilt daily by `riotapi-schema watch`.\n")
	b.WriteString("***\n")
	return b.String()
}

// Emit writes every dialect x format artifact into dir concurrently. A
// failed write does not stop or roll back the others; all failures are
// returned joined as *WriteError values.
func (e *Emitter) Emit(ctx context.Context, dir string, endpoints []*models.Endpoint, regions []models.Region) ([]Artifact, error) {
	doc := e.BuildDocument(endpoints, regions)

	type job struct {
		dialect string
		tree    any
		format  format
	}
	var jobs []job
	for _, d := range e.dialects {
		tree, err := d.ToSpec(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s: %w", d.Name(), err)
		}
		for _, f := range formats {
			jobs = append(jobs, job{dialect: d.Name(), tree: tree, format: f})
		}
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		artifacts []Artifact
		errs      []error
	)
	for _, j := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			artifact, err := writeArtifact(ctx, dir, j.dialect, j.tree, j.format)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("Failed to write artifact", logfields.Dialect(j.dialect), logfields.Error(err))
				errs = append(errs, err)
				return
			}
			slog.Debug("Wrote artifact", logfields.Path(artifact.Path), logfields.Dialect(j.dialect))
			artifacts = append(artifacts, artifact)
		}()
	}
	wg.Wait()

	sort.Slice(artifacts, func(i, k int) bool { return artifacts[i].Name < artifacts[k].Name })
	return artifacts, errors.Join(errs...)
}

func writeArtifact(ctx context.Context, dir, dialectName string, tree any, f format) (Artifact, error) {
	name := dialectName + f.suffix
	path := filepath.Join(dir, name)

	if err := ctx.Err(); err != nil {
		return Artifact{}, &WriteError{Path: path, Err: err}
	}
	data, err := f.encode(tree)
	if err != nil {
		return Artifact{}, &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Artifact{}, &WriteError{Path: path, Err: err}
	}
	return Artifact{Dialect: dialectName, Name: name, Path: path, Size: len(data)}, nil
}
