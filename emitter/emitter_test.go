package emitter

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"riotapi-schema/dialect"
	"riotapi-schema/models"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func fixedEmitter() *Emitter {
	e := NewEmitter()
	e.Now = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }
	return e
}

func testEndpoints() []*models.Endpoint {
	return []*models.Endpoint{
		{
			Name:        "match",
			Description: "Match APIs",
			Operations: []models.Operation{{
				ID: "getMatch", Method: "GET", Path: "/lol/match/v5/matches/{matchId}", ReturnType: "MatchDto",
				Parameters: []models.Parameter{{Name: "matchId", In: models.InPath, Type: "string"}},
				Errors:     []models.ResponseError{{Code: 404, Reason: "Data not found"}},
			}},
			Dtos: []models.Dto{{Name: "MatchDto", Fields: []models.Field{
				{Name: "gameId", Type: "long"},
				{Name: "version", Type: "string", Description: "Game version, e.g. 14.1"},
			}}},
		},
		{Name: "account", Description: "Account APIs"},
	}
}

var testRegions = []models.Region{{Code: "NA1", Values: map[string]string{"host": "na1.api.riotgames.com"}}}

func TestBuildDocument(t *testing.T) {
	doc := fixedEmitter().BuildDocument(testEndpoints(), testRegions)

	require.Equal(t, "Riot API", doc.Title)
	require.Equal(t, "2026.10.19", doc.Version)
	require.Equal(t, "account", doc.Endpoints[0].Name)
	require.Equal(t, "match", doc.Endpoints[1].Name)
	require.Contains(t, doc.Description, "- `openapi-3.0.0.min.yml` ([download file](../openapi-3.0.0.min.yml), [view ui](?openapi-3.0.0.min.yml))")
	require.Contains(t, doc.Description, "`swaggerspec-2.0.json`")
	require.Contains(t, doc.Description, "## Source Code\nSource code on [GitHub](https://github.com/MingweiSamuel/riotapi-schema). Pull requests welcome!\n")
	require.Contains(t, doc.Description, "## Automatically Generated\n")
	require.True(t, strings.HasSuffix(doc.Description, "***\n"))
}

func TestEmit_WritesEveryArtifact(t *testing.T) {
	dir := t.TempDir()
	e := fixedEmitter()

	artifacts, err := e.Emit(context.Background(), dir, testEndpoints(), testRegions)
	require.NoError(t, err)
	require.Len(t, artifacts, 8)

	names := e.ArtifactNames()
	require.Len(t, names, 8)
	for _, name := range names {
		require.FileExists(t, filepath.Join(dir, name))
	}
}

func TestEmit_PrettyAndMinimizedAreEquivalent(t *testing.T) {
	dir := t.TempDir()
	_, err := fixedEmitter().Emit(context.Background(), dir, testEndpoints(), testRegions)
	require.NoError(t, err)

	for _, d := range dialect.All() {
		t.Run(d.Name(), func(t *testing.T) {
			var pretty, min any
			require.NoError(t, json.Unmarshal(readFile(t, dir, d.Name()+".json"), &pretty))
			require.NoError(t, json.Unmarshal(readFile(t, dir, d.Name()+".min.json"), &min))
			require.Equal(t, pretty, min)

			var prettyYAML, minYAML any
			require.NoError(t, yaml.Unmarshal(readFile(t, dir, d.Name()+".yml"), &prettyYAML))
			require.NoError(t, yaml.Unmarshal(readFile(t, dir, d.Name()+".min.yml"), &minYAML))
			require.Equal(t, prettyYAML, minYAML)

			// YAML and JSON carry the same content
			asJSON, err := json.Marshal(prettyYAML)
			require.NoError(t, err)
			var roundTrip any
			require.NoError(t, json.Unmarshal(asJSON, &roundTrip))
			require.Equal(t, pretty, roundTrip)
		})
	}
}

func TestEmit_Layout(t *testing.T) {
	dir := t.TempDir()
	_, err := fixedEmitter().Emit(context.Background(), dir, testEndpoints(), testRegions)
	require.NoError(t, err)

	prettyJSON := string(readFile(t, dir, "openapi-3.0.0.json"))
	require.True(t, strings.HasPrefix(prettyJSON, "{\n  \""))
	require.NotContains(t, string(readFile(t, dir, "openapi-3.0.0.min.json")), "\n")

	prettyYAML := string(readFile(t, dir, "openapi-3.0.0.yml"))
	require.Contains(t, prettyYAML, "\nopenapi: 3.0.0\n")
	require.Contains(t, prettyYAML, "\n  title: Riot API\n")

	minYAML := strings.TrimSpace(string(readFile(t, dir, "openapi-3.0.0.min.yml")))
	require.True(t, strings.HasPrefix(minYAML, "{"))
	require.True(t, strings.HasSuffix(minYAML, "}"))
}

func TestEmit_WriteFailuresAreJoined(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	artifacts, err := fixedEmitter().Emit(context.Background(), missing, testEndpoints(), testRegions)
	require.Error(t, err)
	require.Empty(t, artifacts)

	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	require.True(t, errors.Is(err, os.ErrNotExist))
	require.Equal(t, 8, strings.Count(err.Error(), "failed to write"))
}

func TestEmit_OneFailedArtifactKeepsTheOthers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "openapi-3.0.0.yml"), 0o755))
	e := fixedEmitter()

	artifacts, err := e.Emit(context.Background(), dir, testEndpoints(), testRegions)
	require.Error(t, err)
	require.Len(t, artifacts, 7)

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	require.Equal(t, filepath.Join(dir, "openapi-3.0.0.yml"), writeErr.Path)
	require.Equal(t, 1, strings.Count(err.Error(), "failed to write"))

	for _, name := range e.ArtifactNames() {
		if name == "openapi-3.0.0.yml" {
			require.DirExists(t, filepath.Join(dir, name))
			continue
		}
		require.NotEmpty(t, readFile(t, dir, name), name)
	}
}

func TestEmit_JSONIsNotHTMLEscaped(t *testing.T) {
	dir := t.TempDir()
	endpoints := testEndpoints()
	endpoints[1].Description = "Account <b>APIs</b> & more"

	_, err := fixedEmitter().Emit(context.Background(), dir, endpoints, testRegions)
	require.NoError(t, err)

	for _, name := range []string{"openapi-3.0.0.json", "openapi-3.0.0.min.json", "swaggerspec-2.0.json", "swaggerspec-2.0.min.json"} {
		data := string(readFile(t, dir, name))
		require.Contains(t, data, "Account <b>APIs</b> & more", name)
		require.NotContains(t, data, `\u003c`, name)
		require.False(t, strings.HasSuffix(data, "\n"), name)
	}
}

type brokenDialect struct{}

func (brokenDialect) Name() string { return "broken" }

func (brokenDialect) ToSpec(*models.SpecDocument) (any, error) {
	return nil, errors.New("unsupported")
}

func TestEmit_DialectFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()

	_, err := NewEmitter(dialect.NewOpenAPI3(), brokenDialect{}).Emit(context.Background(), dir, testEndpoints(), nil)
	require.ErrorContains(t, err, "failed to build broken")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func readFile(t *testing.T, dir, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return data
}
