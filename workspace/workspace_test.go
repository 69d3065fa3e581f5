package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestManager_PrepareCreatesOutput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "swagger-ui-dist", "index.html"), "<html></html>")
	writeFile(t, filepath.Join(root, "swagger-ui-dist", "css", "ui.css"), "body{}")

	dir, err := NewManager(root, "", "").Prepare()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "out"), dir)

	data, err := os.ReadFile(filepath.Join(dir, "tool", "index.html"))
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(data))
	require.FileExists(t, filepath.Join(dir, "tool", "css", "ui.css"))
}

func TestManager_PrepareKeepsHiddenEntries(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out")
	writeFile(t, filepath.Join(out, ".git", "HEAD"), "ref: refs/heads/gh-pages")
	writeFile(t, filepath.Join(out, ".nojekyll"), "")
	writeFile(t, filepath.Join(out, "openapi-3.0.0.json"), "{}")
	writeFile(t, filepath.Join(out, "tool", "stale.js"), "")

	mgr := NewManager(root, "out", filepath.Join(root, "missing-viewer"))
	_, err := mgr.Prepare()
	require.NoError(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{".git", ".nojekyll"}, names)
}

func TestManager_PrepareIsRepeatable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "viewer", "index.html"), "v1")
	mgr := NewManager(root, "site", "viewer")

	_, err := mgr.Prepare()
	require.NoError(t, err)
	dir, err := mgr.Prepare()
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "tool", "index.html"))
}

func TestManager_ViewerMustBeDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "viewer"), "not a dir")

	_, err := NewManager(root, "", "viewer").Prepare()
	require.ErrorContains(t, err, "is not a directory")
}
