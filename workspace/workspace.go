// Package workspace prepares the output directory a generation run writes into.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"riotapi-schema/logfields"
)

const (
	DefaultOutput    = "out"
	DefaultViewerDir = "swagger-ui-dist"
	ToolDir          = "tool"
)

// Manager owns <root>/<output> for the duration of a run
type Manager struct {
	root      string
	output    string
	viewerDir string
}

// NewManager creates a workspace manager. Empty output and viewerDir fall
// back to DefaultOutput and DefaultViewerDir; a relative viewerDir is
// resolved against root.
func NewManager(root, output, viewerDir string) *Manager {
	if output == "" {
		output = DefaultOutput
	}
	if viewerDir == "" {
		viewerDir = DefaultViewerDir
	}
	if !filepath.IsAbs(viewerDir) {
		viewerDir = filepath.Join(root, viewerDir)
	}
	return &Manager{root: root, output: output, viewerDir: viewerDir}
}

// GetPath returns the output directory
func (m *Manager) GetPath() string {
	return filepath.Join(m.root, m.output)
}

// Prepare creates the output directory if absent, removes every entry whose
// name does not start with "." and copies the viewer assets into tool/.
// A missing viewer directory is logged and skipped.
func (m *Manager) Prepare() (string, error) {
	dir := m.GetPath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read output directory: %w", err)
	}
	removed := 0
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return "", fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		removed++
	}
	slog.Debug("Cleaned output directory", logfields.Path(dir), logfields.Count(removed))

	if err := m.stageViewer(dir); err != nil {
		return "", err
	}
	slog.Info("Prepared workspace", logfields.Path(dir))
	return dir, nil
}

func (m *Manager) stageViewer(dir string) error {
	info, err := os.Stat(m.viewerDir)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Viewer assets not found, skipping", logfields.Path(m.viewerDir))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat viewer assets: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("viewer assets %s is not a directory", m.viewerDir)
	}

	if err := os.CopyFS(filepath.Join(dir, ToolDir), os.DirFS(m.viewerDir)); err != nil {
		return fmt.Errorf("failed to copy viewer assets: %w", err)
	}
	return nil
}
