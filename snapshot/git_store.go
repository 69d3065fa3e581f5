package snapshot

import (
	"context"
	"fmt"
	"log/slog"

	"riotapi-schema/logfields"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	DefaultRef  = "origin/gh-pages"
	DefaultFile = "openapi-3.0.0.min.json"
)

// GitStore reads the prior build from a file at a named revision of a local repository
type GitStore struct {
	repoPath string
	ref      string
	file     string
}

// NewGitStore creates a GitStore. Empty ref and file fall back to
// origin/gh-pages and openapi-3.0.0.min.json.
func NewGitStore(repoPath, ref, file string) *GitStore {
	if ref == "" {
		ref = DefaultRef
	}
	if file == "" {
		file = DefaultFile
	}
	return &GitStore{repoPath: repoPath, ref: ref, file: file}
}

// PriorBuild implements reconcile.SnapshotStore
func (s *GitStore) PriorBuild(_ context.Context) (*Snapshot, error) {
	repo, err := git.PlainOpenWithOptions(s.repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(s.ref))
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrNoPriorBuild, s.ref, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("get commit object: %w", err)
	}
	file, err := commit.File(s.file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s:%s: %w", ErrNoPriorBuild, s.ref, s.file, err)
	}
	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("read %s:%s: %w", s.ref, s.file, err)
	}

	slog.Debug("Read prior build from git", logfields.Ref(s.ref), logfields.Path(s.file),
		slog.String("commit", hash.String()))
	return Parse([]byte(contents))
}
