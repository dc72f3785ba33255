package git

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	libgit "github.com/gitayam/markdown2dokuwiki/pkg/converter/git"
)

// GoGitClient implements libgit.RevisionReader using go-git.
type GoGitClient struct {
	logger *slog.Logger
}

// NewGoGitClient creates a new GoGitClient.
func NewGoGitClient(loggerHandler slog.Handler) *GoGitClient {
	logger := slog.New(loggerHandler).With(slog.String("component", "gitClient"), slog.String("backend", "go-git"))
	return &GoGitClient{logger: logger}
}

func (c *GoGitClient) openRepo(path string) (*git.Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, libgit.Errorf("failed to get absolute path for '%s': %w", path, err)
	}
	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, libgit.Errorf("repository not found at or above path '%s': %w", absPath, err)
		}
		return nil, libgit.Errorf("failed to open repository at '%s': %w", absPath, err)
	}
	return repo, nil
}

// ReadRevision implements libgit.RevisionReader.
func (c *GoGitClient) ReadRevision(path string) (libgit.Revision, error) {
	repo, err := c.openRepo(path)
	if err != nil {
		return libgit.Revision{}, err
	}

	var rev libgit.Revision
	head, err := repo.Head()
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		c.logger.Debug("Repository has no commits yet", slog.String("path", path))
	case err != nil:
		return libgit.Revision{}, libgit.Errorf("failed to resolve HEAD: %w", err)
	default:
		rev.Commit = head.Hash().String()
		if head.Name().IsBranch() {
			rev.Branch = head.Name().Short()
		}
	}

	worktree, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no worktree to be dirty.
		c.logger.Debug("No worktree available", slog.String("path", path), slog.String("error", err.Error()))
		return rev, nil
	}
	status, err := worktree.Status()
	if err != nil {
		return rev, libgit.Errorf("failed to read worktree status: %w", err)
	}
	rev.Dirty = !status.IsClean()

	c.logger.Debug("Read source revision",
		slog.String("commit", rev.Commit),
		slog.String("branch", rev.Branch),
		slog.Bool("dirty", rev.Dirty))
	return rev, nil
}
