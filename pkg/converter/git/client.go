package git

import (
	"errors"
	"fmt"
)

// ErrGitOperation indicates a failure while reading repository state. It might be
// due to the path not being inside a repository or to an unreadable HEAD.
// Implementations wrap underlying errors with this variable (see Errorf) so callers
// can check with errors.Is(err, ErrGitOperation).
var ErrGitOperation = errors.New("git operation failed")

// Revision describes the state of the repository that holds the source tree.
type Revision struct {
	// Commit is the full HEAD hash; empty for a repository without commits.
	Commit string
	// Branch is the short name of the checked-out branch; empty on a detached HEAD.
	Branch string
	// Dirty reports uncommitted changes in the worktree.
	Dirty bool
}

// RevisionReader reads the revision of the repository containing a path. The
// revision is recorded in the run report so converted pages can be traced back
// to the documentation commit they came from. Implementations should return an
// error wrapping ErrGitOperation when the path is not inside a repository.
type RevisionReader interface {
	ReadRevision(path string) (Revision, error)
}

// Errorf returns a formatted error that wraps ErrGitOperation.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrGitOperation}, args...)...)
}
