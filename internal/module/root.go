package module

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// RootNotFoundError is returned when no root directory was configured and
// none could be discovered.
type RootNotFoundError struct {
	Start string
	Err   error
}

func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("no root directory given and %s is not inside a git worktree: %v", e.Start, e.Err)
}

func (e *RootNotFoundError) Unwrap() error {
	return e.Err
}

// FindRootDir walks up from start to the enclosing git worktree and returns
// its top-level directory.
func FindRootDir(start string) (string, error) {
	repo, err := git.PlainOpenWithOptions(start, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return "", &RootNotFoundError{Start: start, Err: err}
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", &RootNotFoundError{Start: start, Err: err}
	}

	return worktree.Filesystem.Root(), nil
}
