package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/shale/pkg/object"
)

// CreateBranch creates refs/heads/<name> pointing at target. Returns an
// error if the branch already exists.
func (r *Repo) CreateBranch(name string, target object.Hash) error {
	refName := "refs/heads/" + strings.TrimSpace(name)
	if err := r.updateRef(refName, target, "branch: created from "+target.Short(), ""); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return fmt.Errorf("create branch: branch %q already exists", name)
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// ListBranches returns branches sorted by name with their commit hashes.
func (r *Repo) ListBranches() ([]Ref, error) {
	dir, err := r.ListRefs("refs/heads")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	refs := dir.Flatten()
	for i := range refs {
		refs[i].Path = strings.TrimPrefix(refs[i].Path, "refs/heads/")
	}
	return refs, nil
}

// CurrentBranch returns the branch name if HEAD is a symbolic ref
// (e.g. "ref: refs/heads/master" → "master"). If HEAD is detached it
// returns "".
func (r *Repo) CurrentBranch() (string, error) {
	head, symbolic, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	if !symbolic {
		return "", nil
	}
	return strings.TrimPrefix(head, "refs/heads/"), nil
}
