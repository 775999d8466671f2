package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/shale/pkg/object"
)

// lookupPath resolves a slash-separated path inside the tree that h peels
// to. An empty path names the tree itself.
func (r *Repo) lookupPath(h object.Hash, relPath string) (object.Hash, error) {
	current, err := r.peel(h, object.TypeTree, true)
	if err != nil {
		return "", err
	}
	relPath = strings.Trim(relPath, "/")
	if relPath == "" {
		return current, nil
	}

	parts := strings.Split(relPath, "/")
	for i, part := range parts {
		treeObj, err := r.Store.ReadTree(current)
		if err != nil {
			return "", fmt.Errorf("read tree %s: %w", current, err)
		}

		var (
			entry object.TreeEntry
			found bool
		)
		for _, te := range treeObj.Entries {
			if te.Path == part {
				entry = te
				found = true
				break
			}
		}
		if !found {
			return "", fmt.Errorf("%w: path %q not in tree", ErrRevisionNotFound, relPath)
		}
		if i < len(parts)-1 && !entry.IsDir() {
			return "", fmt.Errorf("%w: %q is not a directory", ErrRevisionNotFound, strings.Join(parts[:i+1], "/"))
		}
		current = entry.Hash
	}
	return current, nil
}
