package repo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/odvcencio/shale/pkg/object"
)

// RefDir mirrors one directory of the refs namespace.
type RefDir struct {
	Name    string    // last path element, e.g. "heads"
	Path    string    // slash path relative to .git/, e.g. "refs/heads"
	Entries []RefNode // sorted by name
}

// RefNode is either a ref file (Dir == nil) or a nested directory.
type RefNode struct {
	Name    string
	Path    string
	Hash    object.Hash
	Present bool // false when a symbolic ref points at a missing ref
	Dir     *RefDir
}

// Ref is one flattened ref.
type Ref struct {
	Path string
	Hash object.Hash
}

// ListRefs walks the ref directory namespace (default "refs") and mirrors
// it as a tree. Entries of each directory are sorted lexicographically.
// A missing namespace yields an empty RefDir.
func (r *Repo) ListRefs(namespace string) (*RefDir, error) {
	namespace = strings.Trim(strings.TrimSpace(namespace), "/")
	if namespace == "" {
		namespace = "refs"
	}
	if err := validateRefName(namespace); err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	dir, err := r.listRefDir(namespace)
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return dir, nil
}

func (r *Repo) listRefDir(name string) (*RefDir, error) {
	out := &RefDir{Name: path.Base(name), Path: name}

	// os.ReadDir returns entries sorted by filename.
	entries, err := os.ReadDir(filepath.Join(r.GitDir, filepath.FromSlash(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, err
	}
	for _, e := range entries {
		child := name + "/" + e.Name()
		if e.IsDir() {
			sub, err := r.listRefDir(child)
			if err != nil {
				return nil, err
			}
			out.Entries = append(out.Entries, RefNode{Name: e.Name(), Path: child, Dir: sub})
			continue
		}
		if strings.HasSuffix(e.Name(), ".lock") {
			continue
		}
		h, ok, err := r.ResolveRef(child)
		if err != nil {
			return nil, err
		}
		out.Entries = append(out.Entries, RefNode{Name: e.Name(), Path: child, Hash: h, Present: ok})
	}
	return out, nil
}

// Flatten returns every ref file below d in depth-first, sorted order.
func (d *RefDir) Flatten() []Ref {
	var out []Ref
	for _, n := range d.Entries {
		if n.Dir != nil {
			out = append(out, n.Dir.Flatten()...)
			continue
		}
		if n.Present {
			out = append(out, Ref{Path: n.Path, Hash: n.Hash})
		}
	}
	return out
}
