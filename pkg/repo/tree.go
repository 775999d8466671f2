package repo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/odvcencio/shale/pkg/object"
)

// TreeListEntry is one line of a tree listing.
type TreeListEntry struct {
	Mode string
	Type object.ObjectType
	Hash object.Hash
	Path string // slash-separated, relative to the listed tree
}

// WriteTreeFromDir snapshots dir into the object store and returns the root
// tree hash. The .git directory is skipped, as are empty directories and
// file types a tree cannot hold. Symbolic links are stored as blobs holding
// the link target.
func (r *Repo) WriteTreeFromDir(dir string) (object.Hash, error) {
	h, empty, err := r.writeTreeDir(dir)
	if err != nil {
		return "", err
	}
	if empty {
		return r.Store.Write(&object.Tree{})
	}
	return h, nil
}

// writeTreeDir returns empty=true when dir held nothing worth storing.
func (r *Repo) writeTreeDir(dir string) (h object.Hash, empty bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, fmt.Errorf("write tree %q: %w", dir, err)
	}

	tree := &object.Tree{}
	for _, d := range entries {
		name := d.Name()
		if name == ".git" {
			continue
		}
		full := filepath.Join(dir, name)
		info, err := os.Lstat(full)
		if err != nil {
			return "", false, fmt.Errorf("write tree %q: %w", full, err)
		}
		mode, ok := modeFromFileInfo(info)
		if !ok {
			continue
		}

		var data []byte
		switch mode {
		case object.TreeModeDir:
			sub, subEmpty, err := r.writeTreeDir(full)
			if err != nil {
				return "", false, err
			}
			if subEmpty {
				continue
			}
			tree.Entries = append(tree.Entries, object.TreeEntry{Mode: mode, Path: name, Hash: sub})
			continue
		case object.TreeModeSymlink:
			target, err := os.Readlink(full)
			if err != nil {
				return "", false, fmt.Errorf("write tree %q: %w", full, err)
			}
			data = []byte(target)
		default:
			if data, err = os.ReadFile(full); err != nil {
				return "", false, fmt.Errorf("write tree %q: %w", full, err)
			}
		}
		bh, err := r.Store.Write(&object.Blob{Data: data})
		if err != nil {
			return "", false, fmt.Errorf("write tree %q: %w", full, err)
		}
		tree.Entries = append(tree.Entries, object.TreeEntry{Mode: mode, Path: name, Hash: bh})
	}

	if len(tree.Entries) == 0 {
		return "", true, nil
	}
	h, err = r.Store.Write(tree)
	if err != nil {
		return "", false, fmt.Errorf("write tree %q: %w", dir, err)
	}
	return h, false, nil
}

// LsTree lists the entries of the tree named by h. With recursive set,
// subtrees are expanded in place instead of being listed.
func (r *Repo) LsTree(h object.Hash, recursive bool) ([]TreeListEntry, error) {
	return r.lsTreeRec(h, "", recursive, 0)
}

func (r *Repo) lsTreeRec(h object.Hash, prefix string, recursive bool, depth int) ([]TreeListEntry, error) {
	if depth >= maxTreeDepth {
		return nil, fmt.Errorf("ls-tree: %w: %q", ErrTreeTooDeep, prefix)
	}
	treeObj, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("ls-tree: read %s: %w", h, err)
	}

	var result []TreeListEntry
	for _, entry := range treeObj.Entries {
		fullPath := entry.Path
		if prefix != "" {
			fullPath = path.Join(prefix, entry.Path)
		}
		entryType := typeForMode(entry.Mode)
		if recursive && entryType == object.TypeTree {
			sub, err := r.lsTreeRec(entry.Hash, fullPath, recursive, depth+1)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
			continue
		}
		result = append(result, TreeListEntry{
			Mode: entry.Mode,
			Type: entryType,
			Hash: entry.Hash,
			Path: fullPath,
		})
	}
	return result, nil
}

// typeForMode derives an entry's object type from its mode, as git does:
// 04xxxx trees, 10xxxx and 12xxxx blobs, 16xxxx commits.
func typeForMode(mode string) object.ObjectType {
	mode = object.NormalizeMode(mode)
	if len(mode) < 2 {
		return object.TypeBlob
	}
	switch mode[:2] {
	case "04":
		return object.TypeTree
	case "16":
		return object.TypeCommit
	default:
		return object.TypeBlob
	}
}
