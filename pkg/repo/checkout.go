package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/odvcencio/shale/pkg/object"
)

// maxTreeDepth bounds how deeply checkout descends into nested trees.
const maxTreeDepth = 256

var (
	// ErrTargetNotEmpty is returned when the checkout target directory
	// already has entries.
	ErrTargetNotEmpty = errors.New("checkout target is not empty")
	// ErrTreeTooDeep is returned for trees nested deeper than maxTreeDepth.
	ErrTreeTooDeep = errors.New("tree nesting too deep")
)

// SubmoduleEntry records a submodule that checkout left as an empty
// directory.
type SubmoduleEntry struct {
	Path   string
	Commit object.Hash
}

// CheckoutResult summarizes what a checkout materialized.
type CheckoutResult struct {
	Files      int
	Dirs       int
	Symlinks   int
	Submodules []SubmoduleEntry
}

// Checkout materializes the tree named by rev into dir. rev may name a
// tree, or a commit or tag that peels to one.
func (r *Repo) Checkout(rev, dir string) (*CheckoutResult, error) {
	treeHash, err := r.FindObject(rev, object.TypeTree, true)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	tree, err := r.Store.ReadTree(treeHash)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	return r.CheckoutTree(tree, dir)
}

// CheckoutTree writes tree into dir, which must be empty or absent. Entries
// are written in stored order: subtrees become directories, blobs become
// files (mode 100755 files are executable), symlink entries become
// symbolic links and submodule entries become empty directories recorded
// in the result.
func (r *Repo) CheckoutTree(tree *object.Tree, dir string) (*CheckoutResult, error) {
	if err := prepareCheckoutDir(dir); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	res := &CheckoutResult{}
	if err := r.checkoutTree(tree, dir, "", 0, res); err != nil {
		return res, fmt.Errorf("checkout: %w", err)
	}
	r.logger.Debug("checkout complete",
		zap.String("dir", dir),
		zap.Int("files", res.Files),
		zap.Int("dirs", res.Dirs),
		zap.Int("symlinks", res.Symlinks),
		zap.Int("submodules", len(res.Submodules)),
	)
	return res, nil
}

func prepareCheckoutDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("mkdir %q: %w", dir, err)
			}
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: %q", ErrTargetNotEmpty, dir)
	}
	return nil
}

func (r *Repo) checkoutTree(tree *object.Tree, dir, prefix string, depth int, res *CheckoutResult) error {
	if depth >= maxTreeDepth {
		return fmt.Errorf("%w: %q", ErrTreeTooDeep, prefix)
	}
	for _, e := range tree.Entries {
		if err := validateEntryName(e.Path); err != nil {
			return err
		}
		rel := e.Path
		if prefix != "" {
			rel = prefix + "/" + e.Path
		}
		dest := filepath.Join(dir, e.Path)

		if e.IsSubmodule() {
			if err := os.Mkdir(dest, 0o755); err != nil {
				return fmt.Errorf("mkdir %q: %w", rel, err)
			}
			res.Submodules = append(res.Submodules, SubmoduleEntry{Path: rel, Commit: e.Hash})
			continue
		}

		obj, err := r.Store.Read(e.Hash)
		if err != nil {
			return fmt.Errorf("read %q: %w", rel, err)
		}
		switch o := obj.(type) {
		case *object.Tree:
			if err := os.Mkdir(dest, 0o755); err != nil {
				return fmt.Errorf("mkdir %q: %w", rel, err)
			}
			res.Dirs++
			if err := r.checkoutTree(o, dest, rel, depth+1, res); err != nil {
				return err
			}
		case *object.Blob:
			if e.IsSymlink() {
				if err := os.Symlink(string(o.Data), dest); err != nil {
					return fmt.Errorf("symlink %q: %w", rel, err)
				}
				res.Symlinks++
				continue
			}
			if err := writeNewFile(dest, o.Data, filePermFromMode(e.Mode)); err != nil {
				return fmt.Errorf("write %q: %w", rel, err)
			}
			res.Files++
		default:
			return fmt.Errorf("%q: %w: %s %s", rel, object.ErrUnexpectedObjectKind, obj.Type(), e.Hash)
		}
	}
	return nil
}

// validateEntryName rejects entry names that would escape their directory.
func validateEntryName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\x00") || name == ".git" {
		return fmt.Errorf("%w: unsafe tree entry name %q", object.ErrMalformedObject, name)
	}
	if filepath.Separator != '/' && strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("%w: unsafe tree entry name %q", object.ErrMalformedObject, name)
	}
	return nil
}

func writeNewFile(path string, data []byte, perm os.FileMode) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	_, err = f.Write(data)
	return err
}
