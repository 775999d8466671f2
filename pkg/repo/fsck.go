package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/shale/pkg/object"
)

// FsckReport is the result of a connectivity and integrity check.
type FsckReport struct {
	Refs        []Ref         // refs that were used as roots
	Dangling    []string      // refs whose target chain ends at a missing ref
	Reachable   int           // present objects reachable from the roots
	Missing     []object.Hash // referenced but absent objects
	Corrupt     []object.Hash // objects that do not decode or hash to their name
	Unreachable []object.Hash // stored objects no root reaches
}

// OK reports whether every reachable object is present and every stored
// object is intact.
func (f *FsckReport) OK() bool {
	return len(f.Missing) == 0 && len(f.Corrupt) == 0
}

// Fsck walks the object graph from HEAD and every ref under refs/, reports
// objects that are referenced but missing, and rehashes every stored
// object.
func (r *Repo) Fsck() (*FsckReport, error) {
	report := &FsckReport{}
	roots, err := r.collectRoots(report)
	if err != nil {
		return nil, fmt.Errorf("fsck: %w", err)
	}

	reach, err := r.Store.Reachable(roots)
	if err != nil {
		return nil, fmt.Errorf("fsck: %w", err)
	}
	report.Reachable = len(reach.Objects)
	report.Missing = reach.Missing

	verify, err := r.Store.Verify()
	if err != nil {
		return nil, fmt.Errorf("fsck: %w", err)
	}
	report.Corrupt = mergeHashes(verify.Corrupt, reach.Corrupt)

	if report.Unreachable, err = r.unreachable(reach.Objects); err != nil {
		return nil, fmt.Errorf("fsck: %w", err)
	}
	return report, nil
}

// collectRoots returns the hashes of HEAD and every ref, filling in the
// report's ref lists.
func (r *Repo) collectRoots(report *FsckReport) ([]object.Hash, error) {
	dir, err := r.ListRefs("refs")
	if err != nil {
		return nil, err
	}
	report.Refs = dir.Flatten()
	collectDangling(dir, &report.Dangling)

	roots := make([]object.Hash, 0, len(report.Refs)+1)
	for _, ref := range report.Refs {
		roots = append(roots, ref.Hash)
	}
	head, ok, err := r.ResolveRef("HEAD")
	if err != nil {
		return nil, err
	}
	if ok {
		report.Refs = append([]Ref{{Path: "HEAD", Hash: head}}, report.Refs...)
		roots = append(roots, head)
	}
	return roots, nil
}

func (r *Repo) unreachable(reachable map[object.Hash]struct{}) ([]object.Hash, error) {
	all, err := r.Store.ListObjects()
	if err != nil {
		return nil, err
	}
	var out []object.Hash
	for _, h := range all {
		if _, ok := reachable[h]; !ok {
			out = append(out, h)
		}
	}
	return out, nil
}

// mergeHashes returns the sorted union of two hash lists.
func mergeHashes(a, b []object.Hash) []object.Hash {
	seen := make(map[object.Hash]struct{}, len(a)+len(b))
	var out []object.Hash
	for _, list := range [][]object.Hash{a, b} {
		for _, h := range list {
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func collectDangling(d *RefDir, out *[]string) {
	for _, n := range d.Entries {
		if n.Dir != nil {
			collectDangling(n.Dir, out)
			continue
		}
		if !n.Present {
			*out = append(*out, n.Path)
		}
	}
}
