package object

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Reachability is the result of a graph walk.
type Reachability struct {
	// Objects holds every present object reached, corrupt ones included.
	Objects map[Hash]struct{}
	// Missing lists referenced hashes absent from the store, sorted.
	Missing []Hash
	// Corrupt lists reached objects that could not be decoded or that
	// reference something that is not a hash, sorted. Their references are
	// not followed.
	Corrupt []Hash
}

// Reachable walks the object graph from roots: commits lead to their tree
// and parents, trees to their entries and tags to their target. Submodule
// entries name commits in another repository and are not followed.
//
// Objects that fail to decode do not stop the walk; they are reported in
// Corrupt. Only I/O failures are returned as errors.
func (s *Store) Reachable(roots []Hash) (*Reachability, error) {
	roots = uniqueNormalizedHashes(roots)
	out := make(map[Hash]struct{}, len(roots))
	missing := make(map[Hash]struct{})
	corrupt := make(map[Hash]struct{})

	stack := make([]Hash, 0, len(roots))
	stack = append(stack, roots...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := out[h]; ok {
			continue
		}
		if _, ok := missing[h]; ok {
			continue
		}

		obj, ok, err := s.Lookup(h)
		if err != nil {
			if !isCorruption(err) {
				return nil, fmt.Errorf("reachable set read %s: %w", h, err)
			}
			s.logger.Warn("corrupt reachable object", zap.String("hash", string(h)), zap.Error(err))
			out[h] = struct{}{}
			corrupt[h] = struct{}{}
			continue
		}
		if !ok {
			missing[h] = struct{}{}
			continue
		}
		out[h] = struct{}{}
		refs := referencedHashes(obj)
		for _, ref := range refs {
			if !IsHash(string(ref)) {
				s.logger.Warn("object references an invalid hash", zap.String("hash", string(h)), zap.String("ref", string(ref)))
				corrupt[h] = struct{}{}
				refs = nil
				break
			}
		}
		stack = append(stack, refs...)
	}

	return &Reachability{
		Objects: out,
		Missing: sortedHashes(missing),
		Corrupt: sortedHashes(corrupt),
	}, nil
}

func isCorruption(err error) bool {
	return errors.Is(err, ErrMalformedObject) ||
		errors.Is(err, ErrUnknownObjectType) ||
		errors.Is(err, ErrInvalidHash)
}

func sortedHashes(set map[Hash]struct{}) []Hash {
	list := make([]Hash, 0, len(set))
	for h := range set {
		list = append(list, h)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

func referencedHashes(obj Object) []Hash {
	switch o := obj.(type) {
	case *Tag:
		return []Hash{o.Object()}
	case *Commit:
		refs := make([]Hash, 0, 1+len(o.Values("parent")))
		refs = append(refs, o.TreeHash())
		refs = append(refs, o.Parents()...)
		return refs
	case *Tree:
		refs := make([]Hash, 0, len(o.Entries))
		for _, e := range o.Entries {
			if e.IsSubmodule() {
				continue
			}
			refs = append(refs, e.Hash)
		}
		return refs
	default:
		return nil
	}
}

func uniqueNormalizedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.TrimSpace(string(h)))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
