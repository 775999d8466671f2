package repo

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/odvcencio/shale/pkg/object"
)

// MinPrefixLength is the shortest hex prefix FindObject treats as an
// abbreviated hash.
const MinPrefixLength = 4

// maxPeelDepth bounds tag-to-tag chains followed while peeling.
const maxPeelDepth = 16

var (
	// ErrRevisionNotFound is returned when a revision names nothing.
	ErrRevisionNotFound = errors.New("revision not found")
	// ErrAmbiguousRevision is returned when a revision names several
	// distinct objects.
	ErrAmbiguousRevision = errors.New("ambiguous revision")
)

// AmbiguousRevisionError lists the candidates of an ambiguous revision.
type AmbiguousRevisionError struct {
	Name       string
	Candidates []object.Hash
}

func (e *AmbiguousRevisionError) Error() string {
	parts := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		parts[i] = string(c)
	}
	return fmt.Sprintf("%s %q: candidates are %s", ErrAmbiguousRevision, e.Name, strings.Join(parts, ", "))
}

func (e *AmbiguousRevisionError) Is(target error) bool {
	return target == ErrAmbiguousRevision
}

// FindObject maps a revision string to an object hash.
//
// The base name may be HEAD, a full hash, a hash prefix of at least
// MinPrefixLength characters, a ref path ("refs/heads/master") or a short
// ref name looked up under refs/tags, refs/heads and refs/remotes. It may
// be followed by ancestry and peel suffixes (HEAD~2, v1^2, v1^{tree},
// v1^{}) and by ":path" to select a tree entry.
//
// When want is non-empty and follow is true, tags are dereferenced through
// their object header and commits through their tree until an object of
// kind want is reached. With follow false a kind mismatch is an error.
func (r *Repo) FindObject(name string, want object.ObjectType, follow bool) (object.Hash, error) {
	rev, treePath, hasPath := strings.Cut(strings.TrimSpace(name), ":")
	base, ops, err := parseRevision(rev)
	if err != nil {
		return "", err
	}

	h, err := r.resolveBase(base)
	if err != nil {
		return "", err
	}
	for _, op := range ops {
		if h, err = r.applyRevOp(h, op); err != nil {
			return "", fmt.Errorf("find %q: %w", name, err)
		}
	}
	if hasPath {
		if h, err = r.lookupPath(h, treePath); err != nil {
			return "", fmt.Errorf("find %q: %w", name, err)
		}
	}
	if want == "" {
		return h, nil
	}
	out, err := r.peel(h, want, follow)
	if err != nil {
		return "", fmt.Errorf("find %q: %w", name, err)
	}
	r.logger.Debug("revision resolved", zap.String("name", name), zap.String("hash", string(out)))
	return out, nil
}

type revOp struct {
	kind byte   // '~', '^' or '{'
	n    int    // ancestry count for '~' and '^'
	typ  string // peel target for '{', empty for "^{}"
}

func parseRevision(rev string) (string, []revOp, error) {
	idx := strings.IndexAny(rev, "~^")
	if idx < 0 {
		return rev, nil, nil
	}
	base, rest := rev[:idx], rev[idx:]

	var ops []revOp
	for i := 0; i < len(rest); {
		c := rest[i]
		i++
		if c == '^' && i < len(rest) && rest[i] == '{' {
			end := strings.IndexByte(rest[i:], '}')
			if end < 0 {
				return "", nil, fmt.Errorf("%w: unterminated peel in %q", ErrRevisionNotFound, rev)
			}
			ops = append(ops, revOp{kind: '{', typ: rest[i+1 : i+end]})
			i += end + 1
			continue
		}
		if c != '~' && c != '^' {
			return "", nil, fmt.Errorf("%w: unexpected %q in %q", ErrRevisionNotFound, c, rev)
		}
		j := i
		for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
			j++
		}
		n := 1
		if j > i {
			v, err := strconv.Atoi(rest[i:j])
			if err != nil {
				return "", nil, fmt.Errorf("%w: bad count in %q", ErrRevisionNotFound, rev)
			}
			n = v
		}
		ops = append(ops, revOp{kind: c, n: n})
		i = j
	}
	return base, ops, nil
}

// resolveBase collects every object the base name could denote and
// requires exactly one.
func (r *Repo) resolveBase(name string) (object.Hash, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrRevisionNotFound)
	}
	candidates, err := r.candidates(name)
	if err != nil {
		return "", err
	}
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%w: %q", ErrRevisionNotFound, name)
	case 1:
		return candidates[0], nil
	default:
		return "", &AmbiguousRevisionError{Name: name, Candidates: candidates}
	}
}

func (r *Repo) candidates(name string) ([]object.Hash, error) {
	seen := make(map[object.Hash]struct{})
	var out []object.Hash
	add := func(h object.Hash) {
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}

	if name == "HEAD" {
		h, ok, err := r.ResolveRef("HEAD")
		if err != nil {
			return nil, err
		}
		if ok {
			add(h)
		}
		return out, nil
	}

	lower := strings.ToLower(name)
	if len(lower) >= MinPrefixLength && len(lower) <= object.HashHexSize && isHex(lower) {
		if len(lower) == object.HashHexSize {
			if r.Store.Has(object.Hash(lower)) {
				add(object.Hash(lower))
			}
		} else {
			matches, err := r.Store.FindPrefix(lower)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				add(m)
			}
		}
	}

	refNames := []string{"refs/tags/" + name, "refs/heads/" + name, "refs/remotes/" + name}
	if strings.HasPrefix(name, "refs/") {
		refNames = []string{name}
	}
	for _, ref := range refNames {
		if validateRefName(ref) != nil {
			continue
		}
		h, ok, err := r.ResolveRef(ref)
		if err != nil {
			return nil, err
		}
		if ok {
			add(h)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func (r *Repo) applyRevOp(h object.Hash, op revOp) (object.Hash, error) {
	switch op.kind {
	case '~':
		for i := 0; i < op.n; i++ {
			parents, err := r.commitParents(h)
			if err != nil {
				return "", err
			}
			if len(parents) == 0 {
				return "", fmt.Errorf("%w: %s has no parent", ErrRevisionNotFound, h)
			}
			h = parents[0]
		}
		return h, nil
	case '^':
		commit, err := r.peel(h, object.TypeCommit, true)
		if err != nil {
			return "", err
		}
		if op.n == 0 {
			return commit, nil
		}
		parents, err := r.commitParents(commit)
		if err != nil {
			return "", err
		}
		if op.n > len(parents) {
			return "", fmt.Errorf("%w: %s has no parent %d", ErrRevisionNotFound, commit, op.n)
		}
		return parents[op.n-1], nil
	case '{':
		if op.typ == "" {
			return r.peelTags(h)
		}
		want, err := object.ParseType(op.typ)
		if err != nil {
			return "", err
		}
		return r.peel(h, want, true)
	default:
		return "", fmt.Errorf("%w: unknown operator %q", ErrRevisionNotFound, op.kind)
	}
}

func (r *Repo) commitParents(h object.Hash) ([]object.Hash, error) {
	ch, err := r.peel(h, object.TypeCommit, true)
	if err != nil {
		return nil, err
	}
	commit, err := r.Store.ReadCommit(ch)
	if err != nil {
		return nil, err
	}
	return commit.Parents(), nil
}

// peel follows tags, and commits to their tree, until it reaches an object
// of kind want.
func (r *Repo) peel(h object.Hash, want object.ObjectType, follow bool) (object.Hash, error) {
	for depth := 0; depth < maxPeelDepth; depth++ {
		obj, err := r.Store.Read(h)
		if err != nil {
			return "", err
		}
		if obj.Type() == want {
			return h, nil
		}
		if !follow {
			return "", fmt.Errorf("%w: %s is a %s, not a %s", object.ErrUnexpectedObjectKind, h, obj.Type(), want)
		}
		switch o := obj.(type) {
		case *object.Tag:
			h = o.Object()
		case *object.Commit:
			if want != object.TypeTree {
				return "", fmt.Errorf("%w: %s is a commit, not a %s", object.ErrUnexpectedObjectKind, h, want)
			}
			h = o.TreeHash()
		default:
			return "", fmt.Errorf("%w: %s is a %s, not a %s", object.ErrUnexpectedObjectKind, h, obj.Type(), want)
		}
	}
	return "", fmt.Errorf("%w: tag chain from %s deeper than %d", object.ErrUnexpectedObjectKind, h, maxPeelDepth)
}

func (r *Repo) peelTags(h object.Hash) (object.Hash, error) {
	for depth := 0; depth < maxPeelDepth; depth++ {
		obj, err := r.Store.Read(h)
		if err != nil {
			return "", err
		}
		tag, ok := obj.(*object.Tag)
		if !ok {
			return h, nil
		}
		h = tag.Object()
	}
	return "", fmt.Errorf("%w: tag chain from %s deeper than %d", object.ErrUnexpectedObjectKind, h, maxPeelDepth)
}
