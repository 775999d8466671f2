package object

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// MarshalTree serializes a Tree into git's binary layout. Each entry is
//
//	<mode> SP <path> NUL <20 raw digest bytes>
//
// Entries are written in canonical order (see TreeEntry.sortKey) whatever
// their order in tr, so equal entry sets always hash identically. The
// padding zero is dropped on write, so the directory mode is "40000" on disk.
func MarshalTree(tr *Tree) ([]byte, error) {
	sorted := SortedEntries(tr.Entries)

	var buf bytes.Buffer
	for _, e := range sorted {
		raw, err := e.Hash.Raw()
		if err != nil {
			return nil, fmt.Errorf("marshal tree entry %q: %w", e.Path, err)
		}
		mode := NormalizeMode(e.Mode)
		if err := validateMode(mode); err != nil {
			return nil, fmt.Errorf("marshal tree entry %q: %w", e.Path, err)
		}
		buf.WriteString(strings.TrimPrefix(mode, "0"))
		buf.WriteByte(' ')
		buf.WriteString(e.Path)
		buf.WriteByte(0)
		buf.Write(raw[:])
	}
	return buf.Bytes(), nil
}

// SortedEntries returns a copy of entries in canonical tree order.
func SortedEntries(entries []TreeEntry) []TreeEntry {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].sortKey() < sorted[j].sortKey()
	})
	return sorted
}

// UnmarshalTree parses git's binary tree layout. Five-digit modes are
// padded to six so in-memory modes always have six characters.
func UnmarshalTree(data []byte) (*Tree, error) {
	tr := &Tree{}
	pos := 0
	for pos < len(data) {
		e, next, err := parseTreeEntry(data, pos)
		if err != nil {
			return nil, err
		}
		tr.Entries = append(tr.Entries, e)
		pos = next
	}
	return tr, nil
}

func parseTreeEntry(data []byte, pos int) (TreeEntry, int, error) {
	spc := bytes.IndexByte(data[pos:], ' ')
	if spc < 0 {
		return TreeEntry{}, 0, fmt.Errorf("%w: tree: truncated entry at offset %d", ErrMalformedObject, pos)
	}
	mode := string(data[pos : pos+spc])
	switch len(mode) {
	case 5, 6:
		mode = NormalizeMode(mode)
	default:
		return TreeEntry{}, 0, fmt.Errorf("%w: tree: mode %q at offset %d is not 5 or 6 digits", ErrMalformedObject, mode, pos)
	}
	if err := validateMode(mode); err != nil {
		return TreeEntry{}, 0, fmt.Errorf("%w: tree: offset %d: %v", ErrMalformedObject, pos, err)
	}

	pathStart := pos + spc + 1
	nul := bytes.IndexByte(data[pathStart:], 0)
	if nul < 0 {
		return TreeEntry{}, 0, fmt.Errorf("%w: tree: unterminated path at offset %d", ErrMalformedObject, pathStart)
	}
	path := string(data[pathStart : pathStart+nul])

	hashStart := pathStart + nul + 1
	hashEnd := hashStart + HashSize
	if hashEnd > len(data) {
		return TreeEntry{}, 0, fmt.Errorf("%w: tree: truncated digest for %q", ErrMalformedObject, path)
	}
	h, err := HashFromRaw(data[hashStart:hashEnd])
	if err != nil {
		return TreeEntry{}, 0, fmt.Errorf("%w: tree: %v", ErrMalformedObject, err)
	}
	return TreeEntry{Mode: mode, Path: path, Hash: h}, hashEnd, nil
}

// NormalizeMode left-pads a five-digit mode such as "40000" to six digits.
// Other inputs are returned unchanged.
func NormalizeMode(mode string) string {
	if len(mode) == 5 {
		return "0" + mode
	}
	return mode
}

func validateMode(mode string) error {
	if len(mode) != 6 {
		return fmt.Errorf("mode %q must have 6 digits", mode)
	}
	for i := 0; i < len(mode); i++ {
		if mode[i] < '0' || mode[i] > '7' {
			return fmt.Errorf("mode %q is not octal", mode)
		}
	}
	return nil
}
