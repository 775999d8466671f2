package object

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// VerifySummary reports the outcome of Store.Verify.
type VerifySummary struct {
	Objects int    // objects checked
	Corrupt []Hash // unreadable objects or objects whose digest differs from their name
}

// ListObjects returns the hash of every object file in the store, sorted.
// Files whose names are not hex object names are ignored.
func (s *Store) ListObjects() ([]Hash, error) {
	objectsDir := filepath.Join(s.root, "objects")
	fanoutDirs, err := os.ReadDir(objectsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read objects dir: %w", err)
	}

	var hashes []Hash
	for _, fanoutDir := range fanoutDirs {
		prefix := fanoutDir.Name()
		if !fanoutDir.IsDir() || len(prefix) != 2 || !isLowerHex(prefix) {
			continue
		}
		objectEntries, err := os.ReadDir(filepath.Join(objectsDir, prefix))
		if err != nil {
			return nil, fmt.Errorf("read objects fanout %s: %w", prefix, err)
		}
		for _, objectEntry := range objectEntries {
			suffix := objectEntry.Name()
			if objectEntry.IsDir() || len(suffix) != HashHexSize-2 || !isLowerHex(suffix) {
				continue
			}
			hashes = append(hashes, Hash(prefix+suffix))
		}
	}

	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	return hashes, nil
}

// Verify re-reads every stored object from disk and recomputes its digest.
// Corruption is reported in the summary; only I/O failures on the object
// directory itself are returned as errors.
func (s *Store) Verify() (*VerifySummary, error) {
	hashes, err := s.ListObjects()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	report := &VerifySummary{}
	for _, h := range hashes {
		report.Objects++
		raw, ok, err := s.readObjectFile(h)
		if err != nil || !ok {
			s.logger.Warn("unreadable object", zap.String("hash", string(h)), zap.Error(err))
			report.Corrupt = append(report.Corrupt, h)
			continue
		}
		if actual := HashObject(raw.typ, raw.data); actual != h {
			s.logger.Warn("object digest mismatch", zap.String("hash", string(h)), zap.String("computed", string(actual)))
			report.Corrupt = append(report.Corrupt, h)
		}
	}
	return report, nil
}

// Remove deletes the object named h and evicts it from the cache. Removing
// an absent object is not an error. Empty fan-out directories are left in
// place.
func (s *Store) Remove(h Hash) error {
	if !IsHash(string(h)) {
		return fmt.Errorf("object remove: %w: %q", ErrInvalidHash, string(h))
	}
	if s.cache != nil {
		s.cache.Remove(h)
	}
	if err := os.Remove(s.objectPath(h)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("object remove %s: %w", h, err)
	}
	return nil
}
