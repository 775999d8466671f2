package repo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/odvcencio/shale/pkg/object"
)

const zeroHash = object.Hash("0000000000000000000000000000000000000000")

// ReflogEntry is one line of .git/logs/<ref>.
type ReflogEntry struct {
	Ref     string
	OldHash object.Hash // zero hash when the ref was created
	NewHash object.Hash
	Who     string // "Name <email> unix-seconds +zzzz"
	Reason  string
}

// appendReflog records a ref move in git's reflog format:
// "<old> <new> <who>\t<reason>".
func (r *Repo) appendReflog(ref string, oldHash, newHash object.Hash, reason string) (err error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if strings.TrimSpace(reason) == "" {
		reason = "update"
	}
	if oldHash == "" {
		oldHash = zeroHash
	}
	if newHash == "" {
		newHash = zeroHash
	}

	logPath := filepath.Join(r.GitDir, "logs", filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("reflog mkdir: %w", err)
	}

	reason = strings.ReplaceAll(reason, "\n", " ")
	line := fmt.Sprintf("%s %s %s\t%s\n", oldHash, newHash, r.identity(), reason)

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog open: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("reflog write: %w", err)
	}
	return nil
}

// ReadReflog returns the recorded moves of ref, newest first, up to limit
// entries (limit <= 0 means all). Short names are looked up under
// refs/heads/. A ref without a log yields no entries.
func (r *Repo) ReadReflog(ref string, limit int) ([]ReflogEntry, error) {
	refName := r.resolveReflogRefName(ref)
	if err := validateRefName(refName); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	logPath := filepath.Join(r.GitDir, "logs", filepath.FromSlash(refName))
	f, err := os.Open(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reflog: %w", err)
	}
	defer f.Close()

	var entries []ReflogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		head, reason, _ := strings.Cut(scanner.Text(), "\t")
		parts := strings.SplitN(head, " ", 3)
		if len(parts) < 3 || !object.IsHash(parts[0]) || !object.IsHash(parts[1]) {
			continue
		}
		entries = append(entries, ReflogEntry{
			Ref:     refName,
			OldHash: object.Hash(parts[0]),
			NewHash: object.Hash(parts[1]),
			Who:     parts[2],
			Reason:  reason,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	// Return newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *Repo) resolveReflogRefName(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "HEAD" {
		head, symbolic, err := r.Head()
		if err == nil && symbolic {
			return head
		}
		return "HEAD"
	}
	if strings.HasPrefix(ref, "refs/") {
		return ref
	}
	return "refs/heads/" + ref
}
