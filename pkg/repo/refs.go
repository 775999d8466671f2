package repo

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/odvcencio/shale/pkg/object"
)

// MaxRefHops bounds how many "ref: " indirections ResolveRef follows.
const MaxRefHops = 10

const symrefPrefix = "ref: "

var (
	// ErrReferenceCycle is returned when symbolic refs do not reach a hash
	// within MaxRefHops.
	ErrReferenceCycle = errors.New("reference cycle")
	// ErrMalformedRef reports a ref file that is neither a hash nor a
	// symbolic ref, or a ref name that escapes the git directory.
	ErrMalformedRef = errors.New("malformed reference")
	// ErrRefCASMismatch is returned by UpdateRef when the expected old value
	// does not match.
	ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")
)

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// refFile maps a slash-separated ref name such as "refs/heads/master" to
// its file under .git/.
func (r *Repo) refFile(name string) (string, error) {
	if err := validateRefName(name); err != nil {
		return "", err
	}
	return filepath.Join(r.GitDir, filepath.FromSlash(name)), nil
}

func validateRefName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return fmt.Errorf("%w: invalid ref name %q", ErrMalformedRef, name)
	}
	if path.Clean(name) != name || strings.Contains(name, "..") || strings.HasSuffix(name, ".lock") {
		return fmt.Errorf("%w: invalid ref name %q", ErrMalformedRef, name)
	}
	if strings.ContainsAny(name, " \t\n\r~^:?*[\\") {
		return fmt.Errorf("%w: invalid ref name %q", ErrMalformedRef, name)
	}
	return nil
}

// readRef returns the trimmed content of a ref file. A missing file
// reports ok=false.
func (r *Repo) readRef(name string) (content string, ok bool, err error) {
	file, err := r.refFile(name)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read ref %q: %w", name, err)
	}
	return strings.TrimRight(string(data), "\r\n"), true, nil
}

// ResolveRef resolves a ref name such as "HEAD" or "refs/heads/master" to
// an object hash, following "ref: " indirections. A ref that does not exist
// at any hop is not an error: ResolveRef returns ("", false, nil), which is
// how a fresh repository without commits looks.
func (r *Repo) ResolveRef(name string) (object.Hash, bool, error) {
	cur := name
	for hop := 0; hop <= MaxRefHops; hop++ {
		content, ok, err := r.readRef(cur)
		if err != nil {
			return "", false, fmt.Errorf("resolve ref %q: %w", name, err)
		}
		if !ok {
			return "", false, nil
		}
		if target, isSym := strings.CutPrefix(content, symrefPrefix); isSym {
			r.logger.Debug("following symbolic ref", zap.String("ref", cur), zap.String("target", target))
			cur = strings.TrimSpace(target)
			continue
		}
		h, err := object.ParseHash(content)
		if err != nil {
			return "", false, fmt.Errorf("resolve ref %q: %w: %v", cur, ErrMalformedRef, err)
		}
		return h, true, nil
	}
	return "", false, fmt.Errorf("resolve ref %q: %w after %d hops", name, ErrReferenceCycle, MaxRefHops)
}

// Head reads .git/HEAD. For a symbolic HEAD it returns the target ref path
// (e.g., "refs/heads/master") and symbolic=true. For a detached HEAD it
// returns the hash.
func (r *Repo) Head() (target string, symbolic bool, err error) {
	content, ok, err := r.readRef("HEAD")
	if err != nil {
		return "", false, fmt.Errorf("head: %w", err)
	}
	if !ok {
		return "", false, fmt.Errorf("head: HEAD is missing")
	}
	if t, isSym := strings.CutPrefix(content, symrefPrefix); isSym {
		return strings.TrimSpace(t), true, nil
	}
	return content, false, nil
}

// UpdateRef writes a hash to the named ref file under .git/ using lockfile
// + rename atomic semantics. Parent directories are created as needed. A
// symbolic ref is followed and the ref at the end of the chain is updated,
// so UpdateRef("HEAD", h) moves the current branch. If expectedOld is
// provided, the update only succeeds when the ref currently holds that
// hash; an empty expected value means the ref must not exist. The move is
// recorded in the ref's reflog.
func (r *Repo) UpdateRef(name string, h object.Hash, expectedOld ...object.Hash) error {
	return r.updateRef(name, h, "update-ref", expectedOld...)
}

func (r *Repo) updateRef(name string, h object.Hash, reason string, expectedOld ...object.Hash) error {
	if len(expectedOld) > 1 {
		return fmt.Errorf("update ref %q: expected at most one old hash", name)
	}
	if _, err := object.ParseHash(string(h)); err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	name, err := r.derefSymbolic(name)
	if err != nil {
		return fmt.Errorf("update ref: %w", err)
	}
	var prev string
	err = r.writeRef(name, string(h)+"\n", func(old string) error {
		prev = old
		if len(expectedOld) == 0 {
			return nil
		}
		if old != string(expectedOld[0]) {
			return fmt.Errorf("%w (expected %q, found %q)", ErrRefCASMismatch, expectedOld[0], old)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !object.IsHash(prev) {
		prev = ""
	}
	if err := r.appendReflog(name, object.Hash(prev), h, reason); err != nil {
		r.logger.Warn("reflog not updated", zap.String("ref", name), zap.Error(err))
	}
	return nil
}

// derefSymbolic follows "ref: " indirections from name and returns the
// last ref in the chain, which may not exist yet.
func (r *Repo) derefSymbolic(name string) (string, error) {
	cur := name
	for hop := 0; hop <= MaxRefHops; hop++ {
		content, ok, err := r.readRef(cur)
		if err != nil {
			return "", err
		}
		target, isSym := strings.CutPrefix(content, symrefPrefix)
		if !ok || !isSym {
			return cur, nil
		}
		cur = strings.TrimSpace(target)
	}
	return "", fmt.Errorf("%q: %w after %d hops", name, ErrReferenceCycle, MaxRefHops)
}

// UpdateSymbolicRef points name at another ref, e.g. HEAD at
// refs/heads/master.
func (r *Repo) UpdateSymbolicRef(name, target string) error {
	if err := validateRefName(target); err != nil {
		return fmt.Errorf("update symbolic ref %q: %w", name, err)
	}
	return r.writeRef(name, symrefPrefix+target+"\n", nil)
}

// DeleteRef removes a ref file.
func (r *Repo) DeleteRef(name string) error {
	file, err := r.refFile(name)
	if err != nil {
		return fmt.Errorf("delete ref: %w", err)
	}
	if err := os.Remove(file); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete ref %q: does not exist", name)
		}
		return fmt.Errorf("delete ref %q: %w", name, err)
	}
	return nil
}

func (r *Repo) writeRef(name, content string, check func(old string) error) error {
	refPath, err := r.refFile(name)
	if err != nil {
		return fmt.Errorf("update ref: %w", err)
	}

	dir := filepath.Dir(refPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	if check != nil {
		old, _, err := r.readRef(name)
		if err != nil {
			return fmt.Errorf("update ref %q: read old value: %w", name, err)
		}
		if err := check(old); err != nil {
			return fmt.Errorf("update ref %q: %w", name, err)
		}
	}

	if _, err := lockFile.WriteString(content); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update ref %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	cleanupLock = false
	r.logger.Debug("ref updated", zap.String("ref", name), zap.String("value", strings.TrimSpace(content)))
	return nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}
