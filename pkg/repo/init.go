package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const defaultBranch = "master"

// Init creates a new repository at path. The directory is created if
// missing; an existing path must be an empty directory. It creates
// .git/{branches,objects,refs/tags,refs/heads}, description, HEAD pointing
// at refs/heads/master, and a config declaring repository format 0.
func Init(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}

	info, err := os.Stat(abs)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, fmt.Errorf("init: %s is not a directory", abs)
		}
		entries, err := os.ReadDir(abs)
		if err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
		if len(entries) > 0 {
			return nil, fmt.Errorf("init: %s is not empty", abs)
		}
	case os.IsNotExist(err):
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", abs, err)
		}
	default:
		return nil, fmt.Errorf("init: %w", err)
	}

	gitDir := filepath.Join(abs, ".git")
	dirs := []string{
		filepath.Join(gitDir, "branches"),
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "tags"),
		filepath.Join(gitDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	files := []struct {
		name    string
		content string
	}{
		{"description", "Unnamed repository; edit this file 'description' to name the repository.\n"},
		{"HEAD", "ref: refs/heads/" + defaultBranch + "\n"},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(gitDir, f.name), []byte(f.content), 0o644); err != nil {
			return nil, fmt.Errorf("init: write %s: %w", f.name, err)
		}
	}

	r := newRepo(abs, gitDir, opts)
	if err := r.WriteConfig(DefaultConfig()); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	r.logger.Debug("initialized repository", zap.String("gitdir", gitDir))
	return r, nil
}

// Open searches upward from path for a .git/ directory and opens the
// repository. The repository config must exist and declare format 0.
func Open(path string, opts ...Option) (*Repo, error) {
	// Resolve to absolute path for consistent traversal.
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	root, err := FindRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	r := newRepo(root, filepath.Join(root, ".git"), opts)
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := checkFormatVersion(cfg); err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	r.logger.Debug("opened repository", zap.String("root", root))
	return r, nil
}

// FindRoot returns the nearest directory at or above path that contains a
// .git/ directory.
func FindRoot(path string) (string, error) {
	cur := path
	for {
		info, err := os.Stat(filepath.Join(cur, ".git"))
		if err == nil && info.IsDir() {
			return cur, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached filesystem root without finding .git/.
			return "", fmt.Errorf("%w (or any parent up to %s): %s", ErrNotRepository, cur, path)
		}
		cur = parent
	}
}
