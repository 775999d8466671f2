package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

// newTestRepo initializes a repository in a fresh temp directory.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir(), WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()

	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init(%q): %v", dir, err)
	}
	if r.RootDir != dir {
		t.Errorf("RootDir = %q, want %q", r.RootDir, dir)
	}

	gitDir := filepath.Join(dir, ".git")
	if r.GitDir != gitDir {
		t.Errorf("GitDir = %q, want %q", r.GitDir, gitDir)
	}

	assertDir(t, gitDir)
	assertDir(t, filepath.Join(gitDir, "branches"))
	assertDir(t, filepath.Join(gitDir, "objects"))
	assertDir(t, filepath.Join(gitDir, "refs", "tags"))
	assertDir(t, filepath.Join(gitDir, "refs", "heads"))
	assertFile(t, filepath.Join(gitDir, "description"))
	assertFile(t, filepath.Join(gitDir, "config"))

	head, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		t.Fatalf("read HEAD: %v", err)
	}
	if string(head) != "ref: refs/heads/master\n" {
		t.Errorf("HEAD = %q", head)
	}

	if r.Store == nil {
		t.Error("Store is nil after Init")
	}
}

func TestInit_WritesDefaultConfig(t *testing.T) {
	r := newTestRepo(t)
	cfg, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	core := cfg.Section("core")
	for key, want := range map[string]string{
		"repositoryformatversion": "0",
		"filemode":                "false",
		"bare":                    "false",
	} {
		if got := core.Option(key); got != want {
			t.Errorf("core.%s = %q, want %q", key, got, want)
		}
	}

	raw, err := os.ReadFile(filepath.Join(r.GitDir, "config"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(raw), "[core]") {
		t.Errorf("config is not INI: %q", raw)
	}
}

func TestInit_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if _, err := Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	assertDir(t, filepath.Join(dir, ".git"))
}

func TestInit_NonEmptyDirectory_Error(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "file"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Init(dir); err == nil {
		t.Fatal("Init into non-empty directory should fail")
	}
}

func TestInit_ExistingRepo_Error(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if _, err := Init(dir); err == nil {
		t.Fatal("second Init should fail on existing repo, got nil error")
	}
}

func TestInit_PathIsFile_Error(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Init(file); err == nil {
		t.Fatal("Init on a file should fail")
	}
}

func TestOpen_FromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}

	sub := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	r, err := Open(sub)
	if err != nil {
		t.Fatalf("Open(%q): %v", sub, err)
	}
	if r.RootDir != dir {
		t.Errorf("RootDir = %q, want %q", r.RootDir, dir)
	}
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrNotRepository) {
		t.Fatalf("Open error = %v, want ErrNotRepository", err)
	}
}

func TestOpen_RejectsUnknownFormatVersion(t *testing.T) {
	r := newTestRepo(t)
	cfg := DefaultConfig()
	cfg.Section("core").SetOption("repositoryformatversion", "1")
	if err := r.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	_, err := Open(r.RootDir)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Open error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestOpen_MissingConfig(t *testing.T) {
	r := newTestRepo(t)
	if err := os.Remove(filepath.Join(r.GitDir, "config")); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := Open(r.RootDir); err == nil {
		t.Fatal("Open without config should fail")
	}
}

func assertDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory %q to exist: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("%q exists but is not a directory", path)
	}
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected file %q to exist: %v", path, err)
		return
	}
	if info.IsDir() {
		t.Errorf("%q exists but is a directory, expected file", path)
	}
}
