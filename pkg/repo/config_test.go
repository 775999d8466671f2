package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigRoundTrip(t *testing.T) {
	r := newTestRepo(t)

	cfg, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	cfg.Section("user").SetOption("name", "A U Thor")
	if err := r.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	got, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if name := got.Section("user").Option("name"); name != "A U Thor" {
		t.Errorf("user.name = %q", name)
	}
	if v := got.Section("core").Option("repositoryformatversion"); v != "0" {
		t.Errorf("core.repositoryformatversion = %q", v)
	}

	entries, err := os.ReadDir(r.GitDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".config-tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestReadConfig_Malformed(t *testing.T) {
	r := newTestRepo(t)
	if err := os.WriteFile(filepath.Join(r.GitDir, "config"), []byte("[core\nbroken"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := r.ReadConfig(); err == nil {
		t.Fatal("ReadConfig should fail on malformed config")
	}
}
