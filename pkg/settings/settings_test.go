package settings

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return p
}

func TestLoadFile_Missing(t *testing.T) {
	s, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if diff := cmp.Diff(Default(), s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_PartialOverride(t *testing.T) {
	p := writeSettings(t, "log_level = \"debug\"\nobject_cache_size = 16\n")
	s, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := Default()
	want.LogLevel = "debug"
	want.ObjectCacheSize = 16
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	for name, content := range map[string]string{
		"syntax":      "log_level = ",
		"unknown key": "colour = true\n",
		"bad level":   "log_level = \"loud\"\n",
		"bad format":  "log_format = \"xml\"\n",
		"bad cache":   "object_cache_size = -1\n",
		"bad level 2": "compression_level = 12\n",
	} {
		if _, err := LoadFile(writeSettings(t, content)); err == nil {
			t.Errorf("%s: LoadFile should fail", name)
		}
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvConfig, "/tmp/explicit.toml")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if p, err := Path(); err != nil || p != "/tmp/explicit.toml" {
		t.Errorf("Path = (%q, %v)", p, err)
	}

	t.Setenv(EnvConfig, "")
	want := filepath.Join("/tmp/xdg", "shale", "config.toml")
	if p, err := Path(); err != nil || p != want {
		t.Errorf("Path = (%q, %v), want %q", p, err, want)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(EnvConfig, writeSettings(t, "compression_level = 9\n"))
	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.CompressionLevel != 9 {
		t.Errorf("CompressionLevel = %d, want 9", s.CompressionLevel)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Default().NewLogger(&buf, false)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("warn-level output = %q", out)
	}

	buf.Reset()
	logger, err = Default().NewLogger(&buf, true)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Debug("detail")
	if !strings.Contains(buf.String(), "detail") {
		t.Errorf("verbose output = %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"":      zapcore.WarnLevel,
		"DEBUG": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"error": zapcore.ErrorLevel,
	} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = (%v, %v), want %v", in, got, err, want)
		}
	}
}
