package repo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	gitconfig "github.com/go-git/go-git/v5/plumbing/format/config"
)

const (
	cfgCore              = "core"
	cfgCoreFormatVersion = "repositoryformatversion"
	cfgCoreFileMode      = "filemode"
	cfgCoreBare          = "bare"
)

// DefaultConfig returns the config written by Init.
func DefaultConfig() *gitconfig.Config {
	cfg := gitconfig.New()
	cfg.Section(cfgCore).
		SetOption(cfgCoreFormatVersion, "0").
		SetOption(cfgCoreFileMode, "false").
		SetOption(cfgCoreBare, "false")
	return cfg
}

func (r *Repo) configPath() string {
	return filepath.Join(r.GitDir, "config")
}

// ReadConfig parses .git/config. A missing config is an error: every
// repository created by Init has one.
func (r *Repo) ReadConfig() (*gitconfig.Config, error) {
	data, err := os.ReadFile(r.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: config file missing")
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := gitconfig.New()
	if err := gitconfig.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
		return nil, fmt.Errorf("read config: decode: %w", err)
	}
	return cfg, nil
}

// WriteConfig atomically writes .git/config.
func (r *Repo) WriteConfig(cfg *gitconfig.Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var buf bytes.Buffer
	if err := gitconfig.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}

	tmp, err := os.CreateTemp(r.GitDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

func checkFormatVersion(cfg *gitconfig.Config) error {
	version := cfg.Section(cfgCore).Option(cfgCoreFormatVersion)
	if version != "0" {
		return fmt.Errorf("%w: repositoryformatversion %q", ErrUnsupportedFormat, version)
	}
	return nil
}
