// Package settings loads per-user tool settings from a TOML file.
package settings

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvConfig names the environment variable that overrides the settings
// file location.
const EnvConfig = "SHALE_CONFIG"

// Settings holds user preferences. Zero values fall back to defaults.
type Settings struct {
	LogLevel         string `toml:"log_level"`
	LogFormat        string `toml:"log_format"`
	ObjectCacheSize  int    `toml:"object_cache_size"`
	CompressionLevel int    `toml:"compression_level"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		LogLevel:         "warn",
		LogFormat:        "text",
		ObjectCacheSize:  256,
		CompressionLevel: -1,
	}
}

// Path returns the settings file location: $SHALE_CONFIG if set, else
// $XDG_CONFIG_HOME/shale/config.toml, else the OS user config dir.
func Path() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p, nil
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "shale", "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("settings path: %w", err)
	}
	return filepath.Join(dir, "shale", "config.toml"), nil
}

// Load reads the settings file at Path. A missing file yields Default.
func Load() (Settings, error) {
	p, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFile(p)
}

// LoadFile reads settings from path. A missing file yields Default; keys
// absent from the file keep their default values.
func LoadFile(path string) (Settings, error) {
	s := Default()
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("settings %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Default(), fmt.Errorf("settings %s: unknown key %q", path, undecoded[0].String())
	}
	if err := s.validate(); err != nil {
		return Default(), fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

func (s Settings) validate() error {
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return err
	}
	if _, err := encoder(s.LogFormat); err != nil {
		return err
	}
	if s.ObjectCacheSize < 0 {
		return fmt.Errorf("object_cache_size must not be negative: %d", s.ObjectCacheSize)
	}
	if s.CompressionLevel < -2 || s.CompressionLevel > 9 {
		return fmt.Errorf("compression_level out of range [-2,9]: %d", s.CompressionLevel)
	}
	return nil
}

// ParseLevel maps [debug,info,warn,error] to a zap level. Empty is warn.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.TrimSpace(strings.ToLower(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level [debug,info,warn,error]: %q", level)
	}
}

func encoder(format string) (zapcore.Encoder, error) {
	cfg := zap.NewDevelopmentEncoderConfig()
	switch strings.TrimSpace(strings.ToLower(format)) {
	case "text", "":
		return zapcore.NewConsoleEncoder(cfg), nil
	case "json":
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), nil
	default:
		return nil, fmt.Errorf("unknown log format [text,json]: %q", format)
	}
}

// NewLogger builds a logger writing to w at the configured level, or at
// debug when verbose is set.
func (s Settings) NewLogger(w io.Writer, verbose bool) (*zap.Logger, error) {
	level, err := ParseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	enc, err := encoder(s.LogFormat)
	if err != nil {
		return nil, err
	}
	return zap.New(zapcore.NewCore(
		enc,
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(level),
	)), nil
}
