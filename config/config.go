// Package config loads the optional qtbridge.yaml used by the tools.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/heap"
	"github.com/wippyai/qtbridge/native"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up when no path is given.
const DefaultFile = "qtbridge.yaml"

// Config represents the optional qtbridge.yaml configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Heap    HeapConfig    `yaml:"heap"`
	Runtime RuntimeConfig `yaml:"runtime"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level       string `yaml:"level,omitempty"`
	Development bool   `yaml:"development,omitempty"`
}

// HeapConfig sizes the native heap in 64 KiB pages.
type HeapConfig struct {
	InitialPages uint32 `yaml:"initial_pages,omitempty"`
	MaxPages     uint32 `yaml:"max_pages,omitempty"`
}

// RuntimeConfig contains native runtime settings.
type RuntimeConfig struct {
	SuppressInitNotifications *bool `yaml:"suppress_init_notifications,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Path                      string
	LogLevel                  zapcore.Level
	Development               bool
	InitialPages              uint32
	MaxPages                  uint32
	SuppressInitNotifications bool
}

// LoadOptional reads the file at path if present. A missing file yields an
// empty Config.
func LoadOptional(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "failed to read "+path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "failed to parse "+path)
	}

	return &cfg, nil
}

// Resolve loads path (if present) and resolves defaults.
func Resolve(path string) (*Resolved, error) {
	if path == "" {
		path = DefaultFile
	}
	cfg, err := LoadOptional(path)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(path)
}

// Resolve fills defaults and validates.
func (c *Config) Resolve(path string) (*Resolved, error) {
	level := zapcore.InfoLevel
	if s := strings.TrimSpace(c.Log.Level); s != "" {
		l, err := zapcore.ParseLevel(s)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log.level")
		}
		level = l
	}

	initial := c.Heap.InitialPages
	if initial == 0 {
		initial = heap.DefaultInitialPages
	}
	maxPages := c.Heap.MaxPages
	if maxPages == 0 {
		maxPages = heap.DefaultMaxPages
	}
	if initial > maxPages {
		return nil, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("heap.initial_pages (%d) exceeds heap.max_pages (%d)", initial, maxPages))
	}
	if maxPages > 65536 {
		return nil, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("heap.max_pages (%d) exceeds the 4 GiB address space", maxPages))
	}

	suppress := true
	if c.Runtime.SuppressInitNotifications != nil {
		suppress = *c.Runtime.SuppressInitNotifications
	}

	return &Resolved{
		Path:                      path,
		LogLevel:                  level,
		Development:               c.Log.Development,
		InitialPages:              initial,
		MaxPages:                  maxPages,
		SuppressInitNotifications: suppress,
	}, nil
}

// RuntimeOptions converts the resolved values into native runtime options.
func (r *Resolved) RuntimeOptions() []native.Option {
	return []native.Option{
		native.WithHeap(heap.WithInitialPages(r.InitialPages), heap.WithMaxPages(r.MaxPages)),
		native.WithInitNotifications(!r.SuppressInitNotifications),
	}
}

// Logger builds the zap logger described by the log section.
func (r *Resolved) Logger() (*zap.Logger, error) {
	var zc zap.Config
	if r.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(r.LogLevel)
	return zc.Build()
}
