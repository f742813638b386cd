// Package config loads layered orbit configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	TaskFile             string `json:"task_file"`
	AIGrouping           bool   `json:"ai_grouping"`
	DebounceMS           int    `json:"debounce_ms"`
	TickMS               int    `json:"tick_ms"`
	SuggestionTTLS       int    `json:"suggestion_ttl_s"`
	SuggestionIntervalS  int    `json:"suggestion_interval_s"`
	MaxActiveSuggestions int    `json:"max_active_suggestions"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"`
	TaskFileAbs  string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
}

// fileConfig is one config file. Pointers distinguish unset from zero.
type fileConfig struct {
	TaskFile             *string `json:"task_file"`
	AIGrouping           *bool   `json:"ai_grouping"`
	DebounceMS           *int    `json:"debounce_ms"`
	TickMS               *int    `json:"tick_ms"`
	SuggestionTTLS       *int    `json:"suggestion_ttl_s"`
	SuggestionIntervalS  *int    `json:"suggestion_interval_s"`
	MaxActiveSuggestions *int    `json:"max_active_suggestions"`
}

// FileName is the project config file name.
const FileName = ".orbit.json"

// Default returns the default configuration.
func Default() Config {
	return Config{
		TaskFile:             filepath.Join(".orbit", "tasks.json"),
		AIGrouping:           true,
		DebounceMS:           1000,
		TickMS:               1000,
		SuggestionTTLS:       45,
		SuggestionIntervalS:  20,
		MaxActiveSuggestions: 3,
	}
}

// Debounce is DebounceMS as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Tick is TickMS as a duration.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}

// SuggestionTTL is SuggestionTTLS as a duration.
func (c *Config) SuggestionTTL() time.Duration {
	return time.Duration(c.SuggestionTTLS) * time.Second
}

// SuggestionInterval is SuggestionIntervalS as a duration.
func (c *Config) SuggestionInterval() time.Duration {
	return time.Duration(c.SuggestionIntervalS) * time.Second
}

// globalPath returns $XDG_CONFIG_HOME/orbit/config.json, falling back to
// ~/.config/orbit/config.json. Empty if neither can be determined.
func globalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "orbit", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "orbit", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride  string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath       string            // -c/--config flag value
	TaskFileOverride string            // --task-file flag value; empty means no override
	GroupingOverride *bool             // --grouping / --no-grouping
	Env              map[string]string // environment variables
}

// Load resolves configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config
// 3. Project config file (.orbit.json, if exists)
// 4. Explicit config file via ConfigPath (replaces 3)
// 5. CLI overrides.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	if path := globalPath(input.Env); path != "" {
		fc, loaded, err := loadFile(path, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = merge(cfg, fc)
			cfg.Sources.Global = path
		}
	}

	path, mustExist, err := projectPath(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	fc, loaded, err := loadFile(path, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = merge(cfg, fc)
		cfg.Sources.Project = path
	}

	if input.TaskFileOverride != "" {
		cfg.TaskFile = input.TaskFileOverride
	}

	if input.GroupingOverride != nil {
		cfg.AIGrouping = *input.GroupingOverride
	}

	err = validate(&cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	cfg.TaskFileAbs = cfg.TaskFile
	if !filepath.IsAbs(cfg.TaskFileAbs) {
		cfg.TaskFileAbs = filepath.Join(workDir, cfg.TaskFile)
	}

	return cfg, nil
}

func projectPath(workDir, configPath string) (string, bool, error) {
	if configPath == "" {
		return filepath.Join(workDir, FileName), false, nil
	}

	path := configPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	_, err := os.Stat(path)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
	}

	return path, true, nil
}

// loadFile reads one config file. Missing optional files are not an error.
func loadFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if mustExist {
			return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return fileConfig{}, false, nil
	}

	fc, err := parse(data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	if fc.TaskFile != nil && *fc.TaskFile == "" {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrTaskFileEmpty)
	}

	return fc, true, nil
}

func parse(data []byte) (fileConfig, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var fc fileConfig

	err = json.Unmarshal(standardized, &fc)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return fc, nil
}

func merge(base Config, overlay fileConfig) Config {
	if overlay.TaskFile != nil {
		base.TaskFile = *overlay.TaskFile
	}

	if overlay.AIGrouping != nil {
		base.AIGrouping = *overlay.AIGrouping
	}

	if overlay.DebounceMS != nil {
		base.DebounceMS = *overlay.DebounceMS
	}

	if overlay.TickMS != nil {
		base.TickMS = *overlay.TickMS
	}

	if overlay.SuggestionTTLS != nil {
		base.SuggestionTTLS = *overlay.SuggestionTTLS
	}

	if overlay.SuggestionIntervalS != nil {
		base.SuggestionIntervalS = *overlay.SuggestionIntervalS
	}

	if overlay.MaxActiveSuggestions != nil {
		base.MaxActiveSuggestions = *overlay.MaxActiveSuggestions
	}

	return base
}

func validate(cfg *Config) error {
	if cfg.TaskFile == "" {
		return ErrTaskFileEmpty
	}

	durations := []struct {
		key   string
		value int
	}{
		{"debounce_ms", cfg.DebounceMS},
		{"tick_ms", cfg.TickMS},
		{"suggestion_ttl_s", cfg.SuggestionTTLS},
		{"suggestion_interval_s", cfg.SuggestionIntervalS},
	}

	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s %w (got %d)", ErrConfigInvalid, d.key, ErrNonPositive, d.value)
		}
	}

	if cfg.MaxActiveSuggestions == 0 {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, ErrMaxActiveZero)
	}

	return nil
}
