package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/calvinalkan/orbit/internal/clock"
	"github.com/calvinalkan/orbit/internal/config"
	"github.com/calvinalkan/orbit/internal/engine"
	"github.com/calvinalkan/orbit/internal/store"
	"github.com/calvinalkan/orbit/internal/task"

	flag "github.com/spf13/pflag"
)

var (
	errTextRequired      = errors.New("task text is required")
	errInvalidPriority   = errors.New("invalid priority (must be low, medium or high)")
	errInvalidDeadline   = errors.New("invalid deadline (use RFC 3339 or YYYY-MM-DD)")
	errEmptyValue        = errors.New("empty value not allowed")
	errNothingToEdit     = errors.New("nothing to edit")
	errMutuallyExclusive = errors.New("flags are mutually exclusive")
)

// engineOptions maps configuration onto engine options.
func engineOptions(cfg *config.Config, clk clock.Clock, logger *slog.Logger) engine.Options {
	return engine.Options{
		Clock:                clk,
		Debounce:             cfg.Debounce(),
		TickInterval:         cfg.Tick(),
		SuggestionTTL:        cfg.SuggestionTTL(),
		SuggestionInterval:   cfg.SuggestionInterval(),
		MaxActiveSuggestions: cfg.MaxActiveSuggestions,
		GroupingDisabled:     !cfg.AIGrouping,
		Logger:               logger,
	}
}

// view loads the task file and runs fn against a fresh engine.
func view(o *IO, cfg *config.Config, fn func(e *engine.Engine) error) error {
	tasks, err := store.Load(cfg.TaskFileAbs)
	if err != nil {
		return err
	}

	warnLoad(o, cfg, tasks)

	return fn(engine.New(tasks, engineOptions(cfg, clock.Real{}, nil)))
}

// mutate is view under the task file lock, saving the resulting tasks.
func mutate(o *IO, cfg *config.Config, fn func(e *engine.Engine) error) error {
	return store.Update(cfg.TaskFileAbs, func(tasks []task.Task) ([]task.Task, error) {
		warnLoad(o, cfg, tasks)

		e := engine.New(tasks, engineOptions(cfg, clock.Real{}, nil))

		err := fn(e)
		if err != nil {
			return nil, err
		}

		return e.Tasks(), nil
	})
}

// warnLoad flags task file entries the engine will not place.
func warnLoad(o *IO, cfg *config.Config, tasks []task.Task) {
	seen := make(map[string]bool, len(tasks))

	for i, t := range tasks {
		switch {
		case t.ID == "":
			o.Warn(fmt.Sprintf("task #%d has no id", i+1), "give it a unique id in "+cfg.TaskFileAbs)
		case seen[t.ID]:
			o.Warn("duplicate task id "+t.ID, "rename or remove the duplicate in "+cfg.TaskFileAbs)
		}

		seen[t.ID] = true
	}
}

// resolveRef resolves a task ID or prefix through e.
func resolveRef(e *engine.Engine, args []string) (task.Task, error) {
	if len(args) == 0 {
		return task.Task{}, task.ErrIDRequired
	}

	return e.Resolve(args[0])
}

// parseDeadline parses a --deadline value.
func parseDeadline(s string) (time.Time, error) {
	t, ok := store.ParseTime(s)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", errInvalidDeadline, s)
	}

	return t, nil
}

// parsePriorityFlag validates a --priority value.
func parsePriorityFlag(s string) (string, error) {
	p, ok := task.ParsePriority(s)
	if !ok {
		return "", fmt.Errorf("%w: %s", errInvalidPriority, s)
	}

	return string(p), nil
}

// validateNotEmpty rejects flags that were explicitly set to "".
func validateNotEmpty(flags *flag.FlagSet, names ...string) error {
	for _, name := range names {
		if !flags.Changed(name) {
			continue
		}

		v, err := flags.GetString(name)
		if err == nil && v == "" {
			return fmt.Errorf("%w: --%s", errEmptyValue, name)
		}
	}

	return nil
}
