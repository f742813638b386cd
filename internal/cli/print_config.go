package cli

import (
	"context"
	"strconv"

	"github.com/calvinalkan/orbit/internal/config"

	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg *config.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			return execPrintConfig(o, cfg)
		},
	}
}

func execPrintConfig(o *IO, cfg *config.Config) error {
	o.Println("effective_cwd=" + cfg.EffectiveCwd)
	o.Println("task_file=" + cfg.TaskFileAbs)
	o.Println("ai_grouping=" + strconv.FormatBool(cfg.AIGrouping))
	o.Println("debounce_ms=" + strconv.Itoa(cfg.DebounceMS))
	o.Println("tick_ms=" + strconv.Itoa(cfg.TickMS))
	o.Println("suggestion_ttl_s=" + strconv.Itoa(cfg.SuggestionTTLS))
	o.Println("suggestion_interval_s=" + strconv.Itoa(cfg.SuggestionIntervalS))
	o.Println("max_active_suggestions=" + strconv.Itoa(cfg.MaxActiveSuggestions))

	o.Println("")
	o.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		o.Println("(defaults only)")

		return nil
	}

	if cfg.Sources.Global != "" {
		o.Println("global_config=" + cfg.Sources.Global)
	}

	if cfg.Sources.Project != "" {
		o.Println("project_config=" + cfg.Sources.Project)
	}

	return nil
}
