package cli

import (
	"context"
	"errors"

	"github.com/calvinalkan/orbit/internal/asteroid"
	"github.com/calvinalkan/orbit/internal/config"
	"github.com/calvinalkan/orbit/internal/engine"

	flag "github.com/spf13/pflag"
)

var errNoSuggestion = errors.New("no suggestion available")

// SuggestCmd returns the suggest command.
func SuggestCmd(cfg *config.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("suggest", flag.ContinueOnError),
		Usage: "suggest [id]",
		Short: "Preview a suggested next action",
		Long: `Preview the suggestion (asteroid) the engine would offer next, or the one
for a specific task. Suggestions are not saved; use "orbit watch" to accept
or reject them before they expire.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execSuggest(o, cfg, args)
		},
	}
}

func execSuggest(o *IO, cfg *config.Config, args []string) error {
	return view(o, cfg, func(e *engine.Engine) error {
		var (
			s  asteroid.Suggestion
			ok bool
		)

		if len(args) > 0 {
			t, err := resolveRef(e, args)
			if err != nil {
				return err
			}

			s, ok = e.Suggest(t.ID)
		} else {
			s, ok = e.SuggestNext()
		}

		if !ok {
			return errNoSuggestion
		}

		for _, v := range e.Snapshot().Suggestions {
			if v.ID == s.ID {
				printSuggestion(o, &v)
			}
		}

		return nil
	})
}

func printSuggestion(o *IO, v *asteroid.View) {
	o.Printf("%s %s [%s] %s\n", shortID(v.ID), formatSeconds(v.Remaining), v.Urgency, v.Action)
	o.Printf("    %s\n", v.Description)

	target := v.TaskText
	if target == "" {
		target = "(task removed)"
	}

	o.Printf("    impact %d, task %s %s\n", v.Impact, shortID(v.TaskID), target)
}
