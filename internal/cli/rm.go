package cli

import (
	"context"

	"github.com/calvinalkan/orbit/internal/config"
	"github.com/calvinalkan/orbit/internal/engine"
	"github.com/calvinalkan/orbit/internal/task"

	flag "github.com/spf13/pflag"
)

// RmCmd returns the rm command.
func RmCmd(cfg *config.Config) *Command {
	return &Command{
		Flags:   flag.NewFlagSet("rm", flag.ContinueOnError),
		Usage:   "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete tasks",
		Long:    "Delete one or more tasks. Nothing is deleted if any ID does not resolve.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execRm(o, cfg, args)
		},
	}
}

func execRm(o *IO, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return task.ErrIDRequired
	}

	var removed []string

	err := mutate(o, cfg, func(e *engine.Engine) error {
		for _, ref := range args {
			t, err := e.Resolve(ref)
			if err != nil {
				return err
			}

			err = e.Delete(t.ID)
			if err != nil {
				return err
			}

			removed = append(removed, t.ID)
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range removed {
		o.Println("Deleted", id)
	}

	return nil
}
