package cli

import (
	"context"

	"github.com/calvinalkan/orbit/internal/config"
	"github.com/calvinalkan/orbit/internal/engine"
	"github.com/calvinalkan/orbit/internal/task"

	flag "github.com/spf13/pflag"
)

// DoneCmd returns the done command.
func DoneCmd(cfg *config.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("done", flag.ContinueOnError),
		Usage: "done <id> [sub]",
		Short: "Toggle a task or sub-task complete",
		Long: `Toggle a task's completed flag. With a second argument, toggle the
sub-task at that 1-based position, or with that ID or ID prefix.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execDone(o, cfg, args)
		},
	}
}

func execDone(o *IO, cfg *config.Config, args []string) error {
	var (
		updated task.Task
		sub     *task.SubTask
	)

	err := mutate(o, cfg, func(e *engine.Engine) error {
		t, err := resolveRef(e, args)
		if err != nil {
			return err
		}

		if len(args) < 2 {
			updated, err = e.ToggleComplete(t.ID)

			return err
		}

		before := len(t.SubTasks)

		updated, err = e.ToggleSubTask(t.ID, args[1])
		if err != nil {
			return err
		}

		for i := range min(before, len(updated.SubTasks)) {
			if updated.SubTasks[i].Completed != t.SubTasks[i].Completed {
				sub = &updated.SubTasks[i]

				break
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	if sub != nil {
		o.Printf("%s %s %s\n", checkbox(sub.Completed), shortID(updated.ID), sub.Text)

		return nil
	}

	o.Printf("%s %s %s\n", checkbox(updated.Completed), shortID(updated.ID), updated.Text)

	return nil
}
