package cli

import (
	"context"
	"strings"

	"github.com/calvinalkan/orbit/internal/config"
	"github.com/calvinalkan/orbit/internal/engine"
	"github.com/calvinalkan/orbit/internal/task"

	flag "github.com/spf13/pflag"
)

// EditCmd returns the edit command.
func EditCmd(cfg *config.Config) *Command {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.StringP("text", "t", "", "Replace the task text")
	fs.StringP("category", "k", "", "Set the category")
	fs.StringP("priority", "p", "", "Set the priority: low|medium|high")
	fs.StringP("deadline", "d", "", "Set the deadline (RFC 3339 or YYYY-MM-DD)")
	fs.Bool("clear-deadline", false, "Remove the deadline")
	fs.StringArrayP("sub", "s", nil, "Append a sub-task (repeatable)")
	fs.Bool("goal", false, "Set or clear the goal flag (--goal=false)")
	fs.String("system", "", "Pin to a named system (--system= unpins)")

	return &Command{
		Flags: fs,
		Usage: "edit <id> [flags]",
		Short: "Change fields of a task",
		Long:  "Change fields of a task. Only flags that are given are applied.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execEdit(o, cfg, fs, args)
		},
	}
}

func execEdit(o *IO, cfg *config.Config, fs *flag.FlagSet, args []string) error {
	err := validateNotEmpty(fs, "text", "category", "priority", "deadline")
	if err != nil {
		return err
	}

	patch, err := patchFromFlags(fs)
	if err != nil {
		return err
	}

	if patch.IsEmpty() {
		return errNothingToEdit
	}

	var updated task.Task

	err = mutate(o, cfg, func(e *engine.Engine) error {
		t, err := resolveRef(e, args)
		if err != nil {
			return err
		}

		updated, err = e.Update(t.ID, patch)

		return err
	})
	if err != nil {
		return err
	}

	o.Println("Updated", updated.ID)

	return nil
}

func patchFromFlags(fs *flag.FlagSet) (task.Patch, error) {
	var p task.Patch

	if fs.Changed("text") {
		v, _ := fs.GetString("text")
		p.Text = &v
	}

	if fs.Changed("category") {
		v, _ := fs.GetString("category")
		p.Category = &v
	}

	if fs.Changed("priority") {
		v, _ := fs.GetString("priority")

		parsed, err := parsePriorityFlag(v)
		if err != nil {
			return task.Patch{}, err
		}

		p.Priority = &parsed
	}

	if fs.Changed("deadline") {
		v, _ := fs.GetString("deadline")

		at, err := parseDeadline(v)
		if err != nil {
			return task.Patch{}, err
		}

		p.Deadline = &at
	}

	p.ClearDeadline, _ = fs.GetBool("clear-deadline")

	if fs.Changed("goal") {
		v, _ := fs.GetBool("goal")
		p.Goal = &v
	}

	if fs.Changed("system") {
		v, _ := fs.GetString("system")
		p.System = &v
	}

	subs, _ := fs.GetStringArray("sub")
	for _, s := range subs {
		if strings.TrimSpace(s) == "" {
			return task.Patch{}, errEmptyValue
		}

		p.AddSubTasks = append(p.AddSubTasks, s)
	}

	return p, nil
}
