package cli

import (
	"context"
	"strings"

	"github.com/calvinalkan/orbit/internal/config"
	"github.com/calvinalkan/orbit/internal/engine"
	"github.com/calvinalkan/orbit/internal/task"

	flag "github.com/spf13/pflag"
)

// AddCmd returns the add command.
func AddCmd(cfg *config.Config) *Command {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.StringP("category", "k", "", "Category (free text, e.g. work, health)")
	fs.StringP("priority", "p", "", "Priority: low|medium|high [default: medium]")
	fs.StringP("deadline", "d", "", "Deadline (RFC 3339 or YYYY-MM-DD)")
	fs.StringArrayP("sub", "s", nil, "Sub-task text (repeatable)")
	fs.Bool("goal", false, "Mark as an overarching goal")
	fs.String("system", "", "Pin to a named system instead of the category")

	return &Command{
		Flags: fs,
		Usage: "add <text> [flags]",
		Short: "Add a task, prints its ID",
		Long: `Add a task. All words after the flags form the task text.

Goals become suns, tasks with sub-tasks become planets, everything else
orbits as a satellite.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execAdd(o, cfg, fs, args)
		},
	}
}

func execAdd(o *IO, cfg *config.Config, fs *flag.FlagSet, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return errTextRequired
	}

	err := validateNotEmpty(fs, "category", "priority", "deadline", "system")
	if err != nil {
		return err
	}

	draft, err := draftFromFlags(fs, text)
	if err != nil {
		return err
	}

	var added task.Task

	err = mutate(o, cfg, func(e *engine.Engine) error {
		added = e.Add(draft)

		return nil
	})
	if err != nil {
		return err
	}

	o.Println(added.ID)

	return nil
}

func draftFromFlags(fs *flag.FlagSet, text string) (task.Draft, error) {
	category, _ := fs.GetString("category")
	priority, _ := fs.GetString("priority")
	deadline, _ := fs.GetString("deadline")
	subs, _ := fs.GetStringArray("sub")
	goal, _ := fs.GetBool("goal")
	system, _ := fs.GetString("system")

	d := task.Draft{
		Text:     text,
		Category: category,
		Goal:     goal,
		System:   system,
	}

	if priority != "" {
		p, err := parsePriorityFlag(priority)
		if err != nil {
			return task.Draft{}, err
		}

		d.Priority = p
	}

	if deadline != "" {
		at, err := parseDeadline(deadline)
		if err != nil {
			return task.Draft{}, err
		}

		d.Deadline = &at
	}

	for _, s := range subs {
		if strings.TrimSpace(s) == "" {
			return task.Draft{}, errEmptyValue
		}

		d.SubTasks = append(d.SubTasks, s)
	}

	return d, nil
}
