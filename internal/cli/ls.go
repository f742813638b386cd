package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/calvinalkan/orbit/internal/config"
	"github.com/calvinalkan/orbit/internal/engine"
	"github.com/calvinalkan/orbit/internal/task"

	flag "github.com/spf13/pflag"
)

// LsCmd returns the ls command.
func LsCmd(cfg *config.Config) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.Bool("open", false, "Only tasks that are not completed")
	fs.Bool("done", false, "Only completed tasks")
	fs.StringP("category", "k", "", "Only tasks in this category")

	return &Command{
		Flags:   fs,
		Usage:   "ls [flags]",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			return execLs(o, cfg, fs)
		},
	}
}

func execLs(o *IO, cfg *config.Config, fs *flag.FlagSet) error {
	onlyOpen, _ := fs.GetBool("open")
	onlyDone, _ := fs.GetBool("done")
	category, _ := fs.GetString("category")

	if onlyOpen && onlyDone {
		return fmt.Errorf("%w: --open and --done", errMutuallyExclusive)
	}

	if category != "" {
		category, _ = task.NormalizeCategory(category)
	}

	return view(o, cfg, func(e *engine.Engine) error {
		for _, t := range e.Tasks() {
			if onlyOpen && t.Completed || onlyDone && !t.Completed {
				continue
			}

			if category != "" && categoryOf(&t) != category {
				continue
			}

			o.Println(lsLine(&t))
		}

		return nil
	})
}

func lsLine(t *task.Task) string {
	var b strings.Builder

	b.WriteString(shortID(t.ID))
	b.WriteString(" ")
	b.WriteString(checkbox(t.Completed))
	b.WriteString(" ")
	b.WriteString(cell(string(priorityOf(t)), 6))
	b.WriteString(" ")
	b.WriteString(cell(categoryOf(t), 12))
	b.WriteString(" ")
	b.WriteString(cell(t.Text, textWidth))

	if t.HasDeadline() {
		b.WriteString(" due ")
		b.WriteString(formatDeadline(t.Deadline))
	}

	if n := len(t.SubTasks); n > 0 {
		fmt.Fprintf(&b, " (%d/%d)", n-len(t.OpenSubTasks()), n)
	}

	return strings.TrimRight(b.String(), " ")
}
