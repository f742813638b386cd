package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/calvinalkan/orbit/internal/task"

	flag "github.com/spf13/pflag"
)

// Command is one orbit subcommand.
type Command struct {
	// Flags holds the command's own flags. Global flags (-C, -c, --task-file,
	// --no-grouping) are parsed by Run before the command sees its args.
	Flags *flag.FlagSet

	// Usage follows "orbit" in help output; its first word is the command
	// name, e.g. "done <id> [sub]".
	Usage string

	// Aliases are extra names accepted on the command line and in help.
	Aliases []string

	// Short is the one-liner in the command listing; Long, when set,
	// replaces it in "orbit <cmd> --help".
	Short string
	Long  string

	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the command name.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// Matches reports whether name selects c.
func (c *Command) Matches(name string) bool {
	return name == c.Name() || slices.Contains(c.Aliases, name)
}

// HelpLine is the command's row in the top-level listing.
func (c *Command) HelpLine() string {
	short := c.Short
	if len(c.Aliases) > 0 {
		short += " (alias: " + strings.Join(c.Aliases, ", ") + ")"
	}

	return fmt.Sprintf("  %-24s %s", c.Usage, short)
}

// PrintHelp prints "orbit <cmd> --help".
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: orbit", c.Usage)

	if len(c.Aliases) > 0 {
		o.Println("Aliases:", strings.Join(c.Aliases, ", "))
	}

	o.Println()

	if c.Long != "" {
		o.Println(c.Long)
	} else {
		o.Println(c.Short)
	}

	if c.Flags == nil || !c.Flags.HasFlags() {
		return
	}

	o.Println()
	o.Println("Flags:")
	o.Printf("%s", c.Flags.FlagUsages())
}

// Run parses args into the command's flags, executes it and returns the exit
// code. Failures go to stderr only; stdout stays empty so scripts can rely on
// it.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{})

	err := c.Flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		c.PrintHelp(o)

		return 0
	}

	if err != nil {
		o.ErrPrintln("error:", err)
		o.ErrPrintln("usage: orbit", c.Usage)

		return 1
	}

	err = c.Exec(ctx, o, c.Flags.Args())
	if err != nil {
		o.ErrPrintln("error:", err)

		if errors.Is(err, task.ErrTaskNotFound) || errors.Is(err, task.ErrAmbiguousID) {
			o.ErrPrintln("hint: 'orbit ls' lists task IDs; any unique prefix of 4+ characters works")
		}

		return 1
	}

	return o.Finish()
}
