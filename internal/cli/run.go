// Package cli implements the orbit command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/calvinalkan/orbit/internal/config"

	flag "github.com/spf13/pflag"
)

// Run is the main entry point. Returns exit code.
// sigCh may be nil; when it delivers, the command's context is cancelled.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := flag.NewFlagSet("orbit", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{})

	workDir := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	configPath := globals.StringP("config", "c", "", "Use specified config `file`")
	taskFile := globals.String("task-file", "", "Override the task file `path`")
	noGrouping := globals.Bool("no-grouping", false, "Start with AI grouping disabled")
	help := globals.BoolP("help", "h", false, "Show help")

	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}

	err := globals.Parse(rest)
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, globals, nil)

		return 1
	}

	if globals.Changed("task-file") && *taskFile == "" {
		fprintln(errOut, "error:", config.ErrTaskFileEmpty)

		return 1
	}

	input := config.LoadInput{
		WorkDirOverride:  *workDir,
		ConfigPath:       *configPath,
		TaskFileOverride: *taskFile,
		Env:              env,
	}

	if *noGrouping {
		off := false
		input.GroupingOverride = &off
	}

	cfg, err := config.Load(input)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	commands := allCommands(&cfg, env, in)

	if *help || globals.NArg() == 0 {
		printUsage(out, globals, commands)

		return 0
	}

	name := globals.Arg(0)

	cmd := findCommand(commands, name)
	if cmd == nil {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", errUnknownCommand, name))
		printUsage(errOut, globals, commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return cmd.Run(ctx, NewIO(out, errOut), globals.Args()[1:])
}

var errUnknownCommand = errors.New("unknown command")

func allCommands(cfg *config.Config, env map[string]string, in io.Reader) []*Command {
	return []*Command{
		AddCmd(cfg),
		EditCmd(cfg),
		RmCmd(cfg),
		DoneCmd(cfg),
		LsCmd(cfg),
		ShowCmd(cfg),
		SystemsCmd(cfg),
		SuggestCmd(cfg),
		WatchCmd(cfg, env, in),
		PrintConfigCmd(cfg),
	}
}

func findCommand(commands []*Command, name string) *Command {
	for _, c := range commands {
		if c.Matches(name) {
			return c
		}
	}

	return nil
}

func printUsage(w io.Writer, globals *flag.FlagSet, commands []*Command) {
	fprintln(w, "orbit - tasks as solar systems")
	fprintln(w)
	fprintln(w, "Usage: orbit [options] <command> [args]")
	fprintln(w)
	fprintln(w, "Options:")
	fprintf(w, "%s", globals.FlagUsages())

	if len(commands) == 0 {
		return
	}

	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func fprintf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}
