package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/orbit/internal/cli"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	err = os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func Test_Print_Config_Defaults_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("print-config")
	cli.AssertContains(t, stdout, "task_file="+c.TaskFile())
	cli.AssertContains(t, stdout, "ai_grouping=true")
	cli.AssertContains(t, stdout, "suggestion_ttl_s=45")
	cli.AssertContains(t, stdout, "(defaults only)")
}

func Test_Print_Config_From_Config_File_With_Comments_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	writeFile(t, filepath.Join(c.Dir, ".orbit.json"), `{
		// tasks live elsewhere
		"task_file": "my-tasks.json",
		"debounce_ms": 250,
	}`)

	stdout := c.MustRun("print-config")
	cli.AssertContains(t, stdout, "task_file="+filepath.Join(c.Dir, "my-tasks.json"))
	cli.AssertContains(t, stdout, "debounce_ms=250")
	cli.AssertContains(t, stdout, "project_config="+filepath.Join(c.Dir, ".orbit.json"))
}

func Test_Print_Config_Explicit_Config_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	writeFile(t, filepath.Join(c.Dir, "alt.json"), `{"ai_grouping": false}`)

	stdout := c.MustRun("-c", "alt.json", "print-config")
	cli.AssertContains(t, stdout, "ai_grouping=false")
}

func Test_Print_Config_Global_Flags_Override_Files_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	writeFile(t, filepath.Join(c.Dir, ".orbit.json"), `{"task_file": "file.json"}`)

	stdout := c.MustRun("--task-file", "flag.json", "--no-grouping", "print-config")
	cli.AssertContains(t, stdout, "task_file="+filepath.Join(c.Dir, "flag.json"))
	cli.AssertContains(t, stdout, "ai_grouping=false")
}

func Test_Print_Config_Global_Config_From_XDG_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	global := filepath.Join(c.Env["XDG_CONFIG_HOME"], "orbit", "config.json")
	writeFile(t, global, `{"tick_ms": 500}`)

	stdout := c.MustRun("print-config")
	cli.AssertContains(t, stdout, "tick_ms=500")
	cli.AssertContains(t, stdout, "global_config="+global)
}

func Test_Config_Errors_When_Invoked(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name    string
		project string
		args    []string
		want    string
	}{
		{name: "explicit config missing", args: []string{"-c", "nope.json", "ls"}, want: "config file not found"},
		{name: "invalid json", project: `{"task_file": }`, args: []string{"ls"}, want: "invalid config file"},
		{name: "empty task file", project: `{"task_file": ""}`, args: []string{"ls"}, want: "task-file cannot be empty"},
		{name: "empty task file flag", args: []string{"--task-file=", "ls"}, want: "task-file cannot be empty"},
		{name: "zero tick", project: `{"tick_ms": 0}`, args: []string{"ls"}, want: "must be positive"},
		{name: "unknown global flag", args: []string{"--bogus", "ls"}, want: "unknown flag"},
		{name: "unknown command", args: []string{"launch"}, want: "unknown command: launch"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			if tt.project != "" {
				writeFile(t, filepath.Join(c.Dir, ".orbit.json"), tt.project)
			}

			stderr := c.MustFail(tt.args...)
			cli.AssertContains(t, stderr, tt.want)
		})
	}
}

func Test_Help_Lists_Commands_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	for _, args := range [][]string{nil, {"--help"}, {"-h"}} {
		stdout := c.MustRun(args...)
		cli.AssertContains(t, stdout, "Usage: orbit [options] <command> [args]")
		cli.AssertContains(t, stdout, "systems [--json]")
		cli.AssertContains(t, stdout, "watch [flags]")
	}
}

func Test_Command_Help_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("add", "--help")
	cli.AssertContains(t, stdout, "Usage: orbit add <text> [flags]")
	cli.AssertContains(t, stdout, "--priority")
}
