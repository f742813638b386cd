package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calvinalkan/orbit/internal/cli"
)

func TestAddPrintsIDAndPersists(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("add", "-k", "work", "-p", "high", "-d", "2030-01-02", "Fix", "invoice")

	if len(id) != 36 {
		t.Fatalf("id=%q, want a uuid", id)
	}

	content := c.ReadTaskFile()
	cli.AssertContains(t, content, `"text": "Fix invoice"`)
	cli.AssertContains(t, content, `"priority": "high"`)
	cli.AssertContains(t, content, `"deadline": "2030-01-02T00:00:00Z"`)

	stdout := c.MustRun("ls")
	cli.AssertContains(t, stdout, id[:8])
	cli.AssertContains(t, stdout, "Fix invoice")
	cli.AssertContains(t, stdout, "work")
	cli.AssertContains(t, stdout, "due 2030-01-02 00:00")
}

func TestAddValidation(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		args []string
		want string
	}{
		{name: "missing text", args: []string{"add"}, want: "task text is required"},
		{name: "bad priority", args: []string{"add", "-p", "urgent", "x"}, want: "invalid priority"},
		{name: "bad deadline", args: []string{"add", "-d", "soon", "x"}, want: "invalid deadline"},
		{name: "empty category", args: []string{"add", "--category=", "x"}, want: "empty value not allowed: --category"},
		{name: "unknown flag", args: []string{"add", "--color", "red", "x"}, want: "unknown flag: --color"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			stderr := c.MustFail(tt.args...)
			cli.AssertContains(t, stderr, tt.want)
		})
	}
}

func TestShowClassifiesTask(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("add", "-k", "Health", "--goal", "Run a marathon")

	stdout := c.MustRun("show", id[:6])
	cli.AssertContains(t, stdout, "Run a marathon")
	cli.AssertContains(t, stdout, "role: sun")
	cli.AssertContains(t, stdout, "system_key: health")
	cli.AssertContains(t, stdout, "color=#8e8e93")
}

func TestShowErrors(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		args []string
		want string
	}{
		{name: "missing ID", args: []string{"show"}, want: "task ID is required"},
		{name: "unknown ID", args: []string{"show", "nonexistent"}, want: "task not found"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			stderr := c.MustFail(tt.args...)
			cli.AssertContains(t, stderr, tt.want)
		})
	}
}

func TestEditChangesOnlyGivenFields(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("add", "-k", "work", "-d", "2030-01-02", "Write report")

	c.MustRun("edit", id, "-p", "low", "--clear-deadline", "-s", "Outline")

	content := c.ReadTaskFile()
	cli.AssertContains(t, content, `"priority": "low"`)
	cli.AssertContains(t, content, `"category": "work"`)
	cli.AssertContains(t, content, `"text": "Outline"`)
	cli.AssertNotContains(t, content, `"deadline"`)

	stderr := c.MustFail("edit", id)
	cli.AssertContains(t, stderr, "nothing to edit")
}

func TestDoneTogglesTaskAndSubTask(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("add", "-s", "DNS", "-s", "Copy", "Launch site")

	stdout := c.MustRun("done", id, "2")
	cli.AssertContains(t, stdout, "[x] "+id[:8]+" Copy")

	stdout = c.MustRun("ls")
	cli.AssertContains(t, stdout, "(1/2)")

	stdout = c.MustRun("done", id)
	cli.AssertContains(t, stdout, "[x] "+id[:8]+" Launch site")

	stdout = c.MustRun("ls", "--open")
	cli.AssertNotContains(t, stdout, "Launch site")

	stdout = c.MustRun("ls", "--done")
	cli.AssertContains(t, stdout, "Launch site")

	stderr := c.MustFail("done", id, "9")
	cli.AssertContains(t, stderr, "sub-task not found")
}

func TestRmDeletesAllOrNothing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	a := c.MustRun("add", "First")
	b := c.MustRun("add", "Second")

	stderr := c.MustFail("rm", a, "missing-id")
	cli.AssertContains(t, stderr, "task not found")

	stdout := c.MustRun("ls")
	cli.AssertContains(t, stdout, "First")

	stdout = c.MustRun("rm", a, b)
	cli.AssertContains(t, stdout, "Deleted "+a)
	cli.AssertContains(t, stdout, "Deleted "+b)

	if got := c.MustRun("ls"); got != "" {
		t.Fatalf("ls after rm=%q, want empty", got)
	}
}

func TestLsFiltersByCategory(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("add", "-k", "work", "Fix invoice")
	c.MustRun("add", "-k", "home", "Water plants")

	stdout := c.MustRun("ls", "-k", "WORK")
	cli.AssertContains(t, stdout, "Fix invoice")
	cli.AssertNotContains(t, stdout, "Water plants")

	stderr := c.MustFail("ls", "--open", "--done")
	cli.AssertContains(t, stderr, "mutually exclusive")
}

func TestLsWarnsAboutDuplicateIDs(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteTaskFile(`{"version":1,"tasks":[
		{"id":"dup1","text":"One"},
		{"id":"dup1","text":"Two"}
	]}`)

	stdout, stderr, code := c.Run("ls")
	if code != 1 {
		t.Errorf("exit=%d, want 1 for warnings", code)
	}

	cli.AssertContains(t, stdout, "One")
	cli.AssertContains(t, stderr, "warning: duplicate task id dup1")
}

func TestCorruptTaskFileFails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteTaskFile("not json")

	stderr := c.MustFail("ls")
	cli.AssertContains(t, stderr, "task file corrupt")
}

func TestSystemsGroupsTasks(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("add", "-k", "work", "-p", "high", "Fix invoice")
	c.MustRun("add", "-k", "work", "-p", "low", "Quarterly slides")

	stdout := c.MustRun("systems")
	cli.AssertContains(t, stdout, "work  tasks=2 done=0 avg_priority=2.00")
	cli.AssertContains(t, stdout, "(synthesized)")
	cli.AssertContains(t, stdout, "Fix invoice")

	var out struct {
		Grouping bool `json:"grouping"`
		Systems  []struct {
			Key        string              `json:"key"`
			Sun        struct{ ID string } `json:"sun"`
			Satellites []json.RawMessage   `json:"satellites"`
		} `json:"systems"`
		Positions struct {
			Anchors map[string]json.RawMessage `json:"anchors"`
			Orbits  map[string]json.RawMessage `json:"orbits"`
		} `json:"positions"`
	}

	err := json.Unmarshal([]byte(c.MustRun("systems", "--json")), &out)
	if err != nil {
		t.Fatalf("systems --json is not JSON: %v", err)
	}

	if !out.Grouping || len(out.Systems) != 1 {
		t.Fatalf("grouping=%v systems=%d, want true/1", out.Grouping, len(out.Systems))
	}

	if got := out.Systems[0]; got.Key != "work" || got.Sun.ID != "sun:work" || len(got.Satellites) != 2 {
		t.Errorf("system=%+v", got)
	}

	if len(out.Positions.Anchors) != 1 || len(out.Positions.Orbits) != 2 {
		t.Errorf("anchors=%d orbits=%d, want 1/2", len(out.Positions.Anchors), len(out.Positions.Orbits))
	}
}

func TestSystemsWithGroupingDisabled(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("add", "Fix invoice")

	stdout := c.MustRun("--no-grouping", "systems")
	cli.AssertContains(t, stdout, "(grouping disabled)")
	cli.AssertNotContains(t, stdout, "Fix invoice")

	stdout = c.MustRun("--no-grouping", "systems", "--json")
	cli.AssertContains(t, stdout, `"systems": []`)
}

func TestSuggestPreview(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("suggest")
	cli.AssertContains(t, stderr, "no suggestion available")

	id := c.MustRun("add", "-k", "work", "Write report")

	stdout := c.MustRun("suggest")
	cli.AssertContains(t, stdout, "[medium]")
	cli.AssertContains(t, stdout, "task "+id[:8]+" Write report")

	stdout = c.MustRun("suggest", id[:8])
	cli.AssertContains(t, stdout, "impact")

	c.MustRun("done", id)

	stderr = c.MustFail("suggest", id[:8])
	cli.AssertContains(t, stderr, "no suggestion available")
}

func TestWatchSessionFromInput(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("add", "-k", "work", "Fix invoice")

	input := strings.Join([]string{
		"add Water plants",
		"ls",
		"group off",
		"sys",
		"group",
		"bogus",
		"quit",
		"ls",
	}, "\n")

	stdout, stderr, code := c.RunWithInput(input, "watch")
	if code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr)
	}

	cli.AssertContains(t, stdout, "Added ")
	cli.AssertContains(t, stdout, "Water plants")
	cli.AssertContains(t, stdout, "grouping off")
	cli.AssertContains(t, stdout, "(grouping disabled)")
	cli.AssertContains(t, stdout, "grouping on")
	cli.AssertContains(t, stderr, "unknown command")

	cli.AssertContains(t, c.ReadTaskFile(), "Water plants")
}

func TestCommandAliases(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.AddTask("Fix invoice", "-k", "work")

	cli.AssertContains(t, c.MustRun("list"), "Fix invoice")
	cli.AssertContains(t, c.MustRun("sys"), "work  tasks=1")
	cli.AssertContains(t, c.MustRun("delete", id[:8]), "Deleted "+id)

	if got := c.Tasks(); len(got) != 0 {
		t.Fatalf("tasks after delete=%+v", got)
	}

	cli.AssertContains(t, c.MustRun("--help"), "(alias: list)")
	cli.AssertContains(t, c.MustRun("rm", "--help"), "Aliases: delete")
}

func TestUnknownTaskErrorsHintAtLs(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.AddTask("Fix invoice")

	stderr := c.MustFail("done", "zzzz9999")
	cli.AssertContains(t, stderr, "task not found")
	cli.AssertContains(t, stderr, "hint: 'orbit ls' lists task IDs")

	stderr = c.MustFail("show")
	cli.AssertNotContains(t, stderr, "hint:")
}

func TestFlagErrorPrintsCommandUsage(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("ls", "--bogus")
	cli.AssertContains(t, stderr, "unknown flag: --bogus")
	cli.AssertContains(t, stderr, "usage: orbit ls [flags]")
}

func TestProjectConfigPointsAtTaskFile(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteConfig(`{
		// relative to the project directory
		"task_file": "plan.json",
	}`)

	c.AddTask("Water plants")

	content, err := os.ReadFile(filepath.Join(c.Dir, "plan.json"))
	if err != nil {
		t.Fatalf("task file from config not written: %v", err)
	}

	cli.AssertContains(t, string(content), "Water plants")
}
