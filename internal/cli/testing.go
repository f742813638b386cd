package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calvinalkan/orbit/internal/store"
	"github.com/calvinalkan/orbit/internal/task"
)

// CLI runs orbit commands against a throwaway project directory. The global
// config lives under Dir/.xdg, so a developer's own config never applies.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

// NewCLI returns a CLI rooted in a fresh temp directory.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	dir := t.TempDir()

	return &CLI{
		t:   t,
		Dir: dir,
		Env: map[string]string{"XDG_CONFIG_HOME": filepath.Join(dir, ".xdg")},
	}
}

// Run runs "orbit --cwd Dir args..." and returns stdout, stderr and the exit
// code.
func (r *CLI) Run(args ...string) (string, string, int) {
	return r.run(nil, args)
}

// RunWithInput is Run with stdin, for commands that read lines like watch.
func (r *CLI) RunWithInput(stdin string, args ...string) (string, string, int) {
	return r.run(strings.NewReader(stdin), args)
}

func (r *CLI) run(stdin io.Reader, args []string) (string, string, int) {
	var stdout, stderr bytes.Buffer

	argv := append([]string{"orbit", "--cwd", r.Dir}, args...)
	code := Run(stdin, &stdout, &stderr, argv, r.Env, nil)

	return stdout.String(), stderr.String(), code
}

// MustRun fails the test unless the command exits 0. Returns trimmed stdout.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code != 0 {
		r.t.Fatalf("orbit %v: exit=%d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail fails the test unless the command exits non-zero with nothing on
// stdout. Returns trimmed stderr.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code == 0 {
		r.t.Fatalf("orbit %v: succeeded, want failure\nstdout: %s", args, stdout)
	}

	if stdout != "" {
		r.t.Fatalf("orbit %v: failed but wrote stdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// AddTask runs "orbit add" and returns the new task's ID.
func (r *CLI) AddTask(text string, flags ...string) string {
	r.t.Helper()

	return r.MustRun(append(append([]string{"add"}, flags...), text)...)
}

// TaskFile is the default task file path.
func (r *CLI) TaskFile() string {
	return filepath.Join(r.Dir, ".orbit", "tasks.json")
}

// Tasks decodes the default task file.
func (r *CLI) Tasks() []task.Task {
	r.t.Helper()

	tasks, err := store.Load(r.TaskFile())
	if err != nil {
		r.t.Fatalf("load %s: %v", r.TaskFile(), err)
	}

	return tasks
}

// ReadTaskFile returns the raw default task file.
func (r *CLI) ReadTaskFile() string {
	r.t.Helper()

	content, err := os.ReadFile(r.TaskFile())
	if err != nil {
		r.t.Fatalf("read task file: %v", err)
	}

	return string(content)
}

// WriteTaskFile replaces the default task file with content.
func (r *CLI) WriteTaskFile(content string) {
	r.t.Helper()
	r.writeFile(r.TaskFile(), content)
}

// WriteConfig writes the project config (.orbit.json) in Dir.
func (r *CLI) WriteConfig(content string) {
	r.t.Helper()
	r.writeFile(filepath.Join(r.Dir, ".orbit.json"), content)
}

func (r *CLI) writeFile(path, content string) {
	r.t.Helper()

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err == nil {
		err = os.WriteFile(path, []byte(content), 0o600)
	}

	if err != nil {
		r.t.Fatalf("write %s: %v", path, err)
	}
}

// AssertContains reports an error unless content contains substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("missing %q in:\n%s", substr, content)
	}
}

// AssertNotContains reports an error if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("unexpected %q in:\n%s", substr, content)
	}
}
