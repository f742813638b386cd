package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/calvinalkan/orbit/internal/asteroid"
	"github.com/calvinalkan/orbit/internal/clock"
	"github.com/calvinalkan/orbit/internal/config"
	"github.com/calvinalkan/orbit/internal/engine"
	"github.com/calvinalkan/orbit/internal/store"
	"github.com/calvinalkan/orbit/internal/task"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
)

var (
	errUnknownWatchCommand = errors.New("unknown command (type 'help' for commands)")
	errSuggestionRequired  = errors.New("suggestion ID is required")
	errSuggestionGone      = errors.New("no active suggestion")
	errInvalidGroupArg     = errors.New("group takes on or off")
)

var watchCommands = []string{
	"help", "ls", "sys", "sug", "next", "suggest",
	"accept", "reject", "add", "done", "rm", "group", "quit",
}

// WatchCmd returns the watch command.
func WatchCmd(cfg *config.Config, env map[string]string, in io.Reader) *Command {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.BoolP("verbose", "v", false, "Log engine activity to stderr")

	return &Command{
		Flags: fs,
		Usage: "watch [flags]",
		Short: "Run the live engine with an interactive prompt",
		Long: `Run the engine live. Suggestions appear over time and expire after their
time limit; accept or reject them before that. Alerts are printed when a
suggestion becomes critical. Task changes are saved as you make them.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			verbose, _ := fs.GetBool("verbose")

			return execWatch(ctx, o, cfg, env, in, verbose)
		},
	}
}

func execWatch(ctx context.Context, o *IO, cfg *config.Config, env map[string]string, in io.Reader, verbose bool) error {
	tasks, err := store.Load(cfg.TaskFileAbs)
	if err != nil {
		return err
	}

	warnLoad(o, cfg, tasks)

	logger := slog.New(slog.DiscardHandler)
	if verbose {
		logger = slog.New(slog.NewTextHandler(o.Err(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	s := newWatchSession(o, cfg, tasks, clock.Real{}, logger)

	ctx, cancel := context.WithCancel(ctx)
	relayDone := make(chan struct{})

	defer func() {
		cancel()
		<-relayDone
	}()

	go func() { _ = s.engine.Run(ctx) }()

	go func() {
		defer close(relayDone)
		s.relayNotifications(ctx)
	}()

	o.Println("orbit watch - type 'help' for commands")

	if f, ok := in.(*os.File); ok && f == os.Stdin {
		return s.runLiner(ctx, env)
	}

	return s.runScanner(ctx, in)
}

// watchSession is one interactive engine session. mu serializes output
// between prompt commands and notifications arriving from the engine loop.
type watchSession struct {
	mu     sync.Mutex
	o      *IO
	cfg    *config.Config
	engine *engine.Engine
	shown  map[string]bool
	notify chan struct{}
}

func newWatchSession(o *IO, cfg *config.Config, tasks []task.Task, clk clock.Clock, logger *slog.Logger) *watchSession {
	s := &watchSession{o: o, cfg: cfg, shown: make(map[string]bool), notify: make(chan struct{}, 1)}

	opts := engineOptions(cfg, clk, logger)
	opts.OnResolve = func(taskID string, outcome asteroid.Outcome) {
		logger.Info("suggestion resolved", "task", taskID, "outcome", outcome)
	}
	// Called from the engine loop, or from exec while mu is held: only signal.
	opts.OnNotify = func(asteroid.Notification) {
		select {
		case s.notify <- struct{}{}:
		default:
		}
	}

	s.engine = engine.New(tasks, opts)

	return s
}

func (s *watchSession) runLiner(ctx context.Context, env map[string]string) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(completeWatch)

	history := historyFile(env)
	if f, err := os.Open(history); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}

	defer saveHistory(line, history)

	for ctx.Err() == nil {
		input, err := line.Prompt("orbit> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		if s.exec(input) {
			return nil
		}
	}

	return nil
}

func (s *watchSession) runScanner(ctx context.Context, in io.Reader) error {
	if in == nil {
		return nil
	}

	scanner := bufio.NewScanner(in)
	for ctx.Err() == nil && scanner.Scan() {
		if s.exec(scanner.Text()) {
			return nil
		}
	}

	return scanner.Err()
}

// relayNotifications prints notifications as the engine queues them, so
// alerts show up while the prompt is idle.
func (s *watchSession) relayNotifications(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
			s.mu.Lock()
			s.flushNotifications()
			s.mu.Unlock()
		}
	}
}

// exec runs one prompt line and prints fresh notifications. Reports whether
// the session should end.
func (s *watchSession) exec(line string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := strings.Fields(line)
	if len(fields) == 0 {
		s.flushNotifications()

		return false
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]

	if cmd == "quit" || cmd == "exit" || cmd == "q" {
		return true
	}

	err := s.dispatch(cmd, args)
	if err != nil {
		s.o.ErrPrintln("error:", err)
	}

	s.flushNotifications()

	return false
}

func (s *watchSession) dispatch(cmd string, args []string) error {
	e := s.engine

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "ls":
		for _, t := range e.Tasks() {
			s.o.Println(lsLine(&t))
		}
	case "sys", "systems":
		e.Flush()

		snap := e.Snapshot()
		if !snap.Grouping {
			s.o.Println("(grouping disabled)")
		}

		for i := range snap.Systems {
			printSystem(s.o, &snap.Systems[i], snap.Positions)
		}
	case "sug", "asteroids":
		views := e.Snapshot().Suggestions
		if len(views) == 0 {
			s.o.Println("(no active suggestions)")
		}

		for i := range views {
			printSuggestion(s.o, &views[i])
		}
	case "next":
		return s.propose(e.SuggestNext())
	case "suggest":
		t, err := resolveRef(e, args)
		if err != nil {
			return err
		}

		return s.propose(e.Suggest(t.ID))
	case "accept", "a", "reject", "r":
		return s.resolve(cmd, args)
	case "add":
		text := strings.Join(args, " ")
		if strings.TrimSpace(text) == "" {
			return errTextRequired
		}

		t := e.Add(task.Draft{Text: text})
		s.o.Println("Added", t.ID)

		return s.save()
	case "done":
		t, err := resolveRef(e, args)
		if err != nil {
			return err
		}

		if len(args) > 1 {
			_, err = e.ToggleSubTask(t.ID, args[1])
		} else {
			_, err = e.ToggleComplete(t.ID)
		}

		if err != nil {
			return err
		}

		return s.save()
	case "rm":
		t, err := resolveRef(e, args)
		if err != nil {
			return err
		}

		err = e.Delete(t.ID)
		if err != nil {
			return err
		}

		s.o.Println("Deleted", t.ID)

		return s.save()
	case "group":
		return s.group(args)
	default:
		return fmt.Errorf("%w: %s", errUnknownWatchCommand, cmd)
	}

	return nil
}

func (s *watchSession) propose(sug asteroid.Suggestion, ok bool) error {
	if !ok {
		return errNoSuggestion
	}

	for _, v := range s.engine.Snapshot().Suggestions {
		if v.ID == sug.ID {
			printSuggestion(s.o, &v)
		}
	}

	return nil
}

func (s *watchSession) resolve(cmd string, args []string) error {
	if len(args) == 0 {
		return errSuggestionRequired
	}

	outcome, _ := asteroid.ParseOutcome(cmd)
	if !s.engine.ResolveSuggestion(args[0], outcome) {
		return fmt.Errorf("%w: %s", errSuggestionGone, args[0])
	}

	return nil
}

func (s *watchSession) group(args []string) error {
	enabled := !s.engine.Grouping()

	if len(args) > 0 {
		switch args[0] {
		case "on":
			enabled = true
		case "off":
			enabled = false
		default:
			return fmt.Errorf("%w: %s", errInvalidGroupArg, args[0])
		}
	}

	s.engine.SetGrouping(enabled)

	if enabled {
		s.o.Println("grouping on")
	} else {
		s.o.Println("grouping off")
	}

	return nil
}

func (s *watchSession) save() error {
	tasks := s.engine.Tasks()

	return store.WithLock(s.cfg.TaskFileAbs, func() error {
		return store.Save(s.cfg.TaskFileAbs, tasks)
	})
}

// flushNotifications prints notifications not printed before.
func (s *watchSession) flushNotifications() {
	current := s.engine.Snapshot().Notifications
	live := make(map[string]bool, len(current))

	for _, n := range current {
		live[n.ID] = true

		if s.shown[n.ID] {
			continue
		}

		s.shown[n.ID] = true
		s.o.Notify(n)
	}

	for id := range s.shown {
		if !live[id] {
			delete(s.shown, id)
		}
	}
}

func (s *watchSession) printHelp() {
	s.o.Println("Commands:")
	s.o.Println("  ls                     List tasks")
	s.o.Println("  sys                    Show solar systems")
	s.o.Println("  sug                    Show active suggestions")
	s.o.Println("  next                   Propose a suggestion for the most pressing task")
	s.o.Println("  suggest <id>           Propose a suggestion for a task")
	s.o.Println("  accept|a <sid>         Accept a suggestion")
	s.o.Println("  reject|r <sid>         Reject a suggestion")
	s.o.Println("  add <text>             Add a task")
	s.o.Println("  done <id> [sub]        Toggle a task or sub-task")
	s.o.Println("  rm <id>                Delete a task")
	s.o.Println("  group [on|off]         Toggle AI grouping")
	s.o.Println("  quit                   Exit")
}

func completeWatch(line string) []string {
	var out []string

	lower := strings.ToLower(line)
	for _, c := range watchCommands {
		if strings.HasPrefix(c, lower) {
			out = append(out, c)
		}
	}

	return out
}

func historyFile(env map[string]string) string {
	if state := env["XDG_STATE_HOME"]; state != "" {
		return filepath.Join(state, "orbit", "history")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".orbit_history")
	}

	return ""
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}

	_ = os.MkdirAll(filepath.Dir(path), 0o750)

	f, err := os.Create(path)
	if err != nil {
		return
	}

	_, _ = line.WriteHistory(f)
	_ = f.Close()
}
