package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/calvinalkan/orbit/internal/asteroid"
)

// IO is a command's view of stdout and stderr.
//
// Warnings are for task-file problems that do not stop a command, such as a
// duplicate ID. They go to stderr before the first line of stdout and again
// from Finish, so neither `| head` nor `| tail` hides them, and they make the
// exit code 1.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	warnings []string
	warned   bool
}

// NewIO returns an IO writing to out and errOut.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Warn records a problem and what to do about it. Repeats are kept once.
func (o *IO) Warn(issue string, action string) {
	w := issue + ": " + action
	if !slices.Contains(o.warnings, w) {
		o.warnings = append(o.warnings, w)
	}
}

// Println writes a line to stdout.
func (o *IO) Println(a ...any) {
	o.warnOnce()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes to stdout.
func (o *IO) Printf(format string, a ...any) {
	o.warnOnce()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// Notify prints a suggestion notification as one stdout line, marked by kind:
// "!" for alerts, "+" for accepted and "-" for rejected suggestions.
func (o *IO) Notify(n asteroid.Notification) {
	mark := "-"

	switch n.Kind {
	case asteroid.KindAlert:
		mark = "!"
	case asteroid.KindAccepted:
		mark = "+"
	}

	o.Println(mark, n.Message)
}

// ErrPrintln writes a line to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Out is stdout for encoders.
func (o *IO) Out() io.Writer {
	o.warnOnce()

	return o.out
}

// Err is stderr, e.g. for a log handler.
func (o *IO) Err() io.Writer {
	return o.errOut
}

// Finish repeats the warnings at the end of output and returns the exit code:
// 1 when there were warnings, 0 otherwise.
func (o *IO) Finish() int {
	o.warnOnce()

	if len(o.warnings) == 0 {
		return 0
	}

	o.printWarnings()

	return 1
}

func (o *IO) warnOnce() {
	if o.warned || len(o.warnings) == 0 {
		return
	}

	o.warned = true
	o.printWarnings()
}

func (o *IO) printWarnings() {
	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}
}
