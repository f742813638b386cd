package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/calvinalkan/orbit/internal/task"

	"github.com/mattn/go-runewidth"
)

const (
	shortIDLen = 8
	textWidth  = 48
)

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}

	return id[:shortIDLen]
}

// cell truncates s to w display columns and pads it to exactly w.
func cell(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}

	return "[ ]"
}

func formatDeadline(d *time.Time) string {
	if d == nil || d.IsZero() {
		return "-"
	}

	return d.UTC().Format("2006-01-02 15:04")
}

func priorityOf(t *task.Task) task.Priority {
	p, _ := task.ParsePriority(string(t.Priority))

	return p
}

func categoryOf(t *task.Task) string {
	c, _ := task.NormalizeCategory(t.Category)

	return c
}

func formatSeconds(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)

	return fmt.Sprintf("%2ds", max(secs, 0))
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
