package classify

import (
	"fmt"

	"github.com/calvinalkan/orbit/internal/task"
)

// Impact scores.
const (
	ImpactLow    = 1
	ImpactMedium = 2
	ImpactHigh   = 3
)

const maxQuoted = 40

type template struct {
	action      string
	description string
}

var categoryTemplates = map[string]template{
	"work":     {"Write down the next concrete step", "Two lines are enough to restart momentum."},
	"health":   {"Take a 2-minute stretch break", "Small, frequent movement beats rare long sessions."},
	"learning": {"Review your notes for 5 minutes", "Short reviews keep material from fading."},
	"personal": {"Send one quick message about it", "A single message often unblocks the rest."},
	"finance":  {"Check one number related to it", "Knowing where you stand makes the next step obvious."},
	"home":     {"Tidy one spot for 3 minutes", "Visible progress in a small area."},
	"creative": {"Sketch one rough idea", "Rough is fine; the point is to start."},
}

var fallbackTemplate = template{"Decide the very next action", "Name the first physical step and put it on the list."}

// Seeds returns suggested micro-actions for t, most urgent first. Completed
// tasks yield none.
func Seeds(t task.Task, category string, days int) []Seed {
	if t.Completed {
		return nil
	}

	var seeds []Seed

	if t.HasDeadline() && days <= 1 {
		seeds = append(seeds, Seed{
			Action:      fmt.Sprintf("Spend 5 minutes on %q", quote(t.Text)),
			Description: "Due within a day. Start with the smallest step.",
			Impact:      ImpactHigh,
		})
	}

	if open := t.OpenSubTasks(); len(open) > 0 {
		seeds = append(seeds, Seed{
			Action:      fmt.Sprintf("Finish %q", quote(open[0].Text)),
			Description: fmt.Sprintf("%d of %d sub-tasks left.", len(open), len(t.SubTasks)),
			Impact:      ImpactMedium,
		})
	}

	tmpl, ok := categoryTemplates[category]
	if !ok {
		tmpl = fallbackTemplate
	}

	impact := ImpactLow
	if p, _ := task.ParsePriority(string(t.Priority)); p == task.PriorityHigh {
		impact = ImpactMedium
	}

	seeds = append(seeds, Seed{Action: tmpl.action, Description: tmpl.description, Impact: impact})

	return seeds
}

func quote(text string) string {
	r := []rune(text)
	if len(r) <= maxQuoted {
		return text
	}

	return string(r[:maxQuoted-1]) + "…"
}
