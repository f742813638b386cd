package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/calvinalkan/orbit/internal/compose"
	"github.com/calvinalkan/orbit/internal/config"
	"github.com/calvinalkan/orbit/internal/engine"
	"github.com/calvinalkan/orbit/internal/layout"

	flag "github.com/spf13/pflag"
)

// SystemsCmd returns the systems command.
func SystemsCmd(cfg *config.Config) *Command {
	fs := flag.NewFlagSet("systems", flag.ContinueOnError)
	fs.Bool("json", false, "Print systems and positions as JSON")

	return &Command{
		Flags:   fs,
		Usage:   "systems [--json]",
		Aliases: []string{"sys"},
		Short:   "Show tasks grouped into solar systems",
		Long: `Show tasks grouped into solar systems, one system per category or
pinned system name. Each system has exactly one sun; a synthesized sun
stands in when no task qualifies.`,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			asJSON, _ := fs.GetBool("json")

			return execSystems(o, cfg, asJSON)
		},
	}
}

type systemsOutput struct {
	Grouping  bool               `json:"grouping"`
	Systems   []compose.System   `json:"systems"`
	Positions layout.PositionMap `json:"positions"`
}

func execSystems(o *IO, cfg *config.Config, asJSON bool) error {
	return view(o, cfg, func(e *engine.Engine) error {
		e.Flush()
		snap := e.Snapshot()

		if asJSON {
			enc := json.NewEncoder(o.Out())
			enc.SetIndent("", "  ")

			return enc.Encode(systemsOutput{
				Grouping:  snap.Grouping,
				Systems:   snap.Systems,
				Positions: snap.Positions,
			})
		}

		if !snap.Grouping {
			o.Println("(grouping disabled)")

			return nil
		}

		for i := range snap.Systems {
			printSystem(o, &snap.Systems[i], snap.Positions)
		}

		return nil
	})
}

func printSystem(o *IO, sys *compose.System, pos layout.PositionMap) {
	st := sys.Stats
	o.Printf("%s  tasks=%d done=%d avg_priority=%.2f min_days=%d\n",
		sys.Key, st.TaskCount, st.CompletedCount, st.AveragePriority, st.MinDaysUntilDeadline)

	printBody(o, &sys.Sun, pos, 1)

	for i := range sys.Sun.Moons {
		printBody(o, &sys.Sun.Moons[i], pos, 2)
	}

	for i := range sys.Planets {
		printBody(o, &sys.Planets[i], pos, 1)

		for j := range sys.Planets[i].Moons {
			printBody(o, &sys.Planets[i].Moons[j], pos, 2)
		}
	}

	for i := range sys.Satellites {
		printBody(o, &sys.Satellites[i], pos, 1)
	}
}

func printBody(o *IO, b *compose.Body, pos layout.PositionMap, depth int) {
	label, id := string(b.Role), b.ID
	if depth > 1 {
		label = "moon"
		_, id, _ = strings.Cut(b.ID, "/")
	}

	orbit := ""
	if ob, ok := pos.Orbits[b.ID]; ok {
		orbit = fmt.Sprintf("  r=%.1f", ob.Radius)
	}

	text := b.Text
	if b.Synthetic {
		text = "(synthesized)"
	}

	o.Printf("%s%s %s %s %s%s\n",
		indent(depth), cell(label, 9), checkbox(b.Completed), shortID(id), cell(text, textWidth-2*depth), orbit)
}
