package cli

import (
	"context"

	"github.com/calvinalkan/orbit/internal/config"
	"github.com/calvinalkan/orbit/internal/engine"

	flag "github.com/spf13/pflag"
)

// ShowCmd returns the show command.
func ShowCmd(cfg *config.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("show", flag.ContinueOnError),
		Usage: "show <id>",
		Short: "Show a task and how it is classified",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execShow(o, cfg, args)
		},
	}
}

func execShow(o *IO, cfg *config.Config, args []string) error {
	return view(o, cfg, func(e *engine.Engine) error {
		t, err := resolveRef(e, args)
		if err != nil {
			return err
		}

		o.Println("id:", t.ID)
		o.Println("text:", t.Text)
		o.Println("status:", checkbox(t.Completed))
		o.Println("priority:", priorityOf(&t))
		o.Println("category:", categoryOf(&t))
		o.Println("deadline:", formatDeadline(t.Deadline))
		o.Println("created:", t.CreatedAt.UTC().Format("2006-01-02 15:04"))

		if t.Goal {
			o.Println("goal: yes")
		}

		if t.System != "" {
			o.Println("system:", t.System)
		}

		for i, st := range t.SubTasks {
			o.Printf("  %d. %s %s\n", i+1, checkbox(st.Completed), st.Text)
		}

		c, ok := e.Classification(t.ID)
		if !ok {
			return nil
		}

		o.Println()
		o.Println("role:", c.Role)
		o.Println("system_key:", c.SystemKey)
		o.Printf("confidence: %d%%\n", c.Confidence)
		o.Printf("visual: size=%.3f brightness=%.3f rotation=%.3f color=%s days=%d\n",
			c.Visual.SizeMultiplier, c.Visual.Brightness, c.Visual.RotationSpeed,
			c.Visual.UrgencyColor, c.Visual.DaysUntilDeadline)

		for _, s := range c.Seeds {
			o.Printf("seed: %s (impact %d)\n", s.Action, s.Impact)
		}

		return nil
	})
}
