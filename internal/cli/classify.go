package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/alnah/go-panelsplit/internal/route"
)

// ClassifyCmd creates the classify command (routing table, no model calls).
// The env parameter provides injectable dependencies for testing.
func ClassifyCmd(env *Env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify <module.json>",
		Short: "Show how each slide would be routed",
		Long: `Print the routing decision for every slide without calling any model.

Decisions are no_action, block_split, semantic_split and semantic_index,
each with the measurements it was based on.`,
		Example: `  panelsplit classify module.json
  panelsplit classify module.json --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(env, args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

// runClassify executes the classify command.
func runClassify(env *Env, modulePath string, asJSON bool) error {
	cfg, err := loadConfig(env)
	if err != nil {
		return err
	}
	m, err := loadModule(modulePath)
	if err != nil {
		return err
	}

	if asJSON {
		doc := []byte(`{"slides":[]}`)
		for _, s := range m.Slides {
			c := route.Explain(s, cfg.Policy)
			doc, err = sjson.SetBytes(doc, "slides.-1", map[string]any{
				"slide_id":   s.ID,
				"type":       string(s.Type),
				"routing":    c.Decision.String(),
				"paragraphs": c.Paragraphs,
				"bullets":    c.Bullets,
				"words":      c.Words,
				"reason":     c.Reason,
			})
			if err != nil {
				return fmt.Errorf("encode classification: %w", err)
			}
		}
		_, err = env.Stdout.Write(prettyJSON(doc))
		return err
	}

	w := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLIDE\tTYPE\tROUTING\tPARAGRAPHS\tBULLETS\tWORDS\tREASON")
	for _, s := range m.Slides {
		c := route.Explain(s, cfg.Policy)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			s.ID, s.Type, c.Decision, c.Paragraphs, c.Bullets, c.Words, c.Reason)
	}
	return w.Flush()
}
