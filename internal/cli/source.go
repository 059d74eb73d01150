package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-panelsplit/internal/module"
)

// sourceOptions holds parsed options for the source command.
type sourceOptions struct {
	modulePath string
	from       int
	to         int
	asJSON     bool
}

// SourceCmd creates the source command (quiz source-text extraction).
// The env parameter provides injectable dependencies for testing.
func SourceCmd(env *Env) *cobra.Command {
	var opts sourceOptions

	cmd := &cobra.Command{
		Use:   "source <module.json>",
		Short: "Extract quiz source text from a slide window",
		Long: `Print the instructional text of slides --from through --to (inclusive,
0-based): panel paragraphs, engage intros and engage item content. Bullets,
buttons and images are left out.`,
		Example: `  panelsplit source module.json --from 2 --to 5
  panelsplit source module.json --from 0 --to 0 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.modulePath = args[0]
			if !cmd.Flags().Changed("to") {
				opts.to = opts.from
			}
			return runSource(env, opts)
		},
	}

	cmd.Flags().IntVar(&opts.from, "from", 0, "First slide index")
	cmd.Flags().IntVar(&opts.to, "to", 0, "Last slide index (default: --from)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print a JSON list instead of plain text")

	return cmd
}

// runSource executes the source command.
func runSource(env *Env, opts sourceOptions) error {
	m, err := loadModule(opts.modulePath)
	if err != nil {
		return err
	}
	text, err := module.ExtractSourceText(m.Slides, opts.from, opts.to)
	if err != nil {
		return err
	}

	if opts.asJSON {
		data, err := json.Marshal(text)
		if err != nil {
			return fmt.Errorf("encode source text: %w", err)
		}
		_, err = env.Stdout.Write(prettyJSON(data))
		return err
	}
	_, err = fmt.Fprintln(env.Stdout, strings.Join(text, "\n\n"))
	return err
}
