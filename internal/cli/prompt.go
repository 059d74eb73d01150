package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-panelsplit/internal/prompt"
	"github.com/alnah/go-panelsplit/internal/textstat"
)

// promptOptions holds parsed options for the prompt command.
type promptOptions struct {
	name     prompt.Name
	textPath string
	header   string
	items    []string
	context  string
}

// PromptCmd creates the prompt command (render a prompt for inspection).
// The env parameter provides injectable dependencies for testing.
func PromptCmd(env *Env) *cobra.Command {
	var opts promptOptions

	cmd := &cobra.Command{
		Use:   "prompt <name>",
		Short: "Render a prompt without calling any model",
		Long: `Render one of the pipeline's prompts to stdout.

Prompts: ` + strings.Join(prompt.Names(), ", ") + `

--text is split into sentences for semantic-index. engage-review reads its
items from repeated --item flags, button-labels its context from --context.`,
		Example: `  panelsplit prompt panel-split --text panel.txt --header "Cardiac output"
  panelsplit prompt semantic-index --text panel.txt
  panelsplit prompt engage-review --item "first item" --item "second item"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := prompt.ParseName(args[0])
			if err != nil {
				return err
			}
			opts.name = parsed
			return runPrompt(env, opts)
		},
	}

	cmd.Flags().StringVar(&opts.textPath, "text", "", "File holding the panel text")
	cmd.Flags().StringVar(&opts.header, "header", "", "Panel header")
	cmd.Flags().StringArrayVar(&opts.items, "item", nil, "Engage item text (repeatable)")
	cmd.Flags().StringVar(&opts.context, "context", "", "Context for button label suggestions")

	return cmd
}

// runPrompt executes the prompt command.
func runPrompt(env *Env, opts promptOptions) error {
	cfg, err := loadConfig(env)
	if err != nil {
		return err
	}

	in := prompt.Input{
		Header:  opts.header,
		Items:   opts.items,
		Context: opts.context,
		Policy:  cfg.Policy,
	}
	if opts.textPath != "" {
		data, err := readInput(opts.textPath)
		if err != nil {
			return err
		}
		in.Text = strings.TrimSuffix(string(data), "\n")
		in.Sentences = textstat.SplitSentences(textstat.NormalizeWhitespace(in.Text))
	}

	text, err := opts.name.Render(in)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	_, err = fmt.Fprintln(env.Stdout, text)
	return err
}
