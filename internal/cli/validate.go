package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-panelsplit/internal/completion"
	"github.com/alnah/go-panelsplit/internal/textstat"
	"github.com/alnah/go-panelsplit/internal/validate"
)

// validateInput is what a validator may check a response against.
type validateInput struct {
	text      string
	sentences int
	policy    textstat.Policy
}

// validator checks one kind of model response.
type validator struct {
	needsText bool
	check     func(v any, in validateInput) (any, error)
}

// validators maps response kinds to their validation rules.
var validators = map[string]validator{
	"sentence_boundaries": {needsText: true, check: func(v any, in validateInput) (any, error) {
		return validate.SentenceBoundaries(v, in.text)
	}},
	"strict_sentence_boundaries": {needsText: true, check: func(v any, in validateInput) (any, error) {
		return validate.StrictSentenceBoundaries(v, in.text)
	}},
	"panel_length_analysis": {check: func(v any, in validateInput) (any, error) {
		return validate.PanelLengthAnalysis(v, in.policy)
	}},
	"panel_split": {needsText: true, check: func(v any, in validateInput) (any, error) {
		return validate.PanelSplit(v, in.text, in.policy)
	}},
	"semantic_index": {check: func(v any, in validateInput) (any, error) {
		return validate.SemanticIndex(v, in.sentences)
	}},
	"sentence_shaping": {needsText: true, check: func(v any, in validateInput) (any, error) {
		return validate.SentenceShaping(v, in.text)
	}},
	"engage_item_review": {check: func(v any, _ validateInput) (any, error) {
		return validate.EngageItemReview(v)
	}},
	"button_label_suggestions": {check: func(v any, _ validateInput) (any, error) {
		return validate.ButtonLabelSuggestions(v)
	}},
	"safety": {check: func(v any, _ validateInput) (any, error) {
		if obj, ok := v.(map[string]any); ok {
			if block, ok := obj["safety"]; ok {
				v = block
			}
		}
		return nil, validate.Safety(v)
	}},
}

// validatorKinds returns the supported response kinds, sorted.
func validatorKinds() []string {
	kinds := make([]string, 0, len(validators))
	for k := range validators {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// validateOptions holds parsed options for the validate command.
type validateOptions struct {
	kind         string
	responsePath string
	textPath     string
	sentences    int
}

// ValidateCmd creates the validate command (offline audit of a saved response).
// The env parameter provides injectable dependencies for testing.
func ValidateCmd(env *Env) *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate <kind> <response.json>",
		Short: "Check a saved model response",
		Long: `Run a saved model response through the validator the pipeline would use.

Kinds: ` + strings.Join(validatorKinds(), ", ") + `

Kinds that check reconstruction need the source text (--text). For
semantic_index, --sentences defaults to the sentence count of --text.`,
		Example: `  panelsplit validate strict_sentence_boundaries response.json --text panel.txt
  panelsplit validate semantic_index response.json --sentences 6
  panelsplit validate engage_item_review response.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.kind, opts.responsePath = args[0], args[1]
			return runValidate(env, opts)
		},
	}

	cmd.Flags().StringVar(&opts.textPath, "text", "", "File holding the source text the response refers to")
	cmd.Flags().IntVar(&opts.sentences, "sentences", 0, "Sentence count for semantic_index")

	return cmd
}

// runValidate executes the validate command.
func runValidate(env *Env, opts validateOptions) error {
	v, ok := validators[opts.kind]
	if !ok {
		return fmt.Errorf("%w %q (use %s)", ErrUnknownKind, opts.kind, strings.Join(validatorKinds(), ", "))
	}
	if v.needsText && opts.textPath == "" {
		return fmt.Errorf("%w: %s requires --text", ErrUsage, opts.kind)
	}

	cfg, err := loadConfig(env)
	if err != nil {
		return err
	}
	in := validateInput{sentences: opts.sentences, policy: cfg.Policy}
	if opts.textPath != "" {
		text, err := readInput(opts.textPath)
		if err != nil {
			return err
		}
		// Editors add a final newline the pipeline never sees.
		in.text = strings.TrimSuffix(string(text), "\n")
		if in.sentences == 0 {
			in.sentences = len(textstat.SplitSentences(textstat.NormalizeWhitespace(in.text)))
		}
	}

	raw, err := readInput(opts.responsePath)
	if err != nil {
		return err
	}
	value, err := completion.DecodeJSON(string(raw))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", validate.ErrRejected, opts.responsePath, err)
	}

	result, err := v.check(value, in)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Rejected: %s\n", validate.ReasonOf(err))
		return fmt.Errorf("%s: %w", opts.kind, err)
	}

	data, err := json.Marshal(map[string]any{"kind": opts.kind, "valid": true, "result": result})
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = env.Stdout.Write(prettyJSON(data))
	return err
}
