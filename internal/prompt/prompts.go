package prompt

import (
	"fmt"
	"strings"

	"github.com/alnah/go-panelsplit/internal/module"
	"github.com/alnah/go-panelsplit/internal/textstat"
)

const safetyBlock = `  "safety": {
    "adds_new_information": false,
    "removes_information": false,
    "medical_facts_changed": false,
    "policy_violation": false
  }`

// PanelSplitPrompt asks for a direct split of one overlong panel.
func PanelSplitPrompt(header, text string, policy textstat.Policy) string {
	continued := module.ContinuationHeader(header, 1)
	return fmt.Sprintf(`THIS TASK IS PANEL SPLITTING ONLY.

You are splitting a medical PANEL into multiple PANELS.

ABSOLUTE RULES (NO EXCEPTIONS):
- DO NOT add, remove, paraphrase, summarize, or rewrite ANY words.
- ALL wording must remain EXACTLY as written.
- DO NOT change sentence wording or order.
- DO NOT invent content.
- DO NOT create engage slides.
- DO NOT split bullet lists.

GOAL:
Split the panel into 2 or more panels because the total length exceeds %[1]d words.

CONSTRAINTS:
- Each resulting panel MUST be %[2]d-%[1]d words.
- If a panel would be under %[2]d words, MERGE it with the nearest adjacent panel.
- Preserve pedagogical coherence.

OUTPUT FORMAT (JSON ONLY):
{
  "slides": [
    {"header": %[3]q, "content": "<exact text slice>"},
    {"header": %[4]q, "content": "<exact text slice>"}
  ]
}

SOURCE TEXT (DO NOT MODIFY):
%[5]s`, policy.MaxWords, policy.MinWords, header, continued, text)
}

// StrictBoundariesPrompt asks for sentence start offsets only. The model
// never returns words, so reconstruction can be checked exactly.
func StrictBoundariesPrompt(text string) string {
	return fmt.Sprintf(`You are performing STRICT sentence boundary detection.

ABSOLUTE RULES:
- You MUST NOT rewrite, paraphrase, summarize, or edit any text.
- You MUST NOT output any words from the text.
- You MUST NOT add or remove content.
- You MAY ONLY return character indexes.

TASK:
Identify sentence boundaries in the text below.
Return a list of starting character indexes (counted in characters, not bytes) for each sentence.

The first index MUST be 0.
Indexes MUST be strictly increasing.
Slicing the text at the indexes MUST reconstruct the text EXACTLY.

RETURN ONLY VALID JSON in this exact format:

{
  "sentence_reflow": {
    "action": "reflow",
    "indexes": [0, 123, 456]
  },
%s
}

TEXT (DO NOT COPY WORDS FROM HERE):
%s`, safetyBlock, text)
}

// SemanticIndexPrompt asks the model to group numbered sentences.
func SemanticIndexPrompt(sentences []string) string {
	return fmt.Sprintf(`You are grouping sentences into coherent instructional panels.

STRICT RULES:
- DO NOT rewrite or paraphrase any sentence
- DO NOT remove or add information
- DO NOT change order
- ONLY group sentence indices
- Every index must appear exactly once

Return ONLY valid JSON.

Sentences:
%s

JSON FORMAT:
{
  "semantic_index": {
    "groups": [[0, 1], [2]],
    "reason": "Why these sentences belong together"
  },
%s
}`, numbered(sentences), safetyBlock)
}

// SentenceShapingPrompt asks for display blocks of one or two verbatim sentences.
func SentenceShapingPrompt(header, text string) string {
	return fmt.Sprintf(`THIS TASK IS SENTENCE SHAPING ONLY.

You are working on a SINGLE medical panel that is already finalized.

ABSOLUTE RULES (NO EXCEPTIONS):
- DO NOT add, remove, paraphrase, summarize, or rewrite ANY words.
- DO NOT change sentence wording or order.
- DO NOT move content between panels.
- DO NOT create new slides or panels.

TASK:
Group the existing sentences into sentence display blocks.
- You MUST always return at least ONE group.
- If no splitting is required, return a SINGLE group containing the full panel text.
- EXACTLY 2 sentences: two blocks, one sentence each.
- EXACTLY 3 sentences: two blocks grouped coherently.
- MORE than 3 sentences: at most 2 sentences per block.

RETURN JSON ONLY in this EXACT format:

{
  "sentence_shaping": {
    "groups": [
      {"header": %q, "sentences": ["Exact sentence text here."]}
    ]
  }
}

SOURCE PANEL TEXT (DO NOT MODIFY):
%s`, header, text)
}

// LengthAnalysisPrompt asks whether a panel needs no action, a reflow or a split.
func LengthAnalysisPrompt(header, text string, policy textstat.Policy) string {
	return fmt.Sprintf(`You are assisting in a medical education pipeline.

Analyse the length of the panel below.
- "none": the panel is at most %[1]d words and at most %[2]d sentences.
- "reflow": the panel fits in %[1]d words but needs sentence regrouping.
- "split": the panel must become 2 or more panels of %[3]d-%[1]d words, each at most %[2]d sentences.

When splitting, copy the text verbatim. DO NOT add, remove or rewrite words.

Return JSON ONLY:
{
  "panel_length_analysis": {
    "action": "none|reflow|split",
    "reason": "short explanation",
    "suggested_panels": [{"header": %[4]q, "content": ["Exact sentence."]}]
  },
%[5]s
}

HEADER: %[4]s
PANEL TEXT:
%[6]s`, policy.MaxWords, policy.MaxSentencesPerPanel, policy.MinWords, header, safetyBlock, text)
}

// EngageReviewPrompt asks for a length review of engage items.
func EngageReviewPrompt(items []string, policy textstat.Policy) string {
	return fmt.Sprintf(`You are assisting in a medical education pipeline.

STRICT RULES:
- Slide is already ENGAGE 1.
- Do NOT add or remove items.
- Do NOT change interaction type.

Task:
Review each engage item for length.
Preferred <= %d words (%d max).
Suggest tightening ONLY if limits are exceeded.

Return JSON ONLY:
{
  "engage1_item_review": [
    {"item_index": 0, "word_count": 42, "status": "ok|exceeds_soft_limit|exceeds_hard_limit"}
  ],
%s
}

ENGAGE ITEMS:
%s`, policy.EngageSoftLimit, policy.EngageHardLimit, safetyBlock, numbered(items))
}

// ButtonLabelsPrompt asks for short labels for the given interaction context.
func ButtonLabelsPrompt(context string) string {
	return fmt.Sprintf(`You are assisting in a medical education pipeline.

STRICT RULES:
- Do NOT invent new concepts.
- Button labels must be <= %d words.
- No punctuation.

Task:
Suggest concise button labels for the content below.

Return JSON ONLY:
{
  "button_label_suggestions": [
    {"target": "engage1_item|engage2", "suggested_label": "Short label"}
  ],
%s
}

CONTEXT:
%s`, textstat.MaxLabelWords, safetyBlock, strings.TrimSpace(context))
}

func numbered(lines []string) string {
	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d. %s", i, l)
	}
	return sb.String()
}
