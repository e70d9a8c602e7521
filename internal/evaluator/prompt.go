package evaluator

import (
	"fmt"
	"strings"
)

// rubric is the system message. The model must reply with a JSON object.
const rubric = `You evaluate corporate, LinkedIn-style writing.

Reply ONLY with one valid JSON object of this exact shape:
{
  "score": number,  // 0 to 10
  "comment": string // one or two short sentences of feedback
}

Scoring bands:
- 0-2: not corporate at all, sloppy or irrelevant
- 3-5: somewhat corporate, basic or generic
- 6-8: clearly corporate LinkedIn tone, structured, some jargon
- 9-10: very strong LinkedIn tone, confident and structured, jargon and "impact" language used naturally

Consider tone, structure (an intro, an outcome, "grateful"/"excited" framing),
jargon such as "impact", "value", "align", "stakeholders" or "journey", clarity
and grammar. Using the target keywords meaningfully is a positive signal.`

// userMessage renders the task context for the model.
func userMessage(text string, prompt *string, keywords []string) string {
	p := "(no specific prompt provided)"
	if prompt != nil && strings.TrimSpace(*prompt) != "" {
		p = *prompt
	}
	kws := "(none)"
	if len(keywords) > 0 {
		kws = strings.Join(keywords, ", ")
	}

	return fmt.Sprintf(`Original prompt to the player:
%s

Target keywords:
%s

Player text to evaluate:
"""%s"""

Return ONLY a JSON object with "score" (0-10) and "comment".`, p, kws, text)
}
