package oracle

import (
	"context"
	"strings"
	"unicode"
)

// jargon is the vocabulary the offline scorer rewards besides the
// requested keywords.
var jargon = []string{
	"excited", "grateful", "thrilled", "humbled", "journey", "stakeholder",
	"value", "align", "impact", "leverage", "team", "growth", "learn",
	"proud", "milestone", "roadmap", "deliver", "strategy", "innovation",
}

// Offline scores text locally without a model. It rewards length, the
// requested keywords and common corporate vocabulary. Used when no
// evaluate route is configured and by the headless simulator.
type Offline struct{}

// Score never fails.
func (Offline) Score(_ context.Context, req Request) (Response, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Response{Score: 0, Comment: "No meaningful content was provided."}, nil
	}

	lower := strings.ToLower(text)
	words := len(strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	}))

	score := 1.0
	// Length: up to 3 points, full credit at 45 words
	score += min(3.0, float64(words)/15.0)

	used := 0
	for _, kw := range req.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			used++
		}
	}
	score += 1.5 * float64(used)

	hits := 0
	for _, j := range jargon {
		if strings.Contains(lower, j) {
			hits++
		}
	}
	score += min(2.0, 0.5*float64(hits))

	if strings.ContainsAny(text, ".!") {
		score += 0.5
	}
	score = min(10, score)

	return Response{Score: score, Comment: offlineComment(score, used, len(req.Keywords))}, nil
}

func offlineComment(score float64, used, wanted int) string {
	switch {
	case score >= 9:
		return "Peak thought leadership. The algorithm will love this."
	case score >= 6.5:
		if used < wanted {
			return "Solid corporate tone; work in the remaining keywords next time."
		}
		return "Solid corporate tone with the right buzzwords."
	case score >= 4:
		return "Somewhat corporate, but it needs more structure and jargon."
	default:
		return "This reads like a personal text message, not a LinkedIn post."
	}
}
