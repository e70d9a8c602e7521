package catalog

import (
	"strings"
	"unicode"
)

// Segment is a run of text, either plain or matching one of the keywords.
type Segment struct {
	Text    string
	Keyword int // Index into the keyword slice, or -1 for plain text
}

// Highlight splits text into plain and keyword segments. Matching is
// case-insensitive substring matching; at each position the longest matching
// keyword wins. Concatenating the segment texts yields the input.
func Highlight(text string, keywords []Keyword) []Segment {
	runes := []rune(text)
	folded := foldRunes(runes)

	patterns := make([][]rune, len(keywords))
	for i, k := range keywords {
		patterns[i] = foldRunes([]rune(k.Word))
	}

	var segments []Segment
	plainStart := 0
	for i := 0; i < len(runes); {
		best, bestLen := -1, 0
		for k, p := range patterns {
			if len(p) > bestLen && hasPrefix(folded[i:], p) {
				best, bestLen = k, len(p)
			}
		}
		if best < 0 {
			i++
			continue
		}
		if plainStart < i {
			segments = append(segments, Segment{Text: string(runes[plainStart:i]), Keyword: -1})
		}
		segments = append(segments, Segment{Text: string(runes[i : i+bestLen]), Keyword: best})
		i += bestLen
		plainStart = i
	}
	if plainStart < len(runes) {
		segments = append(segments, Segment{Text: string(runes[plainStart:]), Keyword: -1})
	}
	return segments
}

// CountUsed reports how many of the words appear in text, case-insensitively.
func CountUsed(text string, words []string) int {
	lower := strings.ToLower(text)
	used := 0
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" && strings.Contains(lower, w) {
			used++
		}
	}
	return used
}

func foldRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func hasPrefix(s, prefix []rune) bool {
	if len(prefix) == 0 || len(s) < len(prefix) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}
