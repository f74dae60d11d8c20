package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Score contributions per matched predicate. The ordering matters more
// than the absolute values: exact title matches must rise above exact
// attribute values, which must rise above partial and fuzzy text hits.
const (
	scoreTitleWholeMatch   = 25.0
	scoreTitleExactWord    = 15.0
	scoreTitleWordPrefix   = 6.0
	scoreAttributeExact    = 8.0
	scoreAttributeCompare  = 5.0
	scoreAttributePresence = 5.0
	scoreSubstringMatch    = 4.0
	scoreFuzzyMatch        = 2.0
)

// matchFulltext tests a single term or phrase against a note and returns
// the contribution of the strongest tier that matched. Fast search
// restricts matching to titles; content is only consulted otherwise.
// The fuzzy fallback runs last and only when enabled on the context.
//
// Quoted phrases match as a whole: the per-word tiers and the fuzzy
// fallback are skipped, leaving whole-title equality and substring
// containment.
func matchFulltext(ec *EvalContext, noteID, token string, phrase bool) (bool, float64) {
	n := ec.Snap.GetNote(noteID)
	if n == nil {
		return false, 0
	}
	title := strings.ToLower(n.Title)
	tok := strings.ToLower(token)
	if tok == "" {
		return false, 0
	}

	if title == tok {
		return true, scoreTitleWholeMatch
	}

	if !phrase {
		prefix := false
		for _, word := range strings.Fields(title) {
			word = strings.Trim(word, ".,;:!?()[]{}\"'")
			if word == tok {
				return true, scoreTitleExactWord
			}
			if strings.HasPrefix(word, tok) {
				prefix = true
			}
		}
		if prefix {
			return true, scoreTitleWordPrefix
		}
	}

	if strings.Contains(title, tok) {
		return true, scoreSubstringMatch
	}
	if !ec.Ctx.FastSearch && strings.Contains(strings.ToLower(n.Content), tok) {
		return true, scoreSubstringMatch
	}

	if !phrase && ec.Ctx.EnableFuzzyMatching {
		matches := fuzzy.Find(tok, []string{title})
		if len(matches) > 0 && matches[0].Score >= ec.Ctx.FuzzyMatchThreshold {
			return true, scoreFuzzyMatch
		}
	}

	return false, 0
}
