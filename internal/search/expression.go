package search

import (
	"github.com/brodal/ratatosk/internal/graph"
)

// EvalContext bundles the snapshot and the query context for expression
// evaluation.
type EvalContext struct {
	Snap *graph.Snapshot
	Ctx  *Context
}

// internalAttributeNames are attributes used purely for wiring (link
// markers maintained by editors). With IgnoreInternalAttributes they are
// excluded from matching so they do not pollute relation-based search.
var internalAttributeNames = map[string]bool{
	"internalLink":    true,
	"imageLink":       true,
	"relationMapLink": true,
	"includeNoteLink": true,
}

// attributes returns the note's attributes (owned + inherited) with
// internal wiring attributes filtered out when the context asks for it.
func (ec *EvalContext) attributes(noteID string) []*graph.Attribute {
	attrs := ec.Snap.Attributes(noteID)
	if !ec.Ctx.IgnoreInternalAttributes {
		return attrs
	}
	out := make([]*graph.Attribute, 0, len(attrs))
	for _, a := range attrs {
		if internalAttributeNames[a.Name] {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Expression is one node of a parsed search query. Match reports whether
// the note satisfies the node and the score contribution of the match.
type Expression interface {
	Match(ec *EvalContext, noteID string) (bool, float64)
}

// TrueExpression matches every note. An empty query parses to this, which
// turns an ancestor-scoped search into a plain subtree listing.
type TrueExpression struct{}

func (TrueExpression) Match(*EvalContext, string) (bool, float64) { return true, 0 }

// FalseExpression matches nothing. Used as the degraded result of an
// unrecoverable parse failure.
type FalseExpression struct{}

func (FalseExpression) Match(*EvalContext, string) (bool, float64) { return false, 0 }

// AndExpression matches when every sub-expression matches; contributions
// accumulate.
type AndExpression struct {
	Subs []Expression
}

func (e *AndExpression) Match(ec *EvalContext, noteID string) (bool, float64) {
	total := 0.0
	for _, sub := range e.Subs {
		ok, score := sub.Match(ec, noteID)
		if !ok {
			return false, 0
		}
		total += score
	}
	return true, total
}

// OrExpression matches when any sub-expression matches; contributions of
// all matching branches accumulate.
type OrExpression struct {
	Subs []Expression
}

func (e *OrExpression) Match(ec *EvalContext, noteID string) (bool, float64) {
	matched := false
	total := 0.0
	for _, sub := range e.Subs {
		ok, score := sub.Match(ec, noteID)
		if ok {
			matched = true
			total += score
		}
	}
	return matched, total
}

// NotExpression inverts its sub-expression. A negated match contributes no
// score.
type NotExpression struct {
	Sub Expression
}

func (e *NotExpression) Match(ec *EvalContext, noteID string) (bool, float64) {
	ok, _ := e.Sub.Match(ec, noteID)
	return !ok, 0
}

// FulltextExpression matches a term or quoted phrase against note title
// and (outside fast search) content.
type FulltextExpression struct {
	Token  string
	Phrase bool
}

func (e *FulltextExpression) Match(ec *EvalContext, noteID string) (bool, float64) {
	return matchFulltext(ec, noteID, e.Token, e.Phrase)
}

// LabelExpression matches a #label predicate. HasValue distinguishes
// #name=value forms from bare presence checks, which match regardless of
// the label's value.
type LabelExpression struct {
	Name     string
	Op       string
	Value    string
	HasValue bool
}

func (e *LabelExpression) Match(ec *EvalContext, noteID string) (bool, float64) {
	matched := false
	best := 0.0
	for _, a := range ec.attributes(noteID) {
		if !a.IsLabel() || a.Name != e.Name {
			continue
		}
		if !e.HasValue {
			return true, scoreAttributePresence
		}
		if compareValues(a.Value, e.Op, e.Value) {
			score := scoreAttributeCompare
			if e.Op == "=" {
				score = scoreAttributeExact
			}
			matched = true
			if score > best {
				best = score
			}
			continue
		}
		// Fuzzy attribute search relaxes equality to substring match.
		if e.Op == "=" && ec.Ctx.FuzzyAttributeSearch && compareValues(a.Value, "*=*", e.Value) {
			matched = true
			if scoreSubstringMatch > best {
				best = scoreSubstringMatch
			}
		}
	}
	return matched, best
}

// RelationExpression matches a ~relation predicate, optionally traversing
// one hop into the target note: SubProperty "title" compares the target's
// title, any other name compares the target's label of that name.
type RelationExpression struct {
	Name        string
	SubProperty string
	Op          string
	Value       string
	HasValue    bool
}

func (e *RelationExpression) Match(ec *EvalContext, noteID string) (bool, float64) {
	matched := false
	best := 0.0
	for _, a := range ec.attributes(noteID) {
		if !a.IsRelation() || a.Name != e.Name {
			continue
		}
		if !e.HasValue {
			return true, scoreAttributePresence
		}
		target := ec.Snap.GetNote(a.TargetNoteID())
		if target == nil {
			continue
		}
		var actual string
		if e.SubProperty == "" || e.SubProperty == "title" {
			actual = target.Title
		} else {
			v, ok := ec.Snap.LabelValue(target.NoteID, e.SubProperty)
			if !ok {
				continue
			}
			actual = v
		}
		if compareValues(actual, e.Op, e.Value) {
			score := scoreAttributeCompare
			if e.Op == "=" {
				score = scoreAttributeExact
			}
			matched = true
			if score > best {
				best = score
			}
		}
	}
	return matched, best
}
