package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/brodal/ratatosk/internal/graph"
)

// Result is one search hit: the note, the full ancestor chain from the
// root, and the accumulated score. Results are ephemeral and never cached
// across requests.
type Result struct {
	NoteID        string   `json:"noteId"`
	NotePathArray []string `json:"notePath"`
	Score         float64  `json:"score"`
}

// FindResults evaluates a query against a snapshot and returns scored,
// ordered results. The snapshot is immutable, so the evaluation always
// sees a consistent view; freshness is the caller's concern (see Service).
//
// Filtering is cheapest-first: archived exclusion, hidden-subtree
// exclusion, then expression evaluation. Ordering and limit are applied
// only after every candidate is scored, so the returned top-K is
// deterministic regardless of traversal order.
func FindResults(snap *graph.Snapshot, query string, ctx *Context) []Result {
	ctx.OriginalQuery = query
	pr := Parse(query, ctx)

	// The query string wins over the context when both specify ordering
	// or limit.
	if pr.HasOrderBy {
		ctx.OrderBy = pr.OrderBy
		ctx.OrderDirection = pr.OrderDirection
	}
	if pr.HasLimit {
		ctx.Limit = pr.Limit
	}

	depth := -1
	if ctx.AncestorDepth != "" {
		n, err := strconv.Atoi(ctx.AncestorDepth)
		if err != nil || n < 0 {
			ctx.AddError(fmt.Sprintf("invalid ancestorDepth %q", ctx.AncestorDepth))
		} else {
			depth = n
		}
	}

	var candidates []string
	if ctx.AncestorNoteID != "" {
		candidates = snap.Subtree(ctx.AncestorNoteID, depth)
		if candidates == nil {
			ctx.AddError(fmt.Sprintf("ancestor note %q not found", ctx.AncestorNoteID))
			return []Result{}
		}
	} else {
		candidates = snap.NoteIDs()
	}

	ec := &EvalContext{Snap: snap, Ctx: ctx}

	type scored struct {
		id    string
		score float64
		depth int
		pos   int
	}
	var matches []scored
	for _, id := range candidates {
		if id == graph.RootNoteID {
			continue
		}
		if !ctx.IncludeArchivedNotes && snap.IsArchived(id) {
			continue
		}
		if !ctx.IncludeHiddenNotes && snap.IsHidden(id) {
			continue
		}
		ok, score := pr.Expression.Match(ec, id)
		if !ok {
			continue
		}
		matches = append(matches, scored{
			id:    id,
			score: score,
			depth: snap.PathDepth(id),
			pos:   snap.NotePosition(id),
		})
	}

	if ctx.OrderBy != "" {
		desc := ctx.OrderDirection == "desc"
		sort.SliceStable(matches, func(i, j int) bool {
			c := orderCompare(snap, matches[i].id, matches[j].id, ctx.OrderBy)
			// Sentinels: notes missing the field sort last regardless of
			// direction.
			if c == 2 || c == -2 {
				return c == -2
			}
			if c != 0 {
				if desc {
					return c > 0
				}
				return c < 0
			}
			return matches[i].id < matches[j].id
		})
	} else {
		// Ranked order: score descending, then shallower path, then
		// sibling position, then ID for full determinism.
		sort.SliceStable(matches, func(i, j int) bool {
			a, b := matches[i], matches[j]
			if a.score != b.score {
				return a.score > b.score
			}
			if a.depth != b.depth {
				return a.depth < b.depth
			}
			if a.pos != b.pos {
				return a.pos < b.pos
			}
			return a.id < b.id
		})
	}

	if ctx.Limit > 0 && len(matches) > ctx.Limit {
		matches = matches[:ctx.Limit]
	}

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			NoteID:        m.id,
			NotePathArray: snap.BestNotePath(m.id),
			Score:         m.score,
		}
	}
	return results
}

// orderCompare compares two notes on an orderBy field: the intrinsic
// fields title and notePosition, or the value of a label with that name.
// Notes missing the value sort last regardless of direction, which is why
// the missing check happens before the direction flip in the caller:
// compare returns 0 for equal, and missing values are pushed to the end
// by the +/-2 sentinels below.
func orderCompare(snap *graph.Snapshot, a, b, field string) int {
	switch field {
	case "title":
		ta := strings.ToLower(noteTitle(snap, a))
		tb := strings.ToLower(noteTitle(snap, b))
		return strings.Compare(ta, tb)
	case "notePosition":
		pa, pb := snap.NotePosition(a), snap.NotePosition(b)
		switch {
		case pa < pb:
			return -1
		case pa > pb:
			return 1
		}
		return 0
	}

	va, oka := snap.LabelValue(a, field)
	vb, okb := snap.LabelValue(b, field)
	switch {
	case !oka && !okb:
		return 0
	case !oka:
		return 2 // missing sorts last; caller flips only -1/1
	case !okb:
		return -2
	}
	if na, err := strconv.ParseFloat(va, 64); err == nil {
		if nb, err := strconv.ParseFloat(vb, 64); err == nil {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(strings.ToLower(va), strings.ToLower(vb))
}

func noteTitle(snap *graph.Snapshot, id string) string {
	if n := snap.GetNote(id); n != nil {
		return n.Title
	}
	return ""
}
