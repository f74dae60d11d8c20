// Package search implements the query language over the note graph:
// tokenizing and parsing search expressions, evaluating them against a
// graph snapshot, and scoring and ordering the results.
package search

// Options is the recognized configuration for one query. All booleans
// default to false when absent.
type Options struct {
	FastSearch               bool
	IncludeArchivedNotes     bool
	IncludeHiddenNotes       bool
	IgnoreHoistedNote        bool
	IgnoreInternalAttributes bool
	AncestorNoteID           string
	AncestorDepth            string
	OrderBy                  string
	OrderDirection           string
	Limit                    int
	Debug                    bool
	FuzzyAttributeSearch     bool
}

// Context carries one query's configuration and its accumulated state.
// A context belongs to exactly one query evaluation and is not safe for
// concurrent use; it is constructed fresh per request and discarded after
// the response is produced.
type Context struct {
	FastSearch               bool
	IncludeArchivedNotes     bool
	IncludeHiddenNotes       bool
	IgnoreHoistedNote        bool
	IgnoreInternalAttributes bool
	AncestorNoteID           string
	AncestorDepth            string
	OrderBy                  string
	OrderDirection           string
	Limit                    int
	Debug                    bool
	FuzzyAttributeSearch     bool

	// EnableFuzzyMatching always defaults to true and is deliberately not
	// an Options field. Callers that need to disable fuzzy fallback set it
	// directly after construction. Kept distinct from FuzzyAttributeSearch.
	EnableFuzzyMatching bool

	// FuzzyMatchThreshold is the minimum sahilm/fuzzy match score accepted
	// by the fuzzy fallback.
	FuzzyMatchThreshold int

	OriginalQuery     string
	FulltextQuery     string
	HighlightedTokens []string

	err string
}

// DefaultFuzzyMatchThreshold accepts any positive fuzzy score.
const DefaultFuzzyMatchThreshold = 0

// NewContext builds a context from options. When no explicit ancestor is
// given and hoisting is not ignored, the hoisted note (if any) becomes the
// default ancestor, which scopes in-app search to the hoisted subtree.
// Callers that must search outside it (autocomplete for cross-linking)
// pass IgnoreHoistedNote.
func NewContext(opts Options, hoistedNoteID string) *Context {
	c := &Context{
		FastSearch:               opts.FastSearch,
		IncludeArchivedNotes:     opts.IncludeArchivedNotes,
		IncludeHiddenNotes:       opts.IncludeHiddenNotes,
		IgnoreHoistedNote:        opts.IgnoreHoistedNote,
		IgnoreInternalAttributes: opts.IgnoreInternalAttributes,
		AncestorNoteID:           opts.AncestorNoteID,
		AncestorDepth:            opts.AncestorDepth,
		OrderBy:                  opts.OrderBy,
		OrderDirection:           opts.OrderDirection,
		Limit:                    opts.Limit,
		Debug:                    opts.Debug,
		FuzzyAttributeSearch:     opts.FuzzyAttributeSearch,
		EnableFuzzyMatching:      true,
		FuzzyMatchThreshold:      DefaultFuzzyMatchThreshold,
	}
	if c.AncestorNoteID == "" && !c.IgnoreHoistedNote {
		c.AncestorNoteID = hoistedNoteID
	}
	return c
}

// AddError records the first error reported during this query. Later calls
// are ignored: downstream errors are usually consequences of the first and
// add no diagnostic value.
func (c *Context) AddError(message string) {
	if c.err == "" {
		c.err = message
	}
}

// HasError reports whether an error has been recorded.
func (c *Context) HasError() bool {
	return c.err != ""
}

// Err returns the first recorded error message, or empty string.
func (c *Context) Err() string {
	return c.err
}

// AddHighlightedToken records a term for result highlighting, skipping
// duplicates and blanks.
func (c *Context) AddHighlightedToken(token string) {
	if token == "" {
		return
	}
	for _, t := range c.HighlightedTokens {
		if t == token {
			return
		}
	}
	c.HighlightedTokens = append(c.HighlightedTokens, token)
}
