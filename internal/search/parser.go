package search

import (
	"strconv"
	"strings"
)

// ParseResult is the structured form of a query: the expression tree plus
// any orderBy/limit directives found in the query string. Directives from
// the query string take precedence over the context's own settings.
type ParseResult struct {
	Expression     Expression
	OrderBy        string
	OrderDirection string
	Limit          int
	HasOrderBy     bool
	HasLimit       bool
}

// Parse converts a raw query string into a ParseResult. Syntax problems
// never produce an error return: they are recorded on the context and the
// parser yields a best-effort partial expression (or FalseExpression when
// nothing usable survives) so the caller still gets a structured, possibly
// empty, result set.
func Parse(query string, ctx *Context) *ParseResult {
	pr := &ParseResult{}
	tokens := extractDirectives(lex(query, ctx), pr, ctx)

	var ftTerms []string
	for _, t := range tokens {
		switch t.typ {
		case tokenText, tokenPhrase:
			ctx.AddHighlightedToken(t.text)
			ftTerms = append(ftTerms, t.text)
		case tokenLabel, tokenRelation:
			if t.val != "" {
				ctx.AddHighlightedToken(t.val)
			}
		}
	}
	ctx.FulltextQuery = strings.Join(ftTerms, " ")

	p := &parser{tokens: tokens, ctx: ctx}
	expr := p.parseOr()
	if !p.eof() {
		// Only a stray close paren can remain here.
		ctx.AddError("unexpected ')' in search query")
	}
	if expr == nil {
		expr = TrueExpression{}
	}
	pr.Expression = expr
	return pr
}

// extractDirectives recognises orderBy/limit directives at the tail of the
// token stream and records them on the ParseResult. The keywords keep
// their plain text meaning anywhere else in the query, so a search for
// "rate limit 5 minutes" stays a four-term search.
func extractDirectives(tokens []token, pr *ParseResult, ctx *Context) []token {
	start := directiveStart(tokens)

	for i := start; i < len(tokens); i++ {
		switch tokens[i].typ {
		case tokenOrderBy:
			field, ok := directiveField(tokens, i+1)
			if !ok {
				ctx.AddError("orderBy requires a field")
				continue
			}
			i++
			pr.OrderBy = field
			pr.HasOrderBy = true
			if i+1 < len(tokens) && tokens[i+1].typ == tokenText {
				dir := strings.ToLower(tokens[i+1].text)
				if dir == "asc" || dir == "desc" {
					pr.OrderDirection = dir
					i++
				}
			}
		case tokenLimit:
			if i+1 >= len(tokens) || tokens[i+1].typ != tokenText {
				ctx.AddError("limit requires a number")
				continue
			}
			n, err := strconv.Atoi(tokens[i+1].text)
			if err != nil || n < 0 {
				ctx.AddError("limit requires a non-negative number")
				i++
				continue
			}
			pr.Limit = n
			pr.HasLimit = true
			i++
		}
	}

	out := make([]token, 0, start)
	for _, t := range tokens[:start] {
		// A directive keyword that is not part of the tail is demoted
		// back to an ordinary search term.
		switch t.typ {
		case tokenOrderBy:
			out = append(out, token{typ: tokenText, text: "orderBy"})
		case tokenLimit:
			out = append(out, token{typ: tokenText, text: "limit"})
		default:
			out = append(out, t)
		}
	}
	return out
}

// directiveStart returns the earliest index from which the remaining
// tokens consist of nothing but directive clauses, or len(tokens) when
// the stream does not end in directives.
func directiveStart(tokens []token) int {
	for s := 0; s < len(tokens); s++ {
		if tokens[s].typ != tokenOrderBy && tokens[s].typ != tokenLimit {
			continue
		}
		if isDirectiveTail(tokens[s:]) {
			return s
		}
	}
	return len(tokens)
}

// isDirectiveTail checks the shape of a candidate tail: a run of orderBy
// and limit clauses with nothing else after them. A keyword cut off by
// the end of the query still counts so the missing-argument error is
// reported rather than the keyword being searched for literally.
func isDirectiveTail(tokens []token) bool {
	i := 0
	for i < len(tokens) {
		switch tokens[i].typ {
		case tokenOrderBy:
			i++
			if i == len(tokens) {
				return true
			}
			if _, ok := directiveField(tokens, i); !ok {
				return false
			}
			i++
			if i < len(tokens) && tokens[i].typ == tokenText {
				dir := strings.ToLower(tokens[i].text)
				if dir == "asc" || dir == "desc" {
					i++
				}
			}
		case tokenLimit:
			i++
			if i == len(tokens) {
				return true
			}
			if tokens[i].typ != tokenText {
				return false
			}
			i++
		default:
			return false
		}
	}
	return true
}

// directiveField accepts either a bare word (title, notePosition) or a
// presence-only #label token as the orderBy field.
func directiveField(tokens []token, i int) (string, bool) {
	if i >= len(tokens) {
		return "", false
	}
	switch tokens[i].typ {
	case tokenText:
		return tokens[i].text, true
	case tokenLabel:
		if tokens[i].op == "" {
			return tokens[i].text, true
		}
	}
	return "", false
}

type parser struct {
	tokens []token
	pos    int
	ctx    *Context
}

func (p *parser) eof() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

// parseOr handles explicit OR between AND groups.
func (p *parser) parseOr() Expression {
	left := p.parseAndList()
	if p.eof() || p.peek().typ != tokenOr {
		return left
	}
	or := &OrExpression{}
	if left != nil {
		or.Subs = append(or.Subs, left)
	}
	for !p.eof() && p.peek().typ == tokenOr {
		p.pos++
		right := p.parseAndList()
		if right == nil {
			p.ctx.AddError("OR requires an operand")
			continue
		}
		or.Subs = append(or.Subs, right)
	}
	if len(or.Subs) == 0 {
		return FalseExpression{}
	}
	if len(or.Subs) == 1 {
		return or.Subs[0]
	}
	return or
}

// parseAndList collects space-separated terms into an implicit AND.
func (p *parser) parseAndList() Expression {
	var subs []Expression
	for !p.eof() {
		t := p.peek()
		if t.typ == tokenOr || t.typ == tokenCloseParen {
			break
		}
		e := p.parseUnary()
		if e == nil {
			break
		}
		subs = append(subs, e)
	}
	if len(subs) == 0 {
		return nil
	}
	if len(subs) == 1 {
		return subs[0]
	}
	return &AndExpression{Subs: subs}
}

func (p *parser) parseUnary() Expression {
	if !p.eof() && p.peek().typ == tokenNot {
		p.pos++
		sub := p.parseUnary()
		if sub == nil {
			p.ctx.AddError("NOT requires an operand")
			return FalseExpression{}
		}
		return &NotExpression{Sub: sub}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() Expression {
	if p.eof() {
		return nil
	}
	t := p.peek()
	switch t.typ {
	case tokenOpenParen:
		p.pos++
		inner := p.parseOr()
		if !p.eof() && p.peek().typ == tokenCloseParen {
			p.pos++
		} else {
			p.ctx.AddError("missing closing parenthesis in search query")
		}
		if inner == nil {
			return TrueExpression{}
		}
		return inner
	case tokenText, tokenPhrase:
		p.pos++
		return &FulltextExpression{Token: t.text, Phrase: t.typ == tokenPhrase}
	case tokenLabel:
		p.pos++
		return &LabelExpression{Name: t.text, Op: t.op, Value: t.val, HasValue: t.op != ""}
	case tokenRelation:
		p.pos++
		return &RelationExpression{Name: t.text, SubProperty: t.sub, Op: t.op, Value: t.val, HasValue: t.op != ""}
	}
	return nil
}
