package search

import (
	"strings"
	"unicode"
)

type tokenType int

const (
	tokenText tokenType = iota
	tokenPhrase
	tokenLabel
	tokenRelation
	tokenOpenParen
	tokenCloseParen
	tokenOr
	tokenNot
	tokenOrderBy
	tokenLimit
)

// token is one lexed element of a query. For attribute tokens text holds
// the name, sub the relation subproperty, op the comparison operator (empty
// for presence-only predicates) and val the comparison value.
type token struct {
	typ  tokenType
	text string
	sub  string
	op   string
	val  string
}

type lexer struct {
	input []rune
	pos   int
	ctx   *Context
}

// lex tokenizes a raw query. Malformed input is recorded on the context
// and lexing continues best-effort; lex never fails.
func lex(query string, ctx *Context) []token {
	l := &lexer{input: []rune(query), ctx: ctx}
	var tokens []token

	for {
		l.skipSpaces()
		if l.eof() {
			break
		}
		switch c := l.peek(); {
		case c == '(':
			l.pos++
			tokens = append(tokens, token{typ: tokenOpenParen})
		case c == ')':
			l.pos++
			tokens = append(tokens, token{typ: tokenCloseParen})
		case c == '"' || c == '\'':
			tokens = append(tokens, token{typ: tokenPhrase, text: l.readQuoted(c)})
		case c == '#':
			l.pos++
			tokens = append(tokens, l.readAttribute(tokenLabel))
		case c == '~':
			l.pos++
			tokens = append(tokens, l.readAttribute(tokenRelation))
		default:
			word := l.readBareWord()
			if word == "" {
				// Unrecognized character; skip it rather than loop forever.
				l.pos++
				continue
			}
			switch strings.ToLower(word) {
			case "or":
				tokens = append(tokens, token{typ: tokenOr})
			case "not":
				tokens = append(tokens, token{typ: tokenNot})
			case "orderby":
				tokens = append(tokens, token{typ: tokenOrderBy})
			case "limit":
				tokens = append(tokens, token{typ: tokenLimit})
			default:
				tokens = append(tokens, token{typ: tokenText, text: word})
			}
		}
	}
	return tokens
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *lexer) peek() rune {
	return l.input[l.pos]
}

func (l *lexer) skipSpaces() {
	for !l.eof() && unicode.IsSpace(l.peek()) {
		l.pos++
	}
}

// readQuoted consumes an opening quote and returns the content up to the
// matching close quote. An unbalanced quote is a recorded error; the rest
// of the input is taken as the phrase so the query still evaluates.
func (l *lexer) readQuoted(quote rune) string {
	l.pos++ // opening quote
	start := l.pos
	for !l.eof() {
		if l.peek() == quote {
			s := string(l.input[start:l.pos])
			l.pos++
			return s
		}
		l.pos++
	}
	l.ctx.AddError("unbalanced quote in search query")
	return string(l.input[start:])
}

// readBareWord reads until whitespace, parenthesis, or quote.
func (l *lexer) readBareWord() string {
	start := l.pos
	for !l.eof() {
		c := l.peek()
		if unicode.IsSpace(c) || c == '(' || c == ')' || c == '"' || c == '\'' {
			break
		}
		l.pos++
	}
	return string(l.input[start:l.pos])
}

// readName reads an attribute name: letters, digits, underscore, colon.
func (l *lexer) readName() string {
	start := l.pos
	for !l.eof() {
		c := l.peek()
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' && c != ':' {
			break
		}
		l.pos++
	}
	return string(l.input[start:l.pos])
}

var operators = []string{"*=*", "!=", ">=", "<=", "=", ">", "<"}

func (l *lexer) readOperator() string {
	rest := string(l.input[l.pos:])
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			l.pos += len(op)
			return op
		}
	}
	return ""
}

// readAttribute lexes the remainder of a #label or ~relation token after
// the sigil has been consumed.
func (l *lexer) readAttribute(typ tokenType) token {
	t := token{typ: typ}
	t.text = l.readName()
	if t.text == "" {
		l.ctx.AddError("missing attribute name in search query")
		return token{typ: tokenText}
	}
	if typ == tokenRelation && !l.eof() && l.peek() == '.' {
		l.pos++
		t.sub = l.readName()
	}
	t.op = l.readOperator()
	if t.op == "" {
		if !l.eof() && (l.peek() == '!' || l.peek() == '*') {
			l.ctx.AddError("unknown operator in search query")
			l.pos++
		}
		return t
	}
	if !l.eof() && (l.peek() == '"' || l.peek() == '\'') {
		t.val = l.readQuoted(l.peek())
	} else {
		t.val = l.readBareWord()
	}
	return t
}
