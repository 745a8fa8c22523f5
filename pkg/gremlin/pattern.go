package gremlin

import (
	"fmt"
	"strings"
)

// Token is one step of a path pattern
type Token string

const (
	V    Token = "V"
	InV  Token = "inV"
	OutV Token = "outV"
	E    Token = "E"
	InE  Token = "inE"
	OutE Token = "outE"
)

// IsVertex reports whether the token aligns with a vertex-like element
func (t Token) IsVertex() bool {
	return t == V || t == InV || t == OutV
}

// Pattern is a sequence of tokens applied cyclically over a path
type Pattern []Token

// ParsePattern reads a comma or whitespace separated token list. Tokens are
// matched case-insensitively.
func ParsePattern(text string) (Pattern, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})

	var p Pattern
	for _, f := range fields {
		tok, ok := tokenByName[strings.ToLower(f)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown token %q", ErrInvalidPattern, f)
		}
		p = append(p, tok)
	}
	return p, nil
}

var tokenByName = map[string]Token{
	"v":    V,
	"inv":  InV,
	"outv": OutV,
	"e":    E,
	"ine":  InE,
	"oute": OutE,
}

// At returns the token for position i of a path
func (p Pattern) At(i int) Token {
	return p[i%len(p)]
}

func (p Pattern) String() string {
	parts := make([]string, len(p))
	for i, t := range p {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

// vertexLink decides how two consecutive vertex tokens are connected. The
// current token tells how its element was reached from the previous one.
func vertexLink(prev, cur Token) (directed, reversed bool, err error) {
	if (prev == InV || prev == OutV) && prev == cur {
		return false, false, fmt.Errorf("%w: %s followed by %s", ErrAmbiguousEdgeDirection, prev, cur)
	}
	switch cur {
	case InV:
		return true, true, nil
	case OutV:
		return true, false, nil
	default:
		return false, false, nil
	}
}

// edgeDirection decides the orientation of an explicitly directed edge
// token. ok is false when the edge's own direction should be used.
func edgeDirection(prev, tok, next Token) (reversed, ok bool, err error) {
	switch tok {
	case InE:
		return true, true, nil
	case OutE:
		return false, true, nil
	}

	if prev == V && next == V {
		return false, false, nil
	}
	// inV marks the head and outV the tail of the edge between them
	if (prev == InV && next == InV) || (prev == OutV && next == OutV) {
		return false, false, fmt.Errorf("%w: %s,%s,%s", ErrAmbiguousEdgeDirection, prev, tok, next)
	}
	switch {
	case next == InV || prev == OutV:
		return false, true, nil
	default:
		return true, true, nil
	}
}
