package model

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

type exprOp uint8

const (
	opName exprOp = iota
	opSeq
	opChoice
	opStar
	opPlus
	opOpt
)

// contentExpr is a compiled content expression. Matching works on sets of
// child indexes, so no backtracking is needed.
type contentExpr struct {
	op    exprOp
	types []*NodeType
	exprs []*contentExpr
}

// ContentMatch validates child sequences against a node type's content
// expression.
type ContentMatch struct {
	source string
	expr   *contentExpr
}

// String returns the source expression.
func (m *ContentMatch) String() string {
	return m.source
}

// Valid reports whether the sequence of child types satisfies the expression.
func (m *ContentMatch) Valid(types []*NodeType) bool {
	if m.expr == nil {
		return len(types) == 0
	}
	return slices.Contains(m.expr.match(types, []int{0}), len(types))
}

// ValidFragment reports whether the fragment's children satisfy the expression.
func (m *ContentMatch) ValidFragment(f Fragment) bool {
	types := make([]*NodeType, f.ChildCount())
	for i := range types {
		types[i] = f.Child(i).typ
	}
	return m.Valid(types)
}

// Allows reports whether a node of type t may appear anywhere in the content.
func (m *ContentMatch) Allows(t *NodeType) bool {
	if m.expr == nil {
		return false
	}
	return m.expr.mentions(t)
}

// First returns the node types that may start the content, in expression order.
func (m *ContentMatch) First() []*NodeType {
	if m.expr == nil {
		return nil
	}
	var out []*NodeType
	m.expr.first(&out)
	return out
}

// DefaultType returns the first non-text type the content may start with
// that can be created without attributes, or nil.
func (m *ContentMatch) DefaultType() *NodeType {
	for _, t := range m.First() {
		if t.IsText() || t.hasRequiredAttrs() {
			continue
		}
		return t
	}
	return nil
}

func (e *contentExpr) match(types []*NodeType, starts []int) []int {
	if len(starts) == 0 {
		return nil
	}
	switch e.op {
	case opName:
		var out []int
		for _, s := range starts {
			if s < len(types) && slices.Contains(e.types, types[s]) {
				out = addIndex(out, s+1)
			}
		}
		return out
	case opSeq:
		cur := starts
		for _, sub := range e.exprs {
			cur = sub.match(types, cur)
			if len(cur) == 0 {
				return nil
			}
		}
		return cur
	case opChoice:
		var out []int
		for _, sub := range e.exprs {
			for _, end := range sub.match(types, starts) {
				out = addIndex(out, end)
			}
		}
		return out
	case opOpt:
		out := slices.Clone(starts)
		for _, end := range e.exprs[0].match(types, starts) {
			out = addIndex(out, end)
		}
		return out
	case opStar:
		return e.repeat(types, starts)
	case opPlus:
		return e.repeat(types, e.exprs[0].match(types, starts))
	}
	return nil
}

func (e *contentExpr) repeat(types []*NodeType, starts []int) []int {
	result := slices.Clone(starts)
	frontier := starts
	for len(frontier) > 0 {
		var next []int
		for _, end := range e.exprs[0].match(types, frontier) {
			if !slices.Contains(result, end) {
				result = append(result, end)
				next = append(next, end)
			}
		}
		frontier = next
	}
	return result
}

func (e *contentExpr) mentions(t *NodeType) bool {
	if e.op == opName {
		return slices.Contains(e.types, t)
	}
	for _, sub := range e.exprs {
		if sub.mentions(t) {
			return true
		}
	}
	return false
}

// nullable reports whether the expression matches the empty sequence.
func (e *contentExpr) nullable() bool {
	switch e.op {
	case opName:
		return false
	case opSeq:
		for _, sub := range e.exprs {
			if !sub.nullable() {
				return false
			}
		}
		return true
	case opChoice:
		for _, sub := range e.exprs {
			if sub.nullable() {
				return true
			}
		}
		return false
	case opStar, opOpt:
		return true
	case opPlus:
		return e.exprs[0].nullable()
	}
	return false
}

func (e *contentExpr) first(out *[]*NodeType) {
	switch e.op {
	case opName:
		for _, t := range e.types {
			if !slices.Contains(*out, t) {
				*out = append(*out, t)
			}
		}
	case opSeq:
		for _, sub := range e.exprs {
			sub.first(out)
			if !sub.nullable() {
				return
			}
		}
	default:
		for _, sub := range e.exprs {
			sub.first(out)
		}
	}
}

// allTypes collects every type the expression can match.
func (e *contentExpr) allTypes(out *[]*NodeType) {
	if e.op == opName {
		for _, t := range e.types {
			if !slices.Contains(*out, t) {
				*out = append(*out, t)
			}
		}
		return
	}
	for _, sub := range e.exprs {
		sub.allTypes(out)
	}
}

func addIndex(set []int, i int) []int {
	if slices.Contains(set, i) {
		return set
	}
	return append(set, i)
}

// exprParser compiles content expressions. Grammar:
//
//	seq    = term { term }
//	term   = atom [ "*" | "+" | "?" ]
//	atom   = name | "(" choice ")"
//	choice = seq { "|" seq }
type exprParser struct {
	source string
	tokens []string
	pos    int
	lookup func(name string) []*NodeType
}

func compileContent(source string, lookup func(string) []*NodeType) (*ContentMatch, error) {
	p := &exprParser{source: source, tokens: tokenizeExpr(source), lookup: lookup}
	if len(p.tokens) == 0 {
		return &ContentMatch{source: source}, nil
	}
	expr, err := p.parseChoice()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, p.errorf("unexpected token %q", p.tokens[p.pos])
	}
	return &ContentMatch{source: source, expr: expr}, nil
}

func tokenizeExpr(s string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			flush()
		case strings.ContainsRune("()|*+?", r):
			flush()
			tokens = append(tokens, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func (p *exprParser) errorf(format string, args ...any) error {
	return fmt.Errorf("content expression %q: %s", p.source, fmt.Sprintf(format, args...))
}

func (p *exprParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *exprParser) parseChoice() (*contentExpr, error) {
	alts := []*contentExpr{}
	for {
		seq, err := p.parseSeq()
		if err != nil {
			return nil, err
		}
		alts = append(alts, seq)
		if p.peek() != "|" {
			break
		}
		p.pos++
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return &contentExpr{op: opChoice, exprs: alts}, nil
}

func (p *exprParser) parseSeq() (*contentExpr, error) {
	var terms []*contentExpr
	for {
		tok := p.peek()
		if tok == "" || tok == ")" || tok == "|" {
			break
		}
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	switch len(terms) {
	case 0:
		return nil, p.errorf("empty sequence")
	case 1:
		return terms[0], nil
	}
	return &contentExpr{op: opSeq, exprs: terms}, nil
}

func (p *exprParser) parseTerm() (*contentExpr, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek() {
		case "*":
			atom = &contentExpr{op: opStar, exprs: []*contentExpr{atom}}
		case "+":
			atom = &contentExpr{op: opPlus, exprs: []*contentExpr{atom}}
		case "?":
			atom = &contentExpr{op: opOpt, exprs: []*contentExpr{atom}}
		default:
			return atom, nil
		}
		p.pos++
	}
}

func (p *exprParser) parseAtom() (*contentExpr, error) {
	tok := p.peek()
	if tok == "(" {
		p.pos++
		inner, err := p.parseChoice()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, p.errorf("missing closing paren")
		}
		p.pos++
		return inner, nil
	}
	if tok == "" || strings.ContainsAny(tok, "()|*+?") {
		return nil, p.errorf("unexpected token %q", tok)
	}
	p.pos++
	types := p.lookup(tok)
	if len(types) == 0 {
		return nil, p.errorf("no node type or group %q", tok)
	}
	return &contentExpr{op: opName, types: types}, nil
}
