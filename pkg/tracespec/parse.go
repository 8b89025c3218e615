// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package tracespec

import (
	"fmt"
	"strings"

	"github.com/cilium/ksnoop/pkg/btf"
)

const (
	// MaxFuncNameLen matches the kernel's KSYM_NAME_LEN.
	MaxFuncNameLen = 128

	// MaxValueNameLen bounds the display name of a bound value.
	MaxValueNameLen = 96

	// MaxSpecArgs is the number of argument specs one trace can hold: every
	// captured argument plus the return value.
	MaxSpecArgs = btf.MaxArgs + 1
)

// Spec is a parsed, not yet resolved, trace specification.
type Spec struct {
	Func string    `json:"func"`
	Args []ArgSpec `json:"args,omitempty"`
}

// ArgSpec names one value to capture: an argument (or "return"), an
// optional member path inside it and an optional predicate such as ">=10".
type ArgSpec struct {
	Arg       string `json:"arg"`
	Member    string `json:"member,omitempty"`
	Predicate string `json:"predicate,omitempty"`
}

// Name is the display name of the value, "arg" or "arg->member".
func (a ArgSpec) Name() string {
	if a.Member == "" {
		return a.Arg
	}
	return a.Arg + "->" + a.Member
}

func (a ArgSpec) String() string {
	if a.Predicate == "" {
		return a.Name()
	}
	return a.Name() + " " + a.Predicate
}

func (s *Spec) String() string {
	if len(s.Args) == 0 {
		return s.Func
	}
	args := make([]string, 0, len(s.Args))
	for _, a := range s.Args {
		args = append(args, a.String())
	}
	return s.Func + "(" + strings.Join(args, ", ") + ")"
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokNumber
	tokLParen
	tokRParen
	tokComma
	tokArrow
	tokDot
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var operators = []string{"==", "!=", ">=", "<=", ">", "<"}

var punctuation = map[byte]tokenKind{
	'(': tokLParen,
	')': tokRParen,
	',': tokComma,
	'.': tokDot,
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c)
}

func lex(text string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(text) {
		c := text[i]
		start := i

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
			continue
		case isNameStart(c):
			for i < len(text) && isNameChar(text[i]) {
				i++
			}
			toks = append(toks, token{tokName, text[start:i], start})
			continue
		case strings.HasPrefix(text[i:], "->"):
			toks = append(toks, token{tokArrow, "->", start})
			i += 2
			continue
		case isDigit(c) || (c == '-' && i+1 < len(text) && isDigit(text[i+1])):
			i++
			for i < len(text) && isNameChar(text[i]) {
				i++
			}
			toks = append(toks, token{tokNumber, text[start:i], start})
			continue
		}

		if kind, ok := punctuation[c]; ok {
			toks = append(toks, token{kind, string(c), start})
			i++
			continue
		}

		matched := false
		for _, op := range operators {
			if strings.HasPrefix(text[i:], op) {
				toks = append(toks, token{tokOp, op, start})
				i += len(op)
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("%w: unexpected %q at offset %d in %q", ErrInvalidSyntax, string(c), start, text)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(text)}), nil
}

type parser struct {
	text string
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) unexpected(tok token, want string) error {
	if tok.kind == tokEOF {
		return fmt.Errorf("%w: expected %s at end of %q", ErrInvalidSyntax, want, p.text)
	}
	return fmt.Errorf("%w: unexpected %q at offset %d in %q, expected %s",
		ErrInvalidSyntax, tok.text, tok.pos, p.text, want)
}

func (p *parser) expect(kind tokenKind, want string) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, p.unexpected(tok, want)
	}
	return tok, nil
}

// Parse reads a trace specification:
//
//	FUNC   := NAME | NAME "(" ARG ("," ARG)* ")"
//	ARG    := NAME PRED? | NAME "->" MEMBER PRED?
//	MEMBER := NAME ("." NAME)*
//	PRED   := OP IMMEDIATE
//
// Whitespace between tokens is ignored. IMMEDIATE is a decimal integer or,
// for enum typed values, an enumerator name; it is only checked when the
// spec is bound.
func Parse(text string) (*Spec, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{text: text, toks: toks}

	name, err := p.expect(tokName, "function name")
	if err != nil {
		return nil, err
	}
	if len(name.text) > MaxFuncNameLen {
		return nil, fmt.Errorf("%w: function name is %d bytes, at most %d are allowed",
			ErrNameTooLong, len(name.text), MaxFuncNameLen)
	}
	spec := &Spec{Func: name.text}

	switch tok := p.next(); tok.kind {
	case tokEOF:
		return spec, nil
	case tokLParen:
	default:
		return nil, p.unexpected(tok, `"(" or end of input`)
	}

	for {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		spec.Args = append(spec.Args, arg)
		if len(spec.Args) > MaxSpecArgs {
			return nil, fmt.Errorf("%w: %s has more than %d argument specs", ErrTooManyArguments, spec.Func, MaxSpecArgs)
		}

		tok := p.next()
		if tok.kind == tokRParen {
			break
		}
		if tok.kind != tokComma {
			return nil, p.unexpected(tok, `"," or ")"`)
		}
	}

	if _, err := p.expect(tokEOF, "end of input"); err != nil {
		return nil, err
	}
	return spec, nil
}

func (p *parser) parseArg() (ArgSpec, error) {
	var arg ArgSpec

	name, err := p.expect(tokName, "argument name")
	if err != nil {
		return arg, err
	}
	arg.Arg = name.text

	if p.peek().kind == tokArrow {
		p.next()
		var parts []string
		for {
			part, err := p.expect(tokName, "member name")
			if err != nil {
				return arg, err
			}
			parts = append(parts, part.text)
			if p.peek().kind != tokDot {
				break
			}
			p.next()
		}
		arg.Member = strings.Join(parts, ".")
	}

	if p.peek().kind == tokOp {
		op := p.next()
		imm := p.next()
		if imm.kind != tokNumber && imm.kind != tokName {
			return arg, p.unexpected(imm, "predicate value")
		}
		arg.Predicate = op.text + imm.text
	}
	return arg, nil
}
