package formula

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int8

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOperator
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// closesOperand reports whether the token can end an operand.
func (t token) closesOperand() bool {
	return t.kind == tokNumber || t.kind == tokIdent || t.kind == tokRParen
}

// tokenize splits src into grammar tokens and validates adjacency so that
// "2(3)" or "vitality soulHp" never reach the backend.
func tokenize(src string) ([]token, error) {
	var tokens []token
	runes := []rune(src)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
			continue

		case unicode.IsDigit(r) || r == '.':
			start := i
			dots := 0
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				if runes[i] == '.' {
					dots++
				}
				i++
			}
			text := string(runes[start:i])
			if dots > 1 || text == "." {
				return nil, fmt.Errorf("%w: malformed number %q at %d", ErrSyntax, text, start)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, pos: start})

		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			name := string(runes[start:i])
			if !isVariable(name) {
				return nil, fmt.Errorf("%w: %q at %d", ErrUnknownIdentifier, name, start)
			}
			tokens = append(tokens, token{kind: tokIdent, text: name, pos: start})

		case strings.ContainsRune("+-*/", r):
			tokens = append(tokens, token{kind: tokOperator, text: string(r), pos: i})
			i++

		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++

		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++

		default:
			return nil, fmt.Errorf("%w: unexpected character %q at %d", ErrSyntax, r, i)
		}
	}

	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty formula", ErrSyntax)
	}

	depth := 0
	for i, t := range tokens {
		switch t.kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced ')' at %d", ErrSyntax, t.pos)
			}
		}
		if i == 0 {
			continue
		}
		prev := tokens[i-1]
		// Implicit multiplication and calls are not part of the grammar.
		if prev.closesOperand() && (t.kind == tokNumber || t.kind == tokIdent || t.kind == tokLParen) {
			return nil, fmt.Errorf("%w: missing operator before %q at %d", ErrSyntax, t.text, t.pos)
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced '('", ErrSyntax)
	}

	return tokens, nil
}

// normalize joins tokens with single spaces. Spacing keeps "--" from
// being read as a comment by the Lua backend.
func normalize(tokens []token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.text
	}
	return strings.Join(parts, " ")
}
