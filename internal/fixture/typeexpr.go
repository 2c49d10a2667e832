package fixture

import (
	"fmt"
	"strconv"
	"strings"
)

// typeExpr is a parsed type string: "N.List<T, int>[]" with an optional
// "@anchor" locating the reference in source.
type typeExpr struct {
	name   string
	args   []*typeExpr
	rank   int
	anchor string
}

func (e *typeExpr) String() string {
	var b strings.Builder
	b.WriteString(e.name)
	if len(e.args) > 0 {
		b.WriteByte('<')
		for i, a := range e.args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	for range e.rank {
		b.WriteString("[]")
	}
	return b.String()
}

type exprParser struct {
	src string
	pos int
}

func parseTypeExpr(s string) (*typeExpr, error) {
	text, anchor, _ := strings.Cut(s, "@")
	p := &exprParser{src: text}
	e, err := p.parseType()
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", s, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("type %q: unexpected %q at %d", s, p.src[p.pos:], p.pos)
	}
	e.anchor = strings.TrimSpace(anchor)
	return e, nil
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *exprParser) ident() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isIdent(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		if p.pos >= len(p.src) {
			return "", fmt.Errorf("expected identifier at end")
		}
		return "", fmt.Errorf("expected identifier at %d, got %q", p.pos, p.src[p.pos])
	}
	return p.src[start:p.pos], nil
}

func (p *exprParser) parseType() (*typeExpr, error) {
	first, err := p.ident()
	if err != nil {
		return nil, err
	}
	parts := []string{first}
	for p.peek() == '.' {
		p.pos++
		next, err := p.ident()
		if err != nil {
			return nil, err
		}
		parts = append(parts, next)
	}
	e := &typeExpr{name: strings.Join(parts, ".")}
	if p.peek() == '<' {
		p.pos++
		for {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			e.args = append(e.args, arg)
			c := p.peek()
			if c == ',' {
				p.pos++
				continue
			}
			if c != '>' {
				return nil, fmt.Errorf("expected ',' or '>' at %d", p.pos)
			}
			p.pos++
			break
		}
	}
	for p.peek() == '[' {
		p.pos++
		if p.peek() != ']' {
			return nil, fmt.Errorf("expected ']' at %d", p.pos)
		}
		p.pos++
		e.rank++
	}
	return e, nil
}

func isIdent(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// parseAnchor splits "word#n" into word and n; n defaults to -1 (next unused).
func parseAnchor(s string) (string, int, error) {
	word, nth, ok := strings.Cut(strings.TrimSpace(s), "#")
	if !ok {
		return word, -1, nil
	}
	n, err := strconv.Atoi(nth)
	if err != nil || n < 0 {
		return "", 0, fmt.Errorf("bad anchor %q: occurrence must be a non-negative number", s)
	}
	return word, n, nil
}
