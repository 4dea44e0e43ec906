package pipeline

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ------------------- List Literal Parsing -------------------

// parseListLiteral reads a flat list or tuple literal such as
// "['Billing', \"Login\", None]" into its string elements. Elements may be
// quoted strings (with u or r prefixes, triple quotes, adjacent literals
// joined), numbers, True, False or None (which yields ""). The second
// return value is false for anything that is not such a literal.
func parseListLiteral(s string) ([]string, bool) {
	p := &literalParser{src: strings.TrimSpace(s)}
	if p.src == "" {
		return nil, false
	}

	var closer byte
	switch p.src[0] {
	case '[':
		closer = ']'
	case '(':
		closer = ')'
	default:
		return nil, false
	}
	p.pos++

	items := []string{}
	sawComma := false
	for {
		p.skipSpace()
		if p.eof() {
			return nil, false
		}
		if p.peek() == closer {
			p.pos++
			break
		}

		item, ok := p.element()
		if !ok {
			return nil, false
		}
		items = append(items, item)

		p.skipSpace()
		if p.eof() {
			return nil, false
		}
		switch p.peek() {
		case ',':
			sawComma = true
			p.pos++
		case closer:
		default:
			return nil, false
		}
	}

	p.skipSpace()
	if !p.eof() {
		return nil, false
	}
	// "('a')" is a parenthesised string, not a tuple
	if closer == ')' && len(items) == 1 && !sawComma {
		return nil, false
	}
	return items, true
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) eof() bool  { return p.pos >= len(p.src) }
func (p *literalParser) peek() byte { return p.src[p.pos] }

func (p *literalParser) skipSpace() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) element() (string, bool) {
	if _, _, ok := p.stringPrefix(); ok {
		return p.str()
	}
	c := p.peek()
	switch {
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return p.keyword()
	}
}

// stringPrefix reports whether a string literal starts at the current
// position, and the size of its u or r prefix
func (p *literalParser) stringPrefix() (size int, raw, ok bool) {
	rest := p.src[p.pos:]
	if len(rest) > 1 && strings.IndexByte("uUrR", rest[0]) >= 0 {
		raw = rest[0] == 'r' || rest[0] == 'R'
		rest = rest[1:]
		size = 1
	}
	if rest == "" || (rest[0] != '\'' && rest[0] != '"') {
		return 0, false, false
	}
	return size, raw, true
}

// str reads one string element. Adjacent literals, as in "'a' 'b'", are
// joined into one element.
func (p *literalParser) str() (string, bool) {
	var b strings.Builder
	for {
		size, raw, _ := p.stringPrefix()
		p.pos += size
		if !p.quoted(&b, raw) {
			return "", false
		}

		end := p.pos
		p.skipSpace()
		if _, _, ok := p.stringPrefix(); !ok {
			p.pos = end
			return b.String(), true
		}
	}
}

func (p *literalParser) quoted(b *strings.Builder, raw bool) bool {
	delim := p.src[p.pos : p.pos+1]
	if triple := strings.Repeat(delim, 3); strings.HasPrefix(p.src[p.pos:], triple) {
		delim = triple
	}
	p.pos += len(delim)

	for !p.eof() {
		c := p.peek()
		switch {
		case strings.HasPrefix(p.src[p.pos:], delim):
			p.pos += len(delim)
			return true
		case c == '\n' && len(delim) == 1:
			return false
		case c == '\\' && raw:
			// the backslash stays and the next character cannot end the string
			b.WriteByte(c)
			p.pos++
			if p.eof() {
				return false
			}
			p.copyRune(b)
		case c == '\\':
			if !p.escape(b) {
				return false
			}
		default:
			p.copyRune(b)
		}
	}
	return false
}

func (p *literalParser) copyRune(b *strings.Builder) {
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	b.WriteRune(r)
	p.pos += size
}

// escape consumes a backslash sequence. Unknown escapes keep the backslash.
func (p *literalParser) escape(b *strings.Builder) bool {
	p.pos++
	if p.eof() {
		return false
	}
	c := p.peek()
	p.pos++
	switch c {
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0', '1', '2', '3', '4', '5', '6', '7':
		// up to three octal digits
		v := rune(c - '0')
		for i := 1; i < 3 && !p.eof() && p.peek() >= '0' && p.peek() <= '7'; i++ {
			v = v*8 + rune(p.peek()-'0')
			p.pos++
		}
		b.WriteRune(v)
	case '\n':
		// line continuation
	case 'x':
		return p.hexRune(b, 2)
	case 'u':
		return p.hexRune(b, 4)
	case 'U':
		return p.hexRune(b, 8)
	default:
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return true
}

func (p *literalParser) hexRune(b *strings.Builder, digits int) bool {
	if p.pos+digits > len(p.src) {
		return false
	}
	v, err := strconv.ParseUint(p.src[p.pos:p.pos+digits], 16, 32)
	if err != nil || v > utf8.MaxRune {
		return false
	}
	b.WriteRune(rune(v))
	p.pos += digits
	return true
}

func (p *literalParser) number() (string, bool) {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		sign := (c == '+' || c == '-') && (p.pos == start || strings.IndexByte("eE", p.src[p.pos-1]) >= 0)
		if !sign && c != '.' && c != '_' && !isAlnum(c) {
			break
		}
		p.pos++
	}
	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")

	// 0x, 0o and 0b integers
	digits := strings.TrimLeft(text, "+-")
	if len(digits) > 1 && digits[0] == '0' && strings.IndexByte("xXoObB", digits[1]) >= 0 {
		i, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return "", false
		}
		return strconv.FormatInt(i, 10), true
	}
	if strings.IndexFunc(digits, func(r rune) bool { return r != 'e' && r != 'E' && unicode.IsLetter(r) }) >= 0 {
		return "", false
	}

	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return strconv.FormatInt(i, 10), true
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return formatFloat(f), true
	}
	return "", false
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *literalParser) keyword() (string, bool) {
	start := p.pos
	for !p.eof() && (p.peek() == '_' || isAlnum(p.peek())) {
		p.pos++
	}
	switch p.src[start:p.pos] {
	case "True":
		return "True", true
	case "False":
		return "False", true
	case "None":
		return "", true
	}
	return "", false
}

// formatFloat renders floats the way a list literal would print them back
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}
