package bridge

/*
Parser for the CGI response header block. The grammar is byte-oriented and
deliberately strict: a header block is one or more generic-fields followed by
a bare line terminator, where a generic-field is

	token ":" *( SP / HT ) field-content line-terminator

and field-content is any run of tokens, single separator bytes and quoted
strings, captured as one raw span. Nothing is normalized or un-escaped, so
separator and quote bytes inside a value survive verbatim. Header bytes are
decoded one byte per code point (ISO-8859-1), which is total and can never
fail, so the only failure mode is a structural grammar mismatch.
*/

// HeaderMap maps lowercased header names to raw field values. When a name
// repeats, the last occurrence wins.
type HeaderMap map[string]string

// ParseOutcome is the result of splitting a response payload: the parsed
// header block and the residual body. Body is a sub-slice of the input
// buffer starting right after the blank-line terminator.
type ParseOutcome struct {
	Headers HeaderMap
	Body    []byte
}

// separators per the CGI header grammar. HT is listed here although it is
// also a control byte: it acts as a separator inside field-content.
var isSeparator = [256]bool{}

func init() {
	for _, b := range []byte("()<>@,;:\\\"/[]?={} \t") {
		isSeparator[b] = true
	}
}

func isControl(b byte) bool {
	return b < 0x20 || b == 0x7f
}

func isTokenByte(b byte) bool {
	return !isControl(b) && !isSeparator[b]
}

// cursor is a backtracking byte cursor over the input buffer. Each parse
// helper either consumes its production and returns true, or leaves the
// position untouched and returns false.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) peek() (byte, bool) {
	if c.pos >= len(c.buf) {
		return 0, false
	}
	return c.buf[c.pos], true
}

// token consumes a maximal run of one or more token bytes.
func (c *cursor) token() bool {
	start := c.pos
	for {
		b, ok := c.peek()
		if !ok || !isTokenByte(b) {
			break
		}
		c.pos++
	}
	return c.pos > start
}

// separator consumes exactly one separator byte.
func (c *cursor) separator() bool {
	b, ok := c.peek()
	if !ok || !isSeparator[b] {
		return false
	}
	c.pos++
	return true
}

// quotedString consumes a double-quoted span. The quotes and everything
// between them stay part of the captured field-content. Inside the quotes
// any non-control byte except DQUOTE is allowed, plus HT.
func (c *cursor) quotedString() bool {
	start := c.pos
	b, ok := c.peek()
	if !ok || b != '"' {
		return false
	}
	c.pos++
	for {
		b, ok = c.peek()
		if !ok {
			c.pos = start
			return false
		}
		if b == '"' {
			c.pos++
			return true
		}
		if b != '\t' && isControl(b) {
			c.pos = start
			return false
		}
		c.pos++
	}
}

// lineEnding consumes a line terminator atomically: CRLF, or a bare LF.
// A CR that is not followed by LF matches nothing.
func (c *cursor) lineEnding() bool {
	b, ok := c.peek()
	if !ok {
		return false
	}
	if b == '\n' {
		c.pos++
		return true
	}
	if b == '\r' && c.pos+1 < len(c.buf) && c.buf[c.pos+1] == '\n' {
		c.pos += 2
		return true
	}
	return false
}

// fieldContent consumes zero or more of {token | separator | quoted-string}
// and returns the raw span. The loop stops at the first byte that fits none
// of the three, which in practice is CR, LF or end of input.
func (c *cursor) fieldContent() []byte {
	start := c.pos
	for {
		if c.token() {
			continue
		}
		if c.quotedString() {
			continue
		}
		if c.separator() {
			continue
		}
		break
	}
	return c.buf[start:c.pos]
}

// genericField consumes one "Name: value" line. On any mismatch the cursor
// rewinds so the caller can try the blank-line terminator instead.
func (c *cursor) genericField() (name, value []byte, ok bool) {
	start := c.pos

	nameStart := c.pos
	if !c.token() {
		c.pos = start
		return nil, nil, false
	}
	name = c.buf[nameStart:c.pos]

	if b, have := c.peek(); !have || b != ':' {
		c.pos = start
		return nil, nil, false
	}
	c.pos++

	// horizontal whitespace after the colon is discarded, it belongs to
	// neither name nor value
	for {
		b, have := c.peek()
		if !have || (b != ' ' && b != '\t') {
			break
		}
		c.pos++
	}

	value = c.fieldContent()

	if !c.lineEnding() {
		c.pos = start
		return nil, nil, false
	}
	return name, value, true
}

// ParseHeaders splits buf into a header map and the residual body. It never
// mutates buf and is a pure function of it. At least one generic-field must
// precede the blank-line terminator; any structural mismatch yields
// ErrMalformedHeaders with no partial result.
func ParseHeaders(buf []byte) (*ParseOutcome, error) {
	c := &cursor{buf: buf}
	headers := HeaderMap{}

	fields := 0
	for {
		name, value, ok := c.genericField()
		if !ok {
			break
		}
		headers[asciiLower(latin1String(name))] = latin1String(value)
		fields++
	}

	if fields == 0 || !c.lineEnding() {
		return nil, ErrMalformedHeaders
	}

	return &ParseOutcome{
		Headers: headers,
		Body:    buf[c.pos:],
	}, nil
}

// latin1String decodes bytes as ISO-8859-1: every byte maps 1:1 to the code
// point of the same value. Total, never fails, never merges bytes.
func latin1String(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

// asciiLower folds A-Z only. Latin-1 bytes above 0x7f must pass through
// untouched, so strings.ToLower (which folds the full Unicode range) is not
// an option here.
func asciiLower(s string) string {
	out := []rune(s)
	for i, r := range out {
		if 'A' <= r && r <= 'Z' {
			out[i] = r + ('a' - 'A')
		}
	}
	return string(out)
}
