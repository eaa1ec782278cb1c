package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Scanner performs lexical analysis on C# source code.
type Scanner struct {
	source // embedded character reader

	// Current token info
	tok    Token     // token type
	lit    string    // token literal (identifier name, number, decoded string)
	kind   LitKind   // literal kind (only valid when tok == _Literal)
	tokPos Pos       // token start position
	segs   []Segment // segments of an interpolated string (tok == _Interp)

	litBuf strings.Builder
}

// Segment is one segment of an interpolated string: either decoded
// literal text or the raw source of an interpolation hole.
type Segment struct {
	Hole     bool   // false: Text is literal text
	Text     string // decoded literal text, or the hole's expression source
	Pos      Pos    // position of Text's first character
	Align    string // alignment clause source after ',' (holes only)
	AlignPos Pos    // position of Align
	Format   string // format clause after ':' (holes only)
}

// NewScanner creates a new Scanner for the given source.
// The errh function is called for each lexical error; if nil, errors are silently ignored.
func NewScanner(filename string, src io.Reader, errh func(line, col uint32, msg string)) *Scanner {
	return &Scanner{source: *newSource(filename, src, errh)}
}

// newScannerAt scans text whose first character sits at pos in a larger file.
func newScannerAt(text string, pos Pos, errh func(line, col uint32, msg string)) *Scanner {
	return &Scanner{source: *newSourceAt(pos.filename, text, pos.line, pos.col, errh)}
}

// Next advances to the next token.
func (s *Scanner) Next() {
	s.segs = nil
	s.kind = 0

redo:
	s.skipWhitespace()
	s.tokPos = s.pos()

	switch {
	case s.ch < 0:
		s.tok = _EOF
		s.lit = ""

	case isLetter(s.ch):
		s.scanIdent()

	case isDigit(s.ch) || s.ch == '.' && isDigit(s.peek()):
		s.scanNumber()

	case s.ch == '"':
		s.nextch()
		s.scanString()

	case s.ch == '\'':
		s.scanChar()

	case s.ch == '@':
		s.nextch()
		switch {
		case s.ch == '"':
			s.nextch()
			s.scanVerbatimString()
		case s.ch == '$' && s.peek() == '"':
			s.nextch()
			s.nextch()
			s.scanInterpolated(true)
		case isLetter(s.ch):
			s.scanIdent()
			s.tok = _Name // @class is an identifier
		default:
			s.error(fmt.Sprintf("unexpected character %q after @", s.ch))
			goto redo
		}

	case s.ch == '$':
		s.nextch()
		switch {
		case s.ch == '"':
			s.nextch()
			s.scanInterpolated(false)
		case s.ch == '@' && s.peek() == '"':
			s.nextch()
			s.nextch()
			s.scanInterpolated(true)
		default:
			s.error("expected string after $")
			goto redo
		}

	case s.ch == '#':
		// preprocessor directives are ignored
		s.skipLineComment()
		goto redo

	default:
		if s.scanOperator() {
			goto redo
		}
	}
}

// Token returns the current token type.
func (s *Scanner) Token() Token {
	return s.tok
}

// Literal returns the current token's literal value.
func (s *Scanner) Literal() string {
	return s.lit
}

// LitKind returns the current literal's kind (only valid when Token() == _Literal).
func (s *Scanner) LitKind() LitKind {
	return s.kind
}

// Pos returns the current token's start position.
func (s *Scanner) Pos() Pos {
	return s.tokPos
}

// Segments returns the segments of the current interpolated string token.
func (s *Scanner) Segments() []Segment {
	return s.segs
}

func (s *Scanner) skipWhitespace() {
	for isWhitespace(s.ch) {
		s.nextch()
	}
}

// scanIdent scans an identifier or keyword.
func (s *Scanner) scanIdent() {
	s.litBuf.Reset()
	for isIdentPart(s.ch) {
		s.litBuf.WriteRune(s.ch)
		s.nextch()
	}
	s.lit = s.litBuf.String()
	s.tok = LookupKeyword(s.lit)
}

// scanNumber scans an integer or real literal. The literal text keeps its
// base prefix but drops digit separators and type suffixes.
func (s *Scanner) scanNumber() {
	s.litBuf.Reset()
	s.kind = IntLit
	s.tok = _Literal

	if s.ch == '0' && (lower(s.peek()) == 'x' || lower(s.peek()) == 'b') {
		s.litBuf.WriteRune('0')
		s.nextch()
		hex := lower(s.ch) == 'x'
		s.litBuf.WriteRune(lower(s.ch))
		s.nextch()
		n := 0
		for isHexDigit(s.ch) || s.ch == '_' {
			if s.ch != '_' {
				if !hex && !isBinaryDigit(s.ch) {
					s.error("invalid binary digit")
				}
				s.litBuf.WriteRune(s.ch)
				n++
			}
			s.nextch()
		}
		if n == 0 {
			s.error("missing digits after base prefix")
		}
		s.scanIntSuffix()
		s.lit = s.litBuf.String()
		return
	}

	if s.ch == '.' {
		s.litBuf.WriteRune('0')
	} else {
		s.scanDigits()
	}
	if s.ch == '.' && isDigit(s.peek()) {
		s.kind = RealLit
		s.litBuf.WriteRune('.')
		s.nextch()
		s.scanDigits()
	}
	if lower(s.ch) == 'e' {
		s.kind = RealLit
		s.litBuf.WriteRune('e')
		s.nextch()
		if s.ch == '+' || s.ch == '-' {
			s.litBuf.WriteRune(s.ch)
			s.nextch()
		}
		if !isDigit(s.ch) {
			s.error("exponent has no digits")
		}
		s.scanDigits()
	}

	switch lower(s.ch) {
	case 'f', 'd', 'm':
		s.kind = RealLit
		s.nextch()
	default:
		if s.kind == IntLit {
			s.scanIntSuffix()
		}
	}
	s.lit = s.litBuf.String()
}

func (s *Scanner) scanDigits() {
	for isDigit(s.ch) || s.ch == '_' {
		if s.ch != '_' {
			s.litBuf.WriteRune(s.ch)
		}
		s.nextch()
	}
}

// scanIntSuffix skips the u, l, ul and lu suffixes.
func (s *Scanner) scanIntSuffix() {
	for i := 0; i < 2 && (lower(s.ch) == 'u' || lower(s.ch) == 'l'); i++ {
		s.nextch()
	}
}

// scanString scans a regular string literal after its opening quote.
// The literal is the decoded string content.
func (s *Scanner) scanString() {
	var b strings.Builder
	s.tok = _Literal
	s.kind = StringLit
	for {
		switch s.ch {
		case '"':
			s.nextch()
			s.lit = b.String()
			return
		case '\\':
			if r, ok := s.scanEscape('"'); ok {
				b.WriteRune(r)
			}
		case '\n', -1:
			s.error("string not terminated")
			s.lit = b.String()
			return
		default:
			b.WriteRune(s.ch)
			s.nextch()
		}
	}
}

// scanVerbatimString scans @"..." after its opening quote; "" stands for ".
func (s *Scanner) scanVerbatimString() {
	var b strings.Builder
	s.tok = _Literal
	s.kind = StringLit
	for {
		switch {
		case s.ch == '"' && s.peek() == '"':
			b.WriteByte('"')
			s.nextch()
			s.nextch()
		case s.ch == '"':
			s.nextch()
			s.lit = b.String()
			return
		case s.ch < 0:
			s.error("string not terminated")
			s.lit = b.String()
			return
		default:
			b.WriteRune(s.ch)
			s.nextch()
		}
	}
}

// scanChar scans a character literal.
func (s *Scanner) scanChar() {
	s.nextch() // skip opening '
	s.tok = _Literal
	s.kind = CharLit

	var r rune
	switch s.ch {
	case '\\':
		r, _ = s.scanEscape('\'')
	case '\'', '\n', -1:
		s.error("empty character literal")
	default:
		r = s.ch
		s.nextch()
	}
	s.lit = string(r)

	if s.ch != '\'' {
		s.error("character literal not terminated")
		return
	}
	s.nextch()
}

// scanEscape scans an escape sequence starting at the backslash and
// returns the decoded rune.
func (s *Scanner) scanEscape(quote rune) (rune, bool) {
	s.nextch() // skip \

	var r rune
	switch s.ch {
	case 'n':
		r = '\n'
	case 't':
		r = '\t'
	case 'r':
		r = '\r'
	case '0':
		r = 0
	case 'a':
		r = '\a'
	case 'b':
		r = '\b'
	case 'f':
		r = '\f'
	case 'v':
		r = '\v'
	case '\\', '"', '\'':
		r = s.ch
	case 'x':
		s.nextch()
		return s.scanHexEscape(1, 4)
	case 'u':
		s.nextch()
		return s.scanHexEscape(4, 4)
	case 'U':
		s.nextch()
		return s.scanHexEscape(8, 8)
	default:
		s.error(fmt.Sprintf("unknown escape sequence: \\%c", s.ch))
		if s.ch != quote && s.ch >= 0 {
			s.nextch()
		}
		return 0, false
	}
	s.nextch()
	return r, true
}

// scanHexEscape scans between min and max hex digits.
func (s *Scanner) scanHexEscape(min, max int) (rune, bool) {
	var val rune
	n := 0
	for n < max && isHexDigit(s.ch) {
		val = val*16 + hexValue(s.ch)
		s.nextch()
		n++
	}
	if n < min {
		s.error("invalid hex escape")
		return 0, false
	}
	return val, true
}

// hexValue returns the numeric value of a hex digit.
func hexValue(r rune) rune {
	switch {
	case '0' <= r && r <= '9':
		return r - '0'
	case 'a' <= lower(r) && lower(r) <= 'f':
		return lower(r) - 'a' + 10
	}
	return 0
}

// scanInterpolated scans an interpolated string after its opening quote.
// Literal text is decoded ({{ and }} become single braces); each hole keeps
// its raw source so the parser can parse it as an expression.
func (s *Scanner) scanInterpolated(verbatim bool) {
	s.tok = _Interp
	var text strings.Builder
	var display strings.Builder
	textPos := s.pos()

	flush := func() {
		if text.Len() > 0 {
			s.segs = append(s.segs, Segment{Text: text.String(), Pos: textPos})
			display.WriteString(text.String())
			text.Reset()
		}
	}

	for {
		switch {
		case s.ch == '"' && verbatim && s.peek() == '"':
			text.WriteByte('"')
			s.nextch()
			s.nextch()
		case s.ch == '"':
			s.nextch()
			flush()
			s.lit = display.String()
			return
		case s.ch == '{' && s.peek() == '{':
			text.WriteByte('{')
			s.nextch()
			s.nextch()
		case s.ch == '}' && s.peek() == '}':
			text.WriteByte('}')
			s.nextch()
			s.nextch()
		case s.ch == '{':
			flush()
			s.nextch()
			seg := s.scanHole()
			s.segs = append(s.segs, seg)
			display.WriteString("{" + seg.Text + "}")
			textPos = s.pos()
		case s.ch == '}':
			s.error("unexpected } in interpolated string")
			s.nextch()
		case s.ch == '\\' && !verbatim:
			if r, ok := s.scanEscape('"'); ok {
				text.WriteRune(r)
			}
		case s.ch < 0 || s.ch == '\n' && !verbatim:
			s.error("string not terminated")
			flush()
			s.lit = display.String()
			return
		default:
			text.WriteRune(s.ch)
			s.nextch()
		}
	}
}

// scanHole scans an interpolation hole after its '{' up to and including
// the matching '}'.
func (s *Scanner) scanHole() Segment {
	seg := Segment{Hole: true, Pos: s.pos()}
	var b strings.Builder
	depth := 0
	inAlign := false

	finish := func() {
		if inAlign {
			seg.Align = b.String()
		} else {
			seg.Text = b.String()
		}
	}

	for {
		switch s.ch {
		case -1:
			s.error("interpolation hole not terminated")
			finish()
			return seg
		case '"', '\'':
			s.copyQuoted(&b)
			continue
		case '(', '[', '{':
			depth++
		case ')', ']':
			depth--
		case '}':
			if depth == 0 {
				s.nextch()
				finish()
				return seg
			}
			depth--
		case ',':
			if depth == 0 && !inAlign {
				seg.Text = b.String()
				b.Reset()
				inAlign = true
				s.nextch()
				seg.AlignPos = s.pos()
				continue
			}
		case ':':
			if depth == 0 {
				finish()
				s.nextch()
				var f strings.Builder
				for s.ch != '}' && s.ch >= 0 {
					f.WriteRune(s.ch)
					s.nextch()
				}
				seg.Format = f.String()
				if s.ch != '}' {
					s.error("interpolation hole not terminated")
					return seg
				}
				s.nextch()
				return seg
			}
		}
		b.WriteRune(s.ch)
		s.nextch()
	}
}

// copyQuoted copies a string or character literal inside a hole verbatim.
func (s *Scanner) copyQuoted(b *strings.Builder) {
	quote := s.ch
	b.WriteRune(quote)
	s.nextch()
	for s.ch >= 0 && s.ch != '\n' {
		if s.ch == '\\' {
			b.WriteRune(s.ch)
			s.nextch()
			if s.ch >= 0 {
				b.WriteRune(s.ch)
				s.nextch()
			}
			continue
		}
		b.WriteRune(s.ch)
		if s.ch == quote {
			s.nextch()
			return
		}
		s.nextch()
	}
}

// scanOperator scans an operator or delimiter.
// Returns true if a comment was skipped (caller should rescan).
func (s *Scanner) scanOperator() bool {
	ch := s.ch
	s.nextch()

	// two-character lookahead helpers
	sel := func(next rune, yes, no Token) Token {
		if s.ch == next {
			s.nextch()
			return yes
		}
		return no
	}

	switch ch {
	case '+':
		switch s.ch {
		case '+':
			s.nextch()
			s.tok = _Inc
		case '=':
			s.nextch()
			s.tok = _AddAssign
		default:
			s.tok = _Add
		}
	case '-':
		switch s.ch {
		case '-':
			s.nextch()
			s.tok = _Dec
		case '=':
			s.nextch()
			s.tok = _SubAssign
		default:
			s.tok = _Sub
		}
	case '*':
		s.tok = sel('=', _MulAssign, _Mul)
	case '/':
		switch s.ch {
		case '/':
			s.skipLineComment()
			return true
		case '*':
			s.skipBlockComment()
			return true
		}
		s.tok = sel('=', _DivAssign, _Div)
	case '%':
		s.tok = sel('=', _RemAssign, _Rem)
	case '&':
		switch s.ch {
		case '&':
			s.nextch()
			s.tok = _AndAnd
		case '=':
			s.nextch()
			s.tok = _AndAssign
		default:
			s.tok = _And
		}
	case '|':
		switch s.ch {
		case '|':
			s.nextch()
			s.tok = _OrOr
		case '=':
			s.nextch()
			s.tok = _OrAssign
		default:
			s.tok = _Or
		}
	case '^':
		s.tok = sel('=', _XorAssign, _Xor)
	case '!':
		s.tok = sel('=', _Neq, _Not)
	case '~':
		s.tok = _Tilde
	case '<':
		switch s.ch {
		case '<':
			s.nextch()
			s.tok = sel('=', _ShlAssign, _Shl)
		case '=':
			s.nextch()
			s.tok = _Leq
		default:
			s.tok = _Lss
		}
	case '>':
		s.tok = sel('=', _Geq, _Gtr)
	case '=':
		switch s.ch {
		case '=':
			s.nextch()
			s.tok = _Eql
		case '>':
			s.nextch()
			s.tok = _Arrow
		default:
			s.tok = _Assign
		}
	case '?':
		switch {
		case s.ch == '?':
			s.nextch()
			s.tok = sel('=', _CoalesceAssign, _Coalesce)
		case s.ch == '.' && !isDigit(s.peek()):
			s.nextch()
			s.tok = _QDot
		default:
			s.tok = _Question
		}
	case ':':
		s.tok = _Colon
	case '(':
		s.tok = _Lparen
	case ')':
		s.tok = _Rparen
	case '[':
		s.tok = _Lbrack
	case ']':
		s.tok = _Rbrack
	case '{':
		s.tok = _Lbrace
	case '}':
		s.tok = _Rbrace
	case ',':
		s.tok = _Comma
	case ';':
		s.tok = _Semi
	case '.':
		s.tok = _Dot
	default:
		s.error(fmt.Sprintf("unexpected character %q", ch))
		return true
	}

	s.lit = s.tok.String()
	return false
}

// skipLineComment skips to the end of the current line.
func (s *Scanner) skipLineComment() {
	for s.ch != '\n' && s.ch >= 0 {
		s.nextch()
	}
}

// skipBlockComment skips a /* ... */ comment; s.ch is the opening '*'.
func (s *Scanner) skipBlockComment() {
	s.nextch()
	for s.ch >= 0 {
		if s.ch == '*' && s.peek() == '/' {
			s.nextch()
			s.nextch()
			return
		}
		s.nextch()
	}
	s.error("comment not terminated")
}
