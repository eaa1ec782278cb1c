package syntax

import (
	"io"
	"unicode"
	"unicode/utf8"
)

// source is a character reader with position tracking.
// It reads UTF-8 encoded source text and provides character-by-character access.
type source struct {
	buf []byte // entire input

	filename string
	line     uint32 // current line number (1-based)
	col      uint32 // current column number (1-based, counted in runes)

	ch   rune // current character, -1 for EOF
	offs int  // byte offset of the character after ch

	errh func(line, col uint32, msg string)
}

// newSource creates a new source from an io.Reader.
// The errh function is called for each error; if nil, errors are silently ignored.
func newSource(filename string, src io.Reader, errh func(line, col uint32, msg string)) *source {
	s := &source{
		filename: filename,
		line:     1,
		col:      0, // incremented to 1 by the first nextch
		ch:       -1,
		errh:     errh,
	}

	var err error
	s.buf, err = io.ReadAll(src)
	if err != nil {
		s.error("error reading source file: " + err.Error())
		s.ch = -1
		return s
	}

	s.nextch()
	return s
}

// newSourceAt is like newSource but numbers the first character as line:col.
// It is used to scan text embedded in a larger file, such as the holes of
// an interpolated string.
func newSourceAt(filename string, text string, line, col uint32, errh func(line, col uint32, msg string)) *source {
	s := &source{
		buf:      []byte(text),
		filename: filename,
		line:     line,
		col:      col - 1,
		ch:       -1,
		errh:     errh,
	}
	s.nextch()
	return s
}

// nextch reads the next character and updates the position so that
// (line, col) always refers to s.ch.
func (s *source) nextch() {
	if s.ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	if s.offs >= len(s.buf) {
		s.ch = -1
		return
	}

	r, width := utf8.DecodeRune(s.buf[s.offs:])
	if r == utf8.RuneError && width == 1 {
		s.error("invalid UTF-8 encoding")
	}
	if r == '\uFEFF' && s.offs == 0 {
		// skip byte order mark
		s.offs += width
		if s.offs >= len(s.buf) {
			s.ch = -1
			return
		}
		r, width = utf8.DecodeRune(s.buf[s.offs:])
	}

	s.ch = r
	s.offs += width
}

// peek returns the character after s.ch without consuming anything.
func (s *source) peek() rune {
	if s.offs >= len(s.buf) {
		return -1
	}
	r, _ := utf8.DecodeRune(s.buf[s.offs:])
	return r
}

// pos returns the position of the current character.
func (s *source) pos() Pos {
	return NewPos(s.filename, s.line, s.col)
}

// error reports a lexical error at the current position.
func (s *source) error(msg string) {
	if s.errh != nil {
		s.errh(s.line, s.col, msg)
	}
}

// isLetter reports whether r can start an identifier.
func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_' ||
		r >= utf8.RuneSelf && unicode.IsLetter(r)
}

// isIdentPart reports whether r can continue an identifier.
func isIdentPart(r rune) bool {
	return isLetter(r) || isDigit(r) || r >= utf8.RuneSelf && unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || 'a' <= lower(r) && lower(r) <= 'f'
}

func isBinaryDigit(r rune) bool {
	return r == '0' || r == '1'
}

// lower returns the lowercase version of r if r is an ASCII letter.
// ('a' - 'A') is 0x20; OR-ing it in maps upper case onto lower case.
func lower(r rune) rune {
	return ('a' - 'A') | r
}

// isWhitespace reports whether r is insignificant white space.
func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\f' || r == '\v' || r == '\u00a0'
}
