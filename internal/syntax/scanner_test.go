package syntax

import (
	"strings"
	"testing"
)

func TestScanTokens(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		tokens []Token
		lits   []string
	}{
		// Identifiers and keywords
		{"ident", "foo", []Token{_Name}, []string{"foo"}},
		{"ident_underscore", "_bar1", []Token{_Name}, []string{"_bar1"}},
		{"ident_unicode", "größe", []Token{_Name}, []string{"größe"}},
		{"ident_verbatim", "@class", []Token{_Name}, []string{"class"}},
		{"keyword", "class", []Token{_Class}, nil},
		{"predefined", "int string", []Token{_Int, _String}, nil},
		{"contextual", "var yield", []Token{_Name, _Name}, []string{"var", "yield"}},

		// Integer literals keep their base prefix and drop suffixes
		{"int_dec", "123", []Token{_Literal}, []string{"123"}},
		{"int_hex", "0x1F", []Token{_Literal}, []string{"0x1F"}},
		{"int_hex_upper_prefix", "0XfF", []Token{_Literal}, []string{"0xfF"}},
		{"int_bin", "0b1010", []Token{_Literal}, []string{"0b1010"}},
		{"int_separators", "1_000_000", []Token{_Literal}, []string{"1000000"}},
		{"int_suffix_l", "10L", []Token{_Literal}, []string{"10"}},
		{"int_suffix_ul", "10UL", []Token{_Literal}, []string{"10"}},

		// Real literals
		{"real_simple", "3.14", []Token{_Literal}, []string{"3.14"}},
		{"real_leading_dot", ".5", []Token{_Literal}, []string{"0.5"}},
		{"real_exp", "1e10", []Token{_Literal}, []string{"1e10"}},
		{"real_exp_neg", "2.5E-3", []Token{_Literal}, []string{"2.5e-3"}},
		{"real_suffix_f", "2.5f", []Token{_Literal}, []string{"2.5"}},
		{"real_suffix_d", "1d", []Token{_Literal}, []string{"1"}},
		{"real_suffix_m", "9.99m", []Token{_Literal}, []string{"9.99"}},
		{"member_access_on_int", "1.ToString", []Token{_Literal, _Dot, _Name}, []string{"1", ".", "ToString"}},

		// String literals (decoded content)
		{"string_simple", `"hello"`, []Token{_Literal}, []string{"hello"}},
		{"string_empty", `""`, []Token{_Literal}, []string{""}},
		{"string_escapes", `"a\n\t\\\"b"`, []Token{_Literal}, []string{"a\n\t\\\"b"}},
		{"string_escape_zero", `"a\0b"`, []Token{_Literal}, []string{"a\x00b"}},
		{"string_escape_hex", `"\x41\x42"`, []Token{_Literal}, []string{"AB"}},
		{"string_escape_unicode", `"\u00e9"`, []Token{_Literal}, []string{"é"}},
		{"string_verbatim", `@"C:\dir\""x"`, []Token{_Literal}, []string{`C:\dir\"x`}},
		{"string_verbatim_multiline", "@\"a\nb\"", []Token{_Literal}, []string{"a\nb"}},

		// Character literals
		{"char", "'a'", []Token{_Literal}, []string{"a"}},
		{"char_escape", `'\n'`, []Token{_Literal}, []string{"\n"}},
		{"char_quote", `'\''`, []Token{_Literal}, []string{"'"}},

		// Operators
		{"op_arith", "+ - * / %", []Token{_Add, _Sub, _Mul, _Div, _Rem}, nil},
		{"op_bits", "& | ^ ~ <<", []Token{_And, _Or, _Xor, _Tilde, _Shl}, nil},
		{"op_logic", "&& || !", []Token{_AndAnd, _OrOr, _Not}, nil},
		{"op_compare", "== != < <= > >=", []Token{_Eql, _Neq, _Lss, _Leq, _Gtr, _Geq}, nil},
		{"op_incdec", "++ --", []Token{_Inc, _Dec}, nil},
		{"op_assign", "= += -= *= /= %= &= |= ^= <<= ??=",
			[]Token{_Assign, _AddAssign, _SubAssign, _MulAssign, _DivAssign, _RemAssign,
				_AndAssign, _OrAssign, _XorAssign, _ShlAssign, _CoalesceAssign}, nil},
		{"op_null", "?? ?. ?", []Token{_Coalesce, _QDot, _Question}, nil},
		{"op_arrow", "=>", []Token{_Arrow}, nil},
		{"shr_is_two_tokens", ">>", []Token{_Gtr, _Gtr}, nil},
		{"shr_assign_is_two_tokens", ">>=", []Token{_Gtr, _Geq}, nil},
		{"question_dot_digit", "a?.5:1", []Token{_Name, _Question, _Literal, _Colon, _Literal}, nil},
		{"delims", "()[]{},;:.", []Token{_Lparen, _Rparen, _Lbrack, _Rbrack, _Lbrace, _Rbrace,
			_Comma, _Semi, _Colon, _Dot}, nil},

		// Comments, directives and whitespace
		{"line_comment", "a // comment\nb", []Token{_Name, _Name}, []string{"a", "b"}},
		{"block_comment", "a /* x\ny */ b", []Token{_Name, _Name}, []string{"a", "b"}},
		{"directive", "#region Foo\na\n#endregion", []Token{_Name}, []string{"a"}},
		{"whitespace_mixed", " \t\f\v a \r\n", []Token{_Name}, []string{"a"}},
		{"generic", "List<int>", []Token{_Name, _Lss, _Int, _Gtr}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScanner("test", strings.NewReader(tt.src), func(line, col uint32, msg string) {
				t.Errorf("unexpected error at %d:%d: %s", line, col, msg)
			})
			for i, wantTok := range tt.tokens {
				s.Next()
				if s.Token() != wantTok {
					t.Errorf("token %d: got %v, want %v", i, s.Token(), wantTok)
				}
				if tt.lits != nil && s.Literal() != tt.lits[i] {
					t.Errorf("literal %d: got %q, want %q", i, s.Literal(), tt.lits[i])
				}
			}
			s.Next()
			if s.Token() != _EOF {
				t.Errorf("expected EOF, got %v %q", s.Token(), s.Literal())
			}
		})
	}
}

func TestScanLitKind(t *testing.T) {
	tests := []struct {
		src  string
		kind LitKind
	}{
		{"123", IntLit},
		{"0x1F", IntLit},
		{"0b1010", IntLit},
		{"10UL", IntLit},
		{"3.14", RealLit},
		{"1e10", RealLit},
		{"2f", RealLit},
		{"2d", RealLit},
		{"2m", RealLit},
		{`"hello"`, StringLit},
		{`@"hello"`, StringLit},
		{"'c'", CharLit},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			s := NewScanner("test", strings.NewReader(tt.src), nil)
			s.Next()
			if s.Token() != _Literal {
				t.Fatalf("expected _Literal, got %v", s.Token())
			}
			if s.LitKind() != tt.kind {
				t.Errorf("LitKind = %v, want %v", s.LitKind(), tt.kind)
			}
		})
	}
}

func TestScanInterpolated(t *testing.T) {
	tests := []struct {
		name string
		src  string
		lit  string
		segs []Segment
	}{
		{
			name: "text_only",
			src:  `$"plain"`,
			lit:  "plain",
			segs: []Segment{{Text: "plain"}},
		},
		{
			name: "hole",
			src:  `$"a{x}b"`,
			lit:  "a{x}b",
			segs: []Segment{{Text: "a"}, {Hole: true, Text: "x"}, {Text: "b"}},
		},
		{
			name: "align_and_format",
			src:  `$"a{x,5:F2}b{{c}}"`,
			lit:  "a{x}b{c}",
			segs: []Segment{
				{Text: "a"},
				{Hole: true, Text: "x", Align: "5", Format: "F2"},
				{Text: "b{c}"},
			},
		},
		{
			name: "nested_braces_and_strings",
			src:  `$"{Foo("}", new[] {1})}"`,
			lit:  `{Foo("}", new[] {1})}`,
			segs: []Segment{{Hole: true, Text: `Foo("}", new[] {1})`}},
		},
		{
			name: "escape_in_text",
			src:  `$"a\tb{c}"`,
			lit:  "a\tb{c}",
			segs: []Segment{{Text: "a\tb"}, {Hole: true, Text: "c"}},
		},
		{
			name: "verbatim",
			src:  `$@"C:\{dir}\""x"`,
			lit:  `C:\{dir}\"x`,
			segs: []Segment{{Text: `C:\`}, {Hole: true, Text: "dir"}, {Text: `\"x`}},
		},
		{
			name: "verbatim_other_order",
			src:  `@$"{a}"`,
			lit:  "{a}",
			segs: []Segment{{Hole: true, Text: "a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScanner("test", strings.NewReader(tt.src), func(line, col uint32, msg string) {
				t.Errorf("unexpected error at %d:%d: %s", line, col, msg)
			})
			s.Next()
			if s.Token() != _Interp {
				t.Fatalf("token = %v, want %v", s.Token(), _Interp)
			}
			if s.Literal() != tt.lit {
				t.Errorf("literal = %q, want %q", s.Literal(), tt.lit)
			}
			got := s.Segments()
			if len(got) != len(tt.segs) {
				t.Fatalf("got %d segments, want %d: %+v", len(got), len(tt.segs), got)
			}
			for i, want := range tt.segs {
				g := got[i]
				if g.Hole != want.Hole || g.Text != want.Text || g.Align != want.Align || g.Format != want.Format {
					t.Errorf("segment %d = {Hole:%v Text:%q Align:%q Format:%q}, want {Hole:%v Text:%q Align:%q Format:%q}",
						i, g.Hole, g.Text, g.Align, g.Format, want.Hole, want.Text, want.Align, want.Format)
				}
			}
		})
	}
}

func TestScanInterpolatedPositions(t *testing.T) {
	// $ " a { x , 5 : F 2 } b
	// 1 2 3 4 5 6 7 8 9 ...
	s := NewScanner("test", strings.NewReader(`$"a{x,5:F2}b"`), nil)
	s.Next()
	segs := s.Segments()
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	checks := []struct {
		what string
		pos  Pos
		col  uint32
	}{
		{"text", segs[0].Pos, 3},
		{"hole", segs[1].Pos, 5},
		{"align", segs[1].AlignPos, 7},
		{"trailing text", segs[2].Pos, 12},
	}
	for _, c := range checks {
		if c.pos.Line() != 1 || c.pos.Col() != c.col {
			t.Errorf("%s pos = %v, want 1:%d", c.what, c.pos, c.col)
		}
	}
}

func TestPosition(t *testing.T) {
	src := `class A {
    int x = 12;
}`

	expected := []struct {
		tok  Token
		line uint32
		col  uint32
	}{
		{_Class, 1, 1},
		{_Name, 1, 7},
		{_Lbrace, 1, 9},
		{_Int, 2, 5},
		{_Name, 2, 9},
		{_Assign, 2, 11},
		{_Literal, 2, 13},
		{_Semi, 2, 15},
		{_Rbrace, 3, 1},
		{_EOF, 3, 2},
	}

	s := NewScanner("Program.cs", strings.NewReader(src), nil)
	for i, exp := range expected {
		s.Next()
		pos := s.Pos()
		if s.Token() != exp.tok {
			t.Errorf("token %d: got %v, want %v", i, s.Token(), exp.tok)
		}
		if pos.Line() != exp.line || pos.Col() != exp.col {
			t.Errorf("token %d (%v): pos = %d:%d, want %d:%d",
				i, s.Token(), pos.Line(), pos.Col(), exp.line, exp.col)
		}
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"unterminated_string", `"hello`, "string not terminated"},
		{"newline_in_string", "\"a\nb\"", "string not terminated"},
		{"unterminated_verbatim", `@"abc`, "string not terminated"},
		{"bad_escape", `"\q"`, "unknown escape sequence"},
		{"bad_hex_escape", `"\xGG"`, "invalid hex escape"},
		{"bad_binary_literal", "0b123", "invalid binary digit"},
		{"empty_base_prefix", "0x;", "missing digits after base prefix"},
		{"empty_exponent", "1e", "exponent has no digits"},
		{"empty_char", "''", "empty character literal"},
		{"long_char", "'ab'", "character literal not terminated"},
		{"unterminated_hole", `$"{x`, "interpolation hole not terminated"},
		{"stray_close_brace", `$"a}b"`, "unexpected } in interpolated string"},
		{"unterminated_comment", "/* x", "comment not terminated"},
		{"bad_char", "`", "unexpected character"},
		{"bad_at", "@1", "unexpected character"},
		{"bad_dollar", "$x", "expected string after $"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errMsg string
			errh := func(line, col uint32, msg string) {
				if errMsg == "" { // capture first error only
					errMsg = msg
				}
			}
			s := NewScanner("test", strings.NewReader(tt.src), errh)
			for {
				s.Next()
				if s.Token() == _EOF {
					break
				}
			}
			if errMsg == "" {
				t.Errorf("expected error containing %q, got no error", tt.wantErr)
			} else if !strings.Contains(errMsg, tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, errMsg)
			}
		})
	}
}

func TestCompleteProgram(t *testing.T) {
	src := `using System;

class Program {
    static void Main() {
        var xs = new List<int> { 1, 2 };
        Console.WriteLine($"n={xs.Count}");
    }
}
`
	want := []Token{
		_Using, _Name, _Semi,
		_Class, _Name, _Lbrace,
		_Static, _Void, _Name, _Lparen, _Rparen, _Lbrace,
		_Name, _Name, _Assign, _New, _Name, _Lss, _Int, _Gtr, _Lbrace, _Literal, _Comma, _Literal, _Rbrace, _Semi,
		_Name, _Dot, _Name, _Lparen, _Interp, _Rparen, _Semi,
		_Rbrace,
		_Rbrace,
		_EOF,
	}

	s := NewScanner("Program.cs", strings.NewReader(src), nil)
	for i, w := range want {
		s.Next()
		if s.Token() != w {
			t.Fatalf("token %d: got %v %q, want %v", i, s.Token(), s.Literal(), w)
		}
	}
}

func FuzzScanner(f *testing.F) {
	seeds := []string{
		"class A { }",
		"int x = 0x1F + 0b1010;",
		`var s = "hello\nworld";`,
		`var s = $"a{b,3:X}c{{d}}";`,
		`var s = @"C:\x""y";`,
		"if (a && b || c) { }",
		"x ??= y?.z ?? w;",
		"// comment\nfoo",
		"/* unterminated",
		`$"{`,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, src string) {
		errh := func(line, col uint32, msg string) {
			// Errors are acceptable, we just don't want panics
		}
		s := NewScanner("fuzz", strings.NewReader(src), errh)
		for i := 0; i < 10000; i++ { // Prevent infinite loops
			s.Next()
			if s.Token() == _EOF {
				break
			}
		}
	})
}
