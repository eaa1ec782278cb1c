package syntax

import (
	"strings"
	"testing"
)

func TestTokenString(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{_EOF, "EOF"},
		{_Name, "NAME"},
		{_Literal, "LITERAL"},
		{_Interp, "INTERPOLATED"},
		{_Assign, "="},
		{_CoalesceAssign, "??="},
		{_Coalesce, "??"},
		{_AndAnd, "&&"},
		{_Shl, "<<"},
		{_Shr, ">>"},
		{_ShrAssign, ">>="},
		{_Arrow, "=>"},
		{_QDot, "?."},
		{_Int, "int"},
		{_String, "string"},
		{_Void, "void"},
		{_Class, "class"},
		{_Foreach, "foreach"},
		{_While, "while"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.tok.String(); got != tt.want {
				t.Errorf("Token(%d).String() = %q, want %q", tt.tok, got, tt.want)
			}
		})
	}
}

func TestTokenStringUnknown(t *testing.T) {
	tok := tokenCount + 5
	if got := tok.String(); !strings.HasPrefix(got, "token(") {
		t.Errorf("unknown token String() = %q, want token(N)", got)
	}
}

func TestTokenNamesComplete(t *testing.T) {
	for tok := Token(0); tok < tokenCount; tok++ {
		if tokenNames[tok] == "" {
			t.Errorf("token %d has no name", tok)
		}
	}
}

func TestTokenPrecedence(t *testing.T) {
	tests := []struct {
		tok  Token
		want int
	}{
		{_Coalesce, 1},
		{_OrOr, 2},
		{_AndAnd, 3},
		{_Or, 4},
		{_Xor, 5},
		{_And, 6},
		{_Eql, 7},
		{_Neq, 7},
		{_Lss, 8},
		{_Geq, 8},
		{_Is, 8},
		{_As, 8},
		{_Shl, 9},
		{_Shr, 9},
		{_Add, 10},
		{_Sub, 10},
		{_Mul, 11},
		{_Rem, 11},
		{_Assign, 0},
		{_Question, 0},
		{_Name, 0},
		{_Not, 0},
	}

	for _, tt := range tests {
		t.Run(tt.tok.String(), func(t *testing.T) {
			if got := tt.tok.Precedence(); got != tt.want {
				t.Errorf("%v.Precedence() = %d, want %d", tt.tok, got, tt.want)
			}
		})
	}
}

func TestTokenClasses(t *testing.T) {
	tests := []struct {
		tok        Token
		keyword    bool
		predefined bool
		assign     bool
	}{
		{_Int, true, true, false},
		{_Void, true, true, false},
		{_Class, true, false, false},
		{_While, true, false, false},
		{_Name, false, false, false},
		{_Assign, false, false, true},
		{_ShlAssign, false, false, true},
		{_ShrAssign, false, false, true},
		{_CoalesceAssign, false, false, true},
		{_Eql, false, false, false},
		{_Shr, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.tok.String(), func(t *testing.T) {
			if got := tt.tok.IsKeyword(); got != tt.keyword {
				t.Errorf("IsKeyword() = %v, want %v", got, tt.keyword)
			}
			if got := tt.tok.IsPredefinedType(); got != tt.predefined {
				t.Errorf("IsPredefinedType() = %v, want %v", got, tt.predefined)
			}
			if got := tt.tok.IsAssignOp(); got != tt.assign {
				t.Errorf("IsAssignOp() = %v, want %v", got, tt.assign)
			}
		})
	}
}

func TestTokenBinaryOp(t *testing.T) {
	tests := []struct {
		tok, want Token
	}{
		{_AddAssign, _Add},
		{_SubAssign, _Sub},
		{_MulAssign, _Mul},
		{_DivAssign, _Div},
		{_RemAssign, _Rem},
		{_AndAssign, _And},
		{_OrAssign, _Or},
		{_XorAssign, _Xor},
		{_ShlAssign, _Shl},
		{_ShrAssign, _Shr},
		{_CoalesceAssign, _Coalesce},
		{_Assign, _Assign},
		{_Add, _Add},
	}

	for _, tt := range tests {
		if got := tt.tok.BinaryOp(); got != tt.want {
			t.Errorf("%v.BinaryOp() = %v, want %v", tt.tok, got, tt.want)
		}
	}
}

func TestLitKindString(t *testing.T) {
	tests := []struct {
		kind LitKind
		want string
	}{
		{IntLit, "int"},
		{RealLit, "real"},
		{StringLit, "string"},
		{CharLit, "char"},
		{LitKind(99), "LitKind(99)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("LitKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		ident string
		want  Token
	}{
		{"class", _Class},
		{"namespace", _Namespace},
		{"foreach", _Foreach},
		{"int", _Int},
		{"object", _Object},
		{"null", _Null},
		{"this", _This},

		// contextual keywords are plain names
		{"var", _Name},
		{"get", _Name},
		{"set", _Name},
		{"yield", _Name},
		{"async", _Name},
		{"when", _Name},
		{"nameof", _Name},
		{"Class", _Name},
	}

	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			if got := LookupKeyword(tt.ident); got != tt.want {
				t.Errorf("LookupKeyword(%q) = %v, want %v", tt.ident, got, tt.want)
			}
		})
	}
}

func TestKeywordCount(t *testing.T) {
	want := int(_While - _Bool + 1)
	if len(keywords) != want {
		t.Errorf("keywords has %d entries, want %d", len(keywords), want)
	}
}
