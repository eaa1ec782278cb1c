// Package syntax implements lexical and syntactic analysis for the C# subset
// accepted by the translator.
package syntax

import "fmt"

// Token represents the type of a lexical token.
type Token uint

const (
	// Special tokens
	_EOF   Token = iota // end of file
	_Error              // lexical error

	// Literals
	_Name    // identifier: foo, Bar, @class
	_Literal // literal value (used with LitKind)
	_Interp  // interpolated string: $"a{b}c"

	// Assignment operators
	_Assign         // =
	_AddAssign      // +=
	_SubAssign      // -=
	_MulAssign      // *=
	_DivAssign      // /=
	_RemAssign      // %=
	_AndAssign      // &=
	_OrAssign       // |=
	_XorAssign      // ^=
	_ShlAssign      // <<=
	_CoalesceAssign // ??=

	// Binary operators
	_Coalesce // ??
	_OrOr     // ||
	_AndAnd   // &&
	_Or       // |
	_Xor      // ^
	_And      // &
	_Eql      // ==
	_Neq      // !=
	_Lss      // <
	_Leq      // <=
	_Gtr      // >
	_Geq      // >=
	_Shl      // <<
	_Add      // +
	_Sub      // -
	_Mul      // *
	_Div      // /
	_Rem      // %

	// Unary operators
	_Not   // !
	_Tilde // ~
	_Inc   // ++
	_Dec   // --

	// Delimiters
	_Lparen   // (
	_Rparen   // )
	_Lbrack   // [
	_Rbrack   // ]
	_Lbrace   // {
	_Rbrace   // }
	_Comma    // ,
	_Semi     // ;
	_Colon    // :
	_Dot      // .
	_Question // ?
	_Arrow    // =>
	_QDot     // ?.

	// Predefined type keywords
	_Bool
	_Byte
	_Char
	_Decimal
	_Double
	_Float
	_Int
	_Long
	_Object
	_Sbyte
	_Short
	_String
	_Uint
	_Ulong
	_Ushort
	_Void

	// Keywords
	_Abstract
	_As
	_Base
	_Break
	_Case
	_Catch
	_Checked
	_Class
	_Const
	_Continue
	_Default
	_Delegate
	_Do
	_Else
	_Enum
	_Event
	_Explicit
	_Extern
	_False
	_Finally
	_Fixed
	_For
	_Foreach
	_Goto
	_If
	_Implicit
	_In
	_Interface
	_Internal
	_Is
	_Lock
	_Namespace
	_New
	_Null
	_Operator
	_Out
	_Override
	_Params
	_Private
	_Protected
	_Public
	_Readonly
	_Ref
	_Return
	_Sealed
	_Sizeof
	_Stackalloc
	_Static
	_Struct
	_Switch
	_This
	_Throw
	_True
	_Try
	_Typeof
	_Unchecked
	_Unsafe
	_Using
	_Virtual
	_Volatile
	_While

	// Shift right is never produced by the scanner; the parser joins two
	// adjacent '>' tokens so that nested generic argument lists close.
	_Shr       // >>
	_ShrAssign // >>=

	tokenCount
)

// tokenNames maps tokens to their string representation.
var tokenNames = [...]string{
	_EOF:   "EOF",
	_Error: "ERROR",

	_Name:    "NAME",
	_Literal: "LITERAL",
	_Interp:  "INTERPOLATED",

	_Assign:         "=",
	_AddAssign:      "+=",
	_SubAssign:      "-=",
	_MulAssign:      "*=",
	_DivAssign:      "/=",
	_RemAssign:      "%=",
	_AndAssign:      "&=",
	_OrAssign:       "|=",
	_XorAssign:      "^=",
	_ShlAssign:      "<<=",
	_CoalesceAssign: "??=",

	_Coalesce: "??",
	_OrOr:     "||",
	_AndAnd:   "&&",
	_Or:       "|",
	_Xor:      "^",
	_And:      "&",
	_Eql:      "==",
	_Neq:      "!=",
	_Lss:      "<",
	_Leq:      "<=",
	_Gtr:      ">",
	_Geq:      ">=",
	_Shl:      "<<",
	_Add:      "+",
	_Sub:      "-",
	_Mul:      "*",
	_Div:      "/",
	_Rem:      "%",

	_Not:   "!",
	_Tilde: "~",
	_Inc:   "++",
	_Dec:   "--",

	_Lparen:   "(",
	_Rparen:   ")",
	_Lbrack:   "[",
	_Rbrack:   "]",
	_Lbrace:   "{",
	_Rbrace:   "}",
	_Comma:    ",",
	_Semi:     ";",
	_Colon:    ":",
	_Dot:      ".",
	_Question: "?",
	_Arrow:    "=>",
	_QDot:     "?.",

	_Bool:    "bool",
	_Byte:    "byte",
	_Char:    "char",
	_Decimal: "decimal",
	_Double:  "double",
	_Float:   "float",
	_Int:     "int",
	_Long:    "long",
	_Object:  "object",
	_Sbyte:   "sbyte",
	_Short:   "short",
	_String:  "string",
	_Uint:    "uint",
	_Ulong:   "ulong",
	_Ushort:  "ushort",
	_Void:    "void",

	_Abstract:   "abstract",
	_As:         "as",
	_Base:       "base",
	_Break:      "break",
	_Case:       "case",
	_Catch:      "catch",
	_Checked:    "checked",
	_Class:      "class",
	_Const:      "const",
	_Continue:   "continue",
	_Default:    "default",
	_Delegate:   "delegate",
	_Do:         "do",
	_Else:       "else",
	_Enum:       "enum",
	_Event:      "event",
	_Explicit:   "explicit",
	_Extern:     "extern",
	_False:      "false",
	_Finally:    "finally",
	_Fixed:      "fixed",
	_For:        "for",
	_Foreach:    "foreach",
	_Goto:       "goto",
	_If:         "if",
	_Implicit:   "implicit",
	_In:         "in",
	_Interface:  "interface",
	_Internal:   "internal",
	_Is:         "is",
	_Lock:       "lock",
	_Namespace:  "namespace",
	_New:        "new",
	_Null:       "null",
	_Operator:   "operator",
	_Out:        "out",
	_Override:   "override",
	_Params:     "params",
	_Private:    "private",
	_Protected:  "protected",
	_Public:     "public",
	_Readonly:   "readonly",
	_Ref:        "ref",
	_Return:     "return",
	_Sealed:     "sealed",
	_Sizeof:     "sizeof",
	_Stackalloc: "stackalloc",
	_Static:     "static",
	_Struct:     "struct",
	_Switch:     "switch",
	_This:       "this",
	_Throw:      "throw",
	_True:       "true",
	_Try:        "try",
	_Typeof:     "typeof",
	_Unchecked:  "unchecked",
	_Unsafe:     "unsafe",
	_Using:      "using",
	_Virtual:    "virtual",
	_Volatile:   "volatile",
	_While:      "while",

	_Shr:       ">>",
	_ShrAssign: ">>=",
}

// String returns the string representation of the token.
func (t Token) String() string {
	if t < tokenCount {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", t)
}

// Precedence returns the binary operator precedence of t, or 0 if t is not
// a binary operator. Higher binds tighter:
//
//	1: ??
//	2: ||
//	3: &&
//	4: |
//	5: ^
//	6: &
//	7: == !=
//	8: < <= > >= is as
//	9: << >>
//	10: + -
//	11: * / %
func (t Token) Precedence() int {
	switch t {
	case _Coalesce:
		return 1
	case _OrOr:
		return 2
	case _AndAnd:
		return 3
	case _Or:
		return 4
	case _Xor:
		return 5
	case _And:
		return 6
	case _Eql, _Neq:
		return 7
	case _Lss, _Leq, _Gtr, _Geq, _Is, _As:
		return 8
	case _Shl, _Shr:
		return 9
	case _Add, _Sub:
		return 10
	case _Mul, _Div, _Rem:
		return 11
	}
	return 0
}

// IsEOF reports whether t marks the end of input.
func (t Token) IsEOF() bool {
	return t == _EOF
}

// IsKeyword reports whether t is a reserved keyword (including the
// predefined type keywords).
func (t Token) IsKeyword() bool {
	return t >= _Bool && t <= _While
}

// IsPredefinedType reports whether t names a built-in type such as int.
func (t Token) IsPredefinedType() bool {
	return t >= _Bool && t <= _Void
}

// IsAssignOp reports whether t is = or a compound assignment operator.
func (t Token) IsAssignOp() bool {
	return t >= _Assign && t <= _CoalesceAssign || t == _ShrAssign
}

// BinaryOp returns the operator underlying a compound assignment,
// e.g. _Add for +=. It returns t itself for any other token.
func (t Token) BinaryOp() Token {
	switch t {
	case _AddAssign:
		return _Add
	case _SubAssign:
		return _Sub
	case _MulAssign:
		return _Mul
	case _DivAssign:
		return _Div
	case _RemAssign:
		return _Rem
	case _AndAssign:
		return _And
	case _OrAssign:
		return _Or
	case _XorAssign:
		return _Xor
	case _ShlAssign:
		return _Shl
	case _ShrAssign:
		return _Shr
	case _CoalesceAssign:
		return _Coalesce
	}
	return t
}

// Exported operator tokens for the translator.
const (
	Assign   Token = _Assign
	Coalesce Token = _Coalesce
	OrOr     Token = _OrOr
	AndAnd   Token = _AndAnd
	Or       Token = _Or
	Xor      Token = _Xor
	And      Token = _And
	Eql      Token = _Eql
	Neq      Token = _Neq
	Lss      Token = _Lss
	Leq      Token = _Leq
	Gtr      Token = _Gtr
	Geq      Token = _Geq
	Shl      Token = _Shl
	Shr      Token = _Shr
	Add      Token = _Add
	Sub      Token = _Sub
	Mul      Token = _Mul
	Div      Token = _Div
	Rem      Token = _Rem
	Not      Token = _Not
	Tilde    Token = _Tilde
	Inc      Token = _Inc
	Dec      Token = _Dec
	As       Token = _As
	Break    Token = _Break
	Continue Token = _Continue

	// Parameter and argument modifiers.
	Params Token = _Params
	Ref    Token = _Ref
	Out    Token = _Out
	In     Token = _In
	This   Token = _This

	// Predefined types.
	Bool    Token = _Bool
	Byte    Token = _Byte
	Char    Token = _Char
	Decimal Token = _Decimal
	Double  Token = _Double
	Float   Token = _Float
	Int     Token = _Int
	Long    Token = _Long
	Object  Token = _Object
	Sbyte   Token = _Sbyte
	Short   Token = _Short
	String  Token = _String
	Uint    Token = _Uint
	Ulong   Token = _Ulong
	Ushort  Token = _Ushort
	Void    Token = _Void
)

// LitKind represents the kind of a literal token.
type LitKind uint8

const (
	IntLit    LitKind = iota // 123, 0x1F, 0b1010, 10UL
	RealLit                  // 3.14, 1e10, 2.5f, 1d, 9.99m
	StringLit                // "hello", @"C:\path"
	CharLit                  // 'a', '\n'
)

var litKindNames = [...]string{
	IntLit:    "int",
	RealLit:   "real",
	StringLit: "string",
	CharLit:   "char",
}

// String returns the string representation of the literal kind.
func (k LitKind) String() string {
	if k <= CharLit {
		return litKindNames[k]
	}
	return fmt.Sprintf("LitKind(%d)", k)
}

// keywords maps reserved words to their token type. Contextual keywords
// (var, get, set, value, yield, async, when, where, partial, ...) are
// scanned as _Name and recognized by the parser where they matter.
var keywords = func() map[string]Token {
	m := make(map[string]Token, _While-_Bool+1)
	for t := _Bool; t <= _While; t++ {
		m[tokenNames[t]] = t
	}
	return m
}()

// LookupKeyword returns the keyword token for ident, or _Name.
func LookupKeyword(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return _Name
}
