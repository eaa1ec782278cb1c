package syntax

// ----------------------------------------------------------------------------
// Interfaces
//
// There are 3 main classes of nodes: Expressions, Statements, and Declarations.
// All nodes implement the Node interface. Expression, Statement, and Declaration
// nodes further implement their respective interfaces. Type syntax (int,
// List<T>, T?, T[]) is represented by expression nodes.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Pos // position of first character belonging to the node
	aNode()   // marker method to restrict implementations to this package
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	aExpr()
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node
	aStmt()
}

// Decl is the interface for all declaration nodes: namespace and type
// members, and top-level statements.
type Decl interface {
	Node
	aDecl()
}

// ----------------------------------------------------------------------------
// Base node types

// node is the base struct embedded in all AST nodes.
type node struct {
	pos Pos
}

func (n *node) Pos() Pos { return n.pos }
func (n *node) aNode()   {}

// SetPos sets the node position. It is meant for passes that synthesize
// nodes after parsing.
func (n *node) SetPos(pos Pos) { n.pos = pos }

// expr is embedded in all expression nodes.
type expr struct{ node }

func (*expr) aExpr() {}

// stmt is embedded in all statement nodes.
type stmt struct{ node }

func (*stmt) aStmt() {}

// decl is embedded in all declaration nodes.
type decl struct{ node }

func (*decl) aDecl() {}

// ----------------------------------------------------------------------------
// Modifiers

// Modifiers is a set of declaration modifiers.
type Modifiers uint32

const (
	ModPublic Modifiers = 1 << iota
	ModPrivate
	ModProtected
	ModInternal
	ModStatic
	ModAbstract
	ModVirtual
	ModOverride
	ModSealed
	ModReadonly
	ModConst
	ModAsync
	ModPartial
	ModNew
	ModExtern
	ModUnsafe
	ModVolatile
)

var modifierNames = [...]string{
	"public", "private", "protected", "internal", "static", "abstract",
	"virtual", "override", "sealed", "readonly", "const", "async",
	"partial", "new", "extern", "unsafe", "volatile",
}

// Has reports whether all modifiers in m2 are set in m.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

// String returns the modifiers in source order, space separated.
func (m Modifiers) String() string {
	s := ""
	for i, name := range modifierNames {
		if m&(1<<i) != 0 {
			if s != "" {
				s += " "
			}
			s += name
		}
	}
	return s
}

// ----------------------------------------------------------------------------
// Files and Declarations

// File represents a complete compilation unit.
type File struct {
	node
	Usings []*UsingDecl // using directives
	Decls  []Decl       // namespaces, types and top-level statements
}

// UsingDecl represents a using directive:
// using A.B; | using X = A.B; | using static A.B;
type UsingDecl struct {
	decl
	Alias  *Name // alias name (nil if none)
	Static bool  // using static
	Path   Expr  // *Name or *SelectorExpr
}

// NamespaceDecl represents namespace N { ... } or the file-scoped namespace N;
type NamespaceDecl struct {
	decl
	Name       Expr
	Usings     []*UsingDecl
	Decls      []Decl
	FileScoped bool
}

// TypeKind distinguishes the flavors of ClassDecl.
type TypeKind uint8

const (
	ClassKind TypeKind = iota
	StructKind
	InterfaceKind
)

func (k TypeKind) String() string {
	switch k {
	case StructKind:
		return "struct"
	case InterfaceKind:
		return "interface"
	}
	return "class"
}

// ClassDecl represents a class, struct or interface declaration.
type ClassDecl struct {
	decl
	Mods       Modifiers
	Kind       TypeKind
	Name       *Name
	TypeParams []*Name
	Bases      []Expr // base class and interfaces, in source order
	Members    []Decl
}

// EnumDecl represents enum Name [: Base] { Members }
type EnumDecl struct {
	decl
	Mods    Modifiers
	Name    *Name
	Base    Expr // underlying type (nil if none)
	Members []*EnumMember
}

// EnumMember represents Name [= Value] inside an enum.
type EnumMember struct {
	node
	Name  *Name
	Value Expr // nil if implicit
}

// FieldDecl represents a field or event field: [mods] Type a = 1, b;
type FieldDecl struct {
	decl
	Mods  Modifiers
	Event bool
	Type  Expr
	Vars  []*VarSpec
}

// VarSpec represents one declarator: Name [= Value]
type VarSpec struct {
	node
	Name  *Name
	Value Expr // nil if none
}

// PropertyDecl represents a property.
// Exactly one of Accessors and ExprBody is set.
type PropertyDecl struct {
	decl
	Mods      Modifiers
	Type      Expr
	Name      *Name
	Accessors []*Accessor
	ExprBody  Expr // int P => expr;
	Value     Expr // initializer: int P { get; } = expr;
}

// Accessor represents get/set/init with a block body, an expression body,
// or no body (auto-implemented).
type Accessor struct {
	node
	Mods     Modifiers
	Kind     string // "get", "set" or "init"
	Body     *BlockStmt
	ExprBody Expr
}

// IsAuto reports whether the accessor has no body.
func (a *Accessor) IsAuto() bool {
	return a.Body == nil && a.ExprBody == nil
}

// MethodDecl represents a method declaration.
type MethodDecl struct {
	decl
	Mods       Modifiers
	Result     Expr // return type
	Name       *Name
	TypeParams []*Name
	Params     []*Param
	Body       *BlockStmt // nil for abstract/extern or expression-bodied
	ExprBody   Expr
}

// CtorDecl represents a constructor: Name(Params) [: base(Args)] Body
type CtorDecl struct {
	decl
	Mods     Modifiers
	Name     *Name
	Params   []*Param
	Init     *CtorInit // nil if none
	Body     *BlockStmt
	ExprBody Expr
}

// CtorInit represents a constructor initializer: base(Args) or this(Args).
type CtorInit struct {
	node
	This bool
	Args []*Arg
}

// DtorDecl represents a finalizer: ~Name() Body
type DtorDecl struct {
	decl
	Name     *Name
	Body     *BlockStmt
	ExprBody Expr
}

// IndexerDecl represents an indexer: Type this[Params] { accessors }
type IndexerDecl struct {
	decl
	Mods      Modifiers
	Type      Expr
	Params    []*Param
	Accessors []*Accessor
	ExprBody  Expr
}

// OperatorDecl represents an operator or conversion operator declaration.
type OperatorDecl struct {
	decl
	Mods     Modifiers
	Result   Expr
	Op       string // operator token text, or "implicit"/"explicit"
	Params   []*Param
	Body     *BlockStmt
	ExprBody Expr
}

// GlobalStmt wraps a top-level statement.
type GlobalStmt struct {
	decl
	Stmt Stmt
}

// Param represents a parameter of a method, local function or lambda.
type Param struct {
	node
	Mod     Token // 0, _Params, _Ref, _Out, _In or _This
	Type    Expr  // nil for implicitly typed lambda parameters
	Name    *Name
	Default Expr // nil if none
}

// Arg represents an argument in a call or element access.
type Arg struct {
	node
	Name *Name // named argument (nil if positional)
	Mod  Token // 0, _Ref, _Out or _In
	X    Expr
}

// ----------------------------------------------------------------------------
// Expressions

// Name represents an identifier.
type Name struct {
	expr
	Value string
}

// GenericName represents Name<Args>.
type GenericName struct {
	expr
	Name *Name
	Args []Expr
}

// PredefinedType represents a built-in type keyword such as int or string.
type PredefinedType struct {
	expr
	Tok Token
}

// Name returns the keyword text.
func (t *PredefinedType) Name() string { return t.Tok.String() }

// NullableType represents Elem?
type NullableType struct {
	expr
	Elem Expr
}

// ArrayType represents Elem[] or Elem[,].
type ArrayType struct {
	expr
	Elem Expr
	Rank int
}

// BasicLit represents a literal value.
type BasicLit struct {
	expr
	Value string  // literal text (decoded for strings and chars)
	Kind  LitKind // IntLit, RealLit, StringLit, CharLit
}

// KeywordLit represents true, false or null.
type KeywordLit struct {
	expr
	Tok Token // _True, _False or _Null
}

// IsNull reports whether the literal is null.
func (l *KeywordLit) IsNull() bool { return l.Tok == _Null }

// Bool returns the value of a true or false literal.
func (l *KeywordLit) Bool() bool { return l.Tok == _True }

// InterpolatedString represents $"text{X,Align:Format}text".
type InterpolatedString struct {
	expr
	Parts []*InterpPart
}

// InterpPart is literal text (X == nil) or an interpolation hole.
type InterpPart struct {
	node
	Text   string // decoded literal text
	X      Expr
	Align  Expr   // nil if none
	Format string // "" if none
}

// Operation represents a unary or binary operation.
// For unary operations, Y is nil. For as-expressions Op is _As and Y is a type.
type Operation struct {
	expr
	Op      Token
	X       Expr
	Y       Expr
	Postfix bool // x++ / x--
}

// IsExpr represents X is [not] Pattern [Var]. Pattern is a type or a
// constant expression.
type IsExpr struct {
	expr
	X       Expr
	Not     bool
	Pattern Expr
	Var     *Name // declaration pattern designation (nil if none)
}

// AssignExpr represents LHS op RHS for = and compound assignments.
type AssignExpr struct {
	expr
	Op  Token
	LHS Expr
	RHS Expr
}

// CondExpr represents Cond ? X : Y.
type CondExpr struct {
	expr
	Cond Expr
	X    Expr
	Y    Expr
}

// CallExpr represents Fun(Args...).
type CallExpr struct {
	expr
	Fun  Expr
	Args []*Arg
}

// IndexExpr represents X[Args...] or X?[Args...].
type IndexExpr struct {
	expr
	X        Expr
	Args     []*Arg
	NullCond bool
}

// SelectorExpr represents X.Sel or X?.Sel, in expressions and in
// qualified type names alike. Sel is a *Name or a *GenericName.
type SelectorExpr struct {
	expr
	X        Expr
	Sel      Expr
	NullCond bool
}

// ParenExpr represents (X).
type ParenExpr struct {
	expr
	X Expr
}

// ThisExpr represents this.
type ThisExpr struct {
	expr
}

// BaseExpr represents base.
type BaseExpr struct {
	expr
}

// CastExpr represents (Type)X.
type CastExpr struct {
	expr
	Type Expr
	X    Expr
}

// TypeOfExpr represents typeof(Type).
type TypeOfExpr struct {
	expr
	Type Expr
}

// DefaultExpr represents default(Type), or the default literal when Type is nil.
type DefaultExpr struct {
	expr
	Type Expr
}

// NewExpr represents new Type(Args) [Init].
type NewExpr struct {
	expr
	Type Expr
	Args []*Arg
	Init *InitExpr // object or collection initializer (nil if none)
}

// ArrayNewExpr represents new Elem[Sizes] [Init] or new[] Init.
type ArrayNewExpr struct {
	expr
	Elem  Expr // nil for new[]
	Sizes []Expr
	Init  *InitExpr
}

// InitExpr represents a braced initializer list { a, b = c, { d } }.
type InitExpr struct {
	expr
	Elems []Expr
}

// AnonNewExpr represents new { a = 1, b }.
type AnonNewExpr struct {
	expr
	Fields []*AnonField
}

// AnonField is one member of an anonymous object creation.
type AnonField struct {
	node
	Name *Name // nil for a projection initializer like new { b }
	X    Expr
}

// LambdaExpr represents a lambda. Exactly one of Body and Block is set.
type LambdaExpr struct {
	expr
	Async  bool
	Params []*Param
	Body   Expr
	Block  *BlockStmt
}

// ThrowExpr represents throw X used as an expression.
type ThrowExpr struct {
	expr
	X Expr
}

// ----------------------------------------------------------------------------
// Statements

// EmptyStmt represents an empty statement (just a semicolon).
type EmptyStmt struct {
	stmt
}

// ExprStmt represents an expression used as a statement.
type ExprStmt struct {
	stmt
	X Expr
}

// BlockStmt represents a block statement: { Stmts... }
type BlockStmt struct {
	stmt
	Stmts  []Stmt
	Rbrace Pos // position of closing brace
}

// DeclStmt represents a local variable declaration: [const] Type a = 1, b;
type DeclStmt struct {
	stmt
	Const bool
	Using bool // using var x = ...;
	Type  Expr
	Vars  []*VarSpec
}

// FuncStmt represents a local function declaration.
type FuncStmt struct {
	stmt
	Mods       Modifiers
	Result     Expr
	Name       *Name
	TypeParams []*Name
	Params     []*Param
	Body       *BlockStmt
	ExprBody   Expr
}

// IfStmt represents if (Cond) Then [else Else].
type IfStmt struct {
	stmt
	Cond Expr
	Then Stmt
	Else Stmt // nil if none
}

// SwitchStmt represents switch (Tag) { Sections }.
type SwitchStmt struct {
	stmt
	Tag      Expr
	Sections []*CaseSection
}

// CaseSection is a run of case labels followed by statements.
type CaseSection struct {
	node
	Labels []*CaseLabel
	Stmts  []Stmt
}

// CaseLabel represents case Value [when Guard]: or default: (Value == nil).
type CaseLabel struct {
	node
	Value Expr
	Guard Expr
}

// IsDefault reports whether l is the default label.
func (l *CaseLabel) IsDefault() bool { return l.Value == nil }

// ForStmt represents for (Init; Cond; Post) Body.
type ForStmt struct {
	stmt
	Init []Stmt // a *DeclStmt or *ExprStmts
	Cond Expr   // nil if absent
	Post []Expr
	Body Stmt
}

// ForeachStmt represents foreach (Type Name in X) Body.
type ForeachStmt struct {
	stmt
	Type Expr
	Name *Name
	X    Expr
	Body Stmt
}

// WhileStmt represents while (Cond) Body.
type WhileStmt struct {
	stmt
	Cond Expr
	Body Stmt
}

// DoStmt represents do Body while (Cond);
type DoStmt struct {
	stmt
	Body Stmt
	Cond Expr
}

// BranchStmt represents a break or continue statement.
type BranchStmt struct {
	stmt
	Tok Token // _Break or _Continue
}

// ReturnStmt represents return [Result];
type ReturnStmt struct {
	stmt
	Result Expr // nil for bare return
}

// ThrowStmt represents throw [X];
type ThrowStmt struct {
	stmt
	X Expr // nil for a rethrow
}

// TryStmt represents try Body Catches [finally Finally].
type TryStmt struct {
	stmt
	Body    *BlockStmt
	Catches []*CatchClause
	Finally *BlockStmt
}

// CatchClause represents catch [(Type [Name])] [when (Filter)] Body.
type CatchClause struct {
	node
	Type   Expr  // nil for a bare catch
	Name   *Name // nil if unnamed
	Filter Expr
	Body   *BlockStmt
}

// UsingStmt represents using (Decl | X) Body.
type UsingStmt struct {
	stmt
	Decl *DeclStmt
	X    Expr
	Body Stmt
}

// YieldStmt represents yield return X; or yield break; (X == nil).
type YieldStmt struct {
	stmt
	X Expr
}

// LockStmt represents lock (X) Body.
type LockStmt struct {
	stmt
	X    Expr
	Body Stmt
}
