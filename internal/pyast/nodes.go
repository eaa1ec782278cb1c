// Package pyast defines the Python syntax tree produced by the translator
// and a printer that renders it as source text.
package pyast

// ----------------------------------------------------------------------------
// Interfaces
//
// The node set is closed: Expr and Stmt carry unexported marker methods, so
// every printer switch over them is exhaustive.

// Node is the interface implemented by all Python tree nodes.
type Node interface {
	aNode()
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	aExpr()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	aStmt()
}

type node struct{}

func (*node) aNode() {}

type expr struct{ node }

func (*expr) aExpr() {}

type stmt struct{ node }

func (*stmt) aStmt() {}

// ----------------------------------------------------------------------------
// Operators

// BinOp is a binary operator.
type BinOp uint8

const (
	Add BinOp = iota
	Sub
	Mult
	Div
	Mod
	LShift
	RShift
	BitAnd
	BitOr
	BitXor
	Eq
	NotEq
	Lt
	LtE
	Gt
	GtE
	Is
	IsNot
)

var binOpText = [...]string{
	Add:    "+",
	Sub:    "-",
	Mult:   "*",
	Div:    "/",
	Mod:    "%",
	LShift: "<<",
	RShift: ">>",
	BitAnd: "&",
	BitOr:  "|",
	BitXor: "^",
	Eq:     "==",
	NotEq:  "!=",
	Lt:     "<",
	LtE:    "<=",
	Gt:     ">",
	GtE:    ">=",
	Is:     "is",
	IsNot:  "is not",
}

// String returns the Python spelling of the operator.
func (op BinOp) String() string {
	if int(op) < len(binOpText) {
		return binOpText[op]
	}
	return "?"
}

// UnaryOp is a unary operator.
type UnaryOp uint8

const (
	UAdd UnaryOp = iota
	USub
	Invert
	Not
)

func (op UnaryOp) String() string {
	switch op {
	case UAdd:
		return "+"
	case USub:
		return "-"
	case Invert:
		return "~"
	case Not:
		return "not"
	}
	return "?"
}

// ----------------------------------------------------------------------------
// Expressions

// Constant is a literal. Value is nil (None), bool, int, int64, uint64,
// float64, *big.Int or string; anything else fails to print.
type Constant struct {
	expr
	Value interface{}
}

// Name is an identifier reference.
type Name struct {
	expr
	ID string
}

// BinaryExpr is X Op Y. It always prints parenthesized.
type BinaryExpr struct {
	expr
	Op BinOp
	X  Expr
	Y  Expr
}

// UnaryExpr is Op X.
type UnaryExpr struct {
	expr
	Op UnaryOp
	X  Expr
}

// AndExpr is X and Y.
type AndExpr struct {
	expr
	X Expr
	Y Expr
}

// OrExpr is X or Y.
type OrExpr struct {
	expr
	X Expr
	Y Expr
}

// CondExpr is Body if Test else Else.
type CondExpr struct {
	expr
	Test Expr
	Body Expr
	Else Expr
}

// ArgKind distinguishes call argument forms.
type ArgKind uint8

const (
	ArgPositional ArgKind = iota
	ArgKeyword            // name=value
	ArgStar               // *value
	ArgDoubleStar         // **value
)

// Arg is one argument of a Call.
type Arg struct {
	node
	Kind  ArgKind
	Name  string // keyword arguments only
	Value Expr
}

// Call is Func(Args...).
type Call struct {
	expr
	Func Expr
	Args []*Arg
}

// Member is X.Name.
type Member struct {
	expr
	X    Expr
	Name string
}

// Index is X[Index].
type Index struct {
	expr
	X     Expr
	Index Expr
}

// Tuple is (Elts...).
type Tuple struct {
	expr
	Elts []Expr
}

// List is [Elts...].
type List struct {
	expr
	Elts []Expr
}

// Lambda is an expression-only function. Func.Body is a single Return.
type Lambda struct {
	expr
	Func *FunctionDef
}

// Paren is an explicitly parenthesized expression.
type Paren struct {
	expr
	X Expr
}

// Yield is yield Value.
type Yield struct {
	expr
	Value Expr // nil for a bare yield
}

// ----------------------------------------------------------------------------
// Statements

// Module is a whole translated compilation unit.
type Module struct {
	node
	Body []Stmt
}

// Suite is a sequence of statements. Nested suites print flattened into
// the enclosing block; an empty block prints as pass.
type Suite struct {
	stmt
	Stmts []Stmt
}

// Assign is Targets[0] = Targets[1] = ... = Value.
type Assign struct {
	stmt
	Targets []Expr
	Value   Expr
}

// AugAssign is Target Op= Value.
type AugAssign struct {
	stmt
	Target Expr
	Op     BinOp
	Value  Expr
}

// ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	stmt
	X Expr
}

// IfClause is one if or elif arm.
type IfClause struct {
	Test Expr
	Body Stmt
}

// If is an if/elif chain with an optional else.
type If struct {
	stmt
	Clauses []IfClause // at least one
	Else    Stmt       // nil if none
}

// For is for Target in Iter: Body.
type For struct {
	stmt
	Target Expr
	Iter   Expr
	Body   Stmt
}

// While is while Test: Body.
type While struct {
	stmt
	Test Expr
	Body Stmt
}

// Return is return [Value].
type Return struct {
	stmt
	Value Expr
}

// Break is break.
type Break struct{ stmt }

// Continue is continue.
type Continue struct{ stmt }

// Handler is one except clause.
type Handler struct {
	Type Expr   // nil for a bare except
	Name string // "" if unbound
	Body Stmt
}

// Try is try/except/finally.
type Try struct {
	stmt
	Body     Stmt
	Handlers []*Handler
	Finally  Stmt // nil if none
}

// Raise is raise [Exc].
type Raise struct {
	stmt
	Exc Expr // nil re-raises
}

// With is with Context [as Var]: Body.
type With struct {
	stmt
	Context Expr
	Var     string
	Body    Stmt
}

// ParamKind distinguishes parameter forms.
type ParamKind uint8

const (
	ParamNormal   ParamKind = iota
	ParamVarList            // *name
	ParamVarDict            // **name
)

// Param is one function parameter.
type Param struct {
	Name    string
	Kind    ParamKind
	Default Expr // nil if none
}

// FunctionDef is a def statement, or the function behind a Lambda.
type FunctionDef struct {
	stmt
	Name        string
	Params      []*Param
	Body        Stmt
	IsGenerator bool
	IsLambda    bool
	decorators  []Expr
}

// NewFunctionDef returns a def with the given decorators, outermost first.
func NewFunctionDef(name string, params []*Param, body Stmt, decorators ...Expr) *FunctionDef {
	return &FunctionDef{Name: name, Params: params, Body: body, decorators: decorators}
}

// NewLambda returns a Lambda over params returning x.
func NewLambda(params []*Param, x Expr) *Lambda {
	f := NewFunctionDef("<lambda>", params, &Return{Value: x})
	f.IsLambda = true
	return &Lambda{Func: f}
}

// Decorators returns the decorators of f, outermost first.
func (f *FunctionDef) Decorators() []Expr { return f.decorators }

// ClassDef is a class statement.
type ClassDef struct {
	stmt
	Name       string
	Bases      []Expr
	Body       Stmt
	decorators []Expr
}

// NewClassDef returns a class with the given decorators, outermost first.
func NewClassDef(name string, bases []Expr, body Stmt, decorators ...Expr) *ClassDef {
	return &ClassDef{Name: name, Bases: bases, Body: body, decorators: decorators}
}

// Decorators returns the decorators of c, outermost first.
func (c *ClassDef) Decorators() []Expr { return c.decorators }

// Alias is one imported name: Name [as AsName].
type Alias struct {
	Name   string
	AsName string
}

// Import is import A.B [as X], ...
type Import struct {
	stmt
	Names []Alias
}

// FromImport is from Module import Names. A single Name "*" imports all.
type FromImport struct {
	stmt
	Module string
	Names  []Alias
}

// Empty is an empty statement. It prints as pass.
type Empty struct{ stmt }
