package pyast

import (
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/you-not-fish/cs2py/internal/diag"
)

func name(id string) *Name { return &Name{ID: id} }

func num(v interface{}) *Constant { return &Constant{Value: v} }

func call(fn Expr, args ...Expr) *Call {
	c := &Call{Func: fn}
	for _, a := range args {
		c.Args = append(c.Args, &Arg{Value: a})
	}
	return c
}

func mustPrint(t *testing.T, n Node) string {
	t.Helper()
	s, err := Print(n)
	if err != nil {
		t.Fatalf("Print: %v", err)
	}
	return s
}

func TestPrintExpr(t *testing.T) {
	tests := []struct {
		name string
		x    Expr
		want string
	}{
		{"int", num(42), "42"},
		{"int64", num(int64(-7)), "-7"},
		{"uint64", num(uint64(math.MaxUint64)), "18446744073709551615"},
		{"bigint", num(new(big.Int).Lsh(big.NewInt(1), 70)), "1180591620717411303424"},
		{"float whole", num(1.0), "1.0"},
		{"float frac", num(2.5), "2.5"},
		{"float exp", num(1e21), "1e+21"},
		{"float inf", num(math.Inf(1)), `float("inf")`},
		{"true", num(true), "True"},
		{"false", num(false), "False"},
		{"none", num(nil), "None"},
		{"string escapes", num("a\"b\\c\td\r\ne"), `"a\"b\\c\td\r\ne"`},
		{"string control", num("\x00\x1b\x7f"), `"\x00\x1b\x7f"`},
		{"string unicode", num("héllo"), `"héllo"`},
		{"binary", &BinaryExpr{Op: Add, X: name("a"), Y: num(1)}, "(a + 1)"},
		{"nested binary", &BinaryExpr{Op: Mult, X: &BinaryExpr{Op: Sub, X: name("a"), Y: name("b")}, Y: name("c")}, "((a - b) * c)"},
		{"is not", &BinaryExpr{Op: IsNot, X: name("x"), Y: num(nil)}, "(x is not None)"},
		{"and", &AndExpr{X: name("a"), Y: name("b")}, "(a and b)"},
		{"or", &OrExpr{X: name("a"), Y: name("b")}, "(a or b)"},
		{"not", &UnaryExpr{Op: Not, X: name("a")}, "(not a)"},
		{"neg", &UnaryExpr{Op: USub, X: name("a")}, "-a"},
		{"invert", &UnaryExpr{Op: Invert, X: name("a")}, "~a"},
		{"cond", &CondExpr{Test: name("c"), Body: name("a"), Else: name("b")}, "(a if c else b)"},
		{"call", call(name("f"), name("a"), num(1)), "f(a, 1)"},
		{
			"keyword args",
			&Call{Func: name("f"), Args: []*Arg{
				{Value: name("a")},
				{Kind: ArgKeyword, Name: "b", Value: num(2)},
				{Kind: ArgStar, Value: name("rest")},
				{Kind: ArgDoubleStar, Value: name("kw")},
			}},
			"f(a, b=2, *rest, **kw)",
		},
		{"member", &Member{X: name("a"), Name: "b"}, "a.b"},
		{"member of int", &Member{X: num(1), Name: "real"}, "(1).real"},
		{"member of neg", &Member{X: &UnaryExpr{Op: USub, X: name("x")}, Name: "y"}, "(-x).y"},
		{"index", &Index{X: name("a"), Index: num(0)}, "a[0]"},
		{"index tuple", &Index{X: name("Dict"), Index: &Tuple{Elts: []Expr{name("str"), name("int")}}}, "Dict[(str, int)]"},
		{"tuple", &Tuple{Elts: []Expr{name("a"), name("b")}}, "(a, b)"},
		{"tuple one", &Tuple{Elts: []Expr{name("a")}}, "(a,)"},
		{"tuple empty", &Tuple{}, "()"},
		{"list", &List{Elts: []Expr{num(1), num(2)}}, "[1, 2]"},
		{"list empty", &List{}, "[]"},
		{"lambda", NewLambda([]*Param{{Name: "a"}, {Name: "b"}}, &BinaryExpr{Op: Add, X: name("a"), Y: name("b")}), "lambda a, b: (a + b)"},
		{"lambda no params", NewLambda(nil, num(1)), "lambda: 1"},
		{"lambda called", call(NewLambda([]*Param{{Name: "x"}}, name("x")), num(3)), "(lambda x: x)(3)"},
		{"lambda operand", &CondExpr{Test: name("c"), Body: NewLambda(nil, num(1)), Else: num(nil)}, "((lambda: 1) if c else None)"},
		{"paren", &Paren{X: name("a")}, "(a)"},
		{"yield", &Yield{Value: name("a")}, "(yield a)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustPrint(t, tt.x); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPrintStmt(t *testing.T) {
	tests := []struct {
		name string
		s    Stmt
		want string
	}{
		{
			"assign chain",
			&Assign{Targets: []Expr{name("a"), name("b")}, Value: num(1)},
			"a = b = 1\n",
		},
		{
			"aug assign",
			&AugAssign{Target: name("i"), Op: Add, Value: num(1)},
			"i += 1\n",
		},
		{
			"yield stmt",
			&ExprStmt{X: &Yield{Value: name("x")}},
			"yield x\n",
		},
		{
			"if elif else",
			&If{
				Clauses: []IfClause{
					{Test: name("a"), Body: &Return{Value: num(1)}},
					{Test: name("b"), Body: &Suite{}},
				},
				Else: &Raise{},
			},
			"if a:\n    return 1\nelif b:\n    pass\nelse:\n    raise\n",
		},
		{
			"while nested",
			&While{Test: num(true), Body: &Suite{Stmts: []Stmt{
				&Suite{Stmts: []Stmt{&ExprStmt{X: call(name("f"))}}},
				&If{Clauses: []IfClause{{Test: name("done"), Body: &Break{}}}},
				&Continue{},
			}}},
			"while True:\n    f()\n    if done:\n        break\n    continue\n",
		},
		{
			"for",
			&For{Target: name("x"), Iter: name("xs"), Body: &ExprStmt{X: call(name("print"), name("x"))}},
			"for x in xs:\n    print(x)\n",
		},
		{
			"try",
			&Try{
				Body: &Raise{Exc: call(name("Exception"), num("boom"))},
				Handlers: []*Handler{
					{Type: name("ValueError"), Name: "e", Body: &Return{Value: name("e")}},
					{Type: name("Exception"), Body: &Empty{}},
					{Body: &Return{}},
				},
				Finally: &ExprStmt{X: call(name("cleanup"))},
			},
			"try:\n    raise Exception(\"boom\")\nexcept ValueError as e:\n    return e\nexcept Exception:\n    pass\nexcept:\n    return\nfinally:\n    cleanup()\n",
		},
		{
			"with",
			&With{Context: call(name("open"), num("f")), Var: "fh", Body: &Suite{}},
			"with open(\"f\") as fh:\n    pass\n",
		},
		{
			"with unbound",
			&With{Context: name("lock"), Body: &Empty{}},
			"with lock:\n    pass\n",
		},
		{
			"def decorated",
			NewFunctionDef("P", []*Param{{Name: "self"}},
				&Return{Value: &Member{X: name("self"), Name: "_P"}},
				name("property")),
			"@property\ndef P(self):\n    return self._P\n",
		},
		{
			"def params",
			NewFunctionDef("f", []*Param{
				{Name: "a"},
				{Name: "b", Default: num(2)},
				{Name: "rest", Kind: ParamVarList},
				{Name: "kw", Kind: ParamVarDict},
			}, nil),
			"def f(a, b=2, *rest, **kw):\n    pass\n",
		},
		{
			"class",
			NewClassDef("C", []Expr{name("object")}, &Suite{Stmts: []Stmt{
				NewFunctionDef("M", nil, &Return{}, name("staticmethod")),
			}}),
			"class C(object):\n    @staticmethod\n    def M():\n        return\n",
		},
		{
			"class no bases",
			NewClassDef("S", nil, &Suite{}),
			"class S:\n    pass\n",
		},
		{
			"imports",
			&Suite{Stmts: []Stmt{
				&FromImport{Module: "System.Text", Names: []Alias{{Name: "*"}}},
				&Import{Names: []Alias{{Name: "System.IO", AsName: "IO"}}},
				&Import{Names: []Alias{{Name: "clr"}}},
			}},
			"from System.Text import *\nimport System.IO as IO\nimport clr\n",
		},
		{
			"empty",
			&Empty{},
			"pass\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustPrint(t, tt.s); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestPrintModule(t *testing.T) {
	m := &Module{Body: []Stmt{
		&Import{Names: []Alias{{Name: "clr"}}},
		NewClassDef("Point", []Expr{name("object")}, &Suite{Stmts: []Stmt{
			NewFunctionDef("__init__", []*Param{{Name: "self"}}, &Suite{Stmts: []Stmt{
				&Assign{Targets: []Expr{&Member{X: name("self"), Name: "x"}}, Value: num(0)},
			}}),
		}}),
	}}
	want := "import clr\nclass Point(object):\n    def __init__(self):\n        self.x = 0\n"
	if got := mustPrint(t, m); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}

	if got := mustPrint(t, &Module{}); got != "" {
		t.Errorf("empty module printed %q", got)
	}
}

// bogus is a node kind the printer does not know.
type bogus struct{ expr }

func TestPrintErrors(t *testing.T) {
	tests := []struct {
		name string
		n    Node
		kind diag.Kind
	}{
		{"literal", &ExprStmt{X: num(struct{}{})}, diag.UnsupportedLiteral},
		{"unknown expr", &Return{Value: &bogus{}}, diag.Unsupported},
		{"lambda body", &Lambda{Func: NewFunctionDef("", nil, &Suite{})}, diag.Unsupported},
		{"empty if", &If{}, diag.Unsupported},
		{"nested", &While{Test: name("c"), Body: &ExprStmt{X: num(complex(1, 2))}}, diag.UnsupportedLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Print(tt.n)
			if !diag.IsKind(err, tt.kind) {
				t.Errorf("Print error = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

// failWriter fails every write after the first n bytes.
type failWriter struct{ n int }

var errWrite = errors.New("write failed")

func (w *failWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		return 0, errWrite
	}
	w.n -= len(p)
	return len(p), nil
}

func TestFprintWriteError(t *testing.T) {
	s := &Suite{Stmts: []Stmt{&Empty{}, &Empty{}, &Empty{}}}
	err := Fprint(&failWriter{n: 6}, s)
	if !errors.Is(err, errWrite) {
		t.Errorf("Fprint error = %v, want %v", err, errWrite)
	}
}

func TestIndentRestored(t *testing.T) {
	// a failure deep inside a block must not leak indentation
	p := &printer{w: &strings.Builder{}}
	p.stmt(&While{Test: name("c"), Body: &While{Test: name("d"), Body: &ExprStmt{X: &bogus{}}}})
	if p.indent != 0 {
		t.Errorf("indent = %d after error, want 0", p.indent)
	}
	if p.err == nil {
		t.Error("expected an error")
	}
}

func TestFdump(t *testing.T) {
	f := NewFunctionDef("get", []*Param{{Name: "self"}},
		&Return{Value: &Member{X: &Name{ID: "self"}, Name: "_x"}},
		&Name{ID: "property"})
	var b strings.Builder
	Fdump(&b, &Module{Body: []Stmt{
		f,
		&Assign{Targets: []Expr{&Name{ID: "x"}}, Value: &Constant{Value: 1.0}},
	}})
	want := `Module
  Body:
    FunctionDef
      Name: "get"
      Params:
        Param
          Name: "self"
      Body:
        Return
          Value:
            Member
              X:
                Name "self"
              Name: "_x"
      Decorators:
        Name "property"
    Assign
      Targets:
        Name "x"
      Value:
        Constant 1 (float64)
`
	if got := b.String(); got != want {
		t.Errorf("Fdump mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}
