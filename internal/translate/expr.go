package translate

import (
	"github.com/you-not-fish/cs2py/internal/diag"
	"github.com/you-not-fish/cs2py/internal/pyast"
	"github.com/you-not-fish/cs2py/internal/syntax"
)

// binaryOps maps source operator tokens to Python operators.
var binaryOps = map[syntax.Token]pyast.BinOp{
	syntax.Add: pyast.Add,
	syntax.Sub: pyast.Sub,
	syntax.Mul: pyast.Mult,
	syntax.Div: pyast.Div,
	syntax.Rem: pyast.Mod,
	syntax.Shl: pyast.LShift,
	syntax.Shr: pyast.RShift,
	syntax.And: pyast.BitAnd,
	syntax.Or:  pyast.BitOr,
	syntax.Xor: pyast.BitXor,
	syntax.Eql: pyast.Eq,
	syntax.Neq: pyast.NotEq,
	syntax.Lss: pyast.Lt,
	syntax.Leq: pyast.LtE,
	syntax.Gtr: pyast.Gt,
	syntax.Geq: pyast.GtE,
}

var unaryOps = map[syntax.Token]pyast.UnaryOp{
	syntax.Add:   pyast.UAdd,
	syntax.Sub:   pyast.USub,
	syntax.Tilde: pyast.Invert,
	syntax.Not:   pyast.Not,
}

// expr translates an expression in value position.
func (t *translator) expr(x syntax.Expr) pyast.Expr {
	if t.err != nil {
		return none()
	}
	switch x := x.(type) {
	case *syntax.Name:
		return t.name(x.Value)

	case *syntax.GenericName:
		return &pyast.Index{X: t.name(x.Name.Value), Index: t.typeArgs(x.Args)}

	case *syntax.PredefinedType:
		return pyName(predefinedName(x.Tok))

	case *syntax.NullableType:
		return &pyast.Index{X: dotted("System.Nullable"), Index: t.expr(x.Elem)}

	case *syntax.ArrayType:
		return pyName("list")

	case *syntax.BasicLit:
		return t.basicLit(x)

	case *syntax.KeywordLit:
		if x.IsNull() {
			return none()
		}
		return &pyast.Constant{Value: x.Bool()}

	case *syntax.InterpolatedString:
		return t.interpolated(x)

	case *syntax.Operation:
		return t.operation(x)

	case *syntax.IsExpr:
		return t.isExpr(x)

	case *syntax.AssignExpr:
		t.unsupported(x, "assignment", "assignment used as a value")

	case *syntax.CondExpr:
		return &pyast.CondExpr{Test: t.expr(x.Cond), Body: t.expr(x.X), Else: t.expr(x.Y)}

	case *syntax.CallExpr:
		return t.callExpr(x)

	case *syntax.IndexExpr:
		if x.NullCond {
			t.unsupported(x, "null-conditional index", "?[] has no translation")
			return none()
		}
		if len(x.Args) != 1 {
			t.fail(diag.Multiplicityf(x.Pos(), "element access", "%d index arguments, only one is supported", len(x.Args)))
			return none()
		}
		if a := x.Args[0]; a.Name != nil || a.Mod != 0 {
			t.unsupported(a, "index argument", "named or by-reference index arguments have no translation")
			return none()
		}
		return &pyast.Index{X: t.expr(x.X), Index: t.expr(x.Args[0].X)}

	case *syntax.SelectorExpr:
		return t.selector(x)

	case *syntax.ParenExpr:
		return &pyast.Paren{X: t.expr(x.X)}

	case *syntax.ThisExpr:
		if t.fn == nil || !t.fn.self {
			t.unsupported(x, "this", "this outside of an instance member")
			return none()
		}
		return self()

	case *syntax.BaseExpr:
		return t.super(x)

	case *syntax.CastExpr:
		return t.cast(x)

	case *syntax.TypeOfExpr:
		return t.expr(x.Type)

	case *syntax.DefaultExpr:
		if x.Type == nil {
			return none()
		}
		return zeroValue(x.Type)

	case *syntax.NewExpr:
		return t.newExpr(x)

	case *syntax.ArrayNewExpr:
		return t.arrayNew(x)

	case *syntax.InitExpr:
		return t.initList(x)

	case *syntax.AnonNewExpr:
		return t.anonNew(x)

	case *syntax.LambdaExpr:
		return t.lambda(x)

	case *syntax.ThrowExpr:
		t.unsupported(x, "throw expression", "throw used as a value")

	default:
		t.unsupported(x, nodeKind(x), "no translation rule")
	}
	return none()
}

// name translates an unqualified identifier, qualifying members of the
// open types.
func (t *translator) name(id string) pyast.Expr {
	if m := t.lookupMember(id); m != nil {
		return m
	}
	return pyName(id)
}

func (t *translator) typeArgs(args []syntax.Expr) pyast.Expr {
	if len(args) == 1 {
		return t.expr(args[0])
	}
	tup := &pyast.Tuple{}
	for _, a := range args {
		tup.Elts = append(tup.Elts, t.expr(a))
	}
	return tup
}

// predefinedName maps a predefined type keyword to its Python builtin.
func predefinedName(tok syntax.Token) string {
	switch tok {
	case syntax.String, syntax.Char:
		return "str"
	case syntax.Bool:
		return "bool"
	case syntax.Object:
		return "object"
	case syntax.Float, syntax.Double, syntax.Decimal:
		return "float"
	case syntax.Void:
		return "None"
	}
	return "int"
}

// zeroValue returns default(T) for a type expression.
func zeroValue(typ syntax.Expr) pyast.Expr {
	p, ok := typ.(*syntax.PredefinedType)
	if !ok {
		return none()
	}
	switch p.Tok {
	case syntax.Bool:
		return &pyast.Constant{Value: false}
	case syntax.Char:
		return &pyast.Constant{Value: "\x00"}
	case syntax.Float, syntax.Double, syntax.Decimal:
		return &pyast.Constant{Value: 0.0}
	case syntax.String, syntax.Object, syntax.Void:
		return none()
	}
	return &pyast.Constant{Value: 0}
}

func (t *translator) operation(x *syntax.Operation) pyast.Expr {
	if x.Y == nil {
		if x.Op == syntax.Inc || x.Op == syntax.Dec {
			t.unsupported(x, x.Op.String(), "increment used as a value")
			return none()
		}
		op, ok := unaryOps[x.Op]
		if !ok {
			t.unsupported(x, x.Op.String(), "unknown unary operator")
			return none()
		}
		return &pyast.UnaryExpr{Op: op, X: t.expr(x.X)}
	}

	switch x.Op {
	case syntax.AndAnd:
		return &pyast.AndExpr{X: t.expr(x.X), Y: t.expr(x.Y)}
	case syntax.OrOr:
		return &pyast.OrExpr{X: t.expr(x.X), Y: t.expr(x.Y)}
	case syntax.Coalesce:
		// (lambda __arg__: (__arg__ if (__arg__ is not None) else b))(a)
		arg := &pyast.Name{ID: "__arg__"}
		test := &pyast.BinaryExpr{Op: pyast.IsNot, X: arg, Y: none()}
		return t.argLambda(&pyast.CondExpr{Test: test, Body: arg, Else: t.expr(x.Y)}, t.expr(x.X))
	case syntax.As:
		arg := &pyast.Name{ID: "__arg__"}
		test := call(pyName("isinstance"), arg, t.expr(x.Y))
		return t.argLambda(&pyast.CondExpr{Test: test, Body: arg, Else: none()}, t.expr(x.X))
	}

	op, ok := binaryOps[x.Op]
	if !ok {
		t.unsupported(x, x.Op.String(), "unknown binary operator")
		return none()
	}
	return &pyast.BinaryExpr{Op: op, X: t.expr(x.X), Y: t.expr(x.Y)}
}

// argLambda returns (lambda __arg__: body)(operand).
func (t *translator) argLambda(body, operand pyast.Expr) pyast.Expr {
	return call(pyast.NewLambda([]*pyast.Param{{Name: "__arg__"}}, body), operand)
}

func (t *translator) isExpr(x *syntax.IsExpr) pyast.Expr {
	if x.Var != nil {
		t.unsupported(x.Var, "pattern designation", "declaration pattern binding %s has no translation", x.Var.Value)
		return none()
	}
	v := t.expr(x.X)
	switch p := x.Pattern.(type) {
	case *syntax.KeywordLit:
		if p.IsNull() {
			op := pyast.Is
			if x.Not {
				op = pyast.IsNot
			}
			return &pyast.BinaryExpr{Op: op, X: v, Y: none()}
		}
		return t.constantPattern(x, v)
	case *syntax.BasicLit, *syntax.InterpolatedString, *syntax.Operation:
		return t.constantPattern(x, v)
	}
	var test pyast.Expr = call(pyName("isinstance"), v, t.expr(x.Pattern))
	if x.Not {
		test = &pyast.UnaryExpr{Op: pyast.Not, X: test}
	}
	return test
}

func (t *translator) constantPattern(x *syntax.IsExpr, v pyast.Expr) pyast.Expr {
	op := pyast.Eq
	if x.Not {
		op = pyast.NotEq
	}
	return &pyast.BinaryExpr{Op: op, X: v, Y: t.expr(x.Pattern)}
}

func (t *translator) cast(x *syntax.CastExpr) pyast.Expr {
	v := t.expr(x.X)
	if p, ok := x.Type.(*syntax.PredefinedType); ok {
		switch p.Tok {
		case syntax.Object:
			// falls through to the bridge
		case syntax.Char:
			return call(pyName("chr"), v)
		case syntax.Void:
			t.unsupported(x, "cast", "cast to void")
			return none()
		default:
			return call(pyName(predefinedName(p.Tok)), v)
		}
	}
	return call(dotted(t.cfg.bridge()), v, t.expr(x.Type))
}

func (t *translator) selector(x *syntax.SelectorExpr) pyast.Expr {
	if x.NullCond {
		t.unsupported(x, "null-conditional access", "?. has no translation")
		return none()
	}
	left := t.expr(x.X)
	switch sel := x.Sel.(type) {
	case *syntax.Name:
		if _, ok := x.X.(*syntax.ThisExpr); ok && len(t.scope) > 0 {
			if _, m := t.findMember(t.scope[len(t.scope)-1], sel.Value, 0); m != nil && !m.static {
				return &pyast.Member{X: left, Name: t.attr(sel.Value, m)}
			}
		}
		return &pyast.Member{X: left, Name: ident(sel.Value)}
	case *syntax.GenericName:
		// N.G<T> is N.G[T], not (N.G)[T]
		return &pyast.Index{
			X:     &pyast.Member{X: left, Name: ident(sel.Name.Value)},
			Index: t.typeArgs(sel.Args),
		}
	}
	t.unsupported(x.Sel, nodeKind(x.Sel), "unexpected member name")
	return none()
}

func (t *translator) callExpr(x *syntax.CallExpr) pyast.Expr {
	if n, ok := x.Fun.(*syntax.Name); ok && n.Value == "nameof" && !t.isLocal("nameof") {
		if len(x.Args) != 1 {
			t.unsupported(x, "nameof", "nameof takes one argument")
			return none()
		}
		name := simpleName(x.Args[0].X)
		if name == "" {
			t.unsupported(x, "nameof", "argument is not a name")
			return none()
		}
		return &pyast.Constant{Value: name}
	}
	return &pyast.Call{Func: t.expr(x.Fun), Args: t.args(x.Args)}
}

func (t *translator) isLocal(id string) bool {
	return t.fn != nil && t.fn.isLocal(id)
}

func (t *translator) args(list []*syntax.Arg) []*pyast.Arg {
	var out []*pyast.Arg
	for _, a := range list {
		if a.Mod == syntax.Ref || a.Mod == syntax.Out {
			t.unsupported(a, a.Mod.String()+" argument", "by-reference arguments have no translation")
			return nil
		}
		arg := &pyast.Arg{Value: t.expr(a.X)}
		if a.Name != nil {
			arg.Kind = pyast.ArgKeyword
			arg.Name = ident(a.Name.Value)
		}
		out = append(out, arg)
	}
	return out
}

func (t *translator) newExpr(x *syntax.NewExpr) pyast.Expr {
	if x.Init != nil {
		t.unsupported(x.Init, "object initializer", "object and collection initializers have no translation")
		return none()
	}
	if _, ok := x.Type.(*syntax.NullableType); ok {
		// new T?() is null and new T?(v) is v
		args := t.args(x.Args)
		switch {
		case len(x.Args) == 0:
			return none()
		case len(args) == 1 && args[0].Kind == pyast.ArgPositional:
			return args[0].Value
		}
		t.fail(diag.Multiplicityf(x.Pos(), "nullable creation", "new %s takes at most one positional argument", syntax.TypeString(x.Type)))
		return none()
	}
	var typ pyast.Expr
	if n, ok := x.Type.(*syntax.Name); ok && n.Value == "Exception" && t.types["Exception"] == nil {
		typ = dotted("System.Exception")
	} else {
		typ = t.expr(x.Type)
	}
	return &pyast.Call{Func: typ, Args: t.args(x.Args)}
}

func (t *translator) arrayNew(x *syntax.ArrayNewExpr) pyast.Expr {
	if x.Init != nil {
		return t.initList(x.Init)
	}
	if len(x.Sizes) != 1 {
		t.fail(diag.Multiplicityf(x.Pos(), "array creation", "%d dimensions, only one is supported", len(x.Sizes)))
		return none()
	}
	elts := &pyast.List{Elts: []pyast.Expr{zeroValue(x.Elem)}}
	return &pyast.BinaryExpr{Op: pyast.Mult, X: elts, Y: t.expr(x.Sizes[0])}
}

func (t *translator) initList(x *syntax.InitExpr) pyast.Expr {
	l := &pyast.List{}
	for _, e := range x.Elems {
		l.Elts = append(l.Elts, t.initializer(e))
	}
	return l
}

func (t *translator) anonNew(x *syntax.AnonNewExpr) pyast.Expr {
	c := &pyast.Call{Func: pyName("AnonymousObject")}
	for _, f := range x.Fields {
		var name string
		if f.Name != nil {
			name = f.Name.Value
		} else {
			name = simpleName(f.X)
		}
		if name == "" {
			t.unsupported(f, "anonymous member", "cannot infer a member name")
			return none()
		}
		c.Args = append(c.Args, &pyast.Arg{Kind: pyast.ArgKeyword, Name: ident(name), Value: t.expr(f.X)})
	}
	return c
}

func (t *translator) lambda(x *syntax.LambdaExpr) pyast.Expr {
	if x.Async {
		t.unsupported(x, "async lambda", "async lambdas have no translation")
		return none()
	}
	if x.Block != nil {
		t.unsupported(x, "block lambda", "block-bodied lambda was not hoisted")
		return none()
	}
	params := t.params(x.Params)
	t.enterFunc(false, false, x.Params, x.Body)
	body := t.expr(x.Body)
	t.leaveFunc()
	return pyast.NewLambda(params, body)
}
