package translate

import (
	"github.com/you-not-fish/cs2py/internal/diag"
	"github.com/you-not-fish/cs2py/internal/pyast"
	"github.com/you-not-fish/cs2py/internal/syntax"
)

func (t *translator) block(b *syntax.BlockStmt) pyast.Stmt {
	return t.stmtList(b.Stmts)
}

func (t *translator) stmtList(list []syntax.Stmt) *pyast.Suite {
	s := &pyast.Suite{}
	for _, st := range list {
		if t.err != nil {
			break
		}
		s.Stmts = append(s.Stmts, t.stmt(st))
	}
	return s
}

func (t *translator) stmt(s syntax.Stmt) pyast.Stmt {
	if t.err != nil {
		return &pyast.Empty{}
	}
	switch s := s.(type) {
	case *syntax.EmptyStmt:
		return &pyast.Suite{}

	case *syntax.BlockStmt:
		return t.block(s)

	case *syntax.ExprStmt:
		return t.exprStmt(s.X)

	case *syntax.DeclStmt:
		return t.declStmt(s)

	case *syntax.FuncStmt:
		return t.funcStmt(s)

	case *syntax.IfStmt:
		return t.ifStmt(s)

	case *syntax.SwitchStmt:
		return t.switchStmt(s)

	case *syntax.ForStmt:
		return t.forStmt(s)

	case *syntax.ForeachStmt:
		target := pyName(s.Name.Value)
		iter := t.expr(s.X)
		return &pyast.For{Target: target, Iter: iter, Body: t.loopBody(s.Body)}

	case *syntax.WhileStmt:
		test := t.expr(s.Cond)
		return &pyast.While{Test: test, Body: t.loopBody(s.Body)}

	case *syntax.DoStmt:
		return t.doStmt(s)

	case *syntax.BranchStmt:
		if s.Tok == syntax.Break {
			if t.inSwitch {
				t.unsupported(s, "break", "break inside a switch section must be its last statement")
			}
			return &pyast.Break{}
		}
		return &pyast.Continue{}

	case *syntax.ReturnStmt:
		if t.fn == nil {
			t.unsupported(s, "return", "return outside of a function")
			return &pyast.Empty{}
		}
		r := &pyast.Return{}
		if s.Result != nil {
			r.Value = t.expr(s.Result)
		}
		return r

	case *syntax.ThrowStmt:
		r := &pyast.Raise{}
		if s.X != nil {
			r.Exc = t.expr(s.X)
		}
		return r

	case *syntax.TryStmt:
		return t.tryStmt(s)

	case *syntax.UsingStmt:
		return t.usingStmt(s)

	case *syntax.YieldStmt:
		if t.fn == nil {
			t.unsupported(s, "yield", "yield outside of a function")
			return &pyast.Empty{}
		}
		if s.X == nil {
			return &pyast.Return{}
		}
		return &pyast.ExprStmt{X: &pyast.Yield{Value: t.expr(s.X)}}

	case *syntax.LockStmt:
		t.unsupported(s, "lock", "lock statements have no translation")

	default:
		t.unsupported(s, nodeKind(s), "no translation rule")
	}
	return &pyast.Empty{}
}

// exprStmt translates an expression in statement position, where
// assignments and increments are allowed.
func (t *translator) exprStmt(x syntax.Expr) pyast.Stmt {
	switch x := x.(type) {
	case *syntax.AssignExpr:
		if x.Op == syntax.Assign {
			a := &pyast.Assign{}
			var rhs syntax.Expr = x
			for {
				as, ok := rhs.(*syntax.AssignExpr)
				if !ok {
					break
				}
				if as.Op != syntax.Assign {
					t.unsupported(as, "assignment", "compound assignment used as a value")
					return &pyast.Empty{}
				}
				a.Targets = append(a.Targets, t.expr(as.LHS))
				rhs = as.RHS
			}
			a.Value = t.initializer(rhs)
			return a
		}
		op := x.Op.BinaryOp()
		if op == syntax.Coalesce {
			// a ??= b is a = a ?? b
			value := &syntax.Operation{Op: syntax.Coalesce, X: x.LHS, Y: x.RHS}
			value.SetPos(x.Pos())
			return &pyast.Assign{Targets: []pyast.Expr{t.expr(x.LHS)}, Value: t.expr(value)}
		}
		bop, ok := binaryOps[op]
		if !ok {
			t.unsupported(x, x.Op.String(), "unknown assignment operator")
			return &pyast.Empty{}
		}
		return &pyast.AugAssign{Target: t.expr(x.LHS), Op: bop, Value: t.expr(x.RHS)}

	case *syntax.Operation:
		if x.Y == nil && (x.Op == syntax.Inc || x.Op == syntax.Dec) {
			op := pyast.Add
			if x.Op == syntax.Dec {
				op = pyast.Sub
			}
			return &pyast.AugAssign{Target: t.expr(x.X), Op: op, Value: &pyast.Constant{Value: 1}}
		}
	}
	return &pyast.ExprStmt{X: t.expr(x)}
}

func (t *translator) declStmt(s *syntax.DeclStmt) pyast.Stmt {
	if s.Using {
		t.unsupported(s, "using declaration", "using var has no translation")
		return &pyast.Empty{}
	}
	out := &pyast.Suite{}
	for _, v := range s.Vars {
		if v.Value == nil {
			continue
		}
		out.Stmts = append(out.Stmts, &pyast.Assign{
			Targets: []pyast.Expr{pyName(v.Name.Value)},
			Value:   t.initializer(v.Value),
		})
	}
	return out
}

func (t *translator) funcStmt(s *syntax.FuncStmt) pyast.Stmt {
	if s.Mods.Has(syntax.ModAsync) {
		t.unsupported(s, "async function", "async local function %s has no translation", s.Name.Value)
		return &pyast.Empty{}
	}
	params := t.params(s.Params)

	saved := t.inSwitch
	t.inSwitch = false
	t.enterFunc(false, false, s.Params, s.Body, s.ExprBody)
	body := t.funcBody(s.Body, s.ExprBody, !isVoid(s.Result))
	t.leaveFunc()
	t.inSwitch = saved

	fn := pyast.NewFunctionDef(ident(s.Name.Value), params, body)
	fn.IsGenerator = containsYield(s.Body)
	return fn
}

func (t *translator) ifStmt(s *syntax.IfStmt) pyast.Stmt {
	out := &pyast.If{}
	for {
		out.Clauses = append(out.Clauses, pyast.IfClause{Test: t.expr(s.Cond), Body: t.stmt(s.Then)})
		next, ok := s.Else.(*syntax.IfStmt)
		if !ok {
			break
		}
		s = next
	}
	if s.Else != nil {
		out.Else = t.stmt(s.Else)
	}
	return out
}

// loopBody translates the body of a loop, where break leaves the loop.
func (t *translator) loopBody(s syntax.Stmt) pyast.Stmt {
	saved := t.inSwitch
	t.inSwitch = false
	defer func() { t.inSwitch = saved }()
	return t.stmt(s)
}

// forStmt lowers for(init; cond; post) to a while loop. When the body
// continues, a first-iteration flag makes the incrementors run before the
// condition on every later iteration:
//
//	init
//	__loop_N = True
//	while True:
//	    if (not __loop_N):
//	        post
//	    __loop_N = False
//	    if (not cond):
//	        break
//	    body
func (t *translator) forStmt(s *syntax.ForStmt) pyast.Stmt {
	out := &pyast.Suite{}
	for _, init := range s.Init {
		out.Stmts = append(out.Stmts, t.stmt(init))
	}
	var cond pyast.Expr = &pyast.Constant{Value: true}
	if s.Cond != nil {
		cond = t.expr(s.Cond)
	}
	post := &pyast.Suite{}
	for _, p := range s.Post {
		post.Stmts = append(post.Stmts, t.exprStmt(p))
	}

	if !hasContinue(s.Body) {
		body := &pyast.Suite{Stmts: []pyast.Stmt{t.loopBody(s.Body), post}}
		out.Stmts = append(out.Stmts, &pyast.While{Test: cond, Body: body})
		return out
	}

	flag := t.newTemp("__loop")
	body := &pyast.Suite{Stmts: []pyast.Stmt{
		&pyast.If{Clauses: []pyast.IfClause{{Test: &pyast.UnaryExpr{Op: pyast.Not, X: pyName(flag)}, Body: post}}},
		&pyast.Assign{Targets: []pyast.Expr{pyName(flag)}, Value: &pyast.Constant{Value: false}},
	}}
	if s.Cond != nil {
		body.Stmts = append(body.Stmts, &pyast.If{Clauses: []pyast.IfClause{
			{Test: &pyast.UnaryExpr{Op: pyast.Not, X: cond}, Body: &pyast.Break{}},
		}})
	}
	body.Stmts = append(body.Stmts, t.loopBody(s.Body))
	out.Stmts = append(out.Stmts,
		&pyast.Assign{Targets: []pyast.Expr{pyName(flag)}, Value: &pyast.Constant{Value: true}},
		&pyast.While{Test: &pyast.Constant{Value: true}, Body: body},
	)
	return out
}

// doStmt lowers do-while. Without continue the condition is tested at the
// end of the body; with continue a first-iteration flag short-circuits the
// loop condition instead.
func (t *translator) doStmt(s *syntax.DoStmt) pyast.Stmt {
	if !hasContinue(s.Body) {
		body := t.loopBody(s.Body)
		cond := t.expr(s.Cond)
		exit := &pyast.If{Clauses: []pyast.IfClause{
			{Test: &pyast.UnaryExpr{Op: pyast.Not, X: cond}, Body: &pyast.Break{}},
		}}
		return &pyast.While{Test: &pyast.Constant{Value: true}, Body: &pyast.Suite{Stmts: []pyast.Stmt{body, exit}}}
	}

	flag := t.newTemp("__loop")
	test := &pyast.OrExpr{X: pyName(flag), Y: t.expr(s.Cond)}
	body := &pyast.Suite{Stmts: []pyast.Stmt{
		&pyast.Assign{Targets: []pyast.Expr{pyName(flag)}, Value: &pyast.Constant{Value: false}},
		t.loopBody(s.Body),
	}}
	return &pyast.Suite{Stmts: []pyast.Stmt{
		&pyast.Assign{Targets: []pyast.Expr{pyName(flag)}, Value: &pyast.Constant{Value: true}},
		&pyast.While{Test: test, Body: body},
	}}
}

// hasContinue reports whether a continue under s targets the loop owning s.
func hasContinue(s syntax.Stmt) bool {
	found := false
	syntax.Inspect(s, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.BranchStmt:
			if n.Tok == syntax.Continue {
				found = true
			}
		case *syntax.ForStmt, *syntax.ForeachStmt, *syntax.WhileStmt, *syntax.DoStmt,
			*syntax.FuncStmt, *syntax.LambdaExpr:
			return false
		}
		return !found
	})
	return found
}

// switchStmt lowers a switch to an if/elif chain over the subject. Each
// section must not fall through; a trailing break, including one closing a
// braced section body, is dropped.
func (t *translator) switchStmt(s *syntax.SwitchStmt) pyast.Stmt {
	out := &pyast.Suite{}
	subject := t.expr(s.Tag)
	if !isTrivial(s.Tag) {
		tmp := t.newTemp("__switch")
		out.Stmts = append(out.Stmts, &pyast.Assign{Targets: []pyast.Expr{pyName(tmp)}, Value: subject})
		subject = pyName(tmp)
	}

	saved := t.inSwitch
	t.inSwitch = true
	defer func() { t.inSwitch = saved }()

	chain := &pyast.If{}
	seen := make(map[string]bool)
	for _, sec := range s.Sections {
		var test pyast.Expr
		isDefault := false
		for _, l := range sec.Labels {
			if l.Guard != nil {
				t.unsupported(l.Guard, "case guard", "when clauses have no translation")
				return &pyast.Empty{}
			}
			if l.IsDefault() {
				isDefault = true
				continue
			}
			value := t.expr(l.Value)
			key, err := pyast.Print(value)
			if err != nil {
				t.fail(diag.Unsupportedf(l.Pos(), "case label", "%v", err))
				return &pyast.Empty{}
			}
			if seen[key] {
				t.fail(diag.Multiplicityf(l.Pos(), "case label", "duplicate case label %s", key))
				return &pyast.Empty{}
			}
			seen[key] = true
			eq := &pyast.BinaryExpr{Op: pyast.Eq, X: subject, Y: value}
			if test == nil {
				test = eq
			} else {
				test = &pyast.OrExpr{X: test, Y: eq}
			}
		}

		body := t.stmtList(trimBreak(sec.Stmts))

		if isDefault {
			if chain.Else != nil {
				t.fail(diag.Multiplicityf(sec.Pos(), "case label", "duplicate default label"))
				return &pyast.Empty{}
			}
			chain.Else = body
			continue
		}
		chain.Clauses = append(chain.Clauses, pyast.IfClause{Test: test, Body: body})
	}

	switch {
	case len(chain.Clauses) > 0:
		out.Stmts = append(out.Stmts, chain)
	case chain.Else != nil:
		out.Stmts = append(out.Stmts, chain.Else)
	}
	return out
}

// trimBreak drops the break ending a switch section, looking through a
// trailing braced block. The section's nodes are not modified.
func trimBreak(stmts []syntax.Stmt) []syntax.Stmt {
	n := len(stmts)
	if n == 0 {
		return stmts
	}
	switch last := stmts[n-1].(type) {
	case *syntax.BranchStmt:
		if last.Tok == syntax.Break {
			return stmts[:n-1]
		}
	case *syntax.BlockStmt:
		inner := trimBreak(last.Stmts)
		if len(inner) == len(last.Stmts) {
			return stmts
		}
		b := *last
		b.Stmts = inner
		out := make([]syntax.Stmt, n)
		copy(out, stmts)
		out[n-1] = &b
		return out
	}
	return stmts
}

// isTrivial reports whether evaluating x more than once is harmless.
func isTrivial(x syntax.Expr) bool {
	switch x := x.(type) {
	case *syntax.Name, *syntax.BasicLit, *syntax.KeywordLit, *syntax.ThisExpr:
		return true
	case *syntax.SelectorExpr:
		return !x.NullCond && isTrivial(x.X)
	case *syntax.ParenExpr:
		return isTrivial(x.X)
	}
	return false
}

func (t *translator) tryStmt(s *syntax.TryStmt) pyast.Stmt {
	out := &pyast.Try{Body: t.block(s.Body)}
	for _, c := range s.Catches {
		if c.Filter != nil {
			t.unsupported(c.Filter, "exception filter", "catch when clauses have no translation")
			return &pyast.Empty{}
		}
		h := &pyast.Handler{}
		if c.Type != nil {
			h.Type = t.expr(c.Type)
		} else {
			h.Type = pyName("Exception")
		}
		if c.Name != nil {
			h.Name = ident(c.Name.Value)
		}
		h.Body = t.block(c.Body)
		out.Handlers = append(out.Handlers, h)
	}
	if s.Finally != nil {
		out.Finally = t.block(s.Finally)
	}
	return out
}

func (t *translator) usingStmt(s *syntax.UsingStmt) pyast.Stmt {
	w := &pyast.With{}
	switch {
	case s.Decl != nil:
		if len(s.Decl.Vars) != 1 {
			t.unsupported(s.Decl, "using", "using with %d declarators has no translation", len(s.Decl.Vars))
			return &pyast.Empty{}
		}
		v := s.Decl.Vars[0]
		if v.Value == nil {
			t.unsupported(v, "using", "using declarator without a value")
			return &pyast.Empty{}
		}
		w.Context = t.expr(v.Value)
		w.Var = ident(v.Name.Value)
	default:
		w.Context = t.expr(s.X)
	}
	w.Body = t.stmt(s.Body)
	return w
}
