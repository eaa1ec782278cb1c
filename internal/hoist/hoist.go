// Package hoist rewrites block-bodied lambdas into named local functions.
//
// Python lambdas hold a single expression, so every lambda with a statement
// body is lifted into a local function lambda__N declared just before the
// statement that uses it, and the lambda itself is replaced by the name.
// The rewrite is copy-on-write: untouched subtrees are shared with the
// input, and a file without block lambdas is returned unchanged.
package hoist

import (
	"fmt"

	"github.com/you-not-fish/cs2py/internal/diag"
	"github.com/you-not-fish/cs2py/internal/syntax"
)

// Rewrite returns file with every block-bodied lambda hoisted. It never
// modifies file. On error no tree is returned.
func Rewrite(file *syntax.File) (*syntax.File, error) {
	if findBlockLambda(file) == nil {
		return file, nil
	}
	r := &rewriter{used: usedNames(file)}
	out := r.file(file)
	if r.err != nil {
		return nil, r.err
	}
	return out, nil
}

// rewriter holds the state of one Rewrite call.
type rewriter struct {
	next    int                // ordinal of the next hoisted lambda
	used    map[string]bool    // identifiers of the input; hoisted names avoid them
	pending []*syntax.FuncStmt // functions to insert before the current anchor
	err     error              // first error; later work is skipped
}

// FuncName returns the name given to the n'th hoisted lambda. Ordinals
// whose name already appears in the input are skipped.
func FuncName(n int) string {
	return fmt.Sprintf("lambda__%d", n)
}

// usedNames returns every identifier spelled in f.
func usedNames(f *syntax.File) map[string]bool {
	used := make(map[string]bool)
	syntax.Inspect(f, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Name); ok {
			used[id.Value] = true
		}
		return true
	})
	return used
}

// newName returns the next hoisted function name not spelled in the input.
func (r *rewriter) newName() string {
	for {
		name := FuncName(r.next)
		r.next++
		if !r.used[name] {
			return name
		}
	}
}

// findBlockLambda returns the first block-bodied lambda under n in source
// order, or nil.
func findBlockLambda(n syntax.Node) *syntax.LambdaExpr {
	var found *syntax.LambdaExpr
	syntax.Inspect(n, func(n syntax.Node) bool {
		if found != nil {
			return false
		}
		if l, ok := n.(*syntax.LambdaExpr); ok && l.Block != nil {
			found = l
			return false
		}
		return true
	})
	return found
}

// noAnchor fails if n holds a block lambda. construct names the position,
// e.g. "field initializer".
func (r *rewriter) noAnchor(n syntax.Node, construct string) {
	if r.err != nil || n == nil {
		return
	}
	if l := findBlockLambda(n); l != nil {
		r.err = diag.InvalidAnchorf(l.Pos(), construct,
			"multi-statement lambda cannot be hoisted out of a %s", construct)
	}
}

// ----------------------------------------------------------------------------
// Declarations

func (r *rewriter) file(f *syntax.File) *syntax.File {
	decls, changed := r.decls(f.Decls)
	if !changed {
		return f
	}
	f2 := *f
	f2.Decls = decls
	return &f2
}

// decls rewrites a declaration list. Functions hoisted out of a top-level
// statement become top-level statements in front of it.
func (r *rewriter) decls(list []syntax.Decl) ([]syntax.Decl, bool) {
	var out []syntax.Decl
	changed := false
	for i, d := range list {
		var funcs []*syntax.FuncStmt
		d2 := d
		if g, ok := d.(*syntax.GlobalStmt); ok {
			var s syntax.Stmt
			s, funcs = r.anchored(g.Stmt)
			if s != g.Stmt {
				g2 := *g
				g2.Stmt = s
				d2 = &g2
			}
		} else {
			d2 = r.decl(d)
		}
		if !changed && (d2 != d || len(funcs) > 0) {
			out = append(out, list[:i]...)
			changed = true
		}
		if changed {
			for _, fn := range funcs {
				g := &syntax.GlobalStmt{Stmt: fn}
				g.SetPos(fn.Pos())
				out = append(out, g)
			}
			out = append(out, d2)
		}
	}
	if !changed {
		return list, false
	}
	return out, true
}

func (r *rewriter) decl(d syntax.Decl) syntax.Decl {
	if r.err != nil || findBlockLambda(d) == nil {
		return d
	}
	switch d := d.(type) {
	case *syntax.NamespaceDecl:
		decls, changed := r.decls(d.Decls)
		if !changed {
			return d
		}
		d2 := *d
		d2.Decls = decls
		return &d2

	case *syntax.ClassDecl:
		members, changed := r.decls(d.Members)
		if !changed {
			return d
		}
		d2 := *d
		d2.Members = members
		return &d2

	case *syntax.EnumDecl:
		for _, m := range d.Members {
			r.noAnchor(m.Value, "enum member value")
		}
		return d

	case *syntax.FieldDecl:
		r.noAnchor(d, "field initializer")
		return d

	case *syntax.PropertyDecl:
		r.noAnchor(d.Value, "property initializer")
		if r.err != nil {
			return d
		}
		d2 := *d
		if d.ExprBody != nil {
			get := &syntax.Accessor{Kind: "get", Body: r.exprBody(d.ExprBody, true)}
			get.SetPos(d.ExprBody.Pos())
			d2.Accessors = []*syntax.Accessor{get}
			d2.ExprBody = nil
			return &d2
		}
		d2.Accessors = make([]*syntax.Accessor, len(d.Accessors))
		for i, a := range d.Accessors {
			d2.Accessors[i] = r.accessor(a)
		}
		return &d2

	case *syntax.MethodDecl:
		r.params(d.Params)
		body := r.funcBody(d.Body, d.ExprBody, !isVoid(d.Result))
		if body == d.Body {
			return d
		}
		d2 := *d
		d2.Body, d2.ExprBody = body, nil
		return &d2

	case *syntax.CtorDecl:
		r.params(d.Params)
		if d.Init != nil {
			r.noAnchor(d.Init, "constructor initializer")
		}
		body := r.funcBody(d.Body, d.ExprBody, false)
		if body == d.Body {
			return d
		}
		d2 := *d
		d2.Body, d2.ExprBody = body, nil
		return &d2
	}

	// Destructors, indexers and operators have no translation; leave them
	// for the translator to reject.
	return d
}

func (r *rewriter) accessor(a *syntax.Accessor) *syntax.Accessor {
	body := r.funcBody(a.Body, a.ExprBody, a.Kind == "get")
	if body == a.Body {
		return a
	}
	a2 := *a
	a2.Body, a2.ExprBody = body, nil
	return &a2
}

func (r *rewriter) params(params []*syntax.Param) {
	for _, p := range params {
		r.noAnchor(p.Default, "parameter default")
	}
}

// funcBody rewrites a function body given as a block or as an expression.
// An expression body holding block lambdas becomes a block that declares
// the hoisted functions and then returns the expression, or evaluates it
// when value is false.
func (r *rewriter) funcBody(body *syntax.BlockStmt, x syntax.Expr, value bool) *syntax.BlockStmt {
	if r.err != nil {
		return body
	}
	if body != nil {
		return r.block(body)
	}
	if x == nil || findBlockLambda(x) == nil {
		return body
	}
	return r.exprBody(x, value)
}

func (r *rewriter) exprBody(x syntax.Expr, value bool) *syntax.BlockStmt {
	saved := r.pending
	r.pending = nil
	x2 := r.expr(x)
	funcs := r.pending
	r.pending = saved

	var last syntax.Stmt
	if value {
		ret := &syntax.ReturnStmt{Result: x2}
		ret.SetPos(x.Pos())
		last = ret
	} else {
		es := &syntax.ExprStmt{X: x2}
		es.SetPos(x.Pos())
		last = es
	}
	stmts := make([]syntax.Stmt, 0, len(funcs)+1)
	for _, fn := range funcs {
		stmts = append(stmts, fn)
	}
	b := &syntax.BlockStmt{Stmts: append(stmts, last)}
	b.SetPos(x.Pos())
	return b
}

func isVoid(t syntax.Expr) bool {
	p, ok := t.(*syntax.PredefinedType)
	return ok && p.Tok == syntax.Void
}

// ----------------------------------------------------------------------------
// Statements

// anchored rewrites s and returns the functions hoisted out of it, which
// must be declared right before it.
func (r *rewriter) anchored(s syntax.Stmt) (syntax.Stmt, []*syntax.FuncStmt) {
	saved := r.pending
	r.pending = nil
	s2 := r.stmt(s)
	funcs := r.pending
	r.pending = saved
	return s2, funcs
}

// stmtList rewrites the statements of a block or switch section.
func (r *rewriter) stmtList(list []syntax.Stmt) ([]syntax.Stmt, bool) {
	var out []syntax.Stmt
	changed := false
	for i, s := range list {
		s2, funcs := r.anchored(s)
		if !changed && (s2 != s || len(funcs) > 0) {
			out = append(out, list[:i]...)
			changed = true
		}
		if changed {
			for _, fn := range funcs {
				out = append(out, fn)
			}
			out = append(out, s2)
		}
	}
	if !changed {
		return list, false
	}
	return out, true
}

func (r *rewriter) block(b *syntax.BlockStmt) *syntax.BlockStmt {
	if b == nil {
		return nil
	}
	stmts, changed := r.stmtList(b.Stmts)
	if !changed {
		return b
	}
	b2 := *b
	b2.Stmts = stmts
	return &b2
}

// embedded rewrites the unbraced body of a compound statement. If
// functions were hoisted out of it, it is wrapped in a block that declares
// them first.
func (r *rewriter) embedded(s syntax.Stmt) syntax.Stmt {
	if s == nil {
		return nil
	}
	s2, funcs := r.anchored(s)
	if len(funcs) == 0 {
		return s2
	}
	stmts := make([]syntax.Stmt, 0, len(funcs)+1)
	for _, fn := range funcs {
		stmts = append(stmts, fn)
	}
	b := &syntax.BlockStmt{Stmts: append(stmts, s2)}
	b.SetPos(s.Pos())
	return b
}

// stmt rewrites s. Functions hoisted from expressions that belong to s
// itself (not to nested statements) are appended to r.pending.
func (r *rewriter) stmt(s syntax.Stmt) syntax.Stmt {
	if r.err != nil || s == nil || findBlockLambda(s) == nil {
		return s
	}
	switch s := s.(type) {
	case *syntax.ExprStmt:
		s2 := *s
		s2.X = r.expr(s.X)
		return &s2

	case *syntax.BlockStmt:
		return r.block(s)

	case *syntax.DeclStmt:
		return r.declStmt(s)

	case *syntax.FuncStmt:
		r.params(s.Params)
		body := r.funcBody(s.Body, s.ExprBody, !isVoid(s.Result))
		if body == s.Body {
			return s
		}
		s2 := *s
		s2.Body, s2.ExprBody = body, nil
		return &s2

	case *syntax.IfStmt:
		s2 := *s
		s2.Cond = r.expr(s.Cond)
		s2.Then = r.embedded(s.Then)
		s2.Else = r.embedded(s.Else)
		return &s2

	case *syntax.SwitchStmt:
		s2 := *s
		s2.Tag = r.expr(s.Tag)
		s2.Sections = make([]*syntax.CaseSection, len(s.Sections))
		for i, sec := range s.Sections {
			s2.Sections[i] = r.section(sec)
		}
		return &s2

	case *syntax.ForStmt:
		s2 := *s
		// the init clause is part of the for statement's header
		s2.Init = make([]syntax.Stmt, len(s.Init))
		for i, init := range s.Init {
			s2.Init[i] = r.stmt(init)
		}
		s2.Cond = r.expr(s.Cond)
		s2.Post, _ = r.exprs(s.Post)
		s2.Body = r.embedded(s.Body)
		return &s2

	case *syntax.ForeachStmt:
		s2 := *s
		s2.X = r.expr(s.X)
		s2.Body = r.embedded(s.Body)
		return &s2

	case *syntax.WhileStmt:
		s2 := *s
		s2.Cond = r.expr(s.Cond)
		s2.Body = r.embedded(s.Body)
		return &s2

	case *syntax.DoStmt:
		s2 := *s
		s2.Body = r.embedded(s.Body)
		s2.Cond = r.expr(s.Cond)
		return &s2

	case *syntax.ReturnStmt:
		s2 := *s
		s2.Result = r.expr(s.Result)
		return &s2

	case *syntax.ThrowStmt:
		s2 := *s
		s2.X = r.expr(s.X)
		return &s2

	case *syntax.YieldStmt:
		s2 := *s
		s2.X = r.expr(s.X)
		return &s2

	case *syntax.TryStmt:
		s2 := *s
		s2.Body = r.block(s.Body)
		s2.Catches = make([]*syntax.CatchClause, len(s.Catches))
		for i, c := range s.Catches {
			c2 := *c
			c2.Filter = r.expr(c.Filter)
			c2.Body = r.block(c.Body)
			s2.Catches[i] = &c2
		}
		s2.Finally = r.block(s.Finally)
		return &s2

	case *syntax.UsingStmt:
		s2 := *s
		if s.Decl != nil {
			s2.Decl = r.declStmt(s.Decl)
		}
		s2.X = r.expr(s.X)
		s2.Body = r.embedded(s.Body)
		return &s2

	case *syntax.LockStmt:
		s2 := *s
		s2.X = r.expr(s.X)
		s2.Body = r.embedded(s.Body)
		return &s2
	}
	return s
}

func (r *rewriter) declStmt(s *syntax.DeclStmt) *syntax.DeclStmt {
	if findBlockLambda(s) == nil {
		return s
	}
	s2 := *s
	s2.Vars = make([]*syntax.VarSpec, len(s.Vars))
	for i, v := range s.Vars {
		v2 := *v
		v2.Value = r.expr(v.Value)
		s2.Vars[i] = &v2
	}
	return &s2
}

func (r *rewriter) section(sec *syntax.CaseSection) *syntax.CaseSection {
	if findBlockLambda(sec) == nil {
		return sec
	}
	sec2 := *sec
	sec2.Labels = make([]*syntax.CaseLabel, len(sec.Labels))
	for i, l := range sec.Labels {
		l2 := *l
		l2.Value = r.expr(l.Value)
		l2.Guard = r.expr(l.Guard)
		sec2.Labels[i] = &l2
	}
	sec2.Stmts, _ = r.stmtList(sec.Stmts)
	return &sec2
}

// ----------------------------------------------------------------------------
// Expressions

// lambda hoists l and returns the name that replaces it. An expression
// lambda reaching here holds a block lambda and is first given the block
// body { return Body; }.
func (r *rewriter) lambda(l *syntax.LambdaExpr) syntax.Expr {
	blk := l.Block
	if blk == nil {
		ret := &syntax.ReturnStmt{Result: l.Body}
		ret.SetPos(l.Body.Pos())
		blk = &syntax.BlockStmt{Stmts: []syntax.Stmt{ret}}
		blk.SetPos(l.Body.Pos())
	}

	name := r.newName()

	result := &syntax.PredefinedType{Tok: syntax.Object}
	result.SetPos(l.Pos())
	fn := &syntax.FuncStmt{
		Result: result,
		Name:   &syntax.Name{Value: name},
		Params: l.Params,
		Body:   r.block(blk),
	}
	if l.Async {
		fn.Mods |= syntax.ModAsync
	}
	fn.SetPos(l.Pos())
	fn.Name.SetPos(l.Pos())
	r.pending = append(r.pending, fn)

	ref := &syntax.Name{Value: name}
	ref.SetPos(l.Pos())
	return ref
}

func (r *rewriter) expr(x syntax.Expr) syntax.Expr {
	if r.err != nil || x == nil || findBlockLambda(x) == nil {
		return x
	}
	switch x := x.(type) {
	case *syntax.LambdaExpr:
		return r.lambda(x)

	case *syntax.InterpolatedString:
		x2 := *x
		x2.Parts = make([]*syntax.InterpPart, len(x.Parts))
		for i, p := range x.Parts {
			p2 := *p
			p2.X = r.expr(p.X)
			p2.Align = r.expr(p.Align)
			x2.Parts[i] = &p2
		}
		return &x2

	case *syntax.Operation:
		x2 := *x
		x2.X = r.expr(x.X)
		x2.Y = r.expr(x.Y)
		return &x2

	case *syntax.IsExpr:
		x2 := *x
		x2.X = r.expr(x.X)
		x2.Pattern = r.expr(x.Pattern)
		return &x2

	case *syntax.AssignExpr:
		x2 := *x
		x2.LHS = r.expr(x.LHS)
		x2.RHS = r.expr(x.RHS)
		return &x2

	case *syntax.CondExpr:
		x2 := *x
		x2.Cond = r.expr(x.Cond)
		x2.X = r.expr(x.X)
		x2.Y = r.expr(x.Y)
		return &x2

	case *syntax.CallExpr:
		x2 := *x
		x2.Fun = r.expr(x.Fun)
		x2.Args = r.args(x.Args)
		return &x2

	case *syntax.IndexExpr:
		x2 := *x
		x2.X = r.expr(x.X)
		x2.Args = r.args(x.Args)
		return &x2

	case *syntax.SelectorExpr:
		x2 := *x
		x2.X = r.expr(x.X)
		return &x2

	case *syntax.ParenExpr:
		x2 := *x
		x2.X = r.expr(x.X)
		return &x2

	case *syntax.CastExpr:
		x2 := *x
		x2.X = r.expr(x.X)
		return &x2

	case *syntax.NewExpr:
		x2 := *x
		x2.Args = r.args(x.Args)
		x2.Init = r.initExpr(x.Init)
		return &x2

	case *syntax.ArrayNewExpr:
		x2 := *x
		x2.Sizes, _ = r.exprs(x.Sizes)
		x2.Init = r.initExpr(x.Init)
		return &x2

	case *syntax.InitExpr:
		return r.initExpr(x)

	case *syntax.AnonNewExpr:
		x2 := *x
		x2.Fields = make([]*syntax.AnonField, len(x.Fields))
		for i, f := range x.Fields {
			f2 := *f
			f2.X = r.expr(f.X)
			x2.Fields[i] = &f2
		}
		return &x2

	case *syntax.ThrowExpr:
		x2 := *x
		x2.X = r.expr(x.X)
		return &x2
	}

	// type syntax holds no lambdas
	return x
}

func (r *rewriter) initExpr(x *syntax.InitExpr) *syntax.InitExpr {
	if x == nil {
		return nil
	}
	elems, changed := r.exprs(x.Elems)
	if !changed {
		return x
	}
	x2 := *x
	x2.Elems = elems
	return &x2
}

func (r *rewriter) exprs(list []syntax.Expr) ([]syntax.Expr, bool) {
	var out []syntax.Expr
	changed := false
	for i, x := range list {
		x2 := r.expr(x)
		if !changed && x2 != x {
			out = append(out, list[:i]...)
			changed = true
		}
		if changed {
			out = append(out, x2)
		}
	}
	if !changed {
		return list, false
	}
	return out, true
}

func (r *rewriter) args(list []*syntax.Arg) []*syntax.Arg {
	out := list
	copied := false
	for i, a := range list {
		x := r.expr(a.X)
		if x == a.X {
			continue
		}
		if !copied {
			out = append([]*syntax.Arg(nil), list...)
			copied = true
		}
		a2 := *a
		a2.X = x
		out[i] = &a2
	}
	return out
}
