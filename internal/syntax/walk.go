package syntax

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first order.
// If visitor returns false, children are not visited.
func Walk(node Node, v Visitor) {
	if node == nil || !v(node) {
		return
	}
	children(node, func(n Node) { Walk(n, v) })
}

// Inspect traverses an AST and calls f for each node.
// Convenience wrapper around Walk.
func Inspect(node Node, f func(Node) bool) {
	Walk(node, Visitor(f))
}

// WalkWithStack is like Walk but also passes the ancestors of each node,
// outermost first. The stack slice is only valid during the call.
func WalkWithStack(root Node, f func(n Node, stack []Node) bool) {
	var stack []Node
	var visit func(n Node)
	visit = func(n Node) {
		if !f(n, stack) {
			return
		}
		stack = append(stack, n)
		children(n, visit)
		stack = stack[:len(stack)-1]
	}
	if root != nil {
		visit(root)
	}
}

// children calls f for each non-nil child of node in source order.
func children(node Node, f func(Node)) {
	// typed nil pointers must not reach f
	expr := func(x Expr) {
		if x != nil {
			f(x)
		}
	}
	stmt := func(s Stmt) {
		if s != nil {
			f(s)
		}
	}
	name := func(n *Name) {
		if n != nil {
			f(n)
		}
	}
	block := func(b *BlockStmt) {
		if b != nil {
			f(b)
		}
	}
	params := func(ps []*Param) {
		for _, p := range ps {
			f(p)
		}
	}
	args := func(as []*Arg) {
		for _, a := range as {
			f(a)
		}
	}
	exprs := func(xs []Expr) {
		for _, x := range xs {
			expr(x)
		}
	}
	names := func(ns []*Name) {
		for _, n := range ns {
			name(n)
		}
	}
	accessors := func(as []*Accessor) {
		for _, a := range as {
			f(a)
		}
	}

	switch n := node.(type) {
	case *File:
		for _, u := range n.Usings {
			f(u)
		}
		for _, d := range n.Decls {
			f(d)
		}

	case *UsingDecl:
		name(n.Alias)
		expr(n.Path)

	case *NamespaceDecl:
		expr(n.Name)
		for _, u := range n.Usings {
			f(u)
		}
		for _, d := range n.Decls {
			f(d)
		}

	case *ClassDecl:
		name(n.Name)
		names(n.TypeParams)
		exprs(n.Bases)
		for _, d := range n.Members {
			f(d)
		}

	case *EnumDecl:
		name(n.Name)
		expr(n.Base)
		for _, m := range n.Members {
			f(m)
		}

	case *EnumMember:
		name(n.Name)
		expr(n.Value)

	case *FieldDecl:
		expr(n.Type)
		for _, v := range n.Vars {
			f(v)
		}

	case *VarSpec:
		name(n.Name)
		expr(n.Value)

	case *PropertyDecl:
		expr(n.Type)
		name(n.Name)
		accessors(n.Accessors)
		expr(n.ExprBody)
		expr(n.Value)

	case *Accessor:
		block(n.Body)
		expr(n.ExprBody)

	case *MethodDecl:
		expr(n.Result)
		name(n.Name)
		names(n.TypeParams)
		params(n.Params)
		block(n.Body)
		expr(n.ExprBody)

	case *CtorDecl:
		name(n.Name)
		params(n.Params)
		if n.Init != nil {
			f(n.Init)
		}
		block(n.Body)
		expr(n.ExprBody)

	case *CtorInit:
		args(n.Args)

	case *DtorDecl:
		name(n.Name)
		block(n.Body)
		expr(n.ExprBody)

	case *IndexerDecl:
		expr(n.Type)
		params(n.Params)
		accessors(n.Accessors)
		expr(n.ExprBody)

	case *OperatorDecl:
		expr(n.Result)
		params(n.Params)
		block(n.Body)
		expr(n.ExprBody)

	case *GlobalStmt:
		stmt(n.Stmt)

	case *Param:
		expr(n.Type)
		name(n.Name)
		expr(n.Default)

	case *Arg:
		name(n.Name)
		expr(n.X)

	// Expressions

	case *GenericName:
		name(n.Name)
		exprs(n.Args)

	case *NullableType:
		expr(n.Elem)

	case *ArrayType:
		expr(n.Elem)

	case *InterpolatedString:
		for _, p := range n.Parts {
			f(p)
		}

	case *InterpPart:
		expr(n.X)
		expr(n.Align)

	case *Operation:
		expr(n.X)
		expr(n.Y)

	case *IsExpr:
		expr(n.X)
		expr(n.Pattern)
		name(n.Var)

	case *AssignExpr:
		expr(n.LHS)
		expr(n.RHS)

	case *CondExpr:
		expr(n.Cond)
		expr(n.X)
		expr(n.Y)

	case *CallExpr:
		expr(n.Fun)
		args(n.Args)

	case *IndexExpr:
		expr(n.X)
		args(n.Args)

	case *SelectorExpr:
		expr(n.X)
		expr(n.Sel)

	case *ParenExpr:
		expr(n.X)

	case *CastExpr:
		expr(n.Type)
		expr(n.X)

	case *TypeOfExpr:
		expr(n.Type)

	case *DefaultExpr:
		expr(n.Type)

	case *NewExpr:
		expr(n.Type)
		args(n.Args)
		if n.Init != nil {
			f(n.Init)
		}

	case *ArrayNewExpr:
		expr(n.Elem)
		exprs(n.Sizes)
		if n.Init != nil {
			f(n.Init)
		}

	case *InitExpr:
		exprs(n.Elems)

	case *AnonNewExpr:
		for _, fld := range n.Fields {
			f(fld)
		}

	case *AnonField:
		name(n.Name)
		expr(n.X)

	case *LambdaExpr:
		params(n.Params)
		expr(n.Body)
		block(n.Block)

	case *ThrowExpr:
		expr(n.X)

	// Statements

	case *ExprStmt:
		expr(n.X)

	case *BlockStmt:
		for _, s := range n.Stmts {
			stmt(s)
		}

	case *DeclStmt:
		expr(n.Type)
		for _, v := range n.Vars {
			f(v)
		}

	case *FuncStmt:
		expr(n.Result)
		name(n.Name)
		names(n.TypeParams)
		params(n.Params)
		block(n.Body)
		expr(n.ExprBody)

	case *IfStmt:
		expr(n.Cond)
		stmt(n.Then)
		stmt(n.Else)

	case *SwitchStmt:
		expr(n.Tag)
		for _, s := range n.Sections {
			f(s)
		}

	case *CaseSection:
		for _, l := range n.Labels {
			f(l)
		}
		for _, s := range n.Stmts {
			stmt(s)
		}

	case *CaseLabel:
		expr(n.Value)
		expr(n.Guard)

	case *ForStmt:
		for _, s := range n.Init {
			stmt(s)
		}
		expr(n.Cond)
		exprs(n.Post)
		stmt(n.Body)

	case *ForeachStmt:
		expr(n.Type)
		name(n.Name)
		expr(n.X)
		stmt(n.Body)

	case *WhileStmt:
		expr(n.Cond)
		stmt(n.Body)

	case *DoStmt:
		stmt(n.Body)
		expr(n.Cond)

	case *ReturnStmt:
		expr(n.Result)

	case *ThrowStmt:
		expr(n.X)

	case *TryStmt:
		block(n.Body)
		for _, c := range n.Catches {
			f(c)
		}
		block(n.Finally)

	case *CatchClause:
		expr(n.Type)
		name(n.Name)
		expr(n.Filter)
		block(n.Body)

	case *UsingStmt:
		if n.Decl != nil {
			f(n.Decl)
		}
		expr(n.X)
		stmt(n.Body)

	case *YieldStmt:
		expr(n.X)

	case *LockStmt:
		expr(n.X)
		stmt(n.Body)

	// Leaf nodes: Name, PredefinedType, BasicLit, KeywordLit, ThisExpr,
	// BaseExpr, EmptyStmt, BranchStmt
	}
}
