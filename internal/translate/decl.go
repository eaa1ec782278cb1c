package translate

import (
	"github.com/you-not-fish/cs2py/internal/diag"
	"github.com/you-not-fish/cs2py/internal/pyast"
	"github.com/you-not-fish/cs2py/internal/syntax"
)

// typeInfo describes a type declared in the compilation unit.
type typeInfo struct {
	name    string
	path    string // dotted Python name, e.g. "Outer.Inner"
	kind    syntax.TypeKind
	enum    bool
	bases   []string // simple names of the declared bases
	members map[string]*member
	emitted bool
}

type member struct {
	static  bool
	autoGet bool // auto-implemented property without a setter
	auto    bool // auto-implemented property
}

// collectTypes records every type declared in file with its members, so
// that unqualified member references and base lists can be resolved.
func (t *translator) collectTypes(file *syntax.File) {
	var visit func(decls []syntax.Decl, prefix string)
	visit = func(decls []syntax.Decl, prefix string) {
		for _, d := range decls {
			switch d := d.(type) {
			case *syntax.NamespaceDecl:
				visit(d.Decls, prefix)
			case *syntax.ClassDecl:
				ti := t.declareType(d.Name.Value, prefix)
				ti.kind = d.Kind
				for _, b := range d.Bases {
					if name := simpleName(b); name != "" {
						ti.bases = append(ti.bases, name)
					}
				}
				for _, m := range d.Members {
					addMember(ti, m)
				}
				visit(d.Members, ti.path+".")
			case *syntax.EnumDecl:
				ti := t.declareType(d.Name.Value, prefix)
				ti.enum = true
				for _, m := range d.Members {
					ti.members[m.Name.Value] = &member{static: true}
				}
			}
		}
	}
	visit(file.Decls, "")
}

func (t *translator) declareType(name, prefix string) *typeInfo {
	path := prefix + ident(name)
	if ti := t.paths[path]; ti != nil {
		return ti // partial declaration
	}
	ti := &typeInfo{name: name, path: path, members: make(map[string]*member)}
	t.paths[path] = ti
	if t.types[name] == nil {
		t.types[name] = ti
	}
	return ti
}

func addMember(ti *typeInfo, d syntax.Decl) {
	switch d := d.(type) {
	case *syntax.FieldDecl:
		for _, v := range d.Vars {
			ti.members[v.Name.Value] = &member{static: d.Mods.Has(syntax.ModStatic) || d.Mods.Has(syntax.ModConst)}
		}
	case *syntax.PropertyDecl:
		m := &member{static: d.Mods.Has(syntax.ModStatic)}
		if isAutoProperty(d) {
			m.auto = true
			m.autoGet = !hasSetter(d)
		}
		ti.members[d.Name.Value] = m
	case *syntax.MethodDecl:
		ti.members[d.Name.Value] = &member{static: d.Mods.Has(syntax.ModStatic)}
	case *syntax.ClassDecl:
		ti.members[d.Name.Value] = &member{static: true}
	case *syntax.EnumDecl:
		ti.members[d.Name.Value] = &member{static: true}
	}
}

// lookupType returns the info recorded for a type declaration.
func (t *translator) lookupType(name string) *typeInfo {
	prefix := ""
	if n := len(t.scope); n > 0 {
		prefix = t.scope[n-1].path + "."
	}
	if ti := t.paths[prefix+ident(name)]; ti != nil {
		return ti
	}
	return t.declareType(name, prefix)
}

// simpleName returns the last identifier of a type name, or "".
func simpleName(x syntax.Expr) string {
	switch x := x.(type) {
	case *syntax.Name:
		return x.Value
	case *syntax.GenericName:
		return x.Name.Value
	case *syntax.SelectorExpr:
		return simpleName(x.Sel)
	}
	return ""
}

func isAutoProperty(d *syntax.PropertyDecl) bool {
	if d.ExprBody != nil || len(d.Accessors) == 0 {
		return false
	}
	for _, a := range d.Accessors {
		if !a.IsAuto() {
			return false
		}
	}
	return true
}

func hasSetter(d *syntax.PropertyDecl) bool {
	for _, a := range d.Accessors {
		if a.Kind == "set" || a.Kind == "init" {
			return true
		}
	}
	return false
}

// ----------------------------------------------------------------------------
// Compilation unit

func (t *translator) file(f *syntax.File) *pyast.Module {
	var imports, types, stmts []pyast.Stmt
	imports = append(imports, t.usings(f.Usings)...)
	t.decls(f.Decls, &imports, &types, &stmts)

	m := &pyast.Module{}
	m.Body = append(m.Body, imports...)
	m.Body = append(m.Body, types...)
	m.Body = append(m.Body, stmts...)
	return m
}

// decls sorts translated declarations into imports, types and top-level
// statements. Namespaces flatten into their parent.
func (t *translator) decls(list []syntax.Decl, imports, types, stmts *[]pyast.Stmt) {
	for _, d := range list {
		if t.err != nil {
			return
		}
		switch d := d.(type) {
		case *syntax.NamespaceDecl:
			*imports = append(*imports, t.usings(d.Usings)...)
			t.decls(d.Decls, imports, types, stmts)
		case *syntax.GlobalStmt:
			*stmts = append(*stmts, t.stmt(d.Stmt))
		default:
			if s := t.typeMember(d); s != nil {
				*types = append(*types, s)
			}
		}
	}
}

func (t *translator) usings(list []*syntax.UsingDecl) []pyast.Stmt {
	var out []pyast.Stmt
	for _, u := range list {
		path := dottedPath(u.Path)
		switch {
		case u.Static:
			t.unsupported(u, "using static", "static imports of %s have no translation", path)
		case path == "":
			t.unsupported(u, "UsingDecl", "using target %s is not a namespace name", syntax.TypeString(u.Path))
		case u.Alias != nil:
			out = append(out, &pyast.Import{Names: []pyast.Alias{{Name: path, AsName: ident(u.Alias.Value)}}})
		default:
			out = append(out, &pyast.FromImport{Module: path, Names: []pyast.Alias{{Name: "*"}}})
		}
	}
	return out
}

// dottedPath returns "A.B.C" for a qualified name, or "" if x is not one.
func dottedPath(x syntax.Expr) string {
	switch x := x.(type) {
	case *syntax.Name:
		return x.Value
	case *syntax.SelectorExpr:
		left, right := dottedPath(x.X), dottedPath(x.Sel)
		if left == "" || right == "" {
			return ""
		}
		return left + "." + right
	}
	return ""
}

// ----------------------------------------------------------------------------
// Types

// typeMember translates a type or type member declaration. It returns nil
// for declarations with no Python counterpart (interfaces, instance fields).
func (t *translator) typeMember(d syntax.Decl) pyast.Stmt {
	switch d := d.(type) {
	case *syntax.ClassDecl:
		return t.classDecl(d)
	case *syntax.EnumDecl:
		return t.enumDecl(d)
	case *syntax.MethodDecl:
		return t.method(d)
	case *syntax.PropertyDecl:
		return t.property(d)
	case *syntax.FieldDecl:
		return t.staticField(d)
	case *syntax.DtorDecl:
		t.unsupported(d, "destructor", "finalizers have no translation")
	case *syntax.IndexerDecl:
		t.unsupported(d, "indexer", "indexers have no translation")
	case *syntax.OperatorDecl:
		t.unsupported(d, "operator", "operator %s has no translation", d.Op)
	default:
		t.unsupported(d, nodeKind(d), "unexpected declaration")
	}
	return nil
}

// fieldInit is an instance slot initialized by the constructor.
type fieldInit struct {
	name  string // Python attribute name
	value syntax.Expr
}

func (t *translator) classDecl(d *syntax.ClassDecl) pyast.Stmt {
	if d.Kind == syntax.InterfaceKind {
		return nil
	}

	var bases []pyast.Expr
	if d.Kind == syntax.ClassKind {
		for _, b := range d.Bases {
			if ti := t.types[simpleName(b)]; ti != nil && ti.kind == syntax.InterfaceKind {
				continue
			}
			bases = append(bases, t.expr(b))
		}
	}
	hasBases := len(bases) > 0
	if d.Kind == syntax.ClassKind && !hasBases {
		bases = []pyast.Expr{pyName("object")}
	}

	ti := t.lookupType(d.Name.Value)
	if ti.emitted {
		t.unsupported(d, "partial type", "type %s is declared more than once", d.Name.Value)
		return nil
	}
	ti.emitted = true
	t.scope = append(t.scope, ti)
	defer func() { t.scope = t.scope[:len(t.scope)-1] }()

	var fields []fieldInit
	var ctor *syntax.CtorDecl
	for _, m := range d.Members {
		switch m := m.(type) {
		case *syntax.FieldDecl:
			if m.Mods.Has(syntax.ModStatic) || m.Mods.Has(syntax.ModConst) {
				continue
			}
			for _, v := range m.Vars {
				fields = append(fields, fieldInit{name: ident(v.Name.Value), value: v.Value})
			}
		case *syntax.PropertyDecl:
			if isAutoProperty(m) && !m.Mods.Has(syntax.ModStatic) {
				fields = append(fields, fieldInit{name: "_" + m.Name.Value, value: m.Value})
			}
		case *syntax.CtorDecl:
			if m.Mods.Has(syntax.ModStatic) {
				t.unsupported(m, "static constructor", "static constructors have no translation")
				continue
			}
			if ctor != nil {
				t.fail(diag.Multiplicityf(m.Pos(), "constructor", "type %s declares more than one constructor", d.Name.Value))
				continue
			}
			ctor = m
		}
	}

	var body []pyast.Stmt
	if len(d.TypeParams) > 0 {
		// Box[int]() must evaluate to the class itself
		body = append(body, &pyast.Assign{
			Targets: []pyast.Expr{pyName("__class_getitem__")},
			Value: call(pyName("classmethod"), pyast.NewLambda(
				[]*pyast.Param{{Name: "cls"}, {Name: "item"}}, pyName("cls"))),
		})
	}
	if ctor == nil && (len(fields) > 0 || hasBases) {
		body = append(body, t.ctor(d, nil, fields, hasBases))
	}
	for _, m := range d.Members {
		if t.err != nil {
			break
		}
		if c, ok := m.(*syntax.CtorDecl); ok {
			if c == ctor {
				body = append(body, t.ctor(d, c, fields, hasBases))
			}
			continue
		}
		if s := t.typeMember(m); s != nil {
			body = append(body, s)
		}
	}

	return pyast.NewClassDef(ident(d.Name.Value), bases, &pyast.Suite{Stmts: body})
}

func (t *translator) enumDecl(d *syntax.EnumDecl) pyast.Stmt {
	ti := t.lookupType(d.Name.Value)
	t.scope = append(t.scope, ti)
	defer func() { t.scope = t.scope[:len(t.scope)-1] }()

	saved := t.classBody
	t.classBody = true
	defer func() { t.classBody = saved }()

	var body []pyast.Stmt
	var prev string
	for i, m := range d.Members {
		var value pyast.Expr
		switch {
		case m.Value != nil:
			value = t.expr(m.Value)
		case i == 0:
			value = &pyast.Constant{Value: 0}
		default:
			value = &pyast.BinaryExpr{Op: pyast.Add, X: pyName(prev), Y: &pyast.Constant{Value: 1}}
		}
		prev = m.Name.Value
		body = append(body, &pyast.Assign{Targets: []pyast.Expr{pyName(m.Name.Value)}, Value: value})
	}
	return pyast.NewClassDef(ident(d.Name.Value), nil, &pyast.Suite{Stmts: body})
}

// staticField translates static fields and constants into class-level
// assignments. Instance fields are assigned by the constructor.
func (t *translator) staticField(d *syntax.FieldDecl) pyast.Stmt {
	if d.Event {
		t.unsupported(d, "event", "events have no translation")
		return nil
	}
	if !d.Mods.Has(syntax.ModStatic) && !d.Mods.Has(syntax.ModConst) {
		return nil
	}
	saved := t.classBody
	t.classBody = true
	defer func() { t.classBody = saved }()

	s := &pyast.Suite{}
	for _, v := range d.Vars {
		value := zeroValue(d.Type)
		if v.Value != nil {
			value = t.initializer(v.Value)
		}
		s.Stmts = append(s.Stmts, &pyast.Assign{Targets: []pyast.Expr{pyName(v.Name.Value)}, Value: value})
	}
	return s
}

// initializer translates a variable initializer, which may be a bare
// array initializer list.
func (t *translator) initializer(x syntax.Expr) pyast.Expr {
	if init, ok := x.(*syntax.InitExpr); ok {
		return t.initList(init)
	}
	return t.expr(x)
}

// ----------------------------------------------------------------------------
// Functions

func (t *translator) params(list []*syntax.Param) []*pyast.Param {
	var out []*pyast.Param
	for _, p := range list {
		prm := &pyast.Param{Name: ident(p.Name.Value)}
		switch p.Mod {
		case syntax.Ref, syntax.Out:
			t.unsupported(p, p.Mod.String()+" parameter", "by-reference parameter %s has no translation", p.Name.Value)
		case syntax.Params:
			prm.Kind = pyast.ParamVarList
		}
		if p.Default != nil {
			prm.Default = t.expr(p.Default)
		}
		out = append(out, prm)
	}
	return out
}

// memberParams translates the parameters of a type member. Defaults are
// evaluated in the class body, so static members stay unqualified.
func (t *translator) memberParams(list []*syntax.Param, static bool) []*pyast.Param {
	saved := t.classBody
	t.classBody = true
	defer func() { t.classBody = saved }()

	params := t.params(list)
	if static {
		return params
	}
	return append([]*pyast.Param{{Name: "self"}}, params...)
}

// funcBody translates a block or expression body. An expression body
// returns its value unless value is false.
func (t *translator) funcBody(body *syntax.BlockStmt, x syntax.Expr, value bool) pyast.Stmt {
	switch {
	case body != nil:
		return t.block(body)
	case x == nil:
		return &pyast.Suite{}
	case value:
		return &pyast.Return{Value: t.expr(x)}
	default:
		return t.exprStmt(x)
	}
}

func (t *translator) method(d *syntax.MethodDecl) pyast.Stmt {
	if d.Mods.Has(syntax.ModAsync) {
		t.unsupported(d, "async method", "async method %s has no translation", d.Name.Value)
		return nil
	}
	static := d.Mods.Has(syntax.ModStatic)
	params := t.memberParams(d.Params, static)

	t.enterFunc(!static, false, d.Params, d.Body, d.ExprBody)
	body := t.funcBody(d.Body, d.ExprBody, !isVoid(d.Result))
	t.leaveFunc()

	var decorators []pyast.Expr
	if static {
		decorators = append(decorators, pyName("staticmethod"))
	}
	fn := pyast.NewFunctionDef(ident(d.Name.Value), params, body, decorators...)
	fn.IsGenerator = containsYield(d.Body)
	return fn
}

func (t *translator) property(d *syntax.PropertyDecl) pyast.Stmt {
	name := ident(d.Name.Value)
	if d.Mods.Has(syntax.ModStatic) {
		t.unsupported(d, "static property", "static property %s has no translation", d.Name.Value)
		return nil
	}
	getter := func(body pyast.Stmt, generator bool) *pyast.FunctionDef {
		fn := pyast.NewFunctionDef(name, []*pyast.Param{{Name: "self"}}, body, pyName("property"))
		fn.IsGenerator = generator
		return fn
	}
	setter := func(body pyast.Stmt) *pyast.FunctionDef {
		return pyast.NewFunctionDef(name, []*pyast.Param{{Name: "self"}, {Name: "value"}}, body,
			&pyast.Member{X: pyName(d.Name.Value), Name: "setter"})
	}
	backing := &pyast.Member{X: self(), Name: "_" + d.Name.Value}

	if d.ExprBody != nil {
		t.enterFunc(true, false, nil, d.ExprBody)
		body := &pyast.Return{Value: t.expr(d.ExprBody)}
		t.leaveFunc()
		return getter(body, false)
	}

	if isAutoProperty(d) {
		s := &pyast.Suite{Stmts: []pyast.Stmt{getter(&pyast.Return{Value: backing}, false)}}
		if hasSetter(d) {
			s.Stmts = append(s.Stmts, setter(&pyast.Assign{
				Targets: []pyast.Expr{&pyast.Member{X: self(), Name: "_" + d.Name.Value}},
				Value:   pyName("value"),
			}))
		}
		return s
	}

	s := &pyast.Suite{}
	var get, set *syntax.Accessor
	for _, a := range d.Accessors {
		switch {
		case a.IsAuto():
			t.unsupported(a, "property accessor", "property %s mixes automatic and explicit accessors", d.Name.Value)
			return nil
		case a.Kind == "get":
			get = a
		default:
			set = a
		}
	}
	if get == nil {
		t.unsupported(d, "property", "set-only property %s has no translation", d.Name.Value)
		return nil
	}

	t.enterFunc(true, false, nil, get.Body, get.ExprBody)
	s.Stmts = append(s.Stmts, getter(t.funcBody(get.Body, get.ExprBody, true), containsYield(get.Body)))
	t.leaveFunc()

	if set != nil {
		f := t.enterFunc(true, false, nil, set.Body, set.ExprBody)
		f.locals["value"] = true
		s.Stmts = append(s.Stmts, setter(t.funcBody(set.Body, set.ExprBody, false)))
		t.leaveFunc()
	}
	return s
}

// ctor translates the constructor c of d, or synthesizes one when c is
// nil. The body is the base call, then the initializers of fields the body
// does not assign at its top level, then the body itself.
func (t *translator) ctor(d *syntax.ClassDecl, c *syntax.CtorDecl, fields []fieldInit, hasBases bool) pyast.Stmt {
	var params []*pyast.Param
	var stmts []pyast.Stmt

	if c != nil {
		params = t.memberParams(c.Params, false)
	} else {
		params = []*pyast.Param{{Name: "self"}}
	}

	var baseArgs []*syntax.Arg
	callBase := hasBases
	if c != nil && c.Init != nil {
		if c.Init.This {
			t.unsupported(c.Init, "constructor chaining", "this(...) initializers have no translation")
			return nil
		}
		baseArgs = c.Init.Args
		callBase = true
	}
	if callBase {
		t.enterFunc(true, true, ctorParams(c))
		init := &pyast.Call{Func: &pyast.Member{X: t.super(d), Name: "__init__"}, Args: t.args(baseArgs)}
		t.leaveFunc()
		stmts = append(stmts, &pyast.ExprStmt{X: init})
	}

	// field initializers see no constructor locals
	assigned := t.assignedFields(c)
	t.enterFunc(true, true, nil)
	for _, f := range fields {
		if assigned[f.name] {
			continue
		}
		value := none()
		if f.value != nil {
			value = t.initializer(f.value)
		}
		stmts = append(stmts, &pyast.Assign{
			Targets: []pyast.Expr{&pyast.Member{X: self(), Name: f.name}},
			Value:   value,
		})
	}
	t.leaveFunc()

	if c != nil {
		t.enterFunc(true, true, c.Params, c.Body, c.ExprBody)
		stmts = append(stmts, t.funcBody(c.Body, c.ExprBody, false))
		t.leaveFunc()
	}
	return pyast.NewFunctionDef("__init__", params, &pyast.Suite{Stmts: stmts})
}

func ctorParams(c *syntax.CtorDecl) []*syntax.Param {
	if c == nil {
		return nil
	}
	return c.Params
}

// assignedFields returns the Python names of the fields that the top level
// of the constructor body assigns with =. Auto-property assignments count
// for their backing slot.
func (t *translator) assignedFields(c *syntax.CtorDecl) map[string]bool {
	assigned := make(map[string]bool)
	if c == nil || c.Body == nil {
		return assigned
	}
	params := make(map[string]bool)
	collectLocals(c.Body, params)
	for _, p := range c.Params {
		params[p.Name.Value] = true
	}
	ti := t.scope[len(t.scope)-1]

	for _, s := range c.Body.Stmts {
		es, ok := s.(*syntax.ExprStmt)
		if !ok {
			continue
		}
		for x := es.X; ; {
			a, ok := x.(*syntax.AssignExpr)
			if !ok || a.Op != syntax.Assign {
				break
			}
			var name string
			switch lhs := a.LHS.(type) {
			case *syntax.Name:
				if !params[lhs.Value] {
					name = lhs.Value
				}
			case *syntax.SelectorExpr:
				if _, ok := lhs.X.(*syntax.ThisExpr); ok {
					name = simpleName(lhs.Sel)
				}
			}
			if m := ti.members[name]; m != nil && !m.static {
				if m.auto {
					assigned["_"+name] = true
				} else {
					assigned[ident(name)] = true
				}
			}
			x = a.RHS
		}
	}
	return assigned
}

// super returns super(Type, self) for the innermost open type.
func (t *translator) super(n syntax.Node) pyast.Expr {
	if len(t.scope) == 0 || t.fn == nil || !t.fn.self {
		t.unsupported(n, "base", "base access outside of an instance member")
		return none()
	}
	return call(pyName("super"), dotted(t.scope[len(t.scope)-1].path), self())
}

func isVoid(x syntax.Expr) bool {
	p, ok := x.(*syntax.PredefinedType)
	return ok && p.Tok == syntax.Void
}

// containsYield reports whether body yields, ignoring nested functions.
func containsYield(body *syntax.BlockStmt) bool {
	if body == nil {
		return false
	}
	found := false
	syntax.Inspect(body, func(n syntax.Node) bool {
		switch n.(type) {
		case *syntax.YieldStmt:
			found = true
		case *syntax.FuncStmt, *syntax.LambdaExpr:
			return false
		}
		return !found
	})
	return found
}
