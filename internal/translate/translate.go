// Package translate maps a C# syntax tree to a Python syntax tree.
//
// Translation is syntax directed: each source node kind has one rule, and
// a node without a rule fails with a *diag.Error rather than being dropped.
// Block-bodied lambdas must have been hoisted (package hoist) beforehand.
package translate

import (
	"fmt"
	"strings"

	"github.com/you-not-fish/cs2py/internal/diag"
	"github.com/you-not-fish/cs2py/internal/pyast"
	"github.com/you-not-fish/cs2py/internal/syntax"
)

// DefaultConvertBridge is the function called for casts to types without a
// Python builtin conversion.
const DefaultConvertBridge = "clr.Convert"

// Config controls translation.
type Config struct {
	// ConvertBridge is the dotted name of the two-argument conversion
	// function, DefaultConvertBridge if empty.
	ConvertBridge string
}

func (c Config) bridge() string {
	if c.ConvertBridge == "" {
		return DefaultConvertBridge
	}
	return c.ConvertBridge
}

// File translates a compilation unit.
func File(file *syntax.File, cfg Config) (*pyast.Module, error) {
	t := newTranslator(cfg)
	t.collectTypes(file)
	m := t.file(file)
	if t.err != nil {
		return nil, t.err
	}
	return m, nil
}

// Expr translates a single expression outside of any type or function.
func Expr(x syntax.Expr, cfg Config) (pyast.Expr, error) {
	t := newTranslator(cfg)
	e := t.expr(x)
	if t.err != nil {
		return nil, t.err
	}
	return e, nil
}

// translator holds the state of one translation. Nothing outlives the call.
type translator struct {
	cfg Config
	err error // first error; later output is discarded

	types map[string]*typeInfo // types declared in the unit, by simple name
	paths map[string]*typeInfo // the same, by dotted Python path
	scope []*typeInfo          // open type declarations, innermost last
	fn    *funcInfo            // innermost function being translated, nil at top level

	classBody bool // translating a class-level statement such as a static field
	inSwitch  bool // a break here would leave a switch section
	tmp       int  // counter for __switch_N and __loop_N temporaries
}

func newTranslator(cfg Config) *translator {
	return &translator{
		cfg:   cfg,
		types: make(map[string]*typeInfo),
		paths: make(map[string]*typeInfo),
	}
}

// funcInfo describes the function whose body is being translated.
type funcInfo struct {
	outer  *funcInfo
	self   bool            // has a self parameter
	ctor   bool            // is the constructor of the innermost type
	locals map[string]bool // parameters and locals declared anywhere in the member
}

func (t *translator) fail(err *diag.Error) {
	if t.err == nil {
		t.err = err
	}
}

func (t *translator) unsupported(n syntax.Node, construct, format string, args ...interface{}) {
	t.fail(diag.Unsupportedf(n.Pos(), construct, format, args...))
}

// nodeKind returns the source node type name, e.g. "LockStmt".
func nodeKind(n syntax.Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*syntax.")
}

// ----------------------------------------------------------------------------
// Names

// pyKeywords are Python reserved words that are valid C# identifiers.
var pyKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "assert": true,
	"async": true, "await": true, "def": true, "del": true, "elif": true,
	"except": true, "from": true, "global": true, "import": true,
	"lambda": true, "nonlocal": true, "not": true, "or": true, "pass": true,
	"raise": true, "with": true, "yield": true,
	// C# keywords usable as @identifiers
	"as": true, "break": true, "class": true, "continue": true, "else": true,
	"finally": true, "for": true, "if": true, "in": true, "is": true,
	"return": true, "try": true, "while": true,
}

// ident returns a Python-safe spelling of a C# identifier.
func ident(s string) string {
	if pyKeywords[s] {
		return s + "_"
	}
	return s
}

func pyName(id string) *pyast.Name {
	return &pyast.Name{ID: ident(id)}
}

// dotted builds the member chain for a dotted name such as "clr.Convert".
func dotted(path string) pyast.Expr {
	parts := strings.Split(path, ".")
	var x pyast.Expr = &pyast.Name{ID: parts[0]}
	for _, p := range parts[1:] {
		x = &pyast.Member{X: x, Name: p}
	}
	return x
}

func call(fn pyast.Expr, args ...pyast.Expr) *pyast.Call {
	c := &pyast.Call{Func: fn}
	for _, a := range args {
		c.Args = append(c.Args, &pyast.Arg{Value: a})
	}
	return c
}

func self() pyast.Expr { return &pyast.Name{ID: "self"} }

func none() pyast.Expr { return &pyast.Constant{Value: nil} }

// lookupMember resolves an unqualified identifier against the open types
// and their bases declared in the unit. It returns the Python expression
// for the member, or nil if id is not a member.
func (t *translator) lookupMember(id string) pyast.Expr {
	if t.fn != nil && t.fn.isLocal(id) {
		return nil
	}
	for i := len(t.scope) - 1; i >= 0; i-- {
		owner, m := t.findMember(t.scope[i], id, 0)
		if m == nil {
			continue
		}
		if m.static {
			if t.classBody && owner == t.scope[len(t.scope)-1] {
				// plain names resolve inside the class body itself
				return nil
			}
			return &pyast.Member{X: dotted(owner.path), Name: ident(id)}
		}
		if t.fn != nil && t.fn.self && i == len(t.scope)-1 {
			return &pyast.Member{X: self(), Name: t.attr(id, m)}
		}
		return nil
	}
	return nil
}

// attr returns the attribute name of an instance member. Constructors
// write get-only auto-properties through their backing slot.
func (t *translator) attr(id string, m *member) string {
	if m.autoGet && t.fn != nil && t.fn.ctor {
		return "_" + id
	}
	return ident(id)
}

func (t *translator) findMember(ti *typeInfo, id string, depth int) (*typeInfo, *member) {
	if m, ok := ti.members[id]; ok {
		return ti, m
	}
	if depth > len(t.types) {
		return nil, nil // cyclic base list
	}
	for _, b := range ti.bases {
		if base := t.types[b]; base != nil {
			if owner, m := t.findMember(base, id, depth+1); m != nil {
				return owner, m
			}
		}
	}
	return nil, nil
}

func (f *funcInfo) isLocal(id string) bool {
	for ; f != nil; f = f.outer {
		if f.locals[id] {
			return true
		}
	}
	return false
}

// enterFunc opens a function scope whose locals are collected from the
// given parameters and body nodes.
func (t *translator) enterFunc(hasSelf, ctor bool, params []*syntax.Param, body ...syntax.Node) *funcInfo {
	f := &funcInfo{outer: t.fn, self: hasSelf, ctor: ctor, locals: make(map[string]bool)}
	for _, p := range params {
		f.locals[p.Name.Value] = true
	}
	for _, n := range body {
		if b, ok := n.(*syntax.BlockStmt); n == nil || ok && b == nil {
			continue
		}
		collectLocals(n, f.locals)
	}
	if t.fn != nil && t.fn.self {
		// nested functions see self through their closure
		f.self = true
	}
	t.fn = f
	return f
}

func (t *translator) leaveFunc() {
	t.fn = t.fn.outer
}

// collectLocals records every name declared under n.
func collectLocals(n syntax.Node, locals map[string]bool) {
	syntax.Inspect(n, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.Param:
			locals[n.Name.Value] = true
		case *syntax.VarSpec:
			locals[n.Name.Value] = true
		case *syntax.FuncStmt:
			locals[n.Name.Value] = true
		case *syntax.ForeachStmt:
			locals[n.Name.Value] = true
		case *syntax.CatchClause:
			if n.Name != nil {
				locals[n.Name.Value] = true
			}
		case *syntax.IsExpr:
			if n.Var != nil {
				locals[n.Var.Value] = true
			}
		}
		return true
	})
}

// newTemp returns a fresh temporary name with the given prefix.
func (t *translator) newTemp(prefix string) string {
	name := fmt.Sprintf("%s_%d", prefix, t.tmp)
	t.tmp++
	return name
}
