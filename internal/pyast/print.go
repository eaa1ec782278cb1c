package pyast

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/you-not-fish/cs2py/internal/diag"
	"github.com/you-not-fish/cs2py/internal/syntax"
)

const indentUnit = "    "

// Fprint writes the Python source for n to w. n is a *Module, a Stmt or an
// Expr. The first write or rendering error stops output and is returned.
func Fprint(w io.Writer, n Node) error {
	p := &printer{w: w}
	switch n := n.(type) {
	case *Module:
		for _, s := range n.Body {
			p.stmt(s)
		}
	case Stmt:
		p.stmt(n)
	case Expr:
		var b strings.Builder
		p.expr(&b, n)
		p.emitRaw("%s", b.String())
	default:
		p.fail(diag.Unsupportedf(syntax.Pos{}, fmt.Sprintf("%T", n), "cannot print node"))
	}
	return p.err
}

// Print returns the Python source for n.
func Print(n Node) (string, error) {
	var buf bytes.Buffer
	if err := Fprint(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// printer renders statements line by line. Expressions are rendered into
// a strings.Builder first and emitted as part of their statement's line.
type printer struct {
	w      io.Writer
	err    error // first write or rendering error
	indent int
}

func (p *printer) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// emit writes one indented line.
func (p *printer) emit(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, strings.Repeat(indentUnit, p.indent)+format+"\n", args...)
}

// emitRaw writes a formatted string without indentation or newline.
func (p *printer) emitRaw(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// block prints s one level deeper, or pass when s has no lines.
func (p *printer) block(s Stmt) {
	p.indent++
	defer func() { p.indent-- }()

	stmts := flatten(nil, s)
	if len(stmts) == 0 {
		p.emit("pass")
		return
	}
	for _, s := range stmts {
		p.stmt(s)
	}
}

// flatten appends the statements of s to list, expanding nested suites.
func flatten(list []Stmt, s Stmt) []Stmt {
	switch s := s.(type) {
	case nil:
	case *Suite:
		for _, x := range s.Stmts {
			list = flatten(list, x)
		}
	default:
		list = append(list, s)
	}
	return list
}

func (p *printer) stmt(s Stmt) {
	if p.err != nil {
		return
	}
	switch s := s.(type) {
	case *Suite:
		for _, x := range s.Stmts {
			p.stmt(x)
		}

	case *Empty:
		p.emit("pass")

	case *ExprStmt:
		// a yield statement needs no parentheses
		if y, ok := s.X.(*Yield); ok {
			p.emit("%s", p.yield(y))
			return
		}
		p.emit("%s", p.str(s.X))

	case *Assign:
		if len(s.Targets) == 0 {
			p.fail(diag.Unsupportedf(syntax.Pos{}, "Assign", "assignment without targets"))
			return
		}
		var b strings.Builder
		for _, t := range s.Targets {
			p.expr(&b, t)
			b.WriteString(" = ")
		}
		p.expr(&b, s.Value)
		p.emit("%s", b.String())

	case *AugAssign:
		p.emit("%s %s= %s", p.str(s.Target), s.Op, p.str(s.Value))

	case *If:
		if len(s.Clauses) == 0 {
			p.fail(diag.Unsupportedf(syntax.Pos{}, "If", "if without clauses"))
			return
		}
		for i, c := range s.Clauses {
			kw := "elif"
			if i == 0 {
				kw = "if"
			}
			p.emit("%s %s:", kw, p.str(c.Test))
			p.block(c.Body)
		}
		if s.Else != nil {
			p.emit("else:")
			p.block(s.Else)
		}

	case *For:
		p.emit("for %s in %s:", p.str(s.Target), p.str(s.Iter))
		p.block(s.Body)

	case *While:
		p.emit("while %s:", p.str(s.Test))
		p.block(s.Body)

	case *Return:
		if s.Value == nil {
			p.emit("return")
			return
		}
		p.emit("return %s", p.str(s.Value))

	case *Break:
		p.emit("break")

	case *Continue:
		p.emit("continue")

	case *Try:
		p.emit("try:")
		p.block(s.Body)
		for _, h := range s.Handlers {
			switch {
			case h.Type == nil:
				p.emit("except:")
			case h.Name == "":
				p.emit("except %s:", p.str(h.Type))
			default:
				p.emit("except %s as %s:", p.str(h.Type), h.Name)
			}
			p.block(h.Body)
		}
		if s.Finally != nil {
			p.emit("finally:")
			p.block(s.Finally)
		}

	case *Raise:
		if s.Exc == nil {
			p.emit("raise")
			return
		}
		p.emit("raise %s", p.str(s.Exc))

	case *With:
		if s.Var == "" {
			p.emit("with %s:", p.str(s.Context))
		} else {
			p.emit("with %s as %s:", p.str(s.Context), s.Var)
		}
		p.block(s.Body)

	case *FunctionDef:
		p.decorators(s.decorators)
		p.emit("def %s(%s):", s.Name, p.params(s.Params))
		p.block(s.Body)

	case *ClassDef:
		p.decorators(s.decorators)
		if len(s.Bases) == 0 {
			p.emit("class %s:", s.Name)
		} else {
			p.emit("class %s(%s):", s.Name, p.list(s.Bases))
		}
		p.block(s.Body)

	case *Import:
		names := make([]string, len(s.Names))
		for i, a := range s.Names {
			names[i] = a.String()
		}
		p.emit("import %s", strings.Join(names, ", "))

	case *FromImport:
		names := make([]string, len(s.Names))
		for i, a := range s.Names {
			names[i] = a.String()
		}
		p.emit("from %s import %s", s.Module, strings.Join(names, ", "))

	default:
		p.fail(diag.Unsupportedf(syntax.Pos{}, fmt.Sprintf("%T", s), "unknown statement"))
	}
}

func (a Alias) String() string {
	if a.AsName == "" {
		return a.Name
	}
	return a.Name + " as " + a.AsName
}

func (p *printer) decorators(list []Expr) {
	for _, d := range list {
		p.emit("@%s", p.str(d))
	}
}

func (p *printer) params(params []*Param) string {
	var b strings.Builder
	for i, prm := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		switch prm.Kind {
		case ParamVarList:
			b.WriteString("*")
		case ParamVarDict:
			b.WriteString("**")
		}
		b.WriteString(prm.Name)
		if prm.Default != nil {
			b.WriteString("=")
			p.expr(&b, prm.Default)
		}
	}
	return b.String()
}

// str renders x on its own.
func (p *printer) str(x Expr) string {
	var b strings.Builder
	p.expr(&b, x)
	return b.String()
}

func (p *printer) list(xs []Expr) string {
	var b strings.Builder
	for i, x := range xs {
		if i > 0 {
			b.WriteString(", ")
		}
		p.expr(&b, x)
	}
	return b.String()
}

func (p *printer) yield(y *Yield) string {
	if y.Value == nil {
		return "yield"
	}
	return "yield " + p.str(y.Value)
}

// ----------------------------------------------------------------------------
// Expressions

func (p *printer) expr(b *strings.Builder, x Expr) {
	switch x := x.(type) {
	case *Constant:
		s, err := constant(x.Value)
		if err != nil {
			p.fail(err)
			return
		}
		b.WriteString(s)

	case *Name:
		b.WriteString(x.ID)

	case *BinaryExpr:
		b.WriteString("(")
		p.operand(b, x.X)
		fmt.Fprintf(b, " %s ", x.Op)
		p.operand(b, x.Y)
		b.WriteString(")")

	case *AndExpr:
		b.WriteString("(")
		p.operand(b, x.X)
		b.WriteString(" and ")
		p.operand(b, x.Y)
		b.WriteString(")")

	case *OrExpr:
		b.WriteString("(")
		p.operand(b, x.X)
		b.WriteString(" or ")
		p.operand(b, x.Y)
		b.WriteString(")")

	case *UnaryExpr:
		if x.Op == Not {
			b.WriteString("(not ")
			p.operand(b, x.X)
			b.WriteString(")")
			return
		}
		b.WriteString(x.Op.String())
		p.operand(b, x.X)

	case *CondExpr:
		b.WriteString("(")
		p.operand(b, x.Body)
		b.WriteString(" if ")
		p.operand(b, x.Test)
		b.WriteString(" else ")
		p.operand(b, x.Else)
		b.WriteString(")")

	case *Call:
		p.primary(b, x.Func)
		b.WriteString("(")
		for i, a := range x.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			switch a.Kind {
			case ArgKeyword:
				b.WriteString(a.Name + "=")
			case ArgStar:
				b.WriteString("*")
			case ArgDoubleStar:
				b.WriteString("**")
			}
			p.expr(b, a.Value)
		}
		b.WriteString(")")

	case *Member:
		p.primary(b, x.X)
		b.WriteString("." + x.Name)

	case *Index:
		p.primary(b, x.X)
		b.WriteString("[")
		p.expr(b, x.Index)
		b.WriteString("]")

	case *Tuple:
		b.WriteString("(")
		for i, e := range x.Elts {
			if i > 0 {
				b.WriteString(", ")
			}
			p.expr(b, e)
		}
		if len(x.Elts) == 1 {
			b.WriteString(",")
		}
		b.WriteString(")")

	case *List:
		b.WriteString("[")
		for i, e := range x.Elts {
			if i > 0 {
				b.WriteString(", ")
			}
			p.expr(b, e)
		}
		b.WriteString("]")

	case *Lambda:
		f := x.Func
		ret, ok := f.Body.(*Return)
		if !ok || ret.Value == nil {
			p.fail(diag.Unsupportedf(syntax.Pos{}, "Lambda", "lambda body must be a single return of a value"))
			return
		}
		b.WriteString("lambda")
		if len(f.Params) > 0 {
			b.WriteString(" " + p.params(f.Params))
		}
		b.WriteString(": ")
		p.expr(b, ret.Value)

	case *Paren:
		b.WriteString("(")
		p.expr(b, x.X)
		b.WriteString(")")

	case *Yield:
		b.WriteString("(" + p.yield(x) + ")")

	default:
		p.fail(diag.Unsupportedf(syntax.Pos{}, fmt.Sprintf("%T", x), "unknown expression"))
	}
}

// operand renders an operand of an operator or conditional. A lambda
// would otherwise swallow the rest of the enclosing expression.
func (p *printer) operand(b *strings.Builder, x Expr) {
	if _, ok := x.(*Lambda); ok {
		b.WriteString("(")
		p.expr(b, x)
		b.WriteString(")")
		return
	}
	p.expr(b, x)
}

// primary renders the target of a call, member access or subscript.
func (p *printer) primary(b *strings.Builder, x Expr) {
	if needsParens(x) {
		b.WriteString("(")
		p.expr(b, x)
		b.WriteString(")")
		return
	}
	p.expr(b, x)
}

func needsParens(x Expr) bool {
	switch x := x.(type) {
	case *Lambda, *UnaryExpr:
		return true
	case *Constant:
		switch x.Value.(type) {
		case int, int64, uint64, float64, *big.Int:
			return true
		}
	}
	return false
}

// constant returns the Python literal for v.
func constant(v interface{}) (string, error) {
	switch v := v.(type) {
	case nil:
		return "None", nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case *big.Int:
		return v.String(), nil
	case float64:
		return floatLit(v), nil
	case string:
		return quote(v), nil
	}
	return "", diag.Errorf(diag.UnsupportedLiteral, syntax.Pos{}, fmt.Sprintf("%T", v), "no Python literal for %v", v)
}

func floatLit(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return `float("inf")`
	case math.IsInf(f, -1):
		return `float("-inf")`
	case math.IsNaN(f):
		return `float("nan")`
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// quote returns s as a double-quoted Python string literal.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
