package syntax

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

// Fprint writes a textual representation of the AST to w.
func Fprint(w io.Writer, node Node) {
	p := &printer{w: w}
	p.print(node)
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

func (p *printer) print(node Node) {
	if isNilNode(node) {
		return
	}

	// leaves print on one line
	switch n := node.(type) {
	case *Name:
		p.printf("Name %s %q\n", n.pos, n.Value)
		return
	case *BasicLit:
		p.printf("BasicLit %s %s %q\n", n.pos, n.Kind, n.Value)
		return
	case *KeywordLit:
		p.printf("KeywordLit %s %s\n", n.pos, n.Tok)
		return
	case *PredefinedType:
		p.printf("PredefinedType %s %s\n", n.pos, n.Tok)
		return
	case *BranchStmt:
		p.printf("BranchStmt %s %s\n", n.pos, n.Tok)
		return
	case *ThisExpr, *BaseExpr, *EmptyStmt:
		p.printf("%s %s\n", nodeName(n), n.Pos())
		return
	}

	v := reflect.ValueOf(node).Elem()
	t := v.Type()
	p.printf("%s %s\n", t.Name(), node.Pos())
	p.indent++
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.IsExported() {
			p.field(f.Name, v.Field(i))
		}
	}
	p.indent--
}

// field prints one exported node field. Zero values are omitted.
func (p *printer) field(name string, v reflect.Value) {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return
		}
		if n, ok := v.Interface().(Node); ok {
			p.printf("%s:\n", name)
			p.indent++
			p.print(n)
			p.indent--
			return
		}
	case reflect.Slice:
		if v.Len() == 0 {
			return
		}
		p.printf("%s:\n", name)
		p.indent++
		for i := 0; i < v.Len(); i++ {
			if n, ok := v.Index(i).Interface().(Node); ok {
				if isNilNode(n) {
					p.printf("<nil>\n")
				} else {
					p.print(n)
				}
			} else {
				p.printf("%v\n", v.Index(i).Interface())
			}
		}
		p.indent--
		return
	case reflect.String:
		if v.String() != "" {
			p.printf("%s: %q\n", name, v.String())
		}
		return
	}
	if !v.IsZero() {
		p.printf("%s: %v\n", name, v.Interface())
	}
}

func isNilNode(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// nodeName returns the type name of a node, e.g. "IfStmt".
func nodeName(n Node) string {
	return reflect.TypeOf(n).Elem().Name()
}

// typeString returns a C#-like string representation of a type expression.
func typeString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch t := e.(type) {
	case *Name:
		return t.Value
	case *PredefinedType:
		return t.Name()
	case *GenericName:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = typeString(a)
		}
		return t.Name.Value + "<" + strings.Join(args, ", ") + ">"
	case *SelectorExpr:
		return typeString(t.X) + "." + typeString(t.Sel)
	case *NullableType:
		return typeString(t.Elem) + "?"
	case *ArrayType:
		return typeString(t.Elem) + "[" + strings.Repeat(",", t.Rank-1) + "]"
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

// TypeString returns the source form of a type expression such as
// List<int> or string[]; it is used in diagnostics.
func TypeString(e Expr) string {
	return typeString(e)
}
