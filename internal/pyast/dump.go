package pyast

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

// Fdump writes the structure of the tree rooted at n to w, one node per
// line, children indented. Zero-valued fields are omitted.
func Fdump(w io.Writer, n Node) {
	d := &dumper{w: w}
	d.node(n)
}

type dumper struct {
	w      io.Writer
	indent int
}

func (d *dumper) printf(format string, args ...interface{}) {
	fmt.Fprintf(d.w, "%s%s", strings.Repeat("  ", d.indent), fmt.Sprintf(format, args...))
}

func (d *dumper) node(n interface{}) {
	// leaves print on one line
	switch n := n.(type) {
	case *Name:
		d.printf("Name %q\n", n.ID)
		return
	case *Constant:
		d.printf("Constant %s\n", constantString(n.Value))
		return
	case *Break, *Continue, *Empty:
		d.printf("%s\n", reflect.TypeOf(n).Elem().Name())
		return
	}

	v := reflect.ValueOf(n)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			d.printf("<nil>\n")
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		d.printf("%v\n", n)
		return
	}
	t := v.Type()
	d.printf("%s\n", t.Name())
	d.indent++
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.IsExported() {
			d.field(f.Name, v.Field(i))
		}
	}
	switch n := n.(type) {
	case *FunctionDef:
		d.list("Decorators", reflect.ValueOf(n.Decorators()))
	case *ClassDef:
		d.list("Decorators", reflect.ValueOf(n.Decorators()))
	}
	d.indent--
}

func (d *dumper) field(name string, v reflect.Value) {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return
		}
		d.printf("%s:\n", name)
		d.indent++
		d.node(v.Interface())
		d.indent--
		return
	case reflect.Slice:
		d.list(name, v)
		return
	case reflect.String:
		if v.String() != "" {
			d.printf("%s: %q\n", name, v.String())
		}
		return
	}
	if !v.IsZero() {
		d.printf("%s: %v\n", name, v.Interface())
	}
}

func (d *dumper) list(name string, v reflect.Value) {
	if v.Len() == 0 {
		return
	}
	d.printf("%s:\n", name)
	d.indent++
	for i := 0; i < v.Len(); i++ {
		e := v.Index(i)
		switch e.Kind() {
		case reflect.Struct:
			d.node(e.Addr().Interface())
		case reflect.Interface, reflect.Pointer:
			if e.IsNil() {
				d.printf("<nil>\n")
			} else {
				d.node(e.Interface())
			}
		default:
			d.printf("%v\n", e.Interface())
		}
	}
	d.indent--
}

func constantString(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "None"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v (%T)", v, v)
	}
}
