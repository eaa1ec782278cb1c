package translate

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/you-not-fish/cs2py/internal/diag"
	"github.com/you-not-fish/cs2py/internal/pyast"
	"github.com/you-not-fish/cs2py/internal/syntax"
)

func (t *translator) basicLit(x *syntax.BasicLit) pyast.Expr {
	switch x.Kind {
	case syntax.IntLit:
		v, ok := parseInt(x.Value)
		if !ok {
			t.fail(diag.Errorf(diag.UnsupportedLiteral, x.Pos(), "integer literal", "%s does not fit in 64 bits", x.Value))
			return none()
		}
		return &pyast.Constant{Value: v}
	case syntax.RealLit:
		s := strings.TrimRight(strings.ReplaceAll(x.Value, "_", ""), "fFdDmM")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil && !math.IsInf(f, 0) {
			t.fail(diag.Errorf(diag.UnsupportedLiteral, x.Pos(), "real literal", "malformed literal %s", x.Value))
			return none()
		}
		return &pyast.Constant{Value: f}
	case syntax.StringLit, syntax.CharLit:
		return &pyast.Constant{Value: x.Value}
	}
	t.fail(diag.Errorf(diag.UnsupportedLiteral, x.Pos(), "literal", "unknown literal kind %v", x.Kind))
	return none()
}

// parseInt parses an integer literal as an int64, or a uint64 when it does
// not fit. Hex and binary prefixes are honored; a leading zero is decimal.
func parseInt(lit string) (interface{}, bool) {
	s := strings.ReplaceAll(lit, "_", "")
	s = strings.TrimRight(s, "uUlL")
	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base, s = 16, s[2:]
		case 'b', 'B':
			base, s = 2, s[2:]
		}
	}
	n, ok := new(big.Int).SetString(s, base)
	switch {
	case !ok:
		return nil, false
	case n.IsInt64():
		return n.Int64(), true
	case n.IsUint64():
		return n.Uint64(), true
	}
	return nil, false
}

// interpolated translates $"..." into "template".format(args).
func (t *translator) interpolated(x *syntax.InterpolatedString) pyast.Expr {
	var tmpl strings.Builder
	var args []*pyast.Arg
	for _, p := range x.Parts {
		if p.X == nil {
			tmpl.WriteString(strings.NewReplacer("{", "{{", "}", "}}").Replace(p.Text))
			continue
		}
		spec, ok := t.formatSpec(p)
		if !ok {
			return none()
		}
		tmpl.WriteString("{" + spec + "}")
		args = append(args, &pyast.Arg{Value: t.expr(p.X)})
	}
	return &pyast.Call{
		Func: &pyast.Member{X: &pyast.Constant{Value: tmpl.String()}, Name: "format"},
		Args: args,
	}
}

// formatSpec maps the alignment and .NET standard numeric format of an
// interpolation hole to a Python format spec, including the leading colon.
func (t *translator) formatSpec(p *syntax.InterpPart) (string, bool) {
	var align string
	if p.Align != nil {
		n, ok := alignment(p.Align)
		if !ok {
			t.unsupported(p.Align, "interpolation alignment", "alignment must be an integer constant")
			return "", false
		}
		if n < 0 {
			align = "<" + strconv.Itoa(-n)
		} else {
			align = ">" + strconv.Itoa(n)
		}
	}
	if p.Format == "" {
		if align == "" {
			return "", true
		}
		return ":" + align, true
	}

	f := p.Format
	prec := -1
	if len(f) > 1 {
		n, err := strconv.Atoi(f[1:])
		if err != nil || n < 0 || n > 99 {
			t.unsupported(p, "format string", "format %q has no translation", f)
			return "", false
		}
		prec = n
	}
	precision := func(def int) string {
		if prec < 0 {
			prec = def
		}
		return strconv.Itoa(prec)
	}

	var spec string
	switch f[0] {
	case 'F', 'f':
		spec = "." + precision(2) + "f"
	case 'N', 'n':
		spec = ",." + precision(2) + "f"
	case 'E':
		spec = "." + precision(6) + "E"
	case 'e':
		spec = "." + precision(6) + "e"
	case 'P', 'p':
		spec = "." + precision(2) + "%"
	case 'G', 'g':
		if prec > 0 {
			spec = "." + strconv.Itoa(prec) + "g"
		}
	case 'D', 'd', 'X', 'x':
		if align != "" {
			t.unsupported(p, "format string", "zero-padded format %q cannot be combined with alignment", f)
			return "", false
		}
		typ := "d"
		if f[0] == 'X' || f[0] == 'x' {
			typ = string(f[0])
		}
		if prec > 0 {
			spec = "0" + strconv.Itoa(prec) + typ
		} else {
			spec = typ
		}
	default:
		t.unsupported(p, "format string", "format %q has no translation", f)
		return "", false
	}
	if align+spec == "" {
		return "", true
	}
	return ":" + align + spec, true
}

// alignment evaluates an alignment clause, which is a possibly negated
// integer literal.
func alignment(x syntax.Expr) (int, bool) {
	sign := 1
	if op, ok := x.(*syntax.Operation); ok && op.Y == nil && op.Op == syntax.Sub {
		sign, x = -1, op.X
	}
	lit, ok := x.(*syntax.BasicLit)
	if !ok || lit.Kind != syntax.IntLit {
		return 0, false
	}
	n, err := strconv.Atoi(lit.Value)
	if err != nil {
		return 0, false
	}
	return sign * n, true
}
