package passes

import (
	"fmt"

	"github.com/you-not-fish/cs2py/internal/syntax"
)

// Verify checks structural invariants every pass must preserve: no nil
// entries in declaration or statement lists.
func Verify(f *syntax.File) error {
	if f == nil {
		return fmt.Errorf("nil file")
	}
	if err := checkDecls(f.Decls); err != nil {
		return err
	}
	var err error
	syntax.Inspect(f, func(n syntax.Node) bool {
		if err != nil {
			return false
		}
		switch n := n.(type) {
		case *syntax.NamespaceDecl:
			err = checkDecls(n.Decls)
		case *syntax.BlockStmt:
			for i, s := range n.Stmts {
				if s == nil {
					err = fmt.Errorf("%s: nil statement at index %d", n.Pos(), i)
					break
				}
			}
		}
		return err == nil
	})
	return err
}

func checkDecls(list []syntax.Decl) error {
	for i, d := range list {
		if d == nil {
			return fmt.Errorf("nil declaration at index %d", i)
		}
	}
	return nil
}

// NoBlockLambdas reports the first lambda with a statement body left in f.
func NoBlockLambdas(f *syntax.File) error {
	var err error
	syntax.Inspect(f, func(n syntax.Node) bool {
		if err != nil {
			return false
		}
		if l, ok := n.(*syntax.LambdaExpr); ok && l.Block != nil {
			err = fmt.Errorf("%s: block-bodied lambda survived", l.Pos())
		}
		return err == nil
	})
	return err
}
