package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/you-not-fish/cs2py/internal/syntax"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{
			Unsupportedf(syntax.NewPos("a.cs", 3, 7), "LockStmt", "no translation"),
			"a.cs:3:7: unsupported LockStmt: no translation",
		},
		{
			&Error{Kind: InvalidAnchor, Construct: "field initializer"},
			"invalid anchor field initializer",
		},
		{
			Multiplicityf(syntax.NewPos("", 1, 2), "", "%d constructors", 2),
			"1:2: unsupported multiplicity: 2 constructors",
		},
		{
			&Error{Kind: Kind(42), Msg: "odd"},
			"Kind(42): odd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("translate: %w", InvalidAnchorf(syntax.Pos{}, "property initializer", "lambda"))

	if !IsKind(err, InvalidAnchor) {
		t.Error("IsKind(wrapped, InvalidAnchor) = false")
	}
	if IsKind(err, Unsupported) {
		t.Error("IsKind(wrapped, Unsupported) = true")
	}
	if IsKind(errors.New("plain"), Unsupported) {
		t.Error("IsKind(plain error) = true")
	}
	if IsKind(nil, Unsupported) {
		t.Error("IsKind(nil) = true")
	}

	var e *Error
	if !errors.As(err, &e) || e.Construct != "property initializer" {
		t.Errorf("errors.As: got %+v", e)
	}
}

func TestKindString(t *testing.T) {
	kinds := map[Kind]string{
		Unsupported:             "unsupported",
		InvalidAnchor:           "invalid anchor",
		UnsupportedLiteral:      "unsupported literal",
		UnsupportedMultiplicity: "unsupported multiplicity",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
