// Package diag defines the error values reported by the translation stages.
//
// Every stage after parsing fails fast with a *Error. Callers match on the
// kind with errors.As or IsKind.
package diag

import (
	"errors"
	"fmt"

	"github.com/you-not-fish/cs2py/internal/syntax"
)

// Kind classifies a translation failure.
type Kind int

const (
	// Unsupported reports a source construct with no translation rule.
	Unsupported Kind = iota
	// InvalidAnchor reports a block-bodied lambda in a position that cannot
	// receive a hoisted function, such as a field initializer.
	InvalidAnchor
	// UnsupportedLiteral reports a constant the printer cannot render.
	UnsupportedLiteral
	// UnsupportedMultiplicity reports a construct used with more items than
	// the translation allows: multiple constructors, multi-dimensional
	// element access, duplicate switch labels.
	UnsupportedMultiplicity
)

var kindNames = [...]string{
	Unsupported:             "unsupported",
	InvalidAnchor:           "invalid anchor",
	UnsupportedLiteral:      "unsupported literal",
	UnsupportedMultiplicity: "unsupported multiplicity",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a translation failure at a source position.
type Error struct {
	Kind      Kind
	Construct string     // offending construct, e.g. "LockStmt" or "field initializer"
	Pos       syntax.Pos // zero if unknown
	Msg       string
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Construct != "" {
		msg += " " + e.Construct
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Pos.IsValid() {
		return e.Pos.String() + ": " + msg
	}
	return msg
}

// Errorf returns a *Error of the given kind with a formatted message.
func Errorf(kind Kind, pos syntax.Pos, construct, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Construct: construct, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Unsupportedf reports a construct without a translation rule.
func Unsupportedf(pos syntax.Pos, construct, format string, args ...interface{}) *Error {
	return Errorf(Unsupported, pos, construct, format, args...)
}

// InvalidAnchorf reports a block lambda that cannot be hoisted.
func InvalidAnchorf(pos syntax.Pos, construct, format string, args ...interface{}) *Error {
	return Errorf(InvalidAnchor, pos, construct, format, args...)
}

// Multiplicityf reports a construct used with too many items.
func Multiplicityf(pos syntax.Pos, construct, format string, args ...interface{}) *Error {
	return Errorf(UnsupportedMultiplicity, pos, construct, format, args...)
}

// IsKind reports whether err, or any error it wraps, is a *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
