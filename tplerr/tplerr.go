// Package tplerr defines the error taxonomy shared by the build and render
// phases of the template engine. Every error carries the offset of the
// construct that triggered it, the way cue/errors carries a token.Pos on
// every diagnostic — but unlike cue/errors.List, which accumulates many
// errors across a whole module load, an Error here is always singular:
// build and render abort on the first failure.
package tplerr

import (
	"errors"
	"fmt"

	"github.com/pete-tpl/pete-core/token"
)

// Cause identifies which member of the error taxonomy produced an Error.
// Callers compare against it with errors.Is.
type Cause struct {
	name string
}

func (c *Cause) Error() string { return c.name }

// Structural parse errors.
var (
	CannotRecognizeNode  = &Cause{"cannot recognize a node"}
	CommentNotClosed     = &Cause{"comment is not closed"}
	ExpressionNotClosed  = &Cause{"expression is not closed"}
	TagNotClosed         = &Cause{"tag is not closed"}
	UnknownKeyword       = &Cause{"unknown keyword"}
	UnclosedBlock        = &Cause{"unclosed block"}
	UnexpectedCharsInElse = &Cause{"unexpected characters in else block"}
	InfiniteLoopDetected = &Cause{"infinite loop detected"}
)

// Expression parse errors.
var (
	ExpressionSyntax     = &Cause{"expression syntax error"}
	StringLiteralNotClosed = &Cause{"string literal is not closed"}
	CannotParseFragment  = &Cause{"cannot parse expression fragment"}
)

// Evaluation errors.
var (
	VariableNotFound       = &Cause{"variable not found"}
	UnsupportedOperandTypes = &Cause{"unsupported operand types"}
	ModuloConstraint        = &Cause{"modulo constraint violated"}
	OperandMissing          = &Cause{"operand missing"}
)

// Error is the concrete error type produced by this module. It formats as
// the stable, user-visible contract string mandated by the spec:
//
//	An error ocurred at line L, position C: MESSAGE
//
// The misspelling "ocurred" is intentional and part of that contract.
type Error struct {
	Template string
	Offset   token.Pos
	Message  string
	cause    *Cause
}

// New creates an Error at offset within template, wrapping cause and
// describing it with message.
func New(template string, offset token.Pos, cause *Cause, message string) *Error {
	return &Error{Template: template, Offset: offset, Message: message, cause: cause}
}

// Newf is New with a printf-style message.
func Newf(template string, offset token.Pos, cause *Cause, format string, args ...interface{}) *Error {
	return New(template, offset, cause, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	pos := token.PositionFor(e.Template, int(e.Offset))
	return fmt.Sprintf("An error ocurred at line %d, position %d: %s", pos.Line, pos.Column, e.Message)
}

// Unwrap exposes the sentinel Cause so callers can use errors.Is(err, tplerr.CommentNotClosed).
func (e *Error) Unwrap() error {
	if e.cause == nil {
		return nil
	}
	return e.cause
}

// Is reports whether err's Cause matches target, supporting errors.Is against
// the Cause sentinels declared above.
func (e *Error) Is(target error) bool {
	c, ok := target.(*Cause)
	return ok && e.cause == c
}

// Position returns the (line, column) location of the error.
func (e *Error) Position() token.Position {
	return token.PositionFor(e.Template, int(e.Offset))
}

var _ error = (*Error)(nil)

// As is a thin re-export of the standard library's errors.As, kept here so
// callers working against this package don't need a second import for the
// common case of unwrapping an Error out of a returned error value —
// mirrored from cue/errors's own As/Is re-exports.
func As(err error, target interface{}) bool { return errors.As(err, target) }
