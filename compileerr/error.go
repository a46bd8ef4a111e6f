// Package compileerr defines the compiler's typed error kinds. Every
// error is fatal: the compiler does not attempt to recover or continue,
// and the first error raised wins.
package compileerr

import (
	"fmt"

	"nilanc/token"
)

// Kind names one of the eleven error categories the compiler can signal.
type Kind string

const (
	InvalidInput         Kind = "InvalidInput"
	ExpectedToken        Kind = "ExpectedToken"
	NotDeclared          Kind = "NotDeclared"
	DuplicateDeclaration Kind = "DuplicateDeclaration"
	AssignToConstant     Kind = "AssignToConstant"
	InvalidAssignment    Kind = "InvalidAssignment"
	TypeError            Kind = "TypeError"
	NotValidReturn       Kind = "NotValidReturn"
	ParamError           Kind = "ParamError"
	NotWhile             Kind = "NotWhile"
	NoMain               Kind = "NoMain"
)

// Error is the compiler's single error type. Detail carries
// human-readable context; Error() itself prints only the contract
// required by the CLI (§7 of the spec): "<kind> at (<line>,<col>)".
type Error struct {
	Kind   Kind
	Pos    token.Position
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Kind, e.Pos)
}

// Long includes Detail for diagnostics richer than the CLI contract
// requires (used by the repl dev command).
func (e *Error) Long() string {
	if e.Detail == "" {
		return e.Error()
	}
	return fmt.Sprintf("%s: %s", e.Error(), e.Detail)
}

func New(kind Kind, pos token.Position, detail string) *Error {
	return &Error{Kind: kind, Pos: pos, Detail: detail}
}

func Invalidf(pos token.Position, format string, args ...any) *Error {
	return New(InvalidInput, pos, fmt.Sprintf(format, args...))
}

func Expected(pos token.Position, expected token.Kind, got token.Kind) *Error {
	return New(ExpectedToken, pos, fmt.Sprintf("expected %s, got %s", expected, got))
}

func NotDeclaredf(pos token.Position, name string) *Error {
	return New(NotDeclared, pos, fmt.Sprintf("%q is not declared", name))
}

func Duplicatef(pos token.Position, name string) *Error {
	return New(DuplicateDeclaration, pos, fmt.Sprintf("%q is already declared in this scope", name))
}

func AssignConstf(pos token.Position, name string) *Error {
	return New(AssignToConstant, pos, fmt.Sprintf("%q is declared const", name))
}

func InvalidAssignf(pos token.Position, format string, args ...any) *Error {
	return New(InvalidAssignment, pos, fmt.Sprintf(format, args...))
}

func Typef(pos token.Position, format string, args ...any) *Error {
	return New(TypeError, pos, fmt.Sprintf(format, args...))
}

func NotValidReturnf(pos token.Position, format string, args ...any) *Error {
	return New(NotValidReturn, pos, fmt.Sprintf(format, args...))
}

func Paramf(pos token.Position, format string, args ...any) *Error {
	return New(ParamError, pos, fmt.Sprintf(format, args...))
}

func NotWhilef(pos token.Position, keyword string) *Error {
	return New(NotWhile, pos, fmt.Sprintf("%q outside a loop", keyword))
}

func NoMainAt(pos token.Position) *Error {
	return New(NoMain, pos, "no main function declared")
}
