package yartl

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCharacter   = errors.New("invalid character")
	ErrUnterminatedString = errors.New("unterminated string literal")

	ErrUnexpectedToken = errors.New("unexpected token")
	ErrUnexpectedEOF   = errors.New("unexpected end of input")
	ErrMaxDepth        = errors.New("maximum nesting depth exceeded")

	ErrUndefinedProperty    = errors.New("undefined property")
	ErrNotAnArray           = errors.New("not an array")
	ErrUnsupportedValueType = errors.New("unsupported value type")
)

// LexError reports a byte the lexer could not classify, or a string literal
// that runs to the end of input.
type LexError struct {
	Pos int
	Err error
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%v at offset %d", e.Err, e.Pos)
}

func (e *LexError) Unwrap() error { return e.Err }
func (e *LexError) Offset() int   { return e.Pos }

// ParseError reports a token that does not fit the grammar. Expected is
// TokenEOF when no single token kind would have been accepted.
type ParseError struct {
	Pos      int
	Expected TokenKind
	Found    TokenKind
	Err      error
}

func (e *ParseError) Error() string {
	switch e.Err {
	case ErrUnexpectedEOF:
		return fmt.Sprintf("unexpected end of input, expected %v", e.Expected)
	case ErrMaxDepth:
		return fmt.Sprintf("%v at offset %d", e.Err, e.Pos)
	}
	if e.Expected == TokenEOF {
		return fmt.Sprintf("unexpected %v at offset %d", e.Found, e.Pos)
	}
	return fmt.Sprintf("unexpected token: expected %v, found %v at offset %d", e.Expected, e.Found, e.Pos)
}

func (e *ParseError) Unwrap() error { return e.Err }
func (e *ParseError) Offset() int   { return e.Pos }

// EvalError reports a failure while rendering. Name is the property for
// ErrUndefinedProperty; Kind is the offending value kind otherwise.
type EvalError struct {
	Pos  int
	Name string
	Kind Kind
	Err  error
}

func (e *EvalError) Error() string {
	switch e.Err {
	case ErrUndefinedProperty:
		return fmt.Sprintf("%v %q: receiver is %v", e.Err, e.Name, e.Kind)
	case ErrNotAnArray:
		return fmt.Sprintf("cannot iterate over %v: %v", e.Kind, e.Err)
	case ErrUnsupportedValueType:
		return fmt.Sprintf("cannot render %v: %v", e.Kind, e.Err)
	}
	return e.Err.Error()
}

func (e *EvalError) Unwrap() error { return e.Err }
func (e *EvalError) Offset() int   { return e.Pos }
