// Package diag holds the positioned errors shared by every stage of the comb
// pipeline.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. A *Error unwraps to exactly one of these, so callers can
// test for a kind with errors.Is.
var (
	ErrSyntax         = errors.New("syntax error")
	ErrIndentation    = errors.New("indentation error")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownMacro   = errors.New("unknown macro")
	ErrCyclicInclude  = errors.New("cyclic include")
)

type Position struct {
	File string
	Line int // 1-based, 0 when unknown
	Col  int // 1-based, 0 when unknown
}

func (p Position) String() string {
	switch {
	case p.Line == 0:
		return p.File
	case p.Col == 0:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
}

// Error is a compile failure located in a source file.
type Error struct {
	Kind    error
	Pos     Position
	Message string
}

func Errorf(kind error, pos Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// PositionAt returns the position of byte offset off within src.
func PositionAt(file, src string, off int) Position {
	if off > len(src) {
		off = len(src)
	}
	before := src[:off]
	line := strings.Count(before, "\n") + 1
	col := off - strings.LastIndexByte(before, '\n')
	return Position{File: file, Line: line, Col: col}
}
