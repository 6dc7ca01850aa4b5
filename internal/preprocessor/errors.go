package preprocessor

import (
	"errors"
	"fmt"

	"github.com/retroenv/romkit/internal/source"
)

var (
	ErrIncludeDepth    = errors.New("include nesting too deep")
	ErrInvalidOperand  = errors.New("invalid #if operand")
	errUnsupportedType = errors.New("unsupported directive type")
)

// PositionError annotates an error with the source line that caused it.
type PositionError struct {
	Pos       source.Position
	Directive string // directive keyword without #, empty for code lines
	Err       error
}

func (e *PositionError) Error() string {
	if e.Directive == "" {
		return fmt.Sprintf("%s: %v", e.Pos, e.Err)
	}
	return fmt.Sprintf("%s: #%s: %v", e.Pos, e.Directive, e.Err)
}

func (e *PositionError) Unwrap() error {
	return e.Err
}

func wrapLine(line source.Line, err error) error {
	var posErr *PositionError
	if errors.As(err, &posErr) {
		return err // already annotated by an included file
	}
	return &PositionError{
		Pos:       line.Pos,
		Directive: line.Directive,
		Err:       err,
	}
}
