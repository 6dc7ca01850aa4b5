// Package inclusion implements the conditional inclusion stack that decides
// whether source lines are live or skipped.
//
// Every opening conditional pushes exactly one frame and every #endif pops
// exactly one. Conditionals found inside a skipped scope push a Nested frame
// without evaluating their condition, so symbols are never queried from dead
// code and the pop count stays balanced.
package inclusion

import (
	"errors"
	"fmt"

	"github.com/retroenv/romkit/internal/source"
)

var (
	ErrElseWithoutIf           = errors.New("#else without matching conditional")
	ErrDuplicateElse           = errors.New("duplicate #else in conditional")
	ErrEndifWithoutIf          = errors.New("#endif without matching conditional")
	ErrUnterminatedConditional = errors.New("conditional not terminated by #endif")
)

// State is the state of a conditional scope.
type State uint8

const (
	Active   State = iota // lines are processed
	Inactive              // condition failed, lines are skipped
	Nested                // scope opened inside a skipped scope
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	case Nested:
		return "nested"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// SymbolTable is the symbol lookup used to evaluate #ifdef and #ifndef.
type SymbolTable interface {
	HasSymbol(name string) bool
}

type frame struct {
	state    State
	seenElse bool
	pos      source.Position
}

// Stack is the conditional inclusion stack of a preprocessing session.
// The zero value is an empty stack.
type Stack struct {
	frames []frame
	floor  int // frames below belong to an including source unit
}

// Ignoring returns whether lines at the current position are skipped.
func (s *Stack) Ignoring() bool {
	if len(s.frames) == 0 {
		return false
	}
	state := s.frames[len(s.frames)-1].state
	return state == Inactive || state == Nested
}

// Depth returns the number of open conditional scopes.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Top returns the state of the innermost scope.
func (s *Stack) Top() (State, bool) {
	if len(s.frames) == 0 {
		return Active, false
	}
	return s.frames[len(s.frames)-1].state, true
}

// Open pushes a new scope. The condition is only evaluated if the current
// scope is live, an error returned by it leaves the stack unchanged.
func (s *Stack) Open(pos source.Position, condition func() (bool, error)) error {
	if s.Ignoring() {
		s.push(pos, Nested)
		return nil
	}

	ok, err := condition()
	if err != nil {
		return err
	}
	s.pushResult(pos, ok)
	return nil
}

// Ifdef opens a scope that is active if the symbol is defined.
func (s *Stack) Ifdef(pos source.Position, symbols SymbolTable, name string) {
	s.openSymbol(pos, func() bool {
		return symbols.HasSymbol(name)
	})
}

// Ifndef opens a scope that is active if the symbol is not defined.
func (s *Stack) Ifndef(pos source.Position, symbols SymbolTable, name string) {
	s.openSymbol(pos, func() bool {
		return !symbols.HasSymbol(name)
	})
}

func (s *Stack) openSymbol(pos source.Position, defined func() bool) {
	if s.Ignoring() {
		s.push(pos, Nested)
		return
	}
	s.pushResult(pos, defined())
}

// Else switches the innermost scope to its alternative branch.
func (s *Stack) Else(pos source.Position) error {
	if len(s.frames) <= s.floor {
		return fmt.Errorf("%w at %s", ErrElseWithoutIf, pos)
	}

	top := &s.frames[len(s.frames)-1]
	if top.seenElse {
		return fmt.Errorf("%w at %s, conditional opened at %s", ErrDuplicateElse, pos, top.pos)
	}
	top.seenElse = true

	switch top.state {
	case Active:
		top.state = Inactive
	case Inactive:
		top.state = Active
	case Nested:
	}
	return nil
}

// Endif closes the innermost scope.
func (s *Stack) Endif(pos source.Position) error {
	if len(s.frames) <= s.floor {
		return fmt.Errorf("%w at %s", ErrEndifWithoutIf, pos)
	}
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// Close verifies that all scopes have been terminated.
func (s *Stack) Close() error {
	if len(s.frames) == 0 {
		return nil
	}
	top := s.frames[len(s.frames)-1]
	return fmt.Errorf("%w, %d open, innermost opened at %s", ErrUnterminatedConditional, len(s.frames), top.pos)
}

// Enter starts an included source unit. Scopes that are open at this point
// can not be switched or closed from inside the unit. The returned value
// has to be passed to Leave.
func (s *Stack) Enter() int {
	floor := s.floor
	s.floor = len(s.frames)
	return floor
}

// Leave ends a source unit started by Enter and verifies that the unit
// terminated all scopes it opened.
func (s *Stack) Leave(floor int) error {
	open := len(s.frames) - s.floor
	var err error
	if open > 0 {
		top := s.frames[len(s.frames)-1]
		err = fmt.Errorf("%w, %d open, innermost opened at %s", ErrUnterminatedConditional, open, top.pos)
	}
	s.floor = floor
	return err
}

func (s *Stack) pushResult(pos source.Position, ok bool) {
	if ok {
		s.push(pos, Active)
	} else {
		s.push(pos, Inactive)
	}
}

func (s *Stack) push(pos source.Position, state State) {
	s.frames = append(s.frames, frame{state: state, pos: pos})
}
