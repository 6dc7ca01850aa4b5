// Package preprocessor drives a single build: it reads source lines,
// applies the conditional inclusion stack and dispatches the live
// directives to the layout store of the target.
package preprocessor

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/romkit/internal/directive"
	"github.com/retroenv/romkit/internal/inclusion"
	"github.com/retroenv/romkit/internal/layout"
	"github.com/retroenv/romkit/internal/source"
	"github.com/retroenv/romkit/internal/symbols"
	"github.com/retroenv/retrogolib/log"
)

const maxIncludeDepth = 32

// Result contains the live source that remains after preprocessing.
type Result struct {
	Code         []source.Line           // live lines that are not directives
	Conditionals []directive.Conditional // block conditionals found in live code
	Warnings     int
}

// Session holds the state of a single build. A session is not safe for
// concurrent use and must not be reused for another build.
type Session struct {
	logger   *log.Logger
	store    layout.Store
	stack    inclusion.Stack
	symbols  *symbols.Table
	resolver *source.Resolver
	order    binary.ByteOrder

	includeDepth int
	result       Result
}

// Option configures a session.
type Option func(*Session)

// WithByteOrder sets the byte order of words and numeric padding.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(s *Session) {
		if order != nil {
			s.order = order
		}
	}
}

// WithIncludePaths adds directories that are searched for included files.
func WithIncludePaths(paths ...string) Option {
	return func(s *Session) {
		for _, path := range paths {
			s.resolver.AddPath(path)
		}
	}
}

// WithDefines defines symbols before the first line is processed.
func WithDefines(defines map[string]string) Option {
	return func(s *Session) {
		for name, value := range defines {
			s.symbols.Define(name, value)
		}
	}
}

// New returns a new session that places data into the given store.
func New(logger *log.Logger, store layout.Store, options ...Option) *Session {
	s := &Session{
		logger:   logger,
		store:    store,
		symbols:  symbols.New(),
		resolver: source.NewResolver(),
		order:    binary.LittleEndian,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Symbols returns the symbol table of the session.
func (s *Session) Symbols() *symbols.Table {
	return s.symbols
}

// Store returns the layout store of the session.
func (s *Session) Store() layout.Store {
	return s.store
}

// ProcessFile processes the source file at the given path.
func (s *Session) ProcessFile(ctx context.Context, path string) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening source file '%s': %w", path, err)
	}
	defer func() { _ = file.Close() }()

	s.resolver.MarkIncluded(path)
	return s.Process(ctx, file, path)
}

// Process processes the source read from the reader. The name is used for
// error positions and to resolve files relative to the source.
func (s *Session) Process(ctx context.Context, reader io.Reader, name string) (Result, error) {
	if err := s.processUnit(ctx, reader, name); err != nil {
		return Result{}, err
	}
	if err := s.stack.Close(); err != nil {
		return Result{}, fmt.Errorf("%s: %w", name, err)
	}

	if s.store.IsOpen() {
		cursor, _ := s.store.Cursor()
		s.result.Warnings++
		s.logger.Warn("Cursor still open at end of input, closing it",
			log.Hex("origin", cursor.Origin()),
			log.Int("written", cursor.Written()))
		_ = s.store.End()
	}

	for _, sym := range s.symbols.Unused() {
		s.logger.Debug("Symbol defined but not used", log.String("symbol", sym.Name))
	}
	return s.result, nil
}

func (s *Session) processUnit(ctx context.Context, reader io.Reader, name string) error {
	return source.Scan(reader, name, func(line source.Line) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("processing '%s': %w", name, err)
		}
		if err := s.processLine(ctx, line); err != nil {
			return wrapLine(line, err)
		}
		return nil
	})
}

func (s *Session) processLine(ctx context.Context, line source.Line) error {
	if !line.IsDirective() {
		if s.stack.Ignoring() {
			return nil
		}
		return s.processCode(line)
	}

	if !directive.Known(line.Directive) {
		return fmt.Errorf("%w: #%s", directive.ErrUnknownDirective, line.Directive)
	}

	// skipped directives are checked for syntax but have no effect,
	// conditionals still keep the stack balanced
	d, err := directive.Parse(line)
	if err != nil {
		return err
	}
	if s.stack.Ignoring() && !directive.IsConditional(line.Directive) {
		return nil
	}
	return s.apply(ctx, d)
}

func (s *Session) processCode(line source.Line) error {
	cond, ok, err := directive.ParseConditional(line)
	if err != nil {
		return err
	}
	if ok {
		s.result.Conditionals = append(s.result.Conditionals, cond)
	}
	s.result.Code = append(s.result.Code, line)
	return nil
}

func (s *Session) apply(ctx context.Context, d directive.Directive) error {
	switch d := d.(type) {
	case directive.RomOrg:
		return s.romOrg(d)
	case directive.RomEnd:
		return s.store.End()
	case directive.RomBank:
		return s.romBank(d)
	case directive.RomBanksize:
		return s.store.SetBanksize(d.Size)
	case directive.RomPadding:
		return s.romPadding(d)

	case directive.If:
		return s.stack.Open(d.Position(), func() (bool, error) {
			return s.evaluate(d.Operand)
		})
	case directive.Ifdef:
		s.stack.Ifdef(d.Position(), s.symbols, d.Symbol)
		return nil
	case directive.Ifndef:
		s.stack.Ifndef(d.Position(), s.symbols, d.Symbol)
		return nil
	case directive.Else:
		return s.stack.Else(d.Position())
	case directive.Endif:
		return s.stack.Endif(d.Position())

	case directive.Define:
		s.symbols.Define(d.Symbol, d.Value)
		return nil
	case directive.Undef:
		if !s.symbols.Undefine(d.Symbol) {
			s.logger.Debug("Undefining unknown symbol", log.String("symbol", d.Symbol))
		}
		return nil
	case directive.Include:
		return s.include(ctx, d)
	case directive.Usepath:
		s.result.Warnings++
		s.logger.Warn("#usepath is deprecated, use include paths instead", log.String("path", d.Path))
		s.resolver.AddPath(d.Path)
		return nil

	case directive.Incbin:
		return s.incbin(d)
	case directive.Data:
		return s.data(d)

	default:
		return fmt.Errorf("%w: %T", errUnsupportedType, d)
	}
}
