package preprocessor

import (
	"context"
	"fmt"
	"os"

	"github.com/retroenv/romkit/internal/buffer"
	"github.com/retroenv/romkit/internal/directive"
	"github.com/retroenv/romkit/internal/numeric"
	"github.com/retroenv/retrogolib/log"
)

func (s *Session) romOrg(d directive.RomOrg) error {
	if err := s.store.Org(d.Address, d.MaxSize); err != nil {
		return err
	}
	s.logger.Debug("Opened cursor",
		log.Hex("address", d.Address),
		log.Hex("max_size", d.MaxSize))
	return nil
}

func (s *Session) romBank(d directive.RomBank) error {
	if err := s.store.Bank(d.Number, d.MaxSize); err != nil {
		return err
	}
	s.logger.Debug("Opened bank",
		log.Hex("bank", d.Number),
		log.Hex("max_size", d.MaxSize))
	return nil
}

func (s *Session) romPadding(d directive.RomPadding) error {
	padding, err := buffer.NewPadding(d.Value, s.order)
	if err != nil {
		return err
	}
	s.store.SetPadding(padding)
	return nil
}

// evaluate returns whether an #if operand is true. A number is true if it
// is not zero. A symbol is true if it is defined without value or if its
// value is a number that is not zero.
func (s *Session) evaluate(operand string) (bool, error) {
	if numeric.IsLiteral(operand) {
		value, err := numeric.ParseBig(operand)
		if err != nil {
			return false, err
		}
		return value.Sign() != 0, nil
	}

	if !s.symbols.HasSymbol(operand) {
		return false, nil
	}
	sym, _ := s.symbols.Get(operand)
	if sym.Value == "" {
		return true, nil
	}

	value, err := numeric.ParseBig(sym.Value)
	if err != nil {
		return false, fmt.Errorf("%w: symbol '%s' has value '%s'", ErrInvalidOperand, operand, sym.Value)
	}
	return value.Sign() != 0, nil
}

func (s *Session) include(ctx context.Context, d directive.Include) error {
	if s.includeDepth >= maxIncludeDepth {
		return fmt.Errorf("%w: %d levels", ErrIncludeDepth, s.includeDepth)
	}

	path, err := s.resolver.Resolve(d.Path, d.Position().File)
	if err != nil {
		return err
	}
	if !s.resolver.MarkIncluded(path) {
		s.logger.Debug("Skipping file that was already included", log.String("file", path))
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening included file '%s': %w", path, err)
	}
	defer func() { _ = file.Close() }()

	s.logger.Debug("Including file", log.String("file", path))
	s.includeDepth++
	floor := s.stack.Enter()

	err = s.processUnit(ctx, file, path)
	s.includeDepth--
	leaveErr := s.stack.Leave(floor)
	if err != nil {
		return err
	}
	if leaveErr != nil {
		return fmt.Errorf("included file '%s': %w", path, leaveErr)
	}
	return nil
}

func (s *Session) incbin(d directive.Incbin) error {
	path, err := s.resolver.Resolve(d.Path, d.Position().File)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening binary file '%s': %w", path, err)
	}
	defer func() { _ = file.Close() }()

	result, err := s.store.Load(file, d.Limit)
	if err != nil {
		return fmt.Errorf("loading binary file '%s': %w", path, err)
	}

	// a file that is larger than the requested limit is expected
	if result.Truncated && (d.Limit < 0 || result.Read < d.Limit) {
		s.result.Warnings++
		s.logger.Warn("Binary file truncated to fit",
			log.String("file", path),
			log.String("position", d.Position().String()),
			log.Int("loaded", result.Read))
	}
	if result.Short {
		s.logger.Debug("Binary file is smaller than the limit",
			log.String("file", path),
			log.Int("limit", d.Limit),
			log.Int("loaded", result.Read))
	}
	return nil
}

func (s *Session) data(d directive.Data) error {
	data := make([]byte, len(d.Values)*d.Width)
	for i, value := range d.Values {
		if d.Width == 1 {
			data[i] = byte(value)
			continue
		}
		s.order.PutUint16(data[i*2:], uint16(value))
	}

	n, err := s.store.Write(data)
	if err != nil {
		return err
	}
	if n < len(data) {
		s.result.Warnings++
		s.logger.Warn("Data truncated to fit",
			log.String("position", d.Position().String()),
			log.Int("size", len(data)),
			log.Int("written", n))
	}
	return nil
}
