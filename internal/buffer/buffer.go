// Package buffer implements the byte regions that ROM images are assembled in.
//
// A buffer can be unbounded or bounded by a capacity. Bounded buffers are
// reserved to their full capacity on creation, every reserved byte is filled
// with the padding pattern, so a saved buffer never contains undetermined bytes.
package buffer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

var (
	// ErrCapacityExceeded is returned when a reservation would grow a buffer past its capacity.
	ErrCapacityExceeded = errors.New("writing past buffer capacity")
	// ErrCursorBehind is returned when the write cursor would be moved backwards.
	ErrCursorBehind = errors.New("position is behind the current write position")
)

// Buffer is a byte region with an optional origin address, an optional
// capacity ceiling, a padding pattern and a monotonic write cursor.
type Buffer struct {
	data []byte

	origin    uint64
	hasOrigin bool

	capacity int
	bounded  bool

	cursor  int
	padding Padding
}

// Option configures a buffer on creation.
type Option func(*Buffer)

// WithOrigin sets the address in the target address space that the buffer represents.
func WithOrigin(origin uint64) Option {
	return func(b *Buffer) {
		b.origin = origin
		b.hasOrigin = true
	}
}

// WithCapacity limits the buffer to the given size.
func WithCapacity(size int) Option {
	return func(b *Buffer) {
		b.capacity = max(size, 0)
		b.bounded = true
	}
}

// WithPadding sets the padding that unwritten bytes are filled with.
func WithPadding(padding Padding) Option {
	return func(b *Buffer) {
		b.padding = padding
	}
}

// New returns a new buffer. A bounded buffer is reserved to its capacity.
func New(options ...Option) *Buffer {
	b := &Buffer{}
	for _, option := range options {
		option(b)
	}

	if b.bounded && b.capacity > 0 {
		b.data = make([]byte, b.capacity)
		b.padding.fill(b.data, 0)
	}
	return b
}

// NewFrom returns a buffer that is preloaded with a copy of the given content.
// The write position stays at the start, appended bytes overwrite the content.
func NewFrom(content []byte, options ...Option) *Buffer {
	b := New(options...)
	if b.bounded && len(content) > b.capacity {
		content = content[:b.capacity]
	}
	if len(content) > len(b.data) {
		_ = b.Reserve(len(content)) // bounded by the check above
	}
	copy(b.data, content)
	return b
}

// Origin returns the origin address of the buffer and whether one is set.
func (b *Buffer) Origin() (uint64, bool) {
	return b.origin, b.hasOrigin
}

// Capacity returns the capacity of the buffer and whether it is bounded.
func (b *Buffer) Capacity() (int, bool) {
	return b.capacity, b.bounded
}

// Len returns the reserved size of the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// WritePos returns the position that the next append writes to.
func (b *Buffer) WritePos() int {
	return b.cursor
}

// Remaining returns the number of bytes that can still be appended to a
// bounded buffer, or -1 for an unbounded buffer.
func (b *Buffer) Remaining() int {
	if !b.bounded {
		return -1
	}
	return b.capacity - b.cursor
}

// Padding returns the current padding of the buffer.
func (b *Buffer) Padding() Padding {
	return b.padding
}

// SetPadding changes the padding used for future reservations. Already
// reserved bytes keep their content.
func (b *Buffer) SetPadding(padding Padding) {
	b.padding = padding
}

// Bytes returns a copy of the reserved buffer content.
func (b *Buffer) Bytes() []byte {
	return slices.Clone(b.data)
}

// Reserve grows the buffer to the given size and pads the new bytes.
// It does nothing if the buffer is already at least that large.
func (b *Buffer) Reserve(size int) error {
	if b.bounded && size > b.capacity {
		return fmt.Errorf("%w: size %d, capacity %d", ErrCapacityExceeded, size, b.capacity)
	}

	start := len(b.data)
	if size <= start {
		return nil
	}

	b.data = slices.Grow(b.data, size-start)[:size]
	b.padding.fill(b.data[start:], start)
	return nil
}

// AppendBytes copies data to the write position and returns the number of
// copied bytes. A bounded buffer accepts bytes only up to its capacity, the
// rest is dropped and the caller has to report the truncation.
func (b *Buffer) AppendBytes(data []byte) int {
	n := len(data)
	if b.bounded {
		n = min(n, b.capacity-b.cursor)
		if n <= 0 {
			return 0
		}
	} else {
		_ = b.Reserve(b.cursor + n) // unbounded buffers can always grow
	}

	copy(b.data[b.cursor:], data[:n])
	b.cursor += n
	return n
}

// Skip moves the write position forward to the given offset, the skipped
// bytes keep their padding.
func (b *Buffer) Skip(position int) error {
	if position < b.cursor {
		return fmt.Errorf("%w: offset %d, write position %d", ErrCursorBehind, position, b.cursor)
	}
	if err := b.Reserve(position); err != nil {
		return err
	}
	b.cursor = position
	return nil
}

// LoadResult describes the outcome of a load operation.
type LoadResult struct {
	Read      int  // number of bytes stored in the buffer
	Truncated bool // the input had more data than the buffer could take
	Short     bool // the input had less data than the requested limit
}

// Load reads raw bytes from the reader into the buffer at the write position.
// At most limit bytes are read, a negative limit reads all input. Bounded
// buffers take no more than their remaining room.
func (b *Buffer) Load(reader io.Reader, limit int) (LoadResult, error) {
	var result LoadResult

	room := limit
	if b.bounded {
		remaining := b.capacity - b.cursor
		if room < 0 || remaining < room {
			room = remaining
		}
	}

	var (
		data []byte
		err  error
	)
	if room < 0 {
		data, err = io.ReadAll(reader)
	} else {
		// read one extra byte to detect input that does not fit
		data, err = io.ReadAll(io.LimitReader(reader, int64(room)+1))
		if len(data) > room {
			data = data[:room]
			result.Truncated = true
		}
	}
	if err != nil {
		return result, fmt.Errorf("reading data: %w", err)
	}

	if limit >= 0 && len(data) < limit && !result.Truncated {
		result.Short = true
	}

	if err := b.Reserve(b.cursor + len(data)); err != nil {
		return result, err
	}
	copy(b.data[b.cursor:], data)
	b.cursor += len(data)
	result.Read = len(data)
	return result, nil
}

// LoadFile loads the content of the file at the given path into the buffer.
func (b *Buffer) LoadFile(path string, limit int) (LoadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("opening file '%s': %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return b.Load(file, limit)
}

// Save writes the full reserved content of the buffer.
func (b *Buffer) Save(writer io.Writer) error {
	if _, err := writer.Write(b.data); err != nil {
		return fmt.Errorf("writing buffer: %w", err)
	}
	return nil
}

func (b *Buffer) String() string {
	sb := &strings.Builder{}
	sb.WriteString("Buffer --")
	if b.hasOrigin {
		fmt.Fprintf(sb, " Org: 0x%04x", b.origin)
	} else {
		sb.WriteString(" Org: None")
	}
	if b.bounded {
		fmt.Fprintf(sb, ", Max Size: 0x%04x", b.capacity)
	} else {
		sb.WriteString(", Max Size: None")
	}
	fmt.Fprintf(sb, ", Padding: %s, Length: 0x%04x", b.padding, len(b.data))
	return sb.String()
}
