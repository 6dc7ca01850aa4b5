// Package layout places code and data into the address space of a ROM image.
//
// A store owns the regions of an image and a single placement cursor. The
// cursor is opened by #rom.org or #rom.bank and closed by #rom.end, data is
// only accepted while a cursor is open.
package layout

import (
	"errors"
	"io"
	"math"

	"github.com/retroenv/romkit/internal/buffer"
)

var (
	ErrCursorAlreadyOpen  = errors.New("#rom.org before #rom.end of previous #rom.org")
	ErrCursorNotOpen      = errors.New("#rom.end before #rom.org")
	ErrNoCursorOpen       = errors.New("no current #rom.org defined")
	ErrInvalidSegment     = errors.New("invalid segment number")
	ErrCounterOverflow    = errors.New("counter offset in segment is greater than segment size")
	ErrBanksizeAlreadySet = errors.New("bank size already set")
	ErrBanksizeNotSet     = errors.New("bank size not set, #rom.banksize has to be used first")
	ErrInvalidBanksize    = errors.New("invalid bank size")
	ErrBankingUnsupported = errors.New("target does not support banks")
	ErrBlockOverlap       = errors.New("blocks overlap")
	ErrAddressBelowBase   = errors.New("address is below the image base address")
	ErrRegionTooLarge     = errors.New("region exceeds the maximum image size")
)

// MaxRegionSize is the largest size of a bank or flat image.
const MaxRegionSize = 1 << 24

// Store is the layout engine of a target.
type Store interface {
	// SetBanksize sets the size of every bank and allocates the banks.
	SetBanksize(size uint64) error
	// SetPadding sets the padding used for regions created afterwards.
	SetPadding(padding buffer.Padding)

	// Org opens the cursor at the given address.
	Org(address, maxSize uint64) error
	// Bank opens the cursor in the given bank.
	Bank(number, maxSize uint64) error
	// End closes the cursor.
	End() error
	// IsOpen returns whether a cursor is open.
	IsOpen() bool
	// Cursor returns the open cursor.
	Cursor() (*Cursor, error)

	// Write appends data at the cursor and returns the number of bytes that were stored.
	Write(data []byte) (int, error)
	// Load reads raw data at the cursor.
	Load(reader io.Reader, limit int) (buffer.LoadResult, error)
	// LoadImage initializes the store from a previously saved image.
	LoadImage(reader io.Reader) error

	// Size returns the number of bytes written.
	Size() int
	// Free returns the number of bytes left, -1 if the image is unbounded.
	Free() int
	// Regions describes the regions of the image in address order.
	Regions() []Region
	// Save writes the padded image.
	Save(writer io.Writer) error
}

var (
	_ Store = (*SegmentedStore)(nil)
	_ Store = (*FlatStore)(nil)
)

// Region describes a region of the image for reports.
type Region struct {
	Name   string
	Origin uint64
	Size   int // reserved size
	Used   int // bytes up to the write position, including skipped offsets
}

// Cursor is an open placement context.
type Cursor struct {
	block   *buffer.Buffer
	segment int
	origin  uint64 // address of the cursor start
	maxSize uint64 // 0 if only limited by the region
	written int
}

// Block returns the region that the cursor writes into.
func (c *Cursor) Block() *buffer.Buffer {
	return c.block
}

// Segment returns the index of the segment the cursor is in.
func (c *Cursor) Segment() int {
	return c.segment
}

// Origin returns the address the cursor was opened at.
func (c *Cursor) Origin() uint64 {
	return c.origin
}

// Address returns the address that the next byte is written to.
func (c *Cursor) Address() uint64 {
	return c.origin + uint64(c.written)
}

// MaxSize returns the size limit of the cursor window, 0 if unlimited.
func (c *Cursor) MaxSize() uint64 {
	return c.maxSize
}

// Written returns the number of bytes written through the cursor.
func (c *Cursor) Written() int {
	return c.written
}

// room returns the bytes left in the cursor window or -1 if the window is
// only limited by the region.
func (c *Cursor) room() int {
	if c.maxSize == 0 {
		return -1
	}
	written := uint64(c.written)
	if written >= c.maxSize {
		return 0
	}
	left := c.maxSize - written
	if left > math.MaxInt {
		return -1
	}
	return int(left)
}

func (c *Cursor) write(data []byte) int {
	if room := c.room(); room >= 0 && len(data) > room {
		data = data[:room]
	}
	n := c.block.AppendBytes(data)
	c.written += n
	return n
}

func (c *Cursor) load(reader io.Reader, limit int) (buffer.LoadResult, error) {
	room := c.room()
	capped := room >= 0 && (limit < 0 || room < limit)
	if capped {
		limit = room
	}

	result, err := c.block.Load(reader, limit)
	c.written += result.Read
	if capped {
		// the window is smaller than requested, not the input shorter
		result.Short = false
	}
	return result, err
}
