package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/retroenv/romkit/internal/buffer"
)

// SegmentCount is the fixed number of segments of a segmented image.
const SegmentCount = 256

// SegmentedStore is an image that is divided into 256 segments of equal
// size, as used by cartridges that address the ROM through a page counter.
// The segment size is set once, all segments are allocated at that point.
type SegmentedStore struct {
	segmentSize int
	segments    []*buffer.Buffer
	cursor      *Cursor
	padding     buffer.Padding
}

// NewSegmented returns a segmented store. A segment size of 0 leaves the
// store unallocated until SetBanksize is called.
func NewSegmented(segmentSize uint64, padding buffer.Padding) (*SegmentedStore, error) {
	s := &SegmentedStore{
		padding: padding,
	}
	if segmentSize > 0 {
		if err := s.SetBanksize(segmentSize); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SetBanksize sets the segment size and allocates all segments.
func (s *SegmentedStore) SetBanksize(size uint64) error {
	if s.segments != nil {
		return fmt.Errorf("%w: 0x%x", ErrBanksizeAlreadySet, s.segmentSize)
	}
	if size == 0 || size > MaxRegionSize {
		return fmt.Errorf("%w: 0x%x", ErrInvalidBanksize, size)
	}

	s.segmentSize = int(size)
	s.segments = make([]*buffer.Buffer, SegmentCount)
	for i := range s.segments {
		s.segments[i] = buffer.New(
			buffer.WithOrigin(uint64(i)*size),
			buffer.WithCapacity(s.segmentSize),
			buffer.WithPadding(s.padding),
		)
	}
	return nil
}

// SegmentSize returns the size of a segment, 0 if not set yet.
func (s *SegmentedStore) SegmentSize() int {
	return s.segmentSize
}

// SetPadding changes the padding of all segments. Reserved bytes are not
// refilled, all segments are reserved on allocation, so the padding only
// takes effect when set before the bank size.
func (s *SegmentedStore) SetPadding(padding buffer.Padding) {
	s.padding = padding
	for _, seg := range s.segments {
		seg.SetPadding(padding)
	}
}

// Org opens the cursor at an address of the image. The address is split
// into a segment index and an offset in the segment.
func (s *SegmentedStore) Org(address, maxSize uint64) error {
	if s.segments == nil {
		return ErrBanksizeNotSet
	}
	size := uint64(s.segmentSize)
	return s.OpenCursor(address/size, address%size, maxSize)
}

// Bank opens the cursor in the given segment. Writing continues after the
// data that was already placed into the segment.
func (s *SegmentedStore) Bank(number, maxSize uint64) error {
	if s.segments == nil {
		return ErrBanksizeNotSet
	}
	if number >= SegmentCount {
		return fmt.Errorf("%w: %d", ErrInvalidSegment, number)
	}
	return s.OpenCursor(number, uint64(s.segments[number].WritePos()), maxSize)
}

// OpenCursor opens the cursor at a segment and an offset in the segment.
func (s *SegmentedStore) OpenCursor(segment, counter, maxSize uint64) error {
	if s.segments == nil {
		return ErrBanksizeNotSet
	}
	if counter > uint64(s.segmentSize) {
		return fmt.Errorf("%w: offset 0x%x, segment size 0x%x", ErrCounterOverflow, counter, s.segmentSize)
	}
	if segment >= SegmentCount {
		return fmt.Errorf("%w: %d", ErrInvalidSegment, segment)
	}
	if s.cursor != nil {
		return ErrCursorAlreadyOpen
	}

	block := s.segments[segment]
	if err := block.Skip(int(counter)); err != nil {
		return fmt.Errorf("opening segment %d: %w", segment, err)
	}

	s.cursor = &Cursor{
		block:   block,
		segment: int(segment),
		origin:  segment*uint64(s.segmentSize) + counter,
		maxSize: maxSize,
	}
	return nil
}

// End closes the cursor.
func (s *SegmentedStore) End() error {
	if s.cursor == nil {
		return ErrCursorNotOpen
	}
	s.cursor = nil
	return nil
}

// IsOpen returns whether a cursor is open.
func (s *SegmentedStore) IsOpen() bool {
	return s.cursor != nil
}

// Cursor returns the open cursor.
func (s *SegmentedStore) Cursor() (*Cursor, error) {
	if s.cursor == nil {
		return nil, ErrNoCursorOpen
	}
	return s.cursor, nil
}

// CurrentBlock returns the segment buffer of the open cursor.
func (s *SegmentedStore) CurrentBlock() (*buffer.Buffer, error) {
	c, err := s.Cursor()
	if err != nil {
		return nil, err
	}
	return c.block, nil
}

// CurrentAddress returns the address that the next byte is placed at.
func (s *SegmentedStore) CurrentAddress() (uint64, error) {
	c, err := s.Cursor()
	if err != nil {
		return 0, err
	}
	return c.Address(), nil
}

// CurrentOrigin returns the address that the open cursor started at.
func (s *SegmentedStore) CurrentOrigin() (uint64, error) {
	c, err := s.Cursor()
	if err != nil {
		return 0, err
	}
	return c.origin, nil
}

// CurrentMaxSize returns the window size of the open cursor, 0 if unlimited.
func (s *SegmentedStore) CurrentMaxSize() (uint64, error) {
	c, err := s.Cursor()
	if err != nil {
		return 0, err
	}
	return c.maxSize, nil
}

// Write appends data at the cursor. Data that does not fit into the cursor
// window or the segment is dropped.
func (s *SegmentedStore) Write(data []byte) (int, error) {
	if s.cursor == nil {
		return 0, ErrNoCursorOpen
	}
	return s.cursor.write(data), nil
}

// Load reads raw data at the cursor.
func (s *SegmentedStore) Load(reader io.Reader, limit int) (buffer.LoadResult, error) {
	if s.cursor == nil {
		return buffer.LoadResult{}, ErrNoCursorOpen
	}
	return s.cursor.load(reader, limit)
}

// LoadImage initializes all segments from an image, every segment reads
// segment size bytes. Write positions stay at the segment starts, so the
// loaded content is overwritten by placed data.
func (s *SegmentedStore) LoadImage(reader io.Reader) error {
	if s.segments == nil {
		return ErrBanksizeNotSet
	}

	data := make([]byte, s.segmentSize)
	for i := range s.segments {
		n, err := io.ReadFull(reader, data)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading segment %d: %w", i, err)
		}

		s.segments[i] = buffer.NewFrom(data[:n],
			buffer.WithOrigin(uint64(i*s.segmentSize)),
			buffer.WithCapacity(s.segmentSize),
			buffer.WithPadding(s.padding),
		)
		if n < s.segmentSize {
			for j := i + 1; j < len(s.segments); j++ {
				s.segments[j] = buffer.New(
					buffer.WithOrigin(uint64(j*s.segmentSize)),
					buffer.WithCapacity(s.segmentSize),
					buffer.WithPadding(s.padding),
				)
			}
			break
		}
	}
	return nil
}

// Size returns the used size of all segments, measured up to the last
// placed byte of every segment. Bytes skipped by opening a cursor at an
// offset inside a segment count as used, they are no longer available.
func (s *SegmentedStore) Size() int {
	var size int
	for _, seg := range s.segments {
		size += seg.WritePos()
	}
	return size
}

// Free returns the number of bytes that can still be placed.
func (s *SegmentedStore) Free() int {
	if s.segments == nil {
		return 0
	}
	return SegmentCount*s.segmentSize - s.Size()
}

// Regions returns the segments that contain placed data.
func (s *SegmentedStore) Regions() []Region {
	var regions []Region
	for i, seg := range s.segments {
		if seg.WritePos() == 0 {
			continue
		}
		origin, _ := seg.Origin()
		regions = append(regions, Region{
			Name:   fmt.Sprintf("SEGMENT%03d", i),
			Origin: origin,
			Size:   s.segmentSize,
			Used:   seg.WritePos(),
		})
	}
	return regions
}

// Save writes all 256 segments, the image is always 256 times the segment size.
func (s *SegmentedStore) Save(writer io.Writer) error {
	if s.segments == nil {
		return ErrBanksizeNotSet
	}

	buf := &bytes.Buffer{}
	buf.Grow(SegmentCount * s.segmentSize)
	for _, seg := range s.segments {
		if err := seg.Save(buf); err != nil {
			return err
		}
	}

	if _, err := writer.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	return nil
}
