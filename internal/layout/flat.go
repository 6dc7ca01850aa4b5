package layout

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/retroenv/romkit/internal/buffer"
)

// FlatStore is an image without banks. Every #rom.org starts a new block at
// its address, the saved image contains all blocks in address order with
// padded gaps, starting at the base address.
type FlatStore struct {
	base     uint64
	size     int // image size limit, 0 if unbounded
	blocks   []*buffer.Buffer
	template []byte
	cursor   *Cursor
	padding  buffer.Padding
}

// NewFlat returns a flat store for an image that starts at the base address.
// A size larger than 0 limits the image size.
func NewFlat(base uint64, size int, padding buffer.Padding) *FlatStore {
	return &FlatStore{
		base:    base,
		size:    size,
		padding: padding,
	}
}

// Base returns the address of the first image byte.
func (f *FlatStore) Base() uint64 {
	return f.base
}

// SetBanksize is not supported by flat images.
func (f *FlatStore) SetBanksize(uint64) error {
	return ErrBankingUnsupported
}

// SetPadding sets the padding for gaps and for blocks created afterwards.
func (f *FlatStore) SetPadding(padding buffer.Padding) {
	f.padding = padding
}

// Org opens the cursor in a new block at the given address.
func (f *FlatStore) Org(address, maxSize uint64) error {
	if f.cursor != nil {
		return ErrCursorAlreadyOpen
	}
	if address < f.base {
		return fmt.Errorf("%w: address 0x%x, base 0x%x", ErrAddressBelowBase, address, f.base)
	}
	if maxSize > MaxRegionSize {
		return fmt.Errorf("%w: block size 0x%x", ErrRegionTooLarge, maxSize)
	}
	if address-f.base > MaxRegionSize-maxSize {
		return fmt.Errorf("%w: block at 0x%x with size 0x%x, base 0x%x",
			ErrRegionTooLarge, address, maxSize, f.base)
	}

	options := []buffer.Option{
		buffer.WithOrigin(address),
		buffer.WithPadding(f.padding),
	}
	if maxSize > 0 {
		options = append(options, buffer.WithCapacity(int(maxSize)))
	}
	block := buffer.New(options...)
	f.blocks = append(f.blocks, block)

	f.cursor = &Cursor{
		block:   block,
		origin:  address,
		maxSize: maxSize,
	}
	return nil
}

// Bank is not supported by flat images.
func (f *FlatStore) Bank(uint64, uint64) error {
	return ErrBankingUnsupported
}

// End closes the cursor.
func (f *FlatStore) End() error {
	if f.cursor == nil {
		return ErrCursorNotOpen
	}
	f.cursor = nil
	return nil
}

// IsOpen returns whether a cursor is open.
func (f *FlatStore) IsOpen() bool {
	return f.cursor != nil
}

// Cursor returns the open cursor.
func (f *FlatStore) Cursor() (*Cursor, error) {
	if f.cursor == nil {
		return nil, ErrNoCursorOpen
	}
	return f.cursor, nil
}

// Write appends data at the cursor.
func (f *FlatStore) Write(data []byte) (int, error) {
	if f.cursor == nil {
		return 0, ErrNoCursorOpen
	}
	return f.cursor.write(data), nil
}

// Load reads raw data at the cursor.
func (f *FlatStore) Load(reader io.Reader, limit int) (buffer.LoadResult, error) {
	if f.cursor == nil {
		return buffer.LoadResult{}, ErrNoCursorOpen
	}
	return f.cursor.load(reader, limit)
}

// LoadImage uses the content of an image as background of the saved image.
// Placed blocks replace the loaded bytes.
func (f *FlatStore) LoadImage(reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	if f.size > 0 && len(data) > f.size {
		data = data[:f.size]
	}
	f.template = data
	return nil
}

// Size returns the number of bytes placed into all blocks.
func (f *FlatStore) Size() int {
	var size int
	for _, block := range f.blocks {
		size += block.WritePos()
	}
	return size
}

// Free returns the bytes left in a size limited image, -1 if unbounded.
func (f *FlatStore) Free() int {
	if f.size == 0 {
		return -1
	}
	return max(f.size-f.Size(), 0)
}

// Regions returns the blocks sorted by address.
func (f *FlatStore) Regions() []Region {
	regions := make([]Region, 0, len(f.blocks))
	for i, block := range sortBlocks(f.blocks) {
		origin, _ := block.Origin()
		regions = append(regions, Region{
			Name:   fmt.Sprintf("BLOCK%03d", i),
			Origin: origin,
			Size:   block.Len(),
			Used:   block.WritePos(),
		})
	}
	return regions
}

// Save writes the image from the base address to the end of the last block.
func (f *FlatStore) Save(writer io.Writer) error {
	image, err := f.assemble()
	if err != nil {
		return err
	}
	if err := image.Save(writer); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	return nil
}

// assemble merges all blocks into a single buffer on top of the template.
func (f *FlatStore) assemble() (*buffer.Buffer, error) {
	options := []buffer.Option{
		buffer.WithOrigin(f.base),
		buffer.WithPadding(f.padding),
	}
	if f.size > 0 {
		options = append(options, buffer.WithCapacity(f.size))
	}

	sorted := sortBlocks(f.blocks)
	if err := checkOverlap(sorted); err != nil {
		return nil, err
	}

	image := buffer.NewFrom(f.template, options...)
	for _, block := range sorted {
		origin, _ := block.Origin()
		if err := image.Skip(int(origin - f.base)); err != nil {
			return nil, fmt.Errorf("placing block at 0x%04x: %w", origin, err)
		}

		data := block.Bytes()
		if n := image.AppendBytes(data); n < len(data) {
			return nil, fmt.Errorf("placing block at 0x%04x: %w", origin, buffer.ErrCapacityExceeded)
		}
	}

	return image, nil
}

func sortBlocks(blocks []*buffer.Buffer) []*buffer.Buffer {
	sorted := slices.Clone(blocks)
	slices.SortStableFunc(sorted, func(a, b *buffer.Buffer) int {
		originA, _ := a.Origin()
		originB, _ := b.Origin()
		return cmp.Compare(originA, originB)
	})
	return sorted
}

func checkOverlap(sorted []*buffer.Buffer) error {
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		prevOrigin, _ := prev.Origin()
		curOrigin, _ := cur.Origin()
		if prevOrigin+uint64(prev.Len()) > curOrigin {
			return fmt.Errorf("%w: block at 0x%04x with size 0x%x overlaps block at 0x%04x",
				ErrBlockOverlap, prevOrigin, prev.Len(), curOrigin)
		}
	}
	return nil
}

func (f *FlatStore) String() string {
	return fmt.Sprintf("FlatStore -- Base: 0x%04x, Blocks: %d", f.base, len(f.blocks))
}
