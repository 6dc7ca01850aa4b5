package layout

import (
	"bytes"
	"errors"
	"testing"

	"github.com/retroenv/romkit/internal/buffer"
	"github.com/retroenv/retrogolib/assert"
)

func newPadding(t *testing.T, value any) buffer.Padding {
	t.Helper()
	p, err := buffer.NewPadding(value, nil)
	assert.NoError(t, err)
	return p
}

func newSegmented(t *testing.T, size uint64) *SegmentedStore {
	t.Helper()
	s, err := NewSegmented(size, buffer.Padding{})
	assert.NoError(t, err)
	return s
}

func saveImage(t *testing.T, store Store) []byte {
	t.Helper()
	var out bytes.Buffer
	assert.NoError(t, store.Save(&out))
	return out.Bytes()
}

func TestSegmentedSaveSize(t *testing.T) {
	s := newSegmented(t, 0x10)
	image := saveImage(t, s)
	assert.Len(t, image, SegmentCount*0x10)

	s = newSegmented(t, 0x400)
	assert.NoError(t, s.Org(0x1234, 0))
	_, err := s.Write([]byte{1, 2, 3})
	assert.NoError(t, err)
	assert.NoError(t, s.End())
	assert.Len(t, saveImage(t, s), SegmentCount*0x400)
}

func TestSegmentedOrg(t *testing.T) {
	s := newSegmented(t, 0x100)
	assert.NoError(t, s.Org(0x123, 0))

	cursor, err := s.Cursor()
	assert.NoError(t, err)
	assert.Equal(t, 1, cursor.Segment())
	assert.Equal(t, uint64(0x123), cursor.Origin())

	n, err := s.Write([]byte{0xa9, 0x01})
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, uint64(0x125), cursor.Address())
	assert.Equal(t, 2, cursor.Written())

	address, err := s.CurrentAddress()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0x125), address)
	block, err := s.CurrentBlock()
	assert.NoError(t, err)
	assert.Equal(t, 0x25, block.WritePos())
	assert.NoError(t, s.End())

	image := saveImage(t, s)
	assert.Equal(t, byte(0xa9), image[0x123])
	assert.Equal(t, byte(0x01), image[0x124])
	assert.Equal(t, byte(0x00), image[0x122])
	assert.Equal(t, 0x25, s.Size())
	assert.Equal(t, SegmentCount*0x100-0x25, s.Free())
}

func TestSegmentedCursorErrors(t *testing.T) {
	t.Run("banksize not set", func(t *testing.T) {
		s := newSegmented(t, 0)
		assert.True(t, errors.Is(s.Org(0, 0), ErrBanksizeNotSet))
		assert.True(t, errors.Is(s.Bank(0, 0), ErrBanksizeNotSet))
		assert.True(t, errors.Is(s.Save(&bytes.Buffer{}), ErrBanksizeNotSet))
	})

	t.Run("banksize set twice", func(t *testing.T) {
		s := newSegmented(t, 0)
		assert.NoError(t, s.SetBanksize(0x400))
		assert.True(t, errors.Is(s.SetBanksize(0x800), ErrBanksizeAlreadySet))
		assert.Equal(t, 0x400, s.SegmentSize())
	})

	t.Run("open twice", func(t *testing.T) {
		s := newSegmented(t, 0x100)
		assert.NoError(t, s.Org(0, 0))
		assert.True(t, errors.Is(s.Org(0x200, 0), ErrCursorAlreadyOpen))
		assert.True(t, errors.Is(s.Bank(3, 0), ErrCursorAlreadyOpen))
	})

	t.Run("open close open", func(t *testing.T) {
		s := newSegmented(t, 0x100)
		assert.NoError(t, s.Org(0x100, 0))
		assert.NoError(t, s.End())
		assert.NoError(t, s.Org(0x100, 0))
		assert.True(t, s.IsOpen())
	})

	t.Run("end without open", func(t *testing.T) {
		s := newSegmented(t, 0x100)
		assert.True(t, errors.Is(s.End(), ErrCursorNotOpen))
	})

	t.Run("no cursor", func(t *testing.T) {
		s := newSegmented(t, 0x100)
		_, err := s.Write([]byte{1})
		assert.True(t, errors.Is(err, ErrNoCursorOpen))
		_, err = s.Cursor()
		assert.True(t, errors.Is(err, ErrNoCursorOpen))
		_, err = s.Load(bytes.NewReader([]byte{1}), -1)
		assert.True(t, errors.Is(err, ErrNoCursorOpen))
		_, err = s.CurrentBlock()
		assert.True(t, errors.Is(err, ErrNoCursorOpen))
		_, err = s.CurrentAddress()
		assert.True(t, errors.Is(err, ErrNoCursorOpen))
		_, err = s.CurrentOrigin()
		assert.True(t, errors.Is(err, ErrNoCursorOpen))
		_, err = s.CurrentMaxSize()
		assert.True(t, errors.Is(err, ErrNoCursorOpen))
	})

	t.Run("counter overflow", func(t *testing.T) {
		s := newSegmented(t, 0x100)
		assert.True(t, errors.Is(s.OpenCursor(5, 0x101, 0), ErrCounterOverflow))
		assert.False(t, s.IsOpen())
	})

	t.Run("invalid segment", func(t *testing.T) {
		s := newSegmented(t, 0x100)
		assert.True(t, errors.Is(s.OpenCursor(300, 0, 0), ErrInvalidSegment))
		assert.True(t, errors.Is(s.Bank(256, 0), ErrInvalidSegment))
		assert.True(t, errors.Is(s.Org(0x100*256, 0), ErrInvalidSegment))
	})

	t.Run("org behind written data", func(t *testing.T) {
		s := newSegmented(t, 0x100)
		assert.NoError(t, s.Bank(0, 0))
		_, err := s.Write([]byte{1, 2, 3, 4})
		assert.NoError(t, err)
		assert.NoError(t, s.End())
		assert.True(t, errors.Is(s.Org(2, 0), buffer.ErrCursorBehind))
	})
}

func TestSegmentedWriteLimits(t *testing.T) {
	t.Run("cursor max size", func(t *testing.T) {
		s := newSegmented(t, 0x100)
		assert.NoError(t, s.Org(0, 2))
		n, err := s.Write([]byte{1, 2, 3})
		assert.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = s.Write([]byte{4})
		assert.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("segment end", func(t *testing.T) {
		s := newSegmented(t, 0x100)
		assert.NoError(t, s.Org(0xfe, 0))
		n, err := s.Write([]byte{1, 2, 3, 4})
		assert.NoError(t, err)
		assert.Equal(t, 2, n)

		image := saveImage(t, s)
		assert.Equal(t, byte(0), image[0x100])
	})

	t.Run("window larger than the address space", func(t *testing.T) {
		s := newSegmented(t, 0x10)
		assert.NoError(t, s.Org(0, 0xffffffffffffffff))
		n, err := s.Write([]byte{1, 2, 3})
		assert.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.NoError(t, s.End())

		image := saveImage(t, s)
		assert.Equal(t, []byte{1, 2, 3, 0}, image[:4])
	})

	t.Run("bank continues", func(t *testing.T) {
		s := newSegmented(t, 0x10)
		assert.NoError(t, s.Bank(2, 0))
		_, err := s.Write([]byte{1})
		assert.NoError(t, err)
		assert.NoError(t, s.End())

		assert.NoError(t, s.Bank(2, 0))
		cursor, err := s.Cursor()
		assert.NoError(t, err)
		assert.Equal(t, uint64(0x21), cursor.Origin())
		_, err = s.Write([]byte{2})
		assert.NoError(t, err)
		assert.NoError(t, s.End())

		image := saveImage(t, s)
		assert.Equal(t, []byte{1, 2, 0}, image[0x20:0x23])
	})
}

func TestSegmentedLoad(t *testing.T) {
	t.Run("limit", func(t *testing.T) {
		s := newSegmented(t, 0x10)
		assert.NoError(t, s.Org(0, 0))
		result, err := s.Load(bytes.NewReader([]byte{1, 2, 3, 4, 5}), 3)
		assert.NoError(t, err)
		assert.Equal(t, 3, result.Read)
		assert.True(t, result.Truncated)
	})

	t.Run("cursor window", func(t *testing.T) {
		s := newSegmented(t, 0x10)
		assert.NoError(t, s.Org(0, 2))
		result, err := s.Load(bytes.NewReader([]byte{1}), -1)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Read)
		assert.False(t, result.Short)

		result, err = s.Load(bytes.NewReader([]byte{2, 3}), -1)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Read)
		assert.True(t, result.Truncated)
	})

	t.Run("image", func(t *testing.T) {
		s := newSegmented(t, 4)
		assert.NoError(t, s.LoadImage(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9})))
		assert.NoError(t, s.Org(1, 0))
		_, err := s.Write([]byte{0xaa})
		assert.NoError(t, err)
		assert.NoError(t, s.End())

		image := saveImage(t, s)
		assert.Len(t, image, SegmentCount*4)
		assert.Equal(t, []byte{1, 0xaa, 3, 4, 5, 6, 7, 8, 9, 0, 0, 0, 0}, image[:13])
	})
}

func TestSegmentedPadding(t *testing.T) {
	s, err := NewSegmented(4, newPadding(t, 0xff))
	assert.NoError(t, err)
	assert.NoError(t, s.Bank(1, 0))
	_, err = s.Write([]byte{0x42})
	assert.NoError(t, err)
	assert.NoError(t, s.End())

	image := saveImage(t, s)
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0x42, 0xff}, image[:6])

	regions := s.Regions()
	assert.Len(t, regions, 1)
	assert.Equal(t, "SEGMENT001", regions[0].Name)
	assert.Equal(t, uint64(4), regions[0].Origin)
	assert.Equal(t, 1, regions[0].Used)
}

func TestSegmentedSizeCountsSkippedOffsets(t *testing.T) {
	s := newSegmented(t, 0x100)
	writeBlock(t, s, 0xf0, 0, 1)

	assert.Equal(t, 0xf1, s.Size())
	assert.Equal(t, SegmentCount*0x100-0xf1, s.Free())
	assert.Equal(t, 0xf1, s.Regions()[0].Used)
}
