package symbols

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

//nolint:funlen // test functions can be long
func TestTable(t *testing.T) {
	t.Run("new table is empty", func(t *testing.T) {
		tbl := New()

		assert.NotNil(t, tbl)
		assert.Equal(t, 0, tbl.Len())
		assert.False(t, tbl.HasSymbol("LYNX"))
	})

	t.Run("define and get", func(t *testing.T) {
		tbl := New()
		tbl.Define("BANKS", "$10")

		sym, ok := tbl.Get("BANKS")
		assert.True(t, ok)
		assert.Equal(t, "BANKS", sym.Name)
		assert.Equal(t, "$10", sym.Value)
		assert.True(t, tbl.HasSymbol("BANKS"))
	})

	t.Run("redefine replaces value", func(t *testing.T) {
		tbl := New()
		tbl.Define("X", "1")
		tbl.Define("X", "2")

		sym, _ := tbl.Get("X")
		assert.Equal(t, "2", sym.Value)
		assert.Equal(t, 1, tbl.Len())
	})

	t.Run("undefine", func(t *testing.T) {
		tbl := New()
		tbl.Define("X", "")

		assert.True(t, tbl.Undefine("X"))
		assert.False(t, tbl.Undefine("X"))
		assert.False(t, tbl.HasSymbol("X"))
	})

	t.Run("sorted by name", func(t *testing.T) {
		tbl := New()
		tbl.Define("C", "")
		tbl.Define("A", "")
		tbl.Define("B", "")

		sorted := tbl.Sorted()
		assert.Equal(t, 3, len(sorted))
		assert.Equal(t, "A", sorted[0].Name)
		assert.Equal(t, "B", sorted[1].Name)
		assert.Equal(t, "C", sorted[2].Name)
	})

	t.Run("queried symbols are marked used", func(t *testing.T) {
		tbl := New()
		tbl.Define("USED", "")
		tbl.Define("UNUSED", "")

		assert.False(t, tbl.IsUsed("USED"))
		tbl.HasSymbol("USED")
		tbl.HasSymbol("NEVER_DEFINED")
		assert.True(t, tbl.IsUsed("USED"))
		assert.True(t, tbl.IsUsed("NEVER_DEFINED"))

		unused := tbl.Unused()
		assert.Equal(t, 1, len(unused))
		assert.Equal(t, "UNUSED", unused[0].Name)
	})
}
