// Package symbols provides the symbol table of a preprocessing session.
package symbols

import (
	"sort"

	"github.com/retroenv/retrogolib/set"
)

// Symbol is a defined preprocessor symbol.
type Symbol struct {
	Name  string
	Value string // optional replacement text, empty if defined without value
}

// Table tracks the defined symbols and which of them were queried.
type Table struct {
	items map[string]Symbol
	used  set.Set[string]
}

// New creates a new symbol table.
func New() *Table {
	return &Table{
		items: make(map[string]Symbol),
		used:  set.New[string](),
	}
}

// Define defines a symbol, an existing definition is replaced.
func (t *Table) Define(name, value string) {
	t.items[name] = Symbol{Name: name, Value: value}
}

// Undefine removes a symbol definition and returns whether it existed.
func (t *Table) Undefine(name string) bool {
	_, ok := t.items[name]
	delete(t.items, name)
	return ok
}

// HasSymbol returns whether the symbol is defined and marks it as used.
func (t *Table) HasSymbol(name string) bool {
	t.used.Add(name)
	_, ok := t.items[name]
	return ok
}

// Get returns the symbol with the given name.
func (t *Table) Get(name string) (Symbol, bool) {
	sym, ok := t.items[name]
	return sym, ok
}

// Len returns the number of defined symbols.
func (t *Table) Len() int {
	return len(t.items)
}

// IsUsed returns whether the symbol was queried.
func (t *Table) IsUsed(name string) bool {
	return t.used.Contains(name)
}

// Sorted returns all defined symbols sorted by name.
func (t *Table) Sorted() []Symbol {
	items := make([]Symbol, 0, len(t.items))
	for _, sym := range t.items {
		items = append(items, sym)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return items
}

// Unused returns the defined symbols that were never queried, sorted by name.
func (t *Table) Unused() []Symbol {
	var items []Symbol
	for _, sym := range t.Sorted() {
		if !t.used.Contains(sym.Name) {
			items = append(items, sym)
		}
	}
	return items
}
