// Package symbols builds the scope tree and symbol table the resolver
// fills in with types, grounded on the original implementation's flat
// parent-indexed symbol_table_t/symbol_entry_t model
// (original_source/src/parsed_state.h), adapted to Go value/slice
// ownership instead of a bump-allocated vector of tables.
package symbols

import "github.com/tangramlang/tangram/internal/types"

// Kind distinguishes what a Symbol names.
type Kind int

const (
	KindVar Kind = iota
	KindPattern
	KindSum
	KindGenerator
)

// Symbol is one named entity visible in some scope.
type Symbol struct {
	Name string
	Kind Kind
	Type types.Type
	// StackSlot is the frame-relative storage index for KindVar symbols,
	// assigned in declaration order within a generator invocation.
	StackSlot int
	// DefIndex indexes into the owning Table's definition-kind slice
	// (Program.Patterns/Sums/Generators) for non-variable symbols.
	DefIndex int
}

// Scope is one lexical block's symbol table: generator parameters, a
// for-loop's induction variable, or a top-level declaration list.
// Parent is -1 for the root scope.
type Scope struct {
	Parent  int
	Symbols []*Symbol
}

// Table owns every Scope created while building a program, indexed by
// the Scope index stored on ast nodes (LiteralBlock.Scope, etc).
type Table struct {
	Scopes []*Scope
}

// NewTable returns a Table with just the root scope (index 0).
func NewTable() *Table {
	return &Table{Scopes: []*Scope{{Parent: -1}}}
}

// Push creates a new child scope of parent and returns its index.
func (t *Table) Push(parent int) int {
	t.Scopes = append(t.Scopes, &Scope{Parent: parent})
	return len(t.Scopes) - 1
}

// Declare adds sym to scope, after checking for a same-scope name
// conflict (spec.md §4.4: "name conflicts are checked within the
// current scope only" — shadowing an outer scope's name is allowed).
func (t *Table) Declare(scope int, sym *Symbol) error {
	s := t.Scopes[scope]
	for _, existing := range s.Symbols {
		if existing.Name == sym.Name {
			return &ConflictError{Name: sym.Name}
		}
	}
	s.Symbols = append(s.Symbols, sym)
	return nil
}

// ConflictError reports a duplicate declaration within one scope.
type ConflictError struct{ Name string }

func (e *ConflictError) Error() string { return "identifier \"" + e.Name + "\" already taken" }

// Lookup searches scope and its ancestors, innermost first (spec.md
// §4.4 lexical scoping).
func (t *Table) Lookup(scope int, name string) *Symbol {
	for i := scope; i >= 0; {
		s := t.Scopes[i]
		for _, sym := range s.Symbols {
			if sym.Name == name {
				return sym
			}
		}
		i = s.Parent
	}
	return nil
}
