// Package arena provides an append-only bump allocator for AST nodes,
// long-lived strings, and symbol records produced while compiling a
// Tangram program. Everything created during lexing, parsing, and
// resolution is owned by exactly one Arena and lives until the Arena
// itself is dropped with the program.
package arena

// Arena is a bump allocator: it never frees individual allocations,
// only the block as a whole. Parsing builds large interconnected graphs
// whose lifetime equals the compiled program's, so per-node
// allocation/free is wasted work that an arena avoids.
type Arena struct {
	strings   []string
	interned  map[string]*string
	nodes     []any
	blockSize int
}

// New returns an Arena ready for use. It takes no size hint: the arena
// is a simple growable slice-backed bump area, and the blockSize field
// it sets is recorded but never consulted.
func New() *Arena {
	return &Arena{
		interned:  make(map[string]*string),
		blockSize: 4096,
	}
}

// Intern stores s once and returns a stable pointer to the arena's copy.
// Repeated calls with an equal string return the same pointer, which lets
// later phases compare identifiers by pointer as a fast path before
// falling back to value equality.
func (a *Arena) Intern(s string) *string {
	if p, ok := a.interned[s]; ok {
		return p
	}
	cp := s
	a.strings = append(a.strings, cp)
	p := &a.strings[len(a.strings)-1]
	a.interned[s] = p
	return p
}

// Put stores an arbitrary long-lived value (an AST node, a symbol
// record, a pattern/sum definition) in the arena and returns it back to
// the caller unchanged. It exists so every long-lived allocation in the
// compiler funnels through one place, which is where a future
// region/stat pass would hook in.
func Put[T any](a *Arena, v T) *T {
	p := new(T)
	*p = v
	a.nodes = append(a.nodes, p)
	return p
}

// Len reports how many distinct interned strings the arena holds.
func (a *Arena) Len() int {
	return len(a.strings)
}
