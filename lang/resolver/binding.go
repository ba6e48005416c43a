package resolver

// Global describes one global-memory view declared at the top level of a
// chunk: its base address in global memory and its size in bytes (0 for
// a scalar, N for an N-byte array).
type Global struct {
	Addr int
	Size int
}

// Locals assigns a stable slot index to every local variable of a
// function, in first-seen order: every assignment target or for-loop
// variable name encountered walking the body. Parameters are not stored
// here; they get their own negative slots. First-seen order matches original_source/pysrc/embedvm/python.py's
// locals scan, so two semantically identical functions compile to the
// same slot layout.
type Locals struct {
	order []string
	index map[string]int
}

func newLocals() *Locals {
	return &Locals{index: make(map[string]int)}
}

// declare assigns name a slot if it doesn't have one yet, and returns its
// slot index either way.
func (l *Locals) declare(name string) int {
	if idx, ok := l.index[name]; ok {
		return idx
	}
	idx := len(l.order)
	l.order = append(l.order, name)
	l.index[name] = idx
	return idx
}

// Lookup returns the slot index for name and whether it was declared.
func (l *Locals) Lookup(name string) (int, bool) {
	idx, ok := l.index[name]
	return idx, ok
}

// Count returns the number of distinct local slots.
func (l *Locals) Count() int { return len(l.order) }

// Names returns the local names in slot order.
func (l *Locals) Names() []string { return l.order }
