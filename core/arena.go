package core

// Arena is a generic free-list allocator backed by a slice. Allocated
// slots are referenced by int32 index rather than pointer, so that the
// whole arena can be wiped and reused between decodes without handing
// out pointers that would need to be invalidated.
//
// Complexity: Alloc/Free/Get are O(1) amortized; Clear is O(1).
type Arena[T any] struct {
	items    []T
	freeList []int32
}

// NewArena returns an empty Arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Alloc reserves a slot, returning its index. A freed slot is reused
// before the backing slice is grown.
func (a *Arena[T]) Alloc() int32 {
	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		var zero T
		a.items[idx] = zero
		return idx
	}
	idx := int32(len(a.items))
	var zero T
	a.items = append(a.items, zero)
	return idx
}

// Free returns idx to the free list for reuse.
func (a *Arena[T]) Free(idx int32) {
	a.freeList = append(a.freeList, idx)
}

// Get returns a pointer to the slot at idx.
func (a *Arena[T]) Get(idx int32) *T {
	return &a.items[idx]
}

// Clear drops every item and resets the free list.
func (a *Arena[T]) Clear() {
	a.items = a.items[:0]
	a.freeList = a.freeList[:0]
}

// Len returns the number of slots ever allocated (including freed ones
// still occupying backing storage).
func (a *Arena[T]) Len() int { return len(a.items) }

// Items exposes the backing slice for read-only iteration, mirroring
// the teacher's preference for returning slices rather than copies.
func (a *Arena[T]) Items() []T { return a.items }
