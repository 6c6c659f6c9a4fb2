package codegen

import "github.com/samber/lo"

// temp is one slot in the temporary pool: a fixed stack offset, a
// size, and whether it currently holds a live value.
//
// Grounded on the original implementation's Temp (base_offset, size,
// is_allocated) and the first-fit allocation strategy
// allocateSingleVariableOnStack uses over the Compiler's temp array.
type temp struct {
	baseOffset int
	size       int
	allocated  bool
}

// temps is the monotonically-growing pool backing Result{Temp}
// descriptors.
type temps struct {
	slots []temp
}

func newTemps() *temps {
	return &temps{}
}

// allocate returns the offset (from rbp) of a free slot big enough for
// size bytes, reusing the first free slot whose reserved size is at
// least size before growing the pool and, with it, the stack frame. A
// larger slot reused for a smaller value still addresses correctly:
// reading size bytes from the same [rbp-offset] base yields the low
// bytes of whatever wider value previously lived there, exactly like a
// narrowing type conversion.
func (t *temps) allocate(size int, frameSize *int) int {
	_, idx, ok := lo.FindIndexOf(t.slots, func(s temp) bool {
		return !s.allocated && s.size >= size
	})
	if ok {
		t.slots[idx].allocated = true
		return t.slots[idx].baseOffset
	}

	*frameSize = alignUp(*frameSize+size, size)
	t.slots = append(t.slots, temp{baseOffset: *frameSize, size: size, allocated: true})
	return *frameSize
}

// free marks the slot at offset as available for reuse.
func (t *temps) free(offset int) {
	_, idx, ok := lo.FindIndexOf(t.slots, func(s temp) bool {
		return s.baseOffset == offset
	})
	if ok {
		t.slots[idx].allocated = false
	}
}

// alignUp rounds num up to the nearest multiple of alignment.
func alignUp(num, alignment int) int {
	if alignment == 0 || num%alignment == 0 {
		return num
	}
	return num + (alignment - num%alignment)
}
