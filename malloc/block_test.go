package malloc

import "testing"
import "unsafe"

func TestHeaderof(t *testing.T) {
	heap := mkheap(t, nil)

	ptr := heap.Alloc(100)
	blk := headerof(ptr)
	if blk.userptr() != ptr {
		t.Errorf("expected %p, got %p", ptr, blk.userptr())
	} else if blk.payload != 100 {
		t.Errorf("expected %v, got %v", 100, blk.payload)
	} else if (blk.total % Alignment) != 0 {
		t.Errorf("total %v not aligned", blk.total)
	} else if blk.total < headersize+100 {
		t.Errorf("total %v too small", blk.total)
	}
	heap.Free(ptr)
	heap.Release()
}

func TestAlignment(t *testing.T) {
	heap := mkheap(t, nil)

	ptrs := make([]unsafe.Pointer, 0, 64)
	for n := int64(0); n < 64; n++ {
		ptr := heap.Alloc(n)
		if (uintptr(ptr) & uintptr(Alignment-1)) != 0 {
			t.Errorf("pointer %p for size %v not %v byte aligned", ptr, n, Alignment)
		}
		ptrs = append(ptrs, ptr)
	}
	for _, ptr := range ptrs {
		heap.Free(ptr)
	}
	heap.Validate()
	heap.Release()
}

func TestBacklinks(t *testing.T) {
	heap := mkheap(t, nil)

	a := heap.Alloc(128)
	b := heap.Alloc(128)
	ablk, bblk := headerof(a), headerof(b)
	if ablk.nextphys() != bblk {
		t.Errorf("expected %p, got %p", bblk, ablk.nextphys())
	} else if bblk.prevphys != ablk {
		t.Errorf("expected %p, got %p", ablk, bblk.prevphys)
	}
	heap.Free(a)
	heap.Free(b)
	heap.Validate()
	heap.Release()
}

func TestMinimumblock(t *testing.T) {
	if headersize != int64(unsafe.Sizeof(block{})) {
		t.Errorf("unexpected headersize %v", headersize)
	}
	fbsize := int64(unsafe.Sizeof(freeblock{}))
	if fbsize > minblocksize {
		t.Errorf("free links %v do not fit the minimum block %v", fbsize, minblocksize)
	}
	if (headersize % Alignment) != 0 {
		t.Errorf("headersize %v not aligned", headersize)
	}
}
