package malloc

import "fmt"
import "unsafe"

import "github.com/billy-kozak/gorilla-malloc/api"
import "github.com/billy-kozak/gorilla-malloc/lib"
import "github.com/billy-kozak/gorilla-malloc/osmem"
import "github.com/bnclabs/golog"
import s "github.com/bnclabs/gosettings"
import humanize "github.com/dustin/go-humanize"

// Heap manages a pool of OS backed regions and serves allocation
// requests out of them. Heaps are independent of each other and not
// internally synchronized.
type Heap struct {
	// 64-bit aligned stats
	n_allocs  int64
	n_frees   int64
	allocated int64 // total bytes of in-use blocks, headers included
	mapped    int64 // bytes currently mapped from the OS

	pagesize int64
	slabs    []int64      // sorted size-class boundaries
	flist    []*freeblock // bucket heads, one per size class
	regions  *region      // registry head, creation order
	regtail  *region
	nregions int64
	nempty   int64 // arena regions spanned by a single free block

	h_sizes sizestats // request census over the size classes

	// settings
	capacity  int64 // capacity
	minblock  int64 // minblock
	arenasize int64 // arena.size
	threshold int64 // large.threshold
	shrink    bool  // region.shrink
	setts     s.Settings
	logprefix string
	dead      bool
}

// New create a heap. Supplied settings are mixed over Defaultsettings().
// The page size is snapshotted here and one warm arena region is
// acquired, failure to map it is reported as api.ErrorOutofMemory.
func New(name string, setts s.Settings) (*Heap, error) {
	heap := &Heap{pagesize: osmem.Pagesize()}
	heap.logprefix = fmt.Sprintf("GMAL [%s]", name)
	setts = make(s.Settings).Mixin(Defaultsettings(), setts)
	heap.readsettings(setts)
	heap.slabs = Blocksizes(heap.minblock, heap.threshold)
	heap.flist = make([]*freeblock, len(heap.slabs))
	heap.h_sizes.init(len(heap.slabs))
	if _, err := heap.acquirearena(heap.arenasize); err != nil {
		return nil, err
	}
	fmsg := "%v started with %v capacity\n"
	log.Infof(fmsg, heap.logprefix, humanize.Bytes(uint64(heap.capacity)))
	return heap, nil
}

func (heap *Heap) readsettings(setts s.Settings) {
	heap.capacity = setts.Int64("capacity")
	heap.minblock = setts.Int64("minblock")
	heap.arenasize = setts.Int64("arena.size")
	heap.threshold = setts.Int64("large.threshold")
	heap.shrink = setts.Bool("region.shrink")
	heap.setts = setts

	if heap.threshold == 0 {
		heap.threshold = heap.pagesize * 4
	}
	if heap.arenasize == 0 {
		heap.arenasize = heap.pagesize * 64
	}
	if heap.capacity <= 0 || heap.capacity > Maxheapsize {
		panicerr("capacity %v out of range", heap.capacity)
	} else if heap.minblock < minblocksize {
		panicerr("minblock %v below %v", heap.minblock, minblocksize)
	} else if (heap.arenasize % heap.pagesize) != 0 {
		panicerr("arena.size %v not multiple of page size", heap.arenasize)
	} else if heap.arenasize < heap.threshold+heap.pagesize {
		fmsg := "arena.size %v too small for large.threshold %v"
		panicerr(fmsg, heap.arenasize, heap.threshold)
	}
}

//---- operations

// Alloc implement api.Mallocer{} interface. Allocate a chunk of `n`
// bytes, nil means out of memory. A zero byte request gets a distinct
// minimum sized chunk.
func (heap *Heap) Alloc(n int64) unsafe.Pointer {
	if heap.dead {
		panicerr("%v Alloc() on released heap", heap.logprefix)
	} else if n < 0 {
		panicerr("%v Alloc() size %v", heap.logprefix, n)
	}
	size := heap.blocksize(n)
	heap.h_sizes.sample(heap.slabs, size)
	if size > heap.threshold { // large path
		reg, err := heap.acquirelarge(n)
		if err != nil {
			return nil
		}
		blk := reg.firstblock()
		initblock(blk)
		heap.n_allocs++
		heap.allocated += blk.total
		return blk.userptr()
	}
	blk := heap.searchfree(size)
	if blk == nil {
		if _, err := heap.acquirearena(size); err != nil {
			return nil
		}
		blk = heap.searchfree(size)
	}
	return heap.carve(blk, size, n)
}

// Free implement api.Mallocer{} interface. Release the chunk at `ptr`
// back to the heap, merging it with free physical neighbors. Freeing
// nil is a no-op, double free panics when detected, pointers this heap
// never vended panic with api.ErrorInvalidPointer when detection is
// possible and are undefined behavior otherwise.
func (heap *Heap) Free(ptr unsafe.Pointer) {
	if heap.dead {
		panicerr("%v Free() on released heap", heap.logprefix)
	} else if ptr == nil {
		return
	}
	blk := heap.checkpointer(ptr)
	if blk.islarge() {
		heap.n_frees++
		heap.allocated -= blk.total
		heap.releaseregion(blk.reg)
		return
	}
	if blk.isfree() {
		panicerr("%v double free of %p", heap.logprefix, ptr)
	}
	heap.n_frees++
	heap.allocated -= blk.total
	blk = heap.coalesce(blk)
	if heap.shrink && blk.spansregion() && heap.nempty >= 1 {
		heap.releaseregion(blk.reg)
		return
	}
	heap.pushfree(blk)
}

// Realloc implement api.Mallocer{} interface. Resize the chunk at
// `ptr` to `n` bytes, in place when the
// block already covers the new size or a free next neighbor can be
// absorbed, moving the chunk otherwise. Returns nil, leaving the old
// chunk untouched, when memory is exhausted.
func (heap *Heap) Realloc(ptr unsafe.Pointer, n int64) unsafe.Pointer {
	if heap.dead {
		panicerr("%v Realloc() on released heap", heap.logprefix)
	} else if ptr == nil {
		return heap.Alloc(n)
	} else if n == 0 {
		heap.Free(ptr)
		return nil
	} else if n < 0 {
		panicerr("%v Realloc() size %v", heap.logprefix, n)
	}

	blk, size := heap.checkpointer(ptr), heap.blocksize(n)
	if blk.islarge() {
		if size <= blk.total { // the region already covers it
			blk.payload = n
			return ptr
		}
		return heap.movechunk(blk, ptr, n)
	}

	oldtotal := blk.total
	if size <= blk.total { // shrink, or grow within the block's slack
		if blk.total-size >= heap.minblock {
			tail := blk.splitat(size)
			if next := tail.nextphys(); next != nil && next.isfree() {
				heap.popfree(next)
				tail.total += next.total
				if nn := tail.nextphys(); nn != nil {
					nn.prevphys = tail
				}
			}
			heap.pushfree(tail)
			heap.allocated += blk.total - oldtotal
		}
		blk.payload = n
		return ptr
	}

	next := blk.nextphys()
	if next != nil && next.isfree() && blk.total+next.total >= size {
		heap.popfree(next) // absorb the neighbor
		blk.total += next.total
		if nn := blk.nextphys(); nn != nil {
			nn.prevphys = blk
		}
		if blk.total-size >= heap.minblock {
			tail := blk.splitat(size)
			heap.pushfree(tail)
		}
		heap.allocated += blk.total - oldtotal
		blk.payload = n
		return ptr
	}
	return heap.movechunk(blk, ptr, n)
}

// Chunklen implement api.Mallocer{} interface.
func (heap *Heap) Chunklen(ptr unsafe.Pointer) int64 {
	return headerof(ptr).payload
}

// Slabs implement api.Mallocer{} interface. Return a copy of the
// size-class boundaries of the free-list index.
func (heap *Heap) Slabs() []int64 {
	sizes := make([]int64, len(heap.slabs))
	copy(sizes, heap.slabs)
	return sizes
}

//---- local functions

// checkpointer best-effort detection of pointers this heap never
// vended: the pointer must be aligned, its header must fall inside one
// of the heap's regions, and the header's region link must agree.
// Nothing is dereferenced until the pointer is placed, so a foreign
// address panics with api.ErrorInvalidPointer instead of faulting.
func (heap *Heap) checkpointer(ptr unsafe.Pointer) *block {
	if (uintptr(ptr) & uintptr(Alignment-1)) != 0 {
		panic(api.ErrorInvalidPointer)
	}
	blk := headerof(ptr)
	for reg := heap.regions; reg != nil; reg = reg.next {
		base := uintptr(reg.base())
		if x := uintptr(unsafe.Pointer(blk)); x >= base && x < base+uintptr(reg.size) {
			if blk.reg != reg {
				panic(api.ErrorInvalidPointer)
			}
			return blk
		}
	}
	panic(api.ErrorInvalidPointer)
}

// blocksize effective block size for a request of n payload bytes,
// never below the smallest size class so every block, once freed, has
// an insertion bucket.
func (heap *Heap) blocksize(n int64) int64 {
	if n < Minpayload {
		n = Minpayload
	}
	size := alignup(headersize+n, Alignment)
	if size < heap.minblock {
		size = heap.minblock
	}
	return size
}

// carve hand out a block found in the index, splitting off the residual
// when it is big enough to stand on its own.
func (heap *Heap) carve(blk *block, size, n int64) unsafe.Pointer {
	if blk.total-size >= heap.minblock {
		heap.pushfree(blk.splitat(size))
	}
	blk.flags = 0
	blk.payload = n
	initblock(blk)
	heap.n_allocs++
	heap.allocated += blk.total
	return blk.userptr()
}

// coalesce fold the block into its free physical neighbors, first
// backward through the back-link, then forward. Eager merging keeps the
// no-two-adjacent-free invariant.
func (heap *Heap) coalesce(blk *block) *block {
	blk.flags = blkfree
	if prev := blk.prevphys; prev != nil && prev.isfree() {
		heap.popfree(prev)
		prev.total += blk.total
		if nn := prev.nextphys(); nn != nil {
			nn.prevphys = prev
		}
		blk = prev
	}
	if next := blk.nextphys(); next != nil && next.isfree() {
		heap.popfree(next)
		blk.total += next.total
		if nn := blk.nextphys(); nn != nil {
			nn.prevphys = blk
		}
	}
	return blk
}

// movechunk allocate-copy-free fallback for Realloc.
func (heap *Heap) movechunk(blk *block, ptr unsafe.Pointer, n int64) unsafe.Pointer {
	newptr := heap.Alloc(n)
	if newptr == nil {
		return nil
	}
	ln := blk.payload
	if n < ln {
		ln = n
	}
	lib.Memcpy(newptr, ptr, int(ln))
	heap.Free(ptr)
	return newptr
}

//---- statistics and maintenance

// Info implement api.Mallocer{} interface. `overhead` counts the block
// headers of live chunks and the heap's own bookkeeping.
func (heap *Heap) Info() (capacity, heapmem, alloc, overhead int64) {
	self := int64(unsafe.Sizeof(*heap))
	slicesz := int64(cap(heap.slabs))*int64(unsafe.Sizeof(int64(1))) +
		int64(cap(heap.flist))*int64(unsafe.Sizeof((*freeblock)(nil)))
	overhead = self + slicesz
	overhead += heap.nregions * int64(unsafe.Sizeof(region{}))
	overhead += (heap.n_allocs - heap.n_frees) * headersize
	return heap.capacity, heap.mapped, heap.allocated, overhead
}

// Utilization implement api.Mallocer{} interface. Returns the
// size-class boundaries and the number of free blocks currently
// indexed under each class.
func (heap *Heap) Utilization() ([]int64, []int64) {
	return heap.Slabs(), heap.freeblocks()
}

// Logstatistics dump a human readable accounting summary via the
// configured logger.
func (heap *Heap) Logstatistics() {
	_, heapmem, alloc, overhead := heap.Info()
	fmsg := "%v mapped:%v allocated:%v overhead:%v regions:%v\n"
	log.Infof(
		fmsg, heap.logprefix,
		humanize.Bytes(uint64(heapmem)), humanize.Bytes(uint64(alloc)),
		humanize.Bytes(uint64(overhead)), heap.nregions,
	)
	if st := &heap.h_sizes; st.samples > 0 {
		slab, count := st.hottest(heap.slabs)
		fmsg = "%v requests samples:%v min:%v max:%v large:%v hot:%v(%v)\n"
		log.Infof(
			fmsg, heap.logprefix, st.samples,
			st.minsize, st.maxsize, st.nlarge, slab, count,
		)
	}
}

// Release implement api.Mallocer{} interface. Unmap every region and
// invalidate every pointer this heap has vended. Outstanding chunks
// are logged and discarded, the return value is 0 either way.
func (heap *Heap) Release() int {
	if heap.dead {
		panicerr("%v Release() on released heap", heap.logprefix)
	}
	leaks, leaked := int64(0), int64(0)
	for info, cursor := heap.Leaks(nil); cursor != nil; info, cursor = heap.Leaks(cursor) {
		leaks, leaked = leaks+1, leaked+info.Size
	}
	if leaks > 0 {
		fmsg := "%v released with %v outstanding chunks (%v)\n"
		log.Warnf(fmsg, heap.logprefix, leaks, humanize.Bytes(uint64(leaked)))
	}
	for reg := heap.regions; reg != nil; {
		next := reg.next
		heap.releaseregion(reg)
		reg = next
	}
	log.Infof("%v released\n", heap.logprefix)
	heap.slabs, heap.flist = nil, nil
	heap.regions, heap.regtail = nil, nil
	heap.nempty, heap.dead = 0, true
	return 0
}
