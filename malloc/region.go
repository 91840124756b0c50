package malloc

import "unsafe"

import "github.com/billy-kozak/gorilla-malloc/api"
import "github.com/billy-kozak/gorilla-malloc/osmem"
import "github.com/bnclabs/golog"

// region one OS mapping owned by the heap, either an arena subdivided
// into a chain of blocks or a dedicated mapping holding a single large
// block. The registry is a doubly linked list appended at the tail, so
// iteration follows creation order.
type region struct {
	mem   []byte // the whole mapping, as returned by osmem.Map
	size  int64  // bytes, a multiple of the page size
	large bool
	prev  *region
	next  *region
}

func (reg *region) base() unsafe.Pointer {
	return unsafe.Pointer(&reg.mem[0])
}

// firstblock header at the region base.
func (reg *region) firstblock() *block {
	return (*block)(reg.base())
}

// acquirearena map an arena region of at least minbytes, rounded up to
// the arena granularity, and index it as a single free block.
func (heap *Heap) acquirearena(minbytes int64) (*region, error) {
	size := heap.arenasize
	if minbytes > size {
		size = ((minbytes + size - 1) / size) * size
	}
	reg, err := heap.mapregion(size, false)
	if err != nil {
		return nil, err
	}
	blk := reg.firstblock()
	blk.total, blk.payload = size, 0
	blk.flags = blkfree
	blk.prevphys, blk.reg = nil, reg
	heap.pushfree(blk)
	return reg, nil
}

// acquirelarge map a dedicated region for a single chunk of n bytes,
// rounded up to a page multiple, and initialize its in-use block.
func (heap *Heap) acquirelarge(n int64) (*region, error) {
	size := alignup(headersize+n, heap.pagesize)
	reg, err := heap.mapregion(size, true)
	if err != nil {
		return nil, err
	}
	blk := reg.firstblock()
	blk.total, blk.payload = size, n
	blk.flags = blklarge
	blk.prevphys, blk.reg = nil, reg
	return reg, nil
}

func (heap *Heap) mapregion(size int64, large bool) (*region, error) {
	if heap.mapped+size > heap.capacity {
		log.Errorf("%v capacity %v exhausted mapping %v bytes\n",
			heap.logprefix, heap.capacity, size)
		return nil, api.ErrorOutofMemory
	}
	mem, err := osmem.Map(size)
	if err != nil {
		log.Errorf("%v %v\n", heap.logprefix, err)
		return nil, api.ErrorOutofMemory
	}
	reg := &region{mem: mem, size: size, large: large}
	reg.prev = heap.regtail
	if heap.regtail != nil {
		heap.regtail.next = reg
	} else {
		heap.regions = reg
	}
	heap.regtail = reg
	heap.mapped += size
	heap.nregions++
	return reg, nil
}

// releaseregion unlink the region from the registry and hand its
// mapping back to the OS.
func (heap *Heap) releaseregion(reg *region) {
	if reg.prev != nil {
		reg.prev.next = reg.next
	} else {
		heap.regions = reg.next
	}
	if reg.next != nil {
		reg.next.prev = reg.prev
	} else {
		heap.regtail = reg.prev
	}
	heap.mapped -= reg.size
	heap.nregions--
	if err := osmem.Unmap(reg.mem); err != nil {
		log.Errorf("%v %v\n", heap.logprefix, err)
	}
	reg.mem, reg.prev, reg.next = nil, nil, nil
}
