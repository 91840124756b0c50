package malloc

import "github.com/billy-kozak/gorilla-malloc/api"

// Leakcursor continuation state for the heap's leak walker. Cursors are
// invalidated by any mutation of the heap, restart with a nil cursor
// after allocating or freeing.
type Leakcursor struct {
	reg *region
	off int64
}

// Leaks enumerate chunks still in use, in region creation order. Pass a
// nil cursor to begin. Each call returns the next in-use block and a
// continuation cursor, a nil cursor return terminates the walk. The
// sequence is empty iff every allocation has been freed.
func (heap *Heap) Leaks(cursor *Leakcursor) (api.Blockinfo, *Leakcursor) {
	reg, off := heap.regions, int64(0)
	if cursor != nil {
		reg, off = cursor.reg, cursor.off
	}
	for reg != nil {
		for off < reg.size {
			blk := (*block)(ptrat(reg.base(), off))
			if !blk.isfree() {
				info := api.Blockinfo{
					Ptr:   blk.userptr(),
					Size:  blk.payload,
					Large: blk.islarge(),
				}
				return info, &Leakcursor{reg: reg, off: off + blk.total}
			}
			off += blk.total
		}
		reg, off = reg.next, 0
	}
	return api.Blockinfo{}, nil
}
