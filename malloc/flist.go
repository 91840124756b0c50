package malloc

// Segregated free-list index. Buckets are keyed by size class, a free
// block is indexed under the largest class not exceeding its total size
// while lookups start at the smallest class covering the request, so
// every bucket member examined is guaranteed to fit. Blocks carry their
// own linkage (freeblock{}), insert and remove are O(1).

// pushfree index a block as free. Links live in the block's payload
// bytes.
func (heap *Heap) pushfree(blk *block) {
	blk.flags = blkfree
	idx := fitclass(heap.slabs, blk.total)
	fb, head := blk.asfree(), heap.flist[idx]
	fb.fnext = head
	fb.fprev = &heap.flist[idx]
	if head != nil {
		head.fprev = &fb.fnext
	}
	heap.flist[idx] = fb
	if blk.spansregion() {
		heap.nempty++
	}
}

// popfree unlink a free block from its bucket, the block stays marked
// free until the caller decides otherwise.
func (heap *Heap) popfree(blk *block) {
	fb := blk.asfree()
	*(fb.fprev) = fb.fnext
	if fb.fnext != nil {
		fb.fnext.fprev = fb.fprev
	}
	fb.fprev, fb.fnext = nil, nil
	if blk.spansregion() {
		heap.nempty--
	}
}

// searchfree first-fit lookup for a block of at least `size` total
// bytes, escalating to larger buckets when the natural bucket is empty.
// The returned block is unlinked from the index.
func (heap *Heap) searchfree(size int64) *block {
	for idx := ceilclass(heap.slabs, size); idx < len(heap.flist); idx++ {
		if fb := heap.flist[idx]; fb != nil {
			heap.popfree(&fb.block)
			return &fb.block
		}
	}
	return nil
}

// freeblocks per-class census of the index, for Utilization().
func (heap *Heap) freeblocks() []int64 {
	counts := make([]int64, len(heap.flist))
	for idx, fb := range heap.flist {
		for ; fb != nil; fb = fb.fnext {
			counts[idx]++
		}
	}
	return counts
}
