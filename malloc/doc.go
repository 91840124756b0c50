// Package malloc supplies a general purpose heap allocator servicing
// dynamic allocation requests from its own pool of virtual memory
// regions, obtained directly from the OS, with a limited scope:
//
//   - Types and Functions exported by this package are not thread safe.
//     A heap is owned by a single caller, applications needing shared
//     access shall wrap the heap with their own mutual exclusion.
//   - Small and medium chunks are carved out of arena regions, several
//     pages each, and merged back eagerly when freed. Chunks larger
//     than the configured threshold get a dedicated region that is
//     returned to the OS as a whole on free.
//   - Chunks can be resized in place, by splitting off a tail or by
//     absorbing a free physical neighbor, and fall back to
//     allocate-copy-free only when in-place resizing is not possible.
//   - Memory chunks allocated by this package will always be 64-bit
//     aligned.
//
// Heaps are created empty but for one warm arena region, fill up on
// demand and give fully merged arena regions back to the OS. Releasing
// the heap unmaps every region and invalidates every pointer the heap
// ever vended. Outstanding chunks can be enumerated, prior to release,
// with the heap's leak walker.
package malloc
