//go:build debug

package malloc

import "github.com/billy-kozak/gorilla-malloc/lib"

// initblock poison freshly handed out chunks, helps catch reads of
// uninitialized memory.
func initblock(blk *block) {
	lib.Memset(blk.userptr(), 0xff, int(blk.total-headersize))
}
