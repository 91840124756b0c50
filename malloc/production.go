//go:build !debug

package malloc

// initblock production variant, chunks are handed out as is.
func initblock(blk *block) {
}
