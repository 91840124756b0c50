package malloc

import "fmt"

// Alignment chunk addresses and block totals are multiples of this.
const Alignment = int64(8)

// Sizeinterval minblock and the large threshold should be multiples of
// Sizeinterval.
const Sizeinterval = int64(32)

// MEMUtilization expected between requested sizes and their size class.
const MEMUtilization = float64(0.95)

// Maxheapsize maximum memory a single heap can be configured to map.
// Can be used as default for the `capacity` setting.
const Maxheapsize = int64(1024 * 1024 * 1024 * 1024) // 1TB

// Blocksizes generate the size-class boundaries between minblock and
// maxblock, to achieve MEMUtilization.
func Blocksizes(minblock, maxblock int64) []int64 {
	if maxblock < minblock { // validate and cure the input params
		panicerr("minblock %v > maxblock %v", minblock, maxblock)
	} else if (minblock % Sizeinterval) != 0 {
		panicerr("minblock %v is not multiple of %v", minblock, Sizeinterval)
	} else if (maxblock % Sizeinterval) != 0 {
		panicerr("maxblock %v is not multiple of %v", maxblock, Sizeinterval)
	}

	nextsize := func(from int64) int64 {
		addby := int64(float64(from) * (1.0 - MEMUtilization))
		if addby <= Sizeinterval {
			addby = Sizeinterval
		} else if addby&(Sizeinterval-1) != 0 {
			addby = (addby >> 5) << 5
		}
		size := from + addby
		for (float64(from+size)/2.0)/float64(size) > MEMUtilization {
			size += addby
		}
		return size
	}

	sizes := make([]int64, 0, 64)
	for size := minblock; size < maxblock; {
		sizes = append(sizes, size)
		size = nextsize(size)
	}
	sizes = append(sizes, maxblock)
	return sizes
}

// ceilclass index of the smallest class >= size. Every member of that
// bucket, and of any bucket above it, can satisfy a request of `size`
// bytes.
func ceilclass(slabs []int64, size int64) int {
	lo, hi := 0, len(slabs)-1
	if size > slabs[hi] {
		panicerr("size %v exceeds largest class %v", size, slabs[hi])
	}
	for lo < hi {
		pivot := (lo + hi) / 2
		if slabs[pivot] < size {
			lo = pivot + 1
		} else {
			hi = pivot
		}
	}
	return lo
}

// fitclass index of the largest class <= size, the insertion bucket for
// a free block of `size` total bytes.
func fitclass(slabs []int64, size int64) int {
	if size < slabs[0] {
		panicerr("size %v below smallest class %v", size, slabs[0])
	}
	lo, hi := 0, len(slabs)-1
	for lo < hi {
		pivot := (lo + hi + 1) / 2
		if slabs[pivot] <= size {
			lo = pivot
		} else {
			hi = pivot - 1
		}
	}
	return lo
}

// alignup round size up to the next multiple of align, align is a power
// of 2.
func alignup(size, align int64) int64 {
	return (size + align - 1) &^ (align - 1)
}

func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}
