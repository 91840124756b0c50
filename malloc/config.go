package malloc

import sigar "github.com/cloudfoundry/gosigar"
import s "github.com/bnclabs/gosettings"

// Defaultsettings for heaps, applications can override individual
// parameters via New().
//
// "capacity" (int64, default: free system RAM)
//		Maximum memory, in bytes, this heap is allowed to map from
//		the OS, across arena and large regions.
//
// "minblock" (int64, default: 64)
//		Smallest size-class of the free-list index. Should be a
//		multiple of Sizeinterval and large enough to carry the
//		free-list links.
//
// "arena.size" (int64, default: 0)
//		Granularity, in bytes, of arena regions mapped from the OS,
//		amortizes OS calls for small requests. Should be a multiple
//		of the page size. 0 means 64 pages, picked at init.
//
// "large.threshold" (int64, default: 0)
//		Block sizes beyond this take the large path and get a
//		dedicated region. Should be a multiple of Sizeinterval.
//		0 means 4 pages, picked at init.
//
// "region.shrink" (bool, default: true)
//		Release a fully merged arena region back to the OS, keeping
//		one empty region as spare for reuse.
func Defaultsettings() s.Settings {
	_, _, free := getsysmem()
	capacity := int64(free)
	if capacity <= 0 || capacity > Maxheapsize {
		capacity = Maxheapsize
	}
	return s.Settings{
		"capacity":        capacity,
		"minblock":        int64(64),
		"arena.size":      int64(0),
		"large.threshold": int64(0),
		"region.shrink":   true,
	}
}

func getsysmem() (total, used, free uint64) {
	mem := sigar.Mem{}
	mem.Get()
	return mem.Total, mem.Used, mem.Free
}
