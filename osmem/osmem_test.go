package osmem

import "testing"
import "unsafe"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func TestPagesize(t *testing.T) {
	pagesize := Pagesize()
	assert.True(t, pagesize >= 4096, "pagesize %v", pagesize)
	assert.Equal(t, int64(0), pagesize&(pagesize-1), "pagesize power of 2")
}

func TestMapUnmap(t *testing.T) {
	size := Pagesize() * 4
	mem, err := Map(size)
	require.NoError(t, err)
	require.Equal(t, int(size), len(mem))

	base := uintptr(unsafe.Pointer(&mem[0]))
	assert.Equal(t, uintptr(0), base&uintptr(Pagesize()-1), "page aligned")

	for i := range mem {
		if mem[i] != 0 {
			t.Fatalf("byte %v not zero initialized", i)
		}
	}
	for i := range mem {
		mem[i] = byte(i & 0xFF)
	}
	for i := range mem {
		require.Equal(t, byte(i&0xFF), mem[i])
	}
	require.NoError(t, Unmap(mem))
}

func TestMapMany(t *testing.T) {
	pagesize := Pagesize()
	mappings := make([][]byte, 0, 16)
	for i := 0; i < 16; i++ {
		mem, err := Map(pagesize)
		require.NoError(t, err)
		mappings = append(mappings, mem)
	}
	for _, mem := range mappings {
		require.NoError(t, Unmap(mem))
	}
}
