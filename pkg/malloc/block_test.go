package malloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignUp8(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0), alignUp8(0))
	assert.Equal(t, uint32(8), alignUp8(1))
	assert.Equal(t, uint32(8), alignUp8(7))
	assert.Equal(t, uint32(8), alignUp8(8))
	assert.Equal(t, uint32(16), alignUp8(9))
	assert.Equal(t, uint32(16), alignUp8(16))
	assert.Equal(t, uint32(24), alignUp8(17))
}

func TestPackAndUnpack(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		size          uint32
		allocated     bool
		prevAllocated bool
	}{
		{16, false, false},
		{16, true, false},
		{16, false, true},
		{16, true, true},
		{1 << 20, true, true},
	} {
		word := pack(tc.size, tc.allocated, tc.prevAllocated)
		assert.Equal(t, tc.size, sizeOf(word))
		assert.Equal(t, tc.allocated, isAllocWord(word))
		assert.Equal(t, tc.prevAllocated, isPrevAllocWord(word))
	}
}

func TestAdjustSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(minBlockSize), adjustSize(0))
	assert.Equal(t, uint32(minBlockSize), adjustSize(1))
	assert.Equal(t, uint32(minBlockSize), adjustSize(4))
	assert.Equal(t, uint32(24), adjustSize(20))
	assert.Equal(t, uint32(32), adjustSize(24))
}
