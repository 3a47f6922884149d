package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBufferPool(t *testing.T) {
	bp := NewBufferPool()
	require.NotNil(t, bp)
	assert.NotNil(t, bp.blocks)
	assert.NotNil(t, bp.parts)
}

func TestBufferPool_GetBlock(t *testing.T) {
	bp := NewBufferPool()

	buf := bp.GetBlock()
	require.NotNil(t, buf)
	assert.Equal(t, BlockSize, len(buf))
	assert.Equal(t, BlockSize, cap(buf))

	// Shrunk buffers come back full length
	bp.PutBlock(buf[:10])
	again := bp.GetBlock()
	assert.Equal(t, BlockSize, len(again))
	bp.PutBlock(again)
}

func TestBufferPool_PutBlock_WrongCapacity(t *testing.T) {
	bp := NewBufferPool()

	// Must not panic and must not poison the pool
	bp.PutBlock(make([]byte, 16))
	buf := bp.GetBlock()
	assert.Equal(t, BlockSize, cap(buf))
}

func TestBufferPool_GetPart(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"block sized", BlockSize},
		{"two blocks", 2 * BlockSize},
		{"eight blocks", 8 * BlockSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp := NewBufferPool()
			buf := bp.GetPart(tt.size)
			assert.Equal(t, tt.size, len(buf))
			bp.PutPart(buf)

			again := bp.GetPart(tt.size)
			assert.Equal(t, tt.size, len(again))
		})
	}
}

func TestBufferPool_ConcurrentAccess(t *testing.T) {
	bp := NewBufferPool()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			size := BlockSize * (1 + i%2)
			buf := bp.GetPart(size)
			buf[0] = byte(i)
			bp.PutPart(buf)
		}(i)
	}

	wg.Wait()
}

func TestGlobalPool(t *testing.T) {
	buf := GetBlock()
	assert.Equal(t, BlockSize, len(buf))
	PutBlock(buf)

	part := GetPart(4 * BlockSize)
	assert.Equal(t, 4*BlockSize, len(part))
	PutPart(part)
}
