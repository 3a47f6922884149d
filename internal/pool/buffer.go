package pool

import (
	"sync"
)

// BlockSize is the size of one tree hash block (1 MiB).
const BlockSize = 1024 * 1024

// BufferPool manages reusable block and part buffers to reduce allocations.
// Part buffers are pooled per size because a client normally uses a single
// configured part size for every multipart upload.
type BufferPool struct {
	blocks *sync.Pool

	mu    sync.Mutex
	parts map[int]*sync.Pool
}

// NewBufferPool creates a new buffer pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		blocks: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, BlockSize)
				return &buf
			},
		},
		parts: make(map[int]*sync.Pool),
	}
}

// GetBlock returns a full-length block buffer from the pool.
// The caller is responsible for calling PutBlock to return the buffer to the pool.
func (bp *BufferPool) GetBlock() []byte {
	bufPtr := bp.blocks.Get().(*[]byte)
	return (*bufPtr)[:BlockSize]
}

// PutBlock returns a block buffer to the pool.
// Buffers with a different capacity are dropped.
func (bp *BufferPool) PutBlock(buf []byte) {
	if cap(buf) != BlockSize {
		return
	}
	buf = buf[:BlockSize]
	bp.blocks.Put(&buf)
}

// GetPart returns a full-length buffer of exactly size bytes.
// Block-sized requests are served from the block pool.
func (bp *BufferPool) GetPart(size int) []byte {
	if size == BlockSize {
		return bp.GetBlock()
	}
	bufPtr := bp.partPool(size).Get().(*[]byte)
	return (*bufPtr)[:size]
}

// PutPart returns a part buffer to the pool matching its capacity.
func (bp *BufferPool) PutPart(buf []byte) {
	size := cap(buf)
	if size == BlockSize {
		bp.PutBlock(buf)
		return
	}
	if size == 0 {
		return
	}
	buf = buf[:size]
	bp.partPool(size).Put(&buf)
}

func (bp *BufferPool) partPool(size int) *sync.Pool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	p, ok := bp.parts[size]
	if !ok {
		p = &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		}
		bp.parts[size] = p
	}
	return p
}

// Global buffer pool instance for use throughout the module.
var globalBufferPool = NewBufferPool()

// GetBlock returns a block buffer from the global pool.
func GetBlock() []byte {
	return globalBufferPool.GetBlock()
}

// PutBlock returns a block buffer to the global pool.
func PutBlock(buf []byte) {
	globalBufferPool.PutBlock(buf)
}

// GetPart returns a part buffer of the given size from the global pool.
func GetPart(size int) []byte {
	return globalBufferPool.GetPart(size)
}

// PutPart returns a part buffer to the global pool.
func PutPart(buf []byte) {
	globalBufferPool.PutPart(buf)
}
