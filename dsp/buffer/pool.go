package buffer

import (
	"sync"
	"sync/atomic"
)

// Pool hands out fixed-length blocks backed by a sync.Pool, so that the
// per-period create/destroy cycle of audio blocks does not reach the GC in
// steady state.
type Pool struct {
	pool        sync.Pool
	blockSize   int
	outstanding atomic.Int64
}

// NewPool returns a Pool of blocks with blockSize samples each.
// A non-positive blockSize yields empty blocks.
func NewPool(blockSize int) *Pool {
	if blockSize < 0 {
		blockSize = 0
	}
	p := &Pool{blockSize: blockSize}
	p.pool.New = func() any {
		return New(p.blockSize)
	}
	return p
}

// BlockSize returns the length of the blocks handed out by the pool.
func (p *Pool) BlockSize() int {
	return p.blockSize
}

// Get returns a zeroed block. Callers must return it via Put when done.
func (p *Pool) Get() *Buffer {
	b := p.pool.Get().(*Buffer)
	b.Zero()
	p.outstanding.Add(1)
	return b
}

// Put returns a block to the pool. The caller must not use it afterwards.
// Blocks of a foreign length are dropped instead of recycled.
func (p *Pool) Put(b *Buffer) {
	if b == nil {
		return
	}
	p.outstanding.Add(-1)
	if b.Len() != p.blockSize {
		return
	}
	p.pool.Put(b)
}

// Outstanding reports how many blocks are currently checked out.
func (p *Pool) Outstanding() int64 {
	return p.outstanding.Load()
}
