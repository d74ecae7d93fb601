package engine

import "github.com/cwbudde/algo-chaosdelay/dsp/buffer"

// Tap selects one of the two block streams a channel offers the mixer.
type Tap int

const (
	Clean Tap = iota
	Dirty
)

func (t Tap) String() string {
	switch t {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	default:
		return "unknown"
	}
}

// Channels is the number of output channels.
const Channels = 2

// Block is one audio block of a single channel. Seq is the period that
// produced it.
type Block struct {
	Seq uint64
	buf *buffer.Buffer
}

// NewBlock returns a standalone block of size samples.
func NewBlock(size int) *Block {
	return &Block{buf: buffer.New(size)}
}

// Samples returns the block's sample slice.
func (b *Block) Samples() []float64 { return b.buf.Samples() }

// Len returns the number of samples.
func (b *Block) Len() int { return b.buf.Len() }

// slot holds the block a tap produced for the current period until the
// mixer releases it.
type slot struct {
	block   *Block
	held    bool
	wrapper Block
}
