// Package hostaudio plays the device output on the host sound card. The
// player pulls interleaved stereo float32 samples from a Stream, which in
// turn renders device blocks on demand.
package hostaudio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Channels is the number of interleaved output channels.
const Channels = 2

const bytesPerFrame = Channels * 4

// BlockFunc renders the next stereo block into outL and outR.
type BlockFunc func(outL, outR []float64)

// Stream adapts a block renderer to an io.Reader of little-endian float32
// stereo frames. Read is called from the audio thread only.
type Stream struct {
	render     BlockFunc
	outL, outR []float64
	pending    []byte
	pos        int
	blocks     uint64
}

// NewStream returns a stream rendering blockSize frames per call to render.
func NewStream(blockSize int, render BlockFunc) (*Stream, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("hostaudio block size must be > 0: %d", blockSize)
	}
	if render == nil {
		return nil, fmt.Errorf("hostaudio render func must not be nil")
	}
	s := &Stream{
		render:  render,
		outL:    make([]float64, blockSize),
		outR:    make([]float64, blockSize),
		pending: make([]byte, blockSize*bytesPerFrame),
	}
	s.pos = len(s.pending)
	return s, nil
}

// Read fills p completely, rendering as many blocks as needed. A frame may
// be split across calls.
func (s *Stream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if s.pos == len(s.pending) {
			s.next()
		}
		c := copy(p[n:], s.pending[s.pos:])
		s.pos += c
		n += c
	}
	return n, nil
}

// Blocks returns the number of rendered blocks.
func (s *Stream) Blocks() uint64 { return s.blocks }

func (s *Stream) next() {
	s.render(s.outL, s.outR)
	for i := range s.outL {
		off := i * bytesPerFrame
		binary.LittleEndian.PutUint32(s.pending[off:], math.Float32bits(float32(s.outL[i])))
		binary.LittleEndian.PutUint32(s.pending[off+4:], math.Float32bits(float32(s.outR[i])))
	}
	s.pos = 0
	s.blocks++
}
