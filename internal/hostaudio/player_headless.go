//go:build headless

package hostaudio

import (
	"io"
	"sync"
	"time"
)

// Player pulls from the stream in real time without an output device.
type Player struct {
	src    io.Reader
	period time.Duration
	buf    []byte
	stop   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewPlayer returns a player consuming latency worth of frames per tick.
func NewPlayer(sampleRate int, latency time.Duration, src io.Reader) (*Player, error) {
	if latency <= 0 {
		latency = 10 * time.Millisecond
	}
	frames := max(1, int(latency.Seconds()*float64(sampleRate)))
	return &Player{
		src:    src,
		period: latency,
		buf:    make([]byte, frames*bytesPerFrame),
		stop:   make(chan struct{}),
	}, nil
}

// Play starts pulling from the stream.
func (p *Player) Play() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.period)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				if _, err := io.ReadFull(p.src, p.buf); err != nil {
					return
				}
			}
		}
	}()
}

// Close stops playback.
func (p *Player) Close() error {
	p.once.Do(func() { close(p.stop) })
	p.wg.Wait()
	return nil
}
