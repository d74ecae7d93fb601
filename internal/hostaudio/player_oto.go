//go:build !headless

package hostaudio

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player plays a stream through oto.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
}

// NewPlayer opens the default output device for stereo float32 at
// sampleRate, with a device buffer of roughly latency.
func NewPlayer(sampleRate int, latency time.Duration, src io.Reader) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   latency,
	})
	if err != nil {
		return nil, fmt.Errorf("hostaudio: open output: %w", err)
	}
	<-ready
	return &Player{ctx: ctx, player: ctx.NewPlayer(src)}, nil
}

// Play starts pulling from the stream.
func (p *Player) Play() { p.player.Play() }

// Close stops playback.
func (p *Player) Close() error { return p.player.Close() }
