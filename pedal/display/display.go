// Package display drives the eight-LED chaos level bar.
package display

import (
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// LEDs is the number of LEDs on the bar.
const LEDs = 8

// Pattern returns the LED bit pattern for level: the lowest level bits are
// lit. Levels outside [0, LEDs] are clamped.
func Pattern(level int) uint8 {
	if level <= 0 {
		return 0
	}
	if level > LEDs {
		level = LEDs
	}
	return uint8(0xFF >> (LEDs - level))
}

// Style renders LED patterns as text.
type Style struct {
	On, Off       lipgloss.Style
	OnGlyph       string
	OffGlyph      string
	LowToHighLeft bool
}

// NewStyle returns the default bar style for renderer r. A nil r uses the
// default lipgloss renderer.
func NewStyle(r *lipgloss.Renderer) Style {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Style{
		On:            r.NewStyle().Foreground(lipgloss.Color("#ff3b30")).Bold(true),
		Off:           r.NewStyle().Foreground(lipgloss.Color("#555")),
		OnGlyph:       "●",
		OffGlyph:      "○",
		LowToHighLeft: true,
	}
}

// Bar renders the pattern of level, LED 0 first.
func (s Style) Bar(level int) string {
	p := Pattern(level)
	var b strings.Builder
	for i := range LEDs {
		bit := i
		if !s.LowToHighLeft {
			bit = LEDs - 1 - i
		}
		if p&(1<<bit) != 0 {
			b.WriteString(s.On.Render(s.OnGlyph))
		} else {
			b.WriteString(s.Off.Render(s.OffGlyph))
		}
	}
	return b.String()
}

// Bar renders level with the default style.
func Bar(level int) string { return NewStyle(nil).Bar(level) }

// Display holds the level shown on the bar. SetLevel is safe from any
// goroutine and never blocks.
type Display struct {
	level   atomic.Int32
	changed chan struct{}
}

// New returns a display at level 0.
func New() *Display {
	return &Display{changed: make(chan struct{}, 1)}
}

// SetLevel shows level and signals Changes.
func (d *Display) SetLevel(level int) {
	d.level.Store(int32(level))
	select {
	case d.changed <- struct{}{}:
	default:
	}
}

// Level returns the level currently shown.
func (d *Display) Level() int { return int(d.level.Load()) }

// Pattern returns the LED pattern currently shown.
func (d *Display) Pattern() uint8 { return Pattern(d.Level()) }

// Changes is signalled after SetLevel. Signals coalesce.
func (d *Display) Changes() <-chan struct{} { return d.changed }
