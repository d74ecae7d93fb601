package surface

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pion/logging"
	"golang.org/x/term"

	"github.com/cwbudde/algo-chaosdelay/pedal/control"
)

// ErrNotTerminal is returned by Keys.Start when stdin is not a terminal.
var ErrNotTerminal = errors.New("surface: stdin is not a terminal")

const (
	// KeyStep is the raw pot change per key press.
	KeyStep = 32
	// KeyPulse is how long a button key reads as pressed.
	KeyPulse = 120 * time.Millisecond
)

type keyAction struct {
	pot    control.PotID
	delta  int
	button control.ButtonID
	isPot  bool
}

// keyMap pairs each pot with an up and a down key on adjacent keyboard
// rows.
var keyMap = map[byte]keyAction{
	'q': {pot: control.PotDelay, delta: KeyStep, isPot: true},
	'a': {pot: control.PotDelay, delta: -KeyStep, isPot: true},
	'w': {pot: control.PotFeedback, delta: KeyStep, isPot: true},
	's': {pot: control.PotFeedback, delta: -KeyStep, isPot: true},
	'e': {pot: control.PotNoise, delta: KeyStep, isPot: true},
	'd': {pot: control.PotNoise, delta: -KeyStep, isPot: true},
	'r': {pot: control.PotDensity, delta: KeyStep, isPot: true},
	'f': {pot: control.PotDensity, delta: -KeyStep, isPot: true},
	't': {pot: control.PotMix, delta: KeyStep, isPot: true},
	'g': {pot: control.PotMix, delta: -KeyStep, isPot: true},
	' ': {button: control.ButtonReseed},
	'x': {button: control.ButtonReset},
}

// KeyHelp describes the key bindings.
const KeyHelp = "q/a delay  w/s feedback  e/d noise  r/f density  t/g mix  space chaos+  x reset  ctrl-c quit"

// Keys is a surface driven by the terminal keyboard in raw mode.
type Keys struct {
	*State
	in   *os.File
	log  logging.LeveledLogger
	quit chan struct{}

	mu       sync.Mutex
	oldState *term.State
	quitOnce sync.Once
}

// NewKeys returns a keyboard surface reading in. A nil log discards
// messages.
func NewKeys(in *os.File, log logging.LeveledLogger) *Keys {
	return &Keys{State: NewState(), in: in, log: log, quit: make(chan struct{})}
}

// Quit is closed when ctrl-c or ctrl-d is read.
func (k *Keys) Quit() <-chan struct{} { return k.quit }

// HandleKey applies one key byte. It reports whether the key was bound.
func (k *Keys) HandleKey(b byte) bool {
	if b == 0x03 || b == 0x04 {
		k.quitOnce.Do(func() { close(k.quit) })
		return true
	}
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	act, ok := keyMap[b]
	if !ok {
		return false
	}
	if act.isPot {
		raw := k.NudgePot(act.pot, act.delta)
		if k.log != nil {
			k.log.Debugf("%s pot -> %d", act.pot, raw)
		}
		return true
	}
	k.Pulse(act.button, KeyPulse)
	if k.log != nil {
		k.log.Debugf("%s button", act.button)
	}
	return true
}

// Start switches the terminal to raw mode and reads keys until the input
// closes. Call Stop to restore the terminal.
func (k *Keys) Start() error {
	fd := int(k.in.Fd())
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("surface: raw mode: %w", err)
	}
	k.mu.Lock()
	k.oldState = old
	k.mu.Unlock()

	go k.read(k.in)
	return nil
}

func (k *Keys) read(r io.Reader) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			k.HandleKey(b)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && k.log != nil {
				k.log.Warnf("keyboard read: %v", err)
			}
			k.quitOnce.Do(func() { close(k.quit) })
			return
		}
	}
}

// Stop restores the terminal state.
func (k *Keys) Stop() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.oldState == nil {
		return nil
	}
	err := term.Restore(int(k.in.Fd()), k.oldState)
	k.oldState = nil
	return err
}
