package surface

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pion/logging"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/cwbudde/algo-chaosdelay/pedal/control"
)

// ErrNoMIDIPort is returned when no input port matches.
var ErrNoMIDIPort = errors.New("surface: no matching MIDI input port")

// MIDIMap assigns controller numbers to pots and note numbers to buttons.
type MIDIMap struct {
	Pots    [control.NumPots]uint8
	Buttons [control.NumButtons]uint8
}

// DefaultMIDIMap uses CC 20-24 for the pots and notes C4/D4 for the
// buttons.
func DefaultMIDIMap() MIDIMap {
	return MIDIMap{
		Pots:    [control.NumPots]uint8{20, 21, 22, 23, 24},
		Buttons: [control.NumButtons]uint8{60, 62},
	}
}

// MIDI is a surface driven by a MIDI controller.
type MIDI struct {
	*State
	mapping MIDIMap
	log     logging.LeveledLogger
	port    string
	stop    func()
}

// NewMIDI returns a MIDI surface that is not yet listening.
func NewMIDI(mapping MIDIMap, log logging.LeveledLogger) *MIDI {
	return &MIDI{State: NewState(), mapping: mapping, log: log}
}

// Port returns the name of the open input port.
func (m *MIDI) Port() string { return m.port }

// HandleMessage applies one MIDI message. It reports whether the message
// changed a control.
func (m *MIDI) HandleMessage(msg gomidi.Message) bool {
	var channel, key, value uint8
	switch {
	case msg.GetControlChange(&channel, &key, &value):
		for id, cc := range m.mapping.Pots {
			if cc == key {
				m.SetPot(control.PotID(id), ccToRaw(value))
				return true
			}
		}
	case msg.GetNoteOn(&channel, &key, &value):
		return m.setButton(key, value > 0)
	case msg.GetNoteOff(&channel, &key, &value):
		return m.setButton(key, false)
	}
	return false
}

func (m *MIDI) setButton(note uint8, held bool) bool {
	for id, n := range m.mapping.Buttons {
		if n == note {
			m.SetHeld(control.ButtonID(id), held)
			return true
		}
	}
	return false
}

// ccToRaw scales a 7-bit controller value to the 10-bit pot range so that
// 0 and 127 reach both ends.
func ccToRaw(v uint8) int {
	return int(v) * control.RawMax / 127
}

// Open starts listening on the first input port whose name contains port
// (case-insensitive). An empty port selects the first input.
func (m *MIDI) Open(port string) error {
	in, err := findInPort(gomidi.GetInPorts(), port)
	if err != nil {
		return err
	}
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		m.HandleMessage(msg)
	}, gomidi.HandleError(func(err error) {
		if m.log != nil {
			m.log.Warnf("midi: %v", err)
		}
	}))
	if err != nil {
		return fmt.Errorf("surface: listen on %s: %w", in, err)
	}
	m.stop = stop
	m.port = in.String()
	if m.log != nil {
		m.log.Infof("listening on MIDI port %q", m.port)
	}
	return nil
}

// Close stops listening.
func (m *MIDI) Close() error {
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	return nil
}

func findInPort(ports []drivers.In, name string) (drivers.In, error) {
	want := strings.ToLower(name)
	for _, in := range ports {
		if strings.Contains(strings.ToLower(in.String()), want) {
			return in, nil
		}
	}
	if name == "" {
		return nil, ErrNoMIDIPort
	}
	return nil, fmt.Errorf("%w: %q", ErrNoMIDIPort, name)
}
