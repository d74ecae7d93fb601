package control

import "fmt"

// Snapshot is the state reported after one control iteration.
type Snapshot struct {
	Iteration uint64
	DelayMs   int
	Feedback  float64
	Noise     int
	Density   int
	Mix       float64
	Level     int
	PeakL     float64
	PeakR     float64
}

// String formats the snapshot as the device's status line.
func (s Snapshot) String() string {
	return fmt.Sprintf("Delay: %dms | Feedback: %.2f | Noise: %d | Density: %d%% | Mix: %.2f | Level: %d | Peak: %.2f/%.2f",
		s.DelayMs, s.Feedback, s.Noise, s.Density, s.Mix, s.Level, s.PeakL, s.PeakR)
}
