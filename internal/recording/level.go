package recording

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

// levelSensitivity maps the RMS of normal speech onto most of the
// 0..1 meter range without the user having to shout.
const levelSensitivity = 0.05

// Meter is the shared audio-level gauge: one cell written by the
// capture callback and read by the display loop.
type Meter struct {
	bits atomic.Uint64
}

// Update computes the RMS level of one s16le frame and stores it.
func (m *Meter) Update(frame []byte) {
	m.bits.Store(math.Float64bits(Level(frame)))
}

// Value returns the most recently measured level in [0, 1].
func (m *Meter) Value() float64 {
	return math.Float64frombits(m.bits.Load())
}

// Level computes the normalized RMS of an s16le sample block.
func Level(frame []byte) float64 {
	samples := len(frame) / 2
	if samples == 0 {
		return 0
	}

	var sum float64
	for i := 0; i+1 < len(frame); i += 2 {
		v := float64(int16(binary.LittleEndian.Uint16(frame[i:]))) / 32768.0
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(samples))
	return math.Min(1.0, rms/levelSensitivity)
}
