package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
)

// WaveType defines oscillator wave shapes.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates raw waveform samples for a fixed duration. A sweep
// glides the frequency linearly from freq to freqEnd over the duration.
type oscillator struct {
	freq     float64
	freqEnd  float64
	phase    float64
	duration int // samples; <= 0 means endless
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewTone creates a fixed-frequency oscillator streamer.
func NewTone(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		freqEnd:  freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

// NewSweep creates an oscillator whose frequency glides from freqStart to
// freqEnd over the duration.
func NewSweep(freqStart, freqEnd float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freqStart,
		freqEnd:  freqEnd,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

// NewDrone creates an endless fixed-frequency oscillator, for ambience and
// beam loops wrapped in a beep.Ctrl.
func NewDrone(freq float64, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		freqEnd:  freq,
		duration: -1,
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.duration > 0 && o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		freq := o.freq
		if o.duration > 0 && o.freqEnd != o.freq {
			progress := float64(o.position) / float64(o.duration)
			freq = o.freq + (o.freqEnd-o.freq)*progress
		}
		o.phase += freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase) // keep in [0, 1)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack/release to a finite streamer so effects
// start and end without clicks.
type envelope struct {
	s        beep.Streamer
	attack   int
	release  int
	total    int
	position int
}

// WithEnvelope wraps s with attack and release ramps. total must match the
// underlying streamer's length in samples.
func WithEnvelope(s beep.Streamer, attack, release time.Duration, total int, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		s:       s,
		attack:  rate.N(attack),
		release: rate.N(release),
		total:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.s.Stream(samples)
	for i := 0; i < n; i++ {
		pos := e.position + i
		vol := 1.0
		if e.attack > 0 && pos < e.attack {
			vol = float64(pos) / float64(e.attack)
		} else if e.release > 0 && pos >= e.total-e.release {
			vol = float64(e.total-pos) / float64(e.release)
			if vol < 0 {
				vol = 0
			}
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
	}
	e.position += n
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }
