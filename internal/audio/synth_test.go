package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

const testRate = beep.SampleRate(48000)

func drain(t *testing.T, s beep.Streamer, max int) [][2]float64 {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 512)
	for len(out) < max {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
	return out
}

func TestTone_SamplesStayInRange(t *testing.T) {
	for _, wave := range []WaveType{WaveSine, WaveSquare, WaveSaw, WaveNoise} {
		s := NewTone(440, 50*time.Millisecond, wave, testRate)
		for i, sample := range drain(t, s, 1<<20) {
			if math.Abs(sample[0]) > 1 || math.Abs(sample[1]) > 1 {
				t.Fatalf("wave %v sample %d out of range: %v", wave, i, sample)
			}
		}
	}
}

func TestTone_FiniteDurationEnds(t *testing.T) {
	s := NewTone(440, 10*time.Millisecond, WaveSine, testRate)
	got := drain(t, s, 1<<20)
	want := testRate.N(10 * time.Millisecond)
	if len(got) != want {
		t.Fatalf("streamed %d samples, want %d", len(got), want)
	}
}

func TestDrone_KeepsStreaming(t *testing.T) {
	s := NewDrone(55, WaveSine, testRate)
	buf := make([][2]float64, 4096)
	for i := 0; i < 10; i++ {
		n, ok := s.Stream(buf)
		if !ok || n != len(buf) {
			t.Fatalf("drone must stream indefinitely, got n=%d ok=%v", n, ok)
		}
	}
}

func TestSweep_SamplesStayInRange(t *testing.T) {
	s := NewSweep(60, 280, 100*time.Millisecond, WaveSaw, testRate)
	for i, sample := range drain(t, s, 1<<20) {
		if math.Abs(sample[0]) > 1 {
			t.Fatalf("sweep sample %d out of range: %v", i, sample)
		}
	}
}

func TestEnvelope_RampsAttackAndRelease(t *testing.T) {
	dur := 100 * time.Millisecond
	total := testRate.N(dur)
	// A square wave is ±1 everywhere, so the envelope is directly visible.
	s := WithEnvelope(NewTone(440, dur, WaveSquare, testRate), 20*time.Millisecond, 20*time.Millisecond, total, testRate)

	samples := drain(t, s, 1<<20)
	if len(samples) != total {
		t.Fatalf("enveloped streamer length %d, want %d", len(samples), total)
	}

	if got := math.Abs(samples[0][0]); got > 0.01 {
		t.Fatalf("attack should start near silence, first sample %v", got)
	}
	mid := math.Abs(samples[total/2][0])
	if mid < 0.99 {
		t.Fatalf("mid-note should be at full level, got %v", mid)
	}
	if got := math.Abs(samples[total-1][0]); got > 0.01 {
		t.Fatalf("release should end near silence, last sample %v", got)
	}
}

func TestEngine_IgnoresEffectsWhenSilent(t *testing.T) {
	// Never started: every effect must be a no-op instead of touching the
	// speaker.
	e := NewEngine(nil)
	e.OnEffect("launch")
	e.OnEffect("space_ambience_start")
	e.Stop()
}
