package audio

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/signalsfoundry/asteroid-defense-simulator/core"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/logging"
)

const sampleRate = beep.SampleRate(48000)

// Engine synthesizes mission sound effects. It implements core.EffectListener
// so it can be registered directly on the orchestrator. When audio is disabled
// or speaker initialization fails, the engine degrades to a silent no-op so
// headless hosts keep working.
type Engine struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	ambience    *beep.Ctrl
	laser       *beep.Ctrl
	initialized bool
	log         logging.Logger
}

// NewEngine creates an engine that stays silent until Start is called.
func NewEngine(log logging.Logger) *Engine {
	if log == nil {
		log = logging.Noop()
	}
	return &Engine{
		mixer: &beep.Mixer{},
		log:   log,
	}
}

// Start initializes the speaker and begins mixing. A failure to open the
// audio device is logged and leaves the engine silent rather than failing
// the host.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		e.log.Warn(ctx, "audio unavailable, running silent", logging.String("error", err.Error()))
		return
	}

	speaker.Play(e.mixer)
	e.initialized = true
}

// Stop pauses looping streamers and clears the mixer. beep has no speaker
// close, so clearing streamers is the teardown.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return
	}

	if e.ambience != nil {
		e.ambience.Paused = true
	}
	if e.laser != nil {
		e.laser.Paused = true
	}
	e.mixer.Clear()
	e.initialized = false
}

// OnEffect satisfies core.EffectListener, mapping each mission effect to a
// synthesized cue.
func (e *Engine) OnEffect(effect core.Effect) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return
	}

	switch effect {
	case core.EffectLaunch:
		e.playLaunch()
	case core.EffectImpact:
		e.playImpact()
	case core.EffectNuclearExplosion:
		e.playNuclearExplosion()
	case core.EffectLaserBeamStart:
		e.startLaser()
	case core.EffectLaserBeamStop:
		e.stopLaser()
	case core.EffectSuccess:
		e.playChord([]float64{523.25, 659.25, 783.99}, 180*time.Millisecond)
	case core.EffectFailure:
		e.playChord([]float64{392.00, 261.63}, 350*time.Millisecond)
	case core.EffectAmbienceStart:
		e.startAmbience()
	case core.EffectAmbienceStop:
		e.stopAmbience()
	}
}

// playLaunch is a rising saw sweep, the rocket leaving the pad.
func (e *Engine) playLaunch() {
	dur := 1400 * time.Millisecond
	s := NewSweep(60, 280, dur, WaveSaw, sampleRate)
	e.add(WithEnvelope(s, 80*time.Millisecond, 300*time.Millisecond, sampleRate.N(dur), sampleRate))
}

// playImpact is a short noise burst with a hard decay.
func (e *Engine) playImpact() {
	dur := 800 * time.Millisecond
	s := NewTone(0, dur, WaveNoise, sampleRate)
	e.add(WithEnvelope(s, 5*time.Millisecond, 700*time.Millisecond, sampleRate.N(dur), sampleRate))
}

// playNuclearExplosion layers a long noise wash over a sub-bass rumble.
func (e *Engine) playNuclearExplosion() {
	dur := 2200 * time.Millisecond
	noise := NewTone(0, dur, WaveNoise, sampleRate)
	rumble := NewTone(40, dur, WaveSine, sampleRate)
	e.add(WithEnvelope(noise, 10*time.Millisecond, 1800*time.Millisecond, sampleRate.N(dur), sampleRate))
	e.add(WithEnvelope(rumble, 10*time.Millisecond, 1800*time.Millisecond, sampleRate.N(dur), sampleRate))
}

func (e *Engine) startLaser() {
	if e.laser != nil && !e.laser.Paused {
		return
	}
	streamer := beep.Loop(-1, NewDrone(880, WaveSquare, sampleRate))
	ctrl := &beep.Ctrl{Streamer: streamer, Paused: false}
	e.laser = ctrl
	e.add(ctrl)
}

func (e *Engine) stopLaser() {
	if e.laser != nil {
		e.laser.Paused = true
	}
}

func (e *Engine) startAmbience() {
	if e.ambience != nil && !e.ambience.Paused {
		return
	}
	streamer := beep.Loop(-1, NewDrone(55, WaveSine, sampleRate))
	ctrl := &beep.Ctrl{Streamer: streamer, Paused: false}
	e.ambience = ctrl
	e.add(ctrl)
}

func (e *Engine) stopAmbience() {
	if e.ambience != nil {
		e.ambience.Paused = true
	}
}

// playChord plays notes sequentially, each with its own envelope.
func (e *Engine) playChord(freqs []float64, noteLen time.Duration) {
	var parts []beep.Streamer
	for _, f := range freqs {
		note := NewTone(f, noteLen, WaveSine, sampleRate)
		parts = append(parts, WithEnvelope(note, 10*time.Millisecond, 40*time.Millisecond, sampleRate.N(noteLen), sampleRate))
	}
	e.add(beep.Seq(parts...))
}

// add pushes a streamer onto the playing mixer under the speaker lock.
func (e *Engine) add(s beep.Streamer) {
	speaker.Lock()
	e.mixer.Add(s)
	speaker.Unlock()
}
