package core

import "github.com/signalsfoundry/asteroid-defense-simulator/model"

// Effect is a zero-argument visual/audio trigger emitted synchronously from
// inside a tick. Collaborators own all waveform/visual timing internally.
type Effect string

const (
	EffectLaunch           Effect = "launch"
	EffectImpact           Effect = "impact"
	EffectNuclearExplosion Effect = "nuclear_explosion"
	EffectLaserBeamStart   Effect = "laser_beam_start"
	EffectLaserBeamStop    Effect = "laser_beam_stop"
	EffectSuccess          Effect = "success"
	EffectFailure          Effect = "failure"
	EffectAmbienceStart    Effect = "space_ambience_start"
	EffectAmbienceStop     Effect = "space_ambience_stop"
)

// EffectListener consumes effect triggers. Implementations must not block;
// emissions are fire-and-forget on the ticking goroutine.
type EffectListener interface {
	OnEffect(Effect)
}

// EffectFunc adapts a function to EffectListener.
type EffectFunc func(Effect)

func (f EffectFunc) OnEffect(e Effect) { f(e) }

// MissionObserver receives host callbacks from the orchestrator. All methods
// are invoked synchronously from the tick; after Stop none fire again.
type MissionObserver interface {
	// MissionComplete reports the overall result exactly once per run.
	// deflectionPercent is narrative flavor: uniform in [50,100) on success,
	// [0,30) when the resolver failed.
	MissionComplete(success bool, deflectionPercent float64)

	// ShowImpact fires when the mission fails and the impact cinematic takes
	// over; ImpactComplete fires when the cinematic has finished.
	ShowImpact()
	ImpactComplete()

	// DamageReady hands the assessment to the damage display collaborator.
	DamageReady(*model.DamageAssessment)
}

// ObserverFuncs is a MissionObserver built from optional functions; nil
// fields are ignored. Convenient for hosts that only care about a subset.
type ObserverFuncs struct {
	OnComplete       func(success bool, deflectionPercent float64)
	OnShowImpact     func()
	OnImpactComplete func()
	OnDamageReady    func(*model.DamageAssessment)
}

func (o ObserverFuncs) MissionComplete(success bool, deflectionPercent float64) {
	if o.OnComplete != nil {
		o.OnComplete(success, deflectionPercent)
	}
}

func (o ObserverFuncs) ShowImpact() {
	if o.OnShowImpact != nil {
		o.OnShowImpact()
	}
}

func (o ObserverFuncs) ImpactComplete() {
	if o.OnImpactComplete != nil {
		o.OnImpactComplete()
	}
}

func (o ObserverFuncs) DamageReady(a *model.DamageAssessment) {
	if o.OnDamageReady != nil {
		o.OnDamageReady(a)
	}
}

// MetricsRecorder lets the orchestrator publish run counters without
// depending on a concrete metrics backend. The observability package
// provides the Prometheus implementation.
type MetricsRecorder interface {
	MissionStarted()
	MissionCompleted(outcome Outcome)
	OutcomeResolved(success bool)
	DamageAssessed()
}

// noopRecorder is used when no recorder is wired.
type noopRecorder struct{}

func (noopRecorder) MissionStarted()          {}
func (noopRecorder) MissionCompleted(Outcome) {}
func (noopRecorder) OutcomeResolved(bool)     {}
func (noopRecorder) DamageAssessed()          {}
