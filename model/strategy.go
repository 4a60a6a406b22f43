package model

// Well-known strategy codes shipped in the default scenario. User-defined
// scenarios may add more; only the nuclear code carries special meaning for
// outcome resolution and destruction marking.
const (
	StrategyKinetic        = "kinetic"
	StrategyNuclear        = "nuclear"
	StrategyGravityTractor = "gravity"
	StrategyLaserAblation  = "laser"
	StrategyIonBeam        = "ion"
)

// DefenseStrategy describes one interception approach. Immutable per run.
type DefenseStrategy struct {
	Code        string  `json:"code" yaml:"code"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	SuccessRate float64 `json:"success_rate" yaml:"success_rate"` // baseline, 0–1

	// Effectiveness is a success multiplier keyed by target size class,
	// consumed by the display-only probability estimate.
	Effectiveness map[SizeClass]float64 `json:"effectiveness" yaml:"effectiveness"`

	LeadTimeYears float64 `json:"lead_time_years" yaml:"lead_time_years"`
	TechReadiness int     `json:"tech_readiness" yaml:"tech_readiness"` // 1–9, NASA TRL

	// StationKeeping marks strategies that shadow the target instead of
	// flying a direct intercept; the spacecraft closes at a lower speed.
	StationKeeping bool `json:"station_keeping,omitempty" yaml:"station_keeping,omitempty"`
}

// IsNuclear reports whether this is the nuclear-class strategy. Nuclear
// interceptors are exempt from the Torino coordination penalty and always
// shatter the target on success.
func (s *DefenseStrategy) IsNuclear() bool {
	return s.Code == StrategyNuclear
}

// EffectivenessFor returns the multiplier for a size class, defaulting to 1
// when the strategy does not define one.
func (s *DefenseStrategy) EffectivenessFor(class SizeClass) float64 {
	if s.Effectiveness == nil {
		return 1
	}
	if v, ok := s.Effectiveness[class]; ok {
		return v
	}
	return 1
}
