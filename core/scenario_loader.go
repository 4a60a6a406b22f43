package core

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/asteroid-defense-simulator/model"
)

// Scenario is the simulation content loaded from YAML: the asteroid catalog,
// the strategy catalog, and optional timing overrides for the two machines.
type Scenario struct {
	Asteroids  []model.Asteroid        `yaml:"asteroids"`
	Strategies []model.DefenseStrategy `yaml:"strategies"`
	Run        RunConfig               `yaml:"run"`
}

// LoadScenario reads a YAML scenario from r. Timing fields left at zero are
// filled from the defaults, so scenario files only need to override what
// they care about.
//
// It fails only on YAML/structural errors and obviously unusable records;
// physical plausibility is the catalog's business.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("scenario: decode failed: %w", err)
	}

	for i := range s.Asteroids {
		if err := s.Asteroids[i].Validate(); err != nil {
			return nil, fmt.Errorf("scenario: asteroid %d (%s): %w", i, s.Asteroids[i].Name, err)
		}
		if s.Asteroids[i].ID == "" {
			return nil, fmt.Errorf("scenario: asteroid %d (%s): missing id", i, s.Asteroids[i].Name)
		}
	}
	for i := range s.Strategies {
		st := &s.Strategies[i]
		if st.Code == "" {
			return nil, fmt.Errorf("scenario: strategy %d: missing code", i)
		}
		if st.SuccessRate < 0 || st.SuccessRate > 1 {
			return nil, fmt.Errorf("scenario: strategy %q: success rate %v outside [0,1]", st.Code, st.SuccessRate)
		}
	}

	s.Run = mergeRunConfig(s.Run, DefaultRunConfig())
	return &s, nil
}

// LoadScenarioFile is LoadScenario over a file path.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: open %q: %w", path, err)
	}
	defer f.Close()
	return LoadScenario(f)
}

// mergeRunConfig fills zero-valued timing fields from defaults, leaving
// explicit overrides intact.
func mergeRunConfig(in, def RunConfig) RunConfig {
	m := &in.Mission
	d := def.Mission
	fillFloat(&m.ApproachDuration, d.ApproachDuration)
	fillFloat(&m.LaunchDuration, d.LaunchDuration)
	fillFloat(&m.OutcomeDuration, d.OutcomeDuration)
	fillFloat(&m.TimeBudget, d.TimeBudget)
	fillFloat(&m.InterceptThreshold, d.InterceptThreshold)
	fillFloat(&m.AsteroidStartDistance, d.AsteroidStartDistance)
	fillFloat(&m.AsteroidFloorDistance, d.AsteroidFloorDistance)
	fillFloat(&m.AsteroidApproachDuration, d.AsteroidApproachDuration)
	fillFloat(&m.InterceptSpeed, d.InterceptSpeed)
	fillFloat(&m.StationKeepSpeed, d.StationKeepSpeed)
	if m.ApproachDirection == (Vec3{}) {
		m.ApproachDirection = d.ApproachDirection
	}

	i := &in.Impact
	e := def.Impact
	fillFloat(&i.ApproachDuration, e.ApproachDuration)
	fillFloat(&i.ImpactDuration, e.ImpactDuration)
	fillFloat(&i.ExplosionDuration, e.ExplosionDuration)
	fillFloat(&i.AftermathDuration, e.AftermathDuration)
	fillFloat(&i.DamagedDuration, e.DamagedDuration)
	fillFloat(&i.ResetDuration, e.ResetDuration)
	fillFloat(&i.StartDistance, e.StartDistance)
	if i.ApproachDirection == (Vec3{}) {
		i.ApproachDirection = e.ApproachDirection
	}

	return in
}

func fillFloat(dst *float64, def float64) {
	if *dst == 0 {
		*dst = def
	}
}
