package vitals

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Tuning holds every number the engine uses.
type Tuning struct {
	Defaults Vitals        `yaml:"defaults"`
	Actions  ActionDeltas  `yaml:"actions"`
	Tick     Delta         `yaml:"tick"`
	Decay    DecayTuning   `yaml:"decay"`
	Stages   StageTuning   `yaml:"stages"`
	Neglect  NeglectTuning `yaml:"neglect"`
	Warnings WarningBands  `yaml:"warnings"`
}

type ActionDeltas struct {
	Feed Delta `yaml:"feed"`
	Wash Delta `yaml:"wash"`
	Play Delta `yaml:"play"`
}

type DecayTuning struct {
	// Zero interval disables passive decay.
	Interval time.Duration `yaml:"interval"`
	Delta    Delta         `yaml:"delta"`
}

// StageTuning thresholds are inclusive. A zero age threshold is ignored.
type StageTuning struct {
	AdultActions  int           `yaml:"adult_actions"`
	SeniorActions int           `yaml:"senior_actions"`
	AdultAge      time.Duration `yaml:"adult_age"`
	SeniorAge     time.Duration `yaml:"senior_age"`
}

type NeglectTuning struct {
	Starvation      bool `yaml:"starvation"`
	FilthAndBoredom bool `yaml:"filth_and_boredom"`
	// Zero disables the senior lifespan rule.
	SeniorLifespanActions int `yaml:"senior_lifespan_actions"`
}

// WarningBands is the distance from each channel's worst extreme that raises a warning.
type WarningBands struct {
	Hunger  int `yaml:"hunger"`
	Hygiene int `yaml:"hygiene"`
	Fun     int `yaml:"fun"`
}

// DefaultTuning returns the embedded defaults.
func DefaultTuning() Tuning {
	t, err := parseTuning(defaultsYAML, Tuning{})
	if err != nil {
		panic("vitals: broken embedded defaults: " + err.Error())
	}
	return t
}

// LoadTuning reads a YAML file over the embedded defaults. Keys missing from the
// file keep their default values. An empty path returns the defaults.
func LoadTuning(path string) (Tuning, error) {
	base := DefaultTuning()
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}
	return parseTuning(data, base)
}

func parseTuning(data []byte, base Tuning) (Tuning, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&base); err != nil {
		return Tuning{}, fmt.Errorf("decode tuning: %w", err)
	}
	if err := base.Validate(); err != nil {
		return Tuning{}, err
	}
	return base, nil
}

func (t Tuning) Validate() error {
	var errs []error
	for name, v := range map[string]int{
		"defaults.hunger":  t.Defaults.Hunger,
		"defaults.hygiene": t.Defaults.Hygiene,
		"defaults.fun":     t.Defaults.Fun,
		"warnings.hunger":  t.Warnings.Hunger,
		"warnings.hygiene": t.Warnings.Hygiene,
		"warnings.fun":     t.Warnings.Fun,
	} {
		if v < MinValue || v > MaxValue {
			errs = append(errs, fmt.Errorf("%s must be within [%d,%d], got %d", name, MinValue, MaxValue, v))
		}
	}
	if t.Stages.AdultActions < 0 || t.Stages.SeniorActions < t.Stages.AdultActions {
		errs = append(errs, errors.New("stages: need 0 <= adult_actions <= senior_actions"))
	}
	if t.Stages.AdultAge < 0 || t.Stages.SeniorAge < 0 ||
		(t.Stages.SeniorAge > 0 && t.Stages.SeniorAge < t.Stages.AdultAge) {
		errs = append(errs, errors.New("stages: need 0 <= adult_age <= senior_age"))
	}
	if t.Neglect.SeniorLifespanActions < 0 {
		errs = append(errs, errors.New("neglect.senior_lifespan_actions must not be negative"))
	}
	if t.Decay.Interval < 0 {
		errs = append(errs, errors.New("decay.interval must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid tuning: %w", errors.Join(errs...))
	}
	return nil
}
