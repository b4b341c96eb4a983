// Package vitals implements the pet care engine: bounded stat channels, life stage
// classification, care actions and the outcome reported back to the caller.
package vitals

import "github.com/limbo/virtualpet/pkg/entity"

const (
	MinValue = 0
	MaxValue = 100
)

// Vitals are the three care channels. Hunger is satiation (higher is fuller).
type Vitals struct {
	Hunger  int `yaml:"hunger"`
	Hygiene int `yaml:"hygiene"`
	Fun     int `yaml:"fun"`
}

type Delta struct {
	Hunger  int `yaml:"hunger"`
	Hygiene int `yaml:"hygiene"`
	Fun     int `yaml:"fun"`
}

// Saturate adds delta to value and truncates the result at the channel bounds.
func Saturate(value, delta int) int {
	v := value + delta
	switch {
	case v < MinValue:
		return MinValue
	case v > MaxValue:
		return MaxValue
	}
	return v
}

// Apply returns the vitals after d, clamped channel by channel.
func (v Vitals) Apply(d Delta) Vitals {
	return Vitals{
		Hunger:  Saturate(v.Hunger, d.Hunger),
		Hygiene: Saturate(v.Hygiene, d.Hygiene),
		Fun:     Saturate(v.Fun, d.Fun),
	}
}

func Of(p *entity.Pet) Vitals {
	return Vitals{Hunger: p.Hunger, Hygiene: p.Hygiene, Fun: p.Fun}
}

func (v Vitals) writeTo(p *entity.Pet) {
	p.Hunger = v.Hunger
	p.Hygiene = v.Hygiene
	p.Fun = v.Fun
}
