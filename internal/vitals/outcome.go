package vitals

import "github.com/limbo/virtualpet/pkg/entity"

const (
	WarningHungerHigh = "hunger_high"
	WarningHygieneLow = "hygiene_low"
	WarningFunLow     = "fun_low"

	DeathMessage = "Your pet has passed away"
)

type Outcome struct {
	Pet      entity.Pet
	Warnings []string
	Died     bool
	Message  string
}

// Report builds the outcome of a single transition from its result alone, so
// warnings never carry over between calls.
func (e *Engine) Report(res Result) Outcome {
	out := Outcome{
		Pet:      res.Pet,
		Warnings: []string{},
		Died:     res.Died,
	}
	if res.Pet.Passed() {
		out.Message = DeathMessage
		return out
	}
	out.Warnings = e.Warnings(Of(&res.Pet))
	return out
}

// Warnings lists the channels within their attention band, in a fixed order.
func (e *Engine) Warnings(v Vitals) []string {
	bands := e.tuning.Warnings
	warnings := make([]string, 0, 3)
	if v.Hunger <= MinValue+bands.Hunger {
		warnings = append(warnings, WarningHungerHigh)
	}
	if v.Hygiene <= MinValue+bands.Hygiene {
		warnings = append(warnings, WarningHygieneLow)
	}
	if v.Fun <= MinValue+bands.Fun {
		warnings = append(warnings, WarningFunLow)
	}
	return warnings
}
