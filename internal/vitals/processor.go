package vitals

import (
	"time"

	errorvalues "github.com/limbo/virtualpet/internal/error_values"
	"github.com/limbo/virtualpet/pkg/entity"
)

type Action string

const (
	ActionFeed Action = "feed"
	ActionWash Action = "wash"
	ActionPlay Action = "play"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionFeed, ActionWash, ActionPlay:
		return a, nil
	}
	return "", errorvalues.ErrUnknownAction
}

// Result is the pet after one transition. Died is set only on the transition
// that moved the pet into PASSED.
type Result struct {
	Pet  entity.Pet
	Died bool
}

type Engine struct {
	tuning     Tuning
	classifier *Classifier
	now        func() time.Time
}

func NewEngine(t Tuning) *Engine {
	return &Engine{
		tuning:     t,
		classifier: NewClassifier(t),
		now:        time.Now,
	}
}

// WithClock replaces the time source used for death and update timestamps.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) Tuning() Tuning {
	return e.tuning
}

// Newborn fills in the starting state of a freshly created pet.
func (e *Engine) Newborn(p entity.Pet) entity.Pet {
	now := e.now()
	e.tuning.Defaults.writeTo(&p)
	p.ActionsCount = 0
	p.LifeStage = entity.StageBaby
	p.Dead = false
	p.DeathAt = nil
	p.CreatedAt = now
	p.UpdatedAt = now
	return p
}

// Touch stamps an edit that does not go through the vitals, such as a rename.
func (e *Engine) Touch(p *entity.Pet) {
	p.UpdatedAt = e.now()
}

// Apply performs one care action. On error the returned result is empty and the
// caller's pet must be treated as unchanged.
func (e *Engine) Apply(p entity.Pet, action Action) (Result, error) {
	delta, err := e.precondition(&p, action)
	if err != nil {
		return Result{}, err
	}
	Of(&p).Apply(delta).Apply(e.tuning.Tick).writeTo(&p)
	p.ActionsCount++
	return e.settle(p), nil
}

// Decay applies one passive decay step. Passed pets are returned as they are.
func (e *Engine) Decay(p entity.Pet) Result {
	if p.Passed() {
		return Result{Pet: p}
	}
	Of(&p).Apply(e.tuning.Decay.Delta).writeTo(&p)
	return e.settle(p)
}

func (e *Engine) precondition(p *entity.Pet, action Action) (Delta, error) {
	if p.Passed() {
		return Delta{}, errorvalues.ErrDeceased
	}
	switch action {
	case ActionFeed:
		if p.Hunger >= MaxValue {
			return Delta{}, errorvalues.ErrAlreadySatiated
		}
		return e.tuning.Actions.Feed, nil
	case ActionWash:
		if p.Hygiene >= MaxValue {
			return Delta{}, errorvalues.ErrAlreadyClean
		}
		return e.tuning.Actions.Wash, nil
	case ActionPlay:
		if p.Fun >= MaxValue {
			return Delta{}, errorvalues.ErrAlreadyJoyful
		}
		return e.tuning.Actions.Play, nil
	}
	return Delta{}, errorvalues.ErrUnknownAction
}

func (e *Engine) settle(p entity.Pet) Result {
	now := e.now()
	var age time.Duration
	if !p.CreatedAt.IsZero() {
		age = now.Sub(p.CreatedAt)
	}
	wasPassed := p.Passed()
	p.LifeStage = e.classifier.Classify(ClassifyInput{
		Stage:        p.LifeStage,
		ActionsCount: p.ActionsCount,
		Age:          age,
		Vitals:       Of(&p),
	})
	p.UpdatedAt = now
	res := Result{Pet: p}
	if p.LifeStage == entity.StagePassed && !wasPassed {
		p.Dead = true
		p.DeathAt = &now
		res.Pet = p
		res.Died = true
	}
	return res
}
