package vitals

import (
	"time"

	"github.com/limbo/virtualpet/pkg/entity"
)

type ClassifyInput struct {
	Stage        entity.LifeStage
	ActionsCount int
	Age          time.Duration
	Vitals       Vitals
}

type Classifier struct {
	stages  StageTuning
	neglect NeglectTuning
}

func NewClassifier(t Tuning) *Classifier {
	return &Classifier{stages: t.Stages, neglect: t.Neglect}
}

// Classify never moves a pet back to an earlier stage, and PASSED is final.
func (c *Classifier) Classify(in ClassifyInput) entity.LifeStage {
	if in.Stage == entity.StagePassed {
		return entity.StagePassed
	}
	stage := c.liveStage(in)
	if c.neglected(stage, in) {
		return entity.StagePassed
	}
	return stage
}

func (c *Classifier) liveStage(in ClassifyInput) entity.LifeStage {
	stage := entity.StageBaby
	if in.ActionsCount >= c.stages.AdultActions {
		stage = entity.StageAdult
	}
	if in.ActionsCount >= c.stages.SeniorActions {
		stage = entity.StageSenior
	}
	if c.stages.AdultAge > 0 && in.Age >= c.stages.AdultAge && stage == entity.StageBaby {
		stage = entity.StageAdult
	}
	if c.stages.SeniorAge > 0 && in.Age >= c.stages.SeniorAge {
		stage = entity.StageSenior
	}
	if in.Stage.Rank() > stage.Rank() {
		stage = in.Stage
	}
	return stage
}

func (c *Classifier) neglected(stage entity.LifeStage, in ClassifyInput) bool {
	v := in.Vitals
	if c.neglect.Starvation && v.Hunger == MinValue {
		return true
	}
	if c.neglect.FilthAndBoredom && v.Hygiene == MinValue && v.Fun == MinValue {
		return true
	}
	if c.neglect.SeniorLifespanActions > 0 && stage == entity.StageSenior &&
		in.ActionsCount >= c.neglect.SeniorLifespanActions {
		return true
	}
	return false
}
