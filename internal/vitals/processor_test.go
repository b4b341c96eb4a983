package vitals_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/virtualpet/internal/error_values"
	"github.com/limbo/virtualpet/internal/vitals"
	"github.com/limbo/virtualpet/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	createdAt = time.Date(2025, 10, 7, 10, 0, 0, 0, time.UTC)
	actionAt  = createdAt.Add(time.Hour)
)

func testEngine(t vitals.Tuning) *vitals.Engine {
	return vitals.NewEngine(t).WithClock(func() time.Time { return actionAt })
}

func testPet(hunger, hygiene, fun int) entity.Pet {
	return entity.Pet{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Name:      "Buddy",
		Breed:     entity.BreedLabrador,
		Hunger:    hunger,
		Hygiene:   hygiene,
		Fun:       fun,
		LifeStage: entity.StageBaby,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// calm tuning keeps vitals still so that only the action counter moves.
func calmTuning() vitals.Tuning {
	t := vitals.DefaultTuning()
	t.Actions = vitals.ActionDeltas{}
	t.Tick = vitals.Delta{}
	return t
}

func TestNewborn(t *testing.T) {
	engine := testEngine(vitals.DefaultTuning())
	p := engine.Newborn(entity.Pet{Name: "Rex", Breed: entity.BreedDalmatian, ActionsCount: 7, Dead: true})
	assert.Equal(t, 50, p.Hunger)
	assert.Equal(t, 70, p.Hygiene)
	assert.Equal(t, 60, p.Fun)
	assert.Equal(t, 0, p.ActionsCount)
	assert.Equal(t, entity.StageBaby, p.LifeStage)
	assert.False(t, p.Dead)
	assert.Nil(t, p.DeathAt)
	assert.Equal(t, actionAt, p.CreatedAt)
	assert.Equal(t, "Rex", p.Name)
}

func TestFeedFreshPet(t *testing.T) {
	engine := testEngine(vitals.DefaultTuning())
	res, err := engine.Apply(testPet(50, 100, 100), vitals.ActionFeed)
	require.NoError(t, err)
	assert.Equal(t, 65, res.Pet.Hunger)
	assert.Equal(t, 80, res.Pet.Hygiene)
	assert.Equal(t, 68, res.Pet.Fun)
	assert.Equal(t, 1, res.Pet.ActionsCount)
	assert.Equal(t, entity.StageBaby, res.Pet.LifeStage)
	assert.False(t, res.Died)
	assert.Equal(t, actionAt, res.Pet.UpdatedAt)

	out := engine.Report(res)
	assert.Empty(t, out.Warnings)
	assert.NotNil(t, out.Warnings)
	assert.Empty(t, out.Message)
}

func TestActionDeltas(t *testing.T) {
	engine := testEngine(vitals.DefaultTuning())
	testCases := []struct {
		Name     string
		Action   vitals.Action
		Expected vitals.Vitals
	}{
		{Name: "feed", Action: vitals.ActionFeed, Expected: vitals.Vitals{Hunger: 65, Hygiene: 30, Fun: 18}},
		{Name: "wash", Action: vitals.ActionWash, Expected: vitals.Vitals{Hunger: 17, Hygiene: 56, Fun: 13}},
		{Name: "play", Action: vitals.ActionPlay, Expected: vitals.Vitals{Hunger: 13, Hygiene: 30, Fun: 66}},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			res, err := engine.Apply(testPet(50, 50, 50), tc.Action)
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, vitals.Of(&res.Pet))
		})
	}
}

func TestRejections(t *testing.T) {
	engine := testEngine(vitals.DefaultTuning())
	passed := testPet(50, 50, 50)
	passed.LifeStage = entity.StagePassed
	passed.Dead = true
	deathAt := createdAt.Add(time.Minute)
	passed.DeathAt = &deathAt

	testCases := []struct {
		Name     string
		Pet      entity.Pet
		Action   vitals.Action
		Expected error
	}{
		{Name: "feed full pet", Pet: testPet(100, 50, 50), Action: vitals.ActionFeed, Expected: errorvalues.ErrAlreadySatiated},
		{Name: "wash clean pet", Pet: testPet(50, 100, 50), Action: vitals.ActionWash, Expected: errorvalues.ErrAlreadyClean},
		{Name: "play with joyful pet", Pet: testPet(50, 50, 100), Action: vitals.ActionPlay, Expected: errorvalues.ErrAlreadyJoyful},
		{Name: "feed passed pet", Pet: passed, Action: vitals.ActionFeed, Expected: errorvalues.ErrDeceased},
		{Name: "wash passed pet", Pet: passed, Action: vitals.ActionWash, Expected: errorvalues.ErrDeceased},
		{Name: "play with passed pet", Pet: passed, Action: vitals.ActionPlay, Expected: errorvalues.ErrDeceased},
		{Name: "deceased wins over satiated", Pet: func() entity.Pet { p := passed; p.Hunger = 100; return p }(), Action: vitals.ActionFeed, Expected: errorvalues.ErrDeceased},
		{Name: "unknown action", Pet: testPet(50, 50, 50), Action: vitals.Action("sleep"), Expected: errorvalues.ErrUnknownAction},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			before := tc.Pet
			res, err := engine.Apply(tc.Pet, tc.Action)
			assert.ErrorIs(t, err, tc.Expected)
			assert.Equal(t, vitals.Result{}, res)
			assert.Equal(t, before, tc.Pet)
		})
	}
}

func TestRepeatedRejectionIsIdempotent(t *testing.T) {
	engine := testEngine(vitals.DefaultTuning())
	p := testPet(100, 40, 40)
	for range 3 {
		_, err := engine.Apply(p, vitals.ActionFeed)
		assert.ErrorIs(t, err, errorvalues.ErrAlreadySatiated)
	}
	assert.Equal(t, 0, p.ActionsCount)
	assert.Equal(t, 100, p.Hunger)
}

func TestWashFromFilthy(t *testing.T) {
	tuning := vitals.DefaultTuning()
	tuning.Actions.Wash = vitals.Delta{Hygiene: 18}
	tuning.Tick = vitals.Delta{}
	engine := testEngine(tuning)

	p := testPet(80, 0, 80)
	expected := []struct {
		Hygiene int
		Warn    bool
	}{
		{Hygiene: 18, Warn: true},
		{Hygiene: 36, Warn: false},
		{Hygiene: 54, Warn: false},
		{Hygiene: 72, Warn: false},
		{Hygiene: 90, Warn: false},
		{Hygiene: 100, Warn: false},
	}
	for i, step := range expected {
		res, err := engine.Apply(p, vitals.ActionWash)
		require.NoError(t, err, "wash #%d", i+1)
		out := engine.Report(res)
		assert.Equal(t, step.Hygiene, res.Pet.Hygiene, "wash #%d", i+1)
		assert.Equal(t, step.Warn, contains(out.Warnings, vitals.WarningHygieneLow), "wash #%d", i+1)
		p = res.Pet
	}
	assert.Equal(t, len(expected), p.ActionsCount)

	before := p
	_, err := engine.Apply(p, vitals.ActionWash)
	assert.ErrorIs(t, err, errorvalues.ErrAlreadyClean)
	assert.Equal(t, before, p)
}

func TestWashWithDefaultTuning(t *testing.T) {
	engine := testEngine(vitals.DefaultTuning())
	p := testPet(100, 0, 100)

	res, err := engine.Apply(p, vitals.ActionWash)
	require.NoError(t, err)
	assert.Equal(t, vitals.Vitals{Hunger: 67, Hygiene: 6, Fun: 63}, vitals.Of(&res.Pet))
	assert.Equal(t, []string{vitals.WarningHygieneLow}, engine.Report(res).Warnings)

	res, err = engine.Apply(res.Pet, vitals.ActionWash)
	require.NoError(t, err)
	assert.Equal(t, vitals.Vitals{Hunger: 34, Hygiene: 12, Fun: 26}, vitals.Of(&res.Pet))
	assert.Equal(t, []string{vitals.WarningHygieneLow}, engine.Report(res).Warnings)
	assert.Equal(t, 2, res.Pet.ActionsCount)
}

func TestDeathByAction(t *testing.T) {
	engine := testEngine(vitals.DefaultTuning())
	res, err := engine.Apply(testPet(10, 40, 40), vitals.ActionPlay)
	require.NoError(t, err)
	assert.True(t, res.Died)
	assert.Equal(t, 0, res.Pet.Hunger)
	assert.Equal(t, entity.StagePassed, res.Pet.LifeStage)
	assert.True(t, res.Pet.Dead)
	require.NotNil(t, res.Pet.DeathAt)
	assert.Equal(t, actionAt, *res.Pet.DeathAt)
	assert.Equal(t, 1, res.Pet.ActionsCount)

	out := engine.Report(res)
	assert.True(t, out.Died)
	assert.Equal(t, vitals.DeathMessage, out.Message)
	assert.Empty(t, out.Warnings)
}

func TestDeathByNeglect(t *testing.T) {
	engine := testEngine(vitals.DefaultTuning())
	res := engine.Decay(testPet(0, 0, 0))
	assert.True(t, res.Died)
	assert.Equal(t, entity.StagePassed, res.Pet.LifeStage)
	assert.True(t, res.Pet.Dead)
	require.NotNil(t, res.Pet.DeathAt)
	deathAt := *res.Pet.DeathAt

	dead := res.Pet
	for _, action := range []vitals.Action{vitals.ActionFeed, vitals.ActionWash, vitals.ActionPlay} {
		_, err := engine.Apply(dead, action)
		assert.ErrorIs(t, err, errorvalues.ErrDeceased)
	}

	later := testEngine(vitals.DefaultTuning()).WithClock(func() time.Time { return actionAt.Add(24 * time.Hour) })
	again := later.Decay(dead)
	assert.False(t, again.Died)
	assert.Equal(t, dead, again.Pet)
	assert.Equal(t, deathAt, *again.Pet.DeathAt)
}

func TestDeathByFilthAndBoredom(t *testing.T) {
	engine := testEngine(vitals.DefaultTuning())
	// feed: hygiene 10-8-12 and fun 20-20-12 both bottom out
	res, err := engine.Apply(testPet(50, 10, 20), vitals.ActionFeed)
	require.NoError(t, err)
	assert.True(t, res.Died)
	assert.Equal(t, vitals.Vitals{Hunger: 65, Hygiene: 0, Fun: 0}, vitals.Of(&res.Pet))
}

func TestLifeStageProgression(t *testing.T) {
	engine := testEngine(calmTuning())
	p := testPet(50, 50, 50)
	stages := map[int]entity.LifeStage{
		1: entity.StageBaby, 4: entity.StageBaby,
		5: entity.StageAdult, 9: entity.StageAdult,
		10: entity.StageSenior, 14: entity.StageSenior,
		15: entity.StagePassed,
	}
	for n := 1; n <= 15; n++ {
		res, err := engine.Apply(p, vitals.ActionFeed)
		require.NoError(t, err, "action #%d", n)
		if want, ok := stages[n]; ok {
			assert.Equal(t, want, res.Pet.LifeStage, "action #%d", n)
		}
		assert.Equal(t, n == 15, res.Died, "action #%d", n)
		p = res.Pet
	}
	_, err := engine.Apply(p, vitals.ActionFeed)
	assert.ErrorIs(t, err, errorvalues.ErrDeceased)
	assert.Equal(t, 15, p.ActionsCount)
}

func TestDecay(t *testing.T) {
	engine := testEngine(vitals.DefaultTuning())
	p := testPet(50, 50, 50)
	p.ActionsCount = 3
	res := engine.Decay(p)
	assert.False(t, res.Died)
	assert.Equal(t, vitals.Vitals{Hunger: 45, Hygiene: 47, Fun: 47}, vitals.Of(&res.Pet))
	assert.Equal(t, 3, res.Pet.ActionsCount)
	assert.Equal(t, actionAt, res.Pet.UpdatedAt)
}

func TestVitalsStayBounded(t *testing.T) {
	engine := testEngine(vitals.DefaultTuning())
	rnd := rand.New(rand.NewPCG(7, 11))
	actions := []vitals.Action{vitals.ActionFeed, vitals.ActionWash, vitals.ActionPlay}

	for round := range 200 {
		p := testPet(rnd.IntN(101), rnd.IntN(101), rnd.IntN(101))
		var deathAt *time.Time
		for range 40 {
			before := p
			if rnd.IntN(4) == 0 {
				p = engine.Decay(p).Pet
				assert.Equal(t, before.ActionsCount, p.ActionsCount)
			} else {
				res, err := engine.Apply(p, actions[rnd.IntN(len(actions))])
				if err != nil {
					assert.Equal(t, before, p)
					continue
				}
				assert.Equal(t, before.ActionsCount+1, res.Pet.ActionsCount)
				p = res.Pet
			}
			for _, v := range []int{p.Hunger, p.Hygiene, p.Fun} {
				require.GreaterOrEqual(t, v, vitals.MinValue, "round %d", round)
				require.LessOrEqual(t, v, vitals.MaxValue, "round %d", round)
			}
			assert.Equal(t, p.LifeStage == entity.StagePassed, p.Dead)
			assert.Equal(t, p.Dead, p.DeathAt != nil)
			if deathAt != nil {
				assert.Equal(t, *deathAt, *p.DeathAt)
			} else if p.DeathAt != nil {
				deathAt = p.DeathAt
			}
		}
	}
}

func TestParseAction(t *testing.T) {
	for _, s := range []string{"feed", "wash", "play"} {
		a, err := vitals.ParseAction(s)
		assert.NoError(t, err)
		assert.Equal(t, vitals.Action(s), a)
	}
	_, err := vitals.ParseAction("FEED")
	assert.ErrorIs(t, err, errorvalues.ErrUnknownAction)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
