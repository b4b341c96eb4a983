package entity

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return slices.Contains(u.Roles, RoleAdmin) || slices.Contains(u.Roles, "ADMIN")
}

// Breed only affects how the pet is drawn.
type Breed string

const (
	BreedDalmatian       Breed = "DALMATIAN"
	BreedGoldenRetriever Breed = "GOLDEN_RETRIEVER"
	BreedLabrador        Breed = "LABRADOR"
)

func (b Breed) Valid() bool {
	switch b {
	case BreedDalmatian, BreedGoldenRetriever, BreedLabrador:
		return true
	}
	return false
}

type LifeStage string

const (
	StageBaby   LifeStage = "BABY"
	StageAdult  LifeStage = "ADULT"
	StageSenior LifeStage = "SENIOR"
	StagePassed LifeStage = "PASSED"
)

// Rank orders live stages; PASSED ranks above all of them.
func (s LifeStage) Rank() int {
	switch s {
	case StageBaby:
		return 0
	case StageAdult:
		return 1
	case StageSenior:
		return 2
	case StagePassed:
		return 3
	}
	return -1
}

// Pet keeps Hunger as a satiation level: 100 is full, 0 is starving.
type Pet struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      uuid.UUID  `json:"ownerId"`
	Name         string     `json:"name"`
	Breed        Breed      `json:"breed"`
	Hunger       int        `json:"hunger"`
	Hygiene      int        `json:"hygiene"`
	Fun          int        `json:"fun"`
	ActionsCount int        `json:"actionsCount"`
	LifeStage    LifeStage  `json:"lifeStage"`
	Dead         bool       `json:"dead"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeathAt      *time.Time `json:"deathAt"`
}

func (p *Pet) Passed() bool {
	return p.Dead || p.LifeStage == StagePassed
}
