package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/virtualpet/internal/error_values"
	"github.com/limbo/virtualpet/internal/repository"
	"github.com/limbo/virtualpet/internal/repository/memory"
	"github.com/limbo/virtualpet/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newUser(name string, minute int) *entity.User {
	return &entity.User{
		ID:        uuid.New(),
		Username:  name,
		Email:     name + "@pets.local",
		Roles:     []string{entity.RoleUser},
		CreatedAt: base.Add(time.Duration(minute) * time.Minute),
	}
}

func newPet(owner uuid.UUID, name string, minute int) *entity.Pet {
	return &entity.Pet{
		ID:        uuid.New(),
		OwnerID:   owner,
		Name:      name,
		Breed:     entity.BreedLabrador,
		Hunger:    50,
		Hygiene:   70,
		Fun:       60,
		LifeStage: entity.StageBaby,
		CreatedAt: base.Add(time.Duration(minute) * time.Minute),
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUsersRepo(memory.NewStore())
	ann := newUser("ann", 1)
	bob := newUser("bob", 2)
	require.NoError(t, repo.Create(ctx, bob))
	require.NoError(t, repo.Create(ctx, ann))

	t.Run("duplicates", func(t *testing.T) {
		dup := newUser("ann", 3)
		assert.ErrorIs(t, repo.Create(ctx, dup), errorvalues.ErrEmailTaken)
		dup.Email = "other@pets.local"
		assert.ErrorIs(t, repo.Create(ctx, dup), errorvalues.ErrUserExists)
	})
	t.Run("lookups", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, ann.Email)
		require.NoError(t, err)
		assert.Equal(t, ann, got)
		got, err = repo.FindByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, bob, got)
		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
	t.Run("returned users are copies", func(t *testing.T) {
		got, err := repo.FindByID(ctx, ann.ID)
		require.NoError(t, err)
		got.Roles[0] = entity.RoleAdmin
		again, err := repo.FindByID(ctx, ann.ID)
		require.NoError(t, err)
		assert.False(t, again.IsAdmin())
	})
	t.Run("list is ordered and paged", func(t *testing.T) {
		users, total, err := repo.List(ctx, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, users, 1)
		assert.Equal(t, ann.ID, users[0].ID)
		users, _, err = repo.List(ctx, 10, 5)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	users := memory.NewUsersRepo(store)
	pets := memory.NewPetsRepo(store)
	owner := newUser("owner", 0)
	other := newUser("other", 1)
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, other))
	for i := range 3 {
		require.NoError(t, pets.Create(ctx, newPet(owner.ID, "pup", i)))
	}
	kept := newPet(other.ID, "kept", 9)
	require.NoError(t, pets.Create(ctx, kept))

	require.NoError(t, users.Delete(ctx, owner.ID))
	assert.ErrorIs(t, users.Delete(ctx, owner.ID), errorvalues.ErrUserNotFound)

	left, total, err := pets.List(ctx, repository.PetsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, kept.ID, left[0].ID)
	ownerID := owner.ID
	_, total, err = pets.List(ctx, repository.PetsFilter{OwnerID: &ownerID})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPets(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	users := memory.NewUsersRepo(store)
	repo := memory.NewPetsRepo(store)
	owner := newUser("owner", 0)
	require.NoError(t, users.Create(ctx, owner))

	assert.ErrorIs(t, repo.Create(ctx, newPet(uuid.New(), "stray", 0)), errorvalues.ErrOwnerNotFound)

	first := newPet(owner.ID, "first", 1)
	second := newPet(owner.ID, "second", 2)
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first, got)
		_, err = repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, errorvalues.ErrPetNotFound)
	})
	t.Run("list", func(t *testing.T) {
		pets, total, err := repo.List(ctx, repository.PetsFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, pets, 1)
		assert.Equal(t, second.ID, pets[0].ID)
	})
	t.Run("mutate", func(t *testing.T) {
		got, err := repo.Mutate(ctx, first.ID, func(p *entity.Pet) error {
			p.Name = "renamed"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Name)
		stored, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", stored.Name)
	})
	t.Run("failed mutation is discarded", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := repo.Mutate(ctx, first.ID, func(p *entity.Pet) error {
			p.Hunger = 0
			return boom
		})
		assert.ErrorIs(t, err, boom)
		stored, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 50, stored.Hunger)
	})
	t.Run("alive ids", func(t *testing.T) {
		_, err := repo.Mutate(ctx, second.ID, func(p *entity.Pet) error {
			p.Dead = true
			p.LifeStage = entity.StagePassed
			return nil
		})
		require.NoError(t, err)
		ids, err := repo.ListAliveIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{first.ID}, ids)
	})
	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, second.ID))
		assert.ErrorIs(t, repo.Delete(ctx, second.ID), errorvalues.ErrPetNotFound)
		_, err := repo.Mutate(ctx, second.ID, func(p *entity.Pet) error { return nil })
		assert.ErrorIs(t, err, errorvalues.ErrPetNotFound)
	})
}

func TestMutateSerializesPerPet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	users := memory.NewUsersRepo(store)
	repo := memory.NewPetsRepo(store)
	owner := newUser("owner", 0)
	require.NoError(t, users.Create(ctx, owner))
	pet := newPet(owner.ID, "busy", 0)
	require.NoError(t, repo.Create(ctx, pet))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Mutate(ctx, pet.ID, func(p *entity.Pet) error {
				p.ActionsCount++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	got, err := repo.GetByID(ctx, pet.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.ActionsCount)
}
