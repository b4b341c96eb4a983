// Package memory keeps users and pets in process memory. It backs local runs
// with STORAGE=memory and the end-to-end tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/virtualpet/internal/error_values"
	"github.com/limbo/virtualpet/internal/repository"
	"github.com/limbo/virtualpet/pkg/entity"
)

var (
	_ repository.UsersRepositoryI = (*UsersRepo)(nil)
	_ repository.PetsRepositoryI  = (*PetsRepo)(nil)
)

// Store is shared by UsersRepo and PetsRepo so that deleting a user cascades to its pets.
type Store struct {
	mu    sync.RWMutex
	users map[uuid.UUID]entity.User
	pets  map[uuid.UUID]entity.Pet

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		users: make(map[uuid.UUID]entity.User),
		pets:  make(map[uuid.UUID]entity.Pet),
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *Store) petLock(id uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *Store) dropLock(id uuid.UUID) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	delete(s.locks, id)
}

type UsersRepo struct {
	s *Store
}

func NewUsersRepo(s *Store) *UsersRepo {
	return &UsersRepo{s: s}
}

func (r *UsersRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return errorvalues.ErrEmailTaken
		}
		if u.Username == user.Username || u.ID == user.ID {
			return errorvalues.ErrUserExists
		}
	}
	u := *user
	u.Roles = slices.Clone(user.Roles)
	r.s.users[u.ID] = u
	return nil
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, errorvalues.ErrUserNotFound
}

func (r *UsersRepo) FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[uid]
	if !ok {
		return nil, errorvalues.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UsersRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, cloneUser(u))
	}
	slices.SortFunc(all, func(a, b *entity.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return page(all, limit, offset), len(all), nil
}

func (r *UsersRepo) Delete(ctx context.Context, uid uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[uid]; !ok {
		return errorvalues.ErrUserNotFound
	}
	delete(r.s.users, uid)
	for id, p := range r.s.pets {
		if p.OwnerID == uid {
			delete(r.s.pets, id)
			r.s.dropLock(id)
		}
	}
	return nil
}

type PetsRepo struct {
	s *Store
}

func NewPetsRepo(s *Store) *PetsRepo {
	return &PetsRepo{s: s}
}

func (r *PetsRepo) Create(ctx context.Context, pet *entity.Pet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[pet.OwnerID]; !ok {
		return errorvalues.ErrOwnerNotFound
	}
	r.s.pets[pet.ID] = clonePet(*pet)
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.pets[id]
	if !ok {
		return nil, errorvalues.ErrPetNotFound
	}
	cp := clonePet(p)
	return &cp, nil
}

func (r *PetsRepo) List(ctx context.Context, filter repository.PetsFilter) ([]*entity.Pet, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Pet, 0)
	for _, p := range r.s.pets {
		if filter.OwnerID != nil && p.OwnerID != *filter.OwnerID {
			continue
		}
		cp := clonePet(p)
		out = append(out, &cp)
	}
	sortPets(out)
	return page(out, filter.Limit, filter.Offset), len(out), nil
}

func (r *PetsRepo) ListAliveIDs(ctx context.Context) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	alive := make([]*entity.Pet, 0, len(r.s.pets))
	for _, p := range r.s.pets {
		if !p.Passed() {
			cp := p
			alive = append(alive, &cp)
		}
	}
	r.s.mu.RUnlock()
	sortPets(alive)
	ids := make([]uuid.UUID, 0, len(alive))
	for _, p := range alive {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (r *PetsRepo) Mutate(ctx context.Context, id uuid.UUID, fn repository.MutateFunc) (*entity.Pet, error) {
	l := r.s.petLock(id)
	l.Lock()
	defer l.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	current, ok := r.s.pets[id]
	r.s.mu.RUnlock()
	if !ok {
		return nil, errorvalues.ErrPetNotFound
	}
	pet := clonePet(current)
	if err := fn(&pet); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// the pet or its owner may have been deleted while fn ran
	if _, ok := r.s.pets[id]; !ok {
		return nil, errorvalues.ErrPetNotFound
	}
	r.s.pets[id] = clonePet(pet)
	return &pet, nil
}

func (r *PetsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.pets[id]; !ok {
		return errorvalues.ErrPetNotFound
	}
	delete(r.s.pets, id)
	r.s.dropLock(id)
	return nil
}

func sortPets(pets []*entity.Pet) {
	slices.SortFunc(pets, func(a, b *entity.Pet) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func cloneUser(u entity.User) *entity.User {
	u.Roles = slices.Clone(u.Roles)
	return &u
}

func clonePet(p entity.Pet) entity.Pet {
	if p.DeathAt != nil {
		t := *p.DeathAt
		p.DeathAt = &t
	}
	return p
}
