package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/virtualpet/internal/error_values"
	"github.com/limbo/virtualpet/internal/repository"
	"github.com/limbo/virtualpet/internal/vitals"
	"github.com/limbo/virtualpet/pkg/entity"
)

type PetService struct {
	repo   repository.PetsRepositoryI
	engine *vitals.Engine
}

func NewPetService(petsRepo repository.PetsRepositoryI, engine *vitals.Engine) *PetService {
	return &PetService{
		repo:   petsRepo,
		engine: engine,
	}
}

func authorize(actor Actor, pet *entity.Pet) error {
	if actor.Admin || pet.OwnerID == actor.ID {
		return nil
	}
	return errorvalues.ErrWrongOwner
}

func isPetError(err error) bool {
	return errors.Is(err, errorvalues.ErrPetNotFound) || errors.Is(err, errorvalues.ErrWrongOwner)
}

func (ps *PetService) Create(ctx context.Context, actor Actor, req *CreatePetRequest) (*entity.Pet, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Breed = strings.ToUpper(strings.TrimSpace(req.Breed))
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	pet := ps.engine.Newborn(entity.Pet{
		ID:      uuid.New(),
		OwnerID: actor.ID,
		Name:    req.Name,
		Breed:   entity.Breed(req.Breed),
	})
	if err := ps.repo.Create(ctx, &pet); err != nil {
		if errors.Is(err, errorvalues.ErrOwnerNotFound) {
			return nil, err
		}
		return nil, errors.New("pets repository error: " + err.Error())
	}
	return &pet, nil
}

func (ps *PetService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Pet, error) {
	pet, err := ps.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrPetNotFound) {
			return nil, err
		}
		return nil, errors.New("pets repository error: " + err.Error())
	}
	if err = authorize(actor, pet); err != nil {
		return nil, err
	}
	return pet, nil
}

func (ps *PetService) List(ctx context.Context, actor Actor, opts PaginationOpts) ([]*entity.Pet, int, error) {
	filter := repository.PetsFilter{Limit: opts.Limit, Offset: opts.Offset}
	if !actor.Admin {
		filter.OwnerID = &actor.ID
	}
	pets, total, err := ps.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, errors.New("pets repository error: " + err.Error())
	}
	return pets, total, nil
}

func (ps *PetService) ListByOwner(ctx context.Context, ownerID *uuid.UUID, opts PaginationOpts) ([]*entity.Pet, int, error) {
	pets, total, err := ps.repo.List(ctx, repository.PetsFilter{
		OwnerID: ownerID,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	})
	if err != nil {
		return nil, 0, errors.New("pets repository error: " + err.Error())
	}
	return pets, total, nil
}

func (ps *PetService) Rename(ctx context.Context, actor Actor, id uuid.UUID, req *UpdatePetRequest) (*entity.Pet, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	pet, err := ps.repo.Mutate(ctx, id, func(p *entity.Pet) error {
		if err := authorize(actor, p); err != nil {
			return err
		}
		if p.Passed() {
			return errorvalues.ErrDeceased
		}
		p.Name = req.Name
		ps.engine.Touch(p)
		return nil
	})
	if err != nil {
		if isPetError(err) || errors.Is(err, errorvalues.ErrDeceased) {
			return nil, err
		}
		return nil, errors.New("pets repository error: " + err.Error())
	}
	return pet, nil
}

func (ps *PetService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	pet, err := ps.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	return ps.delete(ctx, pet.ID)
}

func (ps *PetService) DeleteOwned(ctx context.Context, ownerID, petID uuid.UUID) error {
	pet, err := ps.Get(ctx, Actor{ID: ownerID}, petID)
	if err != nil {
		return err
	}
	return ps.delete(ctx, pet.ID)
}

func (ps *PetService) delete(ctx context.Context, id uuid.UUID) error {
	err := ps.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrPetNotFound) {
			return err
		}
		return errors.New("pets repository error: " + err.Error())
	}
	return nil
}

// Act runs one care action under the pet's lock. Rejections leave the stored pet untouched.
func (ps *PetService) Act(ctx context.Context, actor Actor, id uuid.UUID, action string) (*vitals.Outcome, error) {
	kind, err := vitals.ParseAction(strings.ToLower(action))
	if err != nil {
		return nil, err
	}
	var res vitals.Result
	_, err = ps.repo.Mutate(ctx, id, func(p *entity.Pet) error {
		if err := authorize(actor, p); err != nil {
			return err
		}
		r, err := ps.engine.Apply(*p, kind)
		if err != nil {
			return err
		}
		*p = r.Pet
		res = r
		return nil
	})
	if err != nil {
		if isPetError(err) || IsRejection(err) {
			return nil, err
		}
		return nil, errors.New("pets repository error: " + err.Error())
	}
	out := ps.engine.Report(res)
	return &out, nil
}

// IsRejection reports whether err is a care action rejection.
func IsRejection(err error) bool {
	return errors.Is(err, errorvalues.ErrAlreadySatiated) ||
		errors.Is(err, errorvalues.ErrAlreadyClean) ||
		errors.Is(err, errorvalues.ErrAlreadyJoyful) ||
		errors.Is(err, errorvalues.ErrDeceased) ||
		errors.Is(err, errorvalues.ErrUnknownAction)
}
