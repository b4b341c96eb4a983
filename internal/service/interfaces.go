package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/limbo/virtualpet/internal/vitals"
	"github.com/limbo/virtualpet/pkg/entity"
)

type RegisterRequest struct {
	Username string `validate:"required,alphanum_underscore,min=3,max=100"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=6,max=72"`
}

type CreatePetRequest struct {
	Name  string `validate:"required,max=50"`
	Breed string `validate:"required,breed"`
}

type UpdatePetRequest struct {
	Name string `validate:"required,max=50"`
}

type PaginationOpts struct {
	Limit  int
	Offset int
}

// Actor is the authenticated caller. Admins may read and act on any pet.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

type UserServiceI interface {
	// Validates user's data, hashes the password and stores the user with ROLE_USER
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. Any mismatch is reported as ErrWrongCredentials
	Login(ctx context.Context, email, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	List(ctx context.Context, opts PaginationOpts) ([]*entity.User, int, error)
	// Deletes the user together with all of the user's pets
	Delete(ctx context.Context, id uuid.UUID) error
	// Creates an admin account unless a user with the same email exists. Reports whether it was created
	EnsureAdmin(ctx context.Context, req *RegisterRequest) (*entity.User, bool, error)
}

type PetServiceI interface {
	Create(ctx context.Context, actor Actor, req *CreatePetRequest) (*entity.Pet, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Pet, error)
	// Lists the actor's pets, or every pet for admins
	List(ctx context.Context, actor Actor, opts PaginationOpts) ([]*entity.Pet, int, error)
	// Lists pets of a given owner, or every pet when ownerID is nil. Admin only
	ListByOwner(ctx context.Context, ownerID *uuid.UUID, opts PaginationOpts) ([]*entity.Pet, int, error)
	Rename(ctx context.Context, actor Actor, id uuid.UUID, req *UpdatePetRequest) (*entity.Pet, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	// Deletes the pet only when it belongs to ownerID. Admin only
	DeleteOwned(ctx context.Context, ownerID, petID uuid.UUID) error
	// Performs a care action and reports the outcome
	Act(ctx context.Context, actor Actor, id uuid.UUID, action string) (*vitals.Outcome, error)
}
