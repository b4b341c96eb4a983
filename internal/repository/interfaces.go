package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/limbo/virtualpet/pkg/entity"
)

type UsersRepositoryI interface {
	// Creates new user. ID, Username, Email, PasswordHash and Roles are necessary
	Create(ctx context.Context, user *entity.User) error
	// Looks up user by email. Used for login
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Looks up user by uid. Used by authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Lists users ordered by creation time together with the total count
	List(ctx context.Context, limit, offset int) ([]*entity.User, int, error)
	// Deletes user and, by cascade, every pet the user owns
	Delete(ctx context.Context, uid uuid.UUID) error
}

// MutateFunc changes the pet in place. Returning an error discards the change.
type MutateFunc func(pet *entity.Pet) error

type PetsRepositoryI interface {
	// Creates new pet. The whole pet including ID and timestamps is stored as is
	Create(ctx context.Context, pet *entity.Pet) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Pet, error)
	// Lists pets ordered by creation time together with the total count matching the filter
	List(ctx context.Context, filter PetsFilter) ([]*entity.Pet, int, error)
	// Returns ids of pets that have not passed away
	ListAliveIDs(ctx context.Context) ([]uuid.UUID, error)
	// Loads the pet exclusively, applies fn and stores the result. At most one
	// mutation of the same pet runs at a time
	Mutate(ctx context.Context, id uuid.UUID, fn MutateFunc) (*entity.Pet, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PetsFilter limits a pets listing. Nil OwnerID lists every pet, zero Limit lists without paging.
type PetsFilter struct {
	OwnerID *uuid.UUID
	Limit   int
	Offset  int
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
