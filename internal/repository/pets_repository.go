package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/limbo/virtualpet/internal/error_values"
	"github.com/limbo/virtualpet/pkg/entity"
)

const petColumns = `id, owner_id, name, breed, hunger, hygiene, fun, actions_count, life_stage, dead, created_at, updated_at, death_at`

type PetsRepository struct {
	conn PgConnection
}

func NewPetsRepoWithConn(conn PgConnection) *PetsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for petsRepo: " + err.Error())
	}
	return &PetsRepository{
		conn: conn,
	}
}

func (pr *PetsRepository) Create(ctx context.Context, pet *entity.Pet) error {
	if pet == nil {
		return errors.New("pet is nil")
	}
	_, err := pr.conn.Exec(ctx, `INSERT INTO pets (`+petColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
		pet.ID,
		pet.OwnerID,
		pet.Name,
		pet.Breed,
		pet.Hunger,
		pet.Hygiene,
		pet.Fun,
		pet.ActionsCount,
		pet.LifeStage,
		pet.Dead,
		pet.CreatedAt,
		pet.UpdatedAt,
		pet.DeathAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgForeignKeyViolation:
				return errorvalues.ErrOwnerNotFound
			}
		}
		return errors.New("creating pet db error: " + err.Error())
	}
	return nil
}

func (pr *PetsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Pet, error) {
	pet, err := scanPet(pr.conn.QueryRow(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrPetNotFound
		}
		return nil, errors.New("getting pet by id error: " + err.Error())
	}
	return pet, nil
}

func (pr *PetsRepository) List(ctx context.Context, filter PetsFilter) ([]*entity.Pet, int, error) {
	var owner, limit any
	if filter.OwnerID != nil {
		owner = *filter.OwnerID
	}
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	var total int
	err := pr.conn.QueryRow(ctx, `SELECT COUNT(*) FROM pets WHERE ($1::uuid IS NULL OR owner_id = $1);`, owner).Scan(&total)
	if err != nil {
		return nil, 0, errors.New("counting pets error: " + err.Error())
	}
	rows, err := pr.conn.Query(ctx, `SELECT `+petColumns+` FROM pets WHERE ($1::uuid IS NULL OR owner_id = $1) ORDER BY created_at, id LIMIT $2 OFFSET $3;`,
		owner, limit, filter.Offset)
	if err != nil {
		return nil, 0, errors.New("listing pets error: " + err.Error())
	}
	defer rows.Close()
	pets := make([]*entity.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, 0, errors.New("unmarshalling pet error: " + err.Error())
		}
		pets = append(pets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.New("unexpected error after scanning pets: " + err.Error())
	}
	return pets, total, nil
}

func (pr *PetsRepository) ListAliveIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := pr.conn.Query(ctx, `SELECT id FROM pets WHERE NOT dead ORDER BY created_at, id;`)
	if err != nil {
		return nil, errors.New("listing alive pets error: " + err.Error())
	}
	defer rows.Close()
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, errors.New("unmarshalling pet id error: " + err.Error())
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New("unexpected error after scanning pet ids: " + err.Error())
	}
	return ids, nil
}

// Mutate locks the row with SELECT ... FOR UPDATE so concurrent actions and
// decay on the same pet are serialized by the database.
func (pr *PetsRepository) Mutate(ctx context.Context, id uuid.UUID, fn MutateFunc) (*entity.Pet, error) {
	tx, err := pr.conn.Begin(ctx)
	if err != nil {
		return nil, errors.New("beginning pet transaction error: " + err.Error())
	}
	pet, err := scanPet(tx.QueryRow(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1 FOR UPDATE;`, id))
	if err != nil {
		tx.Rollback(ctx)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrPetNotFound
		}
		return nil, errors.New("locking pet error: " + err.Error())
	}
	if err = fn(pet); err != nil {
		tx.Rollback(ctx)
		return nil, err
	}
	_, err = tx.Exec(ctx, `UPDATE pets SET name = $1, hunger = $2, hygiene = $3, fun = $4, actions_count = $5, life_stage = $6, dead = $7, updated_at = $8, death_at = $9 WHERE id = $10;`,
		pet.Name,
		pet.Hunger,
		pet.Hygiene,
		pet.Fun,
		pet.ActionsCount,
		pet.LifeStage,
		pet.Dead,
		pet.UpdatedAt,
		pet.DeathAt,
		pet.ID,
	)
	if err != nil {
		tx.Rollback(ctx)
		return nil, errors.New("updating pet error: " + err.Error())
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, errors.New("committing pet update error: " + err.Error())
	}
	return pet, nil
}

func (pr *PetsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := pr.conn.Exec(ctx, `DELETE FROM pets WHERE id = $1;`, id)
	if err != nil {
		return errors.New("deleting pet error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrPetNotFound
	}
	return nil
}

func scanPet(row pgx.Row) (*entity.Pet, error) {
	var p entity.Pet
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Breed,
		&p.Hunger,
		&p.Hygiene,
		&p.Fun,
		&p.ActionsCount,
		&p.LifeStage,
		&p.Dead,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeathAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
