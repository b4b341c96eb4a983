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

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	usersEmailConstraint = "users_email_key"
)

type UsersRepository struct {
	conn PgConnection
}

func NewUsersRepoWithConn(conn PgConnection) *UsersRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for usersRepo: " + err.Error())
	}
	return &UsersRepository{
		conn: conn,
	}
}

func (ur *UsersRepository) Create(ctx context.Context, user *entity.User) error {
	if user == nil {
		return errors.New("user is nil")
	}
	_, err := ur.conn.Exec(ctx, `INSERT INTO users (id, username, email, password_hash, roles, created_at) VALUES ($1, $2, $3, $4, $5, $6);`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Roles,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				if pgErr.ConstraintName == usersEmailConstraint {
					return errorvalues.ErrEmailTaken
				}
				return errorvalues.ErrUserExists
			}
		}
		return errors.New("creating user db error: " + err.Error())
	}
	return nil
}

func (ur *UsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := ur.conn.QueryRow(ctx, `SELECT id, username, email, password_hash, roles, created_at FROM users WHERE email = $1;`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("searching user by email error: " + err.Error())
	}
	return user, nil
}

func (ur *UsersRepository) FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error) {
	row := ur.conn.QueryRow(ctx, `SELECT id, username, email, password_hash, roles, created_at FROM users WHERE id = $1;`, uid)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("searching user by id error: " + err.Error())
	}
	return user, nil
}

func (ur *UsersRepository) List(ctx context.Context, limit, offset int) ([]*entity.User, int, error) {
	var total int
	if err := ur.conn.QueryRow(ctx, `SELECT COUNT(*) FROM users;`).Scan(&total); err != nil {
		return nil, 0, errors.New("counting users error: " + err.Error())
	}
	rows, err := ur.conn.Query(ctx, `SELECT id, username, email, password_hash, roles, created_at FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2;`, limit, offset)
	if err != nil {
		return nil, 0, errors.New("listing users error: " + err.Error())
	}
	defer rows.Close()
	users := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, errors.New("unmarshalling user error: " + err.Error())
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.New("unexpected error after scanning users: " + err.Error())
	}
	return users, total, nil
}

// Delete relies on ON DELETE CASCADE to remove the user's pets in the same statement.
func (ur *UsersRepository) Delete(ctx context.Context, uid uuid.UUID) error {
	ct, err := ur.conn.Exec(ctx, `DELETE FROM users WHERE id = $1;`, uid)
	if err != nil {
		return errors.New("deleting user error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Roles, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
