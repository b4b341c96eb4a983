package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/virtualpet/internal/error_values"
	"github.com/limbo/virtualpet/internal/repository"
	"github.com/limbo/virtualpet/pkg/entity"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo repository.UsersRepositoryI
	now  func() time.Time
}

func NewUserService(usersRepo repository.UsersRepositoryI) *UserService {
	return &UserService{
		repo: usersRepo,
		now:  time.Now,
	}
}

func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (us *UserService) Register(ctx context.Context, req *RegisterRequest) (*entity.User, error) {
	return us.create(ctx, req, []string{entity.RoleUser})
}

func (us *UserService) create(ctx context.Context, req *RegisterRequest, roles []string) (*entity.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	passwordHash, err := Hash(req.Password)
	if err != nil {
		return nil, errors.New("hashing password error: " + err.Error())
	}
	user := &entity.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Roles:        roles,
		CreatedAt:    us.now().UTC(),
	}
	err = us.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserExists) || errors.Is(err, errorvalues.ErrEmailTaken) {
			return nil, err
		}
		return nil, errors.New("repository creating error: " + err.Error())
	}
	return user, nil
}

func (us *UserService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := us.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, errorvalues.ErrWrongCredentials
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errorvalues.ErrWrongCredentials
	}
	return user, nil
}

func (us *UserService) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := us.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	return user, nil
}

func (us *UserService) List(ctx context.Context, opts PaginationOpts) ([]*entity.User, int, error) {
	users, total, err := us.repo.List(ctx, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, errors.New("repository listing error: " + err.Error())
	}
	return users, total, nil
}

func (us *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	err := us.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return err
		}
		return errors.New("repository deletion error: " + err.Error())
	}
	return nil
}

func (us *UserService) EnsureAdmin(ctx context.Context, req *RegisterRequest) (*entity.User, bool, error) {
	existing, err := us.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, errorvalues.ErrUserNotFound) {
		return nil, false, errors.New("repository searching error: " + err.Error())
	}
	user, err := us.create(ctx, req, []string{entity.RoleUser, entity.RoleAdmin})
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}
