package errorvalues

import "errors"

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrEmailTaken       = errors.New("email already registered")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong email or password")
	ErrInvalidToken     = errors.New("invalid token")
	ErrNotAdmin         = errors.New("admin only")

	ErrPetNotFound   = errors.New("pet doesn't exist")
	ErrOwnerNotFound = errors.New("pet owner doesn't exist")
	ErrWrongOwner    = errors.New("pet belongs to another user")

	ErrValidation = errors.New("validation error")
)

// Care action rejections. The pet is left untouched when one of these is returned.
var (
	ErrAlreadySatiated = errors.New("your pet is not hungry right now")
	ErrAlreadyClean    = errors.New("your pet is already clean")
	ErrAlreadyJoyful   = errors.New("your pet is already too happy to play")
	ErrDeceased        = errors.New("your pet has passed away and can't do that")
	ErrUnknownAction   = errors.New("unknown pet action")
)
