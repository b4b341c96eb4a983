package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/virtualpet/internal/error_values"
	"github.com/limbo/virtualpet/internal/service"
	"github.com/limbo/virtualpet/pkg/entity"
	"github.com/limbo/virtualpet/pkg/httputil"
)

const (
	handlerTimeout   = 10 * time.Second
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token    string   `json:"token"`
	UserID   string   `json:"uid"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req RegisterRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("registering error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()
	user, err := s.userService.Register(ctx, &service.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			logger.Error("registering error: validation failed")
			writeValidationError(w, verr)
		case errors.Is(err, errorvalues.ErrUserExists):
			logger.Error("registering error: username taken")
			httputil.WriteErrorResponse(w, http.StatusConflict, "username already taken", nil)
		case errors.Is(err, errorvalues.ErrEmailTaken):
			logger.Error("registering error: email taken")
			httputil.WriteErrorResponse(w, http.StatusConflict, "email already registered", nil)
		default:
			logger.Error("registering error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during registration", nil)
		}
		return
	}
	s.writeAuthResponse(w, logger, user)
	logger.Info("successful registration", slog.String("uid", user.ID.String()))
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req LoginRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("login error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()
	user, err := s.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, errorvalues.ErrWrongCredentials) {
			logger.Error("login error: wrong credentials")
			httputil.WriteErrorResponse(w, http.StatusUnauthorized, "invalid email or password", nil)
			return
		}
		logger.Error("login error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during login", nil)
		return
	}
	s.writeAuthResponse(w, logger, user)
	logger.Info("successful login", slog.String("uid", user.ID.String()))
}

func (s *Server) writeAuthResponse(w http.ResponseWriter, logger *slog.Logger, user *entity.User) {
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		logger.Error("generating token error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error creating token", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, AuthResponse{
		Token:    token,
		UserID:   user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.Roles,
	})
}

func writeValidationError(w http.ResponseWriter, verr *service.ValidationError) {
	fields := make([]httputil.FieldError, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, httputil.FieldError{Field: f.Field, Message: f.Message})
	}
	httputil.WriteValidationError(w, "validation failed", fields)
}

// pagination reads 1-based page and limit query params. Invalid values fall back to defaults.
func pagination(r *http.Request) (page, limit int, opts service.PaginationOpts) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	page, err = strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return page, limit, service.PaginationOpts{Limit: limit, Offset: (page - 1) * limit}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue(name))
}

// writePetError maps pet service errors onto statuses. Care action rejections
// carry a stable reason token.
func writePetError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		logger.Error(op + " error: validation failed")
		writeValidationError(w, verr)
	case errors.Is(err, errorvalues.ErrUnknownAction):
		logger.Error(op + " error: unknown action")
		httputil.WriteRejection(w, http.StatusBadRequest, httputil.ReasonUnknownAction, "unknown action")
	case errors.Is(err, errorvalues.ErrAlreadySatiated):
		httputil.WriteRejection(w, http.StatusConflict, httputil.ReasonAlreadySatiated, "pet is not hungry")
	case errors.Is(err, errorvalues.ErrAlreadyClean):
		httputil.WriteRejection(w, http.StatusConflict, httputil.ReasonAlreadyClean, "pet is already clean")
	case errors.Is(err, errorvalues.ErrAlreadyJoyful):
		httputil.WriteRejection(w, http.StatusConflict, httputil.ReasonAlreadyJoyful, "pet is too happy to play")
	case errors.Is(err, errorvalues.ErrDeceased):
		httputil.WriteRejection(w, http.StatusGone, httputil.ReasonDeceased, "pet has passed away")
	case errors.Is(err, errorvalues.ErrPetNotFound):
		logger.Error(op + " error: unexist pet")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "pet doesn't exist", nil)
	case errors.Is(err, errorvalues.ErrWrongOwner):
		logger.Error(op + " error: pet has different owner")
		httputil.WriteErrorResponse(w, http.StatusForbidden, "pet belongs to another user", nil)
	case errors.Is(err, errorvalues.ErrOwnerNotFound):
		logger.Error(op + " error: owner doesn't exist")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "owner doesn't exist", nil)
	default:
		logger.Error(op+" error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error", nil)
	}
}
