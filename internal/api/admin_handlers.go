package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/virtualpet/internal/error_values"
	"github.com/limbo/virtualpet/pkg/httputil"
)

func (s *Server) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	page, limit, opts := pagination(r)
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()
	users, total, err := s.userService.List(ctx, opts)
	if err != nil {
		logger.Error("getting users list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting users list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, httputil.NewListEnvelope(users, total, page, limit))
	logger.Info("users provided")
}

func (s *Server) AdminGetUser(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := pathUUID(r, "id")
	if err != nil {
		logger.Error("get user error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid user id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()
	user, err := s.userService.GetByID(ctx, id)
	if err != nil {
		writeUserError(w, logger, "get user", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, user)
}

func (s *Server) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := pathUUID(r, "id")
	if err != nil {
		logger.Error("user deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid user id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()
	if err = s.userService.Delete(ctx, id); err != nil {
		writeUserError(w, logger, "user deletion", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("user deleted with all pets", slog.String("target_uid", id.String()))
}

func (s *Server) AdminListUserPets(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := pathUUID(r, "id")
	if err != nil {
		logger.Error("user pets error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid user id in path value", nil)
		return
	}
	page, limit, opts := pagination(r)
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()
	if _, err = s.userService.GetByID(ctx, id); err != nil {
		writeUserError(w, logger, "user pets", err)
		return
	}
	pets, total, err := s.petService.ListByOwner(ctx, &id, opts)
	if err != nil {
		logger.Error("user pets error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting pets list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, httputil.NewListEnvelope(pets, total, page, limit))
}

func (s *Server) AdminDeleteUserPet(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	userID, err := pathUUID(r, "id")
	if err != nil {
		logger.Error("user pet deletion error: invalid user id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid user id in path value", nil)
		return
	}
	petID, err := pathUUID(r, "petID")
	if err != nil {
		logger.Error("user pet deletion error: invalid pet id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid pet id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()
	if err = s.petService.DeleteOwned(ctx, userID, petID); err != nil {
		writePetError(w, logger, "user pet deletion", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("user pet deleted", slog.String("target_uid", userID.String()), slog.String("pet_id", petID.String()))
}

// AdminListPets lists every pet, optionally filtered by the ownerId query param.
func (s *Server) AdminListPets(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var ownerID *uuid.UUID
	if raw := r.URL.Query().Get("ownerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			logger.Error("admin pets error: invalid owner id")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid ownerId query param", nil)
			return
		}
		ownerID = &id
	}
	page, limit, opts := pagination(r)
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()
	pets, total, err := s.petService.ListByOwner(ctx, ownerID, opts)
	if err != nil {
		logger.Error("admin pets error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting pets list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, httputil.NewListEnvelope(pets, total, page, limit))
}

func writeUserError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	if errors.Is(err, errorvalues.ErrUserNotFound) {
		logger.Error(op + " error: unexist user")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "user doesn't exist", nil)
		return
	}
	logger.Error(op+" error: service error", slog.String("error", err.Error()))
	httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error", nil)
}
