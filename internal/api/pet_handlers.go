package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/limbo/virtualpet/internal/service"
	"github.com/limbo/virtualpet/internal/vitals"
	"github.com/limbo/virtualpet/pkg/entity"
	"github.com/limbo/virtualpet/pkg/httputil"
)

type CreatePetRequest struct {
	Name  string `json:"name"`
	Breed string `json:"breed"`
}

type UpdatePetRequest struct {
	Name string `json:"name"`
}

// PetActionResponse is the pet after a care action, flattened, plus its warnings.
type PetActionResponse struct {
	entity.Pet
	Warnings []string `json:"warnings"`
	Message  string   `json:"message,omitempty"`
}

func NewPetActionResponse(out *vitals.Outcome) PetActionResponse {
	warnings := out.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return PetActionResponse{Pet: out.Pet, Warnings: warnings, Message: out.Message}
}

func (s *Server) ListPets(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	actor, err := actorFromRequest(r)
	if err != nil {
		logger.Error("list pets error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	page, limit, opts := pagination(r)
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()
	pets, total, err := s.petService.List(ctx, actor, opts)
	if err != nil {
		logger.Error("getting pets list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting pets list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, httputil.NewListEnvelope(pets, total, page, limit))
	logger.Info("pets provided")
}

func (s *Server) GetPet(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	actor, err := actorFromRequest(r)
	if err != nil {
		logger.Error("get pet error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		logger.Error("get pet error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid pet id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()
	pet, err := s.petService.Get(ctx, actor, id)
	if err != nil {
		writePetError(w, logger, "get pet", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, pet)
}

func (s *Server) CreatePet(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	actor, err := actorFromRequest(r)
	if err != nil {
		logger.Error("create pet error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreatePetRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create pet error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()
	pet, err := s.petService.Create(ctx, actor, &service.CreatePetRequest{
		Name:  req.Name,
		Breed: req.Breed,
	})
	if err != nil {
		writePetError(w, logger, "create pet", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, pet)
	logger.Info("pet created", slog.String("pet_id", pet.ID.String()))
}

func (s *Server) UpdatePet(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	actor, err := actorFromRequest(r)
	if err != nil {
		logger.Error("update pet error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		logger.Error("update pet error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid pet id in path value", nil)
		return
	}
	var req UpdatePetRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("update pet error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()
	pet, err := s.petService.Rename(ctx, actor, id, &service.UpdatePetRequest{Name: req.Name})
	if err != nil {
		writePetError(w, logger, "update pet", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, pet)
	logger.Info("pet renamed", slog.String("pet_id", pet.ID.String()))
}

func (s *Server) DeletePet(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	actor, err := actorFromRequest(r)
	if err != nil {
		logger.Error("pet deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		logger.Error("pet deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid pet id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()
	if err = s.petService.Delete(ctx, actor, id); err != nil {
		writePetError(w, logger, "pet deletion", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("pet deleted", slog.String("pet_id", id.String()))
}

func (s *Server) ActOnPet(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	actor, err := actorFromRequest(r)
	if err != nil {
		logger.Error("pet action error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		logger.Error("pet action error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid pet id in path value", nil)
		return
	}
	action := r.PathValue("action")
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()
	out, err := s.petService.Act(ctx, actor, id, action)
	if err != nil {
		writePetError(w, logger, "pet action", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, NewPetActionResponse(out))
	logger.Info("pet action applied",
		slog.String("pet_id", id.String()),
		slog.String("action", action),
		slog.String("life_stage", string(out.Pet.LifeStage)),
	)
}
