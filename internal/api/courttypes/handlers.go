// internal/api/courttypes/handlers.go
package courttypes

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/api/apiutil"
	"github.com/courtsidehq/courtside/internal/store"
)

var (
	queries     *store.Queries
	queriesOnce sync.Once
)

const courtTypeQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *store.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

type courtTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GET /api/v1/court-types
func HandleCourtTypesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtTypeQueryTimeout)
	defer cancel()

	types, err := q.ListCourtTypes(ctx)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to list court types")
		return
	}
	if types == nil {
		types = []store.CourtType{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, types); err != nil {
		logger.Error().Err(err).Msg("Failed to write court type list response")
	}
}

// POST /api/v1/court-types
func HandleCourtTypeCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req courtTypeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		apiutil.RespondError(w, r, apiutil.FieldError{Field: "name", Reason: "is required"}, "Failed to validate court type")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtTypeQueryTimeout)
	defer cancel()

	created, err := q.CreateCourtType(ctx, store.CreateCourtTypeParams{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to create court type")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Int64("court_type_id", created.ID).Msg("Failed to write court type response")
	}
}

// GET /api/v1/court-types/{id}
func HandleCourtTypeGet(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	id, err := apiutil.IDFromPath(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtTypeQueryTimeout)
	defer cancel()

	courtType, err := q.GetCourtType(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load court type")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, courtType); err != nil {
		logger.Error().Err(err).Int64("court_type_id", id).Msg("Failed to write court type response")
	}
}

func loadQueries() *store.Queries {
	return queries
}
