// internal/api/services/handlers.go
package services

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

const serviceQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *store.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

type serviceRequest struct {
	Name      string `json:"name"`
	CostCents int64  `json:"cost_cents"`
	Active    *bool  `json:"active"`
}

// GET /api/v1/services
func HandleServicesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceQueryTimeout)
	defer cancel()

	services, err := q.ListServices(ctx)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to list services")
		return
	}
	if services == nil {
		services = []store.Service{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, services); err != nil {
		logger.Error().Err(err).Msg("Failed to write service list response")
	}
}

// POST /api/v1/services
func HandleServiceCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req serviceRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateServiceRequest(&req); err != nil {
		apiutil.RespondError(w, r, err, "Failed to validate service")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceQueryTimeout)
	defer cancel()

	created, err := q.CreateService(ctx, store.CreateServiceParams{
		Name:      req.Name,
		CostCents: req.CostCents,
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to create service")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Int64("service_id", created.ID).Msg("Failed to write service response")
	}
}

// PUT /api/v1/services/{id}
func HandleServiceUpdate(w http.ResponseWriter, r *http.Request) {
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

	var req serviceRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateServiceRequest(&req); err != nil {
		apiutil.RespondError(w, r, err, "Failed to validate service")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceQueryTimeout)
	defer cancel()

	current, err := q.GetService(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load service")
		return
	}

	active := current.Active
	if req.Active != nil {
		active = *req.Active
	}

	updated, err := q.UpdateService(ctx, store.UpdateServiceParams{
		ID:        id,
		Name:      req.Name,
		CostCents: req.CostCents,
		Active:    active,
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to update service")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Int64("service_id", id).Msg("Failed to write service response")
	}
}

// DELETE /api/v1/services/{id}
func HandleServiceDelete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), serviceQueryTimeout)
	defer cancel()

	affected, err := q.DeleteService(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to delete service")
		return
	}
	if affected == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "Resource not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validateServiceRequest(req *serviceRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apiutil.FieldError{Field: "name", Reason: "is required"}
	}
	if req.CostCents < 0 {
		return apiutil.FieldError{Field: "cost_cents", Reason: "must be 0 or greater"}
	}
	return nil
}

func loadQueries() *store.Queries {
	return queries
}
