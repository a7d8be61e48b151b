// internal/api/courts/handlers.go
package courts

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

const (
	courtsQueryTimeout = 5 * time.Second
	minCapacity        = 2
	maxCapacity        = 50
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *store.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

type courtRequest struct {
	Name             string `json:"name"`
	CourtTypeID      int64  `json:"court_type_id"`
	HourlyPriceCents int64  `json:"hourly_price_cents"`
	Capacity         int64  `json:"capacity"`
	Active           *bool  `json:"active"`
}

// GET /api/v1/courts
func HandleCourtsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	courts, err := q.ListCourts(ctx)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to list courts")
		return
	}
	if courts == nil {
		courts = []store.Court{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, courts); err != nil {
		logger.Error().Err(err).Msg("Failed to write court list response")
	}
}

// POST /api/v1/courts
func HandleCourtCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req courtRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateCourtRequest(&req); err != nil {
		apiutil.RespondError(w, r, err, "Failed to validate court")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	if _, err := q.GetCourtType(ctx, req.CourtTypeID); err != nil {
		apiutil.RespondError(w, r, err, "Failed to load court type")
		return
	}

	created, err := q.CreateCourt(ctx, store.CreateCourtParams{
		Name:             req.Name,
		CourtTypeID:      req.CourtTypeID,
		HourlyPriceCents: req.HourlyPriceCents,
		Capacity:         req.Capacity,
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to create court")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Int64("court_id", created.ID).Msg("Failed to write court response")
	}
}

// GET /api/v1/courts/{id}
func HandleCourtGet(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	court, err := q.GetCourt(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load court")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, court); err != nil {
		logger.Error().Err(err).Int64("court_id", id).Msg("Failed to write court response")
	}
}

// PUT /api/v1/courts/{id}
func HandleCourtUpdate(w http.ResponseWriter, r *http.Request) {
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

	var req courtRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateCourtRequest(&req); err != nil {
		apiutil.RespondError(w, r, err, "Failed to validate court")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	current, err := q.GetCourt(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load court")
		return
	}
	if _, err := q.GetCourtType(ctx, req.CourtTypeID); err != nil {
		apiutil.RespondError(w, r, err, "Failed to load court type")
		return
	}

	active := current.Active
	if req.Active != nil {
		active = *req.Active
	}

	updated, err := q.UpdateCourt(ctx, store.UpdateCourtParams{
		ID:               id,
		Name:             req.Name,
		CourtTypeID:      req.CourtTypeID,
		HourlyPriceCents: req.HourlyPriceCents,
		Capacity:         req.Capacity,
		Active:           active,
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to update court")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Int64("court_id", id).Msg("Failed to write court response")
	}
}

// DELETE /api/v1/courts/{id}
func HandleCourtDelete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	affected, err := q.DeleteCourt(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to delete court")
		return
	}
	if affected == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "Resource not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validateCourtRequest(req *courtRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apiutil.FieldError{Field: "name", Reason: "is required"}
	}
	if req.CourtTypeID <= 0 {
		return apiutil.FieldError{Field: "court_type_id", Reason: "is required"}
	}
	if req.HourlyPriceCents <= 0 {
		return apiutil.FieldError{Field: "hourly_price_cents", Reason: "must be greater than 0"}
	}
	if req.Capacity < minCapacity || req.Capacity > maxCapacity {
		return apiutil.FieldError{Field: "capacity", Reason: "must be between 2 and 50"}
	}
	return nil
}

func loadQueries() *store.Queries {
	return queries
}
