// internal/api/clients/handlers.go
package clients

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/api/apiutil"
	"github.com/courtsidehq/courtside/internal/store"
)

var (
	queries     *store.Queries
	queriesOnce sync.Once
)

const (
	clientQueryTimeout = 5 * time.Second
	defaultPhoneRegion = "AR"
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

type clientRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	NationalID string `json:"national_id"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Active     *bool  `json:"active"`
}

// GET /api/v1/clients
func HandleClientsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clientQueryTimeout)
	defer cancel()

	clients, err := q.ListClients(ctx)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to list clients")
		return
	}
	if clients == nil {
		clients = []store.Client{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, clients); err != nil {
		logger.Error().Err(err).Msg("Failed to write client list response")
	}
}

// POST /api/v1/clients
func HandleClientCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req clientRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	normalized, err := validateClientRequest(req)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to validate client")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clientQueryTimeout)
	defer cancel()

	created, err := q.CreateClient(ctx, store.CreateClientParams{
		FirstName:  normalized.FirstName,
		LastName:   normalized.LastName,
		NationalID: normalized.NationalID,
		Email:      normalized.Email,
		Phone:      normalized.Phone,
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to create client")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Int64("client_id", created.ID).Msg("Failed to write client response")
	}
}

// GET /api/v1/clients/{id}
func HandleClientGet(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), clientQueryTimeout)
	defer cancel()

	client, err := q.GetClient(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load client")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, client); err != nil {
		logger.Error().Err(err).Int64("client_id", id).Msg("Failed to write client response")
	}
}

// PUT /api/v1/clients/{id}
func HandleClientUpdate(w http.ResponseWriter, r *http.Request) {
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

	var req clientRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	normalized, err := validateClientRequest(req)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to validate client")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clientQueryTimeout)
	defer cancel()

	current, err := q.GetClient(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load client")
		return
	}

	active := current.Active
	if req.Active != nil {
		active = *req.Active
	}

	updated, err := q.UpdateClient(ctx, store.UpdateClientParams{
		ID:         id,
		FirstName:  normalized.FirstName,
		LastName:   normalized.LastName,
		NationalID: normalized.NationalID,
		Email:      normalized.Email,
		Phone:      normalized.Phone,
		Active:     active,
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to update client")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Int64("client_id", id).Msg("Failed to write client response")
	}
}

// DELETE /api/v1/clients/{id}
func HandleClientDelete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), clientQueryTimeout)
	defer cancel()

	affected, err := q.DeleteClient(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to delete client")
		return
	}
	if affected == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "Resource not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// validateClientRequest normalizes and validates the incoming payload. The
// national id must be 7 or 8 digits and not all zeros; the phone, when
// present, must parse as a valid number and is stored in E.164 form.
func validateClientRequest(req clientRequest) (clientRequest, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.NationalID = strings.TrimSpace(req.NationalID)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if req.FirstName == "" {
		return req, apiutil.FieldError{Field: "first_name", Reason: "is required"}
	}
	if req.LastName == "" {
		return req, apiutil.FieldError{Field: "last_name", Reason: "is required"}
	}
	if err := validateNationalID(req.NationalID); err != nil {
		return req, err
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return req, apiutil.FieldError{Field: "email", Reason: "must be a valid email address"}
	}

	if req.Phone != "" {
		parsed, err := phonenumbers.Parse(req.Phone, defaultPhoneRegion)
		if err != nil || !phonenumbers.IsValidNumber(parsed) {
			return req, apiutil.FieldError{Field: "phone", Reason: "must be a valid phone number"}
		}
		req.Phone = phonenumbers.Format(parsed, phonenumbers.E164)
	}

	return req, nil
}

func validateNationalID(raw string) error {
	if len(raw) < 7 || len(raw) > 8 {
		return apiutil.FieldError{Field: "national_id", Reason: "must be 7 or 8 digits"}
	}
	allZero := true
	for _, c := range raw {
		if c < '0' || c > '9' {
			return apiutil.FieldError{Field: "national_id", Reason: "must be 7 or 8 digits"}
		}
		if c != '0' {
			allZero = false
		}
	}
	if allZero {
		return apiutil.FieldError{Field: "national_id", Reason: "cannot be all zeros"}
	}
	return nil
}

func loadQueries() *store.Queries {
	return queries
}
