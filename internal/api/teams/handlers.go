// internal/api/teams/handlers.go
package teams

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

const teamQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *store.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

type teamRequest struct {
	Name      string `json:"name"`
	CaptainID int64  `json:"captain_id"`
	Logo      string `json:"logo"`
	Active    *bool  `json:"active"`
}

type playerRequest struct {
	ClientID int64 `json:"client_id"`
}

// GET /api/v1/teams
func HandleTeamsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	teams, err := q.ListTeams(ctx)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to list teams")
		return
	}
	if teams == nil {
		teams = []store.Team{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, teams); err != nil {
		logger.Error().Err(err).Msg("Failed to write team list response")
	}
}

// POST /api/v1/teams
func HandleTeamCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req teamRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateTeamRequest(&req); err != nil {
		apiutil.RespondError(w, r, err, "Failed to validate team")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	if req.CaptainID > 0 {
		if _, err := q.GetClient(ctx, req.CaptainID); err != nil {
			apiutil.RespondError(w, r, err, "Failed to load captain")
			return
		}
	}

	created, err := q.CreateTeam(ctx, store.CreateTeamParams{
		Name:      req.Name,
		CaptainID: apiutil.ToNullInt64(req.CaptainID),
		Logo:      req.Logo,
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to create team")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Int64("team_id", created.ID).Msg("Failed to write team response")
	}
}

// GET /api/v1/teams/{id}
func HandleTeamGet(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	team, err := q.GetTeam(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load team")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, team); err != nil {
		logger.Error().Err(err).Int64("team_id", id).Msg("Failed to write team response")
	}
}

// PUT /api/v1/teams/{id}
func HandleTeamUpdate(w http.ResponseWriter, r *http.Request) {
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

	var req teamRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateTeamRequest(&req); err != nil {
		apiutil.RespondError(w, r, err, "Failed to validate team")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	current, err := q.GetTeam(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load team")
		return
	}

	active := current.Active
	if req.Active != nil {
		active = *req.Active
	}

	updated, err := q.UpdateTeam(ctx, store.UpdateTeamParams{
		ID:        id,
		Name:      req.Name,
		CaptainID: apiutil.ToNullInt64(req.CaptainID),
		Logo:      req.Logo,
		Active:    active,
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to update team")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Int64("team_id", id).Msg("Failed to write team response")
	}
}

// DELETE /api/v1/teams/{id}
func HandleTeamDelete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	affected, err := q.DeleteTeam(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to delete team")
		return
	}
	if affected == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "Resource not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/teams/{id}/players
func HandleTeamPlayersList(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	if _, err := q.GetTeam(ctx, id); err != nil {
		apiutil.RespondError(w, r, err, "Failed to load team")
		return
	}
	players, err := q.ListTeamPlayers(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to list team players")
		return
	}
	if players == nil {
		players = []store.Client{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, players); err != nil {
		logger.Error().Err(err).Int64("team_id", id).Msg("Failed to write team players response")
	}
}

// POST /api/v1/teams/{id}/players
func HandleTeamPlayerAdd(w http.ResponseWriter, r *http.Request) {
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

	var req playerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ClientID <= 0 {
		apiutil.RespondError(w, r, apiutil.FieldError{Field: "client_id", Reason: "is required"}, "Failed to validate player")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	if _, err := q.GetTeam(ctx, id); err != nil {
		apiutil.RespondError(w, r, err, "Failed to load team")
		return
	}
	if _, err := q.GetClient(ctx, req.ClientID); err != nil {
		apiutil.RespondError(w, r, err, "Failed to load client")
		return
	}

	if err := q.AddTeamPlayer(ctx, store.TeamPlayerParams{TeamID: id, ClientID: req.ClientID}); err != nil {
		apiutil.RespondError(w, r, err, "Failed to add player")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/teams/{id}/players/{client_id}
func HandleTeamPlayerRemove(w http.ResponseWriter, r *http.Request) {
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
	clientID, err := apiutil.ParsePositiveInt64Field(r.PathValue("client_id"), "client_id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	affected, err := q.RemoveTeamPlayer(ctx, store.TeamPlayerParams{TeamID: id, ClientID: clientID})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to remove player")
		return
	}
	if affected == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "Resource not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validateTeamRequest(req *teamRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Logo = strings.TrimSpace(req.Logo)
	if req.Name == "" {
		return apiutil.FieldError{Field: "name", Reason: "is required"}
	}
	if req.CaptainID < 0 {
		return apiutil.FieldError{Field: "captain_id", Reason: "must be a valid client id"}
	}
	return nil
}

func loadQueries() *store.Queries {
	return queries
}
