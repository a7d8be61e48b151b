// internal/api/tournaments/handlers.go
package tournaments

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/api/apiutil"
	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/tournaments"
)

var (
	queries     *store.Queries
	queriesOnce sync.Once
)

const tournamentQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *store.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

type tournamentRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	FeeCents  int64  `json:"fee_cents"`
	Prize     string `json:"prize"`
	Rules     string `json:"rules"`
}

type enrollRequest struct {
	TeamID int64 `json:"team_id"`
}

type resultRequest struct {
	Score1 int64 `json:"score1"`
	Score2 int64 `json:"score2"`
}

type walkoverRequest struct {
	WinnerTeamID int64 `json:"winner_team_id"`
}

type matchView struct {
	store.Match
	RoundLabel string `json:"round_label"`
}

// GET /api/v1/tournaments
func HandleTournamentsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	all, err := q.ListTournaments(ctx)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to list tournaments")
		return
	}

	// Statuses catch up lazily on read.
	today := time.Now().UTC()
	result := make([]store.Tournament, 0, len(all))
	for _, t := range all {
		refreshed, err := tournaments.Refresh(ctx, q, t, today)
		if err != nil {
			apiutil.RespondError(w, r, err, "Failed to refresh tournament status")
			return
		}
		result = append(result, refreshed)
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Msg("Failed to write tournament list response")
	}
}

// POST /api/v1/tournaments
func HandleTournamentCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	arg, err := decodeTournamentRequest(r)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to decode tournament")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	created, err := q.CreateTournament(ctx, store.CreateTournamentParams{
		Name:      arg.Name,
		StartDate: arg.StartDate,
		EndDate:   arg.EndDate,
		FeeCents:  arg.FeeCents,
		Prize:     arg.Prize,
		Rules:     arg.Rules,
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to create tournament")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Int64("tournament_id", created.ID).Msg("Failed to write tournament response")
	}
}

// GET /api/v1/tournaments/{id}
func HandleTournamentGet(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	tournament, err := q.GetTournament(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load tournament")
		return
	}
	tournament, err = tournaments.Refresh(ctx, q, tournament, time.Now().UTC())
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to refresh tournament status")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, tournament); err != nil {
		logger.Error().Err(err).Int64("tournament_id", id).Msg("Failed to write tournament response")
	}
}

// PUT /api/v1/tournaments/{id}
func HandleTournamentUpdate(w http.ResponseWriter, r *http.Request) {
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

	arg, err := decodeTournamentRequest(r)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to decode tournament")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	updated, err := q.UpdateTournament(ctx, store.UpdateTournamentParams{
		ID:        id,
		Name:      arg.Name,
		StartDate: arg.StartDate,
		EndDate:   arg.EndDate,
		FeeCents:  arg.FeeCents,
		Prize:     arg.Prize,
		Rules:     arg.Rules,
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to update tournament")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Int64("tournament_id", id).Msg("Failed to write tournament response")
	}
}

// DELETE /api/v1/tournaments/{id}
func HandleTournamentDelete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	affected, err := q.DeleteTournament(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to delete tournament")
		return
	}
	if affected == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "Resource not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/tournaments/{id}/teams
func HandleTournamentTeamsList(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	if _, err := q.GetTournament(ctx, id); err != nil {
		apiutil.RespondError(w, r, err, "Failed to load tournament")
		return
	}
	teams, err := q.ListTournamentTeams(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to list tournament teams")
		return
	}
	if teams == nil {
		teams = []store.Team{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, teams); err != nil {
		logger.Error().Err(err).Int64("tournament_id", id).Msg("Failed to write tournament teams response")
	}
}

// POST /api/v1/tournaments/{id}/teams
func HandleTeamEnroll(w http.ResponseWriter, r *http.Request) {
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

	var req enrollRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TeamID <= 0 {
		apiutil.RespondError(w, r, apiutil.FieldError{Field: "team_id", Reason: "is required"}, "Failed to validate enrollment")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	if _, err := q.GetTeam(ctx, req.TeamID); err != nil {
		apiutil.RespondError(w, r, err, "Failed to load team")
		return
	}

	if err := tournaments.Enroll(ctx, q, id, req.TeamID, time.Now().UTC()); err != nil {
		if errors.Is(err, tournaments.ErrRegistrationClosed) {
			apiutil.WriteError(w, http.StatusUnprocessableEntity, "Tournament registration is closed")
			return
		}
		apiutil.RespondError(w, r, err, "Failed to enroll team")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/tournaments/{id}/teams/{team_id}
func HandleTeamWithdraw(w http.ResponseWriter, r *http.Request) {
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
	teamID, err := apiutil.ParsePositiveInt64Field(r.PathValue("team_id"), "team_id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	tournament, err := q.GetTournament(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load tournament")
		return
	}
	if tournaments.EffectiveStatus(tournament, time.Now().UTC()) != store.TournamentRegistration {
		apiutil.WriteError(w, http.StatusUnprocessableEntity, "Tournament registration is closed")
		return
	}

	affected, err := q.WithdrawTeam(ctx, store.EnrollTeamParams{TournamentID: id, TeamID: teamID})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to withdraw team")
		return
	}
	if affected == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "Resource not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/tournaments/{id}/bracket
func HandleBracketGenerate(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	matches, err := tournaments.GenerateBracket(ctx, q, id)
	if err != nil {
		var tcErr tournaments.TeamCountError
		switch {
		case errors.Is(err, tournaments.ErrNotInRegistration):
			apiutil.WriteError(w, http.StatusUnprocessableEntity, "Tournament is not in registration")
		case errors.As(err, &tcErr):
			apiutil.WriteError(w, http.StatusUnprocessableEntity, tcErr.Error())
		default:
			apiutil.RespondError(w, r, err, "Failed to generate bracket")
		}
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, matches); err != nil {
		logger.Error().Err(err).Int64("tournament_id", id).Msg("Failed to write bracket response")
	}
}

// GET /api/v1/tournaments/{id}/matches
func HandleMatchesList(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	if _, err := q.GetTournament(ctx, id); err != nil {
		apiutil.RespondError(w, r, err, "Failed to load tournament")
		return
	}
	matches, err := q.ListTournamentMatches(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to list matches")
		return
	}

	var firstRound int64
	for _, m := range matches {
		if m.Round == 1 {
			firstRound++
		}
	}
	views := make([]matchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, matchView{
			Match:      m,
			RoundLabel: tournaments.RoundLabel(m.Round, firstRound*2),
		})
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, views); err != nil {
		logger.Error().Err(err).Int64("tournament_id", id).Msg("Failed to write matches response")
	}
}

// POST /api/v1/matches/{id}/result
func HandleMatchResult(w http.ResponseWriter, r *http.Request) {
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

	var req resultRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	match, err := tournaments.RecordResult(ctx, q, id, req.Score1, req.Score2)
	if err != nil {
		respondBracketError(w, r, err, "Failed to record result")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, match); err != nil {
		logger.Error().Err(err).Int64("match_id", id).Msg("Failed to write match response")
	}
}

// POST /api/v1/matches/{id}/walkover
func HandleMatchWalkover(w http.ResponseWriter, r *http.Request) {
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

	var req walkoverRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	match, err := tournaments.RecordWalkover(ctx, q, id, req.WinnerTeamID)
	if err != nil {
		respondBracketError(w, r, err, "Failed to record walkover")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, match); err != nil {
		logger.Error().Err(err).Int64("match_id", id).Msg("Failed to write match response")
	}
}

// POST /api/v1/matches/{id}/advance
func HandleMatchAdvance(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	next, err := tournaments.AdvanceWinner(ctx, q, id)
	if err != nil {
		respondBracketError(w, r, err, "Failed to advance winner")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, next); err != nil {
		logger.Error().Err(err).Int64("match_id", id).Msg("Failed to write match response")
	}
}

func respondBracketError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var scoreErr tournaments.ScoreError
	switch {
	case errors.Is(err, tournaments.ErrMatchAlreadyFinished):
		apiutil.WriteError(w, http.StatusUnprocessableEntity, "Match is already finished")
	case errors.Is(err, tournaments.ErrMatchNotFinished):
		apiutil.WriteError(w, http.StatusUnprocessableEntity, "Match is not finished")
	case errors.As(err, &scoreErr):
		apiutil.WriteError(w, http.StatusUnprocessableEntity, scoreErr.Error())
	default:
		apiutil.RespondError(w, r, err, fallback)
	}
}

func decodeTournamentRequest(r *http.Request) (store.CreateTournamentParams, error) {
	var req tournamentRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		return store.CreateTournamentParams{}, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return store.CreateTournamentParams{}, apiutil.FieldError{Field: "name", Reason: "is required"}
	}
	startDate, err := apiutil.ParseDateField(req.StartDate, "start_date")
	if err != nil {
		return store.CreateTournamentParams{}, apiutil.FieldError{Field: "start_date", Reason: err.Error()}
	}
	endDate, err := apiutil.ParseDateField(req.EndDate, "end_date")
	if err != nil {
		return store.CreateTournamentParams{}, apiutil.FieldError{Field: "end_date", Reason: err.Error()}
	}
	if endDate.Before(startDate) {
		return store.CreateTournamentParams{}, apiutil.FieldError{Field: "end_date", Reason: "cannot be before start_date"}
	}
	if req.FeeCents < 0 {
		return store.CreateTournamentParams{}, apiutil.FieldError{Field: "fee_cents", Reason: "must be 0 or greater"}
	}

	return store.CreateTournamentParams{
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
		FeeCents:  req.FeeCents,
		Prize:     strings.TrimSpace(req.Prize),
		Rules:     strings.TrimSpace(req.Rules),
	}, nil
}

func loadQueries() *store.Queries {
	return queries
}
