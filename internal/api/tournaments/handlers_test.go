package tournaments

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/testutil"
)

func setupTournamentAPITest(t *testing.T) *store.Queries {
	t.Helper()
	database := testutil.NewTestDB(t)
	queries = database.Queries
	return queries
}

func newTournamentMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/tournaments", HandleTournamentsList)
	mux.HandleFunc("POST /api/v1/tournaments", HandleTournamentCreate)
	mux.HandleFunc("GET /api/v1/tournaments/{id}", HandleTournamentGet)
	mux.HandleFunc("POST /api/v1/tournaments/{id}/teams", HandleTeamEnroll)
	mux.HandleFunc("DELETE /api/v1/tournaments/{id}/teams/{team_id}", HandleTeamWithdraw)
	mux.HandleFunc("POST /api/v1/tournaments/{id}/bracket", HandleBracketGenerate)
	mux.HandleFunc("GET /api/v1/tournaments/{id}/matches", HandleMatchesList)
	mux.HandleFunc("POST /api/v1/matches/{id}/result", HandleMatchResult)
	mux.HandleFunc("POST /api/v1/matches/{id}/advance", HandleMatchAdvance)
	return mux
}

func sendJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func createTestTournament(t *testing.T, mux *http.ServeMux) store.Tournament {
	t.Helper()
	start := time.Now().UTC().AddDate(0, 0, 7)
	body := fmt.Sprintf(
		`{"name": "Spring Open", "start_date": %q, "end_date": %q, "fee_cents": 1000000}`,
		start.Format("2006-01-02"), start.AddDate(0, 0, 2).Format("2006-01-02"),
	)
	rec := sendJSON(t, mux, http.MethodPost, "/api/v1/tournaments", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create tournament: status %d, body %s", rec.Code, rec.Body.String())
	}
	var created store.Tournament
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return created
}

func enrollTeams(t *testing.T, q *store.Queries, mux *http.ServeMux, tournamentID int64, count int) []store.Team {
	t.Helper()
	teams := make([]store.Team, 0, count)
	for i := 0; i < count; i++ {
		team, err := q.CreateTeam(context.Background(), store.CreateTeamParams{
			Name: fmt.Sprintf("Team %d", i+1),
		})
		if err != nil {
			t.Fatalf("create team: %v", err)
		}
		rec := sendJSON(t, mux, http.MethodPost,
			fmt.Sprintf("/api/v1/tournaments/%d/teams", tournamentID),
			fmt.Sprintf(`{"team_id": %d}`, team.ID),
		)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("enroll team: status %d, body %s", rec.Code, rec.Body.String())
		}
		teams = append(teams, team)
	}
	return teams
}

func TestTournamentCreate_EndBeforeStart(t *testing.T) {
	setupTournamentAPITest(t)
	mux := newTournamentMux()

	rec := sendJSON(t, mux, http.MethodPost, "/api/v1/tournaments",
		`{"name": "Backwards", "start_date": "2026-10-10", "end_date": "2026-10-01"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTournamentGet_RefreshesStatus(t *testing.T) {
	q := setupTournamentAPITest(t)
	mux := newTournamentMux()

	start := time.Now().UTC().AddDate(0, 0, -3)
	tournament, err := q.CreateTournament(context.Background(), store.CreateTournamentParams{
		Name:      "Already Over",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 1),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}

	rec := sendJSON(t, mux, http.MethodGet, fmt.Sprintf("/api/v1/tournaments/%d", tournament.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got store.Tournament
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != store.TournamentFinished {
		t.Fatalf("expected FINISHED after end date, got %s", got.Status)
	}
}

func TestEnrollAndWithdraw(t *testing.T) {
	q := setupTournamentAPITest(t)
	mux := newTournamentMux()

	tournament := createTestTournament(t, mux)
	teams := enrollTeams(t, q, mux, tournament.ID, 2)

	// Duplicate enrollment conflicts.
	rec := sendJSON(t, mux, http.MethodPost,
		fmt.Sprintf("/api/v1/tournaments/%d/teams", tournament.ID),
		fmt.Sprintf(`{"team_id": %d}`, teams[0].ID),
	)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate enrollment, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = sendJSON(t, mux, http.MethodDelete,
		fmt.Sprintf("/api/v1/tournaments/%d/teams/%d", tournament.ID, teams[0].ID), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for withdraw, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = sendJSON(t, mux, http.MethodDelete,
		fmt.Sprintf("/api/v1/tournaments/%d/teams/%d", tournament.ID, teams[0].ID), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for repeated withdraw, got %d", rec.Code)
	}
}

func TestBracketGenerate_BadTeamCount(t *testing.T) {
	q := setupTournamentAPITest(t)
	mux := newTournamentMux()

	tournament := createTestTournament(t, mux)
	enrollTeams(t, q, mux, tournament.ID, 3)

	rec := sendJSON(t, mux, http.MethodPost, fmt.Sprintf("/api/v1/tournaments/%d/bracket", tournament.ID), "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for 3 teams, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBracketFlow(t *testing.T) {
	q := setupTournamentAPITest(t)
	mux := newTournamentMux()

	tournament := createTestTournament(t, mux)
	enrollTeams(t, q, mux, tournament.ID, 4)

	rec := sendJSON(t, mux, http.MethodPost, fmt.Sprintf("/api/v1/tournaments/%d/bracket", tournament.ID), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate bracket: status %d, body %s", rec.Code, rec.Body.String())
	}
	var fixture []store.Match
	if err := json.Unmarshal(rec.Body.Bytes(), &fixture); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if len(fixture) != 2 {
		t.Fatalf("expected 2 first-round matches, got %d", len(fixture))
	}

	// Draw is rejected.
	rec = sendJSON(t, mux, http.MethodPost,
		fmt.Sprintf("/api/v1/matches/%d/result", fixture[0].ID), `{"score1": 3, "score2": 3}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for draw, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = sendJSON(t, mux, http.MethodPost,
		fmt.Sprintf("/api/v1/matches/%d/result", fixture[0].ID), `{"score1": 6, "score2": 3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("record result: status %d, body %s", rec.Code, rec.Body.String())
	}
	var finished store.Match
	if err := json.Unmarshal(rec.Body.Bytes(), &finished); err != nil {
		t.Fatalf("decode match: %v", err)
	}
	if finished.Status != store.MatchFinished || !finished.WinnerID.Valid {
		t.Fatalf("expected finished match with winner, got %+v", finished)
	}

	// Repeating a result on a finished match fails.
	rec = sendJSON(t, mux, http.MethodPost,
		fmt.Sprintf("/api/v1/matches/%d/result", fixture[0].ID), `{"score1": 1, "score2": 0}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for finished match, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = sendJSON(t, mux, http.MethodPost,
		fmt.Sprintf("/api/v1/matches/%d/advance", fixture[0].ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("advance winner: status %d, body %s", rec.Code, rec.Body.String())
	}
	var final store.Match
	if err := json.Unmarshal(rec.Body.Bytes(), &final); err != nil {
		t.Fatalf("decode match: %v", err)
	}
	if final.Round != 2 {
		t.Fatalf("expected winner advanced to round 2, got round %d", final.Round)
	}

	rec = sendJSON(t, mux, http.MethodGet, fmt.Sprintf("/api/v1/tournaments/%d/matches", tournament.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list matches: status %d", rec.Code)
	}
	var views []matchView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode matches: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 matches after advancing, got %d", len(views))
	}
	labels := map[int64]string{}
	for _, v := range views {
		labels[v.Round] = v.RoundLabel
	}
	if labels[1] != "Semifinal" || labels[2] != "Final" {
		t.Fatalf("unexpected round labels: %v", labels)
	}
}

func TestAdvance_PendingMatchRejected(t *testing.T) {
	q := setupTournamentAPITest(t)
	mux := newTournamentMux()

	tournament := createTestTournament(t, mux)
	enrollTeams(t, q, mux, tournament.ID, 4)

	rec := sendJSON(t, mux, http.MethodPost, fmt.Sprintf("/api/v1/tournaments/%d/bracket", tournament.ID), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate bracket: status %d", rec.Code)
	}
	var fixture []store.Match
	if err := json.Unmarshal(rec.Body.Bytes(), &fixture); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	rec = sendJSON(t, mux, http.MethodPost, fmt.Sprintf("/api/v1/matches/%d/advance", fixture[0].ID), "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for pending match, got %d: %s", rec.Code, rec.Body.String())
	}
}
