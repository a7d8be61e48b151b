// Package tournaments implements single-elimination brackets: fixture
// generation over a power-of-two field, result recording, and winner
// advancement. Later rounds are materialized lazily as winners advance.
package tournaments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/bits"
	"math/rand"

	"github.com/courtsidehq/courtside/internal/store"
)

var (
	// ErrNotInRegistration reports a fixture operation against a tournament
	// that already started or finished.
	ErrNotInRegistration = errors.New("tournament is not in registration")

	// ErrMatchAlreadyFinished reports a result submitted for a decided match.
	ErrMatchAlreadyFinished = errors.New("match is already finished")

	// ErrMatchNotFinished reports an advancement attempt on an undecided match.
	ErrMatchNotFinished = errors.New("match is not finished")
)

// TeamCountError reports an enrolled field that cannot form a bracket.
type TeamCountError struct {
	Count int64
}

func (e TeamCountError) Error() string {
	if e.Count < 2 {
		return fmt.Sprintf("cannot generate a bracket with %d teams: at least 2 required", e.Count)
	}
	return fmt.Sprintf("cannot generate a bracket with %d teams: team count must be a power of two", e.Count)
}

// ScoreError reports scores that cannot decide an elimination match.
type ScoreError struct {
	Reason string
}

func (e ScoreError) Error() string { return e.Reason }

// GenerateBracket deletes any existing matches for the tournament, shuffles
// the enrolled teams, and creates the first round pairing consecutive teams.
// The tournament moves to IN_PROGRESS. Regeneration is allowed as long as the
// tournament is still in registration.
func GenerateBracket(ctx context.Context, q *store.Queries, tournamentID int64) ([]store.Match, error) {
	tournament, err := q.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("load tournament: %w", err)
	}
	if tournament.Status != store.TournamentRegistration {
		return nil, ErrNotInRegistration
	}

	teams, err := q.ListTournamentTeams(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list enrolled teams: %w", err)
	}
	n := int64(len(teams))
	if n < 2 || n&(n-1) != 0 {
		return nil, TeamCountError{Count: n}
	}

	if _, err := q.DeleteTournamentMatches(ctx, tournamentID); err != nil {
		return nil, fmt.Errorf("clear previous fixture: %w", err)
	}

	rand.Shuffle(len(teams), func(i, j int) {
		teams[i], teams[j] = teams[j], teams[i]
	})

	matches := make([]store.Match, 0, n/2)
	for i := int64(0); i < n/2; i++ {
		match, err := q.CreateMatch(ctx, store.CreateMatchParams{
			TournamentID: tournamentID,
			Round:        1,
			MatchNumber:  i + 1,
			Team1ID:      sql.NullInt64{Int64: teams[2*i].ID, Valid: true},
			Team2ID:      sql.NullInt64{Int64: teams[2*i+1].ID, Valid: true},
		})
		if err != nil {
			return nil, fmt.Errorf("create round 1 match %d: %w", i+1, err)
		}
		matches = append(matches, match)
	}

	if _, err := q.UpdateTournamentStatus(ctx, store.UpdateTournamentStatusParams{
		ID:     tournamentID,
		Status: store.TournamentInProgress,
	}); err != nil {
		return nil, fmt.Errorf("start tournament: %w", err)
	}

	return matches, nil
}

// RecordResult decides a pending match. Draws are rejected: elimination
// brackets need a winner.
func RecordResult(ctx context.Context, q *store.Queries, matchID, score1, score2 int64) (store.Match, error) {
	match, err := q.GetMatch(ctx, matchID)
	if err != nil {
		return store.Match{}, fmt.Errorf("load match: %w", err)
	}
	if match.Status != store.MatchPending {
		return store.Match{}, ErrMatchAlreadyFinished
	}
	if !match.Team1ID.Valid || !match.Team2ID.Valid {
		return store.Match{}, ScoreError{Reason: "both team slots must be filled before recording a result"}
	}
	if score1 < 0 || score2 < 0 {
		return store.Match{}, ScoreError{Reason: "scores cannot be negative"}
	}
	if score1 == score2 {
		return store.Match{}, ScoreError{Reason: "draws are not permitted in an elimination bracket"}
	}

	winnerID := match.Team1ID.Int64
	if score2 > score1 {
		winnerID = match.Team2ID.Int64
	}

	match, err = q.UpdateMatchResult(ctx, store.UpdateMatchResultParams{
		ID:       matchID,
		Score1:   score1,
		Score2:   score2,
		WinnerID: winnerID,
		Status:   store.MatchFinished,
	})
	if err != nil {
		return store.Match{}, fmt.Errorf("record result: %w", err)
	}
	return match, nil
}

// RecordWalkover decides a pending match without a score, awarding it to one
// of the slotted teams. Used when the opponent forfeits or never shows.
func RecordWalkover(ctx context.Context, q *store.Queries, matchID, winnerTeamID int64) (store.Match, error) {
	match, err := q.GetMatch(ctx, matchID)
	if err != nil {
		return store.Match{}, fmt.Errorf("load match: %w", err)
	}
	if match.Status != store.MatchPending {
		return store.Match{}, ErrMatchAlreadyFinished
	}
	team1 := match.Team1ID.Valid && match.Team1ID.Int64 == winnerTeamID
	team2 := match.Team2ID.Valid && match.Team2ID.Int64 == winnerTeamID
	if !team1 && !team2 {
		return store.Match{}, ScoreError{Reason: "walkover winner must be one of the match's teams"}
	}

	match, err = q.UpdateMatchWalkover(ctx, store.UpdateMatchWalkoverParams{
		ID:       matchID,
		WinnerID: winnerTeamID,
	})
	if err != nil {
		return store.Match{}, fmt.Errorf("record walkover: %w", err)
	}
	return match, nil
}

// AdvanceWinner moves a decided match's winner into the next round. Match n
// of a round feeds slot 1 (n odd) or slot 2 (n even) of match ceil(n/2) in
// the following round, creating that match if it does not exist yet. The
// final has no next round; advancing it is a no-op returning the final
// itself.
func AdvanceWinner(ctx context.Context, q *store.Queries, matchID int64) (store.Match, error) {
	match, err := q.GetMatch(ctx, matchID)
	if err != nil {
		return store.Match{}, fmt.Errorf("load match: %w", err)
	}
	if match.Status == store.MatchPending || !match.WinnerID.Valid {
		return store.Match{}, ErrMatchNotFinished
	}

	total, err := totalRounds(ctx, q, match.TournamentID)
	if err != nil {
		return store.Match{}, err
	}
	if match.Round >= total {
		return match, nil
	}

	targetRound := match.Round + 1
	targetNumber := (match.MatchNumber + 1) / 2
	winner := sql.NullInt64{Int64: match.WinnerID.Int64, Valid: true}
	source := sql.NullInt64{Int64: match.ID, Valid: true}

	next, err := q.GetMatchBySlot(ctx, store.GetMatchBySlotParams{
		TournamentID: match.TournamentID,
		Round:        targetRound,
		MatchNumber:  targetNumber,
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		arg := store.CreateMatchParams{
			TournamentID: match.TournamentID,
			Round:        targetRound,
			MatchNumber:  targetNumber,
		}
		if match.MatchNumber%2 == 1 {
			arg.Team1ID = winner
			arg.SourceMatch1ID = source
		} else {
			arg.Team2ID = winner
			arg.SourceMatch2ID = source
		}
		next, err = q.CreateMatch(ctx, arg)
		if err != nil {
			return store.Match{}, fmt.Errorf("create round %d match %d: %w", targetRound, targetNumber, err)
		}
		return next, nil
	case err != nil:
		return store.Match{}, fmt.Errorf("load next match: %w", err)
	}

	arg := store.UpdateMatchSlotsParams{
		ID:             next.ID,
		Team1ID:        next.Team1ID,
		Team2ID:        next.Team2ID,
		SourceMatch1ID: next.SourceMatch1ID,
		SourceMatch2ID: next.SourceMatch2ID,
	}
	if match.MatchNumber%2 == 1 {
		arg.Team1ID = winner
		arg.SourceMatch1ID = source
	} else {
		arg.Team2ID = winner
		arg.SourceMatch2ID = source
	}
	next, err = q.UpdateMatchSlots(ctx, arg)
	if err != nil {
		return store.Match{}, fmt.Errorf("fill next match slot: %w", err)
	}
	return next, nil
}

// RoundLabel names a round for display given the enrolled team count.
func RoundLabel(round, teamCount int64) string {
	total := roundsForTeams(teamCount)
	switch {
	case total == 0 || round > total:
		return fmt.Sprintf("Round %d", round)
	case round == total:
		return "Final"
	case round == total-1:
		return "Semifinal"
	case round == total-2:
		return "Quarterfinal"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}

func roundsForTeams(teamCount int64) int64 {
	if teamCount < 2 {
		return 0
	}
	return int64(bits.Len64(uint64(teamCount)) - 1)
}

// totalRounds derives the bracket depth from round 1. The enrolled field can
// shrink after the fixture exists, so the fixture itself is authoritative.
func totalRounds(ctx context.Context, q *store.Queries, tournamentID int64) (int64, error) {
	matches, err := q.ListTournamentMatches(ctx, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("list matches: %w", err)
	}
	var firstRound int64
	for _, m := range matches {
		if m.Round == 1 {
			firstRound++
		}
	}
	return roundsForTeams(firstRound * 2), nil
}
