package tournaments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/store"
)

// ErrRegistrationClosed reports an enrollment attempt after registration
// closed, either by status or because the start date arrived.
var ErrRegistrationClosed = errors.New("tournament registration is closed")

// EffectiveStatus computes the status a tournament should hold on the given
// date. Start and end dates win over the stored status: a tournament past its
// end is finished even if no bracket was ever played.
func EffectiveStatus(t store.Tournament, today time.Time) string {
	day := truncateToDay(today)
	if day.After(t.EndDate) {
		return store.TournamentFinished
	}
	if t.Status == store.TournamentRegistration && !day.Before(t.StartDate) {
		return store.TournamentInProgress
	}
	return t.Status
}

// Refresh persists the effective status if it drifted from the stored one and
// returns the up-to-date tournament. Callers invoke it on every read so state
// catches up lazily.
func Refresh(ctx context.Context, q *store.Queries, t store.Tournament, today time.Time) (store.Tournament, error) {
	effective := EffectiveStatus(t, today)
	if effective == t.Status {
		return t, nil
	}
	updated, err := q.UpdateTournamentStatus(ctx, store.UpdateTournamentStatusParams{
		ID:     t.ID,
		Status: effective,
	})
	if err != nil {
		return store.Tournament{}, fmt.Errorf("refresh tournament status: %w", err)
	}
	return updated, nil
}

// Sweep refreshes every tournament whose stored status lags its dates. The
// scheduler runs it daily so listings stay fresh even without reads.
func Sweep(ctx context.Context, q *store.Queries, today time.Time) (int, error) {
	all, err := q.ListTournaments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tournaments: %w", err)
	}

	var updated int
	for _, t := range all {
		refreshed, err := Refresh(ctx, q, t, today)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Int64("tournament_id", t.ID).Msg("failed to refresh tournament status")
			continue
		}
		if refreshed.Status != t.Status {
			updated++
		}
	}
	return updated, nil
}

// Enroll registers a team while registration is open. Enrollment closes the
// moment the start date arrives, regardless of the stored status.
func Enroll(ctx context.Context, q *store.Queries, tournamentID, teamID int64, today time.Time) error {
	tournament, err := q.GetTournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("load tournament: %w", err)
	}
	if EffectiveStatus(tournament, today) != store.TournamentRegistration {
		return ErrRegistrationClosed
	}
	if err := q.EnrollTeam(ctx, store.EnrollTeamParams{
		TournamentID: tournamentID,
		TeamID:       teamID,
	}); err != nil {
		return fmt.Errorf("enroll team: %w", err)
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
