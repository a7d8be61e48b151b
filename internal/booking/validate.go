package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/courtsidehq/courtside/internal/store"
)

// ValidationError reports a business-rule violation attributed to a single
// field. The caller can recover by supplying corrected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ReservationInput is a proposed reservation, before commit. ID is zero for
// new reservations and set when editing so the overlap and quota checks can
// exclude the row itself.
type ReservationInput struct {
	ID        int64
	ClientID  int64
	CourtID   int64
	StartTime time.Time
	EndTime   time.Time
	Status    string
}

// Validator checks proposed reservations against the booking policy and the
// current contents of the store. It performs no writes; either every
// constraint passes or the reservation is rejected entirely.
type Validator struct {
	queries *store.Queries
	policy  Policy
	now     func() time.Time
}

func NewValidator(queries *store.Queries, policy Policy) *Validator {
	return &Validator{
		queries: queries,
		policy:  policy,
		now:     time.Now,
	}
}

// WithClock overrides the validator's notion of "now". Tests use this to pin
// the past-start check.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

func (v *Validator) Policy() Policy {
	return v.policy
}

// ValidateReservation applies every booking rule in order and returns the
// first violation as a ValidationError. Entity lookups that fail with
// sql.ErrNoRows propagate unchanged so callers can report a missing resource.
func (v *Validator) ValidateReservation(ctx context.Context, in ReservationInput) error {
	client, err := v.queries.GetClient(ctx, in.ClientID)
	if err != nil {
		return fmt.Errorf("load client: %w", err)
	}
	court, err := v.queries.GetCourt(ctx, in.CourtID)
	if err != nil {
		return fmt.Errorf("load court: %w", err)
	}

	// Clock and calendar rules run on the facility's wall clock; inputs may
	// arrive with any UTC offset.
	loc := v.policy.Location
	if loc == nil {
		loc = time.UTC
	}
	start := in.StartTime.In(loc)
	end := in.EndTime.In(loc)

	if !end.After(start) {
		return ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}
	if start.Before(v.now()) {
		return ValidationError{Field: "start_time", Reason: "must not be in the past"}
	}
	if clockOffset(start) < v.policy.OpensAt {
		return ValidationError{Field: "start_time", Reason: fmt.Sprintf("facility opens at %s", formatClock(v.policy.OpensAt))}
	}
	if endOffset := clockOffset(end); endOffset > v.policy.ClosesAt || endOffset == 0 {
		return ValidationError{Field: "end_time", Reason: fmt.Sprintf("facility closes at %s", formatClock(v.policy.ClosesAt))}
	}
	duration := end.Sub(start)
	if duration < v.policy.MinDuration {
		return ValidationError{Field: "end_time", Reason: fmt.Sprintf("duration must be at least %s", v.policy.MinDuration)}
	}
	if duration > v.policy.MaxDuration {
		return ValidationError{Field: "end_time", Reason: fmt.Sprintf("duration must not exceed %s", v.policy.MaxDuration)}
	}
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		return ValidationError{Field: "end_time", Reason: "must end on the same day it starts"}
	}

	if !court.Active {
		return ValidationError{Field: "court_id", Reason: "court is inactive"}
	}
	if !client.Active {
		return ValidationError{Field: "client_id", Reason: "client is inactive"}
	}

	if in.Status == store.ReservationPending || in.Status == store.ReservationPaid {
		overlapping, err := v.queries.CountOverlappingReservations(ctx, store.CountOverlappingReservationsParams{
			CourtID:   in.CourtID,
			ExcludeID: in.ID,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
		})
		if err != nil {
			return fmt.Errorf("overlap check: %w", err)
		}
		if overlapping > 0 {
			return ValidationError{Field: "court_id", Reason: "court is not available in the selected time range"}
		}

		dayStart := time.Date(sy, sm, sd, 0, 0, 0, 0, loc)
		sameDay, err := v.queries.CountClientReservationsStartingBetween(ctx, store.CountClientReservationsStartingBetweenParams{
			ClientID:  in.ClientID,
			ExcludeID: in.ID,
			From:      dayStart,
			To:        dayStart.AddDate(0, 0, 1),
		})
		if err != nil {
			return fmt.Errorf("daily quota check: %w", err)
		}
		if sameDay >= int64(v.policy.DailyQuota) {
			return ValidationError{Field: "client_id", Reason: fmt.Sprintf("client already has %d reservations that day", v.policy.DailyQuota)}
		}
	}

	return nil
}
