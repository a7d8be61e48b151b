package booking

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/testutil"
)

var testClock = time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)

func setupValidatorTest(t *testing.T) (*store.Queries, *Validator, store.Client, store.Court) {
	t.Helper()

	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	client, err := q.CreateClient(ctx, store.CreateClientParams{
		FirstName:  "Juan",
		LastName:   "Perez",
		NationalID: "12345678",
		Email:      "juan@example.com",
		Phone:      "+5491155551234",
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	courtType, err := q.CreateCourtType(ctx, store.CreateCourtTypeParams{Name: "Futbol 5"})
	if err != nil {
		t.Fatalf("create court type: %v", err)
	}
	court, err := q.CreateCourt(ctx, store.CreateCourtParams{
		Name:             "Court 1",
		CourtTypeID:      courtType.ID,
		HourlyPriceCents: 100000,
		Capacity:         10,
	})
	if err != nil {
		t.Fatalf("create court: %v", err)
	}

	validator := NewValidator(q, DefaultPolicy()).WithClock(func() time.Time { return testClock })
	return q, validator, client, court
}

func validInput(client store.Client, court store.Court) ReservationInput {
	start := testClock.AddDate(0, 0, 1).Truncate(24 * time.Hour).Add(10 * time.Hour)
	return ReservationInput{
		ClientID:  client.ID,
		CourtID:   court.ID,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Status:    store.ReservationPending,
	}
}

func wantFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != field {
		t.Fatalf("field = %q, want %q (reason: %s)", verr.Field, field, verr.Reason)
	}
}

func TestValidateReservation_Valid(t *testing.T) {
	_, v, client, court := setupValidatorTest(t)

	if err := v.ValidateReservation(context.Background(), validInput(client, court)); err != nil {
		t.Fatalf("expected valid reservation, got %v", err)
	}
}

func TestValidateReservation_EndBeforeStart(t *testing.T) {
	_, v, client, court := setupValidatorTest(t)

	in := validInput(client, court)
	in.EndTime = in.StartTime.Add(-time.Hour)
	wantFieldError(t, v.ValidateReservation(context.Background(), in), "end_time")
}

func TestValidateReservation_StartInPast(t *testing.T) {
	_, v, client, court := setupValidatorTest(t)

	in := validInput(client, court)
	in.StartTime = testClock.AddDate(0, 0, -1)
	in.EndTime = in.StartTime.Add(2 * time.Hour)
	wantFieldError(t, v.ValidateReservation(context.Background(), in), "start_time")
}

func TestValidateReservation_BeforeOpening(t *testing.T) {
	_, v, client, court := setupValidatorTest(t)

	in := validInput(client, court)
	in.StartTime = in.StartTime.Add(-3 * time.Hour) // 07:00
	in.EndTime = in.StartTime.Add(time.Hour)
	wantFieldError(t, v.ValidateReservation(context.Background(), in), "start_time")
}

func TestValidateReservation_AfterClosing(t *testing.T) {
	_, v, client, court := setupValidatorTest(t)

	in := validInput(client, court)
	in.StartTime = in.StartTime.Add(11 * time.Hour) // 21:00
	in.EndTime = in.StartTime.Add(3 * time.Hour)    // ends 00:00
	wantFieldError(t, v.ValidateReservation(context.Background(), in), "end_time")
}

func TestValidateReservation_TooShort(t *testing.T) {
	_, v, client, court := setupValidatorTest(t)

	in := validInput(client, court)
	in.EndTime = in.StartTime.Add(30 * time.Minute)
	wantFieldError(t, v.ValidateReservation(context.Background(), in), "end_time")
}

func TestValidateReservation_TooLong(t *testing.T) {
	_, v, client, court := setupValidatorTest(t)

	in := validInput(client, court)
	in.EndTime = in.StartTime.Add(5 * time.Hour)
	wantFieldError(t, v.ValidateReservation(context.Background(), in), "end_time")
}

func TestValidateReservation_Overlap(t *testing.T) {
	q, v, client, court := setupValidatorTest(t)
	ctx := context.Background()

	existing := validInput(client, court)
	if _, err := q.CreateReservation(ctx, store.CreateReservationParams{
		ClientID:  client.ID,
		CourtID:   court.ID,
		StartTime: existing.StartTime,
		EndTime:   existing.EndTime,
		Status:    store.ReservationPending,
	}); err != nil {
		t.Fatalf("create existing reservation: %v", err)
	}

	in := validInput(client, court)
	in.StartTime = in.StartTime.Add(30 * time.Minute)
	in.EndTime = in.StartTime.Add(time.Hour)
	wantFieldError(t, v.ValidateReservation(ctx, in), "court_id")
}

func TestValidateReservation_ConsecutiveAllowed(t *testing.T) {
	q, v, client, court := setupValidatorTest(t)
	ctx := context.Background()

	existing := validInput(client, court)
	if _, err := q.CreateReservation(ctx, store.CreateReservationParams{
		ClientID:  client.ID,
		CourtID:   court.ID,
		StartTime: existing.StartTime,
		EndTime:   existing.EndTime,
		Status:    store.ReservationPending,
	}); err != nil {
		t.Fatalf("create existing reservation: %v", err)
	}

	in := validInput(client, court)
	in.StartTime = existing.EndTime
	in.EndTime = in.StartTime.Add(time.Hour)
	if err := v.ValidateReservation(ctx, in); err != nil {
		t.Fatalf("back-to-back reservation should be allowed: %v", err)
	}
}

func TestValidateReservation_CancelledIgnoredByOverlap(t *testing.T) {
	q, v, client, court := setupValidatorTest(t)
	ctx := context.Background()

	existing := validInput(client, court)
	if _, err := q.CreateReservation(ctx, store.CreateReservationParams{
		ClientID:  client.ID,
		CourtID:   court.ID,
		StartTime: existing.StartTime,
		EndTime:   existing.EndTime,
		Status:    store.ReservationCancelled,
	}); err != nil {
		t.Fatalf("create cancelled reservation: %v", err)
	}

	in := validInput(client, court)
	in.StartTime = in.StartTime.Add(30 * time.Minute)
	in.EndTime = in.StartTime.Add(time.Hour)
	if err := v.ValidateReservation(ctx, in); err != nil {
		t.Fatalf("cancelled reservations should not block: %v", err)
	}
}

func TestValidateReservation_EditExcludesItself(t *testing.T) {
	q, v, client, court := setupValidatorTest(t)
	ctx := context.Background()

	existing := validInput(client, court)
	created, err := q.CreateReservation(ctx, store.CreateReservationParams{
		ClientID:  client.ID,
		CourtID:   court.ID,
		StartTime: existing.StartTime,
		EndTime:   existing.EndTime,
		Status:    store.ReservationPending,
	})
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}

	in := validInput(client, court)
	in.ID = created.ID
	if err := v.ValidateReservation(ctx, in); err != nil {
		t.Fatalf("editing a reservation must not conflict with itself: %v", err)
	}
}

func TestValidateReservation_DailyQuota(t *testing.T) {
	q, v, client, court := setupValidatorTest(t)
	ctx := context.Background()

	base := validInput(client, court)
	for i := 0; i < 3; i++ {
		start := base.StartTime.Add(time.Duration(i*2) * time.Hour)
		if _, err := q.CreateReservation(ctx, store.CreateReservationParams{
			ClientID:  client.ID,
			CourtID:   court.ID,
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Status:    store.ReservationPending,
		}); err != nil {
			t.Fatalf("create reservation %d: %v", i, err)
		}
	}

	in := validInput(client, court)
	in.StartTime = base.StartTime.Add(8 * time.Hour)
	in.EndTime = in.StartTime.Add(time.Hour)
	wantFieldError(t, v.ValidateReservation(ctx, in), "client_id")
}

func TestValidateReservation_InactiveCourt(t *testing.T) {
	q, v, client, court := setupValidatorTest(t)
	ctx := context.Background()

	if _, err := q.UpdateCourt(ctx, store.UpdateCourtParams{
		ID:               court.ID,
		Name:             court.Name,
		CourtTypeID:      court.CourtTypeID,
		HourlyPriceCents: court.HourlyPriceCents,
		Capacity:         court.Capacity,
		Active:           false,
	}); err != nil {
		t.Fatalf("deactivate court: %v", err)
	}

	wantFieldError(t, v.ValidateReservation(ctx, validInput(client, court)), "court_id")
}

func TestValidateReservation_UnknownClient(t *testing.T) {
	_, v, client, court := setupValidatorTest(t)

	in := validInput(client, court)
	in.ClientID = 9999
	err := v.ValidateReservation(context.Background(), in)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestValidateReservation_FacilityTimezone(t *testing.T) {
	q, _, client, court := setupValidatorTest(t)

	// A facility three hours behind UTC. An evening booking sent with an
	// offset lands on 23:00-01:00 UTC but must be judged on the local clock.
	local := time.FixedZone("UTC-3", -3*60*60)
	policy := DefaultPolicy()
	policy.Location = local
	v := NewValidator(q, policy).WithClock(func() time.Time { return testClock })

	day := validInput(client, court).StartTime
	in := validInput(client, court)
	in.StartTime = time.Date(day.Year(), day.Month(), day.Day(), 20, 0, 0, 0, local).UTC()
	in.EndTime = in.StartTime.Add(2 * time.Hour)
	if err := v.ValidateReservation(context.Background(), in); err != nil {
		t.Fatalf("20:00-22:00 on the facility clock should be valid: %v", err)
	}

	// The same instants fail for a facility running on UTC.
	utcValidator := NewValidator(q, DefaultPolicy()).WithClock(func() time.Time { return testClock })
	wantFieldError(t, utcValidator.ValidateReservation(context.Background(), in), "end_time")
}

func TestValidateReservation_AlternatePolicy(t *testing.T) {
	q, _, client, court := setupValidatorTest(t)

	policy := DefaultPolicy()
	policy.MaxDuration = 2 * time.Hour
	v := NewValidator(q, policy).WithClock(func() time.Time { return testClock })

	in := validInput(client, court)
	in.EndTime = in.StartTime.Add(3 * time.Hour)
	wantFieldError(t, v.ValidateReservation(context.Background(), in), "end_time")
}
