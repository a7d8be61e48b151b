package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/email"
	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/tournaments"
)

const reminderWindow = 24 * time.Hour

// RegisterTournamentLifecycleJob sweeps tournament statuses shortly after
// midnight so listings reflect date transitions even without reads.
func RegisterTournamentLifecycleJob(database *db.DB) error {
	if database == nil {
		return fmt.Errorf("tournament lifecycle job requires database")
	}

	jobName := "tournament_lifecycle"
	cronExpr := "5 0 * * *"
	jobLogger := log.With().
		Str("component", "tournament_lifecycle_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		updated, err := tournaments.Sweep(ctx, database.Queries, time.Now().UTC())
		if err != nil {
			jobLogger.Error().Err(err).Msg("Tournament lifecycle sweep failed")
			return
		}
		if updated > 0 {
			jobLogger.Info().Int("updated", updated).Msg("Tournament statuses refreshed")
		}
	})
	return err
}

// RegisterPaymentReminderJob emails clients whose unpaid reservations start
// within the next day. Runs every morning; skipped when email is disabled.
func RegisterPaymentReminderJob(database *db.DB, sender email.EmailSender, facilityName, currency string) error {
	if database == nil {
		return fmt.Errorf("payment reminder job requires database")
	}

	jobName := "payment_reminders"
	cronExpr := "0 9 * * *"
	jobLogger := log.With().
		Str("component", "payment_reminders_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if sender == nil {
			jobLogger.Debug().Msg("Payment reminder job skipped: email not configured")
			return
		}

		now := time.Now().UTC()
		reservations, err := database.Queries.ListUnpaidReservationsStartingBetween(ctx, store.ListUnpaidReservationsStartingBetweenParams{
			From: now,
			To:   now.Add(reminderWindow),
		})
		if err != nil {
			jobLogger.Error().Err(err).Msg("Failed to load unpaid reservations for reminder job")
			return
		}

		for _, reservation := range reservations {
			court, err := database.Queries.GetCourt(ctx, reservation.CourtID)
			if err != nil {
				jobLogger.Error().Err(err).Int64("reservation_id", reservation.ID).Msg("Failed to load court for reminder")
				continue
			}
			payment, err := database.Queries.GetPayment(ctx, reservation.ID)
			if err != nil {
				jobLogger.Error().Err(err).Int64("reservation_id", reservation.ID).Msg("Failed to load payment for reminder")
				continue
			}

			date, timeRange := email.FormatDateTimeRange(reservation.StartTime, reservation.EndTime)
			message := email.Message{
				Subject: fmt.Sprintf("Payment Due - %s", facilityName),
				Body: fmt.Sprintf(
					"Your reservation on %s (%s, court %s) starts soon and is still unpaid.\nAmount due: %s",
					date, timeRange, court.Name,
					email.FormatAmountCents(payment.AmountCents, currency),
				),
			}
			email.NotifyClient(ctx, database.Queries, sender, reservation.ClientID, message, &jobLogger)
		}
	})
	return err
}
