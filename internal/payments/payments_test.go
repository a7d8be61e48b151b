package payments

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/testutil"
)

func setupPaymentTest(t *testing.T) (*store.Queries, store.Reservation) {
	t.Helper()

	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	client, err := q.CreateClient(ctx, store.CreateClientParams{
		FirstName:  "Ana",
		LastName:   "Gomez",
		NationalID: "23456789",
		Email:      "ana@example.com",
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	courtType, err := q.CreateCourtType(ctx, store.CreateCourtTypeParams{Name: "Padel"})
	if err != nil {
		t.Fatalf("create court type: %v", err)
	}
	court, err := q.CreateCourt(ctx, store.CreateCourtParams{
		Name:             "Padel 1",
		CourtTypeID:      courtType.ID,
		HourlyPriceCents: 500000,
		Capacity:         4,
	})
	if err != nil {
		t.Fatalf("create court: %v", err)
	}

	start := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	reservation, err := q.CreateReservation(ctx, store.CreateReservationParams{
		ClientID:  client.ID,
		CourtID:   court.ID,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Status:    store.ReservationPending,
	})
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	if _, err := q.CreatePayment(ctx, store.CreatePaymentParams{
		ReservationID: reservation.ID,
		AmountCents:   1000000,
		Status:        store.PaymentPending,
	}); err != nil {
		t.Fatalf("create payment: %v", err)
	}

	return q, reservation
}

func TestMarkPaid_DefaultsMethodAndPaidAt(t *testing.T) {
	q, reservation := setupPaymentTest(t)
	ctx := context.Background()
	now := time.Date(2026, time.April, 1, 15, 0, 0, 0, time.UTC)

	payment, err := MarkPaid(ctx, q, reservation.ID, "", "", now)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if payment.Status != store.PaymentPaid {
		t.Fatalf("payment status: %s", payment.Status)
	}
	if !payment.Method.Valid || payment.Method.String != store.MethodCash {
		t.Fatalf("method should default to cash, got %+v", payment.Method)
	}
	if !payment.PaidAt.Valid {
		t.Fatalf("paid_at should be set")
	}
	if !payment.Receipt.Valid || payment.Receipt.String == "" {
		t.Fatalf("receipt should be generated")
	}

	updated, err := q.GetReservation(ctx, reservation.ID)
	if err != nil {
		t.Fatalf("reload reservation: %v", err)
	}
	if updated.Status != store.ReservationPaid {
		t.Fatalf("reservation status: %s", updated.Status)
	}
}

func TestMarkPaid_ExplicitMethodAndReceipt(t *testing.T) {
	q, reservation := setupPaymentTest(t)

	payment, err := MarkPaid(context.Background(), q, reservation.ID, "transfer", "COMP-123", time.Now())
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if payment.Method.String != store.MethodTransfer {
		t.Fatalf("method: %s", payment.Method.String)
	}
	if payment.Receipt.String != "COMP-123" {
		t.Fatalf("receipt: %s", payment.Receipt.String)
	}
}

func TestMarkPaid_NonPendingReservationIsRejected(t *testing.T) {
	q, reservation := setupPaymentTest(t)
	ctx := context.Background()

	if _, err := q.UpdateReservationStatus(ctx, store.UpdateReservationStatusParams{
		ID:     reservation.ID,
		Status: store.ReservationCancelled,
	}); err != nil {
		t.Fatalf("cancel reservation: %v", err)
	}

	_, err := MarkPaid(ctx, q, reservation.ID, "", "", time.Now())
	if !errors.Is(err, ErrReservationNotPending) {
		t.Fatalf("expected ErrReservationNotPending, got %v", err)
	}

	payment, err := q.GetPayment(ctx, reservation.ID)
	if err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if payment.Status != store.PaymentPending {
		t.Fatalf("payment should stay pending, got %s", payment.Status)
	}
}

func TestSyncWithReservation_CancelRefundsOnlyPaid(t *testing.T) {
	q, reservation := setupPaymentTest(t)
	ctx := context.Background()
	now := time.Now()

	// Cancelling while unpaid leaves the payment pending.
	reservation.Status = store.ReservationCancelled
	payment, err := SyncWithReservation(ctx, q, reservation, now)
	if err != nil {
		t.Fatalf("sync cancelled: %v", err)
	}
	if payment.Status != store.PaymentPending {
		t.Fatalf("unpaid cancellation should stay pending, got %s", payment.Status)
	}

	// Pay, then cancel: now a refund is due.
	reservation.Status = store.ReservationPaid
	if _, err := SyncWithReservation(ctx, q, reservation, now); err != nil {
		t.Fatalf("sync paid: %v", err)
	}
	reservation.Status = store.ReservationCancelled
	payment, err = SyncWithReservation(ctx, q, reservation, now)
	if err != nil {
		t.Fatalf("sync cancelled after paid: %v", err)
	}
	if payment.Status != store.PaymentRefunded {
		t.Fatalf("paid cancellation should refund, got %s", payment.Status)
	}
}

func TestSyncWithReservation_RecancelKeepsRefund(t *testing.T) {
	q, reservation := setupPaymentTest(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := MarkPaid(ctx, q, reservation.ID, "", "", now); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	reservation.Status = store.ReservationCancelled
	payment, err := SyncWithReservation(ctx, q, reservation, now)
	if err != nil {
		t.Fatalf("sync cancelled: %v", err)
	}
	if payment.Status != store.PaymentRefunded {
		t.Fatalf("expected REFUNDED, got %s", payment.Status)
	}

	// Syncing the cancelled reservation again must not reopen the refund.
	payment, err = SyncWithReservation(ctx, q, reservation, now)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if payment.Status != store.PaymentRefunded {
		t.Fatalf("refund must survive a repeated cancellation sync, got %s", payment.Status)
	}
}

func TestSyncWithReservation_BackToPendingClearsSettlement(t *testing.T) {
	q, reservation := setupPaymentTest(t)
	ctx := context.Background()

	if _, err := MarkPaid(ctx, q, reservation.ID, "online", "", time.Now()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	reservation.Status = store.ReservationPending
	payment, err := SyncWithReservation(ctx, q, reservation, time.Now())
	if err != nil {
		t.Fatalf("sync pending: %v", err)
	}
	if payment.Status != store.PaymentPending {
		t.Fatalf("status: %s", payment.Status)
	}
	if payment.Method.Valid {
		t.Fatalf("method should be cleared")
	}
	if payment.PaidAt.Valid {
		t.Fatalf("paid_at should be cleared")
	}
}

func TestMarkPaid_UnknownReservation(t *testing.T) {
	q, _ := setupPaymentTest(t)

	_, err := MarkPaid(context.Background(), q, 9999, "", "", time.Now())
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}
