// Package payments drives a reservation's payment record through its
// PENDING/PAID/REFUNDED lifecycle. Payments never transition independently of
// their owning reservation, except through the explicit MarkPaid operation.
package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/courtsidehq/courtside/internal/store"
)

// ErrReservationNotPending reports a MarkPaid attempt against a reservation
// that is no longer pending. Callers treat it as a non-fatal no-op.
var ErrReservationNotPending = errors.New("reservation is not pending")

// MarkPaid settles the payment of a pending reservation. The method defaults
// to cash when unspecified and a receipt reference is generated when blank.
// The owning reservation moves to PAID in the same call.
func MarkPaid(ctx context.Context, q *store.Queries, reservationID int64, method, receipt string, now time.Time) (store.Payment, error) {
	reservation, err := q.GetReservation(ctx, reservationID)
	if err != nil {
		return store.Payment{}, fmt.Errorf("load reservation: %w", err)
	}
	if reservation.Status != store.ReservationPending {
		return store.Payment{}, ErrReservationNotPending
	}

	payment, err := q.GetPayment(ctx, reservationID)
	if err != nil {
		return store.Payment{}, fmt.Errorf("load payment: %w", err)
	}
	if payment.Status == store.PaymentPaid {
		return payment, nil
	}

	method = normalizeMethod(method)
	receipt = strings.TrimSpace(receipt)
	if receipt == "" {
		receipt = uuid.New().String()
	}

	payment, err = q.UpdatePayment(ctx, store.UpdatePaymentParams{
		ReservationID: reservationID,
		AmountCents:   payment.AmountCents,
		Status:        store.PaymentPaid,
		Method:        sql.NullString{String: method, Valid: true},
		PaidAt:        sql.NullTime{Time: now.UTC(), Valid: true},
		Receipt:       sql.NullString{String: receipt, Valid: true},
	})
	if err != nil {
		return store.Payment{}, fmt.Errorf("update payment: %w", err)
	}

	if _, err := q.UpdateReservationStatus(ctx, store.UpdateReservationStatusParams{
		ID:     reservationID,
		Status: store.ReservationPaid,
	}); err != nil {
		return store.Payment{}, fmt.Errorf("update reservation status: %w", err)
	}

	return payment, nil
}

// SyncWithReservation reconciles a payment after its reservation changed
// state:
//   - CANCELLED refunds the payment only if it had been PAID; an unpaid
//     payment stays PENDING and an already refunded one stays REFUNDED.
//   - PENDING reopens the payment, clearing paid-at and method.
//   - PAID settles the payment, defaulting the method to cash.
func SyncWithReservation(ctx context.Context, q *store.Queries, reservation store.Reservation, now time.Time) (store.Payment, error) {
	payment, err := q.GetPayment(ctx, reservation.ID)
	if err != nil {
		return store.Payment{}, fmt.Errorf("load payment: %w", err)
	}

	arg := store.UpdatePaymentParams{
		ReservationID: reservation.ID,
		AmountCents:   payment.AmountCents,
		Status:        payment.Status,
		Method:        payment.Method,
		PaidAt:        payment.PaidAt,
		Receipt:       payment.Receipt,
	}

	switch reservation.Status {
	case store.ReservationCancelled:
		// Refunds are only issued from PAID. A payment that was already
		// refunded must never fall back to PENDING.
		if payment.Status == store.PaymentPaid {
			arg.Status = store.PaymentRefunded
		}
	case store.ReservationPending:
		arg.Status = store.PaymentPending
		arg.Method = sql.NullString{}
		arg.PaidAt = sql.NullTime{}
	case store.ReservationPaid:
		arg.Status = store.PaymentPaid
		if !arg.Method.Valid {
			arg.Method = sql.NullString{String: store.MethodCash, Valid: true}
		}
		if !arg.PaidAt.Valid {
			arg.PaidAt = sql.NullTime{Time: now.UTC(), Valid: true}
		}
	default:
		return store.Payment{}, fmt.Errorf("unknown reservation status %q", reservation.Status)
	}

	payment, err = q.UpdatePayment(ctx, arg)
	if err != nil {
		return store.Payment{}, fmt.Errorf("update payment: %w", err)
	}
	return payment, nil
}

func normalizeMethod(method string) string {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case store.MethodOnline:
		return store.MethodOnline
	case store.MethodTransfer:
		return store.MethodTransfer
	default:
		return store.MethodCash
	}
}
