// internal/api/payments/handlers.go
package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/api/apiutil"
	"github.com/courtsidehq/courtside/internal/email"
	"github.com/courtsidehq/courtside/internal/payments"
	"github.com/courtsidehq/courtside/internal/payments/gateway"
	"github.com/courtsidehq/courtside/internal/store"
)

// Deps carries the collaborators the payment handlers need.
type Deps struct {
	Queries      *store.Queries
	Gateway      gateway.Gateway
	EmailSender  email.EmailSender
	FacilityName string
	Currency     string
}

var (
	deps     Deps
	initOnce sync.Once
)

const paymentQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d Deps) {
	if d.Queries == nil {
		return
	}
	initOnce.Do(func() {
		deps = d
	})
}

type markPaidRequest struct {
	Method  string `json:"method"`
	Receipt string `json:"receipt"`
}

type webhookRequest struct {
	CorrelationID string `json:"correlation_id"`
	Status        string `json:"status"`
	Receipt       string `json:"receipt"`
}

// GET /api/v1/reservations/{id}/payment
func HandlePaymentGet(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := deps.Queries
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

	ctx, cancel := context.WithTimeout(r.Context(), paymentQueryTimeout)
	defer cancel()

	payment, err := q.GetPayment(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load payment")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, payment); err != nil {
		logger.Error().Err(err).Int64("reservation_id", id).Msg("Failed to write payment response")
	}
}

// POST /api/v1/reservations/{id}/payment/paid
func HandleMarkPaid(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := deps.Queries
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

	var req markPaidRequest
	if r.ContentLength != 0 {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), paymentQueryTimeout)
	defer cancel()

	payment, err := payments.MarkPaid(ctx, q, id, req.Method, req.Receipt, time.Now())
	if err != nil {
		if errors.Is(err, payments.ErrReservationNotPending) {
			apiutil.WriteError(w, http.StatusUnprocessableEntity, "Reservation is not pending")
			return
		}
		apiutil.RespondError(w, r, err, "Failed to mark payment as paid")
		return
	}

	sendReceiptEmail(r.Context(), q, id, payment)

	if err := apiutil.WriteJSON(w, http.StatusOK, payment); err != nil {
		logger.Error().Err(err).Int64("reservation_id", id).Msg("Failed to write payment response")
	}
}

// POST /api/v1/reservations/{id}/payment/checkout
func HandleCheckoutCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := deps.Queries
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if deps.Gateway == nil {
		apiutil.WriteError(w, http.StatusBadGateway, "Payment gateway is not configured")
		return
	}

	id, err := apiutil.IDFromPath(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), paymentQueryTimeout)
	defer cancel()

	reservation, err := q.GetReservation(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load reservation")
		return
	}
	if reservation.Status != store.ReservationPending {
		apiutil.WriteError(w, http.StatusUnprocessableEntity, "Reservation is not pending")
		return
	}
	payment, err := q.GetPayment(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load payment")
		return
	}
	court, err := q.GetCourt(ctx, reservation.CourtID)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load court")
		return
	}

	date, timeRange := email.FormatDateTimeRange(reservation.StartTime, reservation.EndTime)
	session, err := deps.Gateway.CreateCheckout(ctx, gateway.CheckoutRequest{
		AmountCents:   payment.AmountCents,
		Currency:      deps.Currency,
		Description:   fmt.Sprintf("%s, %s %s", court.Name, date, timeRange),
		CorrelationID: fmt.Sprintf("%d", reservation.ID),
	})
	if err != nil {
		// Non-fatal: the reservation and payment keep their prior state.
		logger.Warn().Err(err).Int64("reservation_id", id).Msg("Payment gateway checkout failed")
		apiutil.WriteError(w, http.StatusBadGateway, "Payment gateway is unavailable; try again later")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, session); err != nil {
		logger.Error().Err(err).Int64("reservation_id", id).Msg("Failed to write checkout response")
	}
}

// POST /api/v1/payments/webhook
func HandleGatewayWebhook(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := deps.Queries
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req webhookRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := apiutil.ParsePositiveInt64Field(req.CorrelationID, "correlation_id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status != "APPROVED" && status != "PAID" {
		logger.Info().Int64("reservation_id", id).Str("status", status).Msg("Ignoring non-approval gateway notification")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), paymentQueryTimeout)
	defer cancel()

	payment, err := payments.MarkPaid(ctx, q, id, store.MethodOnline, req.Receipt, time.Now())
	if err != nil {
		if errors.Is(err, payments.ErrReservationNotPending) {
			// A repeated notification for a settled reservation is not an error.
			logger.Info().Int64("reservation_id", id).Msg("Gateway notification for non-pending reservation ignored")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		apiutil.RespondError(w, r, err, "Failed to apply gateway notification")
		return
	}

	sendReceiptEmail(r.Context(), q, id, payment)

	if err := apiutil.WriteJSON(w, http.StatusOK, payment); err != nil {
		logger.Error().Err(err).Int64("reservation_id", id).Msg("Failed to write payment response")
	}
}

func sendReceiptEmail(ctx context.Context, q *store.Queries, reservationID int64, payment store.Payment) {
	if deps.EmailSender == nil {
		return
	}
	logger := log.Ctx(ctx)
	reservation, err := q.GetReservation(ctx, reservationID)
	if err != nil {
		logger.Error().Err(err).Int64("reservation_id", reservationID).Msg("Failed to load reservation for receipt email")
		return
	}
	court, err := q.GetCourt(ctx, reservation.CourtID)
	if err != nil {
		logger.Error().Err(err).Int64("court_id", reservation.CourtID).Msg("Failed to load court for receipt email")
		return
	}

	date, timeRange := email.FormatDateTimeRange(reservation.StartTime, reservation.EndTime)
	message := email.BuildPaymentReceipt(email.ReceiptDetails{
		FacilityName: deps.FacilityName,
		Court:        court.Name,
		Date:         date,
		TimeRange:    timeRange,
		Method:       payment.Method.String,
		Receipt:      payment.Receipt.String,
		AmountCents:  payment.AmountCents,
		Currency:     deps.Currency,
	})
	email.NotifyClient(ctx, q, deps.EmailSender, reservation.ClientID, message, logger)
}
