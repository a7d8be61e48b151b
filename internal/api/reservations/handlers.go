// internal/api/reservations/handlers.go
package reservations

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/api/apiutil"
	"github.com/courtsidehq/courtside/internal/booking"
	appdb "github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/email"
	"github.com/courtsidehq/courtside/internal/payments"
	"github.com/courtsidehq/courtside/internal/store"
)

// Deps carries the collaborators the reservation handlers need.
type Deps struct {
	DB           *appdb.DB
	Policy       booking.Policy
	EmailSender  email.EmailSender
	FacilityName string
	Currency     string
}

var (
	deps      Deps
	queries   *store.Queries
	validator *booking.Validator
	initOnce  sync.Once
)

const reservationQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d Deps) {
	if d.DB == nil {
		return
	}
	initOnce.Do(func() {
		deps = d
		queries = d.DB.Queries
		validator = booking.NewValidator(d.DB.Queries, d.Policy)
	})
}

type reservationRequest struct {
	ClientID     int64   `json:"client_id"`
	CourtID      int64   `json:"court_id"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	ServiceIDs   []int64 `json:"service_ids"`
	TournamentID int64   `json:"tournament_id"`
	Notes        string  `json:"notes"`
}

type reservationResponse struct {
	Reservation store.Reservation `json:"reservation"`
	Services    []store.Service   `json:"services"`
	Payment     store.Payment     `json:"payment"`
	Total       string            `json:"total"`
}

// POST /api/v1/reservations
func HandleReservationCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	database := loadDB()
	if q == nil || database == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	req, input, err := decodeReservationRequest(r, 0)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to decode reservation")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	if err := validator.ValidateReservation(ctx, input); err != nil {
		apiutil.RespondError(w, r, err, "Failed to validate reservation")
		return
	}

	services, err := loadActiveServices(ctx, q, req.ServiceIDs)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load services")
		return
	}
	court, err := q.GetCourt(ctx, req.CourtID)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load court")
		return
	}
	if req.TournamentID > 0 {
		if _, err := q.GetTournament(ctx, req.TournamentID); err != nil {
			apiutil.RespondError(w, r, err, "Failed to load tournament")
			return
		}
	}
	total := booking.TotalCostCents(court.HourlyPriceCents, input.StartTime, input.EndTime, serviceCosts(services))

	var created store.Reservation
	var payment store.Payment
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		var err error
		created, err = qtx.CreateReservation(ctx, store.CreateReservationParams{
			ClientID:     req.ClientID,
			CourtID:      req.CourtID,
			StartTime:    input.StartTime,
			EndTime:      input.EndTime,
			Status:       store.ReservationPending,
			TournamentID: apiutil.ToNullInt64(req.TournamentID),
			Notes:        strings.TrimSpace(req.Notes),
		})
		if err != nil {
			return err
		}
		for _, service := range services {
			if err := qtx.AddReservationService(ctx, store.AddReservationServiceParams{
				ReservationID: created.ID,
				ServiceID:     service.ID,
			}); err != nil {
				return err
			}
		}
		payment, err = qtx.CreatePayment(ctx, store.CreatePaymentParams{
			ReservationID: created.ID,
			AmountCents:   total,
			Status:        store.PaymentPending,
		})
		return err
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to create reservation")
		return
	}

	sendConfirmationEmail(r.Context(), q, created, court, services, total)

	if err := apiutil.WriteJSON(w, http.StatusCreated, reservationResponse{
		Reservation: created,
		Services:    services,
		Payment:     payment,
		Total:       apiutil.FormatPriceCents(total),
	}); err != nil {
		logger.Error().Err(err).Int64("reservation_id", created.ID).Msg("Failed to write reservation response")
	}
}

// GET /api/v1/reservations?status=...&client_id=...&court_id=...
func HandleReservationsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var arg store.ListReservationsParams
	arg.Status = strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))
	if raw := strings.TrimSpace(r.URL.Query().Get("client_id")); raw != "" {
		id, err := apiutil.ParsePositiveInt64Field(raw, "client_id")
		if err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		arg.ClientID = id
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("court_id")); raw != "" {
		id, err := apiutil.ParsePositiveInt64Field(raw, "court_id")
		if err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		arg.CourtID = id
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	reservations, err := q.ListReservations(ctx, arg)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to list reservations")
		return
	}
	if reservations == nil {
		reservations = []store.Reservation{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, reservations); err != nil {
		logger.Error().Err(err).Msg("Failed to write reservation list response")
	}
}

// GET /api/v1/reservations/{id}
func HandleReservationGet(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	reservation, err := q.GetReservation(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load reservation")
		return
	}
	services, err := q.ListReservationServices(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load reservation services")
		return
	}
	if services == nil {
		services = []store.Service{}
	}
	payment, err := q.GetPayment(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load payment")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, reservationResponse{
		Reservation: reservation,
		Services:    services,
		Payment:     payment,
		Total:       apiutil.FormatPriceCents(payment.AmountCents),
	}); err != nil {
		logger.Error().Err(err).Int64("reservation_id", id).Msg("Failed to write reservation response")
	}
}

// PUT /api/v1/reservations/{id}
func HandleReservationUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	database := loadDB()
	if q == nil || database == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	id, err := apiutil.IDFromPath(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, input, err := decodeReservationRequest(r, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to decode reservation")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	current, err := q.GetReservation(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load reservation")
		return
	}
	if current.Status == store.ReservationCancelled {
		apiutil.WriteError(w, http.StatusUnprocessableEntity, "Cancelled reservations cannot be edited")
		return
	}

	input.Status = current.Status
	if err := validator.ValidateReservation(ctx, input); err != nil {
		apiutil.RespondError(w, r, err, "Failed to validate reservation")
		return
	}

	services, err := loadActiveServices(ctx, q, req.ServiceIDs)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load services")
		return
	}
	court, err := q.GetCourt(ctx, req.CourtID)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load court")
		return
	}
	if req.TournamentID > 0 {
		if _, err := q.GetTournament(ctx, req.TournamentID); err != nil {
			apiutil.RespondError(w, r, err, "Failed to load tournament")
			return
		}
	}
	total := booking.TotalCostCents(court.HourlyPriceCents, input.StartTime, input.EndTime, serviceCosts(services))

	var updated store.Reservation
	var payment store.Payment
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		var err error
		updated, err = qtx.UpdateReservation(ctx, store.UpdateReservationParams{
			ID:           id,
			ClientID:     req.ClientID,
			CourtID:      req.CourtID,
			StartTime:    input.StartTime,
			EndTime:      input.EndTime,
			Status:       current.Status,
			TournamentID: apiutil.ToNullInt64(req.TournamentID),
			Notes:        strings.TrimSpace(req.Notes),
		})
		if err != nil {
			return err
		}
		if err := qtx.ClearReservationServices(ctx, id); err != nil {
			return err
		}
		for _, service := range services {
			if err := qtx.AddReservationService(ctx, store.AddReservationServiceParams{
				ReservationID: id,
				ServiceID:     service.ID,
			}); err != nil {
				return err
			}
		}

		// The amount tracks the booking until the payment settles.
		payment, err = qtx.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		if payment.Status == store.PaymentPending {
			payment, err = qtx.UpdatePaymentAmount(ctx, id, total)
		}
		return err
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to update reservation")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, reservationResponse{
		Reservation: updated,
		Services:    services,
		Payment:     payment,
		Total:       apiutil.FormatPriceCents(payment.AmountCents),
	}); err != nil {
		logger.Error().Err(err).Int64("reservation_id", id).Msg("Failed to write reservation response")
	}
}

// POST /api/v1/reservations/{id}/cancel
func HandleReservationCancel(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	database := loadDB()
	if q == nil || database == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	id, err := apiutil.IDFromPath(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	current, err := q.GetReservation(ctx, id)
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to load reservation")
		return
	}
	if current.Status == store.ReservationCancelled {
		apiutil.WriteError(w, http.StatusUnprocessableEntity, "Reservation is already cancelled")
		return
	}

	var cancelled store.Reservation
	var payment store.Payment
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		var err error
		cancelled, err = qtx.UpdateReservationStatus(ctx, store.UpdateReservationStatusParams{
			ID:     id,
			Status: store.ReservationCancelled,
		})
		if err != nil {
			return err
		}
		payment, err = payments.SyncWithReservation(ctx, qtx, cancelled, time.Now())
		return err
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to cancel reservation")
		return
	}

	sendCancellationEmail(r.Context(), q, cancelled, payment)

	if err := apiutil.WriteJSON(w, http.StatusOK, reservationResponse{
		Reservation: cancelled,
		Services:    []store.Service{},
		Payment:     payment,
		Total:       apiutil.FormatPriceCents(payment.AmountCents),
	}); err != nil {
		logger.Error().Err(err).Int64("reservation_id", id).Msg("Failed to write reservation response")
	}
}

func decodeReservationRequest(r *http.Request, id int64) (reservationRequest, booking.ReservationInput, error) {
	var req reservationRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		return req, booking.ReservationInput{}, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	}
	if req.ClientID <= 0 {
		return req, booking.ReservationInput{}, apiutil.FieldError{Field: "client_id", Reason: "is required"}
	}
	if req.CourtID <= 0 {
		return req, booking.ReservationInput{}, apiutil.FieldError{Field: "court_id", Reason: "is required"}
	}
	if req.TournamentID < 0 {
		return req, booking.ReservationInput{}, apiutil.FieldError{Field: "tournament_id", Reason: "must be a valid id"}
	}
	startTime, err := apiutil.ParseTimeField(req.StartTime, "start_time")
	if err != nil {
		return req, booking.ReservationInput{}, apiutil.FieldError{Field: "start_time", Reason: err.Error()}
	}
	endTime, err := apiutil.ParseTimeField(req.EndTime, "end_time")
	if err != nil {
		return req, booking.ReservationInput{}, apiutil.FieldError{Field: "end_time", Reason: err.Error()}
	}

	return req, booking.ReservationInput{
		ID:        id,
		ClientID:  req.ClientID,
		CourtID:   req.CourtID,
		StartTime: startTime,
		EndTime:   endTime,
		Status:    store.ReservationPending,
	}, nil
}

func loadActiveServices(ctx context.Context, q *store.Queries, ids []int64) ([]store.Service, error) {
	services := make([]store.Service, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		service, err := q.GetService(ctx, id)
		if err != nil {
			return nil, err
		}
		if !service.Active {
			return nil, apiutil.FieldError{Field: "service_ids", Reason: "includes an inactive service"}
		}
		services = append(services, service)
	}
	return services, nil
}

func serviceCosts(services []store.Service) []int64 {
	costs := make([]int64, len(services))
	for i, s := range services {
		costs[i] = s.CostCents
	}
	return costs
}

func sendConfirmationEmail(ctx context.Context, q *store.Queries, reservation store.Reservation, court store.Court, services []store.Service, total int64) {
	if deps.EmailSender == nil {
		return
	}
	logger := log.Ctx(ctx)
	date, timeRange := email.FormatDateTimeRange(reservation.StartTime, reservation.EndTime)
	names := make([]string, len(services))
	for i, s := range services {
		names[i] = s.Name
	}
	message := email.BuildReservationConfirmation(email.ReservationDetails{
		FacilityName: deps.FacilityName,
		Court:        court.Name,
		Date:         date,
		TimeRange:    timeRange,
		Services:     names,
		TotalCents:   total,
		Currency:     deps.Currency,
	})
	email.NotifyClient(ctx, q, deps.EmailSender, reservation.ClientID, message, logger)
}

func sendCancellationEmail(ctx context.Context, q *store.Queries, reservation store.Reservation, payment store.Payment) {
	if deps.EmailSender == nil {
		return
	}
	logger := log.Ctx(ctx)
	court, err := q.GetCourt(ctx, reservation.CourtID)
	if err != nil {
		logger.Error().Err(err).Int64("court_id", reservation.CourtID).Msg("Failed to load court for cancellation email")
		return
	}
	date, timeRange := email.FormatDateTimeRange(reservation.StartTime, reservation.EndTime)
	message := email.BuildCancellationEmail(email.CancellationDetails{
		FacilityName: deps.FacilityName,
		Court:        court.Name,
		Date:         date,
		TimeRange:    timeRange,
		Refunded:     payment.Status == store.PaymentRefunded,
	})
	email.NotifyClient(ctx, q, deps.EmailSender, reservation.ClientID, message, logger)
}

func loadQueries() *store.Queries {
	return queries
}

func loadDB() *appdb.DB {
	return deps.DB
}
