package reservations

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

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/payments"
	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/testutil"
)

func setupReservationTest(t *testing.T) (*store.Queries, store.Client, store.Court) {
	t.Helper()

	database := testutil.NewTestDB(t)
	policy := booking.DefaultPolicy()
	deps = Deps{DB: database, Policy: policy, Currency: "ARS"}
	queries = database.Queries
	validator = booking.NewValidator(database.Queries, policy)

	ctx := context.Background()
	client, err := queries.CreateClient(ctx, store.CreateClientParams{
		FirstName:  "Ana",
		LastName:   "Perez",
		NationalID: "30111222",
		Email:      "ana.perez@example.com",
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	courtType, err := queries.CreateCourtType(ctx, store.CreateCourtTypeParams{Name: "Padel"})
	if err != nil {
		t.Fatalf("create court type: %v", err)
	}
	court, err := queries.CreateCourt(ctx, store.CreateCourtParams{
		Name:             "Padel 1",
		CourtTypeID:      courtType.ID,
		HourlyPriceCents: 500000,
		Capacity:         4,
	})
	if err != nil {
		t.Fatalf("create court: %v", err)
	}
	return queries, client, court
}

func newReservationMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/reservations", HandleReservationCreate)
	mux.HandleFunc("GET /api/v1/reservations", HandleReservationsList)
	mux.HandleFunc("GET /api/v1/reservations/{id}", HandleReservationGet)
	mux.HandleFunc("PUT /api/v1/reservations/{id}", HandleReservationUpdate)
	mux.HandleFunc("POST /api/v1/reservations/{id}/cancel", HandleReservationCancel)
	return mux
}

func tomorrowAt(hour int) time.Time {
	d := time.Now().UTC().AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func postJSON(t *testing.T, mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func createReservation(t *testing.T, mux *http.ServeMux, client store.Client, court store.Court, serviceIDs string) reservationResponse {
	t.Helper()
	body := fmt.Sprintf(
		`{"client_id": %d, "court_id": %d, "start_time": %q, "end_time": %q, "service_ids": [%s]}`,
		client.ID, court.ID,
		tomorrowAt(10).Format("2006-01-02T15:04"),
		tomorrowAt(12).Format("2006-01-02T15:04"),
		serviceIDs,
	)
	rec := postJSON(t, mux, "/api/v1/reservations", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create reservation: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp reservationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestReservationCreate(t *testing.T) {
	_, client, court := setupReservationTest(t)
	mux := newReservationMux()

	resp := createReservation(t, mux, client, court, "")
	if resp.Reservation.Status != store.ReservationPending {
		t.Fatalf("expected PENDING reservation, got %s", resp.Reservation.Status)
	}
	if resp.Payment.Status != store.PaymentPending {
		t.Fatalf("expected PENDING payment, got %s", resp.Payment.Status)
	}
	if resp.Payment.AmountCents != 1000000 {
		t.Fatalf("expected 1000000 cents for two hours, got %d", resp.Payment.AmountCents)
	}
	if resp.Total != "10000.00" {
		t.Fatalf("expected total 10000.00, got %s", resp.Total)
	}
}

func TestReservationCreate_WithServices(t *testing.T) {
	q, client, court := setupReservationTest(t)
	mux := newReservationMux()

	service, err := q.CreateService(context.Background(), store.CreateServiceParams{
		Name:      "Racket rental",
		CostCents: 150000,
	})
	if err != nil {
		t.Fatalf("create service: %v", err)
	}

	resp := createReservation(t, mux, client, court, fmt.Sprintf("%d, %d", service.ID, service.ID))
	if len(resp.Services) != 1 {
		t.Fatalf("expected duplicate service ids collapsed to 1, got %d", len(resp.Services))
	}
	if resp.Payment.AmountCents != 1150000 {
		t.Fatalf("expected 1150000 cents with service, got %d", resp.Payment.AmountCents)
	}
}

func TestReservationCreate_EndBeforeStart(t *testing.T) {
	_, client, court := setupReservationTest(t)
	mux := newReservationMux()

	body := fmt.Sprintf(
		`{"client_id": %d, "court_id": %d, "start_time": %q, "end_time": %q}`,
		client.ID, court.ID,
		tomorrowAt(12).Format("2006-01-02T15:04"),
		tomorrowAt(10).Format("2006-01-02T15:04"),
	)
	rec := postJSON(t, mux, "/api/v1/reservations", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReservationCreate_UnknownService(t *testing.T) {
	_, client, court := setupReservationTest(t)
	mux := newReservationMux()

	body := fmt.Sprintf(
		`{"client_id": %d, "court_id": %d, "start_time": %q, "end_time": %q, "service_ids": [999]}`,
		client.ID, court.ID,
		tomorrowAt(10).Format("2006-01-02T15:04"),
		tomorrowAt(12).Format("2006-01-02T15:04"),
	)
	rec := postJSON(t, mux, "/api/v1/reservations", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReservationCreate_Overlap(t *testing.T) {
	_, client, court := setupReservationTest(t)
	mux := newReservationMux()

	createReservation(t, mux, client, court, "")

	body := fmt.Sprintf(
		`{"client_id": %d, "court_id": %d, "start_time": %q, "end_time": %q}`,
		client.ID, court.ID,
		tomorrowAt(11).Format("2006-01-02T15:04"),
		tomorrowAt(13).Format("2006-01-02T15:04"),
	)
	rec := postJSON(t, mux, "/api/v1/reservations", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for overlap, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReservationGet(t *testing.T) {
	_, client, court := setupReservationTest(t)
	mux := newReservationMux()

	created := createReservation(t, mux, client, court, "")

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/reservations/%d", created.Reservation.ID), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp reservationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reservation.ID != created.Reservation.ID {
		t.Fatalf("expected reservation %d, got %d", created.Reservation.ID, resp.Reservation.ID)
	}
}

func TestReservationGet_Unknown(t *testing.T) {
	setupReservationTest(t)
	mux := newReservationMux()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/999", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestReservationUpdate_RepricesPendingPayment(t *testing.T) {
	_, client, court := setupReservationTest(t)
	mux := newReservationMux()

	created := createReservation(t, mux, client, court, "")

	body := fmt.Sprintf(
		`{"client_id": %d, "court_id": %d, "start_time": %q, "end_time": %q}`,
		client.ID, court.ID,
		tomorrowAt(10).Format("2006-01-02T15:04"),
		tomorrowAt(11).Format("2006-01-02T15:04"),
	)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/reservations/%d", created.Reservation.ID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp reservationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Payment.AmountCents != 500000 {
		t.Fatalf("expected repriced amount 500000, got %d", resp.Payment.AmountCents)
	}
}

func TestReservationUpdate_PaidAmountFrozen(t *testing.T) {
	q, client, court := setupReservationTest(t)
	mux := newReservationMux()

	created := createReservation(t, mux, client, court, "")
	if _, err := payments.MarkPaid(context.Background(), q, created.Reservation.ID, "", "", time.Now()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	body := fmt.Sprintf(
		`{"client_id": %d, "court_id": %d, "start_time": %q, "end_time": %q}`,
		client.ID, court.ID,
		tomorrowAt(10).Format("2006-01-02T15:04"),
		tomorrowAt(11).Format("2006-01-02T15:04"),
	)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/reservations/%d", created.Reservation.ID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp reservationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Payment.AmountCents != 1000000 {
		t.Fatalf("expected settled amount untouched, got %d", resp.Payment.AmountCents)
	}
}

func TestReservationCancel(t *testing.T) {
	q, client, court := setupReservationTest(t)
	mux := newReservationMux()

	created := createReservation(t, mux, client, court, "")
	if _, err := payments.MarkPaid(context.Background(), q, created.Reservation.ID, "", "", time.Now()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	rec := postJSON(t, mux, fmt.Sprintf("/api/v1/reservations/%d/cancel", created.Reservation.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp reservationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reservation.Status != store.ReservationCancelled {
		t.Fatalf("expected CANCELLED, got %s", resp.Reservation.Status)
	}
	if resp.Payment.Status != store.PaymentRefunded {
		t.Fatalf("expected REFUNDED payment, got %s", resp.Payment.Status)
	}
}

func TestReservationCancel_AlreadyCancelled(t *testing.T) {
	q, client, court := setupReservationTest(t)
	mux := newReservationMux()

	created := createReservation(t, mux, client, court, "")
	if _, err := payments.MarkPaid(context.Background(), q, created.Reservation.ID, "", "", time.Now()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	rec := postJSON(t, mux, fmt.Sprintf("/api/v1/reservations/%d/cancel", created.Reservation.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: status %d: %s", rec.Code, rec.Body.String())
	}

	// A second cancel is rejected and must not reopen the refund.
	rec = postJSON(t, mux, fmt.Sprintf("/api/v1/reservations/%d/cancel", created.Reservation.ID), "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for repeated cancel, got %d: %s", rec.Code, rec.Body.String())
	}

	payment, err := q.GetPayment(context.Background(), created.Reservation.ID)
	if err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if payment.Status != store.PaymentRefunded {
		t.Fatalf("payment should stay REFUNDED, got %s", payment.Status)
	}
}

func TestReservationCreate_TournamentLink(t *testing.T) {
	q, client, court := setupReservationTest(t)
	mux := newReservationMux()

	tournament, err := q.CreateTournament(context.Background(), store.CreateTournamentParams{
		Name:      "Spring Open",
		StartDate: tomorrowAt(0).AddDate(0, 1, 0),
		EndDate:   tomorrowAt(0).AddDate(0, 1, 7),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}

	body := fmt.Sprintf(
		`{"client_id": %d, "court_id": %d, "start_time": %q, "end_time": %q, "tournament_id": %d}`,
		client.ID, court.ID,
		tomorrowAt(10).Format("2006-01-02T15:04"),
		tomorrowAt(12).Format("2006-01-02T15:04"),
		tournament.ID,
	)
	rec := postJSON(t, mux, "/api/v1/reservations", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", rec.Code, rec.Body.String())
	}
	var resp reservationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Reservation.TournamentID.Valid || resp.Reservation.TournamentID.Int64 != tournament.ID {
		t.Fatalf("expected tournament link %d, got %+v", tournament.ID, resp.Reservation.TournamentID)
	}

	// Updating without a tournament_id clears the link.
	body = fmt.Sprintf(
		`{"client_id": %d, "court_id": %d, "start_time": %q, "end_time": %q}`,
		client.ID, court.ID,
		tomorrowAt(10).Format("2006-01-02T15:04"),
		tomorrowAt(12).Format("2006-01-02T15:04"),
	)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/reservations/%d", resp.Reservation.ID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reservation.TournamentID.Valid {
		t.Fatalf("expected tournament link cleared, got %+v", resp.Reservation.TournamentID)
	}
}

func TestReservationCreate_UnknownTournament(t *testing.T) {
	_, client, court := setupReservationTest(t)
	mux := newReservationMux()

	body := fmt.Sprintf(
		`{"client_id": %d, "court_id": %d, "start_time": %q, "end_time": %q, "tournament_id": 999}`,
		client.ID, court.ID,
		tomorrowAt(10).Format("2006-01-02T15:04"),
		tomorrowAt(12).Format("2006-01-02T15:04"),
	)
	rec := postJSON(t, mux, "/api/v1/reservations", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReservationCreate_TotalOverPaymentCap(t *testing.T) {
	q, client, court := setupReservationTest(t)
	mux := newReservationMux()

	// Two hours at this rate lands above the payment amount cap; the schema
	// CHECK must surface as a validation failure, not a server error.
	pricey, err := q.CreateCourt(context.Background(), store.CreateCourtParams{
		Name:             "Stadium",
		CourtTypeID:      court.CourtTypeID,
		HourlyPriceCents: 90000000,
		Capacity:         10,
	})
	if err != nil {
		t.Fatalf("create court: %v", err)
	}

	body := fmt.Sprintf(
		`{"client_id": %d, "court_id": %d, "start_time": %q, "end_time": %q}`,
		client.ID, pricey.ID,
		tomorrowAt(10).Format("2006-01-02T15:04"),
		tomorrowAt(12).Format("2006-01-02T15:04"),
	)
	rec := postJSON(t, mux, "/api/v1/reservations", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for amount over cap, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReservationUpdate_CancelledRejected(t *testing.T) {
	_, client, court := setupReservationTest(t)
	mux := newReservationMux()

	created := createReservation(t, mux, client, court, "")
	rec := postJSON(t, mux, fmt.Sprintf("/api/v1/reservations/%d/cancel", created.Reservation.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: status %d", rec.Code)
	}

	body := fmt.Sprintf(
		`{"client_id": %d, "court_id": %d, "start_time": %q, "end_time": %q}`,
		client.ID, court.ID,
		tomorrowAt(14).Format("2006-01-02T15:04"),
		tomorrowAt(15).Format("2006-01-02T15:04"),
	)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/reservations/%d", created.Reservation.ID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for cancelled edit, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReservationsList_StatusFilter(t *testing.T) {
	_, client, court := setupReservationTest(t)
	mux := newReservationMux()

	created := createReservation(t, mux, client, court, "")
	rec := postJSON(t, mux, fmt.Sprintf("/api/v1/reservations/%d/cancel", created.Reservation.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: status %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations?status=cancelled", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var listed []store.Reservation
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listed) != 1 || listed[0].Status != store.ReservationCancelled {
		t.Fatalf("expected one cancelled reservation, got %+v", listed)
	}
}
