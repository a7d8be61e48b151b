// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/courtsidehq/courtside/internal/api"
	"github.com/courtsidehq/courtside/internal/api/clients"
	"github.com/courtsidehq/courtside/internal/api/courts"
	"github.com/courtsidehq/courtside/internal/api/courttypes"
	"github.com/courtsidehq/courtside/internal/api/dashboard"
	paymentsapi "github.com/courtsidehq/courtside/internal/api/payments"
	"github.com/courtsidehq/courtside/internal/api/reports"
	"github.com/courtsidehq/courtside/internal/api/reservations"
	"github.com/courtsidehq/courtside/internal/api/services"
	"github.com/courtsidehq/courtside/internal/api/teams"
	"github.com/courtsidehq/courtside/internal/api/tournaments"
	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/config"
	"github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/email"
	"github.com/courtsidehq/courtside/internal/payments/gateway"
	"github.com/courtsidehq/courtside/internal/ratelimit"
)

func newServer(cfg *config.Config, database *db.DB, sender email.EmailSender) (*http.Server, *ratelimit.Limiter, error) {
	policy, err := booking.PolicyFromConfig(cfg.Booking, cfg.App.Timezone)
	if err != nil {
		return nil, nil, err
	}

	var gw gateway.Gateway
	if cfg.Payments.GatewayURL != "" {
		gw = gateway.NewHTTPGateway(cfg.Payments.GatewayURL, cfg.Payments.Timeout)
	}

	q := database.Queries
	clients.InitHandlers(q)
	courttypes.InitHandlers(q)
	courts.InitHandlers(q)
	services.InitHandlers(q)
	teams.InitHandlers(q)
	tournaments.InitHandlers(q)
	reports.InitHandlers(q)
	dashboard.InitHandlers(q)
	reservations.InitHandlers(reservations.Deps{
		DB:           database,
		Policy:       policy,
		EmailSender:  sender,
		FacilityName: cfg.App.Name,
		Currency:     cfg.Payments.Currency,
	})
	paymentsapi.InitHandlers(paymentsapi.Deps{
		Queries:      q,
		Gateway:      gw,
		EmailSender:  sender,
		FacilityName: cfg.App.Name,
		Currency:     cfg.Payments.Currency,
	})

	router := http.NewServeMux()
	registerRoutes(router)

	limiterCfg := ratelimit.DefaultConfig()
	limiterCfg.TrustProxy = cfg.App.Environment != "development"
	limiter := ratelimit.New(limiterCfg)

	handler := api.ChainMiddleware(
		limiter.Middleware(router),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, limiter, nil
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /api/v1/dashboard", dashboard.HandleDashboard)

	mux.HandleFunc("GET /api/v1/clients", clients.HandleClientsList)
	mux.HandleFunc("POST /api/v1/clients", clients.HandleClientCreate)
	mux.HandleFunc("GET /api/v1/clients/{id}", clients.HandleClientGet)
	mux.HandleFunc("PUT /api/v1/clients/{id}", clients.HandleClientUpdate)
	mux.HandleFunc("DELETE /api/v1/clients/{id}", clients.HandleClientDelete)

	mux.HandleFunc("GET /api/v1/court-types", courttypes.HandleCourtTypesList)
	mux.HandleFunc("POST /api/v1/court-types", courttypes.HandleCourtTypeCreate)
	mux.HandleFunc("GET /api/v1/court-types/{id}", courttypes.HandleCourtTypeGet)

	mux.HandleFunc("GET /api/v1/courts", courts.HandleCourtsList)
	mux.HandleFunc("POST /api/v1/courts", courts.HandleCourtCreate)
	mux.HandleFunc("GET /api/v1/courts/{id}", courts.HandleCourtGet)
	mux.HandleFunc("PUT /api/v1/courts/{id}", courts.HandleCourtUpdate)
	mux.HandleFunc("DELETE /api/v1/courts/{id}", courts.HandleCourtDelete)

	mux.HandleFunc("GET /api/v1/services", services.HandleServicesList)
	mux.HandleFunc("POST /api/v1/services", services.HandleServiceCreate)
	mux.HandleFunc("PUT /api/v1/services/{id}", services.HandleServiceUpdate)
	mux.HandleFunc("DELETE /api/v1/services/{id}", services.HandleServiceDelete)

	mux.HandleFunc("GET /api/v1/reservations", reservations.HandleReservationsList)
	mux.HandleFunc("POST /api/v1/reservations", reservations.HandleReservationCreate)
	mux.HandleFunc("GET /api/v1/reservations/{id}", reservations.HandleReservationGet)
	mux.HandleFunc("PUT /api/v1/reservations/{id}", reservations.HandleReservationUpdate)
	mux.HandleFunc("POST /api/v1/reservations/{id}/cancel", reservations.HandleReservationCancel)

	mux.HandleFunc("GET /api/v1/reservations/{id}/payment", paymentsapi.HandlePaymentGet)
	mux.HandleFunc("POST /api/v1/reservations/{id}/payment/paid", paymentsapi.HandleMarkPaid)
	mux.HandleFunc("POST /api/v1/reservations/{id}/payment/checkout", paymentsapi.HandleCheckoutCreate)
	mux.HandleFunc("POST /api/v1/payments/webhook", paymentsapi.HandleGatewayWebhook)

	mux.HandleFunc("GET /api/v1/teams", teams.HandleTeamsList)
	mux.HandleFunc("POST /api/v1/teams", teams.HandleTeamCreate)
	mux.HandleFunc("GET /api/v1/teams/{id}", teams.HandleTeamGet)
	mux.HandleFunc("PUT /api/v1/teams/{id}", teams.HandleTeamUpdate)
	mux.HandleFunc("DELETE /api/v1/teams/{id}", teams.HandleTeamDelete)
	mux.HandleFunc("GET /api/v1/teams/{id}/players", teams.HandleTeamPlayersList)
	mux.HandleFunc("POST /api/v1/teams/{id}/players", teams.HandleTeamPlayerAdd)
	mux.HandleFunc("DELETE /api/v1/teams/{id}/players/{client_id}", teams.HandleTeamPlayerRemove)

	mux.HandleFunc("GET /api/v1/tournaments", tournaments.HandleTournamentsList)
	mux.HandleFunc("POST /api/v1/tournaments", tournaments.HandleTournamentCreate)
	mux.HandleFunc("GET /api/v1/tournaments/{id}", tournaments.HandleTournamentGet)
	mux.HandleFunc("PUT /api/v1/tournaments/{id}", tournaments.HandleTournamentUpdate)
	mux.HandleFunc("DELETE /api/v1/tournaments/{id}", tournaments.HandleTournamentDelete)
	mux.HandleFunc("GET /api/v1/tournaments/{id}/teams", tournaments.HandleTournamentTeamsList)
	mux.HandleFunc("POST /api/v1/tournaments/{id}/teams", tournaments.HandleTeamEnroll)
	mux.HandleFunc("DELETE /api/v1/tournaments/{id}/teams/{team_id}", tournaments.HandleTeamWithdraw)
	mux.HandleFunc("POST /api/v1/tournaments/{id}/bracket", tournaments.HandleBracketGenerate)
	mux.HandleFunc("GET /api/v1/tournaments/{id}/matches", tournaments.HandleMatchesList)
	mux.HandleFunc("POST /api/v1/matches/{id}/result", tournaments.HandleMatchResult)
	mux.HandleFunc("POST /api/v1/matches/{id}/walkover", tournaments.HandleMatchWalkover)
	mux.HandleFunc("POST /api/v1/matches/{id}/advance", tournaments.HandleMatchAdvance)

	mux.HandleFunc("GET /api/v1/reports/revenue", reports.HandleRevenueReport)
	mux.HandleFunc("GET /api/v1/reports/activity", reports.HandleActivityReport)
}
