// internal/api/dashboard/handlers.go
package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/api/apiutil"
	"github.com/courtsidehq/courtside/internal/store"
)

var (
	queries     *store.Queries
	queriesOnce sync.Once
)

const dashboardQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *store.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

type summary struct {
	Clients               int64 `json:"clients"`
	Courts                int64 `json:"courts"`
	PendingReservations   int64 `json:"pending_reservations"`
	PaidReservations      int64 `json:"paid_reservations"`
	CancelledReservations int64 `json:"cancelled_reservations"`
}

// GET /api/v1/dashboard
func HandleDashboard(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardQueryTimeout)
	defer cancel()

	var s summary
	var err error
	if s.Clients, err = q.CountClients(ctx); err != nil {
		apiutil.RespondError(w, r, err, "Failed to build dashboard summary")
		return
	}
	if s.Courts, err = q.CountCourts(ctx); err != nil {
		apiutil.RespondError(w, r, err, "Failed to build dashboard summary")
		return
	}
	if s.PendingReservations, err = q.CountReservationsByStatus(ctx, store.ReservationPending); err != nil {
		apiutil.RespondError(w, r, err, "Failed to build dashboard summary")
		return
	}
	if s.PaidReservations, err = q.CountReservationsByStatus(ctx, store.ReservationPaid); err != nil {
		apiutil.RespondError(w, r, err, "Failed to build dashboard summary")
		return
	}
	if s.CancelledReservations, err = q.CountReservationsByStatus(ctx, store.ReservationCancelled); err != nil {
		apiutil.RespondError(w, r, err, "Failed to build dashboard summary")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, s); err != nil {
		logger.Error().Err(err).Msg("Failed to write dashboard response")
	}
}

func loadQueries() *store.Queries {
	return queries
}
