// internal/api/reports/handlers.go
package reports

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

const reportQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *store.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

type revenueReport struct {
	Month      string                 `json:"month"`
	Courts     []store.CourtRevenueRow `json:"courts"`
	TotalCents int64                  `json:"total_cents"`
}

type activityReport struct {
	Month   string                   `json:"month"`
	Clients []store.ClientActivityRow `json:"clients"`
}

// GET /api/v1/reports/revenue?month=YYYY-MM
func HandleRevenueReport(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	month, err := apiutil.ParseMonthField(r.URL.Query().Get("month"), "month")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reportQueryTimeout)
	defer cancel()

	courts, err := q.MonthlyRevenueByCourt(ctx, store.MonthlyRevenueParams{
		From: month,
		To:   month.AddDate(0, 1, 0),
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to build revenue report")
		return
	}
	if courts == nil {
		courts = []store.CourtRevenueRow{}
	}

	var total int64
	for _, c := range courts {
		total += c.RevenueCents
	}

	report := revenueReport{
		Month:      month.Format("2006-01"),
		Courts:     courts,
		TotalCents: total,
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, report); err != nil {
		logger.Error().Err(err).Str("month", report.Month).Msg("Failed to write revenue report response")
	}
}

// GET /api/v1/reports/activity?month=YYYY-MM
func HandleActivityReport(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	month, err := apiutil.ParseMonthField(r.URL.Query().Get("month"), "month")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reportQueryTimeout)
	defer cancel()

	clients, err := q.MonthlyActivityByClient(ctx, store.MonthlyRevenueParams{
		From: month,
		To:   month.AddDate(0, 1, 0),
	})
	if err != nil {
		apiutil.RespondError(w, r, err, "Failed to build activity report")
		return
	}
	if clients == nil {
		clients = []store.ClientActivityRow{}
	}

	report := activityReport{
		Month:   month.Format("2006-01"),
		Clients: clients,
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, report); err != nil {
		logger.Error().Err(err).Str("month", report.Month).Msg("Failed to write activity report response")
	}
}

func loadQueries() *store.Queries {
	return queries
}
