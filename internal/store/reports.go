package store

import (
	"context"
	"time"
)

type CourtRevenueRow struct {
	CourtID      int64  `json:"court_id"`
	CourtName    string `json:"court_name"`
	Reservations int64  `json:"reservations"`
	RevenueCents int64  `json:"revenue_cents"`
}

type MonthlyRevenueParams struct {
	From time.Time
	To   time.Time
}

// MonthlyRevenueByCourt sums paid payment amounts grouped by court for
// reservations starting in [from, to).
func (q *Queries) MonthlyRevenueByCourt(ctx context.Context, arg MonthlyRevenueParams) ([]CourtRevenueRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT c.id, c.name, COUNT(r.id), COALESCE(SUM(p.amount_cents), 0)
		FROM courts c
		JOIN reservations r ON r.court_id = c.id
		JOIN payments p ON p.reservation_id = r.id
		WHERE p.status = ?
		  AND r.start_time >= ?
		  AND r.start_time < ?
		GROUP BY c.id, c.name
		ORDER BY SUM(p.amount_cents) DESC`,
		PaymentPaid, arg.From.UTC(), arg.To.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CourtRevenueRow
	for rows.Next() {
		var row CourtRevenueRow
		if err := rows.Scan(&row.CourtID, &row.CourtName, &row.Reservations, &row.RevenueCents); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

type ClientActivityRow struct {
	ClientID     int64  `json:"client_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Reservations int64  `json:"reservations"`
	SpentCents   int64  `json:"spent_cents"`
}

// MonthlyActivityByClient counts reservations and sums paid amounts per
// client for reservations starting in [from, to). Cancelled rows are skipped.
func (q *Queries) MonthlyActivityByClient(ctx context.Context, arg MonthlyRevenueParams) ([]ClientActivityRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT cl.id, cl.first_name, cl.last_name, COUNT(r.id),
		       COALESCE(SUM(CASE WHEN p.status = ? THEN p.amount_cents ELSE 0 END), 0)
		FROM clients cl
		JOIN reservations r ON r.client_id = cl.id
		LEFT JOIN payments p ON p.reservation_id = r.id
		WHERE r.status != ?
		  AND r.start_time >= ?
		  AND r.start_time < ?
		GROUP BY cl.id, cl.first_name, cl.last_name
		ORDER BY COUNT(r.id) DESC`,
		PaymentPaid, ReservationCancelled, arg.From.UTC(), arg.To.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ClientActivityRow
	for rows.Next() {
		var row ClientActivityRow
		if err := rows.Scan(&row.ClientID, &row.FirstName, &row.LastName, &row.Reservations, &row.SpentCents); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
