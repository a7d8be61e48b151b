package store

import (
	"context"
	"database/sql"
	"time"
)

type Reservation struct {
	ID           int64         `json:"id"`
	ClientID     int64         `json:"client_id"`
	CourtID      int64         `json:"court_id"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Status       string        `json:"status"`
	TournamentID sql.NullInt64 `json:"tournament_id"`
	Notes        string        `json:"notes"`
	CreatedAt    time.Time     `json:"created_at"`
}

const reservationColumns = `id, client_id, court_id, start_time, end_time, status, tournament_id, notes, created_at`

func scanReservation(row *sql.Row) (Reservation, error) {
	var r Reservation
	err := row.Scan(&r.ID, &r.ClientID, &r.CourtID, &r.StartTime, &r.EndTime, &r.Status, &r.TournamentID, &r.Notes, &r.CreatedAt)
	return r, err
}

type CreateReservationParams struct {
	ClientID     int64
	CourtID      int64
	StartTime    time.Time
	EndTime      time.Time
	Status       string
	TournamentID sql.NullInt64
	Notes        string
}

func (q *Queries) CreateReservation(ctx context.Context, arg CreateReservationParams) (Reservation, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO reservations (client_id, court_id, start_time, end_time, status, tournament_id, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+reservationColumns,
		arg.ClientID, arg.CourtID, arg.StartTime.UTC(), arg.EndTime.UTC(), arg.Status, arg.TournamentID, arg.Notes,
	)
	r, err := scanReservation(row)
	return r, wrapConstraint(err)
}

func (q *Queries) GetReservation(ctx context.Context, id int64) (Reservation, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id,
	)
	return scanReservation(row)
}

type ListReservationsParams struct {
	Status   string
	ClientID int64
	CourtID  int64
}

// ListReservations returns reservations newest-first, optionally filtered by
// status, client, or court (zero values disable a filter).
func (q *Queries) ListReservations(ctx context.Context, arg ListReservationsParams) ([]Reservation, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE (? = '' OR status = ?)
		  AND (? = 0 OR client_id = ?)
		  AND (? = 0 OR court_id = ?)
		ORDER BY start_time DESC`,
		arg.Status, arg.Status, arg.ClientID, arg.ClientID, arg.CourtID, arg.CourtID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		var r Reservation
		if err := rows.Scan(&r.ID, &r.ClientID, &r.CourtID, &r.StartTime, &r.EndTime, &r.Status, &r.TournamentID, &r.Notes, &r.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

type UpdateReservationParams struct {
	ID           int64
	ClientID     int64
	CourtID      int64
	StartTime    time.Time
	EndTime      time.Time
	Status       string
	TournamentID sql.NullInt64
	Notes        string
}

func (q *Queries) UpdateReservation(ctx context.Context, arg UpdateReservationParams) (Reservation, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE reservations
		SET client_id = ?, court_id = ?, start_time = ?, end_time = ?, status = ?, tournament_id = ?, notes = ?
		WHERE id = ?
		RETURNING `+reservationColumns,
		arg.ClientID, arg.CourtID, arg.StartTime.UTC(), arg.EndTime.UTC(), arg.Status, arg.TournamentID, arg.Notes, arg.ID,
	)
	r, err := scanReservation(row)
	return r, wrapConstraint(err)
}

type UpdateReservationStatusParams struct {
	ID     int64
	Status string
}

func (q *Queries) UpdateReservationStatus(ctx context.Context, arg UpdateReservationStatusParams) (Reservation, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE reservations SET status = ? WHERE id = ?
		RETURNING `+reservationColumns,
		arg.Status, arg.ID,
	)
	return scanReservation(row)
}

func (q *Queries) DeleteReservation(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type CountOverlappingReservationsParams struct {
	CourtID   int64
	ExcludeID int64
	StartTime time.Time
	EndTime   time.Time
}

// CountOverlappingReservations counts non-cancelled reservations on the court
// whose [start, end) interval intersects the given one. The reservation being
// edited is excluded by its own identity.
func (q *Queries) CountOverlappingReservations(ctx context.Context, arg CountOverlappingReservationsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM reservations
		WHERE court_id = ?
		  AND id != ?
		  AND status != ?
		  AND start_time < ?
		  AND end_time > ?`,
		arg.CourtID, arg.ExcludeID, ReservationCancelled, arg.EndTime.UTC(), arg.StartTime.UTC(),
	).Scan(&count)
	return count, err
}

type CountClientReservationsStartingBetweenParams struct {
	ClientID  int64
	ExcludeID int64
	From      time.Time
	To        time.Time
}

// CountClientReservationsStartingBetween counts the client's PENDING/PAID
// reservations whose start falls in [from, to).
func (q *Queries) CountClientReservationsStartingBetween(ctx context.Context, arg CountClientReservationsStartingBetweenParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM reservations
		WHERE client_id = ?
		  AND id != ?
		  AND status IN (?, ?)
		  AND start_time >= ?
		  AND start_time < ?`,
		arg.ClientID, arg.ExcludeID, ReservationPending, ReservationPaid, arg.From.UTC(), arg.To.UTC(),
	).Scan(&count)
	return count, err
}

type ListUnpaidReservationsStartingBetweenParams struct {
	From time.Time
	To   time.Time
}

// ListUnpaidReservationsStartingBetween returns PENDING reservations whose
// start falls in [from, to), oldest first. Used by the payment reminder job.
func (q *Queries) ListUnpaidReservationsStartingBetween(ctx context.Context, arg ListUnpaidReservationsStartingBetweenParams) ([]Reservation, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE status = ?
		  AND start_time >= ?
		  AND start_time < ?
		ORDER BY start_time`,
		ReservationPending, arg.From.UTC(), arg.To.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		var r Reservation
		if err := rows.Scan(&r.ID, &r.ClientID, &r.CourtID, &r.StartTime, &r.EndTime, &r.Status, &r.TournamentID, &r.Notes, &r.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

func (q *Queries) CountReservationsByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservations WHERE status = ?`, status,
	).Scan(&count)
	return count, err
}
