package store

import (
	"context"
	"database/sql"
)

// Payment is the 1:1 financial record for a reservation; the reservation ID
// is its identity and the row is cascade-deleted with it.
type Payment struct {
	ReservationID int64          `json:"reservation_id"`
	AmountCents   int64          `json:"amount_cents"`
	Status        string         `json:"status"`
	Method        sql.NullString `json:"method"`
	PaidAt        sql.NullTime   `json:"paid_at"`
	Receipt       sql.NullString `json:"receipt"`
}

const paymentColumns = `reservation_id, amount_cents, status, method, paid_at, receipt`

func scanPayment(row *sql.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ReservationID, &p.AmountCents, &p.Status, &p.Method, &p.PaidAt, &p.Receipt)
	return p, err
}

type CreatePaymentParams struct {
	ReservationID int64
	AmountCents   int64
	Status        string
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO payments (reservation_id, amount_cents, status)
		VALUES (?, ?, ?)
		RETURNING `+paymentColumns,
		arg.ReservationID, arg.AmountCents, arg.Status,
	)
	p, err := scanPayment(row)
	return p, wrapConstraint(err)
}

func (q *Queries) GetPayment(ctx context.Context, reservationID int64) (Payment, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE reservation_id = ?`, reservationID,
	)
	return scanPayment(row)
}

type UpdatePaymentParams struct {
	ReservationID int64
	AmountCents   int64
	Status        string
	Method        sql.NullString
	PaidAt        sql.NullTime
	Receipt       sql.NullString
}

func (q *Queries) UpdatePayment(ctx context.Context, arg UpdatePaymentParams) (Payment, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE payments
		SET amount_cents = ?, status = ?, method = ?, paid_at = ?, receipt = ?
		WHERE reservation_id = ?
		RETURNING `+paymentColumns,
		arg.AmountCents, arg.Status, arg.Method, arg.PaidAt, arg.Receipt, arg.ReservationID,
	)
	return scanPayment(row)
}

func (q *Queries) UpdatePaymentAmount(ctx context.Context, reservationID, amountCents int64) (Payment, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE payments SET amount_cents = ? WHERE reservation_id = ?
		RETURNING `+paymentColumns,
		amountCents, reservationID,
	)
	return scanPayment(row)
}
