package store

import (
	"context"
)

type Service struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CostCents int64  `json:"cost_cents"`
	Active    bool   `json:"active"`
}

type CreateServiceParams struct {
	Name      string
	CostCents int64
}

func (q *Queries) CreateService(ctx context.Context, arg CreateServiceParams) (Service, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO services (name, cost_cents)
		VALUES (?, ?)
		RETURNING id, name, cost_cents, active`,
		arg.Name, arg.CostCents,
	)
	var s Service
	err := row.Scan(&s.ID, &s.Name, &s.CostCents, &s.Active)
	return s, wrapConstraint(err)
}

func (q *Queries) GetService(ctx context.Context, id int64) (Service, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, cost_cents, active FROM services WHERE id = ?`, id,
	)
	var s Service
	err := row.Scan(&s.ID, &s.Name, &s.CostCents, &s.Active)
	return s, err
}

func (q *Queries) ListServices(ctx context.Context) ([]Service, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, cost_cents, active FROM services ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Name, &s.CostCents, &s.Active); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

type UpdateServiceParams struct {
	ID        int64
	Name      string
	CostCents int64
	Active    bool
}

func (q *Queries) UpdateService(ctx context.Context, arg UpdateServiceParams) (Service, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE services
		SET name = ?, cost_cents = ?, active = ?
		WHERE id = ?
		RETURNING id, name, cost_cents, active`,
		arg.Name, arg.CostCents, arg.Active, arg.ID,
	)
	var s Service
	err := row.Scan(&s.ID, &s.Name, &s.CostCents, &s.Active)
	return s, wrapConstraint(err)
}

func (q *Queries) DeleteService(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type AddReservationServiceParams struct {
	ReservationID int64
	ServiceID     int64
}

func (q *Queries) AddReservationService(ctx context.Context, arg AddReservationServiceParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO reservation_services (reservation_id, service_id) VALUES (?, ?)`,
		arg.ReservationID, arg.ServiceID,
	)
	return wrapConstraint(err)
}

func (q *Queries) ClearReservationServices(ctx context.Context, reservationID int64) error {
	_, err := q.db.ExecContext(ctx, `
		DELETE FROM reservation_services WHERE reservation_id = ?`, reservationID,
	)
	return err
}

func (q *Queries) ListReservationServices(ctx context.Context, reservationID int64) ([]Service, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.cost_cents, s.active
		FROM services s
		JOIN reservation_services rs ON rs.service_id = s.id
		WHERE rs.reservation_id = ?
		ORDER BY s.name`, reservationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Name, &s.CostCents, &s.Active); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
