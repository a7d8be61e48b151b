package store

import (
	"context"
)

type CourtType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateCourtTypeParams struct {
	Name        string
	Description string
}

func (q *Queries) CreateCourtType(ctx context.Context, arg CreateCourtTypeParams) (CourtType, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO court_types (name, description)
		VALUES (?, ?)
		RETURNING id, name, description`,
		arg.Name, arg.Description,
	)
	var ct CourtType
	err := row.Scan(&ct.ID, &ct.Name, &ct.Description)
	return ct, wrapConstraint(err)
}

func (q *Queries) GetCourtType(ctx context.Context, id int64) (CourtType, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, description FROM court_types WHERE id = ?`, id,
	)
	var ct CourtType
	err := row.Scan(&ct.ID, &ct.Name, &ct.Description)
	return ct, err
}

func (q *Queries) ListCourtTypes(ctx context.Context) ([]CourtType, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, description FROM court_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []CourtType
	for rows.Next() {
		var ct CourtType
		if err := rows.Scan(&ct.ID, &ct.Name, &ct.Description); err != nil {
			return nil, err
		}
		types = append(types, ct)
	}
	return types, rows.Err()
}

type Court struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	CourtTypeID      int64  `json:"court_type_id"`
	HourlyPriceCents int64  `json:"hourly_price_cents"`
	Capacity         int64  `json:"capacity"`
	Active           bool   `json:"active"`
}

type CreateCourtParams struct {
	Name             string
	CourtTypeID      int64
	HourlyPriceCents int64
	Capacity         int64
}

func (q *Queries) CreateCourt(ctx context.Context, arg CreateCourtParams) (Court, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO courts (name, court_type_id, hourly_price_cents, capacity)
		VALUES (?, ?, ?, ?)
		RETURNING id, name, court_type_id, hourly_price_cents, capacity, active`,
		arg.Name, arg.CourtTypeID, arg.HourlyPriceCents, arg.Capacity,
	)
	var c Court
	err := row.Scan(&c.ID, &c.Name, &c.CourtTypeID, &c.HourlyPriceCents, &c.Capacity, &c.Active)
	return c, wrapConstraint(err)
}

func (q *Queries) GetCourt(ctx context.Context, id int64) (Court, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, court_type_id, hourly_price_cents, capacity, active
		FROM courts WHERE id = ?`, id,
	)
	var c Court
	err := row.Scan(&c.ID, &c.Name, &c.CourtTypeID, &c.HourlyPriceCents, &c.Capacity, &c.Active)
	return c, err
}

func (q *Queries) ListCourts(ctx context.Context) ([]Court, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, court_type_id, hourly_price_cents, capacity, active
		FROM courts ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courts []Court
	for rows.Next() {
		var c Court
		if err := rows.Scan(&c.ID, &c.Name, &c.CourtTypeID, &c.HourlyPriceCents, &c.Capacity, &c.Active); err != nil {
			return nil, err
		}
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

type UpdateCourtParams struct {
	ID               int64
	Name             string
	CourtTypeID      int64
	HourlyPriceCents int64
	Capacity         int64
	Active           bool
}

func (q *Queries) UpdateCourt(ctx context.Context, arg UpdateCourtParams) (Court, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE courts
		SET name = ?, court_type_id = ?, hourly_price_cents = ?, capacity = ?, active = ?
		WHERE id = ?
		RETURNING id, name, court_type_id, hourly_price_cents, capacity, active`,
		arg.Name, arg.CourtTypeID, arg.HourlyPriceCents, arg.Capacity, arg.Active, arg.ID,
	)
	var c Court
	err := row.Scan(&c.ID, &c.Name, &c.CourtTypeID, &c.HourlyPriceCents, &c.Capacity, &c.Active)
	return c, wrapConstraint(err)
}

func (q *Queries) DeleteCourt(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM courts WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (q *Queries) CountCourts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courts`).Scan(&count)
	return count, err
}
