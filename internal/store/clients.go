package store

import (
	"context"
	"time"
)

type Client struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	NationalID string    `json:"national_id"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateClientParams struct {
	FirstName  string
	LastName   string
	NationalID string
	Email      string
	Phone      string
}

func (q *Queries) CreateClient(ctx context.Context, arg CreateClientParams) (Client, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO clients (first_name, last_name, national_id, email, phone)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, first_name, last_name, national_id, email, phone, active, created_at`,
		arg.FirstName, arg.LastName, arg.NationalID, arg.Email, arg.Phone,
	)
	var c Client
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.NationalID, &c.Email, &c.Phone, &c.Active, &c.CreatedAt)
	return c, wrapConstraint(err)
}

func (q *Queries) GetClient(ctx context.Context, id int64) (Client, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, national_id, email, phone, active, created_at
		FROM clients WHERE id = ?`, id,
	)
	var c Client
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.NationalID, &c.Email, &c.Phone, &c.Active, &c.CreatedAt)
	return c, err
}

func (q *Queries) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, national_id, email, phone, active, created_at
		FROM clients ORDER BY last_name, first_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.NationalID, &c.Email, &c.Phone, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

type UpdateClientParams struct {
	ID         int64
	FirstName  string
	LastName   string
	NationalID string
	Email      string
	Phone      string
	Active     bool
}

func (q *Queries) UpdateClient(ctx context.Context, arg UpdateClientParams) (Client, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE clients
		SET first_name = ?, last_name = ?, national_id = ?, email = ?, phone = ?, active = ?
		WHERE id = ?
		RETURNING id, first_name, last_name, national_id, email, phone, active, created_at`,
		arg.FirstName, arg.LastName, arg.NationalID, arg.Email, arg.Phone, arg.Active, arg.ID,
	)
	var c Client
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.NationalID, &c.Email, &c.Phone, &c.Active, &c.CreatedAt)
	return c, wrapConstraint(err)
}

func (q *Queries) DeleteClient(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (q *Queries) CountClients(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&count)
	return count, err
}
