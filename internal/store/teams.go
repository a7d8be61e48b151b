package store

import (
	"context"
	"database/sql"
)

type Team struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	CaptainID sql.NullInt64 `json:"captain_id"`
	Logo      string        `json:"logo"`
	Active    bool          `json:"active"`
}

type CreateTeamParams struct {
	Name      string
	CaptainID sql.NullInt64
	Logo      string
}

func (q *Queries) CreateTeam(ctx context.Context, arg CreateTeamParams) (Team, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO teams (name, captain_id, logo)
		VALUES (?, ?, ?)
		RETURNING id, name, captain_id, logo, active`,
		arg.Name, arg.CaptainID, arg.Logo,
	)
	var t Team
	err := row.Scan(&t.ID, &t.Name, &t.CaptainID, &t.Logo, &t.Active)
	return t, wrapConstraint(err)
}

func (q *Queries) GetTeam(ctx context.Context, id int64) (Team, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, captain_id, logo, active FROM teams WHERE id = ?`, id,
	)
	var t Team
	err := row.Scan(&t.ID, &t.Name, &t.CaptainID, &t.Logo, &t.Active)
	return t, err
}

func (q *Queries) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, captain_id, logo, active FROM teams ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CaptainID, &t.Logo, &t.Active); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

type UpdateTeamParams struct {
	ID        int64
	Name      string
	CaptainID sql.NullInt64
	Logo      string
	Active    bool
}

func (q *Queries) UpdateTeam(ctx context.Context, arg UpdateTeamParams) (Team, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE teams
		SET name = ?, captain_id = ?, logo = ?, active = ?
		WHERE id = ?
		RETURNING id, name, captain_id, logo, active`,
		arg.Name, arg.CaptainID, arg.Logo, arg.Active, arg.ID,
	)
	var t Team
	err := row.Scan(&t.ID, &t.Name, &t.CaptainID, &t.Logo, &t.Active)
	return t, wrapConstraint(err)
}

func (q *Queries) DeleteTeam(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type TeamPlayerParams struct {
	TeamID   int64
	ClientID int64
}

func (q *Queries) AddTeamPlayer(ctx context.Context, arg TeamPlayerParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO team_players (team_id, client_id) VALUES (?, ?)`,
		arg.TeamID, arg.ClientID,
	)
	return wrapConstraint(err)
}

func (q *Queries) RemoveTeamPlayer(ctx context.Context, arg TeamPlayerParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, `
		DELETE FROM team_players WHERE team_id = ? AND client_id = ?`,
		arg.TeamID, arg.ClientID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (q *Queries) ListTeamPlayers(ctx context.Context, teamID int64) ([]Client, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT c.id, c.first_name, c.last_name, c.national_id, c.email, c.phone, c.active, c.created_at
		FROM clients c
		JOIN team_players tp ON tp.client_id = c.id
		WHERE tp.team_id = ?
		ORDER BY c.last_name, c.first_name`, teamID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.NationalID, &c.Email, &c.Phone, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		players = append(players, c)
	}
	return players, rows.Err()
}
