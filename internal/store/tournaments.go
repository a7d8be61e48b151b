package store

import (
	"context"
	"database/sql"
	"time"
)

// Tournament dates are stored as bare dates; times are zeroed.
type Tournament struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	FeeCents  int64     `json:"fee_cents"`
	Prize     string    `json:"prize"`
	Rules     string    `json:"rules"`
	Status    string    `json:"status"`
}

const tournamentColumns = `id, name, start_date, end_date, fee_cents, prize, rules, status`

const dateLayout = "2006-01-02"

func scanTournament(row *sql.Row) (Tournament, error) {
	var t Tournament
	var start, end string
	if err := row.Scan(&t.ID, &t.Name, &start, &end, &t.FeeCents, &t.Prize, &t.Rules, &t.Status); err != nil {
		return Tournament{}, err
	}
	return t.withDates(start, end)
}

func (t Tournament) withDates(start, end string) (Tournament, error) {
	var err error
	if t.StartDate, err = time.Parse(dateLayout, start); err != nil {
		return Tournament{}, err
	}
	if t.EndDate, err = time.Parse(dateLayout, end); err != nil {
		return Tournament{}, err
	}
	return t, nil
}

type CreateTournamentParams struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	FeeCents  int64
	Prize     string
	Rules     string
}

func (q *Queries) CreateTournament(ctx context.Context, arg CreateTournamentParams) (Tournament, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO tournaments (name, start_date, end_date, fee_cents, prize, rules)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+tournamentColumns,
		arg.Name, arg.StartDate.Format(dateLayout), arg.EndDate.Format(dateLayout), arg.FeeCents, arg.Prize, arg.Rules,
	)
	t, err := scanTournament(row)
	return t, wrapConstraint(err)
}

func (q *Queries) GetTournament(ctx context.Context, id int64) (Tournament, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+tournamentColumns+` FROM tournaments WHERE id = ?`, id,
	)
	return scanTournament(row)
}

func (q *Queries) ListTournaments(ctx context.Context) ([]Tournament, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+tournamentColumns+` FROM tournaments ORDER BY start_date DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tournaments []Tournament
	for rows.Next() {
		var t Tournament
		var start, end string
		if err := rows.Scan(&t.ID, &t.Name, &start, &end, &t.FeeCents, &t.Prize, &t.Rules, &t.Status); err != nil {
			return nil, err
		}
		if t, err = t.withDates(start, end); err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

type UpdateTournamentParams struct {
	ID        int64
	Name      string
	StartDate time.Time
	EndDate   time.Time
	FeeCents  int64
	Prize     string
	Rules     string
}

func (q *Queries) UpdateTournament(ctx context.Context, arg UpdateTournamentParams) (Tournament, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE tournaments
		SET name = ?, start_date = ?, end_date = ?, fee_cents = ?, prize = ?, rules = ?
		WHERE id = ?
		RETURNING `+tournamentColumns,
		arg.Name, arg.StartDate.Format(dateLayout), arg.EndDate.Format(dateLayout), arg.FeeCents, arg.Prize, arg.Rules, arg.ID,
	)
	t, err := scanTournament(row)
	return t, wrapConstraint(err)
}

type UpdateTournamentStatusParams struct {
	ID     int64
	Status string
}

func (q *Queries) UpdateTournamentStatus(ctx context.Context, arg UpdateTournamentStatusParams) (Tournament, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE tournaments SET status = ? WHERE id = ?
		RETURNING `+tournamentColumns,
		arg.Status, arg.ID,
	)
	return scanTournament(row)
}

func (q *Queries) DeleteTournament(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type EnrollTeamParams struct {
	TournamentID int64
	TeamID       int64
}

func (q *Queries) EnrollTeam(ctx context.Context, arg EnrollTeamParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO tournament_teams (tournament_id, team_id) VALUES (?, ?)`,
		arg.TournamentID, arg.TeamID,
	)
	return wrapConstraint(err)
}

func (q *Queries) WithdrawTeam(ctx context.Context, arg EnrollTeamParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, `
		DELETE FROM tournament_teams WHERE tournament_id = ? AND team_id = ?`,
		arg.TournamentID, arg.TeamID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (q *Queries) ListTournamentTeams(ctx context.Context, tournamentID int64) ([]Team, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.captain_id, t.logo, t.active
		FROM teams t
		JOIN tournament_teams tt ON tt.team_id = t.id
		WHERE tt.tournament_id = ?
		ORDER BY t.name`, tournamentID,
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

func (q *Queries) CountTournamentTeams(ctx context.Context, tournamentID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tournament_teams WHERE tournament_id = ?`, tournamentID,
	).Scan(&count)
	return count, err
}
