package store

import (
	"context"
	"database/sql"
)

type Match struct {
	ID             int64         `json:"id"`
	TournamentID   int64         `json:"tournament_id"`
	Round          int64         `json:"round"`
	MatchNumber    int64         `json:"match_number"`
	Team1ID        sql.NullInt64 `json:"team1_id"`
	Team2ID        sql.NullInt64 `json:"team2_id"`
	Score1         sql.NullInt64 `json:"score1"`
	Score2         sql.NullInt64 `json:"score2"`
	WinnerID       sql.NullInt64 `json:"winner_id"`
	Status         string        `json:"status"`
	SourceMatch1ID sql.NullInt64 `json:"source_match1_id"`
	SourceMatch2ID sql.NullInt64 `json:"source_match2_id"`
}

const matchColumns = `id, tournament_id, round, match_number, team1_id, team2_id, score1, score2, winner_id, status, source_match1_id, source_match2_id`

func scanMatch(row *sql.Row) (Match, error) {
	var m Match
	err := row.Scan(&m.ID, &m.TournamentID, &m.Round, &m.MatchNumber, &m.Team1ID, &m.Team2ID,
		&m.Score1, &m.Score2, &m.WinnerID, &m.Status, &m.SourceMatch1ID, &m.SourceMatch2ID)
	return m, err
}

type CreateMatchParams struct {
	TournamentID   int64
	Round          int64
	MatchNumber    int64
	Team1ID        sql.NullInt64
	Team2ID        sql.NullInt64
	SourceMatch1ID sql.NullInt64
	SourceMatch2ID sql.NullInt64
}

func (q *Queries) CreateMatch(ctx context.Context, arg CreateMatchParams) (Match, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO matches (tournament_id, round, match_number, team1_id, team2_id, source_match1_id, source_match2_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+matchColumns,
		arg.TournamentID, arg.Round, arg.MatchNumber, arg.Team1ID, arg.Team2ID, arg.SourceMatch1ID, arg.SourceMatch2ID,
	)
	m, err := scanMatch(row)
	return m, wrapConstraint(err)
}

func (q *Queries) GetMatch(ctx context.Context, id int64) (Match, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+matchColumns+` FROM matches WHERE id = ?`, id,
	)
	return scanMatch(row)
}

type GetMatchBySlotParams struct {
	TournamentID int64
	Round        int64
	MatchNumber  int64
}

func (q *Queries) GetMatchBySlot(ctx context.Context, arg GetMatchBySlotParams) (Match, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE tournament_id = ? AND round = ? AND match_number = ?`,
		arg.TournamentID, arg.Round, arg.MatchNumber,
	)
	return scanMatch(row)
}

func (q *Queries) ListTournamentMatches(ctx context.Context, tournamentID int64) ([]Match, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE tournament_id = ?
		ORDER BY round, match_number`, tournamentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.TournamentID, &m.Round, &m.MatchNumber, &m.Team1ID, &m.Team2ID,
			&m.Score1, &m.Score2, &m.WinnerID, &m.Status, &m.SourceMatch1ID, &m.SourceMatch2ID); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

type UpdateMatchResultParams struct {
	ID       int64
	Score1   int64
	Score2   int64
	WinnerID int64
	Status   string
}

func (q *Queries) UpdateMatchResult(ctx context.Context, arg UpdateMatchResultParams) (Match, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE matches
		SET score1 = ?, score2 = ?, winner_id = ?, status = ?
		WHERE id = ?
		RETURNING `+matchColumns,
		arg.Score1, arg.Score2, arg.WinnerID, arg.Status, arg.ID,
	)
	return scanMatch(row)
}

type UpdateMatchWalkoverParams struct {
	ID       int64
	WinnerID int64
}

func (q *Queries) UpdateMatchWalkover(ctx context.Context, arg UpdateMatchWalkoverParams) (Match, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE matches
		SET score1 = NULL, score2 = NULL, winner_id = ?, status = ?
		WHERE id = ?
		RETURNING `+matchColumns,
		arg.WinnerID, MatchWalkover, arg.ID,
	)
	return scanMatch(row)
}

type UpdateMatchSlotsParams struct {
	ID             int64
	Team1ID        sql.NullInt64
	Team2ID        sql.NullInt64
	SourceMatch1ID sql.NullInt64
	SourceMatch2ID sql.NullInt64
}

func (q *Queries) UpdateMatchSlots(ctx context.Context, arg UpdateMatchSlotsParams) (Match, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE matches
		SET team1_id = ?, team2_id = ?, source_match1_id = ?, source_match2_id = ?
		WHERE id = ?
		RETURNING `+matchColumns,
		arg.Team1ID, arg.Team2ID, arg.SourceMatch1ID, arg.SourceMatch2ID, arg.ID,
	)
	return scanMatch(row)
}

func (q *Queries) DeleteTournamentMatches(ctx context.Context, tournamentID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = ?`, tournamentID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
