package database

import "database/sql"

// InsertRun records the start of an analysis run and returns its ID.
func (db *DB) InsertRun() (int64, error) {
	result, err := db.conn.Exec(
		"INSERT INTO analysis_runs (status) VALUES ('running')",
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// FinishRun marks a run completed or failed. runErr is stored when non-nil.
func (db *DB) FinishRun(runID int64, caseCount, excludedCount int, runErr error) error {
	status := "completed"
	var errText *string
	if runErr != nil {
		status = "failed"
		msg := runErr.Error()
		errText = &msg
	}
	_, err := db.conn.Exec(
		`UPDATE analysis_runs
		SET finished_at = datetime('now'), status = ?, case_count = ?, excluded_count = ?, error = ?
		WHERE id = ?`,
		status, caseCount, excludedCount, errText, runID,
	)
	return err
}

// GetLastRun returns the most recent run, or nil if none exist.
func (db *DB) GetLastRun() (*Run, error) {
	row := db.conn.QueryRow(
		`SELECT id, started_at, finished_at, status, case_count, excluded_count, error
		FROM analysis_runs ORDER BY id DESC LIMIT 1`,
	)

	var r Run
	if err := row.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status,
		&r.CaseCount, &r.ExcludedCount, &r.Error); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}
