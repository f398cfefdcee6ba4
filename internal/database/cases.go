package database

import (
	"database/sql"
)

// InsertCase inserts a case. Returns true on success, false if the UID
// already exists.
func (db *DB) InsertCase(c *Case) (bool, error) {
	_, err := db.conn.Exec(
		`INSERT INTO cases (uid, title, description, category, published_date, removed_date, state, population_reference, url, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.UID, c.Title, c.Description, c.Category, c.PublishedDate, c.RemovedDate, c.State, c.PopulationRef, c.URL, c.Source,
	)
	if err != nil {
		// Duplicate UID constraint
		return false, nil //nolint: nilerr
	}
	return true, nil
}

// GetAllCases returns every stored case ordered by published date then UID,
// so downstream analysis sees a stable record order.
func (db *DB) GetAllCases() ([]Case, error) {
	rows, err := db.conn.Query(
		`SELECT uid, title, description, category, published_date, removed_date, state, population_reference, url, source, details, details_fetched, collected_at
		FROM cases ORDER BY published_date, uid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCases(rows)
}

// CountCases returns the number of stored cases.
func (db *DB) CountCases() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM cases").Scan(&count)
	return count, err
}

// GetCasesNeedingDetails returns cases without fetched detail text.
func (db *DB) GetCasesNeedingDetails(limit int) ([]Case, error) {
	query := `SELECT uid, title, description, category, published_date, removed_date, state, population_reference, url, source, details, details_fetched, collected_at
		FROM cases WHERE url IS NOT NULL AND url != ''
		AND (details IS NULL OR details = '') AND details_fetched = 0
		ORDER BY published_date, uid`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCases(rows)
}

// UpdateCaseDetails stores fetched detail text for a case.
func (db *DB) UpdateCaseDetails(uid string, details *string) error {
	_, err := db.conn.Exec(
		"UPDATE cases SET details = ?, details_fetched = 1 WHERE uid = ?",
		details, uid,
	)
	return err
}

// MarkCaseDetailsAttempted marks that a detail fetch was tried.
func (db *DB) MarkCaseDetailsAttempted(uid string) error {
	_, err := db.conn.Exec(
		"UPDATE cases SET details_fetched = 1 WHERE uid = ?", uid,
	)
	return err
}

// GetCaseByUID returns a single case, or nil if it does not exist.
func (db *DB) GetCaseByUID(uid string) (*Case, error) {
	row := db.conn.QueryRow(
		`SELECT uid, title, description, category, published_date, removed_date, state, population_reference, url, source, details, details_fetched, collected_at
		FROM cases WHERE uid = ?`, uid,
	)
	c, err := scanCase(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func scanCases(rows *sql.Rows) ([]Case, error) {
	var cases []Case
	for rows.Next() {
		var c Case
		var fetched int
		if err := rows.Scan(&c.UID, &c.Title, &c.Description, &c.Category, &c.PublishedDate,
			&c.RemovedDate, &c.State, &c.PopulationRef, &c.URL, &c.Source, &c.Details, &fetched, &c.CollectedAt); err != nil {
			return nil, err
		}
		c.DetailsFetched = fetched != 0
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

func scanCase(row *sql.Row) (*Case, error) {
	var c Case
	var fetched int
	if err := row.Scan(&c.UID, &c.Title, &c.Description, &c.Category, &c.PublishedDate,
		&c.RemovedDate, &c.State, &c.PopulationRef, &c.URL, &c.Source, &c.Details, &fetched, &c.CollectedAt); err != nil {
		return nil, err
	}
	c.DetailsFetched = fetched != 0
	return &c, nil
}
