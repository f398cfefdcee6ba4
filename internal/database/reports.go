package database

import "database/sql"

// SaveReport stores a rendered report and returns its ID.
func (db *DB) SaveReport(runID *int64, reportJSON, reportMarkdown string, caseCount int) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO reports (run_id, report_json, report_markdown, case_count)
		VALUES (?, ?, ?, ?)`,
		runID, reportJSON, reportMarkdown, caseCount,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetReport returns a stored report by ID, or nil if it does not exist.
func (db *DB) GetReport(id int64) (*StoredReport, error) {
	row := db.conn.QueryRow(
		`SELECT id, run_id, report_json, report_markdown, case_count, generated_at
		FROM reports WHERE id = ?`, id,
	)
	return scanReport(row)
}

// GetLatestReport returns the most recently generated report, or nil if
// none exist.
func (db *DB) GetLatestReport() (*StoredReport, error) {
	row := db.conn.QueryRow(
		`SELECT id, run_id, report_json, report_markdown, case_count, generated_at
		FROM reports ORDER BY id DESC LIMIT 1`,
	)
	return scanReport(row)
}

// GetAllReports returns all stored reports, newest first.
func (db *DB) GetAllReports() ([]StoredReport, error) {
	rows, err := db.conn.Query(
		`SELECT id, run_id, report_json, report_markdown, case_count, generated_at
		FROM reports ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []StoredReport
	for rows.Next() {
		var r StoredReport
		if err := rows.Scan(&r.ID, &r.RunID, &r.ReportJSON, &r.ReportMarkdown,
			&r.CaseCount, &r.GeneratedAt); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM cases", &s.TotalCases},
		{"SELECT COUNT(*) FROM cases WHERE state IS NOT NULL AND state != ''", &s.CasesWithState},
		{"SELECT COUNT(*) FROM cases WHERE details IS NOT NULL AND details != ''", &s.CasesWithDetail},
		{"SELECT COUNT(DISTINCT source) FROM cases", &s.DistinctSources},
		{"SELECT COUNT(*) FROM analysis_runs", &s.Runs},
		{"SELECT COUNT(*) FROM reports", &s.Reports},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func scanReport(row *sql.Row) (*StoredReport, error) {
	var r StoredReport
	if err := row.Scan(&r.ID, &r.RunID, &r.ReportJSON, &r.ReportMarkdown,
		&r.CaseCount, &r.GeneratedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}
