package db

import (
	"database/sql"
	"fmt"
	"time"
)

type Build struct {
	ID           int64
	SourcePath   string
	OutputPath   string
	FormID       string
	Version      string
	SurveyRows   int
	ChoiceRows   int
	LintErrors   int
	LintWarnings int
	CompiledAt   time.Time
}

// RecordBuild inserts b and returns its id.
func RecordBuild(sqlDB *sql.DB, b Build) (int64, error) {
	res, err := sqlDB.Exec(`
		INSERT INTO builds (source_path, output_path, form_id, version,
			survey_rows, choice_rows, lint_errors, lint_warnings, compiled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.SourcePath, b.OutputPath, b.FormID, b.Version,
		b.SurveyRows, b.ChoiceRows, b.LintErrors, b.LintWarnings,
		b.CompiledAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting build: %w", err)
	}
	return res.LastInsertId()
}

// ListBuilds returns recorded builds, newest first. An empty formID lists
// every form.
func ListBuilds(sqlDB *sql.DB, formID string) ([]Build, error) {
	rows, err := sqlDB.Query(`
		SELECT id, source_path, output_path, form_id, version,
			survey_rows, choice_rows, lint_errors, lint_warnings, compiled_at
		FROM builds
		WHERE ? = '' OR form_id = ?
		ORDER BY compiled_at DESC, id DESC
	`, formID, formID)
	if err != nil {
		return nil, fmt.Errorf("querying builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		var b Build
		var compiledAt string
		if err := rows.Scan(&b.ID, &b.SourcePath, &b.OutputPath, &b.FormID, &b.Version,
			&b.SurveyRows, &b.ChoiceRows, &b.LintErrors, &b.LintWarnings, &compiledAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if b.CompiledAt, err = time.Parse(time.RFC3339, compiledAt); err != nil {
			return nil, fmt.Errorf("build %d: %w", b.ID, err)
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return builds, nil
}
