package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/survey-scoring-server/internal/domain"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store persists survey results in a SQLite database. Response payloads
// and component subscores are serialized as JSON columns.
type Store struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewStore opens (or creates) the SQLite database at path and applies
// pending migrations.
func NewStore(path string, logger *logrus.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite allows a single writer; WAL keeps readers unblocked while
	// submissions are written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring database: %w", err)
	}

	if err := runMigrations(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.WithField("path", path).Info("Survey result store ready")

	return &Store{db: db, log: logger}, nil
}

func runMigrations(db *sql.DB, logger *logrus.Logger) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("loading migration source: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migration instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			logger.Debug("No pending migrations to run")
			return nil
		}
		return fmt.Errorf("running migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		logger.WithError(err).Warn("Could not get migration version after up")
	} else {
		logger.WithFields(logrus.Fields{
			"version": version,
			"dirty":   dirty,
		}).Info("Migrations completed successfully")
	}

	return nil
}

// Save inserts a survey result, assigning its ID and timestamps.
func (s *Store) Save(ctx context.Context, result *domain.SurveyResult) error {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	result.CreatedAt = now
	result.UpdatedAt = now

	responses, err := json.Marshal(result.Responses)
	if err != nil {
		return fmt.Errorf("encoding responses: %w", err)
	}
	subscores, err := json.Marshal(result.Subscores)
	if err != nil {
		return fmt.Errorf("encoding subscores: %w", err)
	}

	query := `
		INSERT INTO survey_results (
			id, patient_id, survey_type, responses, score, subscores,
			interpretation, category, summary, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		result.ID,
		result.PatientID,
		result.SurveyType,
		string(responses),
		result.Score,
		string(subscores),
		result.Interpretation,
		result.Category,
		result.Summary,
		result.CreatedAt,
		result.UpdatedAt,
	)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"result_id":   result.ID,
			"patient_id":  result.PatientID,
			"survey_type": result.SurveyType,
			"error":       err,
		}).Error("Failed to save survey result")
		return fmt.Errorf("saving survey result: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"result_id":   result.ID,
		"patient_id":  result.PatientID,
		"survey_type": result.SurveyType,
	}).Info("Survey result saved")

	return nil
}

const surveyResultColumns = `
	id, patient_id, survey_type, responses, score, subscores,
	interpretation, category, summary, created_at, updated_at`

// GetByID retrieves a single survey result.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.SurveyResult, error) {
	query := `SELECT` + surveyResultColumns + `
		FROM survey_results WHERE id = ?`

	result, err := scanSurveyResult(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("survey result not found: %w", domain.ErrNotFound)
		}
		s.log.WithFields(logrus.Fields{
			"result_id": id,
			"error":     err,
		}).Error("Failed to get survey result")
		return nil, fmt.Errorf("getting survey result: %w", err)
	}
	return result, nil
}

// ListByPatient retrieves a patient's survey results, newest first.
func (s *Store) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*domain.SurveyResult, error) {
	query := `SELECT` + surveyResultColumns + `
		FROM survey_results
		WHERE patient_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, patientID, limit, offset)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"patient_id": patientID,
			"error":      err,
		}).Error("Failed to list survey results")
		return nil, fmt.Errorf("listing survey results: %w", err)
	}
	defer rows.Close()

	var results []*domain.SurveyResult
	for rows.Next() {
		result, err := scanSurveyResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning survey result row: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating survey result rows: %w", err)
	}
	return results, nil
}

// Count returns the number of stored survey results.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM survey_results`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting survey results: %w", err)
	}
	return count, nil
}

// Delete removes a survey result.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM survey_results WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting survey result: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting survey result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("survey result not found: %w", domain.ErrNotFound)
	}

	s.log.WithField("result_id", id).Info("Survey result deleted")
	return nil
}

// DB exposes the underlying connection for read-only analytics queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Health checks the database connection.
func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.log.Info("Survey result store closed")
	return s.db.Close()
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanSurveyResult(row scanner) (*domain.SurveyResult, error) {
	var (
		result    domain.SurveyResult
		responses string
		subscores sql.NullString
		score     sql.NullInt64
	)

	err := row.Scan(
		&result.ID,
		&result.PatientID,
		&result.SurveyType,
		&responses,
		&score,
		&subscores,
		&result.Interpretation,
		&result.Category,
		&result.Summary,
		&result.CreatedAt,
		&result.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(responses), &result.Responses); err != nil {
		return nil, fmt.Errorf("decoding responses: %w", err)
	}
	if subscores.Valid && subscores.String != "" && subscores.String != "null" {
		if err := json.Unmarshal([]byte(subscores.String), &result.Subscores); err != nil {
			return nil, fmt.Errorf("decoding subscores: %w", err)
		}
	}
	if score.Valid {
		value := int(score.Int64)
		result.Score = &value
	}

	return &result, nil
}
