package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Alias1177/BotView/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	// Create PostgreSQL connection string
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	wrapped := &DB{db}
	if err := wrapped.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return wrapped, nil
}

// createTables creates the necessary tables if they don't exist
func (db *DB) createTables(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS download_jobs (
			job_id TEXT PRIMARY KEY,
			pairs TEXT[] NOT NULL,
			timeframes TEXT[] NOT NULL,
			request JSONB NOT NULL,
			status TEXT NOT NULL,
			progress DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// SaveJob records a freshly submitted download
func (db *DB) SaveJob(ctx context.Context, jobID string, req models.DownloadRequest) (*models.DownloadJob, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	now := time.Now().UTC()
	job := &models.DownloadJob{
		JobID:      jobID,
		Pairs:      req.Pairs,
		Timeframes: req.Timeframes,
		Request:    req,
		Status:     models.JobStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO download_jobs (
			job_id, pairs, timeframes, request, status, progress, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (job_id)
		DO UPDATE SET
			request = EXCLUDED.request,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`,
		job.JobID, pq.Array(job.Pairs), pq.Array(job.Timeframes), payload, job.Status, job.Progress, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return job, nil
}

// UpdateJobStatus stores the latest status and progress of a job
func (db *DB) UpdateJobStatus(ctx context.Context, jobID, status string, progress float64) error {
	res, err := db.ExecContext(ctx, `
		UPDATE download_jobs
		SET status = $1, progress = $2, updated_at = $3
		WHERE job_id = $4
	`, status, progress, time.Now().UTC(), jobID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}

// ErrJobNotFound is returned when updating a job that was never saved
var ErrJobNotFound = errors.New("download job not found")

// ListJobs returns the most recent jobs first
func (db *DB) ListJobs(ctx context.Context, limit int) ([]models.DownloadJob, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.QueryContext(ctx, `
		SELECT job_id, pairs, timeframes, request, status, progress, created_at, updated_at
		FROM download_jobs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []models.DownloadJob
	for rows.Next() {
		var job models.DownloadJob
		var payload []byte
		if err := rows.Scan(
			&job.JobID, pq.Array(&job.Pairs), pq.Array(&job.Timeframes), &payload,
			&job.Status, &job.Progress, &job.CreatedAt, &job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &job.Request); err != nil {
			return nil, fmt.Errorf("decoding request of job %s: %w", job.JobID, err)
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}
