package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/BotView/models"
)

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &DB{conn}, mock
}

func TestSaveJob(t *testing.T) {
	db, mock := newMock(t)
	days := 30

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO download_jobs")).
		WithArgs("job-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), models.JobStatusPending, 0.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	job, err := db.SaveJob(context.Background(), "job-1", models.DownloadRequest{
		Pairs:      []string{"BTC/USDT"},
		Timeframes: []string{"1h"},
		Days:       &days,
	})

	require.NoError(t, err)
	assert.Equal(t, "job-1", job.JobID)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateJobStatus(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE download_jobs")).
		WithArgs(models.JobStatusSuccess, 100.0, sqlmock.AnyArg(), "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE download_jobs")).
		WithArgs(models.JobStatusSuccess, 100.0, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.UpdateJobStatus(context.Background(), "job-1", models.JobStatusSuccess, 100))
	assert.ErrorIs(t, db.UpdateJobStatus(context.Background(), "missing", models.JobStatusSuccess, 100), ErrJobNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListJobs(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"job_id", "pairs", "timeframes", "request", "status", "progress", "created_at", "updated_at"}).
		AddRow("job-1", "{BTC/USDT,ETH/USDT}", "{5m}", []byte(`{"pairs":["BTC/USDT","ETH/USDT"],"timeframes":["5m"],"timerange":"20240101-"}`),
			models.JobStatusSuccess, 100.0, created, created)

	mock.ExpectQuery(regexp.QuoteMeta("FROM download_jobs")).WithArgs(10).WillReturnRows(rows)

	jobs, err := db.ListJobs(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, jobs[0].Pairs)
	assert.Equal(t, []string{"5m"}, jobs[0].Timeframes)
	assert.Equal(t, "20240101-", jobs[0].Request.Timerange)
	assert.NoError(t, mock.ExpectationsWereMet())
}
