package download

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/BotView/internal/metrics"
	"github.com/Alias1177/BotView/models"
)

// maxPollFailures is how many consecutive status errors mark a job as failed
const maxPollFailures = 5

// StatusClient fetches background job status
type StatusClient interface {
	BackgroundJob(ctx context.Context, jobID string) (*models.BackgroundTaskStatus, error)
}

// Listener receives every status change of a tracked job
type Listener func(status models.BackgroundTaskStatus)

// Tracker polls the bot for the jobs it was asked to follow
type Tracker struct {
	client   StatusClient
	interval time.Duration
	logger   zerolog.Logger

	mu        sync.RWMutex
	jobs      map[string]models.BackgroundTaskStatus
	failures  map[string]int
	listeners []Listener
	finishers []Listener
}

// NewTracker creates a tracker polling every interval
func NewTracker(client StatusClient, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Tracker{
		client:   client,
		interval: interval,
		logger:   log.With().Str("component", "job_tracker").Logger(),
		jobs:     make(map[string]models.BackgroundTaskStatus),
		failures: make(map[string]int),
	}
}

// OnUpdate registers a listener. Listeners run on the polling goroutine.
func (t *Tracker) OnUpdate(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

// OnFinished registers a listener that runs once per job, when it reaches a terminal state
func (t *Tracker) OnFinished(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finishers = append(t.finishers, l)
}

// Track starts following a job
func (t *Tracker) Track(jobID string, category string) {
	status := models.BackgroundTaskStatus{
		JobID:       jobID,
		JobCategory: category,
		Status:      models.JobStatusPending,
		Running:     true,
	}

	t.mu.Lock()
	t.jobs[jobID] = status
	metrics.RunningJobs.Set(float64(t.unfinishedLocked()))
	t.mu.Unlock()

	t.logger.Debug().Str("job_id", jobID).Msg("Tracking job")
	t.emit(status)
}

// RunningJobs returns a snapshot of all tracked jobs, finished ones included
func (t *Tracker) RunningJobs() map[string]models.BackgroundTaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]models.BackgroundTaskStatus, len(t.jobs))
	for id, s := range t.jobs {
		out[id] = s
	}
	return out
}

// Clear forgets every tracked job
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs = make(map[string]models.BackgroundTaskStatus)
	t.failures = make(map[string]int)
	metrics.RunningJobs.Set(0)
}

// Run polls until the context is cancelled
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.PollOnce(ctx)
		}
	}
}

// PollOnce refreshes every unfinished job once
func (t *Tracker) PollOnce(ctx context.Context) {
	for _, id := range t.pending() {
		status, err := t.client.BackgroundJob(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.recordFailure(id, err)
			continue
		}
		status.JobID = id
		t.update(*status)
	}
}

func (t *Tracker) pending() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var ids []string
	for id, s := range t.jobs {
		if !s.Finished() {
			ids = append(ids, id)
		}
	}
	return ids
}

func (t *Tracker) recordFailure(id string, err error) {
	t.mu.Lock()
	current, ok := t.jobs[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	t.failures[id]++
	failures := t.failures[id]
	t.mu.Unlock()

	t.logger.Warn().Err(err).Str("job_id", id).Int("failures", failures).Msg("Failed to poll job status")
	if failures < maxPollFailures {
		return
	}

	current.Status = models.JobStatusFailed
	current.Running = false
	current.Error = fmt.Sprintf("status unavailable after %d attempts: %v", failures, err)
	t.update(current)
}

func (t *Tracker) update(status models.BackgroundTaskStatus) {
	t.mu.Lock()
	previous, ok := t.jobs[status.JobID]
	if !ok {
		// cleared while the request was in flight
		t.mu.Unlock()
		return
	}
	if status.JobCategory == "" {
		status.JobCategory = previous.JobCategory
	}
	t.jobs[status.JobID] = status
	delete(t.failures, status.JobID)
	metrics.RunningJobs.Set(float64(t.unfinishedLocked()))
	t.mu.Unlock()

	t.emit(status)
	if status.Finished() && !previous.Finished() {
		metrics.DownloadJobs.WithLabelValues(status.Status).Inc()
		t.logger.Info().Str("job_id", status.JobID).Str("status", status.Status).Msg("Job finished")
		t.notify(&t.finishers, status)
	}
}

func (t *Tracker) emit(status models.BackgroundTaskStatus) {
	t.notify(&t.listeners, status)
}

func (t *Tracker) notify(registered *[]Listener, status models.BackgroundTaskStatus) {
	t.mu.RLock()
	listeners := make([]Listener, len(*registered))
	copy(listeners, *registered)
	t.mu.RUnlock()

	for _, l := range listeners {
		l(status)
	}
}

func (t *Tracker) unfinishedLocked() int {
	n := 0
	for _, s := range t.jobs {
		if !s.Finished() {
			n++
		}
	}
	return n
}

// TaskPercent is the completion of a sub-task in percent, rounded to two decimals
func TaskPercent(task models.ProgressTask) float64 {
	if task.Total == 0 {
		return 0
	}
	return math.Round(task.Progress/task.Total*100*100) / 100
}
