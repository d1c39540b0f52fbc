package notify

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/BotView/internal/download"
	"github.com/Alias1177/BotView/models"
)

type recordingSender struct {
	sent []tgbotapi.MessageConfig
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		r.sent = append(r.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

type scriptedStatus struct {
	responses []*models.BackgroundTaskStatus
}

func (s *scriptedStatus) BackgroundJob(_ context.Context, _ string) (*models.BackgroundTaskStatus, error) {
	next := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	copied := *next
	return &copied, nil
}

func TestTelegram_IgnoresUnfinishedJobs(t *testing.T) {
	sender := &recordingSender{}
	n := NewWithSender(sender, 42)

	n.JobFinished(models.BackgroundTaskStatus{JobID: "j1", Status: models.JobStatusRunning})
	assert.Empty(t, sender.sent)
}

func TestTelegram_OneMessagePerTrackedJob(t *testing.T) {
	sender := &recordingSender{}
	n := NewWithSender(sender, 42)

	tracker := download.NewTracker(&scriptedStatus{responses: []*models.BackgroundTaskStatus{
		{Status: models.JobStatusRunning, Running: true},
		{Status: models.JobStatusSuccess},
	}}, time.Second)
	tracker.OnFinished(n.JobFinished)

	tracker.Track("j1", models.JobCategoryDownloadData)
	for i := 0; i < 4; i++ {
		tracker.PollOnce(context.Background())
	}
	tracker.Clear()
	tracker.PollOnce(context.Background())

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(42), sender.sent[0].ChatID)
	assert.Equal(t, "Data download j1: success", sender.sent[0].Text)
}

func TestFormatJobMessage(t *testing.T) {
	text := FormatJobMessage(models.BackgroundTaskStatus{
		JobID:       "j2",
		JobCategory: "other",
		Status:      models.JobStatusFailed,
		Error:       "exchange unavailable",
		ProgressTasks: map[string]models.ProgressTask{
			"b": {Description: "Timeframes", Progress: 1, Total: 2},
			"a": {Description: "Pairs", Progress: 1, Total: 3},
		},
	})

	assert.Equal(t, "other j2: failed\nexchange unavailable\nPairs: 33.33%\nTimeframes: 50.00%", text)
}
