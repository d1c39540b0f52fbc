// Package notify sends job completion messages to a Telegram chat.
package notify

import (
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/BotView/internal/download"
	"github.com/Alias1177/BotView/models"
)

// Sender is the part of the Telegram bot API the notifier uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts job results to a chat. Register JobFinished with Tracker.OnFinished
// to get one message per job.
type Telegram struct {
	bot    Sender
	chatID int64
	logger zerolog.Logger
}

// NewTelegram authorizes the bot token
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}
	n := NewWithSender(bot, chatID)
	n.logger.Info().Str("username", bot.Self.UserName).Msg("Authorized on Telegram")
	return n, nil
}

// NewWithSender builds a notifier around any sender
func NewWithSender(bot Sender, chatID int64) *Telegram {
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram").Logger(),
	}
}

// JobFinished is a download.Listener; statuses that are not terminal are ignored
func (t *Telegram) JobFinished(status models.BackgroundTaskStatus) {
	if !status.Finished() {
		return
	}

	msg := tgbotapi.NewMessage(t.chatID, FormatJobMessage(status))
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error().Err(err).Str("job_id", status.JobID).Msg("Failed to send job notification")
	}
}

// FormatJobMessage renders the notification text
func FormatJobMessage(status models.BackgroundTaskStatus) string {
	var b strings.Builder

	category := status.JobCategory
	if category == models.JobCategoryDownloadData {
		category = "Data download"
	}
	fmt.Fprintf(&b, "%s %s: %s", category, status.JobID, status.Status)
	if status.Error != "" {
		fmt.Fprintf(&b, "\n%s", status.Error)
	}
	for _, id := range sortedTaskIDs(status.ProgressTasks) {
		task := status.ProgressTasks[id]
		fmt.Fprintf(&b, "\n%s: %.2f%%", task.Description, download.TaskPercent(task))
	}
	return b.String()
}

func sortedTaskIDs(tasks map[string]models.ProgressTask) []string {
	ids := make([]string, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
