// Package notify sends alerts about newly seen jobs to a Telegram chat.
package notify

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"upwork-proposals/internal/storage"
)

const maxDescription = 280

// sender is the part of *tgbotapi.BotAPI we use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	bot    sender
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

// NotifyJob sends one job alert.
func (t *TelegramNotifier) NotifyJob(job storage.Job) error {
	return t.SendMessage(FormatJob(job))
}

// FormatJob renders a job as a Telegram HTML message.
func FormatJob(job storage.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 <b>%s</b>\n", html.EscapeString(job.Title))
	fmt.Fprintf(&b, "💰 %s", html.EscapeString(job.Budget))
	if job.JobType != "" {
		fmt.Fprintf(&b, " · %s", html.EscapeString(job.JobType))
	}
	b.WriteString("\n")
	client := job.Client.Name
	if job.Client.Country != "" {
		client += ", " + job.Client.Country
	}
	if job.Client.PaymentVerified {
		client += " ✅"
	}
	fmt.Fprintf(&b, "🏢 %s\n", html.EscapeString(client))
	if len(job.Skills) > 0 {
		fmt.Fprintf(&b, "🛠 %s\n", html.EscapeString(strings.Join(job.Skills, ", ")))
	}
	if d := shorten(job.Description, maxDescription); d != "" {
		fmt.Fprintf(&b, "\n%s\n", html.EscapeString(d))
	}
	if job.URL != "" {
		fmt.Fprintf(&b, "\n🔗 <a href=\"%s\">Open on Upwork</a>", html.EscapeString(job.URL))
	}
	return b.String()
}

func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
