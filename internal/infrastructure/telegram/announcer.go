package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"CitationWatch/internal/ports"
)

// Announcer posts alert digests to a Telegram chat via the bot API. It is a
// secondary channel: delivery state is owned by the mail dispatcher, so a
// failed announcement is logged and otherwise ignored.
type Announcer struct {
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Announcer = (*Announcer)(nil)

// NewAnnouncer registers bot token and chat identifier.
func NewAnnouncer(botToken, chatID string) *Announcer {
	return &Announcer{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Announce posts a plain-text message. Link previews are disabled so
// DOI-heavy digests stay compact in the chat.
func (a *Announcer) Announce(ctx context.Context, text string) error {
	if a.botToken == "" || a.chatID == "" || a.client == nil {
		return fmt.Errorf("telegram announcer misconfigured")
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", a.botToken)
	form := url.Values{}
	form.Set("chat_id", a.chatID)
	form.Set("text", text)
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}
