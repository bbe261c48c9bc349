package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Telegram posts messages to the marketing channel via the Bot API.
// Delivery is best-effort everywhere this client is used.
type Telegram struct {
	token     string
	channelID string
	enabled   bool
	baseURL   string
	client    *http.Client
	logger    *zap.Logger
}

// NewTelegram creates a Telegram channel notifier. With an empty token
// the notifier is disabled and Send becomes a logged no-op.
func NewTelegram(token, channelID string, enabled bool) *Telegram {
	return &Telegram{
		token:     token,
		channelID: channelID,
		enabled:   enabled,
		baseURL:   "https://api.telegram.org",
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    util.GetLogger(),
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts an HTML-formatted message to the configured channel
func (t *Telegram) Send(ctx context.Context, text string) error {
	if !t.enabled {
		t.logger.Debug("Telegram notifier disabled, dropping message")
		return nil
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    t.channelID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		util.TelegramNotificationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var result sendMessageResponse
	if err := json.Unmarshal(respBody, &result); err != nil || !result.OK {
		util.TelegramNotificationsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("telegram rejected message: status=%d, body=%s", resp.StatusCode, respBody)
	}

	util.TelegramNotificationsTotal.WithLabelValues("sent").Inc()
	return nil
}

// SetBaseURL overrides the API host, for tests
func (t *Telegram) SetBaseURL(url string) {
	t.baseURL = url
}
