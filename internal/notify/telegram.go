package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramSender sends messages via the Telegram Bot API.
type TelegramSender struct {
	Token   string
	ChatID  string
	BaseURL string // default https://api.telegram.org
	Client  *http.Client
}

func (s *TelegramSender) Name() string { return "telegram" }

func (s *TelegramSender) Send(ctx context.Context, message string) error {
	if s.Token == "" {
		return fmt.Errorf("telegram sender missing bot token")
	}
	if s.ChatID == "" {
		return fmt.Errorf("telegram sender missing chat id")
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	base := strings.TrimRight(s.BaseURL, "/")
	if base == "" {
		base = defaultTelegramAPI
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", base, s.Token)
	body, _ := json.Marshal(map[string]string{
		"chat_id": s.ChatID,
		"text":    message,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("telegram API returned %d", resp.StatusCode)
	}
	return nil
}
