package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"funding-platform/internal/core/ports"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.Notifier against the Bot API. Only sendMessage is
// used; inbound traffic arrives through the webhook, never by polling.
type Client struct {
	baseURL    string
	token      string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a new Bot API client. baseURL is overridable for tests
// and self-hosted API servers; pass "" for the public endpoint.
func NewClient(baseURL, token string, httpClient HTTPClient, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
		log:        log,
	}
}

type inlineButton struct {
	Text   string  `json:"text"`
	URL    string  `json:"url,omitempty"`
	WebApp *webApp `json:"web_app,omitempty"`
}

type webApp struct {
	URL string `json:"url"`
}

type replyMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID      int64        `json:"chat_id"`
	Text        string       `json:"text"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify sends a text message, optionally with an inline keyboard.
func (c *Client) Notify(ctx context.Context, chatID int64, text string, keyboard [][]ports.Button) error {
	payload := sendMessageRequest{ChatID: chatID, Text: text}
	if len(keyboard) > 0 {
		markup := &replyMarkup{InlineKeyboard: make([][]inlineButton, 0, len(keyboard))}
		for _, row := range keyboard {
			buttons := make([]inlineButton, 0, len(row))
			for _, b := range row {
				btn := inlineButton{Text: b.Text, URL: b.URL}
				if b.WebAppURL != "" {
					btn.WebApp = &webApp{URL: b.WebAppURL}
				}
				buttons = append(buttons, btn)
			}
			markup.InlineKeyboard = append(markup.InlineKeyboard, buttons)
		}
		payload.ReplyMarkup = markup
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sendMessage: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var api apiResponse
	if err := json.Unmarshal(respBody, &api); err != nil || !api.OK {
		c.log.Warn().Int("status", resp.StatusCode).Str("body", string(respBody)).Msg("sendMessage rejected")
		return fmt.Errorf("send message: status %d", resp.StatusCode)
	}
	return nil
}
