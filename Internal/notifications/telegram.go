package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultTelegramAPI = "https://api.telegram.org"

var ErrNotConfigured = errors.New("telegram bot token and chat id are required")

// TelegramClient talks to the Telegram Bot API for one bot and one chat.
type TelegramClient struct {
	apiURL string
	chatID string
	client *http.Client
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
}

type Chat struct {
	ID int64 `json:"id"`
}

// ChatID renders the chat id the way it is configured.
func (m *Message) ChatID() string {
	return strconv.FormatInt(m.Chat.ID, 10)
}

func NewTelegramClient(botToken, chatID string) (*TelegramClient, error) {
	return NewTelegramClientWithURL(DefaultTelegramAPI, botToken, chatID)
}

func NewTelegramClientWithURL(baseURL, botToken, chatID string) (*TelegramClient, error) {
	if botToken == "" || chatID == "" {
		return nil, ErrNotConfigured
	}
	return &TelegramClient{
		apiURL: fmt.Sprintf("%s/bot%s", strings.TrimRight(baseURL, "/"), botToken),
		chatID: chatID,
		client: &http.Client{Timeout: 40 * time.Second},
	}, nil
}

func (t *TelegramClient) ChatID() string {
	return t.chatID
}

// SendMessage posts text to the configured chat with HTML parse mode.
func (t *TelegramClient) SendMessage(ctx context.Context, text string) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                t.chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL+"/sendMessage", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := t.do(req); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	log.Debug().Str("chat_id", t.chatID).Int("chars", len(text)).Msg("telegram message sent")
	return nil
}

// GetUpdates long-polls for updates after offset, waiting up to timeout.
func (t *TelegramClient) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	q := url.Values{}
	q.Set("offset", strconv.FormatInt(offset, 10))
	q.Set("timeout", strconv.Itoa(int(timeout.Seconds())))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.apiURL+"/getUpdates?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	result, err := t.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get telegram updates: %w", err)
	}
	var updates []Update
	if len(result) > 0 {
		if err := json.Unmarshal(result, &updates); err != nil {
			return nil, fmt.Errorf("failed to decode telegram updates: %w", err)
		}
	}
	return updates, nil
}

func (t *TelegramClient) do(req *http.Request) (json.RawMessage, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("status %d: undecodable response: %w", resp.StatusCode, err)
	}
	if !body.OK || resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram API error %d: %s", body.ErrorCode, body.Description)
	}
	return body.Result, nil
}
