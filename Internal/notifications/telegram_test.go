package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramClient_SendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req sendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "457", req.ChatID)
		assert.Equal(t, "HTML", req.ParseMode)
		assert.Equal(t, "<b>hi</b>", req.Text)
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	c, err := NewTelegramClientWithURL(srv.URL, "TOKEN", "457")
	require.NoError(t, err)
	require.NoError(t, c.SendMessage(context.Background(), "<b>hi</b>"))
}

func TestTelegramClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`))
	}))
	defer srv.Close()

	c, err := NewTelegramClientWithURL(srv.URL, "TOKEN", "457")
	require.NoError(t, err)
	err = c.SendMessage(context.Background(), "<b")
	assert.ErrorContains(t, err, "can't parse entities")
}

func TestTelegramClient_GetUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/getUpdates", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("offset"))
		assert.Equal(t, "30", r.URL.Query().Get("timeout"))
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":42,"message":{"message_id":7,"text":"/help","chat":{"id":457}}},
			{"update_id":43}
		]}`))
	}))
	defer srv.Close()

	c, err := NewTelegramClientWithURL(srv.URL, "TOKEN", "457")
	require.NoError(t, err)

	updates, err := c.GetUpdates(context.Background(), 42, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, int64(42), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, "/help", updates[0].Message.Text)
	assert.Equal(t, "457", updates[0].Message.ChatID())
	assert.Nil(t, updates[1].Message)
}

func TestNewTelegramClient_RequiresConfig(t *testing.T) {
	_, err := NewTelegramClient("", "1")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewTelegramClient("tok", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
