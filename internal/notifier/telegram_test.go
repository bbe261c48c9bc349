package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSend(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(sendMessageResponse{OK: true})
	}))
	defer srv.Close()

	tg := NewTelegram("test-token", "@channel", true)
	tg.SetBaseURL(srv.URL)

	err := tg.Send(context.Background(), "<b>hello</b>")
	require.NoError(t, err)
	assert.Equal(t, "@channel", got.ChatID)
	assert.Equal(t, "<b>hello</b>", got.Text)
	assert.Equal(t, "HTML", got.ParseMode)
}

func TestTelegramSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(sendMessageResponse{OK: false, Description: "chat not found"})
	}))
	defer srv.Close()

	tg := NewTelegram("test-token", "@missing", true)
	tg.SetBaseURL(srv.URL)

	err := tg.Send(context.Background(), "hello")
	assert.Error(t, err)
}

func TestTelegramDisabledIsNoOp(t *testing.T) {
	tg := NewTelegram("", "", false)
	assert.NoError(t, tg.Send(context.Background(), "dropped"))
}
