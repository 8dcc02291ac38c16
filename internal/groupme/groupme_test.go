package groupme

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_Notify(t *testing.T) {
	var got postRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient("bot-1", srv.URL, time.Second)
	require.NoError(t, c.Notify(context.Background(), "hello"))
	require.Equal(t, postRequest{BotID: "bot-1", Text: "hello"}, got)
}

func TestClient_NotifyStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewClient("bot-1", srv.URL, time.Second).Notify(context.Background(), "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "400")
}

func TestClient_NotifyTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	err := NewClient("bot-1", srv.URL, 50*time.Millisecond).Notify(context.Background(), "hello")
	require.Error(t, err)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestNewClient_DefaultURL(t *testing.T) {
	require.Equal(t, DefaultPostURL, NewClient("x", "", time.Second).postURL)
}

func TestDecodeCallback(t *testing.T) {
	cb := DecodeCallback(strings.NewReader(`{"text":"my sugar is 90","name":"Alice","sender_type":"user","group_id":"g1"}`))
	require.Equal(t, "my sugar is 90", cb.Text)
	require.Equal(t, "Alice", cb.Name)
	require.Equal(t, "user", cb.SenderType)

	require.Equal(t, Callback{}, DecodeCallback(strings.NewReader(`{not json`)))
	require.Equal(t, Callback{}, DecodeCallback(strings.NewReader(``)))
	require.Equal(t, Callback{Name: "Bob"}, DecodeCallback(strings.NewReader(`{"name":"Bob"}`)))
}
