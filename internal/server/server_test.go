package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sugarmate/internal/bot"
	"sugarmate/internal/healthlog"
	"sugarmate/internal/prefs"
	"sugarmate/internal/storage"
)

type fakeNotifier struct{ sent []string }

func (f *fakeNotifier) Notify(ctx context.Context, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

type panicHandler struct{}

func (panicHandler) Handle(ctx context.Context, msg bot.Message) bot.Result {
	panic("boom")
}

func newBotServer(t *testing.T) (*httptest.Server, *fakeNotifier) {
	t.Helper()
	dir := t.TempDir()
	prefsDoc, err := storage.NewJSONFile(filepath.Join(dir, "user_prefs.json"))
	require.NoError(t, err)
	healthDoc, err := storage.NewJSONFile(filepath.Join(dir, "health_log.json"))
	require.NoError(t, err)

	n := &fakeNotifier{}
	h := bot.NewHandler(bot.Deps{
		BotName:  "SugarMate",
		Prefs:    prefs.NewStore(prefsDoc, nil),
		Health:   healthlog.NewStore(healthDoc, nil),
		Notifier: n,
		Location: time.UTC,
	})
	srv := httptest.NewServer(New(h, nil).Router())
	t.Cleanup(srv.Close)
	return srv, n
}

func post(t *testing.T, srv *httptest.Server, body string) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/bot", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	buf := new(strings.Builder)
	_, _ = io.Copy(buf, resp.Body)
	require.Equal(t, "OK", buf.String())
}

func TestWebhook_SugarScenario(t *testing.T) {
	srv, n := newBotServer(t)

	post(t, srv, `{"text":"my sugar is 180","name":"Alice"}`)
	require.Len(t, n.sent, 1)
	require.Contains(t, n.sent[0], "high")

	post(t, srv, `{"text":"my sugar is 90","name":"Alice"}`)
	require.Len(t, n.sent, 2)
	require.Contains(t, n.sent[1], "good")
}

func TestWebhook_OptOutScenario(t *testing.T) {
	srv, n := newBotServer(t)

	post(t, srv, `{"text":"opt out","name":"Bob"}`)
	require.Len(t, n.sent, 1)
	post(t, srv, `{"text":"my sugar is 200","name":"Bob"}`)
	require.Len(t, n.sent, 1, "second request must produce zero notifications")
}

func TestWebhook_AlwaysOK(t *testing.T) {
	srv, n := newBotServer(t)

	for _, body := range []string{``, `{garbage`, `{"text":"help"}`, `{"name":"Alice"}`, `{"text":"help","name":"SugarMate"}`} {
		post(t, srv, body)
	}
	// only the nameless "help" produced a reply
	require.Len(t, n.sent, 1)
}

func TestWebhook_PanicStillOK(t *testing.T) {
	srv := httptest.NewServer(New(panicHandler{}, nil).Router())
	defer srv.Close()
	post(t, srv, `{"text":"help","name":"Alice"}`)
}

func TestHealthz(t *testing.T) {
	srv, _ := newBotServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/bot")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

type ctxRecorder struct {
	err         error
	hasDeadline bool
	text        string
}

func (c *ctxRecorder) Handle(ctx context.Context, msg bot.Message) bot.Result {
	c.err = ctx.Err()
	_, c.hasDeadline = ctx.Deadline()
	c.text = msg.Text
	return bot.Result{}
}

func TestWebhook_HandlerOutlivesDroppedConnection(t *testing.T) {
	rec := &ctxRecorder{}
	router := New(rec, nil, WithHandleTimeout(time.Minute)).Router()

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/bot", strings.NewReader(`{"text":"my sugar is 90","name":"Alice"}`)).WithContext(reqCtx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
	require.Equal(t, "my sugar is 90", rec.text)
	require.NoError(t, rec.err)
	require.True(t, rec.hasDeadline)
}

func TestWebhook_NoDeadlineByDefault(t *testing.T) {
	rec := &ctxRecorder{}
	req := httptest.NewRequest(http.MethodPost, "/bot", strings.NewReader(`{"text":"hi","name":"Alice"}`))
	New(rec, nil).Router().ServeHTTP(httptest.NewRecorder(), req)
	require.False(t, rec.hasDeadline)
}
