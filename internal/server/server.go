// Package server exposes the GroupMe callback endpoint.
package server

import (
	"context"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sugarmate/internal/bot"
	"sugarmate/internal/groupme"
)

const maxBodyBytes = 1 << 20

// MessageHandler processes one inbound chat message.
type MessageHandler interface {
	Handle(ctx context.Context, msg bot.Message) bot.Result
}

type Server struct {
	handler MessageHandler
	logger  *zap.Logger
	timeout time.Duration
}

type Option func(*Server)

// WithHandleTimeout bounds the work done for one callback, including the
// model calls and outbound deliveries. Zero means no deadline.
func WithHandleTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

func New(h MessageHandler, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{handler: h, logger: logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.logger))
	r.Use(Recovery(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w)
	})
	r.Post("/bot", s.handleCallback)
	return r
}

// handleCallback always answers 200 "OK"; the platform does not care what
// the bot did with the message.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("panic while handling message",
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())),
			)
		}
		writeOK(w)
	}()

	cb := groupme.DecodeCallback(io.LimitReader(r.Body, maxBodyBytes))
	s.logger.Info("received message", zap.String("sender", cb.Name), zap.String("text", cb.Text))

	// replies still go out if the platform drops the connection
	ctx := context.WithoutCancel(r.Context())
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res := s.handler.Handle(ctx, bot.Message{
		Text:       cb.Text,
		Name:       cb.Name,
		SenderType: cb.SenderType,
	})
	if !res.Ignored {
		s.logger.Debug("message handled",
			zap.String("rule", res.Action.Rule),
			zap.Stringer("action", res.Action.Kind),
			zap.Int("replies", len(res.Sent)),
		)
	}
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
