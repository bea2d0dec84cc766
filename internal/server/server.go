// Package server exposes the chat assistant over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/classifier"
	"github.com/spigell/pathfinder/internal/session"
	"github.com/spigell/pathfinder/internal/speech"
)

const (
	defaultSweepInterval = time.Minute
	shutdownTimeout      = 10 * time.Second
	maxUploadBytes       = 10 << 20
)

// Chatter answers one chat turn against a session.
type Chatter interface {
	Handle(ctx context.Context, input string, sess *session.Session) string
}

type Classifier interface {
	Classify(ctx context.Context, text string) classifier.Result
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

type Speaker interface {
	Speak(ctx context.Context, text string) (*speech.Clip, error)
}

// Options wires the server. Classifier, Transcriber and Speaker are optional;
// their routes answer 503 when unset.
type Options struct {
	Chat          Chatter
	Classifier    Classifier
	Transcriber   Transcriber
	Speaker       Speaker
	Store         *session.Store
	Logger        *zap.Logger
	SecureCookies bool
	SweepInterval time.Duration
}

type Server struct {
	chat          Chatter
	classifier    Classifier
	transcriber   Transcriber
	speaker       Speaker
	store         *session.Store
	logger        *zap.Logger
	validate      *validator.Validate
	secureCookies bool
	sweepInterval time.Duration
}

func New(opts Options) (*Server, error) {
	if opts.Chat == nil {
		return nil, errors.New("chat handler is required")
	}
	if opts.Store == nil {
		return nil, errors.New("session store is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}

	return &Server{
		chat:          opts.Chat,
		classifier:    opts.Classifier,
		transcriber:   opts.Transcriber,
		speaker:       opts.Speaker,
		store:         opts.Store,
		logger:        opts.Logger,
		validate:      validator.New(),
		secureCookies: opts.SecureCookies,
		sweepInterval: opts.SweepInterval,
	}, nil
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	r.Get("/", s.index)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/session", s.getSession)
		r.Delete("/session", s.resetSession)
		r.Post("/chat", s.postChat)

		r.Route("/quiz", func(r chi.Router) {
			r.Post("/start", s.startQuiz)
			r.Post("/restart", s.startQuiz)
			r.Post("/answer", s.answerQuiz)
		})

		r.Route("/resume", func(r chi.Router) {
			r.Post("/extract", s.extractResume)
			r.Post("/analyze", s.analyzeResume)
		})

		r.Route("/voice", func(r chi.Router) {
			r.Post("/transcribe", s.transcribe)
			r.Post("/speak", s.speak)
		})
	})

	return r
}

// Run serves on addr until ctx is cancelled, sweeping idle sessions meanwhile.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go s.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	return nil
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.store.Sweep(); removed > 0 {
				s.logger.Debug("evicted idle sessions", zap.Int("removed", removed), zap.Int("left", s.store.Len()))
			}
		}
	}
}
