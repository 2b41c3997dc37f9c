// Package session keeps the CLI's view of who is logged in consistent with
// the server. The token is persisted locally so a restarted client can
// restore the session, and every restore or login is reconciled against
// the "who am I" endpoint before the identity is trusted.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/devconnector/internal/client/alerts"
	"github.com/dmitrijs2005/devconnector/internal/client/client"
	"github.com/dmitrijs2005/devconnector/internal/client/models"
	"github.com/dmitrijs2005/devconnector/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/devconnector/internal/logging"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSuperseded is returned when a newer login, logout or restore
	// started while the call was in flight; its result was discarded.
	ErrSuperseded = errors.New("superseded by a newer session change")
)

type AlertSink interface {
	Push(message string, severity alerts.Severity) string
}

// State is a snapshot of the session.
type State struct {
	Token string
	User  *models.User
}

func (s State) LoggedIn() bool { return s.Token != "" && s.User != nil }

type Option func(*Session)

func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

type Session struct {
	api    client.Client
	store  metadata.Repository
	alerts AlertSink
	logger logging.Logger

	mu    sync.Mutex
	gen   uint64
	token string
	user  *models.User
}

func New(api client.Client, store metadata.Repository, sink AlertSink, opts ...Option) *Session {
	s := &Session{
		api:    api,
		store:  store,
		alerts: sink,
		logger: logging.Discard(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Current returns a copy of the session state.
func (s *Session) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

func (s *Session) snapshot() State {
	st := State{Token: s.token}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// begin starts a new session change and invalidates every older one.
func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	return s.gen
}

// Start restores a persisted token and reconciles it. A token the server
// no longer accepts is dropped silently and the session stays logged out.
func (s *Session) Start(ctx context.Context) error {
	token, ok, err := s.store.Get(ctx, metadata.KeyToken)
	if err != nil {
		return fmt.Errorf("restore token: %w", err)
	}
	if !ok || token == "" {
		return nil
	}

	gen := s.begin()
	s.mu.Lock()
	s.token = token
	s.user = nil
	s.mu.Unlock()

	_, err = s.reconcile(ctx, gen, token)
	if errors.Is(err, ErrNotLoggedIn) {
		return nil
	}
	return err
}

// Refresh re-reads the current identity from the server.
func (s *Session) Refresh(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	gen, token := s.gen, s.token
	s.mu.Unlock()

	if token == "" {
		return nil, ErrNotLoggedIn
	}
	return s.reconcile(ctx, gen, token)
}

func (s *Session) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	gen := s.begin()
	token, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		s.alertValidation(err)
		return nil, err
	}
	return s.adopt(ctx, gen, token)
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	gen := s.begin()
	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.alertValidation(err)
		return nil, err
	}
	return s.adopt(ctx, gen, token)
}

// Logout forgets the token locally. The server is told afterwards using
// the token that was current when Logout was called.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	token := s.token
	s.token = ""
	s.user = nil
	err := s.store.Delete(ctx, metadata.KeyToken)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("forget token: %w", err)
	}
	if token == "" {
		return nil
	}
	if err := s.api.Logout(ctx, client.RequestOptions{Token: token}); err != nil {
		s.logger.Warn(ctx, "server logout failed", "error", err)
	}
	return nil
}

// adopt persists a freshly issued token and reconciles it.
func (s *Session) adopt(ctx context.Context, gen uint64, token string) (*models.User, error) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return nil, ErrSuperseded
	}
	s.token = token
	s.user = nil
	err := s.store.Set(ctx, metadata.KeyToken, token)
	s.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	return s.reconcile(ctx, gen, token)
}

// reconcile asks the server who token belongs to and applies the answer,
// unless a newer session change happened meanwhile.
func (s *Session) reconcile(ctx context.Context, gen uint64, token string) (*models.User, error) {
	user, err := s.api.Me(ctx, client.RequestOptions{Token: token})

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return nil, ErrSuperseded
	}

	if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrNotFound) {
		s.logger.Debug(ctx, "stored token rejected", "error", err)
		s.token = ""
		s.user = nil
		if derr := s.store.Delete(ctx, metadata.KeyToken); derr != nil {
			return nil, fmt.Errorf("forget token: %w", derr)
		}
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	s.user = user
	u := *user
	return &u, nil
}

func (s *Session) alertValidation(err error) {
	var ve *client.ValidationError
	if !errors.As(err, &ve) {
		return
	}
	for _, msg := range ve.Messages {
		s.alerts.Push(msg, alerts.SeverityDanger)
	}
}
