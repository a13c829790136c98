// Package session owns the authentication state of the process: the current
// bearer credential, its durable copy on disk, and the transport header that
// carries it. Every way of acquiring or dropping a credential funnels through
// SaveCredential and Logout, so password login and Google sign-in are
// indistinguishable to the rest of the program.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Authenticator exchanges a username and password for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// TokenBinder is the transport-facing half of the session: binding a token
// makes every subsequent request carry it.
type TokenBinder interface {
	SetToken(token string)
	ClearToken()
}

// Config describes the collaborators a Session drives.
type Config struct {
	Auth      Authenticator
	Transport TokenBinder
	Store     *Store
	Logger    *zap.Logger
}

// Session is the single owner of the current credential.
type Session struct {
	auth      Authenticator
	transport TokenBinder
	store     *Store
	logger    *zap.Logger

	mu          sync.RWMutex
	token       string
	subscribers []func(authenticated bool)
}

// New builds a session. Nothing is loaded until Initialize runs.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		auth:      cfg.Auth,
		transport: cfg.Transport,
		store:     cfg.Store,
		logger:    logger,
	}
}

// Initialize restores any persisted credential and binds it to the transport.
// It must run before the first request so a restored session's first call
// already carries the header.
func (s *Session) Initialize() error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.transport.SetToken(token)
	s.logger.Info("session restored")
	s.notify(true)
	return nil
}

// Login exchanges credentials for a token and activates it.
func (s *Session) Login(ctx context.Context, username, password string) error {
	token, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return s.SaveCredential(token)
}

// SaveCredential is the one choke point for activating a credential: it
// persists the token, holds it in memory, and binds it to the transport.
// A failed disk write leaves the session unchanged.
func (s *Session) SaveCredential(token string) error {
	if err := s.store.Save(token); err != nil {
		return err
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.transport.SetToken(token)
	s.logger.Info("credential saved", zap.Int("token_length", len(token)))
	s.notify(true)
	return nil
}

// Logout drops the credential everywhere: memory, transport, and disk.
// Safe to call when already logged out.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	s.transport.ClearToken()
	err := s.store.Clear()
	s.logger.Info("session cleared")
	s.notify(false)
	return err
}

// CaptureFromRedirect completes a Google sign-in from a pasted callback URL:
// the provider appends the token as a "#token=..." fragment. Reports whether
// a credential was captured; an unrecognizable paste is a no-op. Moving the
// user to the home view afterwards is the caller's concern.
func (s *Session) CaptureFromRedirect(raw string) (bool, error) {
	token := TokenFromRedirect(raw)
	if token == "" {
		return false, nil
	}
	if err := s.SaveCredential(token); err != nil {
		return false, err
	}
	return true, nil
}

// Subscribe registers a callback invoked on every authentication change.
func (s *Session) Subscribe(fn func(authenticated bool)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// IsAuthenticated reports whether a credential is currently held.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Token returns the current credential, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) notify(authenticated bool) {
	s.mu.RLock()
	subscribers := make([]func(bool), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.RUnlock()
	for _, fn := range subscribers {
		fn(authenticated)
	}
}
