package strava

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// refreshMargin is how close to expiry a token is refreshed ahead of use.
const refreshMargin = 60 * time.Second

// Store persists State.
type Store interface {
	Load() (State, error)
	Save(State) error
}

// SyncState owns the token pair and sync cursor. All reads and writes go through
// one mutex so concurrent sync runs never refresh twice or interleave cursor writes.
type SyncState struct {
	mu         sync.Mutex
	store      Store
	state      State
	loaded     bool
	oauth      *oauth2.Config
	httpClient *http.Client
	now        func() time.Time
}

type SyncStateOption func(*SyncState)

func WithClock(now func() time.Time) SyncStateOption {
	return func(s *SyncState) { s.now = now }
}

func WithHTTPClient(c *http.Client) SyncStateOption {
	return func(s *SyncState) { s.httpClient = c }
}

func NewSyncState(store Store, clientID, clientSecret, tokenURL string, opts ...SyncStateOption) *SyncState {
	s := &SyncState{
		store: store,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: 20 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SyncState) loadLocked() error {
	if s.loaded {
		return nil
	}
	st, err := s.store.Load()
	if err != nil {
		return err
	}
	s.state = st
	s.loaded = true
	return nil
}

func (s *SyncState) expiringLocked() bool {
	if s.state.ExpiresAt == 0 {
		return false
	}
	return !s.now().Add(refreshMargin).Before(time.Unix(s.state.ExpiresAt, 0))
}

// Token returns a usable access token, refreshing first when it is missing or about to expire.
func (s *SyncState) Token(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return "", false, &AuthError{Err: err}
	}
	if s.state.AccessToken == "" && s.state.RefreshToken == "" {
		return "", false, &AuthError{Err: ErrNoCredentials}
	}
	if s.state.AccessToken != "" && !s.expiringLocked() {
		return s.state.AccessToken, false, nil
	}
	if err := s.refreshLocked(ctx); err != nil {
		return "", false, err
	}
	return s.state.AccessToken, true, nil
}

// ForceRefresh is used after a 401. The refresh only happens when stale is still the
// current token; otherwise another caller already replaced it and that token is returned.
func (s *SyncState) ForceRefresh(ctx context.Context, stale string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return "", &AuthError{Err: err}
	}
	if s.state.AccessToken != stale && s.state.AccessToken != "" {
		return s.state.AccessToken, nil
	}
	if err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.state.AccessToken, nil
}

func (s *SyncState) refreshLocked(ctx context.Context) error {
	if s.oauth.ClientID == "" || s.oauth.ClientSecret == "" {
		return &AuthError{Err: ErrNotConfigured}
	}
	if s.state.RefreshToken == "" {
		return &AuthError{Err: ErrNoCredentials}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	expired := &oauth2.Token{RefreshToken: s.state.RefreshToken, Expiry: s.now().Add(-time.Hour)}
	tok, err := s.oauth.TokenSource(ctx, expired).Token()
	if err != nil {
		return &AuthError{Err: fmt.Errorf("refresh access token: %w", err)}
	}

	next := s.state
	next.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		next.RefreshToken = tok.RefreshToken
	}
	next.ExpiresAt = expiresAt(tok)

	if err := s.store.Save(next); err != nil {
		return &AuthError{Err: fmt.Errorf("persist refreshed token: %w", err)}
	}
	s.state = next
	return nil
}

// expiresAt prefers Strava's absolute expires_at over the library's computed expiry.
func expiresAt(tok *oauth2.Token) int64 {
	switch v := tok.Extra("expires_at").(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case string:
		var n int64
		if _, err := fmt.Sscan(v, &n); err == nil {
			return n
		}
	}
	if tok.Expiry.IsZero() {
		return 0
	}
	return tok.Expiry.Unix()
}

// Cursor is the start time of the newest activity merged so far.
func (s *SyncState) Cursor() (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	if s.state.LastActivityAt == nil {
		return nil, nil
	}
	t := *s.state.LastActivityAt
	return &t, nil
}

// AdvanceCursor moves the cursor forward to t. It never moves it backwards.
func (s *SyncState) AdvanceCursor(t time.Time) error {
	return s.writeCursor(t, false)
}

// ResetCursor sets the cursor to t unconditionally; used by a clean backfill.
func (s *SyncState) ResetCursor(t time.Time) error {
	return s.writeCursor(t, true)
}

// MarkSynced records a completed run without touching the cursor.
func (s *SyncState) MarkSynced() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	next := s.state
	now := s.now().UTC()
	next.LastSyncedAt = &now
	if err := s.store.Save(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *SyncState) writeCursor(t time.Time, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	next := s.state
	t = t.UTC()
	if force || next.LastActivityAt == nil || t.After(*next.LastActivityAt) {
		next.LastActivityAt = &t
	}
	now := s.now().UTC()
	next.LastSyncedAt = &now
	if err := s.store.Save(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// Snapshot returns a copy of the current state for reporting.
func (s *SyncState) Snapshot() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return State{}, err
	}
	return s.state, nil
}
