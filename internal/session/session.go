// Package session persists the authentication token and decides which
// navigation root the client shows.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/idilsaglam/mytodo/internal/store/jsonstore"
)

const (
	storeKey = "token"

	// TokenTTL is how long a saved login stays valid locally.
	TokenTTL = 2 * 24 * time.Hour

	SourceFile = "file"
	SourceEnv  = "env"
)

// ErrNoSession is returned when no valid session is available.
var ErrNoSession = errors.New("not logged in")

// Session is the persisted proof of authentication.
type Session struct {
	Token  string    `json:"token"`
	Expiry time.Time `json:"expiry"`
	Source string    `json:"-"`
}

// IsValid reports whether the session can be used at now. The bound is
// strict: at now == Expiry the session is already dead.
func (s *Session) IsValid(now time.Time) bool {
	return s != nil && s.Token != "" && now.Before(s.Expiry)
}

// Store is the key/value persistence the manager writes to.
type Store interface {
	Get(key string, v any) (bool, error)
	Put(key string, v any) error
	Delete(key string) error
}

type Manager struct {
	store    Store
	envToken string
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// WithEnvToken sets a token that overrides the stored one (MYTODO_TOKEN).
func WithEnvToken(token string) Option {
	return func(m *Manager) { m.envToken = stripBearer(strings.TrimSpace(token)) }
}

func WithLogger(l *slog.Logger) Option { return func(m *Manager) { m.logger = l } }

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		ttl:    TokenTTL,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Load returns the current valid session, or nil when anonymous. Malformed
// and expired records are removed from the store.
func (m *Manager) Load() (*Session, error) {
	now := m.now()
	if m.envToken != "" {
		exp, ok := TokenExpiry(m.envToken)
		if !ok {
			exp = now.Add(m.ttl)
		}
		s := &Session{Token: m.envToken, Expiry: exp, Source: SourceEnv}
		if !s.IsValid(now) {
			m.logger.Warn("env token expired", "expiry", exp)
			return nil, nil
		}
		return s, nil
	}

	var s Session
	found, err := m.store.Get(storeKey, &s)
	if errors.Is(err, jsonstore.ErrMalformed) {
		m.logger.Warn("dropping malformed session", "err", err)
		return nil, m.Clear()
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return nil, nil
	}
	s.Token = stripBearer(s.Token)
	s.Source = SourceFile
	if !s.IsValid(now) {
		m.logger.Info("session expired", "expiry", s.Expiry)
		return nil, m.Clear()
	}
	return &s, nil
}

// Save persists token with expiry now + TokenTTL.
func (m *Manager) Save(token string) (*Session, error) {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}
	s := &Session{Token: token, Expiry: m.now().Add(m.ttl), Source: SourceFile}
	if err := m.store.Put(storeKey, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Clear removes the stored session. An env override is left alone.
func (m *Manager) Clear() error {
	if err := m.store.Delete(storeKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token returns the bearer token of the current session, or ErrNoSession.
func (m *Manager) Token() (string, error) {
	s, err := m.Load()
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", ErrNoSession
	}
	return s.Token, nil
}

// Start runs the startup check and returns the navigation root.
func (m *Manager) Start() (State, error) {
	s, err := m.Load()
	if err != nil {
		return State{}, err
	}
	return Transition(State{}, Event{Kind: EventStartup, Session: s, At: m.now()}), nil
}

// Login saves token and moves st to the authenticated root.
func (m *Manager) Login(st State, token string) (State, error) {
	s, err := m.Save(token)
	if err != nil {
		return st, err
	}
	return Transition(st, Event{Kind: EventLogin, Session: s, At: m.now()}), nil
}

// Logout clears the stored session and moves st to the anonymous root.
func (m *Manager) Logout(st State) (State, error) {
	if err := m.Clear(); err != nil {
		return st, err
	}
	return Transition(st, Event{Kind: EventLogout, At: m.now()}), nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
