// Package session holds the per-process brokerage session and the trading
// permission gate. A Session is created once by the hosting process and
// injected into every tool handler; there is no package-level singleton.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/offbeat-studio/tradegate/internal/broker"
	"github.com/offbeat-studio/tradegate/internal/domain"
)

// ErrNotConnected reports that no broker session is established.
var ErrNotConnected = errors.New("not connected, please login first")

// Environment variables consulted by the session.
const (
	EnvAPIKey    = "TRADEGATE_API_KEY"
	EnvSecretKey = "TRADEGATE_SECRET_KEY"
	EnvPersonID  = "TRADEGATE_PERSON_ID"
	EnvPassword  = "TRADEGATE_PASSWORD"
)

// Session tracks the connection state of exactly one broker session. The
// mutex serialises connect and disconnect transitions so concurrent tool
// invocations cannot race a login against a logout.
type Session struct {
	mu        sync.Mutex
	broker    broker.Broker
	connected bool
	accounts  []domain.Account
	log       *slog.Logger
}

// LogoutStatus is the outcome of a logout attempt.
type LogoutStatus struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// New creates a disconnected Session over the given broker backend.
func New(b broker.Broker, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{broker: b, log: log}
}

// Login establishes the broker session with the supplied credentials.
// Fields missing from creds are filled from the environment; if any of the
// four fields is still empty the login fails without touching the broker.
// On broker failure the session remains disconnected.
func (s *Session) Login(ctx context.Context, creds domain.Credentials) ([]domain.Account, error) {
	creds = fillFromEnv(creds)
	if missing := missingCredentials(creds); len(missing) > 0 {
		return nil, fmt.Errorf("missing required credentials: %s", strings.Join(missing, ", "))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.broker.Login(ctx, creds)
	if err != nil {
		s.connected = false
		s.accounts = nil
		s.log.Error("login failed", "broker", s.broker.Name(), "error", err)
		return nil, fmt.Errorf("login failed: %w", err)
	}

	s.connected = true
	s.accounts = accounts
	s.log.Info("logged in", "broker", s.broker.Name(), "accounts", len(accounts))
	return accounts, nil
}

// Logout tears down the broker session. It is idempotent: logging out while
// already disconnected reports success. A failing broker logout is reported
// in the message, but the session is marked disconnected regardless.
func (s *Session) Logout(ctx context.Context) LogoutStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return LogoutStatus{Success: true, Message: "Already logged out"}
	}

	err := s.broker.Logout(ctx)
	s.connected = false
	s.accounts = nil

	if err != nil {
		s.log.Warn("logout failed", "broker", s.broker.Name(), "error", err)
		return LogoutStatus{Success: false, Message: fmt.Sprintf("Logout failed: %v", err)}
	}

	s.log.Info("logged out", "broker", s.broker.Name())
	return LogoutStatus{Success: true, Message: "Logout successful"}
}

// IsConnected reports whether a broker session is established.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Handle returns the broker behind the session, or ErrNotConnected when no
// session is established.
func (s *Session) Handle() (broker.Broker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil, ErrNotConnected
	}
	return s.broker, nil
}

// Accounts returns the accounts resolved at login.
func (s *Session) Accounts() []domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// fillFromEnv substitutes environment values for empty credential fields.
func fillFromEnv(creds domain.Credentials) domain.Credentials {
	if creds.APIKey == "" {
		creds.APIKey = os.Getenv(EnvAPIKey)
	}
	if creds.SecretKey == "" {
		creds.SecretKey = os.Getenv(EnvSecretKey)
	}
	if creds.PersonID == "" {
		creds.PersonID = os.Getenv(EnvPersonID)
	}
	if creds.Password == "" {
		creds.Password = os.Getenv(EnvPassword)
	}
	return creds
}

func missingCredentials(creds domain.Credentials) []string {
	var missing []string
	if creds.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if creds.SecretKey == "" {
		missing = append(missing, "secret_key")
	}
	if creds.PersonID == "" {
		missing = append(missing, "person_id")
	}
	if creds.Password == "" {
		missing = append(missing, "password")
	}
	return missing
}
