package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pubdex/internal/models"
	"github.com/desertthunder/pubdex/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// ProfilePhase is the load state of the derived user profile.
type ProfilePhase int

const (
	ProfileIdle ProfilePhase = iota
	ProfileLoading
	ProfileLoaded
	ProfileError
)

func (p ProfilePhase) String() string {
	switch p {
	case ProfileLoading:
		return "loading"
	case ProfileLoaded:
		return "loaded"
	case ProfileError:
		return "error"
	default:
		return "idle"
	}
}

// TokenStore persists the bearer token across process runs.
// An empty loaded token means "logged out".
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// AuthClient is the slice of the API surface the store drives.
// Implemented by services.AuthAPI.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, reg Registration) (*models.UserProfile, error)
	Me(ctx context.Context) (*models.UserProfile, error)
}

// Registration carries the account-creation fields. First and last name are
// only sent when non-empty.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Store holds the current session. Token and profile are updated together
// under one lock: the profile is never present while the token is absent.
type Store struct {
	mu      sync.Mutex
	token   string
	profile *models.UserProfile
	phase   ProfilePhase
	gen     uint64
	persist TokenStore
	logger  *log.Logger
}

// NewStore creates a session store, restoring any persisted token.
// persist may be nil, in which case the session is in-memory only.
func NewStore(persist TokenStore, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	s := &Store{persist: persist, logger: logger}

	if persist != nil {
		token, err := persist.Load()
		if err != nil {
			logger.Warn("failed to restore persisted session", "err", err)
		} else if token != "" {
			s.token = token
		}
	}

	return s
}

// SetLogger replaces the store's logger.
func (s *Store) SetLogger(l *log.Logger) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = l
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Authenticated reports whether a token is present.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Profile returns the loaded user profile, or nil.
func (s *Store) Profile() *models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// ProfilePhase returns the profile load state.
func (s *Store) ProfilePhase() ProfilePhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// SignIn exchanges credentials for a token, stores and persists it, and
// returns it. The profile is not fetched here; run [Store.LoadProfile]
// afterwards (the TUI does this from a command, the CLI synchronously).
func (s *Store) SignIn(ctx context.Context, api AuthClient, email, password string) (string, error) {
	token, err := api.Login(ctx, email, password)
	if err != nil {
		return "", err
	}

	s.SetToken(token)
	return token, nil
}

// Register creates an account. It does not authenticate: the server expects
// a separate login, so the token is untouched.
func (s *Store) Register(ctx context.Context, api AuthClient, reg Registration) (*models.UserProfile, error) {
	return api.Register(ctx, reg)
}

// SignOut clears the token and profile. Idempotent.
func (s *Store) SignOut() {
	s.SetToken("")
}

// SetToken replaces the current token. The profile is cleared in the same
// critical section, and any in-flight profile load is invalidated. The token
// is persisted; persistence failures are logged and otherwise ignored so the
// in-memory session stays usable for this run.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.profile = nil
	s.phase = ProfileIdle
	s.gen++
	s.mu.Unlock()

	if s.persist == nil {
		return
	}

	var err error
	if token == "" {
		err = s.persist.Clear()
	} else {
		err = s.persist.Save(token)
	}
	if err != nil {
		s.logger.Warn("failed to persist session token", "err", err)
	}
}

// LoadProfile fetches /users/me and stores the result, transitioning the
// profile state idle -> loading -> loaded|error. A result that arrives after
// the token has changed (sign-out, re-login) is dropped.
func (s *Store) LoadProfile(ctx context.Context, api AuthClient) error {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return shared.ErrUnauthenticated
	}
	gen := s.gen
	s.phase = ProfileLoading
	s.mu.Unlock()

	profile, err := api.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// Token changed while the fetch was in flight; this result is stale.
		return nil
	}

	if err != nil {
		s.phase = ProfileError
		return err
	}

	s.profile = profile
	s.phase = ProfileLoaded
	return nil
}

// Expiry returns the expiration time embedded in the bearer token, when the
// token is a JWT carrying an exp claim. The signature is not verified; the
// server remains authoritative and the value is only used to present
// "session expires at" hints.
func (s *Store) Expiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}

// Expired reports whether the token carries an exp claim in the past.
// An opaque or claim-less token is never reported as expired.
func (s *Store) Expired() bool {
	exp, ok := s.Expiry()
	return ok && time.Now().After(exp)
}

// Describe returns a short human-readable session summary for CLI output.
func (s *Store) Describe() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return "logged out"
	}
	if s.profile != nil {
		return fmt.Sprintf("logged in as %s", s.profile.Email)
	}
	return "logged in"
}
