package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/teemow/contactkeeper/internal/logging"
)

// DefaultExpiryMargin is the safety margin applied before the stored
// expiry: a token expiring within the margin is treated as expired so a
// remote call never starts with a token about to lapse mid-flight.
const DefaultExpiryMargin = 30 * time.Second

// CredentialStore reads and writes the single per-user credential
// record against the external store.
type CredentialStore interface {
	// Credentials returns the record for the user, or ErrCredentialsNotFound.
	Credentials(ctx context.Context, userID string) (*Credentials, error)

	// SaveCredentials replaces the record for the user.
	SaveCredentials(ctx context.Context, userID string, creds *Credentials) error
}

// RefreshResult is the outcome of a successful token refresh.
type RefreshResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

// TokenEndpoint exchanges a refresh token for a fresh access token.
// A nil TokenEndpoint on the Manager means refresh is unavailable.
type TokenEndpoint interface {
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
}

// State describes the lifecycle position of a user's credential.
type State int

const (
	// StateValid means the access token is usable as-is
	StateValid State = iota

	// StateExpired means the token lapsed but a refresh path exists
	StateExpired

	// StateRefreshing means a refresh for this user is in flight
	StateRefreshing

	// StateNeedsReactivation means nothing short of external
	// re-activation will produce a usable token
	StateNeedsReactivation
)

// String implements fmt.Stringer
func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateExpired:
		return "expired"
	case StateRefreshing:
		return "refreshing"
	case StateNeedsReactivation:
		return "needsReactivation"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Manager owns the credential lifecycle. It is safe for concurrent use.
type Manager struct {
	store    CredentialStore
	endpoint TokenEndpoint
	logger   *slog.Logger
	margin   time.Duration

	group      singleflight.Group
	mu         sync.Mutex
	refreshing map[string]bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithExpiryMargin overrides the expiry safety margin.
func WithExpiryMargin(margin time.Duration) Option {
	return func(m *Manager) { m.margin = margin }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a Manager over the given store. endpoint may be
// nil, in which case refresh is unavailable and an expired token
// immediately requires reactivation.
func NewManager(store CredentialStore, endpoint TokenEndpoint, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		endpoint:   endpoint,
		logger:     slog.Default(),
		margin:     DefaultExpiryMargin,
		refreshing: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureValidToken returns an access token that is valid beyond the
// safety margin, refreshing and persisting it if needed. Concurrent
// calls for the same user share one refresh.
func (m *Manager) EnsureValidToken(ctx context.Context, userID string) (string, error) {
	creds, err := m.fetch(ctx, userID)
	if err != nil {
		return "", err
	}
	if creds.AccessToken != "" && !creds.Expired(m.margin) {
		return creds.AccessToken, nil
	}
	return m.refresh(ctx, userID, false)
}

// ForceRefresh refreshes the token even if the stored expiry has not
// passed. It is used for the single refresh-then-retry cycle after the
// remote service rejects a token with 401.
func (m *Manager) ForceRefresh(ctx context.Context, userID string) (string, error) {
	return m.refresh(ctx, userID, true)
}

// Status reports the current lifecycle state for the user.
func (m *Manager) Status(ctx context.Context, userID string) (State, error) {
	m.mu.Lock()
	inFlight := m.refreshing[userID]
	m.mu.Unlock()
	if inFlight {
		return StateRefreshing, nil
	}

	creds, err := m.fetch(ctx, userID)
	if err != nil {
		if IsReauthRequired(err) {
			return StateNeedsReactivation, nil
		}
		return StateNeedsReactivation, err
	}
	if creds.AccessToken != "" && !creds.Expired(m.margin) {
		return StateValid, nil
	}
	if m.endpoint != nil && creds.RefreshToken != "" {
		return StateExpired, nil
	}
	return StateNeedsReactivation, nil
}

// TokenSource returns an oauth2.TokenSource backed by this manager, for
// use with Google API clients. Each Token call goes through
// EnsureValidToken, so the source never hands out a stale token.
func (m *Manager) TokenSource(ctx context.Context, userID string) oauth2.TokenSource {
	return &managerTokenSource{ctx: ctx, userID: userID, manager: m}
}

func (m *Manager) fetch(ctx context.Context, userID string) (*Credentials, error) {
	creds, err := m.store.Credentials(ctx, userID)
	if errors.Is(err, ErrCredentialsNotFound) {
		return nil, &ReauthRequiredError{Reason: "no stored credentials for this account", Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	return creds, nil
}

// refresh performs the single-flight refresh for userID. Unless force
// is set, a token found valid on re-fetch is returned without hitting
// the endpoint; this covers waiters that queued behind a completed
// refresh.
func (m *Manager) refresh(ctx context.Context, userID string, force bool) (string, error) {
	token, err, _ := m.group.Do(userID, func() (interface{}, error) {
		m.setRefreshing(userID, true)
		defer m.setRefreshing(userID, false)

		creds, err := m.fetch(ctx, userID)
		if err != nil {
			return "", err
		}
		if !force && creds.AccessToken != "" && !creds.Expired(m.margin) {
			return creds.AccessToken, nil
		}
		if m.endpoint == nil {
			return "", &ReauthRequiredError{Reason: "access token expired and no token endpoint is configured"}
		}
		if creds.RefreshToken == "" {
			return "", &ReauthRequiredError{Reason: "access token expired and no refresh token is stored"}
		}

		result, err := m.endpoint.Refresh(ctx, creds.RefreshToken)
		if err != nil {
			// The stored record is left untouched; the caller can retry
			// after reactivation.
			return "", &ReauthRequiredError{Reason: "token refresh was rejected by the endpoint", Err: err}
		}
		if result.AccessToken == "" {
			return "", &ReauthRequiredError{Reason: "token endpoint returned no access token"}
		}

		updated := creds.Clone()
		updated.AccessToken = result.AccessToken
		if !result.ExpiresAt.IsZero() {
			updated.ExpiresAt = result.ExpiresAt
		}
		if err := m.store.SaveCredentials(ctx, userID, updated); err != nil {
			return "", fmt.Errorf("failed to persist refreshed credentials: %w", err)
		}

		m.logger.Info("access token refreshed",
			logging.UserHash(userID),
			slog.Time("expires_at", updated.ExpiresAt),
			slog.String("access_token", logging.SanitizeToken(updated.AccessToken)),
		)
		return updated.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (m *Manager) setRefreshing(userID string, v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v {
		m.refreshing[userID] = true
	} else {
		delete(m.refreshing, userID)
	}
}

// managerTokenSource adapts the Manager to oauth2.TokenSource with a
// bound context, mirroring how token sources are built for the Google
// API clients.
type managerTokenSource struct {
	ctx     context.Context
	userID  string
	manager *Manager
}

// Token implements oauth2.TokenSource
func (ts *managerTokenSource) Token() (*oauth2.Token, error) {
	accessToken, err := ts.manager.EnsureValidToken(ts.ctx, ts.userID)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}
