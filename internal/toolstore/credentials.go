package toolstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/teemow/contactkeeper/internal/auth"
)

// credentialRecord is the wire form of a provider's credentials inside
// the "oauth" section of the user data document.
type credentialRecord struct {
	AccessToken  string   `json:"access_token,omitempty"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	Expiry       string   `json:"expiry,omitempty"`
	ExpiresAt    string   `json:"expires_at,omitempty"`
	Scopes       []string `json:"scopes,omitempty"`
}

// Credentials implements auth.CredentialStore. The client is bound to a
// single user at activation; asking for anyone else is a programming
// error, not a lookup miss.
func (c *Client) Credentials(ctx context.Context, userID string) (*auth.Credentials, error) {
	if userID != c.cfg.UserID {
		return nil, &StorageError{Op: "getCredentials", Err: fmt.Errorf("client is bound to user %s", c.cfg.UserID)}
	}

	doc, err := c.UserData(ctx)
	if err != nil {
		return nil, err
	}

	oauthRaw, ok := doc["oauth"]
	if !ok {
		return nil, auth.ErrCredentialsNotFound
	}
	var providers map[string]credentialRecord
	if err := json.Unmarshal(oauthRaw, &providers); err != nil {
		return nil, &StorageError{Op: "getCredentials", Err: fmt.Errorf("malformed oauth section: %w", err)}
	}
	rec, ok := providers[c.cfg.Provider]
	if !ok || (rec.AccessToken == "" && rec.RefreshToken == "") {
		return nil, auth.ErrCredentialsNotFound
	}

	expiry := rec.Expiry
	if expiry == "" {
		expiry = rec.ExpiresAt
	}
	return &auth.Credentials{
		UserID:       userID,
		Provider:     c.cfg.Provider,
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		ExpiresAt:    parseExpiry(expiry),
		Scopes:       rec.Scopes,
	}, nil
}

// SaveCredentials implements auth.CredentialStore. It rewrites only the
// provider's record inside the oauth section and sends the whole
// document back, so unrelated user data survives the replace-style PUT.
func (c *Client) SaveCredentials(ctx context.Context, userID string, creds *auth.Credentials) error {
	if userID != c.cfg.UserID {
		return &StorageError{Op: "saveCredentials", Err: fmt.Errorf("client is bound to user %s", c.cfg.UserID)}
	}

	doc, err := c.UserData(ctx)
	if err != nil {
		return err
	}

	providers := map[string]json.RawMessage{}
	if oauthRaw, ok := doc["oauth"]; ok {
		if err := json.Unmarshal(oauthRaw, &providers); err != nil {
			return &StorageError{Op: "saveCredentials", Err: fmt.Errorf("malformed oauth section: %w", err)}
		}
	}

	rec := credentialRecord{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Scopes:       creds.Scopes,
	}
	if !creds.ExpiresAt.IsZero() {
		rec.Expiry = strconv.FormatInt(creds.ExpiresAt.Unix(), 10)
	}
	recRaw, err := json.Marshal(rec)
	if err != nil {
		return &StorageError{Op: "saveCredentials", Err: err}
	}
	providers[c.cfg.Provider] = recRaw

	oauthRaw, err := json.Marshal(providers)
	if err != nil {
		return &StorageError{Op: "saveCredentials", Err: err}
	}
	doc["oauth"] = oauthRaw

	return c.SaveUserData(ctx, doc)
}

// Refresh implements auth.TokenEndpoint against the configured token
// endpoint. The endpoint authenticates with the same host JWT as the
// Developer API and identifies the tool namespace in the payload.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*auth.RefreshResult, error) {
	if c.cfg.TokenEndpoint == "" {
		return nil, fmt.Errorf("no token endpoint configured")
	}

	payload := map[string]string{
		"provider":      c.cfg.Provider,
		"refresh_token": refreshToken,
		"dev_slug":      c.cfg.DevSlug,
		"tool_slug":     c.cfg.ToolSlug,
		"user_id":       c.cfg.UserID,
		"user_slug":     c.cfg.UserSlug,
	}
	var resp struct {
		AccessToken string  `json:"access_token"`
		IDToken     string  `json:"id_token"`
		ExpiresIn   float64 `json:"expires_in"`
		Expiry      string  `json:"expiry"`
		ExpiresAt   string  `json:"expires_at"`
	}
	if _, err := c.doJSON(ctx, "refreshToken", http.MethodPost, c.cfg.TokenEndpoint, payload, &resp); err != nil {
		return nil, err
	}

	accessToken := resp.AccessToken
	if accessToken == "" {
		accessToken = resp.IDToken
	}
	if accessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}

	var expiresAt time.Time
	switch {
	case resp.Expiry != "":
		expiresAt = parseExpiry(resp.Expiry)
	case resp.ExpiresAt != "":
		expiresAt = parseExpiry(resp.ExpiresAt)
	case resp.ExpiresIn > 0:
		expiresAt = time.Now().Add(time.Duration(resp.ExpiresIn * float64(time.Second)))
	}

	return &auth.RefreshResult{AccessToken: accessToken, ExpiresAt: expiresAt}, nil
}

// parseExpiry accepts the expiry forms seen in stored records: unix
// seconds (possibly fractional) or RFC 3339. Unparseable or empty input
// yields the zero time, which the lifecycle manager treats as
// non-expiring.
func parseExpiry(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(int64(secs), 0)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
