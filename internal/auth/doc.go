// Package auth manages the OAuth credential lifecycle for the remote
// contacts service.
//
// The Manager decides whether a stored access token is still usable,
// refreshes it through the host's token endpoint when possible, and
// persists the result back to the credential store. Refreshes are
// all-or-nothing: a failed refresh never mutates the stored record.
//
// Concurrent callers for the same user share a single in-flight refresh
// (singleflight); at most one refresh request is ever issued per user
// and all waiters observe the same resulting token.
//
// Credential state machine:
//
//	Valid ──expiry──▶ Expired ──refresh──▶ Valid
//	                     │
//	                     └─no refresh token / no endpoint / refresh rejected──▶ NeedsReactivation
//
// NeedsReactivation is terminal until the user re-runs the host-side
// activation flow; it surfaces as ReauthRequiredError.
package auth
