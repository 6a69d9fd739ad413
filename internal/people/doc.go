// Package people provides a client for managing Google Contacts through
// the People API.
//
// This package wraps the People API (people/v1) and provides functionality for:
//   - Searching contacts with stable, windowed pagination
//   - Fetching, creating, updating, and deleting individual contacts
//   - Partial updates via read-then-merge-then-write with etag and field masks
//   - Listing the full contact set across pages without duplication
//   - Filtering contacts by birthday month/day regardless of year
//   - Updating contact photos from publicly reachable image URLs
//
// # Authentication
//
// Clients are constructed per call with an oauth2.TokenSource, normally
// the one handed out by the auth.Manager. Nothing is cached between
// calls. When the remote service rejects a token with 401, the client
// runs exactly one refresh-then-retry cycle through the configured
// refresh hook before surfacing the failure.
//
// # Retries
//
// Transient failures (429, 5xx) are retried with bounded exponential
// backoff. All other 4xx responses surface immediately as *APIError;
// missing resources surface as *NotFoundError.
package people
