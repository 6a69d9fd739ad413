package people

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	people "google.golang.org/api/people/v1"

	"github.com/teemow/contactkeeper/internal/contacts"
	"github.com/teemow/contactkeeper/internal/logging"
)

const (
	// defaultSearchPageSize applies when the caller does not ask for a size
	defaultSearchPageSize = 25

	// maxSearchWindow is the remote search endpoint's result cap
	maxSearchWindow = 30

	// listPageSize is the page size used when walking the full contact set
	listPageSize = 500

	// imageFetchTimeout bounds downloads of contact photos from public URLs
	imageFetchTimeout = 30 * time.Second
)

// RefreshFunc forces a token refresh after the remote service rejects
// the current token. The client invokes it at most once per operation.
type RefreshFunc func(ctx context.Context) error

// Client wraps the Google People API service. Clients are cheap and
// built per call; they hold no contact or credential state.
type Client struct {
	svc     *people.Service
	refresh RefreshFunc
	images  *http.Client
	logger  *slog.Logger
}

// Options configures a Client.
type Options struct {
	// TokenSource provides access tokens for the People API.
	TokenSource oauth2.TokenSource

	// Refresh is the optional hook for the single 401 refresh-then-retry cycle.
	Refresh RefreshFunc

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// ClientOptions are appended to the service options (tests use
	// these to point the client at a fake endpoint).
	ClientOptions []option.ClientOption
}

// NewClient creates a People API client.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	var copts []option.ClientOption
	if opts.TokenSource != nil {
		copts = append(copts, option.WithTokenSource(opts.TokenSource))
	}
	copts = append(copts, opts.ClientOptions...)

	svc, err := people.NewService(ctx, copts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		svc:     svc,
		refresh: opts.Refresh,
		images:  &http.Client{Timeout: imageFetchTimeout},
		logger:  logger,
	}, nil
}

// Search returns one page of contacts matching the text query, in the
// order the remote service returned them. The remote search endpoint
// hands back a single bounded result list, so pages are windowed with
// an opaque offset token; an empty NextPageToken marks the end.
func (c *Client) Search(ctx context.Context, query string, pageSize int, pageToken string) (*SearchPage, error) {
	if query == "" {
		return nil, &contacts.ValidationError{Field: "query", Reason: "must not be empty"}
	}
	if pageSize <= 0 {
		pageSize = defaultSearchPageSize
	}
	if pageSize > maxSearchWindow {
		pageSize = maxSearchWindow
	}
	offset := 0
	if pageToken != "" {
		var err error
		if offset, err = decodePageToken(pageToken); err != nil {
			return nil, &contacts.ValidationError{Field: "page_token", Reason: err.Error()}
		}
	}

	fetch := offset + pageSize
	if fetch > maxSearchWindow {
		fetch = maxSearchWindow
	}

	resp, err := call(ctx, c, "search", "", func() (*people.SearchResponse, error) {
		return c.svc.People.SearchContacts().
			Query(query).
			PageSize(int64(fetch)).
			ReadMask(searchReadMask).
			Context(ctx).Do()
	})
	if err != nil {
		return nil, err
	}

	page := &SearchPage{}
	end := offset + pageSize
	if end > len(resp.Results) {
		end = len(resp.Results)
	}
	for i := offset; i < end; i++ {
		page.Records = append(page.Records, toRecord(resp.Results[i].Person))
	}
	// A full fetch window may mean more results exist behind it.
	if len(resp.Results) == fetch && fetch < maxSearchWindow {
		page.NextPageToken = encodePageToken(end)
	}
	return page, nil
}

// Get retrieves the full record for a contact resource name.
func (c *Client) Get(ctx context.Context, resourceName string) (*contacts.Record, error) {
	if resourceName == "" {
		return nil, &contacts.ValidationError{Field: "resource_name", Reason: "must not be empty"}
	}
	person, err := call(ctx, c, "get", resourceName, func() (*people.Person, error) {
		return c.svc.People.Get(resourceName).PersonFields(personFields).Context(ctx).Do()
	})
	if err != nil {
		return nil, err
	}
	record := toRecord(person)
	return &record, nil
}

// Create creates a new contact and returns the record the remote
// service assigned a resource name to. A photo URL, if present, is
// applied afterwards through the photo endpoint; photo failures do not
// undo the creation.
func (c *Client) Create(ctx context.Context, record contacts.Record) (*contacts.Record, error) {
	update := contacts.UpdateFromRecord(record)
	if err := update.Validate(); err != nil {
		return nil, err
	}

	created, err := call(ctx, c, "create", "", func() (*people.Person, error) {
		return c.svc.People.CreateContact(toPerson(record)).Context(ctx).Do()
	})
	if err != nil {
		return nil, err
	}

	result := toRecord(created)
	if record.PhotoURL != "" && result.ResourceName != "" {
		if err := c.UpdatePhoto(ctx, result.ResourceName, record.PhotoURL); err != nil {
			c.logger.Warn("contact created but photo update failed",
				logging.Operation("people.create"),
				logging.Resource(result.ResourceName),
				logging.Err(err),
			)
		} else if refreshed, err := c.Get(ctx, result.ResourceName); err == nil {
			result = *refreshed
		}
	}
	return &result, nil
}

// Update performs a partial update: it fetches the current record for
// its etag, merges the update onto it, and writes back only the changed
// field paths. Fields absent from the update are never touched.
func (c *Client) Update(ctx context.Context, resourceName string, update contacts.Update) (*contacts.Record, error) {
	if resourceName == "" {
		return nil, &contacts.ValidationError{Field: "resource_name", Reason: "must not be empty"}
	}

	current, err := c.Get(ctx, resourceName)
	if err != nil {
		return nil, err
	}
	merged, err := contacts.Merge(*current, update)
	if err != nil {
		return nil, err
	}

	result := *current
	if mask := update.FieldMask(); len(mask) > 0 {
		if current.Etag == "" {
			return nil, &APIError{Op: "update", Resource: resourceName, Message: "contact has no etag, cannot update safely"}
		}
		updated, err := call(ctx, c, "update", resourceName, func() (*people.Person, error) {
			return c.svc.People.UpdateContact(resourceName, toPerson(merged)).
				UpdatePersonFields(strings.Join(mask, ",")).
				Context(ctx).Do()
		})
		if err != nil {
			return nil, err
		}
		result = toRecord(updated)
	}

	if update.PhotoURL != nil {
		if *update.PhotoURL == "" {
			if err := c.DeletePhoto(ctx, resourceName); err != nil {
				return nil, err
			}
		} else if err := c.UpdatePhoto(ctx, resourceName, *update.PhotoURL); err != nil {
			return nil, err
		}
		if refreshed, err := c.Get(ctx, resourceName); err == nil {
			result = *refreshed
		}
	}
	return &result, nil
}

// Delete removes a contact. Deleting a contact that is already gone is
// a no-op, so the operation is idempotent from the caller's view.
func (c *Client) Delete(ctx context.Context, resourceName string) error {
	if resourceName == "" {
		return &contacts.ValidationError{Field: "resource_name", Reason: "must not be empty"}
	}
	_, err := call(ctx, c, "delete", resourceName, func() (*people.Empty, error) {
		return c.svc.People.DeleteContact(resourceName).Context(ctx).Do()
	})
	if IsNotFound(err) {
		c.logger.Debug("contact already deleted",
			logging.Operation("people.delete"),
			logging.Resource(resourceName),
		)
		return nil
	}
	return err
}

// ListAll walks the user's full contact set page by page and returns
// every connection exactly once.
func (c *Client) ListAll(ctx context.Context) ([]contacts.Record, error) {
	var records []contacts.Record
	pageToken := ""
	for {
		resp, err := call(ctx, c, "list", "", func() (*people.ListConnectionsResponse, error) {
			req := c.svc.People.Connections.List("people/me").
				PageSize(listPageSize).
				PersonFields(personFields)
			if pageToken != "" {
				req = req.PageToken(pageToken)
			}
			return req.Context(ctx).Do()
		})
		if err != nil {
			return nil, err
		}
		for _, person := range resp.Connections {
			records = append(records, toRecord(person))
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			return records, nil
		}
	}
}

// BirthdaysOn returns every contact whose birthday falls on the given
// month and day, regardless of year or missing year. Contacts without
// a birthday are excluded.
func (c *Client) BirthdaysOn(ctx context.Context, month, day int) ([]contacts.Record, error) {
	all, err := c.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var matches []contacts.Record
	for _, record := range all {
		if record.Birthday != nil && record.Birthday.Month == month && record.Birthday.Day == day {
			matches = append(matches, record)
		}
	}
	return matches, nil
}

// UpdatePhoto sets a contact's photo from a publicly reachable image
// URL via the dedicated photo endpoint.
func (c *Client) UpdatePhoto(ctx context.Context, resourceName, photoURL string) error {
	if photoURL == "" {
		return &contacts.ValidationError{Field: "photo_url", Reason: "must not be empty"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return &APIError{Op: "updatePhoto", Resource: resourceName, Err: err}
	}
	resp, err := c.images.Do(req)
	if err != nil {
		return &APIError{Op: "updatePhoto", Resource: resourceName, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Op: "updatePhoto", Resource: resourceName, Code: resp.StatusCode, Message: "failed to fetch photo from URL"}
	}
	img, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return &APIError{Op: "updatePhoto", Resource: resourceName, Err: err}
	}

	_, err = call(ctx, c, "updatePhoto", resourceName, func() (*people.UpdateContactPhotoResponse, error) {
		return c.svc.People.UpdateContactPhoto(resourceName, &people.UpdateContactPhotoRequest{
			PhotoBytes: base64.StdEncoding.EncodeToString(img),
		}).Context(ctx).Do()
	})
	return err
}

// DeletePhoto removes a contact's photo.
func (c *Client) DeletePhoto(ctx context.Context, resourceName string) error {
	_, err := call(ctx, c, "deletePhoto", resourceName, func() (*people.DeleteContactPhotoResponse, error) {
		return c.svc.People.DeleteContactPhoto(resourceName).Context(ctx).Do()
	})
	return err
}

func encodePageToken(offset int) string {
	return base64.URLEncoding.EncodeToString([]byte("o:" + strconv.Itoa(offset)))
}

func decodePageToken(token string) (int, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("malformed page token")
	}
	s := string(raw)
	if !strings.HasPrefix(s, "o:") {
		return 0, fmt.Errorf("malformed page token")
	}
	offset, err := strconv.Atoi(s[2:])
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("malformed page token")
	}
	return offset, nil
}
