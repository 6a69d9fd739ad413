package people

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"google.golang.org/api/googleapi"
)

const maxAttempts = 4

// isTransient reports whether a remote failure is worth retrying:
// rate limiting and server-side errors are, everything else is not.
func isTransient(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500
}

func isUnauthorized(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized
}

// withBackoff runs fn with bounded exponential backoff on transient
// failures. Non-transient failures surface immediately.
func withBackoff[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 2 * time.Second

	return backoff.Retry(ctx, func() (T, error) {
		out, err := fn()
		if err != nil && !isTransient(err) {
			return out, backoff.Permanent(err)
		}
		return out, err
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(maxAttempts))
}

// call runs a remote operation with the full failure policy: transient
// retries with backoff, exactly one refresh-then-retry cycle on 401,
// and mapping to the package error types.
func call[T any](ctx context.Context, c *Client, op, resource string, fn func() (T, error)) (T, error) {
	out, err := withBackoff(ctx, fn)
	if err != nil && isUnauthorized(err) && c.refresh != nil {
		if rerr := c.refresh(ctx); rerr != nil {
			var zero T
			return zero, rerr
		}
		out, err = withBackoff(ctx, fn)
	}
	if err != nil {
		var zero T
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			if gerr.Code == http.StatusNotFound {
				return zero, &NotFoundError{Resource: resource}
			}
			return zero, &APIError{Op: op, Resource: resource, Code: gerr.Code, Message: gerr.Message, Err: err}
		}
		return zero, &APIError{Op: op, Resource: resource, Err: err}
	}
	return out, nil
}
