package web

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrForbidden matches HTTP 403 responses via errors.Is. Reference wikis
// and similar sites return 403 for clients they classify as bots, so
// callers often want to report this case separately.
var ErrForbidden = errors.New("web: access forbidden")

// TransportError is a network-level failure (DNS, connection refused,
// timeout). These may succeed on retry; retrying is the caller's decision.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("web: fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response from the server. Not retryable without
// intervention.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	if e.Status == http.StatusForbidden {
		return fmt.Sprintf("web: HTTP 403 Forbidden fetching %s: the site is likely blocking automated access", e.URL)
	}
	return fmt.Sprintf("web: HTTP %d %s fetching %s", e.Status, http.StatusText(e.Status), e.URL)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrForbidden && e.Status == http.StatusForbidden
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
