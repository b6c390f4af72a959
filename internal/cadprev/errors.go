package cadprev

import (
	"errors"
	"fmt"
)

// Kind classifies why a fetch failed.
type Kind int

const (
	KindTimeout Kind = iota + 1
	KindConnection
	KindHTTPStatus
	KindMalformedResponse
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection_failure"
	case KindHTTPStatus:
		return "http_status"
	case KindMalformedResponse:
		return "malformed_response"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// FetchError is returned by every failed FetchPortfolio call.
type FetchError struct {
	Kind       Kind
	URL        string
	StatusCode int    // KindHTTPStatus only
	Body       string // excerpt of the response body, KindHTTPStatus only
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == KindHTTPStatus:
		return fmt.Sprintf("cadprev: HTTP %d from %s: %s", e.StatusCode, e.URL, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("cadprev: %s at %s: %v", e.Kind, e.URL, e.Err)
	default:
		return fmt.Sprintf("cadprev: %s at %s", e.Kind, e.URL)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind of a FetchError anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}
