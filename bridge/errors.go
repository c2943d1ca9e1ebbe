package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHeaders is reported when the response header block does not
	// conform to the CGI header grammar, or is never terminated by a blank
	// line. There is no partial recovery.
	ErrMalformedHeaders = errors.New("malformed response headers")

	// ErrInvalidStatus is reported when the Status pseudo-header carries a
	// leading token that is not a valid unsigned integer.
	ErrInvalidStatus = errors.New("invalid status header value")

	// ErrEmptyRemoteName is reported when -O is requested but the URL path
	// yields no usable file name segment.
	ErrEmptyRemoteName = errors.New("remote file name has no length")
)

// UpstreamError reports that the server answered with an error status while
// fail-on-status was requested. It is raised before any body bytes are
// written.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("server responded with error status %d", e.Status)
}
