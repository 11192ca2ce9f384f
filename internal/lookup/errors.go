package lookup

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrTimeout           = errors.New("upstream timeout")
	ErrTransport         = errors.New("upstream transport error")
	ErrMalformedResponse = errors.New("malformed upstream response")
	ErrNoTimezoneMatch   = errors.New("no timezone matches location")
	ErrMissingDatetime   = errors.New("datetime missing from response")
)

// StatusError reports a non-200 answer from an upstream service.
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status=%d body=%s", e.Service, e.Code, e.Body)
}

func transportError(service string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %v", service, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", service, ErrTransport, err)
}
