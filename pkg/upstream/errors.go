package upstream

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
)

var (
	// ErrMalformed is returned when an upstream answers 2xx with a body that
	// does not have the expected shape.
	ErrMalformed = errors.New("malformed upstream response")

	// ErrUnsuccessful is returned when the debate service answers with success=false.
	ErrUnsuccessful = errors.New("upstream reported failure")
)

// Fallback reasons, used as log fields and metric labels.
const (
	ReasonNone         = ""
	ReasonTimeout      = "timeout"
	ReasonCanceled     = "canceled"
	ReasonStatus       = "status"
	ReasonMalformed    = "malformed"
	ReasonUnsuccessful = "unsuccessful"
	ReasonNetwork      = "network"
)

// StatusError represents a non-2xx answer from an upstream.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return "upstream returned status " + strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
}

// Reason classifies err into one of the Reason* constants.
func Reason(err error) string {
	if err == nil {
		return ReasonNone
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ReasonCanceled
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return ReasonStatus
	}
	if errors.Is(err, ErrUnsuccessful) {
		return ReasonUnsuccessful
	}
	if errors.Is(err, ErrMalformed) {
		return ReasonMalformed
	}

	return ReasonNetwork
}
