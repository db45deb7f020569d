package upstream

import (
	"context"
	"io"
	"net/http"
	"time"

	"organism/pkg/log"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// DefaultTimeout bounds a call whose CallSpec carries no timeout.
	DefaultTimeout = 3 * time.Second

	maxBodyBytes = 1 << 20
)

// Source tags where a Result's data came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Result is the tagged outcome of a bounded call: either live data, or the
// fallback value together with the reason the live data was unavailable.
type Result[T any] struct {
	Data   T
	Source Source
	Reason error
}

// Live wraps data obtained from the upstream.
func Live[T any](data T) Result[T] {
	return Result[T]{Data: data, Source: SourceLive}
}

// Fallback wraps a substitute value and the error that made it necessary.
func Fallback[T any](data T, reason error) Result[T] {
	return Result[T]{Data: data, Source: SourceFallback, Reason: reason}
}

// IsLive reports whether the data came from the upstream.
func (r Result[T]) IsLive() bool {
	return r.Source == SourceLive
}

// CallSpec describes one bounded GET.
type CallSpec struct {
	Name    string // upstream label for logs and metrics
	URL     string
	Auth    string
	Timeout time.Duration
}

// DecodeFunc turns a 2xx response body into T.
type DecodeFunc[T any] func(body io.Reader) (T, error)

// Call issues a single GET bounded by spec.Timeout and decodes the body. It
// never fails: any error, including expiry of the timeout, yields fallback.
// The timer and the in-flight request are released before Call returns.
func Call[T any](ctx context.Context, client *retryablehttp.Client, spec CallSpec, fallback T, decode DecodeFunc[T]) Result[T] {
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	data, err := doCall(reqCtx, client, spec, decode)
	elapsed := time.Since(start)
	upstreamDuration.WithLabelValues(spec.Name).Observe(elapsed.Seconds())

	if err != nil {
		reason := Reason(err)
		upstreamRequests.WithLabelValues(spec.Name, string(SourceFallback), reason).Inc()
		log.Warn().
			Err(err).
			Str("upstream", spec.Name).
			Str("reason", reason).
			Dur("elapsed", elapsed).
			Dur("timeout", timeout).
			Msg("Upstream unavailable, using fallback")
		return Fallback(fallback, err)
	}

	upstreamRequests.WithLabelValues(spec.Name, string(SourceLive), ReasonNone).Inc()
	log.Debug().
		Str("upstream", spec.Name).
		Dur("elapsed", elapsed).
		Msg("Upstream call succeeded")
	return Live(data)
}

func doCall[T any](ctx context.Context, client *retryablehttp.Client, spec CallSpec, decode DecodeFunc[T]) (T, error) {
	var zero T

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, spec.URL, nil)
	if err != nil {
		return zero, err
	}
	req.Header.Set("Accept", "application/json")
	if spec.Auth != "" {
		req.Header.Set(AuthHeader, spec.Auth)
	}

	resp, err := client.Do(req)
	if err != nil {
		return zero, err
	}
	defer func() {
		// Drain so the connection goes back to the client's idle pool.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("upstream", spec.Name).Msg("Failed to close upstream response body")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return zero, &StatusError{StatusCode: resp.StatusCode}
	}

	return decode(io.LimitReader(resp.Body, maxBodyBytes))
}
