package upstream

import (
	"context"
	"net/http"

	"organism/pkg/log"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// AuthHeader carries the shared secret expected by both upstreams.
const AuthHeader = "X-Internal-Auth"

// NewClient creates the HTTP client used for upstream calls. Each call is a
// single attempt: resilience comes from fallback values, not retries.
//
// Give every upstream its own client. retryablehttp closes the idle
// connections of its underlying http.Client whenever an attempt fails, so a
// shared client would let one failing upstream drop the keep-alive
// connections of the other.
func NewClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.HTTPClient = cleanhttp.DefaultPooledClient()
	client.RetryMax = 0
	client.CheckRetry = noRetryPolicy
	client.Logger = leveledLogger{logger: log.With("upstream-client")}
	return client
}

// noRetryPolicy never retries. Context errors are surfaced so callers can
// tell a timeout apart from a transport failure.
func noRetryPolicy(ctx context.Context, _ *http.Response, _ error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return false, nil
}

// leveledLogger adapts zerolog to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger zerolog.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	// Call reports every failure itself with a fallback reason.
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	// retryablehttp's info lines are per-request noise at our volume.
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
