package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"organism/pkg/models"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// DebatesName labels debate service calls in logs and metrics.
	DebatesName = "debates"

	DefaultDebateLimit   = 3
	DefaultDebateTimeout = 3 * time.Second
)

// curatedDebates stand in for live debates so the page never renders an
// empty panel during a debate service outage.
var curatedDebates = []models.DebateRecord{
	{
		Headline:  "Should frontier model weights be released openly?",
		Source:    "Fulqrum",
		Consensus: 0.62,
		Agents:    []string{"Skeptic", "Optimist", "Ethicist"},
	},
	{
		Headline:  "Is edge inference ready to replace hosted model APIs?",
		Source:    "Fulqrum",
		Consensus: 0.71,
		Agents:    []string{"Engineer", "Economist", "Pragmatist"},
	},
	{
		Headline:  "Can emergent behaviour in agent swarms be measured?",
		Source:    "Fulqrum",
		Consensus: 0.48,
		Agents:    []string{"Researcher", "Philosopher", "Statistician"},
	},
}

// CuratedDebates returns a fresh copy of the static fallback list.
func CuratedDebates() []models.DebateRecord {
	out := make([]models.DebateRecord, len(curatedDebates))
	for i, d := range curatedDebates {
		out[i] = d.Clone()
	}
	return out
}

// DebateFetcher reads recent debates from the Fulqrum service.
type DebateFetcher struct {
	client   *retryablehttp.Client
	endpoint Endpoint
	limit    int
}

// NewDebateFetcher creates a debate fetcher requesting up to limit records.
func NewDebateFetcher(client *retryablehttp.Client, endpoint Endpoint, limit int) *DebateFetcher {
	if endpoint.Timeout <= 0 {
		endpoint.Timeout = DefaultDebateTimeout
	}
	if limit <= 0 || limit > DefaultDebateLimit {
		limit = DefaultDebateLimit
	}
	return &DebateFetcher{client: client, endpoint: endpoint, limit: limit}
}

// Fetch calls GET {base}/api/debates/recent?limit=N.
func (d *DebateFetcher) Fetch(ctx context.Context) Result[[]models.DebateRecord] {
	target, err := d.recentURL()
	if err != nil {
		return Fallback(CuratedDebates(), err)
	}

	return Call(ctx, d.client, CallSpec{
		Name:    DebatesName,
		URL:     target,
		Auth:    d.endpoint.Auth,
		Timeout: d.endpoint.Timeout,
	}, CuratedDebates(), d.decode)
}

func (d *DebateFetcher) recentURL() (string, error) {
	target, err := url.JoinPath(d.endpoint.BaseURL, "api", "debates", "recent")
	if err != nil {
		return "", err
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("limit", strconv.Itoa(d.limit))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

type debatesPayload struct {
	Success bool            `json:"success"`
	Debates json.RawMessage `json:"debates"`
}

type rawDebate struct {
	Headline       string     `json:"headline"`
	Source         string     `json:"source"`
	ConsensusScore *float64    `json:"consensus_score"`
	Agents         []*rawAgent `json:"agents"`
}

type rawAgent struct {
	Name string `json:"name"`
}

func (d *DebateFetcher) decode(body io.Reader) ([]models.DebateRecord, error) {
	var payload debatesPayload
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if !payload.Success {
		return nil, ErrUnsuccessful
	}
	if len(payload.Debates) == 0 || string(payload.Debates) == "null" {
		return nil, fmt.Errorf("%w: debates field missing", ErrMalformed)
	}

	var raw []*rawDebate
	if err := json.Unmarshal(payload.Debates, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if len(raw) > d.limit {
		raw = raw[:d.limit]
	}

	records := make([]models.DebateRecord, 0, len(raw))
	for i, r := range raw {
		record, err := projectDebate(r)
		if err != nil {
			return nil, fmt.Errorf("%w: debate %d: %w", ErrMalformed, i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

var (
	errNullDebate = errors.New("null debate record")
	errNullAgent  = errors.New("null agent entry")
)

// projectDebate rejects null records and null agents; either means the
// payload is not in the shape the page can render.
func projectDebate(r *rawDebate) (models.DebateRecord, error) {
	if r == nil {
		return models.DebateRecord{}, errNullDebate
	}

	record := models.DebateRecord{
		Headline: r.Headline,
		Source:   r.Source,
		Agents:   make([]string, 0, len(r.Agents)),
	}
	if r.ConsensusScore != nil {
		record.Consensus = *r.ConsensusScore
	}
	for _, agent := range r.Agents {
		if agent == nil {
			return models.DebateRecord{}, errNullAgent
		}
		record.Agents = append(record.Agents, agent.Name)
	}
	return record, nil
}
