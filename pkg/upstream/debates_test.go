package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"organism/pkg/models"

	"github.com/stretchr/testify/suite"
)

// DebatesTestSuite tests the debate fetcher
type DebatesTestSuite struct {
	suite.Suite
	mu      sync.Mutex
	body    string
	status  int
	delay   time.Duration
	request *url.URL
	service *httptest.Server
}

// respond sets what the mock service answers with
func (s *DebatesTestSuite) respond(status int, body string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
	s.delay = delay
}

// lastRequest returns the URL of the most recent request
func (s *DebatesTestSuite) lastRequest() *url.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.request
}

// SetupSuite runs once before all tests
func (s *DebatesTestSuite) SetupSuite() {
	s.service = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.request = r.URL
		status, body, delay := s.status, s.body, s.delay
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(delay):
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

// TearDownSuite runs once after all tests
func (s *DebatesTestSuite) TearDownSuite() {
	if s.service != nil {
		s.service.Close()
	}
}

// SetupTest runs before each test
func (s *DebatesTestSuite) SetupTest() {
	s.respond(http.StatusOK, `{"success": true, "debates": []}`, 0)
	s.mu.Lock()
	s.request = nil
	s.mu.Unlock()
}

func (s *DebatesTestSuite) fetch(limit int, timeout time.Duration) Result[[]models.DebateRecord] {
	fetcher := NewDebateFetcher(NewClient(), Endpoint{
		BaseURL: s.service.URL,
		Auth:    "svc-secret",
		Timeout: timeout,
	}, limit)
	return fetcher.Fetch(context.Background())
}

// TestProjection tests mapping raw records to DebateRecord
func (s *DebatesTestSuite) TestProjection() {
	s.respond(http.StatusOK, `{"success": true, "debates": [
		{"headline": "Rust or Go?", "source": "HN", "consensus_score": 0.55,
		 "agents": [{"name": "Alpha", "model": "x"}, {"name": "Beta"}]},
		{"headline": "Tabs or spaces?", "source": "Lobsters"}
	]}`, 0)

	result := s.fetch(3, time.Second)

	s.True(result.IsLive())
	s.Require().Len(result.Data, 2)
	s.Equal(models.DebateRecord{
		Headline:  "Rust or Go?",
		Source:    "HN",
		Consensus: 0.55,
		Agents:    []string{"Alpha", "Beta"},
	}, result.Data[0])
	s.Equal(0.0, result.Data[1].Consensus)
	s.NotNil(result.Data[1].Agents)
	s.Empty(result.Data[1].Agents)

	s.Equal("/api/debates/recent", s.lastRequest().Path)
	s.Equal("3", s.lastRequest().Query().Get("limit"))
}

// TestTruncatesToLimit tests that extra records are dropped
func (s *DebatesTestSuite) TestTruncatesToLimit() {
	s.respond(http.StatusOK, `{"success": true, "debates": [
		{"headline": "1"}, {"headline": "2"}, {"headline": "3"}, {"headline": "4"}
	]}`, 0)

	result := s.fetch(2, time.Second)

	s.True(result.IsLive())
	s.Len(result.Data, 2)
	s.Equal("2", s.lastRequest().Query().Get("limit"))
}

// TestLimitClamped tests that limits above three are clamped
func (s *DebatesTestSuite) TestLimitClamped() {
	s.fetch(10, time.Second)
	s.Equal("3", s.lastRequest().Query().Get("limit"))
}

// TestEmptyLive tests a successful answer with no debates
func (s *DebatesTestSuite) TestEmptyLive() {
	result := s.fetch(3, time.Second)

	s.True(result.IsLive())
	s.Empty(result.Data)
}

// TestFallbacks tests every failure mode resolves to the curated list
func (s *DebatesTestSuite) TestFallbacks() {
	cases := []struct {
		name   string
		status int
		body   string
		reason string
	}{
		{"unsuccessful", http.StatusOK, `{"success": false, "debates": [{"headline": "x"}]}`, ReasonUnsuccessful},
		{"missing success", http.StatusOK, `{"debates": []}`, ReasonUnsuccessful},
		{"missing debates", http.StatusOK, `{"success": true}`, ReasonMalformed},
		{"null debates", http.StatusOK, `{"success": true, "debates": null}`, ReasonMalformed},
		{"debates not array", http.StatusOK, `{"success": true, "debates": {"headline": "x"}}`, ReasonMalformed},
		{"null record", http.StatusOK, `{"success": true, "debates": [null]}`, ReasonMalformed},
		{"null record among live ones", http.StatusOK, `{"success": true, "debates": [{"headline": "x"}, null]}`, ReasonMalformed},
		{"null agent", http.StatusOK, `{"success": true, "debates": [{"headline": "x", "agents": [{"name": "A"}, null]}]}`, ReasonMalformed},
		{"invalid json", http.StatusOK, `{"success": tru`, ReasonMalformed},
		{"server error", http.StatusInternalServerError, `{"success": true, "debates": []}`, ReasonStatus},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.respond(tc.status, tc.body, 0)

			result := s.fetch(3, time.Second)

			s.False(result.IsLive())
			s.Equal(CuratedDebates(), result.Data)
			s.Equal(tc.reason, Reason(result.Reason))
		})
	}
}

// TestTimeout tests that a slow service falls back within the bound
func (s *DebatesTestSuite) TestTimeout() {
	s.respond(http.StatusOK, `{"success": true, "debates": []}`, 2*time.Second)

	start := time.Now()
	result := s.fetch(3, 50*time.Millisecond)

	s.Less(time.Since(start), time.Second)
	s.False(result.IsLive())
	s.Len(result.Data, 3)
	s.Equal(ReasonTimeout, Reason(result.Reason))
}

// TestCuratedDebatesAreCopies tests that callers cannot mutate the fallback list
func (s *DebatesTestSuite) TestCuratedDebatesAreCopies() {
	first := CuratedDebates()
	first[0].Headline = "changed"
	first[0].Agents[0] = "changed"

	second := CuratedDebates()
	s.Len(second, 3)
	s.NotEqual("changed", second[0].Headline)
	s.NotEqual("changed", second[0].Agents[0])
}

func TestDebatesSuite(t *testing.T) {
	suite.Run(t, new(DebatesTestSuite))
}
