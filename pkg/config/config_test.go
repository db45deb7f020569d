package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests configuration loading
type ConfigTestSuite struct {
	suite.Suite
	dir string
}

// SetupTest runs before each test
func (s *ConfigTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.T().Setenv("ORGANISM_INTERNAL_AUTH", "env-secret")
}

func (s *ConfigTestSuite) writeFile(content string) string {
	path := filepath.Join(s.dir, "organism.yml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestDefaults tests loading without a file
func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := Load("")
	s.Require().NoError(err)

	s.Equal(":8080", cfg.Addr)
	s.Equal("https://noqnoq.emergenthq.net/noqnoq", cfg.HubBaseURL)
	s.Equal(2*time.Second, cfg.HubTimeout)
	s.Equal(3*time.Second, cfg.DebateTimeout)
	s.Equal(3, cfg.DebateLimit)
	s.Equal(30*time.Second, cfg.CacheMaxAge)
	s.Equal("env-secret", cfg.InternalAuth)
}

// TestYAMLFile tests values read from a file
func (s *ConfigTestSuite) TestYAMLFile() {
	path := s.writeFile(`
addr: ":9000"
hub_base_url: "http://hub.internal/noqnoq"
service_base_url: "http://debates.internal"
hub_timeout: 1500ms
debate_limit: 2
cache_max_age: 1m
`)

	cfg, err := Load(path)
	s.Require().NoError(err)

	s.Equal(":9000", cfg.Addr)
	s.Equal("http://hub.internal/noqnoq", cfg.HubBaseURL)
	s.Equal("http://debates.internal", cfg.ServiceBaseURL)
	s.Equal(1500*time.Millisecond, cfg.HubTimeout)
	s.Equal(2, cfg.DebateLimit)
	s.Equal(time.Minute, cfg.CacheMaxAge)
}

// TestEnvOverridesFile tests that environment variables win over the file
func (s *ConfigTestSuite) TestEnvOverridesFile() {
	path := s.writeFile(`
internal_auth: "file-secret"
debate_timeout: 5s
`)
	s.T().Setenv("ORGANISM_DEBATE_TIMEOUT", "250ms")
	s.T().Setenv("ORGANISM_DEBUG", "true")
	s.T().Setenv("ORGANISM_DEBATE_LIMIT", "1")

	cfg, err := Load(path)
	s.Require().NoError(err)

	s.Equal("env-secret", cfg.InternalAuth)
	s.Equal(250*time.Millisecond, cfg.DebateTimeout)
	s.Equal(1, cfg.DebateLimit)
	s.True(cfg.Debug)
}

// TestMissingSecret tests that the shared secret is required
func (s *ConfigTestSuite) TestMissingSecret() {
	s.T().Setenv("ORGANISM_INTERNAL_AUTH", "")

	_, err := Load("")
	s.Error(err)
	s.Contains(err.Error(), "InternalAuth")
}

// TestInvalidValues tests validation failures
func (s *ConfigTestSuite) TestInvalidValues() {
	cases := map[string]string{
		"ORGANISM_HUB_BASE_URL":   "ftp://hub",
		"ORGANISM_DEBATE_LIMIT":   "4",
		"ORGANISM_HUB_TIMEOUT":    "0s",
		"ORGANISM_DEBATE_TIMEOUT": "soon",
		"ORGANISM_JSON_LOGS":      "maybe",
	}

	for key, value := range cases {
		s.Run(key, func() {
			s.T().Setenv(key, value)
			_, err := Load("")
			s.Error(err)
		})
	}
}

// TestUnreadableFile tests a missing config file
func (s *ConfigTestSuite) TestUnreadableFile() {
	_, err := Load(filepath.Join(s.dir, "missing.yml"))
	s.Error(err)
}

// TestMalformedFile tests invalid YAML
func (s *ConfigTestSuite) TestMalformedFile() {
	_, err := Load(s.writeFile("hub_timeout: [not a duration"))
	s.Error(err)
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
