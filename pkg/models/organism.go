package models

// Trend values used by Metric.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// StatusAlive is the only status the endpoint reports; it describes the
// endpoint itself, not the upstreams behind it.
const StatusAlive = "alive"

// OrganismStatus is the payload served by GET /api/organism-status.
type OrganismStatus struct {
	Status         string            `json:"status"`
	Connections    int               `json:"connections"`
	LastUpdate     string            `json:"lastUpdate"`
	Nodes          []Node            `json:"nodes"`
	Debates        []DebateRecord    `json:"debates"`
	Metrics        map[string]Metric `json:"metrics"`
	EmergenceCount int               `json:"emergenceCount"`
}

// Node is one entry of the organism graph rendered by the site.
type Node struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Activity float64 `json:"activity"`
	Color    string  `json:"color"`
}

// Metric is a labelled headline number with its trend indicator.
type Metric struct {
	Value string `json:"value"`
	Trend string `json:"trend"`
	Desc  string `json:"desc"`
}

// ErrorResponse is returned with HTTP 500 when assembly itself fails.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
