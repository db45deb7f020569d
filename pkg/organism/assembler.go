package organism

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"time"

	"organism/pkg/log"
	"organism/pkg/models"
	"organism/pkg/upstream"

	"golang.org/x/sync/errgroup"
)

const (
	fulqrumActiveActivity = 0.8
	fulqrumIdleActivity   = 0.3
	emergenceCount        = 3

	// LoadingGlyph marks the placeholder debate shown while no debates exist.
	LoadingGlyph = "⋯"

	lastUpdateLayout = "2006-01-02T15:04:05.000Z07:00"
)

// ErrInternal wraps any fault raised by assembly itself. It is the only error
// Assemble returns; upstream failures are absorbed as fallbacks.
var ErrInternal = errors.New("internal assembly fault")

// HubSource provides hub liveness figures.
type HubSource interface {
	Fetch(ctx context.Context) upstream.Result[models.HubStatus]
}

// DebateSource provides recent debates.
type DebateSource interface {
	Fetch(ctx context.Context) upstream.Result[[]models.DebateRecord]
}

// Sources records where each part of an assembled payload came from.
type Sources struct {
	Hub     upstream.Source
	Debates upstream.Source
}

// String renders the sources as a header value, e.g. "hub=live, debates=fallback".
func (s Sources) String() string {
	return "hub=" + string(s.Hub) + ", debates=" + string(s.Debates)
}

// Assembler merges hub and debate results into the organism payload.
type Assembler struct {
	hub     HubSource
	debates DebateSource
	now     func() time.Time
}

// NewAssembler creates an assembler. A nil clock defaults to time.Now.
func NewAssembler(hub HubSource, debates DebateSource, now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{hub: hub, debates: debates, now: now}
}

// Assemble fetches both upstreams concurrently and builds the payload. Its
// error, if any, wraps ErrInternal.
func (a *Assembler) Assemble(ctx context.Context) (status *models.OrganismStatus, sources Sources, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = nil
			err = panicError(r)
		}
	}()

	var (
		hubResult    upstream.Result[models.HubStatus]
		debateResult upstream.Result[[]models.DebateRecord]
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		defer recoverInto(&err)
		hubResult = a.hub.Fetch(groupCtx)
		return nil
	})
	group.Go(func() (err error) {
		defer recoverInto(&err)
		debateResult = a.debates.Fetch(groupCtx)
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, Sources{}, err
	}

	sources = Sources{Hub: hubResult.Source, Debates: debateResult.Source}
	return a.build(hubResult.Data, debateResult.Data), sources, nil
}

func (a *Assembler) build(hub models.HubStatus, debates []models.DebateRecord) *models.OrganismStatus {
	hasDebates := len(debates) > 0

	fulqrumActivity := fulqrumIdleActivity
	fulqrumTrend := models.TrendStable
	if hasDebates {
		fulqrumActivity = fulqrumActiveActivity
		fulqrumTrend = models.TrendUp
	}

	fulqrumValue := strconv.Itoa(len(debates))
	if !hasDebates {
		debates = []models.DebateRecord{placeholderDebate()}
	}

	return &models.OrganismStatus{
		Status:      models.StatusAlive,
		Connections: hub.ActiveNodes,
		LastUpdate:  a.now().UTC().Format(lastUpdateLayout),
		Nodes: []models.Node{
			{ID: "noqnoq", Name: "NoqNoq Hub", Activity: 0.9, Color: "blue"},
			{ID: "fulqrum", Name: "Fulqrum", Activity: fulqrumActivity, Color: "purple"},
			{ID: "qslice", Name: "qSLiCE", Activity: 0.5, Color: "purple"},
			{ID: "edat", Name: "EDAT", Activity: 0.4, Color: "blue"},
			{ID: "site", Name: "This Site", Activity: 0.8, Color: "blue"},
		},
		Debates: debates,
		Metrics: map[string]models.Metric{
			"NoqNoq":  {Value: hub.MessageCount, Trend: models.TrendUp, Desc: "messages today"},
			"Fulqrum": {Value: fulqrumValue, Trend: fulqrumTrend, Desc: "debates analyzed"},
			"qSLiCE":  {Value: "93%", Trend: models.TrendStable, Desc: "decomposition accuracy"},
			"Edge":    {Value: "<50ms", Trend: models.TrendDown, Desc: "p99 latency"},
		},
		EmergenceCount: emergenceCount,
	}
}

func placeholderDebate() models.DebateRecord {
	return models.DebateRecord{
		Headline:  "Agents are gathering for the next debate",
		Source:    "Fulqrum",
		Consensus: 0,
		Agents:    []string{LoadingGlyph},
	}
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = panicError(r)
	}
}

func panicError(r interface{}) error {
	log.Error().
		Interface("panic", r).
		Bytes("stack", debug.Stack()).
		Msg("Recovered panic while assembling organism status")
	return fmt.Errorf("%w: %v", ErrInternal, r)
}
