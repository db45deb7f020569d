package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"organism/pkg/log"
	"organism/pkg/models"
	"organism/pkg/organism"

	"github.com/labstack/echo/v4"
)

// SourcesHeader reports whether each upstream was live or a fallback.
const SourcesHeader = "X-Organism-Sources"

const statusErrorMessage = "Failed to fetch organism status"

// StatusAssembler builds the organism payload.
type StatusAssembler interface {
	Assemble(ctx context.Context) (*models.OrganismStatus, organism.Sources, error)
}

// organismStatus handles GET /api/organism-status. Upstream outages never
// reach this level; only a fault in assembly produces a 500.
func (srv *Server) organismStatus(ctx echo.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = srv.statusError(ctx, fmt.Errorf("%w: %v", organism.ErrInternal, r))
		}
	}()

	status, sources, err := srv.assembler.Assemble(ctx.Request().Context())
	if err != nil {
		return srv.statusError(ctx, err)
	}

	// Encode before writing headers so a failure cannot leave a partial 200.
	body, err := json.Marshal(status)
	if err != nil {
		return srv.statusError(ctx, fmt.Errorf("%w: encode: %w", organism.ErrInternal, err))
	}

	header := ctx.Response().Header()
	header.Set(echo.HeaderCacheControl, srv.cacheControl())
	header.Set(SourcesHeader, sources.String())

	log.Debug().
		Str("request_id", ctx.Response().Header().Get(echo.HeaderXRequestID)).
		Str("hub", string(sources.Hub)).
		Str("debates", string(sources.Debates)).
		Int("debate_count", len(status.Debates)).
		Msg("Organism status assembled")

	statusResponses.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
	return ctx.JSONBlob(http.StatusOK, body)
}

func (srv *Server) statusError(ctx echo.Context, err error) error {
	log.Error().
		Err(err).
		Str("request_id", ctx.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("Error building organism status")

	header := ctx.Response().Header()
	header.Del(echo.HeaderCacheControl)
	header.Del(SourcesHeader)

	statusResponses.WithLabelValues(strconv.Itoa(http.StatusInternalServerError)).Inc()
	return ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   statusErrorMessage,
		Message: err.Error(),
	})
}

func (srv *Server) cacheControl() string {
	return "public, max-age=" + strconv.Itoa(int(srv.cfg.CacheMaxAge.Seconds()))
}
