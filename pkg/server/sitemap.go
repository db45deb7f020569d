package server

import (
	"net/http"

	"organism/pkg/sitemap"

	"github.com/labstack/echo/v4"
)

func (srv *Server) serveSitemap(ctx echo.Context) error {
	ctx.Response().Header().Set(echo.HeaderCacheControl, sitemap.CacheControl)
	return ctx.Blob(http.StatusOK, sitemap.ContentType, srv.sitemap)
}
