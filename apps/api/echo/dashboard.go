package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/examhub/portal/core/catalog"
)

type DashboardResponse struct {
	catalog.Counts
	Users int `json:"users"`
}

// dashboard sums up the collections an admin manages.
func (s *Server) dashboard(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	counts, err := s.deps.CatalogSvc.Counts(reqCtx)
	if err != nil {
		return errors.Wrap(err, "counting catalog")
	}
	users, err := s.deps.UserSvc.All(reqCtx)
	if err != nil {
		return errors.Wrap(err, "counting users")
	}
	return ctx.JSON(http.StatusOK, DashboardResponse{Counts: counts, Users: len(users)})
}
