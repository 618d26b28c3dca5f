package echoapi

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/listing"
	"github.com/examhub/portal/core/user"
)

// bindListQuery reads `search`, `ordering` and `page` from the query string.
// Malformed values fall back to the first page of the default listing.
func bindListQuery(ctx echo.Context) listing.Query {
	q := listing.Query{
		Search:   ctx.QueryParam("search"),
		Ordering: ctx.QueryParam("ordering"),
	}
	if page, err := strconv.Atoi(ctx.QueryParam("page")); err == nil {
		q.Page = page
	}
	q.Clean()
	return q
}

func paramID(ctx echo.Context) core.ID {
	return core.ID(ctx.Param("id"))
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email)
	return validate.Struct(lr)
}

func bindAndValidate(ctx echo.Context, validate *validator.Validate, data interface {
	Validate(*validator.Validate) error
}) error {
	if err := ctx.Bind(data); err != nil {
		return errors.Wrapf(err, "binding to %T", data)
	}
	return data.Validate(validate)
}
