package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/user"
)

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

func (s *Server) registerAuthAPI(g *echo.Group, authed []echo.MiddlewareFunc) {
	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/register", s.register)
	ag.POST("/login", s.login)

	// authed endpoints
	ag.POST("/token-refresh", s.tokenRefresh, authed...)
}

func (s *Server) registerUserAPI(ug *echo.Group) {
	ug.GET("", s.userQuery, adminMiddleware())

	// detail endpoints
	dg := ug.Group("/:id", ctxUserOrAdminMiddleware(s.deps.UserSvc))
	dg.GET("", s.userRetrieve)
	dg.PUT("", s.userUpdate)
	dg.PUT("/password", s.userChangePassword)
	dg.DELETE("", s.userDestroy, adminMiddleware())
}

// Handlers

func (s *Server) register(ctx echo.Context) error {
	var data user.NewUser
	if err := bindAndValidate(ctx, s.deps.Validate, &data); err != nil {
		return err
	}

	usr, err := s.deps.UserSvc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, usr.Public())
}

func (s *Server) login(ctx echo.Context) error {
	var data LoginRequest
	if err := bindAndValidate(ctx, s.deps.Validate, &data); err != nil {
		return err
	}

	usr, err := s.deps.UserSvc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		switch errors.Cause(err) {
		case user.ErrEmailNotFound, user.ErrWrongPassword:
			return core.NewValidationError(errors.Cause(err))
		case user.ErrAccountDisabled:
			return errAccountDisabled
		}
		return errors.Wrap(err, "authenticating")
	}

	token, err := GenerateToken(s.deps.Conf, GetUserClaims(s.deps.Conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr.Public()})
}

func (s *Server) tokenRefresh(ctx echo.Context) error {
	token, err := s.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (s *Server) userQuery(ctx echo.Context) error {
	page, err := s.deps.UserSvc.List(ctx.Request().Context(), bindListQuery(ctx))
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (s *Server) userRetrieve(ctx echo.Context) error {
	usr, ok := ctx.Get(contextObjectKey).(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, usr.Public())
}

// userUpdate lets users edit their own profile. Only admins may change a role or a status,
// and never their own.
func (s *Server) userUpdate(ctx echo.Context) error {
	usr, ok := ctx.Get(contextObjectKey).(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}

	var data user.UpdateUser
	if err := bindAndValidate(ctx, s.deps.Validate, &data); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, s.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	reqCtx := ctx.Request().Context()

	if data.Role == nil && data.Status == nil {
		usr, err = s.deps.UserSvc.UpdateProfile(reqCtx, usr, data.UpdateProfile)
		if err != nil {
			return errors.Wrap(err, "updating profile")
		}
		return ctx.JSON(http.StatusOK, usr.Public())
	}

	if !ctxUsr.IsAdmin() {
		return errHttpForbidden
	}
	// Say No to Suicide! an admin cannot demote or disable themselves
	if usr.ID == ctxUsr.ID &&
		((data.Role != nil && *data.Role != user.RoleAdmin) || (data.Status != nil && *data.Status != user.StatusActive)) {
		return errHttpForbidden
	}

	usr, err = s.deps.UserSvc.Update(reqCtx, usr, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr.Public())
}

// userChangePassword is only open to the user themselves: admins use the CLI to reset passwords.
func (s *Server) userChangePassword(ctx echo.Context) error {
	usr, ok := ctx.Get(contextObjectKey).(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}
	ctxUsr, err := getContextUser(ctx, s.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if usr.ID != ctxUsr.ID {
		return errHttpForbidden
	}

	var data user.ChangePassword
	if err = bindAndValidate(ctx, s.deps.Validate, &data); err != nil {
		return err
	}
	if _, err = s.deps.UserSvc.ChangePassword(ctx.Request().Context(), usr, data); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been changed."})
}

func (s *Server) userDestroy(ctx echo.Context) error {
	usr, ok := ctx.Get(contextObjectKey).(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}

	// Say No to Suicide! ctxUser cannot delete themselves
	ctxUsr, err := getContextUser(ctx, s.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if usr.ID == ctxUsr.ID {
		return errHttpForbidden
	}

	if err := s.deps.UserSvc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}
