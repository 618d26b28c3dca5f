package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/examhub/portal/core/quiz"
)

func (s *Server) registerQuizAPI(g *echo.Group, authed []echo.MiddlewareFunc) {
	// a second `/exams` group would shadow the catalog routes of the first one
	g.GET("/exams/:id/questions", s.examStart, authed...)
	g.POST("/exams/:id/submit", s.examSubmit, authed...)
	g.GET("/history", s.history, authed...)
}

// examStart returns the exam with its questions, without the answer keys.
func (s *Server) examStart(ctx echo.Context) error {
	view, err := s.deps.QuizSvc.Start(ctx.Request().Context(), paramID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}

func (s *Server) examSubmit(ctx echo.Context) error {
	learner, err := getContextUser(ctx, s.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data quiz.Submission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrapf(err, "binding to %T", &data)
	}

	res, err := s.deps.QuizSvc.Submit(ctx.Request().Context(), learner, paramID(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (s *Server) history(ctx echo.Context) error {
	learner, err := getContextUser(ctx, s.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	items, err := s.deps.QuizSvc.History(ctx.Request().Context(), learner, page)
	if err != nil {
		return errors.Wrap(err, "fetching history")
	}
	return ctx.JSON(http.StatusOK, items)
}
