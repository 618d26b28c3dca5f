package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/catalog"
)

// validatable is a pointer to an entity that knows how to validate itself.
type validatable[T any] interface {
	*T
	Validate(*validator.Validate) error
}

// entityApi serves the list/detail endpoints of one catalog collection.
// Reads are open to every user, writes to admins only.
type entityApi[T any, PT validatable[T]] struct {
	ents     *catalog.Entities[T]
	validate *validator.Validate
}

func registerEntityAPI[T any, PT validatable[T]](g *echo.Group, ents *catalog.Entities[T], validate *validator.Validate) *echo.Group {
	api := entityApi[T, PT]{ents: ents, validate: validate}
	admin := adminMiddleware()

	g.GET("", api.query)
	g.POST("", api.create, admin)
	g.GET("/:id", api.retrieve)
	g.PUT("/:id", api.update, admin)
	g.DELETE("/:id", api.destroy, admin)
	return g
}

func (api entityApi[T, PT]) query(ctx echo.Context) error {
	page, err := api.ents.Query(ctx.Request().Context(), bindListQuery(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api entityApi[T, PT]) retrieve(ctx echo.Context) error {
	item, err := api.ents.Get(ctx.Request().Context(), paramID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api entityApi[T, PT]) create(ctx echo.Context) error {
	var data T
	if err := bindAndValidate(ctx, api.validate, PT(&data)); err != nil {
		return err
	}
	item, err := api.ents.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api entityApi[T, PT]) update(ctx echo.Context) error {
	var data T
	if err := bindAndValidate(ctx, api.validate, PT(&data)); err != nil {
		return err
	}
	item, err := api.ents.Update(ctx.Request().Context(), paramID(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api entityApi[T, PT]) destroy(ctx echo.Context) error {
	if err := api.ents.Delete(ctx.Request().Context(), paramID(ctx)); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) registerCatalogAPI(g *echo.Group, authed []echo.MiddlewareFunc) {
	svc := s.deps.CatalogSvc
	validate := s.deps.Validate

	cg := g.Group("/courses", authed...)
	cg.GET("/with-subjects", s.coursesWithSubjects)
	cg.GET("/:id/subjects", s.courseSubjects)
	registerEntityAPI[catalog.Course](cg, svc.Courses, validate)

	sg := g.Group("/subjects", authed...)
	sg.GET("/:id/exams", s.subjectExams)
	registerEntityAPI[catalog.Subject](sg, svc.Subjects, validate)

	eg := g.Group("/exams", authed...)
	registerEntityAPI[catalog.Exam](eg, svc.Exams, validate)

	// questions carry their answer keys: admins only
	qg := g.Group("/questions", append(authed, adminMiddleware())...)
	qg.GET("", s.questionQuery)
	qapi := entityApi[catalog.Question, *catalog.Question]{ents: svc.Questions, validate: validate}
	qg.POST("", qapi.create)
	qg.GET("/:id", qapi.retrieve)
	qg.PUT("/:id", qapi.update)
	qg.DELETE("/:id", qapi.destroy)
}

func (s *Server) coursesWithSubjects(ctx echo.Context) error {
	courses, err := s.deps.CatalogSvc.CoursesWithSubjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "fetching courses with subjects")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (s *Server) courseSubjects(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	if _, err := s.deps.CatalogSvc.Courses.Get(reqCtx, paramID(ctx)); err != nil {
		return err
	}
	subjects, err := s.deps.CatalogSvc.SubjectsByCourse(reqCtx, paramID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (s *Server) subjectExams(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	if _, err := s.deps.CatalogSvc.Subjects.Get(reqCtx, paramID(ctx)); err != nil {
		return err
	}
	exams, err := s.deps.CatalogSvc.ExamsBySubject(reqCtx, paramID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, exams)
}

// questionQuery lists questions, optionally those of one exam only (`examId`).
func (s *Server) questionQuery(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	if examID := ctx.QueryParam("examId"); examID != "" {
		questions, err := s.deps.CatalogSvc.QuestionsByExam(reqCtx, core.ID(examID))
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, questions)
	}
	page, err := s.deps.CatalogSvc.Questions.Query(reqCtx, bindListQuery(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, page)
}
