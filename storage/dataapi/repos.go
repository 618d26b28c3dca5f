package dataapi

import (
	"context"

	"github.com/examhub/portal/core/catalog"
	"github.com/examhub/portal/core/quiz"
	"github.com/examhub/portal/core/user"
)

func NewUserRepository(c *Client) user.Repository {
	return NewCollection[user.User](c, "user", "users")
}

func NewCourseRepository(c *Client) *Collection[catalog.Course] {
	return NewCollection[catalog.Course](c, "course", "courses")
}

func NewSubjectRepository(c *Client) *Collection[catalog.Subject] {
	return NewCollection[catalog.Subject](c, "subject", "subjects")
}

func NewExamRepository(c *Client) *Collection[catalog.Exam] {
	return NewCollection[catalog.Exam](c, "exam", "exams")
}

func NewQuestionRepository(c *Client) *Collection[catalog.Question] {
	return NewCollection[catalog.Question](c, "question", "questions")
}

// NewCatalogService wires the catalog service to the course, subject, exam and question collections.
func NewCatalogService(c *Client) *catalog.Service {
	return catalog.NewService(
		NewCourseRepository(c),
		NewSubjectRepository(c),
		NewExamRepository(c),
		NewQuestionRepository(c),
	)
}

// Results posts exam results to the `results` collection.
type Results struct {
	coll *Collection[quiz.RemoteResult]
}

var _ quiz.ResultSubmitter = (*Results)(nil)

func NewResults(c *Client) *Results {
	return &Results{coll: NewCollection[quiz.RemoteResult](c, "result", "results")}
}

func (r *Results) SubmitResult(ctx context.Context, res quiz.RemoteResult) error {
	_, err := r.coll.Create(ctx, res)
	return err
}
