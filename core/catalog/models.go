package catalog

import (
	"github.com/go-playground/validator/v10"

	"github.com/examhub/portal/core"
)

var errAnswerNotAnOption = "answer must be one of the options"

type (
	Course struct {
		ID          core.ID `json:"id"`
		Title       string  `json:"title" validate:"required,notblank"`
		Description string  `json:"description"`
		Img         string  `json:"img"`

		// attached by CoursesWithSubjects, never stored
		Subjects []Subject `json:"subjects,omitempty"`
	}

	Subject struct {
		ID          core.ID  `json:"id"`
		Title       string   `json:"title" validate:"required,notblank"`
		Description string   `json:"description"`
		Img         string   `json:"img"`
		CoursesID   core.ID  `json:"coursesId" validate:"required"`
		Post        []string `json:"post"`
	}

	Exam struct {
		ID            core.ID `json:"id"`
		Title         string  `json:"title" validate:"required,notblank"`
		Description   string  `json:"description"`
		Duration      int     `json:"duration" validate:"gt=0"` // minutes
		ExamSubjectID core.ID `json:"examSubjectId" validate:"required"`
	}

	Question struct {
		ID        core.ID  `json:"id"`
		Questions string   `json:"questions" validate:"required,notblank"` // the question text
		Options   []string `json:"options" validate:"min=2,dive,required"`
		Answer    string   `json:"answer" validate:"required"`
		ExamID    core.ID  `json:"examId" validate:"required"`
	}
)

func (c *Course) Validate(validate *validator.Validate) error {
	c.Title = core.CleanString(c.Title)
	c.Subjects = nil
	return validate.Struct(c)
}

func (s *Subject) Validate(validate *validator.Validate) error {
	s.Title = core.CleanString(s.Title)
	posts := make([]string, 0, len(s.Post))
	for _, p := range s.Post {
		if p = core.CleanString(p); p != "" {
			posts = append(posts, p)
		}
	}
	s.Post = posts
	return validate.Struct(s)
}

func (e *Exam) Validate(validate *validator.Validate) error {
	e.Title = core.CleanString(e.Title)
	return validate.Struct(e)
}

// Validate also checks that the answer key is one of the options, compared exactly.
func (q *Question) Validate(validate *validator.Validate) error {
	q.Questions = core.CleanString(q.Questions)
	if err := validate.Struct(q); err != nil {
		return err
	}
	for _, opt := range q.Options {
		if opt == q.Answer {
			return nil
		}
	}
	return core.NewValidationError(nil, core.FieldError{Field: "answer", Error: errAnswerNotAnOption})
}
