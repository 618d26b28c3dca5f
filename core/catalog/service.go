package catalog

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/listing"
)

// Entities gives CRUD and listing over one collection of the data API.
type Entities[T any] struct {
	repo  core.Collection[T]
	noun  string
	setID func(*T, core.ID)
	opts  listing.Options[T]
}

func NewEntities[T any](repo core.Collection[T], noun string, setID func(*T, core.ID), opts listing.Options[T]) *Entities[T] {
	return &Entities[T]{repo: repo, noun: noun, setID: setID, opts: opts}
}

func (e *Entities[T]) All(ctx context.Context) ([]T, error) {
	items, err := e.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %ss", e.noun)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Query filters, sorts and paginates the whole collection.
func (e *Entities[T]) Query(ctx context.Context, q listing.Query) (listing.Page[T], error) {
	items, err := e.All(ctx)
	if err != nil {
		return listing.Page[T]{}, err
	}
	return listing.Apply(items, q, e.opts), nil
}

func (e *Entities[T]) Get(ctx context.Context, id core.ID) (T, error) {
	item, err := e.repo.Get(ctx, id)
	return item, errors.Wrapf(err, "fetching %s", e.noun)
}

// Create assigns a fresh id to item before storing it.
func (e *Entities[T]) Create(ctx context.Context, item T) (T, error) {
	e.setID(&item, core.NewID())
	created, err := e.repo.Create(ctx, item)
	return created, errors.Wrapf(err, "creating %s", e.noun)
}

func (e *Entities[T]) Update(ctx context.Context, id core.ID, item T) (T, error) {
	e.setID(&item, id)
	updated, err := e.repo.Update(ctx, id, item)
	return updated, errors.Wrapf(err, "updating %s", e.noun)
}

func (e *Entities[T]) Delete(ctx context.Context, id core.ID) error {
	return errors.Wrapf(e.repo.Delete(ctx, id), "deleting %s", e.noun)
}

func (e *Entities[T]) Count(ctx context.Context) (int, error) {
	items, err := e.All(ctx)
	return len(items), err
}

type (
	Service struct {
		Courses   *Entities[Course]
		Subjects  *Entities[Subject]
		Exams     *Entities[Exam]
		Questions *Entities[Question]
	}

	// Counts is the admin dashboard summary.
	Counts struct {
		Courses   int `json:"courses"`
		Subjects  int `json:"subjects"`
		Exams     int `json:"exams"`
		Questions int `json:"questions"`
	}
)

func NewService(
	courses core.Collection[Course],
	subjects core.Collection[Subject],
	exams core.Collection[Exam],
	questions core.Collection[Question],
) *Service {
	return &Service{
		Courses:   NewEntities(courses, "course", func(c *Course, id core.ID) { c.ID = id }, courseListOptions),
		Subjects:  NewEntities(subjects, "subject", func(s *Subject, id core.ID) { s.ID = id }, subjectListOptions),
		Exams:     NewEntities(exams, "exam", func(e *Exam, id core.ID) { e.ID = id }, examListOptions),
		Questions: NewEntities(questions, "question", func(q *Question, id core.ID) { q.ID = id }, questionListOptions),
	}
}

// CoursesWithSubjects fetches courses and subjects concurrently and attaches each subject to its course.
// Subjects pointing to an unknown course are dropped.
func (svc *Service) CoursesWithSubjects(ctx context.Context) ([]Course, error) {
	var (
		wg                 sync.WaitGroup
		courses            []Course
		subjects           []Subject
		courseErr, subjErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		courses, courseErr = svc.Courses.All(ctx)
	}()
	go func() {
		defer wg.Done()
		subjects, subjErr = svc.Subjects.All(ctx)
	}()
	wg.Wait()

	if courseErr != nil {
		return nil, courseErr
	}
	if subjErr != nil {
		return nil, subjErr
	}

	idx := make(map[core.ID]int, len(courses))
	for i := range courses {
		courses[i].Subjects = []Subject{}
		idx[courses[i].ID] = i
	}
	for _, s := range subjects {
		if i, ok := idx[s.CoursesID]; ok {
			courses[i].Subjects = append(courses[i].Subjects, s)
		}
	}
	return courses, nil
}

// SubjectsByCourse scans all subjects for those of the course: the data API has no server-side filtering.
func (svc *Service) SubjectsByCourse(ctx context.Context, courseID core.ID) ([]Subject, error) {
	subjects, err := svc.Subjects.All(ctx)
	if err != nil {
		return nil, err
	}
	return filterBy(subjects, func(s Subject) bool { return s.CoursesID == courseID }), nil
}

func (svc *Service) ExamsBySubject(ctx context.Context, subjectID core.ID) ([]Exam, error) {
	exams, err := svc.Exams.All(ctx)
	if err != nil {
		return nil, err
	}
	return filterBy(exams, func(e Exam) bool { return e.ExamSubjectID == subjectID }), nil
}

// QuestionsByExam keeps the stored order of the questions.
func (svc *Service) QuestionsByExam(ctx context.Context, examID core.ID) ([]Question, error) {
	questions, err := svc.Questions.All(ctx)
	if err != nil {
		return nil, err
	}
	return filterBy(questions, func(q Question) bool { return q.ExamID == examID }), nil
}

func (svc *Service) Counts(ctx context.Context) (Counts, error) {
	var (
		c   Counts
		err error
	)
	if c.Courses, err = svc.Courses.Count(ctx); err != nil {
		return Counts{}, err
	}
	if c.Subjects, err = svc.Subjects.Count(ctx); err != nil {
		return Counts{}, err
	}
	if c.Exams, err = svc.Exams.Count(ctx); err != nil {
		return Counts{}, err
	}
	if c.Questions, err = svc.Questions.Count(ctx); err != nil {
		return Counts{}, err
	}
	return c, nil
}

func filterBy[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

var (
	courseListOptions = listing.Options[Course]{
		SearchFields: []func(Course) string{
			func(c Course) string { return c.Title },
			func(c Course) string { return c.Description },
		},
		SortFields: map[string]func(Course) string{
			"title": func(c Course) string { return c.Title },
		},
		DefaultSort: "title",
	}

	subjectListOptions = listing.Options[Subject]{
		SearchFields: []func(Subject) string{
			func(s Subject) string { return s.Title },
			func(s Subject) string { return s.Description },
		},
		SortFields: map[string]func(Subject) string{
			"title": func(s Subject) string { return s.Title },
		},
		DefaultSort: "title",
	}

	examListOptions = listing.Options[Exam]{
		SearchFields: []func(Exam) string{
			func(e Exam) string { return e.Title },
		},
		SortFields: map[string]func(Exam) string{
			"title": func(e Exam) string { return e.Title },
		},
		DefaultSort: "title",
	}

	questionListOptions = listing.Options[Question]{
		SearchFields: []func(Question) string{
			func(q Question) string { return q.Questions },
		},
		SortFields: map[string]func(Question) string{
			"questions": func(q Question) string { return q.Questions },
		},
		DefaultSort: "questions",
	}
)
