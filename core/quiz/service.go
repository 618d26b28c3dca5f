package quiz

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/catalog"
	"github.com/examhub/portal/core/listing"
	"github.com/examhub/portal/core/user"
)

var submitTimeout = 10 * time.Second

type Service struct {
	catalogSvc *catalog.Service
	history    HistoryStore
	results    ResultSubmitter // nil disables the remote submission
	mailSvc    core.EmailService
	logger     core.Logger
	nowFunc    func() time.Time

	wg sync.WaitGroup
}

func NewService(
	catalogSvc *catalog.Service,
	history HistoryStore,
	results ResultSubmitter,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		catalogSvc: catalogSvc,
		history:    history,
		results:    results,
		mailSvc:    mailSvc,
		logger:     logger,
		nowFunc:    time.Now,
	}
}

// Start loads the exam and its questions, answer keys removed, in stored order.
// The duration is informative only.
func (svc *Service) Start(ctx context.Context, examID core.ID) (ExamView, error) {
	exam, err := svc.catalogSvc.Exams.Get(ctx, examID)
	if err != nil {
		return ExamView{}, err
	}
	questions, err := svc.catalogSvc.QuestionsByExam(ctx, examID)
	if err != nil {
		return ExamView{}, err
	}

	view := ExamView{Exam: exam, Questions: make([]QuestionView, 0, len(questions))}
	for _, q := range questions {
		view.Questions = append(view.Questions, NewQuestionView(q))
	}
	return view, nil
}

// Submit scores the answers, appends the result to the learner's history and
// posts it to the data API in the background. A failed remote submission is only logged.
func (svc *Service) Submit(ctx context.Context, learner user.User, examID core.ID, sub Submission) (Result, error) {
	exam, err := svc.catalogSvc.Exams.Get(ctx, examID)
	if err != nil {
		return Result{}, err
	}
	questions, err := svc.catalogSvc.QuestionsByExam(ctx, examID)
	if err != nil {
		return Result{}, err
	}

	now := svc.nowFunc()
	tally := Score(questions, sub.Answers)
	res := Result{
		ExamID: examID,
		Date:   now.Format(DateLayout),
		Score:  tally.Correct,
		Tally:  tally,
	}

	entry := Entry{
		ExamID:    examID,
		Date:      res.Date,
		Score:     res.Score,
		Total:     res.Total,
		CreatedAt: now,
	}
	if err = svc.history.Append(ctx, learner.ID, entry); err != nil {
		return Result{}, errors.Wrap(err, "appending history entry")
	}

	if svc.results != nil {
		svc.submitRemote(ctx, RemoteResult{
			ExamID: examID,
			UserID: learner.ID,
			Score:  res.Score,
			Total:  res.Total,
			Date:   res.Date,
		})
	}
	svc.sendResultMail(learner, exam, res)

	return res, nil
}

func (svc *Service) submitRemote(ctx context.Context, r RemoteResult) {
	svc.wg.Add(1)
	go func() {
		defer svc.wg.Done()

		// outlive the request
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), submitTimeout)
		defer cancel()

		if err := svc.results.SubmitResult(ctx, r); err != nil {
			svc.logger.Error(fmt.Sprintf("quiz.submitRemote(%s): %v", r.ExamID, err), err)
		}
	}()
}

// Wait blocks until the background submissions are done.
func (svc *Service) Wait() {
	svc.wg.Wait()
}

// History returns a page of the learner's history, oldest first, numbered across pages.
func (svc *Service) History(ctx context.Context, learner user.User, page int) (listing.Page[HistoryItem], error) {
	entries, err := svc.history.List(ctx, learner.ID)
	if err != nil {
		return listing.Page[HistoryItem]{}, errors.Wrap(err, "listing history")
	}
	items := make([]HistoryItem, 0, len(entries))
	for i, e := range entries {
		items = append(items, HistoryItem{Number: i + 1, Entry: e})
	}
	return listing.Paginate(items, page, listing.PageSize), nil
}

func (svc *Service) sendResultMail(learner user.User, exam catalog.Exam, res Result) {
	if learner.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: learner.Username, Address: learner.Email}},
		Subject:      "Your result for " + exam.Title,
		TemplateName: "exam_result",
		TemplateData: struct {
			Username  string
			ExamID    core.ID
			ExamTitle string
			Score     int
			Total     int
			Date      string
		}{learner.Username, exam.ID, exam.Title, res.Score, res.Total, res.Date},
	})
}
