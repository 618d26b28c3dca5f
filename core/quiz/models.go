package quiz

import (
	"context"
	"time"

	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/catalog"
)

// DateLayout is the layout of Entry.Date and RemoteResult.Date.
const DateLayout = "2006-01-02 15:04:05"

type (
	// QuestionView is a question as shown to a learner: without its answer key.
	QuestionView struct {
		ID        core.ID  `json:"id"`
		Questions string   `json:"questions"`
		Options   []string `json:"options"`
		ExamID    core.ID  `json:"examId"`
	}

	ExamView struct {
		catalog.Exam
		Questions []QuestionView `json:"questions"`
	}

	// Submission holds one optional answer per question, by question position.
	Submission struct {
		Answers []*string `json:"answers"`
	}

	Tally struct {
		Correct    int `json:"correct"`
		Wrong      int `json:"wrong"`
		Unanswered int `json:"unanswered"`
		Total      int `json:"total"`
	}

	Result struct {
		ExamID core.ID `json:"examId"`
		Date   string  `json:"date"`
		Score  int     `json:"score"`
		Tally
	}

	// Entry is one line of a learner's exam history.
	Entry struct {
		ExamID    core.ID   `json:"examId"`
		Date      string    `json:"date"`
		Score     int       `json:"score"`
		Total     int       `json:"total"`
		CreatedAt time.Time `json:"-"`
	}

	// HistoryItem numbers an Entry across all pages of the history, starting at 1.
	HistoryItem struct {
		Number int `json:"number"`
		Entry
	}

	// RemoteResult is the payload posted to the data API `results` collection.
	RemoteResult struct {
		ExamID core.ID `json:"examId"`
		UserID core.ID `json:"userId"`
		Score  int     `json:"score"`
		Total  int     `json:"total"`
		Date   string  `json:"date"`
	}

	// HistoryStore persists exam history per learner. Entries are listed oldest first.
	HistoryStore interface {
		Append(ctx context.Context, key core.ID, e Entry) error
		List(ctx context.Context, key core.ID) ([]Entry, error)
	}

	ResultSubmitter interface {
		SubmitResult(ctx context.Context, r RemoteResult) error
	}
)

func NewQuestionView(q catalog.Question) QuestionView {
	return QuestionView{
		ID:        q.ID,
		Questions: q.Questions,
		Options:   q.Options,
		ExamID:    q.ExamID,
	}
}
