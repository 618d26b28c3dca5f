package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examhub/portal/core/catalog"
	"github.com/examhub/portal/core/listing"
	"github.com/examhub/portal/core/quiz"
	"github.com/examhub/portal/core/user"
)

func seedExam(t *testing.T, app *testApp) catalog.Exam {
	exam := catalog.Exam{ID: "7", Title: "Letters", Duration: 5, ExamSubjectID: "1"}
	app.dataAPI.Seed(t, "exams", exam)
	app.dataAPI.Seed(t, "questions",
		catalog.Question{ID: "71", Questions: "first?", Options: []string{"A", "B"}, Answer: "A", ExamID: "7"},
		catalog.Question{ID: "72", Questions: "second?", Options: []string{"B", "X"}, Answer: "X", ExamID: "7"},
		catalog.Question{ID: "99", Questions: "other exam", Options: []string{"A", "B"}, Answer: "B", ExamID: "8"},
		catalog.Question{ID: "73", Questions: "third?", Options: []string{"C", "D"}, Answer: "C", ExamID: "7"},
	)
	return exam
}

func answers(aa ...string) []byte {
	sub := quiz.Submission{Answers: make([]*string, len(aa))}
	for i := range aa {
		if aa[i] != "" {
			sub.Answers[i] = &aa[i]
		}
	}
	data, _ := json.Marshal(sub)
	return data
}

func Test_quizApi_examStart(t *testing.T) {
	app := newTestApp(t)
	seedExam(t, app)
	token := app.getToken(t, app.createUser(t, "hero", user.RoleLearner, user.StatusActive))

	runHTTPTests(t, app, []httpTest{
		{name: "Auth required", path: "/v1/exams/7/questions", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "unknown exam", path: "/v1/exams/42/questions", token: token,
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "error fetching exam"}),
		},
	}, http.MethodGet, "")

	rec := app.do(http.MethodGet, "/v1/exams/7/questions", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), `"answer"`)

	view := decode[quiz.ExamView](t, rec)
	assert.Equal(t, "Letters", view.Title)
	assert.Equal(t, 5, view.Duration)
	require.Len(t, view.Questions, 3)
	assert.Equal(t, "first?", view.Questions[0].Questions)
	assert.Equal(t, []string{"B", "X"}, view.Questions[1].Options)
	assert.Equal(t, "third?", view.Questions[2].Questions)
}

// quiz routes share the /exams prefix with the catalog ones
func Test_quizApi_examRoutesCoexist(t *testing.T) {
	app := newTestApp(t)
	seedExam(t, app)
	adminToken := app.getToken(t, app.createUser(t, "admin", user.RoleAdmin, user.StatusActive))

	rec := app.do(http.MethodGet, "/v1/exams", adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decode[listing.Page[catalog.Exam]](t, rec)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Letters", list.Items[0].Title)

	rec = app.do(http.MethodGet, "/v1/exams/7", adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := marshalObj(t, catalog.Exam{Title: "Numbers", Duration: 10, ExamSubjectID: "1"})
	rec = app.do(http.MethodPost, "/v1/exams", adminToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Numbers", decode[catalog.Exam](t, rec).Title)

	rec = app.do(http.MethodGet, "/v1/exams/7/questions", adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[quiz.ExamView](t, rec).Questions, 3)

	rec = app.do(http.MethodGet, "/v1/history", adminToken)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func Test_quizApi_examSubmit(t *testing.T) {
	app := newTestApp(t)
	seedExam(t, app)
	hero := app.createUser(t, "hero", user.RoleLearner, user.StatusActive)
	token := app.getToken(t, hero)

	rec := app.do(http.MethodPost, "/v1/exams/7/submit", token, answers("A", "B", "C"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	app.quizSvc.Wait()

	res := decode[quiz.Result](t, rec)
	assert.Equal(t, 2, res.Score)
	assert.Equal(t, quiz.Tally{Correct: 2, Wrong: 1, Unanswered: 0, Total: 3}, res.Tally)
	today := time.Now().Format("2006-01-02")
	assert.True(t, strings.HasPrefix(res.Date, today), "date %q is not today", res.Date)

	// one history entry, dated today
	rec = app.do(http.MethodGet, "/v1/history", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	history := decode[listing.Page[quiz.HistoryItem]](t, rec)
	require.Len(t, history.Items, 1)
	assert.Equal(t, 1, history.Items[0].Number)
	assert.Equal(t, 2, history.Items[0].Score)
	assert.Equal(t, 3, history.Items[0].Total)
	assert.EqualValues(t, "7", history.Items[0].ExamID)
	assert.True(t, strings.HasPrefix(history.Items[0].Date, today))

	// the remote result has the declared shape
	results := app.dataAPI.Records("results")
	require.Len(t, results, 1)
	assert.Equal(t, "7", results[0]["examId"])
	assert.Equal(t, hero.ID.String(), results[0]["userId"])
	assert.Equal(t, json.Number("2"), results[0]["score"])
	assert.Equal(t, json.Number("3"), results[0]["total"])
	assert.Equal(t, res.Date, results[0]["date"])

	sent := app.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "exam_result", sent[0].TemplateName)
	assert.Contains(t, sent[0].TextContent, "2/3")
}

func Test_quizApi_examSubmit_unanswered(t *testing.T) {
	app := newTestApp(t)
	seedExam(t, app)
	token := app.getToken(t, app.createUser(t, "hero", user.RoleLearner, user.StatusActive))

	rec := app.do(http.MethodPost, "/v1/exams/7/submit", token, []byte(`{"answers":["A",null]}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	app.quizSvc.Wait()

	res := decode[quiz.Result](t, rec)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, quiz.Tally{Correct: 1, Wrong: 0, Unanswered: 2, Total: 3}, res.Tally)
}

func Test_quizApi_examSubmit_remoteFailure(t *testing.T) {
	app := newTestApp(t)
	seedExam(t, app)
	token := app.getToken(t, app.createUser(t, "hero", user.RoleLearner, user.StatusActive))
	app.dataAPI.FailWith("results", http.StatusServiceUnavailable)

	rec := app.do(http.MethodPost, "/v1/exams/7/submit", token, answers("A", "X", "C"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	app.quizSvc.Wait()

	assert.Equal(t, 3, decode[quiz.Result](t, rec).Score)
	errs := app.logger.Entries("error")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Msg, "quiz.submitRemote(7)")

	// the history is kept anyway
	rec = app.do(http.MethodGet, "/v1/history", token)
	assert.Equal(t, 1, decode[listing.Page[quiz.HistoryItem]](t, rec).TotalItems)
}

func Test_quizApi_history(t *testing.T) {
	app := newTestApp(t)
	seedExam(t, app)
	hero := app.createUser(t, "hero", user.RoleLearner, user.StatusActive)
	other := app.createUser(t, "other", user.RoleLearner, user.StatusActive)
	token := app.getToken(t, hero)

	for i := 0; i < 6; i++ {
		rec := app.do(http.MethodPost, "/v1/exams/7/submit", token, answers("A"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	app.quizSvc.Wait()

	rec := app.do(http.MethodGet, "/v1/history?page=2", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[listing.Page[quiz.HistoryItem]](t, rec)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 6, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 6, page.Items[0].Number)

	// histories are per learner
	rec = app.do(http.MethodGet, "/v1/history", app.getToken(t, other))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, decode[listing.Page[quiz.HistoryItem]](t, rec).TotalItems)
}
