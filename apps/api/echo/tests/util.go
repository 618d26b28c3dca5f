package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examhub/portal/apps/api/echo"
	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/quiz"
	"github.com/examhub/portal/core/user"
	"github.com/examhub/portal/services/email"
	"github.com/examhub/portal/storage/dataapi"
	"github.com/examhub/portal/storage/database/inmem"
	"github.com/examhub/portal/tests"
)

// testApp is a Server wired to a fake data API and in-memory history.
type testApp struct {
	*echoapi.Server

	conf    *core.Config
	dataAPI *testutil.FakeDataAPI
	usrRepo user.Repository
	mailSvc *emailsvc.ConsoleServiceMock
	logger  *testutil.Logger
	quizSvc *quiz.Service
}

func newTestApp(t *testing.T) *testApp {
	conf := testutil.Config()
	logger := new(testutil.Logger)
	fake := testutil.NewFakeDataAPI(t)
	client := fake.Client(t)
	validate, translator := testutil.NewValidation()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	usrRepo := dataapi.NewUserRepository(client)
	catalogSvc := dataapi.NewCatalogService(client)
	quizSvc := quiz.NewService(catalogSvc, inmemdb.NewHistoryStore(), dataapi.NewResults(client), mailSvc, logger)

	srv := echoapi.NewServer(echoapi.Deps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		UserSvc:    user.NewServiceMock(usrRepo, mailSvc),
		CatalogSvc: catalogSvc,
		QuizSvc:    quizSvc,
	})

	return &testApp{
		Server:  srv,
		conf:    conf,
		dataAPI: fake,
		usrRepo: usrRepo,
		mailSvc: mailSvc,
		logger:  logger,
		quizSvc: quizSvc,
	}
}

type httpErr struct {
	Error string `json:"error"`
}

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	token, err := echoapi.GenerateToken(app.conf, echoapi.GetUserClaims(app.conf, usr))
	require.NoError(t, err, "GenerateToken()")
	return token
}

func (app *testApp) createUser(t *testing.T, uname string, role user.Role, status user.Status) user.User {
	return testutil.CreateUser(t, app.usrRepo, uname, uname+"@gmail.com", "secret", role, status)
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	require.NoError(t, err, "json.Marshal()")
	return data
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "json.Unmarshal(%s)", rec.Body.String())
	return v
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "code; body %s", rec.Body.String())
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
}

// runHTTPTests runs each test against app. method and path fill the tests that leave them empty.
func runHTTPTests(t *testing.T, app *testApp, tests []httpTest, method, path string) {
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = method
		}
		if tt.path == "" {
			tt.path = path
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}
