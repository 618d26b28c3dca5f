package testutil

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/user"
	"github.com/examhub/portal/storage/database"
)

// Config returns the configuration used by tests.
func Config() *core.Config {
	return &core.Config{
		AppName:          "ExamHub",
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		SecretKey:        "test-secret",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "ExamHub", Address: "noreply@examhub.test"},
		Server: core.ServerConfig{
			Address:                   ":0",
			Host:                      "localhost",
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			CORSOrigins:               []string{"http://localhost:3000"},
			DisableReqLogs:            true,
		},
		DataAPI: core.DataAPIConfig{
			Timeout:       5 * time.Second,
			SubmitResults: true,
		},
		Database: core.DatabaseConfig{Engine: "sqlite", DSN: ":memory:"},
	}
}

// NewValidator returns a validator with every custom tag registered.
func NewValidator() *validator.Validate {
	validate, _ := NewValidation()
	return validate
}

// NewValidation returns a validator and the translator holding its messages.
func NewValidation() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// OpenDB opens a migrated in-memory sqlite database closed at the end of the test.
func OpenDB(t *testing.T) *sqlx.DB {
	db, err := database.OpenDSN("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("database.OpenDSN() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err = database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	return db
}

// CreateUser stores a user through repo. The password is hashed with the minimum bcrypt cost.
func CreateUser(t *testing.T, repo user.Repository, uname, email, pwd string, role user.Role, status user.Status) user.User {
	usr := user.User{
		ID:       core.NewID(),
		Username: uname,
		Email:    email,
		Role:     role,
		Status:   status,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd, bcrypt.MinCost); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.Create(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// LogEntry is one call recorded by Logger.
type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records log calls instead of printing them.
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log("fatal", msg, args)
	panic(fmt.Sprintf("fatal: %s", msg))
}

// Entries returns the recorded calls of level, or all of them when level is empty.
func (l *Logger) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
