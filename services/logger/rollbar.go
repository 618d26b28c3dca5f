package logsvc

import (
	"fmt"
	"log"
	"sync"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/user"
)

// Logger prints every entry to a std logger. Warnings and worse also go to Rollbar once enabled.
// Debug entries are only printed in debug mode.
type Logger struct {
	std   *log.Logger
	debug bool

	// the Rollbar person is process-wide; mu pairs it with the item it belongs to
	mu sync.Mutex
}

var _ core.Logger = (*Logger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *Logger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(false)
	return &Logger{std: std, debug: conf.Debug}
}

// Enable turns Rollbar reporting on or off. It stays off without a token.
func (l *Logger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled && rollbar.Token() != "")
}

// Close flushes the items still queued for Rollbar.
func (l *Logger) Close() {
	rollbar.Close()
}

// entry is one log call split into the parts Rollbar understands.
// Accepted args: error, map[string]interface{}, user.User or *user.User; anything else becomes an extra.
type entry struct {
	msg    string
	err    error
	extras map[string]interface{}
	person *user.User
}

func newEntry(msg string, args []interface{}) entry {
	e := entry{msg: msg, extras: make(map[string]interface{})}
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
		case user.User:
			if e.person == nil && v.ID != "" {
				e.person = &v
			}
		case *user.User:
			if e.person == nil && v != nil && v.ID != "" {
				e.person = v
			}
		case error:
			if e.err == nil {
				e.err = v
			} else {
				e.extras[fmt.Sprintf("error%d", i)] = v.Error()
			}
			// data API failures carry the upstream status
			if d, ok := v.(interface{ Detail() string }); ok {
				e.extras["detail"] = d.Detail()
			}
		case map[string]interface{}:
			for k, val := range v {
				e.extras[k] = val
			}
		default:
			e.extras[fmt.Sprintf("arg%d", i)] = v
		}
	}
	return e
}

func (l *Logger) report(level string, e entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e.person != nil {
		rollbar.SetPerson(e.person.ID.String(), e.person.Username, e.person.Email)
	} else {
		rollbar.ClearPerson()
	}
	if e.err != nil {
		// rollbar drops the message when an error is given
		e.extras["message"] = e.msg
		rollbar.Log(level, e.err, e.extras)
		return
	}
	rollbar.Log(level, e.msg, e.extras)
}

func (l *Logger) print(level string, e entry) {
	l.std.Printf("[%s] %s", level, e.msg)
	if e.person != nil {
		l.std.Printf("  user: %s (%s)", e.person.Username, e.person.ID)
	}
	if e.err != nil {
		l.std.Printf("  %+v", e.err)
	}
	for k, v := range e.extras {
		if k == "message" {
			continue
		}
		l.std.Printf("  %s: %+v", k, v)
	}
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.print(rollbar.DEBUG, newEntry(msg, args))
	}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.print(rollbar.INFO, newEntry(msg, args))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	e := newEntry(msg, args)
	l.print(rollbar.WARN, e)
	l.report(rollbar.WARN, e)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	e := newEntry(msg, args)
	l.print(rollbar.ERR, e)
	l.report(rollbar.ERR, e)
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	e := newEntry(msg, args)
	l.print(rollbar.CRIT, e)
	l.report(rollbar.CRIT, e)
	rollbar.Wait()
	l.std.Fatal(msg)
}
