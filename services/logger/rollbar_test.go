package logsvc

import (
	"bytes"
	"log"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examhub/portal/core/user"
	"github.com/examhub/portal/storage/dataapi"
	testutil "github.com/examhub/portal/tests"
)

func TestNewEntry(t *testing.T) {
	hero := user.User{ID: "u-1", Username: "hero", Email: "hero@gmail.com"}
	apiErr := &dataapi.Error{Op: "error fetching exam", StatusCode: http.StatusBadGateway, Err: errors.New("unexpected status")}

	tests := []struct {
		name       string
		args       []interface{}
		wantErr    error
		wantPerson string
		wantExtras map[string]interface{}
	}{
		{name: "message only", wantExtras: map[string]interface{}{}},
		{
			name:       "anonymous user is ignored",
			args:       []interface{}{user.User{}},
			wantExtras: map[string]interface{}{},
		},
		{
			name:       "user and extras",
			args:       []interface{}{&hero, map[string]interface{}{"examId": "7"}, 3},
			wantPerson: "hero",
			wantExtras: map[string]interface{}{"examId": "7", "arg2": 3},
		},
		{
			name:       "data API error detail",
			args:       []interface{}{apiErr, hero},
			wantErr:    apiErr,
			wantPerson: "hero",
			wantExtras: map[string]interface{}{"detail": apiErr.Detail()},
		},
		{
			name:       "first error wins",
			args:       []interface{}{errors.New("lol"), nil, errors.New("again")},
			wantErr:    errors.New("lol"),
			wantExtras: map[string]interface{}{"error2": "again"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEntry("something happened", tt.args)
			assert.Equal(t, "something happened", e.msg)
			if tt.wantErr == nil {
				assert.NoError(t, e.err)
			} else {
				require.Error(t, e.err)
				assert.Equal(t, tt.wantErr.Error(), e.err.Error())
			}
			if tt.wantPerson == "" {
				assert.Nil(t, e.person)
			} else {
				require.NotNil(t, e.person)
				assert.Equal(t, tt.wantPerson, e.person.Username)
			}
			assert.Equal(t, tt.wantExtras, e.extras)
		})
	}
}

func TestLogger_print(t *testing.T) {
	var buf bytes.Buffer
	conf := testutil.Config()
	conf.Debug = false
	logger := NewRollbarLogger(log.New(&buf, "", 0), conf)
	logger.Enable(true) // no token: stays off

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("data API down", user.User{ID: "u-1", Username: "hero"}, map[string]interface{}{"examId": "7"})
	out := buf.String()
	assert.Contains(t, out, "[warning] data API down")
	assert.Contains(t, out, "user: hero (u-1)")
	assert.Contains(t, out, "examId: 7")

	buf.Reset()
	logger.Error("submitting result", errors.New("timeout"))
	out = buf.String()
	assert.Contains(t, out, "[error] submitting result")
	assert.Contains(t, out, "timeout")
	assert.NotContains(t, out, "message:")

	buf.Reset()
	conf.Debug = true
	NewRollbarLogger(log.New(&buf, "", 0), conf).Debug("shown")
	assert.Contains(t, buf.String(), "[debug] shown")
}
