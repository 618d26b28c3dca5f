package user_test

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/listing"
	"github.com/examhub/portal/core/user"
	emailsvc "github.com/examhub/portal/services/email"
	"github.com/examhub/portal/storage/dataapi"
	testutil "github.com/examhub/portal/tests"
)

func TestMain(m *testing.M) {
	core.ParseEmailTemplates(testutil.Config(), new(testutil.Logger))
	os.Exit(m.Run())
}

type userEnv struct {
	svc     user.Service
	repo    user.Repository
	dataAPI *testutil.FakeDataAPI
	mailSvc *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) userEnv {
	fake := testutil.NewFakeDataAPI(t)
	repo := dataapi.NewUserRepository(fake.Client(t))
	mailSvc := emailsvc.NewConsoleServiceMock(testutil.Config(), new(testutil.Logger))
	return userEnv{
		svc:     user.NewServiceMock(repo, mailSvc),
		repo:    repo,
		dataAPI: fake,
		mailSvc: mailSvc,
	}
}

func TestService_Register(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	testutil.CreateUser(t, env.repo, "taken", "taken@gmail.com", "secret", user.RoleLearner, user.StatusActive)

	tests := []struct {
		name    string
		nu      user.NewUser
		wantErr error
	}{
		{name: "username taken (case differs)", nu: user.NewUser{Username: "Taken", Email: "new@gmail.com", Password: "secret"}, wantErr: user.ErrUsernameExists},
		{name: "email taken (case differs)", nu: user.NewUser{Username: "new", Email: "TAKEN@gmail.com", Password: "secret"}, wantErr: user.ErrEmailExists},
		{name: "ok", nu: user.NewUser{Username: "hero", Email: "hero@gmail.com", Password: "secret"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := env.svc.Register(ctx, tt.nu)
			if tt.wantErr != nil {
				require.Error(t, err)
				var ve *core.ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, tt.wantErr, ve.Err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, usr.ID)
			assert.Equal(t, user.RoleLearner, usr.Role)
			assert.True(t, usr.IsActive())
			assert.NotEqual(t, tt.nu.Password, usr.Password)
			assert.NoError(t, usr.CheckPassword(tt.nu.Password))
		})
	}

	assert.Len(t, env.dataAPI.Records("users"), 2)
	sent := env.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "welcome", sent[0].TemplateName)
	assert.Equal(t, "hero@gmail.com", sent[0].To[0].Address)
}

func TestService_Authenticate(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	hero := testutil.CreateUser(t, env.repo, "hero", "hero@gmail.com", "secret", user.RoleLearner, user.StatusActive)
	testutil.CreateUser(t, env.repo, "ndog", "ndog@gmail.com", "secret", user.RoleLearner, user.StatusDisabled)
	mixed := testutil.CreateUser(t, env.repo, "mixed", "Mixed.Case@gmail.com", "secret", user.RoleLearner, user.StatusActive)

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "unknown email", email: "lol@gmail.com", pwd: "secret", wantErr: user.ErrEmailNotFound},
		{name: "wrong password", email: "hero@gmail.com", pwd: "lolol", wantErr: user.ErrWrongPassword},
		{name: "disabled account", email: "ndog@gmail.com", pwd: "secret", wantErr: user.ErrAccountDisabled},
		{name: "disabled account, wrong password", email: "ndog@gmail.com", pwd: "lolol", wantErr: user.ErrWrongPassword},
		{name: "email case differs", email: "HERO@gmail.com", pwd: "secret", wantErr: user.ErrEmailNotFound},
		{name: "lower-cased mixed-case email", email: "mixed.case@gmail.com", pwd: "secret", wantErr: user.ErrEmailNotFound},
		{name: "ok", email: "hero@gmail.com", pwd: "secret"},
		{name: "email is trimmed", email: "  hero@gmail.com ", pwd: "secret"},
		{name: "mixed-case email typed exactly", email: "Mixed.Case@gmail.com", pwd: "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := env.svc.Authenticate(ctx, tt.email, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			want := hero.ID
			if tt.email == mixed.Email {
				want = mixed.ID
			}
			assert.Equal(t, want, usr.ID)
		})
	}
}

func TestService_Authenticate_dataAPIDown(t *testing.T) {
	env := setup(t)
	env.dataAPI.FailWith("users", http.StatusInternalServerError)

	_, err := env.svc.Authenticate(context.Background(), "hero@gmail.com", "secret")
	require.Error(t, err)
	assert.NotEqual(t, user.ErrEmailNotFound, err)
	assert.Equal(t, "error fetching users", errors.Cause(err).Error())
}

func TestService_List(t *testing.T) {
	env := setup(t)
	for _, uname := range []string{"charlie", "alice", "Bob", "alicia"} {
		testutil.CreateUser(t, env.repo, uname, uname+"@gmail.com", "secret", user.RoleLearner, user.StatusActive)
	}

	page, err := env.svc.List(context.Background(), listing.Query{Search: "ali", Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "alice", page.Items[0].Username)
	assert.Equal(t, "alicia", page.Items[1].Username)
	for _, u := range page.Items {
		assert.Empty(t, u.Password)
	}

	page, err = env.svc.List(context.Background(), listing.Query{Ordering: "-username", Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 4)
	assert.Equal(t, "charlie", page.Items[0].Username)
	assert.Equal(t, "Bob", page.Items[1].Username)
}

func TestService_UpdateProfile(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	hero := testutil.CreateUser(t, env.repo, "hero", "hero@gmail.com", "secret", user.RoleLearner, user.StatusActive)
	testutil.CreateUser(t, env.repo, "other", "other@gmail.com", "secret", user.RoleLearner, user.StatusActive)

	_, err := env.svc.UpdateProfile(ctx, hero, user.UpdateProfile{Username: "OTHER"})
	var ve *core.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, user.ErrUsernameExists, ve.Err)

	// keeping one's own username is fine
	usr, err := env.svc.UpdateProfile(ctx, hero, user.UpdateProfile{Username: "hero", ProfilePicture: "me.png"})
	require.NoError(t, err)
	assert.Equal(t, hero.ID, usr.ID)
	assert.Equal(t, "hero", usr.Username)
	assert.Equal(t, "hero@gmail.com", usr.Email)
	assert.Equal(t, "me.png", usr.ProfilePicture)
	assert.NoError(t, usr.CheckPassword("secret"))
}

func TestService_Update(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	hero := testutil.CreateUser(t, env.repo, "hero", "hero@gmail.com", "secret", user.RoleLearner, user.StatusActive)

	role, status := user.RoleAdmin, user.StatusDisabled
	usr, err := env.svc.Update(ctx, hero, user.UpdateUser{Role: &role, Status: &status})
	require.NoError(t, err)
	assert.True(t, usr.IsAdmin())
	assert.False(t, usr.IsActive())

	stored, err := env.svc.GetByID(ctx, hero.ID)
	require.NoError(t, err)
	assert.Equal(t, usr.Role, stored.Role)
	assert.Equal(t, usr.Status, stored.Status)

	_, err = env.svc.Update(ctx, user.User{ID: "lol"}, user.UpdateUser{})
	assert.Equal(t, user.ErrNotFound, err)
}

func TestService_ChangePassword(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	hero := testutil.CreateUser(t, env.repo, "hero", "hero@gmail.com", "secret", user.RoleLearner, user.StatusActive)

	_, err := env.svc.ChangePassword(ctx, hero, user.ChangePassword{CurrentPassword: "lolol", Password: "lmao!"})
	var ve *core.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, user.ErrWrongPassword, ve.Err)
	assert.Equal(t, "currentPassword", ve.Fields[0].Field)

	usr, err := env.svc.ChangePassword(ctx, hero, user.ChangePassword{CurrentPassword: "secret", Password: "lmao!"})
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("lmao!"))

	_, err = env.svc.Authenticate(ctx, hero.Email, "lmao!")
	assert.NoError(t, err)
}

func TestService_Delete(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	hero := testutil.CreateUser(t, env.repo, "hero", "hero@gmail.com", "secret", user.RoleLearner, user.StatusActive)

	require.NoError(t, env.svc.Delete(ctx, hero.ID))
	assert.Equal(t, user.ErrNotFound, env.svc.Delete(ctx, hero.ID))

	_, err := env.svc.GetByID(ctx, hero.ID)
	assert.Equal(t, user.ErrNotFound, err)
	assert.Empty(t, env.dataAPI.Records("users"))
}

func TestService_Save(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr, err := env.svc.Save(ctx, user.User{Username: "root", Email: "root@gmail.com", Role: user.RoleAdmin})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)

	usr.Status = user.StatusActive
	saved, err := env.svc.Save(ctx, usr)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, saved.ID)
	assert.True(t, saved.IsActive())
	assert.Len(t, env.dataAPI.Records("users"), 1)
}

func TestValidators(t *testing.T) {
	validate, translator := testutil.NewValidation()

	fieldErrors := func(t *testing.T, err error) map[string]string {
		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs), "got %v", err)
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = fe.Translate(translator)
		}
		return out
	}

	tests := []struct {
		name string
		nu   user.NewUser
		want map[string]string
	}{
		{
			name: "required",
			nu:   user.NewUser{},
			want: map[string]string{
				"username":        "this field is required",
				"email":           "this field is required",
				"password":        "this field is required",
				"passwordConfirm": "this field is required",
			},
		},
		{
			name: "gmail only",
			nu:   user.NewUser{Username: "hero", Email: "hero@yahoo.com", Password: "secret", PasswordConfirm: "secret"},
			want: map[string]string{"email": "only @gmail.com addresses are accepted"},
		},
		{
			name: "password too short",
			nu:   user.NewUser{Username: "hero", Email: "hero@gmail.com", Password: "abc", PasswordConfirm: "abc"},
			want: map[string]string{"password": "password must contain at least 5 characters"},
		},
		{
			name: "passwords do not match",
			nu:   user.NewUser{Username: "hero", Email: "hero@gmail.com", Password: "secret", PasswordConfirm: "secreT"},
			want: map[string]string{"passwordConfirm": "passwords do not match"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nu.Validate(validate)
			assert.Equal(t, tt.want, fieldErrors(t, err))
		})
	}

	t.Run("cleaned", func(t *testing.T) {
		nu := user.NewUser{Username: "  hero ", Email: " HERO@Gmail.com", Password: "secret", PasswordConfirm: "secret"}
		require.NoError(t, nu.Validate(validate))
		assert.Equal(t, "hero", nu.Username)
		assert.Equal(t, "HERO@Gmail.com", nu.Email)
	})
}
