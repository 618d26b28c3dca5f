package user

import (
	"context"
	"net/mail"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/listing"
)

var (
	// errors
	ErrNotFound        = errors.New("user not found")
	ErrUsernameExists  = errors.New("username already exists")
	ErrEmailExists     = errors.New("a user with this email already exists")
	ErrEmailNotFound   = errors.New("email does not exist")
	ErrWrongPassword   = errors.New("incorrect password")
	ErrAccountDisabled = errors.New("account disabled")
)

var listOptions = listing.Options[User]{
	SearchFields: []func(User) string{
		func(u User) string { return u.Username },
	},
	SortFields: map[string]func(User) string{
		"username": func(u User) string { return u.Username },
		"email":    func(u User) string { return u.Email },
	},
	DefaultSort: "username",
}

type (
	// Repository is the `users` collection of the data API.
	Repository = core.Collection[User]

	Service interface {
		Register(ctx context.Context, nu NewUser) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		All(ctx context.Context) ([]User, error)
		List(ctx context.Context, q listing.Query) (listing.Page[User], error)
		GetByID(ctx context.Context, id core.ID) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		UpdateProfile(ctx context.Context, usr User, up UpdateProfile) (User, error)
		Update(ctx context.Context, usr User, uu UpdateUser) (User, error)
		ChangePassword(ctx context.Context, usr User, cp ChangePassword) (User, error)
		SetPassword(ctx context.Context, usr User, pwd string) (User, error)
		Save(ctx context.Context, usr User) (User, error)
		Delete(ctx context.Context, id core.ID) error
	}

	service struct {
		repo     Repository
		mailSvc  core.EmailService
		hashCost int

		// serializes uniqueness checks with the writes that depend on them
		mu sync.Mutex
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{
		repo:     repo,
		mailSvc:  mailSvc,
		hashCost: bcrypt.DefaultCost,
	}
}

// checkUniqueness scans the whole collection for another user with the same username or email.
// The data API cannot enforce uniqueness, so two processes may still race.
func (svc *service) checkUniqueness(ctx context.Context, uname, email string, excludedID core.ID) error {
	users, err := svc.repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "fetching users")
	}
	for _, u := range users {
		if excludedID != "" && u.ID == excludedID {
			continue
		}
		if uname != "" && strings.EqualFold(u.Username, uname) {
			return core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
		}
		if email != "" && strings.EqualFold(u.Email, email) {
			return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
		}
	}
	return nil
}

func (svc *service) Register(ctx context.Context, nu NewUser) (User, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.checkUniqueness(ctx, nu.Username, nu.Email, ""); err != nil {
		return User{}, err
	}

	usr := User{
		ID:       core.NewID(),
		Username: nu.Username,
		Email:    nu.Email,
		Role:     RoleLearner,
		Status:   StatusActive,
	}
	if err := usr.SetPassword(nu.Password, svc.hashCost); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.Create(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}

	svc.sendWelcomeMail(usr)
	return usr, nil
}

// Authenticate finds the user by exact email and checks the password then the account status.
// Each failure has its own error.
func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrEmailNotFound
		}
		return User{}, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrWrongPassword
	}
	if !usr.IsActive() {
		return User{}, ErrAccountDisabled
	}
	return usr, nil
}

func (svc *service) All(ctx context.Context) ([]User, error) {
	users, err := svc.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching users")
	}
	return users, nil
}

func (svc *service) List(ctx context.Context, q listing.Query) (listing.Page[User], error) {
	users, err := svc.All(ctx)
	if err != nil {
		return listing.Page[User]{}, err
	}
	page := listing.Apply(users, q, listOptions)
	items := make([]User, 0, len(page.Items))
	for _, u := range page.Items {
		items = append(items, u.Public())
	}
	page.Items = items
	return page, nil
}

func (svc *service) GetByID(ctx context.Context, id core.ID) (User, error) {
	usr, err := svc.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, errors.Wrap(err, "fetching user")
	}
	return usr, nil
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	email = core.CleanString(email)
	users, err := svc.All(ctx)
	if err != nil {
		return User{}, err
	}
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (svc *service) UpdateProfile(ctx context.Context, usr User, up UpdateProfile) (User, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.checkUniqueness(ctx, up.Username, up.Email, usr.ID); err != nil {
		return User{}, err
	}
	applyProfile(&usr, up)
	return svc.save(ctx, usr)
}

func (svc *service) Update(ctx context.Context, usr User, uu UpdateUser) (User, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.checkUniqueness(ctx, uu.Username, uu.Email, usr.ID); err != nil {
		return User{}, err
	}
	applyProfile(&usr, uu.UpdateProfile)
	if uu.Role != nil {
		usr.Role = *uu.Role
	}
	if uu.Status != nil {
		usr.Status = *uu.Status
	}
	return svc.save(ctx, usr)
}

func (svc *service) ChangePassword(ctx context.Context, usr User, cp ChangePassword) (User, error) {
	if err := usr.CheckPassword(cp.CurrentPassword); err != nil {
		return User{}, core.NewValidationError(ErrWrongPassword, core.FieldError{Field: "currentPassword", Error: ErrWrongPassword.Error()})
	}
	return svc.SetPassword(ctx, usr, cp.Password)
}

func (svc *service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd, svc.hashCost); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.save(ctx, usr)
}

// Save creates usr when it has no ID yet and replaces the stored record otherwise.
func (svc *service) Save(ctx context.Context, usr User) (User, error) {
	if usr.ID == "" {
		usr.ID = core.NewID()
		created, err := svc.repo.Create(ctx, usr)
		return created, errors.Wrap(err, "creating user")
	}
	return svc.save(ctx, usr)
}

func (svc *service) save(ctx context.Context, usr User) (User, error) {
	updated, err := svc.repo.Update(ctx, usr.ID, usr)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, errors.Wrap(err, "updating user")
	}
	return updated, nil
}

func (svc *service) Delete(ctx context.Context, id core.ID) error {
	if err := svc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "deleting user")
	}
	return nil
}

func (svc *service) sendWelcomeMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Username, Address: usr.Email}},
		Subject:      "Welcome",
		TemplateName: "welcome",
		TemplateData: usr.Public(),
	})
}

func applyProfile(usr *User, up UpdateProfile) {
	if up.Username != "" {
		usr.Username = up.Username
	}
	if up.Email != "" {
		usr.Email = up.Email
	}
	if up.ProfilePicture != "" {
		usr.ProfilePicture = up.ProfilePicture
	}
}
