package user

import (
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/examhub/portal/core"
)

type Role int

const (
	RoleLearner Role = 0
	RoleAdmin   Role = 1
)

type Status int

const (
	StatusDisabled Status = 0
	StatusActive   Status = 1
)

// User is the record stored in the `users` collection of the data API.
type User struct {
	ID             core.ID `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Password       string  `json:"password,omitempty"` // bcrypt hash
	Role           Role    `json:"role"`
	ProfilePicture string  `json:"profilePicture"`
	Status         Status  `json:"status"`
}

// SetPassword hashes pwd with bcrypt. cost defaults to bcrypt.DefaultCost.
func (u *User) SetPassword(pwd string, cost ...int) error {
	c := bcrypt.DefaultCost
	if len(cost) > 0 {
		c = cost[0]
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), c)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(pwd))
}

func (u User) IsAdmin() bool  { return u.Role == RoleAdmin }
func (u User) IsActive() bool { return u.Status == StatusActive }

// Public returns a copy of the user safe to hand out to clients.
func (u User) Public() User {
	u.Password = ""
	return u
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Username        string `json:"username" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email,gmail"`
	Password        string `json:"password" validate:"required,pwdminlen"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Username = core.CleanString(nu.Username)
	nu.Email = core.CleanString(nu.Email)
	return validate.Struct(nu)
}

// UpdateProfile defines what a User may change on their own profile.
type UpdateProfile struct {
	Username       string `json:"username" validate:"omitempty,notblank"`
	Email          string `json:"email" validate:"omitempty,email,gmail"`
	ProfilePicture string `json:"profilePicture"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.Username = core.CleanString(up.Username)
	up.Email = core.CleanString(up.Email)
	up.ProfilePicture = core.CleanString(up.ProfilePicture)
	return validate.Struct(up)
}

// UpdateUser defines what an admin may change on any User.
type UpdateUser struct {
	UpdateProfile
	Role   *Role   `json:"role" validate:"omitempty,min=0,max=1"`
	Status *Status `json:"status" validate:"omitempty,min=0,max=1"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.Username = core.CleanString(uu.Username)
	uu.Email = core.CleanString(uu.Email)
	uu.ProfilePicture = core.CleanString(uu.ProfilePicture)
	return validate.Struct(uu)
}

type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	Password        string `json:"password" validate:"required,pwdminlen"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (cp ChangePassword) Validate(validate *validator.Validate) error { return validate.Struct(cp) }
