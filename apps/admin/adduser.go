package main

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/user"
)

// addUser updates the user with that email, or creates it. The account is (re)activated.
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	uname = core.CleanString(uname)
	email = core.CleanString(email)
	if utf8.RuneCountInString(pwd) < user.PasswordMinLen {
		return errPasswordTooShort
	}

	ctx := context.Background()
	users, err := cli.usrSvc.All(ctx)
	if err != nil {
		return err
	}

	var usr user.User
	for _, u := range users {
		if u.Email == email {
			usr = u
		} else if strings.EqualFold(u.Username, uname) {
			return user.ErrUsernameExists
		}
	}

	usr.Username = uname
	usr.Email = email
	usr.Status = user.StatusActive
	if isAdmin {
		usr.Role = user.RoleAdmin
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	_, err = cli.usrSvc.Save(ctx, usr)
	return err
}
