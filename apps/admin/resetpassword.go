package main

import (
	"context"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/examhub/portal/core/user"
)

var errPasswordTooShort = errors.Errorf("password must contain at least %d characters", user.PasswordMinLen)

func (cli *commandLine) resetPassword(email, pwd string) error {
	if utf8.RuneCountInString(pwd) < user.PasswordMinLen {
		return errPasswordTooShort
	}

	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if _, err = cli.usrSvc.SetPassword(ctx, usr, pwd); err != nil {
		return errors.Wrap(err, "saving password")
	}
	return nil
}
