package user

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/examhub/portal/core"
)

// NewServiceMock returns a Service hashing passwords with the minimum bcrypt cost.
func NewServiceMock(repo Repository, mailSvc core.EmailService) Service {
	return &service{
		repo:     repo,
		mailSvc:  mailSvc,
		hashCost: bcrypt.MinCost,
	}
}
