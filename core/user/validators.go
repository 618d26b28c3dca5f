package user

import (
	"fmt"
	"strings"
	"unicode/utf8"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/examhub/portal/core"
)

var (
	gmailTag    = "gmail"
	gmailSuffix = "@gmail.com"
	gmailText   = "only " + gmailSuffix + " addresses are accepted"

	// password policy
	PasswordMinLen = 5
	pwdMinLenTag   = "pwdminlen"
	pwdMinLenText  = fmt.Sprintf("password must contain at least %d characters", PasswordMinLen)

	pwdConfirmTag  = "eqfield"
	pwdConfirmText = "passwords do not match"
)

// InitValidators registers the user validation tags and their messages.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(gmailTag, gmailValidation)
	core.RegisterCustomTranslation(validate, translator, gmailTag, gmailText)

	_ = validate.RegisterValidation(pwdMinLenTag, pwdMinLenValidation)
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)

	core.RegisterCustomTranslation(validate, translator, pwdConfirmTag, pwdConfirmText, true)
}

// Custom Validators

func gmailValidation(fl validator.FieldLevel) bool {
	return strings.HasSuffix(strings.ToLower(fl.Field().String()), gmailSuffix)
}

func pwdMinLenValidation(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(fl.Field().String()) >= PasswordMinLen
}
