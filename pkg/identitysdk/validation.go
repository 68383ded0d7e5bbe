package identitysdk

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
)

var codeFormat = regexp.MustCompile(`^[0-9]{6}$`)

func emailRules(v *string) *validation.FieldRules {
	return validation.Field(v, validation.Required, is.Email)
}

func passwordRules(v *string) *validation.FieldRules {
	return validation.Field(v, validation.Required, validation.RuneLength(MinPasswordLength, MaxPasswordLength))
}

func codeRules(v *string) *validation.FieldRules {
	return validation.Field(v, validation.Required, validation.Match(codeFormat).Error("must be a 6-digit code"))
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r, emailRules(&r.Email), passwordRules(&r.Password))
}

func (r EmailRequest) Validate() error {
	return validation.ValidateStruct(&r, emailRules(&r.Email))
}

func (r CheckCodeRequest) Validate() error {
	return validation.ValidateStruct(&r, emailRules(&r.Email), codeRules(&r.Code))
}

// Validate only checks presence of the password; length rules apply to new
// passwords, and old accounts may predate them.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		emailRules(&r.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		passwordRules(&r.NewPassword),
	)
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r, passwordRules(&r.NewPassword))
}

func (r ForgotConfirmRequest) Validate() error {
	return validation.ValidateStruct(&r,
		emailRules(&r.Email),
		codeRules(&r.Code),
		passwordRules(&r.NewPassword),
	)
}

// ValidationDetails flattens a Validate error into field -> message.
// It returns nil for errors that are not field errors.
func ValidationDetails(err error) map[string]string {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	out := make(map[string]string, len(fieldErrs))
	for field, e := range fieldErrs {
		out[field] = e.Error()
	}
	return out
}
