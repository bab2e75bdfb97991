package lib

import (
	"github.com/go-playground/validator/v10"
	"github.com/quokkahub/quokkahub.go/lib/security"
)

type CustomValidator struct {
	Validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.Validator.Struct(i)
}

// NewValidator registers the "identity" tag, accepting hex and npub identities.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("identity", func(fl validator.FieldLevel) bool {
		_, err := security.ParseIdentity(fl.Field().String())
		return err == nil
	})
	return &CustomValidator{Validator: v}
}
