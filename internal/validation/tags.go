package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a go-playground validator with the payment field
// predicates registered as struct tags, so request DTOs can declare
// `validate:"card_number"` and friends.
func NewValidator(rules Rules) *validator.Validate {
	v := validator.New()
	register := func(tag string, fn func(string) bool) {
		// RegisterValidation only fails for empty tags or nil funcs.
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		})
	}
	register("booking_name", ValidateName)
	register("card_number", ValidateCardNumber)
	register("exp_month", ValidateExpirationMonth)
	register("exp_year", rules.ValidateExpirationYear)
	register("security_code", ValidateSecurityCode)
	register("postal_code", ValidatePostalCode)
	register("booking_email", ValidateEmail)
	return v
}

// FieldErrors turns a validator error into the set of payment fields that
// failed, keyed by form field id.
func FieldErrors(err error) map[Field]bool {
	out := map[Field]bool{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return out
	}
	for _, fe := range verrs {
		if f, ok := structFieldToField[fe.StructField()]; ok {
			out[f] = true
		}
	}
	return out
}

var structFieldToField = map[string]Field{
	"Name":         FieldName,
	"CardNumber":   FieldCardNumber,
	"ExpMonth":     FieldExpMonth,
	"ExpYear":      FieldExpYear,
	"SecurityCode": FieldSecurityCode,
	"PostalCode":   FieldPostalCode,
	"Email":        FieldEmail,
}
