package validation

// Field names the seven inputs of the payment form.  The values double as the
// element ids the page markup uses.
type Field string

const (
	FieldName         Field = "name"
	FieldCardNumber   Field = "ccn"
	FieldExpMonth     Field = "exp-month"
	FieldExpYear      Field = "exp-year"
	FieldSecurityCode Field = "cvv"
	FieldPostalCode   Field = "zipcode"
	FieldEmail        Field = "email"
)

// PaymentFieldOrder is the order fields appear on the payment page.
var PaymentFieldOrder = []Field{
	FieldName,
	FieldCardNumber,
	FieldExpMonth,
	FieldExpYear,
	FieldSecurityCode,
	FieldPostalCode,
	FieldEmail,
}

// PaymentFields holds the current raw values of the payment form.
type PaymentFields struct {
	Name         string `json:"name" form:"name" validate:"booking_name"`
	CardNumber   string `json:"ccn" form:"ccn" validate:"card_number"`
	ExpMonth     string `json:"exp_month" form:"exp-month" validate:"exp_month"`
	ExpYear      string `json:"exp_year" form:"exp-year" validate:"exp_year"`
	SecurityCode string `json:"cvv" form:"cvv" validate:"security_code"`
	PostalCode   string `json:"zipcode" form:"zipcode" validate:"postal_code"`
	Email        string `json:"email" form:"email" validate:"booking_email"`
}

// Value returns the raw value of f.
func (p PaymentFields) Value(f Field) string {
	switch f {
	case FieldName:
		return p.Name
	case FieldCardNumber:
		return p.CardNumber
	case FieldExpMonth:
		return p.ExpMonth
	case FieldExpYear:
		return p.ExpYear
	case FieldSecurityCode:
		return p.SecurityCode
	case FieldPostalCode:
		return p.PostalCode
	case FieldEmail:
		return p.Email
	}
	return ""
}

// Valid reports whether value is acceptable for f under r.
func (r Rules) Valid(f Field, value string) bool {
	switch f {
	case FieldName:
		return ValidateName(value)
	case FieldCardNumber:
		return ValidateCardNumber(value)
	case FieldExpMonth:
		return ValidateExpirationMonth(value)
	case FieldExpYear:
		return r.ValidateExpirationYear(value)
	case FieldSecurityCode:
		return ValidateSecurityCode(value)
	case FieldPostalCode:
		return ValidatePostalCode(value)
	case FieldEmail:
		return ValidateEmail(value)
	}
	return false
}

// IsFormValid is the logical AND of every field validator.
func IsFormValid(p PaymentFields) bool { return DefaultRules.IsFormValid(p) }

func (r Rules) IsFormValid(p PaymentFields) bool {
	for _, f := range PaymentFieldOrder {
		if !r.Valid(f, p.Value(f)) {
			return false
		}
	}
	return true
}

// InvalidFields maps every payment field to whether it is currently invalid.
func InvalidFields(p PaymentFields) map[Field]bool { return DefaultRules.InvalidFields(p) }

func (r Rules) InvalidFields(p PaymentFields) map[Field]bool {
	out := make(map[Field]bool, len(PaymentFieldOrder))
	for _, f := range PaymentFieldOrder {
		out[f] = !r.Valid(f, p.Value(f))
	}
	return out
}
