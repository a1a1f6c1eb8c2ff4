package handler

import (
    "github.com/go-playground/validator/v10"

    "github.com/iliyamo/cinema-booking-flow/internal/validation"
)

// RequestValidator plugs the payment field rules into echo's Validator
// hook so handlers can call c.Validate on bound DTOs.
type RequestValidator struct {
    v *validator.Validate
}

// NewRequestValidator returns a validator enforcing rules.
func NewRequestValidator(rules validation.Rules) *RequestValidator {
    return &RequestValidator{v: validation.NewValidator(rules)}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i interface{}) error {
    return rv.v.Struct(i)
}
