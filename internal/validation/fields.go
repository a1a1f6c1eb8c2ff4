// Package validation classifies raw form input for the booking flow.  Every
// function in this package is pure and total: it accepts whatever string the
// browser sent, never panics and never returns an error.  Callers decide how
// to surface an invalid field (inline annotation, disabled submit button).
package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Rules carries the configuration constants the validators depend on.
// MinExpYear stands for "current year or later" and MaxTickets caps the
// number of tickets a single booking may contain.
type Rules struct {
	MinExpYear int
	MaxExpYear int
	MaxTickets int
}

// DefaultRules are used by the package-level validators.
var DefaultRules = Rules{
	MinExpYear: 2019,
	MaxExpYear: 9999,
	MaxTickets: 20,
}

var (
	cardNumberRe   = regexp.MustCompile(`^[0-9]{16}$`)
	securityCodeRe = regexp.MustCompile(`^[0-9]{3}[0-9]?$`)
	postalCodeRe   = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
)

// CollapseWhitespace trims leading and trailing whitespace and collapses
// every internal run of whitespace to a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripWhitespace removes every whitespace rune from s.
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Number coerces s to a float64.  Empty and non-numeric input yields NaN so
// that comparisons against bounds are always false.
func Number(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// inIntRange reports whether f is an integer within [lo, hi].  NaN is never
// in range.
func inIntRange(f float64, lo, hi int) bool {
	if math.IsNaN(f) || f != math.Trunc(f) {
		return false
	}
	return f >= float64(lo) && f <= float64(hi)
}

// ValidateName accepts any name that is non-empty once whitespace has been
// normalised.
func ValidateName(name string) bool {
	return CollapseWhitespace(name) != ""
}

// ValidateCardNumber accepts exactly sixteen decimal digits, ignoring
// whitespace anywhere in the input.
func ValidateCardNumber(ccn string) bool {
	return cardNumberRe.MatchString(StripWhitespace(ccn))
}

func ValidateExpirationMonth(month string) bool {
	return inIntRange(Number(month), 1, 12)
}

func ValidateExpirationYear(year string) bool {
	return DefaultRules.ValidateExpirationYear(year)
}

// ValidateExpirationYear accepts an integer year within
// [r.MinExpYear, r.MaxExpYear].
func (r Rules) ValidateExpirationYear(year string) bool {
	hi := r.MaxExpYear
	if hi == 0 {
		hi = 9999
	}
	return inIntRange(Number(year), r.MinExpYear, hi)
}

// ValidateSecurityCode accepts a 3 or 4 digit code.
func ValidateSecurityCode(cvv string) bool {
	return securityCodeRe.MatchString(StripWhitespace(cvv))
}

// ValidatePostalCode accepts NNNNN or NNNNN-NNNN.
func ValidatePostalCode(zip string) bool {
	return postalCodeRe.MatchString(StripWhitespace(zip))
}

// ValidateEmail only requires an "@" once whitespace is stripped.
func ValidateEmail(email string) bool {
	return strings.Contains(StripWhitespace(email), "@")
}
