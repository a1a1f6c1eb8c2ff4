package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking-flow/internal/model"
)

func validPayment() PaymentFields {
	return PaymentFields{
		Name:         "  Ada   Lovelace ",
		CardNumber:   "1234 5678 9012 3456",
		ExpMonth:     "07",
		ExpYear:      "2030",
		SecurityCode: "123",
		PostalCode:   "97201",
		Email:        "ada@example.com",
	}
}

func TestFieldValidators(t *testing.T) {
	t.Run("Name", func(t *testing.T) {
		assert.True(t, ValidateName(" a  b "))
		assert.False(t, ValidateName(""))
		assert.False(t, ValidateName(" \t\n "))
	})

	t.Run("CardNumber", func(t *testing.T) {
		assert.True(t, ValidateCardNumber(" 1234 5678 9012 3456 "))
		assert.True(t, ValidateCardNumber("1234567890123456"))
		assert.False(t, ValidateCardNumber("123456789012345"))
		assert.False(t, ValidateCardNumber("12345678901234567"))
		assert.False(t, ValidateCardNumber("1234-5678-9012-3456"))
		assert.False(t, ValidateCardNumber("abcdefghijklmnop"))
		assert.False(t, ValidateCardNumber("１２３４５６７８９０１２３４５６"))
	})

	t.Run("ExpirationMonth", func(t *testing.T) {
		for _, ok := range []string{"1", "01", "12", " 6 "} {
			assert.True(t, ValidateExpirationMonth(ok), ok)
		}
		for _, bad := range []string{"", "0", "13", "abc", "1.5", "-1", "NaN", "Inf"} {
			assert.False(t, ValidateExpirationMonth(bad), bad)
		}
	})

	t.Run("ExpirationYear", func(t *testing.T) {
		assert.False(t, ValidateExpirationYear("2018"))
		assert.True(t, ValidateExpirationYear("2019"))
		assert.True(t, ValidateExpirationYear("9999"))
		assert.False(t, ValidateExpirationYear("10000"))
		assert.False(t, ValidateExpirationYear("abcd"))
		assert.False(t, ValidateExpirationYear(""))

		r := Rules{MinExpYear: 2026, MaxTickets: 20}
		assert.False(t, r.ValidateExpirationYear("2025"))
		assert.True(t, r.ValidateExpirationYear("2026"))
	})

	t.Run("SecurityCode", func(t *testing.T) {
		assert.True(t, ValidateSecurityCode("123"))
		assert.True(t, ValidateSecurityCode(" 12 34 "))
		assert.False(t, ValidateSecurityCode("12"))
		assert.False(t, ValidateSecurityCode("12345"))
		assert.False(t, ValidateSecurityCode("12a"))
	})

	t.Run("PostalCode", func(t *testing.T) {
		assert.True(t, ValidatePostalCode("97201"))
		assert.True(t, ValidatePostalCode("97201-1234"))
		assert.True(t, ValidatePostalCode(" 97201 - 1234 "))
		assert.False(t, ValidatePostalCode("9720"))
		assert.False(t, ValidatePostalCode("97201-123"))
		assert.False(t, ValidatePostalCode("972011234"))
	})

	t.Run("Email", func(t *testing.T) {
		assert.True(t, ValidateEmail("a@b.com"))
		assert.True(t, ValidateEmail(" a @ b "))
		assert.False(t, ValidateEmail("nope"))
		assert.False(t, ValidateEmail(""))
	})
}

func TestIsFormValid(t *testing.T) {
	p := validPayment()
	require.True(t, IsFormValid(p))
	for _, f := range InvalidFields(p) {
		assert.False(t, f)
	}

	p.CardNumber = "1234"
	p.Email = "nobody"
	assert.False(t, IsFormValid(p))
	invalid := InvalidFields(p)
	assert.True(t, invalid[FieldCardNumber])
	assert.True(t, invalid[FieldEmail])
	assert.False(t, invalid[FieldName])
	assert.Len(t, invalid, len(PaymentFieldOrder))
}

func TestAnnotations(t *testing.T) {
	a := NewAnnotations(DefaultRules)
	require.Len(t, a.List(), 7)
	assert.Empty(t, a.Visible())

	p := validPayment()
	p.SecurityCode = "1"
	assert.False(t, a.Update(p))
	vis := a.Visible()
	require.Len(t, vis, 1)
	assert.Equal(t, FieldSecurityCode, vis[0].Field)
	assert.Equal(t, "cvv-label", vis[0].LabelID)

	// Re-validating the same input never duplicates annotations.
	assert.False(t, a.Update(p))
	assert.Len(t, a.List(), 7)
	assert.Len(t, a.Visible(), 1)

	p.SecurityCode = "123"
	assert.True(t, a.Update(p))
	assert.Empty(t, a.Visible())
}

func TestTicketSelection(t *testing.T) {
	assert.False(t, IsTicketSelectionValid(TicketCounts{}, 20))
	assert.False(t, IsTicketSelectionValid(TicketCounts{Adult: 21}, 20))
	assert.True(t, IsTicketSelectionValid(TicketCounts{Adult: 5, Child: 3, Senior: 2}, 20))
	assert.True(t, IsTicketSelectionValid(TicketCounts{Senior: 20}, 20))
	assert.False(t, IsTicketSelectionValid(TicketCounts{Adult: 3, Child: -1}, 20))

	t.Run("Parse", func(t *testing.T) {
		in := ParseTicketCounts("2", "1", "")
		assert.True(t, in.Consistent)
		assert.Equal(t, TicketCounts{Adult: 2, Child: 1}, in.Counts)
		assert.True(t, DefaultRules.ValidTickets(in))
		assert.Empty(t, DefaultRules.TicketHint(in))

		in = ParseTicketCounts("-2", "3", "x")
		assert.False(t, in.Consistent)
		assert.Equal(t, TicketCounts{Child: 3}, in.Counts)
		assert.False(t, DefaultRules.ValidTickets(in))
		assert.NotEmpty(t, DefaultRules.TicketHint(in))

		in = ParseTicketCounts("0", "0", "0")
		assert.True(t, in.Consistent)
		assert.Equal(t, "Select at least one ticket", DefaultRules.TicketHint(in))

		in = ParseTicketCounts("15", "6", "0")
		assert.Contains(t, DefaultRules.TicketHint(in), "20")
	})

	t.Run("Seats", func(t *testing.T) {
		assert.False(t, IsSeatSelectionValid(0, 3))
		assert.True(t, IsSeatSelectionValid(3, 3))
		assert.False(t, IsSeatSelectionValid(4, 3))
	})
}

func TestMatchesFilters(t *testing.T) {
	m := model.Movie{Title: "Alpha", Genres: []string{"comedy", "drama"}, Rating: "PG-13"}

	assert.True(t, MatchesFilters(m, "drama", ""))
	assert.True(t, MatchesFilters(m, "Drama", "all"))
	assert.False(t, MatchesFilters(m, "horror", ""))
	assert.False(t, MatchesFilters(m, "", "R"))
	assert.True(t, MatchesFilters(m, "", "PG-13"))
	assert.False(t, MatchesFilters(m, "", "pg-13"))
	assert.True(t, MatchesFilters(m, "all", "all"))
	assert.False(t, MatchesFilters(m, "comedy", "R"))
}

func TestNewValidator(t *testing.T) {
	v := NewValidator(DefaultRules)
	require.NoError(t, v.Struct(validPayment()))

	p := validPayment()
	p.ExpYear = "2018"
	p.PostalCode = "abc"
	err := v.Struct(p)
	require.Error(t, err)
	failed := FieldErrors(err)
	assert.Equal(t, map[Field]bool{FieldExpYear: true, FieldPostalCode: true}, failed)
}
