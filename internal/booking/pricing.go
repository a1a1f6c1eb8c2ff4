package booking

import (
	"github.com/iliyamo/cinema-booking-flow/internal/model"
	"github.com/iliyamo/cinema-booking-flow/internal/validation"
)

// Pricing holds per-category ticket prices in cents and the tax rate in
// basis points (1000 = 10%).
type Pricing struct {
	AdultCents  int64
	ChildCents  int64
	SeniorCents int64
	TaxBasisPts int64
}

// DefaultPricing is 12.50 / 11.00 / 12.00 with 10% tax.
var DefaultPricing = Pricing{
	AdultCents:  1250,
	ChildCents:  1100,
	SeniorCents: 1200,
	TaxBasisPts: 1000,
}

// Quote prices a ticket selection.  Categories with no tickets get no line.
// Tax is rounded half-up to the cent.
func (p Pricing) Quote(c validation.TicketCounts) model.Quote {
	var q model.Quote
	add := func(category string, qty int, unit int64) {
		if qty <= 0 {
			return
		}
		amount := int64(qty) * unit
		q.Lines = append(q.Lines, model.PriceLine{
			Category:       category,
			Quantity:       qty,
			UnitPriceCents: unit,
			AmountCents:    amount,
		})
		q.SubtotalCents += amount
	}
	add("adult", c.Adult, p.AdultCents)
	add("child", c.Child, p.ChildCents)
	add("senior", c.Senior, p.SeniorCents)
	q.TaxCents = (q.SubtotalCents*p.TaxBasisPts + 5000) / 10000
	q.TotalCents = q.SubtotalCents + q.TaxCents
	return q
}
