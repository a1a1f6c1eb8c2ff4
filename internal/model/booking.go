package model

// Seat is a selectable seat on the seat map.  ID is the form field id and
// Label is what the confirmation page prints (e.g. "F7").
type Seat struct {
    ID    string `json:"id"`
    Label string `json:"label"`
}

// InputRecord is the snapshot of one rendered form input, persisted so that
// in-progress input survives a navigation.
type InputRecord struct {
    ID    string `json:"id"`
    Name  string `json:"name"`
    Type  string `json:"type"`
    Value string `json:"value"`
}

// PriceLine is one category row of an order quote.
type PriceLine struct {
    Category       string `json:"category"`
    Quantity       int    `json:"quantity"`
    UnitPriceCents int64  `json:"unit_price_cents"`
    AmountCents    int64  `json:"amount_cents"`
}

// Quote is the priced summary of a ticket selection.
//
// Fields:
//  Lines         – one line per category with a non-zero quantity.
//  SubtotalCents – sum of line amounts.
//  TaxCents      – tax applied to the subtotal.
//  TotalCents    – subtotal plus tax.
type Quote struct {
    Lines         []PriceLine `json:"lines"`
    SubtotalCents int64       `json:"subtotal_cents"`
    TaxCents      int64       `json:"tax_cents"`
    TotalCents    int64       `json:"total_cents"`
}
