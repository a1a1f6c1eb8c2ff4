package validation

// Annotation is the inline error marker rendered after a field's label.
type Annotation struct {
	Field   Field  `json:"field"`
	LabelID string `json:"label_id"`
	Message string `json:"message"`
	Visible bool   `json:"visible"`
}

var fieldMessages = map[Field]string{
	FieldName:         "Enter the name on the card",
	FieldCardNumber:   "Card number must be 16 digits",
	FieldExpMonth:     "Month must be between 1 and 12",
	FieldExpYear:      "Enter a valid expiration year",
	FieldSecurityCode: "Security code must be 3 or 4 digits",
	FieldPostalCode:   "Zip code must be 5 digits or 5+4 digits",
	FieldEmail:        "Enter a valid email address",
}

// Annotations keeps exactly one annotation per payment field.  Update only
// toggles visibility; an annotation is never created twice.
type Annotations struct {
	rules   Rules
	byField map[Field]*Annotation
}

// NewAnnotations creates one hidden annotation for each payment field.
func NewAnnotations(rules Rules) *Annotations {
	a := &Annotations{rules: rules, byField: make(map[Field]*Annotation, len(PaymentFieldOrder))}
	for _, f := range PaymentFieldOrder {
		a.byField[f] = &Annotation{
			Field:   f,
			LabelID: string(f) + "-label",
			Message: fieldMessages[f],
		}
	}
	return a
}

// Update shows the annotation of every invalid field, hides the rest and
// reports whether the submit control should be enabled.
func (a *Annotations) Update(p PaymentFields) bool {
	ok := true
	for f, invalid := range a.rules.InvalidFields(p) {
		a.byField[f].Visible = invalid
		if invalid {
			ok = false
		}
	}
	return ok
}

// List returns the annotations in page order.
func (a *Annotations) List() []Annotation {
	out := make([]Annotation, 0, len(PaymentFieldOrder))
	for _, f := range PaymentFieldOrder {
		out = append(out, *a.byField[f])
	}
	return out
}

// Visible returns only the annotations currently shown.
func (a *Annotations) Visible() []Annotation {
	var out []Annotation
	for _, f := range PaymentFieldOrder {
		if an := a.byField[f]; an.Visible {
			out = append(out, *an)
		}
	}
	return out
}
