package booking

import "github.com/iliyamo/cinema-booking-flow/internal/model"

// Checked is the value a selected checkbox input carries.
const Checked = "on"

// Form is a rendered form: its inputs in page order.  It implements
// InputTarget so snapshots can be restored into it.
type Form struct {
	Name   string              `json:"name"`
	Inputs []model.InputRecord `json:"inputs"`
	index  map[string]int
}

// NewForm renders a form from its inputs.
func NewForm(name string, inputs []model.InputRecord) *Form {
	f := &Form{Name: name, Inputs: inputs, index: make(map[string]int, len(inputs))}
	for i, in := range inputs {
		f.index[in.ID] = i
	}
	return f
}

// NewSeatForm renders one unchecked checkbox per seat.
func NewSeatForm(seats []model.Seat) *Form {
	inputs := make([]model.InputRecord, 0, len(seats))
	for _, s := range seats {
		inputs = append(inputs, model.InputRecord{ID: s.ID, Name: s.Label, Type: "checkbox"})
	}
	return NewForm(SeatFormPrefix, inputs)
}

// Lookup returns the rendered input with id.
func (f *Form) Lookup(id string) (model.InputRecord, bool) {
	i, ok := f.index[id]
	if !ok {
		return model.InputRecord{}, false
	}
	return f.Inputs[i], true
}

// SetFieldValue writes value into the input with id.  It reports false when
// the form renders no such input.
func (f *Form) SetFieldValue(id, value string) bool {
	i, ok := f.index[id]
	if !ok {
		return false
	}
	f.Inputs[i].Value = value
	return true
}

// Checked returns the ids of checkbox inputs whose value is Checked.
func (f *Form) Checked() []string {
	var out []string
	for _, in := range f.Inputs {
		if in.Type == "checkbox" && in.Value == Checked {
			out = append(out, in.ID)
		}
	}
	return out
}
