package funpay

// ListingFields is the mutable view of one listing. The gateway serves two
// shapes for historical reasons, a flat form map and a typed record. Both
// satisfy this interface, so callers never branch on representation.
type ListingFields interface {
	ListingID() string
	IsActive() bool
	SetActive(active bool)
}

// FormFields is the form-map representation: the activity flag is the
// checkbox value "on", absent when inactive.
type FormFields struct {
	id     string
	Values map[string]string
}

func NewFormFields(id string, values map[string]string) *FormFields {
	if values == nil {
		values = make(map[string]string)
	}
	return &FormFields{id: id, Values: values}
}

func (f *FormFields) ListingID() string {
	return f.id
}

func (f *FormFields) IsActive() bool {
	return f.Values["active"] == "on"
}

func (f *FormFields) SetActive(active bool) {
	if active {
		f.Values["active"] = "on"
	} else {
		delete(f.Values, "active")
	}
}

// LotFields is the typed record representation.
type LotFields struct {
	ID     string  `json:"id"`
	Active bool    `json:"active"`
	Title  string  `json:"title,omitempty"`
	Price  float64 `json:"price,omitempty"`
}

func (l *LotFields) ListingID() string {
	return l.ID
}

func (l *LotFields) IsActive() bool {
	return l.Active
}

func (l *LotFields) SetActive(active bool) {
	l.Active = active
}
