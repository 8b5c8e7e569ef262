package model

// ReconciledField is the outcome of reconciling one tracked field against
// the available external observations.
type ReconciledField struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"` // 0.0 - 1.0
	Note       string  `json:"note"`       // rationale; never empty
}

// ConsolidatedRecord maps the five tracked fields to their reconciled
// outcome. Built once per provider and immutable afterwards.
type ConsolidatedRecord struct {
	Name       ReconciledField `json:"name"`
	NPI        ReconciledField `json:"npi"`
	Phone      ReconciledField `json:"phone"`
	Address    ReconciledField `json:"address"`
	Speciality ReconciledField `json:"speciality"`
}

// Get returns the reconciled field for a tracked field name.
func (c ConsolidatedRecord) Get(f Field) ReconciledField {
	switch f {
	case FieldNPI:
		return c.NPI
	case FieldName:
		return c.Name
	case FieldPhone:
		return c.Phone
	case FieldAddress:
		return c.Address
	case FieldSpeciality:
		return c.Speciality
	}
	return ReconciledField{}
}

// ContactFields returns the four non-identifier reconciled fields in
// evaluation order (name, phone, address, speciality).
func (c ConsolidatedRecord) ContactFields() []ReconciledField {
	return []ReconciledField{c.Name, c.Phone, c.Address, c.Speciality}
}
