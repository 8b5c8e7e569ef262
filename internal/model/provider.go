package model

import "strings"

// DefaultImpact is assumed when a caller omits or submits an out-of-range
// member impact.
const DefaultImpact = 3

// ProviderRecord is a caller-submitted snapshot of a healthcare provider.
// It is immutable for the duration of a pipeline run.
type ProviderRecord struct {
	Name       string `json:"name"`
	NPI        string `json:"npi"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Speciality string `json:"speciality"`
	Impact     int    `json:"impact"` // 1-5, caller-asserted member impact
}

// Normalize trims whitespace on all tracked fields and clamps Impact into
// the valid 1-5 range, substituting DefaultImpact when out of range.
func (p ProviderRecord) Normalize() ProviderRecord {
	p.Name = strings.TrimSpace(p.Name)
	p.NPI = strings.TrimSpace(p.NPI)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = strings.TrimSpace(p.Address)
	p.Speciality = strings.TrimSpace(p.Speciality)
	if p.Impact < 1 || p.Impact > 5 {
		p.Impact = DefaultImpact
	}
	return p
}

// Field identifies one of the tracked provider fields.
type Field string

const (
	FieldNPI        Field = "npi"
	FieldName       Field = "name"
	FieldPhone      Field = "phone"
	FieldAddress    Field = "address"
	FieldSpeciality Field = "speciality"
)

// TrackedFields lists the reconciled fields in evaluation order. The NPI is
// checked first, then contact fields; reason ordering depends on this.
var TrackedFields = []Field{
	FieldNPI,
	FieldName,
	FieldPhone,
	FieldAddress,
	FieldSpeciality,
}

// Label returns the display label used in reconciliation notes.
func (f Field) Label() string {
	switch f {
	case FieldNPI:
		return "NPI"
	case FieldName:
		return "Name"
	case FieldPhone:
		return "Phone"
	case FieldAddress:
		return "Address"
	case FieldSpeciality:
		return "Speciality"
	}
	return string(f)
}

// Value returns the provider's input value for a tracked field.
func (p ProviderRecord) Value(f Field) string {
	switch f {
	case FieldNPI:
		return p.NPI
	case FieldName:
		return p.Name
	case FieldPhone:
		return p.Phone
	case FieldAddress:
		return p.Address
	case FieldSpeciality:
		return p.Speciality
	}
	return ""
}

// Observation is one external source's reported values for a provider.
// Every field is optional; an empty string means the source had nothing for
// that field.
type Observation struct {
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	Speciality string `json:"speciality,omitempty"`
}

// Empty reports whether the observation carries no usable values.
func (o *Observation) Empty() bool {
	if o == nil {
		return true
	}
	return o.Name == "" && o.Phone == "" && o.Address == "" && o.Speciality == ""
}
