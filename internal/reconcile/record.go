package reconcile

import "github.com/Leorasaharia/provider-directory/internal/model"

// Record reconciles every tracked field of a provider against the registry
// and website observations, producing a ConsolidatedRecord.
//
// The name field only considers the registry observation: unstructured page
// text rarely yields a clean legal name, so the website is not a valid
// corroborator for it. All other fields use both sources.
func (r *Reconciler) Record(p model.ProviderRecord, registry, web *model.Observation) model.ConsolidatedRecord {
	var reg, site model.Observation
	if registry != nil {
		reg = *registry
	}
	if web != nil {
		site = *web
	}

	return model.ConsolidatedRecord{
		NPI:        r.Identifier(p.NPI, registry != nil),
		Name:       r.Field(p.Name, reg.Name, "", model.FieldName.Label()),
		Phone:      r.Field(p.Phone, reg.Phone, site.Phone, model.FieldPhone.Label()),
		Address:    r.Field(p.Address, reg.Address, site.Address, model.FieldAddress.Label()),
		Speciality: r.Field(p.Speciality, reg.Speciality, site.Speciality, model.FieldSpeciality.Label()),
	}
}
