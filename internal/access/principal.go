package access

import (
	"slices"

	id "accredis/pkg/domain"
)

// Principal is the acting identity for one request, resolved from the bearer
// token subject plus the profile and clinic stores. Services receive it as an
// explicit argument; nothing reads it from ambient state.
type Principal struct {
	ID id.UserID `json:"id"`
	// Role is empty when the principal has not created a profile yet.
	Role id.Role `json:"role,omitempty"`
	// ClinicID is the profile's clinic membership, nil when unaffiliated.
	ClinicID     *id.ClinicID  `json:"clinic_id,omitempty"`
	OwnedClinics []id.ClinicID `json:"owned_clinics,omitempty"`
}

// IsMember reports whether the principal's profile belongs to clinicID.
func (p Principal) IsMember(clinicID id.ClinicID) bool {
	return p.ClinicID != nil && *p.ClinicID == clinicID
}

// Owns reports whether the principal is the registered owner of clinicID.
func (p Principal) Owns(clinicID id.ClinicID) bool {
	return slices.Contains(p.OwnedClinics, clinicID)
}

// BelongsTo is the membership-or-ownership check that scopes clinic data.
func (p Principal) BelongsTo(clinicID id.ClinicID) bool {
	if clinicID.IsNil() {
		return false
	}
	return p.IsMember(clinicID) || p.Owns(clinicID)
}

// RoleIn returns the role the principal holds within clinicID. Owning the
// clinic confers the owner role there even before a profile links to it.
// Outsiders hold no role.
func (p Principal) RoleIn(clinicID id.ClinicID) id.Role {
	if p.Owns(clinicID) {
		return id.RoleOwner
	}
	if p.IsMember(clinicID) {
		return p.Role
	}
	return ""
}

// ClinicIDs lists every clinic the principal can see: owned clinics then the
// membership clinic, without duplicates.
func (p Principal) ClinicIDs() []id.ClinicID {
	out := slices.Clone(p.OwnedClinics)
	if p.ClinicID != nil && !slices.Contains(out, *p.ClinicID) {
		out = append(out, *p.ClinicID)
	}
	return out
}

// DefaultClinic picks the clinic a principal acts in when a request names
// none: the membership clinic, else a sole owned clinic.
func (p Principal) DefaultClinic() (id.ClinicID, bool) {
	if p.ClinicID != nil {
		return *p.ClinicID, true
	}
	if len(p.OwnedClinics) == 1 {
		return p.OwnedClinics[0], true
	}
	return id.ClinicID{}, false
}
