package domain

import dErrors "accredis/pkg/domain-errors"

// Role is the job function recorded on a profile.
type Role string

const (
	RoleStaff      Role = "staff"
	RoleManager    Role = "manager"
	RoleOwner      Role = "owner"
	RoleConsultant Role = "consultant"
)

var validRoles = map[Role]bool{
	RoleStaff:      true,
	RoleManager:    true,
	RoleOwner:      true,
	RoleConsultant: true,
}

// ParseRole constructs a Role from external input.
// Returns CodeValidation when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid role")
	}
	return r, nil
}

func (r Role) IsValid() bool {
	return validRoles[r]
}

// IsManagerial reports whether the role may review, publish and archive
// documents on behalf of a clinic.
func (r Role) IsManagerial() bool {
	return r == RoleManager || r == RoleOwner
}

func (r Role) String() string {
	return string(r)
}
