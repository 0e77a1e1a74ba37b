package models

// Role is the closed set of marketplace actor roles. A center_owner is a
// tutor with organization administration on top.
type Role string

const (
	RoleLearner     Role = "learner"
	RoleTutor       Role = "tutor"
	RoleCenterOwner Role = "center_owner"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleLearner, RoleTutor, RoleCenterOwner:
		return true
	}
	return false
}

// MembershipRole is the role a user holds inside one organization.
type MembershipRole string

const (
	MemberOwner   MembershipRole = "owner"
	MemberTutor   MembershipRole = "tutor"
	MemberLearner MembershipRole = "learner"
)

func (r MembershipRole) Valid() bool {
	switch r {
	case MemberOwner, MemberTutor, MemberLearner:
		return true
	}
	return false
}

// Capabilities is the capability set derived from a Role, so call sites do
// not re-derive booleans from raw strings.
type Capabilities struct {
	IsLearner             bool
	IsTutor               bool
	IsCenterOwner         bool
	CanManageOrganization bool
	CanManageTutors       bool
	CanManageLearners     bool
}

// Capabilities resolves the capability set for the role.
func (r Role) Capabilities() Capabilities {
	return Capabilities{
		IsLearner:             r == RoleLearner,
		IsTutor:               r == RoleTutor || r == RoleCenterOwner,
		IsCenterOwner:         r == RoleCenterOwner,
		CanManageOrganization: r == RoleCenterOwner,
		CanManageTutors:       r == RoleCenterOwner,
		CanManageLearners:     r == RoleCenterOwner,
	}
}
