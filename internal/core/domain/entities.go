package domain

// Role represents user role in the system
type Role string

const (
	RoleUser           Role = "user"
	RoleDepartmentHOD  Role = "department-hod"
	RoleTrustee        Role = "trustee"
	RoleInquiryOfficer Role = "inquiry-officer"
	RoleAdmin          Role = "admin"
)

// AllRoles lists every role, in the order used by schema enums
var AllRoles = []Role{RoleUser, RoleDepartmentHOD, RoleTrustee, RoleInquiryOfficer, RoleAdmin}

// PrivilegedRoles are the roles an admin can create accounts for
var PrivilegedRoles = []Role{RoleDepartmentHOD, RoleTrustee, RoleInquiryOfficer, RoleAdmin}

// ParseRole returns the role for s, or false if s is not a known role
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Valid reports whether r is one of the declared roles
func (r Role) Valid() bool {
	return r.In(AllRoles...)
}

// In reports whether r is contained in roles
func (r Role) In(roles ...Role) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsPrivileged reports whether r is a staff role
func (r Role) IsPrivileged() bool {
	return r.In(PrivilegedRoles...)
}

// Status represents the lifecycle status of an application
type Status string

const (
	StatusPending         Status = "pending"
	StatusInReview        Status = "in-review"
	StatusInquiry         Status = "inquiry"
	StatusHODReview       Status = "hod-review"
	StatusCommitteeReview Status = "committee-review"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusHold            Status = "hold"
	StatusReturned        Status = "returned"
	StatusFunded          Status = "funded"
)

// AllStatuses lists every declared application status
var AllStatuses = []Status{
	StatusPending, StatusInReview, StatusInquiry, StatusHODReview, StatusCommitteeReview,
	StatusApproved, StatusRejected, StatusHold, StatusReturned, StatusFunded,
}

// Valid reports whether s is a declared status
func (s Status) Valid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further lifecycle event can leave s
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusFunded
}

// Action is the tag written to an audit transaction
type Action string

const (
	ActionSubmitted          Action = "submitted"
	ActionReviewed           Action = "reviewed"
	ActionReturnedForInfo    Action = "returned-for-info"
	ActionInquiryAssigned    Action = "inquiry-assigned"
	ActionInquiryCompleted   Action = "inquiry-completed"
	ActionForwardedToTrustee Action = "forwarded-to-trustee"
	ActionApproved           Action = "approved"
	ActionRejected           Action = "rejected"
	ActionHold               Action = "hold"
	ActionFundDisbursed      Action = "fund-disbursed"
)

// FundType is the kind of a disbursement
type FundType string

const (
	FundOneTime   FundType = "one-time"
	FundRecurring FundType = "recurring"
)

// Frequency applies to recurring funds
type Frequency string

const (
	FrequencyMonthly  Frequency = "monthly"
	FrequencySeasonal Frequency = "seasonal"
)

// Platform is the client a user signed in from
type Platform string

const (
	PlatformGoogle Platform = "google"
	PlatformWeb    Platform = "web"
	PlatformMobile Platform = "mobile"
)

// Valid reports whether p is a known platform
func (p Platform) Valid() bool {
	return p == PlatformGoogle || p == PlatformWeb || p == PlatformMobile
}

// Actor is the authenticated caller performing an operation
type Actor struct {
	ID        uint
	Role      Role
	IPAddress string
}
