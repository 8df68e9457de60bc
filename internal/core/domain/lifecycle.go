package domain

import "fmt"

// Event is a role-scoped lifecycle action on an application
type Event string

const (
	EventSubmit        Event = "submit"
	EventAssignOfficer Event = "assign-officer"
	EventInquiryReport Event = "inquiry-report"
	EventReturn        Event = "return"
	EventForward       Event = "forward"
	EventTrusteeReview Event = "trustee-review"
	EventDecide        Event = "decide"
	EventDisburse      Event = "disburse"
)

// Rule is one row of the transition table.
//
// To is empty for EventDecide, where the caller picks a target from Targets,
// and for EventDisburse, which leaves the status where it is.
type Rule struct {
	From    []Status
	Roles   []Role
	To      Status
	Targets []Status
	Action  Action
}

// Step is the outcome of a validated transition
type Step struct {
	From   Status
	To     Status
	Action Action
}

// Changed reports whether the step moves the application to another status
func (s Step) Changed() bool { return s.From != s.To }

var rules = map[Event]Rule{
	EventSubmit: {
		Roles:  []Role{RoleUser},
		To:     StatusPending,
		Action: ActionSubmitted,
	},
	EventAssignOfficer: {
		From:   []Status{StatusPending},
		Roles:  []Role{RoleDepartmentHOD, RoleAdmin},
		To:     StatusInquiry,
		Action: ActionInquiryAssigned,
	},
	EventInquiryReport: {
		From:   []Status{StatusInquiry},
		Roles:  []Role{RoleInquiryOfficer},
		To:     StatusHODReview,
		Action: ActionInquiryCompleted,
	},
	EventReturn: {
		From:   []Status{StatusHODReview, StatusPending},
		Roles:  []Role{RoleDepartmentHOD},
		To:     StatusPending,
		Action: ActionReturnedForInfo,
	},
	EventForward: {
		From:   []Status{StatusHODReview},
		Roles:  []Role{RoleDepartmentHOD},
		To:     StatusCommitteeReview,
		Action: ActionForwardedToTrustee,
	},
	EventTrusteeReview: {
		From:   []Status{StatusCommitteeReview},
		Roles:  []Role{RoleTrustee},
		To:     StatusCommitteeReview,
		Action: ActionReviewed,
	},
	EventDecide: {
		From:    []Status{StatusCommitteeReview, StatusHold},
		Roles:   []Role{RoleAdmin},
		Targets: []Status{StatusApproved, StatusRejected, StatusHold},
	},
	EventDisburse: {
		From:   []Status{StatusApproved, StatusFunded},
		Roles:  []Role{RoleAdmin},
		Action: ActionFundDisbursed,
	},
}

// RuleFor returns the transition rule of an event
func RuleFor(e Event) (Rule, bool) {
	r, ok := rules[e]
	return r, ok
}

// RolesFor returns the roles allowed to trigger e
func RolesFor(e Event) []Role {
	return rules[e].Roles
}

// Plan validates event e against the current status and the caller's role.
//
// current is ignored for EventSubmit. target is only read for EventDecide.
func Plan(e Event, current Status, role Role, target Status) (Step, error) {
	rule, ok := rules[e]
	if !ok {
		return Step{}, fmt.Errorf("unknown lifecycle event %q", e)
	}
	if !role.In(rule.Roles...) {
		return Step{}, ErrInsufficientRole
	}

	if e != EventSubmit && !containsStatus(rule.From, current) {
		return Step{}, Conflictf("Application in status %q does not accept %s.", current, e)
	}

	to := rule.To
	if to == "" {
		to = current
	}
	action := rule.Action
	if len(rule.Targets) > 0 {
		if !containsStatus(rule.Targets, target) {
			return Step{}, ErrInvalidDecision
		}
		to = target
		action = Action(target)
	}

	return Step{From: current, To: to, Action: action}, nil
}

func containsStatus(list []Status, s Status) bool {
	for _, st := range list {
		if st == s {
			return true
		}
	}
	return false
}
