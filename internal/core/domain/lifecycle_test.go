package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_TransitionTable(t *testing.T) {
	cases := []struct {
		name   string
		event  Event
		from   Status
		role   Role
		target Status
		to     Status
		action Action
	}{
		{"submit", EventSubmit, "", RoleUser, "", StatusPending, ActionSubmitted},
		{"hod assigns", EventAssignOfficer, StatusPending, RoleDepartmentHOD, "", StatusInquiry, ActionInquiryAssigned},
		{"admin assigns", EventAssignOfficer, StatusPending, RoleAdmin, "", StatusInquiry, ActionInquiryAssigned},
		{"inquiry report", EventInquiryReport, StatusInquiry, RoleInquiryOfficer, "", StatusHODReview, ActionInquiryCompleted},
		{"return from hod-review", EventReturn, StatusHODReview, RoleDepartmentHOD, "", StatusPending, ActionReturnedForInfo},
		{"return from pending", EventReturn, StatusPending, RoleDepartmentHOD, "", StatusPending, ActionReturnedForInfo},
		{"forward", EventForward, StatusHODReview, RoleDepartmentHOD, "", StatusCommitteeReview, ActionForwardedToTrustee},
		{"trustee review", EventTrusteeReview, StatusCommitteeReview, RoleTrustee, "", StatusCommitteeReview, ActionReviewed},
		{"approve", EventDecide, StatusCommitteeReview, RoleAdmin, StatusApproved, StatusApproved, ActionApproved},
		{"reject", EventDecide, StatusCommitteeReview, RoleAdmin, StatusRejected, StatusRejected, ActionRejected},
		{"hold", EventDecide, StatusCommitteeReview, RoleAdmin, StatusHold, StatusHold, ActionHold},
		{"approve from hold", EventDecide, StatusHold, RoleAdmin, StatusApproved, StatusApproved, ActionApproved},
		{"disbursement keeps approved", EventDisburse, StatusApproved, RoleAdmin, "", StatusApproved, ActionFundDisbursed},
		{"disbursement keeps funded", EventDisburse, StatusFunded, RoleAdmin, "", StatusFunded, ActionFundDisbursed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			step, err := Plan(tc.event, tc.from, tc.role, tc.target)
			require.NoError(t, err)
			assert.Equal(t, tc.to, step.To)
			assert.Equal(t, tc.action, step.Action)
			assert.Equal(t, tc.from, step.From)
		})
	}
}

func TestPlan_RoleNotAllowed(t *testing.T) {
	for event, rule := range rules {
		for _, role := range AllRoles {
			if role.In(rule.Roles...) {
				continue
			}
			from := StatusPending
			if len(rule.From) > 0 {
				from = rule.From[0]
			}
			_, err := Plan(event, from, role, StatusApproved)
			assert.ErrorIs(t, err, ErrForbidden, "%s by %s", event, role)
		}
	}
}

func TestPlan_IllegalFromStatus(t *testing.T) {
	_, err := Plan(EventAssignOfficer, StatusHODReview, RoleAdmin, "")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = Plan(EventInquiryReport, StatusPending, RoleInquiryOfficer, "")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = Plan(EventDecide, StatusRejected, RoleAdmin, StatusApproved)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = Plan(EventDisburse, StatusCommitteeReview, RoleAdmin, "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPlan_DecideRejectsUnknownStatus(t *testing.T) {
	_, err := Plan(EventDecide, StatusCommitteeReview, RoleAdmin, Status("banana"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, errors.Is(err, ErrInvalidDecision))

	_, err = Plan(EventDecide, StatusCommitteeReview, RoleAdmin, StatusFunded)
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestPlan_UnknownEvent(t *testing.T) {
	_, err := Plan(Event("teleport"), StatusPending, RoleAdmin, "")
	assert.Error(t, err)
}

func TestStep_Changed(t *testing.T) {
	assert.False(t, Step{From: StatusCommitteeReview, To: StatusCommitteeReview}.Changed())
	assert.True(t, Step{From: StatusPending, To: StatusInquiry}.Changed())
}

func TestRole_Helpers(t *testing.T) {
	r, ok := ParseRole("inquiry-officer")
	assert.True(t, ok)
	assert.Equal(t, RoleInquiryOfficer, r)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)

	assert.False(t, RoleUser.IsPrivileged())
	assert.True(t, RoleTrustee.IsPrivileged())
}

func TestKindName(t *testing.T) {
	assert.Equal(t, "not_found", KindName(ErrApplicationNotFound))
	assert.Equal(t, "forbidden", KindName(ErrInsufficientRole))
	assert.Equal(t, "unauthenticated", KindName(ErrTokenInvalid))
	assert.Equal(t, "validation", KindName(Invalidf("bad %s", "input")))
	assert.Equal(t, "conflict", KindName(ErrConcurrentUpdate))
	assert.Equal(t, "internal", KindName(errors.New("boom")))
	assert.Equal(t, "", KindName(nil))
}
