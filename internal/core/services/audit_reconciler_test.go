package services

import (
	"context"
	"testing"

	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestReconcile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.approved(t)
	f.submit(t)

	r := NewAuditReconciler(f.store, "")
	found, err := r.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, found)

	// written behind the audit log's back
	orphan := &models.Application{
		Category:      "health",
		Form:          datatypes.JSON(`{}`),
		Token:         "0a0a0a",
		SubmittedBy:   f.applicant.ID,
		LastUpdatedBy: f.applicant.ID,
	}
	require.NoError(t, f.store.Repos().Applications.Create(ctx, orphan))

	drifted := f.submit(t)
	drifted.Status = domain.StatusApproved
	drifted.Version++
	require.NoError(t, f.store.Repos().Applications.UpdateWithVersion(ctx, drifted, drifted.Version-1))

	found, err = r.Reconcile(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Inconsistency{
		{ApplicationID: orphan.ID, Status: domain.StatusPending},
		{ApplicationID: drifted.ID, Status: domain.StatusApproved, LoggedStatus: domain.StatusPending},
	}, found)
}

func TestReconcilerSchedule(t *testing.T) {
	f := newFixture(t)

	disabled := NewAuditReconciler(f.store, "")
	require.NoError(t, disabled.Start())
	disabled.Stop()

	bad := NewAuditReconciler(f.store, "not a schedule")
	assert.Error(t, bad.Start())

	ok := NewAuditReconciler(f.store, "@every 1h")
	require.NoError(t, ok.Start())
	ok.Stop()
}
