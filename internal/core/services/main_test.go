package services

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"testing"

	"aidtrust/internal/adapters/persistence/memstore"
	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/config"
	"aidtrust/internal/core/domain"
	"aidtrust/internal/pkg/logger"
	"aidtrust/internal/pkg/password"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testJWT = config.JWTConfig{Secret: "test-secret", ExpiryDays: 1}

func TestMain(m *testing.M) {
	logger.Log.SetOutput(io.Discard)
	password.Cost = bcrypt.MinCost
	os.Exit(m.Run())
}

type fixture struct {
	store *memstore.Store
	apps  *ApplicationService
	funds *FundService

	applicant domain.Actor
	hod       domain.Actor
	officer   domain.Actor
	trustee   domain.Actor
	admin     domain.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	audit := NewAuditLog()
	f := &fixture{
		store: store,
		apps:  NewApplicationService(store, audit),
		funds: NewFundService(store, audit),
	}
	f.applicant = f.addUser(t, "applicant@example.org", domain.RoleUser)
	f.hod = f.addUser(t, "hod@example.org", domain.RoleDepartmentHOD)
	f.officer = f.addUser(t, "officer@example.org", domain.RoleInquiryOfficer)
	f.trustee = f.addUser(t, "trustee@example.org", domain.RoleTrustee)
	f.admin = f.addUser(t, "admin@example.org", domain.RoleAdmin)
	return f
}

func (f *fixture) addUser(t *testing.T, email string, role domain.Role) domain.Actor {
	t.Helper()
	u := &models.User{FullName: string(role), Email: email, Role: role}
	require.NoError(t, f.store.Repos().Users.Create(context.Background(), u))
	return domain.Actor{ID: u.ID, Role: role, IPAddress: "127.0.0.1"}
}

func (f *fixture) submit(t *testing.T) *models.Application {
	t.Helper()
	app, err := f.apps.Submit(context.Background(), f.applicant, &SubmitApplicationInput{
		Category:    "education",
		SubCategory: "tuition",
		Form:        json.RawMessage(`{"country":"PK","city":"Lahore"}`),
	})
	require.NoError(t, err)
	return app
}

// toCommittee drives a fresh application up to committee-review
func (f *fixture) toCommittee(t *testing.T) *models.Application {
	t.Helper()
	ctx := context.Background()

	app := f.submit(t)
	_, err := f.apps.AssignOfficer(ctx, app.ID, f.hod, &AssignOfficerInput{OfficerID: f.officer.ID})
	require.NoError(t, err)
	_, err = f.apps.SubmitInquiry(ctx, app.ID, f.officer, &InquiryReportInput{Comments: "Visited", Verified: true})
	require.NoError(t, err)
	app, err = f.apps.Forward(ctx, app.ID, f.hod, &CommentsInput{})
	require.NoError(t, err)
	return app
}

func (f *fixture) approved(t *testing.T) *models.Application {
	t.Helper()
	app := f.toCommittee(t)
	app, err := f.apps.Decide(context.Background(), app.ID, f.admin, &DecisionInput{Status: domain.StatusApproved})
	require.NoError(t, err)
	return app
}

func actions(txs []*models.Transaction) []domain.Action {
	out := make([]domain.Action, len(txs))
	for i, t := range txs {
		out[i] = t.Action
	}
	return out
}
