package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/core/domain"
	"aidtrust/internal/pkg/pagination"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app := f.submit(t)
	assert.Equal(t, domain.StatusPending, app.Status)
	assert.Len(t, app.Token, 6)
	assert.Equal(t, uint(1), app.Version)
	assert.Equal(t, f.applicant.ID, app.SubmittedBy)
	require.NotNil(t, app.Submitter)
	assert.Equal(t, "applicant@example.org", app.Submitter.Email)

	byToken, err := f.apps.GetByToken(ctx, app.Token)
	require.NoError(t, err)
	assert.Equal(t, app.ID, byToken.ID)

	history, err := f.apps.History(ctx, app.ID, f.applicant)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ActionSubmitted, history[0].Action)
	assert.Equal(t, domain.StatusPending, history[0].ToStatus)
	assert.Equal(t, "127.0.0.1", history[0].IPAddress)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.apps.Submit(ctx, f.applicant, &SubmitApplicationInput{Category: "education", Form: json.RawMessage(`[1,2]`)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.apps.Submit(ctx, f.applicant, &SubmitApplicationInput{Form: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.apps.Submit(ctx, f.hod, &SubmitApplicationInput{Category: "education", Form: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
}

func TestGetByTokenUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.apps.GetByToken(context.Background(), "ffffff")
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)
}

func TestInquiryFlowAppendsHistoryInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	assigned, err := f.apps.AssignOfficer(ctx, app.ID, f.hod, &AssignOfficerInput{OfficerID: f.officer.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInquiry, assigned.Status)
	require.NotNil(t, assigned.InquiryOfficerID)
	assert.Equal(t, f.officer.ID, *assigned.InquiryOfficerID)
	assert.Equal(t, f.hod.ID, assigned.LastUpdatedBy)

	reported, err := f.apps.SubmitInquiry(ctx, app.ID, f.officer, &InquiryReportInput{Comments: "Visited home", Verified: true})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusHODReview, reported.Status)
	assert.Equal(t, "Visited home", reported.InquiryComments)
	assert.True(t, reported.InquiryVerified)
	assert.Equal(t, uint(3), reported.Version)

	history, err := f.apps.History(ctx, app.ID, f.hod)
	require.NoError(t, err)
	assert.Equal(t, []domain.Action{
		domain.ActionSubmitted,
		domain.ActionInquiryAssigned,
		domain.ActionInquiryCompleted,
	}, actions(history))
	assert.Equal(t, "Assigned to inquiry officer.", history[1].Comments)
	assert.Equal(t, domain.StatusPending, history[1].FromStatus)
	assert.Equal(t, domain.StatusInquiry, history[1].ToStatus)

	assigned2, _, err := f.apps.ListAssigned(ctx, f.officer, pagination.New(1, 10))
	require.NoError(t, err)
	require.Len(t, assigned2, 1)
	assert.Equal(t, app.ID, assigned2[0].ID)
}

func TestAssignOfficerRequiresInquiryOfficer(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)

	_, err := f.apps.AssignOfficer(context.Background(), app.ID, f.hod, &AssignOfficerInput{OfficerID: f.trustee.ID})
	assert.ErrorIs(t, err, domain.ErrOfficerNotFound)

	_, err = f.apps.AssignOfficer(context.Background(), app.ID, f.hod, &AssignOfficerInput{OfficerID: 999})
	assert.ErrorIs(t, err, domain.ErrOfficerNotFound)
}

func TestSubmitInquiryByOtherOfficer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.addUser(t, "other-officer@example.org", domain.RoleInquiryOfficer)

	app := f.submit(t)
	_, err := f.apps.AssignOfficer(ctx, app.ID, f.hod, &AssignOfficerInput{OfficerID: f.officer.ID})
	require.NoError(t, err)

	_, err = f.apps.SubmitInquiry(ctx, app.ID, other, &InquiryReportInput{Comments: "x"})
	assert.ErrorIs(t, err, domain.ErrNotAssignedOfficer)
}

func TestTransitionRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	// wrong status
	_, err := f.apps.Forward(ctx, app.ID, f.hod, &CommentsInput{})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// wrong role
	_, err = f.apps.AssignOfficer(ctx, app.ID, f.trustee, &AssignOfficerInput{OfficerID: f.officer.ID})
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	// unknown application
	_, err = f.apps.Return(ctx, 999, f.hod, &CommentsInput{})
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)

	history, err := f.apps.History(ctx, app.ID, f.admin)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestReturnUsesDefaultComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	returned, err := f.apps.Return(ctx, app.ID, f.hod, &CommentsInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, returned.Status)

	history, err := f.apps.History(ctx, app.ID, f.hod)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.ActionReturnedForInfo, history[1].Action)
	assert.Equal(t, "Additional information required.", history[1].Comments)
}

func TestTrusteeReviewKeepsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.toCommittee(t)

	reviewed, err := f.apps.TrusteeReview(ctx, app.ID, f.trustee, &TrusteeReviewInput{
		Comments: "Looks genuine",
		FundingDetails: &models.FundingDetails{
			FundType:  domain.FundRecurring,
			Amount:    decimal.RequireFromString("2500"),
			Frequency: domain.FrequencyMonthly,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCommitteeReview, reviewed.Status)
	assert.Equal(t, "Looks genuine", reviewed.TrusteeComments)

	funding := reviewed.Funding()
	require.NotNil(t, funding)
	assert.True(t, decimal.RequireFromString("2500").Equal(funding.Amount))

	queue, total, err := f.apps.ListForTrustee(ctx, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, app.ID, queue[0].ID)

	_, err = f.apps.TrusteeReview(ctx, app.ID, f.trustee, &TrusteeReviewInput{
		FundingDetails: &models.FundingDetails{FundType: domain.FundRecurring, Amount: decimal.NewFromInt(10)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDecide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.toCommittee(t)

	_, err := f.apps.Decide(ctx, app.ID, f.admin, &DecisionInput{Status: "banana"})
	assert.ErrorIs(t, err, domain.ErrInvalidDecision)

	_, err = f.apps.Decide(ctx, app.ID, f.admin, &DecisionInput{Status: domain.StatusFunded})
	assert.ErrorIs(t, err, domain.ErrInvalidDecision)

	_, err = f.apps.Decide(ctx, app.ID, f.hod, &DecisionInput{Status: domain.StatusApproved})
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	held, err := f.apps.Decide(ctx, app.ID, f.admin, &DecisionInput{Status: domain.StatusHold})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusHold, held.Status)

	approved, err := f.apps.Decide(ctx, app.ID, f.admin, &DecisionInput{Status: domain.StatusApproved, Comments: "Go"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)

	_, err = f.apps.Decide(ctx, app.ID, f.admin, &DecisionInput{Status: domain.StatusRejected})
	assert.ErrorIs(t, err, domain.ErrConflict)

	history, err := f.apps.History(ctx, app.ID, f.admin)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, domain.ActionApproved, last.Action)
	assert.Equal(t, domain.StatusHold, last.FromStatus)
	assert.Equal(t, "Go", last.Comments)
}

func TestApplicantSeesOnlyOwnApplications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)
	stranger := f.addUser(t, "stranger@example.org", domain.RoleUser)

	_, err := f.apps.GetDetail(ctx, app.ID, stranger)
	assert.ErrorIs(t, err, domain.ErrNotApplicationOwner)

	_, err = f.apps.AttachDocument(ctx, app.ID, stranger, &AttachDocumentInput{DocumentType: "cnic", FileURL: "https://files.example.org/a.pdf"})
	assert.ErrorIs(t, err, domain.ErrNotApplicationOwner)

	detail, err := f.apps.GetDetail(ctx, app.ID, f.applicant)
	require.NoError(t, err)
	assert.Equal(t, app.ID, detail.Application.ID)
	assert.Len(t, detail.Transactions, 1)

	mine, total, err := f.apps.ListMine(ctx, stranger, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, mine)
}

func TestDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	_, err := f.apps.AttachDocument(ctx, app.ID, f.applicant, &AttachDocumentInput{DocumentType: "cnic", FileURL: "not a url"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	doc, err := f.apps.AttachDocument(ctx, app.ID, f.applicant, &AttachDocumentInput{DocumentType: "cnic", FileURL: "https://files.example.org/a.pdf"})
	require.NoError(t, err)
	assert.NotZero(t, doc.ID)

	docs, err := f.apps.ListDocuments(ctx, app.ID, f.hod)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "cnic", docs[0].DocumentType)
}

func TestFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.submit(t)
	f.toCommittee(t)

	apps, total, err := f.apps.Filter(ctx, repositories.ApplicationFilter{Status: domain.StatusCommitteeReview}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, domain.StatusCommitteeReview, apps[0].Status)

	_, total, err = f.apps.Filter(ctx, repositories.ApplicationFilter{Country: "PK", Category: "education"}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, _, err = f.apps.Filter(ctx, repositories.ApplicationFilter{Status: "banana"}, pagination.New(1, 10))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// failingTransactions rejects every audit append
type failingTransactions struct {
	repositories.TransactionRepository
}

func (failingTransactions) Create(context.Context, *models.Transaction) error {
	return errors.New("disk full")
}

// auditFailingStore hands out failing transaction repositories inside units of work
type auditFailingStore struct {
	repositories.Store
}

func (s auditFailingStore) WithinTx(ctx context.Context, fn func(r *repositories.Repositories) error) error {
	return s.Store.WithinTx(ctx, func(r *repositories.Repositories) error {
		wrapped := *r
		wrapped.Transactions = failingTransactions{r.Transactions}
		return fn(&wrapped)
	})
}

func TestFailedAuditRollsBackTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	broken := NewApplicationService(auditFailingStore{f.store}, NewAuditLog())
	_, err := broken.AssignOfficer(ctx, app.ID, f.hod, &AssignOfficerInput{OfficerID: f.officer.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append audit record")

	stored, err := f.apps.GetByToken(ctx, app.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Equal(t, uint(1), stored.Version)
	assert.Nil(t, stored.InquiryOfficerID)

	_, err = broken.Submit(ctx, f.applicant, &SubmitApplicationInput{Category: "health", Form: json.RawMessage(`{}`)})
	require.Error(t, err)
	_, total, err := f.apps.ListMine(ctx, f.applicant, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

// racingApplications lets another writer commit just before each update
type racingApplications struct {
	repositories.ApplicationRepository
}

func (r racingApplications) UpdateWithVersion(ctx context.Context, app *models.Application, expected uint) error {
	current, err := r.ApplicationRepository.GetByID(ctx, app.ID)
	if err != nil {
		return err
	}
	current.Version++
	if err := r.ApplicationRepository.UpdateWithVersion(ctx, current, current.Version-1); err != nil {
		return err
	}
	return r.ApplicationRepository.UpdateWithVersion(ctx, app, expected)
}

type racingStore struct {
	repositories.Store
}

func (s racingStore) WithinTx(ctx context.Context, fn func(r *repositories.Repositories) error) error {
	return s.Store.WithinTx(ctx, func(r *repositories.Repositories) error {
		wrapped := *r
		wrapped.Applications = racingApplications{r.Applications}
		return fn(&wrapped)
	})
}

func TestConcurrentUpdateIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	racing := NewApplicationService(racingStore{f.store}, NewAuditLog())
	_, err := racing.AssignOfficer(ctx, app.ID, f.hod, &AssignOfficerInput{OfficerID: f.officer.ID})
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	history, err := f.apps.History(ctx, app.ID, f.hod)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestHistoryNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.apps.History(context.Background(), 999, f.admin)
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)
}
