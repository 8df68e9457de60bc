package services

import (
	"context"
	"testing"
	"time"

	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func disburseInput(appID uint, fundType domain.FundType, amount string, freq domain.Frequency) *DisburseInput {
	return &DisburseInput{
		ApplicationID: appID,
		FundingDetails: models.FundingDetails{
			FundType:  fundType,
			Amount:    decimal.RequireFromString(amount),
			Frequency: freq,
		},
	}
}

func TestDisburseKeepsApplicationStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.approved(t)

	input := disburseInput(app.ID, domain.FundOneTime, "1500.50", "")
	input.ChequeDetails = &models.ChequeDetails{ChequeNo: "000123", Bank: "HBL"}
	input.ScannedDocuments = []string{"https://files.example.org/cheque.png"}

	fund, err := f.funds.Disburse(ctx, f.admin, input)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1500.50").Equal(fund.Amount))
	assert.Equal(t, f.admin.ID, fund.IssuedBy)
	assert.Equal(t, "000123", fund.ChequeNo)
	require.NotNil(t, fund.Application)
	assert.Equal(t, domain.StatusApproved, fund.Application.Status)

	stored, err := f.store.Repos().Applications.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stored.Status)

	history, err := f.apps.History(ctx, app.ID, f.admin)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, domain.ActionFundDisbursed, last.Action)
	assert.Equal(t, domain.StatusApproved, last.FromStatus)
	assert.Equal(t, domain.StatusApproved, last.ToStatus)
	assert.Equal(t, "Fund disbursed.", last.Comments)

	_, err = f.funds.Disburse(ctx, f.admin, disburseInput(app.ID, domain.FundRecurring, "200", domain.FrequencyMonthly))
	require.NoError(t, err)

	// an application already marked funded accepts further instalments
	stored, err = f.store.Repos().Applications.GetByID(ctx, app.ID)
	require.NoError(t, err)
	expected := stored.Version
	stored.Status = domain.StatusFunded
	stored.Version++
	require.NoError(t, f.store.Repos().Applications.UpdateWithVersion(ctx, stored, expected))

	fund, err = f.funds.Disburse(ctx, f.admin, disburseInput(app.ID, domain.FundOneTime, "75", ""))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFunded, fund.Application.Status)
}

func TestDisburseRequiresApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := f.submit(t)
	_, err := f.funds.Disburse(ctx, f.admin, disburseInput(pending.ID, domain.FundOneTime, "100", ""))
	assert.ErrorIs(t, err, domain.ErrApplicationNotFunded)

	rejected := f.toCommittee(t)
	_, err = f.apps.Decide(ctx, rejected.ID, f.admin, &DecisionInput{Status: domain.StatusRejected})
	require.NoError(t, err)
	_, err = f.funds.Disburse(ctx, f.admin, disburseInput(rejected.ID, domain.FundOneTime, "100", ""))
	assert.ErrorIs(t, err, domain.ErrApplicationNotFunded)

	_, err = f.funds.Disburse(ctx, f.admin, disburseInput(999, domain.FundOneTime, "100", ""))
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)

	approved := f.approved(t)
	_, err = f.funds.Disburse(ctx, f.trustee, disburseInput(approved.ID, domain.FundOneTime, "100", ""))
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	funds, err := f.funds.List(ctx, repositories.FundFilter{})
	require.NoError(t, err)
	assert.Empty(t, funds)
}

func TestDisburseValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.approved(t)

	cases := map[string]*DisburseInput{
		"zero amount":       disburseInput(app.ID, domain.FundOneTime, "0", ""),
		"negative amount":   disburseInput(app.ID, domain.FundOneTime, "-5", ""),
		"unknown type":      disburseInput(app.ID, "weekly", "10", ""),
		"missing frequency": disburseInput(app.ID, domain.FundRecurring, "10", ""),
		"bad document url":  func() *DisburseInput { in := disburseInput(app.ID, domain.FundOneTime, "10", ""); in.ScannedDocuments = []string{"nope"}; return in }(),
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.funds.Disburse(ctx, f.admin, input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -1, 0)
	input := disburseInput(app.ID, domain.FundRecurring, "10", domain.FrequencySeasonal)
	input.StartDate, input.EndDate = &start, &end
	_, err := f.funds.Disburse(ctx, f.admin, input)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.approved(t)

	march := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	f.store.SetClock(func() time.Time { return march })
	_, err := f.funds.Disburse(ctx, f.admin, disburseInput(app.ID, domain.FundOneTime, "100.25", ""))
	require.NoError(t, err)
	_, err = f.funds.Disburse(ctx, f.admin, disburseInput(app.ID, domain.FundRecurring, "50", domain.FrequencyMonthly))
	require.NoError(t, err)

	june := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f.store.SetClock(func() time.Time { return june })
	_, err = f.funds.Disburse(ctx, f.admin, disburseInput(app.ID, domain.FundRecurring, "999", domain.FrequencyMonthly))
	require.NoError(t, err)

	totals, err := f.funds.Totals(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "150.25", totals.TotalSpent.String())
	assert.Equal(t, "50", totals.TotalRecurring.String())

	empty, err := f.funds.Totals(ctx, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, empty.TotalSpent.IsZero())

	_, err = f.funds.Totals(ctx, june, march)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	recurring, err := f.funds.List(ctx, repositories.FundFilter{FundType: domain.FundRecurring})
	require.NoError(t, err)
	assert.Len(t, recurring, 2)

	_, err = f.funds.List(ctx, repositories.FundFilter{Frequency: "weekly"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.approved(t)

	input := disburseInput(app.ID, domain.FundOneTime, "10", "")
	input.ChequeDetails = &models.ChequeDetails{ChequeNo: "1", Bank: "MCB"}
	fund, err := f.funds.Disburse(ctx, f.admin, input)
	require.NoError(t, err)

	updated, err := f.funds.UpdateDocuments(ctx, fund.ID, &UpdateFundInput{
		ScannedDocuments: []string{"https://files.example.org/1.png", "https://files.example.org/2.png"},
	})
	require.NoError(t, err)
	assert.Len(t, updated.ScannedDocuments, 2)
	assert.Equal(t, "MCB", updated.ChequeBank, "cheque kept when absent")

	_, err = f.funds.UpdateDocuments(ctx, 999, &UpdateFundInput{})
	assert.ErrorIs(t, err, domain.ErrFundNotFound)

	_, err = f.funds.Get(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrFundNotFound)
}
