package services

import (
	"context"
	"errors"
	"time"

	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/core/domain"
	"aidtrust/internal/pkg/logger"
	"aidtrust/internal/pkg/metrics"
	"aidtrust/internal/pkg/validation"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// FundService handles fund ledger business logic
type FundService struct {
	store repositories.Store
	audit *AuditLog
}

// NewFundService creates a new fund service
func NewFundService(store repositories.Store, audit *AuditLog) *FundService {
	return &FundService{store: store, audit: audit}
}

// DisburseInput represents a new fund entry
type DisburseInput struct {
	ApplicationID uint `json:"applicationId" validate:"required"`
	models.FundingDetails
	ChequeDetails    *models.ChequeDetails `json:"chequeDetails"`
	ScannedDocuments []string              `json:"scannedDocuments" validate:"omitempty,dive,url"`
	Comments         string                `json:"comments"`
}

// UpdateFundInput changes only the parts that are present
type UpdateFundInput struct {
	ChequeDetails    *models.ChequeDetails `json:"chequeDetails"`
	ScannedDocuments []string              `json:"scannedDocuments" validate:"omitempty,dive,url"`
}

// Totals is the spending summary of a date range
type Totals struct {
	TotalSpent     decimal.Decimal `json:"totalSpent"`
	TotalRecurring decimal.Decimal `json:"totalRecurring"`
}

func validateFunding(fd *models.FundingDetails) error {
	if err := validation.Struct(fd); err != nil {
		return err
	}
	if !fd.Amount.IsPositive() {
		return domain.Invalidf("amount must be greater than 0.")
	}
	if fd.FundType == domain.FundRecurring && fd.Frequency == "" {
		return domain.Invalidf("frequency is required for recurring funds.")
	}
	if fd.StartDate != nil && fd.EndDate != nil && fd.EndDate.Before(*fd.StartDate) {
		return domain.Invalidf("endDate must not be before startDate.")
	}
	return nil
}

// Disburse issues a fund against an approved or funded application. The
// application status is left unchanged and a fund-disbursed record is
// appended in the same unit of work.
func (s *FundService) Disburse(ctx context.Context, actor domain.Actor, input *DisburseInput) (*models.Fund, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := validateFunding(&input.FundingDetails); err != nil {
		return nil, err
	}

	var (
		fund *models.Fund
		step domain.Step
	)

	err := s.store.WithinTx(ctx, func(r *repositories.Repositories) error {
		app, err := loadApplication(ctx, r.Applications, input.ApplicationID)
		if err != nil {
			return err
		}

		step, err = advance(ctx, r, s.audit, app, actor, transition{
			event:           domain.EventDisburse,
			comments:        input.Comments,
			defaultComments: "Fund disbursed.",
		})
		if err != nil {
			if errors.Is(err, domain.ErrConflict) && !errors.Is(err, domain.ErrConcurrentUpdate) {
				return domain.ErrApplicationNotFunded
			}
			return err
		}

		created := &models.Fund{
			ApplicationID:    app.ID,
			FundType:         input.FundType,
			Amount:           input.Amount,
			Frequency:        input.Frequency,
			StartDate:        input.StartDate,
			EndDate:          input.EndDate,
			IssuedBy:         actor.ID,
			ScannedDocuments: input.ScannedDocuments,
		}
		created.SetCheque(input.ChequeDetails)

		if err := r.Funds.Create(ctx, created); err != nil {
			return err
		}

		fund, err = r.Funds.GetByID(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(step.Action))
	metrics.RecordDisbursement(string(fund.FundType))
	logger.Log.WithFields(logrus.Fields{
		"fund_id":        fund.ID,
		"application_id": fund.ApplicationID,
		"fund_type":      fund.FundType,
		"amount":         fund.Amount.StringFixed(2),
		"user_id":        actor.ID,
	}).Info("Fund disbursed")

	return fund, nil
}

// Get returns a fund with its application and issuer
func (s *FundService) Get(ctx context.Context, id uint) (*models.Fund, error) {
	fund, err := s.store.Repos().Funds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, domain.ErrFundNotFound
		}
		return nil, err
	}
	return fund, nil
}

// UpdateDocuments replaces cheque details and scanned documents when given
func (s *FundService) UpdateDocuments(ctx context.Context, id uint, input *UpdateFundInput) (*models.Fund, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var fund *models.Fund
	err := s.store.WithinTx(ctx, func(r *repositories.Repositories) error {
		current, err := r.Funds.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrRecordNotFound) {
				return domain.ErrFundNotFound
			}
			return err
		}

		current.SetCheque(input.ChequeDetails)
		if input.ScannedDocuments != nil {
			current.ScannedDocuments = input.ScannedDocuments
		}

		if err := r.Funds.Update(ctx, current); err != nil {
			return err
		}

		fund, err = r.Funds.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fund, nil
}

// List lists funds matching filter
func (s *FundService) List(ctx context.Context, filter repositories.FundFilter) ([]*models.Fund, error) {
	if filter.FundType != "" && filter.FundType != domain.FundOneTime && filter.FundType != domain.FundRecurring {
		return nil, domain.Invalidf("fundType must be one of: one-time recurring.")
	}
	if filter.Frequency != "" && filter.Frequency != domain.FrequencyMonthly && filter.Frequency != domain.FrequencySeasonal {
		return nil, domain.Invalidf("frequency must be one of: monthly seasonal.")
	}
	return s.store.Repos().Funds.List(ctx, filter)
}

// Totals sums fund amounts created within [start, end]
func (s *FundService) Totals(ctx context.Context, start, end time.Time) (*Totals, error) {
	if end.Before(start) {
		return nil, domain.Invalidf("endDate must not be before startDate.")
	}

	funds, err := s.store.Repos().Funds.List(ctx, repositories.FundFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, err
	}

	totals := &Totals{TotalSpent: decimal.Zero, TotalRecurring: decimal.Zero}
	for _, f := range funds {
		totals.TotalSpent = totals.TotalSpent.Add(f.Amount)
		if f.FundType == domain.FundRecurring {
			totals.TotalRecurring = totals.TotalRecurring.Add(f.Amount)
		}
	}
	return totals, nil
}
