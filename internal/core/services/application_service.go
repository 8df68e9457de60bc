package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/core/domain"
	"aidtrust/internal/pkg/logger"
	"aidtrust/internal/pkg/metrics"
	"aidtrust/internal/pkg/pagination"
	"aidtrust/internal/pkg/validation"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	tokenBytes    = 3
	tokenAttempts = 8
)

var errTokenSpaceExhausted = errors.New("could not generate a unique application token")

// ApplicationService runs the application lifecycle
type ApplicationService struct {
	store repositories.Store
	audit *AuditLog
}

// NewApplicationService creates a new application service
func NewApplicationService(store repositories.Store, audit *AuditLog) *ApplicationService {
	return &ApplicationService{store: store, audit: audit}
}

// SubmitApplicationInput represents submit application input
type SubmitApplicationInput struct {
	Category    string          `json:"category" validate:"required,max=100"`
	SubCategory string          `json:"subCategory" validate:"max=100"`
	Form        json.RawMessage `json:"form" validate:"required"`
}

// AssignOfficerInput represents assign officer input
type AssignOfficerInput struct {
	OfficerID uint   `json:"officerId" validate:"required"`
	Comments  string `json:"comments"`
}

// InquiryReportInput represents inquiry report input
type InquiryReportInput struct {
	Comments string `json:"comments"`
	Verified bool   `json:"verified"`
}

// CommentsInput carries optional comments for return and forward
type CommentsInput struct {
	Comments string `json:"comments"`
}

// TrusteeReviewInput represents trustee review input
type TrusteeReviewInput struct {
	Comments       string                 `json:"comments"`
	FundingDetails *models.FundingDetails `json:"fundingDetails"`
}

// DecisionInput represents admin decision input
type DecisionInput struct {
	Status   domain.Status `json:"status" validate:"required"`
	Comments string        `json:"comments"`
}

// AttachDocumentInput represents document reference input
type AttachDocumentInput struct {
	DocumentType string `json:"documentType" validate:"required,max=100"`
	FileURL      string `json:"fileUrl" validate:"required,url,max=500"`
}

// ApplicationDetail is an application with its full history
type ApplicationDetail struct {
	Application  *models.ApplicationResponse  `json:"application"`
	Transactions []*models.TransactionResponse `json:"transactions"`
}

// Submit creates a pending application and logs its submission
func (s *ApplicationService) Submit(ctx context.Context, actor domain.Actor, input *SubmitApplicationInput) (*models.Application, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if !isJSONObject(input.Form) {
		return nil, domain.Invalidf("form must be a JSON object.")
	}

	step, err := domain.Plan(domain.EventSubmit, "", actor.Role, "")
	if err != nil {
		return nil, err
	}

	var created *models.Application
	err = s.store.WithinTx(ctx, func(r *repositories.Repositories) error {
		token, err := uniqueToken(ctx, r.Applications)
		if err != nil {
			return err
		}

		app := &models.Application{
			Category:      input.Category,
			SubCategory:   input.SubCategory,
			Form:          datatypes.JSON(input.Form),
			Status:        step.To,
			Token:         token,
			SubmittedBy:   actor.ID,
			LastUpdatedBy: actor.ID,
			Version:       1,
		}
		if err := r.Applications.Create(ctx, app); err != nil {
			return err
		}

		if _, err := s.audit.Record(ctx, r.Transactions, AuditEntry{
			ApplicationID: app.ID,
			Actor:         actor,
			Step:          step,
			Comments:      "Application submitted.",
		}); err != nil {
			return err
		}

		created, err = loadApplication(ctx, r.Applications, app.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.committed(created, actor, step)
	return created, nil
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}

func uniqueToken(ctx context.Context, apps repositories.ApplicationRepository) (string, error) {
	buf := make([]byte, tokenBytes)
	for i := 0; i < tokenAttempts; i++ {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		token := hex.EncodeToString(buf)

		taken, err := apps.ExistsByToken(ctx, token)
		if err != nil {
			return "", err
		}
		if !taken {
			return token, nil
		}
	}
	return "", errTokenSpaceExhausted
}

// GetByToken looks an application up by its public token
func (s *ApplicationService) GetByToken(ctx context.Context, token string) (*models.Application, error) {
	app, err := s.store.Repos().Applications.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// visible loads an application the actor is allowed to read
func (s *ApplicationService) visible(ctx context.Context, id uint, actor domain.Actor) (*models.Application, error) {
	app, err := loadApplication(ctx, s.store.Repos().Applications, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleUser && app.SubmittedBy != actor.ID {
		return nil, domain.ErrNotApplicationOwner
	}
	return app, nil
}

// GetDetail returns an application with its history
func (s *ApplicationService) GetDetail(ctx context.Context, id uint, actor domain.Actor) (*ApplicationDetail, error) {
	app, err := s.visible(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	txs, err := s.store.Repos().Transactions.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	return &ApplicationDetail{
		Application:  app.ToResponse(),
		Transactions: models.ToTransactionResponses(txs),
	}, nil
}

// History returns the audit records of an application, oldest first
func (s *ApplicationService) History(ctx context.Context, id uint, actor domain.Actor) ([]*models.Transaction, error) {
	app, err := s.visible(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	txs, err := s.store.Repos().Transactions.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, domain.ErrNoHistory
	}
	return txs, nil
}

// Filter lists applications matching filter
func (s *ApplicationService) Filter(ctx context.Context, filter repositories.ApplicationFilter, page *pagination.Params) ([]*models.Application, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.Invalidf("Invalid status %q.", filter.Status)
	}
	if filter.HasDateRange() && filter.EndDate.Before(*filter.StartDate) {
		return nil, 0, domain.Invalidf("endDate must not be before startDate.")
	}
	return s.store.Repos().Applications.Filter(ctx, filter, page.Offset, page.Limit)
}

// ListForTrustee lists applications waiting for committee review
func (s *ApplicationService) ListForTrustee(ctx context.Context, page *pagination.Params) ([]*models.Application, int64, error) {
	return s.Filter(ctx, repositories.ApplicationFilter{Status: domain.StatusCommitteeReview}, page)
}

// ListAssigned lists applications assigned to the calling inquiry officer
func (s *ApplicationService) ListAssigned(ctx context.Context, actor domain.Actor, page *pagination.Params) ([]*models.Application, int64, error) {
	return s.Filter(ctx, repositories.ApplicationFilter{OfficerID: actor.ID}, page)
}

// ListMine lists applications submitted by the caller
func (s *ApplicationService) ListMine(ctx context.Context, actor domain.Actor, page *pagination.Params) ([]*models.Application, int64, error) {
	return s.Filter(ctx, repositories.ApplicationFilter{SubmittedBy: actor.ID}, page)
}

// AssignOfficer sends a pending application to an inquiry officer
func (s *ApplicationService) AssignOfficer(ctx context.Context, id uint, actor domain.Actor, input *AssignOfficerInput) (*models.Application, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	return s.run(ctx, id, actor, transition{
		event:           domain.EventAssignOfficer,
		comments:        input.Comments,
		defaultComments: "Assigned to inquiry officer.",
		guard: func(ctx context.Context, r *repositories.Repositories, app *models.Application) error {
			officer, err := r.Users.GetByID(ctx, input.OfficerID)
			if errors.Is(err, repositories.ErrRecordNotFound) {
				return domain.ErrOfficerNotFound
			}
			if err != nil {
				return err
			}
			if officer.Role != domain.RoleInquiryOfficer {
				return domain.ErrOfficerNotFound
			}
			return nil
		},
		mutate: func(app *models.Application) {
			officerID := input.OfficerID
			app.InquiryOfficerID = &officerID
		},
	})
}

// SubmitInquiry records the assigned officer's report and returns the
// application to the department head
func (s *ApplicationService) SubmitInquiry(ctx context.Context, id uint, actor domain.Actor, input *InquiryReportInput) (*models.Application, error) {
	return s.run(ctx, id, actor, transition{
		event:    domain.EventInquiryReport,
		comments: input.Comments,
		guard: func(ctx context.Context, r *repositories.Repositories, app *models.Application) error {
			if app.InquiryOfficerID == nil || *app.InquiryOfficerID != actor.ID {
				return domain.ErrNotAssignedOfficer
			}
			return nil
		},
		mutate: func(app *models.Application) {
			app.InquiryComments = input.Comments
			app.InquiryVerified = input.Verified
		},
	})
}

// Return sends an application back to the applicant for more information
func (s *ApplicationService) Return(ctx context.Context, id uint, actor domain.Actor, input *CommentsInput) (*models.Application, error) {
	return s.run(ctx, id, actor, transition{
		event:           domain.EventReturn,
		comments:        input.Comments,
		defaultComments: "Additional information required.",
	})
}

// Forward sends a reviewed application to the trustee committee
func (s *ApplicationService) Forward(ctx context.Context, id uint, actor domain.Actor, input *CommentsInput) (*models.Application, error) {
	return s.run(ctx, id, actor, transition{
		event:           domain.EventForward,
		comments:        input.Comments,
		defaultComments: "Forwarded to committee.",
	})
}

// TrusteeReview records trustee comments and an optional funding proposal.
// The status stays committee-review.
func (s *ApplicationService) TrusteeReview(ctx context.Context, id uint, actor domain.Actor, input *TrusteeReviewInput) (*models.Application, error) {
	if input.FundingDetails != nil {
		if err := validateFunding(input.FundingDetails); err != nil {
			return nil, err
		}
	}

	return s.run(ctx, id, actor, transition{
		event:    domain.EventTrusteeReview,
		comments: input.Comments,
		mutate: func(app *models.Application) {
			app.TrusteeComments = input.Comments
			app.SetFunding(input.FundingDetails)
		},
	})
}

// Decide applies an admin decision of approved, rejected or hold
func (s *ApplicationService) Decide(ctx context.Context, id uint, actor domain.Actor, input *DecisionInput) (*models.Application, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	switch input.Status {
	case domain.StatusApproved, domain.StatusRejected, domain.StatusHold:
	default:
		return nil, domain.ErrInvalidDecision
	}

	return s.run(ctx, id, actor, transition{
		event:    domain.EventDecide,
		target:   input.Status,
		comments: input.Comments,
	})
}

// AttachDocument stores a document reference on the caller's own application
func (s *ApplicationService) AttachDocument(ctx context.Context, id uint, actor domain.Actor, input *AttachDocumentInput) (*models.Document, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	app, err := loadApplication(ctx, s.store.Repos().Applications, id)
	if err != nil {
		return nil, err
	}
	if app.SubmittedBy != actor.ID {
		return nil, domain.ErrNotApplicationOwner
	}

	doc := &models.Document{
		ApplicationID: app.ID,
		UserID:        actor.ID,
		DocumentType:  input.DocumentType,
		FileURL:       input.FileURL,
	}
	if err := s.store.Repos().Documents.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments lists the document references of an application
func (s *ApplicationService) ListDocuments(ctx context.Context, id uint, actor domain.Actor) ([]*models.Document, error) {
	app, err := s.visible(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	return s.store.Repos().Documents.ListByApplication(ctx, app.ID)
}

// run applies t to application id in one unit of work
func (s *ApplicationService) run(ctx context.Context, id uint, actor domain.Actor, t transition) (*models.Application, error) {
	var (
		updated *models.Application
		step    domain.Step
	)

	err := s.store.WithinTx(ctx, func(r *repositories.Repositories) error {
		app, err := loadApplication(ctx, r.Applications, id)
		if err != nil {
			return err
		}

		step, err = advance(ctx, r, s.audit, app, actor, t)
		if err != nil {
			return err
		}

		updated, err = loadApplication(ctx, r.Applications, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.committed(updated, actor, step)
	return updated, nil
}

func (s *ApplicationService) committed(app *models.Application, actor domain.Actor, step domain.Step) {
	metrics.RecordTransition(string(step.Action))
	logger.Log.WithFields(logrus.Fields{
		"application_id": app.ID,
		"action":         step.Action,
		"from":           step.From,
		"to":             step.To,
		"user_id":        actor.ID,
		"role":           actor.Role,
	}).Info("Application transition committed")
}
