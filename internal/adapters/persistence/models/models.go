package models

import (
	"time"

	"aidtrust/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func init() {
	// Amounts are JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// ============================================================
// Identity
// ============================================================

// User represents users table
type User struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	FullName     string          `gorm:"size:150;not null" json:"fullname"`
	Email        string          `gorm:"uniqueIndex;size:150;not null" json:"email"`
	ProfileImage string          `gorm:"size:500" json:"profileImage,omitempty"`
	Country      string          `gorm:"size:100" json:"country,omitempty"`
	City         string          `gorm:"size:100" json:"city,omitempty"`
	Area         string          `gorm:"size:100" json:"area,omitempty"`
	CNIC         string          `gorm:"column:cnic;size:20" json:"cnic,omitempty"`
	Platform     domain.Platform `gorm:"size:20;default:'web'" json:"platform"`
	Password     string          `gorm:"size:255" json:"-"`
	Role         domain.Role     `gorm:"size:30;default:'user';index" json:"role"`
	LastLoggedIn *time.Time      `json:"lastLoggedIn,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the account signs in with a password
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// UserSummary is the populated form of a user reference
type UserSummary struct {
	ID       uint        `json:"id"`
	FullName string      `json:"fullname"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

// Summary returns the reference view of u, or nil for a nil user
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role}
}

// ============================================================
// Applications
// ============================================================

// Application is a case record moving through the review lifecycle
type Application struct {
	ID          uint           `gorm:"primaryKey"`
	Category    string         `gorm:"size:100;not null;index"`
	SubCategory string         `gorm:"size:100;index"`
	Form        datatypes.JSON `gorm:"not null"`
	Status      domain.Status  `gorm:"size:30;not null;default:'pending';index"`
	Token       string         `gorm:"size:16;uniqueIndex;not null"`

	InquiryComments  string `gorm:"type:text"`
	InquiryVerified  bool   `gorm:"default:false"`
	InquiryOfficerID *uint  `gorm:"index"`

	TrusteeComments string `gorm:"type:text"`

	FundingType      domain.FundType     `gorm:"size:20"`
	FundingAmount    decimal.NullDecimal `gorm:"type:decimal(15,2)"`
	FundingFrequency domain.Frequency    `gorm:"size:20"`
	FundingStartDate *time.Time
	FundingEndDate   *time.Time

	SubmittedBy   uint      `gorm:"not null;index"`
	LastUpdatedBy uint      `gorm:"not null"`
	Version       uint      `gorm:"not null;default:1"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`

	// Relations
	Submitter   *User `gorm:"foreignKey:SubmittedBy"`
	LastUpdater *User `gorm:"foreignKey:LastUpdatedBy"`
	Officer     *User `gorm:"foreignKey:InquiryOfficerID"`
}

func (Application) TableName() string {
	return "applications"
}

// FundingDetails is the funding decision attached to an application
type FundingDetails struct {
	FundType  domain.FundType  `json:"fundType" validate:"required,oneof=one-time recurring"`
	Amount    decimal.Decimal  `json:"amount"`
	Frequency domain.Frequency `json:"frequency,omitempty" validate:"omitempty,oneof=monthly seasonal"`
	StartDate *time.Time       `json:"startDate,omitempty"`
	EndDate   *time.Time       `json:"endDate,omitempty"`
}

// SetFunding stores the funding decision on the application
func (a *Application) SetFunding(fd *FundingDetails) {
	if fd == nil {
		return
	}
	a.FundingType = fd.FundType
	a.FundingAmount = decimal.NewNullDecimal(fd.Amount)
	a.FundingFrequency = fd.Frequency
	a.FundingStartDate = fd.StartDate
	a.FundingEndDate = fd.EndDate
}

// Funding returns the funding decision, or nil when none was recorded
func (a *Application) Funding() *FundingDetails {
	if a.FundingType == "" {
		return nil
	}
	return &FundingDetails{
		FundType:  a.FundingType,
		Amount:    a.FundingAmount.Decimal,
		Frequency: a.FundingFrequency,
		StartDate: a.FundingStartDate,
		EndDate:   a.FundingEndDate,
	}
}

// InquiryReportResponse is the embedded inquiry sub-record
type InquiryReportResponse struct {
	Comments  string       `json:"comments"`
	Verified  bool         `json:"verified"`
	OfficerID *uint        `json:"officerId"`
	Officer   *UserSummary `json:"officer,omitempty"`
}

// ApplicationResponse DTO
type ApplicationResponse struct {
	ID              uint                  `json:"id"`
	Category        string                `json:"category"`
	SubCategory     string                `json:"subCategory"`
	Form            datatypes.JSON        `json:"form"`
	Status          domain.Status         `json:"status"`
	Token           string                `json:"token"`
	InquiryReport   InquiryReportResponse `json:"inquiryReport"`
	TrusteeComments string                `json:"trusteeComments"`
	FundingDetails  *FundingDetails       `json:"fundingDetails,omitempty"`
	SubmittedBy     uint                  `json:"submittedBy"`
	Submitter       *UserSummary          `json:"submitter,omitempty"`
	LastUpdatedBy   uint                  `json:"lastUpdatedBy"`
	LastUpdater     *UserSummary          `json:"lastUpdater,omitempty"`
	Version         uint                  `json:"version"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

func (a *Application) ToResponse() *ApplicationResponse {
	return &ApplicationResponse{
		ID:          a.ID,
		Category:    a.Category,
		SubCategory: a.SubCategory,
		Form:        a.Form,
		Status:      a.Status,
		Token:       a.Token,
		InquiryReport: InquiryReportResponse{
			Comments:  a.InquiryComments,
			Verified:  a.InquiryVerified,
			OfficerID: a.InquiryOfficerID,
			Officer:   a.Officer.Summary(),
		},
		TrusteeComments: a.TrusteeComments,
		FundingDetails:  a.Funding(),
		SubmittedBy:     a.SubmittedBy,
		Submitter:       a.Submitter.Summary(),
		LastUpdatedBy:   a.LastUpdatedBy,
		LastUpdater:     a.LastUpdater.Summary(),
		Version:         a.Version,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// ToApplicationResponses converts a list of applications
func ToApplicationResponses(apps []*Application) []*ApplicationResponse {
	out := make([]*ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, a.ToResponse())
	}
	return out
}

// ============================================================
// Audit
// ============================================================

// Transaction is an immutable audit record of one lifecycle action
type Transaction struct {
	ID            uint          `gorm:"primaryKey"`
	ApplicationID uint          `gorm:"not null;index"`
	Action        domain.Action `gorm:"size:40;not null;index"`
	PerformedBy   uint          `gorm:"not null;index"`
	Role          domain.Role   `gorm:"size:30"`
	FromStatus    domain.Status `gorm:"size:30"`
	ToStatus      domain.Status `gorm:"size:30"`
	Comments      string        `gorm:"type:text"`
	IPAddress     string        `gorm:"size:50"`
	CreatedAt     time.Time     `gorm:"autoCreateTime;index"`

	// Relations
	Performer *User `gorm:"foreignKey:PerformedBy"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// TransactionResponse DTO
type TransactionResponse struct {
	ID            uint          `json:"id"`
	ApplicationID uint          `json:"applicationId"`
	Action        domain.Action `json:"action"`
	PerformedBy   uint          `json:"performedBy"`
	Performer     *UserSummary  `json:"performer,omitempty"`
	Role          domain.Role   `json:"role"`
	FromStatus    domain.Status `json:"fromStatus,omitempty"`
	ToStatus      domain.Status `json:"toStatus"`
	Comments      string        `json:"comments"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func (t *Transaction) ToResponse() *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		ApplicationID: t.ApplicationID,
		Action:        t.Action,
		PerformedBy:   t.PerformedBy,
		Performer:     t.Performer.Summary(),
		Role:          t.Role,
		FromStatus:    t.FromStatus,
		ToStatus:      t.ToStatus,
		Comments:      t.Comments,
		CreatedAt:     t.CreatedAt,
	}
}

// ToTransactionResponses converts a list of transactions
func ToTransactionResponses(txs []*Transaction) []*TransactionResponse {
	out := make([]*TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ToResponse())
	}
	return out
}

// ============================================================
// Funds
// ============================================================

// Fund is a disbursement issued against an application
type Fund struct {
	ID               uint             `gorm:"primaryKey"`
	ApplicationID    uint             `gorm:"not null;index"`
	FundType         domain.FundType  `gorm:"size:20;not null;index"`
	Amount           decimal.Decimal  `gorm:"type:decimal(15,2);not null"`
	Frequency        domain.Frequency `gorm:"size:20;index"`
	StartDate        *time.Time
	EndDate          *time.Time
	IssuedBy         uint      `gorm:"not null"`
	ChequeNo         string    `gorm:"size:50"`
	ChequeBank       string    `gorm:"size:100"`
	ChequeIssuedDate *time.Time
	ScannedDocuments []string  `gorm:"serializer:json;type:text"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`

	// Relations
	Application *Application `gorm:"foreignKey:ApplicationID"`
	Issuer      *User        `gorm:"foreignKey:IssuedBy"`
}

func (Fund) TableName() string {
	return "funds"
}

// ChequeDetails groups the cheque columns of a fund
type ChequeDetails struct {
	ChequeNo   string     `json:"chequeNo"`
	Bank       string     `json:"bank"`
	IssuedDate *time.Time `json:"issuedDate,omitempty"`
}

// SetCheque copies cheque details onto the fund
func (f *Fund) SetCheque(cd *ChequeDetails) {
	if cd == nil {
		return
	}
	f.ChequeNo = cd.ChequeNo
	f.ChequeBank = cd.Bank
	f.ChequeIssuedDate = cd.IssuedDate
}

// FundResponse DTO
type FundResponse struct {
	ID               uint                 `json:"id"`
	ApplicationID    uint                 `json:"applicationId"`
	Application      *ApplicationResponse `json:"application,omitempty"`
	FundType         domain.FundType      `json:"fundType"`
	Amount           decimal.Decimal      `json:"amount"`
	Frequency        domain.Frequency     `json:"frequency,omitempty"`
	StartDate        *time.Time           `json:"startDate,omitempty"`
	EndDate          *time.Time           `json:"endDate,omitempty"`
	IssuedBy         uint                 `json:"issuedBy"`
	Issuer           *UserSummary         `json:"issuer,omitempty"`
	ChequeDetails    ChequeDetails        `json:"chequeDetails"`
	ScannedDocuments []string             `json:"scannedDocuments"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

func (f *Fund) ToResponse() *FundResponse {
	resp := &FundResponse{
		ID:            f.ID,
		ApplicationID: f.ApplicationID,
		FundType:      f.FundType,
		Amount:        f.Amount,
		Frequency:     f.Frequency,
		StartDate:     f.StartDate,
		EndDate:       f.EndDate,
		IssuedBy:      f.IssuedBy,
		Issuer:        f.Issuer.Summary(),
		ChequeDetails: ChequeDetails{
			ChequeNo:   f.ChequeNo,
			Bank:       f.ChequeBank,
			IssuedDate: f.ChequeIssuedDate,
		},
		ScannedDocuments: f.ScannedDocuments,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
	if resp.ScannedDocuments == nil {
		resp.ScannedDocuments = []string{}
	}
	if f.Application != nil {
		resp.Application = f.Application.ToResponse()
	}
	return resp
}

// ToFundResponses converts a list of funds
func ToFundResponses(funds []*Fund) []*FundResponse {
	out := make([]*FundResponse, 0, len(funds))
	for _, f := range funds {
		out = append(out, f.ToResponse())
	}
	return out
}

// ============================================================
// Documents
// ============================================================

// Document references a file uploaded for an application
type Document struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ApplicationID uint      `gorm:"not null;index" json:"applicationId"`
	UserID        uint      `gorm:"not null" json:"userId"`
	DocumentType  string    `gorm:"size:100;not null" json:"documentType"`
	FileURL       string    `gorm:"column:file_url;size:500;not null" json:"fileUrl"`
	UploadedAt    time.Time `gorm:"autoCreateTime" json:"uploadedAt"`
}

func (Document) TableName() string {
	return "documents"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Application{},
		&Transaction{},
		&Fund{},
		&Document{},
	)
}
