package services

import (
	"context"
	"errors"
	"fmt"

	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/core/domain"
)

var errIncompleteAuditEntry = errors.New("audit entry is missing application, performer or action")

// AuditEntry describes one lifecycle action to be logged
type AuditEntry struct {
	ApplicationID uint
	Actor         domain.Actor
	Step          domain.Step
	Comments      string
}

// AuditLog appends Transaction records. It is always called inside the
// unit of work that mutates the application, so a failed append rolls the
// mutation back.
type AuditLog struct{}

// NewAuditLog creates a new audit log writer
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Record appends entry through txs
func (l *AuditLog) Record(ctx context.Context, txs repositories.TransactionRepository, entry AuditEntry) (*models.Transaction, error) {
	if entry.ApplicationID == 0 || entry.Actor.ID == 0 || entry.Step.Action == "" {
		return nil, errIncompleteAuditEntry
	}

	record := &models.Transaction{
		ApplicationID: entry.ApplicationID,
		Action:        entry.Step.Action,
		PerformedBy:   entry.Actor.ID,
		Role:          entry.Actor.Role,
		FromStatus:    entry.Step.From,
		ToStatus:      entry.Step.To,
		Comments:      entry.Comments,
		IPAddress:     entry.Actor.IPAddress,
	}

	if err := txs.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("append audit record: %w", err)
	}
	return record, nil
}
