package services

import (
	"context"
	"errors"

	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/core/domain"
)

// transition is a lifecycle event applied to a loaded application
type transition struct {
	event    domain.Event
	target   domain.Status
	comments string
	// fallback comments when none were given
	defaultComments string
	// guard runs after the transition table accepted the event
	guard func(ctx context.Context, r *repositories.Repositories, app *models.Application) error
	// mutate changes fields other than status, lastUpdatedBy and version
	mutate func(app *models.Application)
}

// advance validates t against app, writes the version-checked update and
// appends the audit record. It must run inside Store.WithinTx.
func advance(ctx context.Context, r *repositories.Repositories, audit *AuditLog, app *models.Application, actor domain.Actor, t transition) (domain.Step, error) {
	step, err := domain.Plan(t.event, app.Status, actor.Role, t.target)
	if err != nil {
		return domain.Step{}, err
	}

	if t.guard != nil {
		if err := t.guard(ctx, r, app); err != nil {
			return domain.Step{}, err
		}
	}
	if t.mutate != nil {
		t.mutate(app)
	}

	expected := app.Version
	app.Status = step.To
	app.LastUpdatedBy = actor.ID
	app.Version = expected + 1

	if err := r.Applications.UpdateWithVersion(ctx, app, expected); err != nil {
		if errors.Is(err, repositories.ErrStaleVersion) {
			return domain.Step{}, domain.ErrConcurrentUpdate
		}
		return domain.Step{}, err
	}

	comments := t.comments
	if comments == "" {
		comments = t.defaultComments
	}

	if _, err := audit.Record(ctx, r.Transactions, AuditEntry{
		ApplicationID: app.ID,
		Actor:         actor,
		Step:          step,
		Comments:      comments,
	}); err != nil {
		return domain.Step{}, err
	}

	return step, nil
}

// loadApplication maps a missing record to ErrApplicationNotFound
func loadApplication(ctx context.Context, apps repositories.ApplicationRepository, id uint) (*models.Application, error) {
	app, err := apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}
