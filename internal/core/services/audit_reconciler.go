package services

import (
	"context"
	"time"

	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/core/domain"
	"aidtrust/internal/pkg/logger"
	"aidtrust/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const reconcileBatchSize = 200

// Inconsistency is an application whose stored status is not explained by
// its latest audit record
type Inconsistency struct {
	ApplicationID uint          `json:"applicationId"`
	Status        domain.Status `json:"status"`
	// LoggedStatus is empty when the application has no audit record
	LoggedStatus domain.Status `json:"loggedStatus"`
}

// AuditReconciler periodically compares applications with their audit trail
type AuditReconciler struct {
	store    repositories.Store
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
}

// NewAuditReconciler creates a reconciler running on a cron schedule
func NewAuditReconciler(store repositories.Store, schedule string) *AuditReconciler {
	return &AuditReconciler{
		store:    store,
		schedule: schedule,
		timeout:  5 * time.Minute,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start schedules the reconciliation. An empty schedule leaves it disabled.
func (r *AuditReconciler) Start() error {
	if r.schedule == "" {
		logger.Log.Info("Audit reconciler disabled")
		return nil
	}

	if _, err := r.cron.AddFunc(r.schedule, r.runOnce); err != nil {
		return err
	}
	r.cron.Start()

	logger.Log.WithField("schedule", r.schedule).Info("Audit reconciler started")
	return nil
}

// Stop waits for a running reconciliation to finish
func (r *AuditReconciler) Stop() {
	<-r.cron.Stop().Done()
	logger.Log.Info("Audit reconciler stopped")
}

func (r *AuditReconciler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	found, err := r.Reconcile(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("Audit reconciliation failed")
		return
	}

	metrics.SetAuditInconsistencies(len(found))
	for _, inc := range found {
		logger.Log.WithFields(logrus.Fields{
			"application_id": inc.ApplicationID,
			"status":         inc.Status,
			"logged_status":  inc.LoggedStatus,
		}).Warn("Application status does not match audit trail")
	}
}

// Reconcile scans every application and returns the inconsistent ones
func (r *AuditReconciler) Reconcile(ctx context.Context) ([]Inconsistency, error) {
	repos := r.store.Repos()
	var (
		found  []Inconsistency
		cursor uint
	)

	for {
		apps, err := repos.Applications.ListAfter(ctx, cursor, reconcileBatchSize)
		if err != nil {
			return nil, err
		}
		if len(apps) == 0 {
			return found, nil
		}

		ids := make([]uint, len(apps))
		for i, a := range apps {
			ids[i] = a.ID
		}

		latest, err := repos.Transactions.LatestByApplications(ctx, ids)
		if err != nil {
			return nil, err
		}

		for _, a := range apps {
			t, ok := latest[a.ID]
			switch {
			case !ok:
				found = append(found, Inconsistency{ApplicationID: a.ID, Status: a.Status})
			case t.ToStatus != a.Status:
				found = append(found, Inconsistency{ApplicationID: a.ID, Status: a.Status, LoggedStatus: t.ToStatus})
			}
		}

		cursor = apps[len(apps)-1].ID
	}
}
