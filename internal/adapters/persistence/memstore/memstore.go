// Package memstore is a process-local Store used with DB_DRIVER=memory and in tests.
package memstore

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"aidtrust/internal/adapters/persistence/models"
	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/core/domain"

	"gorm.io/gorm"
)

type state struct {
	users        map[uint]models.User
	applications map[uint]models.Application
	transactions map[uint]models.Transaction
	funds        map[uint]models.Fund
	documents    map[uint]models.Document
	nextID       uint
}

func (s *state) clone() state {
	c := state{
		users:        make(map[uint]models.User, len(s.users)),
		applications: make(map[uint]models.Application, len(s.applications)),
		transactions: make(map[uint]models.Transaction, len(s.transactions)),
		funds:        make(map[uint]models.Fund, len(s.funds)),
		documents:    make(map[uint]models.Document, len(s.documents)),
		nextID:       s.nextID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.applications {
		c.applications[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.funds {
		c.funds[k] = v
	}
	for k, v := range s.documents {
		c.documents[k] = v
	}
	return c
}

func (s *state) id() uint {
	s.nextID++
	return s.nextID
}

// Store keeps every record in memory. Units of work are serialized and
// rolled back by restoring a snapshot. Writes made outside a unit of work
// wait for the open one to finish so a rollback never discards them.
type Store struct {
	mu      sync.RWMutex
	txMu    sync.Mutex
	data    state
	repos   *repositories.Repositories
	txRepos *repositories.Repositories
	now     func() time.Time
}

// New creates an empty Store
func New() *Store {
	s := &Store{
		data: state{
			users:        map[uint]models.User{},
			applications: map[uint]models.Application{},
			transactions: map[uint]models.Transaction{},
			funds:        map[uint]models.Fund{},
			documents:    map[uint]models.Document{},
		},
		now: time.Now,
	}
	s.repos = s.bind(false)
	s.txRepos = s.bind(true)
	return s
}

func (s *Store) bind(inTx bool) *repositories.Repositories {
	return &repositories.Repositories{
		Users:        &userRepo{s, inTx},
		Applications: &applicationRepo{s, inTx},
		Transactions: &transactionRepo{s, inTx},
		Funds:        &fundRepo{s, inTx},
		Documents:    &documentRepo{s, inTx},
	}
}

// lock takes the write lock. Callers outside a unit of work also take txMu.
func (s *Store) lock(inTx bool) func() {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

// SetClock replaces the clock used for timestamps
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Repos() *repositories.Repositories {
	return s.repos
}

func (s *Store) WithinTx(ctx context.Context, fn func(r *repositories.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	err := ctx.Err()
	if err == nil {
		err = fn(s.txRepos)
	}
	if err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// ============================================================
// Users
// ============================================================

type userRepo struct {
	s    *Store
	inTx bool
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	defer r.s.lock(r.inTx)()

	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	now := r.s.now()
	user.ID = r.s.data.id()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if user.Platform == "" {
		user.Platform = domain.PlatformWeb
	}
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrRecordNotFound
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	defer r.s.lock(r.inTx)()

	if _, ok := r.s.data.users[user.ID]; !ok {
		return repositories.ErrRecordNotFound
	}
	user.UpdatedAt = r.s.now()
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *userRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return r.list(func(*models.User) bool { return true }, offset, limit)
}

func (r *userRepo) ListByRole(ctx context.Context, role domain.Role, offset, limit int) ([]*models.User, int64, error) {
	return r.list(func(u *models.User) bool { return u.Role == role }, offset, limit)
}

func (r *userRepo) list(match func(*models.User) bool, offset, limit int) ([]*models.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var users []*models.User
	for _, u := range r.s.data.users {
		u := u
		if match(&u) {
			users = append(users, &u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return newer(users[i].CreatedAt, users[i].ID, users[j].CreatedAt, users[j].ID)
	})
	return page(users, offset, limit), int64(len(users)), nil
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == repositories.ErrRecordNotFound {
		return false, nil
	}
	return err == nil, err
}

// ============================================================
// Applications
// ============================================================

type applicationRepo struct {
	s    *Store
	inTx bool
}

func cloneApplication(a models.Application) models.Application {
	a.Form = append([]byte(nil), a.Form...)
	if a.InquiryOfficerID != nil {
		id := *a.InquiryOfficerID
		a.InquiryOfficerID = &id
	}
	a.Submitter, a.LastUpdater, a.Officer = nil, nil, nil
	return a
}

// hydrate must be called with mu held
func (r *applicationRepo) hydrate(a models.Application) *models.Application {
	out := cloneApplication(a)
	out.Submitter = r.s.userRef(out.SubmittedBy)
	out.LastUpdater = r.s.userRef(out.LastUpdatedBy)
	if out.InquiryOfficerID != nil {
		out.Officer = r.s.userRef(*out.InquiryOfficerID)
	}
	return &out
}

func (s *Store) userRef(id uint) *models.User {
	u, ok := s.data.users[id]
	if !ok {
		return nil
	}
	return &u
}

func (r *applicationRepo) Create(ctx context.Context, app *models.Application) error {
	defer r.s.lock(r.inTx)()

	for _, a := range r.s.data.applications {
		if a.Token == app.Token {
			return gorm.ErrDuplicatedKey
		}
	}
	now := r.s.now()
	app.ID = r.s.data.id()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = domain.StatusPending
	}
	if app.Version == 0 {
		app.Version = 1
	}
	r.s.data.applications[app.ID] = cloneApplication(*app)
	return nil
}

func (r *applicationRepo) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.data.applications[id]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	return r.hydrate(a), nil
}

func (r *applicationRepo) GetByToken(ctx context.Context, token string) (*models.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.data.applications {
		if a.Token == token {
			return r.hydrate(a), nil
		}
	}
	return nil, repositories.ErrRecordNotFound
}

func (r *applicationRepo) ExistsByToken(ctx context.Context, token string) (bool, error) {
	_, err := r.GetByToken(ctx, token)
	if err == repositories.ErrRecordNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *applicationRepo) UpdateWithVersion(ctx context.Context, app *models.Application, expected uint) error {
	defer r.s.lock(r.inTx)()

	stored, ok := r.s.data.applications[app.ID]
	if !ok || stored.Version != expected {
		return repositories.ErrStaleVersion
	}
	app.CreatedAt = stored.CreatedAt
	app.UpdatedAt = r.s.now()
	r.s.data.applications[app.ID] = cloneApplication(*app)
	return nil
}

func (r *applicationRepo) Filter(ctx context.Context, filter repositories.ApplicationFilter, offset, limit int) ([]*models.Application, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var apps []*models.Application
	for _, a := range r.s.data.applications {
		if matchApplication(&a, filter) {
			apps = append(apps, r.hydrate(a))
		}
	}
	sort.Slice(apps, func(i, j int) bool {
		return newer(apps[i].CreatedAt, apps[i].ID, apps[j].CreatedAt, apps[j].ID)
	})
	return page(apps, offset, limit), int64(len(apps)), nil
}

func matchApplication(a *models.Application, f repositories.ApplicationFilter) bool {
	if f.HasDateRange() && (a.CreatedAt.Before(*f.StartDate) || a.CreatedAt.After(*f.EndDate)) {
		return false
	}
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.SubCategory != "" && a.SubCategory != f.SubCategory {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.OfficerID != 0 && (a.InquiryOfficerID == nil || *a.InquiryOfficerID != f.OfficerID) {
		return false
	}
	if f.SubmittedBy != 0 && a.SubmittedBy != f.SubmittedBy {
		return false
	}
	if f.Country != "" || f.City != "" {
		var form map[string]interface{}
		if err := json.Unmarshal(a.Form, &form); err != nil {
			return false
		}
		if f.Country != "" && form["country"] != f.Country {
			return false
		}
		if f.City != "" && form["city"] != f.City {
			return false
		}
	}
	return true
}

func (r *applicationRepo) ListAfter(ctx context.Context, afterID uint, limit int) ([]*models.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var apps []*models.Application
	for id, a := range r.s.data.applications {
		if id > afterID {
			a := cloneApplication(a)
			apps = append(apps, &a)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	if len(apps) > limit {
		apps = apps[:limit]
	}
	return apps, nil
}

// ============================================================
// Transactions
// ============================================================

type transactionRepo struct {
	s    *Store
	inTx bool
}

func (r *transactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	defer r.s.lock(r.inTx)()

	tx.ID = r.s.data.id()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = r.s.now()
	}
	stored := *tx
	stored.Performer = nil
	r.s.data.transactions[tx.ID] = stored
	return nil
}

func (r *transactionRepo) ListByApplication(ctx context.Context, applicationID uint) ([]*models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	txs := r.byApplication(applicationID)
	for _, t := range txs {
		t.Performer = r.s.userRef(t.PerformedBy)
	}
	sort.Slice(txs, func(i, j int) bool {
		return newer(txs[j].CreatedAt, txs[j].ID, txs[i].CreatedAt, txs[i].ID)
	})
	return txs, nil
}

func (r *transactionRepo) byApplication(applicationID uint) []*models.Transaction {
	var txs []*models.Transaction
	for _, t := range r.s.data.transactions {
		if t.ApplicationID == applicationID {
			t := t
			txs = append(txs, &t)
		}
	}
	return txs
}

func (r *transactionRepo) LatestByApplications(ctx context.Context, applicationIDs []uint) (map[uint]*models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	latest := make(map[uint]*models.Transaction, len(applicationIDs))
	for _, id := range applicationIDs {
		for _, t := range r.byApplication(id) {
			cur, ok := latest[id]
			if !ok || newer(t.CreatedAt, t.ID, cur.CreatedAt, cur.ID) {
				latest[id] = t
			}
		}
	}
	return latest, nil
}

// ============================================================
// Funds
// ============================================================

type fundRepo struct {
	s    *Store
	inTx bool
}

func cloneFund(f models.Fund) models.Fund {
	f.ScannedDocuments = append([]string(nil), f.ScannedDocuments...)
	f.Application, f.Issuer = nil, nil
	return f
}

func (r *fundRepo) hydrate(f models.Fund) *models.Fund {
	out := cloneFund(f)
	if a, ok := r.s.data.applications[out.ApplicationID]; ok {
		app := cloneApplication(a)
		out.Application = &app
	}
	out.Issuer = r.s.userRef(out.IssuedBy)
	return &out
}

func (r *fundRepo) Create(ctx context.Context, fund *models.Fund) error {
	defer r.s.lock(r.inTx)()

	now := r.s.now()
	fund.ID = r.s.data.id()
	if fund.CreatedAt.IsZero() {
		fund.CreatedAt = now
	}
	fund.UpdatedAt = now
	r.s.data.funds[fund.ID] = cloneFund(*fund)
	return nil
}

func (r *fundRepo) GetByID(ctx context.Context, id uint) (*models.Fund, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.data.funds[id]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	return r.hydrate(f), nil
}

func (r *fundRepo) Update(ctx context.Context, fund *models.Fund) error {
	defer r.s.lock(r.inTx)()

	stored, ok := r.s.data.funds[fund.ID]
	if !ok {
		return repositories.ErrRecordNotFound
	}
	fund.CreatedAt = stored.CreatedAt
	fund.UpdatedAt = r.s.now()
	r.s.data.funds[fund.ID] = cloneFund(*fund)
	return nil
}

func (r *fundRepo) List(ctx context.Context, filter repositories.FundFilter) ([]*models.Fund, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var funds []*models.Fund
	for _, f := range r.s.data.funds {
		if filter.StartDate != nil && f.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && f.CreatedAt.After(*filter.EndDate) {
			continue
		}
		if filter.FundType != "" && f.FundType != filter.FundType {
			continue
		}
		if filter.Frequency != "" && f.Frequency != filter.Frequency {
			continue
		}
		funds = append(funds, r.hydrate(f))
	}
	sort.Slice(funds, func(i, j int) bool {
		return newer(funds[i].CreatedAt, funds[i].ID, funds[j].CreatedAt, funds[j].ID)
	})
	return funds, nil
}

// ============================================================
// Documents
// ============================================================

type documentRepo struct {
	s    *Store
	inTx bool
}

func (r *documentRepo) Create(ctx context.Context, doc *models.Document) error {
	defer r.s.lock(r.inTx)()

	doc.ID = r.s.data.id()
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = r.s.now()
	}
	r.s.data.documents[doc.ID] = *doc
	return nil
}

func (r *documentRepo) ListByApplication(ctx context.Context, applicationID uint) ([]*models.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var docs []*models.Document
	for _, d := range r.s.data.documents {
		if d.ApplicationID == applicationID {
			d := d
			docs = append(docs, &d)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return newer(docs[j].UploadedAt, docs[j].ID, docs[i].UploadedAt, docs[i].ID)
	})
	return docs, nil
}

// ============================================================
// Helpers
// ============================================================

// newer orders by timestamp then id, both descending
func newer(at time.Time, id uint, otherAt time.Time, otherID uint) bool {
	if !at.Equal(otherAt) {
		return at.After(otherAt)
	}
	return id > otherID
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
