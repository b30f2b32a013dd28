package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
)

// In-memory fakes standing in for the Postgres and redis repositories.

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account // keyed by id
	nextID   int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*domain.Account{}}
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	account.ID = fmt.Sprintf("acct-%d", f.nextID)
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	clone := *account
	f.accounts[account.ID] = &clone
	return nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account, ok := f.accounts[id]; ok {
		clone := *account
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if strings.EqualFold(account.Email, email) {
			clone := *account
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepo) FindConflict(ctx context.Context, email string, nationalID, voterID *string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if strings.EqualFold(account.Email, email) {
			clone := *account
			return &clone, nil
		}
		if account.Profile == nil {
			continue
		}
		if nationalID != nil && account.Profile.NationalID != nil && *account.Profile.NationalID == *nationalID {
			clone := *account
			return &clone, nil
		}
		if voterID != nil && account.Profile.VoterID != nil && *account.Profile.VoterID == *voterID {
			clone := *account
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.PasswordHash = passwordHash
	return nil
}

type fakeOtpRepo struct {
	mu      sync.Mutex
	records map[string]*domain.OtpRecord
}

func newFakeOtpRepo() *fakeOtpRepo {
	return &fakeOtpRepo{records: map[string]*domain.OtpRecord{}}
}

func (f *fakeOtpRepo) Replace(ctx context.Context, record *domain.OtpRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *record
	f.records[strings.ToLower(record.Address)] = &clone
	return nil
}

func (f *fakeOtpRepo) Get(ctx context.Context, address string) (*domain.OtpRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[strings.ToLower(address)]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (f *fakeOtpRepo) Delete(ctx context.Context, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, strings.ToLower(address))
	return nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	nextID  int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket, initial *domain.StatusHistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ticket.ID = fmt.Sprintf("ticket-%d", f.nextID)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	initial.ID = fmt.Sprintf("hist-%d-1", f.nextID)
	initial.TicketID = ticket.ID
	initial.CreatedAt = ticket.CreatedAt
	ticket.History = []domain.StatusHistoryEntry{*initial}
	clone := cloneTicket(ticket)
	f.tickets[ticket.ID] = clone
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneTicket(ticket), nil
}

func (f *fakeTicketRepo) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if filter.SubmitterID != nil && ticket.Submitter.UserID != *filter.SubmitterID {
			continue
		}
		if filter.AssignedDept != nil &&
			(ticket.AssignedDept == nil || *ticket.AssignedDept != *filter.AssignedDept) {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if ticket.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		result = append(result, *cloneTicket(ticket))
	}
	return result, nil
}

func (f *fakeTicketRepo) AppendStatus(ctx context.Context, ticketID string, entry *domain.StatusHistoryEntry, assignedDept *string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	entry.ID = fmt.Sprintf("hist-%s-%d", ticketID, len(ticket.History)+1)
	entry.TicketID = ticketID
	entry.CreatedAt = time.Now()
	ticket.History = append(ticket.History, *entry)
	ticket.Status = entry.Status
	if assignedDept != nil {
		ticket.AssignedDept = assignedDept
	}
	ticket.UpdatedAt = entry.CreatedAt
	return cloneTicket(ticket), nil
}

func cloneTicket(ticket *domain.Ticket) *domain.Ticket {
	clone := *ticket
	clone.History = append([]domain.StatusHistoryEntry{}, ticket.History...)
	return &clone
}

type fakeDepartmentRepo struct {
	mu          sync.Mutex
	departments map[string]*domain.Department // keyed by slug
	accounts    *fakeAccountRepo
	nextID      int
}

func newFakeDepartmentRepo(accounts *fakeAccountRepo) *fakeDepartmentRepo {
	return &fakeDepartmentRepo{departments: map[string]*domain.Department{}, accounts: accounts}
}

func (f *fakeDepartmentRepo) CreateWithAccount(ctx context.Context, dept *domain.Department, account *domain.Account) error {
	f.mu.Lock()
	if _, taken := f.departments[dept.Slug]; taken {
		f.mu.Unlock()
		return repository.ErrSlugTaken
	}
	f.mu.Unlock()

	if err := f.accounts.Create(ctx, account); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	dept.ID = fmt.Sprintf("dept-%d", f.nextID)
	dept.AssignedAccountID = account.ID
	dept.CreatedAt = time.Now()
	dept.UpdatedAt = dept.CreatedAt
	clone := *dept
	f.departments[dept.Slug] = &clone
	return nil
}

func (f *fakeDepartmentRepo) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, dept := range f.departments {
		if dept.Name == name {
			clone := *dept
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeDepartmentRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.departments[slug]
	return ok, nil
}

func (f *fakeDepartmentRepo) ListWithAccounts(ctx context.Context) ([]repository.DepartmentWithAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []repository.DepartmentWithAccount
	for _, dept := range f.departments {
		entry := repository.DepartmentWithAccount{Department: *dept}
		if account, ok := f.accounts.accounts[dept.AssignedAccountID]; ok {
			entry.Assigned = *account
		}
		result = append(result, entry)
	}
	return result, nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(to, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (f *fakeMailer) lastSent() (sentMail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMail{}, false
	}
	return f.sent[len(f.sent)-1], true
}

type fakeLimiter struct {
	allowed    bool
	retryAfter time.Duration
	err        error
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	return f.allowed, f.retryAfter, f.err
}
