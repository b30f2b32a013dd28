package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

type ticketFixture struct {
	service     *TicketService
	tickets     *fakeTicketRepo
	departments *fakeDepartmentRepo
	accounts    *fakeAccountRepo
	otps        *fakeOtpRepo
	otpService  *OtpService
	mailer      *fakeMailer
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	accounts := newFakeAccountRepo()
	otps := newFakeOtpRepo()
	mailer := &fakeMailer{}
	dispatcher := events.NewInMemoryDispatcher()
	otpService := NewOtpService(OtpDependencies{
		OtpRepo:     otps,
		AccountRepo: accounts,
		Limiter:     &fakeLimiter{allowed: true},
		Mailer:      mailer,
		Dispatcher:  dispatcher,
		Logger:      zap.NewNop(),
		TTL:         5 * time.Minute,
	})
	fixture := &ticketFixture{
		tickets:     newFakeTicketRepo(),
		departments: newFakeDepartmentRepo(accounts),
		accounts:    accounts,
		otps:        otps,
		otpService:  otpService,
		mailer:      mailer,
	}
	fixture.service = NewTicketService(
		fixture.tickets, fixture.departments, accounts, otpService, dispatcher, zap.NewNop())
	return fixture
}

func citizenIdentity(id, name string) domain.Identity {
	return domain.Identity{AccountID: id, Name: name, Role: domain.RoleUser}
}

func adminIdentity() domain.Identity {
	return domain.Identity{AccountID: "admin-1", Name: "Admin", Role: domain.RoleAdmin}
}

func departmentIdentity(dept string) domain.Identity {
	return domain.Identity{AccountID: "dept-acct-1", Name: "Water Desk", Role: domain.RoleDepartment, Department: &dept}
}

func (f *ticketFixture) seedDepartment(t *testing.T, name string) {
	t.Helper()
	account := &domain.Account{
		Email:        name + "@example.gov",
		PasswordHash: "x",
		Name:         name + " desk",
		Role:         domain.RoleDepartment,
		Department:   &name,
	}
	dept := &domain.Department{
		Name:      name,
		Slug:      name,
		CreatedBy: domain.CreatorSnapshot{UserID: "admin-1", Name: "Admin"},
	}
	if err := f.departments.CreateWithAccount(context.Background(), dept, account); err != nil {
		t.Fatalf("seed department: %v", err)
	}
}

func (f *ticketFixture) createTicket(t *testing.T, identity domain.Identity) *domain.Ticket {
	t.Helper()
	ticket, err := f.service.Create(context.Background(), identity, CreateTicketInput{
		Title:       "Broken streetlight",
		Description: "The light at 5th and Main has been out for a week.",
		Phone:       "555-0100",
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func TestCreateTicketStartsSubmitted(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.createTicket(t, citizenIdentity("acct-1", "Pat"))

	if ticket.Status != domain.TicketStatusSubmitted {
		t.Fatalf("status = %q, want Submitted", ticket.Status)
	}
	if len(ticket.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(ticket.History))
	}
	if ticket.History[0].Status != ticket.Status {
		t.Fatal("ticket status must equal the last history entry's status")
	}
	if ticket.History[0].Actor.UserID != "acct-1" {
		t.Fatalf("initial entry actor = %q, want the submitter", ticket.History[0].Actor.UserID)
	}
}

func TestCreateTicketRejectsNonCitizens(t *testing.T) {
	f := newTicketFixture(t)
	for _, identity := range []domain.Identity{adminIdentity(), departmentIdentity("Water")} {
		_, err := f.service.Create(context.Background(), identity, CreateTicketInput{
			Title: "t", Description: "d", Phone: "p",
		})
		if !apperrors.IsCode(err, "FORBIDDEN") {
			t.Fatalf("role %s: expected FORBIDDEN, got %v", identity.Role, err)
		}
	}
}

func TestGetTicketScopeConflation(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.createTicket(t, citizenIdentity("acct-1", "Pat"))

	tests := []struct {
		name     string
		identity domain.Identity
		wantErr  string
	}{
		{"owner sees own", citizenIdentity("acct-1", "Pat"), ""},
		{"admin sees all", adminIdentity(), ""},
		{"other citizen gets not-found", citizenIdentity("acct-2", "Sam"), "NOT_FOUND"},
		{"unassigned department gets not-found", departmentIdentity("Water"), "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Get(context.Background(), tt.identity, ticket.ID)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.IsCode(err, tt.wantErr) {
				t.Fatalf("expected %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestListTicketsScoping(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	f.seedDepartment(t, "Water")

	mine := f.createTicket(t, citizenIdentity("acct-1", "Pat"))
	theirs := f.createTicket(t, citizenIdentity("acct-2", "Sam"))

	// Assign one ticket to the Water department.
	dept := "Water"
	if _, err := f.service.AppendStatus(ctx, adminIdentity(), AppendStatusInput{
		TicketID: theirs.ID, Status: string(domain.TicketStatusAssigned), AssignedDept: &dept,
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	adminList, err := f.service.List(ctx, adminIdentity(), ListTicketsInput{})
	if err != nil || len(adminList) != 2 {
		t.Fatalf("admin list = %d tickets, err %v; want 2", len(adminList), err)
	}

	citizenList, err := f.service.List(ctx, citizenIdentity("acct-1", "Pat"), ListTicketsInput{})
	if err != nil || len(citizenList) != 1 || citizenList[0].ID != mine.ID {
		t.Fatalf("citizen list wrong: %v, err %v", citizenList, err)
	}

	deptList, err := f.service.List(ctx, departmentIdentity("Water"), ListTicketsInput{})
	if err != nil || len(deptList) != 1 || deptList[0].ID != theirs.ID {
		t.Fatalf("department list wrong: %v, err %v", deptList, err)
	}
}

func TestListStatusFilterIsAdminOnly(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	f.createTicket(t, citizenIdentity("acct-1", "Pat"))

	_, err := f.service.List(ctx, citizenIdentity("acct-1", "Pat"), ListTicketsInput{
		Statuses: []string{string(domain.TicketStatusSubmitted)},
	})
	if !apperrors.IsCode(err, "FORBIDDEN") {
		t.Fatalf("expected FORBIDDEN for citizen status filter, got %v", err)
	}

	filtered, err := f.service.List(ctx, adminIdentity(), ListTicketsInput{
		Statuses: []string{string(domain.TicketStatusSubmitted)},
	})
	if err != nil || len(filtered) != 1 {
		t.Fatalf("admin filtered list = %d, err %v; want 1", len(filtered), err)
	}
}

func TestAppendStatusRejectsIllegalTransition(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.createTicket(t, citizenIdentity("acct-1", "Pat"))

	_, err := f.service.AppendStatus(context.Background(), adminIdentity(), AppendStatusInput{
		TicketID: ticket.ID, Status: string(domain.TicketStatusResolved),
	})
	if !apperrors.IsCode(err, "CONFLICT") {
		t.Fatalf("Submitted->Resolved should be rejected with CONFLICT, got %v", err)
	}
}

func TestAppendStatusClosedIsTerminal(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, citizenIdentity("acct-1", "Pat"))

	if _, err := f.service.AppendStatus(ctx, adminIdentity(), AppendStatusInput{
		TicketID: ticket.ID, Status: string(domain.TicketStatusClosed),
	}); err != nil {
		t.Fatalf("close: %v", err)
	}
	_, err := f.service.AppendStatus(ctx, adminIdentity(), AppendStatusInput{
		TicketID: ticket.ID, Status: string(domain.TicketStatusInProgress),
	})
	if !apperrors.IsCode(err, "CONFLICT") {
		t.Fatalf("transition out of Closed should be rejected, got %v", err)
	}
}

func TestAppendStatusAssignmentRequiresExistingDepartment(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.createTicket(t, citizenIdentity("acct-1", "Pat"))

	dept := "Nonexistent"
	_, err := f.service.AppendStatus(context.Background(), adminIdentity(), AppendStatusInput{
		TicketID: ticket.ID, Status: string(domain.TicketStatusAssigned), AssignedDept: &dept,
	})
	if !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("unknown department should be NOT_FOUND, got %v", err)
	}
}

func TestAppendStatusAuditTrail(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	f.seedDepartment(t, "Water")
	ticket := f.createTicket(t, citizenIdentity("acct-1", "Pat"))

	dept := "Water"
	remarks := "routing to water desk"
	updated, err := f.service.AppendStatus(ctx, adminIdentity(), AppendStatusInput{
		TicketID: ticket.ID, Status: string(domain.TicketStatusAssigned),
		AssignedDept: &dept, Remarks: &remarks,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if updated.Status != domain.TicketStatusAssigned {
		t.Fatalf("status = %q, want Assigned", updated.Status)
	}
	if updated.AssignedDept == nil || *updated.AssignedDept != "Water" {
		t.Fatalf("assigned dept = %v, want Water", updated.AssignedDept)
	}
	if len(updated.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(updated.History))
	}
	last := updated.History[len(updated.History)-1]
	if last.Status != updated.Status {
		t.Fatal("ticket status must equal the last history entry's status")
	}
	if last.Actor.Role != domain.RoleAdmin {
		t.Fatalf("actor role = %q, want Admin", last.Actor.Role)
	}

	// The assigned department may now progress the ticket.
	progressed, err := f.service.AppendStatus(ctx, departmentIdentity("Water"), AppendStatusInput{
		TicketID: ticket.ID, Status: string(domain.TicketStatusInProgress),
	})
	if err != nil {
		t.Fatalf("department append: %v", err)
	}
	if len(progressed.History) != 3 {
		t.Fatalf("history length = %d, want 3", len(progressed.History))
	}
}

func TestAppendStatusDeniedOutsideScope(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.createTicket(t, citizenIdentity("acct-1", "Pat"))

	tests := []struct {
		name     string
		identity domain.Identity
	}{
		{"submitter cannot self-serve status", citizenIdentity("acct-1", "Pat")},
		{"unassigned department", departmentIdentity("Water")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.AppendStatus(context.Background(), tt.identity, AppendStatusInput{
				TicketID: ticket.ID, Status: string(domain.TicketStatusInProgress),
			})
			if !apperrors.IsCode(err, "NOT_FOUND") {
				t.Fatalf("expected NOT_FOUND, got %v", err)
			}
		})
	}
}

func TestStatusLookupReturnsRedactedProjection(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	submitter := seedCitizen(t, f.accounts, "pat@example.com")
	ticket := f.createTicket(t, citizenIdentity(submitter.ID, submitter.Name))

	if err := f.otpService.RequestCode(ctx, "pat@example.com", domain.OtpPurposeTicketLookup); err != nil {
		t.Fatalf("request code: %v", err)
	}
	mail, _ := f.mailer.lastSent()
	code := codePattern.FindString(mail.Body)

	projection, err := f.service.StatusLookup(ctx, "pat@example.com", code, ticket.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if projection.TicketID != ticket.ID || projection.Status != domain.TicketStatusSubmitted {
		t.Fatalf("unexpected projection: %+v", projection)
	}
	if len(projection.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(projection.History))
	}
}

func TestStatusLookupRejectsForeignTicket(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	seedCitizen(t, f.accounts, "pat@example.com")
	other := f.createTicket(t, citizenIdentity("someone-else", "Sam"))

	if err := f.otpService.RequestCode(ctx, "pat@example.com", domain.OtpPurposeTicketLookup); err != nil {
		t.Fatalf("request code: %v", err)
	}
	mail, _ := f.mailer.lastSent()
	code := codePattern.FindString(mail.Body)

	_, err := f.service.StatusLookup(ctx, "pat@example.com", code, other.ID)
	if !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("foreign ticket should be NOT_FOUND, got %v", err)
	}
}
