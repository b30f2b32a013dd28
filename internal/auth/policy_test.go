package auth

import (
	"testing"

	"github.com/spec-kit/grievance-service/internal/domain"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

func strPtr(s string) *string { return &s }

func TestCanReadTicket(t *testing.T) {
	ticket := &domain.Ticket{
		Submitter:    domain.SubmitterSnapshot{UserID: "user-1", Name: "Asha"},
		AssignedDept: strPtr("PWD"),
	}
	unassigned := &domain.Ticket{
		Submitter: domain.SubmitterSnapshot{UserID: "user-1", Name: "Asha"},
	}

	tests := []struct {
		name     string
		identity domain.Identity
		ticket   *domain.Ticket
		want     bool
	}{
		{"admin reads any", domain.Identity{AccountID: "adm", Role: domain.RoleAdmin}, ticket, true},
		{"owner reads own", domain.Identity{AccountID: "user-1", Role: domain.RoleUser}, ticket, true},
		{"other user denied", domain.Identity{AccountID: "user-2", Role: domain.RoleUser}, ticket, false},
		{"assigned department reads", domain.Identity{AccountID: "d1", Role: domain.RoleDepartment, Department: strPtr("PWD")}, ticket, true},
		{"other department denied", domain.Identity{AccountID: "d2", Role: domain.RoleDepartment, Department: strPtr("Water")}, ticket, false},
		{"department denied on unassigned", domain.Identity{AccountID: "d1", Role: domain.RoleDepartment, Department: strPtr("PWD")}, unassigned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanReadTicket(tt.identity, tt.ticket); got != tt.want {
				t.Errorf("CanReadTicket() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanAppendStatus(t *testing.T) {
	ticket := &domain.Ticket{AssignedDept: strPtr("PWD")}

	if !CanAppendStatus(domain.Identity{Role: domain.RoleAdmin}, ticket) {
		t.Error("admin must be able to append")
	}
	if CanAppendStatus(domain.Identity{Role: domain.RoleUser, AccountID: "u"}, ticket) {
		t.Error("citizens must not append status entries")
	}
	if !CanAppendStatus(domain.Identity{Role: domain.RoleDepartment, Department: strPtr("PWD")}, ticket) {
		t.Error("assigned department must be able to append")
	}
	if CanAppendStatus(domain.Identity{Role: domain.RoleDepartment, Department: strPtr("Water")}, ticket) {
		t.Error("foreign department must not append")
	}
}

func TestScopeForList(t *testing.T) {
	adminScope, err := ScopeForList(domain.Identity{Role: domain.RoleAdmin})
	if err != nil || !adminScope.All {
		t.Errorf("admin scope = %+v, err %v", adminScope, err)
	}

	userScope, err := ScopeForList(domain.Identity{AccountID: "user-1", Role: domain.RoleUser})
	if err != nil || userScope.SubmitterID == nil || *userScope.SubmitterID != "user-1" {
		t.Errorf("user scope = %+v, err %v", userScope, err)
	}

	deptScope, err := ScopeForList(domain.Identity{Role: domain.RoleDepartment, Department: strPtr("PWD")})
	if err != nil || deptScope.AssignedDept == nil || *deptScope.AssignedDept != "PWD" {
		t.Errorf("department scope = %+v, err %v", deptScope, err)
	}

	_, err = ScopeForList(domain.Identity{Role: domain.RoleDepartment})
	if !apperrors.IsCode(err, "FORBIDDEN") {
		t.Errorf("department without assignment: err = %v, want FORBIDDEN", err)
	}
}

func TestCanManageDepartments(t *testing.T) {
	if !CanManageDepartments(domain.Identity{Role: domain.RoleAdmin}) {
		t.Error("admin must manage departments")
	}
	if CanManageDepartments(domain.Identity{Role: domain.RoleUser}) || CanManageDepartments(domain.Identity{Role: domain.RoleDepartment}) {
		t.Error("only admins manage departments")
	}
}
