package domain

import "testing"

func TestAccountValidate(t *testing.T) {
	voter := "ABC1234567"
	dept := "PWD"

	tests := []struct {
		name    string
		account Account
		wantErr bool
	}{
		{
			name: "valid citizen",
			account: Account{
				Email: "a@x.com", PasswordHash: "h", Role: RoleUser,
				Profile: &CitizenProfile{Address: "12 Main Rd", Sex: "F", Constituency: "North", VoterID: &voter},
			},
		},
		{
			name:    "citizen without profile",
			account: Account{Email: "a@x.com", PasswordHash: "h", Role: RoleUser},
			wantErr: true,
		},
		{
			name: "citizen without any identity document",
			account: Account{
				Email: "a@x.com", PasswordHash: "h", Role: RoleUser,
				Profile: &CitizenProfile{Address: "12 Main Rd", Sex: "F", Constituency: "North"},
			},
			wantErr: true,
		},
		{
			name:    "department without department name",
			account: Account{Email: "d@x.com", PasswordHash: "h", Role: RoleDepartment},
			wantErr: true,
		},
		{
			name:    "valid department",
			account: Account{Email: "d@x.com", PasswordHash: "h", Role: RoleDepartment, Department: &dept},
		},
		{
			name:    "admin needs no extras",
			account: Account{Email: "admin@x.com", PasswordHash: "h", Role: RoleAdmin},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
