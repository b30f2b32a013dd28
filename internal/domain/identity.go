package domain

// Identity is the resolved caller derived from a validated session token.
// It is a snapshot of the token claims, not a live account reference.
type Identity struct {
	AccountID  string
	Name       string
	Role       Role
	Department *string
}

// DepartmentName returns the department claim or "" when absent.
func (i Identity) DepartmentName() string {
	if i.Department == nil {
		return ""
	}
	return *i.Department
}
