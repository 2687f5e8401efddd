package user

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RolePayroll  Role = "payroll"
	RoleAdmin    Role = "admin"
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID     string
	EmployeeID *string
	Role       Role
}

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleManager, RolePayroll, RoleAdmin:
		return true
	}
	return false
}
