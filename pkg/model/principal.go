package model

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// Principal is the authenticated caller identity supplied by the external
// auth gateway. The service trusts it as-is.
type Principal struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsStudent() bool {
	return p.Role == RoleStudent
}
