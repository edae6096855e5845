package domain

type User struct {
	ID          string `db:"id"`
	Email       string `db:"email"`
	Name        string `db:"name"`
	Hash        string `db:"password_hash"`
	Role        string `db:"role"` // USER | ADMIN
	IsWholesale bool   `db:"is_wholesale"`
}

// Principal is the typed identity attached to a request. It is produced once
// by the auth service, never re-derived by stripping fields per endpoint.
type Principal struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	IsWholesale bool   `json:"is_wholesale"`
}

func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Name: u.Name, Role: u.Role, IsWholesale: u.IsWholesale}
}

func (p Principal) IsAdmin() bool { return p.Role == "ADMIN" }
