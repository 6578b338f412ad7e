package domain

import "time"

// Role is an account's privilege level. Lower values are more privileged:
// an account has access when its role is less than or equal to the required
// role.
type Role int

const (
	RoleAdmin  Role = 0
	RoleEditor Role = 1
	RoleViewer Role = 2
)

// Account represents an operator account. The account id is an opaque
// numeric identifier supplied by the chat transport; there is no
// authentication here.
type Account struct {
	ID        int64
	Username  string
	Role      Role
	CreatedAt time.Time
}
