package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// RoleName names a granted role. Stored in the roles table and flattened
// into role name sets when building identities.
type RoleName = string

const (
	// RoleUser is the default role granted on registration
	RoleUser RoleName = "ROLE_USER"
	// RoleAdmin grants administrative access
	RoleAdmin RoleName = "ROLE_ADMIN"
	// RoleService is the fixed operational identity used by the shared
	// secret trust path
	RoleService RoleName = "ROLE_SERVICE"
)

// User is the durable user record
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Roles         []*Role    `bun:"m2m:user_roles,join:User=Role" json:"roles,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// RoleNames flattens the role relation into a set of role names
func (u *User) RoleNames() []string {
	if u == nil || len(u.Roles) == 0 {
		return nil
	}
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		if role == nil || role.Name == "" {
			continue
		}
		names = append(names, role.Name)
	}
	return names
}

// Role is a grantable role record
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name          string `bun:"name,notnull,unique" json:"name,omitempty"`
}

// UserToRole is the m2m join between users and roles
type UserToRole struct {
	bun.BaseModel `bun:"table:user_roles,alias:utr"`
	UserID        int64 `bun:"user_id,pk" json:"user_id"`
	User          *User `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	RoleID        int64 `bun:"role_id,pk" json:"role_id"`
	Role          *Role `bun:"rel:belongs-to,join:role_id=id" json:"-"`
}
