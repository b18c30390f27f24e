package model

import "time"

// Role types assignable to users. Admins create concerts and receive
// activity-log entries for actions taken against their concerts.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents an application user record as stored in the `users`
// table. A user may carry several roles through the `user_roles` table.
// The json tags are omitted because these structs are used internally by
// the repository layer; the GraphQL layer defines its own output shapes.
//
// Fields:
//  ID           – UUID primary key.
//  Username     – unique display name; also recorded as concerts.created_by.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Roles        – role names loaded from user_roles.
//  CreatedBy    – username of the admin who registered this account, if any.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Roles        []string  // user_roles.type rows for this user
	CreatedBy    string    // users.created_by (empty for self sign-up)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each refresh
// token belongs to a user; only the SHA-256 hash of the raw value is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
