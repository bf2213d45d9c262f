package model

import "time"

// Roles carried in the access token's role claim.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an application user record as stored in the
// `users` table. Accounts are created by the sign-in flow, which lives
// outside this service; here users are only read to resolve names,
// post owners and notification fan-out.
//
// Fields:
//
//	ID        – primary key identifier of the user.
//	Name      – display name shown next to posts and reviews.
//	Email     – unique email address.
//	Role      – USER or ADMIN.
//	PushToken – device token for push delivery, nil until the app registers one.
//	CreatedAt – timestamp of creation.
type User struct {
	ID        uint64    // users.id
	Name      string    // users.name
	Email     string    // users.email
	Role      string    // users.role
	PushToken *string   // users.push_token (nullable)
	CreatedAt time.Time // users.created_at
}
