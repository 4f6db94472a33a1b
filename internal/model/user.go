package model

import "time"

// User represents a student account as stored in the `users` table.  Each
// field corresponds to a column.  JSON tags are omitted because these
// structs are used internally by the repository layer; handlers define
// separate response types with appropriate tags.
//
// Fields:
//  ID            – primary key identifier of the user.
//  StudentNumber – unique student number used as the login identifier.
//  PasswordHash  – bcrypt hashed password.
//  Role          – "user" for students, "admin" for staff dashboards.
//  CreatedAt     – timestamp of account creation.
type User struct {
    ID            uint64    // users.user_id
    StudentNumber string    // users.student_number
    PasswordHash  string    // users.password_hash
    Role          string    // users.role
    CreatedAt     time.Time // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each refresh
// token belongs to a user and carries metadata for expiry and revocation.
// The plain token is never stored; only its SHA-256 hash.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
