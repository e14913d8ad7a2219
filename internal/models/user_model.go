package models

import "time"

// Roles a user can be assigned at signup. The role never changes afterwards.
const (
	RoleAdmin    = "Admin"
	RoleResident = "Resident"
)

// User represents a user in the system.
type User struct {
	ID        string    `json:"id" firestore:"-"` // Firebase Auth UID, will be the document ID
	Email     string    `json:"email" firestore:"email"`
	Role      string    `json:"role" firestore:"role"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

// IsAdmin reports whether the actor holds the Admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// TokenClaims are the identity facts extracted from a verified ID token.
type TokenClaims struct {
	UserID string
	Email  string
}

// AuthTokens are returned by the identity provider after a password sign-in.
type AuthTokens struct {
	UserID       string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresIn    int64 // Seconds
}

// Session is what a successful login hands back to the client.
type Session struct {
	UserID       string `json:"uid"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}
