package models

import "time"

// AuthEvent kinds recorded in the audit trail.
const (
	EventRegister     = "register"
	EventLogin        = "login"
	EventLoginFailed  = "login_failed"
	EventLogout       = "logout"
	EventGoogleSignUp = "google_signup"
	EventGoogleSignIn = "google_signin"
	EventTokenRefresh = "token_refresh"
)

// AuthEvent is a row in the PostgreSQL auth_events table.
type AuthEvent struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Kind      string    `json:"kind"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
}
