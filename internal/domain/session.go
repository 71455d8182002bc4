package domain

import (
	"encoding/json"
	"time"
)

type SessionState string

const (
	StateLoggedOut        SessionState = "logged_out"
	StateAuthenticating   SessionState = "authenticating"
	StateChallengePending SessionState = "challenge_pending"
	StateLoggedIn         SessionState = "logged_in"
)

// Session is the opaque authentication state of one account.
type Session struct {
	Username string          `json:"username"`
	UserID   string          `json:"user_id,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
	SavedAt  time.Time       `json:"saved_at,omitempty"`
	// Legacy is set when the session was read from an unencrypted file.
	Legacy bool `json:"-"`
}

type AccountStatus struct {
	Username string
	Role     Role
	State    SessionState
	Cache    *CacheSummary
}
