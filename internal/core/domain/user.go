package domain

// User models a registered account.
//
// Email and phone are optional but unique across all users when present.
// IsActive flips to true once the email address has been confirmed (or at
// registration time when confirmation is disabled). Accounts are never
// physically deleted.
type User struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"-"`
	IsActive     bool   `json:"is_active"`
	IsUser       bool   `json:"is_user"`
	IsAdmin      bool   `json:"is_admin"`
}
