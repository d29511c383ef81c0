package jobs

import "time"

// PasswordResetEmailPayload carries everything the worker needs to deliver
// a reset link without re-reading the user row.
type PasswordResetEmailPayload struct {
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	ResetToken string    `json:"resetToken"`
	ExpiresAt  time.Time `json:"expiresAt"`
	RequestID  string    `json:"requestId,omitempty"` // optional: correlation
}
