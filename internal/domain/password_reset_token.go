package domain

import "time"

// PasswordResetToken holds only the sha256 of the raw token; the raw value
// leaves the process exclusively through the reset notifier. At most one
// live token exists per email.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;index" json:"email"`
	TokenHash string    `gorm:"size:128;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
