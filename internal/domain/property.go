package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Status is the moderation state of a property listing. Every listing is in
// exactly one of the four states; none of them is terminal.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ParseStatus maps a wire value onto the closed status set. The empty string
// is allowed and means "unspecified" so that submit forms can omit it.
func ParseStatus(raw string) (Status, error) {
	if raw == "" {
		return "", nil
	}
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown listing status %q", raw)
	}
	return s, nil
}

// InitialStatus resolves the state a new listing is created in. Owners can
// ask for DRAFT explicitly; everything else starts the review cycle.
func InitialStatus(requested Status) Status {
	if requested == StatusDraft {
		return StatusDraft
	}
	return StatusPending
}

// NextStatusOnEdit resolves the state a listing moves to when its content is
// saved by someone with edit rights. An explicit DRAFT or PENDING request
// from the submit control wins; otherwise drafts stay drafts and any
// previously moderated listing goes back to PENDING so changed content is
// always re-reviewed.
func NextStatusOnEdit(current, requested Status) Status {
	if requested == StatusDraft || requested == StatusPending {
		return requested
	}
	if current == StatusDraft {
		return StatusDraft
	}
	return StatusPending
}

// ImageURLList is an ordered image sequence persisted as a JSON array column.
// Order is meaningful: the first entry is the cover image.
type ImageURLList []string

func (l ImageURLList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ImageURLList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported image url list source type %T", src)
	}
}

type Property struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Price       int          `gorm:"not null" json:"price"`
	Address     string       `gorm:"size:512;not null" json:"address"`
	ImageURLs   ImageURLList `gorm:"type:text;not null" json:"image_urls"`
	Status      Status       `gorm:"size:16;not null;default:PENDING;index" json:"status"`
	OwnerID     string       `gorm:"size:36;not null;index" json:"owner_id"`
	Owner       *User        `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
