package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type PasswordResetNotification struct {
	Email     string
	Token     string
	ExpiresAt time.Time
	ResetURL  string
}

type PasswordResetNotifier interface {
	SendPasswordReset(ctx context.Context, notification PasswordResetNotification) error
}

// DevPasswordResetNotifier logs the reset link instead of sending mail.
// Local environments read the token from the log stream.
type DevPasswordResetNotifier struct {
	logger *slog.Logger
}

func NewDevPasswordResetNotifier(logger *slog.Logger) *DevPasswordResetNotifier {
	return &DevPasswordResetNotifier{logger: logger}
}

func (n *DevPasswordResetNotifier) SendPasswordReset(ctx context.Context, notification PasswordResetNotification) error {
	link := notification.ResetURL
	if strings.TrimSpace(link) == "" {
		link = fmt.Sprintf("token=%s", notification.Token)
	}
	n.logger.InfoContext(ctx, "password reset token issued",
		"email", notification.Email,
		"expires_at", notification.ExpiresAt,
		"reset", link,
	)
	return nil
}

type ContactRequest struct {
	ListingID    uint
	ListingTitle string
	OwnerEmail   string
	SenderName   string
	SenderEmail  string
	Message      string
}

type ContactNotifier interface {
	SendContactRequest(ctx context.Context, req ContactRequest) error
}

// DevContactNotifier logs inbound buyer inquiries instead of relaying them.
type DevContactNotifier struct {
	logger *slog.Logger
}

func NewDevContactNotifier(logger *slog.Logger) *DevContactNotifier {
	return &DevContactNotifier{logger: logger}
}

func (n *DevContactNotifier) SendContactRequest(ctx context.Context, req ContactRequest) error {
	n.logger.InfoContext(ctx, "contact request received",
		"listing_id", req.ListingID,
		"listing_title", req.ListingTitle,
		"owner_email", req.OwnerEmail,
		"sender_email", req.SenderEmail,
	)
	return nil
}
