package observability

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type AuditInput struct {
	EventName  string
	ActorID    string
	TargetType string
	TargetID   string
	Action     string
	Outcome    string
	Reason     string
}

// EmitAudit writes a structured audit record for a moderation or account
// action. Extra key/value pairs are appended verbatim.
func EmitAudit(r *http.Request, in AuditInput, kv ...any) {
	attrs := []any{
		"event", in.EventName,
		"actor_id", in.ActorID,
		"target_type", in.TargetType,
		"target_id", in.TargetID,
		"action", in.Action,
		"outcome", in.Outcome,
		"reason", in.Reason,
		"request_id", chimiddleware.GetReqID(r.Context()),
	}
	attrs = append(attrs, kv...)
	slog.Default().InfoContext(r.Context(), "audit", attrs...)
}
