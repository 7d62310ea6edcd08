package events

import (
	"time"

	"github.com/spec-kit/moderation-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventPunishmentApplied  EventType = "punishment_applied"
	EventPunishmentPardoned EventType = "punishment_pardoned"
	EventAnalysisCompleted  EventType = "analysis_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID     string                `json:"ticket_id"`
	Category     domain.TicketCategory `json:"category"`
	ReporterName string                `json:"reporter_name"`
	MessageCount int                   `json:"message_count"`
}

// PunishmentAppliedPayload payload.
type PunishmentAppliedPayload struct {
	PunishmentID string                `json:"punishment_id"`
	PlayerUUID   string                `json:"player_uuid"`
	TypeOrdinal  int                   `json:"type_ordinal"`
	Kind         domain.PunishmentKind `json:"kind"`
	DurationMs   int64                 `json:"duration_ms"`
	IssuerName   string                `json:"issuer_name"`
	TicketID     *string               `json:"ticket_id,omitempty"`
	Automated    bool                  `json:"automated"`
}

// PunishmentPardonedPayload payload.
type PunishmentPardonedPayload struct {
	PunishmentID string `json:"punishment_id"`
	PlayerUUID   string `json:"player_uuid"`
	IssuerName   string `json:"issuer_name"`
}

// AnalysisCompletedPayload payload.
type AnalysisCompletedPayload struct {
	TicketID      string               `json:"ticket_id"`
	State         domain.AnalysisState `json:"state"`
	AutoApplied   bool                 `json:"auto_applied"`
	HasSuggestion bool                 `json:"has_suggestion"`
}
