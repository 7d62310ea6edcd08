package dto

import (
	"time"

	"github.com/spec-kit/moderation-service/internal/domain"
)

// ApplyPunishmentRequest payload.
type ApplyPunishmentRequest struct {
	PlayerIdentifier string          `json:"player_identifier"`
	PunishmentTypeID string          `json:"punishment_type_id"`
	Severity         domain.Severity `json:"severity"`
	Reason           string          `json:"reason"`
	TicketID         string          `json:"ticket_id"`
}

// ApplyPunishmentResponse reports the applied outcome.
type ApplyPunishmentResponse struct {
	PunishmentID string                `json:"punishment_id"`
	PlayerUUID   string                `json:"player_uuid"`
	Kind         domain.PunishmentKind `json:"kind"`
	DurationMs   int64                 `json:"duration_ms"`
	Points       int                   `json:"points"`
	OffenseLevel domain.OffenseLevel   `json:"offense_level"`
}

// PardonRequest payload.
type PardonRequest struct {
	PlayerIdentifier string `json:"player_identifier"`
	PunishmentID     string `json:"punishment_id"`
	Comment          string `json:"comment"`
}

// PunishmentView is one history entry.
type PunishmentView struct {
	ID          string          `json:"id"`
	TypeOrdinal int             `json:"type_ordinal"`
	IssuerName  string          `json:"issuer_name"`
	IssuedAt    time.Time       `json:"issued_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	Reason      string          `json:"reason"`
	DurationMs  int64           `json:"duration_ms"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	Severity    domain.Severity `json:"severity,omitempty"`
	Automated   bool            `json:"automated"`
	AIGenerated bool            `json:"ai_generated"`
	Pardoned    bool            `json:"pardoned"`
}

// PlayerStatusResponse is the classification view.
type PlayerStatusResponse struct {
	PlayerUUID  string             `json:"player_uuid"`
	PlayerName  string             `json:"player_name"`
	Gameplay    domain.OffenseTier `json:"gameplay_tier"`
	Social      domain.OffenseTier `json:"social_tier"`
	Punishments []PunishmentView   `json:"punishments"`
}

// AuditEntryView is one audit trail record.
type AuditEntryView struct {
	ID         int64     `json:"id"`
	IssuerName string    `json:"issuer_name"`
	TargetUUID string    `json:"target_uuid"`
	Action     string    `json:"action"`
	Detail     string    `json:"detail"`
	TicketID   *string   `json:"ticket_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TypeBindingPayload is the per-type AI gate.
type TypeBindingPayload struct {
	Enabled     bool   `json:"enabled"`
	Description string `json:"ai_description"`
}

// ThresholdsPayload mirrors one category's tier cutoffs.
type ThresholdsPayload struct {
	MediumPointThreshold   int `json:"medium_point_threshold"`
	HabitualPointThreshold int `json:"habitual_point_threshold"`
}

// ModerationSettingsPayload is the settings read/write shape.
type ModerationSettingsPayload struct {
	EnableAutomatedActions bool                          `json:"enable_automated_actions"`
	StrictnessLevel        domain.StrictnessLevel        `json:"strictness_level"`
	TypeBindings           map[string]TypeBindingPayload `json:"type_bindings"`
	PromptOverrides        map[string]string             `json:"prompt_overrides,omitempty"`
	GameplayThresholds     ThresholdsPayload             `json:"gameplay_thresholds"`
	SocialThresholds       ThresholdsPayload             `json:"social_thresholds"`
	UpdatedAt              time.Time                     `json:"updated_at,omitempty"`
}

// PunishmentTypeView is one catalog listing entry.
type PunishmentTypeView struct {
	ID             string                    `json:"id"`
	Ordinal        int                       `json:"ordinal"`
	Name           string                    `json:"name"`
	Category       domain.PunishmentCategory `json:"category"`
	Customizable   bool                      `json:"customizable"`
	SingleSeverity bool                      `json:"single_severity"`
}
