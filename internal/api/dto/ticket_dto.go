package dto

import (
	"time"

	"github.com/spec-kit/moderation-service/internal/domain"
)

// ChatMessagePayload is one transcript line.
type ChatMessagePayload struct {
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject            string                `json:"subject"`
	Category           domain.TicketCategory `json:"category"`
	ReporterName       string                `json:"reporter_name"`
	ReportedPlayerID   *string               `json:"reported_player_id"`
	ReportedPlayerName *string               `json:"reported_player_name"`
	Messages           []ChatMessagePayload  `json:"messages"`
}

// SuggestedActionView mirrors the model suggestion.
type SuggestedActionView struct {
	PunishmentTypeID string          `json:"punishment_type_id"`
	Severity         domain.Severity `json:"severity"`
}

// AIAnalysisView is the analysis written onto a ticket.
type AIAnalysisView struct {
	Analysis                string               `json:"analysis"`
	SuggestedAction         *SuggestedActionView `json:"suggested_action"`
	WasAppliedAutomatically bool                 `json:"was_applied_automatically"`
	Note                    string               `json:"note,omitempty"`
	CreatedAt               time.Time            `json:"created_at"`
}

// TicketResponse is the staff-facing ticket view.
type TicketResponse struct {
	ID                 string                `json:"id"`
	Subject            string                `json:"subject"`
	Category           domain.TicketCategory `json:"category"`
	ReporterName       string                `json:"reporter_name"`
	ReportedPlayerID   *string               `json:"reported_player_id,omitempty"`
	ReportedPlayerName *string               `json:"reported_player_name,omitempty"`
	Messages           []ChatMessagePayload  `json:"messages"`
	AnalysisState      domain.AnalysisState  `json:"analysis_state,omitempty"`
	AIAnalysis         *AIAnalysisView       `json:"ai_analysis,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}
