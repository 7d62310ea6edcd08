package domain

import "time"

// TicketCategory enumerates report types for incoming tickets.
type TicketCategory string

const (
	TicketCategoryChatReport   TicketCategory = "CHAT_REPORT"
	TicketCategoryPlayerReport TicketCategory = "PLAYER_REPORT"
	TicketCategoryAppeal       TicketCategory = "APPEAL"
	TicketCategoryGeneral      TicketCategory = "GENERAL"
)

// AnalysisEligible reports whether the category qualifies for AI review.
func (c TicketCategory) AnalysisEligible() bool {
	return c == TicketCategoryChatReport || c == TicketCategoryPlayerReport
}

// AnalysisState tracks the per-ticket moderation pipeline state machine.
type AnalysisState string

const (
	AnalysisNone          AnalysisState = ""
	AnalysisQueued        AnalysisState = "QUEUED"
	AnalysisRunning       AnalysisState = "ANALYZING"
	AnalysisAutoApplied   AnalysisState = "AUTO_APPLIED"
	AnalysisSuggestedOnly AnalysisState = "SUGGESTED_ONLY"
	AnalysisFailed        AnalysisState = "FAILED"
)

// ChatMessage is one transcript line attached to a ticket.
type ChatMessage struct {
	Username  string
	Message   string
	Timestamp time.Time
}

// SuggestedAction is the model's proposed punishment.
type SuggestedAction struct {
	PunishmentTypeID string
	Severity         Severity
}

// AIAnalysis is the pipeline result written back onto the ticket for
// staff review, regardless of terminal state.
type AIAnalysis struct {
	Analysis                string
	SuggestedAction         *SuggestedAction
	WasAppliedAutomatically bool
	Note                    string
	CreatedAt               time.Time
}

// Ticket is the trigger source for the moderation pipeline.
type Ticket struct {
	ID                 string
	Subject            string
	Category           TicketCategory
	ReporterName       string
	ReportedPlayerID   *string
	ReportedPlayerName *string
	Messages           []ChatMessage
	AnalysisState      AnalysisState
	AIAnalysis         *AIAnalysis
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
