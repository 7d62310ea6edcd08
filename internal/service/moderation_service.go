package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/moderation-service/internal/ai"
	"github.com/spec-kit/moderation-service/internal/domain"
	"github.com/spec-kit/moderation-service/internal/events"
	"github.com/spec-kit/moderation-service/internal/moderation"
	"github.com/spec-kit/moderation-service/internal/observability"
	"github.com/spec-kit/moderation-service/internal/repository"
	"github.com/spec-kit/moderation-service/internal/worker"
)

// aiIssuerName is recorded on automated punishments.
const aiIssuerName = "AI Moderation"

// analysisTimeout bounds one full pipeline run off the request path.
const analysisTimeout = 2 * time.Minute

// PunishmentApplier is the slice of PunishmentService the orchestrator
// invokes for auto-application.
type PunishmentApplier interface {
	ApplyPunishment(ctx context.Context, input ApplyPunishmentInput) (*ApplyPunishmentResult, error)
}

// InstructionSource builds system instructions for one analysis run.
type InstructionSource interface {
	Build(ctx context.Context) (string, error)
}

// ModerationService drives the per-ticket analysis state machine:
// Created -> Queued -> Analyzing -> AutoApplied | SuggestedOnly | Failed.
type ModerationService struct {
	tickets     repository.TicketRepository
	settings    moderation.SettingsProvider
	assembler   InstructionSource
	client      ai.AnalysisClient
	punishments PunishmentApplier
	queue       *worker.AnalysisQueue
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// ModerationDependencies bundles collaborators for the orchestrator.
type ModerationDependencies struct {
	TicketRepo repository.TicketRepository
	Settings   moderation.SettingsProvider
	Assembler  InstructionSource
	Client     ai.AnalysisClient
	Applier    PunishmentApplier
	Queue      *worker.AnalysisQueue
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewModerationService constructs the orchestrator.
func NewModerationService(deps ModerationDependencies) *ModerationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationService{
		tickets:     deps.TicketRepo,
		settings:    deps.Settings,
		assembler:   deps.Assembler,
		client:      deps.Client,
		punishments: deps.Applier,
		queue:       deps.Queue,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// QueueAnalysis submits a ticket for analysis as a detached task. It
// never blocks the ticket-creation path: ineligible tickets and tickets
// another submission already claimed are skipped, and a full queue
// degrades to a failed analysis note instead of waiting.
func (s *ModerationService) QueueAnalysis(ctx context.Context, ticket *domain.Ticket) (*worker.TaskHandle, bool) {
	if !ticket.Category.AnalysisEligible() || len(ticket.Messages) == 0 {
		return nil, false
	}

	claimed, err := s.tickets.ClaimAnalysis(ctx, ticket.ID)
	if err != nil {
		s.logger.Warn("analysis claim failed", zap.String("ticket", ticket.ID), zap.Error(err))
		return nil, false
	}
	if !claimed {
		return nil, false
	}

	ticketID := ticket.ID
	messages := ticket.Messages
	playerID := ticket.ReportedPlayerID
	playerName := ticket.ReportedPlayerName

	handle, ok := s.queue.Submit(func(taskCtx context.Context) {
		runCtx, cancel := context.WithTimeout(taskCtx, analysisTimeout)
		defer cancel()
		s.AnalyzeTicket(runCtx, ticketID, messages, playerID, playerName)
	})
	if !ok {
		s.logger.Warn("analysis queue full", zap.String("ticket", ticketID))
		s.finish(ctx, ticketID, domain.AnalysisFailed, &domain.AIAnalysis{
			Analysis:  "Analysis was not run: the review queue was full.",
			CreatedAt: s.now(),
		})
		return nil, false
	}
	return handle, true
}

// AnalyzeTicket runs one full analysis and writes the result back onto
// the ticket regardless of terminal state.
func (s *ModerationService) AnalyzeTicket(ctx context.Context, ticketID string, messages []domain.ChatMessage, playerID, playerName *string) {
	if err := s.tickets.SetAnalysisState(ctx, ticketID, domain.AnalysisRunning); err != nil {
		s.logger.Warn("analysis state update failed", zap.String("ticket", ticketID), zap.Error(err))
	}

	accusedName := accusedDisplayName(playerID, playerName)

	instructions, err := s.assembler.Build(ctx)
	if err != nil {
		s.finish(ctx, ticketID, domain.AnalysisFailed, &domain.AIAnalysis{
			Analysis:  "Analysis failed before the model was called.",
			Note:      err.Error(),
			CreatedAt: s.now(),
		})
		return
	}

	result, err := s.client.Analyze(ctx, instructions, messages, accusedName)
	if err != nil {
		s.finish(ctx, ticketID, domain.AnalysisFailed, &domain.AIAnalysis{
			Analysis:  "Analysis failed: the review service did not respond.",
			Note:      err.Error(),
			CreatedAt: s.now(),
		})
		return
	}

	analysis := &domain.AIAnalysis{
		Analysis:        result.Analysis,
		SuggestedAction: result.SuggestedAction,
		CreatedAt:       s.now(),
	}
	state := domain.AnalysisSuggestedOnly

	if identifier := playerIdentifier(playerID, playerName); identifier != "" && result.SuggestedAction != nil {
		aiSettings, err := s.settings.AISettings(ctx)
		if err != nil {
			analysis.Note = "automated action skipped: " + err.Error()
		} else if aiSettings.EnableAutomatedActions {
			_, err := s.punishments.ApplyPunishment(ctx, ApplyPunishmentInput{
				PlayerIdentifier: identifier,
				PunishmentTypeID: result.SuggestedAction.PunishmentTypeID,
				Severity:         result.SuggestedAction.Severity,
				Reason:           stringPreview(result.Analysis, 200),
				OriginTicketID:   ticketID,
				IssuerName:       aiIssuerName,
				Automated:        true,
				AIGenerated:      true,
			})
			if err != nil {
				analysis.Note = "automated action failed: " + err.Error()
			} else {
				analysis.WasAppliedAutomatically = true
				state = domain.AnalysisAutoApplied
			}
		}
	}

	s.finish(ctx, ticketID, state, analysis)
}

func (s *ModerationService) finish(ctx context.Context, ticketID string, state domain.AnalysisState, analysis *domain.AIAnalysis) {
	if err := s.tickets.SetAnalysis(ctx, ticketID, state, analysis); err != nil {
		s.logger.Error("analysis writeback failed", zap.String("ticket", ticketID), zap.Error(err))
	}
	s.metrics.RecordAnalysisOutcome(state)
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventAnalysisCompleted,
			Timestamp: s.now(),
			Payload: events.AnalysisCompletedPayload{
				TicketID:      ticketID,
				State:         state,
				AutoApplied:   analysis.WasAppliedAutomatically,
				HasSuggestion: analysis.SuggestedAction != nil,
			},
		})
	}
}

func playerIdentifier(playerID, playerName *string) string {
	if playerID != nil && *playerID != "" {
		return *playerID
	}
	if playerName != nil && *playerName != "" {
		return *playerName
	}
	return ""
}

func accusedDisplayName(playerID, playerName *string) string {
	if playerName != nil && *playerName != "" {
		return *playerName
	}
	if playerID != nil && *playerID != "" {
		return *playerID
	}
	return "unknown player"
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
