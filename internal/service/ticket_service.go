package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/moderation-service/internal/domain"
	"github.com/spec-kit/moderation-service/internal/events"
	"github.com/spec-kit/moderation-service/internal/repository"
	apperrors "github.com/spec-kit/moderation-service/pkg/util"
)

// TicketService covers the slice of ticket handling this service owns:
// creation as the analysis trigger, and reads for staff review. Full
// ticket workflows live in the main panel.
type TicketService struct {
	tickets    repository.TicketRepository
	moderation *ModerationService
	dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, moderationService *ModerationService, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{tickets: tickets, moderation: moderationService, dispatcher: dispatcher}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject            string
	Category           domain.TicketCategory
	ReporterName       string
	ReportedPlayerID   *string
	ReportedPlayerName *string
	Messages           []domain.ChatMessage
}

// CreateTicket persists a ticket and queues AI analysis when eligible.
// The creation response never waits on analysis.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		ID:                 generateTicketKey(),
		Subject:            strings.TrimSpace(input.Subject),
		Category:           input.Category,
		ReporterName:       strings.TrimSpace(input.ReporterName),
		ReportedPlayerID:   input.ReportedPlayerID,
		ReportedPlayerName: input.ReportedPlayerName,
		Messages:           input.Messages,
	}
	if ticket.Category == "" {
		ticket.Category = domain.TicketCategoryGeneral
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventTicketCreated,
		Payload: events.TicketCreatedPayload{
			TicketID:     ticket.ID,
			Category:     ticket.Category,
			ReporterName: ticket.ReporterName,
			MessageCount: len(ticket.Messages),
		},
	})

	if s.moderation != nil {
		s.moderation.QueueAnalysis(ctx, ticket)
	}
	return ticket, nil
}

// GetTicket fetches a ticket with its analysis for staff review.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
