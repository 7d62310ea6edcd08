package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/moderation-service/internal/api/dto"
	"github.com/spec-kit/moderation-service/internal/domain"
	"github.com/spec-kit/moderation-service/internal/service"
	apperrors "github.com/spec-kit/moderation-service/pkg/util"
)

// TicketsHandler manages the ticket endpoints this service owns.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.ReporterName) == "" {
		return apperrors.NewValidationError("subject and reporter_name required", nil)
	}

	messages := make([]domain.ChatMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if strings.TrimSpace(msg.Message) == "" {
			continue
		}
		messages = append(messages, domain.ChatMessage{
			Username:  msg.Username,
			Message:   msg.Message,
			Timestamp: msg.Timestamp,
		})
	}

	ticket, err := h.service.CreateTicket(c.Context(), service.TicketCreateInput{
		Subject:            req.Subject,
		Category:           req.Category,
		ReporterName:       req.ReporterName,
		ReportedPlayerID:   req.ReportedPlayerID,
		ReportedPlayerName: req.ReportedPlayerName,
		Messages:           messages,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func ticketResponse(t *domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:                 t.ID,
		Subject:            t.Subject,
		Category:           t.Category,
		ReporterName:       t.ReporterName,
		ReportedPlayerID:   t.ReportedPlayerID,
		ReportedPlayerName: t.ReportedPlayerName,
		Messages:           make([]dto.ChatMessagePayload, 0, len(t.Messages)),
		AnalysisState:      t.AnalysisState,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
	for _, msg := range t.Messages {
		resp.Messages = append(resp.Messages, dto.ChatMessagePayload{
			Username:  msg.Username,
			Message:   msg.Message,
			Timestamp: msg.Timestamp,
		})
	}
	if t.AIAnalysis != nil {
		view := &dto.AIAnalysisView{
			Analysis:                t.AIAnalysis.Analysis,
			WasAppliedAutomatically: t.AIAnalysis.WasAppliedAutomatically,
			Note:                    t.AIAnalysis.Note,
			CreatedAt:               t.AIAnalysis.CreatedAt,
		}
		if t.AIAnalysis.SuggestedAction != nil {
			view.SuggestedAction = &dto.SuggestedActionView{
				PunishmentTypeID: t.AIAnalysis.SuggestedAction.PunishmentTypeID,
				Severity:         t.AIAnalysis.SuggestedAction.Severity,
			}
		}
		resp.AIAnalysis = view
	}
	return resp
}
