package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/moderation-service/internal/api/dto"
	"github.com/spec-kit/moderation-service/internal/auth"
	"github.com/spec-kit/moderation-service/internal/domain"
	"github.com/spec-kit/moderation-service/internal/service"
	apperrors "github.com/spec-kit/moderation-service/pkg/util"
)

// PunishmentsHandler manages staff punishment actions.
type PunishmentsHandler struct {
	service *service.PunishmentService
}

// NewPunishmentsHandler constructs handler.
func NewPunishmentsHandler(punishmentService *service.PunishmentService) *PunishmentsHandler {
	return &PunishmentsHandler{service: punishmentService}
}

// Apply POST /punishments.
func (h *PunishmentsHandler) Apply(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}

	var req dto.ApplyPunishmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.PlayerIdentifier) == "" || req.PunishmentTypeID == "" {
		return apperrors.NewValidationError("player_identifier and punishment_type_id required", nil)
	}
	severity := req.Severity
	if severity == "" {
		severity = domain.SeverityRegular
	}
	if !domain.ValidSeverity(severity) {
		return apperrors.NewValidationError("invalid severity", map[string]any{"severity": string(req.Severity)})
	}

	result, err := h.service.ApplyPunishment(c.Context(), service.ApplyPunishmentInput{
		PlayerIdentifier: req.PlayerIdentifier,
		PunishmentTypeID: req.PunishmentTypeID,
		Severity:         severity,
		Reason:           req.Reason,
		OriginTicketID:   req.TicketID,
		IssuerName:       principal.Staff.Username,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ApplyPunishmentResponse{
		PunishmentID: result.PunishmentID,
		PlayerUUID:   result.PlayerUUID,
		Kind:         result.Kind,
		DurationMs:   result.DurationMs,
		Points:       result.Points,
		OffenseLevel: result.OffenseLevel,
	}})
}

// Pardon POST /punishments/pardon.
func (h *PunishmentsHandler) Pardon(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}

	var req dto.PardonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.PlayerIdentifier) == "" || req.PunishmentID == "" {
		return apperrors.NewValidationError("player_identifier and punishment_id required", nil)
	}

	if err := h.service.Pardon(c.Context(), req.PlayerIdentifier, req.PunishmentID, principal.Staff.Username, req.Comment); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"pardoned": true}})
}

// AuditTrail GET /players/:identifier/audit.
func (h *PunishmentsHandler) AuditTrail(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	entries, err := h.service.AuditTrail(c.Context(), c.Params("identifier"), limit)
	if err != nil {
		return err
	}

	views := make([]dto.AuditEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, dto.AuditEntryView{
			ID:         entry.ID,
			IssuerName: entry.IssuerName,
			TargetUUID: entry.TargetUUID,
			Action:     entry.Action,
			Detail:     entry.Detail,
			TicketID:   entry.TicketID,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": views})
}

// Status GET /players/:identifier/status.
func (h *PunishmentsHandler) Status(c *fiber.Ctx) error {
	status, err := h.service.Status(c.Context(), c.Params("identifier"))
	if err != nil {
		return err
	}

	views := make([]dto.PunishmentView, 0, len(status.Punishments))
	for i := range status.Punishments {
		p := &status.Punishments[i]
		views = append(views, dto.PunishmentView{
			ID:          p.ID,
			TypeOrdinal: p.TypeOrdinal,
			IssuerName:  p.IssuerName,
			IssuedAt:    p.IssuedAt,
			StartedAt:   p.StartedAt,
			Reason:      p.Data.Reason,
			DurationMs:  p.Data.DurationMs,
			ExpiresAt:   p.Data.ExpiresAt,
			Severity:    p.Data.Severity,
			Automated:   p.Data.Automated,
			AIGenerated: p.Data.AIGenerated,
			Pardoned:    p.Pardoned(),
		})
	}
	return c.JSON(fiber.Map{"data": dto.PlayerStatusResponse{
		PlayerUUID:  status.PlayerUUID,
		PlayerName:  status.PlayerName,
		Gameplay:    status.Status.Gameplay,
		Social:      status.Status.Social,
		Punishments: views,
	}})
}
