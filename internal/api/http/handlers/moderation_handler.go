package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/moderation-service/internal/api/dto"
	"github.com/spec-kit/moderation-service/internal/domain"
	"github.com/spec-kit/moderation-service/internal/repository"
	apperrors "github.com/spec-kit/moderation-service/pkg/util"
)

// ModerationHandler exposes moderation settings and the catalog listing.
type ModerationHandler struct {
	settings repository.SettingsRepository
	catalog  repository.CatalogRepository
}

// NewModerationHandler constructs handler.
func NewModerationHandler(settings repository.SettingsRepository, catalog repository.CatalogRepository) *ModerationHandler {
	return &ModerationHandler{settings: settings, catalog: catalog}
}

// GetSettings GET /moderation/settings.
func (h *ModerationHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.settings.Get(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": settingsPayload(settings)})
}

// UpdateSettings PUT /moderation/settings.
func (h *ModerationHandler) UpdateSettings(c *fiber.Ctx) error {
	var req dto.ModerationSettingsPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !domain.ValidStrictness(req.StrictnessLevel) {
		return apperrors.NewValidationError("invalid strictness_level", map[string]any{"strictness_level": string(req.StrictnessLevel)})
	}
	if req.GameplayThresholds.MediumPointThreshold > req.GameplayThresholds.HabitualPointThreshold ||
		req.SocialThresholds.MediumPointThreshold > req.SocialThresholds.HabitualPointThreshold {
		return apperrors.NewValidationError("habitual threshold must not be below medium threshold", nil)
	}

	settings := &domain.ModerationSettings{
		AI: domain.AIModerationSettings{
			EnableAutomatedActions: req.EnableAutomatedActions,
			Strictness:             req.StrictnessLevel,
			TypeBindings:           map[string]domain.AITypeBinding{},
			PromptOverrides:        map[domain.StrictnessLevel]string{},
		},
		Thresholds: domain.StatusThresholds{
			Gameplay: domain.CategoryThresholds{
				MediumPoints:   req.GameplayThresholds.MediumPointThreshold,
				HabitualPoints: req.GameplayThresholds.HabitualPointThreshold,
			},
			Social: domain.CategoryThresholds{
				MediumPoints:   req.SocialThresholds.MediumPointThreshold,
				HabitualPoints: req.SocialThresholds.HabitualPointThreshold,
			},
		},
	}
	for id, binding := range req.TypeBindings {
		settings.AI.TypeBindings[id] = domain.AITypeBinding{
			Enabled:     binding.Enabled,
			Description: binding.Description,
		}
	}
	for level, override := range req.PromptOverrides {
		settings.AI.PromptOverrides[domain.StrictnessLevel(level)] = override
	}

	if err := h.settings.Update(c.Context(), settings); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return c.JSON(fiber.Map{"data": settingsPayload(settings)})
}

// ListCatalog GET /moderation/catalog.
func (h *ModerationHandler) ListCatalog(c *fiber.Ctx) error {
	types, err := h.catalog.List(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}
	views := make([]dto.PunishmentTypeView, 0, len(types))
	for _, pt := range types {
		_, single := pt.Scale.(domain.SingleSeverityScale)
		views = append(views, dto.PunishmentTypeView{
			ID:             pt.ID,
			Ordinal:        pt.Ordinal,
			Name:           pt.Name,
			Category:       pt.Category,
			Customizable:   pt.Customizable,
			SingleSeverity: single,
		})
	}
	return c.JSON(fiber.Map{"data": views})
}

func settingsPayload(settings *domain.ModerationSettings) dto.ModerationSettingsPayload {
	payload := dto.ModerationSettingsPayload{
		EnableAutomatedActions: settings.AI.EnableAutomatedActions,
		StrictnessLevel:        settings.AI.Strictness,
		TypeBindings:           map[string]dto.TypeBindingPayload{},
		PromptOverrides:        map[string]string{},
		GameplayThresholds: dto.ThresholdsPayload{
			MediumPointThreshold:   settings.Thresholds.Gameplay.MediumPoints,
			HabitualPointThreshold: settings.Thresholds.Gameplay.HabitualPoints,
		},
		SocialThresholds: dto.ThresholdsPayload{
			MediumPointThreshold:   settings.Thresholds.Social.MediumPoints,
			HabitualPointThreshold: settings.Thresholds.Social.HabitualPoints,
		},
		UpdatedAt: settings.UpdatedAt,
	}
	for id, binding := range settings.AI.TypeBindings {
		payload.TypeBindings[id] = dto.TypeBindingPayload{
			Enabled:     binding.Enabled,
			Description: binding.Description,
		}
	}
	for level, override := range settings.AI.PromptOverrides {
		payload.PromptOverrides[string(level)] = override
	}
	return payload
}
