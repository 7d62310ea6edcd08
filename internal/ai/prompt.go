// Package ai assembles model instructions and wraps the external
// generative-text service used for chat review.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/moderation-service/internal/domain"
	"github.com/spec-kit/moderation-service/internal/moderation"
	"github.com/spec-kit/moderation-service/internal/repository"
)

const basePrompt = `You are a chat moderation assistant for an online game community.
You will receive a chat transcript and the display name of an accused player.
Review only the accused player's messages against these rules:
- No harassment, hate speech, threats or targeted insults.
- No advertising, phishing links or account trading.
- No spam, flooding or deliberate filter evasion.
- No sharing of other players' personal information.

Reply with exactly one JSON object and no other text:
{
  "analysis": "<2-4 sentence summary of what the accused player did>",
  "suggestedAction": {"punishmentTypeId": "<id from the list below>", "severity": "LOW" | "REGULAR" | "SEVERE"},
  "confidence": <0.0-1.0>
}
Set "suggestedAction" to null when no rule was broken.

Severity guidelines:
- LOW: single borderline message, mild language, first provocation.
- REGULAR: clear rule breach or repeated behavior within the transcript.
- SEVERE: threats, slurs, doxxing, or sustained targeted abuse.`

var defaultPolicies = map[domain.StrictnessLevel]string{
	domain.StrictnessLenient: `Policy: give the accused player the benefit of the doubt. When the ` +
		`transcript is ambiguous or could be read as banter between friends, prefer no action. ` +
		`Only suggest a punishment for unmistakable rule breaches.`,
	domain.StrictnessStandard: `Policy: apply the rules consistently. Suggest a punishment when a ` +
		`rule was clearly broken and no action when it was not. Do not escalate severity beyond ` +
		`what the transcript shows.`,
	domain.StrictnessStrict: `Policy: the community enforces its rules firmly. Act on borderline ` +
		`cases: when a message plausibly breaks a rule, suggest the matching punishment rather ` +
		`than letting it pass.`,
}

// EnabledType is one AI-eligible catalog entry offered to the model.
type EnabledType struct {
	ID          string
	Category    domain.PunishmentCategory
	Description string
}

// PromptAssembler builds strictness-tuned instructions with the live
// AI-enabled punishment catalog injected before each use.
type PromptAssembler struct {
	catalog  repository.CatalogRepository
	settings moderation.SettingsProvider
}

// NewPromptAssembler constructs the assembler.
func NewPromptAssembler(catalog repository.CatalogRepository, settings moderation.SettingsProvider) *PromptAssembler {
	return &PromptAssembler{catalog: catalog, settings: settings}
}

// Build returns the system instructions for one analysis run.
func (a *PromptAssembler) Build(ctx context.Context) (string, error) {
	aiSettings, err := a.settings.AISettings(ctx)
	if err != nil {
		return "", err
	}
	types, err := a.catalog.List(ctx)
	if err != nil {
		return "", err
	}
	enabled := EnabledTypes(types, aiSettings.TypeBindings)
	override := aiSettings.PromptOverrides[aiSettings.Strictness]
	return AssembleInstructions(aiSettings.Strictness, override, enabled), nil
}

// EnabledTypes joins the catalog with the per-type AI bindings, keeping
// only enabled entries so the model can choose solely from valid options.
func EnabledTypes(types []domain.PunishmentType, bindings map[string]domain.AITypeBinding) []EnabledType {
	var enabled []EnabledType
	for _, pt := range types {
		binding, ok := bindings[pt.ID]
		if !ok || !binding.Enabled {
			continue
		}
		description := binding.Description
		if description == "" {
			description = pt.Name
		}
		enabled = append(enabled, EnabledType{
			ID:          pt.ID,
			Category:    pt.Category,
			Description: description,
		})
	}
	return enabled
}

// AssembleInstructions combines the base block, the strictness policy
// (a persisted override takes precedence over the built-in text) and the
// injected punishment options.
func AssembleInstructions(strictness domain.StrictnessLevel, override string, types []EnabledType) string {
	policy := strings.TrimSpace(override)
	if policy == "" {
		policy = defaultPolicies[strictness]
		if policy == "" {
			policy = defaultPolicies[domain.StrictnessStandard]
		}
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\n")
	b.WriteString(policy)
	b.WriteString("\n\nAvailable punishment types (use punishmentTypeId exactly as listed):\n")
	if len(types) == 0 {
		b.WriteString("- none; respond with \"suggestedAction\": null\n")
	}
	for _, t := range types {
		b.WriteString(fmt.Sprintf("- id=%s category=%s: %s\n", t.ID, t.Category, t.Description))
	}
	return b.String()
}
