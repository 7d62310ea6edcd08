package ai

import (
	"strings"
	"testing"

	"github.com/spec-kit/moderation-service/internal/domain"
)

func sampleTypes() []domain.PunishmentType {
	return []domain.PunishmentType{
		{ID: "spam", Name: "Spam", Category: domain.CategorySocial},
		{ID: "harassment", Name: "Harassment", Category: domain.CategorySocial},
		{ID: "cheating", Name: "Cheating", Category: domain.CategoryGameplay},
	}
}

func TestEnabledTypesFiltersOnBindings(t *testing.T) {
	bindings := map[string]domain.AITypeBinding{
		"spam":       {Enabled: true, Description: "unsolicited advertising or flooding"},
		"harassment": {Enabled: false},
	}
	enabled := EnabledTypes(sampleTypes(), bindings)
	if len(enabled) != 1 {
		t.Fatalf("enabled = %d types, want 1", len(enabled))
	}
	if enabled[0].ID != "spam" || enabled[0].Description != "unsolicited advertising or flooding" {
		t.Errorf("enabled[0] = %+v", enabled[0])
	}
}

func TestEnabledTypesFallsBackToName(t *testing.T) {
	bindings := map[string]domain.AITypeBinding{
		"cheating": {Enabled: true},
	}
	enabled := EnabledTypes(sampleTypes(), bindings)
	if len(enabled) != 1 || enabled[0].Description != "Cheating" {
		t.Errorf("enabled = %+v, want the type name as description", enabled)
	}
}

func TestAssembleInstructionsInjectsTypes(t *testing.T) {
	instructions := AssembleInstructions(domain.StrictnessStrict, "", []EnabledType{
		{ID: "spam", Category: domain.CategorySocial, Description: "advertising"},
	})
	if !strings.Contains(instructions, "id=spam category=SOCIAL: advertising") {
		t.Error("enabled type not listed in the instructions")
	}
	if !strings.Contains(instructions, defaultPolicies[domain.StrictnessStrict]) {
		t.Error("strict policy paragraph missing")
	}
	if !strings.Contains(instructions, "suggestedAction") {
		t.Error("response contract missing from the instructions")
	}
}

func TestAssembleInstructionsOverrideWins(t *testing.T) {
	override := "Policy: only act on slurs."
	instructions := AssembleInstructions(domain.StrictnessLenient, override, nil)
	if !strings.Contains(instructions, override) {
		t.Error("override paragraph missing")
	}
	if strings.Contains(instructions, defaultPolicies[domain.StrictnessLenient]) {
		t.Error("built-in policy used despite an override")
	}
}

func TestAssembleInstructionsEmptyCatalog(t *testing.T) {
	instructions := AssembleInstructions(domain.StrictnessStandard, "", nil)
	if !strings.Contains(instructions, `- none; respond with "suggestedAction": null`) {
		t.Error("empty catalog marker missing")
	}
}

func TestAssembleInstructionsUnknownStrictness(t *testing.T) {
	instructions := AssembleInstructions(domain.StrictnessLevel("BOGUS"), "", nil)
	if !strings.Contains(instructions, defaultPolicies[domain.StrictnessStandard]) {
		t.Error("unknown strictness must fall back to the standard policy")
	}
}
