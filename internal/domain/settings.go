package domain

import "time"

// StrictnessLevel tunes the AI moderation policy.
type StrictnessLevel string

const (
	StrictnessLenient  StrictnessLevel = "LENIENT"
	StrictnessStandard StrictnessLevel = "STANDARD"
	StrictnessStrict   StrictnessLevel = "STRICT"
)

// ValidStrictness reports whether l is a known strictness level.
func ValidStrictness(l StrictnessLevel) bool {
	return l == StrictnessLenient || l == StrictnessStandard || l == StrictnessStrict
}

// AITypeBinding gates one punishment type for AI use, keyed by type id.
type AITypeBinding struct {
	Enabled     bool
	Description string
}

// AIModerationSettings controls the automated moderation pipeline.
type AIModerationSettings struct {
	EnableAutomatedActions bool
	Strictness             StrictnessLevel
	TypeBindings           map[string]AITypeBinding
	PromptOverrides        map[StrictnessLevel]string
}

// CategoryThresholds are the tier cutoffs for one category.
type CategoryThresholds struct {
	MediumPoints   int
	HabitualPoints int
}

// Classify maps an active point total to a tier.
func (t CategoryThresholds) Classify(points int) OffenseTier {
	if points >= t.HabitualPoints {
		return TierHabitual
	}
	if points >= t.MediumPoints {
		return TierMedium
	}
	return TierLow
}

// StatusThresholds holds tier cutoffs per offense category.
type StatusThresholds struct {
	Gameplay CategoryThresholds
	Social   CategoryThresholds
}

// ModerationSettings is the persisted settings document.
type ModerationSettings struct {
	AI         AIModerationSettings
	Thresholds StatusThresholds
	UpdatedAt  time.Time
}

// DefaultModerationSettings returns the settings used before any staff
// member has saved the settings form.
func DefaultModerationSettings() *ModerationSettings {
	return &ModerationSettings{
		AI: AIModerationSettings{
			EnableAutomatedActions: false,
			Strictness:             StrictnessStandard,
			TypeBindings:           map[string]AITypeBinding{},
			PromptOverrides:        map[StrictnessLevel]string{},
		},
		Thresholds: StatusThresholds{
			Gameplay: CategoryThresholds{MediumPoints: 10, HabitualPoints: 25},
			Social:   CategoryThresholds{MediumPoints: 10, HabitualPoints: 25},
		},
	}
}
