package moderation

import (
	"time"

	"github.com/spec-kit/moderation-service/internal/domain"
)

// Classify computes the per-category offender tier from a player's
// punishment history. Only active punishments contribute points: a pardon
// excludes a punishment, and a finite duration whose issuedAt + duration
// has passed is expired. This expiry is the only point decay applied;
// there is no sliding-window arithmetic.
func Classify(history []domain.Punishment, catalog Catalog, thresholds domain.StatusThresholds, now time.Time) domain.OffenseStatus {
	var gameplayPoints, socialPoints int
	for i := range history {
		p := &history[i]
		if !p.ActiveAt(now) {
			continue
		}
		pt, ok := catalog.ByOrdinal(p.TypeOrdinal)
		if !ok {
			continue
		}
		points := pointsFor(pt, p.Data.Severity)
		switch pt.Category {
		case domain.CategoryGameplay:
			gameplayPoints += points
		case domain.CategorySocial:
			socialPoints += points
		}
	}
	return domain.OffenseStatus{
		Gameplay: thresholds.Gameplay.Classify(gameplayPoints),
		Social:   thresholds.Social.Classify(socialPoints),
	}
}

func pointsFor(pt *domain.PunishmentType, severity domain.Severity) int {
	switch scale := pt.Scale.(type) {
	case domain.MultiSeverityScale:
		return scale.Points.For(severity)
	case domain.SingleSeverityScale:
		return scale.Points
	default:
		return 0
	}
}

// RelevantTier picks the tier that governs escalation for a punishment of
// the given category. Administrative and otherwise uncategorized types
// escalate on the higher of the two category tiers.
func RelevantTier(status domain.OffenseStatus, category domain.PunishmentCategory) domain.OffenseTier {
	switch category {
	case domain.CategoryGameplay:
		return status.Gameplay
	case domain.CategorySocial:
		return status.Social
	default:
		if status.Gameplay.Rank() >= status.Social.Rank() {
			return status.Gameplay
		}
		return status.Social
	}
}

// LevelForTier maps an offense tier onto the matrix offense-level axis.
func LevelForTier(tier domain.OffenseTier) domain.OffenseLevel {
	switch tier {
	case domain.TierHabitual:
		return domain.OffenseHabitual
	case domain.TierMedium:
		return domain.OffenseMedium
	default:
		return domain.OffenseFirst
	}
}
