package domain

// OffenseTier classifies a player per category from accumulated points.
type OffenseTier string

const (
	TierLow      OffenseTier = "LOW"
	TierMedium   OffenseTier = "MEDIUM"
	TierHabitual OffenseTier = "HABITUAL"
)

// Rank orders tiers for priority comparisons (habitual wins).
func (t OffenseTier) Rank() int {
	switch t {
	case TierHabitual:
		return 2
	case TierMedium:
		return 1
	default:
		return 0
	}
}

// OffenseStatus is the per-category classification result.
type OffenseStatus struct {
	Gameplay OffenseTier
	Social   OffenseTier
}

// Player is the punished-player aggregate. Punishments is append-only.
type Player struct {
	UUID                 string
	Usernames            []string
	Punishments          []Punishment
	PendingNotifications []string
}

// CurrentName returns the most recent known username.
func (p *Player) CurrentName() string {
	if len(p.Usernames) == 0 {
		return p.UUID
	}
	return p.Usernames[len(p.Usernames)-1]
}
