package domain

import "time"

// PermanentDuration marks a punishment that never expires.
const PermanentDuration int64 = -1

// ModificationType enumerates post-issue amendments.
type ModificationType string

const (
	ModificationPardon    ModificationType = "PARDON"
	ModificationReduction ModificationType = "REDUCTION"
)

// PunishmentModification is an append-only amendment to a punishment.
// Punishments are never deleted; pardons and reductions stack here.
type PunishmentModification struct {
	Type          ModificationType
	IssuerName    string
	Comment       string
	NewDurationMs *int64
	CreatedAt     time.Time
}

// PunishmentData carries the resolved outcome of a punishment.
type PunishmentData struct {
	Reason      string
	DurationMs  int64
	ExpiresAt   *time.Time
	Severity    Severity
	Automated   bool
	AIGenerated bool
}

// Punishment is one issued punishment owned by a player. TypeOrdinal
// resolves against the catalog by ordinal, not by type id.
type Punishment struct {
	ID                string
	TypeOrdinal       int
	IssuerName        string
	IssuedAt          time.Time
	StartedAt         *time.Time
	Modifications     []PunishmentModification
	Data              PunishmentData
	AttachedTicketIDs []string
}

// Pardoned reports whether any pardon modification has been appended.
func (p *Punishment) Pardoned() bool {
	for _, mod := range p.Modifications {
		if mod.Type == ModificationPardon {
			return true
		}
	}
	return false
}

// ActiveAt reports whether the punishment still counts toward offense
// points at the given instant. A negative duration never expires.
func (p *Punishment) ActiveAt(now time.Time) bool {
	if p.Pardoned() {
		return false
	}
	if p.Data.DurationMs < 0 {
		return true
	}
	expiry := p.IssuedAt.Add(time.Duration(p.Data.DurationMs) * time.Millisecond)
	return now.Before(expiry)
}
