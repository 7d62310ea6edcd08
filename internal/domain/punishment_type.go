package domain

// PunishmentCategory groups punishment types for offense accounting.
type PunishmentCategory string

const (
	CategoryGameplay       PunishmentCategory = "GAMEPLAY"
	CategorySocial         PunishmentCategory = "SOCIAL"
	CategoryAdministrative PunishmentCategory = "ADMINISTRATIVE"
)

// PunishmentKind is the concrete in-game effect of a punishment.
type PunishmentKind string

const (
	KindMute          PunishmentKind = "MUTE"
	KindBan           PunishmentKind = "BAN"
	KindPermanentMute PunishmentKind = "PERMANENT_MUTE"
	KindPermanentBan  PunishmentKind = "PERMANENT_BAN"
)

// IsPermanent reports whether the kind never expires.
func (k PunishmentKind) IsPermanent() bool {
	return k == KindPermanentMute || k == KindPermanentBan
}

// Severity is the low/regular/severe axis of a multi-severity type.
type Severity string

const (
	SeverityLow     Severity = "LOW"
	SeverityRegular Severity = "REGULAR"
	SeveritySevere  Severity = "SEVERE"
)

// ValidSeverity reports whether s is one of the three known severities.
func ValidSeverity(s Severity) bool {
	return s == SeverityLow || s == SeverityRegular || s == SeveritySevere
}

// OffenseLevel indexes a duration track by the offender's escalation step.
type OffenseLevel string

const (
	OffenseFirst    OffenseLevel = "FIRST"
	OffenseMedium   OffenseLevel = "MEDIUM"
	OffenseHabitual OffenseLevel = "HABITUAL"
)

// DurationUnit is the unit of a catalog duration entry.
type DurationUnit string

const (
	UnitSeconds DurationUnit = "SECONDS"
	UnitMinutes DurationUnit = "MINUTES"
	UnitHours   DurationUnit = "HOURS"
	UnitDays    DurationUnit = "DAYS"
	UnitWeeks   DurationUnit = "WEEKS"
	UnitMonths  DurationUnit = "MONTHS"
)

// DurationEntry is one cell of a duration track.
type DurationEntry struct {
	Value int64
	Unit  DurationUnit
	Kind  PunishmentKind
}

// SeverityPoints holds the point cost per severity for a multi-severity type.
type SeverityPoints struct {
	Low     int
	Regular int
	Severe  int
}

// For returns the points owed for the given severity.
func (p SeverityPoints) For(severity Severity) int {
	switch severity {
	case SeverityLow:
		return p.Low
	case SeveritySevere:
		return p.Severe
	default:
		return p.Regular
	}
}

// DurationScale is the tagged union over the two catalog shapes: a full
// severity x offense-level matrix, or a single track indexed by offense
// level only. The resolver switches exhaustively over the two variants.
type DurationScale interface {
	isDurationScale()
}

// MultiSeverityScale is the severity x offense-level duration matrix.
type MultiSeverityScale struct {
	Durations map[Severity]map[OffenseLevel]DurationEntry
	Points    SeverityPoints
}

func (MultiSeverityScale) isDurationScale() {}

// SingleSeverityScale is the one-track variant with a flat point value.
type SingleSeverityScale struct {
	Durations map[OffenseLevel]DurationEntry
	Points    int
}

func (SingleSeverityScale) isDurationScale() {}

// PunishmentType is a catalog definition. Ordinal is the stable storage
// key punishment instances resolve against; ID is the public identifier.
type PunishmentType struct {
	ID           string
	Ordinal      int
	Name         string
	Category     PunishmentCategory
	Customizable bool
	Scale        DurationScale
}

// administrativeOrdinalMax bounds the built-in administrative types.
const administrativeOrdinalMax = 5

// IsAdministrativeOrdinal reports whether ordinal belongs to the built-in
// administrative range, which is never customizable or deletable.
func IsAdministrativeOrdinal(ordinal int) bool {
	return ordinal >= 0 && ordinal <= administrativeOrdinalMax
}
