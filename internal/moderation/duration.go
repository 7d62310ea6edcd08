package moderation

import (
	"fmt"
	"strconv"

	"github.com/spec-kit/moderation-service/internal/domain"
	apperrors "github.com/spec-kit/moderation-service/pkg/util"
)

// Millisecond factors per duration unit. Months use the 30-day convention.
var unitMillis = map[domain.DurationUnit]int64{
	domain.UnitSeconds: 1000,
	domain.UnitMinutes: 60_000,
	domain.UnitHours:   3_600_000,
	domain.UnitDays:    86_400_000,
	domain.UnitWeeks:   604_800_000,
	domain.UnitMonths:  2_592_000_000,
}

// Resolution is the concrete outcome owed for a punishment.
type Resolution struct {
	DurationMs int64
	Kind       domain.PunishmentKind
	Points     int
}

// ResolveOrdinal resolves by catalog ordinal and fails closed when the
// ordinal is unknown: the caller must abort rather than guess values.
func ResolveOrdinal(catalog Catalog, ordinal int, severity domain.Severity, level domain.OffenseLevel) (Resolution, error) {
	pt, ok := catalog.ByOrdinal(ordinal)
	if !ok {
		return Resolution{}, apperrors.NewNotFound("punishment type", map[string]any{"ordinal": strconv.Itoa(ordinal)})
	}
	return Resolve(pt, severity, level)
}

// Resolve maps (type, severity, offense level) to duration, kind and
// points. The chosen severity is ignored for single-severity types. A
// missing offense-level entry falls back to the first-offense entry.
func Resolve(pt *domain.PunishmentType, severity domain.Severity, level domain.OffenseLevel) (Resolution, error) {
	switch scale := pt.Scale.(type) {
	case domain.MultiSeverityScale:
		track, ok := scale.Durations[severity]
		if !ok {
			return Resolution{}, apperrors.NewValidationError(
				fmt.Sprintf("type %q has no duration track for severity %s", pt.ID, severity), nil)
		}
		entry, err := entryWithFallback(track, level, pt.ID)
		if err != nil {
			return Resolution{}, err
		}
		return resolution(entry, scale.Points.For(severity)), nil
	case domain.SingleSeverityScale:
		entry, err := entryWithFallback(scale.Durations, level, pt.ID)
		if err != nil {
			return Resolution{}, err
		}
		return resolution(entry, scale.Points), nil
	default:
		return Resolution{}, apperrors.NewInternalError(
			fmt.Errorf("type %q has an unknown duration scale %T", pt.ID, pt.Scale))
	}
}

func entryWithFallback(track map[domain.OffenseLevel]domain.DurationEntry, level domain.OffenseLevel, typeID string) (domain.DurationEntry, error) {
	if entry, ok := track[level]; ok {
		return entry, nil
	}
	if entry, ok := track[domain.OffenseFirst]; ok {
		return entry, nil
	}
	return domain.DurationEntry{}, apperrors.NewValidationError(
		fmt.Sprintf("type %q has no duration entry for offense level %s", typeID, level), nil)
}

func resolution(entry domain.DurationEntry, points int) Resolution {
	duration := domain.PermanentDuration
	if !entry.Kind.IsPermanent() {
		duration = entry.Value * unitMillis[entry.Unit]
	}
	return Resolution{DurationMs: duration, Kind: entry.Kind, Points: points}
}
