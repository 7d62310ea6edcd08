package moderation

import (
	"testing"

	"github.com/spec-kit/moderation-service/internal/domain"
	apperrors "github.com/spec-kit/moderation-service/pkg/util"
)

func chatViolationType() *domain.PunishmentType {
	return &domain.PunishmentType{
		ID:       "chat-violation",
		Ordinal:  10,
		Name:     "Chat Violation",
		Category: domain.CategorySocial,
		Scale: domain.MultiSeverityScale{
			Durations: map[domain.Severity]map[domain.OffenseLevel]domain.DurationEntry{
				domain.SeverityLow: {
					domain.OffenseFirst: {Value: 30, Unit: domain.UnitMinutes, Kind: domain.KindMute},
				},
				domain.SeverityRegular: {
					domain.OffenseFirst:  {Value: 24, Unit: domain.UnitHours, Kind: domain.KindMute},
					domain.OffenseMedium: {Value: 3, Unit: domain.UnitDays, Kind: domain.KindMute},
				},
				domain.SeveritySevere: {
					domain.OffenseFirst:    {Value: 1, Unit: domain.UnitMonths, Kind: domain.KindBan},
					domain.OffenseHabitual: {Kind: domain.KindPermanentBan},
				},
			},
			Points: domain.SeverityPoints{Low: 1, Regular: 3, Severe: 7},
		},
	}
}

func cheatingType() *domain.PunishmentType {
	return &domain.PunishmentType{
		ID:       "cheating",
		Ordinal:  20,
		Name:     "Cheating",
		Category: domain.CategoryGameplay,
		Scale: domain.SingleSeverityScale{
			Durations: map[domain.OffenseLevel]domain.DurationEntry{
				domain.OffenseFirst:    {Value: 2, Unit: domain.UnitWeeks, Kind: domain.KindBan},
				domain.OffenseHabitual: {Kind: domain.KindPermanentBan},
			},
			Points: 9,
		},
	}
}

func TestResolveMultiSeverity(t *testing.T) {
	res, err := Resolve(chatViolationType(), domain.SeverityRegular, domain.OffenseFirst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DurationMs != 86_400_000 {
		t.Errorf("24h duration = %d ms, want 86400000", res.DurationMs)
	}
	if res.Kind != domain.KindMute {
		t.Errorf("kind = %s, want MUTE", res.Kind)
	}
	if res.Points != 3 {
		t.Errorf("points = %d, want 3", res.Points)
	}
}

func TestResolveMonthUses30Days(t *testing.T) {
	res, err := Resolve(chatViolationType(), domain.SeveritySevere, domain.OffenseFirst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DurationMs != 2_592_000_000 {
		t.Errorf("1 month duration = %d ms, want 2592000000", res.DurationMs)
	}
	if res.Points != 7 {
		t.Errorf("points = %d, want 7", res.Points)
	}
}

func TestResolveFallsBackToFirstOffense(t *testing.T) {
	// LOW has a FIRST entry only; a HABITUAL lookup must fall back to it.
	res, err := Resolve(chatViolationType(), domain.SeverityLow, domain.OffenseHabitual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DurationMs != 1_800_000 {
		t.Errorf("duration = %d ms, want 1800000", res.DurationMs)
	}
}

func TestResolvePermanentKind(t *testing.T) {
	res, err := Resolve(chatViolationType(), domain.SeveritySevere, domain.OffenseHabitual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DurationMs != domain.PermanentDuration {
		t.Errorf("duration = %d, want %d", res.DurationMs, domain.PermanentDuration)
	}
	if res.Kind != domain.KindPermanentBan {
		t.Errorf("kind = %s, want PERMANENT_BAN", res.Kind)
	}
}

func TestResolveSingleSeverityIgnoresSeverity(t *testing.T) {
	for _, severity := range []domain.Severity{domain.SeverityLow, domain.SeverityRegular, domain.SeveritySevere} {
		res, err := Resolve(cheatingType(), severity, domain.OffenseFirst)
		if err != nil {
			t.Fatalf("severity %s: unexpected error: %v", severity, err)
		}
		if res.DurationMs != 1_209_600_000 {
			t.Errorf("severity %s: duration = %d ms, want 1209600000", severity, res.DurationMs)
		}
		if res.Points != 9 {
			t.Errorf("severity %s: points = %d, want 9", severity, res.Points)
		}
	}
}

func TestResolveMissingSeverityTrack(t *testing.T) {
	pt := &domain.PunishmentType{
		ID: "broken",
		Scale: domain.MultiSeverityScale{
			Durations: map[domain.Severity]map[domain.OffenseLevel]domain.DurationEntry{},
		},
	}
	_, err := Resolve(pt, domain.SeverityRegular, domain.OffenseFirst)
	if err == nil {
		t.Fatal("expected an error for a missing severity track")
	}
}

func TestResolveOrdinalUnknownFailsClosed(t *testing.T) {
	catalog := NewCatalog([]domain.PunishmentType{*chatViolationType()})
	_, err := ResolveOrdinal(catalog, 999, domain.SeverityRegular, domain.OffenseFirst)
	if err == nil {
		t.Fatal("expected an error for an unknown ordinal")
	}
	if !apperrors.IsNotFound(err) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}
