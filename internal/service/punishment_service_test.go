package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/moderation-service/internal/domain"
	"github.com/spec-kit/moderation-service/internal/repository"
	apperrors "github.com/spec-kit/moderation-service/pkg/util"
)

const testPlayerUUID = "5f9c2d1e-1b2a-4c3d-8e4f-0a1b2c3d4e5f"

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[string]*domain.Player
	appends int
}

func newFakePlayerRepo(players ...*domain.Player) *fakePlayerRepo {
	repo := &fakePlayerRepo{players: map[string]*domain.Player{}}
	for _, p := range players {
		repo.players[p.UUID] = p
	}
	return repo
}

func (r *fakePlayerRepo) GetByUUID(_ context.Context, uuid string) (*domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[uuid]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *player
	copied.Punishments = append([]domain.Punishment(nil), player.Punishments...)
	return &copied, nil
}

func (r *fakePlayerRepo) GetByUsername(_ context.Context, name string) (*domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, player := range r.players {
		for _, username := range player.Usernames {
			if username == name {
				copied := *player
				copied.Punishments = append([]domain.Punishment(nil), player.Punishments...)
				return &copied, nil
			}
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakePlayerRepo) AppendPunishment(_ context.Context, uuid string, punishment *domain.Punishment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[uuid]
	if !ok {
		return mongo.ErrNoDocuments
	}
	r.appends++
	player.Punishments = append(player.Punishments, *punishment)
	return nil
}

func (r *fakePlayerRepo) AppendModification(_ context.Context, uuid, punishmentID string, mod domain.PunishmentModification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[uuid]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for i := range player.Punishments {
		if player.Punishments[i].ID == punishmentID {
			player.Punishments[i].Modifications = append(player.Punishments[i].Modifications, mod)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (r *fakePlayerRepo) punishmentCount(uuid string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players[uuid].Punishments)
}

type fakeCatalogRepo struct {
	types []domain.PunishmentType
}

func (r *fakeCatalogRepo) List(context.Context) ([]domain.PunishmentType, error) {
	return r.types, nil
}

type fakeSettings struct {
	thresholds domain.StatusThresholds
	ai         domain.AIModerationSettings
	aiErr      error
}

func (s *fakeSettings) Thresholds(context.Context) (domain.StatusThresholds, error) {
	return s.thresholds, nil
}

func (s *fakeSettings) AISettings(context.Context) (domain.AIModerationSettings, error) {
	return s.ai, s.aiErr
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []repository.AuditEntry
	err     error
}

func (r *fakeAuditRepo) Record(_ context.Context, entry *repository.AuditEntry) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByTarget(context.Context, string, int) ([]repository.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repository.AuditEntry(nil), r.entries...), nil
}

func defaultSettings() *fakeSettings {
	return &fakeSettings{
		thresholds: domain.StatusThresholds{
			Gameplay: domain.CategoryThresholds{MediumPoints: 10, HabitualPoints: 25},
			Social:   domain.CategoryThresholds{MediumPoints: 10, HabitualPoints: 25},
		},
	}
}

func spamType() domain.PunishmentType {
	return domain.PunishmentType{
		ID:       "spam",
		Ordinal:  12,
		Name:     "Spam",
		Category: domain.CategorySocial,
		Scale: domain.MultiSeverityScale{
			Durations: map[domain.Severity]map[domain.OffenseLevel]domain.DurationEntry{
				domain.SeverityRegular: {
					domain.OffenseFirst:  {Value: 1, Unit: domain.UnitHours, Kind: domain.KindMute},
					domain.OffenseMedium: {Value: 1, Unit: domain.UnitDays, Kind: domain.KindMute},
				},
				domain.SeveritySevere: {
					domain.OffenseFirst: {Value: 1, Unit: domain.UnitWeeks, Kind: domain.KindBan},
				},
			},
			Points: domain.SeverityPoints{Low: 1, Regular: 4, Severe: 8},
		},
	}
}

func griefingType() domain.PunishmentType {
	return domain.PunishmentType{
		ID:       "griefing",
		Ordinal:  13,
		Name:     "Griefing",
		Category: domain.CategoryGameplay,
		Scale: domain.SingleSeverityScale{
			Durations: map[domain.OffenseLevel]domain.DurationEntry{
				domain.OffenseFirst:    {Value: 3, Unit: domain.UnitDays, Kind: domain.KindBan},
				domain.OffenseHabitual: {Kind: domain.KindPermanentBan},
			},
			Points: 6,
		},
	}
}

func newTestPunishmentService(players *fakePlayerRepo, audit *fakeAuditRepo) *PunishmentService {
	return NewPunishmentService(PunishmentDependencies{
		PlayerRepo:  players,
		CatalogRepo: &fakeCatalogRepo{types: []domain.PunishmentType{spamType(), griefingType()}},
		Settings:    defaultSettings(),
		AuditRepo:   audit,
	})
}

func testPlayer() *domain.Player {
	return &domain.Player{
		UUID:      testPlayerUUID,
		Usernames: []string{"OldName", "Steve"},
	}
}

func TestApplyPunishmentFirstOffense(t *testing.T) {
	players := newFakePlayerRepo(testPlayer())
	audit := &fakeAuditRepo{}
	svc := newTestPunishmentService(players, audit)

	result, err := svc.ApplyPunishment(context.Background(), ApplyPunishmentInput{
		PlayerIdentifier: testPlayerUUID,
		PunishmentTypeID: "spam",
		Severity:         domain.SeverityRegular,
		Reason:           "chat flooding",
		IssuerName:       "mod1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DurationMs != 3_600_000 {
		t.Errorf("duration = %d ms, want 3600000", result.DurationMs)
	}
	if result.Kind != domain.KindMute {
		t.Errorf("kind = %s, want MUTE", result.Kind)
	}
	if result.OffenseLevel != domain.OffenseFirst {
		t.Errorf("offense level = %s, want FIRST", result.OffenseLevel)
	}
	if got := players.punishmentCount(testPlayerUUID); got != 1 {
		t.Errorf("punishment count = %d, want 1", got)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "punishment_applied" {
		t.Errorf("audit entries = %+v, want one punishment_applied", audit.entries)
	}
}

func TestApplyPunishmentEscalates(t *testing.T) {
	player := testPlayer()
	// Three active regular spam punishments: 12 social points, MEDIUM tier.
	for i := 0; i < 3; i++ {
		player.Punishments = append(player.Punishments, domain.Punishment{
			ID:          "OLD" + string(rune('A'+i)),
			TypeOrdinal: 12,
			IssuedAt:    time.Now().Add(-time.Minute),
			Data:        domain.PunishmentData{Severity: domain.SeverityRegular, DurationMs: domain.PermanentDuration},
		})
	}
	players := newFakePlayerRepo(player)
	svc := newTestPunishmentService(players, &fakeAuditRepo{})

	result, err := svc.ApplyPunishment(context.Background(), ApplyPunishmentInput{
		PlayerIdentifier: testPlayerUUID,
		PunishmentTypeID: "spam",
		Severity:         domain.SeverityRegular,
		Reason:           "still flooding",
		IssuerName:       "mod1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OffenseLevel != domain.OffenseMedium {
		t.Errorf("offense level = %s, want MEDIUM", result.OffenseLevel)
	}
	if result.DurationMs != 86_400_000 {
		t.Errorf("duration = %d ms, want 86400000", result.DurationMs)
	}
}

func TestApplyPunishmentUnknownTypeWritesNothing(t *testing.T) {
	players := newFakePlayerRepo(testPlayer())
	audit := &fakeAuditRepo{}
	svc := newTestPunishmentService(players, audit)

	_, err := svc.ApplyPunishment(context.Background(), ApplyPunishmentInput{
		PlayerIdentifier: testPlayerUUID,
		PunishmentTypeID: "no-such-type",
		Severity:         domain.SeverityRegular,
		IssuerName:       "mod1",
	})
	if !apperrors.IsNotFound(err) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
	if got := players.punishmentCount(testPlayerUUID); got != 0 {
		t.Errorf("punishment count = %d, want 0 after abort", got)
	}
	if len(audit.entries) != 0 {
		t.Errorf("audit entries = %d, want 0 after abort", len(audit.entries))
	}
}

func TestApplyPunishmentUnknownPlayer(t *testing.T) {
	players := newFakePlayerRepo()
	svc := newTestPunishmentService(players, &fakeAuditRepo{})

	_, err := svc.ApplyPunishment(context.Background(), ApplyPunishmentInput{
		PlayerIdentifier: "Steve",
		PunishmentTypeID: "spam",
		Severity:         domain.SeverityRegular,
		IssuerName:       "mod1",
	})
	if !apperrors.IsNotFound(err) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestApplyPunishmentResolvesByUsername(t *testing.T) {
	players := newFakePlayerRepo(testPlayer())
	svc := newTestPunishmentService(players, &fakeAuditRepo{})

	result, err := svc.ApplyPunishment(context.Background(), ApplyPunishmentInput{
		PlayerIdentifier: "OldName",
		PunishmentTypeID: "spam",
		Severity:         domain.SeverityRegular,
		Reason:           "flooding",
		IssuerName:       "mod1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PlayerUUID != testPlayerUUID {
		t.Errorf("player uuid = %s, want %s", result.PlayerUUID, testPlayerUUID)
	}
}

func TestApplyPunishmentAuditFailureNotSurfaced(t *testing.T) {
	players := newFakePlayerRepo(testPlayer())
	audit := &fakeAuditRepo{err: errors.New("postgres down")}
	svc := newTestPunishmentService(players, audit)

	_, err := svc.ApplyPunishment(context.Background(), ApplyPunishmentInput{
		PlayerIdentifier: testPlayerUUID,
		PunishmentTypeID: "spam",
		Severity:         domain.SeverityRegular,
		Reason:           "flooding",
		IssuerName:       "mod1",
	})
	if err != nil {
		t.Fatalf("audit failure surfaced: %v", err)
	}
	if got := players.punishmentCount(testPlayerUUID); got != 1 {
		t.Errorf("punishment count = %d, want 1", got)
	}
}

func TestApplyPunishmentPermanent(t *testing.T) {
	player := testPlayer()
	// Enough gameplay points to reach HABITUAL and the permanent entry.
	for i := 0; i < 5; i++ {
		player.Punishments = append(player.Punishments, domain.Punishment{
			ID:          "OLD" + string(rune('A'+i)),
			TypeOrdinal: 13,
			IssuedAt:    time.Now().Add(-time.Minute),
			Data:        domain.PunishmentData{DurationMs: domain.PermanentDuration},
		})
	}
	players := newFakePlayerRepo(player)
	svc := newTestPunishmentService(players, &fakeAuditRepo{})

	result, err := svc.ApplyPunishment(context.Background(), ApplyPunishmentInput{
		PlayerIdentifier: testPlayerUUID,
		PunishmentTypeID: "griefing",
		Severity:         domain.SeverityRegular,
		Reason:           "repeat griefing",
		IssuerName:       "mod1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != domain.KindPermanentBan {
		t.Errorf("kind = %s, want PERMANENT_BAN", result.Kind)
	}
	if result.DurationMs != domain.PermanentDuration {
		t.Errorf("duration = %d, want %d", result.DurationMs, domain.PermanentDuration)
	}

	stored, _ := players.GetByUUID(context.Background(), testPlayerUUID)
	applied := stored.Punishments[len(stored.Punishments)-1]
	if applied.Data.ExpiresAt != nil {
		t.Error("permanent punishment must not carry an expiry")
	}
	if applied.StartedAt == nil {
		t.Error("ban must start immediately")
	}
}

func TestApplyPunishmentConcurrentAppends(t *testing.T) {
	players := newFakePlayerRepo(testPlayer())
	svc := newTestPunishmentService(players, &fakeAuditRepo{})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApplyPunishment(context.Background(), ApplyPunishmentInput{
				PlayerIdentifier: testPlayerUUID,
				PunishmentTypeID: "spam",
				Severity:         domain.SeverityRegular,
				Reason:           "flooding",
				IssuerName:       "mod1",
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := players.punishmentCount(testPlayerUUID); got != 2 {
		t.Errorf("punishment count = %d, want both appends present", got)
	}
}

func TestPardonAppendsModification(t *testing.T) {
	player := testPlayer()
	player.Punishments = append(player.Punishments, domain.Punishment{
		ID:          "ABC12345",
		TypeOrdinal: 12,
		IssuedAt:    time.Now().Add(-time.Minute),
		Data:        domain.PunishmentData{Severity: domain.SeverityRegular, DurationMs: domain.PermanentDuration},
	})
	players := newFakePlayerRepo(player)
	svc := newTestPunishmentService(players, &fakeAuditRepo{})

	if err := svc.Pardon(context.Background(), testPlayerUUID, "ABC12345", "admin1", "appeal accepted"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := players.GetByUUID(context.Background(), testPlayerUUID)
	if !stored.Punishments[0].Pardoned() {
		t.Error("punishment not pardoned after modification")
	}
	if len(stored.Punishments) != 1 {
		t.Errorf("punishment count = %d, pardons must not delete", len(stored.Punishments))
	}
}

func TestPardonUnknownPunishment(t *testing.T) {
	players := newFakePlayerRepo(testPlayer())
	svc := newTestPunishmentService(players, &fakeAuditRepo{})

	err := svc.Pardon(context.Background(), testPlayerUUID, "MISSING1", "admin1", "oops")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestAuditTrailRecordsActions(t *testing.T) {
	player := testPlayer()
	players := newFakePlayerRepo(player)
	audit := &fakeAuditRepo{}
	svc := newTestPunishmentService(players, audit)

	result, err := svc.ApplyPunishment(context.Background(), ApplyPunishmentInput{
		PlayerIdentifier: testPlayerUUID,
		PunishmentTypeID: "spam",
		Severity:         domain.SeverityRegular,
		Reason:           "flooding",
		IssuerName:       "mod1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Pardon(context.Background(), testPlayerUUID, result.PunishmentID, "admin1", "appeal"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := svc.AuditTrail(context.Background(), testPlayerUUID, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	actions := []string{entries[0].Action, entries[1].Action}
	if actions[0] != "punishment_applied" || actions[1] != "punishment_pardoned" {
		t.Errorf("actions = %v", actions)
	}
}

func TestStatusClassifiesHistory(t *testing.T) {
	player := testPlayer()
	for i := 0; i < 3; i++ {
		player.Punishments = append(player.Punishments, domain.Punishment{
			ID:          "OLD" + string(rune('A'+i)),
			TypeOrdinal: 12,
			IssuedAt:    time.Now().Add(-time.Minute),
			Data:        domain.PunishmentData{Severity: domain.SeverityRegular, DurationMs: domain.PermanentDuration},
		})
	}
	players := newFakePlayerRepo(player)
	svc := newTestPunishmentService(players, &fakeAuditRepo{})

	status, err := svc.Status(context.Background(), "Steve")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Status.Social != domain.TierMedium {
		t.Errorf("social tier = %s, want MEDIUM at 12 points", status.Status.Social)
	}
	if status.PlayerName != "Steve" {
		t.Errorf("player name = %s, want Steve", status.PlayerName)
	}
}
