package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/spec-kit/moderation-service/internal/domain"
	"github.com/spec-kit/moderation-service/internal/events"
	"github.com/spec-kit/moderation-service/internal/moderation"
	"github.com/spec-kit/moderation-service/internal/observability"
	"github.com/spec-kit/moderation-service/internal/repository"
	apperrors "github.com/spec-kit/moderation-service/pkg/util"
)

// PunishmentService applies punishments atomically and auditable. It is
// invoked by manual staff actions and by the moderation orchestrator.
type PunishmentService struct {
	players    repository.PlayerRepository
	catalog    repository.CatalogRepository
	settings   moderation.SettingsProvider
	audit      repository.AuditLogRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// PunishmentDependencies bundles collaborators for the service.
type PunishmentDependencies struct {
	PlayerRepo  repository.PlayerRepository
	CatalogRepo repository.CatalogRepository
	Settings    moderation.SettingsProvider
	AuditRepo   repository.AuditLogRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewPunishmentService constructs the service.
func NewPunishmentService(deps PunishmentDependencies) *PunishmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PunishmentService{
		players:    deps.PlayerRepo,
		catalog:    deps.CatalogRepo,
		settings:   deps.Settings,
		audit:      deps.AuditRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// ApplyPunishmentInput describes one punishment to apply.
type ApplyPunishmentInput struct {
	PlayerIdentifier string
	PunishmentTypeID string
	Severity         domain.Severity
	Reason           string
	OriginTicketID   string
	IssuerName       string
	Automated        bool
	AIGenerated      bool
}

// ApplyPunishmentResult reports the applied outcome.
type ApplyPunishmentResult struct {
	PunishmentID string
	PlayerUUID   string
	Kind         domain.PunishmentKind
	DurationMs   int64
	Points       int
	OffenseLevel domain.OffenseLevel
}

// ApplyPunishment classifies the player, resolves the concrete outcome
// and appends exactly one punishment to the player document. NotFound
// failures abort before any write.
func (s *PunishmentService) ApplyPunishment(ctx context.Context, input ApplyPunishmentInput) (*ApplyPunishmentResult, error) {
	types, err := s.catalog.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	catalog := moderation.NewCatalog(types)
	punishmentType, ok := catalog.ByID(input.PunishmentTypeID)
	if !ok {
		return nil, apperrors.NewNotFound("punishment type", map[string]any{"id": input.PunishmentTypeID})
	}

	player, err := s.resolvePlayer(ctx, input.PlayerIdentifier)
	if err != nil {
		return nil, err
	}

	thresholds, err := s.settings.Thresholds(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.now()
	status := moderation.Classify(player.Punishments, catalog, thresholds, now)
	tier := moderation.RelevantTier(status, punishmentType.Category)
	level := moderation.LevelForTier(tier)

	resolution, err := moderation.Resolve(punishmentType, input.Severity, level)
	if err != nil {
		return nil, err
	}

	punishment := buildPunishment(punishmentType, input, resolution, now)

	if err := s.players.AppendPunishment(ctx, player.UUID, punishment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFound("player", map[string]any{"uuid": player.UUID})
		}
		return nil, apperrors.NewPersistenceError(err)
	}

	s.recordAudit(ctx, &repository.AuditEntry{
		IssuerName: input.IssuerName,
		TargetUUID: player.UUID,
		Action:     "punishment_applied",
		Detail:     string(resolution.Kind) + ": " + input.Reason,
		TicketID:   optionalString(input.OriginTicketID),
	})

	s.metrics.RecordPunishment(resolution.Kind, input.Automated)
	s.publishEvent(ctx, events.Event{
		Type: events.EventPunishmentApplied,
		Payload: events.PunishmentAppliedPayload{
			PunishmentID: punishment.ID,
			PlayerUUID:   player.UUID,
			TypeOrdinal:  punishmentType.Ordinal,
			Kind:         resolution.Kind,
			DurationMs:   resolution.DurationMs,
			IssuerName:   input.IssuerName,
			TicketID:     optionalString(input.OriginTicketID),
			Automated:    input.Automated,
		},
	})

	return &ApplyPunishmentResult{
		PunishmentID: punishment.ID,
		PlayerUUID:   player.UUID,
		Kind:         resolution.Kind,
		DurationMs:   resolution.DurationMs,
		Points:       resolution.Points,
		OffenseLevel: level,
	}, nil
}

// Pardon appends a pardon modification; punishments are never deleted.
func (s *PunishmentService) Pardon(ctx context.Context, playerIdentifier, punishmentID, issuerName, comment string) error {
	player, err := s.resolvePlayer(ctx, playerIdentifier)
	if err != nil {
		return err
	}

	mod := domain.PunishmentModification{
		Type:       domain.ModificationPardon,
		IssuerName: issuerName,
		Comment:    comment,
		CreatedAt:  s.now(),
	}
	if err := s.players.AppendModification(ctx, player.UUID, punishmentID, mod); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NewNotFound("punishment", map[string]any{"id": punishmentID})
		}
		return apperrors.NewPersistenceError(err)
	}

	s.recordAudit(ctx, &repository.AuditEntry{
		IssuerName: issuerName,
		TargetUUID: player.UUID,
		Action:     "punishment_pardoned",
		Detail:     punishmentID + ": " + comment,
	})
	s.publishEvent(ctx, events.Event{
		Type: events.EventPunishmentPardoned,
		Payload: events.PunishmentPardonedPayload{
			PunishmentID: punishmentID,
			PlayerUUID:   player.UUID,
			IssuerName:   issuerName,
		},
	})
	return nil
}

// PlayerStatus is the classification view exposed to staff.
type PlayerStatus struct {
	PlayerUUID  string
	PlayerName  string
	Status      domain.OffenseStatus
	Punishments []domain.Punishment
}

// Status classifies a player from their current history.
func (s *PunishmentService) Status(ctx context.Context, playerIdentifier string) (*PlayerStatus, error) {
	player, err := s.resolvePlayer(ctx, playerIdentifier)
	if err != nil {
		return nil, err
	}
	types, err := s.catalog.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	thresholds, err := s.settings.Thresholds(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	status := moderation.Classify(player.Punishments, moderation.NewCatalog(types), thresholds, s.now())
	return &PlayerStatus{
		PlayerUUID:  player.UUID,
		PlayerName:  player.CurrentName(),
		Status:      status,
		Punishments: player.Punishments,
	}, nil
}

// AuditTrail lists recorded moderation actions against a player, newest
// first. Returns empty when audit logging is disabled.
func (s *PunishmentService) AuditTrail(ctx context.Context, playerIdentifier string, limit int) ([]repository.AuditEntry, error) {
	player, err := s.resolvePlayer(ctx, playerIdentifier)
	if err != nil {
		return nil, err
	}
	if s.audit == nil {
		return nil, nil
	}
	entries, err := s.audit.ListByTarget(ctx, player.UUID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// resolvePlayer looks up by UUID when the identifier has UUID shape and
// otherwise matches historical usernames case-insensitively.
func (s *PunishmentService) resolvePlayer(ctx context.Context, identifier string) (*domain.Player, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, apperrors.NewValidationError("player identifier required", nil)
	}

	var player *domain.Player
	var err error
	if _, parseErr := uuid.Parse(identifier); parseErr == nil {
		player, err = s.players.GetByUUID(ctx, identifier)
	} else {
		player, err = s.players.GetByUsername(ctx, identifier)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFound("player", map[string]any{"identifier": identifier})
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return player, nil
}

// immediateKinds act in-game without waiting for player acknowledgment.
var immediateKinds = map[domain.PunishmentKind]bool{
	domain.KindMute:          true,
	domain.KindBan:           true,
	domain.KindPermanentMute: true,
	domain.KindPermanentBan:  true,
}

func buildPunishment(pt *domain.PunishmentType, input ApplyPunishmentInput, resolution moderation.Resolution, now time.Time) *domain.Punishment {
	punishment := &domain.Punishment{
		ID:          generatePunishmentID(),
		TypeOrdinal: pt.Ordinal,
		IssuerName:  input.IssuerName,
		IssuedAt:    now,
		Data: domain.PunishmentData{
			Reason:      strings.TrimSpace(input.Reason),
			DurationMs:  resolution.DurationMs,
			Severity:    input.Severity,
			Automated:   input.Automated,
			AIGenerated: input.AIGenerated,
		},
	}
	if immediateKinds[resolution.Kind] {
		started := now
		punishment.StartedAt = &started
	}
	if resolution.DurationMs >= 0 {
		expires := now.Add(time.Duration(resolution.DurationMs) * time.Millisecond)
		punishment.Data.ExpiresAt = &expires
	}
	if input.OriginTicketID != "" {
		punishment.AttachedTicketIDs = []string{input.OriginTicketID}
	}
	return punishment
}

func generatePunishmentID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// recordAudit is fire-and-forget: audit failure never rolls back or
// surfaces the punishment.
func (s *PunishmentService) recordAudit(ctx context.Context, entry *repository.AuditEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("action", entry.Action),
			zap.String("target", entry.TargetUUID),
			zap.Error(err),
		)
	}
}

func (s *PunishmentService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
