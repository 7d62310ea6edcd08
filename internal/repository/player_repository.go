package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/moderation-service/internal/domain"
)

// PlayerRepository encapsulates player document access. Punishment writes
// are additive array pushes, never read-modify-replace of the document.
type PlayerRepository interface {
	GetByUUID(ctx context.Context, uuid string) (*domain.Player, error)
	GetByUsername(ctx context.Context, name string) (*domain.Player, error)
	AppendPunishment(ctx context.Context, uuid string, punishment *domain.Punishment) error
	AppendModification(ctx context.Context, uuid, punishmentID string, mod domain.PunishmentModification) error
}

type playerRepository struct {
	col *mongo.Collection
}

// NewPlayerRepository instantiates repository.
func NewPlayerRepository(col *mongo.Collection) PlayerRepository {
	return &playerRepository{col: col}
}

type modificationDoc struct {
	Type          string             `bson:"type"`
	IssuerName    string             `bson:"issuerName"`
	Comment       string             `bson:"comment,omitempty"`
	NewDurationMs *int64             `bson:"newDurationMs,omitempty"`
	CreatedAt     primitive.DateTime `bson:"createdAt"`
}

type punishmentDataDoc struct {
	Reason      string              `bson:"reason"`
	DurationMs  int64               `bson:"duration"`
	ExpiresAt   *primitive.DateTime `bson:"expires,omitempty"`
	Severity    string              `bson:"severity,omitempty"`
	Automated   bool                `bson:"automated"`
	AIGenerated bool                `bson:"aiGenerated"`
}

type punishmentDoc struct {
	ID                string              `bson:"id"`
	TypeOrdinal       int                 `bson:"typeOrdinal"`
	IssuerName        string              `bson:"issuerName"`
	IssuedAt          primitive.DateTime  `bson:"issued"`
	StartedAt         *primitive.DateTime `bson:"started,omitempty"`
	Modifications     []modificationDoc   `bson:"modifications"`
	Data              punishmentDataDoc   `bson:"data"`
	AttachedTicketIDs []string            `bson:"attachedTicketIds,omitempty"`
}

type playerDoc struct {
	UUID                 string          `bson:"_id"`
	Usernames            []string        `bson:"usernames"`
	Punishments          []punishmentDoc `bson:"punishments"`
	PendingNotifications []string        `bson:"pendingNotifications,omitempty"`
}

func (r *playerRepository) GetByUUID(ctx context.Context, uuid string) (*domain.Player, error) {
	var doc playerDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": uuid}).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *playerRepository) GetByUsername(ctx context.Context, name string) (*domain.Player, error) {
	// Historical usernames are matched case-insensitively.
	filter := bson.M{"usernames": bson.M{
		"$regex":   "^" + regexp.QuoteMeta(name) + "$",
		"$options": "i",
	}}
	var doc playerDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *playerRepository) AppendPunishment(ctx context.Context, uuid string, punishment *domain.Punishment) error {
	update := bson.M{"$push": bson.M{"punishments": punishmentToDoc(punishment)}}
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": uuid}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *playerRepository) AppendModification(ctx context.Context, uuid, punishmentID string, mod domain.PunishmentModification) error {
	filter := bson.M{"_id": uuid, "punishments.id": punishmentID}
	update := bson.M{"$push": bson.M{"punishments.$.modifications": modificationToDoc(mod)}}
	result, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (d *playerDoc) toDomain() *domain.Player {
	player := &domain.Player{
		UUID:                 d.UUID,
		Usernames:            d.Usernames,
		PendingNotifications: d.PendingNotifications,
	}
	for i := range d.Punishments {
		player.Punishments = append(player.Punishments, *d.Punishments[i].toDomain())
	}
	return player
}

func (d *punishmentDoc) toDomain() *domain.Punishment {
	p := &domain.Punishment{
		ID:                d.ID,
		TypeOrdinal:       d.TypeOrdinal,
		IssuerName:        d.IssuerName,
		IssuedAt:          d.IssuedAt.Time(),
		AttachedTicketIDs: d.AttachedTicketIDs,
		Data: domain.PunishmentData{
			Reason:      d.Data.Reason,
			DurationMs:  d.Data.DurationMs,
			Severity:    domain.Severity(d.Data.Severity),
			Automated:   d.Data.Automated,
			AIGenerated: d.Data.AIGenerated,
		},
	}
	if d.StartedAt != nil {
		started := d.StartedAt.Time()
		p.StartedAt = &started
	}
	if d.Data.ExpiresAt != nil {
		expires := d.Data.ExpiresAt.Time()
		p.Data.ExpiresAt = &expires
	}
	for _, mod := range d.Modifications {
		converted := domain.PunishmentModification{
			Type:          domain.ModificationType(mod.Type),
			IssuerName:    mod.IssuerName,
			Comment:       mod.Comment,
			NewDurationMs: mod.NewDurationMs,
			CreatedAt:     mod.CreatedAt.Time(),
		}
		p.Modifications = append(p.Modifications, converted)
	}
	return p
}

func punishmentToDoc(p *domain.Punishment) punishmentDoc {
	doc := punishmentDoc{
		ID:                p.ID,
		TypeOrdinal:       p.TypeOrdinal,
		IssuerName:        p.IssuerName,
		IssuedAt:          primitive.NewDateTimeFromTime(p.IssuedAt),
		Modifications:     []modificationDoc{},
		AttachedTicketIDs: p.AttachedTicketIDs,
		Data: punishmentDataDoc{
			Reason:      p.Data.Reason,
			DurationMs:  p.Data.DurationMs,
			Severity:    string(p.Data.Severity),
			Automated:   p.Data.Automated,
			AIGenerated: p.Data.AIGenerated,
		},
	}
	if p.StartedAt != nil {
		started := primitive.NewDateTimeFromTime(*p.StartedAt)
		doc.StartedAt = &started
	}
	if p.Data.ExpiresAt != nil {
		expires := primitive.NewDateTimeFromTime(*p.Data.ExpiresAt)
		doc.Data.ExpiresAt = &expires
	}
	for _, mod := range p.Modifications {
		doc.Modifications = append(doc.Modifications, modificationToDoc(mod))
	}
	return doc
}

func modificationToDoc(mod domain.PunishmentModification) modificationDoc {
	created := mod.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return modificationDoc{
		Type:          string(mod.Type),
		IssuerName:    mod.IssuerName,
		Comment:       mod.Comment,
		NewDurationMs: mod.NewDurationMs,
		CreatedAt:     primitive.NewDateTimeFromTime(created),
	}
}
