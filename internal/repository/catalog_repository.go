package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/moderation-service/internal/domain"
)

const catalogCacheKey = "moderation:catalog"

// CatalogRepository reads the punishment type catalog. The catalog is
// owned elsewhere; this service only reads it.
type CatalogRepository interface {
	List(ctx context.Context) ([]domain.PunishmentType, error)
}

type catalogRepository struct {
	col      *mongo.Collection
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewCatalogRepository instantiates repository. cache may be nil.
func NewCatalogRepository(col *mongo.Collection, cache *redis.Client, cacheTTL time.Duration) CatalogRepository {
	return &catalogRepository{col: col, cache: cache, cacheTTL: cacheTTL}
}

type durationEntryDoc struct {
	Value int64  `bson:"value" json:"value"`
	Unit  string `bson:"unit" json:"unit"`
	Kind  string `bson:"kind" json:"kind"`
}

type severityPointsDoc struct {
	Low     int `bson:"low" json:"low"`
	Regular int `bson:"regular" json:"regular"`
	Severe  int `bson:"severe" json:"severe"`
}

// punishmentTypeDoc is the stored shape. Exactly one of the two variant
// pairs (durations+points / track+trackPoints) must be present.
type punishmentTypeDoc struct {
	ID           string                                 `bson:"_id" json:"id"`
	Ordinal      int                                    `bson:"ordinal" json:"ordinal"`
	Name         string                                 `bson:"name" json:"name"`
	Category     string                                 `bson:"category" json:"category"`
	Customizable bool                                   `bson:"customizable" json:"customizable"`
	Durations    map[string]map[string]durationEntryDoc `bson:"durations,omitempty" json:"durations,omitempty"`
	Points       *severityPointsDoc                     `bson:"points,omitempty" json:"points,omitempty"`
	Track        map[string]durationEntryDoc            `bson:"track,omitempty" json:"track,omitempty"`
	TrackPoints  *int                                   `bson:"trackPoints,omitempty" json:"trackPoints,omitempty"`
}

func (r *catalogRepository) List(ctx context.Context) ([]domain.PunishmentType, error) {
	if docs, ok := r.fromCache(ctx); ok {
		return docsToDomain(docs)
	}

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"ordinal": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []punishmentTypeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	r.storeCache(ctx, docs)
	return docsToDomain(docs)
}

func (r *catalogRepository) fromCache(ctx context.Context) ([]punishmentTypeDoc, bool) {
	if r.cache == nil {
		return nil, false
	}
	raw, err := r.cache.Get(ctx, catalogCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var docs []punishmentTypeDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, false
	}
	return docs, true
}

func (r *catalogRepository) storeCache(ctx context.Context, docs []punishmentTypeDoc) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return
	}
	_ = r.cache.Set(ctx, catalogCacheKey, raw, r.cacheTTL).Err()
}

func docsToDomain(docs []punishmentTypeDoc) ([]domain.PunishmentType, error) {
	types := make([]domain.PunishmentType, 0, len(docs))
	for i := range docs {
		pt, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		types = append(types, *pt)
	}
	return types, nil
}

func (d *punishmentTypeDoc) toDomain() (*domain.PunishmentType, error) {
	pt := &domain.PunishmentType{
		ID:           d.ID,
		Ordinal:      d.Ordinal,
		Name:         d.Name,
		Category:     domain.PunishmentCategory(d.Category),
		Customizable: d.Customizable,
	}

	switch {
	case d.Durations != nil && d.Points != nil:
		durations := make(map[domain.Severity]map[domain.OffenseLevel]domain.DurationEntry, len(d.Durations))
		for severity, track := range d.Durations {
			durations[domain.Severity(severity)] = trackToDomain(track)
		}
		pt.Scale = domain.MultiSeverityScale{
			Durations: durations,
			Points: domain.SeverityPoints{
				Low:     d.Points.Low,
				Regular: d.Points.Regular,
				Severe:  d.Points.Severe,
			},
		}
	case d.Track != nil && d.TrackPoints != nil:
		pt.Scale = domain.SingleSeverityScale{
			Durations: trackToDomain(d.Track),
			Points:    *d.TrackPoints,
		}
	default:
		return nil, fmt.Errorf("punishment type %q has a malformed duration scale", d.ID)
	}
	return pt, nil
}

func trackToDomain(track map[string]durationEntryDoc) map[domain.OffenseLevel]domain.DurationEntry {
	converted := make(map[domain.OffenseLevel]domain.DurationEntry, len(track))
	for level, entry := range track {
		converted[domain.OffenseLevel(level)] = domain.DurationEntry{
			Value: entry.Value,
			Unit:  domain.DurationUnit(entry.Unit),
			Kind:  domain.PunishmentKind(entry.Kind),
		}
	}
	return converted
}
