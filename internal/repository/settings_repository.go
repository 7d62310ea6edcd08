package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/moderation-service/internal/domain"
)

const (
	settingsDocID    = "moderation"
	settingsCacheKey = "moderation:settings"
)

// SettingsRepository reads and writes the moderation settings document.
// It also implements moderation.SettingsProvider for the engine.
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.ModerationSettings, error)
	Update(ctx context.Context, settings *domain.ModerationSettings) error
	Thresholds(ctx context.Context) (domain.StatusThresholds, error)
	AISettings(ctx context.Context) (domain.AIModerationSettings, error)
}

type settingsRepository struct {
	col      *mongo.Collection
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewSettingsRepository instantiates repository. cache may be nil.
func NewSettingsRepository(col *mongo.Collection, cache *redis.Client, cacheTTL time.Duration) SettingsRepository {
	return &settingsRepository{col: col, cache: cache, cacheTTL: cacheTTL}
}

type aiTypeBindingDoc struct {
	Enabled     bool   `bson:"enabled" json:"enabled"`
	Description string `bson:"aiDescription" json:"aiDescription"`
}

type categoryThresholdsDoc struct {
	Medium   int `bson:"mediumPointThreshold" json:"mediumPointThreshold"`
	Habitual int `bson:"habitualPointThreshold" json:"habitualPointThreshold"`
}

type settingsDoc struct {
	ID                     string                      `bson:"_id" json:"id"`
	EnableAutomatedActions bool                        `bson:"enableAutomatedActions" json:"enableAutomatedActions"`
	Strictness             string                      `bson:"strictnessLevel" json:"strictnessLevel"`
	TypeBindings           map[string]aiTypeBindingDoc `bson:"typeBindings" json:"typeBindings"`
	PromptOverrides        map[string]string           `bson:"promptOverrides,omitempty" json:"promptOverrides,omitempty"`
	GameplayThresholds     categoryThresholdsDoc       `bson:"gameplayThresholds" json:"gameplayThresholds"`
	SocialThresholds       categoryThresholdsDoc       `bson:"socialThresholds" json:"socialThresholds"`
	UpdatedAt              time.Time                   `bson:"updatedAt" json:"updatedAt"`
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.ModerationSettings, error) {
	if doc, ok := r.fromCache(ctx); ok {
		return doc.toDomain(), nil
	}

	var doc settingsDoc
	err := r.col.FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.DefaultModerationSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	r.storeCache(ctx, &doc)
	return doc.toDomain(), nil
}

func (r *settingsRepository) Update(ctx context.Context, settings *domain.ModerationSettings) error {
	settings.UpdatedAt = time.Now()
	doc := settingsToDoc(settings)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": settingsDocID}, doc, opts); err != nil {
		return err
	}
	if r.cache != nil {
		_ = r.cache.Del(ctx, settingsCacheKey).Err()
	}
	return nil
}

// Thresholds implements moderation.SettingsProvider.
func (r *settingsRepository) Thresholds(ctx context.Context) (domain.StatusThresholds, error) {
	settings, err := r.Get(ctx)
	if err != nil {
		return domain.StatusThresholds{}, err
	}
	return settings.Thresholds, nil
}

// AISettings implements moderation.SettingsProvider.
func (r *settingsRepository) AISettings(ctx context.Context) (domain.AIModerationSettings, error) {
	settings, err := r.Get(ctx)
	if err != nil {
		return domain.AIModerationSettings{}, err
	}
	return settings.AI, nil
}

func (r *settingsRepository) fromCache(ctx context.Context) (*settingsDoc, bool) {
	if r.cache == nil {
		return nil, false
	}
	raw, err := r.cache.Get(ctx, settingsCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var doc settingsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	return &doc, true
}

func (r *settingsRepository) storeCache(ctx context.Context, doc *settingsDoc) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return
	}
	_ = r.cache.Set(ctx, settingsCacheKey, raw, r.cacheTTL).Err()
}

func (d *settingsDoc) toDomain() *domain.ModerationSettings {
	settings := &domain.ModerationSettings{
		AI: domain.AIModerationSettings{
			EnableAutomatedActions: d.EnableAutomatedActions,
			Strictness:             domain.StrictnessLevel(d.Strictness),
			TypeBindings:           map[string]domain.AITypeBinding{},
			PromptOverrides:        map[domain.StrictnessLevel]string{},
		},
		Thresholds: domain.StatusThresholds{
			Gameplay: domain.CategoryThresholds{
				MediumPoints:   d.GameplayThresholds.Medium,
				HabitualPoints: d.GameplayThresholds.Habitual,
			},
			Social: domain.CategoryThresholds{
				MediumPoints:   d.SocialThresholds.Medium,
				HabitualPoints: d.SocialThresholds.Habitual,
			},
		},
		UpdatedAt: d.UpdatedAt,
	}
	if !domain.ValidStrictness(settings.AI.Strictness) {
		settings.AI.Strictness = domain.StrictnessStandard
	}
	for id, binding := range d.TypeBindings {
		settings.AI.TypeBindings[id] = domain.AITypeBinding{
			Enabled:     binding.Enabled,
			Description: binding.Description,
		}
	}
	for level, override := range d.PromptOverrides {
		settings.AI.PromptOverrides[domain.StrictnessLevel(level)] = override
	}
	return settings
}

func settingsToDoc(settings *domain.ModerationSettings) *settingsDoc {
	doc := &settingsDoc{
		ID:                     settingsDocID,
		EnableAutomatedActions: settings.AI.EnableAutomatedActions,
		Strictness:             string(settings.AI.Strictness),
		TypeBindings:           map[string]aiTypeBindingDoc{},
		PromptOverrides:        map[string]string{},
		GameplayThresholds: categoryThresholdsDoc{
			Medium:   settings.Thresholds.Gameplay.MediumPoints,
			Habitual: settings.Thresholds.Gameplay.HabitualPoints,
		},
		SocialThresholds: categoryThresholdsDoc{
			Medium:   settings.Thresholds.Social.MediumPoints,
			Habitual: settings.Thresholds.Social.HabitualPoints,
		},
		UpdatedAt: settings.UpdatedAt,
	}
	for id, binding := range settings.AI.TypeBindings {
		doc.TypeBindings[id] = aiTypeBindingDoc{Enabled: binding.Enabled, Description: binding.Description}
	}
	for level, override := range settings.AI.PromptOverrides {
		doc.PromptOverrides[string(level)] = override
	}
	return doc
}
