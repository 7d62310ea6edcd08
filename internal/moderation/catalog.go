// Package moderation holds the punishment escalation engine: offense
// status classification and duration/points resolution over the catalog.
package moderation

import (
	"context"

	"github.com/spec-kit/moderation-service/internal/domain"
)

// Catalog indexes punishment types by their stable ordinal.
type Catalog map[int]*domain.PunishmentType

// NewCatalog builds the ordinal index from a catalog listing.
func NewCatalog(types []domain.PunishmentType) Catalog {
	index := make(Catalog, len(types))
	for i := range types {
		index[types[i].Ordinal] = &types[i]
	}
	return index
}

// ByOrdinal resolves a type by ordinal.
func (c Catalog) ByOrdinal(ordinal int) (*domain.PunishmentType, bool) {
	pt, ok := c[ordinal]
	return pt, ok
}

// ByID resolves a type by its public identifier.
func (c Catalog) ByID(id string) (*domain.PunishmentType, bool) {
	for _, pt := range c {
		if pt.ID == id {
			return pt, true
		}
	}
	return nil, false
}

// SettingsProvider is the narrow read-only configuration surface the
// engine components depend on, instead of each reading the settings
// document themselves.
type SettingsProvider interface {
	Thresholds(ctx context.Context) (domain.StatusThresholds, error)
	AISettings(ctx context.Context) (domain.AIModerationSettings, error)
}
