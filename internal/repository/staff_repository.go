package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/moderation-service/internal/domain"
)

// StaffRepository is the minimal staff lookup the auth layer needs.
// Staff management itself lives outside this service.
type StaffRepository interface {
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
	GetByUsername(ctx context.Context, username string) (*domain.StaffMember, error)
}

type staffRepository struct {
	col *mongo.Collection
}

// NewStaffRepository instantiates repository.
func NewStaffRepository(col *mongo.Collection) StaffRepository {
	return &staffRepository{col: col}
}

type staffDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"passwordHash"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	var doc staffDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *staffRepository) GetByUsername(ctx context.Context, username string) (*domain.StaffMember, error) {
	var doc staffDoc
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (d *staffDoc) toDomain() *domain.StaffMember {
	return &domain.StaffMember{
		ID:           d.ID,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Role:         domain.StaffRole(d.Role),
		CreatedAt:    d.CreatedAt,
	}
}
