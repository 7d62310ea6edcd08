package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/moderation-service/internal/domain"
)

// TicketRepository persists tickets and the analysis result written back
// onto them.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// ClaimAnalysis atomically marks the ticket as queued for analysis.
	// It returns false when another submission already claimed it.
	ClaimAnalysis(ctx context.Context, id string) (bool, error)
	SetAnalysisState(ctx context.Context, id string, state domain.AnalysisState) error
	SetAnalysis(ctx context.Context, id string, state domain.AnalysisState, analysis *domain.AIAnalysis) error
}

type ticketRepository struct {
	col *mongo.Collection
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(col *mongo.Collection) TicketRepository {
	return &ticketRepository{col: col}
}

type chatMessageDoc struct {
	Username  string             `bson:"username"`
	Message   string             `bson:"message"`
	Timestamp primitive.DateTime `bson:"timestamp"`
}

type suggestedActionDoc struct {
	PunishmentTypeID string `bson:"punishmentTypeId"`
	Severity         string `bson:"severity"`
}

type aiAnalysisDoc struct {
	Analysis                string              `bson:"analysis"`
	SuggestedAction         *suggestedActionDoc `bson:"suggestedAction,omitempty"`
	WasAppliedAutomatically bool                `bson:"wasAppliedAutomatically"`
	Note                    string              `bson:"note,omitempty"`
	CreatedAt               primitive.DateTime  `bson:"createdAt"`
}

type ticketDoc struct {
	ID                 string             `bson:"_id"`
	Subject            string             `bson:"subject"`
	Category           string             `bson:"category"`
	ReporterName       string             `bson:"reporterName"`
	ReportedPlayerID   *string            `bson:"reportedPlayerId,omitempty"`
	ReportedPlayerName *string            `bson:"reportedPlayerName,omitempty"`
	Messages           []chatMessageDoc   `bson:"messages"`
	AnalysisState      string             `bson:"aiAnalysisState,omitempty"`
	AIAnalysis         *aiAnalysisDoc     `bson:"aiAnalysis,omitempty"`
	CreatedAt          primitive.DateTime `bson:"createdAt"`
	UpdatedAt          primitive.DateTime `bson:"updatedAt"`
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, ticketToDoc(ticket))
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var doc ticketDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ticketRepository) ClaimAnalysis(ctx context.Context, id string) (bool, error) {
	filter := bson.M{
		"_id":             id,
		"aiAnalysisState": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"aiAnalysisState": string(domain.AnalysisQueued),
		"updatedAt":       primitive.NewDateTimeFromTime(time.Now()),
	}}
	err := r.col.FindOneAndUpdate(ctx, filter, update).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ticketRepository) SetAnalysisState(ctx context.Context, id string, state domain.AnalysisState) error {
	update := bson.M{"$set": bson.M{
		"aiAnalysisState": string(state),
		"updatedAt":       primitive.NewDateTimeFromTime(time.Now()),
	}}
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *ticketRepository) SetAnalysis(ctx context.Context, id string, state domain.AnalysisState, analysis *domain.AIAnalysis) error {
	update := bson.M{"$set": bson.M{
		"aiAnalysisState": string(state),
		"aiAnalysis":      analysisToDoc(analysis),
		"updatedAt":       primitive.NewDateTimeFromTime(time.Now()),
	}}
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func ticketToDoc(t *domain.Ticket) *ticketDoc {
	doc := &ticketDoc{
		ID:                 t.ID,
		Subject:            t.Subject,
		Category:           string(t.Category),
		ReporterName:       t.ReporterName,
		ReportedPlayerID:   t.ReportedPlayerID,
		ReportedPlayerName: t.ReportedPlayerName,
		Messages:           []chatMessageDoc{},
		CreatedAt:          primitive.NewDateTimeFromTime(t.CreatedAt),
		UpdatedAt:          primitive.NewDateTimeFromTime(t.UpdatedAt),
	}
	for _, msg := range t.Messages {
		doc.Messages = append(doc.Messages, chatMessageDoc{
			Username:  msg.Username,
			Message:   msg.Message,
			Timestamp: primitive.NewDateTimeFromTime(msg.Timestamp),
		})
	}
	return doc
}

func (d *ticketDoc) toDomain() *domain.Ticket {
	t := &domain.Ticket{
		ID:                 d.ID,
		Subject:            d.Subject,
		Category:           domain.TicketCategory(d.Category),
		ReporterName:       d.ReporterName,
		ReportedPlayerID:   d.ReportedPlayerID,
		ReportedPlayerName: d.ReportedPlayerName,
		AnalysisState:      domain.AnalysisState(d.AnalysisState),
		CreatedAt:          d.CreatedAt.Time(),
		UpdatedAt:          d.UpdatedAt.Time(),
	}
	for _, msg := range d.Messages {
		t.Messages = append(t.Messages, domain.ChatMessage{
			Username:  msg.Username,
			Message:   msg.Message,
			Timestamp: msg.Timestamp.Time(),
		})
	}
	if d.AIAnalysis != nil {
		analysis := &domain.AIAnalysis{
			Analysis:                d.AIAnalysis.Analysis,
			WasAppliedAutomatically: d.AIAnalysis.WasAppliedAutomatically,
			Note:                    d.AIAnalysis.Note,
			CreatedAt:               d.AIAnalysis.CreatedAt.Time(),
		}
		if d.AIAnalysis.SuggestedAction != nil {
			analysis.SuggestedAction = &domain.SuggestedAction{
				PunishmentTypeID: d.AIAnalysis.SuggestedAction.PunishmentTypeID,
				Severity:         domain.Severity(d.AIAnalysis.SuggestedAction.Severity),
			}
		}
		t.AIAnalysis = analysis
	}
	return t
}

func analysisToDoc(a *domain.AIAnalysis) *aiAnalysisDoc {
	if a == nil {
		return nil
	}
	doc := &aiAnalysisDoc{
		Analysis:                a.Analysis,
		WasAppliedAutomatically: a.WasAppliedAutomatically,
		Note:                    a.Note,
		CreatedAt:               primitive.NewDateTimeFromTime(a.CreatedAt),
	}
	if a.SuggestedAction != nil {
		doc.SuggestedAction = &suggestedActionDoc{
			PunishmentTypeID: a.SuggestedAction.PunishmentTypeID,
			Severity:         string(a.SuggestedAction.Severity),
		}
	}
	return doc
}
