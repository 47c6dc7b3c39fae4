package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/margauxflores/synquora/pkg/config"
	"github.com/margauxflores/synquora/pkg/model"
)

const (
	ParticipantCollectionName = "EventParticipants"
)

type mongoParticipantRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type ParticipantRepository interface {
	// Join upserts the (event, user) pair; joining twice is a no-op.
	Join(ctx context.Context, eventID, userID string) error
	FindByEvent(ctx context.Context, eventID string) ([]*model.Participant, error)
}

func NewMongoParticipantRepository(cfg *config.Config) ParticipantRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoParticipantRepository{
		cfg:        cfg,
		collection: db.Collection(ParticipantCollectionName),
	}
}

func (r *mongoParticipantRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoParticipantRepository) Join(ctx context.Context, eventID, userID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"event_id": eventID, "user_id": userID}
	update := bson.M{"$setOnInsert": bson.M{
		"event_id": eventID,
		"user_id":  userID,
	}}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to join event: %w", err)
	}
	return nil
}

func (r *mongoParticipantRepository) FindByEvent(ctx context.Context, eventID string) ([]*model.Participant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "user_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find participants: %w", err)
	}
	defer cursor.Close(ctx)

	var participants []*model.Participant
	if err = cursor.All(ctx, &participants); err != nil {
		return nil, fmt.Errorf("failed to decode participants: %w", err)
	}

	return participants, nil
}
