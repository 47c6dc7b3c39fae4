package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/margauxflores/synquora/pkg/config"
	mongotx "github.com/margauxflores/synquora/pkg/db/mongo"
	"github.com/margauxflores/synquora/pkg/model"
)

const (
	CollectionName = "Availabilities"
)

type mongoAvailabilityRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

// AvailabilityRepository stores per-event availability intervals. Saves are
// full replacements: the service deletes the user's records and reinserts the
// new set inside one transaction.
type AvailabilityRepository interface {
	FindByEvent(ctx context.Context, eventID string) ([]*model.Availability, error)
	FindByEventAndUser(ctx context.Context, eventID, userID string) ([]*model.Availability, error)
	DeleteByEventAndUser(ctx context.Context, eventID, userID string) error
	InsertMany(ctx context.Context, records []*model.Availability) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoAvailabilityRepository(cfg *config.Config) AvailabilityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAvailabilityRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoAvailabilityRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAvailabilityRepository) FindByEvent(ctx context.Context, eventID string) ([]*model.Availability, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"event_id": eventID})
}

func (r *mongoAvailabilityRepository) FindByEventAndUser(ctx context.Context, eventID, userID string) ([]*model.Availability, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"event_id": eventID, "user_id": userID})
}

func (r *mongoAvailabilityRepository) find(ctx context.Context, filter bson.M) ([]*model.Availability, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find availability: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.Availability
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode availability: %w", err)
	}

	return records, nil
}

func (r *mongoAvailabilityRepository) DeleteByEventAndUser(ctx context.Context, eventID, userID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"event_id": eventID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete availability: %w", err)
	}
	return nil
}

func (r *mongoAvailabilityRepository) InsertMany(ctx context.Context, records []*model.Availability) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	docs := make([]any, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		docs = append(docs, rec)
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert availability: %w", err)
	}
	return nil
}

func (r *mongoAvailabilityRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
