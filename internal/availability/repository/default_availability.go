package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/margauxflores/synquora/pkg/config"
	mongotx "github.com/margauxflores/synquora/pkg/db/mongo"
	"github.com/margauxflores/synquora/pkg/model"
)

const (
	DefaultCollectionName = "DefaultAvailabilities"
)

type mongoDefaultAvailabilityRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

// DefaultAvailabilityRepository stores recurring weekly entries per user,
// independent of any event. Full-replace semantics, same as the per-event
// store.
type DefaultAvailabilityRepository interface {
	FindByUser(ctx context.Context, userID string) ([]*model.DefaultAvailability, error)
	DeleteByUser(ctx context.Context, userID string) error
	InsertMany(ctx context.Context, entries []*model.DefaultAvailability) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoDefaultAvailabilityRepository(cfg *config.Config) DefaultAvailabilityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDefaultAvailabilityRepository{
		cfg:        cfg,
		collection: db.Collection(DefaultCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoDefaultAvailabilityRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoDefaultAvailabilityRepository) FindByUser(ctx context.Context, userID string) ([]*model.DefaultAvailability, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "day", Value: 1}, {Key: "hour", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find default availability: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.DefaultAvailability
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode default availability: %w", err)
	}

	return entries, nil
}

func (r *mongoDefaultAvailabilityRepository) DeleteByUser(ctx context.Context, userID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete default availability: %w", err)
	}
	return nil
}

func (r *mongoDefaultAvailabilityRepository) InsertMany(ctx context.Context, entries []*model.DefaultAvailability) error {
	if len(entries) == 0 {
		return nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	docs := make([]any, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, e)
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert default availability: %w", err)
	}
	return nil
}

func (r *mongoDefaultAvailabilityRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
