package client

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/margauxflores/synquora/pkg/logger"
)

// Client aggregates the external connections the service holds for its whole
// lifetime.
type Client struct {
	Mongo *mongo.Client

	log *logger.Logger
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, uri string, connTimeout time.Duration) {
	c.log = log
	c.Mongo = NewMongoClient(log, uri, connTimeout).Client
}

func (c *Client) GracefulShutdown() {
	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Mongo.Disconnect(ctx); err != nil {
			c.log.Error("Failed to disconnect MongoDB client", "error", err)
			return
		}
		c.log.Info("MongoDB client disconnected")
	}
}
