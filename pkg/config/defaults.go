package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "synquora"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"
	DefaultBaseURL  = "http://localhost:3000"

	DefaultDiscordAPIBaseURL = "https://discord.com/api/v10"

	DefaultKafkaEventsTopic = "synquora.events"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 << 20

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
