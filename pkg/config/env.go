package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
	EnvBaseURL  = "BASE_URL"

	EnvDiscordBotToken              = "DISCORD_BOT_TOKEN"
	EnvDiscordGuildID               = "DISCORD_GUILD_ID"
	EnvDiscordAnnouncementChannelID = "DISCORD_ANNOUNCEMENT_CHANNEL_ID"
	EnvDiscordAPIBaseURL            = "DISCORD_API_BASE_URL"

	EnvIdentityAPIURL = "IDENTITY_API_URL"

	EnvKafkaBrokers     = "KAFKA_BROKERS"
	EnvKafkaEventsTopic = "KAFKA_EVENTS_TOPIC"

	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
