package main

import (
	"github.com/joho/godotenv"

	availabilityhandler "github.com/margauxflores/synquora/internal/availability/handler"
	availabilityrepo "github.com/margauxflores/synquora/internal/availability/repository"
	availabilityservice "github.com/margauxflores/synquora/internal/availability/service"
	availabilityvalidator "github.com/margauxflores/synquora/internal/availability/validator"
	"github.com/margauxflores/synquora/internal/discord"
	eventshandler "github.com/margauxflores/synquora/internal/events/handler"
	eventsrepo "github.com/margauxflores/synquora/internal/events/repository"
	eventsservice "github.com/margauxflores/synquora/internal/events/service"
	eventsvalidator "github.com/margauxflores/synquora/internal/events/validator"
	"github.com/margauxflores/synquora/internal/identity"
	"github.com/margauxflores/synquora/pkg/app"
	"github.com/margauxflores/synquora/pkg/config"
	"github.com/margauxflores/synquora/pkg/kafka"
	"github.com/margauxflores/synquora/pkg/metrics"
)

const ServiceName = "synquora"

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	metrics.Register()

	cfg.Log.Info("Starting Synquora service")

	serverApp := app.NewApplication(cfg)

	eventService, availabilityService := initServices(cfg, serverApp)
	serverApp.SetApp(
		eventshandler.NewEventHandler(eventService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) (eventsservice.EventService, availabilityservice.AvailabilityService) {
	eventRepo := eventsrepo.NewMongoEventRepository(cfg)
	participantRepo := eventsrepo.NewMongoParticipantRepository(cfg)
	availRepo := availabilityrepo.NewMongoAvailabilityRepository(cfg)
	defaultRepo := availabilityrepo.NewMongoDefaultAvailabilityRepository(cfg)

	var discordGateway eventsservice.DiscordGateway
	if cfg.DiscordEnabled() {
		discordGateway = discord.NewClient(discord.Config{
			APIBaseURL:            cfg.DiscordAPIBaseURL,
			BotToken:              cfg.DiscordBotToken,
			GuildID:               cfg.DiscordGuildID,
			AnnouncementChannelID: cfg.DiscordAnnouncementChannelID,
		})
		cfg.Log.Info("Discord integration enabled", "guild_id", cfg.DiscordGuildID)
	} else {
		cfg.Log.Info("Discord integration disabled")
	}

	var publisher eventsservice.LifecyclePublisher
	if cfg.KafkaEnabled() {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaEventsTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
		}
		serverApp.SetProducer(producer)
		publisher = producer
		cfg.Log.Info("Kafka lifecycle publishing enabled", "topic", cfg.KafkaEventsTopic)
	} else {
		cfg.Log.Info("Kafka lifecycle publishing disabled")
	}

	identityResolver := identity.NewResolver(cfg.IdentityAPIURL, cfg.Log)

	eventService := eventsservice.NewEventService(
		eventRepo,
		participantRepo,
		eventsvalidator.NewEventValidator(cfg.Log),
		discordGateway,
		identityResolver,
		publisher,
		cfg,
	)

	availabilityService := availabilityservice.NewAvailabilityService(
		availRepo,
		defaultRepo,
		eventRepo,
		availabilityvalidator.NewAvailabilityValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return eventService, availabilityService
}
