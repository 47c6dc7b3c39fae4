package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "synquora_http_requests_total", Help: "Total HTTP requests by method and status"},
		[]string{"method", "status"},
	)
	AvailabilitySaves = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "synquora_availability_saves_total", Help: "Total availability full-replace writes"},
	)
	AvailabilityNoopSaves = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "synquora_availability_noop_saves_total", Help: "Total availability submissions skipped because the delta was empty"},
	)
	DiscordFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "synquora_discord_failures_total", Help: "Total failed Discord API calls (swallowed, best-effort)"},
	)
	KafkaPublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "synquora_kafka_publish_failures_total", Help: "Total failed lifecycle message publishes (swallowed, best-effort)"},
	)
)

func Register() {
	prometheus.MustRegister(
		HTTPRequests,
		AvailabilitySaves,
		AvailabilityNoopSaves,
		DiscordFailures,
		KafkaPublishFailures,
	)
}
