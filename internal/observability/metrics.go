package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	metricsOnce      sync.Once
	repoOpsCounter   metric.Int64Counter
	domainEvtCounter metric.Int64Counter
	cacheCounter     metric.Int64Counter
)

func initMetrics() {
	meter := otel.Meter("real-estate-service")
	repoOpsCounter, _ = meter.Int64Counter(
		"realestate_repository_operations_total",
		metric.WithDescription("Repository operations by entity, operation and outcome"),
	)
	domainEvtCounter, _ = meter.Int64Counter(
		"realestate_domain_events_total",
		metric.WithDescription("Domain events by area, operation and outcome"),
	)
	cacheCounter, _ = meter.Int64Counter(
		"realestate_search_cache_events_total",
		metric.WithDescription("Public search cache hits, misses and errors"),
	)
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	metricsOnce.Do(initMetrics)
	repoOpsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func recordDomainEvent(ctx context.Context, area, operation, outcome string) {
	metricsOnce.Do(initMetrics)
	domainEvtCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("area", area),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordAuthEvent(ctx context.Context, operation, outcome string) {
	recordDomainEvent(ctx, "auth", operation, outcome)
}

func RecordListingEvent(ctx context.Context, operation, outcome string) {
	recordDomainEvent(ctx, "listing", operation, outcome)
}

func RecordModerationEvent(ctx context.Context, operation, outcome string) {
	recordDomainEvent(ctx, "moderation", operation, outcome)
}

func RecordPasswordResetEvent(ctx context.Context, operation, outcome string) {
	recordDomainEvent(ctx, "password_reset", operation, outcome)
}

func RecordContactEvent(ctx context.Context, outcome string) {
	recordDomainEvent(ctx, "contact", "send", outcome)
}

func RecordUserAdminEvent(ctx context.Context, operation, outcome string) {
	recordDomainEvent(ctx, "user_admin", operation, outcome)
}

func RecordSearchCacheEvent(ctx context.Context, outcome string) {
	metricsOnce.Do(initMetrics)
	cacheCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
