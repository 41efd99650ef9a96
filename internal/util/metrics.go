package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DeliveryEligibilityChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_eligibility_checks_total",
		Help: "Total number of delivery eligibility decisions",
	}, []string{"zone_type", "result"})

	DeliveryFilterSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_filter_skipped_total",
		Help: "Delivery checks skipped because location or zone data was missing",
	}, []string{"reason"})

	DeliveryZonesConfigured = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_zones_configured_total",
		Help: "Total number of delivery zones written",
	}, []string{"zone_type"})

	AddressLookupLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "address_lookup_latency_seconds",
		Help:    "Latency of administrative code lookups",
		Buckets: prometheus.DefBuckets,
	})

	AddressLookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "address_lookup_failures_total",
		Help: "Total number of failed administrative code lookups",
	})

	RecipeCalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_calculations_total",
		Help: "Total number of recipe calculations",
	}, []string{"result"})

	RecipeIngredientsUnmatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipe_ingredients_unmatched_total",
		Help: "Ingredients with no in-stock exact match",
	})

	RecipeCalculationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recipe_calculation_latency_seconds",
		Help:    "Latency of recipe calculations including catalog lookups",
		Buckets: prometheus.DefBuckets,
	})

	CatalogCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_lookups_total",
		Help: "Catalog cache lookups by outcome",
	}, []string{"outcome"})

	PricingRulesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_rules_written_total",
		Help: "Total number of pricing rules persisted",
	})

	PricingRulesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_rules_rejected_total",
		Help: "Pricing rules rejected at configuration time",
	}, []string{"bound"})

	BatchPricingProductsUpdated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_pricing_products_updated_total",
		Help: "Products updated by batch pricing operations",
	}, []string{"operation"})

	CatalogEventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_events_consumed_total",
		Help: "Catalog events handled by the invalidation worker",
	}, []string{"event_type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
