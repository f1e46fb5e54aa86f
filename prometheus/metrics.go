package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AuthErrorCounter tracks authentication and authorization failures
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locator_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "missing_header", "invalid_token", "api_key_not_found" etc.
	)

	// APIKeyOperationCounter tracks API key lifecycle operations
	APIKeyOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locator_api_key_operations_total",
			Help: "Total number of API key operations",
		},
		[]string{"operation"}, // "get", "generate", "delete", "authenticate"
	)

	// BrandOperationCounter tracks brand lifecycle operations
	BrandOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locator_brand_operations_total",
			Help: "Total number of brand operations",
		},
		[]string{"operation"}, // "create", "list", "access", "update", "delete"
	)

	// MemberOperationCounter tracks brand member roster operations
	MemberOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locator_member_operations_total",
			Help: "Total number of brand member operations",
		},
		[]string{"operation"}, // "list", "add", "update_role", "remove"
	)

	// PlaceOperationCounter tracks place record operations
	PlaceOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locator_place_operations_total",
			Help: "Total number of place operations",
		},
		[]string{"operation"}, // "create", "list", "delete", "near"
	)

	// GeoQueryDurationHistogram records proximity query duration in seconds
	GeoQueryDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "locator_geo_query_duration_seconds",
			Help:    "Duration of geospatial proximity queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scope"}, // "user" or "brand"
	)

	// DBOperationDurationHistogram records database operation duration in seconds
	DBOperationDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "locator_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

func init() {
	prometheus.MustRegister(
		AuthErrorCounter,
		APIKeyOperationCounter,
		BrandOperationCounter,
		MemberOperationCounter,
		PlaceOperationCounter,
		GeoQueryDurationHistogram,
		DBOperationDurationHistogram,
	)
}

// RecordAuthError increments the auth error counter for the given error type
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// RecordAPIKeyOperation increments the API key operation counter
func RecordAPIKeyOperation(operation string) {
	APIKeyOperationCounter.WithLabelValues(operation).Inc()
}

// RecordBrandOperation increments the brand operation counter
func RecordBrandOperation(operation string) {
	BrandOperationCounter.WithLabelValues(operation).Inc()
}

// RecordMemberOperation increments the member operation counter
func RecordMemberOperation(operation string) {
	MemberOperationCounter.WithLabelValues(operation).Inc()
}

// RecordPlaceOperation increments the place operation counter
func RecordPlaceOperation(operation string) {
	PlaceOperationCounter.WithLabelValues(operation).Inc()
}

// ObserveGeoQuery records the duration of a proximity query for a scope
func ObserveGeoQuery(scope string, start time.Time) {
	GeoQueryDurationHistogram.WithLabelValues(scope).Observe(time.Since(start).Seconds())
}

// TrackDBOperation returns a function that records the duration of a database
// operation when called. Use with defer:
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDurationHistogram.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
