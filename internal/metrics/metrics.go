// Package metrics holds the Prometheus collectors of the API. They register
// with the default registry on import and are served on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "photoshare_http_requests_total",
	Help: "Total number of HTTP requests by route, method and status code",
}, []string{"route", "method", "status"})

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "photoshare_http_request_duration_seconds",
	Help:    "Histogram of HTTP request durations in seconds",
	Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
}, []string{"route"})

var GraphQLErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "photoshare_graphql_errors_total",
	Help: "Total number of GraphQL errors by extensions code",
}, []string{"code"})

// AuthExchangesTotal counts GitHub code exchanges. outcome is "ok" or the
// apperror code of the failure.
var AuthExchangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "photoshare_auth_exchanges_total",
	Help: "Total number of GitHub OAuth code exchanges by outcome",
}, []string{"outcome"})

var FakeUsersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "photoshare_fake_users_created_total",
	Help: "Total number of users created by addFakeUsers",
})

var PhotosPostedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "photoshare_photos_posted_total",
	Help: "Total number of photos posted",
})

var TagsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "photoshare_tags_created_total",
	Help: "Total number of photo tags created",
})
