package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by method, route and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travel_http_requests_total",
		Help: "Total HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration tracks request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travel_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"method", "route"})

	// InviteTransitions counts invite lifecycle transitions by invite kind and outcome.
	InviteTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travel_invite_transitions_total",
		Help: "Invite lifecycle transitions by kind (friend, travel) and outcome",
	}, []string{"kind", "outcome"})

	// TokenCollisions counts regenerated invite tokens after a uniqueness violation.
	TokenCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travel_invite_token_collisions_total",
		Help: "Invite tokens regenerated after a uniqueness violation",
	})
)

// Invite kinds and outcomes used as label values.
const (
	KindFriend = "friend"
	KindTravel = "travel"

	OutcomeCreated   = "created"
	OutcomeAccepted  = "accepted"
	OutcomeRejected  = "rejected"
	OutcomeDeclined  = "declined"
	OutcomeCancelled = "cancelled"
)

// Invite records one invite transition.
func Invite(kind, outcome string) {
	InviteTransitions.WithLabelValues(kind, outcome).Inc()
}
