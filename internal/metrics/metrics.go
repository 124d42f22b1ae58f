// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Role update outcomes.
const (
	OutcomeUpdated      = "updated"
	OutcomeInvalid      = "invalid"
	OutcomeNotFound     = "not_found"
	OutcomeStorageError = "storage_error"
)

// Provisioning outcomes.
const (
	ProvisionCreated = "created"
	ProvisionExists  = "exists"
	ProvisionFailed  = "failed"
)

var (
	// RoleUpdates counts role update requests by outcome.
	RoleUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "role_updates_total",
			Help: "Role update requests by outcome",
		},
		[]string{"outcome"},
	)

	// ProfileProvisioning counts provisioning attempts by profile kind and outcome.
	ProfileProvisioning = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_provisioning_total",
			Help: "Profile provisioning attempts by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// HTTPRequests counts served requests by method and status code.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method and status",
		},
		[]string{"method", "status"},
	)
)

func init() {
	prometheus.MustRegister(RoleUpdates, ProfileProvisioning, HTTPRequests)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
