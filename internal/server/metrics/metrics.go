// Package metrics defines the Prometheus instruments of the identity service.
// They register on the default registry and are served at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels.
const (
	ResultSuccess  = "success"
	ResultInvalid  = "invalid"
	ResultConflict = "conflict"
	ResultError    = "error"
)

var (
	loginTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gophauth_login_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	registerTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gophauth_register_total",
		Help: "Registration attempts by result",
	}, []string{"result"})

	tokenVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gophauth_token_verifications_total",
		Help: "Bearer token verifications by result",
	}, []string{"result"})

	// hashDuration covers both hashing and verification; op is "hash" or "verify".
	hashDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gophauth_password_hash_duration_seconds",
		Help:    "Latency of password hashing and verification in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"op"})
)

func RecordLogin(result string) {
	loginTotal.WithLabelValues(result).Inc()
}

func RecordRegister(result string) {
	registerTotal.WithLabelValues(result).Inc()
}

func RecordTokenVerification(result string) {
	tokenVerifications.WithLabelValues(result).Inc()
}

// ObserveHash records how long a hash or verify operation took.
func ObserveHash(op string, d time.Duration) {
	hashDuration.WithLabelValues(op).Observe(d.Seconds())
}
