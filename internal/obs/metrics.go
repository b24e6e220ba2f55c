// Package obs exposes the service's prometheus metrics.
package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SignupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_signups_total",
		Help: "Total number of successful signups.",
	})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Total number of login attempts by result.",
	}, []string{"result"})

	TokenRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_refresh_total",
		Help: "Total number of refresh attempts by result.",
	}, []string{"result"})

	PasswordResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_password_resets_total",
		Help: "Total number of completed password resets.",
	})

	AuditDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_entries_dropped_total",
		Help: "Audit entries dropped because the recorder buffer was full.",
	})

	AuditWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_write_errors_total",
		Help: "Audit entries that failed to persist.",
	})
)

// Result label values for the counters above.
const (
	ResultOK     = "ok"
	ResultDenied = "denied"
	ResultError  = "error"
)

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
