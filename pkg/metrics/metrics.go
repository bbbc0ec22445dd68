package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "classfeed", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "classfeed", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	PermissionDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "classfeed", Name: "permission_denied_total", Help: "Number of denied mutating operations by action."},
		[]string{"action"},
	)
	RoleResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "classfeed", Name: "role_resolutions_total", Help: "Number of role resolutions by outcome (resolved|defaulted|failed)."},
		[]string{"outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(PermissionDenied)
	reg.MustRegister(RoleResolutions)
}
