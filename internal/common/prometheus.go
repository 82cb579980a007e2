package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	XPAwardTotal               = "xp_award_total"
	XPAwardedPoints            = "xp_awarded_points"
	RedemptionTotal            = "xp_redemption_total"
	LedgerConflictRetryTotal   = "ledger_conflict_retry_total"
	PendingJobTotal            = "pending_job_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "status_code"}),
		XPAwardTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: XPAwardTotal,
			Help: "Count of awards by activity and tier",
		}, []string{"activity", "tier"}),
		XPAwardedPoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: XPAwardedPoints,
			Help: "Sum of XP granted by source",
		}, []string{"source"}),
		RedemptionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RedemptionTotal,
			Help: "Count of redemptions by result",
		}, []string{"result"}),
		LedgerConflictRetryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: LedgerConflictRetryTotal,
			Help: "Count of ledger writes retried after a conflict",
		}, []string{"operation"}),
		PendingJobTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: PendingJobTotal,
			Help: "Count of pending jobs by kind and result",
		}, []string{"kind", "result"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "status_code"}),
	}
)
