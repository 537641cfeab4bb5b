package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for case workflows.
type Metrics struct {
	StatusTransitions *prometheus.CounterVec
	ReportsSubmitted  prometheus.Counter
	AdoptionsOpened   prometheus.Counter
	CampaignsCreated  prometheus.Counter
	DonationsRecorded prometheus.Counter
}

// New creates and registers the case workflow metrics.
func New() *Metrics {
	return &Metrics{
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pedulikucing_case_status_transitions_total",
			Help: "Committed status transitions by entity type and target status",
		}, []string{"entity", "status"}),
		ReportsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pedulikucing_reports_submitted_total",
			Help: "Total stray reports submitted",
		}),
		AdoptionsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pedulikucing_adoptions_opened_total",
			Help: "Total adoption applications opened",
		}),
		CampaignsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pedulikucing_campaigns_created_total",
			Help: "Total fundraising campaigns created",
		}),
		DonationsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pedulikucing_donations_recorded_total",
			Help: "Total donations committed to campaigns",
		}),
	}
}
