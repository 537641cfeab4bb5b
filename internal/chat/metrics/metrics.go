package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks chat activity.
type Metrics struct {
	ConversationsCreated prometheus.Counter
	MessagesPosted       prometheus.Counter
	MessagesMarkedRead   prometheus.Counter
	SharedCasesDuration  prometheus.Histogram
}

// New creates and registers the chat metrics.
func New() *Metrics {
	return &Metrics{
		ConversationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pedulikucing_chat_conversations_created_total",
			Help: "Number of new conversations created (deduplicated hits excluded).",
		}),
		MessagesPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pedulikucing_chat_messages_posted_total",
			Help: "Number of messages appended to conversations.",
		}),
		MessagesMarkedRead: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pedulikucing_chat_messages_marked_read_total",
			Help: "Number of messages flipped to read by conversation views.",
		}),
		SharedCasesDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pedulikucing_chat_shared_cases_duration_seconds",
			Help:    "Latency of assembling the shared-case context for a conversation.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
