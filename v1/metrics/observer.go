package metrics

import (
	"time"

	"github.com/atlasdata/atlas-go/v1/observability"
)

// ObserveOperation turns operation reports into Prometheus samples.
//
// "dispatch" reports feed the batch counters, size and latency histograms
// and the queue/backoff gauges; "submit" reports with an error count as
// rejected submissions. Anything else is counted in requests_total by
// success/error.
func (m *Metrics) ObserveOperation(op observability.OperationContext) {
	if op.Duration > 0 {
		m.requestDuration.WithLabelValues(op.Component, op.Operation).Observe(op.Duration.Seconds())
	}

	switch op.Operation {
	case "dispatch":
		m.batchesTotal.WithLabelValues(op.Component, op.Resource, op.SubResource).Inc()
		m.batchSize.WithLabelValues(op.Resource).Observe(float64(op.Size))
		if n, ok := number(op.Metadata[observability.MetaUsage]); ok && n > 0 {
			m.usageTotal.WithLabelValues(op.Resource).Add(n)
		}
	case "submit":
		if op.Error != nil {
			m.submissionsRejected.WithLabelValues(op.Resource, op.SubResource).Inc()
		}
	default:
		status := "success"
		if op.Error != nil {
			status = "error"
		}
		m.IncrementRequests(status)
	}

	if n, ok := number(op.Metadata[observability.MetaQueueDepth]); ok {
		m.queueDepth.WithLabelValues(op.Resource).Set(n)
	}
	if d, ok := op.Metadata[observability.MetaBackoff].(time.Duration); ok {
		m.backoffDelay.WithLabelValues(op.Resource).Set(d.Seconds())
	}
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
