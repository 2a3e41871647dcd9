package stealpool

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/Andrej220/go-utils/stealpool"

	metricSubmitted = "stealpool.tasks.submitted"
	metricExecuted  = "stealpool.tasks.executed"
	metricPanicked  = "stealpool.tasks.panicked"
	metricDropped   = "stealpool.tasks.dropped"
	metricParked    = "stealpool.worker.parks"
)

// OTelMetrics is a MetricsPolicy that records OpenTelemetry counters.
//
// Submitted and executed counters carry a "queue" attribute with the
// QueueKind name.
type OTelMetrics struct {
	submitted metric.Int64Counter
	executed  metric.Int64Counter
	panicked  metric.Int64Counter
	dropped   metric.Int64Counter
	parked    metric.Int64Counter

	queueAttrs [3]metric.AddOption
}

// NewOTelMetrics creates the pool counters on a meter from provider.
func NewOTelMetrics(provider metric.MeterProvider) (*OTelMetrics, error) {
	if provider == nil {
		return nil, fmt.Errorf("stealpool: nil meter provider")
	}
	meter := provider.Meter(instrumentationName)

	m := &OTelMetrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.submitted, metricSubmitted, "tasks accepted by Submit"},
		{&m.executed, metricExecuted, "tasks run to completion or panic"},
		{&m.panicked, metricPanicked, "tasks that panicked"},
		{&m.dropped, metricDropped, "queued tasks discarded at shutdown"},
		{&m.parked, metricParked, "times a worker blocked on the wake signal"},
	}
	for _, c := range counters {
		ctr, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit("1"))
		if err != nil {
			return nil, fmt.Errorf("stealpool: create counter %s: %w", c.name, err)
		}
		*c.dst = ctr
	}
	for k := range m.queueAttrs {
		m.queueAttrs[k] = metric.WithAttributes(attribute.String("queue", QueueKind(k).String()))
	}
	return m, nil
}

func (m *OTelMetrics) IncSubmitted(k QueueKind) {
	m.submitted.Add(context.Background(), 1, m.queueAttr(k))
}

func (m *OTelMetrics) IncExecuted(k QueueKind) {
	m.executed.Add(context.Background(), 1, m.queueAttr(k))
}

func (m *OTelMetrics) IncPanicked() { m.panicked.Add(context.Background(), 1) }

func (m *OTelMetrics) IncParked() { m.parked.Add(context.Background(), 1) }

func (m *OTelMetrics) AddDropped(n int64) {
	if n > 0 {
		m.dropped.Add(context.Background(), n)
	}
}

func (m *OTelMetrics) queueAttr(k QueueKind) metric.AddOption {
	if int(k) < len(m.queueAttrs) {
		return m.queueAttrs[k]
	}
	return metric.WithAttributes(attribute.String("queue", k.String()))
}
