package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/x", 200, time.Millisecond)
		m.ObserveDBQuery("exec", errors.New("boom"), time.Millisecond)
		m.SetDBPoolStats(1, 1, 0, 0)
		m.ReservationCreated("pass")
		m.CapacityRejected("direct")
		m.WebhookEvent("processed")
		m.OutboxTask("provision_access", "done")
		m.UpstreamError("ttlock")
	})
}

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry("studio-booking", reg)

	m.ReservationCreated("direct")
	m.ReservationCreated("direct")
	m.ReservationCreated("pass")
	m.WebhookEvent("duplicate")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reservationsCreated.WithLabelValues("direct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reservationsCreated.WithLabelValues("pass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.webhookEvents.WithLabelValues("duplicate")))
}
