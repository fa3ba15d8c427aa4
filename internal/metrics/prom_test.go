package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromSinkRecordsEntries(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	require.NoError(t, err)

	sink.RecordEntry("car", "success")
	sink.RecordEntry("car", "success")
	sink.RecordEntry("truck", "no_spot")

	expected := `
# HELP parking_entries_total Vehicle entry attempts by vehicle type and outcome
# TYPE parking_entries_total counter
parking_entries_total{status="no_spot",vehicle_type="truck"} 1
parking_entries_total{status="success",vehicle_type="car"} 2
`
	assert.NoError(t, testutil.CollectAndCompare(sink.entries, strings.NewReader(expected)))
}

func TestPromSinkRecordsRevenue(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	require.NoError(t, err)

	sink.RecordPayment("car", 2.5)
	sink.RecordPayment("motorcycle", 1.5)
	sink.RecordPayment("car", 0)

	assert.InDelta(t, 4.0, testutil.ToFloat64(sink.revenue), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(sink.payments.WithLabelValues("car")), 1e-9)
}

func TestPromSinkRecordsOccupancy(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	require.NoError(t, err)

	sink.RecordOccupancy(3, 40, 7.5)
	sink.RecordExit("success")
	sink.RecordExit("not_paid")

	assert.Equal(t, 3.0, testutil.ToFloat64(sink.occupied))
	assert.Equal(t, 40.0, testutil.ToFloat64(sink.total))
	assert.Equal(t, 7.5, testutil.ToFloat64(sink.occupancy))
	assert.Equal(t, 2, testutil.CollectAndCount(sink.exits))
}

func TestNewPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSink(reg)
	require.NoError(t, err)
	second, err := NewPromSink(reg)
	require.NoError(t, err)

	first.RecordExit("success")
	second.RecordExit("success")

	assert.Equal(t, 2.0, testutil.ToFloat64(first.exits.WithLabelValues("success")))
}
