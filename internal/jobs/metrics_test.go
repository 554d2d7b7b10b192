package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("manifest:archive").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("manifest:archive").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("manifest:archive", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("manifest:archive", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("manifest:archive")))
}

func TestAddManifests(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddManifests(OutcomeArchived, 2)
	m.AddManifests(OutcomeEmpty, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.manifests.WithLabelValues(OutcomeArchived)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.manifests.WithLabelValues(OutcomeEmpty)))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.AddManifests(OutcomeArchived, 1)
	err := errors.New("x")
	assert.Equal(t, err, m.Track("job").End(err))
}
