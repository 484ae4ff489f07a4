package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(ItemsQueued, FetchResults, FetchLatency, BytesFetched, InFlight, AuthFailures)

	ItemsQueued.WithLabelValues("index").Inc()
	FetchResults.WithLabelValues("http", "done").Add(2)
	FetchLatency.WithLabelValues("http").Observe(0.25)
	InFlight.Set(3)

	expected := `# HELP acquire_fetch_results_total Method reports delivered to items, by access scheme and result.
# TYPE acquire_fetch_results_total counter
acquire_fetch_results_total{access="http",result="done"} 2
`
	require.NoError(t, testutil.CollectAndCompare(FetchResults, strings.NewReader(expected)))

	assert.Equal(t, float64(1), testutil.ToFloat64(ItemsQueued.WithLabelValues("index")))
	assert.Equal(t, float64(3), testutil.ToFloat64(InFlight))
	assert.Equal(t, 1, testutil.CollectAndCount(FetchLatency))

	before := testutil.ToFloat64(BytesFetched)
	BytesFetched.Add(512)
	assert.Equal(t, before+512, testutil.ToFloat64(BytesFetched))
}
