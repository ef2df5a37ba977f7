// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	families, err := metrics.(*prometheusMetrics).registry.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics()

	for _, a := range []any{
		CounterVec("noopCounter", nil),
		Histogram("noopHist", nil),
		HistogramVec("noopHist", nil, nil),
	} {
		require.IsType(t, discard{}, a)
	}
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf))
	require.Zero(t, buf.Len())

	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", nil)
	lazyHistogram := LazyLoadHistogram("lazyHistogram", nil)
	lazyHistogramVec := LazyLoadHistogramVec("lazyHistogramVec", nil, nil)

	// after initialization, newly created metrics become of the prometheus type
	InitializePrometheusMetrics()

	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramMeter{}, lazyHistogram())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	countVec := CounterVec("countVec1", []string{"zeroOrOne"})
	hist := Histogram("hist1", BucketEnergy)

	total := 0
	for i := range 10 {
		countVec.AddWithLabel(int64(i), map[string]string{"zeroOrOne": strconv.Itoa(i % 2)})
		hist.Observe(int64(i))
		HistogramVec("hist2", []string{"zeroOrOne"}, BucketBandwidth).
			ObserveWithLabels(int64(i), map[string]string{"zeroOrOne": strconv.Itoa(i % 2)})
		total += i
	}

	families := gather(t)
	require.Equal(t, float64(total), families["txexec_hist1"].Metric[0].GetHistogram().GetSampleSum())

	sumCountVec := families["txexec_countVec1"].Metric[0].GetCounter().GetValue() +
		families["txexec_countVec1"].Metric[1].GetCounter().GetValue()
	require.Equal(t, float64(total), sumCountVec)

	sumHistVec := families["txexec_hist2"].Metric[0].GetHistogram().GetSampleSum() +
		families["txexec_hist2"].Metric[1].GetHistogram().GetSampleSum()
	require.Equal(t, float64(total), sumHistVec)

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf))
	require.Contains(t, buf.String(), "txexec_countVec1")
}
