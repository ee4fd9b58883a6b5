package database

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePool struct{ stats redis.PoolStats }

func (f *fakePool) PoolStats() *redis.PoolStats { return &f.stats }

func TestPoolStatsCollector_Describe(t *testing.T) {
	c := NewPoolStatsCollector(&fakePool{}, "fanrc")

	ch := make(chan *prometheus.Desc, 10)
	c.Describe(ch)
	close(ch)

	n := 0
	for range ch {
		n++
	}
	assert.Equal(t, 6, n)
}

func TestPoolStatsCollector_Collect(t *testing.T) {
	pool := &fakePool{stats: redis.PoolStats{Hits: 7, Misses: 2, TotalConns: 4, IdleConns: 3}}
	c := NewPoolStatsCollector(pool, "fanrc")

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			values[fam.GetName()] = metricValue(m)
		}
	}
	assert.Equal(t, float64(7), values["redis_pool_hits_total"])
	assert.Equal(t, float64(2), values["redis_pool_misses_total"])
	assert.Equal(t, float64(4), values["redis_pool_total_connections"])
	assert.Equal(t, float64(3), values["redis_pool_idle_connections"])
}

func metricValue(m *dto.Metric) float64 {
	if m.GetCounter() != nil {
		return m.GetCounter().GetValue()
	}
	return m.GetGauge().GetValue()
}
