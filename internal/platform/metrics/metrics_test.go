package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("oidc.getClient", "GET", 200, time.Now())
	m.ObserveRequest("oidc.getClient", "GET", 200, time.Now())
	m.ObserveRequest("oidc.getClient", "GET", 0, time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("oidc.getClient", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("oidc.getClient", "GET", "error")))

	count, err := testutil.GatherAndCount(reg, "idp_client_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewWithoutRegistry(t *testing.T) {
	m := New(nil)
	m.ObserveRequest("oidc.listClients", "GET", 500, time.Now())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("oidc.listClients", "GET", "500")))
}
