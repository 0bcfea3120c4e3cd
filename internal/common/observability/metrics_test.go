package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordContractCheck_ExportsToRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := New("response-guard-test", reg)
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	obs.RecordContractCheck(context.Background(), "issues.get", 120*time.Microsecond, false)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, strings.ReplaceAll(f.GetName(), ".", "_"))
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "contract_checks")
	assert.Contains(t, joined, "contract_check_duration")
}

func TestNewNoop_DoesNotPanic(t *testing.T) {
	obs := NewNoop()
	assert.NotPanics(t, func() {
		obs.RecordContractCheck(context.Background(), "h", time.Millisecond, true)
	})
	assert.NoError(t, obs.Shutdown(context.Background()))
}
