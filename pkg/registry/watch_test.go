package registry

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"response-guard/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type reloads struct {
	mu   sync.Mutex
	regs []*ContractRegistry
	errs []error
}

func (r *reloads) record(reg *ContractRegistry, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs = append(r.regs, reg)
	r.errs = append(r.errs, err)
}

func (r *reloads) last() (*ContractRegistry, error, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.regs)
	if n == 0 {
		return nil, nil, 0
	}
	return r.regs[n-1], r.errs[n-1], n
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := writeFile(t, "contracts.json", `{"version":"1","contracts":[]}`)
	got := &reloads{}

	w, err := Watch(context.Background(), path, logger.NewNoOpLogger(), got.record)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	require.Eventually(t, func() bool {
		reg, err, _ := got.last()
		return err == nil && reg != nil && len(reg.Contracts) == 2
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"version":`), 0o644))
	require.Eventually(t, func() bool {
		_, err, _ := got.last()
		return err != nil
	}, 5*time.Second, 20*time.Millisecond)

	w.Stop()
}

func TestWatch_IgnoresSiblingFiles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := writeFile(t, "contracts.json", `{"version":"1","contracts":[]}`)
	got := &reloads{}

	w, err := Watch(context.Background(), path, logger.NewNoOpLogger(), got.record)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.json"), []byte("{}"), 0o644))
	time.Sleep(4 * defaultDebounce)

	_, _, n := got.last()
	assert.Equal(t, 0, n)

	w.Stop()
}

func TestWatch_StopsWithContext(t *testing.T) {
	path := writeFile(t, "contracts.yaml", "version: '1'\ncontracts: []\n")
	ctx, cancel := context.WithCancel(context.Background())

	w, err := Watch(ctx, path, logger.NewNoOpLogger(), func(*ContractRegistry, error) {})
	require.NoError(t, err)

	cancel()
	select {
	case <-w.doneCh:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on context cancel")
	}
	w.Stop()
}
