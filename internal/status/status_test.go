package status

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_InitiallyInactive(t *testing.T) {
	r := New()
	assert.Equal(t, Status{}, r.Snapshot())
}

func TestReporter_AcquireAndRelease(t *testing.T) {
	r := New()

	require.NoError(t, r.TryAcquire("gardening tips", PhaseSearching))
	assert.Equal(t, Status{Active: true, Keyword: "gardening tips", Phase: PhaseSearching}, r.Snapshot())

	r.SetPhase(PhaseAnalyzing)
	assert.Equal(t, PhaseAnalyzing, r.Snapshot().Phase)

	r.Release()
	assert.Equal(t, Status{}, r.Snapshot())

	// Can acquire again after release
	require.NoError(t, r.TryAcquire("cooking", PhaseGenerating))
}

func TestReporter_SecondAcquireIsRejected(t *testing.T) {
	r := New()
	require.NoError(t, r.TryAcquire("X", PhaseSearching))

	err := r.TryAcquire("Y", PhaseSearching)
	require.Error(t, err)

	var busy *BusyError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, "X", busy.Keyword)
	assert.Contains(t, err.Error(), `"X"`)

	// In-flight status untouched
	assert.Equal(t, Status{Active: true, Keyword: "X", Phase: PhaseSearching}, r.Snapshot())
}

func TestReporter_SetPhaseWhenInactiveIsNoop(t *testing.T) {
	r := New()
	r.SetPhase(PhaseGenerating)
	assert.False(t, r.Snapshot().Active)
	assert.Equal(t, uint64(0), r.Version())
}

func TestReporter_VersionChangesOnTransitions(t *testing.T) {
	r := New()
	v0 := r.Version()

	require.NoError(t, r.TryAcquire("k", PhaseSearching))
	v1 := r.Version()
	assert.Greater(t, v1, v0)

	r.SetPhase(PhaseSearching) // same phase, no change
	assert.Equal(t, v1, r.Version())

	r.SetPhase(PhaseCrawling)
	v2 := r.Version()
	assert.Greater(t, v2, v1)

	r.Release()
	assert.Greater(t, r.Version(), v2)

	r.Release() // already inactive
	assert.Equal(t, v2+1, r.Version())
}

func TestReporter_ConcurrentAcquireAdmitsOne(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	var admitted atomic.Int32

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.TryAcquire("k", PhaseSearching); err == nil {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load())
}
