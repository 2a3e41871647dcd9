//go:build linux

package stealpool

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// allowedCPU returns the first CPU the test process may run on.
func allowedCPU(t *testing.T) int {
	t.Helper()

	var set unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &set))
	for cpu := 0; cpu < len(set)*64; cpu++ {
		if set.IsSet(cpu) {
			return cpu
		}
	}
	t.Skip("no cpu in affinity mask")
	return 0
}

func TestNewPool_PinningToCurrentCPUs(t *testing.T) {
	cpu := allowedCPU(t)

	p, err := NewPoolFromOptions(Options{Workers: 2, PinWorkers: true, CPUs: []int{cpu}})
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 2, p.Workers())
}

func TestNewPool_PinningFailureStopsEveryWorker(t *testing.T) {
	// An out-of-range CPU leaves the affinity mask empty, which the
	// kernel rejects.
	p, err := NewPoolFromOptions(Options{
		Workers:    3,
		PinWorkers: true,
		CPUs:       []int{allowedCPU(t), 1 << 20},
	})
	require.Error(t, err)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrStartup)
	assert.Contains(t, err.Error(), "pin to cpu")
}

func TestCPUFor(t *testing.T) {
	o := Options{CPUs: []int{4, 6}}
	assert.Equal(t, 4, o.cpuFor(0))
	assert.Equal(t, 6, o.cpuFor(1))
	assert.Equal(t, 4, o.cpuFor(2))

	var d Options
	assert.Equal(t, 1%runtime.NumCPU(), d.cpuFor(1))
}
