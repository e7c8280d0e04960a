package ledger

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_GetDefaultsToZero(t *testing.T) {
	m := NewMemory(10, 0)
	require.Equal(t, 0, m.Get("5215512345678"))
	require.Equal(t, 0, m.Len())
}

func TestMemory_IncrementCreatesAtOne(t *testing.T) {
	m := NewMemory(10, 0)
	require.Equal(t, 1, m.Increment("a"))
	require.Equal(t, 2, m.Increment("a"))
	require.Equal(t, 2, m.Get("a"))
	require.Equal(t, 0, m.Get("b"))
	require.Equal(t, 1, m.Len())
}

func TestMemory_CapacityEvictsOldest(t *testing.T) {
	m := NewMemory(2, 0)
	m.Increment("a")
	m.Increment("b")
	m.Increment("c")
	require.Equal(t, 2, m.Len())
	require.Equal(t, 0, m.Get("a"))
	require.Equal(t, 1, m.Get("c"))
}

func TestMemory_TTLExpiresEntries(t *testing.T) {
	m := NewMemory(10, 50*time.Millisecond)
	m.Increment("a")
	require.Equal(t, 1, m.Get("a"))
	require.Eventually(t, func() bool { return m.Get("a") == 0 }, time.Second, 10*time.Millisecond)
}

func TestMemory_DefaultCapacity(t *testing.T) {
	m := NewMemory(0, 0)
	for i := 0; i < 50; i++ {
		m.Increment(fmt.Sprintf("id-%d", i))
	}
	require.Equal(t, 50, m.Len())
}

func TestMemory_ConcurrentIncrementsAreNotLost(t *testing.T) {
	m := NewMemory(10, 0)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Increment("same")
		}()
	}
	wg.Wait()
	require.Equal(t, 100, m.Get("same"))
}
