package resource

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		id   string
		want Kind
	}{
		{"config.json", KindFile},
		{"data/output.csv", KindFile},
		{"./relative/path", KindFile},
		{"Makefile.lock", KindFile},
		{"REPORT.MD", KindFile},
		{"database", KindLogical},
		{"gpu-slot-0", KindLogical},
		{"network", KindLogical},
	}

	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			assert.Equal(t, tc.want, classify(tc.id))
		})
	}
}

func TestLockMutualExclusion(t *testing.T) {
	m := NewManager()

	// A counter guarded only by the named lock. If two holders ever overlap,
	// the unsynchronized increments race and the total comes up short.
	const goroutines = 8
	const increments = 200
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				m.Lock("counter", "worker")
				counter++
				m.Unlock("counter")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*increments, counter)
}

func TestUnlockUnheldIsNoOp(t *testing.T) {
	m := NewManager()

	// Never registered.
	m.Unlock("never-seen")

	// Registered but not held.
	m.Lock("db", "step.a")
	m.Unlock("db")
	m.Unlock("db")

	// The lock must still be acquirable afterwards.
	m.Lock("db", "step.b")
	holder, held := m.Holder("db")
	require.True(t, held)
	assert.Equal(t, "step.b", holder)
	m.Unlock("db")
}

func TestHolderTracking(t *testing.T) {
	m := NewManager()

	_, held := m.Holder("db")
	assert.False(t, held)

	m.Lock("db", "shell.migrate")
	holder, held := m.Holder("db")
	require.True(t, held)
	assert.Equal(t, "shell.migrate", holder)

	m.Unlock("db")
	_, held = m.Holder("db")
	assert.False(t, held)
}

func TestHistory(t *testing.T) {
	m := NewManager()

	assert.Nil(t, m.History("db"))

	m.Lock("db", "step.a")
	m.Unlock("db")
	m.Lock("db", "step.b")
	m.Unlock("db")
	m.Lock("db", "step.a")
	m.Unlock("db")

	assert.Equal(t, []string{"step.a", "step.b", "step.a"}, m.History("db"))

	// The returned slice is a copy.
	hist := m.History("db")
	hist[0] = "mutated"
	assert.Equal(t, "step.a", m.History("db")[0])
}

func TestStats(t *testing.T) {
	m := NewManager()

	assert.Equal(t, Stats{}, m.Stats())

	m.Lock("config.json", "step.a")
	m.Unlock("config.json")
	m.Lock("db", "step.a")
	m.Unlock("db")
	m.Lock("network", "step.b")
	m.Unlock("network")

	// Re-locking an existing resource must not inflate the counts.
	m.Lock("db", "step.c")
	m.Unlock("db")

	assert.Equal(t, Stats{Files: 1, Logical: 2, Total: 3}, m.Stats())
}
