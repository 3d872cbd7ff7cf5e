package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyFloorsAtZero(t *testing.T) {
	require.Equal(t, 1, Apply(ActionIncrease, 0))
	require.Equal(t, 0, Apply(ActionDecrease, 0))
	require.Equal(t, 2, Apply(ActionDecrease, 3))
	require.Equal(t, 0, Apply(ActionDecrease, -5))
}

func TestStepperScenario(t *testing.T) {
	c := NewCache()
	const userID, msgID, productID = int64(1), 100, int64(42)

	c.RecordSelection(userID, msgID, productID, 0)

	steps := []struct {
		action  Action
		want    int
		changed bool
	}{
		{ActionIncrease, 1, true},
		{ActionIncrease, 2, true},
		{ActionDecrease, 1, true},
		{ActionDecrease, 0, true},
		{ActionDecrease, 0, false},
	}
	for _, step := range steps {
		got, changed := c.AdjustQuantity(userID, msgID, productID, step.action)
		require.Equal(t, step.want, got)
		require.Equal(t, step.changed, changed)
	}
}

func TestRecordSelectionIgnoresDuplicateMessage(t *testing.T) {
	c := NewCache()
	c.RecordSelection(1, 100, 42, 3)
	c.RecordSelection(1, 100, 42, 7)

	entries, _ := c.Drain(1)
	require.Len(t, entries, 1)
	require.Equal(t, 3, entries[0].Quantity)
}

func TestAdjustMaterializesMissingEntry(t *testing.T) {
	c := NewCache()
	got, changed := c.AdjustQuantity(1, 100, 42, ActionIncrease)
	require.Equal(t, 1, got)
	require.True(t, changed)

	entries, _ := c.Drain(1)
	require.Len(t, entries, 1)
	require.Equal(t, int64(42), entries[0].ProductID)
}

func TestDrainIsAtomic(t *testing.T) {
	c := NewCache()
	c.RecordSelection(1, 100, 42, 2)
	c.RecordSelection(1, 101, 43, 1)
	c.SetPendingPrompt(1, 200)

	entries, prompt := c.Drain(1)
	require.Len(t, entries, 2)
	require.Equal(t, 200, prompt)

	entries, prompt = c.Drain(1)
	require.Empty(t, entries)
	require.Zero(t, prompt)
}

func TestRestoreAfterFailedFlushKeepsSelections(t *testing.T) {
	c := NewCache()
	c.RecordSelection(1, 100, 42, 2)
	c.RecordSelection(1, 101, 43, 1)
	c.SetPendingPrompt(1, 200)

	entries, prompt := c.Drain(1)
	c.Restore(1, entries, prompt)

	got, gotPrompt := c.Drain(1)
	require.Equal(t, entries, got)
	require.Equal(t, prompt, gotPrompt)
}

func TestRestoreKeepsEntriesStagedSinceDrain(t *testing.T) {
	c := NewCache()
	c.RecordSelection(1, 100, 42, 2)
	entries, prompt := c.Drain(1)

	// The user keeps clicking while the flush is failing.
	c.AdjustQuantity(1, 100, 42, ActionIncrease)
	c.RecordSelection(1, 101, 43, 1)
	c.SetPendingPrompt(1, 201)

	c.Restore(1, entries, prompt)

	require.Equal(t, 1, c.Quantity(1, 100))
	got, gotPrompt := c.Drain(1)
	require.Len(t, got, 2)
	require.Equal(t, 201, gotPrompt)
}

func TestRestoreIntoEmptySession(t *testing.T) {
	c := NewCache()
	c.RecordSelection(1, 100, 42, 3)
	c.SetPendingPrompt(1, 200)
	entries, prompt := c.Drain(1)

	c.Restore(1, entries, prompt)
	c.Restore(1, nil, 0)

	got, gotPrompt := c.Drain(1)
	require.Len(t, got, 1)
	require.Equal(t, 3, got[0].Quantity)
	require.Equal(t, 200, gotPrompt)
}

func TestConcurrentAdjustDifferentMessages(t *testing.T) {
	c := NewCache()
	const userID = int64(1)
	const perMessage = 50

	c.RecordSelection(userID, 100, 42, 0)
	c.RecordSelection(userID, 101, 43, 0)

	var wg sync.WaitGroup
	for _, msgID := range []int{100, 101} {
		for i := 0; i < perMessage; i++ {
			wg.Add(1)
			go func(msgID int) {
				defer wg.Done()
				pid := int64(42)
				if msgID == 101 {
					pid = 43
				}
				c.AdjustQuantity(userID, msgID, pid, ActionIncrease)
			}(msgID)
		}
	}
	wg.Wait()

	require.Equal(t, perMessage, c.Quantity(userID, 100))
	require.Equal(t, perMessage, c.Quantity(userID, 101))
}
