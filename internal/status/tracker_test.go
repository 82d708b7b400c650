package status

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_DefaultsToIdle(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, Idle, tr.GetStatus(ImageKey("scene-1")))
	assert.Empty(t, tr.Error(ImageKey("scene-1")))
	assert.Empty(t, tr.Snapshot())
}

func TestTracker_Lifecycle(t *testing.T) {
	tr := NewTracker()
	key := VideoKey("scene-1")

	tr.Start(key)
	assert.Equal(t, Running, tr.GetStatus(key))

	tr.Fail(key, "kling error 500")
	assert.Equal(t, Failed, tr.GetStatus(key))
	assert.Equal(t, "kling error 500", tr.Error(key))

	// retry clears the previous error as soon as the unit starts
	tr.Start(key)
	assert.Equal(t, Running, tr.GetStatus(key))
	assert.Empty(t, tr.Error(key))

	tr.Complete(key)
	assert.Equal(t, Completed, tr.GetStatus(key))
	assert.Empty(t, tr.Error(key))
}

func TestTracker_KeysAreIndependent(t *testing.T) {
	tr := NewTracker()
	tr.Start(DialogueKey("scene-1", 0))
	tr.Fail(DialogueKey("scene-1", 1), "boom")
	tr.SetStatus(NarrationKey("scene-1"), Pending)

	assert.Equal(t, Running, tr.GetStatus(DialogueKey("scene-1", 0)))
	assert.Equal(t, Failed, tr.GetStatus(DialogueKey("scene-1", 1)))
	assert.Equal(t, Pending, tr.GetStatus(NarrationKey("scene-1")))
	assert.Equal(t, Idle, tr.GetStatus(ImageKey("scene-1")))

	snap := tr.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, DialogueKey("scene-1", 0), snap[0].Key)
	assert.Equal(t, DialogueKey("scene-1", 1), snap[1].Key)
	assert.Equal(t, "boom", snap[1].Error)
	assert.Equal(t, NarrationKey("scene-1"), snap[2].Key)
}

func TestTracker_SetError(t *testing.T) {
	tr := NewTracker()
	key := ImageKey("s")
	tr.SetError(key, "bad key")
	assert.Equal(t, "bad key", tr.Error(key))
	assert.Equal(t, Idle, tr.GetStatus(key))

	tr.SetError(key, "")
	assert.Empty(t, tr.Error(key))
}

func TestTracker_ConcurrentUse(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := DialogueKey("scene", i)
			tr.Start(key)
			tr.Complete(key)
			_ = tr.Snapshot()
		}(i)
	}
	wg.Wait()
	assert.Len(t, tr.Snapshot(), 50)
}

func TestUnitKey_String(t *testing.T) {
	assert.Equal(t, "scene-2/image", ImageKey("scene-2").String())
	assert.Equal(t, "scene-2/dialogue/3", DialogueKey("scene-2", 3).String())
}
