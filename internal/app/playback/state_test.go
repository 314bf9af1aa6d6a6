package playback

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArbiter_Initial(t *testing.T) {
	a := NewArbiter()

	assert.False(t, a.IsLocked())
	assert.False(t, a.IsAutoplayActive())
	assert.Equal(t, NoIdentity, a.LockHolder())
	assert.Equal(t, NoIdentity, a.ActiveIdentity())
	assert.Equal(t, State{LockHolder: NoIdentity, Active: NoIdentity}, a.Snapshot())
}

func TestArbiter_Lock(t *testing.T) {
	a := NewArbiter()

	a.Acquire(2)
	assert.True(t, a.IsLocked())
	assert.Equal(t, Identity(2), a.LockHolder())

	a.Release()
	assert.False(t, a.IsLocked())

	// Identity 0 is a valid holder.
	a.Acquire(0)
	assert.True(t, a.IsLocked())
}

func TestArbiter_TryAcquire(t *testing.T) {
	a := NewArbiter()

	assert.True(t, a.TryAcquire(1))
	assert.False(t, a.TryAcquire(2))
	assert.Equal(t, Identity(1), a.LockHolder())

	a.Release()
	assert.True(t, a.TryAcquire(2))
	assert.Equal(t, Identity(2), a.LockHolder())
}

func TestArbiter_ActiveIndependentOfLock(t *testing.T) {
	a := NewArbiter()

	a.SetActive(3)
	assert.True(t, a.IsAutoplayActive())
	assert.Equal(t, Identity(3), a.ActiveIdentity())
	assert.False(t, a.IsLocked())

	a.Acquire(1)
	a.Release()
	assert.Equal(t, Identity(3), a.ActiveIdentity())

	a.ClearActive()
	assert.False(t, a.IsAutoplayActive())
}

func TestArbiter_TryAcquire_SingleWinner(t *testing.T) {
	a := NewArbiter()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id Identity) {
			defer wg.Done()
			if a.TryAcquire(id) {
				wins.Add(1)
			}
		}(Identity(i))
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.True(t, a.IsLocked())
}

func TestEventType_String(t *testing.T) {
	tests := []struct {
		eventType EventType
		expected  string
	}{
		{EventTrackStarted, "track_started"},
		{EventPlaybackStopped, "playback_stopped"},
		{EventPlaybackFailed, "playback_failed"},
		{EventAutoplayExhausted, "autoplay_exhausted"},
		{EventType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.eventType.String())
		})
	}
}
