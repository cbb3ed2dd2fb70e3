// internal/scanner/hub_test.go
package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionPublishAndReceive(t *testing.T) {
	hub := NewHub(time.Minute)
	defer hub.Close()

	session := hub.Open()
	require.NoError(t, session.Publish("3017620422003"))
	require.NoError(t, session.Publish("3068320014083"))

	first := <-session.Events()
	second := <-session.Events()
	assert.Equal(t, "3017620422003", first.Barcode)
	assert.Equal(t, "3068320014083", second.Barcode)
	assert.False(t, first.At.IsZero())
}

func TestSessionStopIsIdempotent(t *testing.T) {
	hub := NewHub(time.Minute)
	defer hub.Close()

	session := hub.Open()
	session.Stop()
	session.Stop()
	session.Stop()

	_, ok := hub.Get(session.ID)
	assert.False(t, ok)

	select {
	case <-session.Done():
	default:
		t.Fatal("Done channel should be closed after Stop")
	}
}

func TestPublishAfterStopFails(t *testing.T) {
	hub := NewHub(time.Minute)
	defer hub.Close()

	session := hub.Open()
	session.Stop()

	err := session.Publish("3017620422003")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestEventsChannelClosesOnStop(t *testing.T) {
	hub := NewHub(time.Minute)
	defer hub.Close()

	session := hub.Open()
	require.NoError(t, session.Publish("3017620422003"))
	session.Stop()

	// Buffered event is still delivered, then the channel closes.
	event, ok := <-session.Events()
	require.True(t, ok)
	assert.Equal(t, "3017620422003", event.Barcode)

	_, ok = <-session.Events()
	assert.False(t, ok)
}

func TestSlowSubscriberDropsOldest(t *testing.T) {
	hub := NewHub(time.Minute)
	defer hub.Close()

	session := hub.Open()
	for i := 0; i < eventBuffer+5; i++ {
		require.NoError(t, session.Publish("code"))
	}

	// The buffer never exceeds its bound and new publishes still succeed.
	count := 0
	session.Stop()
	for range session.Events() {
		count++
	}
	assert.Equal(t, eventBuffer, count)
}

func TestHubReclaimsIdleSessions(t *testing.T) {
	hub := NewHub(50 * time.Millisecond)
	defer hub.Close()

	session := hub.Open()

	assert.Eventually(t, func() bool {
		_, ok := hub.Get(session.ID)
		return !ok
	}, time.Second, 10*time.Millisecond)

	select {
	case <-session.Done():
	default:
		t.Fatal("idle session should have been stopped")
	}
}

func TestHubCloseStopsAllSessions(t *testing.T) {
	hub := NewHub(time.Minute)

	a := hub.Open()
	b := hub.Open()
	hub.Close()

	assert.ErrorIs(t, a.Publish("x"), ErrSessionClosed)
	assert.ErrorIs(t, b.Publish("x"), ErrSessionClosed)
}
