package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventFireReachesRegisteredHandlers(t *testing.T) {
	require.True(t, EventSystemInitialize())
	t.Cleanup(func() { EventSystemShutdown() })

	var got EventContext
	EventRegister(EVENT_CODE_APPLICATION_QUIT, func(context EventContext) bool {
		got = context
		return true
	})

	handled := EventFire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT})
	assert.True(t, handled)
	assert.Equal(t, EVENT_CODE_APPLICATION_QUIT, got.Type)
}

func TestEventHandledStopsPropagation(t *testing.T) {
	require.True(t, EventSystemInitialize())
	t.Cleanup(func() { EventSystemShutdown() })

	calls := 0
	EventRegister(EVENT_CODE_RESIZED, func(context EventContext) bool {
		calls++
		return true
	})
	EventRegister(EVENT_CODE_RESIZED, func(context EventContext) bool {
		calls++
		return false
	})

	EventFire(EventContext{Type: EVENT_CODE_RESIZED})
	assert.Equal(t, 1, calls)
}

func TestInputProcessKeyFiresEdgeEvents(t *testing.T) {
	require.True(t, EventSystemInitialize())
	require.NoError(t, InputInitialize())
	t.Cleanup(func() {
		InputShutdown()
		EventSystemShutdown()
	})

	var pressed, released []KeyCode
	EventRegister(EVENT_CODE_KEY_PRESSED, func(context EventContext) bool {
		ke := context.Data.(*KeyEvent)
		pressed = append(pressed, ke.KeyCode)
		return false
	})
	EventRegister(EVENT_CODE_KEY_RELEASED, func(context EventContext) bool {
		ke := context.Data.(*KeyEvent)
		released = append(released, ke.KeyCode)
		return false
	})

	require.NoError(t, InputProcessKey(KEY_A, true))
	// A repeat of the same state must not fire again.
	require.NoError(t, InputProcessKey(KEY_A, true))
	assert.True(t, InputIsKeyDown(KEY_A))

	require.NoError(t, InputUpdate(0.016))
	assert.True(t, InputWasKeyDown(KEY_A))

	require.NoError(t, InputProcessKey(KEY_A, false))
	assert.False(t, InputIsKeyDown(KEY_A))

	assert.Equal(t, []KeyCode{KEY_A}, pressed)
	assert.Equal(t, []KeyCode{KEY_A}, released)
}

func TestInputIgnoresUnknownKey(t *testing.T) {
	require.True(t, EventSystemInitialize())
	require.NoError(t, InputInitialize())
	t.Cleanup(func() {
		InputShutdown()
		EventSystemShutdown()
	})

	fired := false
	EventRegister(EVENT_CODE_KEY_PRESSED, func(context EventContext) bool {
		fired = true
		return false
	})

	require.NoError(t, InputProcessKey(KEY_UNKNOWN, true))
	assert.False(t, fired)
}
