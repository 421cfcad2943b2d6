package core

import "sync"

// System internal event codes. Applications should use codes beyond 255.
type EventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Keyboard key pressed.
	EVENT_CODE_KEY_PRESSED EventCode = 0x02

	// Keyboard key released.
	EVENT_CODE_KEY_RELEASED EventCode = 0x03

	// Resized/resolution changed from the OS.
	EVENT_CODE_RESIZED EventCode = 0x08

	MAX_EVENT_CODE EventCode = 0xFF
)

type KeyEvent struct {
	KeyCode KeyCode
}

type ResizeEvent struct {
	Width  uint32
	Height uint32
}

type EventContext struct {
	Type EventCode
	Data interface{}
}

// Should return true if handled, which stops propagation to later listeners.
type FnOnEvent func(context EventContext) bool

type eventSystemState struct {
	registered map[EventCode][]FnOnEvent
}

var onceEvent sync.Once
var eventState *eventSystemState = nil

func EventSystemInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			registered: make(map[EventCode][]FnOnEvent),
		}
	})
	return eventState != nil
}

func EventSystemShutdown() error {
	// Any objects pointed to by handlers are destroyed on their own.
	if eventState != nil {
		eventState.registered = make(map[EventCode][]FnOnEvent)
	}
	return nil
}

// Register to listen for events sent with the provided code.
func EventRegister(code EventCode, onEvent FnOnEvent) bool {
	if eventState == nil {
		return false
	}
	eventState.registered[code] = append(eventState.registered[code], onEvent)
	return true
}

// Fires an event to listeners of the given code. If a handler returns
// true, the event is considered handled and is not passed on.
func EventFire(context EventContext) bool {
	if eventState == nil {
		return false
	}
	for _, handler := range eventState.registered[context.Type] {
		if handler(context) {
			return true
		}
	}
	return false
}
