package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures an acquisition event for post-mortem analysis
type Event struct {
	EventType uint8  // Event type code
	Channel   uint8  // Channel the event refers to, if any
	Clock     uint32 // System clock at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtPublish        = 1 // Dominant channel published a snapshot (v1=ST, v2=TH)
	EvtStateChange    = 2 // Servo reader state changed (v1=from, v2=to)
	EvtFrameLength    = 3 // Serial frame length observed (v1=length, v2=remaining)
	EvtFrameSync      = 4 // Serial frame length confirmed (v1=length)
	EvtFrameSyncLost  = 5 // Confirmed length contradicted (v1=old, v2=new)
	EvtFrameDecoded   = 6 // Serial frame decoded (v1=ST byte, v2=TH byte)
	EvtSampleRejected = 7 // Pulse outside the sanity window (v1=raw)
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event capture ring buffer (non-blocking, safe from producer context)
	eventRing     [EventRingSize]Event
	eventRingHead uint8
	eventsEnabled bool = true

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// SetEventsEnabled turns event capture on or off
func SetEventsEnabled(enabled bool) {
	eventsEnabled = enabled
}

// InitAsyncDebug starts the async debug output goroutine.
// Call this from main() after SetDebugWriter.
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output.
// Returns immediately even if the channel is full (drops message).
func DebugAsync(msg string) {
	if !debugEnabled || debugChan == nil {
		return
	}
	select {
	case debugChan <- msg:
	default:
	}
}

// RecordEvent captures an event in the ring buffer
func RecordEvent(eventType, channel uint8, clock, value1, value2 uint32) {
	if !eventsEnabled {
		return
	}
	idx := eventRingHead
	eventRing[idx] = Event{
		EventType: eventType,
		Channel:   channel,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns the recorded events from oldest to newest
func Events() []Event {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	events := make([]Event, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue
		}
		events = append(events, evt)
	}
	return events
}

func eventName(eventType uint8) string {
	switch eventType {
	case EvtPublish:
		return "PUBLISH"
	case EvtStateChange:
		return "STATE"
	case EvtFrameLength:
		return "FRAME_LEN"
	case EvtFrameSync:
		return "FRAME_SYNC"
	case EvtFrameSyncLost:
		return "FRAME_SYNC_LOST!"
	case EvtFrameDecoded:
		return "FRAME"
	case EvtSampleRejected:
		return "REJECT"
	default:
		return "UNKNOWN"
	}
}

// eventHasChannel reports whether the Channel field of an event is meaningful
func eventHasChannel(eventType uint8) bool {
	return eventType == EvtPublish || eventType == EvtSampleRejected
}

// DumpEventRing outputs the event ring buffer through the debug writer
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENTS] === Event Ring Dump ===")
	for _, evt := range Events() {
		line := "[EVENTS] " + eventName(evt.EventType)
		if eventHasChannel(evt.EventType) {
			line += " ch=" + ChannelID(evt.Channel).String()
		}
		debugPrintln(line +
			" clock=" + Utoa(evt.Clock) +
			" v1=" + Utoa(evt.Value1) +
			" v2=" + Utoa(evt.Value2))
	}
	debugPrintln("[EVENTS] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingHead = 0
}
