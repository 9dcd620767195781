package events

// Kind identifies the lifecycle event carried by an Event.
type Kind string

const (
	KindRunStart         Kind = "run_start"         // Test run is about to execute
	KindDiscoveryMessage Kind = "discovery_message" // Message raised during discovery
	KindRunMessage       Kind = "run_message"       // Message raised during execution
	KindResult           Kind = "result"            // A single test finished
	KindRunComplete      Kind = "run_complete"      // Terminal event for the run
)

// Event is a single lifecycle event from the test execution engine.
// Exactly one payload field is populated, selected by Kind.
type Event struct {
	Kind        Kind
	RunStart    RunStart    // Populated for KindRunStart
	Message     Message     // Populated for KindDiscoveryMessage, KindRunMessage
	Result      TestResult  // Populated for KindResult
	RunComplete RunComplete // Populated for KindRunComplete
}

// NewRunStartEvent creates a KindRunStart event.
func NewRunStartEvent(sources []string) Event {
	return Event{
		Kind:     KindRunStart,
		RunStart: RunStart{Sources: sources},
	}
}

// NewDiscoveryMessageEvent creates a KindDiscoveryMessage event.
func NewDiscoveryMessageEvent(level MessageLevel, text string) Event {
	return Event{
		Kind:    KindDiscoveryMessage,
		Message: Message{Level: level, Text: text},
	}
}

// NewRunMessageEvent creates a KindRunMessage event.
func NewRunMessageEvent(level MessageLevel, text string) Event {
	return Event{
		Kind:    KindRunMessage,
		Message: Message{Level: level, Text: text},
	}
}

// NewResultEvent creates a KindResult event.
func NewResultEvent(result TestResult) Event {
	return Event{
		Kind:   KindResult,
		Result: result,
	}
}

// NewRunCompleteEvent creates a KindRunComplete event.
func NewRunCompleteEvent(complete RunComplete) Event {
	return Event{
		Kind:        KindRunComplete,
		RunComplete: complete,
	}
}
