package recognition

import "time"

// ActivityMonitor watches pen activity and signals when the writer has paused
// long enough that the UI may want to trigger recognition. It is advisory:
// the coordinator never recognizes on its own.
//
// Callers feed pen events through Observe with active=true and periodic ticks
// with active=false; timestamps use the same millisecond clock as the ink
// points.
type ActivityMonitor struct {
	// Thresholds
	minWriteDur time.Duration // Minimum writing duration before a pause counts
	maxWriteDur time.Duration // Writing duration that forces a signal
	pauseDur    time.Duration // Pen-idle duration that ends a writing burst
	cooldown    time.Duration // Minimum delay between signals

	// State
	writing    bool
	writeStart int64 // ms
	lastActive int64 // ms
	lastSignal int64 // ms
	signaled   bool
}

// MonitorEventType classifies what Observe saw.
type MonitorEventType int

const (
	MonitorNone MonitorEventType = iota
	MonitorWriteStart
	MonitorWriteContinue
	MonitorWritePause
	MonitorWriteOverrun // Writing exceeded maxWriteDur without a pause
)

// MonitorResult is the outcome of one Observe call.
type MonitorResult struct {
	Event MonitorEventType
	// ShouldRecognize is true when the pause (or overrun) suggests the
	// buffered ink is ready for recognition.
	ShouldRecognize bool
	// WriteDuration is populated for pause and overrun events.
	WriteDuration time.Duration
}

// NewActivityMonitor creates a monitor with the given thresholds.
func NewActivityMonitor(minWrite, maxWrite, pause, cooldown time.Duration) *ActivityMonitor {
	return &ActivityMonitor{
		minWriteDur: minWrite,
		maxWriteDur: maxWrite,
		pauseDur:    pause,
		cooldown:    cooldown,
	}
}

// Observe processes one observation at time t (milliseconds). active is true
// for pen-down/move/up events and false for idle ticks.
func (m *ActivityMonitor) Observe(active bool, t int64) MonitorResult {
	result := MonitorResult{Event: MonitorNone}

	if active {
		if !m.writing {
			m.writing = true
			m.signaled = false
			m.writeStart = t
			result.Event = MonitorWriteStart
		} else {
			result.Event = MonitorWriteContinue
		}
		m.lastActive = t
	}

	if !m.writing {
		return result
	}

	writeDur := time.Duration(t-m.writeStart) * time.Millisecond
	idleDur := time.Duration(t-m.lastActive) * time.Millisecond

	var signal bool
	var event MonitorEventType

	if idleDur > m.pauseDur && writeDur > m.minWriteDur {
		signal = true
		event = MonitorWritePause
		m.writing = false
		result.WriteDuration = writeDur
	} else if writeDur > m.maxWriteDur && !m.signaled {
		signal = true
		event = MonitorWriteOverrun
		result.WriteDuration = writeDur
		// Stay in writing state; a long burst keeps going.
		m.signaled = true
	}

	if signal && time.Duration(t-m.lastSignal)*time.Millisecond < m.cooldown && m.lastSignal != 0 {
		signal = false
		event = result.Event
	}

	if signal {
		m.lastSignal = t
		result.ShouldRecognize = true
		result.Event = event
	}

	return result
}

// Writing reports whether the monitor currently considers the pen active.
func (m *ActivityMonitor) Writing() bool { return m.writing }

// Reset clears all state.
func (m *ActivityMonitor) Reset() {
	m.writing = false
	m.writeStart = 0
	m.lastActive = 0
	m.lastSignal = 0
	m.signaled = false
}
