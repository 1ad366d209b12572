package streaming

import "sync"

// Mode is the CLI's current interaction mode.
type Mode string

const (
	ModeDefault Mode = "default"
	ModePlan    Mode = "plan"
	ModeVM      Mode = "vm"
)

// ModeSwitch is a single-writer state machine for the current mode.
// Transitions are atomic; callers read the mode under a lock and the
// arbiter announces every change as a system StreamMessage.
type ModeSwitch struct {
	mu   sync.Mutex
	mode Mode
}

func NewModeSwitch() *ModeSwitch {
	return &ModeSwitch{mode: ModeDefault}
}

func (m *ModeSwitch) Current() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Set transitions to mode and reports the previous mode. It is a no-op,
// reporting ok=false, if mode is already current.
func (m *ModeSwitch) Set(mode Mode) (previous Mode, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == mode {
		return m.mode, false
	}
	previous = m.mode
	m.mode = mode
	return previous, true
}

// Cycle advances default -> plan -> vm -> default.
func (m *ModeSwitch) Cycle() (previous, next Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	previous = m.mode
	switch m.mode {
	case ModeDefault:
		m.mode = ModePlan
	case ModePlan:
		m.mode = ModeVM
	default:
		m.mode = ModeDefault
	}
	return previous, m.mode
}
