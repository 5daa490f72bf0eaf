package domain

type EntryState string

const (
	EntryIdle      EntryState = "idle"
	EntryActive    EntryState = "active"
	EntryOnBreak   EntryState = "on_break"
	EntryCompleted EntryState = "completed"
)

// Working reports whether the state represents an open working interval
// (clocked in, possibly on break).
func (s EntryState) Working() bool {
	return s == EntryActive || s == EntryOnBreak
}

type OpType string

const (
	OpClockIn  OpType = "clock_in"
	OpClockOut OpType = "clock_out"
)

type OpStatus string

const (
	OpPending OpStatus = "pending"
	OpFailed  OpStatus = "failed"
)
