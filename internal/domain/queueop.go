package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// QueueOperation is a durable unit of pending remote work. Operations
// are processed strictly in QueueID order; an operation whose remote
// target is not yet known carries the LocalEntryID so the remote ID can
// be resolved at drain time.
type QueueOperation struct {
	QueueID      int64
	Type         OpType
	LocalEntryID string
	RemoteID     *string
	Payload      json.RawMessage
	Status       OpStatus
	AttemptCount int
	LastError    *string
	LastErrorAt  *time.Time
	CreatedAt    time.Time
}

// ClockInPayload is the payload for OpClockIn operations.
type ClockInPayload struct {
	UserID     string          `json:"user_id"`
	ClockInAt  time.Time       `json:"clock_in_at"`
	Location   *LocationSample `json:"location,omitempty"`
	Validation *GeofenceResult `json:"validation,omitempty"`
}

// ClockOutPayload is the payload for OpClockOut operations.
type ClockOutPayload struct {
	ClockOutAt time.Time       `json:"clock_out_at"`
	BreakMin   int             `json:"break_min"`
	Location   *LocationSample `json:"location,omitempty"`
	Note       string          `json:"note,omitempty"`
}

// EncodePayload serializes a per-type payload for durable storage.
func EncodePayload(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding queue payload: %w", err)
	}
	return data, nil
}

// DecodeClockIn decodes the payload of an OpClockIn operation.
func (op *QueueOperation) DecodeClockIn() (*ClockInPayload, error) {
	if op.Type != OpClockIn {
		return nil, fmt.Errorf("operation %d is %s, not %s", op.QueueID, op.Type, OpClockIn)
	}
	var p ClockInPayload
	if err := json.Unmarshal(op.Payload, &p); err != nil {
		return nil, fmt.Errorf("decoding clock-in payload: %w", err)
	}
	return &p, nil
}

// DecodeClockOut decodes the payload of an OpClockOut operation.
func (op *QueueOperation) DecodeClockOut() (*ClockOutPayload, error) {
	if op.Type != OpClockOut {
		return nil, fmt.Errorf("operation %d is %s, not %s", op.QueueID, op.Type, OpClockOut)
	}
	var p ClockOutPayload
	if err := json.Unmarshal(op.Payload, &p); err != nil {
		return nil, fmt.Errorf("decoding clock-out payload: %w", err)
	}
	return &p, nil
}
