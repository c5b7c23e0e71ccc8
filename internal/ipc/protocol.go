// Package ipc implements the one-way unixgram transport between CLI
// invocations and the overlay server, and the singleton coordination on
// top of it.
package ipc

import (
	"encoding/json"
	"fmt"

	"sonoctl/internal/state"
)

// MaxDatagram bounds one serialized state record on the wire.
const MaxDatagram = 4096

// MarshalRecord serializes one state record as a single datagram payload.
func MarshalRecord(rec state.Record) ([]byte, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode state record: %w", err)
	}
	if len(payload) > MaxDatagram {
		return nil, fmt.Errorf("state record exceeds %d bytes", MaxDatagram)
	}
	return payload, nil
}

// UnmarshalRecord parses and validates one datagram payload.
func UnmarshalRecord(payload []byte) (state.Record, error) {
	var rec state.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return state.Record{}, fmt.Errorf("decode state record: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return state.Record{}, fmt.Errorf("invalid state record: %w", err)
	}
	return rec, nil
}
