package queue

import (
	"encoding/json"
	"fmt"
)

// Status marks a message's role in the stream. Data messages carry no status;
// complete, exit and cancel terminate the stream.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusExit       Status = "exit"
	StatusError      Status = "error"
	StatusCancel     Status = "cancel"
)

// Terminal reports whether the status ends a run's stream.
func (s Status) Terminal() bool {
	switch s {
	case StatusComplete, StatusExit, StatusCancel:
		return true
	}
	return false
}

// Message is one entry on a run's stream. On the wire it is a flat JSON object:
// the payload fields plus an optional "status" field.
type Message struct {
	Data   map[string]any
	Status Status
}

// encode flattens the message into its wire form.
func (m Message) encode() ([]byte, error) {
	wire := make(map[string]any, len(m.Data)+1)
	for k, v := range m.Data {
		wire[k] = v
	}
	if m.Status != "" {
		wire["status"] = string(m.Status)
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return data, nil
}

// decodeMessage parses the wire form, splitting the status field back out.
func decodeMessage(raw string) (Message, error) {
	var wire map[string]any
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	msg := Message{Data: wire}
	if s, ok := wire["status"]; ok {
		str, ok := s.(string)
		if !ok {
			return Message{}, fmt.Errorf("decode message: status is not a string")
		}
		switch Status(str) {
		case StatusProcessing, StatusComplete, StatusExit, StatusError, StatusCancel:
			msg.Status = Status(str)
		default:
			return Message{}, fmt.Errorf("decode message: invalid status %q", str)
		}
		delete(wire, "status")
	}
	return msg, nil
}
