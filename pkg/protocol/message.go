// Package protocol defines the WebSocket message types for the dashboard
// event stream. One envelope shape carries every event so clients can
// dispatch on the type field.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of event pushed to dashboard clients.
type MessageType string

const (
	TypeStatus     MessageType = "status"     // controller lifecycle state
	TypePose       MessageType = "pose"       // joint angles + tool position
	TypeLog        MessageType = "log"        // operator-facing log line
	TypeError      MessageType = "error"      // recoverable or fatal error
	TypeTranscript MessageType = "transcript" // live or final speech text
)

// Message is the envelope for all dashboard events.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a message with the current timestamp.
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct.
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// StatusData is the payload of a status event.
type StatusData struct {
	Status string `json:"status"`
}

// PoseData is the payload of a pose event: joint angles in degrees plus
// the derived Cartesian tool position in meters.
type PoseData struct {
	Angles [6]float64 `json:"angles"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Z      float64    `json:"z"`
}

// LogData is the payload of log and error events.
type LogData struct {
	Message string `json:"message"`
}

// TranscriptData is the payload of a transcript event. Live lines replace
// the previous live line; final lines are appended to the session log.
type TranscriptData struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}
