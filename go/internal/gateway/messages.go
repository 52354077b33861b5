package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mcdev12/simviewer/go/internal/models"
)

// ErrUnknownMessageType is returned for envelopes whose type the viewer does not handle
var ErrUnknownMessageType = errors.New("unknown message type")

// MessageType classifies an inbound message
type MessageType string

const (
	MessageTypeStateSync MessageType = "state_sync"
	MessageTypeTick      MessageType = "tick"
	MessageTypeComplete  MessageType = "complete"
	MessageTypeError     MessageType = "error"

	// Local lifecycle notifications, never sent by the engine
	MessageTypeConnected    MessageType = "connected"
	MessageTypeDisconnected MessageType = "disconnected"
)

// Envelope is the wire format of every engine message
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Message string          `json:"message,omitempty"`
}

// OutboundCommand is the wire format of a control command
type OutboundCommand struct {
	Type models.CommandType `json:"type"`
}

// Message is a decoded inbound message tagged with the connection it arrived on.
type Message struct {
	ConnectionID string
	SessionID    string
	Type         MessageType
	Snapshot     *models.SimSnapshot // state_sync, complete
	Patch        *models.TickPatch   // tick
	Error        string              // error, disconnected
	ReceivedAt   time.Time
}

// ParseMessage decodes a raw engine message into a Message
func ParseMessage(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	msg := Message{Type: env.Type, ReceivedAt: time.Now()}

	switch env.Type {
	case MessageTypeStateSync, MessageTypeComplete:
		var snapshot models.SimSnapshot
		if err := json.Unmarshal(env.Payload, &snapshot); err != nil {
			return Message{}, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
		msg.Snapshot = &snapshot

	case MessageTypeTick:
		var patch models.TickPatch
		if err := json.Unmarshal(env.Payload, &patch); err != nil {
			return Message{}, fmt.Errorf("unmarshal tick payload: %w", err)
		}
		msg.Patch = &patch

	case MessageTypeError:
		msg.Error = env.Message

	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}

	return msg, nil
}
