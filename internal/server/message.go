package server

import (
	"encoding/json"
	"time"
)

// MessageType identifies a websocket message.
type MessageType string

const (
	// Client to server messages. "spin" doubles as an outbound relay: the
	// admin page sends it and every display client receives it verbatim.
	MessageTypeSpin       MessageType = "spin"
	MessageTypeSpinResult MessageType = "spinResult"
	MessageTypeReset      MessageType = "reset"

	// Server to client messages
	MessageTypeUpdateBets MessageType = "updateBets"
	MessageTypeError      MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope for every websocket frame.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message with the current timestamp. A nil data value
// produces an envelope with no payload, used for bare trigger signals.
func NewMessage(messageType MessageType, data any) (*Message, error) {
	msg := &Message{
		Type:      messageType,
		Timestamp: time.Now(),
	}
	if data != nil {
		dataBytes, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = dataBytes
	}
	return msg, nil
}

// SegmentInfo is the wheel client's description of the landed segment: either
// a stringified multiplier or the bonus marker.
type SegmentInfo struct {
	Text string `json:"text"`
}

// SpinResultData is the inbound payload carrying the landed segment, as
// decided by the wheel-rendering client.
type SpinResultData struct {
	Segment SegmentInfo `json:"segment"`
}

// ErrorData is sent to a client whose message could not be handled.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
