package websocket

import (
	"encoding/json"
	"time"
)

// MessageType discriminates frames on the client websocket.
type MessageType string

const (
	// client -> server
	MessageTypeInit    MessageType = "init"
	MessageTypeText    MessageType = "text"
	MessageTypeNewConv MessageType = "new_conversation"
	MessageTypeEnd     MessageType = "end_session"
	MessageTypeStatus  MessageType = "status"
	MessageTypePing    MessageType = "ping"

	// server -> client
	MessageTypeReady    MessageType = "ready"
	MessageTypeResponse MessageType = "response"
	MessageTypeNotice   MessageType = "notice"
	MessageTypeError    MessageType = "error"
	MessageTypePong     MessageType = "pong"
)

// WSMessage is the envelope for every JSON frame. Audio travels separately
// as binary frames.
type WSMessage struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// TextMessage is the payload of a MessageTypeText frame.
type TextMessage struct {
	Content  string `json:"content"`
	Priority string `json:"priority,omitempty"`
}

// ResponseMessage is a conversational turn pushed to the client.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Stage   string `json:"stage"`
}

// NoticeMessage is a throttled operational notification (connection drops,
// queue overflow, reconnect failures).
type NoticeMessage struct {
	Message string `json:"message"`
}

type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ReadyMessage acknowledges init and carries the conversation id.
type ReadyMessage struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}
