package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aidra-health/aidra/pkg/Logger"
	"github.com/aidra-health/aidra/pkg/io/framering"
)

// audioRingSize bounds buffered speech audio per client at roughly four
// seconds of 16kHz 16-bit mono.
const audioRingSize = 128 * 1024

const audioFlushInterval = 20 * time.Millisecond

// ClientSession is one connected websocket client. Writes are serialized
// through mutex; provider audio is staged in a drop-oldest ring so a slow
// reader never blocks the session event pump.
type ClientSession struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Conn       *websocket.Conn
	mutex      sync.Mutex
	audio      framering.FrameRing
	audioSeq   uint32
	logger     *Logger.Logger
	lastActive time.Time
	closed     bool
}

func NewClientSession(userID uuid.UUID, conn *websocket.Conn, logger *Logger.Logger) *ClientSession {
	return &ClientSession{
		ID:         uuid.New(),
		UserID:     userID,
		Conn:       conn,
		audio:      framering.New(audioRingSize),
		logger:     logger,
		lastActive: time.Now(),
	}
}

// Send marshals and writes one JSON frame.
func (s *ClientSession) Send(msgType MessageType, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	msg := WSMessage{
		Type:      msgType,
		Data:      payload,
		SessionID: s.ID.String(),
		Timestamp: time.Now(),
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return websocket.ErrCloseSent
	}
	s.lastActive = time.Now()
	return s.Conn.WriteJSON(msg)
}

func (s *ClientSession) SendError(code, message string) {
	if err := s.Send(MessageTypeError, ErrorMessage{Code: code, Message: message}); err != nil {
		s.logger.Debugf("failed to send error to client %s: %v", s.ID, err)
	}
}

func (s *ClientSession) SendNotice(message string) {
	if err := s.Send(MessageTypeNotice, NoticeMessage{Message: message}); err != nil {
		s.logger.Debugf("failed to send notice to client %s: %v", s.ID, err)
	}
}

// EnqueueAudio stages a synthesized speech chunk for relay.
func (s *ClientSession) EnqueueAudio(data []byte) {
	s.audioSeq++
	frame := framering.Frame{Seq: s.audioSeq, Data: data, Timestamp: time.Now()}
	if err := s.audio.Enqueue(frame); err != nil {
		s.logger.Warnf("audio frame dropped for client %s: %v", s.ID, err)
	}
}

// RelayAudio drains the audio ring to the client as binary frames until ctx
// is cancelled.
func (s *ClientSession) RelayAudio(ctx context.Context) {
	ticker := time.NewTicker(audioFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				frame, ok := s.audio.Dequeue()
				if !ok {
					break
				}
				if err := s.writeBinary(frame.Data); err != nil {
					s.logger.Debugf("audio relay to client %s stopped: %v", s.ID, err)
					return
				}
			}
		}
	}
}

func (s *ClientSession) writeBinary(data []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return websocket.ErrCloseSent
	}
	return s.Conn.WriteMessage(websocket.BinaryMessage, data)
}

func (s *ClientSession) Touch() {
	s.mutex.Lock()
	s.lastActive = time.Now()
	s.mutex.Unlock()
}

func (s *ClientSession) LastActive() time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.lastActive
}

// Close sends a close frame and tears the connection down. Safe to call
// more than once.
func (s *ClientSession) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.audio.Reset()

	deadline := time.Now().Add(time.Second)
	_ = s.Conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	_ = s.Conn.Close()
}
