// Package wsdialogue implements the dialogue-session contract over a
// websocket connection to the conversational-speech provider.
package wsdialogue

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aidra-health/aidra/internal/voice"
	"github.com/aidra-health/aidra/pkg/Logger"
)

type Config struct {
	URL     string
	APIKey  string
	AgentID string
}

// Provider dials the speech provider's websocket endpoint.
type Provider struct {
	cfg    Config
	dialer *websocket.Dialer
	logger *Logger.Logger
}

func New(cfg Config, logger *Logger.Logger) *Provider {
	return &Provider{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// OpenSession dials the provider and returns a started session. The session
// is already connected when handed out; its first event is EventConnected.
func (p *Provider) OpenSession(ctx context.Context) (voice.DialogueSession, error) {
	u, err := url.Parse(p.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("wsdialogue: bad provider url: %w", err)
	}
	q := u.Query()
	if p.cfg.AgentID != "" {
		q.Set("agent_id", p.cfg.AgentID)
	}
	u.RawQuery = q.Encode()

	header := http.Header{}
	if p.cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	conn, resp, err := p.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("wsdialogue: dial rejected (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("wsdialogue: dial failed: %w", err)
	}

	s := &session{
		conn:   conn,
		events: make(chan voice.SessionEvent, 32),
		logger: p.logger,
	}

	if err := s.writeFrame(frame{Type: frameSessionStart, AgentID: p.cfg.AgentID}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("wsdialogue: session start failed: %w", err)
	}

	s.emit(voice.SessionEvent{Type: voice.EventConnected, Timestamp: time.Now()})
	go s.readLoop()

	return s, nil
}

// Provider frame vocabulary. Text responses and transcripts arrive as typed
// JSON frames; audio is base64 in the frame body.
const (
	frameSessionStart   = "session_start"
	frameSessionEnd     = "session_end"
	frameUserMessage    = "user_message"
	frameUserTranscript = "user_transcript"
	frameAgentResponse  = "agent_response"
	frameAgentAudio     = "agent_audio"
	frameStatus         = "status"
	frameError          = "error"
)

type frame struct {
	Type    string            `json:"type"`
	AgentID string            `json:"agent_id,omitempty"`
	Text    string            `json:"text,omitempty"`
	Audio   string            `json:"audio,omitempty"`
	Status  string            `json:"status,omitempty"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}

type session struct {
	conn   *websocket.Conn
	events chan voice.SessionEvent
	logger *Logger.Logger

	writeMu sync.Mutex
	endOnce sync.Once
}

func (s *session) Events() <-chan voice.SessionEvent {
	return s.events
}

func (s *session) SendMessage(ctx context.Context, text string) error {
	if deadline, ok := ctx.Deadline(); ok {
		s.conn.SetWriteDeadline(deadline)
	}
	return s.writeFrame(frame{Type: frameUserMessage, Text: text})
}

func (s *session) End() error {
	var err error
	s.endOnce.Do(func() {
		s.writeFrame(frame{Type: frameSessionEnd})
		s.writeMu.Lock()
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

func (s *session) writeFrame(f frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(f)
}

func (s *session) readLoop() {
	defer close(s.events)

	for {
		var f frame
		if err := s.conn.ReadJSON(&f); err != nil {
			s.emit(voice.SessionEvent{
				Type:      voice.EventDisconnected,
				Timestamp: time.Now(),
			})
			return
		}

		switch f.Type {
		case frameAgentResponse:
			s.emit(voice.SessionEvent{
				Type: voice.EventMessage,
				Message: &voice.SessionMessage{
					Role:     "assistant",
					Content:  f.Text,
					Metadata: f.Meta,
				},
				Timestamp: time.Now(),
			})
		case frameUserTranscript:
			s.emit(voice.SessionEvent{
				Type: voice.EventMessage,
				Message: &voice.SessionMessage{
					Role:    "user",
					Content: f.Text,
				},
				Timestamp: time.Now(),
			})
		case frameAgentAudio:
			audio, err := base64.StdEncoding.DecodeString(f.Audio)
			if err != nil {
				s.logger.Warnf("wsdialogue: undecodable audio frame: %v", err)
				continue
			}
			s.emit(voice.SessionEvent{
				Type: voice.EventMessage,
				Message: &voice.SessionMessage{
					Role:  "assistant",
					Audio: audio,
				},
				Timestamp: time.Now(),
			})
		case frameStatus:
			s.emit(voice.SessionEvent{
				Type:      voice.EventStatusChange,
				Status:    f.Status,
				Timestamp: time.Now(),
			})
		case frameError:
			s.emit(voice.SessionEvent{
				Type:      voice.EventError,
				Err:       fmt.Errorf("provider error %s: %s", f.Code, f.Message),
				Timestamp: time.Now(),
			})
		default:
			s.logger.Debugf("wsdialogue: ignoring frame type %q", f.Type)
		}
	}
}

func (s *session) emit(ev voice.SessionEvent) {
	select {
	case s.events <- ev:
	default:
		s.logger.Warnf("wsdialogue: event channel full, dropping %s", ev.Type)
	}
}
