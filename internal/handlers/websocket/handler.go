package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/aidra-health/aidra/internal/assessment"
	"github.com/aidra-health/aidra/internal/handlers"
	"github.com/aidra-health/aidra/internal/voice"
	"github.com/aidra-health/aidra/pkg/Logger"
)

// OrchestratorFactory builds a fresh voice orchestrator for one client
// connection. Each client owns its provider link, queue and monitor.
type OrchestratorFactory func() *voice.Orchestrator

// Handler upgrades consultation clients to websocket and bridges them to a
// per-connection voice orchestrator and conversation tracker.
type Handler struct {
	upgrader    websocket.Upgrader
	registry    *Registry
	newOrch     OrchestratorFactory
	logger      *Logger.Logger
	pingTimeout time.Duration
}

func NewHandler(newOrch OrchestratorFactory, registry *Registry, logger *Logger.Logger) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Auth happens in middleware before the upgrade.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		registry:    registry,
		newOrch:     newOrch,
		logger:      logger,
		pingTimeout: 90 * time.Second,
	}
}

func (h *Handler) HandleConnection(c *gin.Context) {
	userID, ok := handlers.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("websocket upgrade failed: %v", err)
		return
	}

	session := NewClientSession(userID, conn, h.logger)
	h.registry.Register(session)
	defer h.registry.Unregister(session.ID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := newClientBridge(session, h.newOrch(), h.logger)
	defer bridge.shutdown()

	go session.RelayAudio(ctx)

	if err := bridge.activate(ctx); err != nil {
		// The monitor keeps retrying in the background; let the client
		// stay connected and hear about recovery via notices.
		session.SendNotice("Voice service is currently unreachable, retrying")
	}

	session.Send(MessageTypeReady, ReadyMessage{
		ConversationID: bridge.conversation.ID().String(),
		UserID:         userID.String(),
	})

	h.readLoop(session, bridge)
}

func (h *Handler) readLoop(session *ClientSession, bridge *clientBridge) {
	conn := session.Conn
	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(h.pingTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pingTimeout))
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warnf("client %s read error: %v", session.ID, err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.pingTimeout))
		session.Touch()

		if msgType == websocket.BinaryMessage {
			h.logger.Debugf("ignoring %d byte binary frame from client %s", len(data), session.ID)
			continue
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			session.SendError("bad_message", "Malformed message")
			continue
		}
		h.dispatch(session, bridge, msg)
	}
}

func (h *Handler) dispatch(session *ClientSession, bridge *clientBridge, msg WSMessage) {
	switch msg.Type {
	case MessageTypeInit:
		// Clients may re-request the handshake state after a reconnect.
		_ = session.Send(MessageTypeReady, ReadyMessage{
			ConversationID: bridge.conversation.ID().String(),
			UserID:         session.UserID.String(),
		})

	case MessageTypePing:
		_ = session.Send(MessageTypePong, gin.H{})

	case MessageTypeText:
		var text TextMessage
		if err := json.Unmarshal(msg.Data, &text); err != nil {
			session.SendError("bad_message", "Malformed text payload")
			return
		}
		bridge.handleText(session, text)

	case MessageTypeNewConv:
		id := bridge.startNewConversation()
		_ = session.Send(MessageTypeReady, ReadyMessage{
			ConversationID: id,
			UserID:         session.UserID.String(),
		})

	case MessageTypeEnd:
		bridge.orch.ForceEndSession()
		session.SendNotice("Voice session ended")

	case MessageTypeStatus:
		_ = session.Send(MessageTypeStatus, bridge.orch.Status())

	default:
		session.SendError("unknown_type", "Unknown message type: "+string(msg.Type))
	}
}

// clientBridge ties one client's orchestrator to its conversation state and
// routes provider events back to the websocket.
type clientBridge struct {
	orch         *voice.Orchestrator
	conversation *assessment.Conversation
	logger       *Logger.Logger

	mu           sync.Mutex
	lastUserText string
}

func newClientBridge(session *ClientSession, orch *voice.Orchestrator, logger *Logger.Logger) *clientBridge {
	b := &clientBridge{
		orch:         orch,
		conversation: assessment.New(nil, logger),
		logger:       logger,
	}

	orch.OnNotify(session.SendNotice)
	orch.OnError(func(err error) {
		logger.Warnf("voice pipeline error for client %s: %v", session.ID, err)
	})
	orch.OnMessage(func(msg voice.SessionMessage) {
		b.handleProviderMessage(session, msg)
	})
	return b
}

func (b *clientBridge) activate(ctx context.Context) error {
	return b.orch.Activate(ctx)
}

func (b *clientBridge) shutdown() {
	b.orch.Deactivate()
}

func (b *clientBridge) handleText(session *ClientSession, text TextMessage) {
	req, err := b.orch.SendMessage(text.Content, voice.ParsePriority(text.Priority))
	if err != nil {
		switch {
		case errors.Is(err, voice.ErrQueueFull):
			session.SendError("queue_full", "Too many pending messages, try again shortly")
		case errors.Is(err, voice.ErrEmptyText):
			session.SendError("empty_text", "Message text is required")
		default:
			session.SendError("send_failed", "Could not queue the message")
		}
		return
	}

	b.mu.Lock()
	b.lastUserText = text.Content
	b.mu.Unlock()

	b.logger.Debugf("queued request %s for client %s", req.ID, session.ID)
}

func (b *clientBridge) handleProviderMessage(session *ClientSession, msg voice.SessionMessage) {
	if len(msg.Audio) > 0 {
		session.EnqueueAudio(msg.Audio)
	}
	if msg.Content == "" {
		return
	}

	role := assessment.Role(msg.Role)
	entry := b.conversation.AddMessage(role, msg.Content, msg.Metadata)

	if role == assessment.RoleAssistant {
		b.mu.Lock()
		userText := b.lastUserText
		b.mu.Unlock()
		b.conversation.UpdateProgress(userText, msg.Content)
	}

	if err := session.Send(MessageTypeResponse, ResponseMessage{
		Role:    string(entry.Role),
		Content: entry.Content,
		Stage:   string(b.conversation.Stage()),
	}); err != nil {
		b.logger.Debugf("failed to push response to client %s: %v", session.ID, err)
	}
}

func (b *clientBridge) startNewConversation() string {
	b.orch.ForceEndSession()
	id := b.conversation.StartNew()

	b.mu.Lock()
	b.lastUserText = ""
	b.mu.Unlock()

	return id.String()
}
