package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tieubaoca/chatwidget/types"
)

const (
	wsReadLimit = 512 * 1024 // 512KB max message size
	wsPongWait  = 60 * time.Second
	wsWriteWait = 10 * time.Second
)

// WebSocketService answers agent prompts over a websocket, one reply per
// chat request.
type WebSocketService struct {
	agents   *AgentManager
	upgrader websocket.Upgrader
}

func NewWebSocketService(agents *AgentManager) *WebSocketService {
	return &WebSocketService{
		agents: agents,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("websocket: upgrade failed")
		return
	}
	defer conn.Close()

	logger := log.WithField("conn", uuid.NewString())
	logger.Info("websocket: connected")

	// Set connection properties
	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithError(err).Warn("websocket: read failed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))

		res := s.dispatch(ctx, logger, p)
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(res); err != nil {
			logger.WithError(err).Warn("websocket: write failed")
			return
		}
	}
}

func (s *WebSocketService) dispatch(ctx context.Context, logger log.Interface, p []byte) types.WebSocketResponse {
	var req types.WebsocketRequest
	if err := json.Unmarshal(p, &req); err != nil {
		logger.WithError(err).Debug("websocket: bad request")
		return errorResponse("invalid request")
	}

	switch req.Type {
	case types.TypeWebsocketChat:
		payloadBytes, err := json.Marshal(req.Payload)
		if err != nil {
			return errorResponse("invalid payload")
		}
		var payload types.WebSocketChatPayload
		if err := json.Unmarshal(payloadBytes, &payload); err != nil {
			return errorResponse("invalid payload")
		}
		name := payload.AgentName
		if name == "" {
			name = DefaultAgentName
		}
		reply, err := s.agents.Response(ctx, name, payload.Prompt)
		if err != nil {
			logger.WithError(err).WithField("agent", name).Error("websocket: agent response failed")
			return errorResponse("something went wrong")
		}
		return types.WebSocketResponse{
			Type:    types.TypeWebsocketChat,
			Payload: types.WebSocketChatResponse{Message: reply},
		}
	case types.TypeWebsocketPing:
		return types.WebSocketResponse{Type: types.TypeWebsocketPong}
	default:
		return errorResponse("unknown message type")
	}
}

func errorResponse(msg string) types.WebSocketResponse {
	return types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: types.WebSocketErrorResponse{Error: msg},
	}
}
