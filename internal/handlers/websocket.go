package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"diamond-mines-backend/internal/models"
	"diamond-mines-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	MessageStateChange = "STATE_CHANGE"
	MessageSoundCue    = "SOUND_CUE"
	MessageToast       = "TOAST"
	MessagePing        = "PING"
	MessagePong        = "PONG"
)

type WebSocketHandler struct {
	sessions *services.SessionManager
	hub      *WebSocketHub
}

// WebSocketHub is the only writer to player connections.
type WebSocketHub struct {
	clients    map[string]*websocket.Conn
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
}

type Client struct {
	PlayerID string
	Conn     *websocket.Conn
}

type Message struct {
	Type     string      `json:"type"`
	PlayerID string      `json:"-"`
	Data     interface{} `json:"data"`
}

func NewWebSocketHub() *WebSocketHub {
	hub := &WebSocketHub{
		clients:    make(map[string]*websocket.Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
	}

	go hub.run()

	return hub
}

func NewWebSocketHandler(sessions *services.SessionManager, hub *WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{
		sessions: sessions,
		hub:      hub,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	playerID := c.GetString("player_id")
	engine := h.sessions.Get(c.Request.Context(), playerID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	client := &Client{
		PlayerID: playerID,
		Conn:     conn,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	h.hub.Presenter(playerID).OnStateChange(engine.State())

	for {
		var msg Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if msg.Type == MessagePing {
			h.hub.send(&Message{
				Type:     MessagePong,
				PlayerID: playerID,
				Data:     gin.H{"timestamp": time.Now().Unix()},
			})
		}
	}
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			if old, ok := hub.clients[client.PlayerID]; ok && old != client.Conn {
				old.Close()
			}
			hub.clients[client.PlayerID] = client.Conn
			log.Printf("Client registered: %s", client.PlayerID)

		case client := <-hub.unregister:
			if conn, ok := hub.clients[client.PlayerID]; ok && conn == client.Conn {
				delete(hub.clients, client.PlayerID)
				log.Printf("Client unregistered: %s", client.PlayerID)
			}

		case message := <-hub.broadcast:
			if conn, ok := hub.clients[message.PlayerID]; ok {
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteJSON(message); err != nil {
					log.Printf("Failed to push %s to %s: %v", message.Type, message.PlayerID, err)
				}
			}
		}
	}
}

// send queues a message and drops it when the hub is saturated.
func (hub *WebSocketHub) send(msg *Message) {
	select {
	case hub.broadcast <- msg:
	default:
		log.Printf("Dropping %s for %s: hub queue full", msg.Type, msg.PlayerID)
	}
}

// Presenter returns the engine notification target of one player.
func (hub *WebSocketHub) Presenter(playerID string) services.Presenter {
	return &wsPresenter{hub: hub, playerID: playerID}
}

type wsPresenter struct {
	hub      *WebSocketHub
	playerID string
}

func (p *wsPresenter) OnStateChange(state models.SessionState) {
	p.hub.send(&Message{
		Type:     MessageStateChange,
		PlayerID: p.playerID,
		Data:     gin.H{"state": state, "timestamp": time.Now().Unix()},
	})
}

func (p *wsPresenter) OnSoundCue(cue services.SoundCue) {
	p.hub.send(&Message{
		Type:     MessageSoundCue,
		PlayerID: p.playerID,
		Data:     gin.H{"cue": cue},
	})
}

func (p *wsPresenter) OnToast(toast services.Toast) {
	p.hub.send(&Message{
		Type:     MessageToast,
		PlayerID: p.playerID,
		Data:     toast,
	})
}
