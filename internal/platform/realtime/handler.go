package realtime

import (
	"net/http"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Handler upgrades HTTP connections and relays messages through per-purpose
// hubs: one for chat rooms, one for WebRTC signaling rooms.
type Handler struct {
	chat   *Hub
	signal *Hub
}

// NewHandler creates a Handler with fresh chat and signaling hubs.
func NewHandler() *Handler {
	return &Handler{chat: NewHub(), signal: NewHub()}
}

// ChatHub exposes the chat hub, mainly for tests.
func (h *Handler) ChatHub() *Hub { return h.chat }

// SignalHub exposes the signaling hub, mainly for tests.
func (h *Handler) SignalHub() *Hub { return h.signal }

// RegisterRoutes mounts the WebSocket endpoints on the Echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/chat/:room", h.HandleChat)
	e.GET("/ws/signal/:room", h.HandleSignal)
}

// HandleChat connects a client to a chat room.
func (h *Handler) HandleChat(c echo.Context) error {
	return h.serve(c, h.chat)
}

// HandleSignal connects a client to a signaling room.
func (h *Handler) HandleSignal(c echo.Context) error {
	return h.serve(c, h.signal)
}

func (h *Handler) serve(c echo.Context, hub *Hub) error {
	room := c.Param("room")
	if room == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "room is required")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		ID:   uuid.New().String(),
		Room: room,
		Send: make(chan []byte, 256),
		conn: &gorillaConnAdapter{ws},
	}

	hub.Join(client)

	go writePump(client)
	go readPump(hub, client)

	return nil
}

// readPump relays every inbound message to the rest of the room. On read
// error the client leaves its room and the connection is closed.
func readPump(hub *Hub, client *Client) {
	defer func() {
		hub.Leave(client)
		client.conn.Close()
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			break
		}
		hub.Broadcast(client.Room, message, client)
	}
}

// writePump writes messages from the Send channel to the connection.
func writePump(client *Client) {
	defer client.conn.Close()

	for message := range client.Send {
		if err := client.conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy Conn.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
