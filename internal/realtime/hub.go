package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Room groups the clients watching one canvas.
type Room struct {
	canvasID string
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
}

func NewRoom(canvasID string) *Room {
	return &Room{
		canvasID: canvasID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
	}
}

// Hub routes presence updates and layout events between the clients of each
// canvas room.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // canvasID -> room
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// LayoutApplied broadcasts an applied engine result to everyone in the
// canvas room, including the client that triggered it.
func (h *Hub) LayoutApplied(canvasID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal layout event", "error", err)
		return
	}
	h.broadcastToRoom(canvasID, &Message{
		Type:     TypeLayoutApplied,
		CanvasID: canvasID,
		Payload:  data,
	}, "")
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.CanvasID]
	if !ok {
		room = NewRoom(client.CanvasID)
		h.rooms[client.CanvasID] = room
	}
	room.clients[client.ClientID] = client
	viewers := len(room.clients)
	h.mu.Unlock()

	welcomePayload, _ := json.Marshal(WelcomePayload{
		ClientID: client.ClientID,
		CanvasID: client.CanvasID,
		Viewers:  viewers,
	})
	client.Send(&Message{
		Type:     TypeWelcome,
		CanvasID: client.CanvasID,
		Payload:  welcomePayload,
	})

	// Bring the new client up to date with who else is here
	stateMsg := room.presence.StateMessage()
	if stateMsg != nil {
		client.Send(stateMsg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg := &Message{
		Type:    TypePresenceJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}
	h.broadcastToRoom(client.CanvasID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "canvas", client.CanvasID, "viewers", viewers)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.CanvasID]
	if !ok {
		h.mu.Unlock()
		return
	}

	// The send channel is never closed: a broadcast may have snapshotted
	// this client before we took the lock, and its WritePump exits via the
	// connection context instead.
	delete(room.clients, client.ClientID)
	room.presence.Remove(client.ClientID)

	if len(room.clients) == 0 {
		delete(h.rooms, client.CanvasID)
	}
	h.mu.Unlock()

	leavePayload, _ := json.Marshal(PresenceLeavePayload{
		UserID: client.UserID,
	})
	leaveMsg := &Message{
		Type:    TypePresenceLeave,
		UserID:  client.UserID,
		Payload: leavePayload,
	}
	h.broadcastToRoom(client.CanvasID, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "canvas", client.CanvasID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	h.mu.RLock()
	room, ok := h.rooms[sender.CanvasID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.presence.Update(sender.ClientID, &presence)

	outPayload, _ := json.Marshal(presence)
	outMsg := &Message{
		Type:    TypePresenceUpdate,
		UserID:  sender.UserID,
		Payload: outPayload,
	}
	h.broadcastToRoom(sender.CanvasID, outMsg, sender.ClientID)
}

func (h *Hub) broadcastToRoom(canvasID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[canvasID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
