// Package hub fans notifications out to connected websocket clients. Each
// client joins a single room named by the identity it supplies on connect;
// per-dapp notifications go to the room keyed by the dapp's address.
package hub

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"notifyScope/internal/model"
)

// Envelope is one message on the client channel: an event name plus payload.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type notificationPayload struct {
	Data model.Notification `json:"data"`
}

type eventPayload struct {
	Name    string         `json:"name"`
	Content map[string]any `json:"content"`
}

// Lifecycle is notified of global connection transitions.
type Lifecycle interface {
	ClientConnected()
	ClientDisconnected()
}

const sendBuffer = 32

type session struct {
	conn *websocket.Conn
	send chan Envelope
	room string
}

// Hub tracks connected sessions and their rooms. Delivery is fire and
// forget: a slow or disconnected client drops messages rather than blocking
// the pipeline.
type Hub struct {
	logger    *zap.Logger
	lifecycle Lifecycle

	mu       sync.Mutex
	sessions map[*session]struct{}
	rooms    map[string]map[*session]struct{}
}

func New(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:   logger,
		sessions: make(map[*session]struct{}),
		rooms:    make(map[string]map[*session]struct{}),
	}
}

// BindLifecycle attaches the listener informed of connect and disconnect
// transitions. Must be called before the first connection is served.
func (h *Hub) BindLifecycle(l Lifecycle) {
	h.lifecycle = l
}

// HandleConn serves one websocket connection until the client disconnects.
// The room name is supplied by the client and scopes which dapp
// notifications it receives.
func (h *Hub) HandleConn(conn *websocket.Conn, room string) {
	sess := &session{
		conn: conn,
		send: make(chan Envelope, sendBuffer),
		room: room,
	}

	h.add(sess)
	if h.lifecycle != nil {
		h.lifecycle.ClientConnected()
	}
	h.logger.Info("client connected", zap.String("room", room))

	go sess.writePump()
	h.readPump(sess)

	h.remove(sess)
	if h.lifecycle != nil {
		h.lifecycle.ClientDisconnected()
	}
	h.logger.Info("client disconnected", zap.String("room", room))
}

// PublishNotification emits a persisted notification to the room keyed by
// the dapp's address.
func (h *Hub) PublishNotification(dapp model.Dapp, n model.Notification) {
	h.emitRoom(dapp.Address, Envelope{
		Event: "notification",
		Data:  notificationPayload{Data: n},
	})
}

// PublishEvent echoes a raw event to every session on the program's own
// channel.
func (h *Hub) PublishEvent(program string, ev model.RawEvent) {
	h.broadcast(Envelope{
		Event: program,
		Data:  eventPayload{Name: ev.Name, Content: ev.Fields},
	})
}

func (h *Hub) add(sess *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[sess] = struct{}{}
	if sess.room == "" {
		return
	}
	members := h.rooms[sess.room]
	if members == nil {
		members = make(map[*session]struct{})
		h.rooms[sess.room] = members
	}
	members[sess] = struct{}{}
}

func (h *Hub) remove(sess *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[sess]; !ok {
		return
	}
	delete(h.sessions, sess)
	if members := h.rooms[sess.room]; members != nil {
		delete(members, sess)
		if len(members) == 0 {
			delete(h.rooms, sess.room)
		}
	}
	close(sess.send)
}

func (h *Hub) emitRoom(room string, env Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sess := range h.rooms[room] {
		sess.offer(env)
	}
}

func (h *Hub) broadcast(env Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sess := range h.sessions {
		sess.offer(env)
	}
}

func (s *session) offer(env Envelope) {
	select {
	case s.send <- env:
	default:
	}
}

func (s *session) writePump() {
	for env := range s.send {
		if err := s.conn.WriteJSON(env); err != nil {
			return
		}
	}
}

// readPump consumes inbound messages. The only supported inbound traffic is
// the heartbeat handshake: an "events" message answered with a fixed 1,2,3
// sequence, and an "identity" message echoed back.
func (h *Hub) readPump(sess *session) {
	for {
		var env Envelope
		if err := sess.conn.ReadJSON(&env); err != nil {
			return
		}

		switch env.Event {
		case "events":
			for _, n := range []int{1, 2, 3} {
				sess.offer(Envelope{Event: "events", Data: n})
			}
		case "identity":
			sess.offer(Envelope{Event: "identity", Data: env.Data})
		}
	}
}
