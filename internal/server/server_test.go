package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"notifyScope/internal/hub"
	"notifyScope/internal/model"
)

type fakeLifecycle struct {
	connected    chan struct{}
	disconnected chan struct{}
}

func newFakeLifecycle() *fakeLifecycle {
	return &fakeLifecycle{
		connected:    make(chan struct{}, 8),
		disconnected: make(chan struct{}, 8),
	}
}

func (l *fakeLifecycle) ClientConnected()    { l.connected <- struct{}{} }
func (l *fakeLifecycle) ClientDisconnected() { l.disconnected <- struct{}{} }

func dialWS(t *testing.T, ts *httptest.Server, room string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?name=" + room
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	return conn
}

func waitSignal(t *testing.T, ch chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) hub.Envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env hub.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return env
}

func TestNotificationReachesJoinedRoomOnly(t *testing.T) {
	h := hub.New(nil)
	lifecycle := newFakeLifecycle()
	h.BindLifecycle(lifecycle)

	srv := New(":0", h, nil)
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	inRoom := dialWS(t, ts, "Addr1")
	defer inRoom.Close()
	waitSignal(t, lifecycle.connected, "first connect")

	outOfRoom := dialWS(t, ts, "Addr2")
	defer outOfRoom.Close()
	waitSignal(t, lifecycle.connected, "second connect")

	h.PublishNotification(
		model.Dapp{ID: "D1", Name: "InterDAO", Address: "Addr1"},
		model.Notification{DappID: "D1", Name: "InterDAO", Content: "Someone voted for a proposal"},
	)

	env := readEnvelope(t, inRoom)
	if env.Event != "notification" {
		t.Fatalf("event name mismatch: %q", env.Event)
	}
	payload, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected payload type %T", env.Data)
	}
	inner, ok := payload["data"].(map[string]any)
	if !ok {
		t.Fatalf("payload missing data field: %v", payload)
	}
	if inner["content"] != "Someone voted for a proposal" {
		t.Fatalf("content mismatch: %v", inner["content"])
	}

	outOfRoom.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var leaked hub.Envelope
	if err := outOfRoom.ReadJSON(&leaked); err == nil {
		t.Fatalf("notification leaked into wrong room: %+v", leaked)
	}
}

func TestHeartbeatSequence(t *testing.T) {
	h := hub.New(nil)
	lifecycle := newFakeLifecycle()
	h.BindLifecycle(lifecycle)

	srv := New(":0", h, nil)
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	conn := dialWS(t, ts, "wallet-1")
	defer conn.Close()
	waitSignal(t, lifecycle.connected, "connect")

	if err := conn.WriteJSON(hub.Envelope{Event: "events"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	for want := 1; want <= 3; want++ {
		env := readEnvelope(t, conn)
		if env.Event != "events" {
			t.Fatalf("event name mismatch: %q", env.Event)
		}
		got, ok := env.Data.(float64)
		if !ok || int(got) != want {
			t.Fatalf("heartbeat data mismatch: %v, want %d", env.Data, want)
		}
	}
}

func TestDisconnectSignalsLifecycle(t *testing.T) {
	h := hub.New(nil)
	lifecycle := newFakeLifecycle()
	h.BindLifecycle(lifecycle)

	srv := New(":0", h, nil)
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	conn := dialWS(t, ts, "wallet-1")
	waitSignal(t, lifecycle.connected, "connect")

	conn.Close()
	waitSignal(t, lifecycle.disconnected, "disconnect")
}
