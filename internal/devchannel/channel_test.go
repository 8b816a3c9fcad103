package devchannel

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestDispatchRoutesByEvent(t *testing.T) {
	hub := New(testLogger())
	var got string
	hub.On("ping", func(client string, data json.RawMessage) {
		got = string(data)
	})

	hub.dispatch("c1", Message{Event: "ping", Data: json.RawMessage(`"hello"`)})
	if got != `"hello"` {
		t.Fatalf("handler payload %q", got)
	}

	// unknown events are dropped silently
	hub.dispatch("c1", Message{Event: "nope", Data: nil})
}

func TestWebsocketRoundTrip(t *testing.T) {
	hub := New(testLogger())
	received := make(chan string, 1)
	hub.On("inspector:open", func(client string, data json.RawMessage) {
		var loc string
		_ = json.Unmarshal(data, &loc)
		received <- loc
	})

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	msg := Message{Event: "inspector:open", Data: json.RawMessage(`"src/App.svelte:42:0"`)}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case loc := <-received:
		if loc != "src/App.svelte:42:0" {
			t.Fatalf("got payload %q", loc)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("handler never fired")
	}
}
