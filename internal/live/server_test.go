package live

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestServerBroadcastsUpdateToWatcher(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// Give the server goroutine time to register the client.
	time.Sleep(20 * time.Millisecond)

	onUpdate := s.OnUpdate("divide")
	onUpdate(12, true, false)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if evt.Method != "divide" || evt.PC != 12 || !evt.Changed || evt.Widened {
		t.Errorf("event = %+v, want method=divide pc=12 changed=true widened=false", evt)
	}
}
