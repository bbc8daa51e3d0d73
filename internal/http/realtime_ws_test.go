package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/realtime"
)

type wsFrame struct {
	Event string          `json:"event"`
	Room  string          `json:"room"`
	Data  json.RawMessage `json:"data"`
}

type wsMessage struct {
	ConversationID string `json:"conversationId"`
	Seq            int64  `json:"seq"`
	Content        string `json:"content"`
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/realtime/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial: status=%d err=%v", status, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f wsFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func expectFrame(t *testing.T, conn *websocket.Conn, event realtime.Event) wsFrame {
	t.Helper()
	f := readFrame(t, conn)
	if f.Event != string(event) {
		t.Fatalf("want %s frame, got %s (%s)", event, f.Event, f.Data)
	}
	return f
}

func expectMessage(t *testing.T, conn *websocket.Conn, convID, content string, seq int64) {
	t.Helper()
	f := expectFrame(t, conn, realtime.EventMessageNew)
	var m wsMessage
	if err := json.Unmarshal(f.Data, &m); err != nil {
		t.Fatalf("decode message:new: %v", err)
	}
	if m.ConversationID != convID || m.Content != content || m.Seq != seq {
		t.Fatalf("message:new: want %q seq %d in %s, got %+v", content, seq, convID, m)
	}
}

// expectSilence must be the last read on conn: a timed out read leaves the
// connection unusable.
func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, raw, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("unexpected extra frame: %s", raw)
	}
	var ne net.Error
	if !errors.As(err, &ne) || !ne.Timeout() {
		t.Fatalf("want read timeout, got %v", err)
	}
}

func TestWebsocketDeliversEachAppendOnce(t *testing.T) {
	env := newTestEnv(t)
	clientTok := env.seed(types.RoleClient, "Cy")
	attendantTok := env.seed(types.RoleAttendant, "Ana")

	status, body := env.do(http.MethodPost, "/api/conversations", clientTok, nil)
	if status != http.StatusCreated {
		t.Fatalf("create: %d %v", status, body)
	}
	convID, _ := body["id"].(string)
	if status, body = env.do(http.MethodPost, "/api/conversations/"+convID+"/assign", attendantTok, nil); status != http.StatusOK {
		t.Fatalf("assign: %d %v", status, body)
	}

	srv := httptest.NewServer(env.engine)
	t.Cleanup(srv.Close)

	attWS := dialWS(t, srv, attendantTok)
	clientWS := dialWS(t, srv, clientTok)
	room := "conversation:" + convID
	joins := []struct {
		conn *websocket.Conn
		data string
	}{
		{attWS, convID},
		{clientWS, room},
	}
	for _, j := range joins {
		expectFrame(t, j.conn, realtime.EventConnected)
		if err := j.conn.WriteJSON(map[string]any{"event": realtime.InJoinConversation, "data": j.data}); err != nil {
			t.Fatalf("write join: %v", err)
		}
		if f := expectFrame(t, j.conn, realtime.EventJoined); f.Room != room {
			t.Fatalf("joined wrong room: %q", f.Room)
		}
	}

	if status, body = env.do(http.MethodPost, "/api/messages", clientTok, map[string]string{"conversationId": convID, "content": "from rest"}); status != http.StatusCreated {
		t.Fatalf("rest append: %d %v", status, body)
	}
	for _, conn := range []*websocket.Conn{attWS, clientWS} {
		expectMessage(t, conn, convID, "from rest", 1)
	}

	if err := attWS.WriteJSON(map[string]any{
		"event": realtime.InMessageSend,
		"data":  map[string]string{"conversationId": convID, "content": "from socket"},
	}); err != nil {
		t.Fatalf("write message:send: %v", err)
	}
	// a duplicate of the first delivery would surface here instead
	for _, conn := range []*websocket.Conn{attWS, clientWS} {
		expectMessage(t, conn, convID, "from socket", 2)
	}
	for _, conn := range []*websocket.Conn{attWS, clientWS} {
		expectSilence(t, conn)
	}

	status, body = env.do(http.MethodGet, "/api/messages/conversation/"+convID, clientTok, nil)
	if status != http.StatusOK {
		t.Fatalf("list messages: %d %v", status, body)
	}
	msgs, _ := body["messages"].([]any)
	want := []string{"from rest", "from socket"}
	if len(msgs) != len(want) {
		t.Fatalf("messages: want %d got %d (%v)", len(want), len(msgs), msgs)
	}
	for i, m := range msgs {
		if got := m.(map[string]any)["content"]; got != want[i] {
			t.Fatalf("message %d: want %q got %v", i, want[i], got)
		}
	}
}

func TestWebsocketSendIntoPendingIsRejected(t *testing.T) {
	env := newTestEnv(t)
	clientTok := env.seed(types.RoleClient, "Cy")

	status, body := env.do(http.MethodPost, "/api/conversations", clientTok, nil)
	if status != http.StatusCreated {
		t.Fatalf("create: %d %v", status, body)
	}
	convID, _ := body["id"].(string)

	srv := httptest.NewServer(env.engine)
	t.Cleanup(srv.Close)
	conn := dialWS(t, srv, clientTok)
	expectFrame(t, conn, realtime.EventConnected)

	if err := conn.WriteJSON(map[string]any{
		"event": realtime.InMessageSend,
		"data":  map[string]string{"conversationId": convID, "content": "too early"},
	}); err != nil {
		t.Fatalf("write message:send: %v", err)
	}
	f := expectFrame(t, conn, realtime.EventError)
	var payload struct {
		Event string `json:"event"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(f.Data, &payload); err != nil {
		t.Fatalf("decode error frame: %v", err)
	}
	if payload.Event != realtime.InMessageSend || payload.Code != "invalid_state" {
		t.Fatalf("unexpected error frame: %+v", payload)
	}

	status, body = env.do(http.MethodGet, "/api/messages/conversation/"+convID, clientTok, nil)
	if msgs, _ := body["messages"].([]any); status != http.StatusOK || len(msgs) != 0 {
		t.Fatalf("rejected send must not persist: %d %v", status, body)
	}
}
