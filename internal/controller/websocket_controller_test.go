package controller

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
	gorillaws "github.com/gorilla/websocket"
)

func serve(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })
	return ln.Addr().String()
}

func dial(t *testing.T, addr, gameID, player string) *gorillaws.Conn {
	t.Helper()
	url := "ws://" + addr + "/ws/game/" + gameID + "?playerId=" + player
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", player, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *gorillaws.Conn, typ ws.MessageType, payload interface{}) {
	t.Helper()
	msg, err := ws.NewMessage(typ, payload)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// next skips messages until one of type typ arrives.
func next(t *testing.T, conn *gorillaws.Conn, typ ws.MessageType) ws.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg ws.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if msg.Type == typ {
			return msg
		}
	}
}

// nextState skips states until one satisfies ok.
func nextState(t *testing.T, conn *gorillaws.Conn, ok func(model.GameState) bool) model.GameState {
	t.Helper()
	for {
		msg := next(t, conn, ws.MessageTypeGameState)
		var st model.GameState
		if err := json.Unmarshal(msg.Payload, &st); err != nil {
			t.Fatalf("decode state: %v", err)
		}
		if ok(st) {
			return st
		}
	}
}

func errorText(t *testing.T, msg ws.Message) string {
	t.Helper()
	var text string
	if err := json.Unmarshal(msg.Payload, &text); err != nil {
		t.Fatalf("error payload should be a JSON string: %v", err)
	}
	return text
}

func TestWebSocketGameFlow(t *testing.T) {
	app := newTestApp(t)
	id := createSeatedGame(t, app)
	addr := serve(t, app)

	white := dial(t, addr, id, "alice")
	nextState(t, white, func(st model.GameState) bool { return st.ToMove == chess.White })
	black := dial(t, addr, id, "bob")
	nextState(t, black, func(st model.GameState) bool { return st.ToMove == chess.White })

	send(t, white, ws.MessageTypeValidMoves, ws.ValidMovesRequest{Square: "g1"})
	var vm validMovesResponse
	if err := json.Unmarshal(next(t, white, ws.MessageTypeValidMoves).Payload, &vm); err != nil {
		t.Fatal(err)
	}
	if vm.Square != "g1" || len(vm.Moves) != 2 {
		t.Fatalf("unexpected valid moves %+v", vm)
	}

	send(t, black, ws.MessageTypeMove, model.WSMove{From: "e7", To: "e5"})
	if text := errorText(t, next(t, black, ws.MessageTypeError)); !strings.Contains(text, "not your turn") {
		t.Fatalf("unexpected error %q", text)
	}

	send(t, white, ws.MessageTypeMove, model.WSMove{From: "e2", To: "e4"})
	for _, conn := range []*gorillaws.Conn{white, black} {
		st := nextState(t, conn, func(st model.GameState) bool { return len(st.MoveHistory) == 1 })
		if st.ToMove != chess.Black || st.LastMove == nil || st.LastMove.Notation != "e4" {
			t.Fatalf("unexpected state after e4: %+v", st)
		}
	}

	send(t, white, ws.MessageType("dance"), nil)
	if text := errorText(t, next(t, white, ws.MessageTypeError)); !strings.Contains(text, "unknown message type") {
		t.Fatalf("unexpected error %q", text)
	}

	send(t, black, ws.MessageTypeResign, nil)
	st := nextState(t, white, func(st model.GameState) bool { return st.Status.IsOver() })
	if st.Status.State != chess.Resigned || st.Status.Winner != chess.White {
		t.Fatalf("unexpected final status %+v", st.Status)
	}
}

func TestWebSocketDuplicateConnectionClosed(t *testing.T) {
	app := newTestApp(t)
	id := createSeatedGame(t, app)
	addr := serve(t, app)

	first := dial(t, addr, id, "alice")
	next(t, first, ws.MessageTypeGameState)

	second := dial(t, addr, id, "alice")
	second.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := second.ReadMessage()
	if !gorillaws.IsCloseError(err, gorillaws.CloseNormalClosure) {
		t.Fatalf("duplicate connection should be closed normally, got %v", err)
	}

	// The original connection keeps working.
	send(t, first, ws.MessageTypeMove, model.WSMove{From: "d2", To: "d4"})
	nextState(t, first, func(st model.GameState) bool { return len(st.MoveHistory) == 1 })
}

func TestWebSocketUnknownGame(t *testing.T) {
	app := newTestApp(t)
	addr := serve(t, app)

	conn := dial(t, addr, "missing", "alice")
	if text := errorText(t, next(t, conn, ws.MessageTypeError)); !strings.Contains(text, "game not found") {
		t.Fatalf("unexpected error %q", text)
	}
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/ws/game/abc?playerId=alice", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Fatalf("status = %d, want 426", resp.StatusCode)
	}
}
