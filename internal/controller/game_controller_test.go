package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	gm := service.NewGameManager(store.NewMemoryStore(), zerolog.Nop())
	gs := service.NewGameService(gm, zerolog.Nop())
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterRoutes(app, NewGameController(gs, zerolog.Nop()), NewWebSocketController(gs, zerolog.Nop()), nil)
	return app
}

// call performs one request as player and decodes the JSON response into out
// when out is non-nil.
func call(t *testing.T, app *fiber.App, method, path, player string, body interface{}, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if player != "" {
		req.Header.Set("X-Player-ID", player)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func createSeatedGame(t *testing.T, app *fiber.App) string {
	t.Helper()
	var created struct {
		GameID string `json:"game_id"`
	}
	if code := call(t, app, http.MethodPost, "/api/game/create", "alice", nil, &created); code != fiber.StatusCreated {
		t.Fatalf("create: status %d", code)
	}
	for _, seat := range []struct {
		player string
		color  chess.Color
	}{{"alice", chess.White}, {"bob", chess.Black}} {
		var joined struct {
			Color chess.Color `json:"color"`
		}
		if code := call(t, app, http.MethodPost, "/api/game/join/"+created.GameID, seat.player, nil, &joined); code != fiber.StatusOK {
			t.Fatalf("join %s: status %d", seat.player, code)
		}
		if joined.Color != seat.color {
			t.Fatalf("%s seated as %s, want %s", seat.player, joined.Color, seat.color)
		}
	}
	return created.GameID
}

func TestPlayerIDRequired(t *testing.T) {
	app := newTestApp(t)
	if code := call(t, app, http.MethodPost, "/api/game/create", "", nil, nil); code != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
	if code := call(t, app, http.MethodPost, "/api/game/create?playerId=alice", "", nil, nil); code != fiber.StatusCreated {
		t.Fatalf("query player id should be accepted, status = %d", code)
	}
}

func TestJoinAndState(t *testing.T) {
	app := newTestApp(t)
	id := createSeatedGame(t, app)

	if code := call(t, app, http.MethodPost, "/api/game/join/"+id, "carol", nil, nil); code != fiber.StatusConflict {
		t.Fatalf("third player: status %d, want 409", code)
	}
	if code := call(t, app, http.MethodPost, "/api/game/join/missing", "carol", nil, nil); code != fiber.StatusNotFound {
		t.Fatalf("unknown game: status %d, want 404", code)
	}

	var st model.GameState
	if code := call(t, app, http.MethodGet, "/api/game/"+id, "carol", nil, &st); code != fiber.StatusOK {
		t.Fatalf("state: status %d", code)
	}
	if st.ToMove != chess.White || st.FEN != chess.StartFEN || st.Players.Black.ID != "bob" {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestValidMovesEndpoint(t *testing.T) {
	app := newTestApp(t)
	id := createSeatedGame(t, app)

	tests := []struct {
		square string
		code   int
		count  int
	}{
		{square: "e2", code: fiber.StatusOK, count: 2},
		{square: "b1", code: fiber.StatusOK, count: 2},
		{square: "e4", code: fiber.StatusOK, count: 0},
		{square: "z9", code: fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.square, func(t *testing.T) {
			var body struct {
				Moves []chess.Move `json:"moves"`
			}
			code := call(t, app, http.MethodGet, "/api/game/"+id+"/moves/"+tt.square, "alice", nil, &body)
			if code != tt.code {
				t.Fatalf("status = %d, want %d", code, tt.code)
			}
			if code == fiber.StatusOK && len(body.Moves) != tt.count {
				t.Fatalf("got %d moves, want %d", len(body.Moves), tt.count)
			}
		})
	}
}

func TestMoveEndpoint(t *testing.T) {
	app := newTestApp(t)
	id := createSeatedGame(t, app)
	path := "/api/game/" + id + "/move"

	tests := []struct {
		name   string
		player string
		body   interface{}
		code   int
	}{
		{name: "black first", player: "bob", body: model.WSMove{From: "e7", To: "e5"}, code: fiber.StatusConflict},
		{name: "spectator", player: "carol", body: model.WSMove{From: "e2", To: "e4"}, code: fiber.StatusForbidden},
		{name: "illegal", player: "alice", body: model.WSMove{From: "e2", To: "e5"}, code: fiber.StatusBadRequest},
		{name: "empty origin", player: "alice", body: model.WSMove{From: "e4", To: "e5"}, code: fiber.StatusBadRequest},
		{name: "off board", player: "alice", body: model.WSMove{From: "e2", To: "e0"}, code: fiber.StatusBadRequest},
		{name: "malformed", player: "alice", body: "e2e4", code: fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := call(t, app, http.MethodPost, path, tt.player, tt.body, nil); code != tt.code {
				t.Fatalf("status = %d, want %d", code, tt.code)
			}
		})
	}

	var ply chess.Ply
	if code := call(t, app, http.MethodPost, path, "alice", model.WSMove{From: "e2", To: "e4"}, &ply); code != fiber.StatusOK {
		t.Fatalf("legal move: status %d", code)
	}
	if ply.Notation != "e4" || ply.To.String() != "e4" {
		t.Fatalf("unexpected ply %+v", ply)
	}

	if code := call(t, app, http.MethodPost, "/api/game/"+id+"/resign", "bob", nil, nil); code != fiber.StatusOK {
		t.Fatalf("resign: status %d", code)
	}
	if code := call(t, app, http.MethodPost, path, "bob", model.WSMove{From: "e7", To: "e5"}, nil); code != fiber.StatusConflict {
		t.Fatalf("move after resignation: status %d, want 409", code)
	}
	var st model.GameState
	call(t, app, http.MethodGet, "/api/game/"+id, "alice", nil, &st)
	if st.Status.State != chess.Resigned || st.Status.Winner != chess.White {
		t.Fatalf("unexpected status %+v", st.Status)
	}

	if code := call(t, app, http.MethodDelete, "/api/game/"+id, "alice", nil, nil); code != fiber.StatusNoContent {
		t.Fatalf("delete: status %d, want 204", code)
	}
	if code := call(t, app, http.MethodGet, "/api/game/"+id, "alice", nil, nil); code != fiber.StatusNotFound {
		t.Fatalf("deleted game: status %d, want 404", code)
	}
}

func TestMatchmakingEndpoints(t *testing.T) {
	app := newTestApp(t)

	if code := call(t, app, http.MethodGet, "/api/game/matchmaking/wait", "alice", nil, nil); code != fiber.StatusConflict {
		t.Fatalf("wait before joining: status %d, want 409", code)
	}
	if code := call(t, app, http.MethodPost, "/api/game/matchmaking/join", "alice", nil, nil); code != fiber.StatusOK {
		t.Fatalf("join: status %d", code)
	}
	if code := call(t, app, http.MethodPost, "/api/game/matchmaking/join", "alice", nil, nil); code != fiber.StatusConflict {
		t.Fatalf("second join: status %d, want 409", code)
	}

	var waiting struct {
		Status string `json:"status"`
	}
	if code := call(t, app, http.MethodGet, "/api/game/matchmaking/wait?timeout=10ms", "alice", nil, &waiting); code != fiber.StatusAccepted || waiting.Status != "waiting" {
		t.Fatalf("wait: status %d %+v", code, waiting)
	}
	if code := call(t, app, http.MethodGet, "/api/game/matchmaking/wait?timeout=soon", "alice", nil, nil); code != fiber.StatusBadRequest {
		t.Fatalf("bad timeout: status %d, want 400", code)
	}

	var left struct {
		Removed bool `json:"removed"`
	}
	call(t, app, http.MethodPost, "/api/game/matchmaking/leave", "alice", nil, &left)
	if !left.Removed {
		t.Fatalf("alice should have been removed from the queue")
	}
	call(t, app, http.MethodPost, "/api/game/matchmaking/leave", "alice", nil, &left)
	if left.Removed {
		t.Fatalf("second leave should report nothing removed")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrGameNotFound, fiber.StatusNotFound},
		{model.ErrNotInGame, fiber.StatusForbidden},
		{chess.ErrNotYourTurn, fiber.StatusConflict},
		{chess.ErrGameOver, fiber.StatusConflict},
		{chess.ErrIllegalMove, fiber.StatusBadRequest},
		{chess.ErrInvalidPosition, fiber.StatusBadRequest},
		{chess.ErrKingMissing, fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
