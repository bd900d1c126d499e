package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chat-planet/chat-service/internal/registry"
	"github.com/chat-planet/chat-service/internal/transport/ws"
)

func newTestRouter(t *testing.T) (*registry.Registry, http.Handler) {
	t.Helper()
	reg := registry.New()
	h := NewHandler(reg)
	wsServer := ws.NewServer(ws.NewHub(), reg, ws.Options{})
	return reg, NewRouter(h, wsServer, nil)
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeRooms(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var rooms []string
	if err := json.Unmarshal(rec.Body.Bytes(), &rooms); err != nil {
		t.Fatalf("decode rooms from %q: %v", rec.Body.String(), err)
	}
	return rooms
}

func TestListRoomsEmpty(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/rooms", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rooms := decodeRooms(t, rec); len(rooms) != 0 {
		t.Fatalf("expected no rooms, got %v", rooms)
	}
}

func TestCreateRoom(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/rooms", `{"room_name":"lobby"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rooms := decodeRooms(t, rec)
	if len(rooms) != 1 || rooms[0] != "lobby" {
		t.Fatalf("expected updated list with lobby, got %v", rooms)
	}
}

func TestCreateRoomConflict(t *testing.T) {
	_, router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/rooms", `{"room_name":"lobby"}`)
	rec := doJSON(t, router, http.MethodPost, "/rooms", `{"room_name":"lobby"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestCreateRoomBlankName(t *testing.T) {
	_, router := newTestRouter(t)

	for _, body := range []string{`{"room_name":""}`, `{"room_name":"   "}`} {
		rec := doJSON(t, router, http.MethodPost, "/rooms", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestCreateRoomInvalidJSON(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/rooms", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteRoom(t *testing.T) {
	_, router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/rooms", `{"room_name":"doomed"}`)

	rec := doJSON(t, router, http.MethodDelete, "/rooms/doomed", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/rooms/doomed", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat delete: expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/rooms", "")
	if rooms := decodeRooms(t, rec); len(rooms) != 0 {
		t.Fatalf("expected no rooms after delete, got %v", rooms)
	}
}

func TestListMembers(t *testing.T) {
	reg, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/rooms/absent/members", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing room: expected 404, got %d", rec.Code)
	}

	doJSON(t, router, http.MethodPost, "/rooms", `{"room_name":"lobby"}`)

	rec = doJSON(t, router, http.MethodGet, "/rooms/lobby/members", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("empty room: expected 200, got %d", rec.Code)
	}
	var members map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("expected empty membership, got %v", members)
	}

	reg.JoinRoom("lobby", "c1", "alice")
	rec = doJSON(t, router, http.MethodGet, "/rooms/lobby/members", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if members["c1"] != "alice" {
		t.Fatalf("expected c1->alice, got %v", members)
	}
}

func TestHealthz(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("expected ok body, got %q", rec.Body.String())
	}
}
