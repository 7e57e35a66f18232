package ops

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"dramahub/internal/catalog"
	"dramahub/pkg/models"
)

func testRouter(t *testing.T, store *catalog.Store, hub *Hub) (*gin.Engine, TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := testTokens()
	h := NewHandler(store, hub, tokens, "ops-key", zap.NewNop().Sugar())
	router := gin.New()
	h.RegisterRoutes(router)
	return router, tokens
}

func TestHealth(t *testing.T) {
	router, _ := testRouter(t, catalog.NewStore(), NewHub())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestReadyReportsCatalog(t *testing.T) {
	store := catalog.NewStore()
	store.MergeDrama(catalog.Update{ID: "LOO", Title: "Love O2O",
		Episode: &models.Episode{Number: "1", Media: "f1"}})
	store.MergeDrama(catalog.Update{ID: "LOO", Title: "Love O2O",
		Episode: &models.Episode{Number: "2", Media: "f2"}})
	router, _ := testRouter(t, store, NewHub())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["dramas"] != float64(1) || body["episodes"] != float64(2) {
		t.Fatalf("body = %v", body)
	}
}

func TestTokenExchange(t *testing.T) {
	router, _ := testRouter(t, catalog.NewStore(), NewHub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"key":"ops-key"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Token == "" {
		t.Fatal("no token in response")
	}
}

func TestTokenExchange_WrongKey(t *testing.T) {
	router, _ := testRouter(t, catalog.NewStore(), NewHub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"key":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestStats_RequiresToken(t *testing.T) {
	router, tokens := testRouter(t, catalog.NewStore(), NewHub())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ops/stats", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", w.Code)
	}

	token, _, err := tokens.Sign("test")
	if err != nil {
		t.Fatal(err)
	}
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ops/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestFeed_BroadcastReachesClient(t *testing.T) {
	hub := NewHub()
	router, tokens := testRouter(t, catalog.NewStore(), hub)

	srv := httptest.NewServer(router)
	defer srv.Close()

	token, _, err := tokens.Sign("test")
	if err != nil {
		t.Fatal(err)
	}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ops/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// welcome frame first
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("welcome: %v", err)
	}

	hub.Broadcast(IngestEvent{ID: "evt-1", Kind: "new_episode", DramaID: "LOO", Episode: "1"})

	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var ev IngestEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.DramaID != "LOO" || ev.Kind != "new_episode" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestFeed_RejectsWithoutToken(t *testing.T) {
	router, _ := testRouter(t, catalog.NewStore(), NewHub())
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ops/ws"
	if _, _, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatal("unauthenticated websocket accepted")
	}
}
