package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kodbank/internal/config"
	"kodbank/internal/game"
	httpserver "kodbank/internal/http"
	"kodbank/internal/http/handlers"
	"kodbank/internal/market"
	"kodbank/internal/repository"
	"kodbank/internal/rng"
	"kodbank/internal/service"
	"kodbank/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type testServer struct {
	*httptest.Server
	sim  *market.Simulator
	otps *otpBox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	src := rng.Default()
	sim := market.NewSimulator(market.SimulatorConfig{}, src)
	hub := ws.NewHub()
	sim.Subscribe(hub)

	otps := newOTPBox()
	sessions := service.NewSessionManager("e2e-secret", time.Hour, nil)
	rewards := service.NewRewardService(store, game.NewWheel(src), game.NewBonusDropper(src))
	h := &handlers.Handler{
		Auth:      service.NewAuthService(store, sessions, otps),
		Sessions:  sessions,
		Directory: service.NewDirectoryService(store),
		Rewards:   rewards,
		Ledger:    service.NewLedgerService(store, sim, service.UnconditionalPolicy{}),
		Dashboard: service.NewDashboardService(rewards, sim, market.NewTrendGenerator(src, time.Now)),
		Market:    sim,
	}
	cfg := &config.Config{
		APIRateLimit:     1000,
		APIRateWindow:    time.Minute,
		AuthRateLimit:    1000,
		AuthRateWindow:   time.Minute,
		ActionRateLimit:  1000,
		ActionRateWindow: time.Minute,
	}

	r := gin.New()
	httpserver.RegisterRoutes(r, cfg, httpserver.Deps{
		Handler:   h,
		Health:    handlers.NewHealthHandler(store, config.StorageMemory, "test"),
		Readiness: service.NewStoreMonitor(store, time.Minute),
		Hub:       hub,
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, sim: sim, otps: otps}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, s.URL+path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

// signup registers, activates and logs in, returning the session token.
func (s *testServer) signup(t *testing.T, username string) string {
	t.Helper()
	email := username + "@example.com"
	if code, body := s.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": username, "email": email, "password": "pw-" + username, "phone": "+1555",
	}); code != http.StatusCreated {
		t.Fatalf("register %s: %d %v", username, code, body)
	}
	if code, body := s.do(t, http.MethodPost, "/api/verify-otp", "", map[string]string{
		"email": email, "otp": s.otps.code(email),
	}); code != http.StatusOK {
		t.Fatalf("verify otp: %d %v", code, body)
	}
	code, body := s.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"identifier": username, "password": "pw-" + username,
	})
	if code != http.StatusOK {
		t.Fatalf("login: %d %v", code, body)
	}
	return body["token"].(string)
}

func TestE2E_BankingFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice01")
	s.signup(t, "bobby02")

	if code, _ := s.do(t, http.MethodGet, "/api/dashboard", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("dashboard without session: %d", code)
	}

	code, dash := s.do(t, http.MethodGet, "/api/dashboard", alice, nil)
	if code != http.StatusOK || dash["balance"].(float64) != 50000 {
		t.Fatalf("dashboard: %d %v", code, dash["balance"])
	}

	code, body := s.do(t, http.MethodPost, "/api/transfer", alice, map[string]any{
		"recipient": "bobby02", "amount": 1000, "note": "lunch",
	})
	if code != http.StatusOK || body["balance"].(float64) != 49000 {
		t.Fatalf("transfer: %d %v", code, body)
	}

	code, body = s.do(t, http.MethodPost, "/api/transfer", alice, map[string]any{
		"recipient": "alice01", "amount": 10,
	})
	if code != http.StatusUnprocessableEntity || body["code"] != service.ErrSelfTransfer.Code {
		t.Fatalf("self transfer: %d %v", code, body)
	}

	code, body = s.do(t, http.MethodPost, "/api/transfer", alice, map[string]any{
		"recipient": "nobody99", "amount": 10,
	})
	if code != http.StatusNotFound {
		t.Fatalf("unknown recipient: %d %v", code, body)
	}

	code, body = s.do(t, http.MethodPost, "/api/invest/buy", alice, map[string]any{"symbol": "intc", "shares": 2})
	if code != http.StatusOK {
		t.Fatalf("buy: %d %v", code, body)
	}
	code, body = s.do(t, http.MethodPost, "/api/invest/sell", alice, map[string]any{"symbol": "INTC", "shares": 1000000})
	if code != http.StatusUnprocessableEntity || body["code"] != service.ErrInsufficientShares.Code {
		t.Fatalf("oversell: %d %v", code, body)
	}

	code, body = s.do(t, http.MethodPost, "/api/reward/spin", alice, nil)
	if code != http.StatusOK || body["coins"] == nil {
		t.Fatalf("spin: %d %v", code, body)
	}

	code, body = s.do(t, http.MethodPost, "/api/loans/apply", alice, map[string]any{"loanId": "L2", "amount": 500})
	if code != http.StatusOK || body["transaction_id"] == "" {
		t.Fatalf("loan: %d %v", code, body)
	}

	code, body = s.do(t, http.MethodGet, "/api/users/search?query=bob", alice, nil)
	if code != http.StatusOK || len(body["users"].([]any)) != 1 {
		t.Fatalf("search: %d %v", code, body)
	}

	if code, _ := s.do(t, http.MethodPost, "/api/logout", alice, nil); code != http.StatusOK {
		t.Fatalf("logout: %d", code)
	}
}

func TestE2E_MarketFeed(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "feeder1")

	url := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws/market?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// the client registers asynchronously; keep ticking until a frame arrives
	deadline := time.Now().Add(3 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	done := make(chan struct{})
	defer close(done)
	go func() {
		tick := time.NewTicker(50 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				s.sim.Tick()
			}
		}
	}()

	var msg ws.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "prices" || len(msg.Prices) != len(market.DefaultInstruments()) {
		t.Fatalf("unexpected frame %+v", msg)
	}

	bad := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws/market?token=garbage"
	if _, resp, err := websocket.DefaultDialer.Dial(bad, nil); err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got err=%v", err)
	}
}
