package http

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Foysal-Munsy/careerostad-messaging/internal/auth"
	"github.com/Foysal-Munsy/careerostad-messaging/internal/config"
	"github.com/Foysal-Munsy/careerostad-messaging/internal/core"
	"github.com/Foysal-Munsy/careerostad-messaging/internal/store/sqlite"
)

// startTestServer wires an in-memory store, registry, gateway and auth
// service behind an httptest server.
func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := zerolog.Nop()
	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)
	registry := core.NewRegistry(&logger)
	gateway := core.NewGateway(st, registry, time.Second, &logger)

	server := NewServer(gateway, registry, authService, config.Config{
		Addr:               ":0",
		ReadHeaderTimeout:  time.Second,
		ShutdownTimeout:    time.Second,
		WSMessageRateLimit: 0,
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts
}

// registerUser creates an account and returns its token.
func registerUser(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()

	body, _ := json.Marshal(RegisterRequest{Email: email, Password: "password123"})
	resp, err := ts.Client().Post(ts.URL+"/api/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("register %s: unexpected status %d", email, resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return authResp.Token
}

// doJSON issues an authenticated JSON request and returns the response.
func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, payload any) *stdhttp.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := stdhttp.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}
