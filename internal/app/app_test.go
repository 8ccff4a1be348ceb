package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnfpayroll/auth-api/internal/core/domain"
	"github.com/jnfpayroll/auth-api/internal/pkg/config"
)

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	base := map[string]string{
		"BCRYPT_COST":  "4",
		"HASH_WORKERS": "2",
		"SECRET_KEY":   "test-secret",
	}
	for k, v := range env {
		base[k] = v
	}
	cfg, err := config.LoadFrom(envconfig.MapLookuper(base))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

func newTestApp(t *testing.T, env map[string]string) *App {
	t.Helper()
	a, err := New(context.Background(), testConfig(t, env), zerolog.Nop(), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func do(t *testing.T, h http.Handler, method, path, body, token string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func login(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()
	code, body := do(t, h, http.MethodPost, "/api/login",
		`{"username":"`+username+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusOK, code, body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestApp_SeededAdminFlow(t *testing.T) {
	h := newTestApp(t, nil).Handler()

	token := login(t, h, "admin", "password123")

	code, body := do(t, h, http.MethodGet, "/api/protected", "", token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Welcome admin! This is a protected route.", body["message"])
	assert.Equal(t, "Connected successfully!", body["backend_status"])
	info, _ := body["deployment_info"].(map[string]any)
	assert.Equal(t, "development", info["environment"])

	code, body = do(t, h, http.MethodPost, "/api/verify-token", `{"token":"`+token+`"}`, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["valid"])

	code, body = do(t, h, http.MethodGet, "/api/users", "", token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["count"])
}

func TestApp_UserDirectoryRequiresAdmin(t *testing.T) {
	h := newTestApp(t, nil).Handler()

	code, body := do(t, h, http.MethodGet, "/api/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Token required", body["error"])

	demo := login(t, h, "demo", "demo123")
	code, body = do(t, h, http.MethodGet, "/api/users", "", demo)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", body["error"])
	assert.NotNil(t, body["timestamp"])
}

func TestApp_RegisterThenLogin(t *testing.T) {
	h := newTestApp(t, nil).Handler()

	code, body := do(t, h, http.MethodPost, "/api/users",
		`{"username":"alice","password":"s3cret","email":"alice@example.com"}`, "")
	require.Equal(t, http.StatusCreated, code, body)
	user, _ := body["user"].(map[string]any)
	assert.Equal(t, domain.RoleUser, user["role"])

	code, body = do(t, h, http.MethodPost, "/api/users",
		`{"username":"alice","password":"other","email":"alice@example.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User already exists", body["error"])

	token := login(t, h, "alice", "s3cret")
	code, body = do(t, h, http.MethodPost, "/api/verify-token", `{"token":"`+token+`"}`, "")
	require.Equal(t, http.StatusOK, code)
	verified, _ := body["user"].(map[string]any)
	assert.Equal(t, "alice@example.com", verified["email"])
}

func TestApp_ErrorEnvelope(t *testing.T) {
	h := newTestApp(t, nil).Handler()

	code, body := do(t, h, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.NotEmpty(t, body["error"])
	assert.NotNil(t, body["timestamp"])

	code, body = do(t, h, http.MethodPost, "/api/verify-token", `{"token":"garbage"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid or expired token", body["error"])
}

func TestApp_Health(t *testing.T) {
	h := newTestApp(t, nil).Handler()

	for _, path := range []string{"/health", "/api/health"} {
		code, body := do(t, h, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, code, path)
		assert.Equal(t, "healthy", body["status"], path)
		assert.Equal(t, "JNF Payroll API is running", body["message"], path)
	}

	code, body := do(t, h, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestApp_SeedDisabled(t *testing.T) {
	h := newTestApp(t, map[string]string{"SEED_USERS": "false"}).Handler()

	code, body := do(t, h, http.MethodPost, "/api/login", `{"username":"admin","password":"password123"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", body["error"])
}

func TestSeed_Idempotent(t *testing.T) {
	a := newTestApp(t, nil)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, a.store, zerolog.Nop()))

	users, err := a.store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, len(defaultUsers))
}

func TestApp_SQLitePersistsAcrossRestarts(t *testing.T) {
	env := map[string]string{
		"STORE_BACKEND": config.BackendSQLite,
		"SQLITE_PATH":   filepath.Join(t.TempDir(), "auth.db"),
	}

	first, err := New(context.Background(), testConfig(t, env), zerolog.Nop(), Options{})
	require.NoError(t, err)
	code, _ := do(t, first.Handler(), http.MethodPost, "/api/users",
		`{"username":"bob","password":"hunter2","email":"bob@example.com","role":"admin"}`, "")
	require.Equal(t, http.StatusCreated, code)
	require.NoError(t, first.Close(context.Background()))

	second := newTestApp(t, env)
	token := login(t, second.Handler(), "bob", "hunter2")

	code, body := do(t, second.Handler(), http.MethodGet, "/api/users", "", token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["count"])
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	a := newTestApp(t, map[string]string{"PORT": "0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return a.echo.ListenerAddr() != nil }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestOpenRepository_UnknownBackend(t *testing.T) {
	_, _, err := openRepository(context.Background(), config.StoreConfig{Backend: "cassandra"}, zerolog.Nop())
	require.Error(t, err)
}
