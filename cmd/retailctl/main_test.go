package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Baodng2402/360-Retail-Web-sub000/internal/testutil"
)

// retailAPI is a minimal identity/subscription API for CLI tests.
func retailAPI(t *testing.T) *httptest.Server {
	t.Helper()
	claims := func(store string) string {
		c := testutil.NewClaims("u-1").WithEmail("owner@example.com").WithStatus("Active")
		if store != "" {
			c.WithStore(store, "Owner")
		}
		return c.Token(t)
	}
	reply := func(w http.ResponseWriter, status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", onlyMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "secret" {
			reply(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid email or password."})
			return
		}
		reply(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"accessToken": claims("store-1")}})
	}))
	mux.HandleFunc("/api/auth/refresh-access", onlyMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"accessToken": claims(r.URL.Query().Get("storeId"))})
	}))
	mux.HandleFunc("/api/subscription/status", onlyMethod(http.MethodGet, func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, map[string]any{"status": "Active", "planName": "Pro", "storeId": "store-1", "hasStore": true})
	}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupEnv(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "credentials.json")
	t.Setenv("RETAIL_API_BASE_URL", baseURL)
	t.Setenv("CREDENTIALS_BACKEND", "file")
	t.Setenv("CREDENTIALS_FILE", path)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("OBSERVABILITY_METRICS_ENABLED", "false")
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t, "")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage: retailctl")
	assert.Contains(t, stderr, "switch-store")

	code, _, stderr = runCLI(t, "", "bogus")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "bogus"`)
}

func TestRun_SessionLifecycle(t *testing.T) {
	srv := retailAPI(t)
	setupEnv(t, srv.URL+"/api")

	code, out, _ := runCLI(t, "", "whoami")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Not signed in.")

	code, _, stderr := runCLI(t, "wrong\n", "login", "--email", "owner@example.com")
	require.Equal(t, 1, code)
	assert.Contains(t, stderr, "Invalid email or password.")

	code, out, _ = runCLI(t, "secret\n", "login", "--email", "owner@example.com")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "owner@example.com")
	assert.Contains(t, out, "store-1")

	code, out, _ = runCLI(t, "", "switch-store", "--store-id", "store-2", "--name", "Uptown")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Uptown (store-2)")

	// A new process only knows the store id from the token.
	code, out, _ = runCLI(t, "", "whoami")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "store-2")

	code, out, _ = runCLI(t, "", "whoami", "--json")
	require.Equal(t, 0, code)
	var sess map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &sess))
	assert.Equal(t, "store-2", sess["store_id"])

	code, out, _ = runCLI(t, "", "guard", "--requires-store")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Access: allowed")

	code, out, _ = runCLI(t, "", "trial-status")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Pro")

	code, out, _ = runCLI(t, "", "logout")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Signed out.")

	code, out, _ = runCLI(t, "", "guard", "--requires-store")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "denied")
}

func TestRun_SwitchStoreRequiresID(t *testing.T) {
	srv := retailAPI(t)
	setupEnv(t, srv.URL+"/api/")

	code, _, stderr := runCLI(t, "", "switch-store")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "--store-id")
}

func TestRun_Prefs(t *testing.T) {
	srv := retailAPI(t)
	setupEnv(t, srv.URL+"/api/")

	code, out, _ := runCLI(t, "", "prefs")
	require.Equal(t, 0, code)
	assert.Equal(t, "{}\n", out)

	code, out, _ = runCLI(t, "", "prefs", "--set", `{"lowStock":true}`)
	require.Equal(t, 0, code)
	assert.Equal(t, "{\"lowStock\":true}\n", out)

	// Signing in and out leaves the preferences alone.
	code, _, _ = runCLI(t, "secret\n", "login", "--email", "owner@example.com")
	require.Equal(t, 0, code)
	code, _, _ = runCLI(t, "", "logout")
	require.Equal(t, 0, code)

	code, out, _ = runCLI(t, "", "prefs")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "lowStock")

	code, _, _ = runCLI(t, "", "prefs", "--set", "{nope")
	assert.Equal(t, 2, code)
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("a\r\nb\nc\n"), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, lines)

	_, err = readLines(strings.NewReader("only one\n"), 2)
	require.ErrorIs(t, err, errUsage)
}
