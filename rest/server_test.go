package rest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pouriya/restcommander-sub000/auth"
	"github.com/pouriya/restcommander-sub000/config"
	"github.com/pouriya/restcommander-sub000/mcp"
	"github.com/pouriya/restcommander-sub000/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	OK         bool            `json:"ok"`
	Result     json.RawMessage `json:"result"`
	Reason     json.RawMessage `json:"reason"`
	Code       int             `json:"code"`
	Statistics json.RawMessage `json:"statistics"`
}

func writeFile(t *testing.T, location, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(location), 0o755))
	require.NoError(t, os.WriteFile(location, []byte(content), mode))
}

func commandsDir(t *testing.T) string {
	root := filepath.Join(t.TempDir(), "commands")
	writeFile(t, filepath.Join(root, "ping"), "#!/bin/sh\necho ok\n", 0o755)
	writeFile(t, filepath.Join(root, "missing"), "#!/bin/sh\necho gone\nexit 4\n", 0o755)
	writeFile(t, filepath.Join(root, "weird"), "#!/bin/sh\nexit 42\n", 0o755)
	writeFile(t, filepath.Join(root, "count"), "#!/bin/sh\necho \"{\\\"count\\\": $count, \\\"ip\\\": \\\"$RESTCOMMANDER_CLIENT_IP\\\"}\"\n", 0o755)
	writeFile(t, filepath.Join(root, "count.yaml"), `description: counts
options:
  count:
    required: true
    value_type:
      integer:
        min: 1
        max: 10
`, 0o644)
	writeFile(t, filepath.Join(root, "sys", "status"), "#!/bin/sh\nif [ \"$1\" = \"--state\" ]; then echo '{\"up\": true}'; exit 0; fi\nexit 1\n", 0o755)
	writeFile(t, filepath.Join(root, "sys", "status.yaml"), `description: status
support_state: true
state:
  options: ["--state"]
`, 0o644)
	return root
}

func newTestServer(t *testing.T, update func(cfg *config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Commands.RootDirectory = commandsDir(t)
	if update != nil {
		update(cfg)
	}
	svc, err := service.New(context.Background(),
		service.WithConfig(cfg),
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })
	return New(svc, WithMCP(mcp.New(svc)))
}

func serve(t *testing.T, handler http.Handler, req *http.Request) (*httptest.ResponseRecorder, *apiResponse) {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	resp := &apiResponse{}
	if strings.HasPrefix(recorder.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), resp))
	}
	return recorder, resp
}

func basic(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func TestServer_Run(t *testing.T) {
	handler := newTestServer(t, nil).Handler()

	testCases := []struct {
		name         string
		method       string
		target       string
		body         string
		header       map[string]string
		expectStatus int
		expectResult string
		expectReason string
		expectCode   int
	}{
		{name: "plain output", method: http.MethodPost, target: "/api/run/ping", expectStatus: http.StatusOK, expectResult: `"ok"`},
		{name: "get is accepted", method: http.MethodGet, target: "/api/run/ping", expectStatus: http.StatusOK, expectResult: `"ok"`},
		{name: "exit code mapped", method: http.MethodPost, target: "/api/run/missing", expectStatus: http.StatusNotFound, expectReason: `"gone"`, expectCode: 1001},
		{name: "unknown exit code", method: http.MethodPost, target: "/api/run/weird", expectStatus: http.StatusInternalServerError, expectCode: 1001},
		{name: "option from header", method: http.MethodPost, target: "/api/run/count", header: map[string]string{"X-Count": "3"}, expectStatus: http.StatusOK, expectResult: `{"count":3,"ip":"192.0.2.1"}`},
		{name: "option from query", method: http.MethodPost, target: "/api/run/count?count=4", expectStatus: http.StatusOK, expectResult: `{"count":4,"ip":"192.0.2.1"}`},
		{name: "option from flat body", method: http.MethodPost, target: "/api/run/count", body: `{"count": 5}`, expectStatus: http.StatusOK, expectResult: `{"count":5,"ip":"192.0.2.1"}`},
		{name: "option from structured body", method: http.MethodPost, target: "/api/run/count", body: `{"options": {"count": 6}}`, expectStatus: http.StatusOK, expectResult: `{"count":6,"ip":"192.0.2.1"}`},
		{name: "query overrides body", method: http.MethodPost, target: "/api/run/count?count=7", body: `{"count": 5}`, expectStatus: http.StatusOK, expectResult: `{"count":7,"ip":"192.0.2.1"}`},
		{name: "missing required option", method: http.MethodPost, target: "/api/run/count", expectStatus: http.StatusBadRequest, expectCode: 1003},
		{name: "option out of range", method: http.MethodPost, target: "/api/run/count", body: `{"count": 11}`, expectStatus: http.StatusBadRequest, expectCode: 1003},
		{name: "invalid body", method: http.MethodPost, target: "/api/run/count", body: `[1]`, expectStatus: http.StatusBadRequest, expectCode: 2000},
		{name: "unknown command", method: http.MethodPost, target: "/api/run/nope", expectStatus: http.StatusNotFound, expectCode: 1002},
		{name: "directory is not runnable", method: http.MethodPost, target: "/api/run/sys", expectStatus: http.StatusNotFound, expectCode: 1002},
		{name: "state", method: http.MethodGet, target: "/api/state/sys/status", expectStatus: http.StatusOK, expectResult: `{"up":true}`},
		{name: "state not supported", method: http.MethodGet, target: "/api/state/ping", expectStatus: http.StatusNotFound, expectCode: 1009},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req := httptest.NewRequest(tc.method, tc.target, body)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			recorder, resp := serve(t, handler, req)
			assert.Equal(t, tc.expectStatus, recorder.Code)
			assert.Equal(t, tc.expectStatus == http.StatusOK, resp.OK)
			assert.Equal(t, tc.expectCode, resp.Code)
			if tc.expectResult != "" {
				assert.JSONEq(t, tc.expectResult, string(resp.Result))
			}
			if tc.expectReason != "" {
				assert.JSONEq(t, tc.expectReason, string(resp.Reason))
			}
			if tc.expectStatus != http.StatusOK {
				assert.Empty(t, resp.Result)
			}
		})
	}
}

func TestServer_Statistics(t *testing.T) {
	handler := newTestServer(t, nil).Handler()

	_, resp := serve(t, handler, httptest.NewRequest(http.MethodPost, "/api/run/ping", nil))
	assert.Empty(t, resp.Statistics)

	req := httptest.NewRequest(http.MethodPost, "/api/run/ping", nil)
	req.Header.Set("X-Restcommander-Statistics", "true")
	_, resp = serve(t, handler, req)
	assert.Contains(t, string(resp.Statistics), `"duration"`)

	_, resp = serve(t, handler, httptest.NewRequest(http.MethodPost, "/api/run/count", strings.NewReader(`{"options": {"count": 1}, "statistics": true}`)))
	assert.Contains(t, string(resp.Statistics), `"size"`)
}

func TestServer_Authentication(t *testing.T) {
	handler := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.Username = "admin"
		cfg.Server.PasswordSHA512 = auth.HashPassword("secret")
		cfg.Server.APIToken = "static-token"
	}).Handler()

	recorder, resp := serve(t, handler, httptest.NewRequest(http.MethodPost, "/api/run/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, 2010, resp.Code)
	assert.Equal(t, `Basic realm="Restricted", charset="UTF-8"`, recorder.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodPost, "/api/run/ping", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	recorder, _ = serve(t, handler, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Empty(t, recorder.Header().Get("WWW-Authenticate"))

	req = httptest.NewRequest(http.MethodPost, "/api/auth/token", nil)
	req.Header.Set("Authorization", basic("admin", "wrong"))
	recorder, resp = serve(t, handler, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, 2007, resp.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/token", nil)
	req.Header.Set("Authorization", basic("admin", "secret"))
	recorder, resp = serve(t, handler, req)
	require.Equal(t, http.StatusOK, recorder.Code)
	result := map[string]string{}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	token := result["token"]
	require.NotEmpty(t, token)
	cookie := recorder.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "token="+token)
	assert.Contains(t, cookie, "Path=/")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "Max-Age=604800")

	req = httptest.NewRequest(http.MethodPost, "/api/run/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder, _ = serve(t, handler, req)
	assert.Equal(t, http.StatusOK, recorder.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/test", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	recorder, resp = serve(t, handler, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, resp.OK)

	req = httptest.NewRequest(http.MethodGet, "/api/commands", nil)
	req.Header.Set("Authorization", "Bearer static-token")
	recorder, resp = serve(t, handler, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, string(resp.Result), `"ping"`)

	req = httptest.NewRequest(http.MethodGet, "/api/commands", nil)
	req.Header.Set("Authorization", "Bearer forged")
	recorder, resp = serve(t, handler, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, 2012, resp.Code)
}

func TestServer_IPAllowList(t *testing.T) {
	handler := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.IPWhitelist = []string{"10.0.0.*"}
	}).Handler()

	recorder, resp := serve(t, handler, httptest.NewRequest(http.MethodPost, "/api/run/ping", nil))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, 2013, resp.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/run/ping", nil)
	req.RemoteAddr = "10.0.0.7:4000"
	recorder, _ = serve(t, handler, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestServer_Captcha(t *testing.T) {
	recorder, resp := serve(t, newTestServer(t, nil).Handler(), httptest.NewRequest(http.MethodGet, "/api/public/captcha", nil))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Equal(t, 1011, resp.Code)

	handler := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.CaptchaFile = filepath.Join(t.TempDir(), "captcha.txt")
	}).Handler()
	recorder, resp = serve(t, handler, httptest.NewRequest(http.MethodGet, "/api/public/captcha", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	challenge := &auth.Challenge{}
	require.NoError(t, json.Unmarshal(resp.Result, challenge))
	assert.NotEmpty(t, challenge.ID)
	assert.NotEmpty(t, challenge.Image)
}

func TestServer_SetPassword(t *testing.T) {
	passwordFile := filepath.Join(t.TempDir(), "password")
	handler := newTestServer(t, func(cfg *config.Config) {
		writeFile(t, passwordFile, auth.HashPassword("secret"), 0o600)
		cfg.Server.PasswordFile = passwordFile
	}).Handler()

	login := func(password string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/token", nil)
		req.Header.Set("Authorization", basic("admin", password))
		recorder, _ := serve(t, handler, req)
		return recorder.Code
	}
	require.Equal(t, http.StatusOK, login("secret"))

	req := httptest.NewRequest(http.MethodPost, "/api/setPassword", strings.NewReader(`{"password": ""}`))
	req.Header.Set("Authorization", basic("admin", "secret"))
	recorder, _ := serve(t, handler, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	tokenReq := httptest.NewRequest(http.MethodPost, "/api/auth/token", nil)
	tokenReq.Header.Set("Authorization", basic("admin", "secret"))
	_, resp := serve(t, handler, tokenReq)
	result := map[string]string{}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	bearer := "Bearer " + result["token"]

	req = httptest.NewRequest(http.MethodPost, "/api/setPassword", strings.NewReader(`{"password": ""}`))
	req.Header.Set("Authorization", bearer)
	recorder, resp = serve(t, handler, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, 1007, resp.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/setPassword", strings.NewReader(`{"password": "changed"}`))
	req.Header.Set("Authorization", bearer)
	recorder, _ = serve(t, handler, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, http.StatusUnauthorized, login("secret"))
	assert.Equal(t, http.StatusOK, login("changed"))

	data, err := os.ReadFile(passwordFile)
	require.NoError(t, err)
	assert.Equal(t, auth.HashPassword("changed"), string(data))
}

func TestServer_Reload(t *testing.T) {
	server := newTestServer(t, nil)
	handler := server.Handler()

	writeFile(t, filepath.Join(server.service.Config().Commands.RootDirectory, "late"), "#!/bin/sh\necho late\n", 0o755)
	recorder, _ := serve(t, handler, httptest.NewRequest(http.MethodPost, "/api/run/late", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder, _ = serve(t, handler, httptest.NewRequest(http.MethodGet, "/api/reload/commands", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, resp := serve(t, handler, httptest.NewRequest(http.MethodPost, "/api/run/late", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `"late"`, string(resp.Result))
}

func TestServer_Reports(t *testing.T) {
	recorder, resp := serve(t, newTestServer(t, nil).Handler(), httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Equal(t, 1012, resp.Code)

	server := newTestServer(t, func(cfg *config.Config) {
		cfg.Logging.Report = filepath.Join(t.TempDir(), "report.log")
	})
	handler := server.Handler()
	serve(t, handler, httptest.NewRequest(http.MethodPost, "/api/run/ping", nil))
	serve(t, handler, httptest.NewRequest(http.MethodGet, "/api/state/sys/status", nil))
	require.NoError(t, server.service.Shutdown(context.Background()))

	recorder, resp = serve(t, handler, httptest.NewRequest(http.MethodGet, "/api/reports?context=state", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	var records []map[string]string
	require.NoError(t, json.Unmarshal(resp.Result, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "state", records[0]["context"])
	assert.Equal(t, "192.0.2.1", records[0]["from"])

	recorder, resp = serve(t, handler, httptest.NewRequest(http.MethodGet, "/api/reports?after="+time.Now().Add(time.Hour).UTC().Format(time.RFC3339), nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `[]`, string(resp.Result))

	recorder, resp = serve(t, handler, httptest.NewRequest(http.MethodGet, "/api/reports?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, 2000, resp.Code)
}

func TestServer_MCP(t *testing.T) {
	handler := newTestServer(t, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ping"}}`))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"text":"ok"`)
}

func TestServer_StaticAndRoot(t *testing.T) {
	static := t.TempDir()
	writeFile(t, filepath.Join(static, "index.html"), `<base href="{{BASE_PATH}}">`, 0o644)
	writeFile(t, filepath.Join(static, "app.js"), `console.log(1)`, 0o644)

	handler := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.HTTPBasePath = "/rc/"
		cfg.WWW.StaticDirectory = static
		cfg.WWW.Configuration = map[string]string{"title": "Commands"}
	}).Handler()

	testCases := []struct {
		name           string
		target         string
		expectStatus   int
		expectLocation string
		expectBody     string
		expectType     string
	}{
		{name: "root redirects", target: "/rc/", expectStatus: http.StatusMovedPermanently, expectLocation: "/rc/static/index.html"},
		{name: "index", target: "/rc/static/index.html", expectStatus: http.StatusOK, expectBody: `<base href="/rc/">`, expectType: "text/html"},
		{name: "script", target: "/rc/static/app.js", expectStatus: http.StatusOK, expectBody: `console.log(1)`, expectType: "javascript"},
		{name: "missing asset", target: "/rc/static/nope.css", expectStatus: http.StatusNotFound},
		{name: "traversal", target: "/rc/static/../../etc/passwd", expectStatus: http.StatusNotFound},
		{name: "outside base path", target: "/static/index.html", expectStatus: http.StatusNotFound},
		{name: "configuration", target: "/rc/api/public/configuration", expectStatus: http.StatusOK, expectBody: `{"ok":true,"result":{"title":"Commands"}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, tc.target, nil))
			assert.Equal(t, tc.expectStatus, recorder.Code)
			if tc.expectLocation != "" {
				assert.Equal(t, tc.expectLocation, recorder.Header().Get("Location"))
			}
			if tc.expectBody != "" {
				assert.Equal(t, tc.expectBody, recorder.Body.String())
			}
			if tc.expectType != "" {
				assert.Contains(t, recorder.Header().Get("Content-Type"), tc.expectType)
			}
		})
	}

	disabled := newTestServer(t, func(cfg *config.Config) {
		cfg.WWW.Enabled = false
	}).Handler()
	recorder := httptest.NewRecorder()
	disabled.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	recorder, resp := serve(t, newTestServer(t, nil).Handler(), httptest.NewRequest(http.MethodDelete, "/api/run/ping", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
	assert.Equal(t, 2000, resp.Code)
}

func TestExitStatus(t *testing.T) {
	testCases := []struct {
		exitCode int
		expect   int
	}{
		{0, http.StatusOK},
		{1, http.StatusInternalServerError},
		{2, http.StatusBadRequest},
		{3, http.StatusForbidden},
		{4, http.StatusNotFound},
		{5, http.StatusServiceUnavailable},
		{6, http.StatusNotAcceptable},
		{7, http.StatusNotImplemented},
		{8, http.StatusConflict},
		{9, http.StatusRequestTimeout},
		{10, http.StatusInternalServerError},
		{128, http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expect, ExitStatus(tc.exitCode), "exit code %d", tc.exitCode)
	}
}
