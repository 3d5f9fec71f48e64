package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialect-translator/internal/config"
	"dialect-translator/internal/logging"
	"dialect-translator/internal/service"
	"dialect-translator/internal/session"
	"dialect-translator/internal/storage"
	"dialect-translator/internal/translator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGenerator struct {
	available bool
	generate  func(ctx context.Context, prompt string) (string, error)
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string, _ float64) (string, error) {
	if g.generate != nil {
		return g.generate(ctx, prompt)
	}
	return "hello", nil
}

func (g *stubGenerator) IsAvailable() bool { return g.available }
func (g *stubGenerator) Name() string      { return "stub" }

func newTestServer(t *testing.T, gen translator.Generator) *Server {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{}
	cfg.History.Enabled = true
	cfg.Server.SessionIdleTimeout = time.Hour

	client := translator.NewClient(gen, translator.DefaultTemperature, 5*time.Second)
	svc := service.NewService(cfg, store, client, logging.Discard())
	return New(cfg, svc, logging.Discard())
}

// browser replays the session cookie like a real client would
type browser struct {
	t      *testing.T
	srv    *Server
	cookie *http.Cookie
}

func (b *browser) do(method, path string, body string, contentType string) *httptest.ResponseRecorder {
	b.t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.srv.Handler().ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			b.cookie = c
		}
	}
	return rec
}

func (b *browser) form(values url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, "/", values.Encode(), "application/x-www-form-urlencoded")
}

func (b *browser) snapshot() session.Snapshot {
	b.t.Helper()
	rec := b.do(http.MethodGet, "/api/session", "", "")
	require.Equal(b.t, http.StatusOK, rec.Code)

	var snap session.Snapshot
	require.NoError(b.t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func TestIndex_InitialPage(t *testing.T) {
	b := &browser{t: t, srv: newTestServer(t, &stubGenerator{available: true})}

	rec := b.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, b.cookie)

	body := rec.Body.String()
	assert.Contains(t, body, "Sorani Kurdish")
	assert.Contains(t, body, "Badini Kurdish")
	assert.Contains(t, body, "Enter text in Sorani...")
	assert.Contains(t, body, "Translation in Badini will appear here...")
	assert.Contains(t, body, `aria-label="Swap dialects and text"`)
	assert.Contains(t, body, "Clear Text")
	assert.Contains(t, body, `value="translate" disabled`)
	assert.NotContains(t, body, `role="alert"`)
	assert.NotContains(t, body, "Translating...")
}

func TestForm_TranslateSuccess(t *testing.T) {
	b := &browser{t: t, srv: newTestServer(t, &stubGenerator{available: true})}

	rec := b.form(url.Values{"input": {"slav"}, "action": {"translate"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	snap := b.snapshot()
	assert.Equal(t, "slav", snap.Input)
	assert.Equal(t, "hello", snap.Output)
	assert.Empty(t, snap.Error)
	assert.False(t, snap.Loading)

	body := b.do(http.MethodGet, "/", "", "").Body.String()
	assert.Contains(t, body, ">hello</textarea>")
	assert.NotContains(t, body, `role="alert"`)
}

func TestForm_TranslateInvalidKey(t *testing.T) {
	gen := &stubGenerator{available: true, generate: func(context.Context, string) (string, error) {
		return "", errors.New("API_KEY_INVALID")
	}}
	b := &browser{t: t, srv: newTestServer(t, gen)}

	b.form(url.Values{"input": {"slav"}, "action": {"translate"}})

	body := b.do(http.MethodGet, "/", "", "").Body.String()
	assert.Contains(t, body, `role="alert"`)
	assert.Contains(t, body, "Invalid API Key")

	snap := b.snapshot()
	assert.Empty(t, snap.Output)
	assert.True(t, snap.Controls.ShowError)
}

func TestForm_SwapAndClear(t *testing.T) {
	b := &browser{t: t, srv: newTestServer(t, &stubGenerator{available: true})}

	b.form(url.Values{"input": {"slav"}, "action": {"translate"}})
	b.form(url.Values{"input": {"slav"}, "action": {"swap"}})

	snap := b.snapshot()
	assert.Equal(t, "hello", snap.Input)
	assert.Equal(t, "slav", snap.Output)
	assert.Equal(t, "Badini", snap.Source.String())
	assert.Equal(t, "Sorani", snap.Target.String())

	body := b.do(http.MethodGet, "/", "", "").Body.String()
	assert.Contains(t, body, "Enter text in Badini...")

	b.form(url.Values{"input": {"hello"}, "action": {"clear"}})
	snap = b.snapshot()
	assert.Empty(t, snap.Input)
	assert.Empty(t, snap.Output)
	assert.Equal(t, "Badini", snap.Source.String())
}

func TestSessions_AreIsolated(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{available: true})
	alice := &browser{t: t, srv: srv}
	bob := &browser{t: t, srv: srv}

	alice.form(url.Values{"input": {"slav"}, "action": {"translate"}})

	assert.Equal(t, "hello", alice.snapshot().Output)
	assert.Empty(t, bob.snapshot().Output)
	assert.NotEqual(t, alice.cookie.Value, bob.cookie.Value)
}

func TestSessionAPI_AsyncTranslate(t *testing.T) {
	release := make(chan struct{})
	gen := &stubGenerator{available: true, generate: func(ctx context.Context, _ string) (string, error) {
		select {
		case <-release:
			return "hello", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}}
	b := &browser{t: t, srv: newTestServer(t, gen)}

	rec := b.do(http.MethodPut, "/api/session/input", `{"input":"slav"}`, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = b.do(http.MethodPost, "/api/session/translate", "", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	snap := b.snapshot()
	assert.True(t, snap.Loading)
	assert.False(t, snap.Controls.TranslateEnabled)
	assert.False(t, snap.Controls.SwapEnabled)
	assert.False(t, snap.Controls.ClearEnabled)

	assert.Equal(t, http.StatusConflict, b.do(http.MethodPost, "/api/session/translate", "", "").Code)
	assert.Equal(t, http.StatusConflict, b.do(http.MethodPost, "/api/session/swap", "", "").Code)
	assert.Equal(t, http.StatusConflict, b.do(http.MethodPost, "/api/session/clear", "", "").Code)
	assert.Equal(t, http.StatusConflict, b.do(http.MethodPut, "/api/session/input", `{"input":"x"}`, "application/json").Code)

	page := b.do(http.MethodGet, "/", "", "").Body.String()
	assert.Contains(t, page, "Translating...")

	close(release)

	require.Eventually(t, func() bool {
		return !b.snapshot().Loading
	}, 2*time.Second, 10*time.Millisecond)

	snap = b.snapshot()
	assert.Equal(t, "slav", snap.Input)
	assert.Equal(t, "hello", snap.Output)
	assert.Empty(t, snap.Error)
}

func TestSessionAPI_BlankTranslate(t *testing.T) {
	b := &browser{t: t, srv: newTestServer(t, &stubGenerator{available: true})}

	rec := b.do(http.MethodPost, "/api/session/translate", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, b.snapshot().Loading)
}

func TestSessionAPI_BadBody(t *testing.T) {
	b := &browser{t: t, srv: newTestServer(t, &stubGenerator{available: true})}

	rec := b.do(http.MethodPut, "/api/session/input", `{`, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranslateAPI(t *testing.T) {
	b := &browser{t: t, srv: newTestServer(t, &stubGenerator{available: true})}

	rec := b.do(http.MethodPost, "/api/translate", `{"text":"slav","source":"badini"}`, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello", resp["translation"])
	assert.Equal(t, "Badini", resp["source"])
	assert.Equal(t, "Sorani", resp["target"])

	rec = b.do(http.MethodPost, "/api/translate", `{"text":"slav","source":"arabic"}`, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = b.do(http.MethodGet, "/api/history?limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Translations []struct {
			Input  string `json:"input"`
			Origin string `json:"origin"`
		} `json:"translations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Translations, 1)
	assert.Equal(t, "slav", history.Translations[0].Input)
	assert.Equal(t, "api", history.Translations[0].Origin)

	assert.Equal(t, http.StatusBadRequest, b.do(http.MethodGet, "/api/history?limit=zero", "", "").Code)

	var entry struct {
		ID     int64  `json:"id"`
		Input  string `json:"input"`
		Output string `json:"output"`
	}
	rec = b.do(http.MethodGet, "/api/history/1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, int64(1), entry.ID)
	assert.Equal(t, "hello", entry.Output)

	assert.Equal(t, http.StatusNotFound, b.do(http.MethodGet, "/api/history/99", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, b.do(http.MethodGet, "/api/history/abc", "", "").Code)
}

func TestTranslateAPI_ErrorStatus(t *testing.T) {
	b := &browser{t: t, srv: newTestServer(t, &stubGenerator{available: false})}

	rec := b.do(http.MethodPost, "/api/translate", `{"text":"slav"}`, "application/json")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "API_KEY is not configured. Cannot perform translation.", resp["error"])
	assert.Equal(t, "configuration", resp["kind"])
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, gin.ReleaseMode, modeFor("info"))
	assert.Equal(t, gin.ReleaseMode, modeFor(""))
	assert.Equal(t, gin.DebugMode, modeFor("debug"))
	assert.Equal(t, gin.DebugMode, modeFor(" DEBUG "))
}

func TestVersionAndHealth(t *testing.T) {
	b := &browser{t: t, srv: newTestServer(t, &stubGenerator{available: false})}

	rec := b.do(http.MethodGet, "/version", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version":"dev"}`, rec.Body.String())

	rec = b.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"provider":"stub"`)

	rec = b.do(http.MethodGet, "/healthz?deep=1", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
