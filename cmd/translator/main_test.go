package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialect-translator/internal/translator"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	t.Setenv("DIALECT_TRANSLATOR_GEMINI_API_KEY", "")
	t.Setenv("DIALECT_LOG_NO_COLOR", "true")
	t.Setenv("DIALECT_LOG_LEVEL", "error")
}

func newOllamaServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": reply},
			"done":    true,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_ClosesStoreWhenCommandFails(t *testing.T) {
	setupEnv(t)
	t.Setenv("DIALECT_TRANSLATOR_PROVIDER", "gemini")

	err := run(context.Background(), []string{"translate", "slav"})
	require.Error(t, err)
	assert.Equal(t, translator.KindConfiguration, translator.KindOf(err))

	require.NotNil(t, store)
	_, _, err = store.GetStats()
	assert.Error(t, err, "store must be closed after a failed command")
}

func TestRun_TranslateThenShowHistory(t *testing.T) {
	setupEnv(t)
	t.Setenv("DIALECT_TRANSLATOR_PROVIDER", "ollama")
	t.Setenv("DIALECT_TRANSLATOR_OLLAMA_HOST", newOllamaServer(t, "silav").URL)

	require.NoError(t, run(context.Background(), []string{"translate", "--from", "sorani", "slav"}))
	require.NoError(t, run(context.Background(), []string{"history", "show", "1"}))

	err := run(context.Background(), []string{"history", "show", "2"})
	assert.ErrorContains(t, err, "translation not found")

	err = run(context.Background(), []string{"history", "show", "abc"})
	assert.ErrorContains(t, err, "invalid id")

	_, _, err = store.GetStats()
	assert.Error(t, err)
}
