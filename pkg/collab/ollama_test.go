package collab_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nucleus-console/pkg/collab"
)

func TestOllama_Generate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"` + "```text\\nPING ok\\n```" + `"}}`))
	}))
	defer srv.Close()

	o := collab.NewOllama(collab.OllamaOptions{Endpoint: srv.URL + "/", Model: "tiny"}, srv.Client())
	out, err := o.Generate(context.Background(), collab.Request{
		Kind:     collab.KindTroubleshoot,
		HostName: "edge-01",
		Action:   "ping -c 4 8.8.8.8",
	})
	require.NoError(t, err)
	assert.Equal(t, "PING ok", out)
	assert.Equal(t, "tiny", body["model"])
	assert.Equal(t, false, body["stream"])
}

func TestOllama_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	o := collab.NewOllama(collab.OllamaOptions{Endpoint: srv.URL}, srv.Client())
	_, err := o.Generate(context.Background(), collab.Request{Kind: collab.KindWebScan, URL: "http://x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama http 503")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestOllama_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"content":"   "}}`))
	}))
	defer srv.Close()

	o := collab.NewOllama(collab.OllamaOptions{Endpoint: srv.URL}, srv.Client())
	_, err := o.Generate(context.Background(), collab.Request{Kind: collab.KindServerScan})
	assert.ErrorIs(t, err, collab.ErrEmptyResponse)
}

func TestOllama_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := collab.NewOllama(collab.OllamaOptions{Endpoint: srv.URL}, srv.Client())
	_, err := o.Generate(ctx, collab.Request{Kind: collab.KindTroubleshoot})
	assert.ErrorIs(t, err, context.Canceled)
}
