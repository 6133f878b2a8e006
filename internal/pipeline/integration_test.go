package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexf37/ingest-demo/internal/record"
	"github.com/alexf37/ingest-demo/plugin/ai"
	"github.com/alexf37/ingest-demo/plugin/supermemory"
)

// completionServer mimics an OpenAI-compatible chat completion
// endpoint: plain completions answer with expansionText, JSON-mode
// completions with synthesisJSON.
func completionServer(t *testing.T, expansionText, synthesisJSON string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req struct {
			ResponseFormat *struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		content := expansionText
		if req.ResponseFormat != nil && req.ResponseFormat.Type == "json_object" {
			content = synthesisJSON
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
}

// memoryServer mimics the knowledge-store search and write endpoints.
// The search and write calls arrive concurrently; path recording is
// guarded.
func memoryServer(t *testing.T, results []supermemory.Result) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v3/search":
			json.NewEncoder(w).Encode(supermemory.SearchResponse{Results: results, Total: len(results)})
		case "/v3/memories":
			json.NewEncoder(w).Encode(supermemory.Memory{ID: "mem-stored", Status: "queued"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), paths...)
	}
}

func TestPipeline_Ingest_AgainstHTTPFakes(t *testing.T) {
	synthesis := `{"actions":[{"type":"suggestion","suggestion":"Share the report with the team"}],"relatedMemories":["mem-9"]}`
	llmSrv := completionServer(t, "quarterly revenue report finance", synthesis)
	defer llmSrv.Close()

	memSrv, paths := memoryServer(t, []supermemory.Result{
		{ID: "mem-9", Title: "Last quarter report", Chunks: []string{"old numbers"}},
	})
	defer memSrv.Close()

	llm, err := ai.NewLLMService(&ai.Config{
		BaseURL:    llmSrv.URL,
		APIKey:     "test-key",
		Model:      "test-model",
		MaxRetries: 1,
	})
	require.NoError(t, err)

	p := New(llm, supermemory.NewClient(memSrv.URL, "test-key"), nil, nil)

	result, err := p.Ingest(context.Background(), testDocument(), "demo")
	require.NoError(t, err)
	require.Len(t, result.Actions, 1)
	assert.Equal(t, record.ActionSuggestion, result.Actions[0].Kind())
	assert.Equal(t, []string{"mem-9"}, result.RelatedMemories)

	// One search and one write reached the store.
	assert.ElementsMatch(t, []string{"/v3/search", "/v3/memories"}, paths())
}
