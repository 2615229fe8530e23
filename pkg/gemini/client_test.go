package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pytutor-go/internal/config"
)

func testConfig(baseURL string) config.GeminiConfig {
	return config.GeminiConfig{
		BaseURL:         baseURL,
		Model:           "gemini-1.5-flash",
		MaxOutputTokens: 1000,
		Temperature:     0.5,
		TimeoutSeconds:  5,
	}
}

func TestGenerateSendsHistoryAndConfig(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]string{
					{"text": "Loops "},
					{"text": "repeat code!"},
				}}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	history := []Message{
		{Role: "user", Text: "hi"},
		{Role: "model", Text: "hello!"},
	}
	got, err := client.Generate(context.Background(), "AItestkey", history, "what is a loop?")
	require.NoError(t, err)

	// 多个 part 拼接为完整回复
	assert.Equal(t, "Loops repeat code!", got)
	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "AItestkey", gotKey)

	require.Len(t, gotBody.Contents, 3)
	assert.Equal(t, "user", gotBody.Contents[0].Role)
	assert.Equal(t, "model", gotBody.Contents[1].Role)
	assert.Equal(t, "what is a loop?", gotBody.Contents[2].Parts[0].Text)
	assert.Equal(t, 1000, gotBody.GenerationConfig.MaxOutputTokens)
	assert.InDelta(t, 0.5, gotBody.GenerationConfig.Temperature, 0.001)
}

func TestGenerateNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"code": 403, "message": "forbidden"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.Generate(context.Background(), "AItestkey", nil, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-200")
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "API key not valid"}}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.Generate(context.Background(), "badkey", nil, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestGenerateNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.Generate(context.Background(), "AItestkey", nil, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}
