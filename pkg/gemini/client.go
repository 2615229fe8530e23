// Package gemini provides a client for the Google generative language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pytutor-go/internal/config"
)

// Message 表示一条带角色的历史消息，Role 为 "user" 或 "model"。
type Message struct {
	Role string
	Text string
}

// Client 定义 Gemini 客户端接口。
// API Key 按请求传入：密钥存储在设置表中，可在进程运行期间被管理员轮换。
type Client interface {
	// Generate 以 history 为上下文发送 prompt，返回模型回复全文。
	Generate(ctx context.Context, apiKey string, history []Message, prompt string) (string, error)
}

type httpClient struct {
	cfg    config.GeminiConfig
	client *http.Client
}

// NewClient 根据配置创建一个新的 Gemini 客户端。
func NewClient(cfg config.GeminiConfig) Client {
	return &httpClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// generateContent 请求/响应的 wire 结构。
type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate 调用 generateContent 接口。
// 每次调用都会基于配置的超时派生一个 deadline，上游挂起不会无限拖住请求。
func (c *httpClient) Generate(ctx context.Context, apiKey string, history []Message, prompt string) (string, error) {
	if c.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	contents := make([]content, 0, len(history)+1)
	for _, m := range history {
		contents = append(contents, content{Role: m.Role, Parts: []part{{Text: m.Text}}})
	}
	contents = append(contents, content{Role: "user", Parts: []part{{Text: prompt}}})

	reqBody := generateRequest{
		Contents: contents,
		GenerationConfig: generationConfig{
			MaxOutputTokens: c.cfg.MaxOutputTokens,
			Temperature:     c.cfg.Temperature,
		},
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimSuffix(c.cfg.BaseURL, "/"), c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call generate api: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read generate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate api returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	var genResp generateResponse
	if err := json.Unmarshal(bodyBytes, &genResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generate response: %w", err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("generate api error: %s", genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("generate api returned no candidates")
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
