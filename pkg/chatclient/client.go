// Package chatclient 是聊天服务的 Go 客户端。
// 它为每个导师人设维护一份本地消息列表，发送时先做乐观更新
// （立即追加用户消息和一条占位的助手消息），等服务端返回后再对账：
// 成功则用真实回复替换占位，失败则移除占位、保留用户消息。
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// 占位助手消息的内容，对账后不会出现在最终列表里。
const pendingContent = "..."

var (
	// ErrBusy 表示该导师上一条消息尚未完成发送。
	ErrBusy = errors.New("a message is already in flight for this tutor")
	// ErrRateLimited 表示服务端返回 429。
	ErrRateLimited = errors.New("too many requests")
)

// Tutor 是发送消息时使用的导师人设。
type Tutor struct {
	Name     string
	Greeting string
	Style    string
}

// Message 是客户端视角的一条消息。
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	ID      string `json:"id,omitempty"`
	// Pending 标记乐观更新产生的占位助手消息
	Pending bool `json:"-"`
}

// Reply 是一次聊天调用的服务端回复。
type Reply struct {
	Content        string `json:"content"`
	Correct        bool   `json:"correct,omitempty"`
	Challenge      string `json:"challenge,omitempty"`
	ExpectedOutput string `json:"expectedOutput,omitempty"`
}

// Client 维护与聊天服务的会话状态。
// 方法是并发安全的；同一导师同一时刻只允许一条消息在途。
type Client struct {
	baseURL string
	token   string
	userID  string
	http    *http.Client

	mu        sync.Mutex
	histories map[string][]Message // 按导师名缓存的消息列表
	loaded    map[string]bool
	inflight  map[string]bool
}

// New 创建一个新的聊天客户端。
// baseURL 形如 "http://localhost:8080/api/v1"，token 为登录获得的 access token。
func New(baseURL, token, userID string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		token:     token,
		userID:    userID,
		http:      &http.Client{},
		histories: make(map[string][]Message),
		loaded:    make(map[string]bool),
		inflight:  make(map[string]bool),
	}
}

// historyResponse 对应 GET /chat-history 的响应体。
type historyResponse struct {
	Data struct {
		Messages []Message `json:"messages"`
	} `json:"data"`
}

// LoadHistory 拉取指定导师的历史消息并缓存。
// 同一导师只拉取一次；切换回已加载的导师直接使用缓存。
func (c *Client) LoadHistory(ctx context.Context, tutor Tutor) ([]Message, error) {
	c.mu.Lock()
	if c.loaded[tutor.Name] {
		cached := snapshot(c.histories[tutor.Name])
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	endpoint := fmt.Sprintf("%s/chat-history?userId=%s&tutorName=%s",
		c.baseURL, url.QueryEscape(c.userID), url.QueryEscape(tutor.Name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var hr historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return nil, fmt.Errorf("failed to decode chat history: %w", err)
	}
	messages := hr.Data.Messages
	if messages == nil {
		messages = []Message{}
	}

	c.mu.Lock()
	c.histories[tutor.Name] = messages
	c.loaded[tutor.Name] = true
	cached := snapshot(messages)
	c.mu.Unlock()
	return cached, nil
}

// Messages 返回某导师当前消息列表的副本（含在途的占位消息）。
func (c *Client) Messages(tutorName string) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot(c.histories[tutorName])
}

// chatRequestBody 对应 POST /chat 的请求体。
type chatRequestBody struct {
	UserID        string    `json:"userId"`
	Messages      []Message `json:"messages"`
	TutorName     string    `json:"tutorName"`
	TutorGreeting string    `json:"tutorGreeting"`
	TutorStyle    string    `json:"tutorStyle"`
}

// Send 发送一条用户消息并等待助手回复。
// 本地状态立即追加用户消息与占位助手消息；调用返回时要么占位已被
// 真实回复替换（成功），要么占位被移除而用户消息保留（失败，调用方可重发）。
func (c *Client) Send(ctx context.Context, tutor Tutor, text string) (*Reply, error) {
	userMsg := Message{Role: "user", Content: text, ID: uuid.NewString()}
	placeholder := Message{Role: "assistant", Content: pendingContent, ID: uuid.NewString(), Pending: true}

	c.mu.Lock()
	if c.inflight[tutor.Name] {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.inflight[tutor.Name] = true
	prior := snapshot(c.histories[tutor.Name])
	c.histories[tutor.Name] = append(append(snapshot(prior), userMsg), placeholder)
	c.mu.Unlock()

	// 发送给服务端的列表不包含占位消息
	payload := append(snapshot(prior), userMsg)
	reply, err := c.postChat(ctx, tutor, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, tutor.Name)

	if err != nil {
		// 失败：移除占位，保留用户消息
		c.histories[tutor.Name] = append(snapshot(prior), userMsg)
		return nil, err
	}

	assistant := Message{Role: "assistant", Content: reply.Content, ID: uuid.NewString()}
	c.histories[tutor.Name] = append(append(snapshot(prior), userMsg), assistant)
	return reply, nil
}

// postChat 执行实际的 HTTP 调用。
func (c *Client) postChat(ctx context.Context, tutor Tutor, messages []Message) (*Reply, error) {
	body := chatRequestBody{
		UserID:        c.userID,
		Messages:      messages,
		TutorName:     tutor.Name,
		TutorGreeting: tutor.Greeting,
		TutorStyle:    tutor.Style,
	}
	reqBytes, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call chat api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var reply Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("failed to decode chat reply: %w", err)
	}
	return &reply, nil
}

// snapshot 返回消息切片的浅拷贝，避免调用方与内部状态互相干扰。
func snapshot(messages []Message) []Message {
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}

// statusError 从非 200 响应中提取错误信息。
func statusError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("chat api returned status %s: %s", resp.Status, string(bodyBytes))
}
