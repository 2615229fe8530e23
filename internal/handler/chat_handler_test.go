package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pytutor-go/internal/apperr"
	"pytutor-go/internal/model"
	"pytutor-go/internal/service"
	"pytutor-go/pkg/ratelimit"
)

// fakeLimiter 记录限流检查使用的键。
type fakeLimiter struct {
	err  error
	keys []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) error {
	f.keys = append(f.keys, key)
	return f.err
}

// fakeChatService 记录收到的请求并返回预设结果。
type fakeChatService struct {
	result *service.ChatResult
	err    error
	gotReq *service.ChatRequest
	calls  int
}

func (f *fakeChatService) Chat(_ context.Context, req *service.ChatRequest) (*service.ChatResult, error) {
	f.calls++
	f.gotReq = req
	return f.result, f.err
}

func newChatRouter(svc service.ChatService, limiter ratelimit.Limiter) *gin.Engine {
	r := gin.New()
	h := NewChatHandler(svc, limiter)
	r.POST("/api/v1/chat", h.Chat)
	return r
}

func doChat(t *testing.T, r *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatSuccess(t *testing.T) {
	svc := &fakeChatService{result: &service.ChatResult{Content: "A loop repeats code!", Correct: true}}
	r := newChatRouter(svc, &fakeLimiter{})

	w := doChat(t, r, `{
		"userId": "user-1",
		"messages": [{"role": "user", "content": "2+2 is 4!"}],
		"tutorName": "Professor Python",
		"tutorGreeting": "Greetings!",
		"tutorStyle": "formal"
	}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp service.ChatResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "A loop repeats code!", resp.Content)
	assert.True(t, resp.Correct)

	require.NotNil(t, svc.gotReq)
	assert.Equal(t, "Professor Python", svc.gotReq.TutorName)
	require.Len(t, svc.gotReq.Messages, 1)
	assert.Equal(t, model.RoleChatUser, svc.gotReq.Messages[0].Role)
}

func TestChatDefaultsTutorName(t *testing.T) {
	svc := &fakeChatService{result: &service.ChatResult{Content: "hi"}}
	r := newChatRouter(svc, &fakeLimiter{})

	w := doChat(t, r, `{"userId": "user-1", "messages": [{"role": "user", "content": "hi"}]}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.DefaultTutorName, svc.gotReq.TutorName)
}

func TestChatRateLimited(t *testing.T) {
	svc := &fakeChatService{result: &service.ChatResult{Content: "hi"}}
	limiter := &fakeLimiter{err: ratelimit.ErrLimitExceeded}
	r := newChatRouter(svc, limiter)

	w := doChat(t, r, `{"userId": "user-1", "messages": [{"role": "user", "content": "hi"}]}`, nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
	// 限流命中时不进入业务层
	assert.Equal(t, 0, svc.calls)
}

func TestChatLimiterKeyFromForwardedFor(t *testing.T) {
	limiter := &fakeLimiter{}
	r := newChatRouter(&fakeChatService{result: &service.ChatResult{Content: "hi"}}, limiter)

	doChat(t, r, `{"userId": "u", "messages": [{"role": "user", "content": "hi"}]}`,
		map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"})
	doChat(t, r, `{"userId": "u", "messages": [{"role": "user", "content": "hi"}]}`, nil)

	require.Len(t, limiter.keys, 2)
	// 取转发链第一跳，没有转发头时退化为固定键
	assert.Equal(t, "203.0.113.7", limiter.keys[0])
	assert.Equal(t, "unknown", limiter.keys[1])
}

func TestChatRejectsInvalidPayload(t *testing.T) {
	cases := map[string]string{
		"缺少 userId":   `{"messages": [{"role": "user", "content": "hi"}]}`,
		"缺少 messages": `{"userId": "user-1"}`,
		"非法 role":     `{"userId": "user-1", "messages": [{"role": "system", "content": "hi"}]}`,
		"非 JSON":      `not json`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &fakeChatService{result: &service.ChatResult{Content: "hi"}}
			r := newChatRouter(svc, &fakeLimiter{})

			w := doChat(t, r, body, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			// 校验失败时不触碰业务层，也就不会有任何落库
			assert.Equal(t, 0, svc.calls)
		})
	}
}

func TestChatEmptyMessagesReachesService(t *testing.T) {
	// 空数组与缺失不同：空数组交给编排层以结构性错误拒绝
	svc := &fakeChatService{err: apperr.ErrInvalidConversationState}
	r := newChatRouter(svc, &fakeLimiter{})

	w := doChat(t, r, `{"userId": "user-1", "messages": []}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Last message must be from user")
	assert.Equal(t, 1, svc.calls)
}

func TestChatErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"对话状态非法", apperr.ErrInvalidConversationState, http.StatusBadRequest, "Last message must be from user"},
		{"缺少 API Key", apperr.ErrNotFound, http.StatusInternalServerError, "Gemini API key not found"},
		{"上游失败", apperr.ErrUpstream, http.StatusInternalServerError, "AI 服务暂时不可用"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeChatService{err: tc.err}
			r := newChatRouter(svc, &fakeLimiter{})

			w := doChat(t, r, `{"userId": "user-1", "messages": [{"role": "user", "content": "hi"}]}`, nil)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantBody)
		})
	}
}
