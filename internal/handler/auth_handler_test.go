package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"pytutor-go/internal/apperr"
	"pytutor-go/internal/model"
)

// fakeUserService 返回预设的注册/登录结果。
type fakeUserService struct {
	registerUser *model.User
	registerErr  error
	loginUser    *model.User
	loginErr     error
}

func (f *fakeUserService) Register(string, string, string) (*model.User, error) {
	return f.registerUser, f.registerErr
}

func (f *fakeUserService) Login(string, string) (*model.User, string, string, error) {
	if f.loginErr != nil {
		return nil, "", "", f.loginErr
	}
	return f.loginUser, "access-token", "refresh-token", nil
}

func (f *fakeUserService) GetByEmail(string) (*model.User, error) { return f.loginUser, nil }

func (f *fakeUserService) Logout(string) error { return nil }

func (f *fakeUserService) IsTokenRevoked(context.Context, string) bool { return false }

func (f *fakeUserService) RefreshToken(string) (string, string, error) { return "a", "r", nil }

func newAuthRouter(svc *fakeUserService) *gin.Engine {
	r := gin.New()
	h := NewAuthHandler(svc)
	r.POST("/api/v1/auth/register", h.Register)
	r.POST("/api/v1/auth/login", h.Login)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterCreated(t *testing.T) {
	svc := &fakeUserService{registerUser: &model.User{ID: 7, Email: "alice@example.com"}}
	r := newAuthRouter(svc)

	w := postJSON(t, r, "/api/v1/auth/register",
		`{"name": "Alice", "email": "alice@example.com", "password": "secret123"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":7`)
}

func TestRegisterValidation(t *testing.T) {
	cases := map[string]string{
		"邮箱格式非法": `{"name": "Alice", "email": "not-an-email", "password": "secret123"}`,
		"密码太短":   `{"name": "Alice", "email": "alice@example.com", "password": "123"}`,
		"缺少姓名":   `{"email": "alice@example.com", "password": "secret123"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			r := newAuthRouter(&fakeUserService{})
			w := postJSON(t, r, "/api/v1/auth/register", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	svc := &fakeUserService{registerErr: apperr.ErrEmailTaken}
	r := newAuthRouter(svc)

	w := postJSON(t, r, "/api/v1/auth/register",
		`{"name": "Alice", "email": "alice@example.com", "password": "secret123"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginReturnsTokensAndUser(t *testing.T) {
	svc := &fakeUserService{loginUser: &model.User{ID: 7, Name: "Alice", Email: "alice@example.com", Role: model.RoleUser}}
	r := newAuthRouter(svc)

	w := postJSON(t, r, "/api/v1/auth/login", `{"email": "alice@example.com", "password": "secret123"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"access-token"`)
	assert.Contains(t, w.Body.String(), `"refreshToken":"refresh-token"`)
	assert.Contains(t, w.Body.String(), `"role":"USER"`)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := &fakeUserService{loginErr: apperr.ErrInvalidCredentials}
	r := newAuthRouter(svc)

	w := postJSON(t, r, "/api/v1/auth/login", `{"email": "alice@example.com", "password": "wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
