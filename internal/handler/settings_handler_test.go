package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"pytutor-go/internal/apperr"
)

type stubSettingService struct {
	setErr error
	gotKey string
}

func (s *stubSettingService) GetValue(context.Context, string) (string, error) { return "", nil }

func (s *stubSettingService) SetProviderKey(_ context.Context, apiKey string) error {
	s.gotKey = apiKey
	return s.setErr
}

func newSettingsRouter(svc *stubSettingService) *gin.Engine {
	r := gin.New()
	h := NewSettingsHandler(svc)
	r.POST("/api/v1/settings/provider-key", h.UpdateProviderKey)
	return r
}

func TestUpdateProviderKeySuccess(t *testing.T) {
	svc := &stubSettingService{}
	r := newSettingsRouter(svc)

	w := postJSON(t, r, "/api/v1/settings/provider-key",
		`{"apiKey": "AIzaSyTest_0123456789abcdefghij"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "API key updated")
	assert.Equal(t, "AIzaSyTest_0123456789abcdefghij", svc.gotKey)
}

func TestUpdateProviderKeyMissing(t *testing.T) {
	r := newSettingsRouter(&stubSettingService{})

	w := postJSON(t, r, "/api/v1/settings/provider-key", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "API key is required")
}

func TestUpdateProviderKeyInvalidFormat(t *testing.T) {
	svc := &stubSettingService{setErr: apperr.NewValidation("apiKey: 格式不合法")}
	r := newSettingsRouter(svc)

	w := postJSON(t, r, "/api/v1/settings/provider-key", `{"apiKey": "sk-wrong-prefix-0123456789"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "apiKey: 格式不合法")
}
