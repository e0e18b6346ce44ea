package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/cuistot/backend/config"
	"github.com/pageza/cuistot/backend/internal/middleware"
	"github.com/pageza/cuistot/backend/internal/models"
	"github.com/pageza/cuistot/backend/internal/server"
	"github.com/pageza/cuistot/backend/internal/service"
	"github.com/pageza/cuistot/backend/internal/testhelpers"
)

const testSecret = "test-secret"

type testApp struct {
	t        *testing.T
	db       *gorm.DB
	provider *testhelpers.FakeProvider
	handler  http.Handler
}

type fakePresigner struct{}

func (fakePresigner) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://images.example/" + key, nil
}

func (fakePresigner) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	return "https://images.example/" + key + "?upload=" + url.QueryEscape(contentType), nil
}

func newTestApp(t *testing.T, presigner service.ObjectPresigner) *testApp {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	provider := testhelpers.NewFakeProvider()
	cfg := &config.Config{
		Environment:        config.Test,
		JWTSecret:          testSecret,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		GenerationsPerHour: 30,
	}
	srv := server.New(cfg, server.Dependencies{DB: db, Provider: provider, Presigner: presigner}, zap.NewNop())
	return &testApp{t: t, db: db, provider: provider, handler: srv.Handler()}
}

// tokenFor signs a session token for user
func (a *testApp) tokenFor(user *models.User) string {
	a.t.Helper()
	token, err := service.NewAuthService(a.db, testSecret).GenerateToken(user)
	require.NoError(a.t, err)
	return token
}

func (a *testApp) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func recipePath(name string, suffix ...string) string {
	p := "/api/recipes/" + url.PathEscape(name)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}
