// Package integration runs the whole server against postgres and redis
// containers. The tests skip when docker is not available.
package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/cuistot/backend/config"
	"github.com/pageza/cuistot/backend/internal/server"
	"github.com/pageza/cuistot/backend/internal/service"
	"github.com/pageza/cuistot/backend/internal/testhelpers"
	"github.com/pageza/cuistot/backend/internal/types"
)

func newServer(t *testing.T, provider service.TextProvider) http.Handler {
	t.Helper()
	db := testhelpers.SetupPostgres(t)
	rdb := testhelpers.SetupRedis(t)
	cfg := &config.Config{
		Environment:        config.Test,
		JWTSecret:          "integration-secret",
		GenerationsPerHour: 100,
	}
	return server.New(cfg, server.Dependencies{DB: db, Redis: rdb, Provider: provider}, zap.NewNop()).Handler()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestConcurrentRequestsGenerateOnce(t *testing.T) {
	provider := testhelpers.NewFakeProvider().WithDelay(300 * time.Millisecond)
	provider.Otherwise(func(string) (string, error) {
		return testhelpers.RecipeJSON("Tarte aux pommes"), nil
	})
	h := newServer(t, provider)

	const clients = 5
	var wg sync.WaitGroup
	ids := make([]string, clients)
	codes := make([]int, clients)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rr := get(h, "/api/recipes/"+url.PathEscape("Tarte aux pommes"))
			codes[i] = rr.Code
			var body struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal(rr.Body.Bytes(), &body)
			ids[i] = body.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < clients; i++ {
		assert.Equal(t, http.StatusOK, codes[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, provider.Calls())
}

func TestRankedUsesStoredEmbeddings(t *testing.T) {
	provider := testhelpers.NewFakeProvider()
	h := newServer(t, provider)

	provider.Reply(testhelpers.RecipeJSON("Gratin dauphinois"))
	require.Equal(t, http.StatusOK, get(h, "/api/recipes/"+url.PathEscape("Gratin dauphinois")).Code)

	provider.Reply(testhelpers.ResultsJSON("Gratin dauphinois", "Gratin inventé"))
	rr := get(h, "/api/recipes/ranked?search=gratin")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body struct {
		Items []types.RankedCandidate `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Gratin dauphinois", body.Items[0].Title)
	assert.Contains(t, provider.LastPrompt(), "Gratin dauphinois")
}

func TestHealthReportsRedis(t *testing.T) {
	h := newServer(t, testhelpers.NewFakeProvider())

	rr := get(h, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"database":"ok","redis":"ok"}`, rr.Body.String())
}
