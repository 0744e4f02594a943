package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/scoutmatch/config"
	_ "github.com/rushteam/scoutmatch/config/builders"
	"github.com/rushteam/scoutmatch/pkg/logging"
	"github.com/rushteam/scoutmatch/pkg/metrics"
	"github.com/rushteam/scoutmatch/profile"
	"github.com/rushteam/scoutmatch/registry"
	"github.com/rushteam/scoutmatch/service"
	"github.com/rushteam/scoutmatch/store"
)

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *APIError       `json:"error"`
}

func newTestServer(t *testing.T, cfg config.ServerConfig) *Server {
	t.Helper()
	src := profile.NewMemorySource()
	src.Put(profile.DemoProfiles()...)
	cache := store.NewMemoryStore()
	t.Cleanup(func() { _ = cache.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	scorer := registry.New(registry.WithMetrics(m))

	p, err := config.BuildPipeline("", config.Deps{Profiles: src, Scorer: scorer, Store: cache}, logging.Nop())
	require.NoError(t, err)
	svc := service.New(src, p, service.WithCache(cache, 0))

	if cfg.Addr == "" {
		cfg = config.Default().Server
	}
	return New(cfg, svc, scorer, WithMetrics(m, reg))
}

func do(t *testing.T, s *Server, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})
	rec, env := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestGetMatches(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})
	rec, env := do(t, s, http.MethodGet, "/api/matches?user_id=club_1&type=players&limit=3", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var list service.MatchList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 6, list.Total)
	require.Len(t, list.Matches, 3)
	assert.Equal(t, "player_1", list.Matches[0].TargetID)
	assert.Equal(t, service.MatchID("club_1", "player_1"), list.Matches[0].ID)

	rec, env = do(t, s, http.MethodGet, "/api/matches?user_id=club_1&type=players&skip=1&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 6, list.Total)
	require.Len(t, list.Matches, 2)
	assert.Equal(t, "player_5", list.Matches[0].TargetID)
}

func TestGetMatchesValidation(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing user", "/api/matches?type=players", http.StatusBadRequest},
		{"bad type", "/api/matches?user_id=club_1&type=referees", http.StatusBadRequest},
		{"bad limit", "/api/matches?user_id=club_1&type=players&limit=x", http.StatusBadRequest},
		{"bad skip", "/api/matches?user_id=club_1&type=players&skip=x", http.StatusBadRequest},
		{"negative skip", "/api/matches?user_id=club_1&type=players&skip=-1", http.StatusBadRequest},
		{"bad backend", "/api/matches?user_id=club_1&type=players&backend=deep", http.StatusBadRequest},
		{"unknown user", "/api/matches?user_id=nobody&type=players", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, s, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, "error", env.Status)
			require.NotNil(t, env.Error)
		})
	}
}

func TestCalculate(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})
	rec, env := do(t, s, http.MethodPost, "/api/matches/calculate",
		`{"user_id":"player_1","match_type":"clubs","backend":"similarity"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var list service.MatchList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "club_1", list.Matches[0].TargetID)
	assert.False(t, list.Cached)

	rec, _ = do(t, s, http.MethodPost, "/api/matches/calculate", `{"user_id":"player_1","unknown":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendations(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})

	rec, env := do(t, s, http.MethodGet, "/api/recommendations?user_id=player_1&type=coaches", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var recs service.RecommendationResponse
	require.NoError(t, json.Unmarshal(env.Data, &recs))
	require.Len(t, recs.Items, 1)
	assert.Equal(t, 1, recs.Total)
	assert.Equal(t, "Coach specializing in attacking play could improve your skills", recs.Items[0].Metadata["reason"])

	rec, env = do(t, s, http.MethodGet, "/api/recommendations?user_id=player_1&limit=3", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var all service.RecommendationResponse
	require.NoError(t, json.Unmarshal(env.Data, &all))
	require.Len(t, all.Items, 3)
	assert.Greater(t, all.Total, 3)
	for i := 1; i < len(all.Items); i++ {
		assert.GreaterOrEqual(t, all.Items[i-1].Score, all.Items[i].Score)
	}
}

func TestScoringFind(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})

	rec, env := do(t, s, http.MethodPost, "/api/scoring/find",
		`{"attributes":{"age":21,"height":179,"speed":87,"strength":72,"skill":82},"backend":"similarity","top_n":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res FindResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Len(t, res.Matches, 3)
	assert.Equal(t, "seed_1", res.Matches[0].ID)
	assert.False(t, res.Fallback)

	// 未知后端依然返回 200 与兜底排序
	rec, env = do(t, s, http.MethodPost, "/api/scoring/find", `{"attributes":{},"backend":"deep","top_n":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Fallback)
	assert.Equal(t, "fallback_1", res.Matches[0].ID)
	assert.InDelta(t, 0.85, res.Matches[0].Score, 1e-9)
}

func TestScoringBackends(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})
	do(t, s, http.MethodPost, "/api/scoring/find", `{"attributes":{"age":20},"backend":"knn","top_n":1}`)

	rec, env := do(t, s, http.MethodGet, "/api/scoring/backends", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Schema   []string               `json:"schema"`
		Backends []registry.BackendInfo `json:"backends"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	require.Len(t, body.Backends, 2)
	assert.Equal(t, "knn", body.Backends[0].Name)
	assert.True(t, body.Backends[0].Ready)
	assert.Equal(t, registry.SourceSeed, body.Backends[0].Source)
	assert.False(t, body.Backends[1].Ready)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})
	do(t, s, http.MethodGet, "/healthz", "")

	rec, _ := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `scoutmatch_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestRateLimit(t *testing.T) {
	cfg := config.Default().Server
	cfg.RateLimit = 2
	s := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		rec, _ := do(t, s, http.MethodGet, "/api/scoring/backends", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, _ := do(t, s, http.MethodGet, "/api/scoring/backends", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
