package server

import (
	"net/http"
	"strconv"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/service"
)

// matchQuery 是 GET /api/matches 的查询参数
type matchQuery struct {
	UserID  string `validate:"required"`
	Type    string `validate:"required,oneof=players clubs agents coaches"`
	Backend string `validate:"omitempty,oneof=knn similarity"`
	Limit   int    `validate:"gte=0,lte=100"`
	Skip    int    `validate:"gte=0"`
}

// recommendQuery 是 GET /api/recommendations 的查询参数
type recommendQuery struct {
	UserID string `validate:"required"`
	Type   string `validate:"omitempty,oneof=players clubs agents coaches"`
	Limit  int    `validate:"gte=0,lte=100"`
}

// FindRequest 是 POST /api/scoring/find 的请求体
type FindRequest struct {
	Attributes map[string]any `json:"attributes" validate:"required"`
	Backend    string         `json:"backend"`
	TopN       *int           `json:"top_n"`
}

// FindResponse 是打分引擎的直接返回
type FindResponse struct {
	Matches  []core.ScoredMatch `json:"matches"`
	Backend  string             `json:"backend"`
	Fallback bool               `json:"fallback"`
	Fault    core.Fault         `json:"fault,omitempty"`
}

func queryInt(r *http.Request, key string) (int, bool) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// handleMatches 处理 GET /api/matches?user_id=&type=&backend=&skip=&limit=
func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "limit must be an integer", nil)
		return
	}
	skip, ok := queryInt(r, "skip")
	if !ok {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "skip must be an integer", nil)
		return
	}
	q := matchQuery{
		UserID:  r.URL.Query().Get("user_id"),
		Type:    r.URL.Query().Get("type"),
		Backend: r.URL.Query().Get("backend"),
		Limit:   limit,
		Skip:    skip,
	}
	if apiErr := validateRequest(q); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	list, err := s.matches.GetMatches(r.Context(), service.MatchRequest{
		UserID:    q.UserID,
		MatchType: q.Type,
		Backend:   q.Backend,
		Limit:     q.Limit,
		Skip:      q.Skip,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondOK(w, r, list)
}

// handleCalculate 处理 POST /api/matches/calculate
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req service.MatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, "invalid request body", err)
		return
	}
	if apiErr := validateRequest(req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	list, err := s.matches.Calculate(r.Context(), req)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondOK(w, r, list)
}

// handleRecommendations 处理 GET /api/recommendations?user_id=&type=&limit=；
// 不指定 type 时返回四类合并后按分数排序的推荐
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "limit must be an integer", nil)
		return
	}
	q := recommendQuery{
		UserID: r.URL.Query().Get("user_id"),
		Type:   r.URL.Query().Get("type"),
		Limit:  limit,
	}
	if apiErr := validateRequest(q); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if q.Type == "" {
		all, err := s.matches.RecommendAll(r.Context(), q.UserID, q.Limit)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondOK(w, r, all)
		return
	}

	recs, err := s.matches.Recommend(r.Context(), q.UserID, q.Type, q.Limit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondOK(w, r, recs)
}

// handleFind 处理 POST /api/scoring/find：直接调用打分引擎，永远返回排序结果
func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	var req FindRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, "invalid request body", err)
		return
	}
	if apiErr := validateRequest(req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	backend := req.Backend
	if backend == "" {
		backend = s.defaultBackend
	}
	topN := s.defaultTopN
	if req.TopN != nil {
		topN = *req.TopN
	}

	res := s.scorer.FindMatches(r.Context(), req.Attributes, backend, topN)
	respondOK(w, r, FindResponse{
		Matches:  res.Matches,
		Backend:  res.Backend,
		Fallback: res.Fallback,
		Fault:    res.Fault,
	})
}

// handleBackends 处理 GET /api/scoring/backends
func (s *Server) handleBackends(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, map[string]any{
		"schema":   s.scorer.Schema(),
		"backends": s.scorer.Info(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, map[string]any{"status": "ok"})
}
