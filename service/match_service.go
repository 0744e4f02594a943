// Package service 在匹配 Pipeline 之上提供匹配与推荐用例：
// 请求方画像读取、结果缓存、匹配记录与推荐条目的组装。
package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/pipeline"
	"github.com/rushteam/scoutmatch/rerank"
)

// CacheKeyPrefix 是匹配结果缓存 key 前缀
const CacheKeyPrefix = "matches:"

// 推荐默认条数：单类推荐与四类合并推荐
const (
	DefaultRecommendLimit    = 10
	DefaultRecommendAllLimit = 5
)

// recommendTypes 是合并推荐覆盖的匹配类型
var recommendTypes = []string{"players", "clubs", "coaches", "agents"}

// matchNamespace 用于生成确定性的匹配记录 ID
var matchNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/rushteam/scoutmatch/match"))

// MatchID 返回 (userID, targetID) 对应的匹配记录 ID
func MatchID(userID, targetID string) string {
	return uuid.NewSHA1(matchNamespace, []byte(userID+"\x00"+targetID)).String()
}

// MatchService 组合画像来源、匹配 Pipeline 与缓存。
type MatchService struct {
	profiles core.ProfileSource
	pipeline *pipeline.Pipeline
	scoring  core.ScoringConfig
	backend  string
	cache    core.Store
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// Option 是 MatchService 的配置选项
type Option func(*MatchService)

// WithCache 设置匹配结果缓存，ttl <= 0 表示永不过期
func WithCache(s core.Store, ttl time.Duration) Option {
	return func(m *MatchService) {
		m.cache = s
		m.cacheTTL = ttl
	}
}

// WithScoringConfig 设置默认条数与推荐阈值
func WithScoringConfig(cfg core.ScoringConfig) Option {
	return func(m *MatchService) {
		if cfg != nil {
			m.scoring = cfg
		}
	}
}

// WithDefaultBackend 设置未指定后端时使用的打分后端
func WithDefaultBackend(name string) Option {
	return func(m *MatchService) {
		if name != "" {
			m.backend = name
		}
	}
}

// WithLogger 设置 logger
func WithLogger(logger zerolog.Logger) Option {
	return func(m *MatchService) {
		m.logger = logger.With().Str("component", "match_service").Logger()
	}
}

// New 创建 MatchService
func New(profiles core.ProfileSource, p *pipeline.Pipeline, opts ...Option) *MatchService {
	m := &MatchService{
		profiles: profiles,
		pipeline: p,
		scoring:  &core.DefaultScoringConfig{},
		backend:  core.BackendKNN,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetMatches 返回请求方在某一类型下的匹配，优先读缓存
func (m *MatchService) GetMatches(ctx context.Context, req MatchRequest) (*MatchList, error) {
	return m.matches(ctx, req, false)
}

// Calculate 强制重新计算匹配并覆盖缓存
func (m *MatchService) Calculate(ctx context.Context, req MatchRequest) (*MatchList, error) {
	return m.matches(ctx, req, true)
}

func (m *MatchService) matches(ctx context.Context, req MatchRequest, force bool) (*MatchList, error) {
	role, err := m.normalize(&req)
	if err != nil {
		return nil, err
	}
	key := cacheKey(req)

	var (
		user   *core.Profile
		cached *MatchList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := m.profiles.Get(gctx, req.UserID)
		user = p
		return err
	})
	if !force {
		g.Go(func() error {
			cached = m.readCache(gctx, key)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, userError(req.UserID, err)
	}
	if cached != nil {
		cached.Cached = true
		return cached, nil
	}

	mctx := &core.MatchContext{
		UserID:     req.UserID,
		User:       user,
		TargetRole: role,
		Backend:    req.Backend,
		TopN:       req.Skip + req.Limit,
	}
	items, err := m.pipeline.Run(ctx, mctx, nil)
	if err != nil {
		return nil, err
	}
	total := eligible(mctx, items)
	if req.Skip >= len(items) {
		items = nil
	} else {
		items = items[req.Skip:]
	}

	list := m.toMatchList(req.UserID, items)
	list.Total = total
	m.writeCache(ctx, key, list)
	if lbl, ok := mctx.GetLabel("rank_fault"); ok {
		m.logger.Warn().Str("user_id", req.UserID).Str("match_type", req.MatchType).Str("fault", lbl.Value).Msg("matches served from fallback ranking")
	}
	return list, nil
}

// Recommend 返回某一类型的推荐：similarity 后端，低于阈值的候选被剔除
func (m *MatchService) Recommend(ctx context.Context, userID, matchType string, limit int) (*RecommendationResponse, error) {
	if limit < 0 {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, fmt.Sprintf("service: negative limit %d", limit))
	}
	if limit == 0 {
		limit = DefaultRecommendLimit
	}
	role, err := core.ParseMatchType(matchType)
	if err != nil {
		return nil, err
	}
	user, err := m.profiles.Get(ctx, userID)
	if err != nil {
		return nil, userError(userID, err)
	}

	mctx := &core.MatchContext{
		UserID:     userID,
		User:       user,
		TargetRole: role,
		Backend:    core.BackendSimilarity,
		TopN:       limit,
		Params:     map[string]any{rerank.ParamMinScore: m.scoring.DefaultThreshold()},
	}
	items, err := m.pipeline.Run(ctx, mctx, nil)
	if err != nil {
		return nil, err
	}

	resp := &RecommendationResponse{Items: make([]RecommendationItem, 0, len(items)), Total: eligible(mctx, items)}
	for _, it := range items {
		resp.Items = append(resp.Items, toRecommendation(it))
	}
	return resp, nil
}

// RecommendAll 并发获取四类推荐，合并后按分数降序（同分保持类型顺序）截取前 limit 条
func (m *MatchService) RecommendAll(ctx context.Context, userID string, limit int) (*RecommendationResponse, error) {
	if limit < 0 {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, fmt.Sprintf("service: negative limit %d", limit))
	}
	if limit == 0 {
		limit = DefaultRecommendAllLimit
	}
	results := make([]*RecommendationResponse, len(recommendTypes))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range recommendTypes {
		g.Go(func() error {
			resp, err := m.Recommend(gctx, userID, t, limit)
			results[i] = resp
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &RecommendationResponse{}
	var merged []RecommendationItem
	for _, r := range results {
		merged = append(merged, r.Items...)
		out.Total += r.Total
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })

	out.Items = merged
	if len(merged) > limit {
		out.Items = merged[:limit]
	}
	return out, nil
}

// eligible 返回截断前的候选数：items 加上 rerank.topn 截掉的数量
func eligible(mctx *core.MatchContext, items []*core.Item) int {
	n := len(items)
	lbl, _ := mctx.GetLabel("truncated")
	for _, v := range lbl.Values() {
		if cut, err := strconv.Atoi(v); err == nil {
			n += cut
		}
	}
	return n
}

func (m *MatchService) normalize(req *MatchRequest) (core.Role, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return "", core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "service: user_id is required")
	}
	if req.Limit < 0 {
		return "", core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, fmt.Sprintf("service: negative limit %d", req.Limit))
	}
	if req.Skip < 0 {
		return "", core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, fmt.Sprintf("service: negative skip %d", req.Skip))
	}
	role, err := core.ParseMatchType(req.MatchType)
	if err != nil {
		return "", err
	}
	req.MatchType = role.MatchType()
	if req.Limit == 0 {
		req.Limit = m.scoring.DefaultTopN()
	}
	if req.Backend == "" {
		req.Backend = m.backend
	}
	return role, nil
}

func (m *MatchService) toMatchList(userID string, items []*core.Item) *MatchList {
	now := m.now().UTC()
	list := &MatchList{Matches: make([]Match, 0, len(items))}
	for _, it := range items {
		data := map[string]any{
			"name":          it.Meta["name"],
			"role":          it.Meta["role"],
			"match_percent": it.Meta["match_percent"],
			"backend":       it.Labels["rank_backend"].Value,
		}
		if reason, ok := it.Meta["reason"]; ok {
			data["reason"] = reason
		}
		if lbl, ok := it.Labels["rank_fallback"]; ok {
			data["fallback"] = true
			data["fault"] = lbl.Source
		}
		if it.Profile != nil && it.Profile.Position() != "" {
			data["position"] = it.Profile.Position()
		}
		list.Matches = append(list.Matches, Match{
			ID:        MatchID(userID, it.ID),
			UserID:    userID,
			TargetID:  it.ID,
			Score:     it.Score,
			MatchData: data,
			CreatedAt: now,
		})
	}
	return list
}

func toRecommendation(it *core.Item) RecommendationItem {
	rec := RecommendationItem{
		ID:    it.ID,
		Score: it.Score,
		Metadata: map[string]any{
			"match_percent": it.Meta["match_percent"],
			"backend":       it.Labels["rank_backend"].Value,
		},
	}
	if p := it.Profile; p != nil {
		rec.Title = p.Name
		rec.Type = string(p.Role)
	}
	if s, ok := it.Meta["description"].(string); ok {
		rec.Description = s
	}
	for _, k := range []string{"reason", "category", "location"} {
		if v, ok := it.Meta[k]; ok {
			rec.Metadata[k] = v
		}
	}
	return rec
}

func cacheKey(req MatchRequest) string {
	return fmt.Sprintf("%s%s:%s:%s:%d:%d", CacheKeyPrefix, req.UserID, req.MatchType, req.Backend, req.Skip, req.Limit)
}

func (m *MatchService) readCache(ctx context.Context, key string) *MatchList {
	if m.cache == nil {
		return nil
	}
	data, err := m.cache.Get(ctx, key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			m.logger.Warn().Err(err).Str("key", key).Msg("read match cache failed")
		}
		return nil
	}
	var list MatchList
	if err := json.Unmarshal(data, &list); err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("corrupt match cache entry ignored")
		return nil
	}
	return &list
}

func (m *MatchService) writeCache(ctx context.Context, key string, list *MatchList) {
	if m.cache == nil {
		return
	}
	data, err := json.Marshal(list)
	if err != nil {
		m.logger.Warn().Err(err).Msg("encode match cache entry failed")
		return
	}
	if err := m.cache.Set(ctx, key, data, int(m.cacheTTL/time.Second)); err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("write match cache failed")
	}
}

func userError(userID string, err error) error {
	if core.IsNotFound(err) {
		return core.WrapDomainError(core.ModuleService, core.ErrorCodeNotFound, "service: user not found: "+userID, err)
	}
	return fmt.Errorf("service: load user %s: %w", userID, err)
}
