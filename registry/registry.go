// Package registry 是打分引擎的唯一入口：按后端名称懒加载并缓存打分后端，
// 任何故障都降级为确定性的兜底排序，调用方永远拿到可用结果。
//
// 每个后端的状态机：UNINITIALIZED → LOADING → READY。
// 每个 Registry 实例对每个后端只加载一次；并发的首次调用共享同一次加载，
// 不会观察到半初始化的后端。READY 之后后端只读，不再重新加载。
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/feature"
	"github.com/rushteam/scoutmatch/model"
	"github.com/rushteam/scoutmatch/pkg/metrics"
	"github.com/rushteam/scoutmatch/scorer"
)

// State 是后端加载状态
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "LOADING"
	case StateReady:
		return "READY"
	default:
		return "UNINITIALIZED"
	}
}

// 加载来源
const (
	SourceSeed = "seed"
	SourceNone = "none"
)

// BackendInfo 描述一个后端的加载情况
type BackendInfo struct {
	Name   string `json:"name"`
	State  string `json:"state"`
	Source string `json:"source,omitempty"`
	Size   int    `json:"size"`
	Ready  bool   `json:"ready"`
}

type slot struct {
	state   State
	backend scorer.Backend // READY 且为 nil 表示加载失败（missing backend）
	source  string
}

// Registry 是打分后端注册表，实现 core.MatchScorer。
type Registry struct {
	schema      core.FeatureSchema
	loader      model.Loader
	seed        bool
	loadTimeout time.Duration
	logger      zerolog.Logger
	metrics     *metrics.Metrics

	mu    sync.RWMutex
	slots map[string]*slot
	group singleflight.Group
}

// Option 是 Registry 的配置选项
type Option func(*Registry)

// WithSchema 设置特征 schema（默认 core.DefaultSchema）
func WithSchema(schema core.FeatureSchema) Option {
	return func(r *Registry) {
		if len(schema) > 0 {
			r.schema = schema.Clone()
		}
	}
}

// WithLoader 设置持久化快照加载器
func WithLoader(loader model.Loader) Option {
	return func(r *Registry) {
		r.loader = loader
	}
}

// WithSeed 设置在没有持久化快照时是否用内置样本合成后端（默认开启）
func WithSeed(enabled bool) Option {
	return func(r *Registry) {
		r.seed = enabled
	}
}

// WithLoadTimeout 设置单次加载超时
func WithLoadTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.loadTimeout = d
		}
	}
}

// WithLogger 设置 logger
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger.With().Str("component", "registry").Logger()
	}
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// New 创建 Registry；后端在首次使用时加载
func New(opts ...Option) *Registry {
	r := &Registry{
		schema:      core.DefaultSchema.Clone(),
		seed:        true,
		loadTimeout: 10 * time.Second,
		logger:      zerolog.Nop(),
		slots:       make(map[string]*slot),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, name := range Backends() {
		r.slots[name] = &slot{state: StateUninitialized}
	}
	return r
}

// Backends 返回支持的后端名称
func Backends() []string {
	return []string{core.BackendKNN, core.BackendSimilarity}
}

// Supported 判断后端名称是否受支持
func Supported(name string) bool {
	return name == core.BackendKNN || name == core.BackendSimilarity
}

// metricLabel 把不受支持的后端名归并为 unknown
func metricLabel(name string) string {
	if Supported(name) {
		return name
	}
	return "unknown"
}

// Schema 返回打分使用的特征 schema
func (r *Registry) Schema() core.FeatureSchema { return r.schema }

// State 返回后端当前状态；未知后端为 UNINITIALIZED
func (r *Registry) State(name string) State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.slots[name]; ok {
		return s.state
	}
	return StateUninitialized
}

// Info 返回全部后端的加载情况（按名称排序）
func (r *Registry) Info() []BackendInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]BackendInfo, 0, len(r.slots))
	for name, s := range r.slots {
		info := BackendInfo{Name: name, State: s.state.String(), Source: s.source}
		if s.backend != nil {
			info.Size = s.backend.Size()
			info.Ready = true
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Warmup 预先加载指定后端（为空时加载全部），返回未能就绪的后端错误
func (r *Registry) Warmup(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = Backends()
	}
	for _, name := range names {
		if _, fault, err := r.Backend(ctx, name); fault != core.FaultNone {
			return fmt.Errorf("warmup %s: %s: %w", name, fault, err)
		}
	}
	return nil
}

// Backend 返回已就绪的后端，必要时触发（共享的）一次性加载
func (r *Registry) Backend(ctx context.Context, name string) (scorer.Backend, core.Fault, error) {
	if !Supported(name) {
		return nil, core.FaultUnknownBackend, core.NewDomainError(core.ModuleRegistry, core.ErrorCodeNotSupported, "registry: unknown backend "+name)
	}

	if b, ready := r.ready(name); ready {
		return missing(name, b)
	}

	_, _, _ = r.group.Do(name, func() (any, error) {
		r.mu.Lock()
		s := r.slots[name]
		if s.state == StateReady {
			r.mu.Unlock()
			return nil, nil
		}
		s.state = StateLoading
		r.mu.Unlock()

		b, source := r.load(ctx, name)

		r.mu.Lock()
		s.backend, s.source, s.state = b, source, StateReady
		r.mu.Unlock()
		return nil, nil
	})

	b, _ := r.ready(name)
	return missing(name, b)
}

func (r *Registry) ready(name string) (scorer.Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.slots[name]
	return s.backend, s.state == StateReady
}

func missing(name string, b scorer.Backend) (scorer.Backend, core.Fault, error) {
	if b == nil {
		return nil, core.FaultMissingBackend, core.NewDomainError(core.ModuleRegistry, core.ErrorCodeUnavailable, "registry: no backend available for "+name)
	}
	return b, core.FaultNone, nil
}

// load 依次尝试持久化快照与内置样本；任何故障（包括 panic）都只记录日志，返回 nil 表示 missing。
func (r *Registry) load(ctx context.Context, name string) (b scorer.Backend, source string) {
	start := time.Now()
	log := r.logger.With().Str("backend", name).Logger()
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("backend load panicked")
			b, source = nil, SourceNone
		}
		r.metrics.ObserveLoad(name, source, time.Since(start))
	}()

	// 加载不受首个调用方取消的影响：只有一次加载机会
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
	defer cancel()

	if r.loader != nil {
		snap, from, err := loadFrom(loadCtx, r.loader, name)
		switch {
		case err == nil && !snap.Schema.Equal(r.schema):
			log.Warn().Strs("snapshot_schema", snap.Schema).Strs("schema", r.schema).Msg("persisted snapshot schema mismatch, ignored")
		case err == nil:
			backend, berr := snap.Backend()
			if berr == nil {
				log.Info().Str("source", from).Int("size", backend.Size()).Msg("backend loaded")
				return backend, from
			}
			log.Error().Err(berr).Str("source", from).Msg("persisted snapshot unusable")
		case core.IsNotFound(err):
			log.Info().Msg("no persisted snapshot")
		default:
			log.Error().Err(err).Msg("persisted snapshot load failed")
		}
	}

	if !r.seed {
		log.Warn().Msg("no backend available and seeding disabled")
		return nil, SourceNone
	}
	snap, err := model.SeedSnapshot(name, r.schema)
	if err == nil {
		var backend scorer.Backend
		if backend, err = snap.Backend(); err == nil {
			log.Info().Int("size", backend.Size()).Msg("backend synthesized from seed dataset")
			return backend, SourceSeed
		}
	}
	log.Error().Err(err).Msg("seed backend synthesis failed")
	return nil, SourceNone
}

func loadFrom(ctx context.Context, loader model.Loader, name string) (snap *model.Snapshot, from string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			snap, err = nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInternalError, fmt.Sprintf("model: loader panic: %v", rec))
		}
	}()
	if chain, ok := loader.(*model.ChainLoader); ok {
		return chain.LoadFrom(ctx, name)
	}
	snap, err = loader.Load(ctx, name)
	return snap, loader.Name(), err
}

// FindMatches 在后端参考集中查找与 attrs 最接近的 topN 个候选。
//
// 全函数：任何故障都降级为 fallback_<i> 排序，Fault / Err 描述原因。
//   - topN == 0：空结果
//   - topN < 0：空结果，Fault = invalid_input
func (r *Registry) FindMatches(ctx context.Context, attrs map[string]any, backendName string, topN int) (res core.MatchResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			res = r.fallback(backendName, FallbackRanking(topN), core.FaultInternal, fmt.Errorf("registry: panic: %v", rec))
		}
		r.metrics.ObserveScore(metricLabel(backendName), "find", time.Since(start), len(res.Matches))
	}()

	if early, done := r.checkTopN(backendName, topN); done {
		return early
	}
	b, fault, err := r.Backend(ctx, backendName)
	if fault != core.FaultNone {
		return r.fallback(backendName, FallbackRanking(topN), fault, err)
	}
	matches, err := b.Rank(feature.Build(r.schema, attrs), topN)
	if err != nil {
		return r.fallback(backendName, FallbackRanking(topN), classify(err), err)
	}
	return core.MatchResult{Matches: matches, Backend: backendName}
}

// RankPool 在请求级候选池上查找与 attrs 最接近的 topN 个候选；
// 降级时按插入顺序为前 topN 个候选打兜底分。
func (r *Registry) RankPool(ctx context.Context, attrs map[string]any, pool *core.CandidatePool, backendName string, topN int) (res core.MatchResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			res = r.fallback(backendName, FallbackPool(pool, topN), core.FaultInternal, fmt.Errorf("registry: panic: %v", rec))
		}
		r.metrics.ObserveScore(metricLabel(backendName), "rank_pool", time.Since(start), len(res.Matches))
	}()

	if early, done := r.checkTopN(backendName, topN); done {
		return early
	}
	if pool.Len() == 0 {
		return core.MatchResult{Matches: []core.ScoredMatch{}, Backend: backendName}
	}
	b, fault, err := r.Backend(ctx, backendName)
	if fault != core.FaultNone {
		return r.fallback(backendName, FallbackPool(pool, topN), fault, err)
	}
	matches, err := b.RankPool(feature.Build(r.schema, attrs), pool, topN)
	if err != nil {
		return r.fallback(backendName, FallbackPool(pool, topN), classify(err), err)
	}
	return core.MatchResult{Matches: matches, Backend: backendName}
}

func (r *Registry) checkTopN(backendName string, topN int) (core.MatchResult, bool) {
	switch {
	case topN == 0:
		return core.MatchResult{Matches: []core.ScoredMatch{}, Backend: backendName}, true
	case topN < 0:
		err := core.NewDomainError(core.ModuleRegistry, core.ErrorCodeInvalidInput, fmt.Sprintf("registry: negative top_n %d", topN))
		r.logger.Warn().Str("backend", backendName).Int("top_n", topN).Msg("negative top_n")
		r.metrics.ObserveFallback(metricLabel(backendName), string(core.FaultInvalidInput))
		return core.MatchResult{Matches: []core.ScoredMatch{}, Backend: backendName, Fault: core.FaultInvalidInput, Err: err}, true
	}
	return core.MatchResult{}, false
}

func (r *Registry) fallback(backendName string, matches []core.ScoredMatch, fault core.Fault, err error) core.MatchResult {
	r.logger.Warn().Err(err).Str("backend", backendName).Str("fault", string(fault)).Int("matches", len(matches)).Msg("serving fallback ranking")
	r.metrics.ObserveFallback(metricLabel(backendName), string(fault))
	return core.MatchResult{
		Matches:  matches,
		Backend:  backendName,
		Fallback: true,
		Fault:    fault,
		Err:      err,
	}
}

func classify(err error) core.Fault {
	if core.IsInvalidInput(err) {
		return core.FaultInvalidInput
	}
	return core.FaultInternal
}

var _ core.MatchScorer = (*Registry)(nil)
