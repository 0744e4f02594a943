package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	"github.com/feast-dev/feast/sdk/go/protos/feast/types"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/rushteam/scoutmatch/core"
)

// FeastConfig 是 Feast 在线特征配置
type FeastConfig struct {
	Host      string        `koanf:"host" yaml:"host"`
	Port      int           `koanf:"port" yaml:"port" validate:"gte=0,lte=65535"`
	Project   string        `koanf:"project" yaml:"project"`
	EntityKey string        `koanf:"entity_key" yaml:"entity_key"`
	Features  []string      `koanf:"features" yaml:"features"` // 形如 "player_stats:speed"
	Timeout   time.Duration `koanf:"timeout" yaml:"timeout"`
}

// Fetcher 抽象在线特征读取：按实体行返回特征行（顺序一致）
type Fetcher interface {
	Fetch(ctx context.Context, project string, features []string, entities []feastsdk.Row) ([]feastsdk.Row, error)
}

// GrpcFetcher 基于官方 Feast Go SDK 的 gRPC 实现
type GrpcFetcher struct {
	client *feastsdk.GrpcClient
}

// NewGrpcFetcher 创建 Feast gRPC 客户端，port 为 0 时使用默认端口 6565
func NewGrpcFetcher(host string, port int) (*GrpcFetcher, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleProfile, core.ErrorCodeUnavailable, fmt.Sprintf("profile: feast connect %s:%d", host, port), err)
	}
	return &GrpcFetcher{client: client}, nil
}

func (f *GrpcFetcher) Fetch(ctx context.Context, project string, features []string, entities []feastsdk.Row) ([]feastsdk.Row, error) {
	resp, err := f.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: features,
		Entities: entities,
		Project:  project,
	})
	if err != nil {
		return nil, err
	}
	return resp.Rows(), nil
}

// FeastSource 是画像来源的装饰器：从底层来源读取画像后，
// 通过 Feast 在线特征补充 Profile.Features（如最近比赛的 speed / skill 评分）。
//
// Feast 不可用时不影响主流程：熔断打开或请求失败只记录日志，返回未补充的画像。
type FeastSource struct {
	base      core.ProfileSource
	fetcher   Fetcher
	project   string
	entityKey string
	features  []string
	timeout   time.Duration
	breaker   *gobreaker.CircuitBreaker[[]feastsdk.Row]
	logger    zerolog.Logger
}

// FeastOption 是 FeastSource 的配置选项
type FeastOption func(*FeastSource)

// WithFeastLogger 设置 logger
func WithFeastLogger(logger zerolog.Logger) FeastOption {
	return func(s *FeastSource) {
		s.logger = logger.With().Str("component", "feast").Logger()
	}
}

// WithBreakerSettings 覆盖默认熔断配置
func WithBreakerSettings(st gobreaker.Settings) FeastOption {
	return func(s *FeastSource) {
		s.breaker = gobreaker.NewCircuitBreaker[[]feastsdk.Row](st)
	}
}

// NewFeastSource 包装底层画像来源
func NewFeastSource(base core.ProfileSource, fetcher Fetcher, cfg FeastConfig, opts ...FeastOption) *FeastSource {
	s := &FeastSource{
		base:      base,
		fetcher:   fetcher,
		project:   cfg.Project,
		entityKey: cfg.EntityKey,
		features:  cfg.Features,
		timeout:   cfg.Timeout,
		logger:    zerolog.Nop(),
	}
	if s.entityKey == "" {
		s.entityKey = "profile_id"
	}
	if s.timeout <= 0 {
		s.timeout = 500 * time.Millisecond
	}
	s.breaker = gobreaker.NewCircuitBreaker[[]feastsdk.Row](gobreaker.Settings{
		Name:        "feast",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FeastSource) Name() string { return "feast+" + s.base.Name() }

func (s *FeastSource) Get(ctx context.Context, id string) (*core.Profile, error) {
	p, err := s.base.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.enrich(ctx, []*core.Profile{p})
	return p, nil
}

func (s *FeastSource) ListByRole(ctx context.Context, role core.Role, excludeID string) ([]*core.Profile, error) {
	profiles, err := s.base.ListByRole(ctx, role, excludeID)
	if err != nil {
		return nil, err
	}
	s.enrich(ctx, profiles)
	return profiles, nil
}

func (s *FeastSource) Close() error { return s.base.Close() }

// State 返回熔断器状态（用于健康检查）
func (s *FeastSource) State() string { return s.breaker.State().String() }

// enrich 批量读取在线特征并写入画像；失败时保持画像不变
func (s *FeastSource) enrich(ctx context.Context, profiles []*core.Profile) {
	if len(profiles) == 0 || len(s.features) == 0 {
		return
	}
	entities := make([]feastsdk.Row, len(profiles))
	for i, p := range profiles {
		entities[i] = feastsdk.Row{s.entityKey: feastsdk.StrVal(p.ID)}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rows, err := s.breaker.Execute(func() ([]feastsdk.Row, error) {
		rows, err := s.fetcher.Fetch(ctx, s.project, s.features, entities)
		if err != nil {
			return nil, err
		}
		if len(rows) != len(entities) {
			return nil, fmt.Errorf("feast returned %d rows for %d entities", len(rows), len(entities))
		}
		return rows, nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Int("profiles", len(profiles)).Str("breaker", s.breaker.State().String()).Msg("online feature enrichment skipped")
		return
	}

	// 在副本上写入，避免修改底层来源（如 MemorySource）持有的画像
	for i, p := range profiles {
		cp := *p
		cp.Features = make(map[string]float64, len(p.Features)+len(s.features))
		for k, v := range p.Features {
			cp.Features[k] = v
		}
		for _, ref := range s.features {
			if f, ok := valueToFloat(rows[i][ref]); ok {
				cp.Features[featureName(ref)] = f
			}
		}
		profiles[i] = &cp
	}
}

// featureName 将 "view:feature" 形式的引用转为特征名
func featureName(ref string) string {
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// valueToFloat 将 Feast 值转为 float64；空值与非数值类型返回 false
func valueToFloat(v *types.Value) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.GetVal().(type) {
	case *types.Value_DoubleVal:
		return val.DoubleVal, true
	case *types.Value_FloatVal:
		return float64(val.FloatVal), true
	case *types.Value_Int64Val:
		return float64(val.Int64Val), true
	case *types.Value_Int32Val:
		return float64(val.Int32Val), true
	case *types.Value_BoolVal:
		if val.BoolVal {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

var _ core.ProfileSource = (*FeastSource)(nil)
