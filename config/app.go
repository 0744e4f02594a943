package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/pkg/logging"
	"github.com/rushteam/scoutmatch/profile"
	"github.com/rushteam/scoutmatch/store"
)

const (
	// ConfigPathEnvVar 指定配置文件路径
	ConfigPathEnvVar = "SCOUTMATCH_CONFIG"

	// EnvPrefix 是环境变量前缀，层级用双下划线分隔：SCOUTMATCH_STORE__DRIVER=redis
	EnvPrefix = "SCOUTMATCH_"
)

// DefaultConfigPaths 按优先级查找配置文件，使用第一个存在的
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

// AppConfig 是服务的完整配置
type AppConfig struct {
	Server   ServerConfig   `koanf:"server"`
	Log      logging.Config `koanf:"log"`
	Scoring  ScoringConfig  `koanf:"scoring"`
	Store    store.Config   `koanf:"store"`
	Profiles profile.Config `koanf:"profiles"`
	Pipeline PipelineConfig `koanf:"pipeline"`
}

// ServerConfig 是 HTTP 服务配置
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit" validate:"gte=0"` // 每个 IP 每个窗口的请求数，0 表示不限流
	RateWindow      time.Duration `koanf:"rate_window" validate:"gte=0"`
}

// ScoringConfig 是打分引擎与匹配服务配置，实现 core.ScoringConfig
type ScoringConfig struct {
	Schema          []string      `koanf:"schema" validate:"required,min=1,dive,required"`
	Backend         string        `koanf:"backend" validate:"oneof=knn similarity"`
	TopN            int           `koanf:"top_n" validate:"gte=1"`
	Threshold       float64       `koanf:"threshold" validate:"gte=0,lte=1"`
	LoadTimeout     time.Duration `koanf:"load_timeout" validate:"gte=0"`
	Seed            bool          `koanf:"seed"`
	KNNModel        string        `koanf:"knn_model"`        // knn 快照文件路径（.json / .yaml）
	SimilarityModel string        `koanf:"similarity_model"` // similarity 快照文件路径
	ModelsInStore   bool          `koanf:"models_in_store"`  // 是否从 Store 读取快照
	ModelKeyPrefix  string        `koanf:"model_key_prefix"`
	CacheTTL        time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

func (c ScoringConfig) DefaultTopN() int              { return c.TopN }
func (c ScoringConfig) DefaultThreshold() float64     { return c.Threshold }
func (c ScoringConfig) DefaultTimeout() time.Duration { return c.LoadTimeout }

// FeatureSchema 返回打分 schema
func (c ScoringConfig) FeatureSchema() core.FeatureSchema {
	return core.FeatureSchema(c.Schema).Clone()
}

// ModelPaths 返回已配置的快照文件路径：后端名 -> 路径
func (c ScoringConfig) ModelPaths() map[string]string {
	paths := make(map[string]string, 2)
	if c.KNNModel != "" {
		paths[core.BackendKNN] = c.KNNModel
	}
	if c.SimilarityModel != "" {
		paths[core.BackendSimilarity] = c.SimilarityModel
	}
	return paths
}

// PipelineConfig 指定匹配 Pipeline 的描述文件，为空时使用内置 Pipeline
type PipelineConfig struct {
	File string `koanf:"file"`
}

// Default 返回带默认值的配置
func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       100,
			RateWindow:      time.Minute,
		},
		Log: logging.Config{
			Level:     "info",
			Format:    "json",
			Timestamp: true,
		},
		Scoring: ScoringConfig{
			Schema:         []string(core.DefaultSchema),
			Backend:        core.BackendKNN,
			TopN:           5,
			Threshold:      0.5,
			LoadTimeout:    10 * time.Second,
			Seed:           true,
			ModelKeyPrefix: "model:",
			CacheTTL:       10 * time.Minute,
		},
		Store: store.Config{
			Driver: "memory",
		},
		Profiles: profile.Config{
			Driver: "memory",
			Demo:   true,
		},
	}
}

// Load 按 默认值 → 配置文件 → 环境变量 的顺序加载配置并校验。
// path 为空时依次尝试 SCOUTMATCH_CONFIG 与 DefaultConfigPaths；当前目录的 .env 会先被加载。
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 校验配置
func (c *AppConfig) Validate() error {
	return validate.Struct(c)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc: SCOUTMATCH_SCORING__TOP_N -> scoring.top_n
func envTransformFunc(key string) string {
	key = strings.TrimPrefix(key, EnvPrefix)
	if key == "CONFIG" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}

// 环境变量中以逗号分隔的列表字段
var sliceConfigPaths = []string{
	"server.cors_origins",
	"scoring.schema",
	"profiles.feast.features",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
