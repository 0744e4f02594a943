package config

import (
	"github.com/rs/zerolog"

	"github.com/rushteam/scoutmatch/pipeline"
)

// DefaultPipelineYAML 是内置的匹配 Pipeline：
// 按目标角色召回 → 拉黑 / 黑名单 / 表达式过滤 → 打分 → 截断 → 推荐理由。
const DefaultPipelineYAML = `
pipeline:
  name: matches
  nodes:
    - type: recall.profile
    - type: filter
      config:
        filters:
          - type: user_block
            key_prefix: "user:block"
          - type: blacklist
            key: "blacklist:global"
          - type: expr
    - type: rank.score
    - type: rerank.threshold
    - type: rerank.topn
    - type: postprocess.reason
`

// LoadPipeline 加载 Pipeline 描述：path 为空时使用 DefaultPipelineYAML
func LoadPipeline(path string) (*pipeline.Config, error) {
	if path == "" {
		return pipeline.ParseYAML([]byte(DefaultPipelineYAML))
	}
	return pipeline.Load(path)
}

// BuildPipeline 加载、校验并用 deps 构建 Pipeline
func BuildPipeline(path string, deps Deps, logger zerolog.Logger) (*pipeline.Pipeline, error) {
	cfg, err := LoadPipeline(path)
	if err != nil {
		return nil, err
	}
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	return cfg.BuildPipeline(NewFactory(deps), logger)
}
