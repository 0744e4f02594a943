package builders

import (
	"fmt"
	"time"

	"github.com/rushteam/scoutmatch/config"
	"github.com/rushteam/scoutmatch/filter"
	"github.com/rushteam/scoutmatch/pipeline"
	"github.com/rushteam/scoutmatch/pkg/conv"
	"github.com/rushteam/scoutmatch/rank"
	"github.com/rushteam/scoutmatch/recall"
	"github.com/rushteam/scoutmatch/rerank"
)

func init() {
	config.Register("recall.profile", BuildProfileRecallNode)
	config.Register("recall.featured", BuildFeaturedNode)
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rank.score", BuildScoreNode)
	config.Register("rerank.threshold", BuildThresholdNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("postprocess.reason", BuildReasonNode)
}

func BuildProfileRecallNode(deps config.Deps, cfg map[string]any) (pipeline.Node, error) {
	if deps.Profiles == nil {
		return nil, fmt.Errorf("recall.profile requires a profile source")
	}
	return &recall.ProfileRecall{
		Source:    deps.Profiles,
		Extractor: deps.Extractor,
		Limit:     conv.ConfigGetInt(cfg, "limit", 0),
	}, nil
}

func BuildFeaturedNode(deps config.Deps, cfg map[string]any) (pipeline.Node, error) {
	return newFeatured(deps, cfg)
}

func newFeatured(deps config.Deps, cfg map[string]any) (*recall.Featured, error) {
	if deps.Profiles == nil {
		return nil, fmt.Errorf("recall.featured requires a profile source")
	}
	return &recall.Featured{
		Store:     deps.Store,
		Key:       conv.ConfigGet(cfg, "key", "featured:{role}"),
		IDs:       conv.SliceAnyToString(cfg["ids"]),
		Profiles:  deps.Profiles,
		Extractor: deps.Extractor,
	}, nil
}

func BuildFanoutNode(deps config.Deps, cfg map[string]any) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]any)
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]any)
		if !ok {
			continue
		}
		switch sourceType := conv.ConfigGet(sourceMap, "type", ""); sourceType {
		case "profile":
			node, err := BuildProfileRecallNode(deps, sourceMap)
			if err != nil {
				return nil, err
			}
			sources = append(sources, node.(*recall.ProfileRecall))
		case "featured":
			src, err := newFeatured(deps, sourceMap)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}
	fanout := &recall.Fanout{
		Sources:       sources,
		Dedup:         conv.ConfigGet(cfg, "dedup", true),
		MaxConcurrent: conv.ConfigGetInt(cfg, "max_concurrent", 0),
		MergeStrategy: conv.ConfigGet(cfg, "merge_strategy", recall.MergeFirst),
		Logger:        deps.Logger,
	}
	if ms := conv.ConfigGetInt(cfg, "timeout_ms", 0); ms > 0 {
		fanout.Timeout = time.Duration(ms) * time.Millisecond
	}
	return fanout, nil
}

func BuildFilterNode(deps config.Deps, cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	var adapter *filter.StoreAdapter
	if deps.Store != nil {
		adapter = filter.NewStoreAdapter(deps.Store)
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["ids"])
			key := conv.ConfigGet(filterMap, "key", "")
			filters = append(filters, filter.NewBlacklistFilter(ids, adapter, key))

		case "user_block":
			keyPrefix := conv.ConfigGet(filterMap, "key_prefix", "")
			filters = append(filters, filter.NewUserBlockFilter(adapter, keyPrefix))

		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""))
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)

		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters, Logger: deps.Logger}, nil
}

func BuildScoreNode(deps config.Deps, cfg map[string]any) (pipeline.Node, error) {
	if deps.Scorer == nil {
		return nil, fmt.Errorf("rank.score requires a scorer")
	}
	return &rank.ScoreNode{
		Scorer:    deps.Scorer,
		Extractor: deps.Extractor,
		Backend:   conv.ConfigGet(cfg, "backend", ""),
	}, nil
}

func BuildThresholdNode(_ config.Deps, cfg map[string]any) (pipeline.Node, error) {
	return &rerank.ThresholdNode{MinScore: conv.ConfigGetFloat64(cfg, "min_score", 0)}, nil
}

func BuildTopNNode(_ config.Deps, cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}

func BuildReasonNode(config.Deps, map[string]any) (pipeline.Node, error) {
	return &rerank.ReasonNode{}, nil
}
