package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/rushteam/scoutmatch/config"
	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/feature"
	"github.com/rushteam/scoutmatch/model"
	"github.com/rushteam/scoutmatch/pkg/metrics"
	"github.com/rushteam/scoutmatch/profile"
	"github.com/rushteam/scoutmatch/registry"
	"github.com/rushteam/scoutmatch/store"
)

// runtime 持有一次命令执行所需的全部组件
type runtime struct {
	cfg      *config.AppConfig
	logger   zerolog.Logger
	prom     *prometheus.Registry
	metrics  *metrics.Metrics
	store    core.Store
	profiles core.ProfileSource
	registry *registry.Registry
}

// newRuntime 按配置创建 Store、画像来源与打分注册表。
// 快照加载顺序：配置的文件路径 → Store（models_in_store）→ 内置样本。
func newRuntime(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger, prom: prometheus.NewRegistry()}
	rt.prom.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rt.metrics = metrics.New(rt.prom)

	var err error
	if rt.store, err = store.New(ctx, cfg.Store); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if rt.profiles, err = profile.New(ctx, cfg.Profiles, profile.WithFeastLogger(logger)); err != nil {
		_ = rt.store.Close()
		return nil, fmt.Errorf("open profiles: %w", err)
	}

	loaders := []model.Loader{model.NewFileLoader(cfg.Scoring.ModelPaths())}
	if cfg.Scoring.ModelsInStore {
		loaders = append(loaders, rt.modelStore())
	}
	rt.registry = registry.New(
		registry.WithSchema(cfg.Scoring.FeatureSchema()),
		registry.WithLoader(model.NewChainLoader(loaders...)),
		registry.WithSeed(cfg.Scoring.Seed),
		registry.WithLoadTimeout(cfg.Scoring.LoadTimeout),
		registry.WithLogger(logger),
		registry.WithMetrics(rt.metrics),
	)
	return rt, nil
}

func (rt *runtime) modelStore() *model.StoreLoader {
	return model.NewStoreLoader(rt.store, rt.cfg.Scoring.ModelKeyPrefix)
}

func (rt *runtime) deps() config.Deps {
	return config.Deps{
		Profiles:  rt.profiles,
		Scorer:    rt.registry,
		Store:     rt.store,
		Extractor: feature.NewDefaultProfileExtractor(),
		Logger:    rt.logger,
	}
}

func (rt *runtime) Close() error {
	return errors.Join(rt.profiles.Close(), rt.store.Close())
}
