package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/rushteam/scoutmatch/config"
	"github.com/rushteam/scoutmatch/server"
	"github.com/rushteam/scoutmatch/service"
)

var (
	addrFlag = &cli.StringFlag{
		Name:  "addr",
		Usage: "Address on which the server will listen (overrides server.addr)",
	}

	warmupFlag = &cli.BoolFlag{
		Name:  "warmup",
		Usage: "Load every scoring backend before accepting requests",
		Value: true,
	}

	serveCmd = &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the HTTP match service",
		Action:  cmdServe,
		Flags: []cli.Flag{
			addrFlag,
			warmupFlag,
		},
	}
)

func cmdServe(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr := cmd.String(addrFlag.Name); addr != "" {
		cfg.Server.Addr = addr
	}

	rt, err := newRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("close runtime")
		}
	}()

	if cmd.Bool(warmupFlag.Name) {
		// 未就绪的后端仍会以兜底排序提供服务
		if werr := rt.registry.Warmup(ctx); werr != nil {
			logger.Warn().Err(werr).Msg("warmup incomplete")
		}
	}

	p, err := config.BuildPipeline(cfg.Pipeline.File, rt.deps(), logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	svc := service.New(rt.profiles, p,
		service.WithCache(rt.store, cfg.Scoring.CacheTTL),
		service.WithScoringConfig(cfg.Scoring),
		service.WithDefaultBackend(cfg.Scoring.Backend),
		service.WithLogger(logger),
	)

	srv := server.New(cfg.Server, svc, rt.registry,
		server.WithLogger(logger),
		server.WithMetrics(rt.metrics, rt.prom),
		server.WithDefaults(cfg.Scoring.Backend, cfg.Scoring.TopN),
	)
	logger.Info().
		Str("version", version).
		Str("store", rt.store.Name()).
		Str("profiles", rt.profiles.Name()).
		Msg("scoutmatch starting")
	return srv.Run(ctx)
}
