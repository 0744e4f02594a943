package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

var (
	attrFlag = &cli.StringMapFlag{
		Name:    "attr",
		Aliases: []string{"a"},
		Usage:   "Query attribute as key=value, repeatable (e.g. --attr age=21 --attr speed=87)",
	}

	backendFlag = &cli.StringFlag{
		Name:    "backend",
		Aliases: []string{"b"},
		Usage:   "Scoring backend [knn, similarity] (optional, defaults to scoring.backend)",
	}

	topNFlag = &cli.IntFlag{
		Name:    "top",
		Aliases: []string{"n"},
		Usage:   "Number of matches to return (optional, defaults to scoring.top_n)",
	}

	matchCmd = &cli.Command{
		Name:    "match",
		Aliases: []string{"m"},
		Usage:   "Score a set of attributes against the reference set",
		Action:  cmdMatch,
		Flags: []cli.Flag{
			attrFlag,
			backendFlag,
			topNFlag,
		},
	}
)

func cmdMatch(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rt, err := newRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	backend := cmd.String(backendFlag.Name)
	if backend == "" {
		backend = cfg.Scoring.Backend
	}
	topN := cfg.Scoring.TopN
	if cmd.IsSet(topNFlag.Name) {
		topN = int(cmd.Int(topNFlag.Name))
	}

	attrs := make(map[string]any)
	for k, v := range cmd.StringMap(attrFlag.Name) {
		attrs[k] = v
	}

	res := rt.registry.FindMatches(ctx, attrs, backend, topN)
	if !res.OK() {
		logger.Warn().Str("fault", string(res.Fault)).Err(res.Err).Msg("fallback ranking")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
