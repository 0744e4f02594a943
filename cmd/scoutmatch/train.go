package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/feature"
	"github.com/rushteam/scoutmatch/model"
	"github.com/rushteam/scoutmatch/registry"
)

const trainAll = "all"

var (
	trainBackendFlag = &cli.StringFlag{
		Name:    "backend",
		Aliases: []string{"b"},
		Usage:   "Backend to train [knn, similarity, all]",
		Value:   trainAll,
	}

	rowsFlag = &cli.StringFlag{
		Name:  "rows",
		Usage: "JSON or YAML file with training rows [{id, attrs}] (optional)",
	}

	fromProfilesFlag = &cli.BoolFlag{
		Name:  "from-profiles",
		Usage: "Train on the player profiles of the configured profile source",
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Snapshot file, {backend} is replaced by the backend name (e.g. models/{backend}.json)",
	}

	toStoreFlag = &cli.BoolFlag{
		Name:  "to-store",
		Usage: "Save snapshots into the configured store under scoring.model_key_prefix",
	}

	trainCmd = &cli.Command{
		Name:    "train",
		Aliases: []string{"t"},
		Usage:   "Train scoring snapshots and persist them for the next start",
		Action:  cmdTrain,
		Flags: []cli.Flag{
			trainBackendFlag,
			rowsFlag,
			fromProfilesFlag,
			outputFlag,
			toStoreFlag,
		},
	}
)

func cmdTrain(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	output := cmd.String(outputFlag.Name)
	toStore := cmd.Bool(toStoreFlag.Name)
	if output == "" && !toStore {
		return errors.New("one of --output or --to-store is required")
	}

	kinds, err := trainKinds(cmd.String(trainBackendFlag.Name))
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	rows, err := trainingRows(ctx, cmd, rt)
	if err != nil {
		return err
	}
	schema := cfg.Scoring.FeatureSchema()

	for _, kind := range kinds {
		snap, err := model.Train(kind, schema, rows)
		if err != nil {
			return fmt.Errorf("train %s: %w", kind, err)
		}
		log := logger.With().Str("backend", kind).Int("rows", len(snap.References)).Logger()
		if output != "" {
			path := strings.ReplaceAll(output, "{backend}", kind)
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create %s: %w", dir, err)
				}
			}
			if err := model.WriteFile(path, snap); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			log.Info().Str("path", path).Msg("snapshot written")
		}
		if toStore {
			saver := rt.modelStore()
			if err := saver.Save(ctx, snap); err != nil {
				return fmt.Errorf("save %s: %w", kind, err)
			}
			log.Info().Str("key", saver.Key(kind)).Str("store", rt.store.Name()).Msg("snapshot saved")
		}
	}
	return nil
}

func trainKinds(name string) ([]string, error) {
	if name == "" || name == trainAll {
		return registry.Backends(), nil
	}
	if !registry.Supported(name) {
		return nil, fmt.Errorf("unknown backend %q", name)
	}
	return []string{name}, nil
}

// trainingRows 依次取 --rows 文件、--from-profiles 球员画像，都未指定时使用内置样本
func trainingRows(ctx context.Context, cmd *cli.Command, rt *runtime) ([]feature.Row, error) {
	if path := cmd.String(rowsFlag.Name); path != "" {
		return readRows(path)
	}
	if !cmd.Bool(fromProfilesFlag.Name) {
		return model.SeedRows(), nil
	}

	players, err := rt.profiles.ListByRole(ctx, core.RolePlayer, "")
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	ex := feature.NewDefaultProfileExtractor()
	rows := make([]feature.Row, 0, len(players))
	for _, p := range players {
		rows = append(rows, feature.Row{ID: p.ID, Attrs: ex.Extract(p)})
	}
	return rows, nil
}

func readRows(path string) ([]feature.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	var rows []feature.Row
	if model.FormatOf(path) == model.FormatYAML {
		err = yaml.Unmarshal(data, &rows)
	} else {
		err = json.Unmarshal(data, &rows)
	}
	if err != nil {
		return nil, fmt.Errorf("parse rows %s: %w", path, err)
	}
	return rows, nil
}
