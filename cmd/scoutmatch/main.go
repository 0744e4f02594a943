// Command scoutmatch 是球探匹配服务的命令行入口：
//
//	scoutmatch serve                      启动 HTTP 服务
//	scoutmatch train --backend knn -o m.json  训练并保存打分快照
//	scoutmatch match --attr age=21 ...    对一组属性直接打分
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/rushteam/scoutmatch/config"
	_ "github.com/rushteam/scoutmatch/config/builders"
	"github.com/rushteam/scoutmatch/pkg/logging"
)

var (
	version = "v0.0.1-default"
	commit  = ""

	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the YAML config file (optional, defaults to $" + config.ConfigPathEnvVar + " or ./config.yaml)",
	}

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "scoutmatch",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Usage:   "Football scouting match scorer",
		Flags: []cli.Flag{
			configFlag,
			debugFlag,
		},
		Commands: []*cli.Command{
			serveCmd,
			trainCmd,
			matchCmd,
		},
	}
}

// loadConfig 加载配置并按全局 flag 构建 logger
func loadConfig(cmd *cli.Command) (*config.AppConfig, zerolog.Logger, error) {
	cfg, err := config.Load(cmd.String(configFlag.Name))
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	if cmd.Bool(debugFlag.Name) {
		cfg.Log.Level = "debug"
	}
	return cfg, logging.New(cfg.Log), nil
}
