// Package profile 提供 core.ProfileSource 的实现：
//
//   - MemorySource：内存画像（开发 / 测试 / 演示数据）
//   - SQLSource：profiles 表（SQLite / Postgres）
//   - FeastSource：装饰器，通过 Feast 在线特征补充画像数值特征，带熔断
package profile

import (
	"context"

	"github.com/rushteam/scoutmatch/core"
)

// Config 是画像来源配置
type Config struct {
	Driver string `koanf:"driver" yaml:"driver" validate:"oneof=memory sqlite postgres"`
	DSN    string `koanf:"dsn" yaml:"dsn" validate:"required_unless=Driver memory"`
	Demo   bool   `koanf:"demo" yaml:"demo"`

	Feast FeastConfig `koanf:"feast" yaml:"feast"`
}

// New 按配置创建画像来源；配置了 Feast 时在外层包装 FeastSource
func New(ctx context.Context, cfg Config, opts ...FeastOption) (core.ProfileSource, error) {
	var (
		src core.ProfileSource
		err error
	)
	switch cfg.Driver {
	case "", "memory":
		mem := NewMemorySource()
		if cfg.Demo {
			mem.Put(DemoProfiles()...)
		}
		src = mem
	case DialectSQLite, DialectPostgres:
		sqlSrc, oerr := OpenSQLSource(ctx, cfg.Driver, cfg.DSN)
		if oerr != nil {
			return nil, oerr
		}
		if cfg.Demo {
			if err = sqlSrc.Put(ctx, DemoProfiles()...); err != nil {
				_ = sqlSrc.Close()
				return nil, err
			}
		}
		src = sqlSrc
	default:
		return nil, core.NewDomainError(core.ModuleProfile, core.ErrorCodeNotSupported, "profile: unknown driver "+cfg.Driver)
	}

	if cfg.Feast.Host == "" || len(cfg.Feast.Features) == 0 {
		return src, nil
	}
	fetcher, err := NewGrpcFetcher(cfg.Feast.Host, cfg.Feast.Port)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return NewFeastSource(src, fetcher, cfg.Feast, opts...), nil
}
