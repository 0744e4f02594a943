// Package store 提供 core.Store 的实现：内存、Redis、Badger。
//
// 注意：此包只包含实现，接口定义在 core 包。
//
// 示例：
//
//	var s core.Store = store.NewMemoryStore()
//	s, err := store.New(ctx, store.Config{Driver: "badger", BadgerDir: "./data"})
package store

import (
	"context"

	"github.com/rushteam/scoutmatch/core"
)

// ErrNotFound 是 core.ErrStoreNotFound 的别名，便于包内使用
var ErrNotFound = core.ErrStoreNotFound

// Config 是 Store 的配置
type Config struct {
	Driver        string `koanf:"driver" yaml:"driver" validate:"oneof=memory redis badger"`
	RedisAddr     string `koanf:"redis_addr" yaml:"redis_addr" validate:"required_if=Driver redis"`
	RedisPassword string `koanf:"redis_password" yaml:"redis_password"`
	RedisDB       int    `koanf:"redis_db" yaml:"redis_db" validate:"gte=0"`
	RedisPrefix   string `koanf:"redis_prefix" yaml:"redis_prefix"`
	BadgerDir     string `koanf:"badger_dir" yaml:"badger_dir" validate:"required_if=Driver badger"`
}

// New 按 driver 创建 Store
func New(ctx context.Context, cfg Config) (core.Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB, Prefix: cfg.RedisPrefix})
	case "badger":
		return OpenBadgerStore(cfg.BadgerDir)
	}
	return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported, "store: unknown driver "+cfg.Driver)
}

func ttlSeconds(ttl []int) int {
	if len(ttl) > 0 && ttl[0] > 0 {
		return ttl[0]
	}
	return 0
}
