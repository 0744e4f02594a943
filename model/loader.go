package model

import (
	"context"
	"errors"

	"github.com/rushteam/scoutmatch/core"
)

// Loader 是快照加载器接口。
//
// 实现：
//   - FileLoader：按后端名称读取本地 JSON / YAML 文件
//   - StoreLoader：从 core.Store 读取（Redis / Badger / Memory）
//   - ChainLoader：按顺序尝试多个 Loader
//
// 快照不存在时返回 ErrModelNotFound（IsNotFound 为 true），其他错误视为加载故障。
type Loader interface {
	Name() string
	Load(ctx context.Context, kind string) (*Snapshot, error)
}

// FileLoader 从本地文件加载快照
type FileLoader struct {
	// Paths 后端名称 -> 文件路径
	Paths map[string]string
}

// NewFileLoader 创建文件加载器；路径为空的后端视为未配置
func NewFileLoader(paths map[string]string) *FileLoader {
	return &FileLoader{Paths: paths}
}

func (l *FileLoader) Name() string { return "file" }

func (l *FileLoader) Load(ctx context.Context, kind string) (*Snapshot, error) {
	path := l.Paths[kind]
	if path == "" {
		return nil, ErrModelNotFound
	}
	snap, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if snap.Kind != kind {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInternalError, "model: "+path+" holds a "+snap.Kind+" snapshot")
	}
	return snap, nil
}

// DefaultKeyPrefix 是快照在 Store 中的默认 key 前缀
const DefaultKeyPrefix = "model:"

// StoreLoader 从 core.Store 加载快照，值为 JSON 编码
type StoreLoader struct {
	Store     core.Store
	KeyPrefix string
}

// NewStoreLoader 创建 Store 加载器
func NewStoreLoader(store core.Store, keyPrefix string) *StoreLoader {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &StoreLoader{Store: store, KeyPrefix: keyPrefix}
}

func (l *StoreLoader) Name() string { return "store:" + l.Store.Name() }

// Key 返回后端快照的存储 key
func (l *StoreLoader) Key(kind string) string { return l.KeyPrefix + kind }

func (l *StoreLoader) Load(ctx context.Context, kind string) (*Snapshot, error) {
	data, err := l.Store.Get(ctx, l.Key(kind))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, ErrModelNotFound
		}
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeUnavailable, "model: read store", err)
	}
	snap, err := Unmarshal(data, FormatJSON)
	if err != nil {
		return nil, err
	}
	if snap.Kind != kind {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInternalError, "model: store key holds a "+snap.Kind+" snapshot")
	}
	return snap, nil
}

// Save 将快照写入 Store（永不过期）
func (l *StoreLoader) Save(ctx context.Context, snap *Snapshot) error {
	data, err := Marshal(snap, FormatJSON)
	if err != nil {
		return err
	}
	return l.Store.Set(ctx, l.Key(snap.Kind), data)
}

// ChainLoader 按顺序尝试多个 Loader：返回第一个成功的快照；
// 全部 NOT_FOUND 时返回 ErrModelNotFound；遇到非 NOT_FOUND 错误时记录并继续尝试，
// 最终全部失败时返回这些错误的合并。
type ChainLoader struct {
	Loaders []Loader
}

// NewChainLoader 创建链式加载器，nil Loader 会被忽略
func NewChainLoader(loaders ...Loader) *ChainLoader {
	out := make([]Loader, 0, len(loaders))
	for _, l := range loaders {
		if l != nil {
			out = append(out, l)
		}
	}
	return &ChainLoader{Loaders: out}
}

func (l *ChainLoader) Name() string { return "chain" }

func (l *ChainLoader) Load(ctx context.Context, kind string) (*Snapshot, error) {
	snap, _, err := l.LoadFrom(ctx, kind)
	return snap, err
}

// LoadFrom 与 Load 相同，额外返回命中的 Loader 名称
func (l *ChainLoader) LoadFrom(ctx context.Context, kind string) (*Snapshot, string, error) {
	var errs []error
	for _, loader := range l.Loaders {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		snap, err := loader.Load(ctx, kind)
		if err == nil {
			return snap, loader.Name(), nil
		}
		if !core.IsNotFound(err) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, "", errors.Join(errs...)
	}
	return nil, "", ErrModelNotFound
}

var (
	_ Loader = (*FileLoader)(nil)
	_ Loader = (*StoreLoader)(nil)
	_ Loader = (*ChainLoader)(nil)
)
