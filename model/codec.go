package model

import (
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/scoutmatch/core"
)

// Format 是快照的序列化格式
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf 根据文件扩展名推断格式；.yaml / .yml 为 YAML，其他一律 JSON
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Marshal 序列化快照
func Marshal(snap *Snapshot, format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(snap)
	}
	return json.MarshalIndent(snap, "", "  ")
}

// Unmarshal 反序列化并校验快照；内容损坏时返回 INTERNAL_ERROR
func Unmarshal(data []byte, format Format) (*Snapshot, error) {
	var snap Snapshot
	var err error
	if format == FormatYAML {
		err = yaml.Unmarshal(data, &snap)
	} else {
		err = json.Unmarshal(data, &snap)
	}
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeInternalError, "model: decode snapshot", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ReadFile 从文件读取快照；文件不存在时返回 ErrModelNotFound
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrModelNotFound
		}
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeUnavailable, "model: read "+path, err)
	}
	return Unmarshal(data, FormatOf(path))
}

// WriteFile 将快照写入文件（先写临时文件再 rename，避免读到半截内容）
func WriteFile(path string, snap *Snapshot) error {
	data, err := Marshal(snap, FormatOf(path))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
