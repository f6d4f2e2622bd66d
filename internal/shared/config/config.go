package config

import (
	"os"
	"path/filepath"
)

const defaultConfigRelPath = "configs/conf.yml"

// Load 读取配置到 out（必须是指针）。
// 约定：
// 1) 传入 cfgName（相对/绝对路径）则优先使用；
// 2) 否则从当前目录开始向上查找 `configs/conf.yml`。
func Load(cfgName string, out any, opts ...Option) error {
	path, err := Resolve(cfgName)
	if err != nil {
		return err
	}
	return load(path, out, opts...)
}

// Resolve 返回最终使用的配置文件绝对路径。
func Resolve(cfgName string) (string, error) {
	curDir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if cfgName != "" {
		if filepath.IsAbs(cfgName) {
			return cfgName, nil
		}
		return filepath.Join(curDir, cfgName), nil
	}
	return findConfigUpward(curDir)
}

func findConfigUpward(startDir string) (string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, defaultConfigRelPath)
		if fileExist(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &NotFoundError{Path: defaultConfigRelPath, From: startDir}
		}
		dir = parent
	}
}

type NotFoundError struct {
	Path string
	From string
}

func (e *NotFoundError) Error() string {
	return "config file not exist, searched " + e.Path + " from: " + e.From
}
