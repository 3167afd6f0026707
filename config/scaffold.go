package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sagarc03/switchyard/keybackend"
)

// Scaffold is the subset of Config written by the configure command. Every
// other setting keeps its default.
type Scaffold struct {
	Env      string           `yaml:"env"`
	Server   ScaffoldServer   `yaml:"server"`
	Database ScaffoldDatabase `yaml:"database"`
	Storage  StorageConfig    `yaml:"storage"`
	Auth     ScaffoldAuth     `yaml:"auth"`
	Docs     ScaffoldDocs     `yaml:"docs"`
	Log      LogConfig        `yaml:"log"`
}

type ScaffoldServer struct {
	Port int `yaml:"port"`
}

type ScaffoldDatabase struct {
	Type        string `yaml:"type"`
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type ScaffoldAuth struct {
	KeyID string                `yaml:"key_id"`
	Keys  keybackend.KeysConfig `yaml:"keys"`
}

type ScaffoldDocs struct {
	Enabled bool `yaml:"enabled"`
}

// Save writes s as YAML to path, creating the parent directory. The file
// may hold signing secrets and is written owner-only.
func (s Scaffold) Save(path string) error {
	cleanPath := filepath.Clean(path)

	// Create parent directory if needed
	dir := filepath.Dir(cleanPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
