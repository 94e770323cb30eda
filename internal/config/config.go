// Package config 以 viper 分層載入設定：預設值 < 設定檔 < 環境變數 (ACCTREGISTRY_*) < 命令列旗標。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config 為整個程式的設定。
type Config struct {
	Server     ServerConfig  `mapstructure:"server" yaml:"server,omitempty"`
	Storage    StorageConfig `mapstructure:"storage" yaml:"storage,omitempty"`
	Redis      RedisConfig   `mapstructure:"redis" yaml:"redis,omitempty"`
	Events     EventsConfig  `mapstructure:"events" yaml:"events,omitempty"`
	Log        LogConfig     `mapstructure:"log" yaml:"log,omitempty"`
	Registries []string      `mapstructure:"registries" yaml:"registries,omitempty"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr,omitempty"`
}

type StorageConfig struct {
	Type   string `mapstructure:"type" yaml:"type,omitempty"`
	Path   string `mapstructure:"path" yaml:"path,omitempty"`
	Format string `mapstructure:"format" yaml:"format,omitempty"`
	DSN    string `mapstructure:"dsn" yaml:"dsn,omitempty"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	DB       int    `mapstructure:"db" yaml:"db,omitempty"`
}

type EventsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Stream  string `mapstructure:"stream" yaml:"stream,omitempty"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level,omitempty"`
}

// Defaults 回傳所有鍵的預設值。
func Defaults() map[string]any {
	return map[string]any{
		"server.addr":    ":8080",
		"storage.type":   "memory",
		"storage.path":   "data",
		"storage.format": "json",
		"storage.dsn":    "",
		"redis.addr":     "localhost:6379",
		"redis.password": "",
		"redis.db":       0,
		"events.enabled": false,
		"events.stream":  "registry.events",
		"log.level":      "info",
		"registries":     []string{},
	}
}

// configDir 回傳使用者設定目錄下的 acctregistry 目錄。
func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, "acctregistry"), nil
}

// Load 讀取設定。file 非空時只讀該檔（不存在即錯誤）；
// 否則依序搜尋使用者設定目錄、/etc/acctregistry 與目前目錄的 acctregistry.yaml，找不到不算錯誤。
// cmd 可為 nil；非 nil 時其旗標（例如 --addr 綁到 server.addr）優先權最高。
func Load(cmd *cobra.Command, file string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("acctregistry")
		v.SetConfigType("yaml")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath("/etc/acctregistry")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return c, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("acctregistry")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for flag, key := range flagKeys {
			if f := cmd.Flags().Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, err
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("failed to decode config: %w", err)
	}
	return c, nil
}

// flagKeys 對應命令列旗標與設定鍵。
var flagKeys = map[string]string{
	"addr":           "server.addr",
	"storage":        "storage.type",
	"storage-path":   "storage.path",
	"storage-format": "storage.format",
	"dsn":            "storage.dsn",
	"redis-addr":     "redis.addr",
	"events":         "events.enabled",
	"log-level":      "log.level",
	"registry":       "registries",
}

// Write 將設定以 YAML 寫入 path（權限 0600，可能含密碼）。
func Write(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
