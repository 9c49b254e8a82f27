// Package config 提供 feedmon 的配置加载功能。
// 配置来源优先级：环境变量 > YAML 配置文件 > 默认值。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingFeedURL 表示未配置订阅源地址，启动时致命。
var ErrMissingFeedURL = errors.New("未配置订阅源地址（feed.url 或环境变量 FEED_URL）")

// Config 是 feedmon 的顶层配置结构。
type Config struct {
	Feed    FeedConfig    `yaml:"feed"`
	Discord DiscordConfig `yaml:"discord"`
	DataDir string        `yaml:"data_dir"`
	Log     LogConfig     `yaml:"log"`
}

// FeedConfig 订阅源配置。
type FeedConfig struct {
	// URL 订阅源地址（RSS/Atom）。必填。
	URL string `yaml:"url"`
	// CheckInterval 轮询间隔（秒）。
	CheckInterval int `yaml:"check_interval"`
}

// DiscordConfig Discord Webhook 配置。
type DiscordConfig struct {
	// WebhookURL 通知投递地址。为空时每次投递都会失败，但不影响轮询。
	WebhookURL string `yaml:"webhook_url"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 配置文件不存在时不报错（允许纯环境变量运行）。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
		}
	} else {
		// 展开环境变量，如 ${DISCORD_WEBHOOK_URL}
		expanded := os.Expand(string(data), func(key string) string {
			return os.Getenv(key)
		})
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
		}
	}

	applyEnv(cfg)
	setDefaults(cfg)
	return cfg, nil
}

// Validate 检查必填项。缺少订阅源地址视为致命错误。
func (c *Config) Validate() error {
	if c.Feed.URL == "" {
		return ErrMissingFeedURL
	}
	return nil
}

// Interval 返回轮询间隔。
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Feed.CheckInterval) * time.Second
}

// applyEnv 用环境变量覆盖配置文件的值。
func applyEnv(cfg *Config) {
	if v := os.Getenv("FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Discord.WebhookURL = v
	}
	if v := os.Getenv("CHECK_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Feed.CheckInterval = n
		}
	}
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	if cfg.Feed.CheckInterval <= 0 {
		cfg.Feed.CheckInterval = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.DataDir == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.DataDir = home + "/.feedmon"
		} else {
			cfg.DataDir = "./.feedmon-data"
		}
	} else if strings.HasPrefix(cfg.DataDir, "~/") {
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.DataDir = home + cfg.DataDir[1:]
		}
	}
}
