package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Session  SessionConfig  `yaml:"session"`
	Export   ExportConfig   `yaml:"export"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// APIConfig 远端模型/策略执行服务
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// 单次请求超时（秒），0 表示使用默认 30 秒
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// 打开后同一字段上较早发出的请求结果会被丢弃（默认关闭：最后返回者生效）
	StaleGuard bool `yaml:"stale_guard"`
}

// DatabaseConfig 诊断记录落库用；Host 为空时不启用
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Charset  string `yaml:"charset"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // json/console
	Output     string `yaml:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path"`
	TimeFormat string `yaml:"time_format"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// TracingConfig Enabled 为 false 时不安装 SDK，span 全部是 no-op
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	TracerName  string  `yaml:"tracer_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
	// span 导出位置：stdout/stderr 或文件路径
	Output string `yaml:"output"`
}

type SessionConfig struct {
	// 会话空闲多久后回收（分钟）
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
	CookieName         string `yaml:"cookie_name"`
}

// ExportConfig 导出数据归档到 S3；Bucket 为空时不启用
type ExportConfig struct {
	S3Bucket   string `yaml:"s3_bucket"`
	S3Prefix   string `yaml:"s3_prefix"`
	S3Region   string `yaml:"s3_region"`
	S3Endpoint string `yaml:"s3_endpoint"`
}

func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c SessionConfig) IdleTimeout() time.Duration {
	if c.IdleTimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.IdleTimeoutMinutes) * time.Minute
}

func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

func (c ExportConfig) Enabled() bool {
	return c.S3Bucket != ""
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		API: APIConfig{
			BaseURL:        "http://localhost:5000/api",
			TimeoutSeconds: 30,
		},
		Database: DatabaseConfig{Port: 3306, Charset: "utf8mb4"},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stderr",
			TimeFormat: "rfc3339",
		},
		Metrics: MetricsConfig{Enabled: true, Namespace: "dashboard"},
		Tracing: TracingConfig{TracerName: "decision-console", SampleRatio: 1, Output: "stderr"},
		Session: SessionConfig{IdleTimeoutMinutes: 30, CookieName: "dashboard_session"},
		Export:  ExportConfig{S3Prefix: "exports/", S3Region: "us-east-1"},
	}
}

// LoadConfig 读取 yaml 配置；path 为空或文件不存在时使用默认值，最后叠加环境变量
func LoadConfig(path string) (*Config, error) {
	// .env 只是补充，不存在不算错误
	_ = godotenv.Load()

	config := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("解析配置文件失败: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnv(c *Config) error {
	if v := os.Getenv("DASHBOARD_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("DASHBOARD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DASHBOARD_DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DASHBOARD_DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DASHBOARD_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DASHBOARD_DB_NAME"); v != "" {
		c.Database.DBName = v
	}
	if v := os.Getenv("DASHBOARD_S3_BUCKET"); v != "" {
		c.Export.S3Bucket = v
	}
	if v := os.Getenv("DASHBOARD_TRACING_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DASHBOARD_TRACING_ENABLED 不是合法布尔值: %w", err)
		}
		c.Tracing.Enabled = enabled
	}
	if v := os.Getenv("DASHBOARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DASHBOARD_PORT 不是合法端口: %w", err)
		}
		c.Server.Port = port
	}
	return nil
}
