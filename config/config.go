package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 数据库默认连接信息
const (
	Username = "root"
	Password = "root"
	Hostname = "127.0.0.1"
	Port     = 3306
	DBName   = "soil_management"
)

// Config 服务的全部配置，启动时读取一次
type Config struct {
	DB   DBConfig   `mapstructure:"db"`
	HTTP HTTPConfig `mapstructure:"http"`
	Log  LogConfig  `mapstructure:"log"`
	Bulk BulkConfig `mapstructure:"bulk"`
	Read ReadConfig `mapstructure:"read"`
}

// DBConfig 存储引擎配置
type DBConfig struct {
	Driver         string        `mapstructure:"driver"` // mysql | sqlite
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Name           string        `mapstructure:"name"`
	Path           string        `mapstructure:"path"` // 仅 sqlite
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// HTTPConfig 服务监听配置
type HTTPConfig struct {
	Addr    string `mapstructure:"addr"`
	GinMode string `mapstructure:"gin_mode"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// BulkConfig 批量插入上限
type BulkConfig struct {
	MaxBatch int `mapstructure:"max_batch"`
	MaxTotal int `mapstructure:"max_total"` // 0 表示不限制
	// StrictQuantities 为 true 时只接受下拉框中的数量
	StrictQuantities bool `mapstructure:"strict_quantities"`
}

// ReadConfig 查询上限
type ReadConfig struct {
	MaxLimit     int `mapstructure:"max_limit"`
	DefaultLimit int `mapstructure:"default_limit"`
}

// Load 按优先级读取配置：环境变量（SOIL_ 前缀）> ./config.yaml 或 ./configs/config.yaml > 默认值。
// 可选的 .env 文件会先被载入环境变量。
func Load() (*Config, error) {
	_ = godotenv.Load() // .env 可选

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SOIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.host", Hostname)
	v.SetDefault("db.port", Port)
	v.SetDefault("db.user", Username)
	v.SetDefault("db.password", Password)
	v.SetDefault("db.name", DBName)
	v.SetDefault("db.path", "./data/soil.db")
	v.SetDefault("db.connect_timeout", "15s")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.gin_mode", "release")

	v.SetDefault("log.level", "info")

	v.SetDefault("bulk.max_batch", 10000)
	v.SetDefault("bulk.max_total", 0)
	v.SetDefault("bulk.strict_quantities", false)

	v.SetDefault("read.max_limit", 500)
	v.SetDefault("read.default_limit", 100)
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "mysql":
		if c.DB.Host == "" || c.DB.Name == "" {
			return fmt.Errorf("db.host and db.name must not be empty for mysql")
		}
	case "sqlite":
		if c.DB.Path == "" {
			return fmt.Errorf("db.path must not be empty for sqlite")
		}
	default:
		return fmt.Errorf("unsupported db.driver %q", c.DB.Driver)
	}
	if c.DB.ConnectTimeout <= 0 {
		return fmt.Errorf("db.connect_timeout must be positive")
	}
	if c.Bulk.MaxBatch <= 0 {
		return fmt.Errorf("bulk.max_batch must be positive")
	}
	if c.Bulk.MaxTotal < 0 {
		return fmt.Errorf("bulk.max_total must not be negative")
	}
	if c.Read.MaxLimit <= 0 {
		return fmt.Errorf("read.max_limit must be positive")
	}
	if c.Read.DefaultLimit < 0 || c.Read.DefaultLimit > c.Read.MaxLimit {
		return fmt.Errorf("read.default_limit must be within [0, %d]", c.Read.MaxLimit)
	}
	return nil
}
