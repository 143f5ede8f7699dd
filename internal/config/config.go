package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Export  ExportConfig  `mapstructure:"export"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"` // debug, release, test
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI             string `mapstructure:"uri"`
	Database        string `mapstructure:"database"`
	MaxPoolSize     uint64 `mapstructure:"max_pool_size"`
	MinPoolSize     uint64 `mapstructure:"min_pool_size"`
	ConnectTimeout  int    `mapstructure:"connect_timeout"`    // 秒
	MaxConnIdleTime int    `mapstructure:"max_conn_idle_time"` // 秒
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, /path/to/log
}

// StorageConfig 本地文件存储配置
type StorageConfig struct {
	LocalFileDir string `mapstructure:"local_file_dir"` // 上传文件保存目录
	MaxFileSize  int64  `mapstructure:"max_file_size"`  // 单文件大小限制（字节）
}

// ExportConfig 智能体配置导出相关配置
type ExportConfig struct {
	CacheDir  string `mapstructure:"cache_dir"`  // 导出工作目录与压缩包存放目录
	SecretKey string `mapstructure:"secret_key"` // 下载令牌签名密钥
	TokenTTL  int    `mapstructure:"token_ttl"`  // 下载令牌有效期（秒）
}

var globalConfig *Config

// Load 加载配置
// env 对应 config/<env>.yaml，configPath 非空时直接使用该文件
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件名和路径
	if configPath == "" {
		v.SetConfigName(env) // dev.yaml, prod.yaml
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
		v.AddConfigPath("../../config")
	} else {
		v.SetConfigFile(configPath)
	}

	v.SetConfigType("yaml")

	// 读取环境变量（优先级高于配置文件）
	v.SetEnvPrefix("APP") // 环境变量前缀：APP_
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // 支持嵌套配置：APP_MONGO_URI
	// 下载令牌签名密钥另接一个独立环境变量，便于与其它敏感配置分开下发
	_ = v.BindEnv("export.secret_key", "APP_EXPORT_SECRET_KEY", "DOWNLOAD_SECRET_KEY")

	setDefaults(v)

	// 读取配置文件，允许纯环境变量启动
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "agent_platform")
	v.SetDefault("mongo.max_pool_size", 100)
	v.SetDefault("mongo.min_pool_size", 10)
	v.SetDefault("mongo.connect_timeout", 10)
	v.SetDefault("mongo.max_conn_idle_time", 1800)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_path", "stdout")

	v.SetDefault("storage.local_file_dir", "/app/local")
	v.SetDefault("storage.max_file_size", 10<<20) // 10MB

	v.SetDefault("export.cache_dir", "/app/cache")
	v.SetDefault("export.secret_key", "")
	v.SetDefault("export.token_ttl", 3600)
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("配置未初始化，请先调用 Load()")
	}
	return globalConfig
}

// TokenTTLDuration 下载令牌有效期
func (c *ExportConfig) TokenTTLDuration() time.Duration {
	if c.TokenTTL <= 0 {
		return time.Hour
	}
	return time.Duration(c.TokenTTL) * time.Second
}

// ConnectTimeoutDuration MongoDB 连接超时
func (c *MongoConfig) ConnectTimeoutDuration() time.Duration {
	if c.ConnectTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ConnectTimeout) * time.Second
}
