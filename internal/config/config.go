// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// GeminiConfig 存储 Gemini 生成接口相关的配置。
// 注意：API Key 不在配置文件中，由管理员写入设置表后按请求读取。
type GeminiConfig struct {
	BaseURL         string  `mapstructure:"base_url"`
	Model           string  `mapstructure:"model"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
	Temperature     float64 `mapstructure:"temperature"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds"`
}

// RateLimitConfig 存储限流器的配置。
// store 为 "memory" 时使用进程内固定窗口计数器（仅适用于单实例部署），
// 为 "redis" 时使用 Redis 共享计数器，支持多实例横向扩展。
type RateLimitConfig struct {
	Points        int    `mapstructure:"points"`
	WindowSeconds int    `mapstructure:"window_seconds"`
	Store         string `mapstructure:"store"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}
}
