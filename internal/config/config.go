// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，由 Init 填充。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Session SessionConfig `mapstructure:"session"`
	Gate    GateConfig    `mapstructure:"gate"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// JWTConfig 用于签发会话 cookie。
type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	SessionExpireHours int    `mapstructure:"session_expire_hours"`
}

// LLMConfig 存储补全接口相关的配置。APIKey 缺失时不会报错，调用时统一走兜底文案。
type LLMConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ChatConfig 控制聊天面板的提交流程。
type ChatConfig struct {
	// Mode: "simulate" 保持原有的“延迟后必定失败”行为；"live" 真正调用 AI 适配器。
	Mode             string `mapstructure:"mode"`
	SimulatedDelayMs int    `mapstructure:"simulated_delay_ms"`
	MaxMessageLength int    `mapstructure:"max_message_length"`
}

// AuthConfig 控制模拟登录/注册流程。
type AuthConfig struct {
	SimulatedDelayMs int `mapstructure:"simulated_delay_ms"`
	RedirectDelayMs  int `mapstructure:"redirect_delay_ms"`
}

// NotifyConfig 定义通知横幅的展示时长。
type NotifyConfig struct {
	DefaultDurationMs int    `mapstructure:"default_duration_ms"`
	SuccessDurationMs int    `mapstructure:"success_duration_ms"`
	ErrorDurationMs   int    `mapstructure:"error_duration_ms"`
	Position          string `mapstructure:"position"`
}

// SessionConfig 定义会话的空闲回收策略。
type SessionConfig struct {
	CookieName             string `mapstructure:"cookie_name"`
	IdleTTLMinutes         int    `mapstructure:"idle_ttl_minutes"`
	CleanupIntervalMinutes int    `mapstructure:"cleanup_interval_minutes"`
}

// GateConfig 选择请求闸门的实现：local 或 redis。
type GateConfig struct {
	Backend       string `mapstructure:"backend"`
	LeaseSeconds  int    `mapstructure:"lease_seconds"`
	RedisKeySpace string `mapstructure:"redis_key_space"`
}

// RedisConfig 存储 Redis 的配置，仅在 gate.backend=redis 时使用。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig 存储聊天事件流的配置，Brokers 为空时不启用。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

const (
	ChatModeSimulate = "simulate"
	ChatModeLive     = "live"

	GateBackendLocal = "local"
	GateBackendRedis = "redis"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "")

	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.session_expire_hours", 24)

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.timeout_seconds", 0)

	v.SetDefault("chat.mode", ChatModeSimulate)
	v.SetDefault("chat.simulated_delay_ms", 800)
	v.SetDefault("chat.max_message_length", 2000)

	v.SetDefault("auth.simulated_delay_ms", 1200)
	v.SetDefault("auth.redirect_delay_ms", 1800)

	v.SetDefault("notify.default_duration_ms", 5000)
	v.SetDefault("notify.success_duration_ms", 4000)
	v.SetDefault("notify.error_duration_ms", 5000)
	v.SetDefault("notify.position", "top-center")

	v.SetDefault("session.cookie_name", "chat_session")
	v.SetDefault("session.idle_ttl_minutes", 30)
	v.SetDefault("session.cleanup_interval_minutes", 5)

	v.SetDefault("gate.backend", GateBackendLocal)
	v.SetDefault("gate.lease_seconds", 120)
	v.SetDefault("gate.redis_key_space", "chat-panel:gate:")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "chat-events")
}

// Load 读取 YAML 配置文件并叠加环境变量。文件不存在时仅使用默认值。
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CHATPANEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 与前端 VITE_OPENAI_KEY 对应的凭证来源
	if err := v.BindEnv("llm.api_key", "CHATPANEL_LLM_API_KEY", "OPENAI_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("绑定环境变量失败: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Init 加载配置到全局变量 Conf，失败时直接 panic。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}

// Validate 检查枚举类配置项。
func (c Config) Validate() error {
	switch c.Chat.Mode {
	case ChatModeSimulate, ChatModeLive:
	default:
		return fmt.Errorf("chat.mode 取值无效: %q", c.Chat.Mode)
	}
	switch c.Gate.Backend {
	case GateBackendLocal, GateBackendRedis:
	default:
		return fmt.Errorf("gate.backend 取值无效: %q", c.Gate.Backend)
	}
	// 租约为 0 时锁不会过期，进程崩溃后会话将永久 pending
	if c.Gate.Backend == GateBackendRedis && c.Gate.LeaseSeconds <= 0 {
		return fmt.Errorf("gate.lease_seconds 必须为正数")
	}
	if c.Chat.MaxMessageLength <= 0 {
		return fmt.Errorf("chat.max_message_length 必须为正数")
	}
	return nil
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// SimulatedDelay 返回聊天失败模拟的等待时长。
func (c ChatConfig) SimulatedDelay() time.Duration { return ms(c.SimulatedDelayMs) }

// SimulatedDelay 返回模拟服务端处理注册/登录的等待时长。
func (c AuthConfig) SimulatedDelay() time.Duration { return ms(c.SimulatedDelayMs) }

// IdleTTL 返回会话空闲多久后被回收。
func (c SessionConfig) IdleTTL() time.Duration {
	return time.Duration(c.IdleTTLMinutes) * time.Minute
}

// CleanupInterval 返回会话回收任务的执行间隔。
func (c SessionConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalMinutes) * time.Minute
}

// Timeout 返回 HTTP 客户端超时，0 表示沿用 transport 默认行为。
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
