package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int64  `mapstructure:"token_ttl_hours"`
}

// VoiceConfig drives the dialogue connection and its resilience loop.
type VoiceConfig struct {
	ProviderURL        string `mapstructure:"provider_url"`
	ProviderAPIKey     string `mapstructure:"provider_api_key"`
	AgentID            string `mapstructure:"agent_id"`
	QueueCapacity      int    `mapstructure:"queue_capacity"`
	CheckIntervalMS    int64  `mapstructure:"check_interval_ms"`
	ProbeTimeoutMS     int64  `mapstructure:"probe_timeout_ms"`
	MaxProbeRetries    int    `mapstructure:"max_probe_retries"`
	MaxReconnects      int    `mapstructure:"max_reconnects"`
	ReconnectBaseMS    int64  `mapstructure:"reconnect_base_ms"`
	ReconnectCapMS     int64  `mapstructure:"reconnect_cap_ms"`
	NotifyThrottleSecs int64  `mapstructure:"notify_throttle_secs"`
}

func (v VoiceConfig) CheckInterval() time.Duration {
	return time.Duration(v.CheckIntervalMS) * time.Millisecond
}

func (v VoiceConfig) ProbeTimeout() time.Duration {
	return time.Duration(v.ProbeTimeoutMS) * time.Millisecond
}

type AssessorConfig struct {
	Provider     string  `mapstructure:"provider"` // "gemini", "openai" or "http"
	GeminiAPIKey string  `mapstructure:"gemini_api_key"`
	GeminiModel  string  `mapstructure:"gemini_model"`
	OpenAIAPIKey string  `mapstructure:"open_ai_api_key"`
	BackendURL   string  `mapstructure:"backend_url"`
	TimeoutSecs  int64   `mapstructure:"timeout_secs"`
	Temperature  float32 `mapstructure:"temperature"`
}

type FacilityConfig struct {
	BaseURL         string  `mapstructure:"base_url"`
	APIKey          string  `mapstructure:"api_key"`
	DefaultRadiusKM float64 `mapstructure:"default_radius_km"`
	CacheTTLMins    int64   `mapstructure:"cache_ttl_mins"`
}

type Settings struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Voice    VoiceConfig    `mapstructure:"voice"`
	Assessor AssessorConfig `mapstructure:"assessor"`
	Facility FacilityConfig `mapstructure:"facility"`
	Env      string         `mapstructure:"env"`
	Debug    bool           `mapstructure:"debug" default:"false"`
}

func Load() (*Settings, error) {
	// Load settings from a configuration file or environment variables
	viper.SetConfigName("config_" + genEnv())
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &settings, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("voice.queue_capacity", 10)
	viper.SetDefault("voice.check_interval_ms", 30000)
	viper.SetDefault("voice.probe_timeout_ms", 5000)
	viper.SetDefault("voice.max_probe_retries", 3)
	viper.SetDefault("voice.max_reconnects", 5)
	viper.SetDefault("voice.reconnect_base_ms", 1000)
	viper.SetDefault("voice.reconnect_cap_ms", 30000)
	viper.SetDefault("voice.notify_throttle_secs", 5)
	viper.SetDefault("assessor.provider", "gemini")
	viper.SetDefault("assessor.gemini_model", "gemini-2.5-flash-lite")
	viper.SetDefault("assessor.timeout_secs", 30)
	viper.SetDefault("facility.default_radius_km", 5)
	viper.SetDefault("facility.cache_ttl_mins", 10)
}

func genEnv() string {
	env := viper.GetString("ENV")
	if env == "" {
		return "dev"
	}
	return env
}
