package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"gopkg.in/yaml.v3"
)

// Rate-limited action classes
const (
	ActionOTPSend        = domain.ActionOTPSend
	ActionOTPVerify      = domain.ActionOTPVerify
	ActionRegister       = domain.ActionRegister
	ActionResetPassword  = domain.ActionResetPassword
	ActionChangePassword = domain.ActionChangePassword
	ActionContactChange  = domain.ActionContactChange
)

type AppConfig struct {
	Port              int    `yaml:"port"`
	GinMode           string `yaml:"gin_mode"`
	LogLevel          string `yaml:"log_level"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

type OTPConfig struct {
	TTL                string `yaml:"ttl"`
	MaxAttempts        int    `yaml:"max_attempts"`
	RegistrationWindow string `yaml:"registration_window"`
	DefaultRegion      string `yaml:"default_region"`
}

type ResetConfig struct {
	TokenTTL string `yaml:"token_ttl"`
}

type PasswordConfig struct {
	Algorithm string `yaml:"algorithm"`
	MinLength int    `yaml:"min_length"`
}

type RateLimitConfig struct {
	Window string `yaml:"window"`
	Max    int    `yaml:"max"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type SnowflakeConfig struct {
	Node int64 `yaml:"node"`
}

type ConfigFile struct {
	App        AppConfig                  `yaml:"app"`
	Database   DatabaseConfig             `yaml:"database"`
	Redis      RedisConfig                `yaml:"redis"`
	JWT        JWTConfig                  `yaml:"jwt"`
	OTP        OTPConfig                  `yaml:"otp"`
	Reset      ResetConfig                `yaml:"reset"`
	Password   PasswordConfig             `yaml:"password"`
	RateLimits map[string]RateLimitConfig `yaml:"rate_limits"`
	Twilio     TwilioConfig               `yaml:"twilio"`
	Casbin     CasbinConfig               `yaml:"casbin"`
	Snowflake  SnowflakeConfig            `yaml:"snowflake"`
}

// RateLimit is a parsed per-action budget
type RateLimit struct {
	Window time.Duration
	Max    int
}

type Config struct {
	Port               string
	GinMode            string
	LogLevel           string
	RequestsPerMinute  int
	DSN                string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	JWTSecret          string
	JWTIssuer          string
	OTP_TTL            time.Duration
	OTP_MaxAttempts    int
	RegistrationWindow time.Duration
	DefaultRegion      string
	ResetTokenTTL      time.Duration
	PasswordAlgorithm  string
	PasswordMinLength  int
	RateLimits         map[string]RateLimit
	TwilioSID          string
	TwilioToken        string
	TwilioFrom         string
	CasbinModelPath    string
	SnowflakeNode      int64
}

// defaultRateLimits apply to any action the file leaves out
var defaultRateLimits = map[string]RateLimitConfig{
	ActionOTPSend:        {Window: "1h", Max: 10},
	ActionOTPVerify:      {Window: "15m", Max: 30},
	ActionRegister:       {Window: "1h", Max: 10},
	ActionResetPassword:  {Window: "1h", Max: 10},
	ActionChangePassword: {Window: "15m", Max: 10},
	ActionContactChange:  {Window: "1h", Max: 20},
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads the YAML file at path (CONFIG_PATH or config/config.yml when
// empty), then applies environment overrides for secrets and endpoints.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	if path == "" {
		path = env("CONFIG_PATH", "config/config.yml")
	}
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return FromFile(configFile)
}

// FromFile converts a parsed config file into a validated Config
func FromFile(configFile *ConfigFile) (*Config, error) {
	otpTTL, err := parseDuration(configFile.OTP.TTL, 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	regWindow, err := parseDuration(configFile.OTP.RegistrationWindow, 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid registration window: %w", err)
	}

	resetTTL, err := parseDuration(configFile.Reset.TokenTTL, 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid reset token TTL: %w", err)
	}

	rateLimits := make(map[string]RateLimit, len(defaultRateLimits))
	for action, def := range defaultRateLimits {
		rl := def
		if override, ok := configFile.RateLimits[action]; ok {
			rl = override
		}
		window, err := time.ParseDuration(rl.Window)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit window for %s: %w", action, err)
		}
		if rl.Max <= 0 || window <= 0 {
			return nil, fmt.Errorf("rate limit for %s must have positive window and max", action)
		}
		rateLimits[action] = RateLimit{Window: window, Max: rl.Max}
	}

	maxAttempts := configFile.OTP.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 5
	}
	if maxAttempts < 0 {
		return nil, fmt.Errorf("otp max_attempts must be positive")
	}

	redisDB := configFile.Redis.DB
	if v := os.Getenv("REDIS_DB"); v != "" {
		if redisDB, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
	}

	port := configFile.App.Port
	if port == 0 {
		port = 8080
	}

	minLength := configFile.Password.MinLength
	if minLength == 0 {
		minLength = 8
	}

	cfg := &Config{
		Port:               env("PORT", strconv.Itoa(port)),
		GinMode:            env("GIN_MODE", defaultString(configFile.App.GinMode, "release")),
		LogLevel:           env("LOG_LEVEL", defaultString(configFile.App.LogLevel, "info")),
		RequestsPerMinute:  configFile.App.RequestsPerMinute,
		DSN:                env("DATABASE_DSN", configFile.Database.DSN),
		RedisAddr:          env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword:      env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:            redisDB,
		JWTSecret:          env("JWT_SECRET", configFile.JWT.Secret),
		JWTIssuer:          defaultString(configFile.JWT.Issuer, "jumprope"),
		OTP_TTL:            otpTTL,
		OTP_MaxAttempts:    maxAttempts,
		RegistrationWindow: regWindow,
		DefaultRegion:      defaultString(configFile.OTP.DefaultRegion, "HK"),
		ResetTokenTTL:      resetTTL,
		PasswordAlgorithm:  defaultString(configFile.Password.Algorithm, "bcrypt"),
		PasswordMinLength:  minLength,
		RateLimits:         rateLimits,
		TwilioSID:          env("TWILIO_ACCOUNT_SID", configFile.Twilio.AccountSID),
		TwilioToken:        env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		TwilioFrom:         env("TWILIO_FROM_NUMBER", configFile.Twilio.FromNumber),
		CasbinModelPath:    defaultString(configFile.Casbin.ModelPath, "config/rbac_model.conf"),
		SnowflakeNode:      configFile.Snowflake.Node,
	}

	if cfg.PasswordAlgorithm != "bcrypt" && cfg.PasswordAlgorithm != "argon2id" {
		return nil, fmt.Errorf("unsupported password algorithm %q", cfg.PasswordAlgorithm)
	}

	return cfg, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
