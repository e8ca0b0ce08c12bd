package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL           string `yaml:"ttl"`
		LookupTimeout string `yaml:"lookup_timeout"`
		Timezone      string `yaml:"timezone"`
	} `yaml:"quiz"`
	OTP struct {
		Validity    string `yaml:"validity"`
		MaxAttempts *int   `yaml:"max_attempts"`
	} `yaml:"otp"`
	SMS      SMS `yaml:"sms"`
	Dispatch struct {
		Workers    int  `yaml:"workers"`
		MaxRetries int  `yaml:"max_retries"`
		Embedded   bool `yaml:"embedded"`
	} `yaml:"dispatch"`
}

// SMS holds gateway credentials; they are usually supplied through the environment.
type SMS struct {
	AccountSID  string `yaml:"account_sid"`
	AuthToken   string `yaml:"auth_token"`
	FromNumber  string `yaml:"from_number"`
	CountryCode string `yaml:"country_code"`
}

// Complete reports whether every credential needed to send is present.
func (s SMS) Complete() bool {
	return s.AccountSID != "" && s.AuthToken != "" && s.FromNumber != ""
}

// Load reads YAML config from path and applies environment overrides.
// A missing file yields defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	override(&cfg.SMS.AccountSID, "TWILIO_ACCOUNT_SID")
	override(&cfg.SMS.AuthToken, "TWILIO_AUTH_TOKEN")
	override(&cfg.SMS.FromNumber, "TWILIO_PHONE_NUMBER")
	override(&cfg.Postgres.URL, "DATABASE_URL")
	override(&cfg.Redis.Addr, "REDIS_ADDR")
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Duration parses a duration string or returns the fallback if empty.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Location loads the named zone, falling back to the process's local zone.
func Location(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.Local
}

// MaxAttempts returns the configured verification attempt budget; 5 when unset.
func (c Config) MaxAttempts() int {
	if c.OTP.MaxAttempts == nil {
		return 5
	}
	return *c.OTP.MaxAttempts
}
