package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Settings is the resolved application configuration. Flags override
// AISHCALC_* environment variables, which override aishcalc.yaml.
type Settings struct {
	Store  StoreSettings
	Redis  RedisSettings
	Log    LogSettings
	Server ServerSettings
	Rules  RulesSettings
}

// StoreSettings selects where the tracker snapshot is persisted
type StoreSettings struct {
	Backend string
	Path    string
}

// RedisSettings configures the redis backend
type RedisSettings struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// LogSettings configures the zap logger
type LogSettings struct {
	Level string
}

// ServerSettings configures the HTTP API
type ServerSettings struct {
	Addr string
}

// RulesSettings points at an optional benefit rules file
type RulesSettings struct {
	File string
}

// SetDefaults registers the built-in defaults on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.path", "aishcalc-data.json")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "aishcalc:snapshot")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("rules.file", "")
}

// LoadSettings resolves the settings. configFile may be empty, in which case
// aishcalc.yaml is looked up in the working directory and is optional.
// flags, when non-nil, are bound by key so "--store.backend" overrides the
// environment.
func LoadSettings(configFile string, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("aishcalc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("AISHCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	settings := &Settings{
		Store: StoreSettings{
			Backend: strings.ToLower(v.GetString("store.backend")),
			Path:    v.GetString("store.path"),
		},
		Redis: RedisSettings{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Key:      v.GetString("redis.key"),
		},
		Log: LogSettings{
			Level: v.GetString("log.level"),
		},
		Server: ServerSettings{
			Addr: v.GetString("server.addr"),
		},
		Rules: RulesSettings{
			File: v.GetString("rules.file"),
		},
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks backend-specific requirements
func (s *Settings) Validate() error {
	switch s.Store.Backend {
	case BackendFile, BackendSQLite:
		if s.Store.Path == "" {
			return fmt.Errorf("store.path is required for the %s backend", s.Store.Backend)
		}
	case BackendRedis:
		if s.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis backend")
		}
		if s.Redis.Key == "" {
			return fmt.Errorf("redis.key is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q (want file, sqlite, redis or memory)", s.Store.Backend)
	}

	switch strings.ToLower(s.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", s.Log.Level)
	}
	return nil
}

// LoadRules returns the rules file named by the settings, or the built-in
// rules when none is configured.
func (s *Settings) LoadRules() (domain.BenefitRules, error) {
	if s.Rules.File == "" {
		return domain.DefaultBenefitRules(), nil
	}
	rules, err := NewInputParser().LoadRulesFile(s.Rules.File)
	if err != nil {
		return domain.BenefitRules{}, err
	}
	return *rules, nil
}
