package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/credauth/pkg/cryptox"
	"github.com/aussiebroadwan/credauth/pkg/jwtx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	HashArgon2id = "argon2id"
	HashBcrypt   = "bcrypt"
)

type Config struct {
	Port int `koanf:"port"` // HTTP server port (default: 8080)

	DatabaseDriver string `koanf:"database_driver"` // sqlite or postgres (default: sqlite)
	DatabaseURL    string `koanf:"database_url"`    // sqlite path/DSN or postgres URL (default: credauth.db)

	SigningKey              string `koanf:"signing_key"`                // HS256 secret, at least 16 bytes
	AllowInsecureSigningKey bool   `koanf:"allow_insecure_signing_key"` // fall back to a built-in key when SigningKey is empty
	Issuer                  string `koanf:"issuer"`                     // iss claim (default: credauth)

	// TokenTTL is fixed at 24h and not read from any source.
	TokenTTL time.Duration `koanf:"-"`

	HashAlgorithm     string `koanf:"hash_algorithm"` // argon2id or bcrypt (default: argon2id)
	BcryptCost        int    `koanf:"bcrypt_cost"`
	Argon2Memory      uint32 `koanf:"argon2_memory"` // KiB
	Argon2Iterations  uint32 `koanf:"argon2_iterations"`
	Argon2Parallelism uint8  `koanf:"argon2_parallelism"`
	PepperFile        string `koanf:"pepper_file"` // Optional: argon2id pepper, created on first run
	MinSecretLength   int    `koanf:"min_secret_length"`

	CORSAllowedOrigins string `koanf:"cors_allowed_origins"` // comma separated, "*" for any (default: *)

	Env                 string        `koanf:"env"`                   // dev, staging, prod (default: dev)
	LogLevel            string        `koanf:"log_level"`             // debug, info, warn, error (default: info)
	LogFormat           string        `koanf:"log_format"`            // json, text (default: json)
	ShutdownGracePeriod time.Duration `koanf:"shutdown_grace_period"` // default: 10s
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Port:               8080,
		DatabaseDriver:     DriverSQLite,
		DatabaseURL:        "credauth.db",
		Issuer:             "credauth",
		TokenTTL:           jwtx.DefaultTTL,
		HashAlgorithm:      HashArgon2id,
		BcryptCost:         cryptox.DefaultBcryptCost,
		Argon2Memory:       cryptox.DefaultArgon2Params.Memory,
		Argon2Iterations:   cryptox.DefaultArgon2Params.Iterations,
		Argon2Parallelism:  cryptox.DefaultArgon2Params.Parallelism,
		MinSecretLength:    6,
		CORSAllowedOrigins: "*",
		Env:                "dev",
		LogLevel:           "info",
		LogFormat:          "json",

		ShutdownGracePeriod: 10 * time.Second,
	}
}

// Load builds the configuration from, in increasing precedence, Default(),
// the YAML file at path (skipped when empty), the environment and any flag
// in fs the user actually set. A .env file in the working directory is
// merged into the environment first if one exists.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		if err := k.Unmarshal("", &cfg); err != nil {
			return cfg, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if fs != nil {
		k := koanf.New(".")
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return cfg, fmt.Errorf("failed to load flags: %w", err)
		}
		if err := k.Unmarshal("", &cfg); err != nil {
			return cfg, fmt.Errorf("failed to decode flags: %w", err)
		}
	}

	cfg.TokenTTL = jwtx.DefaultTTL
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)

	cfg.DatabaseDriver = getEnvOrDefault("AUTH_DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseURL = getEnvOrDefault("AUTH_DATABASE_URL", cfg.DatabaseURL)

	cfg.SigningKey = getEnvOrDefault("AUTH_SIGNING_KEY", cfg.SigningKey)
	cfg.AllowInsecureSigningKey = getEnvBoolOrDefault("AUTH_ALLOW_INSECURE_SIGNING_KEY", cfg.AllowInsecureSigningKey)
	cfg.Issuer = getEnvOrDefault("AUTH_ISSUER", cfg.Issuer)

	cfg.HashAlgorithm = getEnvOrDefault("AUTH_HASH_ALGORITHM", cfg.HashAlgorithm)
	cfg.BcryptCost = getEnvIntOrDefault("AUTH_BCRYPT_COST", cfg.BcryptCost)
	cfg.Argon2Memory = uint32(getEnvUintOrDefault("AUTH_ARGON2_MEMORY", uint64(cfg.Argon2Memory), 32))
	cfg.Argon2Iterations = uint32(getEnvUintOrDefault("AUTH_ARGON2_ITERATIONS", uint64(cfg.Argon2Iterations), 32))
	cfg.Argon2Parallelism = uint8(getEnvUintOrDefault("AUTH_ARGON2_PARALLELISM", uint64(cfg.Argon2Parallelism), 8))
	cfg.PepperFile = getEnvOrDefault("AUTH_PEPPER_FILE", cfg.PepperFile)
	cfg.MinSecretLength = getEnvIntOrDefault("AUTH_MIN_SECRET_LENGTH", cfg.MinSecretLength)

	cfg.CORSAllowedOrigins = getEnvOrDefault("AUTH_CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)

	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DatabaseDriver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
		validation.Field(&c.DatabaseURL, validation.Required),
		validation.Field(&c.SigningKey, validation.By(c.checkSigningKey)),
		validation.Field(&c.Issuer, validation.Required),
		validation.Field(&c.HashAlgorithm, validation.Required, validation.In(HashArgon2id, HashBcrypt)),
		validation.Field(&c.Argon2Memory, validation.Min(uint32(8)*uint32(c.Argon2Parallelism))),
		validation.Field(&c.Argon2Iterations, validation.Required),
		validation.Field(&c.Argon2Parallelism, validation.Required),
		validation.Field(&c.MinSecretLength, validation.Required, validation.Min(1)),
		validation.Field(&c.LogFormat, validation.In("json", "text")),
		validation.Field(&c.ShutdownGracePeriod, validation.Min(time.Duration(0))),
	)
}

var errSigningKeyRequired = errors.New("is required unless allow_insecure_signing_key is set")

func (c *Config) checkSigningKey(value any) error {
	key, _ := value.(string)
	switch {
	case key == "" && !c.AllowInsecureSigningKey:
		return errSigningKeyRequired
	case key != "" && len(key) < jwtx.MinKeyLength:
		return fmt.Errorf("must be at least %d bytes", jwtx.MinKeyLength)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

// getEnvUintOrDefault keeps defaultValue for anything that is not an
// unsigned integer fitting in bitSize bits, so the narrowing conversion at
// the call site cannot wrap.
func getEnvUintOrDefault(key string, defaultValue uint64, bitSize int) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if u, err := strconv.ParseUint(value, 10, bitSize); err == nil {
		return u
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
