package config

import (
	"os"
	"strconv"
	"strings"
)

// Default limits. The backup limit matches what deployed clients expect.
const (
	DefaultMaxBackupSize       = 62914560 // 60 MB
	DefaultMaxKeySize          = 1048576  // 1 MB
	DefaultMaxDatastoreKeySize = 1048576
	DefaultCompressionLevel    = 3
)

// Config holds all configuration values
type Config struct {
	Server      ServerConfig
	Redis       RedisConfig
	Discord     DiscordConfig
	Limits      LimitsConfig
	Compression CompressionConfig
	Metrics     MetricsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            string
	Env             string
	FQDN            string
	CORSOrigins     []string
	RootRedirectURL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// DiscordConfig holds the OAuth application credentials and the optional
// allow-list of user ids permitted to authenticate.
type DiscordConfig struct {
	ClientID       string
	ClientSecret   string
	AllowedUserIDs []string
}

// RedirectURI returns the OAuth callback URL registered with Discord.
func (c DiscordConfig) RedirectURI(fqdn string) string {
	return fqdn + "/v1/oauth/callback"
}

// Allowed reports whether a user id may authenticate. An empty allow-list
// admits everyone.
func (c DiscordConfig) Allowed(userID string) bool {
	if len(c.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range c.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// LimitsConfig holds payload size limits
type LimitsConfig struct {
	MaxBackupSizeBytes       int
	MaxKeySizeBytes          int
	MaxDatastoreKeySizeBytes int
	DatastoreEnabled         bool
}

// CompressionConfig holds blob compression settings
type CompressionConfig struct {
	Enabled bool
	Level   int
}

// MetricsConfig holds metrics exposition settings
type MetricsConfig struct {
	Enabled bool
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("SERVER_ENV", "development"),
			FQDN:            getEnv("SERVER_FQDN", ""),
			CORSOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS"),
			RootRedirectURL: getEnv("API_ROOT_REDIRECT_URL", ""),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Discord: DiscordConfig{
			ClientID:       getEnv("DISCORD_CLIENT_ID", ""),
			ClientSecret:   getEnv("DISCORD_CLIENT_SECRET", ""),
			AllowedUserIDs: getEnvAsList("DISCORD_ALLOWED_USER_IDS"),
		},
		Limits: LimitsConfig{
			MaxBackupSizeBytes:       getEnvAsInt("MAX_BACKUP_SIZE_BYTES", DefaultMaxBackupSize),
			MaxKeySizeBytes:          getEnvAsInt("MAX_KEY_SIZE_BYTES", DefaultMaxKeySize),
			MaxDatastoreKeySizeBytes: getEnvAsInt("MAX_DATASTORE_KEY_SIZE_BYTES", DefaultMaxDatastoreKeySize),
			DatastoreEnabled:         getEnvAsBool("DATASTORE_ENABLED", true),
		},
		Compression: CompressionConfig{
			Enabled: getEnvAsBool("COMPRESSION_ENABLED", true),
			Level:   getEnvAsInt("COMPRESSION_LEVEL", DefaultCompressionLevel),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
