package conf

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config application configuration structure
type Config struct {
	Env  string
	Port string

	// Database configuration
	Database DatabaseConfig

	// Pinning service configuration
	Pinning PinningConfig

	// HTTP surface configuration
	Cors      CorsConfig
	RateLimit RateLimitConfig

	// Redis configuration
	Redis RedisConfig

	// Pin mirror configuration
	Mirror MirrorConfig

	// Client-side configuration (anchor CLI)
	Client ClientConfig
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	Type         string // mysql, pebble
	Dsn          string // MySQL DSN
	MaxOpenConns int
	MaxIdleConns int
	DataDir      string // PebbleDB data directory
}

// PinningConfig external pinning service configuration
type PinningConfig struct {
	Endpoint       string // pin endpoint, e.g. https://api.pinata.cloud/pinning/pinFileToIPFS
	ApiKey         string
	SecretKey      string
	TimeoutSeconds int   // per-forward timeout
	MaxRetries     int   // extra attempts after the first
	BackoffSeconds int   // linear backoff base
	MaxFileSizeMB  int64 // upload ceiling
}

// CorsConfig allowed origins configuration
type CorsConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig fixed-window rate limit configuration
type RateLimitConfig struct {
	WindowSeconds int
	MaxRequests   int
}

// RedisConfig redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	CacheTTL int // seconds
}

// MirrorConfig pin mirror storage configuration
type MirrorConfig struct {
	Enabled bool
	Type    string // local, s3, oss
	Local   LocalStorageConfig
	S3      S3StorageConfig
	OSS     OSSStorageConfig
}

// LocalStorageConfig local storage configuration
type LocalStorageConfig struct {
	BasePath string
}

// S3StorageConfig AWS S3 storage configuration
type S3StorageConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Endpoint  string // optional custom endpoint
}

// OSSStorageConfig aliyun OSS storage configuration
type OSSStorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// ClientConfig anchor CLI configuration
type ClientConfig struct {
	ServerURL            string // gateway base URL
	WalletRpcURL         string // wallet provider JSON-RPC endpoint
	GatewayURL           string // public IPFS gateway for view links
	UploadTimeoutSeconds int
}

// Cfg global configuration instance
var Cfg *Config

// InitConfig initialize configuration from the given yaml file.
// Environment variables override file values (DOCANCHOR_PINNING_API_KEY,
// DOCANCHOR_DATABASE_DSN, ...). A missing file is tolerated so the
// process can run on environment variables alone.
func InitConfig(configFile string) error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("DOCANCHOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	Cfg = &Config{
		Env:  viper.GetString("env"),
		Port: viper.GetString("port"),

		Database: DatabaseConfig{
			Type:         viper.GetString("database.type"),
			Dsn:          viper.GetString("database.dsn"),
			MaxOpenConns: viper.GetInt("database.max_open_conns"),
			MaxIdleConns: viper.GetInt("database.max_idle_conns"),
			DataDir:      viper.GetString("database.data_dir"),
		},

		Pinning: PinningConfig{
			Endpoint:       viper.GetString("pinning.endpoint"),
			ApiKey:         viper.GetString("pinning.api_key"),
			SecretKey:      viper.GetString("pinning.secret_key"),
			TimeoutSeconds: viper.GetInt("pinning.timeout_seconds"),
			MaxRetries:     viper.GetInt("pinning.max_retries"),
			BackoffSeconds: viper.GetInt("pinning.backoff_seconds"),
			MaxFileSizeMB:  viper.GetInt64("pinning.max_file_size_mb"),
		},

		Cors: CorsConfig{
			AllowedOrigins: viper.GetStringSlice("cors.allowed_origins"),
		},

		RateLimit: RateLimitConfig{
			WindowSeconds: viper.GetInt("rate_limit.window_seconds"),
			MaxRequests:   viper.GetInt("rate_limit.max_requests"),
		},

		Redis: RedisConfig{
			Enabled:  viper.GetBool("redis.enabled"),
			Host:     viper.GetString("redis.host"),
			Port:     viper.GetInt("redis.port"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			CacheTTL: viper.GetInt("redis.cache_ttl"),
		},

		Mirror: MirrorConfig{
			Enabled: viper.GetBool("mirror.enabled"),
			Type:    viper.GetString("mirror.type"),
			Local: LocalStorageConfig{
				BasePath: viper.GetString("mirror.local.base_path"),
			},
			S3: S3StorageConfig{
				Region:    viper.GetString("mirror.s3.region"),
				AccessKey: viper.GetString("mirror.s3.access_key"),
				SecretKey: viper.GetString("mirror.s3.secret_key"),
				Bucket:    viper.GetString("mirror.s3.bucket"),
				Endpoint:  viper.GetString("mirror.s3.endpoint"),
			},
			OSS: OSSStorageConfig{
				Endpoint:  viper.GetString("mirror.oss.endpoint"),
				AccessKey: viper.GetString("mirror.oss.access_key"),
				SecretKey: viper.GetString("mirror.oss.secret_key"),
				Bucket:    viper.GetString("mirror.oss.bucket"),
			},
		},

		Client: ClientConfig{
			ServerURL:            viper.GetString("client.server_url"),
			WalletRpcURL:         viper.GetString("client.wallet_rpc_url"),
			GatewayURL:           viper.GetString("client.gateway_url"),
			UploadTimeoutSeconds: viper.GetInt("client.upload_timeout_seconds"),
		},
	}

	applyDefaults(Cfg)

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.Port == "" {
		cfg.Port = "5001"
	}
	if cfg.Database.Type == "" {
		cfg.Database.Type = "mysql"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 100
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Database.DataDir == "" {
		cfg.Database.DataDir = "./data/db"
	}
	if cfg.Pinning.Endpoint == "" {
		cfg.Pinning.Endpoint = "https://api.pinata.cloud/pinning/pinFileToIPFS"
	}
	if cfg.Pinning.TimeoutSeconds == 0 {
		cfg.Pinning.TimeoutSeconds = 30
	}
	if cfg.Pinning.MaxRetries == 0 {
		cfg.Pinning.MaxRetries = 2
	}
	if cfg.Pinning.BackoffSeconds == 0 {
		cfg.Pinning.BackoffSeconds = 1
	}
	if cfg.Pinning.MaxFileSizeMB == 0 {
		cfg.Pinning.MaxFileSizeMB = 100
	}
	if len(cfg.Cors.AllowedOrigins) == 0 {
		cfg.Cors.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 15 * 60
	}
	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = 100
	}
	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = 300
	}
	if cfg.Mirror.Type == "" {
		cfg.Mirror.Type = "local"
	}
	if cfg.Mirror.Local.BasePath == "" {
		cfg.Mirror.Local.BasePath = "./data/mirror"
	}
	if cfg.Client.ServerURL == "" {
		cfg.Client.ServerURL = "http://localhost:5001"
	}
	if cfg.Client.GatewayURL == "" {
		cfg.Client.GatewayURL = "https://gateway.pinata.cloud/ipfs"
	}
	if cfg.Client.UploadTimeoutSeconds == 0 {
		cfg.Client.UploadTimeoutSeconds = 120
	}
}

// MaxFileSizeBytes upload ceiling in bytes
func (p PinningConfig) MaxFileSizeBytes() int64 {
	return p.MaxFileSizeMB * 1024 * 1024
}

// HasCredentials reports whether pinning service credentials are configured
func (p PinningConfig) HasCredentials() bool {
	return p.ApiKey != "" && p.SecretKey != ""
}

// Validate checks for fatal configuration errors. A missing MySQL DSN
// cannot be defaulted; missing pinning credentials are reported per
// request by the gateway rather than here.
func (c *Config) Validate() error {
	if c.Database.Type == "mysql" && c.Database.Dsn == "" {
		return fmt.Errorf("database.dsn is required when database.type is mysql")
	}
	if c.Database.Type != "mysql" && c.Database.Type != "pebble" {
		return fmt.Errorf("unsupported database.type %q", c.Database.Type)
	}
	return nil
}
