package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/sethvargo/go-envconfig"
	"sigs.k8s.io/yaml"
)

const (
	StorageNameLocal = "localfs"
	StorageNameS3    = "s3"
	StorageNameSFTP  = "sftp"

	RepoCompressorGzip     = "gzip"
	RepoCompressorZstd     = "zstd"
	RepoEncryptorAes256Gcm = "aes-256-gcm"
)

var (
	once   sync.Once
	config *Config
)

type Config struct {
	Main    MainConfig    `json:"main"`
	Log     LogConfig     `json:"log"`
	Loader  LoaderConfig  `json:"loader"`
	Scan    ScanConfig    `json:"scan"`
	Data    DataConfig    `json:"data"`
	Paper   PaperConfig   `json:"paper"`
	Storage StorageConfig `json:"storage"`
}

type MainConfig struct {
	// Directory is the working directory: snapshots are kept under it,
	// and it is the default base for localfs storage.
	Directory  string `json:"directory" env:"QUANTD_DIRECTORY"`
	ListenPort int    `json:"listen_port" env:"QUANTD_LISTEN_PORT, default=7070"`
	AuthToken  string `json:"auth_token" env:"QUANTD_AUTH_TOKEN"`
}

type LogConfig struct {
	Level     string `json:"level" env:"QUANTD_LOG_LEVEL, default=info"`
	Format    string `json:"format" env:"QUANTD_LOG_FORMAT, default=json"`
	AddSource bool   `json:"add_source" env:"QUANTD_LOG_ADD_SOURCE"`
}

type LoaderConfig struct {
	// Watch re-runs the bootstrap loader when the dashboard script changes.
	Watch bool `json:"watch" env:"QUANTD_LOADER_WATCH"`
}

type ScanConfig struct {
	// POSIX 5-field cron expression, no seconds.
	Cron      string              `json:"cron" env:"QUANTD_SCAN_CRON, default=0 * * * *"`
	Sector    string              `json:"sector" env:"QUANTD_SCAN_SECTOR, default=all"`
	TopN      int                 `json:"top_n" env:"QUANTD_SCAN_TOP_N, default=3"`
	Weights   WeightsConfig       `json:"weights"`
	Retention ScanRetentionConfig `json:"retention"`
}

// WeightsConfig holds the composite-score factor weights (must sum to 1.0).
type WeightsConfig struct {
	Sentiment float64 `json:"sentiment" env:"QUANTD_WEIGHT_SENTIMENT, default=0.30"`
	Catalyst  float64 `json:"catalyst" env:"QUANTD_WEIGHT_CATALYST, default=0.25"`
	Insider   float64 `json:"insider" env:"QUANTD_WEIGHT_INSIDER, default=0.15"`
	Options   float64 `json:"options" env:"QUANTD_WEIGHT_OPTIONS, default=0.15"`
	Technical float64 `json:"technical" env:"QUANTD_WEIGHT_TECHNICAL, default=0.15"`
}

type ScanRetentionConfig struct {
	Enable   bool `json:"enable" env:"QUANTD_SCAN_RETENTION_ENABLE"`
	KeepLast int  `json:"keep_last" env:"QUANTD_SCAN_RETENTION_KEEP_LAST, default=30"`
}

type DataConfig struct {
	BaseURL      string  `json:"base_url" env:"QUANTD_DATA_BASE_URL, default=https://stooq.com"`
	TimeoutSec   int     `json:"timeout_sec" env:"QUANTD_DATA_TIMEOUT_SEC, default=10"`
	RateLimitRPS float64 `json:"rate_limit_rps" env:"QUANTD_DATA_RATE_LIMIT_RPS, default=2"`
	RateBurst    int     `json:"rate_burst" env:"QUANTD_DATA_RATE_BURST, default=2"`
}

type PaperConfig struct {
	// ConnString is a pgx connection string; paper trading is disabled when empty.
	ConnString  string  `json:"conn_string" env:"QUANTD_PAPER_CONN_STRING"`
	InitialCash float64 `json:"initial_cash" env:"QUANTD_PAPER_INITIAL_CASH, default=100000"`
}

type StorageConfig struct {
	Name        string                   `json:"name" env:"QUANTD_STORAGE_NAME, default=localfs"`
	Compression StorageCompressionConfig `json:"compression"`
	Encryption  StorageEncryptionConfig  `json:"encryption"`
	S3          S3StorageConfig          `json:"s3"`
	SFTP        SFTPStorageConfig        `json:"sftp"`
}

type StorageCompressionConfig struct {
	Algo string `json:"algo" env:"QUANTD_STORAGE_COMPRESSION_ALGO"`
}

type StorageEncryptionConfig struct {
	Algo string `json:"algo" env:"QUANTD_STORAGE_ENCRYPTION_ALGO"`
	Pass string `json:"pass" env:"QUANTD_STORAGE_ENCRYPTION_PASS"`
}

type S3StorageConfig struct {
	URL             string `json:"url" env:"QUANTD_S3_URL"`
	AccessKeyID     string `json:"access_key_id" env:"QUANTD_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `json:"secret_access_key" env:"QUANTD_S3_SECRET_ACCESS_KEY"`
	Bucket          string `json:"bucket" env:"QUANTD_S3_BUCKET"`
	Region          string `json:"region" env:"QUANTD_S3_REGION"`
	UsePathStyle    bool   `json:"use_path_style" env:"QUANTD_S3_USE_PATH_STYLE"`
	DisableSSL      bool   `json:"disable_ssl" env:"QUANTD_S3_DISABLE_SSL"`
}

type SFTPStorageConfig struct {
	Host     string `json:"host" env:"QUANTD_SFTP_HOST"`
	Port     int    `json:"port" env:"QUANTD_SFTP_PORT, default=22"`
	User     string `json:"user" env:"QUANTD_SFTP_USER"`
	PKeyPath string `json:"pkey_path" env:"QUANTD_SFTP_PKEY_PATH"`
	PKeyPass string `json:"pkey_pass" env:"QUANTD_SFTP_PKEY_PASS"`
	BaseDir  string `json:"base_dir" env:"QUANTD_SFTP_BASE_DIR"`
}

// Cfg returns the config loaded in main; it is a fatal error to ask earlier.
func Cfg() *Config {
	if config == nil {
		log.Fatal("config was not loaded in main")
	}
	return config
}

// MustLoad reads a YAML config file, fills unset fields from the
// environment, validates and memoizes the result.
func MustLoad(path string) *Config {
	once.Do(func() {
		c, err := loadFromFile(path)
		if err != nil {
			log.Fatal(err)
		}
		config = c
	})
	return config
}

// MustEnvconfig builds the config from environment variables only.
func MustEnvconfig() *Config {
	once.Do(func() {
		var c Config
		if err := envconfig.Process(context.Background(), &c); err != nil {
			log.Fatal(err)
		}
		if err := c.Validate(); err != nil {
			log.Fatal(err)
		}
		config = &c
	})
	return config
}

func loadFromFile(path string) (*Config, error) {
	// env first (sets defaults), file values win
	var c Config
	if err := envconfig.Process(context.Background(), &c); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Name) {
	case StorageNameLocal, StorageNameS3, StorageNameSFTP:
	default:
		return fmt.Errorf("unknown storage name: %s", c.Storage.Name)
	}
	if c.Storage.Encryption.Algo != "" && c.Storage.Encryption.Algo != RepoEncryptorAes256Gcm {
		return fmt.Errorf("unknown encryption algo: %s", c.Storage.Encryption.Algo)
	}
	switch c.Storage.Compression.Algo {
	case "", RepoCompressorGzip, RepoCompressorZstd:
	default:
		return fmt.Errorf("unknown compression algo: %s", c.Storage.Compression.Algo)
	}
	w := c.Scan.Weights
	sum := w.Sentiment + w.Catalyst + w.Insider + w.Options + w.Technical
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("scan weights must sum to 1.0, got %.2f", sum)
	}
	return nil
}

func (c *Config) IsLocalStor() bool {
	return strings.EqualFold(c.Storage.Name, StorageNameLocal)
}

// String renders the config as JSON with sensitive fields masked.
func (c *Config) String() string {
	masked := *c
	masked.Main.AuthToken = mask(masked.Main.AuthToken)
	masked.Paper.ConnString = mask(masked.Paper.ConnString)
	masked.Storage.Encryption.Pass = mask(masked.Storage.Encryption.Pass)
	masked.Storage.S3.SecretAccessKey = mask(masked.Storage.S3.SecretAccessKey)
	masked.Storage.SFTP.PKeyPass = mask(masked.Storage.SFTP.PKeyPass)

	data, err := json.MarshalIndent(&masked, "", "  ")
	if err != nil {
		return fmt.Sprintf("config marshal error: %v", err)
	}
	return string(data)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "*****"
}
