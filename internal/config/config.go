package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/polkiloo/digistore/internal/domain/model"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	BaseURL     string
	JWTSecret   string
	LogLevel    slog.Level
	LogFormat   string

	AdminUsername   string
	AdminPassword   string
	AdminSessionTTL time.Duration
	BcryptCost      int

	TelegramBotToken      string
	TelegramAdminChatID   string
	TelegramWebhookSecret string
	TelegramAPIURL        string

	ResendAPIKey string
	MailFrom     string
	MailName     string

	StoreName      string
	SupportContact string

	UploadDir  string
	ReceiptDir string

	DownloadTTL        time.Duration
	MaxDownloads       int
	NotifyTimeout      time.Duration
	TokenSweepInterval time.Duration
	TokenRetention     time.Duration
	FileStockPolicy    model.FileStockPolicy

	RedisURL         string
	CallbackDedupTTL time.Duration

	ShutdownTimeout time.Duration
}

// Supported log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

const (
	defaultRunAddress         = ":8080"
	defaultBaseURL            = "http://localhost:8080"
	defaultJWTSecret          = "change-me-in-production"
	defaultAdminUsername      = "admin"
	defaultAdminSessionTTL    = 12 * time.Hour
	defaultTelegramAPIURL     = "https://api.telegram.org"
	defaultMailFrom           = "info@example.com"
	defaultStoreName          = "Digital Store"
	defaultUploadDir          = "uploads"
	defaultReceiptDir         = "receipts"
	defaultDownloadTTL        = 48 * time.Hour
	defaultMaxDownloads       = 3
	defaultNotifyTimeout      = 10 * time.Second
	defaultTokenSweepInterval = time.Hour
	defaultTokenRetention     = 7 * 24 * time.Hour
	defaultCallbackDedupTTL   = 24 * time.Hour
	defaultShutdownTimeout    = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

// LoadEnv parses configuration from environment variables only, for callers
// that own the command line themselves.
func LoadEnv() (*Config, error) {
	_ = godotenv.Load()
	return load(nil, os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:            getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:           getString(lookup, "DATABASE_URI", ""),
		BaseURL:               getString(lookup, "BASE_URL", defaultBaseURL),
		JWTSecret:             getString(lookup, "JWT_SECRET", defaultJWTSecret),
		AdminUsername:         getString(lookup, "ADMIN_USERNAME", defaultAdminUsername),
		AdminPassword:         getString(lookup, "ADMIN_PASSWORD", ""),
		AdminSessionTTL:       getDuration(lookup, "ADMIN_SESSION_TTL", defaultAdminSessionTTL),
		BcryptCost:            getInt(lookup, "BCRYPT_COST", 0),
		TelegramBotToken:      getString(lookup, "TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChatID:   getString(lookup, "TELEGRAM_ADMIN_ID", ""),
		TelegramWebhookSecret: getString(lookup, "TELEGRAM_WEBHOOK_SECRET", ""),
		TelegramAPIURL:        getString(lookup, "TELEGRAM_API_URL", defaultTelegramAPIURL),
		ResendAPIKey:          getString(lookup, "RESEND_API_KEY", ""),
		MailFrom:              getString(lookup, "MAIL_FROM", defaultMailFrom),
		StoreName:             getString(lookup, "STORE_NAME", defaultStoreName),
		UploadDir:             getString(lookup, "UPLOAD_DIR", defaultUploadDir),
		ReceiptDir:            getString(lookup, "RECEIPT_DIR", defaultReceiptDir),
		DownloadTTL:           getDuration(lookup, "DOWNLOAD_TTL", defaultDownloadTTL),
		MaxDownloads:          getInt(lookup, "MAX_DOWNLOADS", defaultMaxDownloads),
		NotifyTimeout:         getDuration(lookup, "NOTIFY_TIMEOUT", defaultNotifyTimeout),
		TokenSweepInterval:    getDuration(lookup, "TOKEN_SWEEP_INTERVAL", defaultTokenSweepInterval),
		TokenRetention:        getDuration(lookup, "TOKEN_RETENTION", defaultTokenRetention),
		FileStockPolicy:       model.FileStockPolicy(getString(lookup, "FILE_STOCK_POLICY", string(model.FileStockAllow))),
		RedisURL:              getString(lookup, "REDIS_URL", ""),
		CallbackDedupTTL:      getDuration(lookup, "CALLBACK_DEDUP_TTL", defaultCallbackDedupTTL),
		ShutdownTimeout:       getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}
	cfg.MailName = getString(lookup, "MAIL_NAME", cfg.StoreName)
	cfg.SupportContact = getString(lookup, "SUPPORT_CONTACT", cfg.MailFrom)

	fs := flag.NewFlagSet("digistore", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		downloadTTLStr     = cfg.DownloadTTL.String()
		notifyTimeoutStr   = cfg.NotifyTimeout.String()
		sweepIntervalStr   = cfg.TokenSweepInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		stockPolicyStr     = string(cfg.FileStockPolicy)
		logLevelStr        = getString(lookup, "LOG_LEVEL", "info")
		logFormatStr       = getString(lookup, "LOG_FORMAT", LogFormatJSON)
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Public base URL used in download links")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing admin tokens")
	fs.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "Directory for payment proofs")
	fs.StringVar(&cfg.ReceiptDir, "receipt-dir", cfg.ReceiptDir, "Directory for generated receipts")
	fs.IntVar(&cfg.MaxDownloads, "max-downloads", cfg.MaxDownloads, "Downloads allowed per token")
	fs.StringVar(&downloadTTLStr, "download-ttl", downloadTTLStr, "Lifetime of download tokens")
	fs.StringVar(&notifyTimeoutStr, "notify-timeout", notifyTimeoutStr, "Timeout for each outbound notification")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between expired token sweeps")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&stockPolicyStr, "file-stock-policy", stockPolicyStr, "File stock policy: allow or strict")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for callback de-duplication")
	fs.StringVar(&logLevelStr, "log-level", logLevelStr, "Log level: debug, info, warn, error")
	fs.StringVar(&logFormatStr, "log-format", logFormatStr, "Log format: json or text")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.DownloadTTL, err = time.ParseDuration(downloadTTLStr); err != nil {
		return nil, fmt.Errorf("invalid download ttl: %w", err)
	}

	if cfg.NotifyTimeout, err = time.ParseDuration(notifyTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid notify timeout: %w", err)
	}

	if cfg.TokenSweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	switch format := strings.ToLower(logFormatStr); format {
	case LogFormatJSON, LogFormatText:
		cfg.LogFormat = format
	default:
		return nil, fmt.Errorf("unknown log format %q", logFormatStr)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	switch policy := model.FileStockPolicy(strings.ToLower(stockPolicyStr)); policy {
	case model.FileStockAllow, model.FileStockStrict:
		cfg.FileStockPolicy = policy
	default:
		return nil, fmt.Errorf("unknown file stock policy %q", stockPolicyStr)
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.TelegramAPIURL = strings.TrimRight(cfg.TelegramAPIURL, "/")
	cfg.TelegramAdminChatID = strings.TrimSpace(cfg.TelegramAdminChatID)

	if cfg.DownloadTTL <= 0 {
		cfg.DownloadTTL = defaultDownloadTTL
	}

	if cfg.MaxDownloads <= 0 {
		cfg.MaxDownloads = defaultMaxDownloads
	}

	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}

	if cfg.TokenSweepInterval < 0 {
		cfg.TokenSweepInterval = 0
	}

	if cfg.AdminSessionTTL <= 0 {
		cfg.AdminSessionTTL = defaultAdminSessionTTL
	}

	if cfg.TokenRetention < 0 {
		cfg.TokenRetention = defaultTokenRetention
	}

	if cfg.CallbackDedupTTL <= 0 {
		cfg.CallbackDedupTTL = defaultCallbackDedupTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
