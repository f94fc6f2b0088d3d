package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port     string // サーバーポート（8080）
	GoEnv    string // development/production
	LogLevel string // debug/info/warn/error

	DatabaseURL      string // あればPOSTGRES_*より優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret      string        // JWT署名シークレット
	AccessTokenTTL time.Duration // アクセストークンの有効期限
	BcryptCost     int

	RedisAddr     string // 空ならインメモリキュー
	RedisPassword string
	RedisDB       int
	TaskQueueKey  string

	WorkerConcurrency int
	TaskMaxAttempts   int

	SMTPHost     string // 空ならメールはログに出すだけ
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	ShopURLTemplate string   // 新規ショップのURL（%sに小文字化した名前）
	ImportCron      string   // 定期取込のcron式（空なら無効）
	ImportFeeds     []string // 定期取込するフィード

	AuthRateLimitPerMin int // /auth のIPごとの上限
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	redisDB, err := atoiDefault("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	workers, err := atoiDefault("WORKER_CONCURRENCY", 4)
	if err != nil {
		return Config{}, err
	}
	attempts, err := atoiDefault("TASK_MAX_ATTEMPTS", 3)
	if err != nil {
		return Config{}, err
	}
	smtpPort, err := atoiDefault("SMTP_PORT", 587)
	if err != nil {
		return Config{}, err
	}
	rateLimit, err := atoiDefault("AUTH_RATE_LIMIT_PER_MIN", 30)
	if err != nil {
		return Config{}, err
	}
	cost, err := atoiDefault("BCRYPT_COST", 12)
	if err != nil {
		return Config{}, err
	}
	ttl, err := durationDefault("ACCESS_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:     getenv("PORT", "8080"),
		GoEnv:    getenv("GO_ENV", "development"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "ecshop"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: ttl,
		BcryptCost:     cost,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		TaskQueueKey:  getenv("TASK_QUEUE_KEY", "ecshop:tasks"),

		WorkerConcurrency: workers,
		TaskMaxAttempts:   attempts,

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getenv("MAIL_FROM", "shop@example.com"),

		ShopURLTemplate: getenv("SHOP_URL_TEMPLATE", "https://%s.ru"),
		ImportCron:      os.Getenv("IMPORT_CRON"),
		ImportFeeds:     splitList(os.Getenv("IMPORT_FEEDS")),

		AuthRateLimitPerMin: rateLimit,
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.WorkerConcurrency < 1 {
		return Config{}, fmt.Errorf("WORKER_CONCURRENCY must be positive")
	}
	if cfg.TaskMaxAttempts < 1 {
		return Config{}, fmt.Errorf("TASK_MAX_ATTEMPTS must be positive")
	}
	if !strings.Contains(cfg.ShopURLTemplate, "%s") {
		return Config{}, fmt.Errorf("SHOP_URL_TEMPLATE must contain %%s")
	}
	if cfg.ImportCron != "" && len(cfg.ImportFeeds) == 0 {
		return Config{}, fmt.Errorf("IMPORT_FEEDS is required when IMPORT_CRON is set")
	}

	return cfg, nil
}

// DSN はDATABASE_URLかPOSTGRES_*から接続文字列を作る
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "production"
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

// カンマ区切り
func splitList(v string) []string {
	out := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
