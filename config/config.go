package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Dosada05/poker-league/db"
	"github.com/Dosada05/poker-league/scoring"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Snapshot SnapshotConfig
	League   LeagueConfig
}

type ServerConfig struct {
	Port           int        `env:"SERVER_PORT"          envDefault:"8080"`
	LogLevel       slog.Level `env:"LOG_LEVEL"            envDefault:"INFO"`
	AllowedOrigins []string   `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimitRPS   float64    `env:"RATE_LIMIT_RPS"       envDefault:"5"`
	RateLimitBurst int        `env:"RATE_LIMIT_BURST"     envDefault:"10"`
}

type DatabaseConfig struct {
	Driver         string        `env:"DATABASE_DRIVER"          envDefault:"postgres"`
	URL            string        `env:"DATABASE_URL,required,notEmpty"`
	ConnectTimeout time.Duration `env:"DATABASE_CONNECT_TIMEOUT" envDefault:"5s"`
}

type AuthConfig struct {
	JWTSecretKey string `env:"JWT_SECRET_KEY,required,notEmpty"`
}

// SnapshotConfig описывает бакет (Cloudflare R2 или любой S3) для публикации таблицы.
// Пустой R2_BUCKET_NAME отключает публикацию.
type SnapshotConfig struct {
	AccountID       string `env:"R2_ACCOUNT_ID"`
	Endpoint        string `env:"R2_ENDPOINT"`
	Region          string `env:"R2_REGION"          envDefault:"auto"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	BucketName      string `env:"R2_BUCKET_NAME"`
	PublicBaseURL   string `env:"R2_PUBLIC_BASE_URL"`
	Prefix          string `env:"R2_SNAPSHOT_PREFIX" envDefault:"standings"`
}

func (s SnapshotConfig) Enabled() bool {
	return s.BucketName != ""
}

// LeagueConfig: правила сезона.
type LeagueConfig struct {
	CancellationPenaltyWindowHours int    `env:"CANCELLATION_PENALTY_WINDOW_HOURS" envDefault:"12"`
	LateCancellationPenaltyPoints  int    `env:"LATE_CANCELLATION_PENALTY_POINTS"  envDefault:"100"`
	NoShowPenaltyPoints            int    `env:"NO_SHOW_PENALTY_POINTS"            envDefault:"100"`
	DefaultRegistrationWindowHours int    `env:"DEFAULT_REGISTRATION_WINDOW_HOURS" envDefault:"2"`
	DefaultTopPlayersCount         int    `env:"DEFAULT_TOP_PLAYERS_COUNT"         envDefault:"20"`
	PointsTable                    string `env:"POINTS_TABLE"                      envDefault:"1:300,2:240,3:195,4-5:150,6-10:90"`
	DefaultPlacementPoints         int    `env:"DEFAULT_PLACEMENT_POINTS"          envDefault:"30"`
	SweeperIntervalSeconds         int    `env:"SWEEPER_INTERVAL_SECONDS"          envDefault:"60"`

	table scoring.Table
}

// Table returns the parsed points table.
func (c LeagueConfig) Table() scoring.Table {
	return c.table
}

func (c LeagueConfig) CancellationPenaltyWindow() time.Duration {
	return time.Duration(c.CancellationPenaltyWindowHours) * time.Hour
}

func (c LeagueConfig) DefaultRegistrationWindow() time.Duration {
	return time.Duration(c.DefaultRegistrationWindowHours) * time.Hour
}

func (c LeagueConfig) SweeperInterval() time.Duration {
	return time.Duration(c.SweeperIntervalSeconds) * time.Second
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if _, err := db.ParseDialect(c.Database.Driver); err != nil {
		return fmt.Errorf("invalid DATABASE_DRIVER: %w", err)
	}

	l := &c.League
	if l.CancellationPenaltyWindowHours < 0 || l.DefaultRegistrationWindowHours < 0 {
		return fmt.Errorf("league windows must not be negative")
	}
	if l.LateCancellationPenaltyPoints <= 0 || l.NoShowPenaltyPoints <= 0 {
		return fmt.Errorf("penalty points must be positive")
	}
	if l.DefaultTopPlayersCount <= 0 {
		return fmt.Errorf("DEFAULT_TOP_PLAYERS_COUNT must be positive, got %d", l.DefaultTopPlayersCount)
	}
	if l.DefaultPlacementPoints < 0 {
		return fmt.Errorf("DEFAULT_PLACEMENT_POINTS must not be negative, got %d", l.DefaultPlacementPoints)
	}
	if l.SweeperIntervalSeconds <= 0 {
		return fmt.Errorf("SWEEPER_INTERVAL_SECONDS must be positive, got %d", l.SweeperIntervalSeconds)
	}

	table := scoring.Table{Default: l.DefaultPlacementPoints}
	if err := table.UnmarshalText([]byte(l.PointsTable)); err != nil {
		return fmt.Errorf("invalid POINTS_TABLE: %w", err)
	}
	l.table = table
	return nil
}
