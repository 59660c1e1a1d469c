package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Scraper  ScraperConfig
	Refresh  RefreshConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ScraperConfig describes the upstream timetable reporting endpoint and how
// scraped week numbers are resolved to dates.
type ScraperConfig struct {
	BaseURL     string
	ObjectClass string
	Template    string
	Days        string
	Weeks       string
	Periods     string
	UserAgent   string
	Timeout     time.Duration

	// ReferenceYear anchors ISO week numbers from the document. Zero means
	// the year the import runs in. Pin this near academic year boundaries.
	ReferenceYear int

	// FixtureMode serves the bundled fixture instead of scraping at all.
	FixtureMode bool

	// FallbackToFixture loads the bundled fixture when a live scrape fails.
	FallbackToFixture bool

	CacheTTL time.Duration
}

// RefreshConfig controls the periodic re-import job.
type RefreshConfig struct {
	Enabled bool
	Cron    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scraper = ScraperConfig{
		BaseURL:           v.GetString("SCRAPER_BASE_URL"),
		ObjectClass:       v.GetString("SCRAPER_OBJECT_CLASS"),
		Template:          v.GetString("SCRAPER_TEMPLATE"),
		Days:              v.GetString("SCRAPER_DAYS"),
		Weeks:             v.GetString("SCRAPER_WEEKS"),
		Periods:           v.GetString("SCRAPER_PERIODS"),
		UserAgent:         v.GetString("SCRAPER_USER_AGENT"),
		Timeout:           parseDuration(v.GetString("SCRAPER_TIMEOUT"), 15*time.Second),
		ReferenceYear:     v.GetInt("SCRAPER_REFERENCE_YEAR"),
		FixtureMode:       v.GetBool("SCRAPER_FIXTURE_MODE"),
		FallbackToFixture: v.GetBool("SCRAPER_FALLBACK_TO_FIXTURE"),
		CacheTTL:          parseDuration(v.GetString("EVENTS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Refresh = RefreshConfig{
		Enabled: v.GetBool("ENABLE_REFRESH_JOB"),
		Cron:    v.GetString("REFRESH_CRON"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "timetable-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCRAPER_BASE_URL", "https://timetable.dundee.ac.uk:8086/reporting/textspreadsheet")
	v.SetDefault("SCRAPER_OBJECT_CLASS", "student set")
	v.SetDefault("SCRAPER_TEMPLATE", "SWSCUST student set textspreadsheet")
	v.SetDefault("SCRAPER_DAYS", "1-7")
	v.SetDefault("SCRAPER_WEEKS", "12-22")
	v.SetDefault("SCRAPER_PERIODS", "1-28")
	v.SetDefault("SCRAPER_USER_AGENT", "Mozilla/5.0")
	v.SetDefault("SCRAPER_TIMEOUT", "15s")
	v.SetDefault("SCRAPER_REFERENCE_YEAR", 0)
	v.SetDefault("SCRAPER_FIXTURE_MODE", false)
	v.SetDefault("SCRAPER_FALLBACK_TO_FIXTURE", false)
	v.SetDefault("EVENTS_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_REFRESH_JOB", false)
	v.SetDefault("REFRESH_CRON", "0 6 * * *")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
