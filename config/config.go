package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	LogLevel string
	Server   Server
	Database Database
	Auth     Auth
	Redis    Redis
	Event    Event
	// DefaultLanguage is used when a test is started without one.
	DefaultLanguage string
}

type Server struct {
	Port           string
	AllowedOrigins []string
}

type Database struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// Path is the sqlite file, ":memory:" is accepted.
	Path string
}

type Auth struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type Redis struct {
	URL      string
	StatsTTL time.Duration
}

// Event is printed on invitation cards.
type Event struct {
	Name     string
	Subtitle string
	Date     string
	Venue    string
	Footer   string
	LogoPath string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_PATH", "orientation.db")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("STATS_CACHE_TTL", "30s")
	v.SetDefault("DEFAULT_LANGUAGE", "fr")
	v.SetDefault("EVENT_NAME", "Carte d'Invitation")
}

func NewConfig() (*Config, error) {
	return Load(".")
}

// Load reads <dir>/.env when present, then the environment.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config
	config.Env = v.GetString("APP_ENV")
	config.LogLevel = v.GetString("LOG_LEVEL")

	config.Server.Port = v.GetString("SERVER_PORT")
	config.Server.AllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	config.Database.Driver = strings.ToLower(v.GetString("DATABASE_DRIVER"))
	config.Database.Host = v.GetString("DATABASE_HOST")
	config.Database.Port = v.GetString("DATABASE_PORT")
	config.Database.User = v.GetString("DATABASE_USER")
	config.Database.Password = v.GetString("DATABASE_PASSWORD")
	config.Database.Name = v.GetString("DATABASE_NAME")
	config.Database.SSLMode = v.GetString("DATABASE_SSLMODE")
	config.Database.Path = v.GetString("DATABASE_PATH")

	config.Auth.JWTSecret = v.GetString("JWT_SECRET")
	config.Auth.TokenTTL = v.GetDuration("JWT_TTL")

	config.Redis.URL = v.GetString("REDIS_URL")
	config.Redis.StatsTTL = v.GetDuration("STATS_CACHE_TTL")

	config.DefaultLanguage = v.GetString("DEFAULT_LANGUAGE")

	config.Event.Name = v.GetString("EVENT_NAME")
	config.Event.Subtitle = v.GetString("EVENT_SUBTITLE")
	config.Event.Date = v.GetString("EVENT_DATE")
	config.Event.Venue = v.GetString("EVENT_VENUE")
	config.Event.Footer = v.GetString("EVENT_FOOTER")
	config.Event.LogoPath = v.GetString("EVENT_LOGO_PATH")

	if config.Auth.JWTSecret == "" {
		if config.IsProduction() {
			log.Fatal().Msg("JWT_SECRET must be set in production")
		}
		log.Warn().Msg("JWT_SECRET not set, using an insecure development secret")
		config.Auth.JWTSecret = "dev-insecure-secret"
	}

	log.Info().
		Str("env", config.Env).
		Str("db_driver", config.Database.Driver).
		Str("port", config.Server.Port).
		Bool("redis", config.Redis.URL != "").
		Msg("Config loaded")
	return &config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
