package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ClientConfig struct {
	APIURL      string
	SessionFile string
}

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Conn string
}

type AuthConfig struct {
	Secret   string
	TokenExp string
}

type Config struct {
	Environment string
	Client      ClientConfig
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
}

// ServerAddr возвращает адрес HTTP-сервера в виде host:port.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

// TokenExpDuration парсит срок действия токена; пустое или кривое
// значение отдается нулем, дефолт выбирает сервис токенов.
func (c AuthConfig) TokenExpDuration() time.Duration {
	d, err := time.ParseDuration(c.TokenExp)
	if err != nil {
		return 0
	}
	return d
}

// Load читает настройки из app.env и переменных окружения.
// Для разработки подхватывается и обычный .env.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		Client: ClientConfig{
			APIURL:      v.GetString("API_URL"),
			SessionFile: v.GetString("SESSION_FILE"),
		},
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			Conn: v.GetString("POSTGRES_CONN"),
		},
		Auth: AuthConfig{
			Secret:   v.GetString("JWT_SECRET"),
			TokenExp: v.GetString("JWT_EXPIRY"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Client.APIURL == "" {
		cfg.Client.APIURL = "http://localhost:3001"
	}
	cfg.Client.APIURL = strings.TrimRight(cfg.Client.APIURL, "/")
	if cfg.Client.SessionFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.Client.SessionFile = filepath.Join(home, ".carbids", "session.json")
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 3001
	}
	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = "dev-secret-change-me"
	}

	return cfg, nil
}
