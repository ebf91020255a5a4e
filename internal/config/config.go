// Package config предоставляет структуры и функции для загрузки настроек.
//
// Настройки читаются из переменных окружения. Если задан CONFIG_PATH,
// сначала читается YAML-файл, а переменные окружения его перекрывают.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultSessionSecret значение секрета по умолчанию, недопустимое в prod.
const DefaultSessionSecret = "change_this_secret"

// Окружения запуска.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	LogFile    string `yaml:"log_file" env:"LOG_FILE"`
	HTTPServer `yaml:"http_server"`
	Session    `yaml:"session"`
	Display    `yaml:"display"`
	Storage    `yaml:"storage"`
	Redis      `yaml:"redis"`
	Admin      `yaml:"admin"`
	Payment    `yaml:"payment"`
	Signup     `yaml:"signup"`
	AMQP       `yaml:"amqp"`
}

// HTTPServer настройки HTTP-сервера.
type HTTPServer struct {
	Port        string        `yaml:"port" env:"PORT" env-default:"3000"`
	TimeoutHTTP time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Session настройки cookie сессии.
type Session struct {
	SessionSecret string        `yaml:"secret" env:"SESSION_SECRET" env-default:"change_this_secret"`
	SessionTTL    time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"168h"`
	CookieName    string        `yaml:"cookie_name" env:"SESSION_COOKIE" env-default:"gate.sid"`
	CookieSecure  bool          `yaml:"cookie_secure" env:"COOKIE_SECURE" env-default:"false"`
}

// Display статические параметры отображения, передаются в представления как есть.
type Display struct {
	Brand     string `yaml:"brand" env:"BRAND" env-default:"Nethunt URL Extractor"`
	BaseURL   string `yaml:"base_url" env:"APP_BASE_URL"`
	EmbedURL  string `yaml:"embed_url" env:"EMBED_URL" env-default:"https://getindevice.com/"`
	CropTopPx int    `yaml:"crop_top_px" env:"CROP_TOP_PX" env-default:"140"`
}

// Storage расположение файла SQLite.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"data/db.sqlite3"`
}

// Redis подключение к хранилищу сессий. Пустой адрес означает хранение в памяти.
type Redis struct {
	RedisAddress  string        `yaml:"address" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	DialTimeout   time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
}

// Admin учётные данные администратора. Пустой пароль отключает вход.
type Admin struct {
	AdminUsername string `yaml:"username" env:"ADMIN_USERNAME" env-default:"admin"`
	AdminPassword string `yaml:"password" env:"ADMIN_PASSWORD"`
}

// Payment внешняя страница оплаты.
type Payment struct {
	PaymentURL string `yaml:"url" env:"PAYMENT_URL" env-default:"https://flutterwave.com/pay/7k8wh62jmtzh"`
}

// Signup правила регистрации.
type Signup struct {
	AllowedEmailDomain string `yaml:"allowed_email_domain" env:"ALLOWED_EMAIL_DOMAIN" env-default:"gmail.com"`
}

// AMQP брокер для доменных событий. Пустой URL отключает публикацию.
type AMQP struct {
	AMQPURL  string `yaml:"url" env:"AMQP_URL"`
	Exchange string `yaml:"exchange" env:"AMQP_EXCHANGE" env-default:"entitlements"`
}

// Addr адрес для net/http.Server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Load читает конфигурацию и проверяет её.
func Load() (*Config, error) {
	const op = "config.Load"
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%s: config file %s: %w", op, path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфигурацию и завершает процесс при ошибке.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	if c.Env == EnvProd && c.SessionSecret == DefaultSessionSecret {
		return errors.New("SESSION_SECRET must be set in prod")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must not be empty")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

// String печатает конфигурацию без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Port: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Session:\n"+
			"  Cookie: %s\n"+
			"  TTL: %s\n"+
			"  Secure: %t\n"+
			"Display:\n"+
			"  BaseURL: %s\n"+
			"  EmbedURL: %s\n"+
			"  CropTopPx: %d\n"+
			"SQLitePath: %s\n"+
			"RedisAddress: %s\n"+
			"AdminEnabled: %t\n"+
			"AMQPEnabled: %t\n",
		c.Env,
		c.Port,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.CookieName,
		c.SessionTTL,
		c.CookieSecure,
		c.BaseURL,
		c.EmbedURL,
		c.CropTopPx,
		c.SQLitePath,
		c.RedisAddress,
		c.AdminPassword != "",
		c.AMQPURL != "",
	)
}
