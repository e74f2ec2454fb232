package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/offsettrade/visa-checker-bot/internal/core/domain"
	"github.com/offsettrade/visa-checker-bot/internal/utils"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"UTC"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"visa_checker:visa_checker"`
		BasicClients       []ConfigBasicClient
	}

	Portal struct {
		URL           string `env:"PORTAL_URL"`
		AuthToken     string `env:"PORTAL_AUTH_TOKEN"`
		ApplicantID   string `env:"PORTAL_APPLICANT_ID"`
		ApplicationID string `env:"PORTAL_APPLICATION_ID"`
		PostUserID    int    `env:"PORTAL_POST_USER_ID"`
		AppointmentID int    `env:"PORTAL_APPOINTMENT_ID"`
		VisaType      string `env:"PORTAL_VISA_TYPE"`
		VisaClass     string `env:"PORTAL_VISA_CLASS"`
	}

	Watcher struct {
		FromDateString   string        `env:"WATCH_FROM_DATE"`
		ToDateString     string        `env:"WATCH_TO_DATE"`
		PollInterval     time.Duration `env:"POLL_INTERVAL" envDefault:"600ms"`
		ParallelAttempts int           `env:"PARALLEL_ATTEMPTS" envDefault:"3"`
		MaxRetries       int           `env:"MAX_RETRIES" envDefault:"3"`
		// 0 - без глобального лимита, иначе после исчерпания опрос
		// останавливается навсегда
		MaxTotalAttempts int  `env:"MAX_TOTAL_ATTEMPTS" envDefault:"0"`
		RetrySameSlot    bool `env:"RETRY_SAME_SLOT" envDefault:"true"`

		Window domain.DateWindow
	}

	ConflictCache struct {
		Enabled bool `env:"CONFLICT_CACHE_ENABLED" envDefault:"true"`
		Size    int  `env:"CONFLICT_CACHE_SIZE" envDefault:"512"`
	}

	RabbitMQ struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED"`
		URL      string `env:"RABBITMQ_URL"`
		Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"visa-checker.events"`
	}
}

// TimeZone - локация приложения, выставляется в NewConfig
var TimeZone = time.UTC

func NewConfig() (*Config, error) {
	// .env подхватываем только если он есть
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	TimeZone = loc

	// Разделение клиентов basic-авторизации
	if cfg.Auth.BasicClients == nil {
		cfg.Auth.BasicClients = []ConfigBasicClient{}
	}
	clientPairs := strings.Split(cfg.Auth.BasicClientsString, ",")
	for _, pair := range clientPairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			cfg.Auth.BasicClients = append(cfg.Auth.BasicClients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}

	if cfg.Portal.URL == "" {
		return nil, fmt.Errorf("PORTAL_URL is required")
	}
	if cfg.Portal.ApplicantID == "" || cfg.Portal.ApplicationID == "" {
		return nil, fmt.Errorf("PORTAL_APPLICANT_ID and PORTAL_APPLICATION_ID are required")
	}

	window, err := parseWindow(cfg.Watcher.FromDateString, cfg.Watcher.ToDateString)
	if err != nil {
		return nil, err
	}
	cfg.Watcher.Window = window

	if cfg.Watcher.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if cfg.Watcher.MaxRetries < 1 {
		return nil, fmt.Errorf("MAX_RETRIES must be at least 1")
	}

	return cfg, nil
}

func parseWindow(fromStr, toStr string) (domain.DateWindow, error) {
	if fromStr == "" || toStr == "" {
		return domain.DateWindow{}, fmt.Errorf("WATCH_FROM_DATE and WATCH_TO_DATE are required")
	}

	from, err := utils.ParseDate(fromStr)
	if err != nil {
		return domain.DateWindow{}, fmt.Errorf("invalid WATCH_FROM_DATE: %w", err)
	}
	to, err := utils.ParseDate(toStr)
	if err != nil {
		return domain.DateWindow{}, fmt.Errorf("invalid WATCH_TO_DATE: %w", err)
	}

	window := domain.DateWindow{
		From: utils.StartCurrentDay(from),
		To:   utils.StartCurrentDay(to),
	}
	if err := window.Validate(); err != nil {
		return domain.DateWindow{}, err
	}

	return window, nil
}

// Identity собирает реквизиты заявителя для запросов к порталу
func (c *Config) Identity() domain.IdentityContext {
	return domain.IdentityContext{
		ApplicantID:   c.Portal.ApplicantID,
		ApplicationID: c.Portal.ApplicationID,
		PostUserID:    c.Portal.PostUserID,
		AppointmentID: c.Portal.AppointmentID,
		VisaType:      c.Portal.VisaType,
		VisaClass:     c.Portal.VisaClass,
	}
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
