package config

import (
	"strings"

	"github.com/caarlos0/env/v6"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type StoreDriver string

const (
	// Документный стор с лентой изменений, основной вариант
	StoreDriverDocument StoreDriver = "document"
	// Локальная sqlite-база без ленты изменений
	StoreDriverLocal StoreDriver = "local"
)

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"Europe/Moscow"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	// Общий секрет доступа к доске
	Auth struct {
		Username string `env:"AUTH_USERNAME" envDefault:"schedule_board"`
		Password string `env:"AUTH_PASSWORD" envDefault:"schedule_board"`
	}

	Board struct {
		DoctorCount    int `env:"BOARD_DOCTOR_COUNT" envDefault:"9"`
		SlotsPerDoctor int `env:"BOARD_SLOTS_PER_DOCTOR" envDefault:"2"`
		PushQueueSize  int `env:"BOARD_PUSH_QUEUE_SIZE" envDefault:"256"`
	}

	Store struct {
		Driver     StoreDriver `env:"STORE_DRIVER" envDefault:"document"`
		URL        string      `env:"STORE_URL"`
		Username   string      `env:"STORE_USERNAME"`
		Password   string      `env:"STORE_PASSWORD"`
		SqlitePath string      `env:"STORE_SQLITE_PATH" envDefault:"schedule_board.db"`
	}

	RabbitMQ struct {
		Enabled    bool   `env:"RABBITMQ_ENABLED"`
		URL        string `env:"RABBITMQ_URL"`
		Queue      string `env:"RABBITMQ_QUEUE" envDefault:"schedule-board.changes"`
		Exchange   string `env:"RABBITMQ_EXCHANGE" envDefault:"schedule-board"`
		BindingKey string `env:"RABBITMQ_BINDING_KEY" envDefault:"schedule-board.#"`
	}

	Cache struct {
		Enabled      bool `env:"CACHE_ENABLED" envDefault:"true"`
		ScheduleSize int  `env:"CACHE_SCHEDULE_SIZE" envDefault:"64"`
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))
	cfg.Store.Driver = StoreDriver(strings.ToLower(string(cfg.Store.Driver)))

	// У локального стора нет ленты изменений
	if cfg.Store.Driver == StoreDriverLocal {
		cfg.RabbitMQ.Enabled = false
	}

	return cfg, nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
