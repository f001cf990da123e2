package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config — корневая структура конфигурации дашборда.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Journal   JournalConfig   `mapstructure:"journal"`
	Render    RenderConfig    `mapstructure:"render"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig описывает настройки HTTP-сервера.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// FeedConfig — лента уязвимостей GitHub и ее защита.
type FeedConfig struct {
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRecords int           `mapstructure:"max_records"`
	UserAgent  string        `mapstructure:"user_agent"`

	// Локальный бюджет запросов
	RateInterval time.Duration `mapstructure:"rate_interval"`
	RateBurst    int           `mapstructure:"rate_burst"`

	// Настройки Circuit Breaker
	CBMaxRequests uint32        `mapstructure:"cb_max_requests"`
	CBInterval    time.Duration `mapstructure:"cb_interval"`
	CBTimeout     time.Duration `mapstructure:"cb_timeout"`
	CBFailures    uint32        `mapstructure:"cb_failures"`
}

// GeneratorConfig — синтетические данные. Seed 0 означает случайное зерно.
type GeneratorConfig struct {
	Seed uint64 `mapstructure:"seed"`
}

type JournalConfig struct {
	BufferSize    int           `mapstructure:"buffer_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	BatchSize     int           `mapstructure:"batch_size"`
}

type RenderConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// Addr — адрес HTTP-сервера
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig объединяет значения из файла, ENV и флагов командной строки.
// path может быть пустым — тогда файл ищется как config.yaml в . и ./configs.
// flags может быть nil; известные флаги (--seed) перекрывают файл и ENV.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// 2. Переменные окружения: DASHBOARD_SERVER_PORT=9000 перекроет server.port
	v.SetEnvPrefix("dashboard")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 3. Установка дефолтных значений
	setDefaults(v)

	// 4. Флаги
	if flags != nil {
		if f := flags.Lookup("seed"); f != nil {
			if err := v.BindPFlag("generator.seed", f); err != nil {
				return nil, fmt.Errorf("bind seed flag: %w", err)
			}
		}
	}

	// 5. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	// 6. Маппинг в структуру
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate отсекает значения, с которыми сервис не стартует.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d is out of range", c.Server.Port))
	}
	if c.GRPC.Enabled && (c.GRPC.Port <= 0 || c.GRPC.Port > 65535) {
		errs = append(errs, fmt.Errorf("grpc.port: %d is out of range", c.GRPC.Port))
	}
	if c.Feed.URL == "" {
		errs = append(errs, errors.New("feed.url: must not be empty"))
	}
	if c.Feed.MaxRecords <= 0 {
		errs = append(errs, fmt.Errorf("feed.max_records: %d must be positive", c.Feed.MaxRecords))
	}
	if c.Journal.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("journal.buffer_size: %d must be positive", c.Journal.BufferSize))
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render: %dx%d is not a valid size", c.Render.Width, c.Render.Height))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.port", 50052)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("feed.url", "https://api.github.com/advisories")
	v.SetDefault("feed.timeout", 10*time.Second)
	v.SetDefault("feed.max_records", 15)
	v.SetDefault("feed.user_agent", "mtech-cybersecurity-dashboard")
	v.SetDefault("feed.rate_interval", time.Minute)
	v.SetDefault("feed.rate_burst", 60) // 60 анонимных запросов в час у GitHub
	v.SetDefault("feed.cb_max_requests", 1)
	v.SetDefault("feed.cb_interval", 60*time.Second)
	v.SetDefault("feed.cb_timeout", 30*time.Second)
	v.SetDefault("feed.cb_failures", 3)

	v.SetDefault("generator.seed", 0)

	v.SetDefault("journal.buffer_size", 1000)
	v.SetDefault("journal.flush_interval", 1*time.Second)
	v.SetDefault("journal.batch_size", 100)

	v.SetDefault("render.width", 900)
	v.SetDefault("render.height", 450)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}
