package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Judge    JudgeConfig
	Fetcher  FetcherConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Для 'single' используется первый адрес.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expirationHrs"`
}

// JudgeConfig содержит настройки клиента внешнего judge-сервиса.
// Judge исполняет код студента и возвращает stdout/stderr/compile_output.
type JudgeConfig struct {
	// BaseURL: адрес judge-сервиса (например, https://judge0-ce.p.rapidapi.com)
	BaseURL string `mapstructure:"base_url"`

	// APIKey: ключ доступа, передается в заголовке X-Auth-Token
	APIKey string `mapstructure:"api_key"`

	// TimeoutSec: максимальное время ожидания синхронного результата исполнения
	TimeoutSec int `mapstructure:"timeout_sec"`

	// Languages: разрешенные language_id. Пустой список = разрешены все.
	Languages []int `mapstructure:"languages"`
}

// FetcherConfig содержит настройки загрузчика файлов тест-кейсов
type FetcherConfig struct {
	TimeoutSec   int   `mapstructure:"timeout_sec"`
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// JudgeTimeout возвращает таймаут judge как time.Duration (по умолчанию 15s)
func (j *JudgeConfig) JudgeTimeout() time.Duration {
	if j.TimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(j.TimeoutSec) * time.Second
}

// FetchTimeout возвращает таймаут загрузки файлов (по умолчанию 10s)
func (f *FetcherConfig) FetchTimeout() time.Duration {
	if f.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(f.TimeoutSec) * time.Second
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// Привязываем переменные окружения ЯВНО
	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции JWT
	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")

	// Привязка для секции Judge
	vip.BindEnv("judge.base_url", "JUDGE_BASE_URL")
	vip.BindEnv("judge.api_key", "JUDGE_API_KEY")
	vip.BindEnv("judge.timeout_sec", "JUDGE_TIMEOUT_SEC")

	// Привязка для секции Fetcher
	vip.BindEnv("fetcher.timeout_sec", "FETCHER_TIMEOUT_SEC")
	vip.BindEnv("fetcher.max_body_bytes", "FETCHER_MAX_BODY_BYTES")

	// Привязка для Server
	vip.BindEnv("server.port", "SERVER_PORT")

	// Путь к файлу конфигурации (не страшно, если его нет, т.к. есть BindEnv)
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("Judge Base URL: %s", cfg.Judge.BaseURL)
		log.Printf("Judge API Key Set: %t", cfg.Judge.APIKey != "")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	// Проверка обязательных параметров
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if cfg.Judge.BaseURL == "" {
		return nil, fmt.Errorf("judge base URL is required in config (check JUDGE_BASE_URL env var)")
	}

	return &cfg, nil
}
