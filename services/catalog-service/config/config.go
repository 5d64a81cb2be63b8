package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config содержит все настройки сервиса
type Config struct {
	AppName  string
	Version  string
	LogLevel string
	ENV      string

	Server struct {
		Host            string
		Port            int
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	Postgres struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
		Timeout  time.Duration
		PoolSize int // размер пула соединений
	}

	Redis struct {
		Enabled  bool
		Host     string
		Port     int
		Password string
		DB       int
		Prefix   string // префикс всех ключей сервиса
	}

	Kafka struct {
		Enabled     bool
		Brokers     []string
		ClientID    string
		ExportTopic string // тема событий выгрузки каталога
	}

	Metrics struct {
		Enabled bool
		Port    int
	}

	API struct {
		SnapshotCacheTTL time.Duration // сколько живет кэш среза каталога
	}

	Export struct {
		Enabled     bool
		IntervalS   int    // интервал запуска в секундах
		FileName    string // имя файла без суффикса языка и расширения
		Cluster     string // хост витрины для ссылок на товары
		Language    string
		ThreadCount int           // сколько соединений пула воркера отдано под чтение каталога
		RunTimeout  time.Duration // 0 отключает ограничение
		UseStocks   bool
		Indent      bool // форматировать документ с отступами
	}

	S3 struct {
		Region   string
		Bucket   string
		Key      string
		Secret   string
		Endpoint string // адрес S3-совместимого хранилища
		Host     string // хост публичных ссылок
	}

	Resilience struct {
		CircuitTimeout time.Duration // через сколько пробовать публикацию после размыкания
		TripThreshold  int           // сколько сетевых ошибок подряд размыкают цепь
	}
}

// ExportConfigured сообщает, включена ли выгрузка и заданы ли параметры хранилища.
// Если нет, каждый тик планировщика ничего не делает.
func (c *Config) ExportConfigured() bool {
	return c.Export.Enabled &&
		c.Export.FileName != "" &&
		c.S3.Region != "" &&
		c.S3.Bucket != "" &&
		c.S3.Key != "" &&
		c.S3.Secret != ""
}

// ExportInterval интервал выгрузки. Неположительное значение заменяется значением по умолчанию.
func (c *Config) ExportInterval() time.Duration {
	if c.Export.IntervalS <= 0 {
		return time.Duration(defaultExportIntervalS) * time.Second
	}
	return time.Duration(c.Export.IntervalS) * time.Second
}

const defaultExportIntervalS = 3600

// ExportPoolSize размер пула соединений воркера: ThreadCount соединений под чтение каталога
// и одно под проверку готовности, чтобы /ready отвечал во время выгрузки
func (c *Config) ExportPoolSize() int {
	return max(c.Export.ThreadCount, 1) + 1
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	configFile := "config"
	if configPath != "" {
		configFile = configPath
	}

	var cfg Config

	v := viper.New()
	v.SetConfigName(configFile)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../../config")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Чтение конфигурационного файла
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		// Продолжаем, если файл не найден, будем использовать только переменные окружения
	}

	setDefaults(v)
	if err := bindEnvVariables(v); err != nil {
		return nil, fmt.Errorf("ошибка привязки переменных окружения: %w", err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка десериализации конфигурации: %w", err)
	}

	cfg.ENV = v.GetString("env")
	if cfg.ENV == "" {
		cfg.ENV = "development"
		if envVar := os.Getenv("APP_ENV"); envVar != "" {
			cfg.ENV = envVar
		}
	}

	return &cfg, nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Основные настройки
	v.SetDefault("appName", "catalog-service")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("logLevel", "info")
	v.SetDefault("env", "development")

	// Настройки сервера
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.shutdownTimeout", "5s")

	// Настройки Postgres
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "stores")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timeout", "5s")
	v.SetDefault("postgres.poolSize", 10)

	// Настройки Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "catalog")

	// Настройки Kafka
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.clientID", "catalog-service")
	v.SetDefault("kafka.exportTopic", "catalog-export-events")

	// Настройки метрик
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	// Настройки API
	v.SetDefault("api.snapshotCacheTTL", "30s")

	// Настройки выгрузки каталога
	v.SetDefault("export.enabled", false)
	v.SetDefault("export.intervalS", defaultExportIntervalS)
	v.SetDefault("export.fileName", "catalog")
	v.SetDefault("export.cluster", "")
	v.SetDefault("export.language", "en")
	v.SetDefault("export.threadCount", 1)
	v.SetDefault("export.runTimeout", "15m")
	v.SetDefault("export.useStocks", false)
	v.SetDefault("export.indent", false)

	// Настройки объектного хранилища
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.key", "")
	v.SetDefault("s3.secret", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.host", "s3.amazonaws.com")

	// Настройки отказоустойчивости
	v.SetDefault("resilience.circuitTimeout", "5m")
	v.SetDefault("resilience.tripThreshold", 3)
}

// bindEnvVariables привязывает переменные окружения к конфигурации
func bindEnvVariables(v *viper.Viper) error {
	bindings := map[string]string{
		// Основные настройки
		"appName":  "APP_NAME",
		"version":  "APP_VERSION",
		"logLevel": "LOG_LEVEL",
		"env":      "APP_ENV",

		// Настройки сервера
		"server.host":            "SERVER_HOST",
		"server.port":            "SERVER_PORT",
		"server.readTimeout":     "SERVER_READ_TIMEOUT",
		"server.writeTimeout":    "SERVER_WRITE_TIMEOUT",
		"server.shutdownTimeout": "SERVER_SHUTDOWN_TIMEOUT",

		// Настройки Postgres
		"postgres.host":     "POSTGRES_HOST",
		"postgres.port":     "POSTGRES_PORT",
		"postgres.user":     "POSTGRES_USER",
		"postgres.password": "POSTGRES_PASSWORD",
		"postgres.dbname":   "POSTGRES_DBNAME",
		"postgres.sslmode":  "POSTGRES_SSLMODE",
		"postgres.timeout":  "POSTGRES_TIMEOUT",
		"postgres.poolSize": "POSTGRES_POOL_SIZE",

		// Настройки Redis
		"redis.enabled":  "REDIS_ENABLED",
		"redis.host":     "REDIS_HOST",
		"redis.port":     "REDIS_PORT",
		"redis.password": "REDIS_PASSWORD",
		"redis.db":       "REDIS_DB",
		"redis.prefix":   "REDIS_PREFIX",

		// Настройки Kafka
		"kafka.enabled":     "KAFKA_ENABLED",
		"kafka.brokers":     "KAFKA_BROKERS",
		"kafka.clientID":    "KAFKA_CLIENT_ID",
		"kafka.exportTopic": "KAFKA_EXPORT_TOPIC",

		// Настройки метрик
		"metrics.enabled": "METRICS_ENABLED",
		"metrics.port":    "METRICS_PORT",

		"api.snapshotCacheTTL": "API_SNAPSHOT_CACHE_TTL",

		// Настройки выгрузки каталога
		"export.enabled":     "EXPORT_ENABLED",
		"export.intervalS":   "EXPORT_INTERVAL_S",
		"export.fileName":    "EXPORT_FILE_NAME",
		"export.cluster":     "EXPORT_CLUSTER",
		"export.language":    "EXPORT_LANGUAGE",
		"export.threadCount": "EXPORT_THREAD_COUNT",
		"export.runTimeout":  "EXPORT_RUN_TIMEOUT",
		"export.useStocks":   "EXPORT_USE_STOCKS",
		"export.indent":      "EXPORT_INDENT",

		// Настройки объектного хранилища
		"s3.region":   "S3_REGION",
		"s3.bucket":   "S3_BUCKET",
		"s3.key":      "S3_KEY",
		"s3.secret":   "S3_SECRET",
		"s3.endpoint": "S3_ENDPOINT",
		"s3.host":     "S3_HOST",

		// Настройки отказоустойчивости
		"resilience.circuitTimeout": "RESILIENCE_CIRCUIT_TIMEOUT",
		"resilience.tripThreshold":  "RESILIENCE_TRIP_THRESHOLD",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}
