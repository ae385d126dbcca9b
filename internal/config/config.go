// config реализует конфигурацию news-portal: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config: корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Metrics  MetricsConfig `yaml:"metrics"`
	DB       DBConfig      `yaml:"db"`
	Auth     AuthConfig    `yaml:"auth"`
	Redis    RedisConfig   `yaml:"redis"`
	S3       S3Config      `yaml:"s3"`
	Upload   UploadConfig  `yaml:"upload"`
	Limits   LimitsConfig  `yaml:"limits"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig: общий дедлайн обработки HTTP-запроса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"10s"`
}

// HTTPConfig: публичный REST-сервер.
type HTTPConfig struct {
	Host     string `yaml:"host"      env:"HTTP_HOST"      env-default:"0.0.0.0"`
	Port     string `yaml:"port"      env:"HTTP_PORT"      env-default:"5000"`
	BasePath string `yaml:"base_path" env:"HTTP_BASE_PATH" env-default:"/api"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// MetricsConfig: отдельный HTTP для Prometheus и health-проб.
type MetricsConfig struct {
	Host string `yaml:"host" env:"METRICS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"5085"`
}

// Addr возвращает адрес в формате host:port.
func (m MetricsConfig) Addr() string { return net.JoinHostPort(m.Host, m.Port) }

// DBConfig: настройки подключения к MongoDB.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
	// Transactions включает многодокументные транзакции для каскадного удаления.
	// Требует replica set; на standalone-инстансе должно быть false.
	Transactions bool `yaml:"transactions" env:"DB_TRANSACTIONS" env-default:"false"`
}

// AuthConfig: выпуск и проверка access-токенов.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"JWT_SECRET"       env-default:""`
	Issuer         string        `yaml:"issuer"           env:"JWT_ISSUER"       env-default:"news-portal"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"720h"`
	BcryptCost     int           `yaml:"bcrypt_cost"      env:"BCRYPT_COST"      env-default:"10"`
}

// RedisConfig: кэш публичного списка категорий. Пустой URL отключает кэш.
type RedisConfig struct {
	URL           string        `yaml:"url"            env:"REDIS_URL"      env-default:""`
	Prefix        string        `yaml:"prefix"         env:"REDIS_PREFIX"   env-default:"news:"`
	CategoriesTTL time.Duration `yaml:"categories_ttl" env:"CATEGORIES_TTL" env-default:"1m"`
}

// S3Config: хранилище изображений статей (MinIO/S3). Пустой endpoint отключает загрузку.
type S3Config struct {
	Endpoint      string `yaml:"endpoint"        env:"S3_ENDPOINT"        env-default:""`
	RootUser      string `yaml:"root_user"       env:"S3_ROOT_USER"       env-default:""`
	RootPassword  string `yaml:"root_password"   env:"S3_ROOT_PASSWORD"   env-default:""`
	Bucket        string `yaml:"bucket"          env:"S3_BUCKET"          env-default:"news-images"`
	PublicBaseURL string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL" env-default:"/uploads"`
}

// UploadConfig: ограничения на загружаемые изображения.
type UploadConfig struct {
	MaxSizeBytes        int64    `yaml:"max_size_bytes"        env:"UPLOAD_MAX_SIZE_BYTES"        env-default:"5242880"`
	AllowedContentTypes []string `yaml:"allowed_content_types" env:"UPLOAD_ALLOWED_CONTENT_TYPES" env-separator:"," env-default:"image/jpeg,image/png,image/gif,image/webp"`
}

// LimitsConfig: лимиты на выдачу.
type LimitsConfig struct {
	// Пагинация: limit<=0 -> Default; верхняя граница: Max.
	Default int `yaml:"default" env:"DEFAULT_LIMIT" env-default:"10"`
	Max     int `yaml:"max"     env:"MAX_LIMIT"     env-default:"100"`
	// Размер страницы комментариев по умолчанию.
	Comments int `yaml:"comments" env:"COMMENTS_LIMIT" env-default:"20"`
	Featured int `yaml:"featured" env:"FEATURED_LIMIT" env-default:"5"`
	Trending int `yaml:"trending" env:"TRENDING_LIMIT" env-default:"10"`
	Related  int `yaml:"related"  env:"RELATED_LIMIT"  env-default:"5"`
}

// MustLoad: обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.validate(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return readFile(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return readFile(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return readFile("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate: базовая валидация значений.
func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be > 0")
	}

	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be in [4, 31]")
	}

	if c.Limits.Default <= 0 {
		return fmt.Errorf("limits.default must be > 0")
	}

	if c.Limits.Max <= 0 {
		return fmt.Errorf("limits.max must be > 0")
	}

	if c.Limits.Default > c.Limits.Max {
		return fmt.Errorf("limits.default must be <= limits.max")
	}

	if c.Limits.Comments <= 0 || c.Limits.Featured <= 0 || c.Limits.Trending <= 0 || c.Limits.Related <= 0 {
		return fmt.Errorf("limits.comments/featured/trending/related must be > 0")
	}

	if c.S3.Endpoint != "" && c.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when s3.endpoint is set")
	}

	if c.Upload.MaxSizeBytes <= 0 {
		return fmt.Errorf("upload.max_size_bytes must be > 0")
	}

	return nil
}
