package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yourname/upload_lite/internal/policy"
)

const (
	defaultTTLHours    = 24
	defaultIntervalMin = 30
)

// CategoryConfig — одна строка таблицы категорий из конфигурации.
type CategoryConfig struct {
	Name      string   `yaml:"name"`
	MIMETypes []string `yaml:"mime_types"`
	MaxBytes  int64    `yaml:"max_bytes"`
	Bucket    string   `yaml:"bucket"`
}

// S3Config — параметры основного S3-совместимого стораджа.
type S3Config struct {
	Endpoint      string `yaml:"endpoint"`
	Region        string `yaml:"region"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	UseSSL        bool   `yaml:"use_ssl"`
	PathStyle     bool   `yaml:"path_style"`
	PublicBaseURL string `yaml:"public_base_url"`
}

// ReaperConfig — интервалы фоновой чистки брошенных сессий.
type ReaperConfig struct {
	TTLHours    int `yaml:"ttl_hours"`
	IntervalMin int `yaml:"interval_min"`
}

type Config struct {
	ListenAddr  string           `yaml:"listen_addr"`
	ChunkDir    string           `yaml:"chunk_dir"`
	FallbackDir string           `yaml:"fallback_dir"`
	S3          S3Config         `yaml:"s3"`
	Reaper      ReaperConfig     `yaml:"reaper"`
	Categories  []CategoryConfig `yaml:"categories"`
}

// Load читает YAML-конфигурацию, применяет ENV-переопределения и возвращает актуальную структуру.
func Load() (*Config, error) {
	// .env подхватываем best-effort: в контейнере его обычно нет.
	_ = godotenv.Load()

	path := getenv("CONFIG_PATH", "./config.yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// ENV override
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("CHUNK_DIR"); v != "" {
		c.ChunkDir = v
	}
	if v := os.Getenv("FALLBACK_DIR"); v != "" {
		c.FallbackDir = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		c.S3.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		c.S3.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		c.S3.SecretKey = v
	}
	if v := os.Getenv("REAPER_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Reaper.TTLHours = n
		}
	}
	if v := os.Getenv("REAPER_INTERVAL_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Reaper.IntervalMin = n
		}
	}

	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.ChunkDir == "" {
		c.ChunkDir = "./data/chunks"
	}
	if c.FallbackDir == "" {
		c.FallbackDir = "./data/fallback"
	}
	if c.Reaper.TTLHours <= 0 {
		c.Reaper.TTLHours = defaultTTLHours
	}
	if c.Reaper.IntervalMin <= 0 {
		c.Reaper.IntervalMin = defaultIntervalMin
	}
}

func (c *Config) validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("config: categories table is empty")
	}
	for _, cat := range c.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("config: category with empty name")
		}
	}
	return nil
}

// PolicyTable собирает таблицу политик из конфигурации; валидацию
// содержимого выполняет policy.NewTable.
func (c *Config) PolicyTable() (*policy.Table, error) {
	policies := make([]policy.CategoryPolicy, 0, len(c.Categories))
	for _, cat := range c.Categories {
		allowed := make(map[string]struct{}, len(cat.MIMETypes))
		for _, m := range cat.MIMETypes {
			m = strings.TrimSpace(m)
			if m != "" {
				allowed[m] = struct{}{}
			}
		}
		policies = append(policies, policy.CategoryPolicy{
			Category:    cat.Name,
			AllowedMIME: allowed,
			MaxBytes:    cat.MaxBytes,
			Bucket:      policy.Bucket(cat.Bucket),
		})
	}
	return policy.NewTable(policies)
}

// ReapTTL возвращает TTL чистки как Duration.
func (c *Config) ReapTTL() time.Duration {
	return time.Duration(c.Reaper.TTLHours) * time.Hour
}

// ReapInterval возвращает период чистки как Duration.
func (c *Config) ReapInterval() time.Duration {
	return time.Duration(c.Reaper.IntervalMin) * time.Minute
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}
