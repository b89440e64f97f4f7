package config

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	once     sync.Once
	instance *Config
)

// ComponentConfig содержит базовые сетевые настройки для запуска сервиса
type ComponentConfig struct {
	Protocol string `yaml:"protocol"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Debug    bool   `yaml:"debug"`
}

// LibraryConfig описывает источник документов со стихами
type LibraryConfig struct {
	BaseURL     string `yaml:"base_url"`     // HTTP источник; пусто, если задан data_dir
	DataDir     string `yaml:"data_dir"`     // локальная копия документов
	VerseCount  int    `yaml:"verse_count"`  // документы запрашиваются по ID 1..verse_count
	PathPattern string `yaml:"path_pattern"` // шаблон имени документа, например verse_%d.json
}

// FetchConfig настройки стартовой загрузки
type FetchConfig struct {
	Threads        int     `yaml:"threads"`
	RatePerSecond  float64 `yaml:"rate_per_second"` // 0 = без ограничения
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// PrefsConfig локальное хранилище избранного и темы
type PrefsConfig struct {
	DBPath string `yaml:"db_path"`
}

// CLIConfig настройки для CLI (не сервис)
type CLIConfig struct {
	Debug    bool `yaml:"debug"`
	PageSize int  `yaml:"page_size"`
}

// Config корень дерева конфигурации, строго соответствующий shloka.yaml
type Config struct {
	Library    LibraryConfig   `yaml:"library"`
	Fetch      FetchConfig     `yaml:"fetch"`
	Prefs      PrefsConfig     `yaml:"prefs"`
	WebAdapter ComponentConfig `yaml:"web_adapter"`
	CLI        CLIConfig       `yaml:"cli"`
}

// Get возвращает инициализированный объект конфигурации (Singleton)
func Get() *Config {
	once.Do(func() {
		path := os.Getenv("SHLOKA_CONFIG")
		if path == "" {
			path = "shloka.yaml"
		}

		f, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("[CONFIG ERROR] Could not read %s: %v", path, err)
		}

		instance = &Config{}
		if err := yaml.Unmarshal(f, instance); err != nil {
			log.Fatalf("[CONFIG ERROR] Failed to parse YAML: %v", err)
		}
		instance.ApplyDefaults()
	})
	return instance
}

// ApplyDefaults заполняет незаданные поля значениями по умолчанию
func (c *Config) ApplyDefaults() {
	if c.Library.PathPattern == "" {
		c.Library.PathPattern = "verse_%d.json"
	}
	if c.Fetch.Threads <= 0 {
		c.Fetch.Threads = 4
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = 5
	}
	if c.Prefs.DBPath == "" {
		c.Prefs.DBPath = "shloka.db"
	}
	if c.CLI.PageSize <= 0 {
		c.CLI.PageSize = 5
	}
}

// Timeout таймаут одного HTTP запроса за документом
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Address возвращает строку host:port (удобно для HTTP сервера)
func (c ComponentConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FullURL возвращает строку protocol://host:port (удобно для HTTP/URL)
func (c ComponentConfig) FullURL() string {
	return fmt.Sprintf("%s://%s:%d", c.Protocol, c.Host, c.Port)
}
