package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WorldConfig описывает источник данных мира
type WorldConfig struct {
	Manifest   string   `yaml:"manifest"`    // путь к манифесту карты (<map>.txt)
	Regions    []string `yaml:"regions"`     // отдельные файлы регионов вне манифеста
	SkipFailed bool     `yaml:"skip_failed"` // пропускать повреждённые регионы вместо остановки
}

// StorageConfig описывает снимки мира в BadgerDB
type StorageConfig struct {
	Path    string `yaml:"path"`    // каталог BadgerDB; пусто: снимки отключены
	Save    bool   `yaml:"save"`    // сохранить снимок после загрузки регионов
	Restore bool   `yaml:"restore"` // загружать мир из снимка вместо файлов регионов
}

type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// GetHTTPPort возвращает порт HTTP API с поддержкой fallback значений
func (s *ServerConfig) GetHTTPPort() int {
	return getPortWithEnvFallback(s.HTTPPort, "VOXEL_HTTP_PORT", 8088)
}

// GetManifest возвращает путь к манифесту: config -> env VOXEL_MANIFEST
func (w *WorldConfig) GetManifest() string {
	if w.Manifest != "" {
		return w.Manifest
	}
	return os.Getenv("VOXEL_MANIFEST")
}

// GetServiceName возвращает имя сервиса для трассировки
func (t *TelemetryConfig) GetServiceName() string {
	if t.ServiceName != "" {
		return t.ServiceName
	}
	return "voxel-world"
}

// GetDir возвращает каталог логов
func (l *LoggingConfig) GetDir() string {
	if l.Dir != "" {
		return l.Dir
	}
	return "logs"
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.Storage.Restore && c.Storage.Path == "" {
		return fmt.Errorf("storage.restore требует storage.path")
	}
	if c.Storage.Save && c.Storage.Path == "" {
		return fmt.Errorf("storage.save требует storage.path")
	}
	if !c.Storage.Restore && c.World.GetManifest() == "" && len(c.World.Regions) == 0 {
		return fmt.Errorf("не задан источник мира: world.manifest, world.regions или storage.restore")
	}
	return nil
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV VOXEL_CONFIG; если и он не задан,
// возвращает пустую конфигурацию (используются дефолты и переменные окружения).
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return &Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}

	return &cfg, nil
}
