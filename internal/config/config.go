package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr             = ":5000"
	DefaultDBDriver         = "sqlite"
	DefaultDBPath           = "./tasks.db"
	DefaultDBPort           = 5432
	DefaultModelBaseURL     = "http://localhost:11434/v1/"
	DefaultModelName        = "qwen2.5:7b"
	DefaultModelAPIKey      = "ollama"
	DefaultModelTimeout     = 30 * time.Second
	DefaultModelTemperature = 0.3
	DefaultModelMaxRetries  = 2
	DefaultOptimizeWorkers  = 4
)

type Config struct {
	Addr string `yaml:"addr"`

	DBDriver   string `yaml:"db_driver"`
	DBPath     string `yaml:"db_path"`
	DBHost     string `yaml:"db_host"`
	DBPort     int    `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`

	ModelBaseURL     string        `yaml:"model_base_url"`
	ModelName        string        `yaml:"model_name"`
	ModelAPIKey      string        `yaml:"model_api_key"`
	ModelTimeout     time.Duration `yaml:"model_timeout"`
	ModelTemperature float64       `yaml:"model_temperature"`
	ModelMaxRetries  int           `yaml:"model_max_retries"`

	OptimizeWorkers  int    `yaml:"optimize_workers"`
	OptimizeSchedule string `yaml:"optimize_schedule"`

	CORSOrigins []string `yaml:"cors_origins"`
	LogLevel    string   `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Addr:             DefaultAddr,
		DBDriver:         DefaultDBDriver,
		DBPath:           DefaultDBPath,
		DBPort:           DefaultDBPort,
		ModelBaseURL:     DefaultModelBaseURL,
		ModelName:        DefaultModelName,
		ModelAPIKey:      DefaultModelAPIKey,
		ModelTimeout:     DefaultModelTimeout,
		ModelTemperature: DefaultModelTemperature,
		ModelMaxRetries:  DefaultModelMaxRetries,
		OptimizeWorkers:  DefaultOptimizeWorkers,
		CORSOrigins:      []string{"*"},
		LogLevel:         "INFO",
	}
}

// Load layers defaults, an optional YAML file, a .env file and the process
// environment, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString(&c.Addr, "HTTP_ADDR")
	setString(&c.DBDriver, "DB_DRIVER")
	setString(&c.DBPath, "DB_PATH")
	setString(&c.DBHost, "DB_HOST")
	setString(&c.DBUser, "DB_USER")
	setString(&c.DBPassword, "DB_PASSWORD")
	setString(&c.DBName, "DB_NAME")
	setString(&c.ModelBaseURL, "MODEL_BASE_URL")
	setString(&c.ModelName, "MODEL_NAME")
	setString(&c.ModelAPIKey, "MODEL_API_KEY")
	setString(&c.OptimizeSchedule, "OPTIMIZE_SCHEDULE")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "DB_PORT")
		}
		c.DBPort = port
	}
	if v := os.Getenv("MODEL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "MODEL_TIMEOUT")
		}
		c.ModelTimeout = d
	}
	if v := os.Getenv("MODEL_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrap(err, "MODEL_TEMPERATURE")
		}
		c.ModelTemperature = f
	}
	if v := os.Getenv("MODEL_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "MODEL_MAX_RETRIES")
		}
		c.ModelMaxRetries = n
	}
	if v := os.Getenv("OPTIMIZE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "OPTIMIZE_WORKERS")
		}
		c.OptimizeWorkers = n
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres", "memory":
	default:
		return errors.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.ModelTimeout <= 0 {
		return errors.New("MODEL_TIMEOUT must be positive")
	}
	if c.ModelMaxRetries < 0 {
		return errors.New("MODEL_MAX_RETRIES must not be negative")
	}
	if c.OptimizeWorkers <= 0 {
		c.OptimizeWorkers = 1
	}
	return nil
}

// ConnString returns the DSN for the configured driver.
func (c *Config) ConnString() string {
	if c.DBDriver == "postgres" {
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
		)
	}
	return c.DBPath
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
