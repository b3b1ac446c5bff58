package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Address string `yaml:"address" env:"ADDRESS" env-default:":8080"`

	DBHost     string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort     int    `yaml:"db_port" env:"DB_PORT" env-default:"5432"`
	DBUser     string `yaml:"db_user" env:"DB_USER" env-default:"postgres"`
	DBPassword string `yaml:"db_password" env:"DB_PASSWORD"`
	DBName     string `yaml:"db_name" env:"DB_NAME" env-default:"taskradar"`

	OpenAIKey   string `yaml:"openai_key" env:"OPENAI_API_KEY"`
	OpenAIModel string `yaml:"openai_model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`

	// URL выгрузки задач (CSV) для /ingest
	IngestURL string `yaml:"ingest_url" env:"INGEST_URL"`
}

// MustLoad читает конфиг из файла, если путь пустой или файла нет — из env.
func MustLoad(configPath string) *Config {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read env: %s", err)
		}
		return &cfg
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				log.Fatalf("cannot read env: %s", err)
			}
			return &cfg
		}
		log.Fatalf("cannot read config %q: %s", configPath, err)
	}

	return &cfg
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}
