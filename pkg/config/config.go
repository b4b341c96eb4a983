package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const envFile = "./configs/.env"

var (
	once     sync.Once
	instance *Config
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	APIAddress string `env:"API_ADDRESS" envDefault:":8080"`
	// Storage selects the pets and users backend: postgres or memory.
	Storage  string         `env:"STORAGE" envDefault:"postgres"`
	Postgres PostgresConfig `envPrefix:"POSTGRES_"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"info"`

	TuningFile string `env:"VPET_TUNING_FILE"`
	// DecayInterval overrides the tuning file when set. Zero disables passive decay.
	DecayInterval *time.Duration `env:"DECAY_INTERVAL"`

	Admin AdminConfig `envPrefix:"ADMIN_"`
}

type PostgresConfig struct {
	Address  string `env:"DB_ADDRESS" envDefault:"localhost:5432"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	DB       string `env:"DB"`
}

// AdminConfig describes the account seeded on startup. Seeding is skipped when Email is empty.
type AdminConfig struct {
	Email    string `env:"EMAIL"`
	Username string `env:"USERNAME" envDefault:"admin"`
	Password string `env:"PASSWORD"`
}

// New loads ./configs/.env when it exists and parses the environment once.
func New() *Config {
	once.Do(func() {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Fatal("loading envs error: ", err)
		}
		cfg, err := Parse()
		if err != nil {
			log.Fatal("parsing config error: ", err)
		}
		instance = cfg
	})
	return instance
}

func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if c.DecayInterval != nil && *c.DecayInterval < 0 {
		return errors.New("decay interval must not be negative")
	}
	if c.Admin.Email != "" && c.Admin.Password == "" {
		return errors.New("admin password is required when admin email is set")
	}
	return nil
}
