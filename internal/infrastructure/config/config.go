package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET, required"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	TokenTTL      time.Duration `env:"TOKEN_TTL,       default=48h"`
	BcryptCost    int           `env:"BCRYPT_COST,     default=10"`
	PublicBaseURL string        `env:"PUBLIC_BASE_URL, default=http://localhost:8080"`

	Uploads UploadConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type UploadConfig struct {
	Dir            string `env:"UPLOAD_DIR,       default=public/image"`
	MaxImageBytes  int64  `env:"MAX_IMAGE_BYTES,  default=1048576"`
	PerHour        int    `env:"UPLOADS_PER_HOUR, default=30"`
	JanitorWorkers int    `env:"JANITOR_WORKERS,  default=2"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=voting_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsDevelopment reports whether human-readable logs should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(ctx context.Context, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
