package env

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	MongoDBDriver = "mongodb"
	MemoryDriver  = "memory"
)

type Env struct {
	Mode     string `validate:"required,oneof=development production test"`
	LogLevel string `validate:"required,oneof=trace debug info warn error"`
	PageSize int    `validate:"min=1,max=100"`
	Server   ServerConfig
	Storage  StorageConfig
	MongoDB  MongoDBConfig
}

type ServerConfig struct {
	Port           int           `validate:"min=1,max=65535"`
	RequestTimeout time.Duration `validate:"gt=0"`
}

type StorageConfig struct {
	Driver string `validate:"required,oneof=mongodb memory"`
}

type MongoDBConfig struct {
	URI            string
	Host           string `validate:"required_without=URI"`
	Port           int    `validate:"min=0,max=65535"`
	User           string
	Password       string
	DB             string        `validate:"required"`
	ConnectTimeout time.Duration `validate:"gt=0"`
}

// Address returns the connection string, preferring an explicit URI.
func (c MongoDBConfig) Address() string {

	if c.URI != "" {
		return c.URI
	}

	return fmt.Sprintf("mongodb://%s:%d", c.Host, c.Port)
}

func (e Env) IsDev() bool {
	return e.Mode == "development"
}

// Load reads configuration from the process environment, falling back to an
// optional .env file in the working directory and then to defaults.
func Load() (*Env, error) {

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_REQUEST_TIMEOUT", "10s")
	v.SetDefault("STORAGE_DRIVER", MongoDBDriver)
	v.SetDefault("MONGODB_HOST", "localhost")
	v.SetDefault("MONGODB_PORT", 27017)
	v.SetDefault("MONGODB_NAME", "e-health")
	v.SetDefault("MONGODB_CONNECT_TIMEOUT", "10s")

	// A missing .env file is fine, the environment and defaults still apply.
	if err := v.ReadInConfig(); err != nil && !isMissingConfig(err) {
		return nil, fmt.Errorf("read .env failed: %w", err)
	}

	env := Env{
		Mode:     strings.ToLower(v.GetString("ENV")),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
		PageSize: v.GetInt("PAGE_SIZE"),
		Server: ServerConfig{
			Port:           v.GetInt("SERVER_PORT"),
			RequestTimeout: v.GetDuration("SERVER_REQUEST_TIMEOUT"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		},
		MongoDB: MongoDBConfig{
			URI:            v.GetString("MONGODB_URI"),
			Host:           v.GetString("MONGODB_HOST"),
			Port:           v.GetInt("MONGODB_PORT"),
			User:           v.GetString("MONGODB_USER"),
			Password:       v.GetString("MONGODB_PASSWORD"),
			DB:             v.GetString("MONGODB_NAME"),
			ConnectTimeout: v.GetDuration("MONGODB_CONNECT_TIMEOUT"),
		},
	}

	if err := validator.New().Struct(env); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &env, nil
}

func isMissingConfig(err error) bool {

	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
}
