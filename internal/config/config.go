package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8686" validate:"min=1000,max=65535"`

	BoardRows int `env:"BOARD_ROWS" envDefault:"10" validate:"min=5,max=64"`
	BoardCols int `env:"BOARD_COLS" envDefault:"10" validate:"min=5,max=64"`

	// InboxCapacity bounds each player's broadcast queue; overflow
	// drops the oldest event.
	InboxCapacity int `env:"INBOX_CAPACITY" envDefault:"256" validate:"min=16"`

	// FlushIntervalMs paces the retry of writes that would block.
	FlushIntervalMs int `env:"FLUSH_INTERVAL_MS" envDefault:"50" validate:"min=1,max=1000"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
