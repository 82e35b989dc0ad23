package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Enabled       bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host          string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port          string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	ChannelPrefix string `yaml:"channel-prefix" env-default:"memoicons:events"`
	Buffer        int    `yaml:"buffer" env-default:"256"`
}

// Game holds the round settings. The number of pairs on the board is len(Icons).
type Game struct {
	Icons          []string      `yaml:"icons" env-default:"img/i1.png,img/i2.png,img/i3.png,img/i4.png"`
	RevealSettle   time.Duration `yaml:"reveal-settle" env-default:"300ms"`
	MismatchSettle time.Duration `yaml:"mismatch-settle" env-default:"500ms"`
	VictorySettle  time.Duration `yaml:"victory-settle" env-default:"800ms"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads the config file at path, applying env overrides and defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
