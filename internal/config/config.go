package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/superxuu/depu/internal/util"
)

// Config provides configuration for the poker server
type Config struct {
	loaded     bool
	ListenAddr string `yaml:"listenAddr" envconfig:"listen_addr"`
	JWT        struct {
		Secret string `yaml:"secret" envconfig:"secret"`
	}
	Log struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
	Game Game
}

// Game configures the table and its hands
type Game struct {
	SmallBlind    int `yaml:"smallBlind" envconfig:"small_blind"`
	BigBlind      int `yaml:"bigBlind" envconfig:"big_blind"`
	StartingChips int `yaml:"startingChips" envconfig:"starting_chips"`
	MaxSeats      int `yaml:"maxSeats" envconfig:"max_seats"`

	ActionTimeoutSeconds         int `yaml:"actionTimeoutSeconds" envconfig:"action_timeout_seconds"`
	OfflineFoldGraceSeconds      int `yaml:"offlineFoldGraceSeconds" envconfig:"offline_fold_grace_seconds"`
	HeartbeatGraceSeconds        int `yaml:"heartbeatGraceSeconds" envconfig:"heartbeat_grace_seconds"`
	SinglePlayerCountdownSeconds int `yaml:"singlePlayerCountdownSeconds" envconfig:"single_player_countdown_seconds"`
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// A missing config file is not an error; the defaults are used instead
func Load() error {
	config = DefaultConfig()

	configFile := util.Getenv("DEPU_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err == nil {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := envconfig.Process("depu", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	var c Config
	c.ListenAddr = ":5080"
	c.Game = Game{
		SmallBlind:                   5,
		BigBlind:                     10,
		StartingChips:                1000,
		MaxSeats:                     6,
		ActionTimeoutSeconds:         30,
		OfflineFoldGraceSeconds:      5,
		HeartbeatGraceSeconds:        30,
		SinglePlayerCountdownSeconds: 20,
	}

	return c
}
