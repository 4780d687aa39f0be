package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/superxuu/depu/internal/util"
)

func TestInstance(t *testing.T) {
	clear1 := util.SetEnv("DEPU_CONFIG_FILE", "testdata/config.yaml")
	defer clear1()
	clear2 := util.SetEnv("DEPU_JWT_SECRET", "env-secret")
	defer clear2()

	a := assert.New(t)
	a.NoError(Load())
	cfg := Instance()
	a.Equal(":9000", cfg.ListenAddr)
	a.Equal("env-secret", cfg.JWT.Secret)
	a.Equal(20, cfg.Game.BigBlind)
	a.Equal(2000, cfg.Game.StartingChips)

	// values absent from the file keep their defaults
	a.Equal(6, cfg.Game.MaxSeats)
	a.Equal(30, cfg.Game.ActionTimeoutSeconds)

	// ensure that it's only loaded once
	_ = os.Setenv("DEPU_JWT_SECRET", "another-secret")
	// ensure we aren't using a pointer
	cfg.JWT.Secret = "bad"
	cfg = Instance()
	a.Equal("env-secret", cfg.JWT.Secret)
}

func TestDefaults(t *testing.T) {
	clear := util.SetEnv("DEPU_CONFIG_FILE", "testdata/does-not-exist.yaml")
	defer clear()

	assert.NoError(t, Load())
	cfg := Instance()
	assert.Equal(t, ":5080", cfg.ListenAddr)
	assert.Equal(t, 10, cfg.Game.BigBlind)
	assert.Equal(t, 1000, cfg.Game.StartingChips)
	assert.Equal(t, 20, cfg.Game.SinglePlayerCountdownSeconds)
}
