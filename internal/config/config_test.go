package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)

	check.Equal(t, 8080, cfg.Server.Port)
	check.False(t, cfg.Redis.Enabled)
	check.False(t, cfg.MySQL.Enabled)
	check.Equal(t, time.Second, cfg.Board.TickInterval)
	check.Equal(t, 60*time.Minute, cfg.Board.ProgressWindow)
	check.False(t, cfg.Board.ProgressPerItem)
	check.False(t, cfg.Bidding.EnforceMinIncrement)
	check.Equal(t, []float64{50, 100, 500}, cfg.Bidding.QuickBidIncrements)
	check.Equal(t, "bid_archiver_leader", cfg.Archiver.LeaderKey)
	check.Equal(t, 30*time.Second, cfg.Archiver.LeaderTTL)

	assert.Equal(t, 3, len(cfg.Board.Catalog))
	check.Equal(t, "Vintage Rolex Submariner", cfg.Board.Catalog[0].Name)
	check.Equal(t, 1000.0, cfg.Board.Catalog[0].StartingPrice)
	check.Equal(t, 60*time.Minute, cfg.Board.Catalog[0].Duration)
	check.Equal(t, 30*time.Minute, cfg.Board.Catalog[2].Duration)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("BOARD_TICK_INTERVAL", "2s")
	t.Setenv("BOARD_PROGRESS_PER_ITEM", "true")
	t.Setenv("BIDDING_ENFORCE_MIN_INCREMENT", "true")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	assert.NoError(t, err)

	check.Equal(t, 9090, cfg.Server.Port)
	check.Equal(t, 2*time.Second, cfg.Board.TickInterval)
	check.True(t, cfg.Board.ProgressPerItem)
	check.True(t, cfg.Bidding.EnforceMinIncrement)
	check.True(t, cfg.Redis.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	content := `
board:
  tick_interval: 500ms
  catalog:
    - name: Stradivarius Violin
      description: 1715, excellent tone
      starting_price: 750000
      duration: 90m
log:
  level: debug
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFromFile(path)
	assert.NoError(t, err)

	check.Equal(t, 500*time.Millisecond, cfg.Board.TickInterval)
	check.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 1, len(cfg.Board.Catalog))
	check.Equal(t, "Stradivarius Violin", cfg.Board.Catalog[0].Name)
	check.Equal(t, 750000.0, cfg.Board.Catalog[0].StartingPrice)
	check.Equal(t, 90*time.Minute, cfg.Board.Catalog[0].Duration)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	check.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Board: BoardConfig{TickInterval: 0, ProgressWindow: time.Hour, Catalog: []CatalogItem{{Name: "Lot"}}}}
	check.Error(t, cfg.Validate())

	cfg.Board.TickInterval = time.Second
	check.NoError(t, cfg.Validate())

	cfg.Board.ProgressWindow = 0
	check.Error(t, cfg.Validate())

	cfg.Board.ProgressPerItem = true
	check.NoError(t, cfg.Validate())

	cfg.Board.Catalog = nil
	check.Error(t, cfg.Validate())
}
