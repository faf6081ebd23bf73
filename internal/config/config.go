package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Board    BoardConfig    `mapstructure:"board"`
	Bidding  BiddingConfig  `mapstructure:"bidding"`
	Archiver ArchiverConfig `mapstructure:"archiver"`
	Log      LogConfig      `mapstructure:"log"`
	Instance InstanceConfig `mapstructure:"instance"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MySQLConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// BoardConfig controls the countdown refresh and the fixed item catalog.
type BoardConfig struct {
	TickInterval    time.Duration `mapstructure:"tick_interval"`
	ProgressWindow  time.Duration `mapstructure:"progress_window"`
	ProgressPerItem bool          `mapstructure:"progress_per_item"`
	Catalog         []CatalogItem `mapstructure:"catalog"`
}

type CatalogItem struct {
	Name          string        `mapstructure:"name"`
	Description   string        `mapstructure:"description"`
	StartingPrice float64       `mapstructure:"starting_price"`
	Duration      time.Duration `mapstructure:"duration"`
}

type BiddingConfig struct {
	EnforceMinIncrement bool      `mapstructure:"enforce_min_increment"`
	QuickBidIncrements  []float64 `mapstructure:"quick_bid_increments"`
}

// ArchiverConfig controls the lease that lets one bid-archiver write at a time.
type ArchiverConfig struct {
	LeaderKey     string        `mapstructure:"leader_key"`
	LeaderTTL     time.Duration `mapstructure:"leader_ttl"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type InstanceConfig struct {
	ID string `mapstructure:"id"`
}

// DefaultCatalog is the board shipped when no catalog is configured.
func DefaultCatalog() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"name":           "Vintage Rolex Submariner",
			"description":    "A stunning 1960s Rolex Submariner ref. 5513. Original dial, pristine condition. Includes box and papers.",
			"starting_price": 1000.0,
			"duration":       60 * time.Minute,
		},
		{
			"name":           "Ming Dynasty Vase",
			"description":    "Exquisite 15th century Ming vase featuring traditional blue and white porcelain. Height: 30cm. Museum quality.",
			"starting_price": 2500.0,
			"duration":       45 * time.Minute,
		},
		{
			"name":           "Monet Original Sketch",
			"description":    "Rare preliminary sketch by Claude Monet. Dated 1923. Authenticated by Christie's. Size: 20x30cm.",
			"starting_price": 5000.0,
			"duration":       30 * time.Minute,
		},
	}
}

func Load() (*Config, error) {
	return load(viper.New(), "")
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	return load(viper.New(), configPath)
}

func load(v *viper.Viper, configPath string) (*Config, error) {
	// Set default values
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("mysql.enabled", false)
	v.SetDefault("mysql.dsn", "auction_user:auction_pass@tcp(localhost:3306)/auction_board?parseTime=true")
	v.SetDefault("mysql.max_open_conns", 25)
	v.SetDefault("mysql.max_idle_conns", 10)
	v.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("board.tick_interval", time.Second)
	v.SetDefault("board.progress_window", 60*time.Minute)
	v.SetDefault("board.progress_per_item", false)
	v.SetDefault("board.catalog", DefaultCatalog())
	v.SetDefault("bidding.enforce_min_increment", false)
	v.SetDefault("bidding.quick_bid_increments", []float64{50, 100, 500})
	v.SetDefault("archiver.leader_key", "bid_archiver_leader")
	v.SetDefault("archiver.leader_ttl", 30*time.Second)
	v.SetDefault("archiver.retry_interval", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("instance.id", "auction-board-1")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/auction-board/")
	}

	// Environment variable support
	v.AutomaticEnv()

	// Environment variable mappings
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("mysql.enabled", "MYSQL_ENABLED")
	v.BindEnv("mysql.dsn", "MYSQL_DSN")
	v.BindEnv("mysql.max_open_conns", "MYSQL_MAX_OPEN_CONNS")
	v.BindEnv("mysql.max_idle_conns", "MYSQL_MAX_IDLE_CONNS")
	v.BindEnv("mysql.conn_max_lifetime", "MYSQL_CONN_MAX_LIFETIME")
	v.BindEnv("board.tick_interval", "BOARD_TICK_INTERVAL")
	v.BindEnv("board.progress_window", "BOARD_PROGRESS_WINDOW")
	v.BindEnv("board.progress_per_item", "BOARD_PROGRESS_PER_ITEM")
	v.BindEnv("bidding.enforce_min_increment", "BIDDING_ENFORCE_MIN_INCREMENT")
	v.BindEnv("archiver.leader_ttl", "ARCHIVER_LEADER_TTL")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("instance.id", "INSTANCE_ID")

	if err := v.ReadInConfig(); err != nil {
		// An explicit path must exist; the search paths are optional.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the board cannot run with.
func (c *Config) Validate() error {
	if c.Board.TickInterval <= 0 {
		return fmt.Errorf("board.tick_interval must be positive, got %s", c.Board.TickInterval)
	}
	if !c.Board.ProgressPerItem && c.Board.ProgressWindow <= 0 {
		return fmt.Errorf("board.progress_window must be positive, got %s", c.Board.ProgressWindow)
	}
	if len(c.Board.Catalog) == 0 {
		return fmt.Errorf("board.catalog is empty")
	}
	return nil
}

// GetConfigString returns a formatted string representation of the config
func (c *Config) GetConfigString() string {
	return fmt.Sprintf(
		"Server: %s:%d, Redis: %s (enabled=%t), MySQL enabled=%t, Items: %d, Tick: %s, Instance: %s",
		c.Server.Host,
		c.Server.Port,
		c.Redis.Address,
		c.Redis.Enabled,
		c.MySQL.Enabled,
		len(c.Board.Catalog),
		c.Board.TickInterval,
		c.Instance.ID,
	)
}
