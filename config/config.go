package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Configs struct {
	Env      string `default:"local"`
	LogLevel string `split_words:"true" default:"info"`

	// ChainFile points at a TOML file with the chain section and an optional
	// tier table.
	ChainFile string `split_words:"true"`

	Database         DatabaseConfigs
	ApiServer        APIServerConfigs `split_words:"true"`
	PrometheusServer ServerConfigs    `split_words:"true"`
	Auth             AuthConfigs
	Redis            RedisConfigs
	Kafka            KafkaConfigs
	Lifecycle        LifecycleConfigs
	Voting           VotingConfigs
	Leaderboard      LeaderboardConfigs
	Stream           StreamConfigs
	Webhook          WebhookConfigs

	Eth   EthConfigs   `ignored:"true"`
	Tiers []TierConfig `ignored:"true"`
}

// IsDevelopment enables the strict invariant mode.
func (c Configs) IsDevelopment() bool {
	return c.Env == "local" || c.Env == "dev"
}

type DatabaseConfigs struct {
	Driver   string `default:"sqlite"`
	Host     string `default:"localhost"`
	Port     string `default:"3306"`
	Database string `default:"wtfpad"`
	User     string
	Password string

	// SqlitePath is only used with the sqlite driver.
	SqlitePath string `split_words:"true" default:"wtfpad.db"`
}

func (d DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	ServerConfigs

	AllowedOrigins []string `split_words:"true" default:"*"`
	DefaultLimit   int      `split_words:"true" default:"100"`
	MaxLimit       int      `split_words:"true" default:"500"`
}

type AuthConfigs struct {
	TokenSecret  string        `split_words:"true" default:"change-me"`
	AccessToken  TokenConfigs  `split_words:"true"`
	NonceTTL     time.Duration `split_words:"true" default:"5m"`
	AdminWallets []string      `split_words:"true"`
}

type TokenConfigs struct {
	Name       string        `default:"access_token"`
	Expiration time.Duration `default:"24h"`
}

type RedisConfigs struct {
	Addr string `default:"localhost:6379"`
}

type KafkaConfigs struct {
	// Addr is empty when events stay inside the process.
	Addr    string
	GroupID string `split_words:"true" default:"wtfpad"`
}

type LifecycleConfigs struct {
	MaxDaysActive int           `split_words:"true" default:"5"`
	PresaleReseed int           `split_words:"true" default:"1200"`
	PresaleWindow time.Duration `split_words:"true" default:"24h"`
	BuilderXP     int           `split_words:"true" default:"10"`
}

type VotingConfigs struct {
	BaseAllowance int `split_words:"true" default:"10"`
}

type LeaderboardConfigs struct {
	DailyTTL   time.Duration `split_words:"true" default:"2m"`
	WeeklyTTL  time.Duration `split_words:"true" default:"5m"`
	MonthlyTTL time.Duration `split_words:"true" default:"10m"`
	AllTimeTTL time.Duration `split_words:"true" default:"15m"`
}

type StreamConfigs struct {
	HeartbeatInterval time.Duration `split_words:"true" default:"30s"`
	IdleTimeout       time.Duration `split_words:"true" default:"5m"`
}

// WebhookConfigs guards the presale mint webhook. The route refuses every
// request while Secret is empty.
type WebhookConfigs struct {
	Secret     string
	RateLimit  int           `split_words:"true" default:"100"`
	RateWindow time.Duration `split_words:"true" default:"1m"`
}

type EthConfigs struct {
	Chain               string            `toml:"chain"`
	Rpcs                []string          `toml:"rpcs"`
	TokenAddress        string            `toml:"token_address"`
	BalanceTTLSeconds   int               `toml:"balance_ttl_seconds"`
	PollIntervalSeconds int               `toml:"poll_interval_seconds"`
	StartBlockOffset    uint64            `toml:"start_block_offset"`
	FallbackBalances    map[string]uint64 `toml:"fallback_balances"`
	Contracts           []ContractConfig  `toml:"contracts"`
}

func (c EthConfigs) BalanceTTL() time.Duration {
	if c.BalanceTTLSeconds <= 0 {
		return time.Minute
	}

	return time.Duration(c.BalanceTTLSeconds) * time.Second
}

func (c EthConfigs) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 12 * time.Second
	}

	return time.Duration(c.PollIntervalSeconds) * time.Second
}

type ContractConfig struct {
	Address    string `toml:"address"`
	Name       string `toml:"name"`
	Type       string `toml:"type"`
	ProjectID  string `toml:"project_id"`
	StartBlock uint64 `toml:"start_block"`
	IsActive   bool   `toml:"is_active"`
}

type TierConfig struct {
	ID         int    `toml:"id"`
	Name       string `toml:"name"`
	MinBalance uint64 `toml:"min_balance"`
	BonusVotes int    `toml:"bonus_votes"`
}

type chainFile struct {
	Eth   EthConfigs   `toml:"eth"`
	Tiers []TierConfig `toml:"tiers"`
}

// Load reads .env (if present), the process environment and the chain file.
func Load() (Configs, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Configs{}, err
	}

	var cfg Configs
	if err := envconfig.Process("", &cfg); err != nil {
		return Configs{}, err
	}

	if cfg.ChainFile != "" {
		var file chainFile
		if _, err := toml.DecodeFile(cfg.ChainFile, &file); err != nil {
			return Configs{}, fmt.Errorf("cannot decode chain file %s: %w", cfg.ChainFile, err)
		}

		cfg.Eth = file.Eth
		cfg.Tiers = file.Tiers
	}

	return cfg, nil
}
