package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Config struct {
	DB *gorm.DB `toml:"-"`

	ProxyPath string   `toml:"proxy_path"` // used in webhook-sender
	ProxyList []string `toml:"-"`          // reads proxies from ProxyPath and fills it with

	Prod_env bool

	Secrets Secrets `toml:"-"`

	Postgres struct {
		Host     string
		User     string
		Password string
		Db_name  string
		Port     uint16
		Ssl_mode string
	}
	Nats struct {
		Enabled     bool
		Servers     string   `toml:"-"`
		TomlServers []string `toml:"servers"`
		User        string
		Password    string
	}
	Redis struct {
		Addr     string // empty - in-process locks, single instance only
		Password string
		Db       int
	}
	Api struct {
		Ipv4  string
		Proto string
	} `toml:"web"`
	Solana struct {
		Rpc     string
		Ws      string
		Testnet bool
		Timeout duration `toml:"timeout"`
	}
	Oracle struct {
		BaseUrl  string   `toml:"base_url"`
		Base     string   `toml:"base"`  // settlement asset
		Quote    string   `toml:"quote"` // pricing currency
		Timeout  duration `toml:"timeout"`
		CacheTtl duration `toml:"cache_ttl"` // 0 disables the rate cache
	}
	Payments struct {
		Ttl              duration        `toml:"ttl"`
		Tolerance        decimal.Decimal `toml:"-"`
		ToleranceStr     string          `toml:"tolerance"`
		DisplayPrecision int32           `toml:"display_precision"`
		SweepFeeLamports uint64          `toml:"sweep_fee_lamports"`
		SweepWorkers     int             `toml:"sweep_workers"`
		SweepLockTtl     duration        `toml:"sweep_lock_ttl"`
		ExpireEvery      duration        `toml:"expire_every"`
		InvoiceRateLimit int             `toml:"invoice_rate_limit"` // per client ip per 30 seconds
	}
	Notify struct {
		WebhookUrl string   `toml:"webhook_url"`
		Every      duration `toml:"every"`
	}
}

// read from the environment, never from the toml file
type Secrets struct {
	SecretKey        string `envconfig:"SECRET_KEY" required:"true"` // hex, 32 bytes
	OperatorKeyHash  string `envconfig:"OPERATOR_KEY_HASH"`          // bcrypt
	OperatorWallet   string `envconfig:"OPERATOR_WALLET"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD"`
	NatsPassword     string `envconfig:"NATS_PASSWORD"`
	RedisPassword    string `envconfig:"REDIS_PASSWORD"`
}

const ENV_PREFIX = "CHECKOUT"

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func ReadConfig() *Config {
	byte_config, err := os.ReadFile(os.Getenv("CONFIG"))
	if err != nil {
		panic(err)
	}

	config, err := Parse(string(byte_config))
	if err != nil {
		panic(err)
	}

	if err := envconfig.Process(ENV_PREFIX, &config.Secrets); err != nil {
		panic(err)
	}
	config.applySecrets()

	if config.ProxyPath != "" {
		config.ProxyList = GetProxyList(config.ProxyPath)
	}

	if err := config.Validate(); err != nil {
		panic(err)
	}

	return config
}

// decodes toml and fills defaults
func Parse(data string) (*Config, error) {
	var config Config
	if _, err := toml.Decode(data, &config); err != nil {
		return nil, err
	}

	config.setDefaults()

	if config.Payments.ToleranceStr != "" {
		tolerance, err := decimal.NewFromString(config.Payments.ToleranceStr)
		if err != nil {
			return nil, fmt.Errorf("payments.tolerance: %w", err)
		}
		config.Payments.Tolerance = tolerance
	}

	return &config, nil
}

func (c *Config) setDefaults() {
	if c.Api.Ipv4 == "" {
		c.Api.Ipv4 = "0.0.0.0:8080"
	}
	if c.Api.Proto == "" {
		c.Api.Proto = "http"
	}
	if c.Solana.Timeout.Duration == 0 {
		c.Solana.Timeout.Duration = 20 * time.Second
	}
	if c.Oracle.BaseUrl == "" {
		c.Oracle.BaseUrl = "https://api.binance.com"
	}
	if c.Oracle.Base == "" {
		c.Oracle.Base = "SOL"
	}
	if c.Oracle.Quote == "" {
		c.Oracle.Quote = "USDT"
	}
	if c.Oracle.Timeout.Duration == 0 {
		c.Oracle.Timeout.Duration = 10 * time.Second
	}
	if c.Payments.Ttl.Duration == 0 {
		c.Payments.Ttl.Duration = 30 * time.Minute
	}
	if c.Payments.ToleranceStr == "" {
		c.Payments.Tolerance = decimal.RequireFromString("0.01")
	}
	if c.Payments.DisplayPrecision == 0 {
		c.Payments.DisplayPrecision = 4
	}
	if c.Payments.SweepFeeLamports == 0 {
		c.Payments.SweepFeeLamports = 5000
	}
	if c.Payments.SweepWorkers == 0 {
		c.Payments.SweepWorkers = 4
	}
	if c.Payments.SweepLockTtl.Duration == 0 {
		c.Payments.SweepLockTtl.Duration = 2 * time.Minute
	}
	if c.Payments.ExpireEvery.Duration == 0 {
		c.Payments.ExpireEvery.Duration = time.Minute
	}
	if c.Payments.InvoiceRateLimit == 0 {
		c.Payments.InvoiceRateLimit = 30
	}
	if c.Notify.Every.Duration == 0 {
		c.Notify.Every.Duration = 10 * time.Second
	}
}

func (c *Config) applySecrets() {
	if c.Secrets.PostgresPassword != "" {
		c.Postgres.Password = c.Secrets.PostgresPassword
	}
	if c.Secrets.NatsPassword != "" {
		c.Nats.Password = c.Secrets.NatsPassword
	}
	if c.Secrets.RedisPassword != "" {
		c.Redis.Password = c.Secrets.RedisPassword
	}

	var formatedServers []string
	for _, x := range c.Nats.TomlServers {
		if c.Nats.User != "" {
			formatedServers = append(formatedServers, fmt.Sprintf("nats://%s:%s@%s", c.Nats.User, c.Nats.Password, x))
			continue
		}
		formatedServers = append(formatedServers, "nats://"+x)
	}
	c.Nats.Servers = strings.Join(formatedServers, ",")
}

func (c *Config) Validate() error {
	key, err := hex.DecodeString(c.Secrets.SecretKey)
	if err != nil {
		return fmt.Errorf("%s_SECRET_KEY must be hex: %w", ENV_PREFIX, err)
	}
	if len(key) != 32 {
		return fmt.Errorf("%s_SECRET_KEY must be 32 bytes, got %d", ENV_PREFIX, len(key))
	}

	if c.Payments.Tolerance.IsNegative() {
		return fmt.Errorf("payments.tolerance must not be negative")
	}
	if c.Payments.Ttl.Duration <= 0 {
		return fmt.Errorf("payments.ttl must be positive")
	}
	if c.Payments.DisplayPrecision < 0 || c.Payments.DisplayPrecision > 9 {
		return fmt.Errorf("payments.display_precision must be between 0 and 9")
	}
	if c.Payments.SweepWorkers < 1 {
		return fmt.Errorf("payments.sweep_workers must be at least 1")
	}
	// the lock has to outlive a balance read plus a transfer, each bounded by solana.timeout
	if c.Payments.SweepLockTtl.Duration <= 2*c.Solana.Timeout.Duration {
		return fmt.Errorf("payments.sweep_lock_ttl (%s) must exceed twice solana.timeout (%s)", c.Payments.SweepLockTtl.Duration, c.Solana.Timeout.Duration)
	}
	if c.Oracle.CacheTtl.Duration < 0 {
		return fmt.Errorf("oracle.cache_ttl must not be negative")
	}
	if c.Nats.Enabled && len(c.Nats.TomlServers) == 0 {
		return fmt.Errorf("nats.servers is empty")
	}

	return nil
}

func GetProxyList(path string) []string {
	proxyList, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var proxyListArray []string
	for _, line := range strings.Split(string(proxyList), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		proxyListArray = append(proxyListArray, line)
	}
	return proxyListArray
}
