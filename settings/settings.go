package settings

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Config holds everything the service needs at startup. Values come from the
// YAML file and can be overridden by environment variables so that deployment
// never requires editing the file (webhook URLs and credentials in particular).
type Config struct {
	ServerAddr string `yaml:"server_addr"`

	MySQLDSN  string `yaml:"mysql_dsn"`
	RedisAddr string `yaml:"redis_addr"`
	RabbitDSN string `yaml:"rabbit_dsn"`

	// External generation webhooks (text-to-image and image-to-3D).
	ImageWebhookURL   string `yaml:"image_webhook_url"`
	ModelWebhookURL   string `yaml:"model_webhook_url"`
	WebhookTimeoutSec int    `yaml:"webhook_timeout_sec"`

	JWTSecret string `yaml:"jwt_secret"`

	SnowflakeMachineID int64 `yaml:"snowflake_machine_id"`

	// Print dispatch
	PrintSpoolDir  string `yaml:"print_spool_dir"`
	PrintTokenCost int64  `yaml:"print_token_cost"`
	InitialTokens  int64  `yaml:"initial_tokens"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
	if c.WebhookTimeoutSec <= 0 {
		c.WebhookTimeoutSec = 120
	}
	if c.PrintSpoolDir == "" {
		c.PrintSpoolDir = "./spool"
	}
	if c.PrintTokenCost <= 0 {
		c.PrintTokenCost = 20
	}
	if c.InitialTokens <= 0 {
		c.InitialTokens = 100
	}
	if c.SnowflakeMachineID <= 0 {
		c.SnowflakeMachineID = 1
	}
}

func (c *Config) applyEnv() {
	overrideString(&c.MySQLDSN, "CUDLIY_MYSQL_DSN")
	overrideString(&c.RedisAddr, "CUDLIY_REDIS_ADDR")
	overrideString(&c.RabbitDSN, "CUDLIY_RABBIT_DSN")
	overrideString(&c.ImageWebhookURL, "CUDLIY_IMAGE_WEBHOOK_URL")
	overrideString(&c.ModelWebhookURL, "CUDLIY_MODEL_WEBHOOK_URL")
	overrideString(&c.JWTSecret, "CUDLIY_JWT_SECRET")
	if v := os.Getenv("CUDLIY_WEBHOOK_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.WebhookTimeoutSec = n
		}
	}
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
