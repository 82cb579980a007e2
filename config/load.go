package config

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
)

// Load reads the TOML file at path over the default configuration. A missing
// file is not an error, the defaults are used. Secrets set in the environment
// always win over both.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, err
			}
		case !os.IsNotExist(err):
			return cfg, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Reward.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyEnv(cfg *Configs) {
	if secret := os.Getenv("REWARDS_TOKEN_SECRET"); secret != "" {
		cfg.Auth.TokenSecret = secret
	}

	if secret := os.Getenv("REWARDS_WEBHOOK_SECRET"); secret != "" {
		cfg.Payment.WebhookSecret = secret
	}

	if password := os.Getenv("REWARDS_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
}

// Validate rejects redemption settings the conversion cannot work with.
func (c RewardConfigs) Validate() error {
	if c.XPPerDollar <= 0 {
		return fmt.Errorf("reward: XPPerDollar must be positive, got %d", c.XPPerDollar)
	}

	if c.MaxOrderPercent <= 0 || c.MaxOrderPercent > 100 {
		return fmt.Errorf("reward: MaxOrderPercent must be in (0, 100], got %d", c.MaxOrderPercent)
	}

	if c.MinRedemptionXP < 0 {
		return fmt.Errorf("reward: MinRedemptionXP must not be negative, got %d", c.MinRedemptionXP)
	}

	return nil
}
