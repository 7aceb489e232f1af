package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateBank(); err != nil {
		return err
	}
	if err := c.validateAgent(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCatalog() error {
	if _, err := url.Parse(c.Catalog.BaseURL); err != nil {
		return fmt.Errorf("catalog.base_url: %w", err)
	}
	if len(c.Catalog.Categories) == 0 {
		return errors.New("catalog.categories must name at least one category")
	}
	seen := make(map[int64]struct{}, len(c.Catalog.Categories))
	for _, id := range c.Catalog.Categories {
		if id <= 0 {
			return fmt.Errorf("catalog.categories: invalid category id %d", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("catalog.categories: duplicate category id %d", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (c *Config) validateBank() error {
	if _, err := url.Parse(c.Bank.BaseURL); err != nil {
		return fmt.Errorf("bank.base_url: %w", err)
	}
	switch c.Bank.TeachingType {
	case "MEDIO", "FUNDAMENTAL", "SUPERIOR":
	default:
		return fmt.Errorf("bank.teaching_type: unsupported value %q", c.Bank.TeachingType)
	}
	if c.Bank.MinSimilarity < 0 || c.Bank.MinSimilarity > 1 {
		return errors.New("bank.min_similarity must be between 0 and 1")
	}
	if c.Bank.OfficialThreshold < 0 || c.Bank.OfficialThreshold > 1 {
		return errors.New("bank.official_threshold must be between 0 and 1")
	}
	if c.Bank.OfficialThreshold < c.Bank.MinSimilarity {
		return errors.New("bank.official_threshold must not be below bank.min_similarity")
	}
	return nil
}

func (c *Config) validateAgent() error {
	if c.Agent.Workers > 16 {
		return errors.New("agent.workers above 16 is not supported; the bank throttles aggressive clients")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}
