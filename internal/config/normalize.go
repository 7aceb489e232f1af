package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeBank()
	c.normalizeAgent()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = defaultCatalogBaseURL
	}
	if c.Catalog.YearID <= 0 {
		c.Catalog.YearID = defaultCatalogYearID
	}
	if len(c.Catalog.Categories) == 0 {
		c.Catalog.Categories = append([]int64(nil), defaultCategories...)
	}
	if c.Catalog.RequestTimeout <= 0 {
		c.Catalog.RequestTimeout = defaultCatalogTimeout
	}
}

func (c *Config) normalizeBank() {
	c.Bank.BaseURL = strings.TrimRight(strings.TrimSpace(c.Bank.BaseURL), "/")
	if c.Bank.BaseURL == "" {
		c.Bank.BaseURL = defaultBankBaseURL
	}
	c.Bank.TeachingType = strings.ToUpper(strings.TrimSpace(c.Bank.TeachingType))
	if c.Bank.TeachingType == "" {
		c.Bank.TeachingType = defaultBankTeachingType
	}
	if c.Bank.MinSimilarity <= 0 {
		c.Bank.MinSimilarity = defaultBankMinSimilarity
	}
	if c.Bank.OfficialThreshold <= 0 {
		c.Bank.OfficialThreshold = defaultOfficialThreshold
	}
	if c.Bank.RequestTimeout <= 0 {
		c.Bank.RequestTimeout = defaultBankRequestTimeout
	}
	if c.Bank.ConnectTimeout <= 0 {
		c.Bank.ConnectTimeout = defaultBankConnectTimeout
	}
}

func (c *Config) normalizeAgent() {
	if c.Agent.Workers <= 0 {
		c.Agent.Workers = defaultWorkers
	}
	if c.Agent.MaxQuestions < 0 {
		c.Agent.MaxQuestions = 0
	}
	if c.Agent.DelayMinMillis <= 0 {
		c.Agent.DelayMinMillis = defaultDelayMinMillis
	}
	if c.Agent.DelayMaxMillis < c.Agent.DelayMinMillis {
		c.Agent.DelayMaxMillis = c.Agent.DelayMinMillis
	}
	if c.Agent.MaxConsecutiveErrors <= 0 {
		c.Agent.MaxConsecutiveErrors = defaultMaxConsecutiveErrors
	}
	if c.Agent.LongPauseSeconds <= 0 {
		c.Agent.LongPauseSeconds = defaultLongPauseSeconds
	}
	if c.Agent.MaxServerDownRounds <= 0 {
		c.Agent.MaxServerDownRounds = defaultMaxServerDownRounds
	}
	if c.Agent.EmptySweepSeconds <= 0 {
		c.Agent.EmptySweepSeconds = defaultEmptySweepSeconds
	}
	if c.Auth.TimeoutSeconds <= 0 {
		c.Auth.TimeoutSeconds = defaultAuthTimeoutSeconds
	}
}

func (c *Config) normalizeCache() error {
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = defaultCacheTTLHours
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = filepath.Join(c.Paths.StateDir, "bank_cache.db")
		return nil
	}
	expanded, err := expandPath(c.Cache.Path)
	if err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	c.Cache.Path = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
