package config

const (
	defaultStateDir             = "~/.local/share/taglift"
	defaultLogDir               = "~/.local/share/taglift/logs"
	defaultCatalogBaseURL       = "http://localhost:8000"
	defaultCatalogYearID        = 3
	defaultCatalogTimeout       = 30
	defaultBankBaseURL          = "https://api-questoes.superprofessor.com.br/api"
	defaultBankTeachingType     = "MEDIO"
	defaultBankMinSimilarity    = 0.35
	defaultOfficialThreshold    = 0.80
	defaultBankRequestTimeout   = 60
	defaultBankConnectTimeout   = 15
	defaultAuthTimeoutSeconds   = 180
	defaultCacheTTLHours        = 24
	defaultWorkers              = 2
	defaultDelayMinMillis       = 500
	defaultDelayMaxMillis       = 1500
	defaultMaxConsecutiveErrors = 3
	defaultLongPauseSeconds     = 120
	defaultMaxServerDownRounds  = 10
	defaultEmptySweepSeconds    = 5
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// defaultCategories lists the catalog category IDs swept when the config does
// not name its own set, in sweep order.
var defaultCategories = []int64{12, 2, 11, 7, 14, 6, 8, 9, 15, 10, 5, 1}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Catalog: Catalog{
			BaseURL:        defaultCatalogBaseURL,
			YearID:         defaultCatalogYearID,
			Categories:     append([]int64(nil), defaultCategories...),
			RequestTimeout: defaultCatalogTimeout,
		},
		Bank: Bank{
			BaseURL:           defaultBankBaseURL,
			TeachingType:      defaultBankTeachingType,
			MinSimilarity:     defaultBankMinSimilarity,
			OfficialThreshold: defaultOfficialThreshold,
			RequestTimeout:    defaultBankRequestTimeout,
			ConnectTimeout:    defaultBankConnectTimeout,
		},
		Auth: Auth{
			TimeoutSeconds: defaultAuthTimeoutSeconds,
		},
		Cache: Cache{
			Enabled:  true,
			TTLHours: defaultCacheTTLHours,
		},
		Agent: Agent{
			Workers:              defaultWorkers,
			DelayMinMillis:       defaultDelayMinMillis,
			DelayMaxMillis:       defaultDelayMaxMillis,
			MaxConsecutiveErrors: defaultMaxConsecutiveErrors,
			LongPauseSeconds:     defaultLongPauseSeconds,
			MaxServerDownRounds:  defaultMaxServerDownRounds,
			EmptySweepSeconds:    defaultEmptySweepSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
