package config

const (
	defaultConfigPath           = "~/.config/cuesync/config.toml"
	defaultDataDir              = "~/.local/share/cuesync"
	defaultLogDir               = "~/.local/share/cuesync/logs"
	defaultAPIBind              = "127.0.0.1:7491"
	defaultTargetLanguage       = "zh-CN"
	defaultTranslationTimeout   = 120
	defaultTranslationAttempts  = 5
	defaultOpenAIBaseURL        = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel          = "gpt-4o"
	defaultGeminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel          = "gemini-1.5-pro"
	defaultTemperature          = 0.3
	defaultSpeechRate           = 1.0
	defaultSpeechLanguage       = "zh-CN"
	defaultStoreBackend         = StoreSQLite
	defaultRedisAddr            = "127.0.0.1:6379"
	defaultRedisPrefix          = "cuesync"
	defaultNavigationPollMillis = 1000
	defaultFetchTimeoutSeconds  = 15
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Translation provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Store backend names.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Speech rate bounds.
const (
	MinSpeechRate = 0.5
	MaxSpeechRate = 2.0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Translation: Translation{
			Provider:       ProviderOpenAI,
			TargetLanguage: defaultTargetLanguage,
			TimeoutSeconds: defaultTranslationTimeout,
			MaxAttempts:    defaultTranslationAttempts,
			OpenAI: ProviderSettings{
				BaseURL:     defaultOpenAIBaseURL,
				Model:       defaultOpenAIModel,
				Temperature: defaultTemperature,
			},
			Gemini: ProviderSettings{
				BaseURL:     defaultGeminiBaseURL,
				Model:       defaultGeminiModel,
				Temperature: defaultTemperature,
			},
		},
		Speech: Speech{
			Enabled:           false,
			Rate:              defaultSpeechRate,
			PreferredLanguage: defaultSpeechLanguage,
		},
		Store: Store{
			Backend:     defaultStoreBackend,
			RedisAddr:   defaultRedisAddr,
			RedisPrefix: defaultRedisPrefix,
		},
		Parse: Parse{
			LogDropped: true,
		},
		Host: Host{
			NavigationPollMillis: defaultNavigationPollMillis,
			FetchTimeoutSeconds:  defaultFetchTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
