package foodagent

import "time"

type ModelConfig struct {
	ModelID     string  `env:"MODEL_ID,default=us.anthropic.claude-3-7-sonnet-20250219-v1:0"`
	MaxTokens   int32   `env:"MAX_TOKENS,default=512"`
	Temperature float32 `env:"TEMPERATURE,default=0.2"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}

type AgentConfig struct {
	DataDir            string        `env:"DATA_DIR,default=artifacts"`
	CatalogKey         string        `env:"CATALOG_KEY,default=catalog.yaml"`
	StoreDriver        string        `env:"STORE_DRIVER,default=file"`
	SQLitePath         string        `env:"SQLITE_PATH,default=artifacts/foodagent.db"`
	S3Bucket           string        `env:"ARTIFACTS_S3_BUCKET"`
	S3Prefix           string        `env:"ARTIFACTS_S3_PREFIX"`
	LLMProvider        string        `env:"LLM_PROVIDER,default=none"`
	BaseOllamaEndpoint string        `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	SlackWebhookURL    string        `env:"SLACK_WEBHOOK_URL"`
	SlackChannel       string        `env:"SLACK_CHANNEL,default=#orders"`
	RandomSeed         int64         `env:"RANDOM_SEED,default=0"`
	ThinkingDelay      time.Duration `env:"THINKING_DELAY,default=0s"`
	DispatchLog        string        `env:"DISPATCH_LOG,default=none"`
	OtelEnabled        bool          `env:"OTEL_ENABLED,default=false"`
}
