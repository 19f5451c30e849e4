package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Danielrabaneda/Salas/internal/ai"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DefaultProvider string `envconfig:"DEFAULT_PROVIDER" default:"openai"`
	DefaultModel    string `envconfig:"DEFAULT_MODEL" default:"gpt-4o-mini"`
	OpenAIKey       string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `envconfig:"OPENAI_BASE_URL"`
	OllamaHost      string `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`

	WordTimeout  time.Duration `envconfig:"WORD_TIMEOUT" default:"8s"`
	TitleTimeout time.Duration `envconfig:"TITLE_TIMEOUT" default:"10s"`
	TickInterval time.Duration `envconfig:"TICK_INTERVAL" default:"1s"`

	// Empty RedisAddr keeps sessions in memory.
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	// Empty RabbitMQURL disables event publishing.
	RabbitMQURL    string        `envconfig:"RABBITMQ_URL"`
	RabbitExchange string        `envconfig:"RABBITMQ_EXCHANGE" default:"ows.events"`
	PublishTimeout time.Duration `envconfig:"PUBLISH_TIMEOUT" default:"3s"`

	ExportEnabled bool   `envconfig:"EXPORT_ENABLED" default:"false"`
	ExportFile    string `envconfig:"EXPORT_FILE" default:"./stories.txt"`

	GMUser string `envconfig:"GM_USER"`
	GMPass string `envconfig:"GM_PASS"`
}

func FromEnv() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return c, nil
}

func (c Config) AI() ai.Config {
	return ai.Config{
		Provider:      c.DefaultProvider,
		Model:         c.DefaultModel,
		OpenAIKey:     c.OpenAIKey,
		OpenAIBaseURL: c.OpenAIBaseURL,
		OllamaHost:    c.OllamaHost,
	}
}
