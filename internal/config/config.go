// Package config loads the bot's settings: defaults, then an optional YAML
// file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address" validate:"required"`
	Environment   string `yaml:"environment" validate:"oneof=development staging production"`
	LogLevel      string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Completion service
	OpenAIAPIKey      string        `yaml:"-"`
	OpenAIBaseURL     string        `yaml:"openai_base_url" validate:"omitempty,url"`
	OpenAIModel       string        `yaml:"openai_model" validate:"required"`
	CompletionTimeout time.Duration `yaml:"completion_timeout" validate:"gt=0"`

	// AWS: PARAM_PREFIX enables SSM for the API token and directory URL.
	ParamPrefix    string `yaml:"param_prefix"`
	DirectoryTable string `yaml:"directory_table"`

	// User directory
	DirectoryURL     string        `yaml:"directory_url" validate:"omitempty,url"`
	DirectoryTimeout time.Duration `yaml:"directory_timeout" validate:"gt=0"`

	// Knowledge preamble for the fallback responder
	KnowledgeFile string `yaml:"knowledge_file"`

	// Interaction ledger
	LedgerMaxEntries int           `yaml:"ledger_max_entries" validate:"gte=0"`
	LedgerTTL        time.Duration `yaml:"ledger_ttl" validate:"gte=0"`

	Links Links `yaml:"links"`

	// CORS for the questionnaire endpoints
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Tracing: empty disables export
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Links are the static URLs the bot hands out.
type Links struct {
	Registration         string `yaml:"registration" validate:"required,url"`
	SchedulingBase       string `yaml:"scheduling_base" validate:"required,url"`
	SchedulingIntermedio string `yaml:"scheduling_intermedio" validate:"required,url"`
	SchedulingAvanzado   string `yaml:"scheduling_avanzado" validate:"required,url"`
	Event                string `yaml:"event" validate:"required,url"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		ServerAddress:     ":10000",
		Environment:       "development",
		LogLevel:          "info",
		OpenAIBaseURL:     "https://api.openai.com/v1",
		OpenAIModel:       "gpt-4.1-mini",
		CompletionTimeout: 20 * time.Second,
		DirectoryTimeout:  10 * time.Second,
		KnowledgeFile:     "conocimiento.txt",
		LedgerMaxEntries:  10000,
		Links: Links{
			Registration:         "https://tradermexico.mx/registro",
			SchedulingBase:       "https://calendly.com/tradermexico/sesion-basica",
			SchedulingIntermedio: "https://calendly.com/tradermexico/sesion-intermedia",
			SchedulingAvanzado:   "https://calendly.com/tradermexico/sesion-avanzada",
			Event:                "https://tradermexico.mx/eventos",
		},
		AllowedOrigins: []string{"*"},
	}
}

// Load builds the configuration. path may be empty; a named file that does
// not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path = strings.TrimSpace(path); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.ServerAddress = ":" + port
	}
	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.CompletionTimeout = getEnvDuration("COMPLETION_TIMEOUT", cfg.CompletionTimeout)

	cfg.ParamPrefix = getEnv("PARAM_PREFIX", cfg.ParamPrefix)
	cfg.DirectoryTable = getEnv("DIRECTORY_TABLE", cfg.DirectoryTable)
	cfg.DirectoryURL = getEnv("DIRECTORY_URL", cfg.DirectoryURL)
	cfg.DirectoryTimeout = getEnvDuration("DIRECTORY_TIMEOUT", cfg.DirectoryTimeout)

	cfg.KnowledgeFile = getEnv("KNOWLEDGE_FILE", cfg.KnowledgeFile)
	cfg.LedgerMaxEntries = getEnvInt("LEDGER_MAX_ENTRIES", cfg.LedgerMaxEntries)
	cfg.LedgerTTL = getEnvDuration("LEDGER_TTL", cfg.LedgerTTL)

	cfg.Links.Registration = getEnv("REGISTRATION_LINK", cfg.Links.Registration)
	cfg.Links.SchedulingBase = getEnv("SCHEDULING_LINK_BASE", cfg.Links.SchedulingBase)
	cfg.Links.SchedulingIntermedio = getEnv("SCHEDULING_LINK_INTERMEDIO", cfg.Links.SchedulingIntermedio)
	cfg.Links.SchedulingAvanzado = getEnv("SCHEDULING_LINK_AVANZADO", cfg.Links.SchedulingAvanzado)
	cfg.Links.Event = getEnv("EVENT_LINK", cfg.Links.Event)

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}
	cfg.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
}

type parameterTarget struct {
	env   string
	field *string
}

// parameterFields maps Parameter Store setting names to the environment
// variable that takes precedence over them and the field they fill.
func (c *Config) parameterFields() map[string]parameterTarget {
	return map[string]parameterTarget{
		"directory_url":              {"DIRECTORY_URL", &c.DirectoryURL},
		"directory_table":            {"DIRECTORY_TABLE", &c.DirectoryTable},
		"registration_link":          {"REGISTRATION_LINK", &c.Links.Registration},
		"scheduling_link_base":       {"SCHEDULING_LINK_BASE", &c.Links.SchedulingBase},
		"scheduling_link_intermedio": {"SCHEDULING_LINK_INTERMEDIO", &c.Links.SchedulingIntermedio},
		"scheduling_link_avanzado":   {"SCHEDULING_LINK_AVANZADO", &c.Links.SchedulingAvanzado},
		"event_link":                 {"EVENT_LINK", &c.Links.Event},
	}
}

// ApplyParameters overlays settings read from Parameter Store. An
// environment variable for the same setting still wins. Unknown names are
// ignored. The result is validated again.
func (c *Config) ApplyParameters(values map[string]string) error {
	for name, t := range c.parameterFields() {
		v := strings.TrimSpace(values[name])
		if v == "" || strings.TrimSpace(os.Getenv(t.env)) != "" {
			continue
		}
		*t.field = v
	}
	return c.Validate()
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config: invalid fields: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("config: validate: %w", err)
	}
	if c.OpenAIAPIKey == "" && c.ParamPrefix == "" {
		return errors.New("config: OPENAI_API_KEY or PARAM_PREFIX is required")
	}
	return nil
}

// IsProduction checks if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
