package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AppName     = "listing-wizard"
	EnvFileName = "config.env"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const (
	DefaultListenAddr    = ":3000"
	DefaultMaxTokens     = 300
	DefaultTimeout       = 60 * time.Second
	DefaultMaxImageBytes = 10 * 1024 * 1024
)

// Config is the process-wide configuration, read once at startup.
type Config struct {
	Provider      string
	OpenAIAPIKey  string
	OpenAIBaseURL string // Optional, for proxies and compatible endpoints
	GeminiAPIKey  string
	Model         string // Empty selects the provider default
	MaxTokens     int
	Timeout       time.Duration
	ListenAddr    string
	MaxImageBytes int64
	// CORS origins for browser clients; empty disables CORS
	AllowedOrigins []string
}

// EnvFilePath returns the path of the config file in the user's config directory.
func EnvFilePath() (string, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configBase, AppName, EnvFileName), nil
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	configPath, err := EnvFilePath()
	if err != nil {
		return
	}
	_ = godotenv.Load(configPath)
}

// SaveEnvFile writes values to the config file, creating the directory if needed.
func SaveEnvFile(values map[string]string) (string, error) {
	configPath, err := EnvFilePath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := godotenv.Write(values, configPath); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(configPath, 0600); err != nil {
		return "", fmt.Errorf("failed to set config file permissions: %w", err)
	}
	return configPath, nil
}

func provider() string {
	p := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	if p == "" {
		return ProviderOpenAI
	}
	return p
}

// CredentialEnvVar returns the environment variable holding the API key of
// the given provider.
func CredentialEnvVar(provider string) string {
	if provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// CheckRequiredConfig returns the names of required environment variables
// that are not set.
func CheckRequiredConfig() []string {
	var missing []string
	if key := CredentialEnvVar(provider()); os.Getenv(key) == "" {
		missing = append(missing, key)
	}
	return missing
}

// Load reads the configuration from the environment. A missing provider
// credential is an error.
func Load() (Config, error) {
	cfg := Config{
		Provider:      provider(),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		Model:         os.Getenv("LLM_MODEL"),
		MaxTokens:     DefaultMaxTokens,
		Timeout:       DefaultTimeout,
		ListenAddr:    DefaultListenAddr,
		MaxImageBytes: DefaultMaxImageBytes,
	}

	if cfg.Provider != ProviderOpenAI && cfg.Provider != ProviderGemini {
		return Config{}, fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, cfg.Provider)
	}
	if missing := CheckRequiredConfig(); len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("LLM_MAX_TOKENS must be a positive integer, got %q", v)
		}
		cfg.MaxTokens = n
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("LLM_TIMEOUT must be a positive duration, got %q", v)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("MAX_IMAGE_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("MAX_IMAGE_BYTES must be a positive integer, got %q", v)
		}
		cfg.MaxImageBytes = n
	}
	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}
