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

// Session store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

type Config struct {
	ProjectDir string `json:"project_dir"`
	DataDir    string `json:"data_dir"`

	// HTTP server
	ServerPort int `json:"server_port"`

	// LLM provider: "openai" or "deepseek"
	LLMProvider    string `json:"llm_provider"`
	Model          string `json:"model"`
	BaseURL        string `json:"base_url"`
	MaxTokens      int    `json:"max_tokens"`
	ModelTimeout   int    `json:"model_timeout_seconds"`
	OpenAIAPIKey   string `json:"openai_api_key"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`

	// Session persistence: "file" or "sqlite"
	SessionBackend string `json:"session_backend"`
	SessionsFile   string `json:"sessions_file"`
	SessionsDB     string `json:"sessions_db"`

	Debug bool `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()
	cfg.loadFromEnv()

	return cfg
}

func DefaultConfigWithRoot(root string) *Config {
	dataDir := filepath.Join(root, "data")
	return &Config{
		ProjectDir: root,
		DataDir:    dataDir,

		ServerPort: 8090,

		LLMProvider:  "deepseek",
		Model:        "deepseek-chat",
		BaseURL:      "",
		MaxTokens:    2048,
		ModelTimeout: 30,

		SessionBackend: StoreFile,
		SessionsFile:   filepath.Join(dataDir, "sessions.json"),
		SessionsDB:     filepath.Join(dataDir, "sessions.db"),

		Debug: false,
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}

	if val := os.Getenv("FINSIGHT_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.ServerPort = port
		}
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.Model = val
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BaseURL = val
	}
	if val := os.Getenv("LLM_MAX_TOKENS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxTokens = v
		}
	}
	if val := os.Getenv("MODEL_TIMEOUT_SECONDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.ModelTimeout = v
		}
	}

	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}

	if val := os.Getenv("SESSION_BACKEND"); val != "" {
		c.SessionBackend = val
	}
	if val := os.Getenv("SESSIONS_FILE"); val != "" {
		c.SessionsFile = val
	}
	if val := os.Getenv("SESSIONS_DB"); val != "" {
		c.SessionsDB = val
	}

	if val := os.Getenv("FINSIGHT_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server port %d", c.ServerPort)
	}
	switch c.LLMProvider {
	case "openai", "deepseek":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLMProvider)
	}
	switch c.SessionBackend {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}
	if c.ModelTimeout <= 0 {
		return fmt.Errorf("model timeout must be positive, got %d", c.ModelTimeout)
	}
	return nil
}

// ModelCallTimeout is the per-call deadline imposed on the generator.
func (c *Config) ModelCallTimeout() time.Duration {
	return time.Duration(c.ModelTimeout) * time.Second
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.DataDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
