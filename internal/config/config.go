package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sagniknandigit/internship-management/pkg/logs"
	"github.com/sagniknandigit/internship-management/pkg/mail"
	"github.com/sagniknandigit/internship-management/pkg/ollama"
	"github.com/sagniknandigit/internship-management/pkg/redis"
)

const insecureSecret = "supersecretkey"

type Config struct {
	Addr           string          `yaml:"addr"`
	Env            string          `yaml:"env"`
	JWTSecret      string          `yaml:"jwt_secret"`
	APITimeout     time.Duration   `yaml:"timeout"`
	DatabasePath   string          `yaml:"database_path"`
	MigrateOnStart bool            `yaml:"migrate_on_start"`
	TokenDuration  time.Duration   `yaml:"token_duration"`
	Logging        logs.Config     `yaml:"logging"`
	Workflow       WorkflowConfig  `yaml:"workflow"`
	BootstrapAdmin AdminConfig     `yaml:"bootstrap_admin"`
	Jobs           JobsConfig      `yaml:"jobs"`
	Screening      ScreeningConfig `yaml:"screening"`
	Ollama         ollama.Config   `yaml:"ollama"`
	Email          mail.Config     `yaml:"email"`
	Redis          redis.Config    `yaml:"redis"`
	RateLimit      RateLimitConfig `yaml:"ratelimit"`
}

type WorkflowConfig struct {
	// TransitionPolicy is "open" (any status may follow any other) or "funnel".
	TransitionPolicy string `yaml:"transition_policy"`
	// Timezone used to interpret interview dates in calendar exports.
	Timezone string `yaml:"timezone"`
}

// AdminConfig seeds the first administrator when the users table has none.
type AdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type JobsConfig struct {
	Enabled bool `yaml:"enabled"`
	Workers int  `yaml:"workers"`
}

type ScreeningConfig struct {
	// LLM enables the Ollama summary; skill matching always runs.
	LLM      bool          `yaml:"llm"`
	Model    string        `yaml:"model"`
	Template string        `yaml:"template"`
	Timeout  time.Duration `yaml:"timeout"`
}

type RateLimitConfig struct {
	SigninPerMinute int `yaml:"signin_per_minute"`
}

// LoadConfig reads .env (when present), applies IMS_* environment defaults
// and decodes the YAML file at path on top of them.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:           getEnv("IMS_ADDR", ":8080"),
		Env:            getEnv("IMS_ENV", "production"),
		JWTSecret:      getEnv("IMS_JWT_SECRET", insecureSecret),
		APITimeout:     getDuration("IMS_TIMEOUT", 15*time.Second),
		DatabasePath:   getEnv("IMS_DATABASE_PATH", "internships.db"),
		MigrateOnStart: getBool("IMS_MIGRATE_ON_START", true),
		TokenDuration:  getDuration("IMS_TOKEN_DURATION", 24*time.Hour),
		Logging: logs.Config{
			Level:  getEnv("IMS_LOG_LEVEL", "info"),
			Format: getEnv("IMS_LOG_FORMAT", ""),
		},
		Workflow: WorkflowConfig{TransitionPolicy: getEnv("IMS_TRANSITION_POLICY", "open")},
		BootstrapAdmin: AdminConfig{
			Name:     getEnv("IMS_ADMIN_NAME", "Administrator"),
			Email:    getEnv("IMS_ADMIN_EMAIL", ""),
			Password: getEnv("IMS_ADMIN_PASSWORD", ""),
		},
		Jobs:  JobsConfig{Enabled: getBool("IMS_JOBS_ENABLED", true), Workers: 2},
		Email: mail.Config{Host: getEnv("IMS_SMTP_HOST", ""), Username: getEnv("IMS_SMTP_USER", ""), Password: getEnv("IMS_SMTP_PASSWORD", "")},
		Redis: redis.Config{Addr: getEnv("IMS_REDIS_ADDR", ""), Password: getEnv("IMS_REDIS_PASSWORD", "")},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(os.Getenv("IMS_ENV"), "development")
}

// Validate checks required settings and fills sub-config defaults.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required"))
	}
	if c.JWTSecret == insecureSecret && !c.IsDevelopment() {
		errs = append(errs, errors.New("jwt_secret uses the insecure default; set IMS_JWT_SECRET"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is required"))
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = 24 * time.Hour
	}

	switch c.Workflow.TransitionPolicy {
	case "":
		c.Workflow.TransitionPolicy = "open"
	case "open", "funnel":
	default:
		errs = append(errs, fmt.Errorf("workflow.transition_policy %q must be open or funnel", c.Workflow.TransitionPolicy))
	}
	if c.Workflow.Timezone == "" {
		c.Workflow.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(c.Workflow.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("workflow.timezone: %w", err))
	}

	if (c.BootstrapAdmin.Email == "") != (c.BootstrapAdmin.Password == "") {
		errs = append(errs, errors.New("bootstrap_admin needs both email and password"))
	}

	if c.Jobs.Workers <= 0 {
		c.Jobs.Workers = 2
	}

	if c.Screening.Timeout <= 0 {
		c.Screening.Timeout = 60 * time.Second
	}
	if c.Screening.LLM && c.Screening.Model == "" {
		errs = append(errs, errors.New("screening.model is required when screening.llm is enabled"))
	}

	c.Ollama = c.Ollama.WithDefaults()
	if err := c.Ollama.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Screening.Template != "" {
		if _, err := ollama.ParsePrompt(c.Screening.Template); err != nil {
			errs = append(errs, fmt.Errorf("screening.template: %w", err))
		}
	}

	c.Email.SetDefaults()
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
		if c.IsDevelopment() {
			c.Logging.Format = "text"
		}
	}

	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

func getBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}
