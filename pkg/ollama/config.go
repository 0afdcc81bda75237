package ollama

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds settings for the Ollama client.
type Config struct {
	// BaseURL is the HTTP endpoint for the Ollama instance, e.g. http://localhost:11434
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Timeout bounds a single generate or list call.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// Retries is the number of extra attempts after a failed generate.
	Retries int `yaml:"retries" json:"retries"`
	// Backoff grows linearly: attempt n waits n*Backoff.
	Backoff                 time.Duration `yaml:"backoff" json:"backoff"`
	CircuitFailureThreshold int           `yaml:"circuit_failure_threshold" json:"circuit_failure_threshold"`
	CircuitReset            time.Duration `yaml:"circuit_reset" json:"circuit_reset"`

	// Temperature and NumPredict are passed to the model as options when set.
	// Screening summaries read best with a low temperature and a short cap.
	Temperature *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	NumPredict  int      `yaml:"num_predict,omitempty" json:"num_predict,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:                 "http://localhost:11434",
		Timeout:                 60 * time.Second,
		Retries:                 2,
		Backoff:                 500 * time.Millisecond,
		CircuitFailureThreshold: 5,
		CircuitReset:            30 * time.Second,
		NumPredict:              256,
	}
}

// WithDefaults fills every unset field from DefaultConfig. A negative
// Retries disables retrying and is kept as zero.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	switch {
	case c.Retries == 0:
		c.Retries = def.Retries
	case c.Retries < 0:
		c.Retries = 0
	}
	if c.Backoff <= 0 {
		c.Backoff = def.Backoff
	}
	if c.CircuitFailureThreshold <= 0 {
		c.CircuitFailureThreshold = def.CircuitFailureThreshold
	}
	if c.CircuitReset <= 0 {
		c.CircuitReset = def.CircuitReset
	}
	if c.NumPredict <= 0 {
		c.NumPredict = def.NumPredict
	}
	return c
}

func (c Config) Validate() error {
	var errs []error
	if u, err := url.ParseRequestURI(c.BaseURL); err != nil || u.Host == "" {
		errs = append(errs, fmt.Errorf("ollama.base_url %q is not an absolute URL", c.BaseURL))
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		errs = append(errs, errors.New("ollama.temperature must be between 0 and 2"))
	}
	return errors.Join(errs...)
}

// options is the model options map sent with each generate request.
func (c Config) options() map[string]any {
	opts := map[string]any{}
	if c.Temperature != nil {
		opts["temperature"] = *c.Temperature
	}
	if c.NumPredict > 0 {
		opts["num_predict"] = c.NumPredict
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}
