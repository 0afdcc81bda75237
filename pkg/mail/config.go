package mail

import "time"

type Config struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from"`
	UseTLS   bool          `yaml:"use_tls"`
	Timeout  time.Duration `yaml:"timeout"`
}

// SetDefaults fills the port, sender and timeout when unset.
func (c *Config) SetDefaults() {
	if c.Port == 0 {
		c.Port = 587
	}
	if c.From == "" {
		c.From = "no-reply@internships.local"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}
