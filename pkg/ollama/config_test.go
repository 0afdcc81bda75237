package ollama

import (
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

func TestConfig_WithDefaults(t *testing.T) {
	c := Config{BaseURL: "http://ollama:11434", Retries: -1, Timeout: 5 * time.Second}.WithDefaults()
	if c.BaseURL != "http://ollama:11434" || c.Timeout != 5*time.Second {
		t.Fatalf("explicit values overwritten: %+v", c)
	}
	if c.Retries != 0 {
		t.Fatalf("negative retries should disable retrying, got %d", c.Retries)
	}
	if c.CircuitFailureThreshold != 5 || c.CircuitReset != 30*time.Second || c.NumPredict != 256 {
		t.Fatalf("defaults not applied: %+v", c)
	}
	if d := (Config{}).WithDefaults(); d.Retries != 2 {
		t.Fatalf("expected default retries 2, got %d", d.Retries)
	}
}

func TestConfig_Validate(t *testing.T) {
	hot := 3.0
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"default", DefaultConfig(), true},
		{"no scheme", Config{BaseURL: "ollama:11434"}, false},
		{"empty", Config{}, false},
		{"temperature out of range", Config{BaseURL: "http://localhost:11434", Temperature: &hot}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err == nil) != tc.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}

func TestConfig_Options(t *testing.T) {
	if opts := (Config{}).options(); opts != nil {
		t.Fatalf("expected no options, got %v", opts)
	}
	temp := 0.2
	opts := Config{Temperature: &temp, NumPredict: 128}.options()
	if opts["temperature"] != 0.2 || opts["num_predict"] != 128 {
		t.Fatalf("unexpected options: %v", opts)
	}
}

type idleCloser struct{ closed int32 }

func (t *idleCloser) RoundTrip(*http.Request) (*http.Response, error) { panic("not used") }
func (t *idleCloser) CloseIdleConnections()                           { atomic.AddInt32(&t.closed, 1) }

func TestClient_CloseOnce(t *testing.T) {
	tr := &idleCloser{}
	c, err := NewClient(DefaultConfig(), &http.Client{Transport: tr})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := c.Close(); err != nil {
			t.Fatalf("Close #%d: %v", i+1, err)
		}
	}
	if n := atomic.LoadInt32(&tr.closed); n != 1 {
		t.Fatalf("idle connections closed %d times, want 1", n)
	}
}
