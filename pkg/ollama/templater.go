package ollama

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

var promptFuncs = template.FuncMap{
	// join renders a list as "a, b, c" and an empty one as "none".
	"join": func(items []string) string {
		if len(items) == 0 {
			return "none"
		}
		return strings.Join(items, ", ")
	},
	"clip": func(n int, s string) string {
		r := []rune(strings.TrimSpace(s))
		if n <= 0 || len(r) <= n {
			return string(r)
		}
		return string(r[:n]) + "..."
	},
}

// Prompt is a parsed prompt template. It is safe for concurrent use.
type Prompt struct {
	tpl *template.Template
}

// ParsePrompt parses text once so that rendering per request only executes it.
// Referencing a field the data does not carry is an error at render time.
func ParsePrompt(text string) (*Prompt, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("ollama: empty prompt template")
	}
	tpl, err := template.New("prompt").Option("missingkey=error").Funcs(promptFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("ollama: parse prompt: %w", err)
	}
	return &Prompt{tpl: tpl}, nil
}

// MustParsePrompt is ParsePrompt for templates compiled into the binary.
func MustParsePrompt(text string) *Prompt {
	p, err := ParsePrompt(text)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Prompt) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := p.tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("ollama: render prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
